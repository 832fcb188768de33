package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/isdelr/teamup-web/internal/models"
)

// UserServiceProvider defines the interface for public user lookups.
type UserServiceProvider interface {
	Get(ctx context.Context, id models.ID) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// UserService talks to /users.
type UserService struct {
	api *caller
}

// NewUserService creates a new UserService.
func NewUserService(backend *Backend, creds Credentials) *UserService {
	return &UserService{api: &caller{backend: backend, creds: creds}}
}

// Get retrieves a single user by their ID.
func (s *UserService) Get(ctx context.Context, id models.ID) (models.User, error) {
	var user models.User
	err := s.api.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id.String()), nil, &user, "Failed to fetch user")
	return user, err
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.api.do(ctx, http.MethodGet, "/users", nil, &users, "Failed to fetch users")
	return users, err
}
