package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/isdelr/teamup-web/internal/models"
)

// AuthServiceProvider defines the interface for authentication and profile calls.
type AuthServiceProvider interface {
	Register(ctx context.Context, reg models.Registration) (AuthResult, error)
	Login(ctx context.Context, creds models.Credentials) (AuthResult, error)
	GetProfile(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (models.User, error)
}

// AuthResult is what login and registration return. Token is empty when the
// backend did not issue one; User is nil when the body carried no user.
type AuthResult struct {
	Token string
	User  *models.User
}

// AuthService talks to /register, /login and /profile.
type AuthService struct {
	api *caller
}

// NewAuthService creates a new AuthService.
func NewAuthService(backend *Backend, creds Credentials) *AuthService {
	return &AuthService{api: &caller{backend: backend, creds: creds}}
}

// Register creates an account and stores the issued token, if any.
func (s *AuthService) Register(ctx context.Context, reg models.Registration) (AuthResult, error) {
	return s.authenticate(ctx, "/register", reg, "Registration failed")
}

// Login exchanges credentials for a token and stores it.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (AuthResult, error) {
	return s.authenticate(ctx, "/login", creds, "Login failed")
}

func (s *AuthService) authenticate(ctx context.Context, path string, payload any, fallback string) (AuthResult, error) {
	var raw json.RawMessage
	if err := s.api.do(ctx, http.MethodPost, path, payload, &raw, fallback); err != nil {
		return AuthResult{}, err
	}
	result, err := parseAuthResult(raw)
	if err != nil {
		return AuthResult{}, err
	}
	if result.Token != "" && s.api.creds != nil {
		if err := s.api.creds.SetToken(ctx, result.Token); err != nil {
			return AuthResult{}, fmt.Errorf("store session token: %w", err)
		}
	}
	return result, nil
}

// parseAuthResult reads the token (access_token first, then token) and the
// user, which is either nested under "user" or is the body itself.
func parseAuthResult(raw json.RawMessage) (AuthResult, error) {
	var result AuthResult
	if len(raw) == 0 {
		return result, nil
	}
	var body struct {
		AccessToken string          `json:"access_token"`
		Token       string          `json:"token"`
		User        json.RawMessage `json:"user"`
		Username    string          `json:"username"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return result, fmt.Errorf("decode auth response: %w", err)
	}

	switch {
	case body.AccessToken != "":
		result.Token = body.AccessToken
	case body.Token != "":
		result.Token = body.Token
	}

	userJSON := body.User
	if len(userJSON) == 0 || string(userJSON) == "null" {
		if body.Username == "" {
			return result, nil
		}
		userJSON = raw
	}
	var user models.User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		return result, fmt.Errorf("decode auth user: %w", err)
	}
	result.User = &user
	return result, nil
}

// GetProfile returns the token owner's profile.
func (s *AuthService) GetProfile(ctx context.Context) (models.User, error) {
	var user models.User
	err := s.api.do(ctx, http.MethodGet, "/profile", nil, &user, "Failed to fetch profile")
	return user, err
}

// UpdateProfile replaces the editable profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (models.User, error) {
	var user models.User
	err := s.api.do(ctx, http.MethodPut, "/profile", update, &user, "Failed to update profile")
	return user, err
}
