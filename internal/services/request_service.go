package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/isdelr/teamup-web/internal/models"
)

// RequestServiceProvider defines the interface for join-request services.
type RequestServiceProvider interface {
	ListForProject(ctx context.Context, projectID models.ID) ([]models.JoinRequest, error)
	Create(ctx context.Context, projectID models.ID, role, message string) (models.JoinRequest, error)
	Respond(ctx context.Context, requestID models.ID, status, role string) (models.JoinRequest, error)
	ListMine(ctx context.Context) ([]models.JoinRequest, error)
}

// RequestService talks to the join-request endpoints.
type RequestService struct {
	api *caller
}

// NewRequestService creates a new RequestService.
func NewRequestService(backend *Backend, creds Credentials) *RequestService {
	return &RequestService{api: &caller{backend: backend, creds: creds}}
}

// ListForProject returns the requests made to a project (owner only, enforced by the backend).
func (s *RequestService) ListForProject(ctx context.Context, projectID models.ID) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	err := s.api.do(ctx, http.MethodGet, projectPath(projectID)+"/requests", nil, &requests, "Failed to fetch project requests")
	return requests, err
}

// Create applies for role on a project. An empty message is omitted.
func (s *RequestService) Create(ctx context.Context, projectID models.ID, role, message string) (models.JoinRequest, error) {
	payload := struct {
		Role    string `json:"role"`
		Message string `json:"message,omitempty"`
	}{Role: role, Message: message}

	var request models.JoinRequest
	err := s.api.do(ctx, http.MethodPost, projectPath(projectID)+"/requests", payload, &request, "Failed to create request")
	return request, err
}

// Respond accepts or rejects a request. An empty role is omitted.
func (s *RequestService) Respond(ctx context.Context, requestID models.ID, status, role string) (models.JoinRequest, error) {
	payload := struct {
		Status string `json:"status"`
		Role   string `json:"role,omitempty"`
	}{Status: status, Role: role}

	var request models.JoinRequest
	err := s.api.do(ctx, http.MethodPut, "/requests/"+url.PathEscape(requestID.String()), payload, &request, "Failed to update request")
	return request, err
}

// ListMine returns the viewer's own requests.
func (s *RequestService) ListMine(ctx context.Context) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	err := s.api.do(ctx, http.MethodGet, "/users/me/requests", nil, &requests, "Failed to fetch your requests")
	return requests, err
}
