package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/isdelr/teamup-web/internal/models"
)

// ProjectServiceProvider defines the interface for project services.
type ProjectServiceProvider interface {
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, id models.ID) (models.Project, error)
	Create(ctx context.Context, in models.ProjectInput) (models.Project, error)
	Update(ctx context.Context, id models.ID, in models.ProjectInput) (models.Project, error)
	Delete(ctx context.Context, id models.ID) error
	Upvote(ctx context.Context, id, userID models.ID) (models.Project, error)
	Downvote(ctx context.Context, id, userID models.ID) (models.Project, error)
	RemoveVote(ctx context.Context, id, userID models.ID) (models.Project, error)
	ListMine(ctx context.Context) ([]models.Project, error)
}

// ProjectService talks to /projects and /users/me/projects.
type ProjectService struct {
	api *caller
}

// NewProjectService creates a new ProjectService.
func NewProjectService(backend *Backend, creds Credentials) *ProjectService {
	return &ProjectService{api: &caller{backend: backend, creds: creds}}
}

func projectPath(id models.ID) string {
	return "/projects/" + url.PathEscape(id.String())
}

// List returns every project. The collection route has a trailing slash.
func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := s.api.do(ctx, http.MethodGet, "/projects/", nil, &projects, "Failed to fetch projects")
	return projects, err
}

// Get returns one project, including its join requests when the backend embeds them.
func (s *ProjectService) Get(ctx context.Context, id models.ID) (models.Project, error) {
	var project models.Project
	err := s.api.do(ctx, http.MethodGet, projectPath(id), nil, &project, "Failed to fetch project")
	return project, err
}

// Create posts a new project.
func (s *ProjectService) Create(ctx context.Context, in models.ProjectInput) (models.Project, error) {
	var project models.Project
	err := s.api.do(ctx, http.MethodPost, "/projects/", in, &project, "Failed to create project")
	return project, err
}

// Update replaces a project's editable fields.
func (s *ProjectService) Update(ctx context.Context, id models.ID, in models.ProjectInput) (models.Project, error) {
	var project models.Project
	err := s.api.do(ctx, http.MethodPut, projectPath(id), in, &project, "Failed to update project")
	return project, err
}

// Delete removes a project.
func (s *ProjectService) Delete(ctx context.Context, id models.ID) error {
	return s.api.do(ctx, http.MethodDelete, projectPath(id), nil, nil, "Failed to delete project")
}

// Upvote records an upvote and returns the project with authoritative counts.
// An existing vote comes back as *VoteConflictError.
func (s *ProjectService) Upvote(ctx context.Context, id, userID models.ID) (models.Project, error) {
	return s.vote(ctx, http.MethodPost, projectPath(id)+"/upvote/"+url.PathEscape(userID.String()), "Failed to upvote project")
}

// Downvote is the mirror of Upvote.
func (s *ProjectService) Downvote(ctx context.Context, id, userID models.ID) (models.Project, error) {
	return s.vote(ctx, http.MethodPost, projectPath(id)+"/downvote/"+url.PathEscape(userID.String()), "Failed to downvote project")
}

// RemoveVote retracts the viewer's vote in either direction.
func (s *ProjectService) RemoveVote(ctx context.Context, id, userID models.ID) (models.Project, error) {
	return s.vote(ctx, http.MethodDelete, projectPath(id)+"/vote/"+url.PathEscape(userID.String()), "Failed to remove vote")
}

func (s *ProjectService) vote(ctx context.Context, method, path, fallback string) (models.Project, error) {
	var project models.Project
	if err := s.api.do(ctx, method, path, nil, &project, fallback); err != nil {
		return models.Project{}, asVoteConflict(err)
	}
	return project, nil
}

// ListMine returns the projects owned by the viewer.
func (s *ProjectService) ListMine(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := s.api.do(ctx, http.MethodGet, "/users/me/projects", nil, &projects, "Failed to fetch your projects")
	return projects, err
}
