package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/isdelr/teamup-web/internal/models"
)

// TeamServiceProvider defines the interface for team and team-chat services.
type TeamServiceProvider interface {
	Members(ctx context.Context, projectID models.ID) ([]models.TeamMembership, error)
	RemoveMember(ctx context.Context, projectID, userID models.ID) error
	Comments(ctx context.Context, projectID models.ID) ([]models.Comment, error)
	AddComment(ctx context.Context, projectID models.ID, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, projectID, commentID models.ID) error
}

// TeamService talks to /projects/{id}/team.
type TeamService struct {
	api *caller
}

// NewTeamService creates a new TeamService.
func NewTeamService(backend *Backend, creds Credentials) *TeamService {
	return &TeamService{api: &caller{backend: backend, creds: creds}}
}

func teamPath(projectID models.ID) string {
	return projectPath(projectID) + "/team"
}

// Members returns the project's team.
func (s *TeamService) Members(ctx context.Context, projectID models.ID) ([]models.TeamMembership, error) {
	var members []models.TeamMembership
	err := s.api.do(ctx, http.MethodGet, teamPath(projectID), nil, &members, "Failed to fetch team members")
	return members, err
}

// RemoveMember drops a user from the team.
func (s *TeamService) RemoveMember(ctx context.Context, projectID, userID models.ID) error {
	return s.api.do(ctx, http.MethodDelete, teamPath(projectID)+"/"+url.PathEscape(userID.String()), nil, nil, "Failed to remove team member")
}

// Comments returns the team chat.
func (s *TeamService) Comments(ctx context.Context, projectID models.ID) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.api.do(ctx, http.MethodGet, teamPath(projectID)+"/comments", nil, &comments, "Failed to fetch team comments")
	return comments, err
}

// AddComment posts to the team chat.
func (s *TeamService) AddComment(ctx context.Context, projectID models.ID, content string) (models.Comment, error) {
	payload := struct {
		Content string `json:"content"`
	}{Content: content}

	var comment models.Comment
	err := s.api.do(ctx, http.MethodPost, teamPath(projectID)+"/comments", payload, &comment, "Failed to add team comment")
	return comment, err
}

// DeleteComment removes a chat message.
func (s *TeamService) DeleteComment(ctx context.Context, projectID, commentID models.ID) error {
	return s.api.do(ctx, http.MethodDelete, teamPath(projectID)+"/comments/"+url.PathEscape(commentID.String()), nil, nil, "Failed to delete team comment")
}
