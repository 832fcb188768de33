package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/teamup-web/internal/models"
	"github.com/isdelr/teamup-web/internal/views"
)

// TeamHandler handles a project's team page and team chat.
type TeamHandler struct{}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler() *TeamHandler {
	return &TeamHandler{}
}

func loadTeam(w http.ResponseWriter, r *http.Request) (*views.Team, bool) {
	t := views.NewTeam(envFrom(r), projectID(r))
	if err := t.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return t, true
}

// Get returns members and comments.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := loadTeam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t.View())
}

// GetComments returns only the team chat.
func (h *TeamHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	t, ok := loadTeam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": t.View().Comments})
}

// RemoveMember removes a member. Requires ?confirm=true.
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	t, ok := loadTeam(w, r)
	if !ok {
		return
	}
	userID := models.ID(chi.URLParam(r, "userId"))
	if err := t.RemoveMember(r.Context(), userID, confirmed(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t.View())
}

// AddComment posts to the team chat.
func (h *TeamHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	t, ok := loadTeam(w, r)
	if !ok {
		return
	}
	comment, err := t.AddComment(r.Context(), payload.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// DeleteComment removes a comment the viewer may delete.
func (h *TeamHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	t, ok := loadTeam(w, r)
	if !ok {
		return
	}
	if err := t.DeleteComment(r.Context(), models.ID(chi.URLParam(r, "commentId"))); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
