package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/teamup-web/internal/models"
	"github.com/isdelr/teamup-web/internal/views"
)

// ProjectHandler handles project browsing, voting, join requests and the
// owner's project management.
type ProjectHandler struct{}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler() *ProjectHandler {
	return &ProjectHandler{}
}

func projectID(r *http.Request) models.ID {
	return models.ID(chi.URLParam(r, "id"))
}

// loadDetail loads the detail view, writing the error response on failure.
func loadDetail(w http.ResponseWriter, r *http.Request) (*views.ProjectDetail, bool) {
	d := views.NewProjectDetail(envFrom(r), projectID(r))
	if err := d.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return d, true
}

// GetAll lists projects, filtered by ?q=.
func (h *ProjectHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	l := views.NewProjectList(envFrom(r))
	if err := l.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	l.Search(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, l.View())
}

// Get returns one project with the viewer's derived state.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, ok := loadDetail(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d.View())
}

// Create creates a project owned by the viewer.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form views.ProjectForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	project, err := views.CreateProject(r.Context(), envFrom(r), form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/projects/"+project.ID.String())
	writeJSON(w, http.StatusCreated, map[string]models.ID{"id": project.ID})
}

// Edit returns the pre-filled edit form. Owner only.
func (h *ProjectHandler) Edit(w http.ResponseWriter, r *http.Request) {
	e := views.NewProjectEditor(envFrom(r), projectID(r))
	if err := e.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e.View())
}

// Update saves an edit. Owner only.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var form views.ProjectForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	e := views.NewProjectEditor(envFrom(r), projectID(r))
	if err := e.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := e.Save(r.Context(), form); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e.View())
}

// Delete removes a project. Requires ?confirm=true.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	d, ok := loadDetail(w, r)
	if !ok {
		return
	}
	if err := d.Delete(r.Context(), confirmed(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Vote applies an upvote or downvote click.
func (h *ProjectHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Direction string `json:"direction"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	d, ok := loadDetail(w, r)
	if !ok {
		return
	}
	if err := d.Vote(r.Context(), models.VoteState(payload.Direction)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d.View())
}

// RequestJoin sends a join request for one of the viewer's eligible roles.
func (h *ProjectHandler) RequestJoin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Role    string `json:"role"`
		Message string `json:"message"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	d, ok := loadDetail(w, r)
	if !ok {
		return
	}
	if err := d.RequestJoin(r.Context(), payload.Role, payload.Message); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d.View())
}

// GetRequests lists the join requests made to a project.
func (h *ProjectHandler) GetRequests(w http.ResponseWriter, r *http.Request) {
	p := views.NewProjectRequests(envFrom(r), projectID(r))
	if err := p.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

// RespondToRequest accepts or rejects a join request.
func (h *ProjectHandler) RespondToRequest(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status string `json:"status"`
		Role   string `json:"role"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	p := views.NewProjectRequests(envFrom(r), "")
	if err := p.Respond(r.Context(), models.ID(chi.URLParam(r, "id")), payload.Status, payload.Role); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": payload.Status})
}

// GetMine lists the viewer's projects.
func (h *ProjectHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	m := views.NewMyProjects(envFrom(r))
	if err := m.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m.View())
}

// GetMyRequests lists the viewer's join requests.
func (h *ProjectHandler) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	m := views.NewMyRequests(envFrom(r))
	if err := m.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m.View())
}
