package views

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/isdelr/teamup-web/internal/models"
)

// ProjectForm is the create/edit form as submitted.
type ProjectForm struct {
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Status        string            `json:"status"`
	Tags          []string          `json:"tags"`
	RepoLink      string            `json:"repoLink"`
	RequiredRoles []models.RoleNeed `json:"requiredRoles"`
}

// normalize trims the form and returns the backend payload, or the first
// validation failure.
func (f ProjectForm) normalize() (models.ProjectInput, error) {
	in := models.ProjectInput{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Status:      strings.TrimSpace(f.Status),
		RepoLink:    strings.TrimSpace(f.RepoLink),
	}
	if in.Status == "" {
		in.Status = models.StatusOpen
	}

	switch {
	case in.Title == "":
		return in, invalid("Title is required")
	case in.Description == "":
		return in, invalid("Description is required")
	case !models.ValidProjectStatus(in.Status):
		return in, invalid(fmt.Sprintf("Unknown status %q", in.Status))
	}

	seen := make(map[string]struct{})
	for _, tag := range f.Tags {
		for _, t := range models.ParseTags(tag) {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			in.Tags = append(in.Tags, t)
		}
	}
	if len(in.Tags) == 0 {
		return in, invalid("Choose at least one tag")
	}
	if len(in.Tags) > models.MaxProjectTags {
		return in, invalid(fmt.Sprintf("Choose at most %d tags", models.MaxProjectTags))
	}

	if in.RepoLink != "" {
		u, err := url.Parse(in.RepoLink)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return in, invalid("Repository link must be an http(s) URL")
		}
	}

	for _, need := range f.RequiredRoles {
		need.Role = strings.TrimSpace(need.Role)
		if need.Role == "" {
			continue
		}
		if need.Count < 1 {
			need.Count = 1
		}
		in.RequiredRoles = append(in.RequiredRoles, need)
	}
	return in, nil
}

// CreateProject validates the form and creates a project owned by the viewer.
func CreateProject(ctx context.Context, env Env, form ProjectForm) (models.Project, error) {
	viewer, err := env.viewer()
	if err != nil {
		return models.Project{}, err
	}
	in, err := form.normalize()
	if err != nil {
		return models.Project{}, err
	}
	in.OwnerID = viewer.ID
	return env.API.Projects.Create(ctx, in)
}

// ProjectEditor loads a project for editing. Only the owner gets a ready view.
type ProjectEditor struct {
	env Env
	id  models.ID

	State
	project *models.Project
}

// NewProjectEditor creates the controller for project id.
func NewProjectEditor(env Env, id models.ID) *ProjectEditor {
	return &ProjectEditor{env: env, id: id, State: State{Status: StatusLoading}}
}

// Load fetches the project and checks ownership.
func (e *ProjectEditor) Load(ctx context.Context) error {
	viewer, err := e.env.viewer()
	if err != nil {
		return err
	}
	e.begin()
	project, err := e.env.API.Projects.Get(ctx, e.id)
	if err != nil {
		e.fail(err)
		return err
	}
	if project.OwnerID != viewer.ID {
		e.fail(ErrForbidden)
		return ErrForbidden
	}
	e.project = &project
	e.ready()
	return nil
}

// Save validates and submits the edit.
func (e *ProjectEditor) Save(ctx context.Context, form ProjectForm) (models.Project, error) {
	e.ActionError = ""
	if e.project == nil {
		return models.Project{}, e.actionFailed(ErrNotLoaded)
	}
	in, err := form.normalize()
	if err != nil {
		return models.Project{}, e.actionFailed(err)
	}
	updated, err := e.env.API.Projects.Update(ctx, e.id, in)
	if err != nil {
		return models.Project{}, e.actionFailed(err)
	}
	e.project = &updated
	return updated, nil
}

// ProjectEditorView is the JSON form of ProjectEditor.
type ProjectEditorView struct {
	State
	Form *ProjectForm `json:"form,omitempty"`
}

// View renders the controller with the form pre-filled.
func (e *ProjectEditor) View() ProjectEditorView {
	v := ProjectEditorView{State: e.State}
	if e.project != nil {
		p := e.project
		v.Form = &ProjectForm{
			Title:         p.Title,
			Description:   p.Description,
			Status:        p.Status,
			Tags:          append([]string{}, p.Tags...),
			RepoLink:      p.RepoLink,
			RequiredRoles: p.RequiredRoles,
		}
	}
	return v
}
