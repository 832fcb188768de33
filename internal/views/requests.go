package views

import (
	"context"

	"github.com/isdelr/teamup-web/internal/models"
	"github.com/isdelr/teamup-web/internal/sanitize"
)

// UnknownApplicant labels a request whose applicant was not embedded.
const UnknownApplicant = "Unknown user"

// RequestView is a join request as listed to the browser.
type RequestView struct {
	ID           models.ID        `json:"id"`
	ProjectID    models.ID        `json:"projectId"`
	ProjectTitle string           `json:"projectTitle,omitempty"`
	UserID       models.ID        `json:"userId"`
	Username     string           `json:"username"`
	Github       string           `json:"github,omitempty"`
	Role         string           `json:"role"`
	Message      string           `json:"message,omitempty"`
	Status       string           `json:"status"`
	CreatedAt    models.Timestamp `json:"createdAt"`
}

func presentRequest(r models.JoinRequest) RequestView {
	v := RequestView{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		UserID:    r.UserID,
		Username:  UnknownApplicant,
		Role:      r.Role,
		Message:   r.Message,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
	if r.Applicant != nil {
		if r.Applicant.Username != "" {
			v.Username = r.Applicant.Username
		}
		v.Github = sanitize.URL(r.Applicant.GithubProfile)
	}
	if r.Project != nil {
		v.ProjectTitle = r.Project.Title
		if v.ProjectID.IsZero() {
			v.ProjectID = r.Project.ID
		}
	}
	return v
}

func presentRequests(rs []models.JoinRequest) []RequestView {
	out := make([]RequestView, 0, len(rs))
	for _, r := range rs {
		out = append(out, presentRequest(r))
	}
	return out
}

// ProjectRequests is the owner's screen for answering join requests.
type ProjectRequests struct {
	env       Env
	projectID models.ID

	State
	requests []models.JoinRequest
}

// NewProjectRequests creates the controller for one project.
func NewProjectRequests(env Env, projectID models.ID) *ProjectRequests {
	return &ProjectRequests{env: env, projectID: projectID, State: State{Status: StatusLoading}}
}

// Load fetches the project's requests.
func (p *ProjectRequests) Load(ctx context.Context) error {
	if _, err := p.env.viewer(); err != nil {
		return err
	}
	p.begin()
	requests, err := p.env.API.Requests.ListForProject(ctx, p.projectID)
	if err != nil {
		p.fail(err)
		return err
	}
	p.requests = requests
	p.ready()
	return nil
}

// Respond accepts or rejects a request. The local copy takes the new status
// only after the backend confirms.
func (p *ProjectRequests) Respond(ctx context.Context, requestID models.ID, status, role string) error {
	p.ActionError = ""
	if _, err := p.env.viewer(); err != nil {
		return err
	}
	if status != models.RequestAccepted && status != models.RequestRejected {
		return p.actionFailed(invalid("Status must be accepted or rejected"))
	}
	if _, err := p.env.API.Requests.Respond(ctx, requestID, status, role); err != nil {
		return p.actionFailed(err)
	}
	for i := range p.requests {
		if p.requests[i].ID == requestID {
			p.requests[i].Status = status
			if role != "" {
				p.requests[i].Role = role
			}
		}
	}
	return nil
}

// RequestListView is the JSON form of the request screens.
type RequestListView struct {
	State
	Requests []RequestView `json:"requests"`
}

// View renders the controller.
func (p *ProjectRequests) View() RequestListView {
	return RequestListView{State: p.State, Requests: presentRequests(p.requests)}
}

// MyRequests lists the viewer's own join requests.
type MyRequests struct {
	env Env

	State
	requests []models.JoinRequest
}

// NewMyRequests creates the controller.
func NewMyRequests(env Env) *MyRequests {
	return &MyRequests{env: env, State: State{Status: StatusLoading}}
}

// Load fetches the viewer's requests.
func (m *MyRequests) Load(ctx context.Context) error {
	if _, err := m.env.viewer(); err != nil {
		return err
	}
	m.begin()
	requests, err := m.env.API.Requests.ListMine(ctx)
	if err != nil {
		m.fail(err)
		return err
	}
	m.requests = requests
	m.ready()
	return nil
}

// View renders the controller.
func (m *MyRequests) View() RequestListView {
	return RequestListView{State: m.State, Requests: presentRequests(m.requests)}
}

// MyProjects lists the projects the viewer owns.
type MyProjects struct {
	env Env

	State
	projects []models.Project
}

// NewMyProjects creates the controller.
func NewMyProjects(env Env) *MyProjects {
	return &MyProjects{env: env, State: State{Status: StatusLoading}}
}

// Load fetches the viewer's projects.
func (m *MyProjects) Load(ctx context.Context) error {
	if _, err := m.env.viewer(); err != nil {
		return err
	}
	m.begin()
	projects, err := m.env.API.Projects.ListMine(ctx)
	if err != nil {
		m.fail(err)
		return err
	}
	m.projects = projects
	m.ready()
	return nil
}

// View renders the controller.
func (m *MyProjects) View() ProjectListView {
	return ProjectListView{State: m.State, Total: len(m.projects), Projects: presentProjects(m.projects)}
}
