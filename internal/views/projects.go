package views

import (
	"context"
	"errors"
	"strings"

	"github.com/isdelr/teamup-web/internal/models"
	"github.com/isdelr/teamup-web/internal/services"
	"github.com/rs/zerolog/log"
)

// ProjectList is the project browser with client-side search.
type ProjectList struct {
	env Env

	State
	Query    string
	projects []models.Project
}

// NewProjectList creates the controller.
func NewProjectList(env Env) *ProjectList {
	return &ProjectList{env: env, State: State{Status: StatusLoading}}
}

// Load fetches every project.
func (l *ProjectList) Load(ctx context.Context) error {
	l.begin()
	projects, err := l.env.API.Projects.List(ctx)
	if err != nil {
		l.fail(err)
		return err
	}
	l.projects = projects
	l.ready()
	return nil
}

// Search sets the filter applied by Visible.
func (l *ProjectList) Search(query string) {
	l.Query = strings.TrimSpace(query)
}

// Visible returns the projects matching Query. Matching is case-insensitive
// over title, description and tags.
func (l *ProjectList) Visible() []models.Project {
	return FilterProjects(l.projects, l.Query)
}

// FilterProjects keeps the projects whose title, description or any tag
// contains query, ignoring case. An empty query keeps everything.
func FilterProjects(projects []models.Project, query string) []models.Project {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return projects
	}
	var out []models.Project
	for _, p := range projects {
		if matchesProject(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matchesProject(p models.Project, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// ProjectListView is the JSON form of ProjectList.
type ProjectListView struct {
	State
	Query    string        `json:"query,omitempty"`
	Total    int           `json:"total"`
	Projects []ProjectView `json:"projects"`
}

// View renders the controller.
func (l *ProjectList) View() ProjectListView {
	return ProjectListView{
		State:    l.State,
		Query:    l.Query,
		Total:    len(l.projects),
		Projects: presentProjects(l.Visible()),
	}
}

// UnknownOwner is shown when the owner's profile cannot be loaded.
const UnknownOwner = "Unknown"

// ProjectDetail shows one project and drives voting, joining and deletion.
type ProjectDetail struct {
	env Env
	id  models.ID

	State
	OwnerName string
	Deleted   bool
	project   *models.Project
	vote      models.VoteState
}

// NewProjectDetail creates the controller for project id.
func NewProjectDetail(env Env, id models.ID) *ProjectDetail {
	return &ProjectDetail{env: env, id: id, State: State{Status: StatusLoading}, vote: models.VoteNone}
}

// Load fetches the project and its owner's name. A failed owner lookup does
// not fail the view.
func (d *ProjectDetail) Load(ctx context.Context) error {
	d.begin()
	project, err := d.env.API.Projects.Get(ctx, d.id)
	if err != nil {
		d.fail(err)
		return err
	}
	d.project = &project
	d.OwnerName = d.lookupOwner(ctx, project.OwnerID)
	if u := d.env.Session.User(); u != nil {
		d.vote = d.env.Session.VoteState(ctx, u.ID, d.id)
	}
	d.ready()
	return nil
}

func (d *ProjectDetail) lookupOwner(ctx context.Context, ownerID models.ID) string {
	if ownerID.IsZero() {
		return UnknownOwner
	}
	owner, err := d.env.API.Users.Get(ctx, ownerID)
	if err != nil {
		log.Warn().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to fetch project owner")
		return UnknownOwner
	}
	if owner.Username == "" {
		return UnknownOwner
	}
	return owner.Username
}

// Project returns the loaded project, or nil.
func (d *ProjectDetail) Project() *models.Project {
	if d.project == nil {
		return nil
	}
	p := *d.project
	return &p
}

// VoteState returns the viewer's vote on the project.
func (d *ProjectDetail) VoteState() models.VoteState { return d.vote }

// IsOwner reports whether the viewer created the project.
func (d *ProjectDetail) IsOwner() bool {
	u := d.env.Session.User()
	return d.project != nil && u != nil && !u.ID.IsZero() && u.ID == d.project.OwnerID
}

// EligibleRoles is the intersection offered by the join form.
func (d *ProjectDetail) EligibleRoles() []string {
	if d.project == nil {
		return nil
	}
	return EligibleRoles(*d.project, d.env.Session.User())
}

// RequestSent reports whether the viewer already applied to this project.
func (d *ProjectDetail) RequestSent() bool {
	u := d.env.Session.User()
	if d.project == nil || u == nil {
		return false
	}
	return HasRequestFrom(d.project.Requests, u.ID)
}

// CanRequest reports whether the join form should be offered.
func (d *ProjectDetail) CanRequest() bool {
	return d.project != nil && !d.IsOwner() && !d.RequestSent() && len(d.EligibleRoles()) > 0
}

// Vote applies a click on the upvote or downvote button. Clicking the active
// direction again retracts the vote. When the backend says a vote is already
// recorded, the vote is removed and the state falls back to none. Local
// state only changes after the backend confirms.
func (d *ProjectDetail) Vote(ctx context.Context, direction models.VoteState) error {
	d.ActionError = ""
	if direction != models.VoteUpvoted && direction != models.VoteDownvoted {
		return d.actionFailed(invalid("Unknown vote direction"))
	}
	viewer, err := d.env.viewer()
	if err != nil {
		return err
	}
	if d.project == nil {
		return d.actionFailed(ErrNotLoaded)
	}

	if d.vote == direction {
		return d.retract(ctx, viewer.ID)
	}

	var updated models.Project
	if direction == models.VoteUpvoted {
		updated, err = d.env.API.Projects.Upvote(ctx, d.id, viewer.ID)
	} else {
		updated, err = d.env.API.Projects.Downvote(ctx, d.id, viewer.ID)
	}
	var conflict *services.VoteConflictError
	if errors.As(err, &conflict) {
		log.Debug().Str("project_id", d.id.String()).Str("existing", string(conflict.Existing)).Msg("Vote state out of sync; retracting")
		return d.retract(ctx, viewer.ID)
	}
	if err != nil {
		return d.actionFailed(err)
	}
	d.adopt(ctx, viewer.ID, updated, direction)
	return nil
}

func (d *ProjectDetail) retract(ctx context.Context, viewerID models.ID) error {
	updated, err := d.env.API.Projects.RemoveVote(ctx, d.id, viewerID)
	if err != nil {
		return d.actionFailed(err)
	}
	d.adopt(ctx, viewerID, updated, models.VoteNone)
	return nil
}

// adopt takes the backend's counts and records the new vote state. The
// request list is kept when the vote response leaves it out.
func (d *ProjectDetail) adopt(ctx context.Context, viewerID models.ID, updated models.Project, state models.VoteState) {
	if updated.ID.IsZero() {
		updated.ID = d.id
	}
	if updated.Requests == nil && d.project != nil {
		updated.Requests = d.project.Requests
	}
	d.project = &updated
	d.vote = state
	if err := d.env.Session.SetVoteState(ctx, viewerID, d.id, state); err != nil {
		log.Error().Err(err).Str("project_id", d.id.String()).Msg("Failed to persist vote state")
	}
}

// RequestJoin applies for role. The role must be one the viewer declared
// and the project is staffing; a second request is never sent.
func (d *ProjectDetail) RequestJoin(ctx context.Context, role, message string) error {
	d.ActionError = ""
	viewer, err := d.env.viewer()
	if err != nil {
		return err
	}
	if d.project == nil {
		return d.actionFailed(ErrNotLoaded)
	}
	if d.RequestSent() {
		return ErrAlreadyRequested
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return d.actionFailed(invalid("Please choose a role before sending your request."))
	}
	if !viewer.HasRole(role) {
		return d.actionFailed(invalid("You do not have the selected role in your profile. Please update your profile first."))
	}
	if !contains(d.EligibleRoles(), role) {
		return d.actionFailed(invalid("This project is not looking for that role."))
	}

	created, err := d.env.API.Requests.Create(ctx, d.id, role, strings.TrimSpace(message))
	if err != nil {
		return d.actionFailed(err)
	}
	if created.UserID.IsZero() {
		created.UserID = viewer.ID
	}
	d.project.Requests = append(d.project.Requests, created)
	return nil
}

// Delete removes the project. Only the owner may delete, and only once the
// deletion has been confirmed.
func (d *ProjectDetail) Delete(ctx context.Context, confirmed bool) error {
	d.ActionError = ""
	viewer, err := d.env.viewer()
	if err != nil {
		return err
	}
	if d.project == nil {
		return d.actionFailed(ErrNotLoaded)
	}
	if !d.IsOwner() {
		return d.actionFailed(ErrForbidden)
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := d.env.API.Projects.Delete(ctx, d.id); err != nil {
		return d.actionFailed(err)
	}
	d.Deleted = true
	if err := d.env.Session.SetVoteState(ctx, viewer.ID, d.id, models.VoteNone); err != nil {
		log.Error().Err(err).Str("project_id", d.id.String()).Msg("Failed to clear vote state")
	}
	return nil
}

// ProjectDetailView is the JSON form of ProjectDetail.
type ProjectDetailView struct {
	State
	Project       *ProjectView     `json:"project,omitempty"`
	OwnerName     string           `json:"ownerName,omitempty"`
	IsOwner       bool             `json:"isOwner"`
	Vote          models.VoteState `json:"vote"`
	EligibleRoles []string         `json:"eligibleRoles"`
	RequestSent   bool             `json:"requestSent"`
	CanRequest    bool             `json:"canRequest"`
	Deleted       bool             `json:"deleted,omitempty"`
}

// View renders the controller.
func (d *ProjectDetail) View() ProjectDetailView {
	v := ProjectDetailView{
		State:         d.State,
		OwnerName:     d.OwnerName,
		IsOwner:       d.IsOwner(),
		Vote:          d.vote,
		EligibleRoles: d.EligibleRoles(),
		RequestSent:   d.RequestSent(),
		CanRequest:    d.CanRequest(),
		Deleted:       d.Deleted,
	}
	if v.EligibleRoles == nil {
		v.EligibleRoles = []string{}
	}
	if d.project != nil {
		pv := presentProject(*d.project)
		v.Project = &pv
	}
	return v
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
