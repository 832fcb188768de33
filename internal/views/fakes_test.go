package views_test

import (
	"context"
	"errors"
	"time"

	"github.com/isdelr/teamup-web/internal/models"
	"github.com/isdelr/teamup-web/internal/services"
	"github.com/isdelr/teamup-web/internal/session"
	"github.com/isdelr/teamup-web/internal/views"
)

var errBackend = errors.New("backend down")

// fakeAuth stores the token the way the real client does.
type fakeAuth struct {
	sess       *session.Session
	loginRes   services.AuthResult
	profile    models.User
	profileErr error
	updated    *models.ProfileUpdate
	calls      []string
}

func (f *fakeAuth) Register(ctx context.Context, reg models.Registration) (services.AuthResult, error) {
	f.calls = append(f.calls, "register")
	if f.loginRes.Token != "" {
		f.sess.SetToken(ctx, f.loginRes.Token)
	}
	return f.loginRes, nil
}

func (f *fakeAuth) Login(ctx context.Context, creds models.Credentials) (services.AuthResult, error) {
	f.calls = append(f.calls, "login")
	if f.loginRes.Token != "" {
		f.sess.SetToken(ctx, f.loginRes.Token)
	}
	return f.loginRes, nil
}

func (f *fakeAuth) GetProfile(ctx context.Context) (models.User, error) {
	f.calls = append(f.calls, "profile")
	return f.profile, f.profileErr
}

func (f *fakeAuth) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (models.User, error) {
	f.calls = append(f.calls, "update")
	f.updated = &update
	u := f.profile
	u.Roles = update.Roles
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	return u, nil
}

// fakeProjects returns project, scripted per method.
type fakeProjects struct {
	project models.Project
	list    []models.Project
	getErr  error

	upvoteErr   error
	downvoteErr error
	removeErr   error

	calls   []string
	created *models.ProjectInput
}

func (f *fakeProjects) List(ctx context.Context) ([]models.Project, error) {
	f.calls = append(f.calls, "list")
	return f.list, nil
}

func (f *fakeProjects) Get(ctx context.Context, id models.ID) (models.Project, error) {
	f.calls = append(f.calls, "get")
	return f.project, f.getErr
}

func (f *fakeProjects) Create(ctx context.Context, in models.ProjectInput) (models.Project, error) {
	f.calls = append(f.calls, "create")
	f.created = &in
	return models.Project{ID: "99", Title: in.Title, OwnerID: in.OwnerID}, nil
}

func (f *fakeProjects) Update(ctx context.Context, id models.ID, in models.ProjectInput) (models.Project, error) {
	f.calls = append(f.calls, "update")
	p := f.project
	p.Title = in.Title
	return p, nil
}

func (f *fakeProjects) Delete(ctx context.Context, id models.ID) error {
	f.calls = append(f.calls, "delete")
	return nil
}

func (f *fakeProjects) Upvote(ctx context.Context, id, userID models.ID) (models.Project, error) {
	f.calls = append(f.calls, "upvote")
	if f.upvoteErr != nil {
		return models.Project{}, f.upvoteErr
	}
	p := f.project
	p.Upvotes++
	return p, nil
}

func (f *fakeProjects) Downvote(ctx context.Context, id, userID models.ID) (models.Project, error) {
	f.calls = append(f.calls, "downvote")
	if f.downvoteErr != nil {
		return models.Project{}, f.downvoteErr
	}
	p := f.project
	p.Downvotes++
	return p, nil
}

func (f *fakeProjects) RemoveVote(ctx context.Context, id, userID models.ID) (models.Project, error) {
	f.calls = append(f.calls, "removeVote")
	if f.removeErr != nil {
		return models.Project{}, f.removeErr
	}
	return f.project, nil
}

func (f *fakeProjects) ListMine(ctx context.Context) ([]models.Project, error) {
	f.calls = append(f.calls, "mine")
	return f.list, nil
}

func (f *fakeProjects) count(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

type fakeRequests struct {
	list  []models.JoinRequest
	calls []string
	last  struct{ role, message string }
}

func (f *fakeRequests) ListForProject(ctx context.Context, projectID models.ID) ([]models.JoinRequest, error) {
	f.calls = append(f.calls, "list")
	return f.list, nil
}

func (f *fakeRequests) Create(ctx context.Context, projectID models.ID, role, message string) (models.JoinRequest, error) {
	f.calls = append(f.calls, "create")
	f.last.role, f.last.message = role, message
	return models.JoinRequest{ID: "r1", ProjectID: projectID, Role: role, Status: models.RequestPending}, nil
}

func (f *fakeRequests) Respond(ctx context.Context, requestID models.ID, status, role string) (models.JoinRequest, error) {
	f.calls = append(f.calls, "respond")
	return models.JoinRequest{ID: requestID, Status: status}, nil
}

func (f *fakeRequests) ListMine(ctx context.Context) ([]models.JoinRequest, error) {
	f.calls = append(f.calls, "mine")
	return f.list, nil
}

type fakeTeam struct {
	members     []models.TeamMembership
	comments    []models.Comment
	commentsErr error
	calls       []string
}

func (f *fakeTeam) Members(ctx context.Context, projectID models.ID) ([]models.TeamMembership, error) {
	f.calls = append(f.calls, "members")
	return f.members, nil
}

func (f *fakeTeam) RemoveMember(ctx context.Context, projectID, userID models.ID) error {
	f.calls = append(f.calls, "remove")
	return nil
}

func (f *fakeTeam) Comments(ctx context.Context, projectID models.ID) ([]models.Comment, error) {
	f.calls = append(f.calls, "comments")
	return f.comments, f.commentsErr
}

func (f *fakeTeam) AddComment(ctx context.Context, projectID models.ID, content string) (models.Comment, error) {
	f.calls = append(f.calls, "add")
	return models.Comment{ID: "c9", ProjectID: projectID, Content: content}, nil
}

func (f *fakeTeam) DeleteComment(ctx context.Context, projectID, commentID models.ID) error {
	f.calls = append(f.calls, "deleteComment")
	return nil
}

type fakeUsers struct {
	users map[models.ID]models.User
	err   error
}

func (f *fakeUsers) Get(ctx context.Context, id models.ID) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return models.User{}, &services.RequestError{Status: 404, Detail: "Not found"}
	}
	return u, nil
}

func (f *fakeUsers) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type notification struct {
	projectID models.ID
	action    string
}

type recordingNotifier struct {
	sent []notification
}

func (n *recordingNotifier) Notify(projectID models.ID, action string, _ any) {
	n.sent = append(n.sent, notification{projectID, action})
}

type fixture struct {
	env      views.Env
	sess     *session.Session
	auth     *fakeAuth
	projects *fakeProjects
	requests *fakeRequests
	team     *fakeTeam
	users    *fakeUsers
	notifier *recordingNotifier
}

// newFixture builds an Env over fakes. A non-nil viewer is signed in.
func newFixture(viewer *models.User) *fixture {
	sess := session.New(session.NewMemoryStorage(), time.Hour)
	f := &fixture{
		sess:     sess,
		auth:     &fakeAuth{sess: sess},
		projects: &fakeProjects{},
		requests: &fakeRequests{},
		team:     &fakeTeam{},
		users:    &fakeUsers{users: map[models.ID]models.User{}},
		notifier: &recordingNotifier{},
	}
	if viewer != nil {
		sess.SetSession(context.Background(), "opaque-token", viewer)
	}
	f.env = views.Env{
		Session: sess,
		API: &services.Client{
			Auth:     f.auth,
			Projects: f.projects,
			Requests: f.requests,
			Team:     f.team,
			Users:    f.users,
		},
		Notifier: f.notifier,
	}
	return f
}
