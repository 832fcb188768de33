package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/isdelr/teamup-web/internal/models"
)

// HomeView is what "/" renders: the landing page for visitors, a greeting
// for signed-in users.
type HomeView struct {
	State
	Landing  bool      `json:"landing"`
	Greeting string    `json:"greeting,omitempty"`
	User     *UserView `json:"user,omitempty"`
}

// Home builds the root view from the session identity.
func Home(env Env) HomeView {
	v := HomeView{State: State{Status: StatusReady}}
	u, err := env.viewer()
	if err != nil {
		v.Landing = true
		return v
	}
	return v.WithUser(u)
}

// WithUser returns the home view for user, who just signed in.
func (v HomeView) WithUser(user *models.User) HomeView {
	if user == nil {
		return v
	}
	uv := presentUser(*user)
	v.Landing = false
	v.User = &uv
	v.Greeting = fmt.Sprintf("Welcome back, %s", uv.Username)
	return v
}

// Login signs in and establishes the session. When the login response has
// no user, the identity is resolved through a profile fetch.
func Login(ctx context.Context, env Env, creds models.Credentials) (*models.User, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return nil, invalid("Username and password are required")
	}

	result, err := env.API.Auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return establish(ctx, env, result.Token, result.User, "Login failed")
}

// RegisterForm is the sign-up form as submitted.
type RegisterForm struct {
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	PasswordConfirm string   `json:"passwordConf"`
	Roles           []string `json:"roles"`
	Bio             string   `json:"bio"`
	GithubProfile   string   `json:"githubProfile"`
}

// Validate checks the form before it is sent.
func (f RegisterForm) Validate() error {
	switch {
	case strings.TrimSpace(f.Username) == "":
		return invalid("Username is required")
	case strings.TrimSpace(f.Email) == "":
		return invalid("Email is required")
	case f.Password == "":
		return invalid("Password is required")
	case f.Password != f.PasswordConfirm:
		return invalid("Passwords do not match")
	}
	_, err := normalizeRoles(f.Roles)
	return err
}

// Register creates the account and signs the viewer in with the issued token.
func Register(ctx context.Context, env Env, form RegisterForm) (*models.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	roles, _ := normalizeRoles(form.Roles)

	result, err := env.API.Auth.Register(ctx, models.Registration{
		Username:      strings.TrimSpace(form.Username),
		Email:         strings.TrimSpace(form.Email),
		Password:      form.Password,
		Roles:         roles,
		Bio:           strings.TrimSpace(form.Bio),
		GithubProfile: strings.TrimSpace(form.GithubProfile),
	})
	if err != nil {
		return nil, err
	}
	return establish(ctx, env, result.Token, result.User, "Registration failed")
}

// establish caches the identity after the gateway stored the token.
func establish(ctx context.Context, env Env, token string, user *models.User, failure string) (*models.User, error) {
	if token == "" {
		if _, ok := env.Session.Token(ctx); !ok {
			return nil, fmt.Errorf("%s: no token was issued", failure)
		}
	}
	if user != nil && !user.ID.IsZero() {
		env.Session.SetUser(user)
		return env.Session.User(), nil
	}
	if u := env.Session.ResolveCurrentUser(ctx, env.API.Auth); u != nil {
		return u, nil
	}
	if user != nil {
		env.Session.SetUser(user)
		return env.Session.User(), nil
	}
	return nil, fmt.Errorf("%s: could not load your profile", failure)
}

// Logout clears the session. Calling it twice is harmless.
func Logout(ctx context.Context, env Env) error {
	return env.Session.Clear(ctx)
}

// normalizeRoles trims, de-duplicates and bounds the declared roles.
func normalizeRoles(roles []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, invalid("Choose at least one role")
	}
	if len(out) > models.MaxUserRoles {
		return nil, invalid(fmt.Sprintf("Choose at most %d roles", models.MaxUserRoles))
	}
	return out, nil
}

// Profile is the viewer's own profile screen.
type Profile struct {
	env Env

	State
	Message string
	user    *models.User
}

// NewProfile creates the controller.
func NewProfile(env Env) *Profile {
	return &Profile{env: env, State: State{Status: StatusLoading}}
}

// Load uses the session identity, resolving it when only a token is held.
func (p *Profile) Load(ctx context.Context) error {
	p.begin()
	u := p.env.Session.User()
	if u == nil {
		u = p.env.Session.ResolveCurrentUser(ctx, p.env.API.Auth)
	}
	if u == nil {
		p.fail(ErrAuthRequired)
		return ErrAuthRequired
	}
	p.user = u
	p.ready()
	return nil
}

// ProfileForm is the editable part of the profile.
type ProfileForm struct {
	Roles         []string `json:"roles"`
	Bio           *string  `json:"bio"`
	GithubProfile *string  `json:"githubProfile"`
}

// Update saves the profile and refreshes the session identity.
func (p *Profile) Update(ctx context.Context, form ProfileForm) error {
	p.Message = ""
	p.ActionError = ""
	if _, ok := p.env.Session.Token(ctx); !ok {
		return p.actionFailed(ErrAuthRequired)
	}
	roles, err := normalizeRoles(form.Roles)
	if err != nil {
		return p.actionFailed(err)
	}
	updated, err := p.env.API.Auth.UpdateProfile(ctx, models.ProfileUpdate{
		Roles:         roles,
		Bio:           trimPtr(form.Bio),
		GithubProfile: trimPtr(form.GithubProfile),
	})
	if err != nil {
		return p.actionFailed(err)
	}
	p.env.Session.SetUser(&updated)
	p.user = p.env.Session.User()
	p.Message = "Profile updated successfully!"
	return nil
}

// ProfileView is the JSON form of Profile.
type ProfileView struct {
	State
	Message string    `json:"message,omitempty"`
	User    *UserView `json:"user,omitempty"`
}

// View renders the controller.
func (p *Profile) View() ProfileView {
	v := ProfileView{State: p.State, Message: p.Message}
	if p.user != nil {
		uv := presentUser(*p.user)
		v.User = &uv
	}
	return v
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
