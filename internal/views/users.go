package views

import (
	"context"
	"strings"

	"github.com/isdelr/teamup-web/internal/models"
	"github.com/rs/zerolog/log"
)

// UserProfile is a public user page.
type UserProfile struct {
	env Env
	id  models.ID

	State
	user *models.User
}

// NewUserProfile creates the controller for user id.
func NewUserProfile(env Env, id models.ID) *UserProfile {
	return &UserProfile{env: env, id: id, State: State{Status: StatusLoading}}
}

// Load fetches the user. Any failure reads as "User not found".
func (p *UserProfile) Load(ctx context.Context) error {
	p.begin()
	user, err := p.env.API.Users.Get(ctx, p.id)
	if err != nil || (user.ID.IsZero() && user.Username == "") {
		if err != nil {
			log.Debug().Err(err).Str("user_id", p.id.String()).Msg("User lookup failed")
		}
		p.fail(ErrUserNotFound)
		return ErrUserNotFound
	}
	p.user = &user
	p.ready()
	return nil
}

// UserProfileView is the JSON form of UserProfile.
type UserProfileView struct {
	State
	User *UserView `json:"user,omitempty"`
}

// View renders the controller. Email addresses are not shown on public pages.
func (p *UserProfile) View() UserProfileView {
	v := UserProfileView{State: p.State}
	if p.user != nil {
		uv := presentUser(*p.user)
		uv.Email = ""
		v.User = &uv
	}
	return v
}

// UserDirectory lists users, optionally filtered by role.
type UserDirectory struct {
	env Env

	State
	Role  string
	users []models.User
}

// NewUserDirectory creates the controller.
func NewUserDirectory(env Env) *UserDirectory {
	return &UserDirectory{env: env, State: State{Status: StatusLoading}}
}

// Load fetches every user.
func (d *UserDirectory) Load(ctx context.Context) error {
	d.begin()
	users, err := d.env.API.Users.List(ctx)
	if err != nil {
		d.fail(err)
		return err
	}
	d.users = users
	d.ready()
	return nil
}

// FilterRole keeps users who declared role, ignoring case. Empty keeps all.
func (d *UserDirectory) FilterRole(role string) {
	d.Role = strings.TrimSpace(role)
}

// UserDirectoryView is the JSON form of UserDirectory.
type UserDirectoryView struct {
	State
	Role  string     `json:"role,omitempty"`
	Users []UserView `json:"users"`
}

// View renders the controller.
func (d *UserDirectory) View() UserDirectoryView {
	v := UserDirectoryView{State: d.State, Role: d.Role, Users: []UserView{}}
	for _, u := range d.users {
		if d.Role != "" && !hasRoleFold(u, d.Role) {
			continue
		}
		uv := presentUser(u)
		uv.Email = ""
		v.Users = append(v.Users, uv)
	}
	return v
}

func hasRoleFold(u models.User, role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
