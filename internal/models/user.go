package models

import "encoding/json"

// MaxUserRoles is the most roles a profile may declare.
const MaxUserRoles = 3

// User represents a platform account as returned by the backend.
type User struct {
	ID            ID       `json:"id"`
	Username      string   `json:"username"`
	Email         string   `json:"email"`
	Bio           string   `json:"bio,omitempty"`
	GithubProfile string   `json:"github_profile,omitempty"`
	Roles         []string `json:"roles"`
}

// HasRole reports whether the user declared the given role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UnmarshalJSON folds the legacy identifier keys (user_id, userId) into ID and
// the legacy single "role" field into Roles.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var wire struct {
		plain
		UserID      ID     `json:"user_id"`
		UserIDCamel ID     `json:"userId"`
		Role        string `json:"role"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*u = User(wire.plain)
	if u.ID.IsZero() {
		u.ID = wire.UserID
	}
	if u.ID.IsZero() {
		u.ID = wire.UserIDCamel
	}
	if len(u.Roles) == 0 && wire.Role != "" {
		u.Roles = []string{wire.Role}
	}
	return nil
}

// Registration is the payload for creating an account.
type Registration struct {
	Username      string   `json:"username"`
	Email         string   `json:"email"`
	Password      string   `json:"password"`
	Roles         []string `json:"roles"`
	Bio           string   `json:"bio,omitempty"`
	GithubProfile string   `json:"github_profile,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Roles         []string `json:"roles"`
	Bio           *string  `json:"bio,omitempty"`
	GithubProfile *string  `json:"github_profile,omitempty"`
}
