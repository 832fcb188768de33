package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Project statuses.
const (
	StatusOpen       = "open"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// MaxProjectTags is the most tags a project may carry.
const MaxProjectTags = 5

// ValidProjectStatus reports whether s is one of the known statuses.
func ValidProjectStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Project is an idea looking for teammates.
type Project struct {
	ID            ID            `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Status        string        `json:"status"`
	Tags          Tags          `json:"tags"`
	OwnerID       ID            `json:"ownerId"`
	RepoLink      string        `json:"repo_link,omitempty"`
	Upvotes       int           `json:"upvotes"`
	Downvotes     int           `json:"downvotes"`
	RequiredRoles []RoleNeed    `json:"members_roles"`
	Requests      []JoinRequest `json:"requests,omitempty"`
	CreatedAt     Timestamp     `json:"createdAt"`
	UpdatedAt     Timestamp     `json:"updatedAt"`
}

// RequiredRoleNames returns the role names the project is staffing, in order.
func (p Project) RequiredRoleNames() []string {
	names := make([]string, 0, len(p.RequiredRoles))
	for _, need := range p.RequiredRoles {
		names = append(names, need.Role)
	}
	return names
}

// RoleNeed is one staffing need of a project.
type RoleNeed struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// UnmarshalJSON accepts either a bare role name (count 1) or {role, count}.
func (n *RoleNeed) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var role string
		if err := json.Unmarshal(data, &role); err != nil {
			return err
		}
		*n = RoleNeed{Role: role, Count: 1}
		return nil
	}
	type plain RoleNeed
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Count < 1 {
		p.Count = 1
	}
	*n = RoleNeed(p)
	return nil
}

// Tags is an ordered list of project tags. The backend stores them as a
// comma-separated string but older rows come back as arrays.
type Tags []string

// UnmarshalJSON accepts a JSON array or a comma-separated string.
func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = ParseTags(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := make(Tags, 0, len(list))
	for _, tag := range list {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	*t = out
	return nil
}

// CommaTags is the outgoing form of Tags: written as one comma-joined string,
// which is what the backend's project endpoints accept.
type CommaTags []string

// MarshalJSON writes the comma-joined form, or null when empty.
func (t CommaTags) MarshalJSON() ([]byte, error) {
	if len(t) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(strings.Join(t, ","))
}

// ParseTags splits a comma-separated tag string, dropping blanks.
func ParseTags(s string) Tags {
	var out Tags
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ProjectInput is the payload for creating or updating a project.
type ProjectInput struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	Tags          CommaTags  `json:"tags"`
	OwnerID       ID         `json:"ownerId,omitempty"`
	RepoLink      string     `json:"repo_link,omitempty"`
	RequiredRoles []RoleNeed `json:"members_roles,omitempty"`
}
