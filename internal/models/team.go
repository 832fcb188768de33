package models

// OwnerRole is the singular, immutable team role held by the project creator.
const OwnerRole = "Owner"

// TeamMembership is a confirmed assignment of a user to a project.
type TeamMembership struct {
	ProjectID ID     `json:"project_id"`
	UserID    ID     `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Role      string `json:"role"`
}

// Comment is a message in a project's team chat.
type Comment struct {
	ID        ID        `json:"id"`
	ProjectID ID        `json:"project_id"`
	UserID    ID        `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
}
