package models

// Join request statuses.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// JoinRequest is a user's application to fill a role on a project.
type JoinRequest struct {
	ID        ID        `json:"id"`
	ProjectID ID        `json:"project_id"`
	UserID    ID        `json:"user_id"`
	Role      string    `json:"role"`
	Message   string    `json:"message,omitempty"`
	Status    string    `json:"status"`
	CreatedAt Timestamp `json:"created_at"`

	// Populated on list endpoints that embed the related rows.
	Applicant *User       `json:"user,omitempty"`
	Project   *ProjectRef `json:"project,omitempty"`
}

// ProjectRef is the short project form embedded in request listings.
type ProjectRef struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
}

// Terminal reports whether the request has been answered.
func (r JoinRequest) Terminal() bool {
	return r.Status == RequestAccepted || r.Status == RequestRejected
}
