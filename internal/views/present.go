package views

import (
	"github.com/isdelr/teamup-web/internal/models"
	"github.com/isdelr/teamup-web/internal/sanitize"
)

// ProjectView is a project as handed to the browser. Plain-text fields are
// sent as entered; DescriptionHTML is the description cleaned for rendering
// as markup.
type ProjectView struct {
	ID              models.ID         `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	DescriptionHTML string            `json:"descriptionHtml"`
	Status          string            `json:"status"`
	Tags            []string          `json:"tags"`
	OwnerID         models.ID         `json:"ownerId"`
	RepoLink        string            `json:"repoLink,omitempty"`
	Upvotes         int               `json:"upvotes"`
	Downvotes       int               `json:"downvotes"`
	RequiredRoles   []models.RoleNeed `json:"requiredRoles"`
	CreatedAt       models.Timestamp  `json:"createdAt"`
	UpdatedAt       models.Timestamp  `json:"updatedAt"`
}

func presentProject(p models.Project) ProjectView {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	roles := p.RequiredRoles
	if roles == nil {
		roles = []models.RoleNeed{}
	}
	return ProjectView{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		DescriptionHTML: sanitize.HTML(p.Description),
		Status:          p.Status,
		Tags:            tags,
		OwnerID:         p.OwnerID,
		RepoLink:        sanitize.URL(p.RepoLink),
		Upvotes:         p.Upvotes,
		Downvotes:       p.Downvotes,
		RequiredRoles:   roles,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func presentProjects(ps []models.Project) []ProjectView {
	out := make([]ProjectView, 0, len(ps))
	for _, p := range ps {
		out = append(out, presentProject(p))
	}
	return out
}

// UserView is a public profile.
type UserView struct {
	ID            models.ID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	BioHTML       string    `json:"bioHtml,omitempty"`
	GithubProfile string    `json:"githubProfile,omitempty"`
	Roles         []string  `json:"roles"`
}

func presentUser(u models.User) UserView {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserView{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Bio:           u.Bio,
		BioHTML:       sanitize.HTML(u.Bio),
		GithubProfile: sanitize.URL(u.GithubProfile),
		Roles:         roles,
	}
}

// CommentView is a team-chat message.
type CommentView struct {
	ID          models.ID        `json:"id"`
	UserID      models.ID        `json:"userId"`
	Username    string           `json:"username,omitempty"`
	Content     string           `json:"content"`
	ContentHTML string           `json:"contentHtml"`
	CreatedAt   models.Timestamp `json:"createdAt"`
	CanDelete   bool             `json:"canDelete"`
}

func presentComment(c models.Comment, canDelete bool) CommentView {
	return CommentView{
		ID:          c.ID,
		UserID:      c.UserID,
		Username:    c.Username,
		Content:     c.Content,
		ContentHTML: sanitize.HTML(c.Content),
		CreatedAt:   c.CreatedAt,
		CanDelete:   canDelete,
	}
}
