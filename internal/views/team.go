package views

import (
	"context"
	"strings"

	"github.com/isdelr/teamup-web/internal/models"
	"github.com/rs/zerolog/log"
)

// Team chat actions pushed to live subscribers.
const (
	ActionCommentAdded   = "comment_added"
	ActionCommentDeleted = "comment_deleted"
	ActionMemberRemoved  = "member_removed"
)

// MaxCommentLength bounds a single team-chat message.
const MaxCommentLength = 2000

// Team is the project's team page: members and the team chat.
type Team struct {
	env       Env
	projectID models.ID

	State
	members  []models.TeamMembership
	comments []models.Comment
}

// NewTeam creates the controller for one project.
func NewTeam(env Env, projectID models.ID) *Team {
	return &Team{env: env, projectID: projectID, State: State{Status: StatusLoading}}
}

// Load fetches members and comments. Members are required; a failed comment
// fetch leaves the chat empty and is reported as an action error.
func (t *Team) Load(ctx context.Context) error {
	if _, err := t.env.viewer(); err != nil {
		return err
	}
	t.begin()
	members, err := t.env.API.Team.Members(ctx, t.projectID)
	if err != nil {
		t.fail(err)
		return err
	}
	t.members = members

	comments, err := t.env.API.Team.Comments(ctx, t.projectID)
	if err != nil {
		log.Warn().Err(err).Str("project_id", t.projectID.String()).Msg("Failed to fetch team comments")
		t.ActionError = err.Error()
		comments = nil
	}
	t.comments = comments
	t.ready()
	return nil
}

func (t *Team) viewerID() models.ID {
	if u := t.env.Session.User(); u != nil {
		return u.ID
	}
	return ""
}

// IsOwner reports whether the viewer holds the Owner row of this team.
func (t *Team) IsOwner() bool {
	return IsTeamOwner(t.members, t.viewerID())
}

// IsMember reports whether the viewer is on the team.
func (t *Team) IsMember() bool {
	id := t.viewerID()
	if id.IsZero() {
		return false
	}
	for _, m := range t.members {
		if m.UserID == id {
			return true
		}
	}
	return false
}

// CanRemove reports whether the viewer may remove target.
func (t *Team) CanRemove(target models.TeamMembership) bool {
	return CanRemoveMember(t.members, t.viewerID(), target)
}

// RemoveMember removes userID from the team after confirmation.
func (t *Team) RemoveMember(ctx context.Context, userID models.ID, confirmed bool) error {
	t.ActionError = ""
	if _, err := t.env.viewer(); err != nil {
		return err
	}
	idx := -1
	for i, m := range t.members {
		if m.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return t.actionFailed(invalid("That user is not on this team"))
	}
	if !t.CanRemove(t.members[idx]) {
		return t.actionFailed(ErrForbidden)
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := t.env.API.Team.RemoveMember(ctx, t.projectID, userID); err != nil {
		return t.actionFailed(err)
	}
	t.members = append(t.members[:idx:idx], t.members[idx+1:]...)
	t.env.notify(t.projectID, ActionMemberRemoved, map[string]models.ID{"userId": userID})
	return nil
}

// AddComment posts to the team chat.
func (t *Team) AddComment(ctx context.Context, content string) (CommentView, error) {
	t.ActionError = ""
	viewer, err := t.env.viewer()
	if err != nil {
		return CommentView{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return CommentView{}, t.actionFailed(invalid("Comment cannot be empty"))
	}
	if len(content) > MaxCommentLength {
		return CommentView{}, t.actionFailed(invalid("Comment is too long"))
	}
	comment, err := t.env.API.Team.AddComment(ctx, t.projectID, content)
	if err != nil {
		return CommentView{}, t.actionFailed(err)
	}
	if comment.UserID.IsZero() {
		comment.UserID = viewer.ID
	}
	if comment.Username == "" {
		comment.Username = viewer.Username
	}
	t.comments = append(t.comments, comment)

	// Subscribers decide deletability against their own identity.
	t.env.notify(t.projectID, ActionCommentAdded, presentComment(comment, false))
	return presentComment(comment, true), nil
}

// DeleteComment removes a comment the viewer wrote, or any comment when the
// viewer owns the team.
func (t *Team) DeleteComment(ctx context.Context, commentID models.ID) error {
	t.ActionError = ""
	if _, err := t.env.viewer(); err != nil {
		return err
	}
	idx := -1
	for i, c := range t.comments {
		if c.ID == commentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return t.actionFailed(invalid("Comment not found"))
	}
	if !CanDeleteComment(t.members, t.viewerID(), t.comments[idx]) {
		return t.actionFailed(ErrForbidden)
	}
	if err := t.env.API.Team.DeleteComment(ctx, t.projectID, commentID); err != nil {
		return t.actionFailed(err)
	}
	t.comments = append(t.comments[:idx:idx], t.comments[idx+1:]...)
	t.env.notify(t.projectID, ActionCommentDeleted, map[string]models.ID{"id": commentID})
	return nil
}

// MemberView is one team row.
type MemberView struct {
	UserID    models.ID `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Role      string    `json:"role"`
	CanRemove bool      `json:"canRemove"`
}

// TeamView is the JSON form of Team.
type TeamView struct {
	State
	IsOwner  bool          `json:"isOwner"`
	Members  []MemberView  `json:"members"`
	Comments []CommentView `json:"comments"`
}

// View renders the controller.
func (t *Team) View() TeamView {
	viewerID := t.viewerID()
	v := TeamView{
		State:    t.State,
		IsOwner:  t.IsOwner(),
		Members:  make([]MemberView, 0, len(t.members)),
		Comments: make([]CommentView, 0, len(t.comments)),
	}
	for _, m := range t.members {
		v.Members = append(v.Members, MemberView{
			UserID:    m.UserID,
			Username:  m.Username,
			Role:      m.Role,
			CanRemove: CanRemoveMember(t.members, viewerID, m),
		})
	}
	for _, c := range t.comments {
		v.Comments = append(v.Comments, presentComment(c, CanDeleteComment(t.members, viewerID, c)))
	}
	return v
}
