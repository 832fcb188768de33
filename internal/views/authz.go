package views

import "github.com/isdelr/teamup-web/internal/models"

// These predicates decide what the views offer. They are display rules only;
// the backend remains the authority for every action.

// EligibleRoles returns the viewer's roles that the project is staffing, in
// the viewer's order. Join requests are only offered for these roles.
func EligibleRoles(project models.Project, viewer *models.User) []string {
	if viewer == nil {
		return nil
	}
	required := make(map[string]struct{}, len(project.RequiredRoles))
	for _, need := range project.RequiredRoles {
		required[need.Role] = struct{}{}
	}
	var eligible []string
	seen := make(map[string]struct{})
	for _, role := range viewer.Roles {
		if _, ok := required[role]; !ok {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		eligible = append(eligible, role)
	}
	return eligible
}

// HasRequestFrom reports whether userID already applied in requests.
func HasRequestFrom(requests []models.JoinRequest, userID models.ID) bool {
	if userID.IsZero() {
		return false
	}
	for _, r := range requests {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// IsTeamOwner derives ownership from membership rows: the viewer owns the
// team iff some row pairs their id with the Owner role.
func IsTeamOwner(team []models.TeamMembership, viewerID models.ID) bool {
	if viewerID.IsZero() {
		return false
	}
	for _, m := range team {
		if m.UserID == viewerID && m.Role == models.OwnerRole {
			return true
		}
	}
	return false
}

// CanRemoveMember reports whether the viewer may remove target. The Owner
// row can never be removed, whoever asks.
func CanRemoveMember(team []models.TeamMembership, viewerID models.ID, target models.TeamMembership) bool {
	if target.Role == models.OwnerRole {
		return false
	}
	return IsTeamOwner(team, viewerID)
}

// CanDeleteComment reports whether the viewer authored the comment or owns the team.
func CanDeleteComment(team []models.TeamMembership, viewerID models.ID, comment models.Comment) bool {
	if viewerID.IsZero() {
		return false
	}
	return comment.UserID == viewerID || IsTeamOwner(team, viewerID)
}
