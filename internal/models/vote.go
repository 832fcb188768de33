package models

// VoteState is a viewer's vote on one project. The states are mutually exclusive.
type VoteState string

const (
	VoteNone      VoteState = "none"
	VoteUpvoted   VoteState = "upvoted"
	VoteDownvoted VoteState = "downvoted"
)

// ParseVoteState maps stored text back to a state, defaulting to VoteNone.
func ParseVoteState(s string) VoteState {
	switch VoteState(s) {
	case VoteUpvoted:
		return VoteUpvoted
	case VoteDownvoted:
		return VoteDownvoted
	}
	return VoteNone
}
