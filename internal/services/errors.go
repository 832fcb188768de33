package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/teamup-web/internal/models"
)

// RequestError is a non-2xx backend response.
type RequestError struct {
	Status int
	Detail string
}

func (e *RequestError) Error() string { return e.Detail }

// NetworkError is a call that never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

// VoteConflictError reports that the backend already holds a vote from the
// viewer in the given direction, i.e. local vote state went stale.
type VoteConflictError struct {
	Existing models.VoteState
	Err      *RequestError
}

func (e *VoteConflictError) Error() string { return e.Err.Error() }

func (e *VoteConflictError) Unwrap() error { return e.Err }

// ValidationIssue is one field-level error in a 422 body.
type ValidationIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// Field returns the last location element, which names the offending field.
func (v ValidationIssue) Field() string {
	if len(v.Loc) == 0 {
		return ""
	}
	switch last := v.Loc[len(v.Loc)-1].(type) {
	case string:
		return last
	case float64:
		return fmt.Sprintf("%g", last)
	default:
		return fmt.Sprint(last)
	}
}

// FlattenValidation renders issues as "field: message" joined by commas.
func FlattenValidation(issues []ValidationIssue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		if field := issue.Field(); field != "" {
			parts = append(parts, field+": "+issue.Msg)
		} else {
			parts = append(parts, issue.Msg)
		}
	}
	return strings.Join(parts, ", ")
}

// extractDetail reads the "detail" field of an error body. It understands a
// plain string and a list of validation issues; anything else yields "".
func extractDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var issues []ValidationIssue
	if err := json.Unmarshal(envelope.Detail, &issues); err == nil {
		return FlattenValidation(issues)
	}
	return ""
}

// asVoteConflict turns the backend's "already upvoted/downvoted" rejection
// into a VoteConflictError. This is the only place the detail text is inspected.
func asVoteConflict(err error) error {
	var re *RequestError
	if !errors.As(err, &re) || re.Status < 400 || re.Status >= 500 {
		return err
	}
	detail := strings.ToLower(re.Detail)
	switch {
	case strings.Contains(detail, "already upvoted"):
		return &VoteConflictError{Existing: models.VoteUpvoted, Err: re}
	case strings.Contains(detail, "already downvoted"):
		return &VoteConflictError{Existing: models.VoteDownvoted, Err: re}
	}
	return err
}
