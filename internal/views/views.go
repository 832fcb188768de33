// Package views holds the per-screen controllers of the web client. Each
// controller moves from loading to ready or failed and derives the state the
// browser renders from data it fetched itself. Nothing is cached across
// controllers; every navigation fetches again.
package views

import (
	"errors"

	"github.com/isdelr/teamup-web/internal/models"
	"github.com/isdelr/teamup-web/internal/services"
	"github.com/isdelr/teamup-web/internal/session"
)

var (
	// ErrAuthRequired means the action needs a signed-in viewer. No backend
	// call is made; the caller should send the browser to the login view.
	ErrAuthRequired = errors.New("please sign in to continue")

	// ErrConfirmationRequired guards destructive actions. It is returned
	// before the call, never after.
	ErrConfirmationRequired = errors.New("please confirm this action")

	// ErrForbidden means the viewer may not perform the action from this view.
	ErrForbidden = errors.New("you are not allowed to do that")

	// ErrUserNotFound is reported for any failed public profile lookup.
	ErrUserNotFound = errors.New("User not found")

	// ErrNotLoaded means an action was attempted before Load succeeded.
	ErrNotLoaded = errors.New("view is not loaded")

	// ErrAlreadyRequested means the viewer has applied to the project before.
	ErrAlreadyRequested = errors.New("You have already requested to join this project")
)

// InputError is a form validation failure caught before any backend call.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func invalid(msg string) error { return &InputError{Message: msg} }

// Status is the lifecycle of a view.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// State is embedded by every controller view.
type State struct {
	Status      Status `json:"status"`
	Error       string `json:"error,omitempty"`
	ActionError string `json:"actionError,omitempty"`
}

func (s *State) begin() {
	s.Status = StatusLoading
	s.Error = ""
}

func (s *State) ready() { s.Status = StatusReady }

func (s *State) fail(err error) {
	s.Status = StatusFailed
	s.Error = err.Error()
}

// actionFailed records a failed user action without failing the view.
func (s *State) actionFailed(err error) error {
	s.ActionError = err.Error()
	return err
}

// Notifier receives team-chat changes so live subscribers can be told.
type Notifier interface {
	Notify(projectID models.ID, action string, payload any)
}

// Env is what every controller works with: the viewer's session and the
// gateway clients bound to it.
type Env struct {
	Session  *session.Session
	API      *services.Client
	Notifier Notifier
}

// viewer returns the signed-in user or ErrAuthRequired.
func (e Env) viewer() (*models.User, error) {
	if e.Session == nil {
		return nil, ErrAuthRequired
	}
	u := e.Session.User()
	if u == nil || u.ID.IsZero() {
		return nil, ErrAuthRequired
	}
	return u, nil
}

func (e Env) notify(projectID models.ID, action string, payload any) {
	if e.Notifier != nil {
		e.Notifier.Notify(projectID, action, payload)
	}
}
