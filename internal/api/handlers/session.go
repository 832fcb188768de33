package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/isdelr/teamup-web/internal/auth"
	"github.com/isdelr/teamup-web/internal/services"
	"github.com/isdelr/teamup-web/internal/session"
	"github.com/isdelr/teamup-web/internal/views"
	"github.com/rs/zerolog/log"
)

type contextKey string

const envKey contextKey = "env"

// StorageFactory returns the value store of one browser session.
type StorageFactory func(sessionID string) session.Storage

// SessionLoader builds the per-request view environment: it reads (or mints)
// the browser's session cookie, opens that session's storage and binds the
// backend clients to it.
type SessionLoader struct {
	cookies  *auth.CookieManager
	storage  StorageFactory
	backend  *services.Backend
	ttl      time.Duration
	notifier views.Notifier
}

// NewSessionLoader creates a new SessionLoader.
func NewSessionLoader(cookies *auth.CookieManager, storage StorageFactory, backend *services.Backend, ttl time.Duration, notifier views.Notifier) *SessionLoader {
	return &SessionLoader{cookies: cookies, storage: storage, backend: backend, ttl: ttl, notifier: notifier}
}

// Middleware resolves the signed-in user, if any, and stores the Env in the
// request context.
func (l *SessionLoader) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, err := l.cookies.SessionID(w, r)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load session cookie")
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to load session"})
			return
		}

		sess := session.New(l.storage(sid), l.ttl)
		env := views.Env{
			Session:  sess,
			API:      services.NewClient(l.backend, sess),
			Notifier: l.notifier,
		}
		sess.ResolveCurrentUser(r.Context(), env.API.Auth)

		ctx := context.WithValue(r.Context(), envKey, env)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Rotate moves the request's session to a new id, keeping only the token.
// Sign-in and registration call it so a session id seen before sign-in is
// never reused after, and nothing recorded under a previous identity
// carries over.
func (l *SessionLoader) Rotate(w http.ResponseWriter, r *http.Request) error {
	env := envFrom(r)
	if env.Session == nil {
		return nil
	}
	sid, err := l.cookies.Rotate(w, r)
	if err != nil {
		return err
	}
	return env.Session.Rotate(r.Context(), l.storage(sid))
}

// envFrom returns the Env stored by SessionLoader.Middleware.
func envFrom(r *http.Request) views.Env {
	env, _ := r.Context().Value(envKey).(views.Env)
	return env
}
