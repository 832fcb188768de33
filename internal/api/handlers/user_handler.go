package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/teamup-web/internal/auth"
	"github.com/isdelr/teamup-web/internal/models"
	"github.com/isdelr/teamup-web/internal/views"
	"github.com/rs/zerolog/log"
)

// UserHandler handles sign-in, the viewer's profile and public user pages.
type UserHandler struct {
	cookies  *auth.CookieManager
	sessions *SessionLoader
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(cookies *auth.CookieManager, sessions *SessionLoader) *UserHandler {
	return &UserHandler{cookies: cookies, sessions: sessions}
}

func (h *UserHandler) rotate(w http.ResponseWriter, r *http.Request) bool {
	if err := h.sessions.Rotate(w, r); err != nil {
		log.Error().Err(err).Msg("Failed to rotate session")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to start session"})
		return false
	}
	return true
}

// Home serves "/": the landing view without a session user, home with one.
func (h *UserHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views.Home(envFrom(r)))
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var form views.RegisterForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := views.Register(r.Context(), envFrom(r), form)
	if err != nil {
		log.Warn().Err(err).Str("username", form.Username).Msg("Registration failed")
		writeError(w, r, err)
		return
	}
	if !h.rotate(w, r) {
		return
	}
	writeJSON(w, http.StatusCreated, views.Home(envFrom(r)).WithUser(user))
}

// Login handles user authentication.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := views.Login(r.Context(), envFrom(r), creds)
	if err != nil {
		log.Warn().Err(err).Str("username", creds.Username).Msg("Failed authentication attempt")
		writeError(w, r, err)
		return
	}
	if !h.rotate(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, views.Home(envFrom(r)).WithUser(user))
}

// Logout clears the session and the browser cookie.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := views.Logout(r.Context(), envFrom(r)); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.cookies.Expire(w, r); err != nil {
		log.Error().Err(err).Msg("Failed to expire session cookie")
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile returns the viewer's own profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p := views.NewProfile(envFrom(r))
	if err := p.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

// UpdateProfile saves roles, bio and GitHub profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var form views.ProfileForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	p := views.NewProfile(envFrom(r))
	if err := p.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	if err := p.Update(r.Context(), form); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

// List returns the user directory, optionally filtered by ?role=.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	d := views.NewUserDirectory(envFrom(r))
	if err := d.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	d.FilterRole(r.URL.Query().Get("role"))
	writeJSON(w, http.StatusOK, d.View())
}

// Get returns a public profile.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := views.NewUserProfile(envFrom(r), models.ID(chi.URLParam(r, "id")))
	if err := p.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}
