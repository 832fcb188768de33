package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/isdelr/teamup-web/internal/services"
	"github.com/isdelr/teamup-web/internal/views"
	"github.com/rs/zerolog/log"
)

// LoginPath is where signed-out viewers are sent.
const LoginPath = "/login"

const maxBodyBytes = 1 << 20

// errNotJSON rejects bodies sent with any media type but application/json.
// Browsers only send that type cross-site after a CORS preflight.
var errNotJSON = errors.New("Request body must be application/json")

type errorBody struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// decodeJSON reads the request body into v. Malformed bodies are input errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		return errNotJSON
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &views.InputError{Message: "Invalid request body"}
	}
	return nil
}

// wantsHTML reports whether the caller is a browser navigation rather than
// the single-page app's fetch.
func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}

func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

// writeError maps controller and gateway errors to HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		inputErr   *views.InputError
		requestErr *services.RequestError
		networkErr *services.NetworkError
	)
	switch {
	case errors.Is(err, views.ErrAuthRequired):
		authRequired(w, r, err.Error())
	case errors.Is(err, errNotJSON):
		writeJSON(w, http.StatusUnsupportedMediaType, errorBody{Error: err.Error()})
	case errors.Is(err, views.ErrConfirmationRequired), errors.Is(err, views.ErrNotLoaded), errors.Is(err, views.ErrAlreadyRequested):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, views.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.Is(err, views.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.As(err, &inputErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: inputErr.Message})
	case errors.As(err, &requestErr):
		if requestErr.Status == http.StatusUnauthorized {
			authRequired(w, r, requestErr.Detail)
			return
		}
		writeJSON(w, requestErr.Status, errorBody{Error: requestErr.Detail})
	case errors.Is(err, context.Canceled):
		log.Debug().Str("path", r.URL.Path).Msg("Request cancelled by client")
	case errors.As(err, &networkErr):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Backend unreachable")
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "The collaboration service is unavailable. Please try again later."})
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled error")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func authRequired(w http.ResponseWriter, r *http.Request, msg string) {
	if wantsHTML(r) {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: msg, Redirect: LoginPath})
}
