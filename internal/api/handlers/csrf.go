package handlers

import (
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/rs/zerolog/log"
)

// CSRFHeader carries the CSRF token: set on every response, expected back on
// every POST, PUT and DELETE.
const CSRFHeader = "X-CSRF-Token"

// ExposeCSRFToken publishes the request's CSRF token so the single-page app
// can echo it on its next unsafe call.
func ExposeCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(CSRFHeader, csrf.Token(r))
		next.ServeHTTP(w, r)
	})
}

// CSRFFailure answers requests rejected by the CSRF check.
func CSRFFailure(w http.ResponseWriter, r *http.Request) {
	log.Warn().Err(csrf.FailureReason(r)).Str("path", r.URL.Path).Str("origin", r.Header.Get("Origin")).Msg("CSRF check failed")
	writeJSON(w, http.StatusForbidden, errorBody{Error: "Your session could not be verified. Please reload the page and try again."})
}
