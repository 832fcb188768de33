package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/hkdf"
)

const sessionIDKey = "sid"

// CookieManager maps a browser to a server-side session id through a signed
// and encrypted cookie. The session values themselves live in storage.
type CookieManager struct {
	store *sessions.CookieStore
	name  string
}

// NewCookieManager builds the cookie store. The hash and block keys are
// derived from one secret with HKDF so operators only manage SESSION_SECRET.
func NewCookieManager(secret, name string, maxAge time.Duration, secure bool) (*CookieManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is empty; provide ≥32 random chars")
	}
	if len(secret) < 32 {
		log.Warn().Int("length", len(secret)).Msg("session secret is short; 32+ chars recommended")
	}

	hashKey, err := deriveKey(secret, "teamup-cookie-hash", 64)
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(secret, "teamup-cookie-block", 32)
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	// Secure cookies may be sent cross-site to the SPA origin; plain-http dev uses Lax.
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	} else {
		store.Options.SameSite = http.SameSiteLaxMode
	}

	return &CookieManager{store: store, name: name}, nil
}

// Name returns the cookie name.
func (m *CookieManager) Name() string { return m.name }

// SessionID returns the browser's session id. When the cookie is missing or
// cannot be decoded a fresh id is minted and the cookie is written to w, so
// callers must invoke it before the response body is written.
func (m *CookieManager) SessionID(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		var scErr securecookie.Error
		if !errors.As(err, &scErr) || !scErr.IsDecode() {
			return "", fmt.Errorf("load session cookie: %w", err)
		}
		// Stale or tampered cookie (e.g. rotated secret): start over.
		log.Debug().Err(err).Msg("discarding undecodable session cookie")
	}

	if id, ok := sess.Values[sessionIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.New().String()
	sess.Values[sessionIDKey] = id
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("save session cookie: %w", err)
	}
	return id, nil
}

// Rotate replaces the browser's session id with a fresh one and rewrites the
// cookie. Call it whenever the signed-in identity changes.
func (m *CookieManager) Rotate(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		var scErr securecookie.Error
		if !errors.As(err, &scErr) || !scErr.IsDecode() {
			return "", fmt.Errorf("load session cookie: %w", err)
		}
	}
	id := uuid.New().String()
	sess.Values[sessionIDKey] = id
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("save session cookie: %w", err)
	}
	return id, nil
}

// DeriveCSRFKey returns the 32-byte CSRF authentication key for secret.
func DeriveCSRFKey(secret string) ([]byte, error) {
	return deriveKey(secret, "teamup-csrf", 32)
}

// Expire deletes the browser cookie.
func (m *CookieManager) Expire(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func deriveKey(secret, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}
