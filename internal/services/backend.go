package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const maxBodyBytes = 1 << 20

// Credentials is where the gateway reads the bearer token from and where
// login and registration write a new one. *session.Session satisfies it.
type Credentials interface {
	Token(ctx context.Context) (string, bool)
	SetToken(ctx context.Context, token string) error
}

// Backend is the shared connection to the collaboration REST API.
type Backend struct {
	baseURL string
	client  *http.Client
}

// NewBackend creates a Backend rooted at baseURL (e.g. http://127.0.0.1:8000/api).
func NewBackend(baseURL string, timeout time.Duration) *Backend {
	return &Backend{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// NewBackendWithClient is NewBackend with a caller-supplied HTTP client.
func NewBackendWithClient(baseURL string, client *http.Client) *Backend {
	return &Backend{baseURL: baseURL, client: client}
}

// caller binds the Backend to one session's credentials.
type caller struct {
	backend *Backend
	creds   Credentials
}

// do performs one request. in is JSON-encoded when non-nil; out is decoded
// from a 2xx body when non-nil. fallback is the error message used when a
// failed response carries no usable detail. No retries.
func (c *caller) do(ctx context.Context, method, path string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.backend.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if token, ok := c.creds.Token(ctx); ok {
			(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
		}
	}

	start := time.Now()
	resp, err := c.backend.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("method", method).Str("path", path).Msg("Backend unreachable")
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &NetworkError{Op: "read " + method + " " + path, Err: err}
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := extractDetail(raw)
		if detail == "" {
			detail = fallback
		}
		return &RequestError{Status: resp.StatusCode, Detail: detail}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
