package session

import (
	"context"
	"sync"
	"time"

	"github.com/isdelr/teamup-web/internal/auth"
	"github.com/isdelr/teamup-web/internal/models"
	"github.com/rs/zerolog/log"
)

// TokenKey is the storage key holding the bearer token.
const TokenKey = "token"

const voteKeyPrefix = "vote:"

// ProfileFetcher loads the profile of the token's owner.
type ProfileFetcher interface {
	GetProfile(ctx context.Context) (models.User, error)
}

// Session holds the bearer token and the identity derived from it for one
// browser. It is created explicitly per request scope and handed to the
// gateway clients (as their token source and sink) and the view controllers.
type Session struct {
	ttl time.Duration

	mu      sync.RWMutex
	storage Storage
	user    *models.User
}

// New wraps storage. ttl bounds stored tokens that carry no exp claim; zero
// keeps them until sign-out.
func New(storage Storage, ttl time.Duration) *Session {
	return &Session{storage: storage, ttl: ttl}
}

func (s *Session) store() Storage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storage
}

// Rotate moves the session onto next, a fresh storage under a new session id.
// Only the token is carried over; everything else in the old storage,
// including recorded votes, is deleted.
func (s *Session) Rotate(ctx context.Context, next Storage) error {
	token, hasToken := s.Token(ctx)
	if err := s.store().Clear(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.storage = next
	s.mu.Unlock()
	if !hasToken {
		return nil
	}
	return s.SetToken(ctx, token)
}

// SetSession persists token and caches user. A nil user leaves the identity
// to be resolved by a later profile fetch.
func (s *Session) SetSession(ctx context.Context, token string, user *models.User) error {
	if err := s.SetToken(ctx, token); err != nil {
		return err
	}
	s.SetUser(user)
	return nil
}

// SetToken persists token. Expiry follows the token's exp claim when it has one.
func (s *Session) SetToken(ctx context.Context, token string) error {
	expiresAt, ok := auth.TokenExpiry(token)
	if !ok && s.ttl > 0 {
		expiresAt = time.Now().Add(s.ttl)
	}
	return s.store().Set(ctx, TokenKey, token, expiresAt)
}

// Token returns the stored token. Storage failures read as no token.
func (s *Session) Token(ctx context.Context) (string, bool) {
	token, ok, err := s.store().Get(ctx, TokenKey)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read session token")
		return "", false
	}
	return token, ok && token != ""
}

// User returns the cached identity, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SetUser replaces the cached identity.
func (s *Session) SetUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.user = nil
		return
	}
	u := *user
	s.user = &u
}

// Clear removes the token, the cached user and per-viewer vote state. It is
// safe to call on an already cleared session.
func (s *Session) Clear(ctx context.Context) error {
	s.SetUser(nil)
	return s.store().Clear(ctx)
}

// ResolveCurrentUser returns the signed-in user. Without a token it returns
// nil without calling the backend. A failed profile fetch also returns nil
// but leaves the token in place: a transient backend error does not sign the
// viewer out.
func (s *Session) ResolveCurrentUser(ctx context.Context, fetcher ProfileFetcher) *models.User {
	if _, ok := s.Token(ctx); !ok {
		return nil
	}
	user, err := fetcher.GetProfile(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Profile fetch failed; keeping session token")
		return nil
	}
	s.SetUser(&user)
	return s.User()
}

func voteKey(viewerID, projectID models.ID) string {
	return voteKeyPrefix + viewerID.String() + ":" + projectID.String()
}

// VoteState returns the vote viewerID has recorded on a project.
func (s *Session) VoteState(ctx context.Context, viewerID, projectID models.ID) models.VoteState {
	if viewerID.IsZero() {
		return models.VoteNone
	}
	v, ok, err := s.store().Get(ctx, voteKey(viewerID, projectID))
	if err != nil {
		log.Error().Err(err).Str("project_id", projectID.String()).Msg("Failed to read vote state")
		return models.VoteNone
	}
	if !ok {
		return models.VoteNone
	}
	return models.ParseVoteState(v)
}

// SetVoteState records viewerID's vote on a project.
func (s *Session) SetVoteState(ctx context.Context, viewerID, projectID models.ID, state models.VoteState) error {
	if viewerID.IsZero() {
		return nil
	}
	key := voteKey(viewerID, projectID)
	if state == models.VoteNone {
		return s.store().Delete(ctx, key)
	}
	return s.store().Set(ctx, key, string(state), time.Time{})
}
