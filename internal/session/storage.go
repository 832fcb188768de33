package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Storage is the client-local persistent store behind a Session. A zero
// expiresAt means the value lives as long as the session itself.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiresAt time.Time) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// SQLStorage keeps one browser session's values in the session_values table.
type SQLStorage struct {
	db        *sql.DB
	sessionID string
	now       func() time.Time
}

// NewSQLStorage scopes the session_values table to a single session id.
func NewSQLStorage(db *sql.DB, sessionID string) *SQLStorage {
	return &SQLStorage{db: db, sessionID: sessionID, now: time.Now}
}

// Get returns the value for key, ignoring rows that have expired.
func (s *SQLStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_values
		 WHERE session_id = ? AND key = ? AND (expires_at IS NULL OR expires_at > ?)`,
		s.sessionID, key, s.now().Unix(),
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read session value %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the value for key.
func (s *SQLStorage) Set(ctx context.Context, key, value string, expiresAt time.Time) error {
	var expires sql.NullInt64
	if !expiresAt.IsZero() {
		expires = sql.NullInt64{Int64: expiresAt.Unix(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_values (session_id, key, value, expires_at, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(session_id, key) DO UPDATE SET
		   value = excluded.value, expires_at = excluded.expires_at, updated_at = CURRENT_TIMESTAMP`,
		s.sessionID, key, value, expires,
	)
	if err != nil {
		return fmt.Errorf("write session value %q: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error.
func (s *SQLStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_values WHERE session_id = ? AND key = ?`, s.sessionID, key); err != nil {
		return fmt.Errorf("delete session value %q: %w", key, err)
	}
	return nil
}

// Clear removes every value of the session.
func (s *SQLStorage) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_values WHERE session_id = ?`, s.sessionID); err != nil {
		return fmt.Errorf("clear session %s: %w", s.sessionID, err)
	}
	return nil
}

// PurgeExpired deletes rows whose expiry has passed, across all sessions.
func PurgeExpired(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM session_values WHERE expires_at IS NOT NULL AND expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("purge expired session values: %w", err)
	}
	return res.RowsAffected()
}

// MemoryStorage is a map-backed Storage for tests and single-process use.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]memoryValue
	now    func() time.Time
}

type memoryValue struct {
	value     string
	expiresAt time.Time
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]memoryValue), now: time.Now}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok || (!v.expiresAt.IsZero() && !v.expiresAt.After(m.now())) {
		return "", false, nil
	}
	return v.value, true, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = memoryValue{value: value, expiresAt: expiresAt}
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStorage) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]memoryValue)
	return nil
}
