// Package housekeeping runs background maintenance for the session store.
package housekeeping

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/isdelr/teamup-web/internal/session"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// checkInterval is how often the sweeper looks for a due run.
const checkInterval = time.Minute

// Sweeper deletes expired session rows on a cron schedule.
type Sweeper struct {
	db       *sql.DB
	schedule cron.Schedule
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once

	mu        sync.Mutex
	nextRunAt time.Time
}

// NewSweeper creates a sweeper for the standard cron expression expr.
func NewSweeper(db *sql.DB, expr string) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", expr, err)
	}
	return &Sweeper{
		db:        db,
		schedule:  schedule,
		done:      make(chan struct{}),
		nextRunAt: schedule.Next(time.Now()),
	}, nil
}

// Run starts the sweeper's ticking loop. It sweeps once immediately.
func (s *Sweeper) Run() {
	log.Info().Time("next_run_at", s.NextRunAt()).Msg("Starting session sweeper...")
	s.ticker = time.NewTicker(checkInterval)
	defer s.ticker.Stop()

	s.sweep(time.Now())

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping session sweeper.")
			return
		case now := <-s.ticker.C:
			s.RunDue(now)
		}
	}
}

// Stop halts the sweeper. It is safe to call more than once.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// NextRunAt returns when the next sweep is due.
func (s *Sweeper) NextRunAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}

// RunDue sweeps if the scheduled time has passed and reports whether it did.
func (s *Sweeper) RunDue(now time.Time) bool {
	s.mu.Lock()
	due := !now.Before(s.nextRunAt)
	if due {
		s.nextRunAt = s.schedule.Next(now)
	}
	s.mu.Unlock()

	if due {
		s.sweep(now)
	}
	return due
}

func (s *Sweeper) sweep(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := session.PurgeExpired(ctx, s.db, now)
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to purge expired sessions")
		return
	}
	if n > 0 {
		log.Info().Int64("rows", n).Msg("Sweeper: purged expired session values")
	}
}
