package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/sourcedit/internal/index"
	"github.com/MrSnakeDoc/sourcedit/internal/logger"
	redisstore "github.com/MrSnakeDoc/sourcedit/internal/store/redis"
)

const (
	// DefaultSessionIdleTTL is how long a session may stay untouched
	DefaultSessionIdleTTL = 2 * time.Hour
)

// SessionReaper drops edit sessions that have been idle past their TTL
type SessionReaper struct {
	store    *redisstore.Store
	index    *index.MemoryIndex
	logger   logger.Logger
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

// NewSessionReaper creates a new session reaper
func NewSessionReaper(
	store *redisstore.Store,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	ttl time.Duration,
) *SessionReaper {
	if ttl == 0 {
		ttl = DefaultSessionIdleTTL
	}

	return &SessionReaper{
		store:    store,
		index:    idx,
		logger:   log,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic reaping process
func (sr *SessionReaper) Start(ctx context.Context) error {
	sr.Reap(ctx)

	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sr.Reap(ctx)
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reaper
func (sr *SessionReaper) Stop() {
	close(sr.stopCh)
}

// Reap removes expired sessions and returns how many were dropped
func (sr *SessionReaper) Reap(ctx context.Context) int {
	now := sr.now()
	reaped := 0

	for _, session := range sr.index.GetAllSessions() {
		if !session.Expired(now, sr.ttl) {
			continue
		}

		// Delete from memory index
		sr.index.DeleteSession(session.ID)

		// Delete from Redis store (best effort)
		if sr.store != nil {
			if err := sr.store.DeleteSession(ctx, session.ID); err != nil {
				sr.logger.Warn("failed to delete session from redis",
					logger.String("session_id", session.ID),
					logger.Error(err))
			}
		}

		sr.logger.Info("reaped idle session",
			logger.String("session_id", session.ID),
			logger.String("source_id", session.SourceID),
			logger.String("idle_for", now.Sub(session.UpdatedAt).String()))

		reaped++
	}

	if reaped == 0 {
		sr.logger.Debug("no sessions to reap")
	}

	return reaped
}
