package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/sourcedit/internal/domain"
	"github.com/MrSnakeDoc/sourcedit/internal/index"
	"github.com/MrSnakeDoc/sourcedit/internal/logger"
)

// SessionLister is the part of the Redis store the syncer reads from.
type SessionLister interface {
	GetAllSessions(ctx context.Context) ([]domain.EditSession, error)
}

// SessionSyncer loads sessions persisted in Redis into the memory index on startup
type SessionSyncer struct {
	store  SessionLister
	index  *index.MemoryIndex
	logger logger.Logger
}

// NewSessionSyncer creates a new session syncer
func NewSessionSyncer(
	store SessionLister,
	idx *index.MemoryIndex,
	log logger.Logger,
) *SessionSyncer {
	return &SessionSyncer{
		store:  store,
		index:  idx,
		logger: log,
	}
}

// Sync loads sessions from Redis. Sessions already in memory win.
func (ss *SessionSyncer) Sync(ctx context.Context) error {
	ss.logger.Info("syncing sessions from redis to memory")

	sessions, err := ss.store.GetAllSessions(ctx)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		ss.logger.Info("no sessions found in redis")
		return nil
	}

	loaded := 0
	for _, s := range sessions {
		if _, ok := ss.index.GetSession(s.ID); ok {
			continue
		}
		ss.index.PutSession(s)
		loaded++
	}

	ss.logger.Info("synced sessions from redis",
		logger.Int("count", loaded))

	return nil
}
