package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/sourcedit/internal/domain"
)

const (
	// DefaultSessionTTL is the default TTL for session entries (2 hours)
	DefaultSessionTTL = 2 * time.Hour
	// DefaultCatalogTTL is the default TTL for the cached catalog (24 hours)
	DefaultCatalogTTL = 24 * time.Hour
)

// ErrNotFound is returned when a key does not exist
var ErrNotFound = errors.New("not found")

// Store handles Redis operations for sessions and the catalog cache
type Store struct {
	client     *redis.Client
	sessionTTL time.Duration
}

// NewStore creates a new Redis store. sessionTTL <= 0 uses the default.
func NewStore(client *redis.Client, sessionTTL time.Duration) *Store {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Store{
		client:     client,
		sessionTTL: sessionTTL,
	}
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// SaveSession stores a session in Redis and refreshes its TTL
func (s *Store) SaveSession(ctx context.Context, session domain.EditSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, SessionKey(session.ID), data, s.sessionTTL)
	pipe.SAdd(ctx, AllSessionsKey(), session.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GetSession retrieves a session from Redis by ID
func (s *Store) GetSession(ctx context.Context, id string) (domain.EditSession, error) {
	data, err := s.client.Get(ctx, SessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.EditSession{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return domain.EditSession{}, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.EditSession
	if err := json.Unmarshal(data, &session); err != nil {
		return domain.EditSession{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return session, nil
}

// GetAllSessions retrieves all live sessions from Redis.
// IDs whose entry has expired are dropped from the set.
func (s *Store) GetAllSessions(ctx context.Context) ([]domain.EditSession, error) {
	ids, err := s.client.SMembers(ctx, AllSessionsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session IDs: %w", err)
	}

	if len(ids) == 0 {
		return []domain.EditSession{}, nil
	}

	sessions := make([]domain.EditSession, 0, len(ids))
	var expired []any
	for _, id := range ids {
		session, err := s.GetSession(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				expired = append(expired, id)
			}
			// Skip sessions that couldn't be retrieved
			continue
		}
		sessions = append(sessions, session)
	}

	if len(expired) > 0 {
		if err := s.client.SRem(ctx, AllSessionsKey(), expired...).Err(); err != nil {
			return sessions, fmt.Errorf("failed to prune expired sessions: %w", err)
		}
	}

	return sessions, nil
}

// DeleteSession removes a session from Redis
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, SessionKey(id))
	pipe.SRem(ctx, AllSessionsKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
