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

// CacheCatalog stores the type catalog
func (s *Store) CacheCatalog(ctx context.Context, catalog domain.Catalog, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	data, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := s.client.Set(ctx, CatalogKey(), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache catalog: %w", err)
	}
	return nil
}

// GetCachedCatalog retrieves the cached catalog. A miss returns false and no error.
func (s *Store) GetCachedCatalog(ctx context.Context) (domain.Catalog, bool, error) {
	data, err := s.client.Get(ctx, CatalogKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Catalog{}, false, nil // Cache miss
		}
		return domain.Catalog{}, false, fmt.Errorf("failed to get cached catalog: %w", err)
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return domain.Catalog{}, false, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	return catalog, true, nil
}

// InvalidateCatalog removes the cached catalog
func (s *Store) InvalidateCatalog(ctx context.Context) error {
	if err := s.client.Del(ctx, CatalogKey()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog: %w", err)
	}
	return nil
}
