package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/sourcedit/internal/catalog"
	"github.com/MrSnakeDoc/sourcedit/internal/domain"
	"github.com/MrSnakeDoc/sourcedit/internal/index"
	"github.com/MrSnakeDoc/sourcedit/internal/logger"
	redisstore "github.com/MrSnakeDoc/sourcedit/internal/store/redis"
)

// CatalogReloader handles periodic reloading of the type catalog
type CatalogReloader struct {
	loader        *catalog.Loader
	mapper        *catalog.Mapper
	store         *redisstore.Store
	index         *index.MemoryIndex
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewCatalogReloader creates a new catalog reloader
func NewCatalogReloader(
	catalogFile string,
	store *redisstore.Store,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		loader:        catalog.NewLoader(catalogFile),
		mapper:        catalog.NewMapper(),
		store:         store,
		index:         idx,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the catalog, then reloads it on every tick and manual trigger.
// When the first load fails, the Redis cache is used if present.
func (cr *CatalogReloader) Start(ctx context.Context) error {
	if err := cr.Reload(ctx); err != nil {
		if !cr.restoreFromCache(ctx) {
			return fmt.Errorf("initial reload failed: %w", err)
		}
		cr.logger.Warn("catalog file unavailable, serving cached catalog",
			logger.Error(err))
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog",
						logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual reload triggered")
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog",
						logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (cr *CatalogReloader) Stop() {
	close(cr.stopCh)
}

// Reload loads the catalog file and updates index + cache
func (cr *CatalogReloader) Reload(ctx context.Context) error {
	cr.logger.Info("reloading type catalog")

	file, err := cr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	types, skipped, err := cr.mapper.MapCatalog(file)
	if err != nil {
		return fmt.Errorf("failed to map catalog: %w", err)
	}

	for _, s := range skipped {
		cr.logger.Warn("skipped catalog entry",
			logger.String("kind", s.Kind),
			logger.Int("index", s.Index),
			logger.String("reason", s.Reason))
	}

	cr.index.UpdateCatalog(types.SourceTypes, types.ApplicationTypes)

	cr.logger.Info("loaded type catalog",
		logger.Int("source_types", len(types.SourceTypes)),
		logger.Int("application_types", len(types.ApplicationTypes)))

	if _, ok := domain.FindApplicationTypeByName(types.ApplicationTypes, domain.CostManagementAppName); !ok {
		cr.logger.Warn("catalog has no cost management type, paused messages are disabled")
	}

	// Update Redis cache (best effort)
	if cr.store != nil {
		if err := cr.store.CacheCatalog(ctx, types, 0); err != nil {
			cr.logger.Warn("failed to cache catalog in redis",
				logger.Error(err))
			// Don't fail - memory index is the primary source
		}
	}

	return nil
}

func (cr *CatalogReloader) restoreFromCache(ctx context.Context) bool {
	if cr.store == nil {
		return false
	}
	cached, ok, err := cr.store.GetCachedCatalog(ctx)
	if err != nil {
		cr.logger.Warn("failed to read cached catalog", logger.Error(err))
		return false
	}
	if !ok {
		return false
	}
	cr.index.UpdateCatalog(cached.SourceTypes, cached.ApplicationTypes)
	return true
}
