package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/sourcedit/internal/config"
	"github.com/MrSnakeDoc/sourcedit/internal/httpserver"
	"github.com/MrSnakeDoc/sourcedit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/sourcedit/internal/index"
	"github.com/MrSnakeDoc/sourcedit/internal/logger"
	"github.com/MrSnakeDoc/sourcedit/internal/redis"
	"github.com/MrSnakeDoc/sourcedit/internal/scheduler"
	"github.com/MrSnakeDoc/sourcedit/internal/session"
	"github.com/MrSnakeDoc/sourcedit/internal/sourcesapi"
	redisstore "github.com/MrSnakeDoc/sourcedit/internal/store/redis"
	"github.com/MrSnakeDoc/sourcedit/internal/submit"
	"github.com/MrSnakeDoc/sourcedit/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	memIndex    *index.MemoryIndex
	reloader    *scheduler.CatalogReloader
	reaper      *scheduler.SessionReaper
}

// New wires every component. Redis is optional: without an address the
// service keeps sessions and the catalog in memory only.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	var (
		redisClient *goredis.Client
		store       *redisstore.Store
	)
	if cfg.RedisEnabled() {
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisClient = client
		store = redisstore.NewStore(client, cfg.SessionTTL)
	} else {
		loggerClient.Warn("redis not configured, sessions will not survive a restart")
	}

	memIndex := index.NewMemoryIndex()

	if store != nil {
		syncer := scheduler.NewSessionSyncer(store, memIndex, loggerClient)
		if err := syncer.Sync(ctx); err != nil {
			loggerClient.Warn("failed to restore sessions from redis", logger.Error(err))
		}
	}

	client := sourcesapi.New(sourcesapi.Config{
		BaseURL:           cfg.APIURL,
		Token:             cfg.APIToken,
		Timeout:           cfg.APITimeout,
		RequestsPerSecond: float64(cfg.APIRatePerSecond),
		Burst:             cfg.APIBurst,
		MaxConcurrency:    cfg.APIConcurrency,
	}, loggerClient.Named("sourcesapi"))
	dispatcher := submit.NewDispatcher(client, cfg.SubmitConcurrency, loggerClient.Named("submit"))

	// A nil *Store must not end up inside the interface.
	var sessionStore session.Store
	if store != nil {
		sessionStore = store
	}
	sessions := session.NewManager(client, dispatcher, memIndex, sessionStore, loggerClient.Named("session"))

	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewCatalogReloader(
		cfg.CatalogFile,
		store,
		memIndex,
		loggerClient,
		cfg.CatalogReloadInterval,
		reloadTrigger,
	)
	reaper := scheduler.NewSessionReaper(
		store,
		memIndex,
		loggerClient,
		cfg.ReaperInterval,
		cfg.SessionTTL,
	)

	build := version.Get()
	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        build.Version,
		Commit:         build.Commit,
		BuildDate:      build.BuildDate,
		GoVersion:      build.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		CatalogFile:    cfg.CatalogFile,
		RedisClient:    redisClient,
		MemoryIndex:    memIndex,
		Sessions:       sessions,
		ReloadTrigger:  reloadTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		memIndex:    memIndex,
		reloader:    reloader,
		reaper:      reaper,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting sourcedit %s on %s", version.Get(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog reloader: %w", err)
	}
	a.logger.Info("catalog reloader started",
		logger.String("file", a.cfg.CatalogFile),
		logger.Duration("interval", a.cfg.CatalogReloadInterval))

	if err := a.reaper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session reaper: %w", err)
	}
	a.logger.Info("session reaper started",
		logger.Duration("interval", a.cfg.ReaperInterval),
		logger.Duration("ttl", a.cfg.SessionTTL))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()
	a.reaper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ sourcedit stopped cleanly",
		logger.Int("open_sessions", a.memIndex.SessionCount()))
	_ = a.logger.Sync()
	return nil
}
