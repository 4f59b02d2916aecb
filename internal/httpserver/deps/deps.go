package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/sourcedit/internal/index"
	"github.com/MrSnakeDoc/sourcedit/internal/logger"
	"github.com/MrSnakeDoc/sourcedit/internal/session"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time   // for testing, defaults to time.Now
	AllowedHosts   []string           // Host headers allowed to access the server
	AllowedCIDRS   []string           // IPs allowed to access infra and reload endpoints
	AllowedOrigins []string           // CORS origins
	TrustProxy     bool               // true if running behind a trusted reverse proxy
	RateLimit      int                // requests per client per minute on session routes (0 = unlimited)
	RateBurst      int                // burst on session routes
	CatalogFile    string             // Path to the type catalog file
	RedisClient    *redis.Client      // Redis client connection (nil when running on memory only)
	MemoryIndex    *index.MemoryIndex // In-memory sessions and catalog
	Sessions       *session.Manager   // Edit session lifecycle
	ReloadTrigger  chan struct{}      // Channel to trigger manual catalog reload
}
