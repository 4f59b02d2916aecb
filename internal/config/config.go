package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout, covers a whole submission (ex: 60s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Sources API
	APIURL            string        // base URL of the Sources API (required)
	APIToken          string        // optional bearer token
	APITimeout        time.Duration // per-call timeout (default: 10s)
	APIRatePerSecond  int           // outbound requests per second (default: 20)
	APIBurst          int           // outbound burst (default: 5)
	APIConcurrency    int           // max parallel calls per load (default: 4)
	SubmitConcurrency int           // max parallel calls per submission (default: 4)

	// Catalog and sessions
	CatalogFile           string        // path to the type catalog YAML
	CatalogReloadInterval time.Duration // interval to reload the catalog (default: 1h)
	SessionTTL            time.Duration // idle time before a session is dropped (default: 2h)
	ReaperInterval        time.Duration // interval between session sweeps (default: 5m)

	// Redis (optional, empty address => memory only)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password when Redis is enabled
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Access restrictions
	AllowedHosts   []string // optional, restrict session routes to specific Host headers
	AllowedCIDRS   []string // optional, restrict infra and reload to specific IPs/CIDRs
	AllowedOrigins []string // optional, CORS origins
	TrustProxy     bool     // true => trust X-Forwarded-For headers
	RateLimit      int      // session requests per client per minute (0 = unlimited)
	RateBurst      int      // session request burst per client
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real variables win.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SOURCEDIT_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SOURCEDIT_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SOURCEDIT_REQUEST_TIMEOUT", 60*time.Second),

		// Logging
		LogLevel:  getenv("SOURCEDIT_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SOURCEDIT_PRETTY_LOG", true),

		// Sources API
		APIURL:            requireEnv("SOURCEDIT_API_URL"),
		APIToken:          getenv("SOURCEDIT_API_TOKEN", ""),
		APITimeout:        mustDuration("SOURCEDIT_API_TIMEOUT", 10*time.Second),
		APIRatePerSecond:  getenvInt("SOURCEDIT_API_RATE", 20),
		APIBurst:          getenvInt("SOURCEDIT_API_BURST", 5),
		APIConcurrency:    getenvInt("SOURCEDIT_API_CONCURRENCY", 4),
		SubmitConcurrency: getenvInt("SOURCEDIT_SUBMIT_CONCURRENCY", 4),

		// Catalog and sessions
		CatalogFile:           getenv("SOURCEDIT_CATALOG_FILE", "/app/catalog.yaml"),
		CatalogReloadInterval: mustDuration("SOURCEDIT_CATALOG_RELOAD_INTERVAL", time.Hour),
		SessionTTL:            mustDuration("SOURCEDIT_SESSION_TTL", 2*time.Hour),
		ReaperInterval:        mustDuration("SOURCEDIT_REAPER_INTERVAL", 5*time.Minute),

		// Redis settings
		RedisAddr:             getenv("SOURCEDIT_REDIS_ADDR", ""),
		RedisUser:             getenv("SOURCEDIT_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SOURCEDIT_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("SOURCEDIT_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("SOURCEDIT_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts:   splitAndTrim(getenv("SOURCEDIT_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   splitAndTrim(getenv("SOURCEDIT_ALLOWED_CIDRS", "")),
		AllowedOrigins: splitAndTrim(getenv("SOURCEDIT_ALLOWED_ORIGINS", "")),
		TrustProxy:     mustBool("SOURCEDIT_TRUST_PROXY", false),
		RateLimit:      getenvInt("SOURCEDIT_RATE_LIMIT", 120),
		RateBurst:      getenvInt("SOURCEDIT_RATE_BURST", 30),
	}

	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	out := *c
	if out.RedisPassword != "" {
		out.RedisPassword = "***REDACTED***"
	}
	if out.APIToken != "" {
		out.APIToken = "***REDACTED***"
	}
	return out
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("SOURCEDIT_API_URL must be an http(s) URL, got %q", c.APIURL)
	}
	if c.RedisEnabled() && c.RedisPasswordRequired && c.RedisPassword == "" {
		return fmt.Errorf("SOURCEDIT_REDIS_PASSWORD is required when SOURCEDIT_REDIS_PASSWORD_REQUIRED=true")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SOURCEDIT_SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
