package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends accepted by RCAPI_STORE.
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":9511"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline, 0 = none

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	PublicURL string // base for links, empty = derived from each request
	MaxLimit  int    // upper bound for ?limit= (default 1000)
	Store     string // "redis" | "memory"

	BayFile          string        // path to the bay inventory yaml
	ReloadInterval   time.Duration // interval to reload the bay inventory
	BayPruneInterval time.Duration // interval between stale bay sweeps
	BayStaleAfter    time.Duration // a bay missing from the inventory this long is deleted

	ManifestFetchTimeout time.Duration // timeout for fetching rc_definition_url

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
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

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict /readyz and /reload to these networks
	TrustProxy   bool     // true => trust X-Forwarded-For headers

	RateBurst        int // token bucket size for mutating requests, 0 = unlimited
	RateRefillPerMin int // tokens added per minute
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("RCAPI_LISTEN_PORT", ":9511"),
		ShutdownTimeout: mustDuration("RCAPI_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("RCAPI_REQUEST_TIMEOUT", 30*time.Second),

		// Logging
		LogLevel:  getenv("RCAPI_LOG_LEVEL", "info"),
		PrettyLog: mustBool("RCAPI_PRETTY_LOG", false),

		// API
		PublicURL: strings.TrimRight(getenv("RCAPI_PUBLIC_URL", ""), "/"),
		MaxLimit:  getenvInt("RCAPI_MAX_LIMIT", 1000),
		Store:     strings.ToLower(getenv("RCAPI_STORE", StoreRedis)),

		// Bay inventory
		BayFile:          getenv("RCAPI_BAY_FILE", "/app/bays.yaml"),
		ReloadInterval:   mustDuration("RCAPI_RELOAD_INTERVAL", 10*time.Minute),
		BayPruneInterval: mustDuration("RCAPI_BAY_PRUNE_INTERVAL", time.Hour),
		BayStaleAfter:    mustDuration("RCAPI_BAY_STALE_AFTER", 24*time.Hour),

		ManifestFetchTimeout: mustDuration("RCAPI_MANIFEST_FETCH_TIMEOUT", 10*time.Second),

		// Redis settings
		RedisAddr:             getenv("REDIS_ADDR", ""),
		RedisUser:             getenv("REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("REDIS_DB", 0),
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
		AllowedHosts: splitAndTrim(getenv("RCAPI_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("RCAPI_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("RCAPI_TRUST_PROXY", false),

		RateBurst:        getenvInt("RCAPI_RATE_BURST", 20),
		RateRefillPerMin: getenvInt("RCAPI_RATE_REFILL_PER_MIN", 120),
	}

	switch cfg.Store {
	case StoreRedis:
		if cfg.RedisAddr == "" {
			cfg.RedisAddr = requireEnv("REDIS_ADDR")
		}
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: REDIS_PASSWORD is required when REDIS_PASSWORD_REQUIRED=true")
		}
	case StoreMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: RCAPI_STORE must be %q or %q, got %q", StoreRedis, StoreMemory, cfg.Store))
	}

	if cfg.MaxLimit <= 0 {
		panic(fmt.Sprintf("❌ FATAL: RCAPI_MAX_LIMIT must be > 0, got %d", cfg.MaxLimit))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
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
