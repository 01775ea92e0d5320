package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)
	LogFile   string // optional rotating JSON log file, teed with stdout

	DBPath         string        // path to the local sqlite link store
	FallbackURL    string        // redirect target when /go finds nothing (empty = 404)
	SyncInterval   time.Duration // interval between background syncs (default: 5m)
	ToastDuration  time.Duration // how long a change report stays displayed (0 = until next sync)
	ImportFile     string        // optional homepage yaml or json file imported on change
	ImportInterval time.Duration // periodic re-import of ImportFile (default: 1h)
	FetchTitles    bool          // fill empty descriptions with the page <title>
	TitleTimeout   time.Duration // bound on each title lookup (default: 3s)

	// Redis (remote copy). An empty RedisAddr runs hop offline.
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
	AllowedCIDRS []string // optional, restrict API access to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateBurst    int      // /go requests allowed in a burst per client IP
	RatePerMin   int      // /go tokens refilled per minute per client IP
}

// Offline reports whether no remote link store is configured.
func (c *Config) Offline() bool {
	return c.RedisAddr == ""
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("HOP_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("HOP_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("HOP_LOG_LEVEL", "info"),
		PrettyLog: mustBool("HOP_PRETTY_LOG", true),
		LogFile:   getenv("HOP_LOG_FILE", ""),

		// Link store
		DBPath:         getenv("HOP_DB_PATH", "hop.db"),
		FallbackURL:    getenv("HOP_FALLBACK_URL", ""),
		SyncInterval:   mustDuration("HOP_SYNC_INTERVAL", 5*time.Minute),
		ToastDuration:  mustDuration("HOP_TOAST_DURATION", 10*time.Second),
		ImportFile:     getenv("HOP_IMPORT_FILE", ""),
		ImportInterval: mustDuration("HOP_IMPORT_INTERVAL", time.Hour),
		FetchTitles:    mustBool("HOP_FETCH_TITLES", false),
		TitleTimeout:   mustDuration("HOP_TITLE_TIMEOUT", 3*time.Second),

		// Redis settings
		RedisAddr:             getenv("HOP_REDIS_ADDR", ""),
		RedisUser:             getenv("HOP_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("HOP_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("HOP_REDIS_PASSWORD", ""),
		RedisDT:               mustDuration("HOP_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("HOP_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("HOP_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("HOP_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("HOP_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("HOP_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("HOP_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("HOP_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("HOP_REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("HOP_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("HOP_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("HOP_TRUST_PROXY", false),
		RateBurst:    getenvInt("HOP_RATE_BURST", 30),
		RatePerMin:   getenvInt("HOP_RATE_PER_MIN", 60),
	}

	if !cfg.Offline() {
		cfg.RedisDB = requireEnvInt("HOP_REDIS_DB")

		// Validate Redis password configuration
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: HOP_REDIS_PASSWORD is required when HOP_REDIS_PASSWORD_REQUIRED=true")
		}
	}

	if cfg.SyncInterval <= 0 {
		panic(fmt.Sprintf("❌ FATAL: HOP_SYNC_INTERVAL must be > 0, got %v", cfg.SyncInterval))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
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

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
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

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
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
