package config

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline, ex: 5s
	MaxBodyBytes    int64         // cap on JSON request bodies (imports included)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	ProfileFile         string        // optional YAML seed of browser profiles, empty = no seed
	DetectInterval      time.Duration // how often is_detected is refreshed (default: 6h)
	ProfileSyncInterval time.Duration // how often the profile index is rebuilt from redis (default: 5m)
	PruneInterval       time.Duration // how often dangling store references are removed (default: 24h)
	DryRunLaunch        bool          // log launch plans instead of handing them to a launcher
	LaunchOS            string        // OS the launch plans are built for (default: runtime.GOOS)

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
	RedisConnectTimeout   time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Access restrictions
	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	CORSOrigins  []string // optional, origins allowed by the CORS middleware ("*" = any)

	// Rate limiting of mutating routes
	RateLimitBurst        int
	RateLimitRefillPerMin int
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("RESTORE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("RESTORE_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("RESTORE_REQUEST_TIMEOUT", 5*time.Second),
		MaxBodyBytes:    int64(getenvInt("RESTORE_MAX_BODY_BYTES", 4<<20)),

		// Logging
		LogLevel:  getenv("RESTORE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("RESTORE_PRETTY_LOG", true),

		// Profiles
		ProfileFile:         getenv("RESTORE_PROFILE_FILE", ""),
		DetectInterval:      mustDuration("RESTORE_DETECT_INTERVAL", 6*time.Hour),
		ProfileSyncInterval: mustDuration("RESTORE_PROFILE_SYNC_INTERVAL", 5*time.Minute),
		PruneInterval:       mustDuration("RESTORE_PRUNE_INTERVAL", 24*time.Hour),
		DryRunLaunch:        mustBool("RESTORE_DRY_RUN_LAUNCH", true),
		LaunchOS:            getenv("RESTORE_LAUNCH_OS", runtime.GOOS),

		// Redis settings
		RedisAddr:             requireEnv("RESTORE_REDIS_ADDR"),
		RedisUser:             getenv("RESTORE_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("RESTORE_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("RESTORE_REDIS_PASSWORD", ""),
		RedisDB:               requireEnvInt("RESTORE_REDIS_DB"),
		RedisDT:               mustDuration("RESTORE_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("RESTORE_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("RESTORE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("RESTORE_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("RESTORE_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("RESTORE_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("RESTORE_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("RESTORE_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("RESTORE_REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("RESTORE_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("RESTORE_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("RESTORE_TRUST_PROXY", false),
		CORSOrigins:  splitAndTrim(getenv("RESTORE_CORS_ORIGINS", "")),

		RateLimitBurst:        getenvInt("RESTORE_RATE_LIMIT_BURST", 30),
		RateLimitRefillPerMin: getenvInt("RESTORE_RATE_LIMIT_REFILL_PER_MIN", 60),
	}

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: RESTORE_REDIS_PASSWORD is required when RESTORE_REDIS_PASSWORD_REQUIRED=true")
	}
	if cfg.DetectInterval <= 0 || cfg.ProfileSyncInterval <= 0 || cfg.PruneInterval <= 0 {
		panic("❌ FATAL: RESTORE_DETECT_INTERVAL, RESTORE_PROFILE_SYNC_INTERVAL and RESTORE_PRUNE_INTERVAL must be > 0")
	}

	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	out := *c
	if out.RedisPassword != "" {
		out.RedisPassword = "***REDACTED***"
	}
	if out.RedisUser != "" {
		out.RedisUser = "***REDACTED***"
	}
	return out
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

func requireEnvInt(key string) int {
	v := requireEnv(key)
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
		if b, err := strconv.ParseBool(v); err == nil {
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

// splitAndTrim splits a comma list, dropping blanks and surrounding quotes.
func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.Trim(strings.TrimSpace(part), `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
