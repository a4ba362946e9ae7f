package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Logging level override; empty keeps the per-environment default
	LogLevel string

	// Database (single SQLite file)
	DBPath         string
	DBMaxOpenConns int

	// Credentials
	BcryptCost int

	// JWT
	JWTSecret string
	AccessTTL time.Duration // 0 disables expiry

	// Ownership migration
	LegacyOwnerEmail string

	// Redis (optional; empty address disables rate limiting and the redis revocation store)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limit for register/login, requests per minute per IP
	AuthRateLimit int

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Google Cloud Storage backups
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used
	BackupPrefix           string
	BackupDailyAt          string // HH:MM; empty disables scheduled backups
	BackupKeep             int    // snapshots retained after each run; 0 keeps all

	// Background maintenance
	RevocationPruneInterval time.Duration // 0 disables the periodic prune

	// Debug metrics (/api/debug/vars)
	DebugMetricsEnabled bool

	// HTTP access log toggle
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if v == "0" {
			return 0
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "todo-calendar-api"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "3001"),
		GinMode: getenv("GIN_MODE", "release"),

		LogLevel: getenv("LOG_LEVEL", ""),

		DBPath:         getenv("DB_PATH", "data/todo.db"),
		DBMaxOpenConns: getint("DB_MAX_OPEN_CONNS", 4),

		BcryptCost: getint("BCRYPT_COST", 10),

		JWTSecret: getenv("JWT_SECRET", "devaccesssecret"),
		AccessTTL: getdur("JWT_ACCESS_TTL", 24*time.Hour),

		LegacyOwnerEmail: getenv("LEGACY_OWNER_EMAIL", "legacy@localhost"),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		AuthRateLimit: getint("RATE_LIMIT_AUTH_PER_MIN", 10),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "*"),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),
		BackupPrefix:           getenv("BACKUP_PREFIX", "backups"),
		BackupDailyAt:          getenv("BACKUP_DAILY_AT", ""),
		BackupKeep:             getint("BACKUP_KEEP", 0),

		RevocationPruneInterval: getdur("REVOCATION_PRUNE_INTERVAL", time.Hour),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", false),

		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", true),
	}
}

// IsProduction reports whether error details must be hidden from clients
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
