// Package config reads process configuration from the environment.
// An optional .env file is loaded first; real environment variables win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CounterBackend selects where GlobalSeq counters live.
type CounterBackend string

const (
	CounterPostgres CounterBackend = "postgres"
	CounterRedis    CounterBackend = "redis"
)

// Config is the server configuration.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL string
	DBMaxConns  int

	JWTSecret     string
	JWTTTL        time.Duration
	SessionCookie string

	CounterBackend CounterBackend
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// GaplessInvoices generates invoice numbers inside the invoice
	// transaction, so a failed insert does not burn a number.
	GaplessInvoices bool

	TemplateCache  bool
	MetricsEnabled bool
	GzipEnabled    bool

	TenantCacheTTL  time.Duration
	ShutdownTimeout time.Duration
}

// IsDevelopment reports whether APP_ENV is development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// LoadDotEnv loads the given files (default ".env") into the environment.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads Config from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 20),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTTTL:        getEnvDuration("JWT_TTL", 12*time.Hour),
		SessionCookie: getEnv("SESSION_COOKIE", "logistix_session"),

		CounterBackend: CounterBackend(strings.ToLower(getEnv("COUNTER_BACKEND", string(CounterPostgres)))),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),

		GaplessInvoices: getEnvBool("GAPLESS_INVOICES", false),
		TemplateCache:   getEnvBool("TEMPLATE_CACHE", true),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		GzipEnabled:     getEnvBool("GZIP_ENABLED", true),

		TenantCacheTTL:  getEnvDuration("TENANT_CACHE_TTL", time.Minute),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	switch c.CounterBackend {
	case CounterPostgres, CounterRedis:
	default:
		errs = append(errs, fmt.Errorf("COUNTER_BACKEND must be postgres or redis, got %q", c.CounterBackend))
	}
	if c.CounterBackend == CounterRedis && c.GaplessInvoices {
		errs = append(errs, errors.New("GAPLESS_INVOICES requires COUNTER_BACKEND=postgres"))
	}
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			errs = append(errs, errors.New("JWT_SECRET is required outside development"))
		} else {
			c.JWTSecret = "dev-only-secret"
		}
	}
	if c.DBMaxConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_CONNS must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
