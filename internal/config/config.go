package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the application configuration with validation
type Config struct {
	// Application settings
	Port     int    `validate:"required,min=1,max=65535"`
	LogLevel string `validate:"required,oneof=debug info warn error"`

	// Database settings
	Database DatabaseConfig `validate:"required"`

	// External services
	NotificationService NotificationConfig `validate:"required"`

	// Security settings
	Security SecurityConfig `validate:"required"`

	// Performance settings
	Server ServerConfig `validate:"required"`

	// Session token settings
	Auth AuthConfig `validate:"required"`

	// Asset identifiers and bulk execution
	Assets AssetsConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string `validate:"required"`
	Port            int    `validate:"required,min=1,max=65535"`
	User            string `validate:"required"`
	Password        string `validate:"required"`
	Name            string `validate:"required"`
	SSLMode         string `validate:"required,oneof=disable require verify-ca verify-full"`
	MaxOpenConns    int    `validate:"min=1"`
	MaxIdleConns    int    `validate:"min=1"`
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// NotificationConfig holds notification service configuration.
// An empty URL disables notifications.
type NotificationConfig struct {
	URL            string        `validate:"omitempty,url"`
	Timeout        time.Duration `validate:"required"`
	RetryAttempts  int           `validate:"min=0,max=10"`
	RetryDelay     time.Duration
	MaxPayloadSize int64 `validate:"min=1024"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	RateLimitRPS    int           `validate:"min=1"`
	RateLimitBurst  int           `validate:"min=1"`
	RequestTimeout  time.Duration `validate:"required"`
	ShutdownTimeout time.Duration `validate:"required"`
	EnableCORS      bool
	AllowedOrigins  []string
	TrustedProxies  []string
}

// ServerConfig holds server performance configuration
type ServerConfig struct {
	ReadTimeout    time.Duration `validate:"required"`
	WriteTimeout   time.Duration `validate:"required"`
	IdleTimeout    time.Duration `validate:"required"`
	MaxHeaderBytes int           `validate:"min=1024"`
	EnableMetrics  bool
	MetricsPath    string
}

// AuthConfig holds session token configuration
type AuthConfig struct {
	JWTSecret  string `validate:"required,min=16"`
	CookieName string `validate:"required"`
	TokenTTL   time.Duration
	Issuer     string
}

// AssetsConfig holds asset domain settings
type AssetsConfig struct {
	IDPrefix           string `validate:"required"`
	BulkMaxConcurrency int    `validate:"min=0"`
}

// LoadConfig loads and validates the configuration from environment variables.
// A .env file in the working directory is read first; variables already set
// in the environment win.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	env := &envReader{}
	config := &Config{
		Port:     env.Int("PORT", 8080),
		LogLevel: env.String("LOG_LEVEL", "info"),

		Database: DatabaseConfig{
			Host:            env.String("DB_HOST", "localhost"),
			Port:            env.Int("DB_PORT", 5432),
			User:            env.String("DB_USER", ""),
			Password:        env.String("DB_PASSWORD", ""),
			Name:            env.String("DB_NAME", ""),
			SSLMode:         env.String("DB_SSL_MODE", "disable"),
			MaxOpenConns:    env.Int("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    env.Int("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: env.Duration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: env.Duration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},

		NotificationService: NotificationConfig{
			URL:            env.String("NOTIFIER_URL", ""),
			Timeout:        env.Duration("NOTIFIER_TIMEOUT", 10*time.Second),
			RetryAttempts:  env.Int("NOTIFIER_RETRY_ATTEMPTS", 3),
			RetryDelay:     env.Duration("NOTIFIER_RETRY_DELAY", time.Second),
			MaxPayloadSize: int64(env.Int("NOTIFIER_MAX_PAYLOAD_SIZE", 1<<20)),
		},

		Security: SecurityConfig{
			RateLimitRPS:    env.Int("RATE_LIMIT_RPS", 100),
			RateLimitBurst:  env.Int("RATE_LIMIT_BURST", 200),
			RequestTimeout:  env.Duration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: env.Duration("SHUTDOWN_TIMEOUT", 30*time.Second),
			EnableCORS:      env.Bool("ENABLE_CORS", true),
			AllowedOrigins:  env.List("ALLOWED_ORIGINS", []string{"*"}),
			TrustedProxies:  env.List("TRUSTED_PROXIES", []string{}),
		},

		Server: ServerConfig{
			ReadTimeout:    env.Duration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   env.Duration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:    env.Duration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxHeaderBytes: env.Int("SERVER_MAX_HEADER_BYTES", 1<<20),
			EnableMetrics:  env.Bool("ENABLE_METRICS", true),
			MetricsPath:    env.String("METRICS_PATH", "/metrics"),
		},

		Auth: AuthConfig{
			JWTSecret:  env.String("JWT_SECRET", ""),
			CookieName: env.String("SESSION_COOKIE_NAME", "asset_session"),
			TokenTTL:   env.Duration("SESSION_TTL", 12*time.Hour),
			Issuer:     env.String("JWT_ISSUER", "asset-management-api"),
		},

		Assets: AssetsConfig{
			IDPrefix:           env.String("ASSET_ID_PREFIX", "SIT"),
			BulkMaxConcurrency: env.Int("BULK_MAX_CONCURRENCY", 0),
		},
	}

	if err := validateConfig(config, env.problems); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// validateConfig checks cross-field rules. problems carries values that
// could not be parsed at all.
func validateConfig(config *Config, problems []string) error {
	errs := append([]string(nil), problems...)
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, msg)
		}
	}

	check(config.Database.User != "", "database user is required")
	check(config.Database.Password != "", "database password is required")
	check(config.Database.Name != "", "database name is required")
	check(validPort(config.Port), "port must be between 1 and 65535")
	check(validPort(config.Database.Port), "database port must be between 1 and 65535")

	if _, err := logrus.ParseLevel(config.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log level %q", config.LogLevel))
	}

	check(len(config.Auth.JWTSecret) >= 16, "JWT secret must be at least 16 characters")
	check(config.Auth.TokenTTL > 0, "session ttl must be positive")
	check(strings.TrimSpace(config.Assets.IDPrefix) != "", "asset id prefix is required")
	check(config.Assets.BulkMaxConcurrency >= 0, "bulk max concurrency cannot be negative")
	check(config.Security.RateLimitRPS > 0 && config.Security.RateLimitBurst > 0, "rate limit values must be positive")

	if len(errs) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}

// ParsedLogLevel returns the logrus level for LogLevel, defaulting to info.
func (c *Config) ParsedLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// GetDatabaseDSN returns the lib/pq connection string.
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

// envReader looks up typed variables. Unset variables yield the default;
// set but malformed ones yield the default and are recorded in problems.
type envReader struct {
	problems []string
}

func (e *envReader) lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

func (e *envReader) reject(key, value, kind string) {
	e.problems = append(e.problems, fmt.Sprintf("%s=%q is not a valid %s", key, value, kind))
}

func (e *envReader) String(key, def string) string {
	if value, ok := e.lookup(key); ok {
		return value
	}
	return def
}

func (e *envReader) Int(key string, def int) int {
	value, ok := e.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.reject(key, value, "integer")
		return def
	}
	return n
}

func (e *envReader) Bool(key string, def bool) bool {
	value, ok := e.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.reject(key, value, "boolean")
		return def
	}
	return b
}

func (e *envReader) Duration(key string, def time.Duration) time.Duration {
	value, ok := e.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.reject(key, value, "duration")
		return def
	}
	return d
}

// List splits a comma separated value, dropping blank entries.
func (e *envReader) List(key string, def []string) []string {
	value, ok := e.lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
