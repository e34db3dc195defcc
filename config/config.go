package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultSessionSecret is only suitable for local development.
const DefaultSessionSecret = "dev-secret-key-change-in-production"

// AppConfig holds file and environment driven configuration values.
// Precedence: defaults -> config file (when present) -> environment variables.
type AppConfig struct {
	App      AppSection      `json:"app"`
	Database DatabaseSection `json:"database"`
	Redis    RedisSection    `json:"redis"`
	Log      LogSection      `json:"log"`
}

// AppSection configures the HTTP server and request handling.
type AppSection struct {
	Port               string   `json:"port" env:"APP_PORT,PORT" env-default:"5000"`
	SessionSecret      string   `json:"-" env:"SESSION_SECRET" env-default:"dev-secret-key-change-in-production"`
	SessionSecure      bool     `json:"session_secure" env:"SESSION_SECURE" env-default:"false"`
	RateLimitPerMinute int      `json:"rate_limit_per_minute" env:"RATE_LIMIT_PER_MINUTE" env-default:"60"`
	AllowedOrigins     []string `json:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	TrustedProxies     []string `json:"trusted_proxies" env:"TRUSTED_PROXIES"`
	StatsCacheTTLSec   int      `json:"stats_cache_ttl_seconds" env:"STATS_CACHE_TTL_SECONDS" env-default:"30"`
	TLSCertPath        string   `json:"tls_cert_path" env:"TLS_CERT_PATH"`
	TLSKeyPath         string   `json:"tls_key_path" env:"TLS_KEY_PATH"`
	StaticDir          string   `json:"static_dir" env:"STATIC_DIR" env-default:"./static"`
	ShutdownTimeoutSec int      `json:"shutdown_timeout_seconds" env:"SHUTDOWN_TIMEOUT_SECONDS" env-default:"30"`
	EventRetentionDays int      `json:"event_retention_days" env:"EVENT_RETENTION_DAYS" env-default:"0"`
	// Gin framework configuration
	GinMode    string `json:"gin_mode" env:"GIN_MODE" env-default:"release"`
	GinLogPath string `json:"gin_log_path" env:"GIN_LOG_PATH,GIN_PATH" env-default:"logs/go_gin.log"`
}

// DatabaseSection selects the store. An empty URL falls back to a local
// SQLite file.
type DatabaseSection struct {
	URL          string `json:"-" env:"DATABASE_URL,DATABASE_URI"`
	SQLitePath   string `json:"sqlite_path" env:"SQLITE_PATH" env-default:"artcopy.db"`
	MaxOpenConns int    `json:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"20"`
	MaxIdleConns int    `json:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
}

// RedisSection configures the optional stats cache. An empty Addr disables it.
type RedisSection struct {
	Addr     string `json:"addr" env:"REDIS_ADDR"`
	Password string `json:"-" env:"REDIS_PASSWORD"`
	DB       int    `json:"db" env:"REDIS_DB" env-default:"0"`
}

// LogSection configures zap and the rolling file sink.
type LogSection struct {
	Level      string `json:"level" env:"LOG_LEVEL" env-default:"info"`
	Path       string `json:"path" env:"LOG_PATH"`
	MaxSizeMB  int    `json:"max_size_mb" env:"LOG_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int    `json:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"3"`
	MaxAgeDays int    `json:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"7"`
	Compress   bool   `json:"compress" env:"LOG_COMPRESS" env-default:"false"`
}

// Load reads the configuration. The file at CONFIG_PATH (default
// config/config.json) is optional; environment variables always win.
func Load() (*AppConfig, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.json"
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from path if it exists, then the environment.
func LoadFrom(path string) (*AppConfig, error) {
	var cfg AppConfig

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.App.AllowedOrigins = splitAndTrim(cfg.App.AllowedOrigins)
	cfg.App.TrustedProxies = splitAndTrim(cfg.App.TrustedProxies)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.App.Port) == "" {
		return errors.New("APP_PORT must not be empty")
	}
	if c.App.SessionSecret == "" {
		return errors.New("SESSION_SECRET must not be empty")
	}
	if c.App.RateLimitPerMinute < 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be >= 0")
	}
	if c.App.EventRetentionDays < 0 {
		return errors.New("EVENT_RETENTION_DAYS must be >= 0")
	}
	if (c.App.TLSCertPath == "") != (c.App.TLSKeyPath == "") {
		return errors.New("TLS_CERT_PATH and TLS_KEY_PATH must be set together")
	}
	return nil
}

// UsesDefaultSecret reports whether sessions are signed with the dev secret.
func (c *AppConfig) UsesDefaultSecret() bool {
	return c.App.SessionSecret == DefaultSessionSecret
}

// StatsCacheTTL is the lifetime of the cached /api/stats payload.
func (c *AppConfig) StatsCacheTTL() time.Duration {
	return time.Duration(c.App.StatsCacheTTLSec) * time.Second
}

// ShutdownTimeout bounds how long in-flight requests may drain on shutdown.
func (c *AppConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.App.ShutdownTimeoutSec) * time.Second
}

// EventRetention is the analytics retention window; zero disables pruning.
func (c *AppConfig) EventRetention() time.Duration {
	return time.Duration(c.App.EventRetentionDays) * 24 * time.Hour
}

// TLSEnabled reports whether the server should terminate TLS itself.
func (c *AppConfig) TLSEnabled() bool {
	return c.App.TLSCertPath != "" && c.App.TLSKeyPath != ""
}

func splitAndTrim(raw []string) []string {
	items := []string{}
	for _, entry := range raw {
		for _, item := range strings.Split(entry, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}
