package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/mixelka/emailtriage/pkg/models"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendRemote = "remote"
)

// Config application configuration
type Config struct {
	// Mailbox owner, used as the sender of drafts
	OwnerAddress string `env:"OWNER_ADDRESS" envDefault:"Me"`

	// Store
	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"` // memory, sqlite, redis or remote
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/emailtriage.db"`

	// Redis store
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string        `env:"REDIS_PREFIX" envDefault:"triage"`
	RedisLockTTL  time.Duration `env:"REDIS_LOCK_TTL" envDefault:"5s"`

	// Remote store
	RemoteStoreURL     string        `env:"REMOTE_STORE_URL"` // e.g., https://triage.example.com
	RemoteStoreTimeout time.Duration `env:"REMOTE_STORE_TIMEOUT" envDefault:"30s"`

	// Shared key for the /store routes, sent by the remote store client
	StoreAPIKey string `env:"STORE_API_KEY"`

	// HTTP
	HTTPAddr    string   `env:"HTTP_ADDR" envDefault:":8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	// Telegram (optional)
	TelegramToken      string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID     int64  `env:"TELEGRAM_CHAT_ID"`
	TelegramInboxLimit int    `env:"TELEGRAM_INBOX_LIMIT" envDefault:"10"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// TelegramEnabled returns true if the bot front-end is configured
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// Session returns the session of the configured mailbox owner
func (c *Config) Session() models.Session {
	return models.Session{Owner: c.OwnerAddress}
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	return Parse()
}

// Parse reads configuration from the process environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))

	switch c.StoreBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required for the sqlite store")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	case BackendRemote:
		if c.RemoteStoreURL == "" {
			return fmt.Errorf("REMOTE_STORE_URL is required for the remote store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.TelegramInboxLimit <= 0 {
		return fmt.Errorf("TELEGRAM_INBOX_LIMIT must be positive, got %d", c.TelegramInboxLimit)
	}
	return nil
}
