// Package config holds the layered configuration for the recipe catalogue
// server and the bot. Values are loaded from built-in defaults, an optional
// YAML file and environment variables (highest priority), in that order.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration shared by cmd/server and cmd/bot.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	API      APIConfig      `koanf:"api"`
	Menu     MenuConfig     `koanf:"menu"`
	Bot      BotConfig      `koanf:"bot"`
	Query    QueryConfig    `koanf:"query"`
	Session  SessionConfig  `koanf:"session"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host" validate:"required"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig configures the embedded DuckDB store.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory"`
	// Threads limits DuckDB worker threads; 0 means runtime.NumCPU().
	Threads int `koanf:"threads" validate:"min=0"`
	// SeedDemoData loads the demo catalogue on startup when the store is empty.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// APIConfig configures cross-cutting HTTP behavior.
type APIConfig struct {
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"min=1s"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// MenuConfig maps the four daily-menu slots to category names in the store.
// Matching is case-sensitive.
type MenuConfig struct {
	Breakfast string `koanf:"breakfast" validate:"required"`
	Lunch     string `koanf:"lunch" validate:"required"`
	Snack     string `koanf:"snack" validate:"required"`
	Dinner    string `koanf:"dinner" validate:"required"`
}

// BotConfig configures the chat front-end.
type BotConfig struct {
	// Token is the Telegram Bot API token. Required by cmd/bot only.
	Token string `koanf:"token"`
	// APIURL overrides the Telegram API endpoint, for tests and proxies.
	APIURL string `koanf:"api_url" validate:"omitempty,url"`
	// PollTimeout is the long-poll timeout for getUpdates.
	PollTimeout time.Duration `koanf:"poll_timeout" validate:"min=1s"`
	// SendRate caps outbound transport calls per second.
	SendRate float64 `koanf:"send_rate" validate:"gt=0"`
	// Workers bounds the number of conversations handled concurrently.
	Workers int `koanf:"workers" validate:"min=1"`
	// CacheTTL bounds how long category and ingredient keyboards are cached.
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"min=1s"`
}

// QueryConfig configures the bot's client for the query engine API.
type QueryConfig struct {
	BaseURL       string        `koanf:"base_url" validate:"omitempty,url"`
	Timeout       time.Duration `koanf:"timeout" validate:"min=100ms"`
	RetryAttempts int           `koanf:"retry_attempts" validate:"min=1"`
	RetryDelay    time.Duration `koanf:"retry_delay" validate:"min=10ms"`
}

// SessionConfig configures the per-conversation selection store.
type SessionConfig struct {
	// Store selects the backing implementation: memory or badger.
	Store string `koanf:"store" validate:"oneof=memory badger"`
	// Path is the badger directory; ignored for the memory store.
	Path string `koanf:"path"`
	// TTL evicts conversations idle longer than this.
	TTL time.Duration `koanf:"ttl" validate:"min=1m"`
	// CleanupInterval is how often the memory store sweeps expired sessions.
	CleanupInterval time.Duration `koanf:"cleanup_interval" validate:"min=10s"`
}

// LoggingConfig configures the zerolog facade.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration with struct tags plus the handful of
// cross-field rules tags cannot express.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Session.Store == "badger" && c.Session.Path == "" {
		return fmt.Errorf("invalid configuration: session.path is required when session.store=badger")
	}
	return nil
}

// ValidateBot additionally checks the fields only the bot binary needs.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Bot.Token == "" {
		return fmt.Errorf("invalid configuration: bot.token is required (BOT_TOKEN)")
	}
	if c.Query.BaseURL == "" {
		return fmt.Errorf("invalid configuration: query.base_url is required (QUERY_BASE_URL)")
	}
	return nil
}
