package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is searched, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/povarenok/config.yaml",
	"/etc/povarenok/config.yml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:         "/data/povarenok.duckdb",
			MaxMemory:    "512MB",
			Threads:      0, // 0 = runtime.NumCPU()
			SeedDemoData: false,
		},
		API: APIConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Menu: MenuConfig{
			Breakfast: "завтрак",
			Lunch:     "обед",
			Snack:     "перекус",
			Dinner:    "ужин",
		},
		Bot: BotConfig{
			Token:       "",
			APIURL:      "https://api.telegram.org",
			PollTimeout: 30 * time.Second,
			SendRate:    25, // Telegram's global cap is 30 msg/s
			Workers:     8,
			CacheTTL:    5 * time.Minute,
		},
		Query: QueryConfig{
			BaseURL:       "",
			Timeout:       5 * time.Second,
			RetryAttempts: 3,
			RetryDelay:    500 * time.Millisecond,
		},
		Session: SessionConfig{
			Store:           "memory",
			Path:            "/data/sessions",
			TTL:             24 * time.Hour,
			CleanupInterval: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are fields that arrive from env as comma-separated strings.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransform maps environment variable names onto koanf paths.
// The section prefix becomes the first path element:
// SERVER_PORT -> server.port, SESSION_CLEANUP_INTERVAL -> session.cleanup_interval.
func envTransform(key string) string {
	key = strings.ToLower(key)

	sections := []string{"server", "database", "api", "menu", "bot", "query", "session", "logging"}
	for _, s := range sections {
		if strings.HasPrefix(key, s+"_") {
			return s + "." + strings.TrimPrefix(key, s+"_")
		}
	}

	// Short aliases kept for operator convenience.
	aliases := map[string]string{
		"duckdb_path": "database.path",
		"http_port":   "server.port",
		"log_level":   "logging.level",
		"log_format":  "logging.format",
	}
	if path, ok := aliases[key]; ok {
		return path
	}

	// Unknown variables are ignored rather than polluting the tree.
	return ""
}
