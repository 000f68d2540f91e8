package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Sandbox SandboxConfig
	Logging LogConfig
	Catalog CatalogConfig
}

// SandboxConfig holds JavaScript sandbox configuration.
type SandboxConfig struct {
	TimeoutMS     int  `envconfig:"SANDBOX_TIMEOUT_MS" default:"5000"`
	PoolSize      int  `envconfig:"SANDBOX_POOL" default:"4"`
	EnableConsole bool `envconfig:"SANDBOX_CONSOLE" default:"true"`
	EnableWebAPIs bool `envconfig:"SANDBOX_WEBAPI" default:"true"`
	Disguise      bool `envconfig:"SANDBOX_DISGUISE" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// CatalogConfig holds protection catalog configuration.
type CatalogConfig struct {
	Path string `envconfig:"CATALOG_PATH" default:""`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Sandbox: SandboxConfig{
			TimeoutMS:     5000,
			PoolSize:      4,
			EnableConsole: true,
			EnableWebAPIs: true,
			Disguise:      true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
