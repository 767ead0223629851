// Package config provides configuration management for the price
// tracker. It handles loading, validation, and access to configuration
// values from YAML files and environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/jonesrussell/pricetracker/internal/alert"
	"github.com/jonesrussell/pricetracker/internal/database"
	"github.com/jonesrussell/pricetracker/internal/fetch"
	"github.com/jonesrussell/pricetracker/internal/logger"
	"github.com/jonesrussell/pricetracker/internal/scheduler"
	"github.com/jonesrussell/pricetracker/internal/tracker"
)

// Server defaults
const (
	defaultServerAddress      = ":8080"
	defaultServerReadTimeout  = 30 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
	defaultServerIdleTimeout  = 60 * time.Second
)

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// RateLimitConfig holds the default per-domain request spacing.
type RateLimitConfig struct {
	DefaultInterval time.Duration `mapstructure:"default_interval"`
}

// Config represents the application configuration.
type Config struct {
	App       AppConfig        `mapstructure:"app"`
	Logger    logger.Config    `mapstructure:"logger"`
	Server    ServerConfig     `mapstructure:"server"`
	Database  database.Config  `mapstructure:"database"`
	Fetch     fetch.Config     `mapstructure:"fetch"`
	Tracker   tracker.Config   `mapstructure:"tracker"`
	Scheduler scheduler.Config `mapstructure:"scheduler"`
	Alerts    alert.Config     `mapstructure:"alerts"`
	RateLimit RateLimitConfig  `mapstructure:"ratelimit"`
}

// Load unmarshals the initialized Viper state into a typed Config.
// InitializeViper must be called first.
func Load() (*Config, error) {
	var cfg Config
	err := viper.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, validateErr
	}
	return &cfg, nil
}

// Validate checks the configuration for values that would fail at
// runtime.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host must not be empty")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database.dbname must not be empty")
	}
	if c.Scheduler.TickInterval < 0 {
		return fmt.Errorf("scheduler.tick_interval must not be negative")
	}
	if c.Tracker.MaxAttempts < 0 {
		return fmt.Errorf("tracker.max_attempts must not be negative")
	}
	return nil
}
