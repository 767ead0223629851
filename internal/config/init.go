package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// InitializeViper initializes Viper configuration from environment
// variables and config files. This must be called before Load().
func InitializeViper() error {
	loadEnvFile()
	setupViper()
	setDefaults()
	readConfigFile()
	return nil
}

// loadEnvFile loads .env file (ignores error if file doesn't exist).
func loadEnvFile() {
	_ = godotenv.Load()
}

// setupViper configures Viper for environment variable and config file
// reading. TRACKER_DATABASE_HOST overrides database.host, and so on.
func setupViper() {
	viper.SetEnvPrefix("TRACKER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
}

// readConfigFile reads config file (ignores error if file doesn't exist).
func readConfigFile() {
	_ = viper.ReadInConfig()
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("app", map[string]any{
		"name":        "pricetracker",
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":       "info",
		"development": false,
		"encoding":    "json",
	})

	viper.SetDefault("server", map[string]any{
		"address":       defaultServerAddress,
		"read_timeout":  defaultServerReadTimeout,
		"write_timeout": defaultServerWriteTimeout,
		"idle_timeout":  defaultServerIdleTimeout,
	})

	viper.SetDefault("database", map[string]any{
		"host":    "localhost",
		"port":    "5432",
		"user":    "postgres",
		"dbname":  "pricetracker",
		"sslmode": "disable",
	})

	viper.SetDefault("fetch", map[string]any{
		"timeout":        "30s",
		"render_timeout": "60s",
	})

	viper.SetDefault("tracker", map[string]any{
		"max_attempts":     3,
		"retry_base_delay": "2s",
	})

	viper.SetDefault("scheduler", map[string]any{
		"tick_interval":  "1m",
		"max_concurrent": 5,
		"batch_limit":    50,
	})

	viper.SetDefault("alerts", map[string]any{
		"drop_threshold_percent": 10.0,
		"cooldown":               "24h",
	})

	viper.SetDefault("ratelimit", map[string]any{
		"default_interval": "5s",
	})
}
