package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Tracker   TrackerConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StorageConfig selects the key-value backend and the keys of the two records
type StorageConfig struct {
	Type           string `mapstructure:"type"` // "memory", "sqlite" or "postgres"
	SQLitePath     string `mapstructure:"sqlite_path"`
	PostgresURL    string `mapstructure:"postgres_url"`
	DailyStateKey  string `mapstructure:"daily_state_key"`
	MasterItemsKey string `mapstructure:"master_items_key"`
	QuotaBytes     int    `mapstructure:"quota_bytes"` // memory store only
}

// TrackerConfig holds day-boundary configuration
type TrackerConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Location resolves Timezone; "Local" and "" mean the process timezone
func (c TrackerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/diettracker/")

	// Environment variable settings
	v.SetEnvPrefix("DIETTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment without overriding existing variables.
// A missing file is not an error.
func loadEnvFile() error {
	err := godotenv.Load(".env")
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Storage defaults
	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.sqlite_path", "diettracker.db")
	v.SetDefault("storage.postgres_url", "")
	v.SetDefault("storage.daily_state_key", "dietTrackerState")
	v.SetDefault("storage.master_items_key", "dietTrackerUserItems")
	v.SetDefault("storage.quota_bytes", 5*1024*1024)

	// Tracker defaults
	v.SetDefault("tracker.timezone", "Local")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Storage.Type {
	case "memory":
	case "sqlite":
		if config.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required when storage type is 'sqlite'")
		}
	case "postgres":
		if config.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required when storage type is 'postgres' (set DIETTRACKER_STORAGE_POSTGRES_URL)")
		}
	default:
		return fmt.Errorf("storage type must be 'memory', 'sqlite' or 'postgres', got: %s", config.Storage.Type)
	}

	if config.Storage.DailyStateKey == "" || config.Storage.MasterItemsKey == "" {
		return fmt.Errorf("storage keys must not be empty")
	}
	if config.Storage.DailyStateKey == config.Storage.MasterItemsKey {
		return fmt.Errorf("daily state and master items keys must differ")
	}

	if _, err := config.Tracker.Location(); err != nil {
		return fmt.Errorf("invalid tracker timezone %q: %w", config.Tracker.Timezone, err)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("ratelimit per_ip must be positive, got: %d", config.RateLimit.PerIP)
	}

	if _, err := zapcore.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	return nil
}
