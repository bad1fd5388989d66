package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Comparison ComparisonConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig holds purchase history storage configuration
type StoreConfig struct {
	Path string `mapstructure:"path"` // sqlite file, ":memory:" for throwaway runs
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP      int `mapstructure:"per_ip"` // requests per minute
	Burst      int `mapstructure:"burst"`
	MaxClients int `mapstructure:"max_clients"`
}

// ComparisonConfig holds comparison defaults
type ComparisonConfig struct {
	DefaultTaxRate float64 `mapstructure:"default_tax_rate"`
	DefaultUnit    string  `mapstructure:"default_unit"`
	EnableTrace    bool    `mapstructure:"enable_trace"`
	MaxParallel    int     `mapstructure:"max_parallel"`
	HistoryLimit   int     `mapstructure:"history_limit"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricelens/")

	// PRICELENS_SERVER_PORT maps to server.port
	v.SetEnvPrefix("PRICELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
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

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Store defaults
	v.SetDefault("store.path", "pricelens.db")

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)
	v.SetDefault("ratelimit.max_clients", 10000)

	// Comparison defaults
	v.SetDefault("comparison.default_tax_rate", 0.10)
	v.SetDefault("comparison.default_unit", "g")
	v.SetDefault("comparison.enable_trace", false)
	v.SetDefault("comparison.max_parallel", 8)
	v.SetDefault("comparison.history_limit", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Store.Path == "" {
		return fmt.Errorf("store path is required (set PRICELENS_STORE_PATH)")
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got: %s", config.Cache.TTL)
	}

	if config.RateLimit.PerIP <= 0 || config.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit and burst must be positive, got: %d/%d", config.RateLimit.PerIP, config.RateLimit.Burst)
	}

	if config.Comparison.DefaultTaxRate < 0 || config.Comparison.DefaultTaxRate > 1 {
		return fmt.Errorf("default tax rate must be between 0 and 1, got: %v", config.Comparison.DefaultTaxRate)
	}

	if config.Comparison.DefaultUnit == "" {
		return fmt.Errorf("default unit is required")
	}

	return nil
}

// loadEnvFile exports KEY=VALUE pairs from ./.env into the process
// environment. Variables that are already set win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return gotenv.Load(".env")
}
