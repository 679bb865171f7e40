package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Hyperliquid HyperliquidConfig `yaml:"hyperliquid"`
	Registry    RegistryConfig    `yaml:"registry"`
	Aggregator  AggregatorConfig  `yaml:"aggregator"`
	MarketData  MarketDataConfig  `yaml:"marketData"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
}

// HyperliquidConfig holds the configuration for the Hyperliquid info API client.
type HyperliquidConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RateLimit            float64 `yaml:"rateLimit"`
	BurstLimit           int     `yaml:"burstLimit"`
}

// RegistryConfig holds the configuration for the wallet registry.
type RegistryConfig struct {
	// MaxWalletsPerUser caps a user's tracked wallet set to bound the
	// downstream fetch fan-out.
	MaxWalletsPerUser int `yaml:"maxWalletsPerUser"`
}

// AggregatorConfig holds the configuration for the portfolio aggregator.
type AggregatorConfig struct {
	MaxConcurrentFetches int `yaml:"maxConcurrentFetches"`
}

// MarketDataConfig holds the configuration for the market data cache.
type MarketDataConfig struct {
	CacheTTLSeconds        int `yaml:"cacheTTLSeconds"`
	CacheCleanupTTLSeconds int `yaml:"cacheCleanupTTLSeconds"`
}

// LoadConfig loads configuration from a YAML file and applies defaults
// for anything left unset.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	ApplyDefaults(&cfg)

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

// ApplyDefaults fills in defaults for every field left at its zero value.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Hyperliquid.BaseURL == "" {
		cfg.Hyperliquid.BaseURL = "https://api.hyperliquid.xyz/info"
		logrus.Infof("Hyperliquid.BaseURL not set, defaulting to %s", cfg.Hyperliquid.BaseURL)
	}
	if cfg.Hyperliquid.RequestTimeoutMillis <= 0 {
		cfg.Hyperliquid.RequestTimeoutMillis = 10000 // 10 seconds
	}
	if cfg.Hyperliquid.RateLimit <= 0 {
		cfg.Hyperliquid.RateLimit = 10
	}
	if cfg.Hyperliquid.BurstLimit <= 0 {
		cfg.Hyperliquid.BurstLimit = 5
	}
	if cfg.Registry.MaxWalletsPerUser <= 0 {
		cfg.Registry.MaxWalletsPerUser = 10
		logrus.Infof("Registry.MaxWalletsPerUser not set, defaulting to %d", cfg.Registry.MaxWalletsPerUser)
	}
	if cfg.Aggregator.MaxConcurrentFetches <= 0 {
		cfg.Aggregator.MaxConcurrentFetches = 5
	}
	if cfg.MarketData.CacheTTLSeconds <= 0 {
		cfg.MarketData.CacheTTLSeconds = 15
	}
	if cfg.MarketData.CacheCleanupTTLSeconds <= 0 {
		cfg.MarketData.CacheCleanupTTLSeconds = 300
	}
}
