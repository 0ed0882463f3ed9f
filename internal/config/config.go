// Package config loads toolkit configuration from a YAML file with
// environment variable overrides for credentials.
//
// File values are the base; TRADE_API_KEY, TRADE_SECRET_KEY and
// TRADE_MONGO_URI take precedence when set, so secrets can stay out of
// checked-in config files.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Defaults applied for optional fields left empty.
const (
	DefaultMongoURI = "mongodb://localhost:27017"
	DefaultInterval = "15m"
	DefaultKlineDB  = "klines"
)

// ErrMissingCredentials indicates the API key or secret required for signed
// operations is not configured.
var ErrMissingCredentials = errors.New("api key and secret key are required")

// Config holds all runtime settings for the toolkit.
type Config struct {
	// APIKey authenticates signed futures API requests.
	APIKey string `yaml:"api_key" env:"TRADE_API_KEY"`

	// SecretKey is the HMAC signing key for private endpoints.
	SecretKey string `yaml:"secret_key" env:"TRADE_SECRET_KEY"`

	// MongoURI is the historical kline store connection string.
	MongoURI string `yaml:"mongo_uri" env:"TRADE_MONGO_URI"`

	// Symbols lists the contract symbols to operate on (e.g., BTCUSDT).
	Symbols []string `yaml:"symbols"`

	// Interval is the kline interval for market data queries (e.g., "15m").
	Interval string `yaml:"interval"`

	// KlineDB is the MongoDB database holding kline collections.
	KlineDB string `yaml:"kline_db"`
}

// Load reads the YAML file at path, applies environment overrides and fills
// in defaults for optional fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	if cfg.MongoURI == "" {
		cfg.MongoURI = DefaultMongoURI
	}
	if cfg.Interval == "" {
		cfg.Interval = DefaultInterval
	}
	if cfg.KlineDB == "" {
		cfg.KlineDB = DefaultKlineDB
	}

	return &cfg, nil
}

// RequireCredentials verifies the config can serve signed operations.
func (c *Config) RequireCredentials() error {
	if c.APIKey == "" || c.SecretKey == "" {
		return ErrMissingCredentials
	}
	return nil
}
