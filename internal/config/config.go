// Package config provides centralized configuration loading for the gateway.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Mode represents the gateway operating mode.
type Mode string

const (
	// ModeSingle is for single-node deployments: in-memory store and locks,
	// no Redis required.
	ModeSingle Mode = "single"

	// ModeCluster is for multi-node deployments sharing state through Redis.
	// REDIS_URL becomes mandatory.
	ModeCluster Mode = "cluster"
)

// Config holds all gateway configuration.
type Config struct {
	// Core
	Mode    Mode
	Port    string
	BaseURL string

	// Shared state
	RedisURL string

	// Tenant directory
	BrandsFile string

	// Error tracking
	SentryDSN   string
	Environment string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables. Variables mandatory
// for the selected mode cause Load to return an error when missing.
func Load() (*Config, error) {
	c := &Config{
		Mode:       parseMode(getenv("FESTIVENT_MODE", "single")),
		Port:       getenv("PORT", "8080"),
		BaseURL:    getenv("FESTIVENT_BASE_URL", "https://events.festivent.io"),
		RedisURL:   os.Getenv("REDIS_URL"),
		BrandsFile: getenv("BRANDS_FILE", "brands.yaml"),

		SentryDSN:   os.Getenv("SENTRY_DSN"),
		Environment: getenv("FESTIVENT_ENV", "production"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),
	}

	if _, err := strconv.Atoi(c.Port); err != nil {
		return nil, fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.BrandsFile == "" {
		return nil, fmt.Errorf("BRANDS_FILE is required")
	}
	if c.IsClusterMode() && c.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required in cluster mode")
	}

	return c, nil
}

// IsClusterMode reports whether the gateway shares state through Redis.
func (c *Config) IsClusterMode() bool {
	return c.Mode == ModeCluster
}

// IsSingleMode reports whether the gateway runs on in-memory state.
func (c *Config) IsSingleMode() bool {
	return c.Mode == ModeSingle
}

// parseMode parses the mode string, defaulting to single.
func parseMode(s string) Mode {
	switch strings.ToLower(s) {
	case "cluster":
		return ModeCluster
	default:
		return ModeSingle
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
