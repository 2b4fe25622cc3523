// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	// Run ingest settings.
	RunDir      string // Directory holding exported result files (or its json/ parent).
	PricingFile string // Optional pricing table override; empty uses the embedded table.
	Model       string // Model name used for cost attribution when results omit one.

	// Operational settings.
	LogLevel        string
	LoadConcurrency int // Parallel result-file reads during run ingest.
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		RunDir:          envStr("TENKEN_RUN_DIR", ""),
		PricingFile:     envStr("TENKEN_PRICING_FILE", ""),
		Model:           envStr("TENKEN_MODEL", ""),
		LogLevel:        envStr("TENKEN_LOG_LEVEL", "info"),
		LoadConcurrency: envInt("TENKEN_LOAD_CONCURRENCY", 8),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if c.LoadConcurrency <= 0 {
		return fmt.Errorf("config: TENKEN_LOAD_CONCURRENCY must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: TENKEN_LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
