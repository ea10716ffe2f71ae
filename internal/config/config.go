// Package config handles loading and validating configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the intrinsic event engine.
type Config struct {
	// Binance market data feed
	BinanceWSURL   string
	BinanceRESTURL string
	Symbols        []string

	// Replay (when ReplayFile is set, ticks come from CSV instead of the feed)
	ReplayFile     string
	ReplayInterval time.Duration

	// Detector parameters
	ThresholdUp   float64
	ThresholdDown float64
	OSSizeUp      float64
	OSSizeDown    float64
	InitialMode   int
	RelativeMoves bool

	// PriceScale is the number of decimal places kept when prices are
	// converted to scaled int64 (4 turns "97.1234" into 971234).
	PriceScale int

	// Workers
	WorkerCount int

	// UI
	EnableTUI     bool
	UIRefreshRate time.Duration

	// Logging
	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Load reads configuration from environment variables with fallback to .env file.
// Priority order: Environment variables > .env file > hardcoded defaults
func Load() (*Config, error) {
	// Attempt to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		// Feed
		BinanceWSURL:   getEnv("BINANCE_WS_URL", "wss://stream.binance.com:9443/ws"),
		BinanceRESTURL: getEnv("BINANCE_REST_URL", "https://api.binance.com"),
		Symbols:        splitSymbols(getEnv("SYMBOLS", "BTCUSDT,ETHUSDT")),

		// Replay
		ReplayFile:     getEnv("REPLAY_FILE", ""),
		ReplayInterval: time.Duration(getEnvInt("REPLAY_INTERVAL_MS", 0)) * time.Millisecond,

		// Detector
		ThresholdUp:   getEnvFloat("THRESHOLD_UP", 0.005),
		ThresholdDown: getEnvFloat("THRESHOLD_DOWN", 0.005),
		OSSizeUp:      getEnvFloat("OS_SIZE_UP", 0.005),
		OSSizeDown:    getEnvFloat("OS_SIZE_DOWN", 0.005),
		InitialMode:   getEnvInt("INITIAL_MODE", 1),
		RelativeMoves: getEnvBool("RELATIVE_MOVES", true),
		PriceScale:    getEnvInt("PRICE_SCALE", 8),

		// Workers
		WorkerCount: getEnvInt("WORKER_COUNT", 4),

		// UI
		EnableTUI:     getEnvBool("ENABLE_TUI", true),
		UIRefreshRate: time.Duration(getEnvInt("UI_REFRESH_MS", 500)) * time.Millisecond,

		// Logging
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 14),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set and valid.
// Detector thresholds are deliberately not range-checked: non-positive
// values are an unusual but valid configuration that fires an event on
// every qualifying tick.
func (c *Config) Validate() error {
	if c.ReplayFile == "" {
		if c.BinanceWSURL == "" {
			return fmt.Errorf("BINANCE_WS_URL is required when no REPLAY_FILE is set")
		}
		if len(c.Symbols) == 0 {
			return fmt.Errorf("SYMBOLS must list at least one instrument")
		}
	}

	if c.InitialMode != 1 && c.InitialMode != -1 {
		return fmt.Errorf("INITIAL_MODE must be +1 or -1, got %d", c.InitialMode)
	}

	if c.PriceScale < 0 || c.PriceScale > 18 {
		return fmt.Errorf("PRICE_SCALE must be between 0 and 18")
	}

	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1")
	}

	return nil
}

// splitSymbols parses a comma-separated symbol list, uppercased and trimmed.
func splitSymbols(s string) []string {
	var symbols []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			symbols = append(symbols, part)
		}
	}
	return symbols
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as a float64 or returns a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean or returns a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
