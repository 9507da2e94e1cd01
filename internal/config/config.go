// Package config loads the core's tunables from the environment, the
// same getEnv/getEnvAsX helper pattern the rest of this codebase uses for
// every other process-boundary setting.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/oraclefeed/pkg/oraclecore"
)

const sourceWeightPrefix = "SOURCE_WEIGHT_"

// Config holds every environment-driven setting the core recognizes.
type Config struct {
	FetchIntervalMillis int64
	MinSources          int
	WindowMillis        int64
	DefaultMethod       oraclecore.Method
	TrimFraction        float64
	SourceWeights       map[string]float64
	StockSymbols        []string
	CronExpression      string
	LogLevel            string
	SymbolExchanges     map[string]string
}

// Load reads configuration from the environment (loading a .env file
// first, if present) and validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		FetchIntervalMillis: getEnvAsInt64("FETCH_INTERVAL_MILLIS", 60_000),
		MinSources:          getEnvAsInt("MIN_SOURCES", 3),
		WindowMillis:        getEnvAsInt64("WINDOW_MILLIS", 30_000),
		DefaultMethod:       oraclecore.Method(getEnv("DEFAULT_METHOD", string(oraclecore.MethodWeightedMean))),
		TrimFraction:        getEnvAsFloat("TRIM_FRACTION", 0.20),
		SourceWeights:       loadSourceWeights(),
		StockSymbols:        splitSymbols(getEnv("STOCK_SYMBOLS", "")),
		CronExpression:      getEnv("CRON_EXPRESSION", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}

	sourcesFile, err := LoadSourcesFile(getEnv("SOURCES_CONFIG_FILE", ""))
	if err != nil {
		return nil, fmt.Errorf("loading SOURCES_CONFIG_FILE: %w", err)
	}
	cfg.Merge(sourcesFile)
	if sourcesFile != nil {
		cfg.SymbolExchanges = sourcesFile.SymbolExchanges
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every configured value against the range each setting
// is documented to accept.
func (c *Config) Validate() error {
	if c.FetchIntervalMillis < 1000 {
		return fmt.Errorf("FETCH_INTERVAL_MILLIS must be >= 1000, got %d", c.FetchIntervalMillis)
	}
	if c.MinSources < 1 {
		return fmt.Errorf("MIN_SOURCES must be >= 1, got %d", c.MinSources)
	}
	if c.WindowMillis < 1000 {
		return fmt.Errorf("WINDOW_MILLIS must be >= 1000, got %d", c.WindowMillis)
	}
	switch c.DefaultMethod {
	case oraclecore.MethodWeightedMean, oraclecore.MethodMedian, oraclecore.MethodTrimmedMean:
	default:
		return fmt.Errorf("DEFAULT_METHOD must be one of weighted-mean, median, trimmed-mean, got %q", c.DefaultMethod)
	}
	if c.TrimFraction < 0 || c.TrimFraction >= 0.5 {
		return fmt.Errorf("TRIM_FRACTION must be in [0, 0.5), got %v", c.TrimFraction)
	}
	for source, w := range c.SourceWeights {
		if w < 0 {
			return fmt.Errorf("SOURCE_WEIGHT_%s must be >= 0, got %v", strings.ToUpper(source), w)
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

// ToOptions translates the loaded configuration into engine options.
func (c *Config) ToOptions() oraclecore.Options {
	return oraclecore.Options{
		MinSources:            c.MinSources,
		WindowMillis:          c.WindowMillis,
		Method:                c.DefaultMethod,
		TrimFraction:          c.TrimFraction,
		SourceWeightOverrides: c.SourceWeights,
	}
}

// FetchInterval is FetchIntervalMillis as a time.Duration.
func (c *Config) FetchInterval() time.Duration {
	return time.Duration(c.FetchIntervalMillis) * time.Millisecond
}

// loadSourceWeights scans the environment for SOURCE_WEIGHT_<NAME>
// entries and builds a source(lowercase)->weight override map.
func loadSourceWeights() map[string]float64 {
	weights := make(map[string]float64)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, sourceWeightPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, sourceWeightPrefix))
		if w, err := strconv.ParseFloat(value, 64); err == nil {
			weights[name] = w
		}
	}
	return weights
}

func splitSymbols(raw string) []string {
	if raw == "" {
		return nil
	}
	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// Helper functions, in the same shape used throughout this codebase.

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
