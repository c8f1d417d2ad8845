// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Input sources.
	PositionsFile       string
	ThemesFile          string
	AnalyticsFile       string
	InternalRatingsFile string
	ClassificationsFile string // optional YAML overriding built-in lookup tables

	// Outputs.
	OutputDir    string
	DatabasePath string

	// Reference-data service.
	RefdataURL         string
	RefdataAPIKey      string
	RefdataCacheTTLHrs int
	RefdataMaxAttempts int

	// Report settings.
	TopHoldings int
	FXHedgeUSD  float64

	// Server / scheduler.
	Port            int
	AnalyzeSchedule string // cron expression, empty disables scheduled runs
	LogLevel        string
	DevMode         bool

	// Optional S3 publishing.
	S3Bucket string
	S3Prefix string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		PositionsFile:       getEnv("POSITIONS_FILE", "./data/positions.csv"),
		ThemesFile:          getEnv("THEMES_FILE", "./data/themes.csv"),
		AnalyticsFile:       getEnv("ANALYTICS_FILE", "./data/analytics.csv"),
		InternalRatingsFile: getEnv("INTERNAL_RATINGS_FILE", "./data/internal_ratings.csv"),
		ClassificationsFile: getEnv("CLASSIFICATIONS_FILE", ""),
		OutputDir:           getEnv("OUTPUT_DIR", "./out"),
		DatabasePath:        getEnv("DATABASE_PATH", "./data/analyzer.db"),
		RefdataURL:          getEnv("REFDATA_URL", ""),
		RefdataAPIKey:       getEnv("REFDATA_API_KEY", ""),
		RefdataCacheTTLHrs:  getEnvAsInt("REFDATA_CACHE_TTL_HOURS", 12),
		RefdataMaxAttempts:  getEnvAsInt("REFDATA_MAX_ATTEMPTS", 3),
		TopHoldings:         getEnvAsInt("TOP_HOLDINGS", 10),
		FXHedgeUSD:          getEnvAsFloat("FX_HEDGE_USD", 2.0),
		Port:                getEnvAsInt("PORT", 8001),
		AnalyzeSchedule:     getEnv("ANALYZE_SCHEDULE", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Prefix:            getEnv("S3_PREFIX", "reports"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.PositionsFile == "" {
		return fmt.Errorf("POSITIONS_FILE is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.TopHoldings <= 0 {
		return fmt.Errorf("TOP_HOLDINGS must be positive, got %d", c.TopHoldings)
	}
	if c.RefdataMaxAttempts <= 0 {
		return fmt.Errorf("REFDATA_MAX_ATTEMPTS must be positive, got %d", c.RefdataMaxAttempts)
	}
	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsFloat retrieves an environment variable as float64
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool retrieves an environment variable as boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
