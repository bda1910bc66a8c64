package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port           int           // HTTP server port
	ScanTimeout    time.Duration // Overall deadline for one scan request
	RateLimitRPS   float64       // Allowed scan requests per second (0 disables limiting)
	RateLimitBurst int           // Token bucket burst size
	LogLevel       string        // debug, info, warn or error

	// Fetch configuration
	PageTimeout       time.Duration // Timeout for the target page request
	ScriptTimeout     time.Duration // Timeout for each script request
	ScriptFetchLimit  int           // Maximum number of scripts fetched per scan (at most 10)
	ScriptMaxBytes    int           // Bytes of each script kept for matching (at most 500000)
	ScriptConcurrency int           // Script requests in flight per scan
	UserAgent         string        // User-Agent header sent with every request
}

// Load reads configuration from environment variables
// and returns a Config struct with defaults applied
func Load() *Config {
	return &Config{
		Port:              getEnvAsInt("PORT", 3001),
		ScanTimeout:       getEnvAsDuration("SCAN_TIMEOUT", 60000*time.Millisecond),
		RateLimitRPS:      getEnvAsFloat("RATE_LIMIT_RPS", 0),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 10),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		PageTimeout:       getEnvAsDuration("PAGE_TIMEOUT", 10000*time.Millisecond),
		ScriptTimeout:     getEnvAsDuration("SCRIPT_TIMEOUT", 8000*time.Millisecond),
		ScriptFetchLimit:  getEnvAsInt("SCRIPT_FETCH_LIMIT", 10),
		ScriptMaxBytes:    getEnvAsInt("SCRIPT_MAX_BYTES", 500000),
		ScriptConcurrency: getEnvAsInt("SCRIPT_CONCURRENCY", 10),
		UserAgent:         getEnv("USER_AGENT", "TechPrint/1.0 (Security Scanner; +https://example.com/techprint)"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as an integer
// If the variable doesn't exist or can't be parsed, returns the default
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsFloat reads an environment variable as a float64
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDuration reads an environment variable as milliseconds and converts to time.Duration
// If the variable doesn't exist or can't be parsed, returns the default
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	// Parse as milliseconds
	ms, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return time.Duration(ms) * time.Millisecond
}
