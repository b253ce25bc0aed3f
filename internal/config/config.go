package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"spendwise/internal/core"
)

const (
	DefaultAPIBaseURL = "http://localhost:5000/api"
	DefaultLogLevel   = "warn"
	DefaultPayer      = "User"
	DefaultTopLimit   = 10
)

type Config struct {
	// Remote API
	APIBaseURL string
	APIBackend string

	// Client state
	StateDBPath string

	// In-memory backend snapshot; empty keeps data in process only
	MemoryDataPath string

	// Logging
	LogLevel string

	// Display
	DefaultPayer string
	Currency     string
	TopLimit     int
}

func Load() *Config {
	return &Config{
		APIBaseURL: getEnv("API_BASE_URL", DefaultAPIBaseURL),
		APIBackend: getEnv("API_BACKEND", "rest"),

		StateDBPath:    getEnv("STATE_DB_PATH", defaultStatePath("state.db")),
		MemoryDataPath: getEnv("MEMORY_DATA_PATH", defaultStatePath("memory.json")),

		LogLevel: getEnv("LOG_LEVEL", DefaultLogLevel),

		DefaultPayer: getEnv("DEFAULT_PAYER", DefaultPayer),
		Currency:     strings.ToUpper(getEnv("CURRENCY", core.DefaultCurrency)),
		TopLimit:     getEnvInt("TOP_LIMIT", DefaultTopLimit),
	}
}

// defaultStatePath places name under the user config directory, or the
// working directory when there is none.
func defaultStatePath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".", ".spendwise", name)
	}
	return filepath.Join(dir, "spendwise", name)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate API base URL
	if c.APIBaseURL == "" {
		errors = append(errors, "API base URL cannot be empty")
	} else if parsedURL, err := url.Parse(c.APIBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	// Validate backend
	validBackends := []string{"rest", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.APIBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid API backend '%s': must be one of %v", c.APIBackend, validBackends))
	}

	if c.StateDBPath == "" {
		errors = append(errors, "state database path cannot be empty")
	}

	// Validate log level
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	if strings.TrimSpace(c.DefaultPayer) == "" {
		errors = append(errors, "default payer cannot be empty")
	}

	if !core.KnownCurrency(c.Currency) {
		errors = append(errors, fmt.Sprintf("unknown currency '%s'", c.Currency))
	}

	if c.TopLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid top limit %d: must be at least 1", c.TopLimit))
	} else if c.TopLimit > 100 {
		errors = append(errors, fmt.Sprintf("invalid top limit %d: must be at most 100", c.TopLimit))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
