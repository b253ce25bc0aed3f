package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		APIBaseURL:   "http://localhost:5000/api",
		APIBackend:   "rest",
		StateDBPath:  "./state.db",
		LogLevel:     "warn",
		DefaultPayer: "User",
		Currency:     "INR",
		TopLimit:     10,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid rest backend config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "valid memory backend over https",
			mutate:  func(c *Config) { c.APIBackend = "memory"; c.APIBaseURL = "https://api.example.com/api" },
			wantErr: false,
		},
		{
			name:        "empty base URL",
			mutate:      func(c *Config) { c.APIBaseURL = "" },
			wantErr:     true,
			errorString: "API base URL cannot be empty",
		},
		{
			name:        "base URL with wrong scheme",
			mutate:      func(c *Config) { c.APIBaseURL = "ftp://example.com" },
			wantErr:     true,
			errorString: "invalid API base URL scheme 'ftp': must be 'http' or 'https'",
		},
		{
			name:        "invalid backend",
			mutate:      func(c *Config) { c.APIBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid API backend 'sheets': must be one of [rest memory]",
		},
		{
			name:        "missing state path",
			mutate:      func(c *Config) { c.StateDBPath = "" },
			wantErr:     true,
			errorString: "state database path cannot be empty",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			wantErr:     true,
			errorString: "invalid log level 'loud'",
		},
		{
			name:        "blank payer",
			mutate:      func(c *Config) { c.DefaultPayer = "  " },
			wantErr:     true,
			errorString: "default payer cannot be empty",
		},
		{
			name:        "unknown currency",
			mutate:      func(c *Config) { c.Currency = "XYZ" },
			wantErr:     true,
			errorString: "unknown currency 'XYZ'",
		},
		{
			name:        "top limit too small",
			mutate:      func(c *Config) { c.TopLimit = 0 },
			wantErr:     true,
			errorString: "invalid top limit 0: must be at least 1",
		},
		{
			name:        "top limit too large",
			mutate:      func(c *Config) { c.TopLimit = 500 },
			wantErr:     true,
			errorString: "invalid top limit 500: must be at most 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := Config{APIBackend: "nope", LogLevel: "loud", Currency: "XYZ"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Config.Validate() error = nil, want combined error")
	}
	msg := err.Error()
	for _, want := range []string{
		"configuration validation failed:",
		"API base URL cannot be empty",
		"invalid API backend 'nope'",
		"state database path cannot be empty",
		"invalid log level 'loud'",
		"default payer cannot be empty",
		"unknown currency 'XYZ'",
		"invalid top limit 0",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("combined error missing %q:\n%s", want, msg)
		}
	}
}

func TestLoad(t *testing.T) {
	keys := []string{"API_BASE_URL", "API_BACKEND", "STATE_DB_PATH", "MEMORY_DATA_PATH", "LOG_LEVEL", "DEFAULT_PAYER", "CURRENCY", "TOP_LIMIT"}
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.APIBaseURL != DefaultAPIBaseURL {
			t.Errorf("Load() APIBaseURL = %v, want %v", cfg.APIBaseURL, DefaultAPIBaseURL)
		}
		if cfg.APIBackend != "rest" {
			t.Errorf("Load() APIBackend = %v, want rest", cfg.APIBackend)
		}
		if filepath.Base(cfg.StateDBPath) != "state.db" {
			t.Errorf("Load() StateDBPath = %v, want a state.db path", cfg.StateDBPath)
		}
		if filepath.Base(filepath.Dir(cfg.StateDBPath)) != "spendwise" && filepath.Base(filepath.Dir(cfg.StateDBPath)) != ".spendwise" {
			t.Errorf("Load() StateDBPath = %v, want it under a spendwise directory", cfg.StateDBPath)
		}
		if cfg.LogLevel != "warn" {
			t.Errorf("Load() LogLevel = %v, want warn", cfg.LogLevel)
		}
		if cfg.DefaultPayer != "User" {
			t.Errorf("Load() DefaultPayer = %v, want User", cfg.DefaultPayer)
		}
		if cfg.Currency != "INR" {
			t.Errorf("Load() Currency = %v, want INR", cfg.Currency)
		}
		if cfg.TopLimit != 10 {
			t.Errorf("Load() TopLimit = %v, want 10", cfg.TopLimit)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "https://spend.example.com/api")
		t.Setenv("API_BACKEND", "memory")
		t.Setenv("STATE_DB_PATH", "/tmp/spendwise-test/state.db")
		t.Setenv("MEMORY_DATA_PATH", "/tmp/spendwise-test/data.json")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("DEFAULT_PAYER", "Meera")
		t.Setenv("CURRENCY", "eur")
		t.Setenv("TOP_LIMIT", "25")

		cfg := Load()

		if cfg.APIBaseURL != "https://spend.example.com/api" {
			t.Errorf("Load() APIBaseURL = %v", cfg.APIBaseURL)
		}
		if cfg.APIBackend != "memory" {
			t.Errorf("Load() APIBackend = %v, want memory", cfg.APIBackend)
		}
		if cfg.StateDBPath != "/tmp/spendwise-test/state.db" {
			t.Errorf("Load() StateDBPath = %v", cfg.StateDBPath)
		}
		if cfg.MemoryDataPath != "/tmp/spendwise-test/data.json" {
			t.Errorf("Load() MemoryDataPath = %v", cfg.MemoryDataPath)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("Load() LogLevel = %v, want debug", cfg.LogLevel)
		}
		if cfg.DefaultPayer != "Meera" {
			t.Errorf("Load() DefaultPayer = %v, want Meera", cfg.DefaultPayer)
		}
		if cfg.Currency != "EUR" {
			t.Errorf("Load() Currency = %v, want EUR", cfg.Currency)
		}
		if cfg.TopLimit != 25 {
			t.Errorf("Load() TopLimit = %v, want 25", cfg.TopLimit)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		t.Setenv("TOP_LIMIT", "many")

		cfg := Load()

		if cfg.TopLimit != DefaultTopLimit {
			t.Errorf("Load() TopLimit = %v, want %d (default for invalid input)", cfg.TopLimit, DefaultTopLimit)
		}
	})
}
