package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	apperrors "github.com/ducminhle1904/stock-signal-backtest/internal/errors"
)

// Manager loads and validates configurations
type Manager struct {
	validator *Validator
}

// NewManager creates a configuration manager
func NewManager() *Manager {
	return &Manager{validator: NewValidator()}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path yields the defaults. The result is not validated yet so
// callers can apply flag overrides first.
func (m *Manager) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorCategoryConfiguration, "config", "load", "could not read config file")
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorCategoryConfiguration, "config", "load",
				fmt.Sprintf("could not parse %s", path))
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates a configuration
func (m *Manager) Validate(cfg *Config) error {
	if err := m.validator.Validate(cfg); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorCategoryConfiguration, "config", "validate", "configuration validation failed")
	}
	return nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from SSB_* environment variables
func ApplyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvDataFile)); v != "" {
		cfg.Data.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSymbol)); v != "" {
		cfg.Data.Symbol = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvInitialCash)); v != "" {
		cash, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrorCategoryConfiguration, "config", "apply_env",
				fmt.Sprintf("%s is not a number", EnvInitialCash))
		}
		cfg.Backtest.InitialCash = cash
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutputDir)); v != "" {
		cfg.Output.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Output.LogLevel = v
	}
	return nil
}

// Save writes the configuration as indented JSON, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
