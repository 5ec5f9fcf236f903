// Package config loads and validates the appshell daemon configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ProductConfig identifies the hosted application.
type ProductConfig struct {
	// Title is used for window titles.
	Title string `yaml:"title"`
	// DefaultURL is loaded into windows created without an explicit URL.
	DefaultURL string `yaml:"default_url"`
}

// WindowConfig tunes window behavior.
type WindowConfig struct {
	// SaveDebounceMS is the quiet period after a resize or move before the
	// window state is written, in milliseconds. Default: 1000.
	SaveDebounceMS int `yaml:"save_debounce_ms,omitempty"`
}

// StateConfig controls window-state persistence.
type StateConfig struct {
	// File is the window state file path
	// (default: ~/.config/appshell/windowstate.json).
	File string `yaml:"file,omitempty"`
}

// ReconcileConfig tunes the drift reconciler.
type ReconcileConfig struct {
	// IntervalSeconds between reconciliation passes. Default: 10.
	IntervalSeconds int `yaml:"interval_seconds,omitempty"`
}

// Config is the effective daemon configuration.
type Config struct {
	Product   ProductConfig   `yaml:"product"`
	Window    WindowConfig    `yaml:"window,omitempty"`
	State     StateConfig     `yaml:"state,omitempty"`
	Reconcile ReconcileConfig `yaml:"reconcile,omitempty"`
	LogLevel  string          `yaml:"log_level,omitempty"`
}

// ValidationError reports an invalid configuration value with its YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Product: ProductConfig{
			Title: "App Shell",
		},
		Window: WindowConfig{
			SaveDebounceMS: 1000,
		},
		Reconcile: ReconcileConfig{
			IntervalSeconds: 10,
		},
		LogLevel: "info",
	}
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "appshell", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from path. A missing file yields the
// defaults; a present but malformed or invalid file is an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the standard location.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}

	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.Product.Title == "" {
		return &ValidationError{Path: "product.title", Err: fmt.Errorf("title is required")}
	}
	if c.Window.SaveDebounceMS < 0 {
		return &ValidationError{Path: "window.save_debounce_ms", Err: fmt.Errorf("save_debounce_ms must be >= 0")}
	}
	if c.Reconcile.IntervalSeconds < 0 {
		return &ValidationError{Path: "reconcile.interval_seconds", Err: fmt.Errorf("interval_seconds must be >= 0")}
	}
	switch c.LogLevel {
	case "", "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// SaveDebounce returns the window-state save quiet period.
func (c *Config) SaveDebounce() time.Duration {
	if c.Window.SaveDebounceMS <= 0 {
		return time.Second
	}
	return time.Duration(c.Window.SaveDebounceMS) * time.Millisecond
}

// ReconcileInterval returns the reconciler tick interval.
func (c *Config) ReconcileInterval() time.Duration {
	if c.Reconcile.IntervalSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Reconcile.IntervalSeconds) * time.Second
}

// StateFile returns the window state file path, resolving the default when
// unset.
func (c *Config) StateFile() (string, error) {
	if c.State.File != "" {
		return c.State.File, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "appshell", "windowstate.json"), nil
}
