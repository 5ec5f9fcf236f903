package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromPath_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Product.Title != "App Shell" {
		t.Fatalf("unexpected default title %q", cfg.Product.Title)
	}
	if cfg.SaveDebounce() != time.Second {
		t.Fatalf("unexpected default debounce %v", cfg.SaveDebounce())
	}
	if cfg.ReconcileInterval() != 10*time.Second {
		t.Fatalf("unexpected default reconcile interval %v", cfg.ReconcileInterval())
	}
}

func TestLoadFromPath_ReadsValues(t *testing.T) {
	path := writeConfig(t, `
product:
  title: Notes
  default_url: https://notes.example/index.html
window:
  save_debounce_ms: 250
state:
  file: /tmp/notes-state.json
log_level: debug
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Product.Title != "Notes" {
		t.Fatalf("title = %q", cfg.Product.Title)
	}
	if cfg.Product.DefaultURL != "https://notes.example/index.html" {
		t.Fatalf("default_url = %q", cfg.Product.DefaultURL)
	}
	if cfg.SaveDebounce() != 250*time.Millisecond {
		t.Fatalf("debounce = %v", cfg.SaveDebounce())
	}
	stateFile, err := cfg.StateFile()
	if err != nil {
		t.Fatalf("StateFile failed: %v", err)
	}
	if stateFile != "/tmp/notes-state.json" {
		t.Fatalf("state file = %q", stateFile)
	}
}

func TestLoadFromPath_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "product:\n  title: Notes\n")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.SaveDebounce() != time.Second {
		t.Fatalf("partial config lost debounce default: %v", cfg.SaveDebounce())
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("partial config lost log level default: %q", cfg.LogLevel)
	}
}

func TestLoadFromPath_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "product: [broken\n")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	cfg.Product.Title = ""
	var verr *ValidationError
	if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != "product.title" {
		t.Fatalf("expected product.title validation error, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Window.SaveDebounceMS = -1
	if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != "window.save_debounce_ms" {
		t.Fatalf("expected save_debounce_ms validation error, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.LogLevel = "loud"
	if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != "log_level" {
		t.Fatalf("expected log_level validation error, got %v", err)
	}
}

func TestStateFile_DefaultUnderHome(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	path, err := cfg.StateFile()
	if err != nil {
		t.Fatalf("StateFile failed: %v", err)
	}
	want := filepath.Join(os.Getenv("HOME"), ".config", "appshell", "windowstate.json")
	if path != want {
		t.Fatalf("state file = %q, want %q", path, want)
	}
}
