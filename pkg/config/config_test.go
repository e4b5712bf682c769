package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that DefaultConfig returns valid defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected default host 127.0.0.1, got %s", cfg.Server.Host)
	}
	if cfg.Server.OpenBrowser {
		t.Error("Expected browser launch disabled by default")
	}
	if cfg.Viewer.Mode != ModeWeb {
		t.Errorf("Expected web viewer, got %s", cfg.Viewer.Mode)
	}
	if cfg.Viewer.Provider != "flightradar24" {
		t.Errorf("Expected flightradar24 provider, got %s", cfg.Viewer.Provider)
	}
	if cfg.Viewer.Strategy != StrategyNearest {
		t.Errorf("Expected nearest strategy, got %s", cfg.Viewer.Strategy)
	}
	if cfg.Viewer.ExclusiveTicks {
		t.Error("Expected overlapping ticks by default")
	}
	if cfg.Log.Level != "info" || cfg.Log.File != "" {
		t.Errorf("Unexpected log defaults: %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate, got: %v", err)
	}
}

// TestObservationPoint checks the compiled-in observation point.
func TestObservationPoint(t *testing.T) {
	p := ObservationPoint()

	if p.Location.Latitude != 51.069043 || p.Location.Longitude != 16.979153 {
		t.Errorf("Unexpected location %+v", p.Location)
	}
	if p.LatTolerance != 0.1 || p.LonTolerance != 0.2 {
		t.Errorf("Unexpected tolerances %f/%f", p.LatTolerance, p.LonTolerance)
	}
	if PollInterval != 10*time.Second {
		t.Errorf("Expected 10s poll interval, got %v", PollInterval)
	}
}

// TestLoadNonExistentFile tests that Load returns default config when file doesn't exist.
func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("Expected no error for non-existent file, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected default config, got nil")
	}
	if cfg.Server.Port != "8080" {
		t.Error("Did not get default config for non-existent file")
	}
}

// TestLoadValidConfig tests loading a valid configuration file.
func TestLoadValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.json")

	testConfig := &Config{
		Server: ServerConfig{
			Port:        "9090",
			Host:        "0.0.0.0",
			OpenBrowser: true,
		},
		Viewer: ViewerConfig{
			Mode:           ModeTerminal,
			Provider:       "planefinder",
			Strategy:       StrategyLowestAltitude,
			ExclusiveTicks: true,
		},
		Log: LogConfig{
			Level: "debug",
			File:  "/var/log/flightwatch.log",
		},
	}

	data, err := json.MarshalIndent(testConfig, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal test config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("Expected 0.0.0.0:9090, got %s", cfg.Server.Addr())
	}
	if cfg.Viewer.Mode != ModeTerminal {
		t.Errorf("Expected terminal mode, got %s", cfg.Viewer.Mode)
	}
	if cfg.Viewer.Provider != "planefinder" {
		t.Errorf("Expected planefinder, got %s", cfg.Viewer.Provider)
	}
	if !cfg.Viewer.ExclusiveTicks {
		t.Error("Expected exclusive ticks")
	}
	if cfg.Log.File != "/var/log/flightwatch.log" {
		t.Errorf("Unexpected log file %s", cfg.Log.File)
	}
}

// TestLoadPartialConfig tests that missing keys keep their defaults.
func TestLoadPartialConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(configPath, []byte(`{"server": {"port": "9000"}}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("Expected port 9000, got %s", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected default host, got %s", cfg.Server.Host)
	}
	if cfg.Viewer.Mode != ModeWeb {
		t.Errorf("Expected default mode, got %s", cfg.Viewer.Mode)
	}
}

// TestLoadInvalidJSON tests error handling for malformed JSON.
func TestLoadInvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.json")
	if err := os.WriteFile(configPath, []byte("{ invalid json }"), 0644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Expected parse error, got: %v", err)
	}
}

// TestValidate tests rejection of unknown enumerated values.
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"Unknown mode", func(c *Config) { c.Viewer.Mode = "gui" }},
		{"Unknown provider", func(c *Config) { c.Viewer.Provider = "adsbexchange" }},
		{"Unknown strategy", func(c *Config) { c.Viewer.Strategy = "random" }},
		{"Non-numeric port", func(c *Config) { c.Server.Port = "http" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

// TestSaveConfig tests saving configuration to a nested path and loading it back.
func TestSaveConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "dir", "config.json")

	cfg := DefaultConfig()
	cfg.Server.Port = "9999"
	cfg.Viewer.Provider = "planefinder"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.Server.Port != "9999" {
		t.Errorf("Expected port 9999, got %s", loaded.Server.Port)
	}
	if loaded.Viewer.Provider != "planefinder" {
		t.Errorf("Expected planefinder, got %s", loaded.Viewer.Provider)
	}
}

// TestEnvironmentOverrides tests environment variable overrides.
func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("FLIGHTWATCH_PORT", "7777")
	t.Setenv("FLIGHTWATCH_HOST", "0.0.0.0")
	t.Setenv("FLIGHTWATCH_VIEWER", ModeTerminal)
	t.Setenv("FLIGHTWATCH_PROVIDER", "planefinder")
	t.Setenv("FLIGHTWATCH_LOG_LEVEL", "debug")
	t.Setenv("FLIGHTWATCH_LOG_FILE", "/tmp/fw.log")

	configPath := filepath.Join(t.TempDir(), "config.json")
	data, _ := json.Marshal(DefaultConfig())
	os.WriteFile(configPath, data, 0644)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != "7777" {
		t.Errorf("Expected port 7777 from env, got %s", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected host from env, got %s", cfg.Server.Host)
	}
	if cfg.Viewer.Mode != ModeTerminal {
		t.Errorf("Expected terminal mode from env, got %s", cfg.Viewer.Mode)
	}
	if cfg.Viewer.Provider != "planefinder" {
		t.Errorf("Expected provider from env, got %s", cfg.Viewer.Provider)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/tmp/fw.log" {
		t.Errorf("Expected log settings from env, got %+v", cfg.Log)
	}

	// Overrides also apply when there is no file at all.
	cfg, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}
	if cfg.Server.Port != "7777" {
		t.Errorf("Expected env override without a file, got %s", cfg.Server.Port)
	}
}
