package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/unklstewy/flightwatch/pkg/coordinates"
)

// Pipeline tunables. These are fixed at build time and are not part of
// the runtime configuration.
const (
	// ObserverLatitude and ObserverLongitude locate the observation point (Wrocław)
	ObserverLatitude  = 51.069043
	ObserverLongitude = 16.979153

	// LatTolerance and LonTolerance are the half-widths of the region of
	// interest in degrees
	LatTolerance = 0.1
	LonTolerance = 0.2

	// PollInterval is the time between OpenSky polls
	PollInterval = 10 * time.Second

	// OpenSkyBaseURL is the OpenSky REST API base URL
	OpenSkyBaseURL = "https://opensky-network.org/api"
)

// Viewer modes.
const (
	ModeWeb      = "web"
	ModeTerminal = "terminal"
)

// Selection strategies.
const (
	StrategyNearest        = "nearest"
	StrategyLowestAltitude = "lowest-altitude"
)

// ObservationPoint returns the fixed observation point.
func ObservationPoint() coordinates.ObservationPoint {
	return coordinates.ObservationPoint{
		Location: coordinates.Geographic{
			Latitude:  ObserverLatitude,
			Longitude: ObserverLongitude,
		},
		LatTolerance: LatTolerance,
		LonTolerance: LonTolerance,
	}
}

// Config holds the settings of the host process around the pipeline:
// where the web viewer listens, which surface and provider to use, logging.
type Config struct {
	Server ServerConfig `json:"server"`
	Viewer ViewerConfig `json:"viewer"`
	Log    LogConfig    `json:"log"`
}

// ServerConfig contains HTTP server configuration for the web viewer.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string `json:"port"`

	// Host is the server bind address (default: "127.0.0.1")
	Host string `json:"host"`

	// OpenBrowser opens the viewer page in the system browser at startup
	OpenBrowser bool `json:"open_browser"`
}

// ViewerConfig selects how the flight of interest is shown.
type ViewerConfig struct {
	// Mode is "web" (iframe page) or "terminal"
	Mode string `json:"mode"`

	// Provider is the embedded viewer: "flightradar24" or "planefinder"
	Provider string `json:"provider"`

	// Strategy is "nearest" (default) or "lowest-altitude"
	Strategy string `json:"strategy"`

	// ExclusiveTicks skips a poll while the previous one is still running.
	// Off by default: overlapping polls are allowed.
	ExclusiveTicks bool `json:"exclusive_ticks"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `json:"level"`

	// File is an optional path for a rotated JSON log; empty logs to stderr
	File string `json:"file"`
}

// Load reads configuration from a JSON file.
// If the file doesn't exist, the defaults are used. Values missing from
// the file keep their defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Host: "127.0.0.1",
		},
		Viewer: ViewerConfig{
			Mode:     ModeWeb,
			Provider: "flightradar24",
			Strategy: StrategyNearest,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Viewer.Mode {
	case ModeWeb, ModeTerminal:
	default:
		return fmt.Errorf("invalid viewer mode %q (want %q or %q)", c.Viewer.Mode, ModeWeb, ModeTerminal)
	}
	switch c.Viewer.Provider {
	case "flightradar24", "planefinder":
	default:
		return fmt.Errorf("invalid viewer provider %q", c.Viewer.Provider)
	}
	switch c.Viewer.Strategy {
	case StrategyNearest, StrategyLowestAltitude:
	default:
		return fmt.Errorf("invalid selection strategy %q", c.Viewer.Strategy)
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port %q: %w", c.Server.Port, err)
	}
	return nil
}

// Addr returns the host:port the web viewer listens on.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if port := os.Getenv("FLIGHTWATCH_PORT"); port != "" {
		c.Server.Port = port
	}
	if host := os.Getenv("FLIGHTWATCH_HOST"); host != "" {
		c.Server.Host = host
	}
	if mode := os.Getenv("FLIGHTWATCH_VIEWER"); mode != "" {
		c.Viewer.Mode = mode
	}
	if provider := os.Getenv("FLIGHTWATCH_PROVIDER"); provider != "" {
		c.Viewer.Provider = provider
	}
	if level := os.Getenv("FLIGHTWATCH_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if file := os.Getenv("FLIGHTWATCH_LOG_FILE"); file != "" {
		c.Log.File = file
	}
}
