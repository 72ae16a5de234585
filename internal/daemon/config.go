// Package daemon manages the Ember daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	User      UserConfig      `toml:"user"`
	API       APIConfig       `toml:"api"`
	Engine    EngineConfig    `toml:"engine"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// UserConfig identifies the local profile the daemon serves by default.
type UserConfig struct {
	ID          string `toml:"id"`
	DisplayName string `toml:"display_name"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// EngineConfig tunes the gamification engine.
type EngineConfig struct {
	DebounceSeconds     int `toml:"debounce_seconds"`      // duplicate-action window
	SyncIntervalSeconds int `toml:"sync_interval_seconds"` // offline-queue replay cadence
	FreezeCap           int `toml:"freeze_cap"`            // 0 = unlimited streak freezes
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := emberHome()
	return Config{
		User: UserConfig{
			ID:          "local",
			DisplayName: "You",
		},
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        7979,
			CORSOrigins: []string{"*"},
		},
		Engine: EngineConfig{
			DebounceSeconds:     5,
			SyncIntervalSeconds: 30,
			FreezeCap:           0,
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "ember.log"),
		},
	}
}

// LoadConfig reads config from ~/.ember/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(emberHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Engine.DebounceSeconds <= 0 {
		cfg.Engine.DebounceSeconds = 5
	}
	if cfg.Engine.SyncIntervalSeconds <= 0 {
		cfg.Engine.SyncIntervalSeconds = 30
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.ember/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(emberHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// emberHome returns the Ember data directory.
func emberHome() string {
	if env := os.Getenv("EMBER_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ember")
}

// EmberHome is exported for use by other packages.
func EmberHome() string {
	return emberHome()
}
