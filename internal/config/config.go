// Package config loads the swarmdash configuration file. All fields have
// working defaults so the tool runs with no config at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/Dicklesworthstone/swarmdash/internal/swarm"
)

// Config represents the main configuration
type Config struct {
	Dir            string          `toml:"dir"`             // Swarm state directory
	SessionPrefix  string          `toml:"session_prefix"`  // tmux session name prefix
	RefreshSeconds int             `toml:"refresh_seconds"` // Live-mode refresh cadence
	PRLimit        int             `toml:"pr_limit"`        // Max open PRs to list
	Panels         map[string]bool `toml:"panels"`          // Per-panel enable overrides (false hides)
}

// DefaultSessionPrefix matches the orchestrator's tmux naming scheme.
const DefaultSessionPrefix = "swarm-"

// DefaultRefreshSeconds is the live-mode redraw cadence.
const DefaultRefreshSeconds = 5

// DefaultPath returns the default config file path
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "swarmdash", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "swarmdash", "config.toml")
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	dir := swarm.DefaultDir
	if env := os.Getenv(swarm.EnvDir); env != "" {
		dir = env
	}
	return &Config{
		Dir:            dir,
		SessionPrefix:  DefaultSessionPrefix,
		RefreshSeconds: DefaultRefreshSeconds,
		PRLimit:        10,
	}
}

// Load reads a config file and fills in defaults for missing values. An
// empty path means DefaultPath().
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply defaults for missing values
	if cfg.Dir == "" {
		cfg.Dir = swarm.DefaultDir
	}
	// Environment variable override for the swarm directory
	if env := os.Getenv(swarm.EnvDir); env != "" {
		cfg.Dir = env
	}
	if cfg.SessionPrefix == "" {
		cfg.SessionPrefix = DefaultSessionPrefix
	}
	if cfg.RefreshSeconds <= 0 {
		cfg.RefreshSeconds = DefaultRefreshSeconds
	}
	if cfg.PRLimit <= 0 {
		cfg.PRLimit = 10
	}

	return &cfg, nil
}

// LoadOrDefault loads the config at path, falling back to Default() when the
// file does not exist. Parse errors are still reported.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// PanelEnabled reports whether a panel should be shown. Panels default to
// enabled; only an explicit false in the config hides one.
func (c *Config) PanelEnabled(key string) bool {
	if c == nil || c.Panels == nil {
		return true
	}
	if enabled, ok := c.Panels[key]; ok {
		return enabled
	}
	return true
}
