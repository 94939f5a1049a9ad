// Package config loads the tix configuration from
// ~/.config/tix/config.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the tix configuration.
type Config struct {
	// Provider selects the ticket identifier grammar: "linear", "jira",
	// or empty for the provider-neutral default.
	Provider string `toml:"provider"`

	// Pattern overrides the provider grammar with a custom regular
	// expression for ticket identifiers.
	Pattern string `toml:"pattern"`

	// BaseBranch is the branch new ticket branches are created from when
	// no base is given on the command line. Empty means the repository's
	// default branch.
	BaseBranch string `toml:"base_branch"`

	// GitTimeoutSeconds bounds each git subprocess call. Zero means the
	// built-in default.
	GitTimeoutSeconds int `toml:"git_timeout_seconds"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{}
}

// GitTimeout returns the configured git timeout as a duration, or zero
// when unset.
func (c *Config) GitTimeout() time.Duration {
	return time.Duration(c.GitTimeoutSeconds) * time.Second
}

// configPath returns the path to the config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tix", "config.toml"), nil
}

// Path returns the config file location for display purposes.
func Path() string {
	path, err := configPath()
	if err != nil {
		return ""
	}
	return path
}

// Load reads config from ~/.config/tix/config.toml.
// Returns Default() if the file doesn't exist (no error).
// Returns an error only if the file exists but is invalid.
func Load() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from an explicit path. Split out for tests.
func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Provider != "" && cfg.Provider != "linear" && cfg.Provider != "jira" {
		return Default(), fmt.Errorf("invalid provider %q: must be \"linear\" or \"jira\"", cfg.Provider)
	}
	if cfg.GitTimeoutSeconds < 0 {
		return Default(), fmt.Errorf("invalid git_timeout_seconds %d: must be >= 0", cfg.GitTimeoutSeconds)
	}

	return cfg, nil
}

const defaultConfig = `# tix configuration

# Ticket provider - selects the identifier grammar used when extracting
# ticket keys from branch names.
# Supported: "linear", "jira". Leave unset for a provider-neutral default
# that covers both styles ("ENG-123", "PROJ-4567").
# provider = "linear"

# Custom identifier pattern - overrides the provider grammar entirely.
# Matched case-insensitively against branch names.
# pattern = "[A-Z]{2,10}-\\d+"

# Base branch for newly created ticket branches.
# If unset, the repository's default branch (main/master) is used.
# base_branch = "main"

# Timeout in seconds for each git invocation. Guards against hung
# subprocesses (e.g. credential helpers waiting for input).
# git_timeout_seconds = 5
`

// Init creates a default config file at ~/.config/tix/config.toml.
// If force is true, overwrites an existing file.
// Returns the path to the created file.
func Init(force bool) (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return "", err
	}

	return path, nil
}
