package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultConfigPath returns the default config file location,
// ~/.config/driveshelf/config.toml, honoring XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}

		base = filepath.Join(home, ".config")
	}

	return filepath.Join(base, "driveshelf", "config.toml")
}

// Load reads and parses a TOML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with defaults. Supports the zero-config case where
// everything arrives via environment variables.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		ApplyEnvOverrides(cfg)

		return cfg, nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	ApplyEnvOverrides(cfg)

	return cfg, nil
}

// Validate checks cross-field constraints. Missing credentials are not an
// error — Configured() gates their use — but partially supplied
// credentials almost certainly indicate a broken deployment, so they are
// rejected here rather than surfacing later as a signing failure.
func Validate(cfg *Config) error {
	sa := cfg.ServiceAccount
	if sa != (ServiceAccountConfig{}) && !sa.Configured() {
		return errors.New("service_account requires client_email, private_key, and private_key_id together")
	}

	if cfg.Tree.MaxDepth < 1 {
		return fmt.Errorf("tree.max_depth must be at least 1, got %d", cfg.Tree.MaxDepth)
	}

	if cfg.Tree.ParallelLists < 1 {
		return fmt.Errorf("tree.parallel_lists must be at least 1, got %d", cfg.Tree.ParallelLists)
	}

	return nil
}
