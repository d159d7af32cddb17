package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".swarmboard"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"

	// EnvPrefix prefixes every environment override, e.g.
	// SWARMBOARD_STORE_BACKEND.
	EnvPrefix = "SWARMBOARD"
)

// ConfigPath returns the path to the config file. SWARMBOARD_CONFIG overrides
// the default of ~/.swarmboard/config.json.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("SWARMBOARD_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

// Default returns the built-in configuration: file-backed store under
// ~/.swarmboard, broadcast disabled.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Paths: PathsConfig{
			DataDir: filepath.Join(home, ConfigDir),
		},
		Store: StoreConfig{
			Backend: StoreBackendFile,
		},
		Broadcast: BroadcastConfig{
			Topic: "swarmboard.events",
		},
	}
}

// Load reads the config file if present and applies environment overrides on
// top of the defaults. A missing config file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus env only.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}
	if cfg.Store.Backend != StoreBackendFile && cfg.Store.Backend != StoreBackendSQLite {
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	return cfg, nil
}

// Save writes the config file, creating its directory if needed.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
