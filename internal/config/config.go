// Package config provides configuration types and loading for swarmboard.
package config

import "path/filepath"

// Config is the root configuration struct.
type Config struct {
	Paths     PathsConfig     `json:"paths"`
	Store     StoreConfig     `json:"store"`
	Broadcast BroadcastConfig `json:"broadcast"`
}

// PathsConfig groups filesystem path settings.
type PathsConfig struct {
	DataDir string `json:"dataDir" envconfig:"DATA_DIR"`
}

// StoreConfig selects and locates the entity store backend.
type StoreConfig struct {
	// Backend is "file" (JSON snapshot) or "sqlite".
	Backend string `json:"backend" envconfig:"STORE_BACKEND"`
	// Path overrides the backend's default location under the data dir.
	Path string `json:"path,omitempty" envconfig:"STORE_PATH"`
}

const (
	// StoreBackendFile persists the document as a JSON file.
	StoreBackendFile = "file"
	// StoreBackendSQLite persists the document in a SQLite database.
	StoreBackendSQLite = "sqlite"
)

// StorePath returns the effective store location.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if c.Store.Backend == StoreBackendSQLite {
		return filepath.Join(c.Paths.DataDir, "swarmboard.db")
	}
	return filepath.Join(c.Paths.DataDir, "database.json")
}

// BroadcastConfig configures the Kafka event forwarder. Disabled by default;
// the engine works fully without any broadcast transport.
type BroadcastConfig struct {
	Enabled bool   `json:"enabled" envconfig:"BROADCAST_ENABLED"`
	Brokers string `json:"brokers" envconfig:"BROADCAST_BROKERS"`
	Topic   string `json:"topic" envconfig:"BROADCAST_TOPIC"`
}
