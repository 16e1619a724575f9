// Package config handles configuration for the SealDrop CLI.
package config

// Config holds runtime settings for the SealDrop CLI.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP API.
//   - KeysDir: directory where PEM key pairs are stored.
//   - DownloadDir: directory where fetched files are written.
//   - DatabasePath: path of the local SQLite history database.
type Config struct {
	ServerURL    string
	KeysDir      string
	DownloadDir  string
	DatabasePath string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.KeysDir = "keys"
	c.DownloadDir = "downloads"
	c.DatabasePath = "sealdrop.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
