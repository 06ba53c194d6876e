// Package config loads and persists the TOML configuration under the
// operator's ~/.adifpush directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the application configuration.
type Config struct {
	Cloudlog CloudlogConfig `toml:"cloudlog"`
	WSJTX    WSJTXConfig    `toml:"wsjtx"`
	Cache    CacheConfig    `toml:"cache"`
	Storage  StorageConfig  `toml:"storage"`
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
}

// CloudlogConfig identifies the remote logbook and its credentials.
type CloudlogConfig struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	StationID      string `toml:"station_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// WSJTXConfig covers both inputs: the UDP multicast group WSJT-X
// broadcasts on and the ADIF log file it writes.
type WSJTXConfig struct {
	MulticastGroup string `toml:"multicast_group"`
	Port           int    `toml:"port"`
	// LogPath overrides the per-platform default wsjtx_log.adi location.
	LogPath string `toml:"log_path"`
}

// CacheConfig locates the dedup cache file.
type CacheConfig struct {
	Path string `toml:"path"`
}

// StorageConfig controls the optional sqlite upload history.
type StorageConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// ServerConfig controls the status API served in listen mode.
type ServerConfig struct {
	Enabled            bool     `toml:"enabled"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Dir returns the application directory, ~/.adifpush.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".adifpush"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Default returns the built-in configuration. Paths under ~/.adifpush are
// resolved at load time so Default stays deterministic.
func Default() *Config {
	return &Config{
		Cloudlog: CloudlogConfig{
			TimeoutSeconds: 10,
		},
		WSJTX: WSJTXConfig{
			MulticastGroup: "239.255.0.1",
			Port:           2237,
		},
		Storage: StorageConfig{
			Enabled: true,
		},
		Server: ServerConfig{
			Enabled: false,
			Port:    8073,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the config file at path, falling back to defaults for
// anything unset. A missing file yields the defaults without error; the
// caller decides whether an unconfigured Cloudlog is fatal.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg.withResolvedPaths()
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg.withResolvedPaths()
}

// withResolvedPaths fills in the ~/.adifpush-relative defaults that
// Default leaves empty.
func (c *Config) withResolvedPaths() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if c.Cache.Path == "" {
		c.Cache.Path = filepath.Join(dir, "uploaded_qsos")
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(dir, "uploads.db")
	}
	if c.WSJTX.LogPath == "" {
		c.WSJTX.LogPath = defaultWSJTXLogPath()
	}
	return c, nil
}

// Save writes the configuration to path, creating the directory if
// needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate checks the fields a delivery run cannot operate without.
func (c *Config) Validate() error {
	if c.Cloudlog.URL == "" {
		return fmt.Errorf("cloudlog.url is not configured")
	}
	if c.Cloudlog.APIKey == "" {
		return fmt.Errorf("cloudlog.api_key is not configured")
	}
	if c.Cloudlog.StationID == "" {
		return fmt.Errorf("cloudlog.station_id is not configured")
	}
	return nil
}

// defaultWSJTXLogPath returns the wsjtx_log.adi location WSJT-X uses on
// this platform. An empty string means no home directory could be found.
func defaultWSJTXLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Local", "WSJT-X", "wsjtx_log.adi")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "WSJT-X", "wsjtx_log.adi")
	default:
		return filepath.Join(home, ".local", "share", "WSJT-X", "wsjtx_log.adi")
	}
}
