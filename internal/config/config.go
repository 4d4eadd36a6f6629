// ABOUTME: Application configuration
// ABOUTME: YAML file with defaults and validation shared by the player and server
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration
type Config struct {
	// AudioDir holds station files named by stem
	AudioDir string `yaml:"audio_dir"`
	// ServerURL, when set, fetches stations from a dev server instead
	ServerURL string `yaml:"server_url"`
	CacheDir  string `yaml:"cache_dir"`

	// DecodeADPCM opts into decoding IMA ADPCM station files
	DecodeADPCM    bool          `yaml:"decode_adpcm"`
	DriftThreshold time.Duration `yaml:"drift_threshold"`

	PrefsFile string `yaml:"prefs_file"`
	Station   string `yaml:"station"`

	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds dev server settings
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	Name         string   `yaml:"name"`
	Advertise    bool     `yaml:"advertise"`
	AllowOrigins []string `yaml:"allow_origins"`
	// ImportTarget receives files copied by the import endpoint, defaulting
	// to AudioDir
	ImportTarget string `yaml:"import_target"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	File  string `yaml:"file"`
	Debug bool   `yaml:"debug"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		AudioDir:       "sounds",
		CacheDir:       filepath.Join(os.TempDir(), "gtaradio-cache"),
		DriftThreshold: 2 * time.Second,
		PrefsFile:      DefaultPrefsPath(),
		Server: ServerConfig{
			Addr:         ":4173",
			Name:         "gtaradio",
			AllowOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			File: "gtaradio.log",
		},
	}
}

// DefaultPrefsPath places preferences under the user config directory
func DefaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "gtaradio-prefs.yaml"
	}
	return filepath.Join(dir, "gtaradio", "prefs.yaml")
}

// Load reads a YAML file over the defaults and validates the result
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.AudioDir == "" && c.ServerURL == "" {
		return fmt.Errorf("audio_dir or server_url is required")
	}
	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("server_url must be an http(s) URL, got %q", c.ServerURL)
		}
	}
	if c.DriftThreshold <= 0 {
		return fmt.Errorf("drift_threshold must be positive")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// ImportDir returns where imported station files are written
func (c *Config) ImportDir() string {
	if c.Server.ImportTarget != "" {
		return c.Server.ImportTarget
	}
	return c.AudioDir
}
