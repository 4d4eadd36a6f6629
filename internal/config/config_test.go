// ABOUTME: Tests for configuration loading
// ABOUTME: Verifies defaults, YAML overrides and validation errors
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.DriftThreshold != 2*time.Second {
		t.Errorf("expected 2s drift threshold, got %v", cfg.DriftThreshold)
	}
	if cfg.DecodeADPCM {
		t.Error("ADPCM decoding must be opt-in")
	}
	if cfg.ImportDir() != cfg.AudioDir {
		t.Errorf("expected import dir to default to audio dir, got %q", cfg.ImportDir())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
audio_dir: /games/gta3/Audio
decode_adpcm: true
drift_threshold: 500ms
station: flash
server:
  addr: 127.0.0.1:9000
  advertise: true
  import_target: /srv/sounds
logging:
  debug: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AudioDir != "/games/gta3/Audio" || !cfg.DecodeADPCM || cfg.Station != "flash" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.DriftThreshold != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", cfg.DriftThreshold)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || !cfg.Server.Advertise {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.ImportDir() != "/srv/sounds" {
		t.Errorf("expected import target override, got %q", cfg.ImportDir())
	}
	// Untouched fields keep their defaults
	if cfg.Logging.File != "gtaradio.log" || !cfg.Logging.Debug {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "audio_dir: [unterminated"},
		{"no source", "audio_dir: \"\""},
		{"bad server url", "server_url: ftp://example.com"},
		{"relative server url", "server_url: example.com"},
		{"negative threshold", "drift_threshold: -1s"},
		{"empty addr", "server:\n  addr: \"\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
