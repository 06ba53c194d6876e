package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WSJTX.MulticastGroup != "239.255.0.1" || cfg.WSJTX.Port != 2237 {
		t.Errorf("unexpected WSJT-X defaults: %+v", cfg.WSJTX)
	}
	if cfg.Cloudlog.TimeoutSeconds != 10 {
		t.Errorf("expected 10s default timeout, got %d", cfg.Cloudlog.TimeoutSeconds)
	}
	if cfg.Cache.Path == "" || cfg.Storage.Path == "" {
		t.Error("expected resolved cache and storage paths")
	}
	if !strings.HasSuffix(cfg.WSJTX.LogPath, "wsjtx_log.adi") {
		t.Errorf("expected a default WSJT-X log path, got %q", cfg.WSJTX.LogPath)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[cloudlog]
url = "https://log.example.com"
api_key = "secret"
station_id = "7"

[wsjtx]
port = 2238

[cache]
path = "/tmp/custom_cache"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cloudlog.URL != "https://log.example.com" {
		t.Errorf("url not loaded: %q", cfg.Cloudlog.URL)
	}
	if cfg.WSJTX.Port != 2238 {
		t.Errorf("port override lost: %d", cfg.WSJTX.Port)
	}
	if cfg.WSJTX.MulticastGroup != "239.255.0.1" {
		t.Errorf("unset field lost its default: %q", cfg.WSJTX.MulticastGroup)
	}
	if cfg.Cache.Path != "/tmp/custom_cache" {
		t.Errorf("cache path override lost: %q", cfg.Cache.Path)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Cloudlog.URL = "https://log.example.com"
	cfg.Cloudlog.APIKey = "secret"
	cfg.Cloudlog.StationID = "7"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Cloudlog.URL != cfg.Cloudlog.URL || loaded.Cloudlog.APIKey != cfg.Cloudlog.APIKey {
		t.Errorf("round trip lost cloudlog settings: %+v", loaded.Cloudlog)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unconfigured cloudlog")
	}

	cfg.Cloudlog.URL = "https://log.example.com"
	cfg.Cloudlog.APIKey = "secret"
	cfg.Cloudlog.StationID = "7"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}
