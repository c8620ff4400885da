package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.ServerURL != "http://localhost:8000/api/v1" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.ClientID == "" {
		t.Error("ClientID not minted on first load")
	}
}

func TestClientIDSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	first, err := loadFrom(path)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := loadFrom(path)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first.ClientID != second.ClientID {
		t.Errorf("ClientID changed across loads: %q != %q", first.ClientID, second.ClientID)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.ServerURL = "https://forum.example.edu/api/v1"
	cfg.RequestTimeout = 3 * time.Second
	cfg.ClientID = "test-client"
	if err := cfg.saveTo(path); err != nil {
		t.Fatalf("saveTo: %v", err)
	}

	got, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if got.ServerURL != cfg.ServerURL {
		t.Errorf("ServerURL = %q, want %q", got.ServerURL, cfg.ServerURL)
	}
	if got.RequestTimeout != cfg.RequestTimeout {
		t.Errorf("RequestTimeout = %v, want %v", got.RequestTimeout, cfg.RequestTimeout)
	}
	if got.ClientID != "test-client" {
		t.Errorf("ClientID = %q", got.ClientID)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CAMPUSFORUM_SERVER_URL", "http://10.0.0.5:9000/api/v1")

	cfg := DefaultConfig()
	if cfg.ServerURL != "http://10.0.0.5:9000/api/v1" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
}
