package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSaveToRoundTrip(t *testing.T) {
	t.Setenv(EnvDSN, "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")

	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "members.db"
	cfg.Database.MaxConns = 4
	cfg.Server.WriteTimeout = Duration{45 * time.Second}
	cfg.Log.Format = "json"

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo returned error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if *loaded != *cfg {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestSaveToRequiresPath(t *testing.T) {
	if err := SaveTo("  ", Default()); err == nil {
		t.Fatal("expected error for empty path")
	}
}
