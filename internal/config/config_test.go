package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kiezwerk/kiez/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.Listen != ":8080" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.Store.Driver != "file" || cfg.Store.Path != "catalog.json" {
		t.Errorf("Store = %+v", cfg.Store)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiez.toml")
	err := os.WriteFile(path, []byte(`
listen = ":9090"
debug = true

[store]
driver = "sqlite"
path = "/var/lib/kiez/kiez.db"

[store.dynamo]
region = "eu-central-1"
table = "kiez-catalog"
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9090" || !cfg.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "/var/lib/kiez/kiez.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.Dynamo.Table != "kiez-catalog" {
		t.Errorf("Dynamo = %+v", cfg.Store.Dynamo)
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.toml")

	// Implicit default path: silently fall back to defaults.
	cfg, err := config.Load(missing, false)
	if err != nil {
		t.Fatalf("implicit missing file: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("Listen = %q", cfg.Listen)
	}

	// Explicit path: the operator asked for a file that isn't there.
	if _, err := config.Load(missing, true); err == nil {
		t.Error("explicit missing file: want error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KIEZ_LISTEN", ":7070")
	t.Setenv("KIEZ_DEBUG", "true")
	t.Setenv("KIEZ_STORE_DRIVER", "dynamo")
	t.Setenv("KIEZ_DYNAMO_TABLE", "kiez-prod")

	cfg, err := config.Load("", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":7070" || !cfg.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Store.Driver != "dynamo" || cfg.Store.Dynamo.Table != "kiez-prod" {
		t.Errorf("Store = %+v", cfg.Store)
	}
}
