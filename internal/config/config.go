// Package config loads server configuration from a TOML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the full server configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `toml:"listen"`

	// Debug enables debug-level logging.
	Debug bool `toml:"debug"`

	Store Store `toml:"store"`
}

// Store selects the document store backend.
type Store struct {
	// Driver is one of "file", "memory", "sqlite", "s3", "dynamo".
	Driver string `toml:"driver"`

	// Path is the document file (file driver) or database file (sqlite).
	Path string `toml:"path"`

	S3     S3     `toml:"s3"`
	Dynamo Dynamo `toml:"dynamo"`
}

// S3 configures the s3 driver.
type S3 struct {
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	Key       string `toml:"key"`
	Endpoint  string `toml:"endpoint"`
	PathStyle bool   `toml:"path_style"`
}

// Dynamo configures the dynamo driver.
type Dynamo struct {
	Region string `toml:"region"`
	Table  string `toml:"table"`
}

// Default returns the configuration used when no file and no overrides are
// present: a file-backed store next to the process.
func Default() Config {
	return Config{
		Listen: ":8080",
		Store: Store{
			Driver: "file",
			Path:   "catalog.json",
		},
	}
}

// Load reads cfg from path, if path is non-empty, then applies KIEZ_*
// environment overrides. A missing file is only an error when the path was
// given explicitly.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if os.IsNotExist(err) && !explicit {
				return applyEnv(cfg), nil
			}
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv("KIEZ_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("KIEZ_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v := os.Getenv("KIEZ_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("KIEZ_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("KIEZ_S3_REGION"); v != "" {
		cfg.Store.S3.Region = v
	}
	if v := os.Getenv("KIEZ_S3_BUCKET"); v != "" {
		cfg.Store.S3.Bucket = v
	}
	if v := os.Getenv("KIEZ_S3_KEY"); v != "" {
		cfg.Store.S3.Key = v
	}
	if v := os.Getenv("KIEZ_S3_ENDPOINT"); v != "" {
		cfg.Store.S3.Endpoint = v
	}
	if v := os.Getenv("KIEZ_DYNAMO_REGION"); v != "" {
		cfg.Store.Dynamo.Region = v
	}
	if v := os.Getenv("KIEZ_DYNAMO_TABLE"); v != "" {
		cfg.Store.Dynamo.Table = v
	}
	return cfg
}
