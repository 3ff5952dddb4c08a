package docstore

import (
	"context"
	"fmt"

	"github.com/kiezwerk/kiez/catalog"
)

// Config selects and parameterizes a document store backend.
type Config struct {
	// Driver is one of "file", "memory", "sqlite", "s3", "dynamo".
	Driver string

	// Path is the document file path (file) or database path (sqlite).
	Path string

	S3     S3Config
	Dynamo DynamoConfig
}

// Open creates a document store for the configured driver.
func Open(ctx context.Context, cfg Config) (catalog.DocumentStore, error) {
	switch cfg.Driver {
	case "file", "":
		path := cfg.Path
		if path == "" {
			path = "catalog.json"
		}
		return NewFile(path)
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "s3":
		return NewS3(ctx, cfg.S3)
	case "dynamo":
		return NewDynamo(ctx, cfg.Dynamo)
	default:
		return nil, fmt.Errorf("docstore: unknown driver %q (supported: file, memory, sqlite, s3, dynamo)", cfg.Driver)
	}
}
