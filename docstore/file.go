package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kiezwerk/kiez/catalog"
)

// File persists the catalog as a single JSON file. Saves write to a
// temporary file in the same directory and rename it into place, so readers
// never observe a torn document and a failed save leaves the previous file
// untouched.
type File struct {
	path string
}

// NewFile creates a file-backed document store at path, creating the parent
// directory if needed. The file itself is created on first save.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("docstore: file path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("docstore: create data dir: %w", err)
	}
	return &File{path: path}, nil
}

// Load reads and parses the whole document. A missing file is an empty
// catalog; anything else that prevents reading wraps ErrStorageUnavailable.
func (f *File) Load(_ context.Context) (catalog.Document, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return catalog.Document{}, nil
	}
	if err != nil {
		return catalog.Document{}, fmt.Errorf("%w: read %s: %v", catalog.ErrStorageUnavailable, f.path, err)
	}
	var doc catalog.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return catalog.Document{}, fmt.Errorf("%w: parse %s: %v", catalog.ErrStorageUnavailable, f.path, err)
	}
	return doc, nil
}

// Save atomically replaces the document on disk.
func (f *File) Save(_ context.Context, doc catalog.Document) error {
	doc.Revision = uuid.New().String()
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode document: %v", catalog.ErrStorageUnavailable, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".kiez-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", catalog.ErrStorageUnavailable, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write temp file: %v", catalog.ErrStorageUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync temp file: %v", catalog.ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", catalog.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", catalog.ErrStorageUnavailable, f.path, err)
	}
	return nil
}
