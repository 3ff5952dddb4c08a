package docstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kiezwerk/kiez/catalog"
)

// Memory holds the catalog in process memory. Load and Save exchange deep
// copies, so callers can never mutate the stored document behind the
// store's back. Useful for tests and ephemeral runs.
type Memory struct {
	mu  sync.RWMutex
	doc catalog.Document
}

// NewMemory creates an empty in-memory document store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns a deep copy of the current document.
func (m *Memory) Load(_ context.Context) (catalog.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Clone(), nil
}

// Save replaces the stored document with a deep copy of doc.
func (m *Memory) Save(_ context.Context, doc catalog.Document) error {
	doc.Revision = uuid.New().String()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = doc.Clone()
	return nil
}
