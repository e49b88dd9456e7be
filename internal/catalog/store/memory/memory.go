package memory

import (
	"context"
	"sync"

	"baias/internal/catalog/store/core"
	"baias/pkg/platform/sentinel"
)

// Backend keeps the document in process memory. Used in tests and for
// throwaway dev servers.
type Backend struct {
	mu  sync.RWMutex
	doc []byte
}

// New returns an empty backend. Read fails with sentinel.ErrNotFound until
// the first Write.
func New() *Backend {
	return &Backend{}
}

// NewWithDocument returns a backend already holding doc.
func NewWithDocument(doc []byte) *Backend {
	b := &Backend{}
	b.doc = append([]byte(nil), doc...)
	return b
}

func (b *Backend) Driver() core.Driver { return core.DriverMemory }

func (b *Backend) Read(_ context.Context) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.doc == nil {
		return nil, sentinel.ErrNotFound
	}
	return append([]byte(nil), b.doc...), nil
}

func (b *Backend) Write(_ context.Context, doc []byte) error {
	cp := append([]byte{}, doc...)
	b.mu.Lock()
	b.doc = cp
	b.mu.Unlock()
	return nil
}
