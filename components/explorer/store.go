package explorer

import (
	"context"
	"errors"
	"sync"
)

// ErrNoDataset signals that an operation requires an uploaded dataset.
var ErrNoDataset = errors.New("explorer: no dataset loaded")

// InMemoryDatasetStore holds the current dataset for the session. The
// dataset is replaced wholesale on upload and never written anywhere.
type InMemoryDatasetStore struct {
	mu      sync.RWMutex
	current *Dataset
}

// NewInMemoryDatasetStore creates an empty dataset store.
func NewInMemoryDatasetStore() *InMemoryDatasetStore {
	return &InMemoryDatasetStore{}
}

// Replace swaps in a freshly parsed dataset.
func (s *InMemoryDatasetStore) Replace(_ context.Context, ds *Dataset) error {
	if ds == nil {
		return errors.New("explorer: dataset is required")
	}
	s.mu.Lock()
	s.current = ds
	s.mu.Unlock()
	return nil
}

// Current returns the loaded dataset or ErrNoDataset.
func (s *InMemoryDatasetStore) Current(_ context.Context) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoDataset
	}
	return s.current, nil
}

// Clear drops the loaded dataset.
func (s *InMemoryDatasetStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return nil
}
