// Package memory provides an in-memory implementation of
// storage.ProviderStore for testing and lightweight deployments.
// Records are lost when the process restarts.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rabbithole-ai/warren/pkg/api"
	"github.com/rabbithole-ai/warren/pkg/storage"
)

// Store is an in-memory ProviderStore. A single RWMutex serializes
// mutations; reads proceed concurrently.
type Store struct {
	mu      sync.RWMutex
	records map[int64]api.Provider
	nextID  int64
}

// Ensure Store implements storage.ProviderStore at compile time.
var _ storage.ProviderStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		records: make(map[int64]api.Provider),
		nextID:  1,
	}
}

// Create inserts a provider record and assigns the next id.
func (s *Store) Create(_ context.Context, p *api.Provider) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if rec.ProviderName == p.ProviderName {
			return 0, storage.ErrDuplicateName
		}
	}

	id := s.nextID
	s.nextID++

	rec := *p
	rec.ID = id
	s.records[id] = rec
	p.ID = id

	return id, nil
}

// Get returns a copy of the record, credential included.
func (s *Store) Get(_ context.Context, id int64) (*api.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &rec, nil
}

// List returns all records ordered by id.
func (s *Store) List(_ context.Context) ([]api.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Provider, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update merge-patches the record under the write lock, so concurrent
// patches to the same record never lose fields.
func (s *Store) Update(_ context.Context, id int64, patch api.ProviderPatch) (*api.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if patch.ProviderName != nil && *patch.ProviderName != rec.ProviderName {
		for otherID, other := range s.records {
			if otherID != id && other.ProviderName == *patch.ProviderName {
				return nil, storage.ErrDuplicateName
			}
		}
	}

	patch.Apply(&rec)
	rec.ID = id
	s.records[id] = rec

	return &rec, nil
}

// Delete removes the record.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
