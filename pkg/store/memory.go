package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mlindahl/layernet/pkg/netio"
)

// MemoryStore keeps records in a mutex-guarded map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Put inserts a graph under a fresh ID.
func (s *MemoryStore) Put(ctx context.Context, g netio.Graph) (Record, error) {
	now := time.Now().UTC()
	rec := Record{ID: newID(), Graph: g, CreatedAt: now, UpdatedAt: now}

	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()
	return rec, nil
}

// Get retrieves a record by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return Record{}, notFound(id)
	}
	return rec, nil
}

// Update replaces the graph of an existing record.
func (s *MemoryStore) Update(ctx context.Context, id string, g netio.Graph) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, notFound(id)
	}
	rec.Graph = g
	rec.UpdatedAt = time.Now().UTC()
	s.records[id] = rec
	return rec, nil
}

// Delete removes a record.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}
	delete(s.records, id)
	return nil
}

// List returns all records ordered by creation time.
func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
