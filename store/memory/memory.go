package memory

import (
	"context"
	"sync"

	"github.com/smallnest/collabwalk/store"
)

// MemoryWalkStore keeps walk records in process memory.
type MemoryWalkStore struct {
	mu      sync.RWMutex
	records map[string]*store.WalkRecord
}

var _ store.WalkStore = (*MemoryWalkStore)(nil)

// NewMemoryWalkStore creates an empty in-memory walk store
func NewMemoryWalkStore() *MemoryWalkStore {
	return &MemoryWalkStore{
		records: make(map[string]*store.WalkRecord),
	}
}

// Save stores a copy of record
func (m *MemoryWalkStore) Save(_ context.Context, record *store.WalkRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record.Clone()
	return nil
}

// Load retrieves a record by ID
func (m *MemoryWalkStore) Load(_ context.Context, id string) (*store.WalkRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[id]
	if !ok {
		return nil, store.NotFound(id)
	}
	return record.Clone(), nil
}

// List returns the records for seed, oldest first
func (m *MemoryWalkStore) List(_ context.Context, seed string) ([]*store.WalkRecord, error) {
	key := store.SeedKey(seed)

	m.mu.RLock()
	records := make([]*store.WalkRecord, 0)
	for _, record := range m.records {
		if key == "" || store.SeedKey(record.Seed) == key {
			records = append(records, record.Clone())
		}
	}
	m.mu.RUnlock()

	store.SortRecords(records)
	return records, nil
}

// Delete removes a record
func (m *MemoryWalkStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return store.NotFound(id)
	}
	delete(m.records, id)
	return nil
}

// Clear removes all records for seed
func (m *MemoryWalkStore) Clear(_ context.Context, seed string) error {
	key := store.SeedKey(seed)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, record := range m.records {
		if key == "" || store.SeedKey(record.Seed) == key {
			delete(m.records, id)
		}
	}
	return nil
}
