package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/smallnest/collabwalk/store"
)

const recordExt = ".json"

// FileWalkStore writes one JSON document per walk record into a directory.
type FileWalkStore struct {
	mu  sync.RWMutex
	dir string
}

var _ store.WalkStore = (*FileWalkStore)(nil)

// NewFileWalkStore creates a store rooted at dir, creating it if missing.
func NewFileWalkStore(dir string) (*FileWalkStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create walk directory: %w", err)
	}
	return &FileWalkStore{dir: dir}, nil
}

func (s *FileWalkStore) path(id string) string {
	return filepath.Join(s.dir, id+recordExt)
}

// Save stores a record, writing through a temporary file
func (s *FileWalkStore) Save(_ context.Context, record *store.WalkRecord) error {
	if err := store.ValidateID(record.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal walk: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".walk-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write walk: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write walk: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(record.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save walk: %w", err)
	}
	return nil
}

// Load retrieves a record by ID
func (s *FileWalkStore) Load(_ context.Context, id string) (*store.WalkRecord, error) {
	if err := store.ValidateID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.path(id), id)
}

func (s *FileWalkStore) read(path, id string) (*store.WalkRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, store.NotFound(id)
		}
		return nil, fmt.Errorf("failed to read walk: %w", err)
	}

	var record store.WalkRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal walk %s: %w", id, err)
	}
	return &record, nil
}

// List returns the records for seed, oldest first
func (s *FileWalkStore) List(_ context.Context, seed string) ([]*store.WalkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list(seed)
}

func (s *FileWalkStore) list(seed string) ([]*store.WalkRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read walk directory: %w", err)
	}

	key := store.SeedKey(seed)
	records := make([]*store.WalkRecord, 0)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		id := strings.TrimSuffix(name, recordExt)
		if store.ValidateID(id) != nil {
			continue
		}
		record, err := s.read(filepath.Join(s.dir, name), id)
		if err != nil {
			return nil, err
		}
		if key == "" || store.SeedKey(record.Seed) == key {
			records = append(records, record)
		}
	}

	store.SortRecords(records)
	return records, nil
}

// Delete removes a record
func (s *FileWalkStore) Delete(_ context.Context, id string) error {
	if err := store.ValidateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store.NotFound(id)
		}
		return fmt.Errorf("failed to delete walk: %w", err)
	}
	return nil
}

// Clear removes all records for seed
func (s *FileWalkStore) Clear(_ context.Context, seed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.list(seed)
	if err != nil {
		return err
	}
	for _, record := range records {
		if err := os.Remove(s.path(record.ID)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to clear walks: %w", err)
		}
	}
	return nil
}
