package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/graph"
	"github.com/smallnest/collabwalk/walk"
)

// ErrWalkNotFound is returned when no record has the requested ID.
var ErrWalkNotFound = errors.New("walk not found")

// WalkRecord is the persisted outcome of one finished walk
type WalkRecord struct {
	ID          string              `json:"id"`
	Seed        string              `json:"seed"`
	ReleaseType catalog.ReleaseType `json:"release_type"`
	Steps       int                 `json:"steps"`
	QueryLimit  int                 `json:"query_limit"`
	Market      string              `json:"market,omitempty"`
	Path        []string            `json:"path"`
	Snapshot    graph.Snapshot      `json:"graph"`
	Timestamp   time.Time           `json:"timestamp"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
}

// NewWalkRecord captures a finished walk under a fresh ID.
func NewWalkRecord(req walk.Request, market string, result *walk.Result) *WalkRecord {
	return &WalkRecord{
		ID:          uuid.NewString(),
		Seed:        result.Seed.Name,
		ReleaseType: req.ReleaseType,
		Steps:       req.Steps,
		QueryLimit:  req.QueryLimit,
		Market:      market,
		Path:        append([]string(nil), result.Path...),
		Snapshot:    result.Graph.Snapshot(),
		Timestamp:   time.Now().UTC(),
		Metadata:    map[string]any{"query": req.Seed},
	}
}

// Graph rebuilds the collaboration graph of the record.
func (r *WalkRecord) Graph() (*graph.Graph, error) {
	g, err := graph.FromSnapshot(r.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to restore graph of walk %s: %w", r.ID, err)
	}
	return g, nil
}

// WalkStore defines the interface for walk history persistence
type WalkStore interface {
	// Save stores a record, replacing any record with the same ID
	Save(ctx context.Context, record *WalkRecord) error

	// Load retrieves a record by ID
	Load(ctx context.Context, id string) (*WalkRecord, error)

	// List returns the records for a seed artist, oldest first.
	// An empty seed lists every record.
	List(ctx context.Context, seed string) ([]*WalkRecord, error)

	// Delete removes a record
	Delete(ctx context.Context, id string) error

	// Clear removes all records for a seed artist, or every record for an empty seed
	Clear(ctx context.Context, seed string) error
}

// SeedKey normalizes a seed name for indexing. Seeds match case-insensitively.
func SeedKey(seed string) string {
	return strings.ToLower(strings.TrimSpace(seed))
}

// NotFound returns an error wrapping ErrWalkNotFound for id.
func NotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrWalkNotFound, id)
}

// ValidateID rejects IDs that were not produced by NewWalkRecord.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid id %q", ErrWalkNotFound, id)
	}
	return nil
}

// SortRecords orders records oldest first, breaking ties by ID.
func SortRecords(records []*WalkRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.Before(records[j].Timestamp)
		}
		return records[i].ID < records[j].ID
	})
}

// Clone returns a deep copy of the record. Metadata values are copied shallowly.
func (r *WalkRecord) Clone() *WalkRecord {
	c := *r
	c.Path = append([]string(nil), r.Path...)
	c.Snapshot = graph.Snapshot{
		Artists:        append([]graph.Artist(nil), r.Snapshot.Artists...),
		Collaborations: append([]graph.Collaboration(nil), r.Snapshot.Collaborations...),
	}
	if r.Metadata != nil {
		c.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
