// Package storetest holds the behavior every store.WalkStore backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/graph"
	"github.com/smallnest/collabwalk/store"
)

// Record builds a small two artist walk record for seed.
func Record(seed string, ts time.Time) *store.WalkRecord {
	guest := seed + " Guest"
	return &store.WalkRecord{
		ID:          uuid.NewString(),
		Seed:        seed,
		ReleaseType: catalog.ReleaseSingle,
		Steps:       3,
		QueryLimit:  20,
		Market:      "US",
		Path:        []string{seed, guest, seed},
		Snapshot: graph.Snapshot{
			Artists: []graph.Artist{
				{Name: seed, ID: "id-1", URI: "spotify:artist:id-1"},
				{Name: guest, ID: "id-2", URI: "spotify:artist:id-2"},
			},
			Collaborations: []graph.Collaboration{
				{Source: seed, Target: guest, Release: graph.Release{Name: "Duet", ID: "r1", URI: "spotify:album:r1"}},
			},
		},
		Timestamp: ts.UTC().Truncate(time.Millisecond),
		Metadata:  map[string]any{"query": seed},
	}
}

// Run exercises newStore against the WalkStore contract.
// Each subtest gets its own empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.WalkStore) {
	t.Helper()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("save and load", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		rec := Record("Elton John", base)

		require.NoError(t, s.Save(ctx, rec))

		loaded, err := s.Load(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, loaded.ID)
		assert.Equal(t, rec.Seed, loaded.Seed)
		assert.Equal(t, rec.ReleaseType, loaded.ReleaseType)
		assert.Equal(t, rec.Steps, loaded.Steps)
		assert.Equal(t, rec.QueryLimit, loaded.QueryLimit)
		assert.Equal(t, rec.Market, loaded.Market)
		assert.Equal(t, rec.Path, loaded.Path)
		assert.Equal(t, rec.Snapshot, loaded.Snapshot)
		assert.True(t, rec.Timestamp.Equal(loaded.Timestamp), "timestamp %v != %v", rec.Timestamp, loaded.Timestamp)
		assert.Equal(t, "Elton John", loaded.Metadata["query"])

		g, err := loaded.Graph()
		require.NoError(t, err)
		assert.True(t, g.HasCollaboration("Elton John", "Elton John Guest"))
	})

	t.Run("save replaces", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		rec := Record("Drake", base)
		require.NoError(t, s.Save(ctx, rec))

		rec.Steps = 9
		require.NoError(t, s.Save(ctx, rec))

		loaded, err := s.Load(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, 9, loaded.Steps)

		list, err := s.List(ctx, "Drake")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("missing record", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := uuid.NewString()

		_, err := s.Load(ctx, id)
		assert.True(t, errors.Is(err, store.ErrWalkNotFound), "load: %v", err)

		err = s.Delete(ctx, id)
		assert.True(t, errors.Is(err, store.ErrWalkNotFound), "delete: %v", err)
	})

	t.Run("list by seed oldest first", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		newest := Record("Drake", base.Add(2*time.Hour))
		oldest := Record("Drake", base)
		middle := Record("drake", base.Add(time.Hour))
		other := Record("Snoop Dogg", base)
		for _, rec := range []*store.WalkRecord{newest, oldest, middle, other} {
			require.NoError(t, s.Save(ctx, rec))
		}

		list, err := s.List(ctx, "DRAKE")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, oldest.ID, list[0].ID)
		assert.Equal(t, middle.ID, list[1].ID)
		assert.Equal(t, newest.ID, list[2].ID)

		all, err := s.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 4)

		empty, err := s.List(ctx, "Nobody")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		rec := Record("Britney Spears", base)
		keep := Record("Britney Spears", base.Add(time.Minute))
		require.NoError(t, s.Save(ctx, rec))
		require.NoError(t, s.Save(ctx, keep))

		require.NoError(t, s.Delete(ctx, rec.ID))

		_, err := s.Load(ctx, rec.ID)
		assert.True(t, errors.Is(err, store.ErrWalkNotFound))

		list, err := s.List(ctx, "Britney Spears")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, keep.ID, list[0].ID)
	})

	t.Run("clear", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for i := range 3 {
			require.NoError(t, s.Save(ctx, Record("Kendrick Lamar", base.Add(time.Duration(i)*time.Minute))))
		}
		survivor := Record("Drake", base)
		require.NoError(t, s.Save(ctx, survivor))

		require.NoError(t, s.Clear(ctx, "Kendrick Lamar"))

		list, err := s.List(ctx, "Kendrick Lamar")
		require.NoError(t, err)
		assert.Empty(t, list)

		_, err = s.Load(ctx, survivor.ID)
		assert.NoError(t, err)

		require.NoError(t, s.Clear(ctx, ""))
		all, err := s.List(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}
