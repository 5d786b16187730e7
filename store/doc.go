// Package store persists finished walks so they can be listed, replayed and deleted.
//
// A WalkRecord holds the request parameters of a walk, the visited path and a
// snapshot of the discovered collaboration graph. Backends implement WalkStore:
//
//   - store/memory: in-process map, the default
//   - store/file: one JSON document per walk in a directory
//   - store/sqlite: a single SQLite table
//   - store/postgres: a PostgreSQL table with JSONB columns
//   - store/redis: JSON values with per-seed index sets and an optional TTL
//
// Records are keyed by a UUID. List and Clear select records by seed artist,
// matching the name case-insensitively; an empty seed selects every record.
// Loading or deleting an unknown ID returns an error wrapping ErrWalkNotFound.
//
//	s := memory.NewMemoryWalkStore()
//	rec := store.NewWalkRecord(req, "US", result)
//	if err := s.Save(ctx, rec); err != nil {
//		return err
//	}
//	history, err := s.List(ctx, "Elton John")
//
// Every backend runs the shared behavior suite in store/storetest.
package store
