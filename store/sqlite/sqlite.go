package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/store"
)

// SqliteWalkStore implements store.WalkStore using SQLite
type SqliteWalkStore struct {
	db        *sql.DB
	tableName string
}

var _ store.WalkStore = (*SqliteWalkStore)(nil)

// SqliteOptions configuration for SQLite connection
type SqliteOptions struct {
	Path      string
	TableName string // Default "walks"
}

// NewSqliteWalkStore opens the database at opts.Path and creates the table if needed
func NewSqliteWalkStore(opts SqliteOptions) (*SqliteWalkStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "walks"
	}

	s := &SqliteWalkStore{
		db:        db,
		tableName: tableName,
	}

	if err := s.InitSchema(context.Background()); err != nil {
		return nil, errors.Join(err, db.Close())
	}

	return s, nil
}

// InitSchema creates the necessary table if it doesn't exist
func (s *SqliteWalkStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			seed_key TEXT NOT NULL,
			seed TEXT NOT NULL,
			release_type TEXT NOT NULL,
			steps INTEGER NOT NULL,
			query_limit INTEGER NOT NULL,
			market TEXT NOT NULL,
			path TEXT NOT NULL,
			graph TEXT NOT NULL,
			metadata TEXT,
			timestamp DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_seed_key ON %s (seed_key);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SqliteWalkStore) Close() error {
	return s.db.Close()
}

// Save stores a record
func (s *SqliteWalkStore) Save(ctx context.Context, record *store.WalkRecord) error {
	pathJSON, err := json.Marshal(record.Path)
	if err != nil {
		return fmt.Errorf("failed to marshal path: %w", err)
	}
	graphJSON, err := json.Marshal(record.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	metadataJSON, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, seed_key, seed, release_type, steps, query_limit, market, path, graph, metadata, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			seed_key = excluded.seed_key,
			seed = excluded.seed,
			release_type = excluded.release_type,
			steps = excluded.steps,
			query_limit = excluded.query_limit,
			market = excluded.market,
			path = excluded.path,
			graph = excluded.graph,
			metadata = excluded.metadata,
			timestamp = excluded.timestamp
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		store.SeedKey(record.Seed),
		record.Seed,
		string(record.ReleaseType),
		record.Steps,
		record.QueryLimit,
		record.Market,
		string(pathJSON),
		string(graphJSON),
		string(metadataJSON),
		record.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save walk: %w", err)
	}
	return nil
}

const columns = "id, seed, release_type, steps, query_limit, market, path, graph, metadata, timestamp"

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*store.WalkRecord, error) {
	var (
		record       store.WalkRecord
		releaseType  string
		pathJSON     string
		graphJSON    string
		metadataJSON sql.NullString
		timestamp    time.Time
	)
	if err := row.Scan(
		&record.ID,
		&record.Seed,
		&releaseType,
		&record.Steps,
		&record.QueryLimit,
		&record.Market,
		&pathJSON,
		&graphJSON,
		&metadataJSON,
		&timestamp,
	); err != nil {
		return nil, err
	}

	record.ReleaseType = catalog.ReleaseType(releaseType)
	record.Timestamp = timestamp.UTC()
	if err := json.Unmarshal([]byte(pathJSON), &record.Path); err != nil {
		return nil, fmt.Errorf("failed to unmarshal path: %w", err)
	}
	if err := json.Unmarshal([]byte(graphJSON), &record.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &record.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &record, nil
}

// Load retrieves a record by ID
func (s *SqliteWalkStore) Load(ctx context.Context, id string) (*store.WalkRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", columns, s.tableName)

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound(id)
		}
		return nil, fmt.Errorf("failed to load walk: %w", err)
	}
	return record, nil
}

// List returns the records for seed, oldest first
func (s *SqliteWalkStore) List(ctx context.Context, seed string) ([]*store.WalkRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if key := store.SeedKey(seed); key == "" {
		query := fmt.Sprintf("SELECT %s FROM %s ORDER BY timestamp ASC, id ASC", columns, s.tableName)
		rows, err = s.db.QueryContext(ctx, query)
	} else {
		query := fmt.Sprintf("SELECT %s FROM %s WHERE seed_key = ? ORDER BY timestamp ASC, id ASC", columns, s.tableName)
		rows, err = s.db.QueryContext(ctx, query, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list walks: %w", err)
	}
	defer rows.Close()

	records := make([]*store.WalkRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan walk row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating walk rows: %w", err)
	}

	// DATETIME text ordering is not reliable across offsets
	store.SortRecords(records)
	return records, nil
}

// Delete removes a record
func (s *SqliteWalkStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete walk: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.NotFound(id)
	}
	return nil
}

// Clear removes all records for seed
func (s *SqliteWalkStore) Clear(ctx context.Context, seed string) error {
	var err error
	if key := store.SeedKey(seed); key == "" {
		_, err = s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", s.tableName))
	} else {
		_, err = s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE seed_key = ?", s.tableName), key)
	}
	if err != nil {
		return fmt.Errorf("failed to clear walks: %w", err)
	}
	return nil
}
