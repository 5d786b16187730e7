package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/store"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresWalkStore implements store.WalkStore using PostgreSQL
type PostgresWalkStore struct {
	pool      DBPool
	tableName string
}

var _ store.WalkStore = (*PostgresWalkStore)(nil)

// PostgresOptions configuration for Postgres connection
type PostgresOptions struct {
	ConnString string
	TableName  string // Default "walks"
}

// NewPostgresWalkStore creates a new Postgres walk store.
// Call InitSchema before first use on a fresh database.
func NewPostgresWalkStore(ctx context.Context, opts PostgresOptions) (*PostgresWalkStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return NewPostgresWalkStoreWithPool(pool, opts.TableName), nil
}

// NewPostgresWalkStoreWithPool creates a new Postgres walk store with an existing pool
// Useful for testing with mocks
func NewPostgresWalkStoreWithPool(pool DBPool, tableName string) *PostgresWalkStore {
	if tableName == "" {
		tableName = "walks"
	}
	return &PostgresWalkStore{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *PostgresWalkStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			seed_key TEXT NOT NULL,
			seed TEXT NOT NULL,
			release_type TEXT NOT NULL,
			steps INTEGER NOT NULL,
			query_limit INTEGER NOT NULL,
			market TEXT NOT NULL,
			path JSONB NOT NULL,
			graph JSONB NOT NULL,
			metadata JSONB,
			timestamp TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_seed_key ON %s (seed_key);
	`, s.tableName, s.tableName, s.tableName)

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresWalkStore) Close() {
	s.pool.Close()
}

// Save stores a record
func (s *PostgresWalkStore) Save(ctx context.Context, record *store.WalkRecord) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			seed_key = EXCLUDED.seed_key,
			seed = EXCLUDED.seed,
			release_type = EXCLUDED.release_type,
			steps = EXCLUDED.steps,
			query_limit = EXCLUDED.query_limit,
			market = EXCLUDED.market,
			path = EXCLUDED.path,
			graph = EXCLUDED.graph,
			metadata = EXCLUDED.metadata,
			timestamp = EXCLUDED.timestamp
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		record.ID,
		store.SeedKey(record.Seed),
		record.Seed,
		string(record.ReleaseType),
		record.Steps,
		record.QueryLimit,
		record.Market,
		pathJSON,
		graphJSON,
		metadataJSON,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save walk: %w", err)
	}
	return nil
}

const selectColumns = "SELECT id, seed, release_type, steps, query_limit, market, path, graph, metadata, timestamp"

func scanRecord(row pgx.Row) (*store.WalkRecord, error) {
	var (
		record       store.WalkRecord
		releaseType  string
		pathJSON     []byte
		graphJSON    []byte
		metadataJSON []byte
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
	if err := json.Unmarshal(pathJSON, &record.Path); err != nil {
		return nil, fmt.Errorf("failed to unmarshal path: %w", err)
	}
	if err := json.Unmarshal(graphJSON, &record.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &record.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &record, nil
}

// Load retrieves a record by ID
func (s *PostgresWalkStore) Load(ctx context.Context, id string) (*store.WalkRecord, error) {
	query := fmt.Sprintf("%s FROM %s WHERE id = $1", selectColumns, s.tableName)

	record, err := scanRecord(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.NotFound(id)
		}
		return nil, fmt.Errorf("failed to load walk: %w", err)
	}
	return record, nil
}

// List returns the records for seed, oldest first. An empty seed lists every record.
func (s *PostgresWalkStore) List(ctx context.Context, seed string) ([]*store.WalkRecord, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if key := store.SeedKey(seed); key == "" {
		query := fmt.Sprintf("%s FROM %s ORDER BY timestamp ASC, id ASC", selectColumns, s.tableName)
		rows, err = s.pool.Query(ctx, query)
	} else {
		query := fmt.Sprintf("%s FROM %s WHERE seed_key = $1 ORDER BY timestamp ASC, id ASC", selectColumns, s.tableName)
		rows, err = s.pool.Query(ctx, query, key)
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
	return records, nil
}

// Delete removes a record
func (s *PostgresWalkStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete walk: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.NotFound(id)
	}
	return nil
}

// Clear removes all records for seed, or every record for an empty seed
func (s *PostgresWalkStore) Clear(ctx context.Context, seed string) error {
	var err error
	if key := store.SeedKey(seed); key == "" {
		_, err = s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", s.tableName))
	} else {
		_, err = s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE seed_key = $1", s.tableName), key)
	}
	if err != nil {
		return fmt.Errorf("failed to clear walks: %w", err)
	}
	return nil
}
