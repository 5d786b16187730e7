package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/collabwalk/store"
)

// RedisWalkStore implements store.WalkStore using Redis
type RedisWalkStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ store.WalkStore = (*RedisWalkStore)(nil)

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "collabwalk:"
	TTL      time.Duration // Expiration for records, default 0 (no expiration)
}

// NewClient opens a go-redis client for opts.
func NewClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// NewRedisWalkStore creates a new Redis walk store with its own client
func NewRedisWalkStore(opts RedisOptions) *RedisWalkStore {
	return NewRedisWalkStoreWithClient(NewClient(opts), opts)
}

// NewRedisWalkStoreWithClient creates a walk store on a shared client.
// Only Prefix and TTL are read from opts.
func NewRedisWalkStoreWithClient(client *redis.Client, opts RedisOptions) *RedisWalkStore {
	return &RedisWalkStore{
		client: client,
		prefix: prefixOrDefault(opts.Prefix),
		ttl:    opts.TTL,
	}
}

func prefixOrDefault(prefix string) string {
	if prefix == "" {
		return "collabwalk:"
	}
	return prefix
}

// Client returns the underlying client so a RedisCache can share it
func (s *RedisWalkStore) Client() *redis.Client {
	return s.client
}

// Close closes the underlying client
func (s *RedisWalkStore) Close() error {
	return s.client.Close()
}

func (s *RedisWalkStore) walkKey(id string) string {
	return fmt.Sprintf("%swalk:%s", s.prefix, id)
}

func (s *RedisWalkStore) seedKey(seed string) string {
	return fmt.Sprintf("%sseed:%s:walks", s.prefix, store.SeedKey(seed))
}

func (s *RedisWalkStore) allKey() string {
	return s.prefix + "walks"
}

// indexKey returns the set listing the records of seed, or of every seed.
func (s *RedisWalkStore) indexKey(seed string) string {
	if store.SeedKey(seed) == "" {
		return s.allKey()
	}
	return s.seedKey(seed)
}

// Save stores a record and indexes it by seed
func (s *RedisWalkStore) Save(ctx context.Context, record *store.WalkRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal walk: %w", err)
	}

	seedKey := s.seedKey(record.Seed)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.walkKey(record.ID), data, s.ttl)
	pipe.SAdd(ctx, seedKey, record.ID)
	pipe.SAdd(ctx, s.allKey(), record.ID)
	if s.ttl > 0 {
		pipe.Expire(ctx, seedKey, s.ttl)
		pipe.Expire(ctx, s.allKey(), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save walk to redis: %w", err)
	}
	return nil
}

// Load retrieves a record by ID
func (s *RedisWalkStore) Load(ctx context.Context, id string) (*store.WalkRecord, error) {
	data, err := s.client.Get(ctx, s.walkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.NotFound(id)
		}
		return nil, fmt.Errorf("failed to load walk from redis: %w", err)
	}

	var record store.WalkRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal walk: %w", err)
	}
	return &record, nil
}

// List returns the records for seed, oldest first.
// Index entries whose record expired are skipped.
func (s *RedisWalkStore) List(ctx context.Context, seed string) ([]*store.WalkRecord, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey(seed)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list walks for %q: %w", seed, err)
	}

	records := make([]*store.WalkRecord, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.walkKey(id))
	}

	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch walks: %w", err)
	}

	for i, result := range results {
		data, ok := result.(string)
		if !ok {
			continue
		}
		var record store.WalkRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal walk %s: %w", ids[i], err)
		}
		records = append(records, &record)
	}

	store.SortRecords(records)
	return records, nil
}

// Delete removes a record and its index entries
func (s *RedisWalkStore) Delete(ctx context.Context, id string) error {
	record, err := s.Load(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.walkKey(id))
	pipe.SRem(ctx, s.seedKey(record.Seed), id)
	pipe.SRem(ctx, s.allKey(), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete walk: %w", err)
	}
	return nil
}

// Clear removes all records for seed
func (s *RedisWalkStore) Clear(ctx context.Context, seed string) error {
	records, err := s.List(ctx, seed)
	if err != nil {
		return fmt.Errorf("failed to get walks for clearing: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, record := range records {
		pipe.Del(ctx, s.walkKey(record.ID))
		pipe.SRem(ctx, s.seedKey(record.Seed), record.ID)
		pipe.SRem(ctx, s.allKey(), record.ID)
	}
	pipe.Del(ctx, s.indexKey(seed))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear walks: %w", err)
	}
	return nil
}
