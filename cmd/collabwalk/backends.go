package main

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/config"
	"github.com/smallnest/collabwalk/log"
	"github.com/smallnest/collabwalk/store"
	"github.com/smallnest/collabwalk/store/file"
	"github.com/smallnest/collabwalk/store/memory"
	"github.com/smallnest/collabwalk/store/postgres"
	"github.com/smallnest/collabwalk/store/redis"
	"github.com/smallnest/collabwalk/store/sqlite"
)

// backends builds the catalog client and walk store named by a Config and
// owns the connections they open.
type backends struct {
	cfg     *config.Config
	logger  log.Logger
	redis   *goredis.Client
	closers []func() error
}

func newBackends(cfg *config.Config, logger log.Logger) *backends {
	return &backends{cfg: cfg, logger: logger}
}

// redisClient returns the client shared by the redis store and cache.
func (b *backends) redisClient() *goredis.Client {
	if b.redis == nil {
		b.redis = redis.NewClient(redis.RedisOptions{
			Addr:     b.cfg.Redis.Addr,
			Password: b.cfg.Redis.Password,
			DB:       b.cfg.Redis.DB,
		})
		b.closers = append(b.closers, b.redis.Close)
	}
	return b.redis
}

// catalogClient returns the Spotify client wrapped in the configured cache and retry layers.
func (b *backends) catalogClient() (catalog.Client, error) {
	if err := b.cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	spotify, err := catalog.NewSpotifyClient(b.cfg.Spotify.Client, b.cfg.Spotify.Secret,
		catalog.WithBaseURL(b.cfg.Catalog.BaseURL),
		catalog.WithTokenURL(b.cfg.Catalog.TokenURL),
		catalog.WithTimeout(b.cfg.Catalog.Timeout),
		catalog.WithRateLimit(b.cfg.Catalog.RPS),
		catalog.WithLogger(b.logger),
	)
	if err != nil {
		return nil, err
	}
	return b.decorate(spotify), nil
}

func (b *backends) decorate(client catalog.Client) catalog.Client {
	switch b.cfg.Catalog.Cache {
	case config.CacheMemory:
		cached := catalog.NewCachedClient(client, catalog.NewMemoryCache(), b.cfg.Catalog.CacheTTL)
		cached.SetLogger(b.logger)
		client = cached
	case config.CacheRedis:
		cached := catalog.NewCachedClient(client, redis.NewRedisCache(b.redisClient(), b.cfg.Redis.Prefix), b.cfg.Catalog.CacheTTL)
		cached.SetLogger(b.logger)
		client = cached
	}

	if b.cfg.Catalog.RetryAttempts > 1 {
		retryConfig := catalog.DefaultRetryConfig()
		retryConfig.MaxAttempts = b.cfg.Catalog.RetryAttempts
		retrying := catalog.WithRetry(client, retryConfig)
		retrying.SetLogger(b.logger)
		client = retrying
	}
	return client
}

// walkStore opens the configured walk history backend.
func (b *backends) walkStore(ctx context.Context) (store.WalkStore, error) {
	switch b.cfg.Store.Backend {
	case config.StoreMemory:
		return memory.NewMemoryWalkStore(), nil
	case config.StoreFile:
		s, err := file.NewFileWalkStore(b.cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreRedis:
		return redis.NewRedisWalkStoreWithClient(b.redisClient(), redis.RedisOptions{
			Prefix: b.cfg.Redis.Prefix,
			TTL:    b.cfg.Redis.TTL,
		}), nil
	case config.StoreSqlite:
		s, err := sqlite.NewSqliteWalkStore(sqlite.SqliteOptions{Path: b.cfg.Store.SqlitePath})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, s.Close)
		return s, nil
	case config.StorePostgres:
		s, err := postgres.NewPostgresWalkStore(ctx, postgres.PostgresOptions{ConnString: b.cfg.Store.PostgresDSN})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() error { s.Close(); return nil })
		if err := s.InitSchema(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", b.cfg.Store.Backend)
	}
}

// Close releases every connection opened so far, newest first.
func (b *backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
