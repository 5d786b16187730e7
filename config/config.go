// Package config loads collabwalk settings from .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/log"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StoreSqlite   = "sqlite"
	StorePostgres = "postgres"
)

// Catalog caches.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// ErrMissingCredentials is returned by RequireCredentials when no Spotify
// client credentials are configured.
var ErrMissingCredentials = errors.New("SPOTIFY_CLIENT and SPOTIFY_SECRET must be set")

type SpotifyConfig struct {
	Client string
	Secret string
}

type CatalogConfig struct {
	BaseURL       string        `split_words:"true" default:"https://api.spotify.com/v1"`
	TokenURL      string        `split_words:"true" default:"https://accounts.spotify.com/api/token"`
	Market        string        `default:"US"`
	RPS           float64       `default:"10"`
	Timeout       time.Duration `default:"10s"`
	RetryAttempts int           `split_words:"true" default:"1"`
	Cache         string        `default:"none"`
	CacheTTL      time.Duration `split_words:"true" default:"1h"`
}

type WalkConfig struct {
	Steps       int      `default:"20"`
	QueryLimit  int      `split_words:"true" default:"20"`
	ReleaseType string   `split_words:"true" default:"single"`
	Seeds       []string `default:"Drake,Snoop Dogg,Elton John,Kendrick Lamar,Britney Spears"`
	DefaultSeed string   `split_words:"true" default:"Elton John"`
}

type StoreConfig struct {
	Backend     string `default:"memory"`
	Dir         string `default:"./walks"`
	SqlitePath  string `split_words:"true" default:"./walks.db"`
	PostgresDSN string `split_words:"true"`
}

type RedisConfig struct {
	Addr     string `default:"localhost:6379"`
	Password string
	DB       int           `default:"0"`
	Prefix   string        `default:"collabwalk:"`
	TTL      time.Duration `default:"0"`
}

type DashboardConfig struct {
	Addr  string `default:":8050"`
	Debug bool   `default:"false"`
}

type LogConfig struct {
	Level   string `default:"info"`
	Backend string `default:"std"`
}

// Config is the full application configuration. Nested structs map to
// prefixed variables, e.g. Catalog.CacheTTL reads CATALOG_CACHE_TTL.
type Config struct {
	Spotify   SpotifyConfig
	Catalog   CatalogConfig
	Walk      WalkConfig
	Store     StoreConfig
	Redis     RedisConfig
	Dashboard DashboardConfig
	Log       LogConfig
}

// Load reads the given .env files, then the environment, then validates the
// result. With no files, a .env in the working directory is read if present.
// Variables already set in the environment win over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("error loading env file: %w", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Catalog.Cache = strings.ToLower(strings.TrimSpace(c.Catalog.Cache))
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))

	seeds := c.Walk.Seeds[:0]
	for _, s := range c.Walk.Seeds {
		if s = strings.TrimSpace(s); s != "" {
			seeds = append(seeds, s)
		}
	}
	c.Walk.Seeds = seeds
	c.Walk.DefaultSeed = strings.TrimSpace(c.Walk.DefaultSeed)
}

// Validate checks value ranges and enumerations.
// Spotify credentials are checked separately by RequireCredentials.
func (c *Config) Validate() error {
	if c.Walk.Steps < 1 {
		return fmt.Errorf("WALK_STEPS must be at least 1, got %d", c.Walk.Steps)
	}
	if c.Walk.QueryLimit < 1 {
		return fmt.Errorf("WALK_QUERY_LIMIT must be at least 1, got %d", c.Walk.QueryLimit)
	}
	if _, err := catalog.ParseReleaseType(c.Walk.ReleaseType); err != nil {
		return fmt.Errorf("WALK_RELEASE_TYPE: %w", err)
	}
	if c.Walk.DefaultSeed == "" {
		return errors.New("WALK_DEFAULT_SEED must not be empty")
	}
	if c.Catalog.RetryAttempts < 1 {
		return fmt.Errorf("CATALOG_RETRY_ATTEMPTS must be at least 1, got %d", c.Catalog.RetryAttempts)
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("CATALOG_TIMEOUT must be positive, got %s", c.Catalog.Timeout)
	}

	switch c.Catalog.Cache {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("CATALOG_CACHE must be one of none, memory, redis; got %q", c.Catalog.Cache)
	}

	switch c.Store.Backend {
	case StoreMemory, StoreRedis:
	case StoreFile:
		if c.Store.Dir == "" {
			return errors.New("STORE_DIR must be set for the file store")
		}
	case StoreSqlite:
		if c.Store.SqlitePath == "" {
			return errors.New("STORE_SQLITE_PATH must be set for the sqlite store")
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("STORE_POSTGRES_DSN must be set for the postgres store")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of memory, file, redis, sqlite, postgres; got %q", c.Store.Backend)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch strings.ToLower(c.Log.Backend) {
	case log.BackendStd, log.BackendGolog:
	default:
		return fmt.Errorf("LOG_BACKEND must be std or golog; got %q", c.Log.Backend)
	}
	return nil
}

// RequireCredentials reports whether the Spotify client credentials are set.
func (c *Config) RequireCredentials() error {
	if c.Spotify.Client == "" || c.Spotify.Secret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// ReleaseType returns the validated default release type.
func (c *Config) ReleaseType() catalog.ReleaseType {
	rt, err := catalog.ParseReleaseType(c.Walk.ReleaseType)
	if err != nil {
		return catalog.ReleaseSingle
	}
	return rt
}

// LogLevel returns the validated log level.
func (c *Config) LogLevel() log.LogLevel {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.LogLevelInfo
	}
	return level
}
