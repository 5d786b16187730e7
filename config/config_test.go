package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/log"
)

// clearEnv unsets every variable Load reads so host settings don't leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SPOTIFY_CLIENT", "SPOTIFY_SECRET",
		"CATALOG_BASE_URL", "CATALOG_TOKEN_URL", "CATALOG_MARKET", "CATALOG_RPS",
		"CATALOG_TIMEOUT", "CATALOG_RETRY_ATTEMPTS", "CATALOG_CACHE", "CATALOG_CACHE_TTL",
		"WALK_STEPS", "WALK_QUERY_LIMIT", "WALK_RELEASE_TYPE", "WALK_SEEDS", "WALK_DEFAULT_SEED",
		"STORE_BACKEND", "STORE_DIR", "STORE_SQLITE_PATH", "STORE_POSTGRES_DSN",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_PREFIX", "REDIS_TTL",
		"DASHBOARD_ADDR", "DASHBOARD_DEBUG",
		"LOG_LEVEL", "LOG_BACKEND",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	// Keep a stray .env in the package directory out of the default lookup
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, catalog.DefaultBaseURL, cfg.Catalog.BaseURL)
	assert.Equal(t, catalog.DefaultTokenURL, cfg.Catalog.TokenURL)
	assert.Equal(t, "US", cfg.Catalog.Market)
	assert.Equal(t, 10.0, cfg.Catalog.RPS)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 1, cfg.Catalog.RetryAttempts)
	assert.Equal(t, CacheNone, cfg.Catalog.Cache)
	assert.Equal(t, time.Hour, cfg.Catalog.CacheTTL)

	assert.Equal(t, 20, cfg.Walk.Steps)
	assert.Equal(t, 20, cfg.Walk.QueryLimit)
	assert.Equal(t, catalog.ReleaseSingle, cfg.ReleaseType())
	assert.Equal(t, []string{"Drake", "Snoop Dogg", "Elton John", "Kendrick Lamar", "Britney Spears"}, cfg.Walk.Seeds)
	assert.Equal(t, "Elton John", cfg.Walk.DefaultSeed)

	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, "./walks", cfg.Store.Dir)
	assert.Equal(t, "./walks.db", cfg.Store.SqlitePath)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "collabwalk:", cfg.Redis.Prefix)
	assert.Equal(t, time.Duration(0), cfg.Redis.TTL)

	assert.Equal(t, ":8050", cfg.Dashboard.Addr)
	assert.False(t, cfg.Dashboard.Debug)
	assert.Equal(t, log.LogLevelInfo, cfg.LogLevel())
	assert.Equal(t, log.BackendStd, cfg.Log.Backend)

	assert.ErrorIs(t, cfg.RequireCredentials(), ErrMissingCredentials)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPOTIFY_CLIENT", "client-id")
	t.Setenv("SPOTIFY_SECRET", "client-secret")
	t.Setenv("CATALOG_RPS", "2.5")
	t.Setenv("CATALOG_CACHE", "Redis")
	t.Setenv("CATALOG_CACHE_TTL", "30m")
	t.Setenv("WALK_STEPS", "7")
	t.Setenv("WALK_RELEASE_TYPE", "album")
	t.Setenv("WALK_SEEDS", "Drake, Kendrick Lamar ,")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("STORE_SQLITE_PATH", "/tmp/collab.db")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DASHBOARD_DEBUG", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_BACKEND", "golog")

	cfg, err := Load()
	require.NoError(t, err)

	assert.NoError(t, cfg.RequireCredentials())
	assert.Equal(t, "client-id", cfg.Spotify.Client)
	assert.Equal(t, 2.5, cfg.Catalog.RPS)
	assert.Equal(t, CacheRedis, cfg.Catalog.Cache)
	assert.Equal(t, 30*time.Minute, cfg.Catalog.CacheTTL)
	assert.Equal(t, 7, cfg.Walk.Steps)
	assert.Equal(t, catalog.ReleaseAlbum, cfg.ReleaseType())
	assert.Equal(t, []string{"Drake", "Kendrick Lamar"}, cfg.Walk.Seeds)
	assert.Equal(t, StoreSqlite, cfg.Store.Backend)
	assert.Equal(t, "/tmp/collab.db", cfg.Store.SqlitePath)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Dashboard.Debug)
	assert.Equal(t, log.LogLevelDebug, cfg.LogLevel())
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "collabwalk.env")
	content := "SPOTIFY_CLIENT=file-id\nSPOTIFY_SECRET=file-secret\nWALK_DEFAULT_SEED=Drake\nCATALOG_MARKET=GB\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// Existing environment wins over the file
	t.Setenv("CATALOG_MARKET", "SE")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-id", cfg.Spotify.Client)
	assert.Equal(t, "Drake", cfg.Walk.DefaultSeed)
	assert.Equal(t, "SE", cfg.Catalog.Market)
}

func TestLoad_DefaultDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("WALK_STEPS=4\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Walk.Steps)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero steps", "WALK_STEPS", "0"},
		{"zero limit", "WALK_QUERY_LIMIT", "0"},
		{"release type", "WALK_RELEASE_TYPE", "compilation"},
		{"cache", "CATALOG_CACHE", "disk"},
		{"store backend", "STORE_BACKEND", "mongo"},
		{"postgres without dsn", "STORE_BACKEND", "postgres"},
		{"log level", "LOG_LEVEL", "loud"},
		{"log backend", "LOG_BACKEND", "zap"},
		{"retry attempts", "CATALOG_RETRY_ATTEMPTS", "0"},
		{"unparsable steps", "WALK_STEPS", "many"},
		{"unparsable timeout", "CATALOG_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
