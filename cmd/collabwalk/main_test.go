package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/config"
	"github.com/smallnest/collabwalk/log"
	"github.com/smallnest/collabwalk/store"
	"github.com/smallnest/collabwalk/walk"
)

var envKeys = []string{
	"SPOTIFY_CLIENT", "SPOTIFY_SECRET", "CATALOG_CACHE", "CATALOG_RETRY_ATTEMPTS",
	"WALK_STEPS", "WALK_QUERY_LIMIT", "WALK_RELEASE_TYPE", "WALK_DEFAULT_SEED",
	"STORE_BACKEND", "STORE_DIR", "STORE_SQLITE_PATH", "LOG_LEVEL", "LOG_BACKEND",
}

// isolate clears the variables the CLI reads and applies env.
func isolate(t *testing.T, env map[string]string) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("LOG_LEVEL", "error")
	for k, v := range env {
		t.Setenv(k, v)
	}
	t.Chdir(t.TempDir())
}

func mockCatalog() *catalog.MockClient {
	elton := catalog.MockArtist("Elton John")
	kiki := catalog.MockArtist("Kiki Dee")
	ru := catalog.MockArtist("RuPaul")
	return catalog.NewMockClient(elton, kiki, ru).
		SetReleases(elton.ID,
			catalog.MockRelease("Don't Go Breaking My Heart", elton, kiki),
			catalog.MockRelease("Don't Go Breaking My Heart 1994", elton, ru),
		).
		SetReleases(kiki.ID, catalog.MockRelease("True Love", kiki, elton))
}

// run executes one CLI invocation and returns stdout and stderr.
func run(t *testing.T, a *app, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestWalkSaveHistoryShow(t *testing.T) {
	dir := t.TempDir()
	isolate(t, map[string]string{"STORE_BACKEND": "file", "STORE_DIR": dir})
	a := &app{client: mockCatalog()}

	out, _, err := run(t, a, "walk", "Elton John", "--steps", "3", "--rand-seed", "1", "--format", "json", "--save")
	require.NoError(t, err)

	var record store.WalkRecord
	require.NoError(t, json.Unmarshal([]byte(out), &record), out)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "Elton John", record.Seed)
	assert.Len(t, record.Path, 3)
	assert.Equal(t, "US", record.Market)
	assert.Len(t, record.Snapshot.Artists, 3)

	out, _, err = run(t, a, "history", "elton john")
	require.NoError(t, err)
	assert.Contains(t, out, record.ID)
	assert.Contains(t, out, "Elton John")

	out, _, err = run(t, a, "show", record.ID, "--format", "mermaid")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "flowchart LR"), out)

	_, _, err = run(t, a, "show", record.ID, "--format", "dot", "--delete")
	require.NoError(t, err)

	out, _, err = run(t, a, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "no saved walks")

	_, _, err = run(t, a, "show", record.ID)
	assert.True(t, errors.Is(err, store.ErrWalkNotFound))
}

func TestWalkFormats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{formatText, "Collaboration walk from Elton John"},
		{formatASCII, "Collaboration Tree:"},
		{formatMermaid, "flowchart LR"},
		{formatDOT, "graph G {"},
		{formatMarkdown, "| Artist |"},
		{formatJSON, `"seed": "Elton John"`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			isolate(t, nil)
			out, _, err := run(t, &app{client: mockCatalog()}, "walk", "Elton John", "--steps", "4", "--rand-seed", "3", "-f", tt.format)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestWalkUsesConfigDefaults(t *testing.T) {
	isolate(t, map[string]string{
		"WALK_DEFAULT_SEED": "Kiki Dee",
		"WALK_STEPS":        "5",
		"WALK_RELEASE_TYPE": "album",
	})
	client := mockCatalog()

	out, _, err := run(t, &app{client: client}, "walk", "--format", "json", "--market", "SE")
	require.NoError(t, err)

	var record store.WalkRecord
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	assert.Equal(t, "Kiki Dee", record.Seed)
	assert.Len(t, record.Path, 5)
	assert.Equal(t, catalog.ReleaseAlbum, record.ReleaseType)
	assert.Empty(t, record.ID)

	for _, call := range client.Calls() {
		if call.Op == "releases" {
			assert.Equal(t, "SE", call.Query.Market)
			assert.Equal(t, catalog.ReleaseAlbum, call.Query.Type)
		}
	}
}

func TestWalkVerbose(t *testing.T) {
	isolate(t, nil)

	_, stderr, err := run(t, &app{client: mockCatalog()}, "walk", "Elton John", "--steps", "2", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, stderr, "2 releases, 2 new")
}

func TestWalkErrors(t *testing.T) {
	isolate(t, nil)
	a := &app{client: mockCatalog()}

	_, _, err := run(t, a, "walk", "Nobody")
	assert.True(t, catalog.IsNotFound(err), "got %v", err)

	_, _, err = run(t, a, "walk", "Elton John", "--steps=-2")
	assert.True(t, errors.Is(err, walk.ErrInvalidRequest), "got %v", err)

	_, _, err = run(t, a, "walk", "Elton John", "--type", "ep")
	assert.Error(t, err)

	_, _, err = run(t, a, "walk", "Elton John", "--format", "svg")
	assert.ErrorContains(t, err, "unknown format")
}

func TestWalkRequiresCredentials(t *testing.T) {
	isolate(t, nil)

	_, _, err := run(t, &app{}, "walk", "Elton John")
	assert.ErrorIs(t, err, config.ErrMissingCredentials)
}

func TestInvalidConfig(t *testing.T) {
	isolate(t, map[string]string{"STORE_BACKEND": "mongo"})

	_, _, err := run(t, &app{client: mockCatalog()}, "history")
	assert.ErrorContains(t, err, "STORE_BACKEND")
}

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	isolate(t, env)
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestBackendsWalkStore(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"memory", map[string]string{"STORE_BACKEND": "memory"}},
		{"file", map[string]string{"STORE_BACKEND": "file", "STORE_DIR": "walks"}},
		{"sqlite", map[string]string{"STORE_BACKEND": "sqlite", "STORE_SQLITE_PATH": "walks.db"}},
		{"redis", map[string]string{"STORE_BACKEND": "redis", "REDIS_ADDR": mr.Addr()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.env)
			b := newBackends(cfg, &log.NoOpLogger{})
			defer b.Close()

			walks, err := b.walkStore(context.Background())
			require.NoError(t, err)

			req := walk.Request{Seed: "Elton John", Steps: 2, QueryLimit: 5, ReleaseType: catalog.ReleaseSingle}
			res, err := walk.New(mockCatalog(), walk.WithLogger(&log.NoOpLogger{})).Walk(context.Background(), req)
			require.NoError(t, err)
			rec := store.NewWalkRecord(req, "US", res)
			require.NoError(t, walks.Save(context.Background(), rec))

			loaded, err := walks.Load(context.Background(), rec.ID)
			require.NoError(t, err)
			assert.Equal(t, rec.Path, loaded.Path)
		})
	}
}

func TestBackendsDecorate(t *testing.T) {
	cfg := testConfig(t, map[string]string{"CATALOG_CACHE": "memory", "CATALOG_RETRY_ATTEMPTS": "3"})
	b := newBackends(cfg, &log.NoOpLogger{})
	defer b.Close()

	mock := mockCatalog()
	client := b.decorate(mock)
	_, ok := client.(*catalog.RetryClient)
	assert.True(t, ok, "got %T", client)

	ctx := context.Background()
	elton := catalog.MockArtist("Elton John")
	q := catalog.ReleaseQuery{Type: catalog.ReleaseSingle, Limit: 5}
	_, err := client.ListReleases(ctx, elton.ID, q)
	require.NoError(t, err)
	_, err = client.ListReleases(ctx, elton.ID, q)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.ReleaseCalls(elton.ID))

	plain := testConfig(t, nil)
	assert.Same(t, mock, newBackends(plain, &log.NoOpLogger{}).decorate(mock))
}

func TestBackendsCatalogClient(t *testing.T) {
	cfg := testConfig(t, map[string]string{"SPOTIFY_CLIENT": "id", "SPOTIFY_SECRET": "secret"})

	client, err := newBackends(cfg, &log.NoOpLogger{}).catalogClient()
	require.NoError(t, err)
	_, ok := client.(*catalog.SpotifyClient)
	assert.True(t, ok, "got %T", client)
}
