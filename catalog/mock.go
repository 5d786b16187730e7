package catalog

import (
	"context"
	"strings"
	"sync"
)

// MockClient is a scripted Client for tests and offline demos.
//
// Search results are keyed by case-insensitive name. Release responses are
// queued per artist ID: each call consumes the head of the queue and the last
// response repeats once the queue is drained. Artists without scripted
// releases have none.
type MockClient struct {
	mu         sync.Mutex
	artists    map[string]Artist
	searchErrs map[string]error
	releases   map[string][]mockResponse
	calls      []Call
}

type mockResponse struct {
	releases []Release
	err      error
}

// Call records one request made against a MockClient.
type Call struct {
	Op    string
	Arg   string
	Query ReleaseQuery
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a MockClient that knows the given artists.
func NewMockClient(artists ...Artist) *MockClient {
	m := &MockClient{
		artists:    make(map[string]Artist),
		searchErrs: make(map[string]error),
		releases:   make(map[string][]mockResponse),
	}
	for _, a := range artists {
		m.AddArtist(a)
	}
	return m
}

// MockArtist builds an artist with IDs derived from its name.
func MockArtist(name string) Artist {
	id := "id-" + strings.ReplaceAll(strings.ToLower(name), " ", "-")
	return Artist{
		ID:   id,
		Name: name,
		URI:  "spotify:artist:" + id,
		Href: "https://api.spotify.com/v1/artists/" + id,
	}
}

// MockRelease builds a release crediting artists.
func MockRelease(name string, artists ...Artist) Release {
	id := "rel-" + strings.ReplaceAll(strings.ToLower(name), " ", "-")
	return Release{ID: id, Name: name, URI: "spotify:album:" + id, Artists: artists}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AddArtist makes a searchable under its name.
func (m *MockClient) AddArtist(a Artist) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artists[normalize(a.Name)] = a
	return m
}

// FailSearch makes every search for name return err.
func (m *MockClient) FailSearch(name string, err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchErrs[normalize(name)] = err
	return m
}

// SetReleases replaces the queued responses for artistID with a single repeating one.
func (m *MockClient) SetReleases(artistID string, releases ...Release) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases[artistID] = []mockResponse{{releases: releases}}
	return m
}

// QueueReleases appends a response for the next ListReleases call on artistID.
func (m *MockClient) QueueReleases(artistID string, releases ...Release) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases[artistID] = append(m.releases[artistID], mockResponse{releases: releases})
	return m
}

// QueueReleasesError appends a failing response for artistID.
func (m *MockClient) QueueReleasesError(artistID string, err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases[artistID] = append(m.releases[artistID], mockResponse{err: err})
	return m
}

// SearchArtist implements Client.
func (m *MockClient) SearchArtist(ctx context.Context, name string) (Artist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "search", Arg: name})

	if err := ctx.Err(); err != nil {
		return Artist{}, err
	}
	if err, ok := m.searchErrs[normalize(name)]; ok {
		return Artist{}, err
	}
	a, ok := m.artists[normalize(name)]
	if !ok {
		return Artist{}, &NotFoundError{Query: name}
	}
	return a, nil
}

// ListReleases implements Client. Responses are truncated to query.Limit.
func (m *MockClient) ListReleases(ctx context.Context, artistID string, query ReleaseQuery) ([]Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "releases", Arg: artistID, Query: query})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	queue := m.releases[artistID]
	if len(queue) == 0 {
		return nil, nil
	}
	resp := queue[0]
	if len(queue) > 1 {
		m.releases[artistID] = queue[1:]
	}
	if resp.err != nil {
		return nil, resp.err
	}

	releases := resp.releases
	if query.Limit > 0 && len(releases) > query.Limit {
		releases = releases[:query.Limit]
	}
	return append([]Release(nil), releases...), nil
}

// Calls returns every request made so far, in order.
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// ReleaseCalls counts ListReleases calls for artistID.
func (m *MockClient) ReleaseCalls(artistID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Op == "releases" && c.Arg == artistID {
			n++
		}
	}
	return n
}
