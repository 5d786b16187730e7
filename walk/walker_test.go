package walk

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/graph"
	"github.com/smallnest/collabwalk/log"
)

// randomFunc adapts a function to RandomSource.
type randomFunc func(n int) int

func (f randomFunc) Intn(n int) int { return f(n) }

// alwaysSelf picks the last candidate, which is the current artist.
var alwaysSelf = randomFunc(func(n int) int { return n - 1 })

// alwaysFirst picks the first newly discovered artist when there is one.
var alwaysFirst = randomFunc(func(int) int { return 0 })

func newWalker(client catalog.Client, opts ...Option) *Walker {
	opts = append([]Option{WithLogger(&log.NoOpLogger{})}, opts...)
	return New(client, opts...)
}

func defaultRequest(seed string, steps int) Request {
	return Request{Seed: seed, Steps: steps, QueryLimit: 10, ReleaseType: catalog.ReleaseSingle}
}

func TestWalk_TwoArtistExample(t *testing.T) {
	a, b := catalog.MockArtist("A"), catalog.MockArtist("B")
	mock := catalog.NewMockClient(a).SetReleases(a.ID, catalog.MockRelease("Duet", a, b))

	result, err := newWalker(mock).Walk(context.Background(), defaultRequest("A", 2))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Graph.ArtistCount())
	assert.Equal(t, 1, result.Graph.CollaborationCount())
	assert.Equal(t, "A", result.Seed.Name)
	assert.Equal(t, a.ID, result.Seed.ID)
	require.Len(t, result.Path, 2)
	assert.Equal(t, "A", result.Path[0])
	assert.Contains(t, []string{"A", "B"}, result.Path[1])

	c, ok := result.Graph.Collaboration("A", "B")
	require.True(t, ok)
	assert.Equal(t, "Duet", c.Release.Name)
}

func TestWalk_SecondStepIsUniform(t *testing.T) {
	a, b := catalog.MockArtist("A"), catalog.MockArtist("B")
	mock := catalog.NewMockClient(a).SetReleases(a.ID, catalog.MockRelease("Duet", a, b))
	walker := newWalker(mock, WithRandom(rand.New(rand.NewSource(42))))

	const runs = 2000
	counts := map[string]int{}
	for range runs {
		result, err := walker.Walk(context.Background(), defaultRequest("A", 2))
		require.NoError(t, err)
		counts[result.Path[1]]++
	}

	assert.Equal(t, runs, counts["A"]+counts["B"])
	for _, name := range []string{"A", "B"} {
		share := float64(counts[name]) / runs
		assert.InDelta(t, 0.5, share, 0.05, "share of %s", name)
	}
}

func TestWalk_PathLengthEqualsSteps(t *testing.T) {
	a, b, c := catalog.MockArtist("A"), catalog.MockArtist("B"), catalog.MockArtist("C")
	mock := catalog.NewMockClient(a).
		SetReleases(a.ID, catalog.MockRelease("AB", a, b)).
		SetReleases(b.ID, catalog.MockRelease("BC", b, c)).
		SetReleases(c.ID, catalog.MockRelease("CA", c, a))

	for _, steps := range []int{1, 2, 7, 25} {
		walker := newWalker(mock, WithRandom(rand.New(rand.NewSource(int64(steps)))))
		result, err := walker.Walk(context.Background(), defaultRequest("A", steps))
		require.NoError(t, err)
		assert.Len(t, result.Path, steps)
		assert.Equal(t, "A", result.Path[0])
	}
}

func TestWalk_NoDuplicateNodesOrParallelEdges(t *testing.T) {
	a, b, c, d := catalog.MockArtist("A"), catalog.MockArtist("B"), catalog.MockArtist("C"), catalog.MockArtist("D")
	mock := catalog.NewMockClient(a).
		SetReleases(a.ID,
			catalog.MockRelease("First", a, b, c),
			catalog.MockRelease("Second", b, a),
			catalog.MockRelease("Third", c, b, d),
		).
		SetReleases(b.ID, catalog.MockRelease("Back", b, a, c, d)).
		SetReleases(d.ID, catalog.MockRelease("Loop", d, a, b))

	walker := newWalker(mock, WithRandom(rand.New(rand.NewSource(7))))
	result, err := walker.Walk(context.Background(), defaultRequest("A", 30))
	require.NoError(t, err)

	g := result.Graph
	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, g.Names())

	seen := map[[2]string]bool{}
	for _, e := range g.Collaborations() {
		key := [2]string{e.Source, e.Target}
		if key[1] < key[0] {
			key[0], key[1] = key[1], key[0]
		}
		assert.False(t, seen[key], "parallel edge %v", key)
		seen[key] = true
		assert.NotEqual(t, e.Source, e.Target)
	}

	// Every artist is discovered on the first visit, so the first release wins
	ab, ok := g.Collaboration("A", "B")
	require.True(t, ok)
	assert.Equal(t, "First", ab.Release.Name)
	ad, ok := g.Collaboration("A", "D")
	require.True(t, ok)
	assert.Equal(t, "Third", ad.Release.Name)
	assert.Equal(t, 3, g.CollaborationCount())
}

func TestWalkInto_SelfTransitionWhenNeighborsKnown(t *testing.T) {
	a, b, c := catalog.MockArtist("A"), catalog.MockArtist("B"), catalog.MockArtist("C")
	mock := catalog.NewMockClient(a).SetReleases(a.ID, catalog.MockRelease("Trio", a, b, c))

	g := graph.NewGraph()
	for _, artist := range []catalog.Artist{a, b, c} {
		g.AddArtist(toNode(artist))
	}

	var candidates [][]string
	steps := ListenerFunc(func(_ context.Context, event Event, data EventData) {
		if event == EventStep {
			candidates = append(candidates, data.Step.Candidates)
		}
	})

	// Any draw has a single candidate
	walker := newWalker(mock, WithRandom(rand.New(rand.NewSource(1))), WithListener(steps))
	path, err := walker.WalkInto(context.Background(), g, defaultRequest("A", 4))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "A", "A", "A"}, path)
	assert.Equal(t, 4, mock.ReleaseCalls(a.ID))
	require.Len(t, candidates, 4)
	for _, c := range candidates {
		assert.Equal(t, []string{"A"}, c)
	}
	assert.Equal(t, 0, g.CollaborationCount())
	assert.Equal(t, 3, g.ArtistCount())
}

func TestWalk_SkipsNamelessCredits(t *testing.T) {
	a, b := catalog.MockArtist("A"), catalog.MockArtist("B")
	nameless := catalog.Artist{ID: "id-nameless"}
	mock := catalog.NewMockClient(a).SetReleases(a.ID, catalog.MockRelease("Feature", a, nameless, b))

	var discovered []string
	steps := ListenerFunc(func(_ context.Context, event Event, data EventData) {
		if event == EventStep && data.Step.Index == 0 {
			discovered = data.Step.Discovered
		}
	})

	result, err := newWalker(mock, WithRandom(alwaysFirst), WithListener(steps)).Walk(context.Background(), defaultRequest("A", 2))
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, discovered)
	assert.Equal(t, []string{"A", "B"}, result.Path)
	assert.Equal(t, []string{"A", "B"}, result.Graph.Names())
	assert.False(t, result.Graph.HasArtist(""))
}

func TestWalk_ReleasesWithoutCoArtists(t *testing.T) {
	a := catalog.MockArtist("A")
	mock := catalog.NewMockClient(a).SetReleases(a.ID, catalog.MockRelease("Solo", a))

	result, err := newWalker(mock, WithRandom(alwaysFirst)).Walk(context.Background(), defaultRequest("A", 3))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A", "A"}, result.Path)
	assert.Equal(t, 1, result.Graph.ArtistCount())
}

func TestWalk_RequeriesOnEveryVisit(t *testing.T) {
	a, b := catalog.MockArtist("A"), catalog.MockArtist("B")
	mock := catalog.NewMockClient(a).SetReleases(a.ID, catalog.MockRelease("Duet", a, b))

	_, err := newWalker(mock, WithRandom(alwaysSelf), WithMarket("SE")).Walk(context.Background(), defaultRequest("A", 5))
	require.NoError(t, err)
	assert.Equal(t, 5, mock.ReleaseCalls(a.ID))

	calls := mock.Calls()
	require.Len(t, calls, 6)
	assert.Equal(t, "search", calls[0].Op)
	assert.Equal(t, catalog.ReleaseQuery{Type: catalog.ReleaseSingle, Limit: 10, Market: "SE"}, calls[1].Query)
}

func TestWalk_FollowsDrawnArtist(t *testing.T) {
	a, b, c := catalog.MockArtist("A"), catalog.MockArtist("B"), catalog.MockArtist("C")
	mock := catalog.NewMockClient(a).
		SetReleases(a.ID, catalog.MockRelease("AB", a, b)).
		SetReleases(b.ID, catalog.MockRelease("BC", b, c))

	result, err := newWalker(mock, WithRandom(alwaysFirst)).Walk(context.Background(), defaultRequest("A", 3))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, result.Path)

	c2, ok := result.Graph.Collaboration("B", "C")
	require.True(t, ok)
	assert.Equal(t, "B", c2.Source)
	assert.Equal(t, "BC", c2.Release.Name)
}

func TestWalk_Deterministic(t *testing.T) {
	a, b, c, d := catalog.MockArtist("A"), catalog.MockArtist("B"), catalog.MockArtist("C"), catalog.MockArtist("D")
	newMock := func() *catalog.MockClient {
		return catalog.NewMockClient(a).
			SetReleases(a.ID, catalog.MockRelease("AB", a, b), catalog.MockRelease("AC", a, c)).
			SetReleases(b.ID, catalog.MockRelease("BD", b, d)).
			SetReleases(c.ID, catalog.MockRelease("CD", c, d))
	}

	run := func() *Result {
		walker := newWalker(newMock(), WithRandom(rand.New(rand.NewSource(99))))
		result, err := walker.Walk(context.Background(), defaultRequest("A", 15))
		require.NoError(t, err)
		return result
	}

	first, second := run(), run()
	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, first.Graph.Snapshot(), second.Graph.Snapshot())
}

func TestWalk_SeedNotFound(t *testing.T) {
	mock := catalog.NewMockClient()

	result, err := newWalker(mock).Walk(context.Background(), defaultRequest("Nobody", 3))
	assert.Nil(t, result)
	var nf *catalog.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Nobody", nf.Query)
}

func TestWalk_CatalogErrorAbortsWalk(t *testing.T) {
	a, b := catalog.MockArtist("A"), catalog.MockArtist("B")
	failure := &catalog.CatalogError{Op: "releases", StatusCode: http.StatusBadGateway}
	mock := catalog.NewMockClient(a).
		QueueReleases(a.ID, catalog.MockRelease("Duet", a, b)).
		QueueReleasesError(a.ID, failure)

	walker := newWalker(mock, WithRandom(alwaysSelf))

	result, err := walker.Walk(context.Background(), defaultRequest("A", 3))
	assert.Nil(t, result)
	assert.Same(t, failure, err)

	// WalkInto keeps what was discovered before the failure
	mock = catalog.NewMockClient(a).
		QueueReleases(a.ID, catalog.MockRelease("Duet", a, b)).
		QueueReleasesError(a.ID, failure)
	walker = newWalker(mock, WithRandom(alwaysSelf))

	g := graph.NewGraph()
	path, err := walker.WalkInto(context.Background(), g, defaultRequest("A", 3))
	assert.Same(t, failure, err)
	assert.Equal(t, []string{"A"}, path)
	assert.True(t, g.HasCollaboration("A", "B"))
}

func TestWalk_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"empty seed", Request{Seed: " ", Steps: 1, QueryLimit: 1, ReleaseType: catalog.ReleaseSingle}},
		{"zero steps", Request{Seed: "A", Steps: 0, QueryLimit: 1, ReleaseType: catalog.ReleaseSingle}},
		{"zero limit", Request{Seed: "A", Steps: 1, QueryLimit: 0, ReleaseType: catalog.ReleaseSingle}},
		{"bad type", Request{Seed: "A", Steps: 1, QueryLimit: 1, ReleaseType: "compilation"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := catalog.NewMockClient(catalog.MockArtist("A"))
			_, err := newWalker(mock).Walk(context.Background(), tt.req)
			assert.True(t, errors.Is(err, ErrInvalidRequest))
			assert.Empty(t, mock.Calls())
		})
	}
}

func TestWalk_ListenerEvents(t *testing.T) {
	a, b := catalog.MockArtist("A"), catalog.MockArtist("B")
	mock := catalog.NewMockClient(a).SetReleases(a.ID, catalog.MockRelease("Duet", a, b))

	var events []Event
	var steps []*StepInfo
	listener := ListenerFunc(func(_ context.Context, event Event, data EventData) {
		events = append(events, event)
		if event == EventStep {
			steps = append(steps, data.Step)
		}
		if event == EventWalkEnd {
			assert.Equal(t, []string{"A", "B", "B"}, data.Path)
		}
	})

	walker := newWalker(mock, WithRandom(alwaysFirst), WithListener(listener))
	_, err := walker.Walk(context.Background(), defaultRequest("A", 3))
	require.NoError(t, err)

	assert.Equal(t, []Event{EventWalkStart, EventStep, EventStep, EventStep, EventWalkEnd}, events)
	require.Len(t, steps, 3)
	assert.Equal(t, []string{"B"}, steps[0].Discovered)
	assert.Equal(t, []string{"B", "A"}, steps[0].Candidates)
	assert.Equal(t, "B", steps[0].Next)
	assert.Equal(t, 1, steps[0].Releases)
	assert.Equal(t, []string{"B"}, steps[1].Candidates)
	assert.Equal(t, 0, steps[1].Releases)
}

func TestWalk_StopsWhenContextCancelled(t *testing.T) {
	a := catalog.MockArtist("A")
	mock := catalog.NewMockClient(a).SetReleases(a.ID, catalog.MockRelease("Solo", a))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var lastErr error
	listener := ListenerFunc(func(_ context.Context, event Event, data EventData) {
		switch event {
		case EventStep:
			if data.Step.Index == 1 {
				cancel()
			}
		case EventWalkError:
			lastErr = data.Err
		}
	})

	g := graph.NewGraph()
	path, err := newWalker(mock, WithListener(listener)).WalkInto(ctx, g, defaultRequest("A", 10))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, path, 2)
	assert.Equal(t, err, lastErr)
	assert.Equal(t, 2, mock.ReleaseCalls(a.ID))
}
