package walk

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/graph"
	"github.com/smallnest/collabwalk/log"
)

// ErrInvalidRequest is returned when a Request fails validation.
var ErrInvalidRequest = errors.New("invalid walk request")

// RandomSource draws the next artist. *rand.Rand satisfies it.
type RandomSource interface {
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
}

// Request describes one walk.
type Request struct {
	// Seed is the artist name the walk starts from.
	Seed string `json:"seed"`

	// Steps is the exact length of the resulting path.
	Steps int `json:"steps"`

	// QueryLimit caps the releases fetched per visit.
	QueryLimit int `json:"query_limit"`

	// ReleaseType selects singles or albums.
	ReleaseType catalog.ReleaseType `json:"release_type"`
}

// Validate checks the request before any catalog call is made.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.Seed) == "":
		return fmt.Errorf("%w: seed artist is required", ErrInvalidRequest)
	case r.Steps < 1:
		return fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidRequest, r.Steps)
	case r.QueryLimit < 1:
		return fmt.Errorf("%w: query limit must be at least 1, got %d", ErrInvalidRequest, r.QueryLimit)
	case !r.ReleaseType.Valid():
		return fmt.Errorf("%w: unknown release type %q", ErrInvalidRequest, r.ReleaseType)
	}
	return nil
}

// Result is the outcome of a finished walk.
type Result struct {
	Graph *graph.Graph
	Path  []string
	Seed  graph.Artist
}

// Walker runs lazy discovery random walks over the collaboration graph.
// A Walker is not safe for concurrent use unless its RandomSource is.
type Walker struct {
	client    catalog.Client
	rand      RandomSource
	logger    log.Logger
	market    string
	listeners []Listener
}

// Option configures a Walker.
type Option func(*Walker)

// WithRandom sets the random source used to draw the next artist.
func WithRandom(r RandomSource) Option {
	return func(w *Walker) {
		w.rand = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// WithMarket restricts release listings to a market.
func WithMarket(market string) Option {
	return func(w *Walker) {
		w.market = market
	}
}

// WithListener registers listeners for walk events.
func WithListener(listeners ...Listener) Option {
	return func(w *Walker) {
		w.listeners = append(w.listeners, listeners...)
	}
}

// New creates a Walker reading from client.
func New(client catalog.Client, opts ...Option) *Walker {
	w := &Walker{
		client: client,
		logger: log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.rand == nil {
		//nolint:gosec // Walk choices are not security sensitive
		w.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return w
}

// Walk runs req on a fresh graph. On failure no partial result is returned.
func (w *Walker) Walk(ctx context.Context, req Request) (*Result, error) {
	g := graph.NewGraph()
	path, err := w.WalkInto(ctx, g, req)
	if err != nil {
		return nil, err
	}
	seed, _ := g.Artist(path[0])
	return &Result{Graph: g, Path: path, Seed: seed}, nil
}

// WalkInto runs req on g, which may already hold artists. Artists already in
// g are never re-linked. On failure g keeps everything discovered so far and
// the returned path holds the visits made before the error.
//
// Catalog errors are returned unchanged.
func (w *Walker) WalkInto(ctx context.Context, g *graph.Graph, req Request) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	started := time.Now()

	resolved, err := w.client.SearchArtist(ctx, req.Seed)
	if err != nil {
		w.emit(ctx, EventWalkError, EventData{Request: req, Elapsed: time.Since(started), Err: err})
		return nil, err
	}
	g.AddArtist(toNode(resolved))
	current := resolved.Name

	w.logger.Info("walk: starting from %s (%d steps, %s, limit %d)", current, req.Steps, req.ReleaseType, req.QueryLimit)
	w.emit(ctx, EventWalkStart, EventData{Request: req, Seed: current})

	path := make([]string, 0, req.Steps)
	for len(path) < req.Steps {
		if err := ctx.Err(); err != nil {
			return w.fail(ctx, req, current, path, started, err)
		}

		step, err := w.step(ctx, g, req, current, len(path))
		if err != nil {
			return w.fail(ctx, req, current, path, started, err)
		}
		path = append(path, current)

		w.logger.Debug("walk: step %d at %s, %d releases, discovered %d, next %s",
			step.Index, step.Artist, step.Releases, len(step.Discovered), step.Next)
		w.emit(ctx, EventStep, EventData{Request: req, Seed: path[0], Step: step, Path: path})

		current = step.Next
	}

	elapsed := time.Since(started)
	w.logger.Info("walk: finished from %s, %d artists, %d collaborations in %v",
		path[0], g.ArtistCount(), g.CollaborationCount(), elapsed)
	w.emit(ctx, EventWalkEnd, EventData{Request: req, Seed: path[0], Path: path, Elapsed: elapsed})
	return path, nil
}

// step visits current: it lists its releases, links every unseen co-artist
// and draws the next artist from the new names plus current itself.
func (w *Walker) step(ctx context.Context, g *graph.Graph, req Request, current string, index int) (*StepInfo, error) {
	node, _ := g.Artist(current)

	requested := time.Now()
	releases, err := w.client.ListReleases(ctx, node.ID, catalog.ReleaseQuery{
		Type:   req.ReleaseType,
		Limit:  req.QueryLimit,
		Market: w.market,
	})
	if err != nil {
		return nil, err
	}

	info := &StepInfo{
		Index:    index,
		Artist:   current,
		Releases: len(releases),
		Duration: time.Since(requested),
	}

	candidates := make([]string, 0)
	for _, release := range releases {
		for _, credited := range release.Artists {
			// Names key the graph, so a nameless credit cannot become a node
			if credited.Name == "" || credited.Name == current || g.HasArtist(credited.Name) {
				continue
			}
			g.AddArtist(toNode(credited))
			if _, err := g.AddCollaboration(current, credited.Name, graph.Release{
				Name: release.Name,
				ID:   release.ID,
				URI:  release.URI,
			}); err != nil {
				return nil, fmt.Errorf("failed to link %s and %s: %w", current, credited.Name, err)
			}
			candidates = append(candidates, credited.Name)
		}
	}
	info.Discovered = append([]string(nil), candidates...)

	candidates = append(candidates, current)
	info.Candidates = candidates
	info.Next = candidates[w.rand.Intn(len(candidates))]
	return info, nil
}

func (w *Walker) fail(ctx context.Context, req Request, current string, path []string, started time.Time, err error) ([]string, error) {
	w.logger.Error("walk: aborted at %s after %d steps: %v", current, len(path), err)
	seed := current
	if len(path) > 0 {
		seed = path[0]
	}
	w.emit(ctx, EventWalkError, EventData{Request: req, Seed: seed, Path: path, Elapsed: time.Since(started), Err: err})
	return path, err
}

func (w *Walker) emit(ctx context.Context, event Event, data EventData) {
	for _, l := range w.listeners {
		l.OnWalkEvent(ctx, event, data)
	}
}

func toNode(a catalog.Artist) graph.Artist {
	return graph.Artist{Name: a.Name, ID: a.ID, URI: a.URI, Href: a.Href}
}
