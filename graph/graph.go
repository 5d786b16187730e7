package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrArtistNotFound is returned when a collaboration references an artist that is not in the graph.
	ErrArtistNotFound = errors.New("artist not found")

	// ErrSelfCollaboration is returned when both ends of a collaboration are the same artist.
	ErrSelfCollaboration = errors.New("artist cannot collaborate with itself")

	// ErrDuplicateArtist is returned when a snapshot lists the same artist name twice.
	ErrDuplicateArtist = errors.New("duplicate artist")
)

// Artist is a node in the collaboration graph.
// The display name is the node key; the other attributes are opaque catalog references.
type Artist struct {
	// Name is the unique key of the node.
	Name string `json:"name"`

	// ID is the catalog resource identifier.
	ID string `json:"id"`

	// URI is the catalog URI of the artist.
	URI string `json:"uri"`

	// Href is the catalog API link of the artist.
	Href string `json:"href"`
}

// Release carries the attributes of the release that created a collaboration.
type Release struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	URI  string `json:"uri"`
}

// Collaboration is an undirected edge between two distinct artists.
type Collaboration struct {
	// Source is the artist that was being visited when the edge was discovered.
	Source string `json:"source"`

	// Target is the newly discovered co-artist.
	Target string `json:"target"`

	// Release is the release that first credited both artists.
	Release Release `json:"release"`
}

// Connects reports whether the collaboration joins a and b, in either direction.
func (c Collaboration) Connects(a, b string) bool {
	return (c.Source == a && c.Target == b) || (c.Source == b && c.Target == a)
}

// pair is the unordered key of an edge.
type pair struct {
	a, b string
}

func newPair(a, b string) pair {
	if b < a {
		a, b = b, a
	}
	return pair{a: a, b: b}
}

// Graph is an undirected collaboration graph keyed by artist name.
// Nodes and edges are kept in insertion order. A Graph only grows.
// It is not safe for concurrent mutation; a single walk owns it.
type Graph struct {
	artists   map[string]Artist
	order     []string
	edges     []Collaboration
	edgeIndex map[pair]int
	adjacency map[string][]string
}

// NewGraph creates an empty collaboration graph.
func NewGraph() *Graph {
	return &Graph{
		artists:   make(map[string]Artist),
		edgeIndex: make(map[pair]int),
		adjacency: make(map[string][]string),
	}
}

// AddArtist inserts an artist node. It returns false and leaves the
// existing attributes untouched when the name is already a node.
func (g *Graph) AddArtist(artist Artist) bool {
	if _, ok := g.artists[artist.Name]; ok {
		return false
	}
	g.artists[artist.Name] = artist
	g.order = append(g.order, artist.Name)
	return true
}

// HasArtist reports whether name is a node key.
func (g *Graph) HasArtist(name string) bool {
	_, ok := g.artists[name]
	return ok
}

// Artist returns the attributes stored for name.
func (g *Graph) Artist(name string) (Artist, bool) {
	a, ok := g.artists[name]
	return a, ok
}

// AddCollaboration adds an edge between source and target.
// It returns false without error when the pair is already connected,
// so the first release that joined them is kept.
func (g *Graph) AddCollaboration(source, target string, release Release) (bool, error) {
	if source == target {
		return false, fmt.Errorf("%w: %s", ErrSelfCollaboration, source)
	}
	if !g.HasArtist(source) {
		return false, fmt.Errorf("%w: %s", ErrArtistNotFound, source)
	}
	if !g.HasArtist(target) {
		return false, fmt.Errorf("%w: %s", ErrArtistNotFound, target)
	}

	key := newPair(source, target)
	if _, ok := g.edgeIndex[key]; ok {
		return false, nil
	}

	g.edgeIndex[key] = len(g.edges)
	g.edges = append(g.edges, Collaboration{Source: source, Target: target, Release: release})
	g.adjacency[source] = append(g.adjacency[source], target)
	g.adjacency[target] = append(g.adjacency[target], source)
	return true, nil
}

// HasCollaboration reports whether a and b are connected.
func (g *Graph) HasCollaboration(a, b string) bool {
	_, ok := g.edgeIndex[newPair(a, b)]
	return ok
}

// Collaboration returns the edge joining a and b.
func (g *Graph) Collaboration(a, b string) (Collaboration, bool) {
	idx, ok := g.edgeIndex[newPair(a, b)]
	if !ok {
		return Collaboration{}, false
	}
	return g.edges[idx], true
}

// Artists returns all nodes in insertion order.
func (g *Graph) Artists() []Artist {
	result := make([]Artist, 0, len(g.order))
	for _, name := range g.order {
		result = append(result, g.artists[name])
	}
	return result
}

// Names returns all node keys in insertion order.
func (g *Graph) Names() []string {
	return append([]string(nil), g.order...)
}

// Collaborations returns all edges in insertion order.
func (g *Graph) Collaborations() []Collaboration {
	return append([]Collaboration(nil), g.edges...)
}

// Neighbors returns the artists connected to name, in the order the edges were added.
func (g *Graph) Neighbors(name string) []string {
	return append([]string(nil), g.adjacency[name]...)
}

// ArtistCount returns the number of nodes.
func (g *Graph) ArtistCount() int {
	return len(g.order)
}

// CollaborationCount returns the number of edges.
func (g *Graph) CollaborationCount() int {
	return len(g.edges)
}
