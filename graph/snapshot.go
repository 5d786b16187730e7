package graph

import (
	"fmt"
)

// Snapshot is the serializable form of a Graph.
type Snapshot struct {
	Artists        []Artist        `json:"artists"`
	Collaborations []Collaboration `json:"collaborations"`
}

// Snapshot captures the current nodes and edges.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{
		Artists:        g.Artists(),
		Collaborations: g.Collaborations(),
	}
}

// FromSnapshot rebuilds a graph, enforcing one node per name and one edge per pair.
func FromSnapshot(s Snapshot) (*Graph, error) {
	g := NewGraph()
	for _, a := range s.Artists {
		if !g.AddArtist(a) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateArtist, a.Name)
		}
	}
	for _, c := range s.Collaborations {
		if _, err := g.AddCollaboration(c.Source, c.Target, c.Release); err != nil {
			return nil, fmt.Errorf("invalid collaboration %s - %s: %w", c.Source, c.Target, err)
		}
	}
	return g, nil
}
