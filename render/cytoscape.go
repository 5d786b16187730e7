package render

import (
	"strconv"

	"github.com/smallnest/collabwalk/graph"
)

// Class names attached to display elements.
const (
	ClassBasic  = string(graph.RoleBasic)
	ClassPath   = string(graph.RolePath)
	ClassAnchor = string(graph.RoleAnchor)
)

// NodeData is the data block of a cytoscape node.
type NodeData struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Node is a cytoscape node element.
type Node struct {
	Data    NodeData `json:"data"`
	Classes string   `json:"classes"`
}

// EdgeData is the data block of a cytoscape edge.
type EdgeData struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// Edge is a cytoscape edge element.
type Edge struct {
	Data    EdgeData `json:"data"`
	Classes string   `json:"classes"`
}

// Elements holds the display nodes and edges of one walk.
type Elements struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Render converts g and the walk path into cytoscape elements.
// Nodes and edges follow the graph's insertion order.
func Render(g *graph.Graph, path []string) Elements {
	idx := graph.NewPathIndex(path)

	nodes := make([]Node, 0, g.ArtistCount())
	for _, name := range g.Names() {
		nodes = append(nodes, Node{
			Data:    NodeData{ID: name, Label: name},
			Classes: string(idx.NodeRole(name)),
		})
	}

	edges := make([]Edge, 0, g.CollaborationCount())
	for i, c := range g.Collaborations() {
		class := ClassBasic
		if idx.EdgeOnPath(c) {
			class = ClassPath
		}
		edges = append(edges, Edge{
			Data: EdgeData{
				ID:     edgeID(i),
				Source: c.Source,
				Target: c.Target,
				Label:  c.Release.Name,
			},
			Classes: class,
		})
	}

	return Elements{Nodes: nodes, Edges: edges}
}

// Flatten lists nodes then edges, the form cytoscape.js takes as its elements option.
func (e Elements) Flatten() []any {
	out := make([]any, 0, len(e.Nodes)+len(e.Edges))
	for _, n := range e.Nodes {
		out = append(out, n)
	}
	for _, edge := range e.Edges {
		out = append(out, edge)
	}
	return out
}

func edgeID(i int) string {
	return "e" + strconv.Itoa(i)
}
