// Package graph holds the undirected artist collaboration graph built by a walk.
//
// Nodes are artists keyed by display name. Edges are collaborations between
// two distinct artists, labeled with the release that first credited both of
// them. The graph is append only: nodes and edges are never removed, a name
// is never inserted twice, and a pair of artists is never connected twice.
// Both nodes and edges keep their insertion order, which keeps every export
// stable for a given walk.
//
// # Building a graph
//
//	g := graph.NewGraph()
//	g.AddArtist(graph.Artist{Name: "Elton John", ID: "3PhoLpVuITZKcymswpck5b"})
//	g.AddArtist(graph.Artist{Name: "Dua Lipa", ID: "6M2wZ9GZgrQXHCFfjv46we"})
//
//	added, err := g.AddCollaboration("Elton John", "Dua Lipa", graph.Release{Name: "Cold Heart"})
//	if err != nil {
//		return err
//	}
//
// AddCollaboration reports false without an error when the pair is already
// connected, so callers can feed every co-credit of a release without checking.
//
// # Paths
//
// A walk path is a sequence of visited artist names. PathIndex classifies
// nodes and edges against a path:
//
//   - RoleAnchor: the first and the last visited artist
//   - RolePath: every other visited artist
//   - RoleBasic: discovered but never visited
//
// An edge is on the path when both of its endpoints were visited.
//
// # Exporting
//
// Exporter renders a graph and an optional path as Mermaid, Graphviz DOT or
// an ASCII spanning tree:
//
//	exporter := graph.NewExporter(g, path)
//	fmt.Println(exporter.DrawMermaid())
//	fmt.Println(exporter.DrawDOT())
//	fmt.Println(exporter.DrawASCII())
//
// # Snapshots
//
// Snapshot and FromSnapshot convert a graph to and from a plain value that
// can be stored as JSON alongside a walk record.
package graph
