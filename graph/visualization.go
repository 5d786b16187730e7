package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Colors shared by every export format.
const (
	ColorBase   = "#d8d8d8"
	ColorPath   = "#ffa600"
	ColorBasic  = "#2f4b7c"
	ColorAnchor = "#f95d6a"
)

// Exporter provides methods to export a collaboration graph in different formats
type Exporter struct {
	graph *Graph
	path  PathIndex
	ids   map[string]string
}

// NewExporter creates a new exporter for the given graph.
// The path is optional and only affects highlighting.
func NewExporter(g *Graph, path []string) *Exporter {
	ids := make(map[string]string, g.ArtistCount())
	for i, name := range g.Names() {
		ids[name] = fmt.Sprintf("n%d", i)
	}
	return &Exporter{
		graph: g,
		path:  NewPathIndex(path),
		ids:   ids,
	}
}

// MermaidOptions defines configuration for Mermaid diagram generation
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR")
	Direction string

	// EdgeLabels prints the release name on every edge
	EdgeLabels bool
}

// DrawMermaid generates a Mermaid diagram representation of the graph
func (ge *Exporter) DrawMermaid() string {
	return ge.DrawMermaidWithOptions(MermaidOptions{
		Direction:  "LR",
		EdgeLabels: true,
	})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options
func (ge *Exporter) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "LR"
	}
	sb.WriteString(fmt.Sprintf("flowchart %s\n", direction))

	for _, name := range ge.graph.Names() {
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", ge.ids[name], mermaidEscape(name)))
	}

	for _, c := range ge.graph.Collaborations() {
		if opts.EdgeLabels && c.Release.Name != "" {
			sb.WriteString(fmt.Sprintf("    %s ---|\"%s\"| %s\n", ge.ids[c.Source], mermaidEscape(c.Release.Name), ge.ids[c.Target]))
		} else {
			sb.WriteString(fmt.Sprintf("    %s --- %s\n", ge.ids[c.Source], ge.ids[c.Target]))
		}
	}

	sb.WriteString(fmt.Sprintf("    classDef %s fill:%s\n", RoleAnchor, ColorAnchor))
	sb.WriteString(fmt.Sprintf("    classDef %s fill:%s\n", RolePath, ColorPath))
	sb.WriteString(fmt.Sprintf("    classDef %s fill:%s,color:#ffffff\n", RoleBasic, ColorBasic))

	for _, role := range []PathRole{RoleAnchor, RolePath, RoleBasic} {
		var members []string
		for _, name := range ge.graph.Names() {
			if ge.path.NodeRole(name) == role {
				members = append(members, ge.ids[name])
			}
		}
		if len(members) > 0 {
			sb.WriteString(fmt.Sprintf("    class %s %s\n", strings.Join(members, ","), role))
		}
	}

	return sb.String()
}

// DrawDOT generates a DOT (Graphviz) representation of the graph
func (ge *Exporter) DrawDOT() string {
	var sb strings.Builder

	sb.WriteString("graph G {\n")
	sb.WriteString("    overlap=false;\n")
	sb.WriteString(fmt.Sprintf("    node [shape=ellipse, style=filled, fillcolor=\"%s\"];\n", ColorBase))

	for _, name := range ge.graph.Names() {
		sb.WriteString(fmt.Sprintf("    %s [label=%s, fillcolor=\"%s\"];\n", ge.ids[name], dotQuote(name), roleColor(ge.path.NodeRole(name))))
	}

	for _, c := range ge.graph.Collaborations() {
		color := ColorBasic
		if ge.path.EdgeOnPath(c) {
			color = ColorPath
		}
		sb.WriteString(fmt.Sprintf("    %s -- %s [label=%s, color=\"%s\"];\n", ge.ids[c.Source], ge.ids[c.Target], dotQuote(c.Release.Name), color))
	}

	sb.WriteString("}\n")
	return sb.String()
}

// DrawASCII generates an ASCII spanning tree rooted at the first artist.
// Visited artists are marked with an asterisk.
func (ge *Exporter) DrawASCII() string {
	names := ge.graph.Names()
	if len(names) == 0 {
		return "Empty graph\n"
	}

	var sb strings.Builder
	visited := make(map[string]bool)

	sb.WriteString("Collaboration Tree:\n")
	ge.drawASCIINode(names[0], "", true, visited, &sb)

	return sb.String()
}

// drawASCIINode recursively draws ASCII representation of nodes
func (ge *Exporter) drawASCIINode(name string, prefix string, isLast bool, visited map[string]bool, sb *strings.Builder) {
	visited[name] = true

	connector := "├──"
	nextPrefix := prefix + "│   "
	if isLast {
		connector = "└──"
		nextPrefix = prefix + "    "
	}

	marker := ""
	if ge.path.Visited(name) {
		marker = " *"
	}
	sb.WriteString(fmt.Sprintf("%s%s %s%s\n", prefix, connector, name, marker))

	// Unvisited neighbors only, so the undirected graph prints as a tree
	children := make([]string, 0)
	for _, neighbor := range ge.graph.Neighbors(name) {
		if !visited[neighbor] {
			children = append(children, neighbor)
		}
	}

	// Sort for consistent output
	sort.Strings(children)

	// Claim all children first so a sibling subtree cannot adopt them
	for _, child := range children {
		visited[child] = true
	}
	for i, child := range children {
		ge.drawASCIINode(child, nextPrefix, i == len(children)-1, visited, sb)
	}
}

func roleColor(role PathRole) string {
	switch role {
	case RoleAnchor:
		return ColorAnchor
	case RolePath:
		return ColorPath
	default:
		return ColorBasic
	}
}

func mermaidEscape(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}

func dotQuote(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return "\"" + s + "\""
}
