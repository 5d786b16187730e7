package graph

// PathRole describes how a node relates to a walk path.
type PathRole string

const (
	// RoleBasic marks a node that was discovered but never visited.
	RoleBasic PathRole = "basic"

	// RolePath marks a visited node that is neither the first nor the last step.
	RolePath PathRole = "path"

	// RoleAnchor marks the first and the last visited node.
	RoleAnchor PathRole = "anchor"
)

// PathIndex answers membership questions about a walk path.
type PathIndex struct {
	visited map[string]int
	first   string
	last    string
}

// NewPathIndex indexes a walk path. Visit counts are kept per name.
func NewPathIndex(path []string) PathIndex {
	idx := PathIndex{visited: make(map[string]int, len(path))}
	for _, name := range path {
		idx.visited[name]++
	}
	if len(path) > 0 {
		idx.first = path[0]
		idx.last = path[len(path)-1]
	}
	return idx
}

// Visited reports whether name appears anywhere in the path.
func (p PathIndex) Visited(name string) bool {
	return p.visited[name] > 0
}

// Visits returns how many times name appears in the path.
func (p PathIndex) Visits(name string) int {
	return p.visited[name]
}

// Distinct returns the number of distinct visited names.
func (p PathIndex) Distinct() int {
	return len(p.visited)
}

// NodeRole classifies name against the path.
// Only the first and last path elements are anchors.
func (p PathIndex) NodeRole(name string) PathRole {
	if !p.Visited(name) {
		return RoleBasic
	}
	if name == p.first || name == p.last {
		return RoleAnchor
	}
	return RolePath
}

// EdgeOnPath reports whether both endpoints of c were visited.
func (p PathIndex) EdgeOnPath(c Collaboration) bool {
	return p.Visited(c.Source) && p.Visited(c.Target)
}
