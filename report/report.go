package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/graph"
)

// Visit counts how often an artist appears on the path.
type Visit struct {
	Artist string `json:"artist"`
	Count  int    `json:"count"`
}

// Report summarizes one finished walk.
type Report struct {
	Title           string                `json:"title"`
	Seed            string                `json:"seed"`
	ReleaseType     catalog.ReleaseType   `json:"release_type"`
	Path            []string              `json:"path"`
	Steps           int                   `json:"steps"`
	Artists         int                   `json:"artists"`
	Collaborations  int                   `json:"collaborations"`
	DistinctVisited int                   `json:"distinct_visited"`
	Visits          []Visit               `json:"visits"`
	Traversed       []graph.Collaboration `json:"traversed"`
}

// Build computes the report for path over g.
func Build(title string, g *graph.Graph, path []string, releaseType catalog.ReleaseType) *Report {
	r := &Report{
		Title:          title,
		ReleaseType:    releaseType,
		Path:           append([]string(nil), path...),
		Steps:          len(path),
		Artists:        g.ArtistCount(),
		Collaborations: g.CollaborationCount(),
	}
	if len(path) > 0 {
		r.Seed = path[0]
	}

	idx := graph.NewPathIndex(path)
	r.DistinctVisited = idx.Distinct()

	firstSeen := make(map[string]int, idx.Distinct())
	for i, name := range path {
		if _, ok := firstSeen[name]; !ok {
			firstSeen[name] = i
			r.Visits = append(r.Visits, Visit{Artist: name, Count: idx.Visits(name)})
		}
	}
	sort.SliceStable(r.Visits, func(i, j int) bool {
		return r.Visits[i].Count > r.Visits[j].Count
	})

	// Moves between distinct artists, each edge listed once in walk order
	used := make(map[graph.Collaboration]bool)
	for i := 1; i < len(path); i++ {
		if path[i] == path[i-1] {
			continue
		}
		c, ok := g.Collaboration(path[i-1], path[i])
		if !ok || used[c] {
			continue
		}
		used[c] = true
		r.Traversed = append(r.Traversed, c)
	}

	return r
}

// Markdown renders the report as GitHub flavored markdown.
func (r *Report) Markdown() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", escape(r.Title)))
	sb.WriteString(fmt.Sprintf("Seed: **%s**, release type: %s\n\n", escape(r.Seed), r.ReleaseType))

	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Steps | %d |\n", r.Steps))
	sb.WriteString(fmt.Sprintf("| Artists discovered | %d |\n", r.Artists))
	sb.WriteString(fmt.Sprintf("| Collaborations | %d |\n", r.Collaborations))
	sb.WriteString(fmt.Sprintf("| Distinct artists visited | %d |\n", r.DistinctVisited))

	sb.WriteString("\n## Path\n\n")
	for i, name := range r.Path {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, escape(name)))
	}

	sb.WriteString("\n## Most visited\n\n")
	sb.WriteString("| Artist | Visits |\n")
	sb.WriteString("|---|---|\n")
	for _, v := range r.Visits {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", escape(v.Artist), v.Count))
	}

	sb.WriteString("\n## Collaborations on the path\n\n")
	if len(r.Traversed) == 0 {
		sb.WriteString("_No collaborations were traversed._\n")
		return sb.String()
	}
	sb.WriteString("| From | To | Release |\n")
	sb.WriteString("|---|---|---|\n")
	for _, c := range r.Traversed {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", escape(c.Source), escape(c.Target), escape(c.Release.Name)))
	}
	return sb.String()
}

// HTML renders the markdown report to sanitized HTML.
func (r *Report) HTML() string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(r.Markdown()))

	opts := html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank}
	htmlBytes := markdown.Render(doc, html.NewRenderer(opts))

	// Artist and release names come straight from the catalog
	return string(bluemonday.UGCPolicy().SanitizeBytes(htmlBytes))
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
	"\n", " ",
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
