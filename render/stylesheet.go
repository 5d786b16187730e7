package render

import (
	"github.com/smallnest/collabwalk/graph"
)

// Style is one cytoscape stylesheet rule.
type Style struct {
	Selector string            `json:"selector"`
	Style    map[string]string `json:"style"`
}

// Layout is the cytoscape layout used by the dashboard.
const Layout = "cose"

// Stylesheet returns the cytoscape rules for the element classes.
func Stylesheet() []Style {
	return []Style{
		{
			Selector: "node",
			Style: map[string]string{
				"content":          "data(label)",
				"color":            "#000000",
				"background-color": graph.ColorBase,
			},
		},
		{
			Selector: "edge",
			Style: map[string]string{
				"curve-style": "bezier",
				"width":       "2",
			},
		},
		classStyle(ClassPath, graph.ColorPath),
		classStyle(ClassBasic, graph.ColorBasic),
		classStyle(ClassAnchor, graph.ColorAnchor),
	}
}

func classStyle(class, color string) Style {
	return Style{
		Selector: "." + class,
		Style: map[string]string{
			"background-color": color,
			"line-color":       color,
		},
	}
}
