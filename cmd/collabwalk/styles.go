package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smallnest/collabwalk/graph"
)

var (
	colorAnchor = lipgloss.Color(graph.ColorAnchor)
	colorPath   = lipgloss.Color(graph.ColorPath)
	colorBasic  = lipgloss.Color(graph.ColorBasic)
	colorMuted  = lipgloss.Color("#8a8a8a")
	colorError  = lipgloss.Color("#e74c3c")
)

var styles = struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Anchor  lipgloss.Style
	Path    lipgloss.Style
	Basic   lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
	Header  lipgloss.Style
	Success lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorAnchor),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Anchor:  lipgloss.NewStyle().Bold(true).Foreground(colorAnchor),
	Path:    lipgloss.NewStyle().Foreground(colorPath),
	Basic:   lipgloss.NewStyle().Foreground(colorBasic),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(colorError),
	Header:  lipgloss.NewStyle().Bold(true).Underline(true),
	Success: lipgloss.NewStyle().Foreground(colorPath),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBasic).
		Padding(0, 1),
}

// styledPath joins path with arrows, painting the first and last artist as anchors.
func styledPath(path []string) string {
	parts := make([]string, len(path))
	for i, name := range path {
		if i == 0 || i == len(path)-1 {
			parts[i] = styles.Anchor.Render(name)
		} else {
			parts[i] = styles.Path.Render(name)
		}
	}
	return strings.Join(parts, styles.Muted.Render(" → "))
}
