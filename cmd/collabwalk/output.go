package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/smallnest/collabwalk/graph"
	"github.com/smallnest/collabwalk/report"
	"github.com/smallnest/collabwalk/store"
)

// Output formats accepted by --format.
const (
	formatText     = "text"
	formatASCII    = "ascii"
	formatMermaid  = "mermaid"
	formatDOT      = "dot"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

var formats = []string{formatText, formatASCII, formatMermaid, formatDOT, formatJSON, formatMarkdown}

func validFormat(format string) error {
	for _, f := range formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(formats, ", "))
}

// writeWalk prints record, whose graph is g, in format.
func writeWalk(w io.Writer, format string, record *store.WalkRecord, g *graph.Graph) error {
	exporter := graph.NewExporter(g, record.Path)

	switch format {
	case formatText:
		_, err := io.WriteString(w, textSummary(record, g))
		return err
	case formatASCII:
		_, err := io.WriteString(w, exporter.DrawASCII())
		return err
	case formatMermaid:
		_, err := io.WriteString(w, exporter.DrawMermaid())
		return err
	case formatDOT:
		_, err := io.WriteString(w, exporter.DrawDOT())
		return err
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	case formatMarkdown:
		rep := report.Build("Collaboration walk from "+record.Seed, g, record.Path, record.ReleaseType)
		_, err := io.WriteString(w, rep.Markdown())
		return err
	default:
		return validFormat(format)
	}
}

func textSummary(record *store.WalkRecord, g *graph.Graph) string {
	rep := report.Build("", g, record.Path, record.ReleaseType)

	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Collaboration walk from "+record.Seed) + "\n")
	sb.WriteString(styles.Muted.Render(fmt.Sprintf("%d steps over %ss, %d artists, %d collaborations",
		rep.Steps, record.ReleaseType, rep.Artists, rep.Collaborations)) + "\n\n")
	sb.WriteString(styledPath(record.Path) + "\n")

	if len(rep.Traversed) > 0 {
		sb.WriteString("\n" + styles.Header.Render("Traversed collaborations") + "\n")
		for _, c := range rep.Traversed {
			sb.WriteString(fmt.Sprintf("  %s %s %s %s\n",
				styles.Path.Render(c.Source), styles.Muted.Render("×"), styles.Path.Render(c.Target),
				styles.Muted.Render("("+c.Release.Name+")")))
		}
	}

	sb.WriteString("\n" + styles.Header.Render("Most visited") + "\n")
	for i, v := range rep.Visits {
		if i == 5 {
			break
		}
		sb.WriteString(fmt.Sprintf("  %-30s %d\n", v.Artist, v.Count))
	}
	if record.ID != "" {
		sb.WriteString("\n" + styles.Muted.Render("walk "+record.ID) + "\n")
	}
	return styles.Box.Render(strings.TrimRight(sb.String(), "\n")) + "\n"
}

// writeHistory prints one line per record.
func writeHistory(w io.Writer, records []*store.WalkRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, styles.Muted.Render("no saved walks"))
		return err
	}
	header := fmt.Sprintf("%-36s  %-20s  %-6s  %5s  %7s  %s", "ID", "SEED", "TYPE", "STEPS", "ARTISTS", "SAVED")
	if _, err := fmt.Fprintln(w, styles.Header.Render(header)); err != nil {
		return err
	}
	for _, r := range records {
		if _, err := fmt.Fprintf(w, "%-36s  %-20s  %-6s  %5d  %7d  %s\n",
			r.ID, r.Seed, r.ReleaseType, len(r.Path), len(r.Snapshot.Artists),
			r.Timestamp.Local().Format("2006-01-02 15:04:05")); err != nil {
			return err
		}
	}
	return nil
}
