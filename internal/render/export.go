package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatDOT, FormatMermaid:
		return f, nil
	default:
		return "", errors.Newf("unknown export format %q", s)
	}
}

// ContentType is the response media type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	case FormatMermaid:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Export renders sc in format f.
func Export(sc Scene, f Format) ([]byte, error) {
	switch f {
	case FormatDOT:
		return []byte(ExportDOT(sc)), nil
	case FormatMermaid:
		return []byte(ExportMermaid(sc)), nil
	case FormatJSON, "":
		return ExportJSON(sc)
	default:
		return nil, errors.Newf("unknown export format %q", f)
	}
}

func ExportJSON(sc Scene) ([]byte, error) {
	b, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode scene")
	}
	return b, nil
}

var dotShapes = map[string]string{
	"box":     "box",
	"diamond": "diamond",
	"hexagon": "hexagon",
	"dot":     "circle",
	"circle":  "circle",
	"ellipse": "ellipse",
}

// ExportDOT writes a Graphviz digraph. Hierarchical scenes rank top-down
// and pin nodes of equal level to the same rank.
func ExportDOT(sc Scene) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", dotQuote(string(sc.View)))
	if sc.Layout.Kind == LayoutHierarchical {
		b.WriteString("  rankdir=TB;\n")
	}
	b.WriteString("  node [style=filled, fontname=\"Helvetica\"];\n")

	for _, n := range sc.Nodes {
		shape := dotShapes[n.Style.Shape]
		if shape == "" {
			shape = "box"
		}
		attrs := []string{
			"label=" + dotQuote(n.Label),
			"shape=" + shape,
			"fillcolor=" + dotQuote(n.Style.Background),
			"fontcolor=" + dotQuote(n.Style.FontColor),
		}
		if n.Style.Italic {
			attrs[len(attrs)-1] = "fontcolor=" + dotQuote(n.Style.FontColor) + ", fontname=\"Helvetica-Oblique\""
		}
		fmt.Fprintf(&b, "  %s [%s];\n", dotQuote(n.ID), strings.Join(attrs, ", "))
	}

	if sc.Layout.Kind == LayoutHierarchical {
		byLevel := make(map[int][]string)
		maxLevel := 0
		for _, n := range sc.Nodes {
			byLevel[n.Level] = append(byLevel[n.Level], dotQuote(n.ID))
			if n.Level > maxLevel {
				maxLevel = n.Level
			}
		}
		for lvl := 0; lvl <= maxLevel; lvl++ {
			if ids := byLevel[lvl]; len(ids) > 1 {
				fmt.Fprintf(&b, "  { rank=same; %s; }\n", strings.Join(ids, "; "))
			}
		}
	}

	for _, e := range sc.Edges {
		attrs := []string{
			"color=" + dotQuote(e.Style.Color),
			"penwidth=" + strconv.FormatFloat(e.Style.Width, 'f', -1, 64),
		}
		if len(e.Style.Dashes) > 0 {
			attrs = append(attrs, "style=dashed")
		}
		switch e.Style.Arrow {
		case "":
			attrs = append(attrs, "arrowhead=none")
		case "triangle":
			attrs = append(attrs, "arrowhead=empty")
		}
		if e.Label != "" {
			attrs = append(attrs, "label="+dotQuote(e.Label))
		}
		fmt.Fprintf(&b, "  %s -> %s [%s];\n", dotQuote(e.From), dotQuote(e.To), strings.Join(attrs, ", "))
	}
	b.WriteString("}\n")
	return b.String()
}

func dotQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}

var mermaidIDPattern = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// ExportMermaid writes a flowchart. Node ids are sanitized and suffixed with
// their position so that distinct ids never collide.
func ExportMermaid(sc Scene) string {
	var b strings.Builder
	dir := "LR"
	if sc.Layout.Kind == LayoutHierarchical {
		dir = "TD"
	}
	fmt.Fprintf(&b, "flowchart %s\n", dir)

	ids := make(map[string]string, len(sc.Nodes))
	for i, n := range sc.Nodes {
		id := fmt.Sprintf("%s_%d", mermaidIDPattern.ReplaceAllString(n.ID, "_"), i)
		if id[0] >= '0' && id[0] <= '9' {
			id = "n" + id
		}
		ids[n.ID] = id
		fmt.Fprintf(&b, "    %s\n", mermaidNode(id, n.Label, n.Style.Shape))
	}
	for _, e := range sc.Edges {
		from, okFrom := ids[e.From]
		to, okTo := ids[e.To]
		if !okFrom || !okTo {
			continue
		}
		arrow := "-->"
		switch {
		case e.Style.Arrow == "":
			arrow = "---"
		case len(e.Style.Dashes) > 0:
			arrow = "-.->"
		case e.Style.Width >= 3:
			arrow = "==>"
		}
		if e.Label != "" {
			fmt.Fprintf(&b, "    %s %s|%s| %s\n", from, arrow, escapeMermaid(e.Label), to)
		} else {
			fmt.Fprintf(&b, "    %s %s %s\n", from, arrow, to)
		}
	}
	for _, n := range sc.Nodes {
		fmt.Fprintf(&b, "    style %s fill:%s,color:%s\n", ids[n.ID], n.Style.Background, n.Style.FontColor)
	}
	return b.String()
}

func mermaidNode(id, label, shape string) string {
	label = escapeMermaid(label)
	switch shape {
	case "diamond":
		return fmt.Sprintf(`%s{"%s"}`, id, label)
	case "hexagon":
		return fmt.Sprintf(`%s{{"%s"}}`, id, label)
	case "dot", "circle":
		return fmt.Sprintf(`%s(("%s"))`, id, label)
	case "ellipse":
		return fmt.Sprintf(`%s(["%s"])`, id, label)
	default:
		return fmt.Sprintf(`%s["%s"]`, id, label)
	}
}

func escapeMermaid(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	s = strings.ReplaceAll(s, "<", "#lt;")
	s = strings.ReplaceAll(s, ">", "#gt;")
	s = strings.ReplaceAll(s, "|", "#124;")
	return s
}
