package render

import (
	"fmt"
	"sort"

	"codelens/internal/graph"
)

type SceneNode struct {
	graph.Node
	Bucket graph.RiskBucket `json:"bucket"`
	Style  NodeStyle        `json:"style"`
}

type SceneEdge struct {
	graph.Edge
	Style EdgeStyle `json:"style"`
}

// Scene is a styled graph ready for a client to draw. When the engine
// cannot draw, Fallback is set instead of Nodes and Edges.
type Scene struct {
	View        View        `json:"view"`
	Title       string      `json:"title"`
	Nodes       []SceneNode `json:"nodes"`
	Edges       []SceneEdge `json:"edges"`
	Layout      Layout      `json:"layout"`
	Levels      int         `json:"levels"`
	Summary     string      `json:"summary"`
	NoData      bool        `json:"noData"`
	Highlighted string      `json:"highlighted,omitempty"`
	Fallback    *Fallback   `json:"fallback,omitempty"`
}

// Fallback describes in text what the scene would have shown.
type Fallback struct {
	Message string   `json:"message"`
	Reason  string   `json:"reason,omitempty"`
	Lines   []string `json:"lines"`
}

func summary(nodes, edges, levels int) string {
	return fmt.Sprintf("processed %d nodes and %d edges with %d hierarchy levels", nodes, edges, levels)
}

func buildScene(view View, layout Layout, g *graph.Graph) Scene {
	sc := Scene{
		View:   view,
		Title:  view.Title(),
		Nodes:  []SceneNode{},
		Edges:  []SceneEdge{},
		Layout: layout,
	}
	if g.Empty() {
		sc.NoData = true
		sc.Summary = summary(0, 0, 0)
		return sc
	}

	levels := make(map[int]struct{})
	for _, n := range g.Nodes {
		sc.Nodes = append(sc.Nodes, SceneNode{Node: n, Bucket: graph.Bucket(n.Risk), Style: Style(view, n)})
		levels[n.Level] = struct{}{}
	}
	for _, e := range g.Edges {
		target, _ := g.Node(e.To)
		sc.Edges = append(sc.Edges, SceneEdge{Edge: e, Style: StyleEdge(e, target)})
	}
	sc.Levels = len(levels)
	sc.Summary = summary(len(sc.Nodes), len(sc.Edges), sc.Levels)
	return sc
}

// fallbackFor lists the graph as text: one line per edge, then any node
// without edges, in level order.
func fallbackFor(view View, g *graph.Graph, reason error) *Fallback {
	fb := &Fallback{
		Message: fmt.Sprintf("%s could not be drawn. Showing a text summary instead.", view.Title()),
		Lines:   []string{},
	}
	if reason != nil {
		fb.Reason = reason.Error()
	}
	if g.Empty() {
		return fb
	}

	label := func(id string) string {
		if n, ok := g.Node(id); ok && n.Label != "" {
			return n.Label
		}
		return id
	}
	touched := make(map[string]bool, len(g.Nodes))
	for _, e := range g.Edges {
		touched[e.From], touched[e.To] = true, true
		fb.Lines = append(fb.Lines, fmt.Sprintf("%s %s %s", label(e.From), e.Kind, label(e.To)))
	}

	lonely := make([]graph.Node, 0)
	for _, n := range g.Nodes {
		if !touched[n.ID] {
			lonely = append(lonely, n)
		}
	}
	sort.SliceStable(lonely, func(i, j int) bool { return lonely[i].Level < lonely[j].Level })
	for _, n := range lonely {
		fb.Lines = append(fb.Lines, fmt.Sprintf("%s (%s)", n.Label, n.Kind))
	}
	return fb
}
