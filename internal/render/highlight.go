package render

const (
	dimNodeOpacity = 0.3
	dimEdgeOpacity = 0.2
)

// Highlight returns a copy of sc in which the node, its direct parents and
// children, and the edges joining them to it stand out; everything else is
// dimmed. An unknown nodeID returns sc unchanged.
func Highlight(sc Scene, nodeID string) Scene {
	found := false
	for _, n := range sc.Nodes {
		if n.ID == nodeID {
			found = true
			break
		}
	}
	if !found {
		return sc
	}

	near := map[string]bool{nodeID: true}
	for _, e := range sc.Edges {
		if e.From == nodeID {
			near[e.To] = true
		}
		if e.To == nodeID {
			near[e.From] = true
		}
	}

	out := sc
	out.Highlighted = nodeID
	out.Nodes = make([]SceneNode, len(sc.Nodes))
	for i, n := range sc.Nodes {
		switch {
		case n.ID == nodeID:
			n.Style.Opacity = 1
			n.Style.Border = "#ffffff"
			n.Style.BorderWidth = 4
		case near[n.ID]:
			n.Style.Opacity = 1
		default:
			n.Style.Opacity = dimNodeOpacity
		}
		out.Nodes[i] = n
	}
	out.Edges = make([]SceneEdge, len(sc.Edges))
	for i, e := range sc.Edges {
		if e.From == nodeID || e.To == nodeID {
			e.Style.Opacity = 1
			e.Style.Width++
		} else {
			e.Style.Opacity = dimEdgeOpacity
		}
		out.Edges[i] = e
	}
	return out
}
