package render

import (
	"math"

	"codelens/internal/graph"
)

const (
	colorClass     = "#ec4899"
	colorInterface = "#10b981"
	colorExternal  = "#6b7280"
	colorAttribute = "#14b8a6"
	colorInternal  = "#8b5cf6"
	colorUtility   = "#539CFB"
	colorMethod    = "#FFFF00"
	colorRiskHigh  = "#ef4444"
	colorRiskMid   = "#f59e0b"
	colorRiskLow   = "#8b5cf6"
	colorBorder    = "#1a1a1a"

	colorExtends    = "#f59e0b"
	colorImplements = "#06b6d4"
	colorUses       = "#2fd976"
)

// UtilityTypes are external names drawn as utilities rather than plain
// external references.
var UtilityTypes = map[string]bool{
	"Tokenizer": true,
	"Set":       true,
}

type NodeStyle struct {
	Background string  `json:"background"`
	Border     string  `json:"border"`
	FontColor  string  `json:"fontColor"`
	Shape      string  `json:"shape"`
	Size       int     `json:"size"`
	Italic     bool    `json:"italic,omitempty"`
	Opacity    float64 `json:"opacity"`
	// BorderWidth is raised for the selected node.
	BorderWidth int `json:"borderWidth"`
}

type EdgeStyle struct {
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Arrow   string  `json:"arrow,omitempty"`
	Dashes  []int   `json:"dashes,omitempty"`
	Opacity float64 `json:"opacity"`
}

// RiskColor is the fill used for a bug probability.
func RiskColor(r float64) string {
	switch graph.Bucket(r) {
	case graph.RiskHigh:
		return colorRiskHigh
	case graph.RiskMedium:
		return colorRiskMid
	default:
		return colorRiskLow
	}
}

// Style picks colour and shape for n as drawn in view.
func Style(view View, n graph.Node) NodeStyle {
	s := NodeStyle{Border: colorBorder, FontColor: "#ffffff", Size: 25, Opacity: 1, BorderWidth: 2}

	switch {
	case n.Kind == graph.NodeExternal && UtilityTypes[n.Label]:
		s.Background, s.Shape = colorUtility, "diamond"
	case n.Role == graph.RolePlaceholder || n.Kind == graph.NodeExternal:
		s.Background, s.Shape, s.Italic = colorExternal, "box", true
		if n.Kind == graph.NodeInterface {
			s.Shape = "diamond"
		}
		if view == ViewDependencies && n.Kind == graph.NodeExternal {
			s.Shape, s.Italic = "ellipse", false
		}
	case n.Kind == graph.NodeClass:
		s.Background, s.Shape = colorClass, "box"
		if view != ViewInheritance {
			s.Shape, s.Size = "circle", 35
		}
	case n.Kind == graph.NodeInterface:
		s.Background, s.Shape = colorInterface, "diamond"
	case n.Kind == graph.NodeAttribute:
		s.Background, s.Shape, s.Size = colorAttribute, "hexagon", 20
	case n.Kind == graph.NodeMethod && n.Role == graph.RoleInternal:
		s.Background, s.Shape, s.Size = colorInternal, "dot", 20
	case n.Kind == graph.NodeMethod && view == ViewDependencies:
		s.Background, s.Shape, s.FontColor = colorMethod, "box", "#000000"
	case n.Kind == graph.NodeMethod:
		s.Background, s.Shape = RiskColor(n.Risk), "dot"
	default:
		s.Background, s.Shape = colorExternal, "box"
	}
	return s
}

// StyleEdge picks width, colour and dashes for e; target is the node e points at.
func StyleEdge(e graph.Edge, target graph.Node) EdgeStyle {
	s := EdgeStyle{Width: 1, Opacity: 1}
	switch e.Kind {
	case graph.EdgeExtends:
		s.Color, s.Width, s.Arrow = colorExtends, 3, "to"
	case graph.EdgeImplements:
		s.Color, s.Width, s.Arrow, s.Dashes = colorImplements, 2, "triangle", []int{8, 4}
	case graph.EdgeContains:
		s.Color = colorExternal
	default:
		s.Color, s.Arrow = colorUses, "to"
		s.Width = math.Max(1, e.Weight)
		if target.Kind == graph.NodeAttribute {
			s.Color, s.Dashes = colorAttribute, []int{2, 2}
		}
	}
	return s
}
