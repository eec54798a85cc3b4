package graph

import (
	"fmt"
	"strings"

	"codelens/internal/report"
)

// BuildClassUsage shapes one class's members and method calls into a graph:
// the class contains its methods and attributes, methods call each other or
// external methods, and the class extends/implements its declared parents.
func BuildClassUsage(c report.ClassInfo) *Graph {
	g := New()
	if len(c.Methods) == 0 && len(c.Attributes) == 0 && len(c.Calls) == 0 {
		return g
	}

	classID := c.ID
	if classID == "" {
		classID = classNodeID(c)
	}
	g.AddNode(Node{ID: classID, Label: c.Name, Kind: NodeClass, Risk: c.Risk()})

	for _, m := range c.Methods {
		if g.AddNode(Node{
			ID:         m.ID(),
			Label:      m.Name,
			Kind:       NodeMethod,
			Risk:       m.BugProbability,
			Visibility: string(m.Visibility),
		}) {
			g.AddEdge(Edge{ID: classID + "-" + m.ID(), From: classID, To: m.ID(), Kind: EdgeContains})
		}
	}
	for _, a := range c.Attributes {
		if g.AddNode(Node{
			ID:         a.ID(),
			Label:      a.Name,
			Kind:       NodeAttribute,
			Visibility: string(a.Visibility),
		}) {
			g.AddEdge(Edge{ID: classID + "-" + a.ID(), From: classID, To: a.ID(), Kind: EdgeContains})
		}
	}

	for i, call := range c.Calls {
		if !g.HasNode(call.From) {
			g.AddNode(Node{ID: call.From, Label: call.From, Kind: NodeExternal, Role: RolePlaceholder})
		}
		if !g.HasNode(call.To) {
			label := call.Target
			if label == "" {
				label = call.To
			}
			g.AddNode(Node{ID: call.To, Label: label, Kind: NodeExternal})
		}
		g.AddEdge(Edge{
			ID:    fmt.Sprintf("%s-%s-%d", call.From, call.To, i),
			From:  call.From,
			To:    call.To,
			Kind:  EdgeCalls,
			Label: call.Target,
		})
	}

	if parent := strings.TrimSpace(c.Extends); parent != "" && !strings.EqualFold(parent, "none") {
		if !g.HasNode(parent) {
			g.AddNode(Node{ID: parent, Label: parent, Kind: NodeClass, Role: RolePlaceholder})
		}
		g.AddEdge(Edge{ID: classID + "-extends-" + parent, From: classID, To: parent, Kind: EdgeExtends, Label: "extends"})
	}
	for _, iface := range c.Implements {
		iface = strings.TrimSpace(iface)
		if iface == "" {
			continue
		}
		if !g.HasNode(iface) {
			g.AddNode(Node{ID: iface, Label: iface, Kind: NodeInterface, Role: RolePlaceholder})
		}
		g.AddEdge(Edge{ID: classID + "-implements-" + iface, From: classID, To: iface, Kind: EdgeImplements, Label: "implements"})
	}

	leveled, _ := Leveled(g)
	return leveled
}
