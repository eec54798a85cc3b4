package graph

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"codelens/internal/report"
)

// BuildClassDependencies shapes a class's method dependency map into a graph:
// class -> method (contains) -> dependency (uses/calls). A class without a
// dependency map yields an empty graph.
func BuildClassDependencies(c report.ClassInfo) *Graph {
	g := New()
	if len(c.Dependencies) == 0 {
		return g
	}

	classID := classNodeID(c)
	g.AddNode(Node{ID: classID, Label: c.Name, Kind: NodeClass, Risk: c.Risk()})

	risk := make(map[string]report.Member, len(c.Methods))
	for _, m := range c.Methods {
		risk[m.Name] = m
	}

	methods := make([]string, 0, len(c.Dependencies))
	for m := range c.Dependencies {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	for _, method := range methods {
		mn := Node{ID: method, Label: method, Kind: NodeMethod}
		if m, ok := risk[method]; ok {
			mn.Risk = m.BugProbability
			mn.Visibility = string(m.Visibility)
		}
		g.AddNode(mn)
		g.AddEdge(Edge{ID: classID + "-" + method, From: classID, To: method, Kind: EdgeContains})

		for i, dep := range c.Dependencies[method] {
			g.AddNode(dependencyNode(dep))
			kind := EdgeUses
			if dep.Ref.Kind == report.RefInternalMethod {
				kind = EdgeCalls
			}
			w := Weight(dep.Amount)
			g.AddEdge(Edge{
				ID:     fmt.Sprintf("%s-%s-%d", method, dep.With, i),
				From:   method,
				To:     dep.With,
				Kind:   kind,
				Weight: w,
				Label:  strconv.FormatFloat(dep.Amount, 'f', -1, 64),
			})
		}
	}

	leveled, _ := Leveled(g)
	return leveled
}

func dependencyNode(dep report.Dependency) Node {
	switch dep.Ref.Kind {
	case report.RefAttribute:
		return Node{ID: dep.With, Label: dep.Ref.Name, Kind: NodeAttribute}
	case report.RefInternalMethod:
		return Node{ID: dep.With, Label: dep.With, Kind: NodeMethod, Role: RoleInternal}
	default:
		return Node{ID: dep.With, Label: dep.With, Kind: NodeExternal}
	}
}

// Weight maps a dependency amount to a line weight with a floor of 1.
func Weight(amount float64) float64 {
	if math.IsNaN(amount) || amount < 1 {
		return 1
	}
	return amount
}

func classNodeID(c report.ClassInfo) string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}
