package graph

import (
	"fmt"
	"sort"

	"codelens/internal/report"
)

// BuildInheritance shapes the report's inheritance map into a leveled graph.
// Declared entities come first in name order; undeclared relation targets are
// added as placeholders so that no edge dangles. Malformed relations are skipped.
func BuildInheritance(r *report.Report) *Graph {
	g := New()
	if r == nil || len(r.Inheritance) == 0 {
		return g
	}

	names := make([]string, 0, len(r.Inheritance))
	for name := range r.Inheritance {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := r.Inheritance[name]
		kind := NodeClass
		if entry.Kind == report.EntityInterface {
			kind = NodeInterface
		}
		n := Node{ID: name, Label: name, Kind: kind}
		if c, ok := r.Class(name); ok {
			n.Risk = c.Risk()
		}
		g.AddNode(n)
	}

	for _, name := range names {
		for i, rel := range r.Inheritance[name].Relations {
			if !rel.Valid() {
				continue
			}
			if !g.HasNode(rel.Target) {
				g.AddNode(placeholderFor(rel))
			}
			g.AddEdge(Edge{
				ID:    fmt.Sprintf("%s-%s-%d", name, rel.Target, i),
				From:  name,
				To:    rel.Target,
				Kind:  edgeKindFor(rel.Kind),
				Label: relationLabel(rel),
			})
		}
	}

	leveled, _ := Leveled(g)
	return leveled
}

func placeholderFor(rel report.Relation) Node {
	kind := NodeExternal
	if rel.Kind == report.RelationImplements {
		kind = NodeInterface
	}
	return Node{ID: rel.Target, Label: rel.Target, Kind: kind, Role: RolePlaceholder}
}

func edgeKindFor(k report.RelationKind) EdgeKind {
	switch k {
	case report.RelationExtends:
		return EdgeExtends
	case report.RelationImplements:
		return EdgeImplements
	default:
		return EdgeUses
	}
}

func relationLabel(rel report.Relation) string {
	if rel.Kind == report.RelationOther {
		return rel.RawKind
	}
	return string(rel.Kind)
}
