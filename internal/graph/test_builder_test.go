package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codelens/internal/report"
)

func dep(with string, amount float64) report.Dependency {
	return report.Dependency{With: with, Amount: amount, Ref: report.ParseReference(with)}
}

func TestBuildInheritanceSynthesizesMissingTargets(t *testing.T) {
	r := &report.Report{
		Inheritance: map[string]report.InheritanceEntry{
			"A": {Kind: report.EntityClass, Relations: []report.Relation{
				{Target: "Ghost", Kind: report.RelationExtends},
			}},
		},
	}

	g := BuildInheritance(r)
	require.NoError(t, g.Validate())
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)

	ghost, ok := g.Node("Ghost")
	require.True(t, ok)
	assert.Equal(t, RolePlaceholder, ghost.Role)
	assert.Equal(t, NodeExternal, ghost.Kind)

	e := g.Edges[0]
	assert.Equal(t, "A", e.From)
	assert.Equal(t, "Ghost", e.To)
	assert.Equal(t, EdgeExtends, e.Kind)

	// A points at Ghost, so A is the root.
	a, _ := g.Node("A")
	assert.Equal(t, 0, a.Level)
	assert.Equal(t, 1, ghost.Level)
}

func TestBuildInheritanceKindsAndMalformed(t *testing.T) {
	bp := 0.72
	r := &report.Report{
		Classes: map[string]report.ClassInfo{
			"Svc": {ID: "Svc", Name: "Svc", BugProbability: &bp},
		},
		Inheritance: map[string]report.InheritanceEntry{
			"Svc": {Kind: report.EntityClass, Relations: []report.Relation{
				{Target: "Runner", Kind: report.RelationImplements},
				{Target: "", Kind: report.RelationMalformed},
				{Target: "Mixin", Kind: report.RelationOther, RawKind: "mixes"},
			}},
			"Runner": {Kind: report.EntityInterface},
		},
	}

	g := BuildInheritance(r)
	require.NoError(t, g.Validate())
	require.Len(t, g.Edges, 2)

	runner, _ := g.Node("Runner")
	assert.Equal(t, NodeInterface, runner.Kind)
	assert.Equal(t, RoleNone, runner.Role)

	svc, _ := g.Node("Svc")
	assert.InDelta(t, 0.72, svc.Risk, 1e-9)

	kinds := map[string]EdgeKind{}
	labels := map[string]string{}
	for _, e := range g.Edges {
		kinds[e.To] = e.Kind
		labels[e.To] = e.Label
	}
	assert.Equal(t, EdgeImplements, kinds["Runner"])
	assert.Equal(t, EdgeUses, kinds["Mixin"])
	assert.Equal(t, "mixes", labels["Mixin"])
}

func TestBuildInheritanceEmpty(t *testing.T) {
	assert.True(t, BuildInheritance(nil).Empty())
	assert.True(t, BuildInheritance(&report.Report{}).Empty())
}

func TestBuildClassDependenciesClassifiesTargets(t *testing.T) {
	c := report.ClassInfo{
		ID:   "c1",
		Name: "Cart",
		Methods: []report.Member{
			{Name: "total", Visibility: report.VisibilityPublic, BugProbability: 0.4},
		},
		Dependencies: map[string][]report.Dependency{
			"total": {
				dep("@items", 3),
				dep("this.sum", 0),
				dep("Math.round", 2),
			},
		},
	}

	g := BuildClassDependencies(c)
	require.NoError(t, g.Validate())

	items, ok := g.Node("@items")
	require.True(t, ok)
	assert.Equal(t, NodeAttribute, items.Kind)
	assert.Equal(t, "items", items.Label)

	sum, _ := g.Node("this.sum")
	assert.Equal(t, NodeMethod, sum.Kind)
	assert.Equal(t, RoleInternal, sum.Role)

	ext, _ := g.Node("Math.round")
	assert.Equal(t, NodeExternal, ext.Kind)

	total, _ := g.Node("total")
	assert.InDelta(t, 0.4, total.Risk, 1e-9)
	assert.Equal(t, "public", total.Visibility)

	byTarget := map[string]Edge{}
	for _, e := range g.Edges {
		byTarget[e.To] = e
	}
	assert.Equal(t, EdgeContains, byTarget["total"].Kind)
	assert.Equal(t, 3.0, byTarget["@items"].Weight)
	assert.Equal(t, EdgeCalls, byTarget["this.sum"].Kind)
	assert.Equal(t, 1.0, byTarget["this.sum"].Weight, "weight has a floor of 1")
	assert.Equal(t, EdgeUses, byTarget["Math.round"].Kind)

	cart, _ := g.Node("Cart")
	assert.Equal(t, 0, cart.Level)
	assert.Equal(t, 2, items.Level)
}

func TestBuildClassDependenciesEmpty(t *testing.T) {
	g := BuildClassDependencies(report.ClassInfo{Name: "Lonely"})
	assert.True(t, g.Empty())
	assert.Empty(t, g.Edges)
}

func TestWeight(t *testing.T) {
	assert.Equal(t, 1.0, Weight(-3))
	assert.Equal(t, 1.0, Weight(0.5))
	assert.Equal(t, 7.0, Weight(7))
}

func TestBuildClassUsage(t *testing.T) {
	c := report.ClassInfo{
		ID:         "Order",
		Name:       "Order",
		Extends:    "Entity",
		Implements: []string{"Serializable"},
		Methods: []report.Member{
			{UID: "m1", Name: "save", Visibility: report.VisibilityPublic},
			{UID: "m2", Name: "validate", Visibility: report.VisibilityPrivate},
		},
		Attributes: []report.Member{{Name: "id", Visibility: report.VisibilityPrivate}},
		Calls: []report.Call{
			{From: "m1", To: "m2"},
			{From: "m1", To: "db.insert", Target: "insert"},
		},
	}

	g := BuildClassUsage(c)
	require.NoError(t, g.Validate())

	for _, id := range []string{"Order", "m1", "m2", "id", "db.insert", "Entity", "Serializable"} {
		assert.True(t, g.HasNode(id), "missing node %s", id)
	}
	ext, _ := g.Node("db.insert")
	assert.Equal(t, NodeExternal, ext.Kind)
	assert.Equal(t, "insert", ext.Label)

	iface, _ := g.Node("Serializable")
	assert.Equal(t, NodeInterface, iface.Kind)
	assert.Equal(t, RolePlaceholder, iface.Role)

	var calls int
	for _, e := range g.Edges {
		if e.Kind == EdgeCalls {
			calls++
		}
	}
	assert.Equal(t, 2, calls)
}

func TestBuildClassUsageIgnoresNoneParent(t *testing.T) {
	c := report.ClassInfo{
		ID:      "X",
		Name:    "X",
		Extends: "none",
		Methods: []report.Member{{Name: "run"}},
	}
	g := BuildClassUsage(c)
	assert.False(t, g.HasNode("none"))
	assert.Len(t, g.Nodes, 2)
}

func TestBuildClassUsageEmpty(t *testing.T) {
	assert.True(t, BuildClassUsage(report.ClassInfo{ID: "E"}).Empty())
}
