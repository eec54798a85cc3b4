package graph

import (
	"testing"
)

func nodes(ids ...string) []Node {
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, Node{ID: id, Label: id, Kind: NodeClass})
	}
	return out
}

func edge(from, to string) Edge {
	return Edge{ID: from + "->" + to, From: from, To: to, Kind: EdgeExtends}
}

func TestAssignLevelsUsesLongestPath(t *testing.T) {
	// a -> b -> c -> d and a shortcut a -> d: d must sit below c.
	ns := nodes("a", "b", "c", "d")
	es := []Edge{edge("a", "b"), edge("b", "c"), edge("c", "d"), edge("a", "d")}

	res := AssignLevels(ns, es)
	want := map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}
	for id, lvl := range want {
		if res.Levels[id] != lvl {
			t.Fatalf("level[%s] = %d, want %d (all: %v)", id, res.Levels[id], lvl, res.Levels)
		}
	}
	if res.Depth != 4 {
		t.Fatalf("expected 4 distinct levels, got %d", res.Depth)
	}
	for _, n := range res.Nodes {
		if n.Level != want[n.ID] {
			t.Fatalf("node %s carries level %d, want %d", n.ID, n.Level, want[n.ID])
		}
	}
}

func TestAssignLevelsTwoParentsAtDifferentDepths(t *testing.T) {
	// x and y are roots; y -> m -> target and x -> target.
	ns := nodes("x", "y", "m", "target")
	es := []Edge{edge("x", "target"), edge("y", "m"), edge("m", "target")}

	res := AssignLevels(ns, es)
	if res.Levels["x"] != 0 || res.Levels["y"] != 0 {
		t.Fatalf("roots must be level 0: %v", res.Levels)
	}
	if res.Levels["target"] != 2 {
		t.Fatalf("target should be placed below the deeper parent, got %d", res.Levels["target"])
	}
}

func TestAssignLevelsPureCycleFallsBackToZero(t *testing.T) {
	ns := nodes("a", "b", "c")
	es := []Edge{edge("a", "b"), edge("b", "c"), edge("c", "a")}

	res := AssignLevels(ns, es)
	for _, id := range []string{"a", "b", "c"} {
		if res.Levels[id] != 0 {
			t.Fatalf("cycle member %s got level %d, want 0", id, res.Levels[id])
		}
	}
}

func TestAssignLevelsReachableCycleTerminates(t *testing.T) {
	ns := nodes("r", "a", "b")
	es := []Edge{edge("r", "a"), edge("a", "b"), edge("b", "a")}

	res := AssignLevels(ns, es)
	if res.Levels["r"] != 0 {
		t.Fatalf("root level = %d", res.Levels["r"])
	}
	for id, lvl := range res.Levels {
		if lvl < 0 || lvl > len(ns)-1 {
			t.Fatalf("level of %s out of bounds: %d", id, lvl)
		}
	}
}

func TestAssignLevelsDisconnectedAndUnknownEndpoints(t *testing.T) {
	ns := nodes("lonely", "p", "q")
	es := []Edge{edge("p", "q"), edge("p", "ghost"), edge("ghost", "lonely")}

	res := AssignLevels(ns, es)
	if res.Levels["lonely"] != 0 {
		t.Fatalf("edges to unknown nodes must be ignored, lonely=%d", res.Levels["lonely"])
	}
	if res.Levels["q"] != 1 {
		t.Fatalf("q = %d, want 1", res.Levels["q"])
	}
	if _, ok := res.Levels["ghost"]; ok {
		t.Fatalf("unknown endpoint should not be leveled")
	}
}

func TestAssignLevelsDoesNotMutateInput(t *testing.T) {
	ns := nodes("a", "b")
	ns[1].Level = 7
	_ = AssignLevels(ns, []Edge{edge("a", "b")})
	if ns[1].Level != 7 {
		t.Fatalf("input node was modified")
	}
}

func TestRiskBuckets(t *testing.T) {
	cases := []struct {
		risk float64
		want RiskBucket
	}{
		{-1, RiskLow},
		{0, RiskLow},
		{0.29, RiskLow},
		{0.3, RiskMedium},
		{0.59, RiskMedium},
		{0.6, RiskHigh},
		{4, RiskHigh},
	}
	for _, tc := range cases {
		if got := Bucket(tc.risk); got != tc.want {
			t.Fatalf("Bucket(%v) = %s, want %s", tc.risk, got, tc.want)
		}
	}
	if ClampRisk(1.7) != 1 || ClampRisk(-0.2) != 0 {
		t.Fatalf("ClampRisk does not clamp into [0,1]")
	}
}
