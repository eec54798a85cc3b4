package graph

// LevelResult is the output of AssignLevels.
type LevelResult struct {
	Nodes  []Node
	Levels map[string]int
	// Depth is the number of distinct levels in use.
	Depth int
}

// AssignLevels gives every node a display depth from directed edges
// (child -> target). Nodes without incoming edges are roots at level 0; a
// breadth-first pass from all roots raises each target to max(current, L+1),
// so a node sits below the deepest node pointing at it.
//
// Nodes not reachable from a root, which includes every member of a pure
// cycle, keep level 0. A level never exceeds len(nodes)-1, which bounds the
// work when a cycle hangs off a reachable node. The input is not modified.
func AssignLevels(nodes []Node, edges []Edge) LevelResult {
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}

	out := make(map[string][]string, len(nodes))
	incoming := make(map[string]int, len(nodes))
	for _, e := range edges {
		if !known[e.From] || !known[e.To] {
			continue
		}
		out[e.From] = append(out[e.From], e.To)
		incoming[e.To]++
	}

	levels := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if incoming[n.ID] == 0 {
			if _, seen := levels[n.ID]; !seen {
				levels[n.ID] = 0
				queue = append(queue, n.ID)
			}
		}
	}

	maxLevel := len(known) - 1
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		next := levels[id] + 1
		if next > maxLevel {
			continue
		}
		for _, to := range out[id] {
			if cur, ok := levels[to]; ok && cur >= next {
				continue
			}
			levels[to] = next
			queue = append(queue, to)
		}
	}

	leveled := make([]Node, len(nodes))
	distinct := make(map[int]struct{})
	for i, n := range nodes {
		n.Level = levels[n.ID]
		leveled[i] = n
		distinct[n.Level] = struct{}{}
	}
	for _, n := range nodes {
		if _, ok := levels[n.ID]; !ok {
			levels[n.ID] = 0
		}
	}
	return LevelResult{Nodes: leveled, Levels: levels, Depth: len(distinct)}
}

// Leveled returns a copy of g with levels assigned.
func Leveled(g *Graph) (*Graph, LevelResult) {
	res := AssignLevels(g.Nodes, g.Edges)
	cp := &Graph{
		Nodes: res.Nodes,
		Edges: append([]Edge(nil), g.Edges...),
	}
	cp.reindex()
	return cp, res
}
