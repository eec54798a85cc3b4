// Package graph turns report sections into generic node/edge lists and
// assigns display levels for top-down layout.
package graph

import (
	"fmt"
	"math"
	"strings"
)

type NodeKind string

const (
	NodeClass     NodeKind = "class"
	NodeInterface NodeKind = "interface"
	NodeMethod    NodeKind = "method"
	NodeExternal  NodeKind = "external"
	NodeAttribute NodeKind = "attribute"
)

// NodeRole refines how a node of a given kind is drawn.
type NodeRole string

const (
	RoleNone NodeRole = ""
	// RolePlaceholder marks a node synthesized for an undeclared edge target.
	RolePlaceholder NodeRole = "placeholder"
	// RoleInternal marks a same-class method reached through "this.".
	RoleInternal NodeRole = "internal"
)

type EdgeKind string

const (
	EdgeExtends    EdgeKind = "extends"
	EdgeImplements EdgeKind = "implements"
	EdgeUses       EdgeKind = "uses"
	EdgeCalls      EdgeKind = "calls"
	EdgeContains   EdgeKind = "contains"
)

type Node struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Kind       NodeKind `json:"kind"`
	Role       NodeRole `json:"role,omitempty"`
	Risk       float64  `json:"risk"`
	Level      int      `json:"level"`
	Visibility string   `json:"visibility,omitempty"`
}

type Edge struct {
	ID     string   `json:"id"`
	From   string   `json:"from"`
	To     string   `json:"to"`
	Kind   EdgeKind `json:"kind"`
	Weight float64  `json:"weight,omitempty"`
	Label  string   `json:"label,omitempty"`
}

// Graph is an ordered, deduplicated node list plus its edges.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	index map[string]int
}

func New() *Graph {
	return &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
		index: make(map[string]int),
	}
}

// AddNode appends n unless a node with the same id exists; the first
// occurrence keeps its display attributes. It reports whether n was added.
func (g *Graph) AddNode(n Node) bool {
	if g.index == nil {
		g.reindex()
	}
	if _, ok := g.index[n.ID]; ok {
		return false
	}
	n.Risk = ClampRisk(n.Risk)
	g.index[n.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	return true
}

func (g *Graph) AddEdge(e Edge) {
	if e.ID == "" {
		e.ID = fmt.Sprintf("%s-%s-%d", e.From, e.To, len(g.Edges))
	}
	g.Edges = append(g.Edges, e)
}

func (g *Graph) HasNode(id string) bool {
	if g.index == nil {
		g.reindex()
	}
	_, ok := g.index[id]
	return ok
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	if g.index == nil {
		g.reindex()
	}
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

func (g *Graph) Empty() bool {
	return g == nil || len(g.Nodes) == 0
}

// Validate checks that every edge endpoint is a node of the graph.
func (g *Graph) Validate() error {
	for _, e := range g.Edges {
		if !g.HasNode(e.From) {
			return fmt.Errorf("edge %s: unknown source %q", e.ID, e.From)
		}
		if !g.HasNode(e.To) {
			return fmt.Errorf("edge %s: unknown target %q", e.ID, e.To)
		}
	}
	return nil
}

func (g *Graph) reindex() {
	g.index = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if _, ok := g.index[n.ID]; !ok {
			g.index[n.ID] = i
		}
	}
}

type RiskBucket string

const (
	RiskLow    RiskBucket = "low"
	RiskMedium RiskBucket = "medium"
	RiskHigh   RiskBucket = "high"
)

// ClampRisk maps a bug probability into [0,1]; NaN counts as zero.
func ClampRisk(r float64) float64 {
	if math.IsNaN(r) || r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func Bucket(r float64) RiskBucket {
	r = ClampRisk(r)
	switch {
	case r >= 0.6:
		return RiskHigh
	case r >= 0.3:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Label is the dashboard heading for the bucket.
func (b RiskBucket) Label() string {
	switch b {
	case RiskHigh:
		return "High Risk (>60%)"
	case RiskMedium:
		return "Medium Risk (30-60%)"
	case RiskLow:
		return "Low Risk (<30%)"
	default:
		return string(b)
	}
}

// BucketForKey matches keys such as "highRisk" or "low_risk" to a bucket.
func BucketForKey(key string) (RiskBucket, bool) {
	k := strings.ToLower(key)
	switch {
	case strings.Contains(k, "high"):
		return RiskHigh, true
	case strings.Contains(k, "medium"):
		return RiskMedium, true
	case strings.Contains(k, "low"):
		return RiskLow, true
	default:
		return "", false
	}
}
