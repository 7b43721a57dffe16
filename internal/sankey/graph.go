package sankey

import (
	"fmt"
	"sort"

	"github.com/maruel/natural"
)

// Graph is the link structure consumed by a Sankey renderer. Source, Target and
// Value are parallel; Source/Target hold positions in Nodes.
type Graph struct {
	Nodes  []string  `json:"node"`
	Source []int     `json:"source"`
	Target []int     `json:"target"`
	Value  []float64 `json:"value"`
}

// Edge is one weighted link of a Graph.
type Edge struct {
	Source int
	Target int
	Value  float64
}

// BuildGraph collects the distinct labels of flows into a naturally sorted node
// list and resolves every flow into an edge, keeping the order of flows.
func BuildGraph(flows []GroupedFlowRecord) *Graph {
	seen := map[string]struct{}{}
	var nodes []string
	add := func(label string) {
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}
		nodes = append(nodes, label)
	}
	for _, fl := range flows {
		add(fl.SourceLabel)
		add(fl.TargetLabel)
	}
	SortNatural(nodes)

	pos := make(map[string]int, len(nodes))
	for i, n := range nodes {
		pos[n] = i
	}
	g := &Graph{
		Nodes:  nodes,
		Source: make([]int, len(flows)),
		Target: make([]int, len(flows)),
		Value:  make([]float64, len(flows)),
	}
	if g.Nodes == nil {
		g.Nodes = []string{}
	}
	for i, fl := range flows {
		g.Source[i] = pos[fl.SourceLabel]
		g.Target[i] = pos[fl.TargetLabel]
		g.Value[i] = fl.Value
	}
	return g
}

// SortNatural sorts labels so that embedded numbers compare by value
// ("Group 2" before "Group 10"). Labels the natural order treats as equal fall
// back to byte order so the result does not depend on input order.
func SortNatural(labels []string) {
	sort.Slice(labels, func(i, j int) bool {
		a, b := labels[i], labels[j]
		if natural.Less(a, b) {
			return true
		}
		if natural.Less(b, a) {
			return false
		}
		return a < b
	})
}

// Edges returns the links as structs.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.Source))
	for i := range g.Source {
		out[i] = Edge{Source: g.Source[i], Target: g.Target[i], Value: g.Value[i]}
	}
	return out
}

// Validate checks that the parallel lists line up, node labels are unique and
// every edge endpoint is a valid node position.
func (g *Graph) Validate() error {
	if len(g.Source) != len(g.Target) || len(g.Source) != len(g.Value) {
		return fmt.Errorf("link graph: source/target/value lengths differ (%d/%d/%d)", len(g.Source), len(g.Target), len(g.Value))
	}
	seen := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := seen[n]; dup {
			return fmt.Errorf("link graph: duplicate node %q", n)
		}
		seen[n] = struct{}{}
	}
	for i := range g.Source {
		if g.Source[i] < 0 || g.Source[i] >= len(g.Nodes) || g.Target[i] < 0 || g.Target[i] >= len(g.Nodes) {
			return fmt.Errorf("link graph: edge %d references node outside [0,%d)", i, len(g.Nodes))
		}
	}
	return nil
}
