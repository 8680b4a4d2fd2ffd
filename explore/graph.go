package explore

import (
	"sort"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/costmodel"
	"github.com/katalvlaran/anglepath/motion"
)

// Edge is one way into a node.
//
// Cost is the total cost of the cheapest known path that reaches the
// destination through this exact motion; it can exceed the destination's
// best cost by at most the exploration Flex. Prev is the motion that was
// performed just before this one on that path (motion.None from a start).
type Edge struct {
	From   angle.State
	Motion motion.Motion
	Prev   motion.Motion
	Cost   cost.Cost
}

// Node holds the incoming edges of one angle: at most one per motion, each
// the cheapest seen so far via that motion. A start node additionally holds
// a zero-cost motion.None terminator edge.
type Node struct {
	edges   []Edge
	best    cost.Cost
	visited bool
}

// Visited reports whether any edge into the node was admitted.
func (n *Node) Visited() bool { return n.visited }

// Best is the minimum cost over the node's edges; ok is false when the node
// was never reached.
func (n *Node) Best() (c cost.Cost, ok bool) { return n.best, n.visited }

// Start reports whether the node is a path terminator (a start angle).
func (n *Node) Start() bool {
	_, ok := n.Edge(motion.None)

	return ok
}

// Edge returns the stored edge via m.
func (n *Node) Edge(m motion.Motion) (Edge, bool) {
	if i := n.index(m); i >= 0 {
		return n.edges[i], true
	}

	return Edge{}, false
}

// Len is the number of stored edges.
func (n *Node) Len() int { return len(n.edges) }

// Edges returns a copy of the node's edges sorted by ascending cost; equal
// costs are ordered by motion so the result is deterministic.
func (n *Node) Edges() []Edge {
	out := make([]Edge, len(n.edges))
	copy(out, n.edges)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost < out[j].Cost
		}

		return out[i].Motion < out[j].Motion
	})

	return out
}

func (n *Node) index(m motion.Motion) int {
	for i := range n.edges {
		if n.edges[i].Motion == m {
			return i
		}
	}

	return -1
}

// Graph is the result of Explore: one Node per angle. It is never mutated
// after Explore returns and may be read from many goroutines.
type Graph struct {
	nodes   [angle.Count]Node
	visited int
	edges   int
	flex    cost.Cost
	model   *costmodel.Model
}

// Node returns the node of s. The pointer is for reading only.
func (g *Graph) Node(s angle.State) *Node { return &g.nodes[s] }

// Best is shorthand for g.Node(s).Best().
func (g *Graph) Best(s angle.State) (cost.Cost, bool) { return g.nodes[s].Best() }

// Reachable reports whether s was visited.
func (g *Graph) Reachable(s angle.State) bool { return g.nodes[s].visited }

// Visited is the number of visited angles.
func (g *Graph) Visited() int { return g.visited }

// EdgeCount is the number of stored edges, terminators included.
func (g *Graph) EdgeCount() int { return g.edges }

// Flex is the tolerance the graph was built with.
func (g *Graph) Flex() cost.Cost { return g.flex }

// Model is the cost model the graph was priced with.
func (g *Graph) Model() *costmodel.Model { return g.model }
