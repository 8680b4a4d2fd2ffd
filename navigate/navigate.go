package navigate

import (
	"iter"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/costmodel"
	"github.com/katalvlaran/anglepath/explore"
	"github.com/katalvlaran/anglepath/motion"
)

// Paths returns the lazy sequence of (origin, path) pairs reaching target,
// where origin is a start angle and path lists the motions in forward order.
// Every path is priced with the graph's cost model and costs at most the
// target's best plus Flex. Every range over the sequence restarts the walk
// from scratch. The sequence is empty when g is nil or target was never
// reached.
func Paths(g *explore.Graph, target angle.State, opts ...Option) iter.Seq2[angle.State, []motion.Motion] {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(yield func(angle.State, []motion.Motion) bool) {
		if g == nil || g.Model() == nil || !g.Reachable(target) {
			return
		}
		best, _ := g.Best(target)
		w := &walker{
			g:      g,
			model:  g.Model(),
			limit:  best + cfg.Flex,
			opts:   cfg,
			onPath: make([]bool, angle.Count),
			path:   make([]motion.Motion, 0, 64),
		}
		for _, m := range w.model.Motions() {
			w.cheapest[m], _ = w.model.Cheapest(m)
		}
		w.walk(target, yield)
	}
}

// frame is one node on the current path. after is the motion performed from
// state toward the target, and suffix is the exact cost of every motion
// behind it. The cost of after itself is only known once the edge into
// state is chosen.
type frame struct {
	state  angle.State
	after  motion.Motion
	suffix cost.Cost
	edges  []explore.Edge
	next   int
}

// walker holds the shared state of one enumeration: the path buffer (in
// backward order) and the on-path marks, both pushed and popped as frames
// are entered and left.
type walker struct {
	g        *explore.Graph
	model    *costmodel.Model
	limit    cost.Cost
	cheapest [motion.Count + 1]cost.Cost
	opts     Options
	stack    []frame
	onPath   []bool
	path     []motion.Motion
}

func (w *walker) walk(target angle.State, yield func(angle.State, []motion.Motion) bool) {
	// 1) The root has no motion after it and nothing spent yet.
	if _, ok := w.enter(target, motion.None, cost.Zero, motion.None, yield); !ok {
		return
	}

	for len(w.stack) > 0 {
		f := &w.stack[len(w.stack)-1]

		// 2) Exhausted node: unmark it and drop the motion that led here.
		if f.next >= len(f.edges) {
			w.onPath[f.state] = false
			w.stack = w.stack[:len(w.stack)-1]
			if len(w.stack) > 0 {
				w.path = w.path[:len(w.path)-1]
			}
			continue
		}

		e := f.edges[f.next]
		f.next++

		// 3) e.Motion now precedes f.after, which fixes the cost of f.after.
		suffix := f.suffix
		if f.after != motion.None {
			c, ok := w.model.Cost(e.Motion, f.after)
			if !ok {
				continue
			}
			suffix += c
		}

		// 4) Prune when even the cheapest way to e.From followed by the
		//    cheapest pricing of e.Motion cannot fit in the budget.
		from, _ := w.g.Best(e.From)
		if from+w.cheapest[e.Motion]+suffix > w.limit {
			continue
		}

		// 5) Descend. When no frame was pushed (terminator or pruned), the
		//    motion comes straight back off the path.
		w.path = append(w.path, e.Motion)
		pushed, ok := w.enter(e.From, e.Motion, suffix, e.Prev, yield)
		if !ok {
			return
		}
		if !pushed {
			w.path = w.path[:len(w.path)-1]
		}
	}
}

// enter visits s, reached backwards through after. prefer is the motion that
// priced the edge we arrived by; among equally cheap edges it goes first, so
// the cheapest walk retraces exactly the chain that produced the best cost.
// It reports whether a frame was pushed, and ok=false when the consumer
// stopped the iteration.
func (w *walker) enter(s angle.State, after motion.Motion, suffix cost.Cost, prefer motion.Motion, yield func(angle.State, []motion.Motion) bool) (pushed, ok bool) {
	n := w.g.Node(s)

	switch {
	case n.Start():
		total := suffix
		if after != motion.None {
			c, allowed := w.model.Cost(motion.None, after)
			if !allowed {
				return false, true
			}
			total += c
		}
		if total > w.limit {
			return false, true
		}
		return false, yield(s, forward(w.path))
	case w.onPath[s]:
		return false, true // cycle
	case len(w.stack) >= w.opts.MaxDepth:
		return false, true
	}

	w.onPath[s] = true
	w.stack = append(w.stack, frame{state: s, after: after, suffix: suffix, edges: ordered(n, prefer)})

	return true, true
}

// ordered is n.Edges() with the prefer edge moved ahead of its equal-cost
// peers.
func ordered(n *explore.Node, prefer motion.Motion) []explore.Edge {
	edges := n.Edges()
	for i := 1; i < len(edges); i++ {
		if edges[i].Motion != prefer {
			continue
		}
		j := i
		for j > 0 && edges[j-1].Cost == edges[i].Cost {
			j--
		}
		if j < i {
			e := edges[i]
			copy(edges[j+1:i+1], edges[j:i])
			edges[j] = e
		}
		break
	}

	return edges
}

// forward copies the backward path buffer into forward order.
func forward(back []motion.Motion) []motion.Motion {
	out := make([]motion.Motion, len(back))
	for i, m := range back {
		out[len(back)-1-i] = m
	}

	return out
}
