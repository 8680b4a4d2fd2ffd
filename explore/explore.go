package explore

import (
	"container/heap"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/costmodel"
	"github.com/katalvlaran/anglepath/motion"
)

// Explore builds the graph of every angle reachable from starts.
//
// Steps:
//
//  1. Seed every start with a zero-cost terminator edge and queue it with
//     no previous motion.
//  2. Pop the cheapest entry. Stop as soon as every angle has been visited:
//     the remaining entries cannot reach new angles (some near-optimal
//     edges are left unexplored, which is accepted).
//  3. Skip the entry when its cost is above the node's best (lazy deletion).
//  4. For every motion the model allows after the entry's motion, apply the
//     transform, skip inapplicable ones, and offer the edge to admit.
//  5. Queue every admitted edge.
//
// Returns the graph, or an error for invalid inputs or a cancelled context.
func Explore(model *costmodel.Model, table motion.Table, starts []angle.State, opts ...Option) (*Graph, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	switch {
	case model == nil:
		return nil, ErrNilModel
	case table == nil:
		return nil, ErrNilTable
	case len(starts) == 0:
		return nil, ErrNoStarts
	case cfg.Flex < 0:
		return nil, ErrBadFlex
	}

	r := &runner{
		model: model,
		table: table,
		opts:  cfg,
		g:     &Graph{flex: cfg.Flex, model: model},
		pq:    make(entryPQ, 0, 1024),
	}
	r.seed(starts)
	if err := r.process(); err != nil {
		return nil, err
	}

	return r.g, nil
}

// runner holds the mutable state of one exploration.
type runner struct {
	model *costmodel.Model
	table motion.Table
	opts  Options
	g     *Graph
	pq    entryPQ
	seq   uint64
}

func (r *runner) seed(starts []angle.State) {
	for _, s := range starts {
		n := &r.g.nodes[s]
		if n.Start() {
			continue // duplicate start
		}
		n.edges = append(n.edges[:0], Edge{From: s, Motion: motion.None, Cost: cost.Zero})
		n.best = cost.Zero
		n.visited = true
		r.g.visited++
		r.g.edges++
		r.opts.Observer.Visited(s, cost.Zero)
		r.push(cost.Zero, s, motion.None)
	}
}

func (r *runner) process() error {
	var pops int
	for r.pq.Len() > 0 {
		if r.g.visited == angle.Count {
			break
		}

		pops++
		if pops%r.opts.CheckEvery == 0 {
			if err := r.opts.Ctx.Err(); err != nil {
				return err
			}
		}

		it := heap.Pop(&r.pq).(entry)
		r.opts.Observer.Popped(it.cost, r.pq.Len())

		// skip all edges if this isn't the cheapest way out
		if it.cost > r.g.nodes[it.state].best {
			r.opts.Observer.Skipped(it.state, it.cost)
			continue
		}

		r.relax(it)
	}

	return nil
}

func (r *runner) relax(it entry) {
	for _, step := range r.model.Next(it.motion) {
		to, ok := r.table.Apply(step.Motion, it.state)
		if !ok {
			continue
		}
		e := Edge{From: it.state, Motion: step.Motion, Prev: it.motion, Cost: it.cost + step.Cost}
		dst := angle.Wrap(to)
		if r.admit(e, dst) {
			r.push(e.Cost, dst, e.Motion)
		}
	}
}

// admit stores e as an edge into to when it is the first edge into the node,
// or the first/cheapest via its motion and within Flex of the node's best.
func (r *runner) admit(e Edge, to angle.State) bool {
	obs := r.opts.Observer

	if e.Motion.TargetLock() && r.opts.Forbidden != nil && r.opts.Forbidden.Contains(e.From) {
		obs.Rejected(e, to, ReasonForbidden)
		return false
	}

	n := &r.g.nodes[to]
	if !n.visited {
		n.edges = append(n.edges, e)
		n.best = e.Cost
		n.visited = true
		r.g.visited++
		r.g.edges++
		obs.Visited(to, e.Cost)
		obs.Admitted(e, to)
		return true
	}

	if e.Cost > n.best+r.opts.Flex {
		obs.Rejected(e, to, ReasonOverFlex)
		return false
	}

	switch i := n.index(e.Motion); {
	case i < 0:
		n.edges = append(n.edges, e)
		r.g.edges++
	case e.Cost < n.edges[i].Cost:
		n.edges[i] = e
	default:
		obs.Rejected(e, to, ReasonNotCheaper)
		return false
	}

	if e.Cost < n.best {
		n.best = e.Cost
	}
	obs.Admitted(e, to)

	return true
}

func (r *runner) push(c cost.Cost, s angle.State, m motion.Motion) {
	r.seq++
	heap.Push(&r.pq, entry{cost: c, state: s, motion: m, seq: r.seq})
}

// entry is a queued (cost, state, last motion) triple. seq records insertion
// order so ties break deterministically.
type entry struct {
	cost   cost.Cost
	state  angle.State
	motion motion.Motion
	seq    uint64
}

// entryPQ is a min-heap ordered by cost, then state, motion and insertion.
// Outdated entries stay in the heap and are skipped on pop.
type entryPQ []entry

func (pq entryPQ) Len() int { return len(pq) }

func (pq entryPQ) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	switch {
	case a.cost != b.cost:
		return a.cost < b.cost
	case a.state != b.state:
		return a.state < b.state
	case a.motion != b.motion:
		return a.motion < b.motion
	default:
		return a.seq < b.seq
	}
}

func (pq entryPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *entryPQ) Push(x interface{}) { *pq = append(*pq, x.(entry)) }

func (pq *entryPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	it := old[n-1]
	*pq = old[:n-1]

	return it
}
