// Package navigate walks an explored graph backwards from a target angle and
// enumerates motion paths whose total cost is within Flex of the best one.
//
// The walk is depth-first over each node's incoming edges in ascending cost
// order. Each frame carries the exact cost of the motions already chosen
// between it and the target, priced with the cost model: an edge's stored
// cost assumes the motion that preceded it during exploration, which the
// walk may not retrace. An edge is descended only while
// best(edge.From) + cheapest(edge.Motion) + suffix <= best(target) + Flex,
// and a path is yielded only when its full cost fits the same budget.
// Because the cheapest edges are always tried first, the first path produced
// is an optimal one; the order of later paths is NOT by cost, so callers
// wanting a top-K sample a bounded number of paths and sort them (see
// Collect).
//
// An angle already on the current path is pruned. Flex lets the running cost
// rise a little, so cost-increasing cycles (e.g. ess left then ess right) would
// otherwise loop forever.
//
// Complexity:
//
//   - Time:   bounded by the number of admissible (flex-respecting) simple
//     paths; each yielded path costs O(L) to copy.
//   - Memory: O(V) for the on-path marks and O(L·|motions|) for the frame stack,
//     where L ≤ 65536 is the current path length.
//
// Errors:
//
//   - ErrNilGraph        if Collect receives a nil graph.
//   - ErrNilModel        if Collect or CostOfPath receive a nil model.
//   - ErrBadSample       if Collect's sample or number is not positive.
//   - ErrStepNotAllowed  if a path contains a step the model does not price.
package navigate

import (
	"errors"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/motion"
)

// Sentinel errors.
var (
	// ErrNilGraph indicates a nil *explore.Graph.
	ErrNilGraph = errors.New("navigate: graph is nil")

	// ErrNilModel indicates a nil *costmodel.Model.
	ErrNilModel = errors.New("navigate: cost model is nil")

	// ErrBadSample indicates a non-positive sample size or result count.
	ErrBadSample = errors.New("navigate: sample and number must be positive")

	// ErrStepNotAllowed indicates a path step that the cost model does not contain.
	ErrStepNotAllowed = errors.New("navigate: step not allowed by cost model")

	// ErrBadFlex indicates a negative flex; raised by WithFlex.
	ErrBadFlex = errors.New("navigate: flex must be non-negative")
)

// Route is one enumerated path with its recomputed cost.
type Route struct {
	Cost    cost.Cost       `json:"cost"`
	Origin  angle.State     `json:"origin"`
	Target  angle.State     `json:"target"`
	Motions []motion.Motion `json:"motions"`
}

// Options configures enumeration.
type Options struct {
	// Flex is the total overrun budget above the target's best cost.
	Flex cost.Cost

	// MaxDepth bounds the number of motions in a path; it never exceeds
	// angle.Count, which is also the default.
	MaxDepth int
}

// Option is a functional option for Paths and Collect.
type Option func(*Options)

// DefaultOptions returns cost.DefaultFlex and the full depth bound.
func DefaultOptions() Options {
	return Options{
		Flex:     cost.DefaultFlex,
		MaxDepth: angle.Count,
	}
}

// WithFlex sets the overrun budget. A negative budget is a programming
// error and panics.
func WithFlex(flex cost.Cost) Option {
	return func(o *Options) {
		if flex < 0 {
			panic(ErrBadFlex.Error())
		}
		o.Flex = flex
	}
}

// WithMaxDepth caps path length. Values outside [1, angle.Count] select
// angle.Count.
func WithMaxDepth(limit int) Option {
	return func(o *Options) {
		if limit < 1 || limit > angle.Count {
			limit = angle.Count
		}
		o.MaxDepth = limit
	}
}
