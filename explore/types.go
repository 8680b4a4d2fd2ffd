// Package explore defines the graph, options and hooks for the slack-tolerant
// forward exploration of the angle domain.
//
// Explore is a Dijkstra variant. Where Dijkstra keeps one predecessor per
// vertex, Explore keeps the cheapest incoming edge *per motion*, as long as
// that edge is within Flex of the vertex's best cost. Those extra edges are
// what later lets navigate offer alternative motion sequences instead of a
// single optimal route; Flex bounds how much the edge set can grow.
//
// Complexity:
//
//	– Time:  O(E log E)   where E ≤ 65536 · |motions| · k pushes, k small.
//	   • Every admitted edge pushes one heap entry (lazy decrease-key).
//	   • Stale entries (cost above the node's best) are skipped on pop.
//	– Space: O(V · |motions|) for edges, plus the heap.
//
// Options:
//
//	– Flex:      tolerated overrun above a node's best cost (default cost.DefaultFlex).
//	– Forbidden: angles out of which target-lock motions may not start.
//	– Observer:  hooks for progress reporting and metrics.
//	– Ctx:       cancellation, polled every CheckEvery pops.
//
// Errors (sentinel):
//
//	– ErrNilModel  if the cost model is nil.
//	– ErrNilTable  if the transition table is nil.
//	– ErrNoStarts  if no start angle is given.
//	– ErrBadFlex   if Flex is negative.
package explore

import (
	"context"
	"errors"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/cost"
)

// Sentinel errors returned by Explore.
var (
	// ErrNilModel indicates that a nil *costmodel.Model was passed.
	ErrNilModel = errors.New("explore: cost model is nil")

	// ErrNilTable indicates that a nil motion.Table was passed.
	ErrNilTable = errors.New("explore: transition table is nil")

	// ErrNoStarts indicates an empty start set.
	ErrNoStarts = errors.New("explore: no start angles")

	// ErrBadFlex indicates a negative Flex.
	ErrBadFlex = errors.New("explore: flex must be non-negative")
)

// DefaultCheckEvery is how many pops happen between context checks.
const DefaultCheckEvery = 4096

// Forbidden reports whether target-lock motions are disallowed from s.
// *avoid.Index implements it.
type Forbidden interface {
	Contains(s angle.State) bool
}

// Reason says why an edge was not admitted.
type Reason int

const (
	// ReasonForbidden: a target-lock motion starting inside a forbidden range.
	ReasonForbidden Reason = iota
	// ReasonOverFlex: the edge costs more than best + Flex at its destination.
	ReasonOverFlex
	// ReasonNotCheaper: an edge via the same motion is already at least as cheap.
	ReasonNotCheaper
)

// String names the reason, for logs and metric labels.
func (r Reason) String() string {
	switch r {
	case ReasonForbidden:
		return "forbidden"
	case ReasonOverFlex:
		return "over_flex"
	case ReasonNotCheaper:
		return "not_cheaper"
	default:
		return "unknown"
	}
}

// Observer receives exploration events. All calls happen on the exploring
// goroutine, in order. Embed NopObserver to implement only some hooks.
type Observer interface {
	// Popped is called for every heap entry taken off the queue.
	Popped(c cost.Cost, queued int)
	// Skipped is called when a popped entry is no longer the cheapest way
	// into its state.
	Skipped(s angle.State, c cost.Cost)
	// Visited is called the first time an edge into s is admitted.
	Visited(s angle.State, c cost.Cost)
	// Admitted is called for every stored edge, including first ones.
	Admitted(e Edge, to angle.State)
	// Rejected is called for every candidate edge that was not stored.
	Rejected(e Edge, to angle.State, why Reason)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) Popped(cost.Cost, int)              {}
func (NopObserver) Skipped(angle.State, cost.Cost)     {}
func (NopObserver) Visited(angle.State, cost.Cost)     {}
func (NopObserver) Admitted(Edge, angle.State)         {}
func (NopObserver) Rejected(Edge, angle.State, Reason) {}

type multiObserver []Observer

// Observers fans every event out to each non-nil observer in order.
func Observers(list ...Observer) Observer {
	out := make(multiObserver, 0, len(list))
	for _, o := range list {
		if o != nil {
			out = append(out, o)
		}
	}
	if len(out) == 1 {
		return out[0]
	}

	return out
}

func (m multiObserver) Popped(c cost.Cost, q int) {
	for _, o := range m {
		o.Popped(c, q)
	}
}

func (m multiObserver) Skipped(s angle.State, c cost.Cost) {
	for _, o := range m {
		o.Skipped(s, c)
	}
}

func (m multiObserver) Visited(s angle.State, c cost.Cost) {
	for _, o := range m {
		o.Visited(s, c)
	}
}

func (m multiObserver) Admitted(e Edge, to angle.State) {
	for _, o := range m {
		o.Admitted(e, to)
	}
}

func (m multiObserver) Rejected(e Edge, to angle.State, why Reason) {
	for _, o := range m {
		o.Rejected(e, to, why)
	}
}

// Options configures Explore.
type Options struct {
	Ctx        context.Context
	Flex       cost.Cost
	Forbidden  Forbidden
	Observer   Observer
	CheckEvery int
}

// Option is a functional option for Explore.
type Option func(*Options)

// DefaultOptions returns Background context, cost.DefaultFlex, no forbidden
// ranges and a no-op observer.
func DefaultOptions() Options {
	return Options{
		Ctx:        context.Background(),
		Flex:       cost.DefaultFlex,
		Forbidden:  nil,
		Observer:   NopObserver{},
		CheckEvery: DefaultCheckEvery,
	}
}

// WithContext sets the cancellation context. A nil ctx is ignored.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithFlex sets the admission tolerance. Negative values make Explore fail
// with ErrBadFlex.
func WithFlex(flex cost.Cost) Option {
	return func(o *Options) {
		o.Flex = flex
	}
}

// WithForbidden sets the forbidden ranges for target-lock motions.
func WithForbidden(f Forbidden) Option {
	return func(o *Options) {
		o.Forbidden = f
	}
}

// WithObserver installs an event observer. A nil observer is ignored.
func WithObserver(obs Observer) Option {
	return func(o *Options) {
		if obs != nil {
			o.Observer = obs
		}
	}
}

// WithCheckEvery sets how often the context is polled. Values below 1 are
// ignored.
func WithCheckEvery(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.CheckEvery = n
		}
	}
}
