// Package planner runs one complete search: build the cost model, explore
// the angle graph once from the starts, then collect the cheapest routes to
// every target.
//
// The graph is read-only after exploration, so targets are enumerated
// concurrently, bounded by Options.Concurrency.
//
// Errors (sentinel):
//
//	– ErrNoGroups   if the request allows no movement group.
//	– ErrNoStarts   if the request has no start angle.
//	– ErrNoTargets  if the request has no target angle.
//	– ErrBadRequest for negative sample, number or flex values, or a sample
//	  or number above MaxSample / MaxNumber.
//
// Model and range errors from costmodel and avoid are returned wrapped.
// An unreachable target is not an error; it is listed in Result.Unreachable.
package planner

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/avoid"
	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/explore"
	"github.com/katalvlaran/anglepath/metrics"
	"github.com/katalvlaran/anglepath/motion"
	"github.com/katalvlaran/anglepath/navigate"
)

// Sentinel errors returned by Request.Validate and Plan.
var (
	ErrNoGroups   = errors.New("planner: no movement groups allowed")
	ErrNoStarts   = errors.New("planner: no start angles")
	ErrNoTargets  = errors.New("planner: no target angles")
	ErrBadRequest = errors.New("planner: invalid request")
)

// Defaults applied to zero request fields, and the largest values accepted.
const (
	DefaultSample = 35
	DefaultNumber = 4

	MaxSample = 10000
	MaxNumber = 1000
)

// Request is one search.
type Request struct {
	Groups  []motion.Group `json:"groups" mapstructure:"groups"`
	Starts  []angle.State  `json:"starts" mapstructure:"starts"`
	Targets []angle.State  `json:"targets" mapstructure:"targets"`
	Avoid   []avoid.Range  `json:"avoid,omitempty" mapstructure:"avoid"`
	// Sample is how many paths are enumerated per target; zero means DefaultSample.
	Sample int `json:"sample,omitempty" mapstructure:"sample"`
	// Number is how many of them are kept per target; zero means DefaultNumber.
	Number int `json:"number,omitempty" mapstructure:"number"`
	// Flex is the tolerance for both exploration and enumeration; nil means
	// cost.DefaultFlex.
	Flex *cost.Cost `json:"flex,omitempty" mapstructure:"flex"`
}

// WithDefaults returns a copy of r with zero fields filled in.
func (r Request) WithDefaults() Request {
	if r.Sample == 0 {
		r.Sample = DefaultSample
	}
	if r.Number == 0 {
		r.Number = DefaultNumber
	}
	if r.Flex == nil {
		f := cost.DefaultFlex
		r.Flex = &f
	}

	return r
}

// Validate checks the request after defaults have been applied.
func (r Request) Validate() error {
	switch {
	case len(r.Groups) == 0:
		return ErrNoGroups
	case len(r.Starts) == 0:
		return ErrNoStarts
	case len(r.Targets) == 0:
		return ErrNoTargets
	case r.Sample < 0 || r.Sample > MaxSample:
		return fmt.Errorf("%w: sample %d not in [0, %d]", ErrBadRequest, r.Sample, MaxSample)
	case r.Number < 0 || r.Number > MaxNumber:
		return fmt.Errorf("%w: number %d not in [0, %d]", ErrBadRequest, r.Number, MaxNumber)
	case r.Flex != nil && *r.Flex < 0:
		return fmt.Errorf("%w: flex %s", ErrBadRequest, *r.Flex)
	}
	for _, rg := range r.Avoid {
		if err := rg.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Target summarises the routes found for one target angle.
type Target struct {
	Target angle.State `json:"target"`
	Routes int         `json:"routes"`
	// Best is the cheapest cost into the target, absent when unreachable.
	Best *cost.Cost `json:"best,omitempty"`
}

// Result is everything one Plan call produced.
type Result struct {
	// Routes over all targets, sorted by cost, origin and motions.
	Routes      []navigate.Route `json:"routes"`
	Targets     []Target         `json:"targets"`
	Unreachable []angle.State    `json:"unreachable"`
	Visited     int              `json:"visited"`
	Edges       int              `json:"edges"`
	Cached      bool             `json:"cached,omitempty"`
}

// Cache stores results by request key. Get reports ok=false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (res *Result, ok bool, err error)
	Put(ctx context.Context, key string, res *Result) error
}

// Options configures a Planner.
type Options struct {
	Concurrency int
	Cache       Cache
	Logger      zerolog.Logger
	Observer    explore.Observer
	Metrics     *metrics.Collector
}

// Option is a functional option for New.
type Option func(*Options)

// DefaultOptions returns GOMAXPROCS workers, no cache, a disabled logger and
// no observers.
func DefaultOptions() Options {
	return Options{
		Concurrency: runtime.GOMAXPROCS(0),
		Logger:      zerolog.Nop(),
	}
}

// WithConcurrency bounds how many targets are enumerated at once. Values
// below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// WithCache installs a result cache.
func WithCache(c Cache) Option {
	return func(o *Options) {
		o.Cache = c
	}
}

// WithLogger sets the logger. Exploration progress is logged at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithObserver adds an exploration observer.
func WithObserver(obs explore.Observer) Option {
	return func(o *Options) {
		o.Observer = obs
	}
}

// WithMetrics records every run and its exploration in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *Options) {
		o.Metrics = c
	}
}
