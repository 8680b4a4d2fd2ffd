// Package metrics exposes exploration events as Prometheus series and as
// debug-level progress logs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/explore"
)

// Namespace prefixes every series.
const Namespace = "anglepath"

// Collector holds the series. One Collector is shared by all runs; Observer
// hands out a per-run explore.Observer feeding it.
type Collector struct {
	pops     prometheus.Counter
	skipped  prometheus.Counter
	visited  prometheus.Counter
	admitted *prometheus.CounterVec
	rejected *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	routes   prometheus.Histogram
}

// New creates the series and registers them with reg. A nil reg leaves them
// unregistered, which tests use.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		pops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "queue_pops_total",
			Help:      "Heap entries taken off the exploration queue.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "queue_stale_total",
			Help:      "Popped entries skipped because a cheaper way in was known.",
		}),
		visited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "angles_visited_total",
			Help:      "Angles reached for the first time.",
		}),
		admitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "edges_admitted_total",
			Help:      "Edges stored in the graph, by motion.",
		}, []string{"motion"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "edges_rejected_total",
			Help:      "Candidate edges not stored, by reason.",
		}, []string{"reason"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "plans_total",
			Help:      "Plan runs, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "plan_duration_seconds",
			Help:      "Wall time of a plan run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		routes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "plan_routes",
			Help:      "Routes returned per plan run.",
			Buckets:   prometheus.LinearBuckets(0, 4, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(c.pops, c.skipped, c.visited, c.admitted, c.rejected,
			c.runs, c.duration, c.routes)
	}

	return c
}

// Observer returns an explore.Observer that counts into c.
func (c *Collector) Observer() explore.Observer { return collectorObserver{c} }

// ObservePlan records one finished plan. outcome is "ok", "cached" or "error".
func (c *Collector) ObservePlan(outcome string, took time.Duration, routes int) {
	c.runs.WithLabelValues(outcome).Inc()
	c.duration.Observe(took.Seconds())
	if outcome != "error" {
		c.routes.Observe(float64(routes))
	}
}

type collectorObserver struct{ c *Collector }

func (o collectorObserver) Popped(cost.Cost, int)          { o.c.pops.Inc() }
func (o collectorObserver) Skipped(angle.State, cost.Cost) { o.c.skipped.Inc() }
func (o collectorObserver) Visited(angle.State, cost.Cost) { o.c.visited.Inc() }

func (o collectorObserver) Admitted(e explore.Edge, _ angle.State) {
	o.c.admitted.WithLabelValues(e.Motion.Name()).Inc()
}

func (o collectorObserver) Rejected(_ explore.Edge, _ angle.State, why explore.Reason) {
	o.c.rejected.WithLabelValues(why.String()).Inc()
}

// Progress logs a debug line each time the popped cost has grown by more
// than one unit since the last line, and a summary from Done.
type Progress struct {
	explore.NopObserver

	log     zerolog.Logger
	last    cost.Cost
	visited int
}

// NewProgress returns a progress observer writing to log.
func NewProgress(log zerolog.Logger) *Progress {
	return &Progress{log: log}
}

// Popped implements explore.Observer.
func (p *Progress) Popped(c cost.Cost, queued int) {
	if c > p.last+cost.Units(1) {
		p.log.Debug().
			Int("queued", queued).
			Int("visited", p.visited).
			Stringer("cost", c).
			Msg("exploring")
		p.last = c
	}
}

// Visited implements explore.Observer.
func (p *Progress) Visited(angle.State, cost.Cost) { p.visited++ }

// Done logs the final count of visited angles.
func (p *Progress) Done() {
	p.log.Debug().Int("visited", p.visited).Msg("exploration done")
}
