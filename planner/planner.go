package planner

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/avoid"
	"github.com/katalvlaran/anglepath/costmodel"
	"github.com/katalvlaran/anglepath/explore"
	"github.com/katalvlaran/anglepath/metrics"
	"github.com/katalvlaran/anglepath/motion"
	"github.com/katalvlaran/anglepath/navigate"
)

// Planner answers Requests against one transition table and cost table.
// It is safe for concurrent use.
type Planner struct {
	table motion.Table
	costs costmodel.Table
	opts  Options
	// fingerprint identifies costs inside cache keys.
	fingerprint string
}

// New returns a Planner. A nil table means motion.DefaultTable.
func New(table motion.Table, costs costmodel.Table, opts ...Option) *Planner {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if table == nil {
		table = motion.DefaultTable
	}

	return &Planner{
		table:       table,
		costs:       costs,
		opts:        cfg,
		fingerprint: fingerprint(costs),
	}
}

// Table is the transition table the planner explores with.
func (p *Planner) Table() motion.Table { return p.table }

// Plan runs req.
//
// Steps:
//
//  1. Apply defaults and validate.
//  2. Return the cached result when a cache is installed and holds the key.
//  3. Build the cost model and the forbidden-range index.
//  4. Explore once from every start.
//  5. Collect routes per target concurrently and merge them.
//  6. Store the result in the cache; a failing cache only logs.
func (p *Planner) Plan(ctx context.Context, req Request) (res *Result, err error) {
	began := time.Now()
	outcome := "ok"
	defer func() {
		if p.opts.Metrics == nil {
			return
		}
		n := 0
		if err != nil {
			outcome = "error"
		} else {
			n = len(res.Routes)
		}
		p.opts.Metrics.ObservePlan(outcome, time.Since(began), n)
	}()

	// 1. defaults
	req = req.WithDefaults()
	if err = req.Validate(); err != nil {
		return nil, err
	}
	log := p.opts.Logger.With().
		Int("starts", len(req.Starts)).
		Int("targets", len(req.Targets)).
		Logger()

	// 2. cache
	key := p.Key(req)
	if p.opts.Cache != nil {
		cached, ok, cerr := p.opts.Cache.Get(ctx, key)
		switch {
		case cerr != nil:
			log.Warn().Err(cerr).Str("key", key).Msg("cache lookup failed")
		case ok:
			log.Debug().Str("key", key).Msg("cache hit")
			cached.Cached = true
			outcome = "cached"
			return cached, nil
		}
	}

	// 3. model and ranges
	model, err := costmodel.New(p.costs, req.Groups)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	idx, err := avoid.NewIndex(req.Avoid)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}

	// 4. explore
	progress := metrics.NewProgress(log)
	observers := []explore.Observer{progress, p.opts.Observer}
	if p.opts.Metrics != nil {
		observers = append(observers, p.opts.Metrics.Observer())
	}
	g, err := explore.Explore(model, p.table, req.Starts,
		explore.WithContext(ctx),
		explore.WithFlex(*req.Flex),
		explore.WithForbidden(idx),
		explore.WithObserver(explore.Observers(observers...)),
	)
	if err != nil {
		return nil, fmt.Errorf("planner: explore: %w", err)
	}
	progress.Done()

	// 5. collect
	res, err = p.collect(ctx, g, model, req)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("routes", len(res.Routes)).
		Int("unreachable", len(res.Unreachable)).
		Int("visited", res.Visited).
		Dur("took", time.Since(began)).
		Msg("plan done")

	// 6. store
	if p.opts.Cache != nil {
		if perr := p.opts.Cache.Put(ctx, key, res); perr != nil {
			log.Warn().Err(perr).Str("key", key).Msg("cache store failed")
		}
	}

	return res, nil
}

func (p *Planner) collect(ctx context.Context, g *explore.Graph, model *costmodel.Model, req Request) (*Result, error) {
	targets := uniqueStates(req.Targets)
	found := make([][]navigate.Route, len(targets))

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(p.opts.Concurrency)
	for i, t := range targets {
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			routes, err := navigate.Collect(g, model, t, req.Sample, req.Number,
				navigate.WithFlex(*req.Flex))
			if err != nil {
				return fmt.Errorf("planner: target %s: %w", t, err)
			}
			found[i] = routes

			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, routes := range found {
		total += len(routes)
	}
	res := &Result{
		Routes:      make([]navigate.Route, 0, total),
		Targets:     make([]Target, 0, len(targets)),
		Unreachable: []angle.State{},
		Visited:     g.Visited(),
		Edges:       g.EdgeCount(),
	}
	for i, t := range targets {
		sum := Target{Target: t, Routes: len(found[i])}
		if best, ok := g.Best(t); ok {
			sum.Best = &best
		}
		if len(found[i]) == 0 {
			res.Unreachable = append(res.Unreachable, t)
		}
		res.Targets = append(res.Targets, sum)
		res.Routes = append(res.Routes, found[i]...)
	}
	navigate.SortRoutes(res.Routes)

	return res, nil
}

func uniqueStates(list []angle.State) []angle.State {
	seen := make(map[angle.State]bool, len(list))
	out := make([]angle.State, 0, len(list))
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	return out
}
