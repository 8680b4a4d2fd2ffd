package navigate

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/costmodel"
	"github.com/katalvlaran/anglepath/explore"
	"github.com/katalvlaran/anglepath/motion"
)

// CostOfPath re-derives the cost of path from the model, starting after
// motion.None. The sum is exact.
func CostOfPath(model *costmodel.Model, path []motion.Motion) (cost.Cost, error) {
	if model == nil {
		return 0, ErrNilModel
	}

	total := cost.Zero
	prev := motion.None
	for i, m := range path {
		c, ok := model.Cost(prev, m)
		if !ok {
			return 0, fmt.Errorf("%w: step %d %s after %s", ErrStepNotAllowed, i, m, prev)
		}
		total += c
		prev = m
	}

	return total, nil
}

// Collect samples the first sample paths to target and returns the number
// cheapest of them, sorted by cost, then origin, then motion names. The
// cheapest returned route is always an optimal one. An unreachable target
// yields an empty slice and no error.
func Collect(g *explore.Graph, model *costmodel.Model, target angle.State, sample, number int, opts ...Option) ([]Route, error) {
	switch {
	case g == nil:
		return nil, ErrNilGraph
	case model == nil:
		return nil, ErrNilModel
	case sample <= 0 || number <= 0:
		return nil, ErrBadSample
	}

	routes := make([]Route, 0, min(sample, 64))
	for origin, path := range Paths(g, target, opts...) {
		c, err := CostOfPath(model, path)
		if err != nil {
			return nil, err
		}
		routes = append(routes, Route{Cost: c, Origin: origin, Target: target, Motions: path})
		if len(routes) == sample {
			break
		}
	}

	SortRoutes(routes)
	if len(routes) > number {
		routes = routes[:number]
	}

	return routes, nil
}

// SortRoutes orders routes by cost, origin, target and finally by the motion
// names of their paths, so equal-cost routes come out in a stable order.
func SortRoutes(routes []Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		a, b := routes[i], routes[j]
		switch {
		case a.Cost != b.Cost:
			return a.Cost < b.Cost
		case a.Origin != b.Origin:
			return a.Origin < b.Origin
		case a.Target != b.Target:
			return a.Target < b.Target
		}

		return lessPath(a.Motions, b.Motions)
	})
}

func lessPath(a, b []motion.Motion) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i].Name() < b[i].Name()
		}
	}

	return len(a) < len(b)
}
