package navigate_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/costmodel"
	"github.com/katalvlaran/anglepath/explore"
	"github.com/katalvlaran/anglepath/motion"
	"github.com/katalvlaran/anglepath/navigate"
)

// lineTable moves ess left by +1 and ess right by -1.
var lineTable = motion.TableFunc(func(m motion.Motion, s angle.State) (int, bool) {
	switch m {
	case motion.EssLeft:
		return int(s) + 1, true
	case motion.EssRight:
		return int(s) - 1, true
	}

	return 0, false
})

func build(t testing.TB, table motion.Table, starts []angle.State, groups ...motion.Group) (*explore.Graph, *costmodel.Model) {
	t.Helper()
	m, err := costmodel.New(costmodel.DefaultTable(), groups)
	require.NoError(t, err)
	g, err := explore.Explore(m, table, starts)
	require.NoError(t, err)

	return g, m
}

type found struct {
	origin angle.State
	path   []motion.Motion
}

func all(g *explore.Graph, target angle.State, opts ...navigate.Option) []found {
	var out []found
	for origin, path := range navigate.Paths(g, target, opts...) {
		out = append(out, found{origin, path})
	}

	return out
}

// simulate replays path from origin with table.
func simulate(t testing.TB, table motion.Table, origin angle.State, path []motion.Motion) angle.State {
	t.Helper()
	s := origin
	for _, m := range path {
		to, ok := table.Apply(m, s)
		require.True(t, ok, "%s inapplicable at %s", m, s)
		s = angle.Wrap(to)
	}

	return s
}

// ------------------------------------------------------------------------
// 1. Concrete scenarios
// ------------------------------------------------------------------------

func TestPaths_ChainDiscountScenario(t *testing.T) {
	g, m := build(t, motion.DefaultTable, []angle.State{0x0000}, motion.Basic)

	var first []motion.Motion
	for _, path := range navigate.Paths(g, 0x0E10) {
		first = path
		break
	}
	require.Equal(t, []motion.Motion{motion.EssLeft, motion.EssLeft}, first)

	c, err := navigate.CostOfPath(m, first)
	require.NoError(t, err)
	assert.Equal(t, cost.MustParse("0.825"), c)
}

func TestPaths_CyclesArePruned(t *testing.T) {
	g, _ := build(t, lineTable, []angle.State{0}, motion.Basic)

	got := all(g, 3)
	require.Len(t, got, 1)
	assert.Equal(t, angle.State(0), got[0].origin)
	assert.Equal(t, []motion.Motion{motion.EssLeft, motion.EssLeft, motion.EssLeft}, got[0].path)
}

func TestPaths_TwoStarts(t *testing.T) {
	g, m := build(t, lineTable, []angle.State{0, 6}, motion.Basic)

	got := all(g, 3)
	require.Len(t, got, 2)
	assert.Equal(t, found{0, []motion.Motion{motion.EssLeft, motion.EssLeft, motion.EssLeft}}, got[0])
	assert.Equal(t, found{6, []motion.Motion{motion.EssRight, motion.EssRight, motion.EssRight}}, got[1])

	for _, f := range got {
		c, err := navigate.CostOfPath(m, f.path)
		require.NoError(t, err)
		assert.Equal(t, cost.MustParse("0.9"), c)
	}
}

func TestPaths_TargetIsStart(t *testing.T) {
	g, _ := build(t, lineTable, []angle.State{7}, motion.Basic)

	got := all(g, 7)
	require.Len(t, got, 1)
	assert.Equal(t, angle.State(7), got[0].origin)
	assert.Empty(t, got[0].path)
}

func TestPaths_Unreachable(t *testing.T) {
	g, m := build(t, motion.DefaultTable, []angle.State{0x0000}, motion.Basic)
	assert.Empty(t, all(g, 0x0001))

	routes, err := navigate.Collect(g, m, 0x0001, 35, 4)
	require.NoError(t, err)
	assert.Empty(t, routes)

	assert.Empty(t, all(nil, 0x0001))
}

// ------------------------------------------------------------------------
// 2. Properties over the real catalog
// ------------------------------------------------------------------------

func TestPaths_FirstIsOptimalAndAllWithinFlex(t *testing.T) {
	table := motion.DefaultTable
	g, m := build(t, table, []angle.State{0x8000, 0x4000},
		motion.Basic, motion.TargetEnabled, motion.NoCarry, motion.CUpFrameTurn)

	checked := 0
	// only multiples of 8 are reachable with these groups
	for i := 0; i < angle.Count; i += 8 * 131 {
		target := angle.State(i)
		best, ok := g.Best(target)
		if !ok {
			continue
		}
		checked++

		n := 0
		for origin, path := range navigate.Paths(g, target) {
			c, err := navigate.CostOfPath(m, path)
			require.NoError(t, err)
			if n == 0 {
				assert.Equal(t, best, c, "first path to %s must be optimal", target)
			}
			assert.LessOrEqual(t, c, best+cost.DefaultFlex, "path to %s over budget", target)
			assert.True(t, g.Node(origin).Start())
			assert.Equal(t, target, simulate(t, table, origin, path))

			n++
			if n == 50 {
				break
			}
		}
		assert.Positive(t, n)
	}
	assert.Greater(t, checked, 20)
}

// forkTable reaches 1 from 0 either by ess left or by two ess rights via 5;
// only ess left continues from 1 to 2.
var forkTable = motion.TableFunc(func(m motion.Motion, s angle.State) (int, bool) {
	switch {
	case m == motion.EssLeft && (s == 0 || s == 1):
		return int(s) + 1, true
	case m == motion.EssRight && s == 0:
		return 5, true
	case m == motion.EssRight && s == 5:
		return 1, true
	}

	return 0, false
})

func TestPaths_ChainPricedByActualPredecessor(t *testing.T) {
	g, m := build(t, forkTable, []angle.State{0}, motion.Basic)

	// The only edge into 2 was priced as a discounted second ess left.
	e, ok := g.Node(2).Edge(motion.EssLeft)
	require.True(t, ok)
	assert.Equal(t, motion.EssLeft, e.Prev)
	assert.Equal(t, cost.MustParse("0.825"), e.Cost)

	// After two ess rights the same ess left costs full price: 1.575.
	detour := []motion.Motion{motion.EssRight, motion.EssRight, motion.EssLeft}
	c, err := navigate.CostOfPath(m, detour)
	require.NoError(t, err)
	assert.Equal(t, cost.MustParse("1.575"), c)

	tight := all(g, 2, navigate.WithFlex(cost.Millis(700)))
	require.Len(t, tight, 1)
	assert.Equal(t, []motion.Motion{motion.EssLeft, motion.EssLeft}, tight[0].path)

	loose := all(g, 2, navigate.WithFlex(cost.Units(1)))
	require.Len(t, loose, 2)
	assert.Equal(t, detour, loose[1].path)

	routes, err := navigate.Collect(g, m, 2, 35, 4, navigate.WithFlex(cost.Millis(700)))
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, cost.MustParse("0.825"), routes[0].Cost)
}

func TestPaths_TightFlexOverRealCatalog(t *testing.T) {
	g, m := build(t, motion.DefaultTable, []angle.State{0x0000},
		motion.Basic, motion.TargetEnabled, motion.NoCarry, motion.CUpFrameTurn)
	flex := cost.Millis(700)

	paths := 0
	for i := 0; i < angle.Count; i += 8 * 293 {
		target := angle.State(i)
		best, ok := g.Best(target)
		if !ok {
			continue
		}

		n := 0
		for _, path := range navigate.Paths(g, target, navigate.WithFlex(flex)) {
			c, err := navigate.CostOfPath(m, path)
			require.NoError(t, err)
			if n == 0 {
				assert.Equal(t, best, c, "first path to %s must be optimal", target)
			}
			require.LessOrEqual(t, c, best+flex, "path to %s over budget: %v", target, path)

			n++
			if n == 200 {
				break
			}
		}
		paths += n
	}
	assert.Greater(t, paths, 0)
}

func TestPaths_ZeroFlexYieldsOnlyOptimal(t *testing.T) {
	g, m := build(t, motion.DefaultTable, []angle.State{0x0000},
		motion.Basic, motion.TargetEnabled)

	target := angle.State(0x4E10)
	best, ok := g.Best(target)
	require.True(t, ok)

	got := all(g, target, navigate.WithFlex(0))
	require.NotEmpty(t, got)
	for _, f := range got {
		c, err := navigate.CostOfPath(m, f.path)
		require.NoError(t, err)
		assert.Equal(t, best, c)
	}
}

func TestPaths_Restartable(t *testing.T) {
	g, _ := build(t, motion.DefaultTable, []angle.State{0x8000},
		motion.Basic, motion.TargetEnabled, motion.NoCarry)
	seq := navigate.Paths(g, 0x1234&0xFFF8)

	take := func() []found {
		var out []found
		for origin, path := range seq {
			out = append(out, found{origin, path})
			if len(out) == 5 {
				break
			}
		}
		return out
	}
	a, b := take(), take()
	require.NotEmpty(t, a)
	assert.Equal(t, a, b)
}

func TestPaths_MaxDepth(t *testing.T) {
	g, _ := build(t, lineTable, []angle.State{0}, motion.Basic)
	assert.Empty(t, all(g, 3, navigate.WithMaxDepth(2)))
	assert.Len(t, all(g, 3, navigate.WithMaxDepth(3)), 1)
	assert.Len(t, all(g, 3, navigate.WithMaxDepth(-1)), 1)
}

func TestWithFlex_PanicsOnNegative(t *testing.T) {
	assert.Panics(t, func() { navigate.WithFlex(-1) })
}

// ------------------------------------------------------------------------
// 3. Collect and CostOfPath
// ------------------------------------------------------------------------

func TestCollect(t *testing.T) {
	g, m := build(t, lineTable, []angle.State{0, 6}, motion.Basic)

	routes, err := navigate.Collect(g, m, 3, 35, 1)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, angle.State(0), routes[0].Origin)
	assert.Equal(t, angle.State(3), routes[0].Target)

	routes, err = navigate.Collect(g, m, 3, 1, 4)
	require.NoError(t, err)
	assert.Len(t, routes, 1)
}

func TestCollect_SortedAscending(t *testing.T) {
	g, m := build(t, motion.DefaultTable, []angle.State{0x8000, 0x0000},
		motion.Basic, motion.TargetEnabled, motion.NoCarry)

	best, ok := g.Best(0x5E18)
	require.True(t, ok)

	routes, err := navigate.Collect(g, m, 0x5E18, 35, 10)
	require.NoError(t, err)
	require.NotEmpty(t, routes)
	assert.Equal(t, best, routes[0].Cost)
	for i := 1; i < len(routes); i++ {
		assert.LessOrEqual(t, routes[i-1].Cost, routes[i].Cost)
	}
}

func TestCollect_Errors(t *testing.T) {
	g, m := build(t, lineTable, []angle.State{0}, motion.Basic)

	_, err := navigate.Collect(nil, m, 3, 1, 1)
	assert.ErrorIs(t, err, navigate.ErrNilGraph)
	_, err = navigate.Collect(g, nil, 3, 1, 1)
	assert.ErrorIs(t, err, navigate.ErrNilModel)
	_, err = navigate.Collect(g, m, 3, 0, 1)
	assert.ErrorIs(t, err, navigate.ErrBadSample)
	_, err = navigate.Collect(g, m, 3, 1, 0)
	assert.ErrorIs(t, err, navigate.ErrBadSample)
}

func TestCostOfPath(t *testing.T) {
	m, err := costmodel.New(costmodel.DefaultTable(), []motion.Group{motion.Basic, motion.CUpFrameTurn})
	require.NoError(t, err)

	c, err := navigate.CostOfPath(m, nil)
	require.NoError(t, err)
	assert.Equal(t, cost.Zero, c)

	c, err = navigate.CostOfPath(m, []motion.Motion{
		motion.CUpFrameTurnLeft, motion.CUpFrameTurnLeft, motion.EssLeft, motion.EssLeft, motion.EssLeft,
	})
	require.NoError(t, err)
	// 1.25 + 0.25 + 0.75 + 0.075 + 0.075
	assert.Equal(t, cost.MustParse("2.4"), c)

	_, err = navigate.CostOfPath(m, []motion.Motion{motion.TurnLeft})
	assert.ErrorIs(t, err, navigate.ErrStepNotAllowed)
	_, err = navigate.CostOfPath(nil, nil)
	assert.ErrorIs(t, err, navigate.ErrNilModel)
}

func TestSortRoutes(t *testing.T) {
	routes := []navigate.Route{
		{Cost: cost.Units(2), Origin: 1},
		{Cost: cost.Units(1), Origin: 5, Motions: []motion.Motion{motion.EssRight}},
		{Cost: cost.Units(1), Origin: 5, Motions: []motion.Motion{motion.EssLeft}},
		{Cost: cost.Units(1), Origin: 2},
	}
	navigate.SortRoutes(routes)

	assert.Equal(t, angle.State(2), routes[0].Origin)
	assert.Equal(t, []motion.Motion{motion.EssLeft}, routes[1].Motions)
	assert.Equal(t, []motion.Motion{motion.EssRight}, routes[2].Motions)
	assert.Equal(t, cost.Units(2), routes[3].Cost)
}

func TestCollect_LargeSample(t *testing.T) {
	g, m := build(t, lineTable, []angle.State{0}, motion.Basic)

	routes, err := navigate.Collect(g, m, 3, math.MaxInt, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, routes, 1)
}
