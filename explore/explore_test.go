package explore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/avoid"
	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/costmodel"
	"github.com/katalvlaran/anglepath/explore"
	"github.com/katalvlaran/anglepath/motion"
)

func mustModel(t testing.TB, groups ...motion.Group) *costmodel.Model {
	t.Helper()
	m, err := costmodel.New(costmodel.DefaultTable(), groups)
	require.NoError(t, err)

	return m
}

// stepTable moves ess left by +1 and ess right by +2, except that nothing
// may land on blocked.
func stepTable(blocked angle.State) motion.Table {
	return motion.TableFunc(func(m motion.Motion, s angle.State) (int, bool) {
		var to int
		switch m {
		case motion.EssLeft:
			to = int(s) + 1
		case motion.EssRight:
			to = int(s) + 2
		default:
			return 0, false
		}
		if angle.Wrap(to) == blocked {
			return 0, false
		}

		return to, true
	})
}

// ------------------------------------------------------------------------
// 1. Validation
// ------------------------------------------------------------------------

func TestExplore_Validation(t *testing.T) {
	m := mustModel(t, motion.Basic)

	_, err := explore.Explore(nil, motion.DefaultTable, []angle.State{0})
	assert.ErrorIs(t, err, explore.ErrNilModel)

	_, err = explore.Explore(m, nil, []angle.State{0})
	assert.ErrorIs(t, err, explore.ErrNilTable)

	_, err = explore.Explore(m, motion.DefaultTable, nil)
	assert.ErrorIs(t, err, explore.ErrNoStarts)

	_, err = explore.Explore(m, motion.DefaultTable, []angle.State{0}, explore.WithFlex(-1))
	assert.ErrorIs(t, err, explore.ErrBadFlex)
}

func TestExplore_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := explore.Explore(mustModel(t, motion.Basic), motion.DefaultTable, []angle.State{0},
		explore.WithContext(ctx), explore.WithCheckEvery(1))
	assert.ErrorIs(t, err, context.Canceled)
}

// ------------------------------------------------------------------------
// 2. Seeding and chained costs
// ------------------------------------------------------------------------

func TestExplore_StartsAreTerminators(t *testing.T) {
	m := mustModel(t, motion.Basic)
	g, err := explore.Explore(m, motion.DefaultTable,
		[]angle.State{0x0000, 0x8000, 0x8000})
	require.NoError(t, err)
	assert.Same(t, m, g.Model())

	for _, s := range []angle.State{0x0000, 0x8000} {
		n := g.Node(s)
		require.True(t, n.Start())
		best, ok := n.Best()
		require.True(t, ok)
		assert.Equal(t, cost.Zero, best)
		e, ok := n.Edge(motion.None)
		require.True(t, ok)
		assert.Equal(t, cost.Zero, e.Cost)
	}
	assert.False(t, g.Node(0x0708).Start())
}

func TestExplore_ChainDiscount(t *testing.T) {
	g, err := explore.Explore(mustModel(t, motion.Basic), motion.DefaultTable, []angle.State{0x0000})
	require.NoError(t, err)

	once, ok := g.Best(0x0708)
	require.True(t, ok)
	assert.Equal(t, cost.MustParse("0.75"), once)

	twice, ok := g.Best(0x0E10)
	require.True(t, ok)
	assert.Equal(t, cost.MustParse("0.825"), twice)

	e, ok := g.Node(0x0E10).Edge(motion.EssLeft)
	require.True(t, ok)
	assert.Equal(t, angle.State(0x0708), e.From)
}

// ------------------------------------------------------------------------
// 3. Graph invariants
// ------------------------------------------------------------------------

func TestExplore_BestIsMinimumAndEdgesWithinFlex(t *testing.T) {
	g, err := explore.Explore(mustModel(t, motion.Basic, motion.TargetEnabled, motion.NoCarry),
		motion.DefaultTable, []angle.State{0x8000})
	require.NoError(t, err)

	visited := 0
	for i := 0; i < angle.Count; i++ {
		n := g.Node(angle.State(i))
		best, ok := n.Best()
		if !ok {
			assert.Zero(t, n.Len())
			continue
		}
		visited++

		edges := n.Edges()
		require.NotEmpty(t, edges)
		assert.Equal(t, best, edges[0].Cost, "best must equal the cheapest edge at %s", angle.State(i))

		seen := map[motion.Motion]bool{}
		for _, e := range edges {
			assert.LessOrEqual(t, e.Cost, best+g.Flex())
			assert.False(t, seen[e.Motion], "two edges via %s", e.Motion)
			seen[e.Motion] = true
		}
	}
	assert.Equal(t, visited, g.Visited())
}

func TestExplore_Idempotent(t *testing.T) {
	m := mustModel(t, motion.Basic, motion.TargetEnabled)
	starts := []angle.State{0x0000, 0xC000}

	a, err := explore.Explore(m, motion.DefaultTable, starts)
	require.NoError(t, err)
	b, err := explore.Explore(m, motion.DefaultTable, starts)
	require.NoError(t, err)

	assert.Equal(t, a.Visited(), b.Visited())
	assert.Equal(t, a.EdgeCount(), b.EdgeCount())
	for i := 0; i < angle.Count; i++ {
		s := angle.State(i)
		assert.Equal(t, a.Node(s).Edges(), b.Node(s).Edges())
	}
}

func TestExplore_ForbiddenRanges(t *testing.T) {
	idx, err := avoid.NewIndex([]avoid.Range{{Low: 0x0000, High: 0x7FFF}})
	require.NoError(t, err)

	g, err := explore.Explore(mustModel(t, motion.Basic, motion.TargetEnabled, motion.ShieldCorners),
		motion.DefaultTable, []angle.State{0x0000}, explore.WithForbidden(idx))
	require.NoError(t, err)

	locked := 0
	for i := 0; i < angle.Count; i++ {
		for _, e := range g.Node(angle.State(i)).Edges() {
			if e.Motion.TargetLock() {
				locked++
				assert.False(t, idx.Contains(e.From), "%s out of forbidden %s", e.Motion, e.From)
			}
		}
	}
	assert.Positive(t, locked, "target-lock motions are still used outside the range")
}

func TestExplore_EarlyTerminationVisitsEverything(t *testing.T) {
	g, err := explore.Explore(mustModel(t, motion.Basic, motion.Biggoron),
		motion.DefaultTable, []angle.State{0x0000})
	require.NoError(t, err)
	assert.Equal(t, angle.Count, g.Visited())
}

// ------------------------------------------------------------------------
// 4. Reachability
// ------------------------------------------------------------------------

func TestExplore_Unreachable(t *testing.T) {
	// ±0x0708 only reaches multiples of 8
	g, err := explore.Explore(mustModel(t, motion.Basic), motion.DefaultTable, []angle.State{0x0000})
	require.NoError(t, err)
	assert.Equal(t, angle.Count/8, g.Visited())
	assert.False(t, g.Reachable(0x0001))

	// an angle no transform leads into
	g, err = explore.Explore(mustModel(t, motion.Basic), stepTable(5), []angle.State{0})
	require.NoError(t, err)
	assert.False(t, g.Reachable(5))
	assert.True(t, g.Reachable(6))
}

// ------------------------------------------------------------------------
// 5. Observer
// ------------------------------------------------------------------------

type countingObserver struct {
	explore.NopObserver
	visited, admitted, popped int
	rejected                  map[explore.Reason]int
}

func (c *countingObserver) Visited(angle.State, cost.Cost)     { c.visited++ }
func (c *countingObserver) Admitted(explore.Edge, angle.State) { c.admitted++ }
func (c *countingObserver) Popped(cost.Cost, int)              { c.popped++ }
func (c *countingObserver) Rejected(_ explore.Edge, _ angle.State, why explore.Reason) {
	c.rejected[why]++
}

func TestExplore_Observer(t *testing.T) {
	idx, err := avoid.NewIndex([]avoid.Range{{Low: 0x0000, High: 0x0FFF}})
	require.NoError(t, err)

	obs := &countingObserver{rejected: map[explore.Reason]int{}}
	g, err := explore.Explore(mustModel(t, motion.Basic, motion.TargetEnabled), motion.DefaultTable,
		[]angle.State{0x0000}, explore.WithForbidden(idx), explore.WithObserver(explore.Observers(obs, nil)))
	require.NoError(t, err)

	assert.Equal(t, g.Visited(), obs.visited)
	// every stored edge except the seeded terminator was announced at least
	// once; replacements via the same motion are announced again
	assert.GreaterOrEqual(t, obs.admitted, g.EdgeCount()-1)
	assert.Positive(t, obs.popped)
	assert.Positive(t, obs.rejected[explore.ReasonForbidden])
	assert.Positive(t, obs.rejected[explore.ReasonNotCheaper]+obs.rejected[explore.ReasonOverFlex])
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "forbidden", explore.ReasonForbidden.String())
	assert.Equal(t, "over_flex", explore.ReasonOverFlex.String())
	assert.Equal(t, "not_cheaper", explore.ReasonNotCheaper.String())
	assert.Equal(t, "unknown", explore.Reason(42).String())
}
