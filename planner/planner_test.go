package planner_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/avoid"
	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/costmodel"
	"github.com/katalvlaran/anglepath/metrics"
	"github.com/katalvlaran/anglepath/motion"
	"github.com/katalvlaran/anglepath/planner"
)

// memCache is an in-process planner.Cache counting its calls.
type memCache struct {
	mu   sync.Mutex
	data map[string]*planner.Result
	gets int
	puts int
}

func newMemCache() *memCache { return &memCache{data: map[string]*planner.Result{}} }

func (c *memCache) Get(_ context.Context, key string) (*planner.Result, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	r, ok := c.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := *r

	return &cp, true, nil
}

func (c *memCache) Put(_ context.Context, key string, r *planner.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.data[key] = r

	return nil
}

func basicRequest() planner.Request {
	return planner.Request{
		Groups:  []motion.Group{motion.Basic},
		Starts:  []angle.State{0x0000},
		Targets: []angle.State{0x0E10, 0x0001},
	}
}

// --------------------------------------------------------------------------
// Plan
// --------------------------------------------------------------------------

func TestPlan_RoutesAndUnreachable(t *testing.T) {
	p := planner.New(motion.DefaultTable, costmodel.DefaultTable())
	res, err := p.Plan(context.Background(), basicRequest())
	require.NoError(t, err)

	require.NotEmpty(t, res.Routes)
	first := res.Routes[0]
	assert.Equal(t, cost.MustParse("0.825"), first.Cost)
	assert.Equal(t, angle.State(0x0000), first.Origin)
	assert.Equal(t, angle.State(0x0E10), first.Target)
	assert.Equal(t, []motion.Motion{motion.EssLeft, motion.EssLeft}, first.Motions)
	assert.LessOrEqual(t, len(res.Routes), planner.DefaultNumber)

	// ess steps are multiples of 8, so only every eighth angle exists
	assert.Equal(t, []angle.State{0x0001}, res.Unreachable)
	assert.Equal(t, angle.Count/8, res.Visited)
	assert.GreaterOrEqual(t, res.Edges, res.Visited)

	require.Len(t, res.Targets, 2)
	assert.Equal(t, angle.State(0x0E10), res.Targets[0].Target)
	require.NotNil(t, res.Targets[0].Best)
	assert.Equal(t, cost.MustParse("0.825"), *res.Targets[0].Best)
	assert.Nil(t, res.Targets[1].Best)
	assert.Zero(t, res.Targets[1].Routes)
	assert.False(t, res.Cached)
}

func TestPlan_MergesTargetsSorted(t *testing.T) {
	p := planner.New(nil, costmodel.DefaultTable(), planner.WithConcurrency(2))
	req := planner.Request{
		Groups:  []motion.Group{motion.Basic},
		Starts:  []angle.State{0x0000},
		Targets: []angle.State{0x0E10, 0x0708, 0xF8F8, 0x0708},
		Number:  2,
	}
	res, err := p.Plan(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, res.Targets, 3, "duplicate targets collapse")
	for i := 1; i < len(res.Routes); i++ {
		assert.LessOrEqual(t, res.Routes[i-1].Cost, res.Routes[i].Cost)
	}
	assert.Equal(t, cost.MustParse("0.75"), res.Routes[0].Cost)
	assert.LessOrEqual(t, len(res.Routes), 6)
}

func TestPlan_Validation(t *testing.T) {
	p := planner.New(nil, costmodel.DefaultTable())
	ctx := context.Background()

	req := basicRequest()
	req.Groups = nil
	_, err := p.Plan(ctx, req)
	assert.ErrorIs(t, err, planner.ErrNoGroups)

	req = basicRequest()
	req.Starts = nil
	_, err = p.Plan(ctx, req)
	assert.ErrorIs(t, err, planner.ErrNoStarts)

	req = basicRequest()
	req.Targets = nil
	_, err = p.Plan(ctx, req)
	assert.ErrorIs(t, err, planner.ErrNoTargets)

	req = basicRequest()
	req.Sample = -1
	_, err = p.Plan(ctx, req)
	assert.ErrorIs(t, err, planner.ErrBadRequest)

	req = basicRequest()
	req.Number = math.MaxInt
	_, err = p.Plan(ctx, req)
	assert.ErrorIs(t, err, planner.ErrBadRequest)

	req = basicRequest()
	req.Sample = planner.MaxSample + 1
	_, err = p.Plan(ctx, req)
	assert.ErrorIs(t, err, planner.ErrBadRequest)

	req = basicRequest()
	neg := cost.Millis(-1)
	req.Flex = &neg
	_, err = p.Plan(ctx, req)
	assert.ErrorIs(t, err, planner.ErrBadRequest)

	req = basicRequest()
	req.Avoid = []avoid.Range{{Low: 0x10, High: 0x01}}
	_, err = p.Plan(ctx, req)
	assert.ErrorIs(t, err, avoid.ErrInverted)
}

func TestPlan_LargestSampleAndNumber(t *testing.T) {
	p := planner.New(nil, costmodel.DefaultTable())

	req := basicRequest()
	req.Sample = planner.MaxSample
	req.Number = planner.MaxNumber
	res, err := p.Plan(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Routes)
	assert.Equal(t, cost.MustParse("0.825"), res.Routes[0].Cost)
}

func TestPlan_MissingCost(t *testing.T) {
	costs := costmodel.DefaultTable()
	delete(costs.Base, motion.EssLeft)
	p := planner.New(nil, costs)

	_, err := p.Plan(context.Background(), basicRequest())
	assert.ErrorIs(t, err, costmodel.ErrMissingCost)
}

func TestPlan_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := planner.New(nil, costmodel.DefaultTable())
	_, err := p.Plan(ctx, basicRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

// --------------------------------------------------------------------------
// Cache and metrics
// --------------------------------------------------------------------------

func TestPlan_Cache(t *testing.T) {
	c := newMemCache()
	p := planner.New(nil, costmodel.DefaultTable(), planner.WithCache(c))

	first, err := p.Plan(context.Background(), basicRequest())
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, c.puts)

	second, err := p.Plan(context.Background(), basicRequest())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Routes, second.Routes)
	assert.Equal(t, 2, c.gets)
	assert.Equal(t, 1, c.puts)
}

func TestPlan_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := planner.New(nil, costmodel.DefaultTable(), planner.WithMetrics(metrics.New(reg)))

	_, err := p.Plan(context.Background(), basicRequest())
	require.NoError(t, err)
	_, err = p.Plan(context.Background(), planner.Request{})
	require.Error(t, err)

	n, err := testutil.GatherAndCount(reg, "anglepath_plans_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "ok and error outcomes")

	n, err = testutil.GatherAndCount(reg, "anglepath_angles_visited_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// --------------------------------------------------------------------------
// Key
// --------------------------------------------------------------------------

func TestKey(t *testing.T) {
	p := planner.New(nil, costmodel.DefaultTable())

	explicit := basicRequest()
	explicit.Sample = planner.DefaultSample
	explicit.Number = planner.DefaultNumber
	flex := cost.DefaultFlex
	explicit.Flex = &flex
	assert.Equal(t, p.Key(basicRequest()), p.Key(explicit))

	other := basicRequest()
	other.Targets = []angle.State{0x0E10}
	assert.NotEqual(t, p.Key(basicRequest()), p.Key(other))

	cheaper := costmodel.DefaultTable()
	cheaper.Base[motion.EssLeft] = cost.MustParse("0.5")
	q := planner.New(nil, cheaper)
	assert.NotEqual(t, p.Key(basicRequest()), q.Key(basicRequest()))
}

func TestRequest_WithDefaults(t *testing.T) {
	r := planner.Request{}.WithDefaults()
	assert.Equal(t, planner.DefaultSample, r.Sample)
	assert.Equal(t, planner.DefaultNumber, r.Number)
	require.NotNil(t, r.Flex)
	assert.Equal(t, cost.DefaultFlex, *r.Flex)
}
