package timeman

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChizhovVadim/CounterTM/pkg/common"
	"github.com/ChizhovVadim/CounterTM/pkg/tune"
)

func suddenDeath(us common.Color, ms, inc int64) *common.LimitsType {
	var limits = &common.LimitsType{StartTime: time.Now()}
	limits.Time[us] = ms
	limits.Inc[us] = inc
	return limits
}

func TestZeroTimeKeepsBounds(t *testing.T) {
	var m = New(nil, nil)
	var limits = suddenDeath(common.Black, 0, 0)
	limits.StartTime = time.Now().Add(-time.Second)
	limits.Time[common.White] = 60000

	m.Init(limits, common.Black, 1, DefaultOptions(), nil)
	assert.Zero(t, m.Optimum())
	assert.Zero(t, m.Maximum())
	assert.Equal(t, limits.StartTime, m.start)

	m.Init(suddenDeath(common.White, 60000, 0), common.White, 0, DefaultOptions(), nil)
	var opt, max = m.Optimum(), m.Maximum()
	require.NotZero(t, opt)

	var infinite = &common.LimitsType{StartTime: time.Now(), Infinite: true}
	m.Init(infinite, common.White, 2, DefaultOptions(), nil)
	assert.Equal(t, opt, m.Optimum())
	assert.Equal(t, max, m.Maximum())
	assert.Equal(t, infinite.StartTime, m.start)
}

func TestNegativeClock(t *testing.T) {
	for _, inc := range []int64{0, 100} {
		var m = New(nil, nil)
		var limits = suddenDeath(common.White, -50, inc)
		m.Init(limits, common.White, 40, DefaultOptions(), nil)

		assert.Equal(t, int64(1), limits.Time[common.White])
		assert.Zero(t, m.Optimum())
		assert.LessOrEqual(t, m.Maximum(), int64(0))
		assert.Greater(t, m.Maximum(), int64(-100))
	}
}

func TestSuddenDeathScenario(t *testing.T) {
	var m = New(nil, nil)
	var limits = suddenDeath(common.White, 60000, 0)
	m.Init(limits, common.White, 0, Options{MoveOverhead: 10}, nil)

	assert.InEpsilon(t, 1083, m.Optimum(), 0.02)
	assert.InEpsilon(t, 7181, m.Maximum(), 0.02)
	assert.False(t, m.UsesNodesTime())
	assert.Equal(t, int64(60000), limits.Time[common.White], "wall clock limits are not rewritten")
}

func TestMovesToGoScenario(t *testing.T) {
	var m = New(nil, nil)
	var limits = suddenDeath(common.Black, 10000, 100)
	limits.MovesToGo = 5
	m.Init(limits, common.Black, 10, Options{MoveOverhead: 10}, nil)

	assert.InEpsilon(t, 1995, m.Optimum(), 0.02)
	assert.InEpsilon(t, 4079, m.Maximum(), 0.02)
}

func TestBoundsOrdering(t *testing.T) {
	var opts = Options{MoveOverhead: 30}
	for _, clock := range []int64{1000, 3000, 10000, 60000, 180000, 900000, 5400000} {
		for _, inc := range []int64{0, 100, 1000, 30000} {
			for _, movesToGo := range []int{0, 1, 5, 40, 80} {
				for _, ply := range []int{0, 1, 20, 81, 200, 400} {
					var m = New(nil, nil)
					var limits = suddenDeath(common.White, clock, inc)
					limits.MovesToGo = movesToGo
					m.Init(limits, common.White, ply, opts, nil)

					var ceiling = int64(0.825*float64(clock)) - int64(opts.MoveOverhead)
					// the ceiling may cut below the optimum with one or two moves to go
					if m.Maximum() > ceiling-10 || m.Maximum() < common.Min(m.Optimum(), ceiling)-10 ||
						m.Optimum() < 0 {
						t.Error(clock, inc, movesToGo, ply, m.Optimum(), m.Maximum())
					}
				}
			}
		}
	}
}

func TestHorizonClamp(t *testing.T) {
	var fixed = FixedHorizon(MaxHorizon)

	assert.Equal(t, 50, movesHorizon(fixed, 0, 0, 60000))
	assert.Equal(t, 50, movesHorizon(fixed, 80, 0, 60000))
	assert.Equal(t, 7, movesHorizon(fixed, 7, 0, 60000))

	// under a second the horizon shrinks to 5% of the remaining milliseconds
	assert.Equal(t, 25, movesHorizon(fixed, 0, 0, 500))
	assert.Equal(t, 49, movesHorizon(fixed, 0, 0, 999))
	assert.Equal(t, 0, movesHorizon(fixed, 0, 0, 19))
	assert.Equal(t, 10, movesHorizon(fixed, 10, 0, 999), "small explicit horizon is not clamped")
	assert.Equal(t, 5, movesHorizon(fixed, 40, 0, 100))

	for timeLeft := int64(1); timeLeft < 3000; timeLeft += 7 {
		for _, movesToGo := range []int{0, 3, 50, 99} {
			var mtg = movesHorizon(fixed, movesToGo, 30, timeLeft)
			if mtg > MaxHorizon {
				t.Error(timeLeft, movesToGo, mtg)
			}
			if timeLeft < 1000 && float64(mtg) > float64(timeLeft)*0.05 &&
				!(movesToGo > 0 && float64(movesToGo)/float64(timeLeft) <= 0.05) {
				t.Error(timeLeft, movesToGo, mtg)
			}
		}
	}
}

func TestDecileHorizon(t *testing.T) {
	var table = tune.NewTable()
	var h = NewDecileHorizon(table)
	for i := 1; i <= 15; i++ {
		require.NoError(t, table.Set(paramName(i), 10+i))
	}

	var tests = []struct {
		moveNumber int
		expected   int
	}{
		{0, 50},
		{1, 11},
		{10, 11},
		{11, 12},
		{75, 18},
		{141, 25},
		{150, 25},
		{151, 50},
		{400, 50},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, h.Estimate(test.moveNumber), "move %v", test.moveNumber)
	}

	assert.Equal(t, 0, moveNumber(0))
	assert.Equal(t, 1, moveNumber(1))
	assert.Equal(t, 1, moveNumber(2))
	assert.Equal(t, 2, moveNumber(3))
}

func TestDecileHorizonDefaultsMatchFixed(t *testing.T) {
	var decile = New(NewDecileHorizon(tune.NewTable()), nil)
	var fixed = New(FixedHorizon(MaxHorizon), nil)
	for _, ply := range []int{0, 1, 17, 100, 299, 301} {
		decile.Init(suddenDeath(common.White, 120000, 1000), common.White, ply, DefaultOptions(), nil)
		fixed.Init(suddenDeath(common.White, 120000, 1000), common.White, ply, DefaultOptions(), nil)
		assert.Equal(t, fixed.Optimum(), decile.Optimum(), "ply %v", ply)
		assert.Equal(t, fixed.Maximum(), decile.Maximum(), "ply %v", ply)
	}
}

func TestPonderExtension(t *testing.T) {
	for _, clock := range []int64{2000, 60000, 777777} {
		for _, ply := range []int{0, 33, 120} {
			var plain, ponder = New(nil, nil), New(nil, nil)
			var opts = DefaultOptions()
			plain.Init(suddenDeath(common.White, clock, 500), common.White, ply, opts, nil)
			opts.Ponder = true
			ponder.Init(suddenDeath(common.White, clock, 500), common.White, ply, opts, nil)

			var base = plain.Optimum()
			assert.Equal(t, base+base/4, ponder.Optimum())
			assert.Equal(t, plain.Maximum(), ponder.Maximum())
		}
	}
}

func TestNodesTimeScenario(t *testing.T) {
	var m = New(nil, nil)
	var opts = Options{MoveOverhead: 10, NodesTime: 1000}
	var limits = suddenDeath(common.White, 5000, 100)
	limits.StartTime = time.Now().Add(-time.Hour)

	m.Init(limits, common.White, 0, opts, nil)
	assert.True(t, m.UsesNodesTime())
	assert.Equal(t, int64(5_000_000), m.AvailableNodes())
	assert.Equal(t, int64(5_000_000), limits.Time[common.White])
	assert.Equal(t, int64(100_000), limits.Inc[common.White])
	assert.Equal(t, int64(1000), limits.NodesTime)
	assert.Equal(t, int64(123456), m.Elapsed(123456))
	assert.Less(t, m.Optimum(), m.Maximum())

	// the budget is captured once per game
	var next = suddenDeath(common.White, 3000, 100)
	m.Init(next, common.White, 2, opts, nil)
	assert.Equal(t, int64(5_000_000), m.AvailableNodes())
	assert.Equal(t, int64(5_000_000), next.Time[common.White])
	assert.Equal(t, int64(123456), m.Elapsed(123456))

	m.AdvanceNodesTime(100_000 - 400_000)
	assert.Equal(t, int64(4_700_000), m.AvailableNodes())
	next = suddenDeath(common.White, 3000, 100)
	m.Init(next, common.White, 4, opts, nil)
	assert.Equal(t, int64(4_700_000), next.Time[common.White])

	// a new game captures a fresh budget
	m.Clear()
	next = suddenDeath(common.White, 2000, 0)
	m.Init(next, common.White, 0, opts, nil)
	assert.Equal(t, int64(2_000_000), m.AvailableNodes())
}

func TestNodesTimeExhausted(t *testing.T) {
	var m = New(nil, nil)
	var opts = Options{NodesTime: 10}
	m.Init(suddenDeath(common.White, 100, 0), common.White, 0, opts, nil)
	m.AdvanceNodesTime(-m.AvailableNodes() - 500)

	m.Init(suddenDeath(common.White, 100, 0), common.White, 2, opts, nil)
	assert.Zero(t, m.Optimum())
	assert.Zero(t, m.Maximum())
}

func TestAdvanceNodesTimeRequiresNodesTime(t *testing.T) {
	var m = New(nil, nil)
	assert.Panics(t, func() { m.AdvanceNodesTime(1) })

	m.Init(suddenDeath(common.White, 60000, 0), common.White, 0, DefaultOptions(), nil)
	assert.Panics(t, func() { m.AdvanceNodesTime(1) })
}

func TestElapsedWallClock(t *testing.T) {
	var m = New(nil, nil)
	var limits = suddenDeath(common.White, 60000, 0)
	limits.StartTime = time.Now().Add(-2 * time.Second)
	m.Init(limits, common.White, 0, DefaultOptions(), nil)

	var elapsed = m.Elapsed(1)
	assert.GreaterOrEqual(t, elapsed, int64(2000))
	assert.Less(t, elapsed, int64(60000))
}

type constEval int

func (e constEval) Evaluate(p *common.Position) int {
	return int(e)
}

func TestEvalBias(t *testing.T) {
	var p = &common.Position{}
	var plain = New(nil, nil)
	plain.Init(suddenDeath(common.White, 60000, 0), common.White, 0, Options{MoveOverhead: 10}, p)
	var base = float64(plain.Optimum())

	var optimum = func(eval int, movesToGo int, p *common.Position, extra int) int64 {
		var table = tune.NewTable()
		var bias = NewEvalBias(table, constEval(eval))
		if extra != 0 {
			require.NoError(t, table.Set("eval_extra", extra))
		}
		var m = New(nil, bias)
		var limits = suddenDeath(common.White, 60000, 0)
		limits.MovesToGo = movesToGo
		m.Init(limits, common.White, 0, Options{MoveOverhead: 10}, p)
		return m.Optimum()
	}

	assert.InDelta(t, base*1.1, float64(optimum(-50, 0, p, 0)), 2, "worse")
	assert.InDelta(t, base*1.5, float64(optimum(-50, 0, p, 150)), 2, "worse, eval_extra 150")
	assert.Equal(t, plain.Optimum(), optimum(0, 0, p, 0), "equal")
	assert.Equal(t, plain.Optimum(), optimum(300, 0, p, 0), "better")
	assert.Equal(t, plain.Optimum(), optimum(-50, 0, nil, 0), "no position")

	var mtg = New(nil, nil)
	var limits = suddenDeath(common.White, 60000, 0)
	limits.MovesToGo = 20
	mtg.Init(limits, common.White, 0, Options{MoveOverhead: 10}, p)
	assert.Equal(t, mtg.Optimum(), optimum(-50, 20, p, 0), "moves to go ignores the bias")
}

func paramName(i int) string {
	return fmt.Sprintf("mtg_%v", i)
}
