package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/ChizhovVadim/CounterTM/pkg/common"
	eval "github.com/ChizhovVadim/CounterTM/pkg/eval/material"
	"github.com/ChizhovVadim/CounterTM/pkg/timeman"
)

func newTestEngine(options Options) *Engine {
	return NewEngine(options, timeman.New(nil, nil), eval.NewEvaluationService(), zerolog.Nop())
}

func searchParams(t *testing.T, fen string, limits LimitsType) SearchParams {
	var p, err = NewPositionFromFEN(fen)
	require.NoError(t, err)
	return SearchParams{
		Positions: []Position{p},
		Limits:    limits,
	}
}

func TestMateInOne(t *testing.T) {
	var tests = []struct {
		fen  string
		move string
	}{
		{"6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", "a1a8"},
		{"r5k1/5ppp/8/8/8/8/5PPP/6K1 b - - 0 1", "a8a1"},
	}
	for _, test := range tests {
		var e = newTestEngine(NewOptions())
		var si = e.Search(context.Background(), searchParams(t, test.fen, LimitsType{Depth: 3}))
		require.NotEmpty(t, si.MainLine, test.fen)
		assert.Equal(t, test.move, si.MainLine[0].String(), test.fen)
		assert.Equal(t, 1, si.Score.Mate, test.fen)
	}
}

func TestDepthLimit(t *testing.T) {
	var e = newTestEngine(NewOptions())
	var si = e.Search(context.Background(), searchParams(t, InitialPositionFen, LimitsType{Depth: 3}))
	assert.Equal(t, 3, si.Depth)
	assert.NotEmpty(t, si.MainLine)
	assert.Positive(t, si.Nodes)
}

func TestSingleLegalMove(t *testing.T) {
	var e = newTestEngine(NewOptions())
	var si = e.Search(context.Background(),
		searchParams(t, "k7/8/8/8/8/8/1q6/K7 w - - 0 1", LimitsType{Infinite: true}))
	require.Len(t, si.MainLine, 1)
	assert.Equal(t, "a1b2", si.MainLine[0].String())
	assert.Zero(t, si.Nodes)
}

func TestNodesLimitWithHelperThreads(t *testing.T) {
	var options = NewOptions()
	options.Threads = 2
	var e = newTestEngine(options)
	var si = e.Search(context.Background(), searchParams(t, InitialPositionFen, LimitsType{Nodes: 50_000}))
	assert.GreaterOrEqual(t, si.Nodes, int64(50_000))
	require.NotEmpty(t, si.MainLine)

	var p, _ = NewPositionFromFEN(InitialPositionFen)
	var _, ok = p.MakeMoveLAN(si.MainLine[0].String())
	assert.True(t, ok)
}

func TestStopByContext(t *testing.T) {
	var e = newTestEngine(NewOptions())
	var ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	var si = e.Search(ctx, searchParams(t, InitialPositionFen, LimitsType{Infinite: true}))
	assert.NotEmpty(t, si.MainLine)
}

func TestNodesTimeSpendsGameBudget(t *testing.T) {
	var options = NewOptions()
	options.NodesTime = 1000
	var e = newTestEngine(options)

	var limits LimitsType
	limits.Time[White] = 5000
	var params = searchParams(t, InitialPositionFen, limits)

	var si = e.Search(context.Background(), params)
	assert.True(t, e.clock.UsesNodesTime())
	assert.Positive(t, si.Nodes)
	assert.LessOrEqual(t, si.Nodes, e.clock.Maximum()+nodesBatch)
	assert.Equal(t, int64(5_000_000)-si.Nodes, e.clock.AvailableNodes())
	assert.Equal(t, int64(5000), params.Limits.Time[White], "caller limits are not rewritten")

	var before = e.clock.AvailableNodes()
	si = e.Search(context.Background(), params)
	assert.Equal(t, before-si.Nodes, e.clock.AvailableNodes())

	e.Clear()
	assert.Zero(t, e.clock.AvailableNodes())
}

func searchAsync(e *Engine, ctx context.Context, params SearchParams) <-chan SearchInfo {
	var done = make(chan SearchInfo, 1)
	go func() {
		done <- e.Search(ctx, params)
	}()
	return done
}

func TestPonderHitStartsClock(t *testing.T) {
	var tests = []struct {
		name  string
		delay time.Duration
	}{
		{"before search", -1},
		{"right after start", 0},
		{"during search", 20 * time.Millisecond},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var options = NewOptions()
			options.Ponder = true
			var e = newTestEngine(options)

			var limits = LimitsType{Ponder: true}
			limits.Time[White] = 1000
			var ponderHit = make(chan struct{})
			var params = searchParams(t, InitialPositionFen, limits)
			params.PonderHit = ponderHit

			if test.delay < 0 {
				close(ponderHit)
			}
			var done = searchAsync(e, context.Background(), params)
			if test.delay >= 0 {
				time.Sleep(test.delay)
				close(ponderHit)
			}

			select {
			case si := <-done:
				assert.NotEmpty(t, si.MainLine)
			case <-time.After(10 * time.Second):
				t.Fatal("search did not stop after ponderhit")
			}
		})
	}
}

func TestPonderWaitsForStop(t *testing.T) {
	var e = newTestEngine(NewOptions())
	var ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	// mate in one is found at once but bestmove waits for ponderhit or stop
	var limits = LimitsType{Ponder: true}
	limits.Time[White] = 1000
	var done = searchAsync(e, ctx, searchParams(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", limits))

	select {
	case <-done:
		t.Fatal("ponder search returned before stop")
	case <-time.After(100 * time.Millisecond):
	}
	cancel()
	select {
	case si := <-done:
		require.NotEmpty(t, si.MainLine)
		assert.Equal(t, "a1a8", si.MainLine[0].String())
	case <-time.After(10 * time.Second):
		t.Fatal("search did not stop")
	}
}

func TestNegativeClock(t *testing.T) {
	for _, fen := range []string{InitialPositionFen, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1"} {
		var e = newTestEngine(NewOptions())
		var limits LimitsType
		limits.Time[White] = -50
		limits.Inc[White] = 100
		var done = searchAsync(e, context.Background(), searchParams(t, fen, limits))
		select {
		case si := <-done:
			assert.NotEmpty(t, si.MainLine, fen)
		case <-time.After(5 * time.Second):
			t.Fatalf("search with negative clock did not stop: %v", fen)
		}
	}
}

type brokenEvaluator struct{}

func (brokenEvaluator) Evaluate(p *Position) int {
	panic("evaluator failed")
}

func TestFailingThreadStopsSearch(t *testing.T) {
	var options = NewOptions()
	options.Threads = 2
	var e = NewEngine(options, timeman.New(nil, nil), brokenEvaluator{}, zerolog.Nop())

	var done = searchAsync(e, context.Background(), searchParams(t, InitialPositionFen, LimitsType{Infinite: true}))
	select {
	case si := <-done:
		require.Len(t, si.MainLine, 1, "first legal move is kept")
		assert.Zero(t, si.Depth)
	case <-time.After(5 * time.Second):
		t.Fatal("search did not stop after a thread failed")
	}
}

func TestUciScore(t *testing.T) {
	assert.Equal(t, UciScore{Mate: 1}, toUciScore(winIn(1)))
	assert.Equal(t, UciScore{Mate: 2}, toUciScore(winIn(3)))
	assert.Equal(t, UciScore{Mate: -1}, toUciScore(lossIn(2)))
	assert.Equal(t, UciScore{Centipawns: 35}, toUciScore(35))
}
