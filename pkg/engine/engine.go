package engine

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	. "github.com/ChizhovVadim/CounterTM/pkg/common"
	"github.com/ChizhovVadim/CounterTM/pkg/timeman"
)

const maxMoves = 256

type Engine struct {
	Options     Options
	evaluator   Evaluator
	clock       *timeman.Manager
	timeManager *timeManager
	transTable  *transTable
	threads     []thread
	progress    func(SearchInfo)
	mainLine    mainLine
	start       time.Time
	nodes       atomic.Int64
	logger      zerolog.Logger
}

type thread struct {
	engine    *Engine
	nodes     int64
	rootDepth int
	stack     [stackSize]struct {
		position Position
		moveList [maxMoves]orderedMove
		pv       pv
		killer1  Move
		killer2  Move
	}
}

type pv struct {
	items [stackSize]Move
	size  int
}

type mainLine struct {
	moves []Move
	score int
	depth int
	nodes int64
}

type Evaluator interface {
	Evaluate(p *Position) int
}

// NewEngine takes ownership of clock; it is cleared on every new game.
func NewEngine(options Options, clock *timeman.Manager, evaluator Evaluator, logger zerolog.Logger) *Engine {
	return &Engine{
		Options:   options,
		evaluator: evaluator,
		clock:     clock,
		logger:    logger,
	}
}

func (e *Engine) Prepare() {
	if e.transTable == nil || e.transTable.Size() != e.Options.Hash {
		if e.transTable != nil {
			e.transTable = nil
			runtime.GC()
		}
		e.transTable = newTransTable(e.Options.Hash)
	}
	if len(e.threads) != e.Options.Threads {
		e.threads = make([]thread, e.Options.Threads)
		for i := range e.threads {
			e.threads[i].engine = e
		}
	}
}

// Search thinks about the last position. Limits are copied; in nodes as time
// mode the copy is rewritten in node units by the clock.
func (e *Engine) Search(ctx context.Context, searchParams SearchParams) SearchInfo {
	var limits = searchParams.Limits
	if limits.StartTime.IsZero() {
		limits.StartTime = time.Now()
	}
	e.start = limits.StartTime
	e.Prepare()

	var p = &searchParams.Positions[len(searchParams.Positions)-1]
	var us = p.SideToMove()
	// a late GUI may report a negative clock
	for c := range limits.Time {
		if limits.Time[c] < 0 {
			limits.Time[c] = 1
		}
	}
	var useClock = limits.Time[us] > 0
	e.clock.Init(&limits, us, p.GamePly(), e.Options.timeOptions(), p)
	if useClock {
		e.logger.Debug().
			Str("side", us.String()).
			Int("ply", p.GamePly()).
			Int64("time", limits.Time[us]).
			Int64("inc", limits.Inc[us]).
			Int("movestogo", limits.MovesToGo).
			Int64("optimum", e.clock.Optimum()).
			Int64("maximum", e.clock.Maximum()).
			Bool("nodestime", e.clock.UsesNodesTime()).
			Msg("time budget")
	}

	var tm = newTimeManager(ctx, limits, searchParams.PonderHit, e.clock, useClock)
	e.timeManager = tm
	defer tm.Close()

	e.transTable.NewSearch()
	e.nodes.Store(0)
	e.progress = searchParams.Progress
	e.mainLine = mainLine{}
	lazySmp(e, p)
	tm.waitPonder()

	var result = e.currentSearchResult()
	if limits.NodesTime > 0 {
		e.clock.AdvanceNodesTime(limits.Inc[us] - result.Nodes)
	}
	return result
}

// Clear starts a new game.
func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
	if c, ok := e.evaluator.(interface{ Clear() }); ok {
		c.Clear()
	}
	e.clock.Clear()
}

func (e *Engine) currentSearchResult() SearchInfo {
	return SearchInfo{
		Depth:    e.mainLine.depth,
		MainLine: e.mainLine.moves,
		Score:    toUciScore(e.mainLine.score),
		Hashfull: e.transTable.Hashfull(),
		Nodes:    e.nodes.Load(),
		Time:     time.Since(e.start),
	}
}

func toUciScore(v int) UciScore {
	switch {
	case v >= valueWin:
		return UciScore{Mate: (valueMate - v + 1) / 2}
	case v <= valueLoss:
		return UciScore{Mate: -(valueMate + v) / 2}
	}
	return UciScore{Centipawns: v}
}

func (t *thread) reset(p *Position) {
	t.nodes = 0
	t.stack[0].position = *p
	for h := range t.stack {
		t.stack[h].killer1 = MoveEmpty
		t.stack[h].killer2 = MoveEmpty
	}
}

func (pv *pv) clear() {
	pv.size = 0
}

func (pv *pv) assign(m Move, child *pv) {
	pv.size = 1
	pv.items[0] = m
	if child.size > 0 {
		pv.size += child.size
		copy(pv.items[1:], child.items[:child.size])
	}
}

func (pv *pv) toSlice() []Move {
	var result = make([]Move, pv.size)
	copy(result, pv.items[:pv.size])
	return result
}
