package engine

import (
	"context"
	"time"

	. "github.com/ChizhovVadim/CounterTM/pkg/common"
	"github.com/ChizhovVadim/CounterTM/pkg/timeman"
)

// timeManager decides when one search stops. The budget comes from the
// game clock; timeManager only compares it with what has been spent.
type timeManager struct {
	parent    context.Context
	ctx       context.Context
	cancel    context.CancelFunc
	start     time.Time
	limits    LimitsType
	clock     *timeman.Manager
	useClock  bool
	ponderHit <-chan struct{} // nil unless pondering
}

func newTimeManager(ctx context.Context, limits LimitsType, ponderHit <-chan struct{},
	clock *timeman.Manager, useClock bool) *timeManager {

	var tm = &timeManager{
		parent:   ctx,
		start:    limits.StartTime,
		limits:   limits,
		clock:    clock,
		useClock: useClock,
	}
	if limits.Ponder {
		tm.ponderHit = ponderHit
		if tm.ponderHit == nil {
			tm.ponderHit = make(chan struct{})
		}
	}

	var hardLimit time.Duration
	if !tm.isPondering() && !limits.Infinite {
		if limits.MoveTime > 0 {
			hardLimit = time.Duration(limits.MoveTime) * time.Millisecond
		} else if useClock && !clock.UsesNodesTime() {
			hardLimit = time.Duration(Max(clock.Maximum(), 1)) * time.Millisecond
		}
	}

	var cancel context.CancelFunc
	if hardLimit != 0 {
		ctx, cancel = context.WithDeadline(ctx, tm.start.Add(hardLimit))
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	tm.ctx = ctx
	tm.cancel = cancel
	return tm
}

func (tm *timeManager) IsDone() bool {
	return tm.ctx.Err() != nil
}

// isPondering stays true until the caller closes the ponderhit channel.
func (tm *timeManager) isPondering() bool {
	if tm.ponderHit == nil {
		return false
	}
	select {
	case <-tm.ponderHit:
		return false
	default:
		return true
	}
}

// OnNodesChanged runs on every search thread.
func (tm *timeManager) OnNodesChanged(nodes int64) {
	if tm.limits.Nodes > 0 && nodes >= tm.limits.Nodes {
		tm.cancel()
		return
	}
	if tm.limits.Infinite || tm.isPondering() {
		return
	}
	if tm.limits.MoveTime > 0 &&
		time.Since(tm.start) >= time.Duration(tm.limits.MoveTime)*time.Millisecond {
		tm.cancel()
		return
	}
	if tm.useClock && tm.clock.Elapsed(nodes) >= tm.clock.Maximum() {
		tm.cancel()
	}
}

func (tm *timeManager) OnIterationComplete(line mainLine) {
	if tm.limits.Infinite {
		return
	}
	if tm.limits.Depth != 0 && line.depth >= tm.limits.Depth {
		tm.cancel()
		return
	}
	if tm.limits.Mate != 0 && line.score >= winIn(2*tm.limits.Mate) {
		tm.cancel()
		return
	}
	if line.score >= winIn(line.depth-5) ||
		line.score <= lossIn(line.depth-5) {
		tm.cancel()
		return
	}
	if tm.isPondering() {
		return
	}
	if tm.useClock && tm.clock.Elapsed(line.nodes) >= tm.clock.Optimum() {
		tm.cancel()
		return
	}
}

// waitPonder holds the result of a finished ponder search until ponderhit or
// stop, as the protocol requires.
func (tm *timeManager) waitPonder() {
	if !tm.isPondering() {
		return
	}
	select {
	case <-tm.ponderHit:
	case <-tm.parent.Done():
	}
}

func (tm *timeManager) Close() {
	tm.cancel()
}
