package engine

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ChizhovVadim/CounterTM/pkg/common"
)

var errSearchTimeout = errors.New("search timeout")

// searchTask asks a helper for one iteration. The best move and score of the
// deepest finished iteration seed move ordering and the aspiration window.
type searchTask struct {
	depth     int
	bestMove  common.Move
	prevScore int
}

// smp hands iterations to helper threads. Helpers pick up the next depth;
// once half of them work on it the rest skip one depth ahead.
type smp struct {
	engine  *Engine
	tasks   chan searchTask
	results chan mainLine
	started [stackSize]int
}

func lazySmp(e *Engine, p *common.Position) {
	var ml = p.GenerateLegalMoves()
	if len(ml) != 0 {
		e.mainLine = mainLine{moves: []common.Move{ml[0]}}
	}
	if len(ml) <= 1 {
		return
	}

	var s = &smp{
		engine:  e,
		tasks:   make(chan searchTask),
		results: make(chan mainLine),
	}

	var g errgroup.Group
	for i := range e.threads {
		var t = &e.threads[i]
		t.reset(p)
		var rootMoves = cloneMoves(ml)
		g.Go(func() error {
			return t.runTasks(rootMoves, s.tasks, s.results)
		})
	}
	go func() {
		if err := g.Wait(); err != nil {
			e.logger.Error().Err(err).Msg("search thread failed")
		}
		close(s.results)
	}()

	s.run()
}

func (s *smp) nextTask() searchTask {
	var line = &s.engine.mainLine
	var depth = line.depth + 1
	if depth < len(s.started) && s.started[depth] >= (len(s.engine.threads)+1)/2 {
		depth++
	}
	return searchTask{
		depth:     depth,
		bestMove:  line.moves[0],
		prevScore: line.score,
	}
}

// run owns e.mainLine until every helper has returned.
func (s *smp) run() {
	var e = s.engine
	var tasks = s.tasks
	for {
		var task = s.nextTask()
		if tasks != nil && (task.depth > maxHeight || e.timeManager.IsDone()) {
			close(tasks)
			tasks = nil
		}

		select {
		case result, ok := <-s.results:
			if !ok {
				return
			}
			s.accept(result)
		case tasks <- task:
			if task.depth < len(s.started) {
				s.started[task.depth]++
			}
		}
	}
}

// accept keeps the deepest iteration and lets the clock decide whether to
// start another one.
func (s *smp) accept(result mainLine) {
	var e = s.engine
	e.mainLine.nodes = e.nodes.Load()
	if result.depth <= e.mainLine.depth {
		return
	}
	e.mainLine.depth = result.depth
	e.mainLine.score = result.score
	e.mainLine.moves = result.moves
	e.timeManager.OnIterationComplete(e.mainLine)
	if e.progress != nil && e.mainLine.nodes >= int64(e.Options.ProgressMinNodes) {
		e.progress(e.currentSearchResult())
	}
}

// runTasks searches iterations until the task channel is closed or the
// search is stopped. A failing helper stops the whole search.
func (t *thread) runTasks(ml []common.Move, tasks <-chan searchTask, results chan<- mainLine) (err error) {
	defer func() {
		t.flushNodes()
		if r := recover(); r != nil && r != errSearchTimeout {
			err = fmt.Errorf("depth %v: %v", t.rootDepth, r)
			t.engine.timeManager.Close()
		}
	}()

	for task := range tasks {
		if index := findMoveIndex(ml, task.bestMove); index >= 0 {
			moveToBegin(ml, index)
		}
		var score = aspirationWindow(t, ml, task.depth, task.prevScore)
		t.flushNodes()
		results <- mainLine{
			depth: task.depth,
			score: score,
			moves: t.stack[0].pv.toSlice(),
		}
	}
	return nil
}
