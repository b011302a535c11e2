package engine

import (
	. "github.com/ChizhovVadim/CounterTM/pkg/common"
)

// nodes are published to the engine and checked against the limits in
// batches of this size
const nodesBatch = 1024

const (
	stackSize = 128
	maxHeight = stackSize - 1
)

// Scores are centipawns for the side to move. Mate scores count plies from
// the root: winIn(1) is mate with the next move.
const (
	valueDraw     = 0
	valueMate     = 30000
	valueInfinity = valueMate + 1
	valueWin      = valueMate - 2*maxHeight
	valueLoss     = -valueWin
)

func winIn(height int) int  { return valueMate - height }
func lossIn(height int) int { return height - valueMate }

// isDraw reports the fifty move rule and bare kings.
func isDraw(p *Position) bool {
	var w, b = &p.White, &p.Black
	return p.Rule50() >= 100 || (w.All == w.Kings && b.All == b.Kings)
}

func aspirationWindow(t *thread, ml []Move, depth, prevScore int) int {
	t.rootDepth = depth
	if depth >= 5 && !(prevScore <= valueLoss || prevScore >= valueWin) {
		const Window = 25
		var alpha = Max(-valueInfinity, prevScore-Window)
		var beta = Min(valueInfinity, prevScore+Window)
		var score = searchRoot(t, ml, alpha, beta, depth)
		if score > alpha && score < beta {
			return score
		}
		if score >= beta {
			beta = valueInfinity
		}
		if score <= alpha {
			alpha = -valueInfinity
		}
		score = searchRoot(t, ml, alpha, beta, depth)
		if score > alpha && score < beta {
			return score
		}
	}
	return searchRoot(t, ml, -valueInfinity, valueInfinity, depth)
}

func searchRoot(t *thread, ml []Move, alpha, beta, depth int) int {
	const height = 0
	if t.engine.timeManager.IsDone() {
		panic(errSearchTimeout)
	}
	t.clearPV(height)
	var position = &t.stack[height].position
	var best = -valueInfinity
	for i := range ml {
		var move = ml[i]
		t.makeMove(move, height)
		var score = alpha + 1
		if i > 0 {
			score = -t.alphaBeta(-(alpha + 1), -alpha, depth-1, height+1)
		}
		if score > alpha {
			score = -t.alphaBeta(-beta, -alpha, depth-1, height+1)
		}
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
			t.assignPV(height, move)
			moveToBegin(ml, i)
			if alpha >= beta {
				break
			}
		}
	}
	var bound = boundExact
	if best >= beta {
		bound = boundLower
	}
	if t.stack[height].pv.size != 0 {
		t.engine.transTable.Update(position.Key(), depth, scoreToTT(best, height), bound, t.stack[height].pv.items[0])
	}
	return best
}

func (t *thread) alphaBeta(alpha, beta, depth, height int) int {
	if depth <= 0 {
		return t.quiescence(alpha, beta, height)
	}
	t.clearPV(height)

	var pvNode = beta != alpha+1
	var position = &t.stack[height].position
	var isCheck = position.IsCheck()

	if height >= maxHeight {
		return t.evaluate(position)
	}
	if isDraw(position) {
		return valueDraw
	}
	// mate distance pruning
	if winIn(height+1) <= alpha {
		return alpha
	}
	if lossIn(height+2) >= beta && !isCheck {
		return beta
	}

	var ttDepth, ttValue, ttBound, ttMove, ttHit = t.engine.transTable.Read(position.Key())
	if ttHit {
		ttValue = scoreFromTT(ttValue, height)
		if ttDepth >= depth && !pvNode {
			if ttValue >= beta && (ttBound&boundLower) != 0 {
				return ttValue
			}
			if ttValue <= alpha && (ttBound&boundUpper) != 0 {
				return ttValue
			}
		}
	}

	if isCheck {
		depth++
	}

	var mi = moveIterator{
		position:  position,
		buffer:    t.stack[height].moveList[:0],
		transMove: ttMove,
		killer1:   t.stack[height].killer1,
		killer2:   t.stack[height].killer2,
	}
	mi.Init()
	if mi.count == 0 {
		if isCheck {
			return lossIn(height)
		}
		return valueDraw
	}

	var oldAlpha = alpha
	var best = -valueInfinity
	var bestMove = MoveEmpty
	var movesSearched = 0

	for mi.Reset(); ; {
		var move = mi.Next()
		if move == MoveEmpty {
			break
		}
		var quiet = !position.IsCapture(move) && move.Promote() == 0
		t.makeMove(move, height)
		movesSearched++

		var score = alpha + 1
		// PVS
		if movesSearched > 1 {
			score = -t.alphaBeta(-(alpha + 1), -alpha, depth-1, height+1)
		}
		if score > alpha {
			score = -t.alphaBeta(-beta, -alpha, depth-1, height+1)
		}

		if score > best {
			best = score
			bestMove = move
		}
		if score > alpha {
			alpha = score
			t.assignPV(height, move)
			if alpha >= beta {
				if quiet {
					t.updateKiller(move, height)
				}
				break
			}
		}
	}

	var bound = 0
	if best > oldAlpha {
		bound |= boundLower
	}
	if best < beta {
		bound |= boundUpper
	}
	t.engine.transTable.Update(position.Key(), depth, scoreToTT(best, height), bound, bestMove)
	return best
}

func (t *thread) quiescence(alpha, beta, height int) int {
	t.clearPV(height)
	var position = &t.stack[height].position
	if isDraw(position) {
		return valueDraw
	}
	if height >= maxHeight {
		return t.evaluate(position)
	}

	var isCheck = position.IsCheck()
	var best = -valueInfinity
	if !isCheck {
		var eval = t.evaluate(position)
		best = eval
		if eval > alpha {
			alpha = eval
			if alpha >= beta {
				return alpha
			}
		}
	}
	var mi = moveIterator{
		position:  position,
		buffer:    t.stack[height].moveList[:0],
		noisyOnly: true,
	}
	mi.Init()
	if isCheck && mi.count == 0 {
		return lossIn(height)
	}
	for mi.Reset(); ; {
		var move = mi.Next()
		if move == MoveEmpty {
			break
		}
		t.makeMove(move, height)
		var score = -t.quiescence(-beta, -alpha, height+1)
		best = Max(best, score)
		if score > alpha {
			alpha = score
			t.assignPV(height, move)
			if alpha >= beta {
				break
			}
		}
	}
	return best
}

func (t *thread) evaluate(p *Position) int {
	return t.engine.evaluator.Evaluate(p)
}

func (t *thread) makeMove(move Move, height int) {
	var child = &t.stack[height+1].position
	*child = t.stack[height].position
	child.Apply(move)
	t.incNodes()
}

func (t *thread) incNodes() {
	t.nodes++
	if t.nodes == nodesBatch {
		t.flushNodes()
		if t.engine.timeManager.IsDone() {
			panic(errSearchTimeout)
		}
	}
}

func (t *thread) flushNodes() {
	if t.nodes == 0 {
		return
	}
	var total = t.engine.nodes.Add(t.nodes)
	t.nodes = 0
	t.engine.timeManager.OnNodesChanged(total)
}

func (t *thread) clearPV(height int) {
	t.stack[height].pv.clear()
}

func (t *thread) assignPV(height int, m Move) {
	t.stack[height].pv.assign(m, &t.stack[height+1].pv)
}

func (t *thread) updateKiller(move Move, height int) {
	if t.stack[height].killer1 != move {
		t.stack[height].killer2 = t.stack[height].killer1
		t.stack[height].killer1 = move
	}
}

func findMoveIndex(ml []Move, move Move) int {
	for i := range ml {
		if ml[i] == move {
			return i
		}
	}
	return -1
}

func moveToBegin(ml []Move, index int) {
	if index == 0 {
		return
	}
	var item = ml[index]
	for i := index; i > 0; i-- {
		ml[i] = ml[i-1]
	}
	ml[0] = item
}

func cloneMoves(ml []Move) []Move {
	var result = make([]Move, len(ml))
	copy(result, ml)
	return result
}
