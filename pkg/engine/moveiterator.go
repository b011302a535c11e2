package engine

import . "github.com/ChizhovVadim/CounterTM/pkg/common"

const sortTableKeyImportant = 100000

type orderedMove struct {
	move Move
	key  int32
}

// moveIterator yields legal moves: transposition move, captures by MVV-LVA,
// killers, then quiet moves. In quiescence only captures are kept unless the
// side to move is in check.
type moveIterator struct {
	position  *Position
	buffer    []orderedMove
	transMove Move
	killer1   Move
	killer2   Move
	noisyOnly bool
	count     int
	index     int
}

func (mi *moveIterator) Init() {
	mi.buffer = mi.buffer[:0]
	var evasions = mi.position.IsCheck()
	for _, m := range mi.position.GenerateLegalMoves() {
		var capture = mi.position.IsCapture(m)
		var promotion = m.Promote() != 0
		if mi.noisyOnly && !evasions && !capture && !promotion {
			continue
		}
		var score int
		if m == mi.transMove {
			score = sortTableKeyImportant + 2000
		} else if capture || promotion {
			score = sortTableKeyImportant + 1000 + mvvlva(mi.position, m)
		} else if m == mi.killer1 {
			score = sortTableKeyImportant + 1
		} else if m == mi.killer2 {
			score = sortTableKeyImportant
		}
		mi.buffer = append(mi.buffer, orderedMove{move: m, key: int32(score)})
	}
	mi.count = len(mi.buffer)
	sortMoves(mi.buffer)
}

func (mi *moveIterator) Reset() {
	mi.index = 0
}

func (mi *moveIterator) Next() Move {
	if mi.index >= mi.count {
		return MoveEmpty
	}
	var m = mi.buffer[mi.index].move
	mi.index++
	return m
}

func mvvlva(p *Position, m Move) int {
	var victim = p.PieceValueAt(m.To())
	var attacker = p.PieceValueAt(m.From())
	return 8*victim/PawnValue - attacker/PawnValue
}

func sortMoves(moves []orderedMove) {
	for i := 1; i < len(moves); i++ {
		j, t := i, moves[i]
		for ; j > 0 && moves[j-1].key < t.key; j-- {
			moves[j] = moves[j-1]
		}
		moves[j] = t
	}
}
