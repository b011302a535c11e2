package timeman

import (
	"fmt"

	"github.com/ChizhovVadim/CounterTM/pkg/common"
	"github.com/ChizhovVadim/CounterTM/pkg/tune"
)

// MaxHorizon caps moves to go, explicit or estimated.
const MaxHorizon = 50

// HorizonPolicy estimates moves to go in sudden death and increment games.
type HorizonPolicy interface {
	Estimate(moveNumber int) int
}

// FixedHorizon assumes the same number of moves to go at every move.
type FixedHorizon int

func (h FixedHorizon) Estimate(moveNumber int) int {
	return int(h)
}

const (
	decileCount = 15
	decileWidth = 10
)

// DecileHorizon reads moves to go from a tunable table with one entry per ten
// moves, (0,10] through (140,150]. Other move numbers get MaxHorizon.
type DecileHorizon struct {
	buckets [decileCount]*tune.Param
}

// NewDecileHorizon registers mtg_1..mtg_15 in t.
func NewDecileHorizon(t *tune.Table) *DecileHorizon {
	var h = &DecileHorizon{}
	for i := range h.buckets {
		h.buckets[i] = t.Int(fmt.Sprintf("mtg_%v", i+1), MaxHorizon, 0, 100)
	}
	return h
}

func (h *DecileHorizon) Estimate(moveNumber int) int {
	if moveNumber <= 0 || moveNumber > decileCount*decileWidth {
		return MaxHorizon
	}
	return h.buckets[(moveNumber-1)/decileWidth].Get()
}

// moveNumber of the side to move, rounding odd plies up.
func moveNumber(ply int) int {
	return (ply + 1) / 2
}

func movesHorizon(policy HorizonPolicy, movesToGo, ply int, timeLeft int64) int {
	var mtg int
	if movesToGo > 0 {
		mtg = common.Min(movesToGo, MaxHorizon)
	} else {
		mtg = policy.Estimate(moveNumber(ply))
	}

	// if less than one second, gradually reduce mtg
	if timeLeft < 1000 && float64(mtg)/float64(timeLeft) > 0.05 {
		mtg = int(float64(timeLeft) * 0.05)
	}
	return mtg
}
