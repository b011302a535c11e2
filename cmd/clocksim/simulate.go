package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ChizhovVadim/CounterTM/pkg/common"
	"github.com/ChizhovVadim/CounterTM/pkg/timeman"
)

var errTimeControl = errors.New("unsupported time control")

type timeControl struct {
	base int64 // ms
	inc  int64 // ms
}

func (tc timeControl) String() string {
	return fmt.Sprintf("%v+%v", float64(tc.base)/1000, float64(tc.inc)/1000)
}

// parseTimeControl accepts "base+inc" and "base" in seconds, the way PGN
// TimeControl tags write them.
func parseTimeControl(s string) (timeControl, error) {
	var baseStr, incStr, hasInc = strings.Cut(strings.TrimSpace(s), "+")
	var base, err = parseSeconds(baseStr)
	if err != nil || base <= 0 {
		return timeControl{}, fmt.Errorf("%q: %w", s, errTimeControl)
	}
	var inc int64
	if hasInc {
		inc, err = parseSeconds(incStr)
		if err != nil || inc < 0 {
			return timeControl{}, fmt.Errorf("%q: %w", s, errTimeControl)
		}
	}
	return timeControl{base: base, inc: inc}, nil
}

func parseSeconds(s string) (int64, error) {
	var v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(v * 1000)), nil
}

type settings struct {
	tc        timeControl
	movesToGo int
	opts      timeman.Options
	horizon   func() timeman.HorizonPolicy
}

type step struct {
	ply       int
	remaining int64
	optimum   int64
	maximum   int64
}

type outcome struct {
	moves     int
	remaining int64
	lowest    int64
	flagged   bool
}

// simulate plays white's moves of a game of the given length. Every move
// consumes exactly its optimum. In nodes as time mode the remaining time is the
// node budget of the game.
func simulate(s settings, plies int, visit func(step)) outcome {
	var m = timeman.New(s.horizon(), nil)
	var remaining = s.tc.base
	var mtgLeft = s.movesToGo
	var result = outcome{lowest: math.MaxInt64}

	for ply := 0; ply < plies; ply += 2 {
		var limits = common.LimitsType{MovesToGo: mtgLeft}
		limits.Time[common.White] = remaining
		limits.Inc[common.White] = s.tc.inc
		if m.UsesNodesTime() {
			// the game budget lives in the manager
			limits.Time[common.White] = s.tc.base
		}
		m.Init(&limits, common.White, ply, s.opts, nil)

		var before = limits.Time[common.White]
		if visit != nil {
			visit(step{ply: ply, remaining: before, optimum: m.Optimum(), maximum: m.Maximum()})
		}
		result.moves++

		if m.UsesNodesTime() {
			m.AdvanceNodesTime(limits.Inc[common.White] - m.Optimum())
			remaining = m.AvailableNodes()
		} else {
			remaining += s.tc.inc - m.Optimum() - int64(s.opts.MoveOverhead)
		}
		result.lowest = common.Min(result.lowest, remaining)
		if remaining <= 0 || m.Optimum() == 0 {
			result.flagged = true
			break
		}

		if s.movesToGo != 0 {
			mtgLeft--
			if mtgLeft == 0 {
				mtgLeft = s.movesToGo
				if !m.UsesNodesTime() {
					remaining += s.tc.base
				}
			}
		}
	}
	result.remaining = remaining
	return result
}
