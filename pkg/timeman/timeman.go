// Package timeman computes how long the engine may think about one move.
//
// A Manager lives for a whole engine session. Init is called once per move
// before the search starts and sets two bounds: Optimum, the time the search
// should aim for, and Maximum, a hard cap it must never exceed. In
// nodes-as-time mode both bounds and Elapsed are measured in searched nodes
// instead of milliseconds.
//
// Init, Clear and AdvanceNodesTime must not run concurrently with each other.
// After Init returns, Optimum, Maximum and Elapsed may be read from any number
// of search threads.
package timeman

import (
	"time"

	"github.com/ChizhovVadim/CounterTM/pkg/common"
)

type Manager struct {
	start          time.Time
	optimumTime    int64
	maximumTime    int64
	useNodesTime   bool
	availableNodes int64
	horizon        HorizonPolicy
	bias           BiasPolicy
}

// New returns a manager using the given policies. Nil policies mean a fixed
// horizon of MaxHorizon moves and no evaluation bias.
func New(horizon HorizonPolicy, bias BiasPolicy) *Manager {
	if horizon == nil {
		horizon = FixedHorizon(MaxHorizon)
	}
	if bias == nil {
		bias = NoBias{}
	}
	return &Manager{
		horizon: horizon,
		bias:    bias,
	}
}

func (m *Manager) Optimum() int64 { return m.optimumTime }
func (m *Manager) Maximum() int64 { return m.maximumTime }

// Elapsed returns nodes in nodes-as-time mode and milliseconds since the
// search start otherwise.
func (m *Manager) Elapsed(nodes int64) int64 {
	if m.useNodesTime {
		return nodes
	}
	return time.Since(m.start).Milliseconds()
}

func (m *Manager) UsesNodesTime() bool   { return m.useNodesTime }
func (m *Manager) AvailableNodes() int64 { return m.availableNodes }

// Clear resets the per-game node budget. Call once per new game.
func (m *Manager) Clear() {
	m.availableNodes = 0
}

// AdvanceNodesTime adds delta to the node budget of the game. The driver
// reports increment minus nodes searched after every move.
func (m *Manager) AdvanceNodesTime(delta int64) {
	if !m.useNodesTime {
		panic("timeman: AdvanceNodesTime without nodes as time")
	}
	m.availableNodes += delta
}

// Init computes the bounds for the current move. We support:
//  1. x basetime (+ z increment)
//  2. x moves in y seconds (+ z increment)
//
// With nodestime set, limits.Time[us] and limits.Inc[us] are rewritten in
// node units. With no time on the clock only the start instant is recorded
// and the previous bounds are kept. p may be nil when no evaluation bias is
// wanted.
func (m *Manager) Init(limits *common.LimitsType, us common.Color, ply int, opts Options, p *common.Position) {
	m.start = limits.StartTime
	if m.start.IsZero() {
		m.start = time.Now()
	}
	if limits.Time[us] == 0 {
		return
	}
	if limits.Time[us] < 0 {
		// flag already fell on the GUI side; play as fast as possible
		limits.Time[us] = 1
	}

	if opts.NodesTime > 0 {
		m.convertToNodes(limits, us, int64(opts.NodesTime))
		if limits.Time[us] <= 0 {
			// node budget of the game is spent
			m.optimumTime, m.maximumTime = 0, 0
			return
		}
	}

	var mtg = movesHorizon(m.horizon, limits.MovesToGo, ply, limits.Time[us])

	var evalExtra = 1.0
	if limits.MovesToGo == 0 {
		evalExtra = m.bias.Extra(p)
	}

	m.optimumTime, m.maximumTime = computeBudget(budgetInput{
		time:         limits.Time[us],
		inc:          limits.Inc[us],
		movesToGo:    limits.MovesToGo,
		mtg:          mtg,
		ply:          ply,
		moveOverhead: int64(opts.MoveOverhead),
		evalExtra:    evalExtra,
	})

	// time spent on the opponent's clock comes for free
	if opts.Ponder {
		m.optimumTime += m.optimumTime / 4
	}
}
