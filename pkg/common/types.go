package common

import "time"

type Color int

const (
	White Color = iota
	Black
	ColorNB
)

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// LimitsType holds the limits of one "go" command. Time and Inc are indexed by
// Color. In nodes-as-time mode the time manager rewrites the side to move's
// Time and Inc into node units.
type LimitsType struct {
	Ponder    bool
	Infinite  bool
	Time      [ColorNB]int64
	Inc       [ColorNB]int64
	MoveTime  int
	MovesToGo int
	Depth     int
	Nodes     int64
	Mate      int
	NodesTime int64
	StartTime time.Time
}

type SearchParams struct {
	Positions []Position
	Limits    LimitsType
	Progress  func(si SearchInfo)
	// PonderHit is closed by the caller when the expected move is played.
	// It may be closed before the search starts. A ponder search without it
	// runs until the context is cancelled.
	PonderHit <-chan struct{}
}

type SearchInfo struct {
	Score    UciScore
	Depth    int
	Nodes    int64
	Time     time.Duration
	Hashfull int
	MainLine []Move
}

type UciScore struct {
	Centipawns int
	Mate       int
}
