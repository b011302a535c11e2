package engine

import "github.com/ChizhovVadim/CounterTM/pkg/timeman"

type Options struct {
	Hash             int
	Threads          int
	MoveOverhead     int
	NodesTime        int
	Ponder           bool
	ProgressMinNodes int
}

func NewOptions() Options {
	var tm = timeman.DefaultOptions()
	return Options{
		Hash:             16,
		Threads:          1,
		MoveOverhead:     tm.MoveOverhead,
		NodesTime:        tm.NodesTime,
		Ponder:           tm.Ponder,
		ProgressMinNodes: 200_000,
	}
}

func (o *Options) timeOptions() timeman.Options {
	return timeman.Options{
		MoveOverhead: o.MoveOverhead,
		NodesTime:    o.NodesTime,
		Ponder:       o.Ponder,
	}
}
