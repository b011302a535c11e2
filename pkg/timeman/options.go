package timeman

// Options are the engine settings the time manager reads on every Init.
type Options struct {
	// MoveOverhead in milliseconds is reserved for every move up to the horizon.
	MoveOverhead int
	// NodesTime is nodes per millisecond; non-zero switches to nodes as time.
	NodesTime int
	Ponder    bool
}

func DefaultOptions() Options {
	return Options{
		MoveOverhead: 10,
	}
}
