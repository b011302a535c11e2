package timeman

import (
	"math"

	"github.com/ChizhovVadim/CounterTM/pkg/common"
)

type budgetInput struct {
	time         int64
	inc          int64
	movesToGo    int
	mtg          int
	ply          int
	moveOverhead int64
	evalExtra    float64
}

// computeBudget returns the optimum and maximum time for the move. time must
// be positive.
func computeBudget(in budgetInput) (optimumTime, maximumTime int64) {
	var mtg = int64(in.mtg)
	var time = float64(in.time)

	// timeLeft is used as a divisor
	var timeLeft = common.Max(1, in.time+in.inc*(mtg-1)-in.moveOverhead*(2+mtg))

	// optScale is a fraction of timeLeft to use for the current move.
	// maxScale is a multiplier applied to the optimum.
	var optScale, maxScale float64

	if in.movesToGo == 0 {
		// With a healthy increment timeLeft can exceed the time on the clock,
		// so optScale is also capped by a fraction of the clock.
		var optExtra = 1.0
		if in.inc >= 500 {
			optExtra = 1.13
		}

		var optConstant = math.Min(0.00308+0.000319*math.Log10(time/1000), 0.00506)
		var maxConstant = math.Max(3.39+3.01*math.Log10(time/1000), 2.93)

		optScale = math.Min(0.0122+math.Pow(float64(in.ply)+2.95, 0.462)*optConstant,
			0.213*time/float64(timeLeft)) * optExtra * in.evalExtra
		maxScale = math.Min(6.64, maxConstant+float64(in.ply)/12)
	} else {
		optScale = math.Min((0.88+float64(in.ply)/116.4)/float64(in.mtg),
			0.88*time/float64(timeLeft))
		maxScale = math.Min(6.3, 1.5+0.11*float64(in.mtg))
	}

	optimumTime = int64(optScale * float64(timeLeft))
	maximumTime = int64(math.Min(0.825*time-float64(in.moveOverhead),
		maxScale*float64(optimumTime))) - 10
	return optimumTime, maximumTime
}
