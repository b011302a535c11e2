package timeman

import (
	"github.com/ChizhovVadim/CounterTM/pkg/common"
	"github.com/ChizhovVadim/CounterTM/pkg/tune"
)

// Evaluator is a cheap static evaluation from the side to move's point of view.
type Evaluator interface {
	Evaluate(p *common.Position) int
}

// BiasPolicy scales the optimum time in sudden death games.
type BiasPolicy interface {
	Extra(p *common.Position) float64
}

type NoBias struct{}

func (NoBias) Extra(p *common.Position) float64 {
	return 1
}

// EvalBias thinks longer when the static evaluation says we are worse.
// Nothing changes when we are better. The multiplier has not been calibrated
// against a symmetric variant.
type EvalBias struct {
	evaluator Evaluator
	extra     *tune.Param
}

// NewEvalBias registers eval_extra, the multiplier in percent, in t.
func NewEvalBias(t *tune.Table, evaluator Evaluator) *EvalBias {
	return &EvalBias{
		evaluator: evaluator,
		extra:     t.Int("eval_extra", 110, 100, 200),
	}
}

func (b *EvalBias) Extra(p *common.Position) float64 {
	if p == nil || b.evaluator.Evaluate(p) >= 0 {
		return 1
	}
	return float64(b.extra.Get()) / 100
}
