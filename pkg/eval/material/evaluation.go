package eval

import (
	"math/bits"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ChizhovVadim/CounterTM/pkg/common"
)

type EvaluationService struct{}

func NewEvaluationService() *EvaluationService {
	return &EvaluationService{}
}

// Evaluate counts material from the side to move's point of view.
func (e *EvaluationService) Evaluate(p *common.Position) int {
	var w, b = &p.White, &p.Black
	var eval = common.PawnValue*(bits.OnesCount64(w.Pawns)-bits.OnesCount64(b.Pawns)) +
		common.KnightValue*(bits.OnesCount64(w.Knights)-bits.OnesCount64(b.Knights)) +
		common.BishopValue*(bits.OnesCount64(w.Bishops)-bits.OnesCount64(b.Bishops)) +
		common.RookValue*(bits.OnesCount64(w.Rooks)-bits.OnesCount64(b.Rooks)) +
		common.QueenValue*(bits.OnesCount64(w.Queens)-bits.OnesCount64(b.Queens))
	if !p.Wtomove {
		eval = -eval
	}
	return eval
}

type evaluator interface {
	Evaluate(p *common.Position) int
}

// Cached memoizes an evaluator by position hash. It is safe for concurrent use
// by search threads.
type Cached struct {
	inner evaluator
	cache *lru.Cache[uint64, int]
}

func NewCached(inner evaluator, size int) (*Cached, error) {
	var cache, err = lru.New[uint64, int](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: cache}, nil
}

func (c *Cached) Evaluate(p *common.Position) int {
	var key = p.Key()
	if v, ok := c.cache.Get(key); ok {
		return v
	}
	var v = c.inner.Evaluate(p)
	c.cache.Add(key, v)
	return v
}

func (c *Cached) Clear() {
	c.cache.Purge()
}
