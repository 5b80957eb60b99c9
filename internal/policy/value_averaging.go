package policy

import (
	"math"

	"github.com/accrue-lab/accrue/internal/types"
	"gonum.org/v1/gonum/floats"
)

// ValueAveraging injects only as much cash as needed to keep the portfolio on
// a growing target value path. It is deliberately stateful: an internal
// period counter defines the target trajectory, so the same instance must not
// be shared across simulation runs without a Reset in between.
type ValueAveraging struct {
	symbols          []string
	targetGrowthRate float64
	periods          int
}

// NewValueAveraging creates a value-averaging policy with the given target
// per-period growth rate (e.g. 0.02 for 2%).
func NewValueAveraging(symbols []string, targetGrowthRate float64) *ValueAveraging {
	return &ValueAveraging{
		symbols:          symbols,
		targetGrowthRate: targetGrowthRate,
	}
}

// Name implements Policy.
func (p *ValueAveraging) Name() string {
	return "value_averaging"
}

// Reset implements Resettable, clearing the elapsed-period counter.
func (p *ValueAveraging) Reset() {
	p.periods = 0
}

// Optimize implements Policy.
func (p *ValueAveraging) Optimize(current []float64, newCapital float64, prices, returns *types.Table) (types.Allocation, error) {
	value := floats.Sum(current)

	p.periods++
	target := newCapital * float64(p.periods) * (1 + p.targetGrowthRate)

	// Invest only the shortfall against the target path, capped by available cash.
	deploy := math.Min(math.Max(target-value, 0), newCapital)

	n := len(current)

	allocation := make([]float64, n)
	for i := range allocation {
		allocation[i] = deploy / float64(n)
	}

	return finishAllocation(current, allocation), nil
}
