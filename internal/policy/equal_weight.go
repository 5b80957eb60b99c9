package policy

import (
	"github.com/accrue-lab/accrue/internal/types"
)

// EqualWeight splits each period's cash evenly across the universe,
// regardless of history. It is the simplest baseline policy and doubles as
// the degenerate-input fallback behavior of the signal-driven variants.
type EqualWeight struct {
	symbols []string
}

// NewEqualWeight creates an equal-weight policy for the given universe.
func NewEqualWeight(symbols []string) *EqualWeight {
	return &EqualWeight{symbols: symbols}
}

// Name implements Policy.
func (p *EqualWeight) Name() string {
	return "equal_weight"
}

// Optimize implements Policy.
func (p *EqualWeight) Optimize(current []float64, newCapital float64, prices, returns *types.Table) (types.Allocation, error) {
	n := len(current)

	allocation := make([]float64, n)
	for i := range allocation {
		allocation[i] = newCapital / float64(n)
	}

	return finishAllocation(current, allocation), nil
}
