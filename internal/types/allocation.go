package types

import (
	"time"

	"github.com/accrue-lab/accrue/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// budgetEpsilon absorbs float drift when checking that an allocation does not
// spend more than the available cash.
const budgetEpsilon = 1e-6

// Allocation is the output of one policy invocation: how this period's cash
// is deployed across the asset universe. All vectors are index-aligned to the
// universe column order and have the same length.
type Allocation struct {
	// Current is the aged portfolio the policy was handed, unchanged.
	Current []float64
	// NewAllocation is the cash deployed per asset this period.
	NewAllocation []float64
	// NewPortfolio is Current plus NewAllocation.
	NewPortfolio []float64
	// NewWeights is the post-trade weight per asset. Weights sum to 1, or to
	// 0 when the portfolio is fully uninvested.
	NewWeights []float64
}

// CheckBuyOnly verifies the default policy convention: vectors of length n,
// no negative allocation entries, and total deployed cash within budget.
func (a *Allocation) CheckBuyOnly(n int, budget float64) error {
	for _, v := range [][]float64{a.Current, a.NewAllocation, a.NewPortfolio, a.NewWeights} {
		if len(v) != n {
			return errors.Newf(errors.ErrCodeVectorLengthMismatch, "allocation vector length %d, want %d", len(v), n)
		}
	}

	for i, v := range a.NewAllocation {
		if v < 0 {
			return errors.Newf(errors.ErrCodePolicyFailed, "negative allocation %.4f at index %d", v, i)
		}
	}

	if total := floats.Sum(a.NewAllocation); total > budget+budgetEpsilon {
		return errors.Newf(errors.ErrCodePolicyFailed, "allocation total %.4f exceeds budget %.4f", total, budget)
	}

	return nil
}

// PeriodRecord captures one strategy's state after one rebalancing period.
// Records are appended in strict period order and never mutated afterwards.
type PeriodRecord struct {
	Date        time.Time
	Allocation  []float64
	AssetValues []float64
	Weights     []float64
	TotalValue  float64
}
