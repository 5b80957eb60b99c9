package policy

import (
	"github.com/accrue-lab/accrue/internal/types"
)

// MinVariance allocates toward the long-only minimum-variance portfolio over
// the history window, subject to the buy-only weight floors. A flat return
// window carries no risk signal and falls back to equal weighting.
type MinVariance struct {
	symbols  []string
	lookback int
}

// NewMinVariance creates a minimum-variance policy. A lookback of zero uses
// the entire supplied history window.
func NewMinVariance(symbols []string, lookback int) *MinVariance {
	return &MinVariance{
		symbols:  symbols,
		lookback: lookback,
	}
}

// Name implements Policy.
func (p *MinVariance) Name() string {
	return "min_variance"
}

// Optimize implements Policy.
func (p *MinVariance) Optimize(current []float64, newCapital float64, prices, returns *types.Table) (types.Allocation, error) {
	cov := covarianceMatrix(returns, p.lookback)

	if portfolioVolatility(equalWeights(len(current)), cov) == 0 {
		return buyOnlyFromTargets(current, equalWeights(len(current)), newCapital), nil
	}

	floors := buyOnlyFloors(current, newCapital)

	weights, err := solveWeights(func(w []float64) float64 {
		var variance float64

		for i := range w {
			for j := range w {
				variance += w[i] * w[j] * cov.At(i, j)
			}
		}

		return variance
	}, floors)
	if err != nil {
		return types.Allocation{}, err
	}

	return buyOnlyFromTargets(current, weights, newCapital), nil
}
