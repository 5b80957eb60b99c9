package policy

import (
	"math"

	"github.com/accrue-lab/accrue/internal/types"
)

// MaxSharpe allocates toward the portfolio maximizing expected return per
// unit of volatility over the history window, subject to the buy-only weight
// floors. A flat return window has no defined Sharpe ratio and falls back to
// equal weighting.
type MaxSharpe struct {
	symbols  []string
	lookback int
}

// NewMaxSharpe creates a maximum-Sharpe policy. A lookback of zero uses the
// entire supplied history window.
func NewMaxSharpe(symbols []string, lookback int) *MaxSharpe {
	return &MaxSharpe{
		symbols:  symbols,
		lookback: lookback,
	}
}

// Name implements Policy.
func (p *MaxSharpe) Name() string {
	return "max_sharpe"
}

// Optimize implements Policy.
func (p *MaxSharpe) Optimize(current []float64, newCapital float64, prices, returns *types.Table) (types.Allocation, error) {
	mu := columnMeans(returns, p.lookback)
	cov := covarianceMatrix(returns, p.lookback)

	if portfolioVolatility(equalWeights(len(current)), cov) == 0 {
		return buyOnlyFromTargets(current, equalWeights(len(current)), newCapital), nil
	}

	floors := buyOnlyFloors(current, newCapital)

	weights, err := solveWeights(func(w []float64) float64 {
		var ret, variance float64

		for i := range w {
			ret += mu[i] * w[i]

			for j := range w {
				variance += w[i] * w[j] * cov.At(i, j)
			}
		}

		if variance <= 0 {
			return math.Inf(1)
		}

		// Negative Sharpe: the solver minimizes.
		return -ret / math.Sqrt(variance)
	}, floors)
	if err != nil {
		return types.Allocation{}, err
	}

	return buyOnlyFromTargets(current, weights, newCapital), nil
}
