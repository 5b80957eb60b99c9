package policy

import (
	"math"

	"github.com/accrue-lab/accrue/internal/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// equalWeights returns the uniform 1/n weight vector.
func equalWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 / float64(n)
	}

	return w
}

// normalizeOrEqual scales scores to sum to 1. When the scores carry no signal
// (zero or negative total) it falls back to equal weighting instead of
// dividing by zero.
func normalizeOrEqual(scores []float64) []float64 {
	total := floats.Sum(scores)
	if total <= 0 || math.IsNaN(total) {
		return equalWeights(len(scores))
	}

	w := make([]float64, len(scores))
	for i, s := range scores {
		w[i] = s / total
	}

	return w
}

// buyOnlyFromTargets converts target weights into a buy-only allocation.
// Targets below the current exposure are floored at zero (no selling), and an
// allocation that overshoots the budget is rescaled proportionally so the
// deployed total is exactly the budget.
func buyOnlyFromTargets(current, weights []float64, budget float64) types.Allocation {
	n := len(current)
	total := floats.Sum(current) + budget

	allocation := make([]float64, n)
	for i := range allocation {
		allocation[i] = math.Max(weights[i]*total-current[i], 0)
	}

	if spent := floats.Sum(allocation); spent > budget && spent > 0 {
		floats.Scale(budget/spent, allocation)
	}

	return finishAllocation(current, allocation)
}

// finishAllocation assembles the policy output from the aged portfolio and a
// validated allocation vector.
func finishAllocation(current, allocation []float64) types.Allocation {
	n := len(current)

	portfolio := make([]float64, n)
	floats.AddTo(portfolio, current, allocation)

	weights := make([]float64, n)

	if total := floats.Sum(portfolio); total > 0 {
		for i, v := range portfolio {
			weights[i] = v / total
		}
	}

	cur := make([]float64, n)
	copy(cur, current)

	return types.Allocation{
		Current:       cur,
		NewAllocation: allocation,
		NewPortfolio:  portfolio,
		NewWeights:    weights,
	}
}

// columnMeans returns the per-asset mean over the last lookback rows of the
// return table (the whole table when lookback is zero or exceeds its length).
func columnMeans(returns *types.Table, lookback int) []float64 {
	window := tailWindow(returns, lookback)

	means := make([]float64, returns.NumAssets())
	for j := range means {
		means[j] = stat.Mean(column(window, j), nil)
	}

	return means
}

// columnStdDevs returns the per-asset sample standard deviation over the last
// lookback rows of the return table.
func columnStdDevs(returns *types.Table, lookback int) []float64 {
	window := tailWindow(returns, lookback)

	devs := make([]float64, returns.NumAssets())
	for j := range devs {
		devs[j] = stat.StdDev(column(window, j), nil)
	}

	return devs
}

// cumulativeReturns compounds the last lookback periodic returns per asset.
func cumulativeReturns(returns *types.Table, lookback int) []float64 {
	window := tailWindow(returns, lookback)

	out := make([]float64, returns.NumAssets())
	for j := range out {
		growth := 1.0
		for _, r := range column(window, j) {
			growth *= 1 + r
		}

		out[j] = growth - 1
	}

	return out
}

// covarianceMatrix estimates the sample covariance of the last lookback rows.
func covarianceMatrix(returns *types.Table, lookback int) *mat.SymDense {
	window := tailWindow(returns, lookback)

	data := mat.NewDense(window.Len(), window.NumAssets(), nil)
	for i := 0; i < window.Len(); i++ {
		data.SetRow(i, window.Row(i))
	}

	cov := mat.NewSymDense(window.NumAssets(), nil)
	stat.CovarianceMatrix(cov, data, nil)

	return cov
}

// portfolioVolatility returns sqrt(w' cov w).
func portfolioVolatility(weights []float64, cov *mat.SymDense) float64 {
	n := len(weights)

	var variance float64

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			variance += weights[i] * weights[j] * cov.At(i, j)
		}
	}

	if variance <= 0 {
		return 0
	}

	return math.Sqrt(variance)
}

func tailWindow(t *types.Table, lookback int) *types.Table {
	if lookback <= 0 {
		return t
	}

	return t.Tail(lookback)
}

func column(t *types.Table, j int) []float64 {
	col := make([]float64, t.Len())
	for i := range col {
		col[i] = t.At(i, j)
	}

	return col
}
