package policy

import (
	"math"
	"sort"

	"github.com/accrue-lab/accrue/internal/types"
)

// MeanReversion allocates to recent laggards: each asset is scored by how far
// its recent compound return sits below an exponential moving average of its
// own returns. Optionally only the top-N laggards receive cash.
type MeanReversion struct {
	symbols         []string
	recentLookback  int
	historyLookback int
	topN            int
}

// NewMeanReversion creates a time-series mean-reversion policy. topN of zero
// keeps every positively scored asset.
func NewMeanReversion(symbols []string, recentLookback, historyLookback, topN int) *MeanReversion {
	return &MeanReversion{
		symbols:         symbols,
		recentLookback:  recentLookback,
		historyLookback: historyLookback,
		topN:            topN,
	}
}

// Name implements Policy.
func (p *MeanReversion) Name() string {
	return "mean_reversion"
}

// Optimize implements Policy.
func (p *MeanReversion) Optimize(current []float64, newCapital float64, prices, returns *types.Table) (types.Allocation, error) {
	n := len(current)

	recent := cumulativeReturns(returns, p.recentLookback)
	ema := emaReturns(returns, p.historyLookback)

	// Higher score when recent performance trails the asset's own average.
	scores := make([]float64, n)
	for j := range scores {
		s := ema[j] - recent[j]
		if s > 0 && !math.IsNaN(s) {
			scores[j] = s
		}
	}

	if p.topN > 0 && p.topN < n {
		order := make([]int, n)
		for j := range order {
			order[j] = j
		}

		sort.SliceStable(order, func(a, b int) bool {
			return scores[order[a]] > scores[order[b]]
		})

		for _, j := range order[p.topN:] {
			scores[j] = 0
		}
	}

	weights := normalizeOrEqual(scores)

	return buyOnlyFromTargets(current, weights, newCapital), nil
}

// emaReturns computes the final exponential moving average of each return
// column with the given span (alpha = 2/(span+1)).
func emaReturns(returns *types.Table, span int) []float64 {
	if span < 1 {
		span = 1
	}

	alpha := 2.0 / (float64(span) + 1)

	out := make([]float64, returns.NumAssets())
	for j := range out {
		col := column(returns, j)

		ema := col[0]
		for _, r := range col[1:] {
			ema = alpha*r + (1-alpha)*ema
		}

		out[j] = ema
	}

	return out
}
