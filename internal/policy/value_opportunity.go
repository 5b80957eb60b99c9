package policy

import (
	"math"
	"sort"

	"github.com/accrue-lab/accrue/internal/types"
)

// ValueOpportunity buys quality assets on a dip: it keeps the top fraction of
// the universe by long-horizon return, then scores each survivor by how much
// it pulled back recently. High long-term return plus a recent dip scores
// highest; when no survivor has dipped the policy falls back to equal
// weighting.
type ValueOpportunity struct {
	symbols       []string
	lookbackLong  int
	lookbackShort int
	topFraction   float64
}

// NewValueOpportunity creates a dip-buying policy comparing 12-period quality
// against a 1-period pullback over the top half of the universe.
func NewValueOpportunity(symbols []string, lookbackLong, lookbackShort int, topFraction float64) *ValueOpportunity {
	return &ValueOpportunity{
		symbols:       symbols,
		lookbackLong:  lookbackLong,
		lookbackShort: lookbackShort,
		topFraction:   topFraction,
	}
}

// Name implements Policy.
func (p *ValueOpportunity) Name() string {
	return "value_opportunity"
}

// Optimize implements Policy.
func (p *ValueOpportunity) Optimize(current []float64, newCapital float64, prices, returns *types.Table) (types.Allocation, error) {
	n := len(current)

	longTerm := columnMeans(returns, p.lookbackLong)
	shortTerm := columnMeans(returns, p.lookbackShort)

	// Rank by long-horizon return and keep the top fraction.
	order := make([]int, n)
	for j := range order {
		order[j] = j
	}

	sort.SliceStable(order, func(a, b int) bool {
		return longTerm[order[a]] > longTerm[order[b]]
	})

	k := int(float64(n) * p.topFraction)
	if k < 1 {
		k = 1
	}

	if k > n {
		k = n
	}

	scores := make([]float64, n)
	for _, j := range order[:k] {
		score := longTerm[j] * -shortTerm[j]
		if score > 0 && !math.IsNaN(score) {
			scores[j] = score
		}
	}

	weights := normalizeOrEqual(scores)

	return buyOnlyFromTargets(current, weights, newCapital), nil
}
