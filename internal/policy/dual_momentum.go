package policy

import (
	"math"
	"sort"

	"github.com/accrue-lab/accrue/internal/types"
)

// Weighting selects how DualMomentum distributes cash among the assets that
// pass its filters.
type Weighting string

const (
	// WeightingEqual spreads cash evenly across the selected assets.
	WeightingEqual Weighting = "equal"
	// WeightingMomentum spreads cash proportionally to momentum scores.
	WeightingMomentum Weighting = "momentum"
)

// DualMomentum combines an absolute momentum filter (trailing compound return
// above a threshold) with a relative one (top-N ranking among survivors).
// When nothing passes the absolute filter the period's cash stays uninvested.
type DualMomentum struct {
	symbols           []string
	lookback          int
	topN              int
	topFraction       float64
	absoluteThreshold float64
	weighting         Weighting
}

// DualMomentumOption configures a DualMomentum policy.
type DualMomentumOption func(*DualMomentum)

// WithDualMomentumLookback sets the trailing compound-return window.
func WithDualMomentumLookback(lookback int) DualMomentumOption {
	return func(p *DualMomentum) {
		p.lookback = lookback
	}
}

// WithTopN fixes the number of selected assets. Zero defers to the top
// fraction of the universe.
func WithTopN(n int) DualMomentumOption {
	return func(p *DualMomentum) {
		p.topN = n
	}
}

// WithTopFraction selects that fraction of the universe, at least one asset.
func WithTopFraction(fraction float64) DualMomentumOption {
	return func(p *DualMomentum) {
		p.topFraction = fraction
	}
}

// WithAbsoluteThreshold sets the minimum trailing return an asset must clear.
func WithAbsoluteThreshold(threshold float64) DualMomentumOption {
	return func(p *DualMomentum) {
		p.absoluteThreshold = threshold
	}
}

// WithWeighting selects equal or momentum-proportional weighting.
func WithWeighting(w Weighting) DualMomentumOption {
	return func(p *DualMomentum) {
		p.weighting = w
	}
}

// NewDualMomentum creates a dual momentum policy with a 12-period lookback
// selecting the top 40% of the universe with equal weighting.
func NewDualMomentum(symbols []string, opts ...DualMomentumOption) *DualMomentum {
	p := &DualMomentum{
		symbols:           symbols,
		lookback:          12,
		topN:              0,
		topFraction:       0.4,
		absoluteThreshold: 0,
		weighting:         WeightingEqual,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name implements Policy.
func (p *DualMomentum) Name() string {
	return "dual_momentum"
}

// Optimize implements Policy.
func (p *DualMomentum) Optimize(current []float64, newCapital float64, prices, returns *types.Table) (types.Allocation, error) {
	n := len(current)
	momentum := cumulativeReturns(returns, p.lookback)

	eligible := make([]int, 0, n)
	for j, m := range momentum {
		if m > p.absoluteThreshold && !math.IsNaN(m) {
			eligible = append(eligible, j)
		}
	}

	weights := make([]float64, n)

	if len(eligible) > 0 {
		k := p.topN
		if k <= 0 {
			fraction := p.topFraction
			if fraction <= 0 {
				fraction = 1
			}

			k = int(float64(n) * fraction)
			if k < 1 {
				k = 1
			}
		}

		if k > len(eligible) {
			k = len(eligible)
		}

		// Stable sort keeps the ranking deterministic across equal scores.
		sort.SliceStable(eligible, func(a, b int) bool {
			return momentum[eligible[a]] > momentum[eligible[b]]
		})
		selected := eligible[:k]

		switch p.weighting {
		case WeightingMomentum:
			var total float64

			for _, j := range selected {
				if momentum[j] > 0 {
					total += momentum[j]
				}
			}

			if total > 0 {
				for _, j := range selected {
					weights[j] = math.Max(momentum[j], 0) / total
				}
			} else {
				for _, j := range selected {
					weights[j] = 1.0 / float64(len(selected))
				}
			}
		default:
			for _, j := range selected {
				weights[j] = 1.0 / float64(len(selected))
			}
		}
	}

	return buyOnlyFromTargets(current, weights, newCapital), nil
}
