package policy

import (
	"math"

	"github.com/accrue-lab/accrue/internal/types"
)

// Momentum tilts new cash toward assets with positive trailing returns.
// Assets with negative momentum or excessive volatility are screened out of
// the signal; when the screen removes everything the policy falls back to
// equal weighting.
type Momentum struct {
	symbols         []string
	lookback        int
	diversification bool
	volCap          float64
}

// MomentumOption configures a Momentum policy.
type MomentumOption func(*Momentum)

// WithMomentumLookback sets the number of trailing periods the momentum
// signal averages over.
func WithMomentumLookback(lookback int) MomentumOption {
	return func(p *Momentum) {
		p.lookback = lookback
	}
}

// WithDiversification blends the momentum weights 70/30 with equal weights to
// avoid concentrating in one asset.
func WithDiversification(enabled bool) MomentumOption {
	return func(p *Momentum) {
		p.diversification = enabled
	}
}

// NewMomentum creates a momentum policy with a 6-period lookback and a 10%
// per-period volatility screen.
func NewMomentum(symbols []string, opts ...MomentumOption) *Momentum {
	p := &Momentum{
		symbols:         symbols,
		lookback:        6,
		diversification: false,
		volCap:          0.1,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name implements Policy.
func (p *Momentum) Name() string {
	return "momentum"
}

// Optimize implements Policy.
func (p *Momentum) Optimize(current []float64, newCapital float64, prices, returns *types.Table) (types.Allocation, error) {
	momentum := columnMeans(returns, p.lookback)
	vol := columnStdDevs(returns, p.lookback)

	for j := range momentum {
		if momentum[j] < 0 || math.IsNaN(momentum[j]) {
			momentum[j] = 0
		}

		if vol[j] > p.volCap {
			momentum[j] = 0
		}
	}

	weights := normalizeOrEqual(momentum)

	if p.diversification {
		equal := equalWeights(len(weights))
		for j := range weights {
			weights[j] = 0.7*weights[j] + 0.3*equal[j]
		}
	}

	return buyOnlyFromTargets(current, weights, newCapital), nil
}
