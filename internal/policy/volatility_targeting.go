package policy

import (
	"math"

	"github.com/accrue-lab/accrue/internal/types"
)

// VolatilityTargeting scales how much of the period's cash is deployed so the
// portfolio's estimated annualized volatility stays near a target. Cash left
// undeployed simply stays uninvested for the period; the policy never sells
// to reduce risk.
type VolatilityTargeting struct {
	symbols        []string
	targetVol      float64
	lookback       int
	inverseVol     bool
	periodsPerYear float64
}

// VolatilityTargetingOption configures a VolatilityTargeting policy.
type VolatilityTargetingOption func(*VolatilityTargeting)

// WithTargetVolatility sets the annualized volatility target.
func WithTargetVolatility(target float64) VolatilityTargetingOption {
	return func(p *VolatilityTargeting) {
		p.targetVol = target
	}
}

// WithVolTargetLookback sets the risk-estimation window.
func WithVolTargetLookback(lookback int) VolatilityTargetingOption {
	return func(p *VolatilityTargeting) {
		p.lookback = lookback
	}
}

// WithInverseVolBase uses inverse-volatility base weights instead of equal
// weights.
func WithInverseVolBase(enabled bool) VolatilityTargetingOption {
	return func(p *VolatilityTargeting) {
		p.inverseVol = enabled
	}
}

// NewVolatilityTargeting creates a policy targeting 12% annualized volatility
// over a 12-period estimation window on monthly data.
func NewVolatilityTargeting(symbols []string, opts ...VolatilityTargetingOption) *VolatilityTargeting {
	p := &VolatilityTargeting{
		symbols:        symbols,
		targetVol:      0.12,
		lookback:       12,
		inverseVol:     false,
		periodsPerYear: 12,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name implements Policy.
func (p *VolatilityTargeting) Name() string {
	return "volatility_targeting"
}

// Optimize implements Policy.
func (p *VolatilityTargeting) Optimize(current []float64, newCapital float64, prices, returns *types.Table) (types.Allocation, error) {
	n := len(current)

	var base []float64

	if p.inverseVol {
		vol := columnStdDevs(returns, p.lookback)

		invVol := make([]float64, n)
		for j, v := range vol {
			if v > 0 && !math.IsNaN(v) {
				invVol[j] = 1 / v
			}
		}

		base = normalizeOrEqual(invVol)
	} else {
		base = equalWeights(n)
	}

	// Annualize the covariance so it is comparable with the target.
	cov := covarianceMatrix(returns, p.lookback)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, cov.At(i, j)*p.periodsPerYear)
		}
	}

	scale := 1.0
	if portVol := portfolioVolatility(base, cov); portVol > 0 {
		scale = math.Min(1, p.targetVol/portVol)
	}

	return buyOnlyFromTargets(current, base, newCapital*scale), nil
}
