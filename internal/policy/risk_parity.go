package policy

import (
	"math"

	"github.com/accrue-lab/accrue/internal/types"
)

// RiskParity weights assets by inverse volatility over the history window, so
// calmer assets receive proportionally more capital. Zero-volatility columns
// carry no signal; if every column is flat the policy falls back to equal
// weighting rather than dividing by zero.
type RiskParity struct {
	symbols  []string
	lookback int
}

// NewRiskParity creates an inverse-volatility policy. A lookback of zero uses
// the entire supplied history window.
func NewRiskParity(symbols []string, lookback int) *RiskParity {
	return &RiskParity{
		symbols:  symbols,
		lookback: lookback,
	}
}

// Name implements Policy.
func (p *RiskParity) Name() string {
	return "risk_parity"
}

// Optimize implements Policy.
func (p *RiskParity) Optimize(current []float64, newCapital float64, prices, returns *types.Table) (types.Allocation, error) {
	vol := columnStdDevs(returns, p.lookback)

	invVol := make([]float64, len(vol))
	for j, v := range vol {
		if v > 0 && !math.IsNaN(v) {
			invVol[j] = 1 / v
		}
	}

	weights := normalizeOrEqual(invVol)

	return buyOnlyFromTargets(current, weights, newCapital), nil
}
