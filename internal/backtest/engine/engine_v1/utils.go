package engine

import (
	"github.com/shopspring/decimal"
)

// truncateVector floors each entry to whole currency units. Truncation uses
// decimal arithmetic so values like 96.9999999 coming out of float math do
// not round up past the intended unit.
func truncateVector(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i], _ = decimal.NewFromFloat(v).Truncate(0).Float64()
	}

	return out
}

// applyFee subtracts the per-asset fee from every position that traded this
// period. Positions are floored at zero so a fee can never drive an asset
// value negative.
func applyFee(portfolio []float64, allocation []float64, fee func(float64) float64) []float64 {
	out := make([]float64, len(portfolio))
	for i, v := range portfolio {
		out[i] = v - fee(allocation[i])
		if out[i] < 0 {
			out[i] = 0
		}
	}

	return out
}
