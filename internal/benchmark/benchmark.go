// Package benchmark builds comparison equity curves that receive the same
// periodic contributions as the simulated strategies, so strategy results can
// be judged against doing something simpler with the identical cash stream.
package benchmark

import (
	"math"

	"github.com/accrue-lab/accrue/internal/types"
	"github.com/accrue-lab/accrue/pkg/errors"
)

// weightSumTolerance absorbs float drift when checking basket weights.
const weightSumTolerance = 1e-9

// Benchmark produces a total value series aligned to a simulation's
// post-warm-up dates: one value per price row after the first window rows.
type Benchmark interface {
	Name() string
	Totals(prices *types.Table, window int, initialValue, cashPerPeriod float64) ([]float64, error)
}

func checkHistory(prices *types.Table, window int) error {
	if prices == nil {
		return errors.New(errors.ErrCodeNoPriceTable, "price table is nil")
	}

	if prices.Len() <= window {
		return errors.NewInsufficientDataError(window+1, prices.Len(), "",
			"price history shorter than rolling window plus one")
	}

	return nil
}

// Cash holds every contribution uninvested.
type Cash struct{}

// NewCash creates the cash-under-the-mattress benchmark.
func NewCash() *Cash { return &Cash{} }

// Name implements Benchmark.
func (b *Cash) Name() string { return "cash" }

// Totals implements Benchmark.
func (b *Cash) Totals(prices *types.Table, window int, initialValue, cashPerPeriod float64) ([]float64, error) {
	if err := checkHistory(prices, window); err != nil {
		return nil, err
	}

	totals := make([]float64, prices.Len()-window)
	value := initialValue

	for i := range totals {
		value += cashPerPeriod
		totals[i] = value
	}

	return totals, nil
}

// RiskFree compounds at a fixed per-period rate before each contribution
// after the first.
type RiskFree struct {
	ratePerPeriod float64
}

// NewRiskFree creates a risk-free compounding benchmark. The rate is per
// period, not annualized.
func NewRiskFree(ratePerPeriod float64) *RiskFree {
	return &RiskFree{ratePerPeriod: ratePerPeriod}
}

// Name implements Benchmark.
func (b *RiskFree) Name() string { return "risk_free" }

// Totals implements Benchmark.
func (b *RiskFree) Totals(prices *types.Table, window int, initialValue, cashPerPeriod float64) ([]float64, error) {
	if err := checkHistory(prices, window); err != nil {
		return nil, err
	}

	totals := make([]float64, prices.Len()-window)
	value := initialValue

	for i := range totals {
		if i > 0 {
			value *= 1 + b.ratePerPeriod
		}

		value += cashPerPeriod
		totals[i] = value
	}

	return totals, nil
}

// Index puts every contribution into a single asset of the price table.
type Index struct {
	symbol string
}

// NewIndex creates a single-asset benchmark tracking the given symbol.
func NewIndex(symbol string) *Index {
	return &Index{symbol: symbol}
}

// Name implements Benchmark.
func (b *Index) Name() string { return "index" }

// Totals implements Benchmark.
func (b *Index) Totals(prices *types.Table, window int, initialValue, cashPerPeriod float64) ([]float64, error) {
	if err := checkHistory(prices, window); err != nil {
		return nil, err
	}

	col, err := prices.SymbolIndex(b.symbol)
	if err != nil {
		return nil, err
	}

	totals := make([]float64, prices.Len()-window)
	value := initialValue

	// The first output date is the curve's starting point; growth applies
	// from the second one on.
	for t := window; t < prices.Len(); t++ {
		if t > window {
			value *= prices.At(t, col) / prices.At(t-1, col)
		}

		value += cashPerPeriod
		totals[t-window] = value
	}

	return totals, nil
}

// Basket splits every contribution across assets by fixed weights and lets
// each slice ride its own asset, with no rebalancing between periods.
type Basket struct {
	symbols []string
	weights []float64
}

// NewBasket creates a fixed-weight basket benchmark. Weights are matched to
// symbols by position and must sum to one.
func NewBasket(symbols []string, weights []float64) (*Basket, error) {
	if len(symbols) != len(weights) {
		return nil, errors.Newf(errors.ErrCodeVectorLengthMismatch,
			"%d symbols, %d weights", len(symbols), len(weights))
	}

	sum := 0.0

	for i, w := range weights {
		if w < 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidWeights, "negative weight %.4f for %s", w, symbols[i])
		}

		sum += w
	}

	if math.Abs(sum-1) > weightSumTolerance {
		return nil, errors.Newf(errors.ErrCodeInvalidWeights, "basket weights sum to %.6f, want 1", sum)
	}

	return &Basket{
		symbols: append([]string(nil), symbols...),
		weights: append([]float64(nil), weights...),
	}, nil
}

// Name implements Benchmark.
func (b *Basket) Name() string { return "basket" }

// Totals implements Benchmark.
func (b *Basket) Totals(prices *types.Table, window int, initialValue, cashPerPeriod float64) ([]float64, error) {
	if err := checkHistory(prices, window); err != nil {
		return nil, err
	}

	cols := make([]int, len(b.symbols))

	for i, symbol := range b.symbols {
		col, err := prices.SymbolIndex(symbol)
		if err != nil {
			return nil, err
		}

		cols[i] = col
	}

	values := make([]float64, len(b.symbols))
	for i, w := range b.weights {
		values[i] = initialValue * w
	}

	totals := make([]float64, prices.Len()-window)

	for t := window; t < prices.Len(); t++ {
		total := 0.0

		for i, col := range cols {
			if t > window {
				values[i] *= prices.At(t, col) / prices.At(t-1, col)
			}

			values[i] += cashPerPeriod * b.weights[i]
			total += values[i]
		}

		totals[t-window] = total
	}

	return totals, nil
}
