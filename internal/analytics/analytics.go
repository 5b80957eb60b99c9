// Package analytics computes summary performance statistics over the total
// value series a simulation produces. Periodic cash injections are external
// flows, so all return-based statistics use time-weighted period returns
// that strip the injections out before chain-linking.
package analytics

import (
	"math"

	"github.com/accrue-lab/accrue/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// DefaultPeriodsPerYear annualizes monthly series.
const DefaultPeriodsPerYear = 12

// Report summarizes one strategy's simulated performance.
type Report struct {
	FinalValue           float64 `yaml:"final_value"`
	TotalInvested        float64 `yaml:"total_invested"`
	TotalReturn          float64 `yaml:"total_return"`
	CAGR                 float64 `yaml:"cagr"`
	AnnualizedVolatility float64 `yaml:"annualized_volatility"`
	SharpeRatio          float64 `yaml:"sharpe_ratio"`
	SortinoRatio         float64 `yaml:"sortino_ratio"`
	MaxDrawdown          float64 `yaml:"max_drawdown"`
	// InformationRatio is only set when the run has a benchmark to measure
	// against.
	InformationRatio *float64 `yaml:"information_ratio,omitempty"`
}

// PeriodReturns derives time-weighted period returns from a total value
// series. initialValue is the portfolio value before the first recorded
// period; cashPerPeriod is the external flow landing at the start of every
// period, so each return measures the net gain against the prior value plus
// that period's contribution. A period with no capital at all contributes
// zero.
func PeriodReturns(totals []float64, cashPerPeriod float64, initialValue float64) []float64 {
	returns := make([]float64, len(totals))
	prev := initialValue

	for i, total := range totals {
		if start := prev + cashPerPeriod; start > 0 {
			returns[i] = (total - start) / start
		}

		prev = total
	}

	return returns
}

// EquityCurve chain-links period returns into a growth-of-one-unit series.
func EquityCurve(returns []float64) []float64 {
	curve := make([]float64, len(returns))
	value := 1.0

	for i, r := range returns {
		value *= 1 + r
		curve[i] = value
	}

	return curve
}

// TotalReturn is the chain-linked cumulative return over all periods.
func TotalReturn(returns []float64) float64 {
	value := 1.0
	for _, r := range returns {
		value *= 1 + r
	}

	return value - 1
}

// CAGR annualizes the chain-linked return over the series length.
func CAGR(returns []float64, periodsPerYear int) float64 {
	if len(returns) == 0 {
		return 0
	}

	growth := 1 + TotalReturn(returns)
	if growth <= 0 {
		return -1
	}

	years := float64(len(returns)) / float64(periodsPerYear)

	return math.Pow(growth, 1/years) - 1
}

// AnnualizedVolatility scales the period return standard deviation to a
// yearly horizon.
func AnnualizedVolatility(returns []float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}

	return stat.StdDev(returns, nil) * math.Sqrt(float64(periodsPerYear))
}

// SharpeRatio is the annualized excess return per unit of volatility.
// riskFree is a per-period rate.
func SharpeRatio(returns []float64, riskFree float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}

	sd := stat.StdDev(returns, nil)
	if sd == 0 {
		return 0
	}

	return (stat.Mean(returns, nil) - riskFree) / sd * math.Sqrt(float64(periodsPerYear))
}

// SortinoRatio is the annualized excess return per unit of downside
// deviation, penalizing only returns below the risk-free rate.
func SortinoRatio(returns []float64, riskFree float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}

	downside := 0.0
	for _, r := range returns {
		if d := r - riskFree; d < 0 {
			downside += d * d
		}
	}

	downside = math.Sqrt(downside / float64(len(returns)))
	if downside == 0 {
		return 0
	}

	return (stat.Mean(returns, nil) - riskFree) / downside * math.Sqrt(float64(periodsPerYear))
}

// MaxDrawdown is the largest peak-to-trough loss of the chain-linked equity
// curve, returned as a positive fraction.
func MaxDrawdown(returns []float64) float64 {
	peak := 1.0
	value := 1.0
	maxDD := 0.0

	for _, r := range returns {
		value *= 1 + r
		if value > peak {
			peak = value
		}

		if dd := (peak - value) / peak; dd > maxDD {
			maxDD = dd
		}
	}

	return maxDD
}

// InformationRatio measures annualized active return against a benchmark per
// unit of tracking error. The two series must be date-aligned.
func InformationRatio(returns, benchmark []float64, periodsPerYear int) (float64, error) {
	if len(returns) != len(benchmark) {
		return 0, errors.Newf(errors.ErrCodeVectorLengthMismatch,
			"return series length %d, benchmark length %d", len(returns), len(benchmark))
	}

	if len(returns) < 2 {
		return 0, nil
	}

	active := make([]float64, len(returns))
	for i := range returns {
		active[i] = returns[i] - benchmark[i]
	}

	te := stat.StdDev(active, nil)
	if te == 0 {
		return 0, nil
	}

	return stat.Mean(active, nil) / te * math.Sqrt(float64(periodsPerYear)), nil
}

// Summarize computes the full report for one strategy's total value series.
func Summarize(totals []float64, cashPerPeriod, initialValue, riskFree float64, periodsPerYear int) Report {
	returns := PeriodReturns(totals, cashPerPeriod, initialValue)

	final := 0.0
	if len(totals) > 0 {
		final = totals[len(totals)-1]
	}

	return Report{
		FinalValue:           final,
		TotalInvested:        initialValue + cashPerPeriod*float64(len(totals)),
		TotalReturn:          TotalReturn(returns),
		CAGR:                 CAGR(returns, periodsPerYear),
		AnnualizedVolatility: AnnualizedVolatility(returns, periodsPerYear),
		SharpeRatio:          SharpeRatio(returns, riskFree, periodsPerYear),
		SortinoRatio:         SortinoRatio(returns, riskFree, periodsPerYear),
		MaxDrawdown:          MaxDrawdown(returns),
	}
}
