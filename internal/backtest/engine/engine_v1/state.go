package engine

import (
	"time"

	"github.com/accrue-lab/accrue/internal/backtest/engine"
	"github.com/accrue-lab/accrue/internal/policy"
	"github.com/accrue-lab/accrue/internal/types"
	"github.com/accrue-lab/accrue/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// strategyState tracks one strategy's live portfolio through the period loop
// and accumulates its per-period records. Records are append-only and strictly
// period-ordered; the live portfolio is the only mutable piece between
// periods.
type strategyState struct {
	name      string
	policy    policy.Policy
	portfolio []float64
	records   []types.PeriodRecord
}

func newStrategyState(name string, p policy.Policy, initialAllocation []float64, expectedRecords int) *strategyState {
	portfolio := make([]float64, len(initialAllocation))
	copy(portfolio, initialAllocation)

	return &strategyState{
		name:      name,
		policy:    p,
		portfolio: portfolio,
		records:   make([]types.PeriodRecord, 0, expectedRecords),
	}
}

// reset restores the state to the start of a run: the portfolio back to the
// initial allocation, records cleared, and any stateful policy zeroed.
func (s *strategyState) reset(initialAllocation []float64) {
	s.portfolio = append(s.portfolio[:0], initialAllocation...)
	s.records = s.records[:0]

	if r, ok := s.policy.(policy.Resettable); ok {
		r.Reset()
	}
}

// age grows the live portfolio in place by one period of price growth.
func (s *strategyState) age(growth []float64) {
	floats.Mul(s.portfolio, growth)
}

// record appends the post-trade snapshot for one period and adopts the new
// portfolio as the live one.
func (s *strategyState) record(rec types.PeriodRecord) {
	s.records = append(s.records, rec)
	copy(s.portfolio, rec.AssetValues)
}

// result aggregates the accumulated records into the aligned output series.
func (s *strategyState) result(symbols []string) (*engine.StrategyResult, error) {
	if len(s.records) == 0 {
		return nil, errors.Newf(errors.ErrCodeResultsNotReady, "strategy %s has no period records", s.name)
	}

	res := &engine.StrategyResult{
		Symbols:     append([]string(nil), symbols...),
		Dates:       make([]time.Time, len(s.records)),
		AssetValues: make([][]float64, len(s.records)),
		Allocations: make([][]float64, len(s.records)),
		Weights:     make([][]float64, len(s.records)),
		TotalValues: make([]float64, len(s.records)),
	}

	for i, rec := range s.records {
		res.Dates[i] = rec.Date
		res.AssetValues[i] = append([]float64(nil), rec.AssetValues...)
		res.Allocations[i] = append([]float64(nil), rec.Allocation...)
		res.Weights[i] = append([]float64(nil), rec.Weights...)
		res.TotalValues[i] = rec.TotalValue
	}

	return res, nil
}
