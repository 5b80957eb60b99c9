package sweep

import (
	"testing"
	"time"

	"github.com/accrue-lab/accrue/internal/policy"
	"github.com/accrue-lab/accrue/internal/types"
	"github.com/accrue-lab/accrue/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SweepTestSuite struct {
	suite.Suite

	prices *types.Table
}

func TestSweepSuite(t *testing.T) {
	suite.Run(t, new(SweepTestSuite))
}

const sweepConfig = `
initial_allocation: [0, 0]
periodic_cash: 100
rolling_window: 3
fee_schedule: zero
whole_units: false
`

func (s *SweepTestSuite) SetupTest() {
	n := 14
	dates := make([]time.Time, n)
	values := make([][]float64, n)

	for i := 0; i < n; i++ {
		dates[i] = time.Date(2019, time.Month(1), 28, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
		values[i] = []float64{
			100 + 3*float64(i),
			100 - 2*float64(i),
		}
	}

	prices, err := types.NewTable(dates, []string{"UP", "DOWN"}, values)
	s.Require().NoError(err)

	s.prices = prices
}

func (s *SweepTestSuite) TestExpandIsDeterministicCartesianProduct() {
	grid := Grid{
		"lookback": []any{1, 2, 3},
		"top_n":    []any{0, 1},
	}

	expanded := grid.Expand()
	s.Require().Len(expanded, 6)

	// Keys expand in sorted order, so lookback varies slowest.
	s.Equal(policy.Params{"lookback": 1, "top_n": 0}, expanded[0])
	s.Equal(policy.Params{"lookback": 1, "top_n": 1}, expanded[1])
	s.Equal(policy.Params{"lookback": 3, "top_n": 1}, expanded[5])
}

func (s *SweepTestSuite) TestExpandEmptyGrid() {
	expanded := Grid{}.Expand()
	s.Require().Len(expanded, 1)
	s.Empty(expanded[0])
}

func (s *SweepTestSuite) TestRunEvaluatesEveryCandidate() {
	runner, err := NewRunner(policy.NewDefaultRegistry(), sweepConfig, s.prices, 0)
	s.Require().NoError(err)

	grid := Grid{"lookback": []any{1, 2, 3}}

	results, best, err := runner.Run("momentum", grid, MetricFinalValue)
	s.Require().NoError(err)
	s.Require().Len(results, 3)
	s.Require().GreaterOrEqual(best, 0)
	s.Require().Less(best, 3)

	for _, res := range results {
		s.Positive(res.Report.FinalValue)
		s.Equal(res.Report.FinalValue, res.Score)
	}

	for _, res := range results {
		s.LessOrEqual(res.Score, results[best].Score)
	}
}

func (s *SweepTestSuite) TestLowerIsBetterMetricNegatesScore() {
	runner, err := NewRunner(policy.NewDefaultRegistry(), sweepConfig, s.prices, 0)
	s.Require().NoError(err)

	results, best, err := runner.Run("momentum", Grid{"lookback": []any{1, 2}}, MetricMaxDrawdown)
	s.Require().NoError(err)
	s.Require().Len(results, 2)

	for _, res := range results {
		s.Equal(-res.Report.MaxDrawdown, res.Score)
		s.GreaterOrEqual(results[best].Report.MaxDrawdown, 0.0)
		s.LessOrEqual(results[best].Report.MaxDrawdown, res.Report.MaxDrawdown)
	}
}

func (s *SweepTestSuite) TestRunErrors() {
	runner, err := NewRunner(policy.NewDefaultRegistry(), sweepConfig, s.prices, 0)
	s.Require().NoError(err)

	_, _, err = runner.Run("no_such_policy", Grid{}, MetricCAGR)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeUnknownPolicy))

	_, _, err = runner.Run("equal_weight", Grid{}, Metric("made_up"))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, _, err = runner.Run("equal_weight", Grid{"lookback": []any{}}, MetricCAGR)
	s.Require().Error(err)
}

func (s *SweepTestSuite) TestNewRunnerRejectsBadInputs() {
	_, err := NewRunner(policy.NewDefaultRegistry(), "rolling_window: [not, a, number]", s.prices, 0)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = NewRunner(policy.NewDefaultRegistry(), sweepConfig, nil, 0)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeNoPriceTable))
}
