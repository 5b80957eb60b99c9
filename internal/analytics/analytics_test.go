package analytics

import (
	"math"
	"testing"

	"github.com/accrue-lab/accrue/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type AnalyticsTestSuite struct {
	suite.Suite
}

func TestAnalyticsSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsTestSuite))
}

func (s *AnalyticsTestSuite) TestPeriodReturnsStripInjections() {
	// Value starts at 100 with 10 of cash arriving at the start of each
	// period; the base for each return is the prior value plus that cash.
	totals := []float64{115, 120}

	returns := PeriodReturns(totals, 10, 100)
	s.Require().Len(returns, 2)
	s.InDelta((115.0-110)/110, returns[0], 1e-9)
	s.InDelta((120.0-125)/125, returns[1], 1e-9)
}

func (s *AnalyticsTestSuite) TestPeriodReturnsFirstPeriodFundedByCash() {
	// An empty portfolio still measures its first period against the cash
	// that just landed, so fee drag shows up as a negative return.
	returns := PeriodReturns([]float64{96.5, 192.5}, 100, 0)
	s.Require().Len(returns, 2)
	s.InDelta(-0.035, returns[0], 1e-9)
	s.InDelta((192.5-196.5)/196.5, returns[1], 1e-9)
}

func (s *AnalyticsTestSuite) TestPeriodReturnsNoCapitalAtAll() {
	returns := PeriodReturns([]float64{0, 0}, 0, 0)
	s.Equal([]float64{0, 0}, returns)
}

func (s *AnalyticsTestSuite) TestTotalReturnChainLinks() {
	returns := []float64{0.1, -0.1}
	s.InDelta(-0.01, TotalReturn(returns), 1e-9)
}

func (s *AnalyticsTestSuite) TestCAGR() {
	// 21% over two years of monthly periods is 10% a year.
	returns := make([]float64, 24)
	perPeriod := math.Pow(1.21, 1.0/24) - 1

	for i := range returns {
		returns[i] = perPeriod
	}

	s.InDelta(0.10, CAGR(returns, DefaultPeriodsPerYear), 1e-9)
}

func (s *AnalyticsTestSuite) TestCAGRTotalLoss() {
	s.Equal(-1.0, CAGR([]float64{-1.0}, DefaultPeriodsPerYear))
}

func (s *AnalyticsTestSuite) TestAnnualizedVolatility() {
	returns := []float64{0.02, -0.02, 0.02, -0.02}

	// Sample standard deviation of the alternating series, scaled by
	// sqrt(12).
	want := 0.023094010767585 * math.Sqrt(12)
	s.InDelta(want, AnnualizedVolatility(returns, DefaultPeriodsPerYear), 1e-9)
}

func (s *AnalyticsTestSuite) TestSharpeSignFollowsExcessReturn() {
	up := []float64{0.01, 0.02, 0.015, 0.01}
	down := []float64{-0.01, -0.02, -0.015, -0.01}

	s.Positive(SharpeRatio(up, 0, DefaultPeriodsPerYear))
	s.Negative(SharpeRatio(down, 0, DefaultPeriodsPerYear))
	s.Zero(SharpeRatio([]float64{0.01, 0.01, 0.01}, 0, DefaultPeriodsPerYear))
}

func (s *AnalyticsTestSuite) TestSortinoIgnoresUpsideVolatility() {
	// Same mean, but one series takes its volatility on the upside only.
	calmDownside := []float64{0.05, 0.0, 0.05, 0.0}
	lossy := []float64{0.06, -0.01, 0.06, -0.01}

	s.Zero(SortinoRatio(calmDownside, 0, DefaultPeriodsPerYear))
	s.Positive(SortinoRatio(lossy, 0, DefaultPeriodsPerYear))
}

func (s *AnalyticsTestSuite) TestMaxDrawdown() {
	// Equity path 1.0 -> 1.1 -> 0.99: trough is 10% below the peak.
	returns := []float64{0.1, -0.1}
	s.InDelta(0.1, MaxDrawdown(returns), 1e-9)

	s.Zero(MaxDrawdown([]float64{0.01, 0.02, 0.03}))
}

func (s *AnalyticsTestSuite) TestEquityCurve() {
	curve := EquityCurve([]float64{0.1, -0.1})
	s.Require().Len(curve, 2)
	s.InDelta(1.1, curve[0], 1e-9)
	s.InDelta(0.99, curve[1], 1e-9)
}

func (s *AnalyticsTestSuite) TestInformationRatio() {
	returns := []float64{0.02, 0.03, 0.01, 0.04}
	benchmark := []float64{0.01, 0.01, 0.01, 0.01}

	ir, err := InformationRatio(returns, benchmark, DefaultPeriodsPerYear)
	s.Require().NoError(err)
	s.Positive(ir)

	same, err := InformationRatio(returns, returns, DefaultPeriodsPerYear)
	s.Require().NoError(err)
	s.Zero(same)

	_, err = InformationRatio(returns, benchmark[:2], DefaultPeriodsPerYear)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeVectorLengthMismatch))
}

func (s *AnalyticsTestSuite) TestSummarize() {
	report := Summarize([]float64{115, 120}, 10, 100, 0, DefaultPeriodsPerYear)

	s.InDelta(120, report.FinalValue, 1e-9)
	s.InDelta(120, report.TotalInvested, 1e-9)
	s.Positive(report.TotalReturn)
	s.Positive(report.CAGR)
	s.GreaterOrEqual(report.MaxDrawdown, 0.0)
}
