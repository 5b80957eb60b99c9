package policy

import (
	"testing"
	"time"

	"github.com/accrue-lab/accrue/internal/types"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/floats"
)

type PolicyTestSuite struct {
	suite.Suite

	symbols []string
	prices  *types.Table
	returns *types.Table
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(PolicyTestSuite))
}

func newPriceTable(t *testing.T, rows [][]float64, symbols []string) *types.Table {
	t.Helper()

	dates := make([]time.Time, len(rows))
	for i := range dates {
		dates[i] = time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
	}

	table, err := types.NewTable(dates, symbols, rows)
	if err != nil {
		t.Fatalf("building price table: %v", err)
	}

	return table
}

func (suite *PolicyTestSuite) SetupTest() {
	suite.symbols = []string{"AAA", "BBB", "CCC"}

	// AAA trends up, BBB drifts down, CCC wobbles.
	suite.prices = newPriceTable(suite.T(), [][]float64{
		{100, 100, 100},
		{104, 98, 101},
		{108, 97, 99},
		{113, 95, 102},
		{117, 94, 100},
		{122, 92, 103},
		{127, 91, 101},
		{132, 89, 104},
		{137, 88, 102},
		{143, 86, 105},
		{149, 85, 103},
		{155, 83, 106},
		{161, 82, 104},
	}, suite.symbols)

	returns, err := suite.prices.Returns()
	suite.Require().NoError(err)
	suite.returns = returns
}

func (suite *PolicyTestSuite) flatHistory() (*types.Table, *types.Table) {
	rows := make([][]float64, 13)
	for i := range rows {
		rows[i] = []float64{100, 100, 100}
	}

	prices := newPriceTable(suite.T(), rows, suite.symbols)

	returns, err := prices.Returns()
	suite.Require().NoError(err)

	return prices, returns
}

func (suite *PolicyTestSuite) allPolicies() []Policy {
	return []Policy{
		NewEqualWeight(suite.symbols),
		NewMomentum(suite.symbols),
		NewMomentum(suite.symbols, WithDiversification(true)),
		NewDualMomentum(suite.symbols),
		NewDualMomentum(suite.symbols, WithWeighting(WeightingMomentum), WithTopN(2)),
		NewRiskParity(suite.symbols, 0),
		NewTrendFollowing(suite.symbols, 10, 3),
		NewTrendFollowing(suite.symbols, 10, 0),
		NewValueAveraging(suite.symbols, 0.02),
		NewVolatilityTargeting(suite.symbols),
		NewVolatilityTargeting(suite.symbols, WithInverseVolBase(true)),
		NewValueOpportunity(suite.symbols, 12, 1, 0.5),
		NewMeanReversion(suite.symbols, 3, 12, 2),
		NewMinVariance(suite.symbols, 0),
		NewMaxSharpe(suite.symbols, 0),
	}
}

func (suite *PolicyTestSuite) TestBuyOnlyInvariantAcrossVariants() {
	current := []float64{500, 300, 200}
	budget := 1000.0

	for _, p := range suite.allPolicies() {
		suite.Run(p.Name(), func() {
			alloc, err := p.Optimize(current, budget, suite.prices, suite.returns)
			suite.Require().NoError(err)

			suite.NoError(alloc.CheckBuyOnly(len(suite.symbols), budget))

			// New portfolio never falls below the aged exposure.
			for i := range current {
				suite.GreaterOrEqual(alloc.NewPortfolio[i], current[i]-1e-9)
			}

			// Weights sum to 1 once anything is invested.
			suite.InDelta(1.0, floats.Sum(alloc.NewWeights), 1e-9)
		})
	}
}

func (suite *PolicyTestSuite) TestPoliciesDoNotMutateInputs() {
	current := []float64{500, 300, 200}
	original := []float64{500, 300, 200}

	for _, p := range suite.allPolicies() {
		suite.Run(p.Name(), func() {
			_, err := p.Optimize(current, 1000, suite.prices, suite.returns)
			suite.Require().NoError(err)
			suite.Equal(original, current)
		})
	}
}

func (suite *PolicyTestSuite) TestEqualWeight() {
	p := NewEqualWeight(suite.symbols)

	alloc, err := p.Optimize([]float64{0, 0, 0}, 300, suite.prices, suite.returns)
	suite.Require().NoError(err)

	suite.Equal([]float64{100, 100, 100}, alloc.NewAllocation)
	suite.Equal([]float64{100, 100, 100}, alloc.NewPortfolio)
	for _, w := range alloc.NewWeights {
		suite.InDelta(1.0/3.0, w, 1e-12)
	}
}

func (suite *PolicyTestSuite) TestEqualWeightFallbackOnFlatHistory() {
	prices, returns := suite.flatHistory()

	volBased := []Policy{
		NewRiskParity(suite.symbols, 0),
		NewMomentum(suite.symbols),
		NewMinVariance(suite.symbols, 0),
		NewMaxSharpe(suite.symbols, 0),
	}

	for _, p := range volBased {
		suite.Run(p.Name(), func() {
			alloc, err := p.Optimize([]float64{0, 0, 0}, 300, prices, returns)
			suite.Require().NoError(err)

			for _, w := range alloc.NewWeights {
				suite.InDelta(1.0/3.0, w, 1e-9)
			}
		})
	}
}

func (suite *PolicyTestSuite) TestMomentumScreensLosers() {
	p := NewMomentum(suite.symbols)

	alloc, err := p.Optimize([]float64{0, 0, 0}, 900, suite.prices, suite.returns)
	suite.Require().NoError(err)

	// BBB only loses ground; its momentum is clipped to zero and it gets no cash.
	suite.Zero(alloc.NewAllocation[1])
	suite.Positive(alloc.NewAllocation[0])
}

func (suite *PolicyTestSuite) TestDualMomentumSelectsTopAsset() {
	p := NewDualMomentum(suite.symbols, WithTopN(1))

	alloc, err := p.Optimize([]float64{0, 0, 0}, 900, suite.prices, suite.returns)
	suite.Require().NoError(err)

	// AAA has the strongest trailing compound return in the fixture.
	suite.InDelta(900, alloc.NewAllocation[0], 1e-9)
	suite.Zero(alloc.NewAllocation[1])
	suite.Zero(alloc.NewAllocation[2])
}

func (suite *PolicyTestSuite) TestDualMomentumHoldsCashWhenNothingQualifies() {
	// Threshold above any asset's trailing return keeps everything in cash.
	p := NewDualMomentum(suite.symbols, WithAbsoluteThreshold(10))

	alloc, err := p.Optimize([]float64{0, 0, 0}, 900, suite.prices, suite.returns)
	suite.Require().NoError(err)

	suite.Zero(floats.Sum(alloc.NewAllocation))
	suite.Zero(floats.Sum(alloc.NewWeights))
}

func (suite *PolicyTestSuite) TestTrendFollowingCrossover() {
	p := NewTrendFollowing(suite.symbols, 10, 3)

	alloc, err := p.Optimize([]float64{0, 0, 0}, 600, suite.prices, suite.returns)
	suite.Require().NoError(err)

	// AAA's short MA is above its long MA; BBB's is below.
	suite.Positive(alloc.NewAllocation[0])
	suite.Zero(alloc.NewAllocation[1])
}

func (suite *PolicyTestSuite) TestValueAveragingTargetPath() {
	p := NewValueAveraging(suite.symbols, 0.0)

	// First period: target = 100, portfolio empty, invest the full shortfall.
	alloc, err := p.Optimize([]float64{0, 0, 0}, 100, suite.prices, suite.returns)
	suite.Require().NoError(err)
	suite.InDelta(100, floats.Sum(alloc.NewAllocation), 1e-9)

	// Second period: target = 200, portfolio already worth 250, invest nothing.
	alloc, err = p.Optimize([]float64{250, 0, 0}, 100, suite.prices, suite.returns)
	suite.Require().NoError(err)
	suite.Zero(floats.Sum(alloc.NewAllocation))

	// Reset restarts the target trajectory.
	p.Reset()

	alloc, err = p.Optimize([]float64{0, 0, 0}, 100, suite.prices, suite.returns)
	suite.Require().NoError(err)
	suite.InDelta(100, floats.Sum(alloc.NewAllocation), 1e-9)
}

func (suite *PolicyTestSuite) TestVolatilityTargetingScalesDownDeployment() {
	// A very low target forces only part of the cash to be deployed.
	p := NewVolatilityTargeting(suite.symbols, WithTargetVolatility(0.0001))

	alloc, err := p.Optimize([]float64{0, 0, 0}, 900, suite.prices, suite.returns)
	suite.Require().NoError(err)

	suite.Less(floats.Sum(alloc.NewAllocation), 900.0)
	suite.Positive(floats.Sum(alloc.NewAllocation))
}

func (suite *PolicyTestSuite) TestMeanReversionFavorsLaggards() {
	p := NewMeanReversion(suite.symbols, 3, 12, 1)

	alloc, err := p.Optimize([]float64{0, 0, 0}, 900, suite.prices, suite.returns)
	suite.Require().NoError(err)

	// Exactly one asset is selected and the full budget goes to it.
	invested := 0
	for _, a := range alloc.NewAllocation {
		if a > 0 {
			invested++
		}
	}

	suite.Equal(1, invested)
	suite.InDelta(900, floats.Sum(alloc.NewAllocation), 1e-9)
}

func (suite *PolicyTestSuite) TestOptimizerPoliciesAreDeterministic() {
	for _, p := range []Policy{NewMinVariance(suite.symbols, 0), NewMaxSharpe(suite.symbols, 0)} {
		suite.Run(p.Name(), func() {
			first, err := p.Optimize([]float64{100, 100, 100}, 300, suite.prices, suite.returns)
			suite.Require().NoError(err)

			second, err := p.Optimize([]float64{100, 100, 100}, 300, suite.prices, suite.returns)
			suite.Require().NoError(err)

			suite.Equal(first.NewWeights, second.NewWeights)
		})
	}
}

func (suite *PolicyTestSuite) TestMinVariancePrefersCalmAsset() {
	p := NewMinVariance(suite.symbols, 0)

	alloc, err := p.Optimize([]float64{0, 0, 0}, 900, suite.prices, suite.returns)
	suite.Require().NoError(err)

	// The steadily trending AAA has the lowest return variance in the fixture,
	// so it must hold the largest weight.
	suite.Greater(alloc.NewWeights[0], alloc.NewWeights[2])
}
