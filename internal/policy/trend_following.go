package policy

import (
	"github.com/accrue-lab/accrue/internal/types"
	"gonum.org/v1/gonum/stat"
)

// TrendFollowing invests only in assets that are in an uptrend. With a short
// window configured it uses a moving-average crossover (short MA above long
// MA); otherwise it requires the last price to sit above its long MA. When no
// asset is trending the period's cash stays uninvested.
type TrendFollowing struct {
	symbols     []string
	longWindow  int
	shortWindow int
}

// NewTrendFollowing creates a trend filter policy. shortWindow of zero
// selects the price-above-long-MA filter instead of the crossover.
func NewTrendFollowing(symbols []string, longWindow, shortWindow int) *TrendFollowing {
	return &TrendFollowing{
		symbols:     symbols,
		longWindow:  longWindow,
		shortWindow: shortWindow,
	}
}

// Name implements Policy.
func (p *TrendFollowing) Name() string {
	return "trend_following"
}

// Optimize implements Policy.
func (p *TrendFollowing) Optimize(current []float64, newCapital float64, prices, returns *types.Table) (types.Allocation, error) {
	n := prices.NumAssets()

	signaled := make([]bool, n)
	count := 0

	for j := 0; j < n; j++ {
		longMA := trailingMean(prices, j, p.longWindow)

		var trending bool
		if p.shortWindow > 0 {
			trending = trailingMean(prices, j, p.shortWindow) > longMA
		} else {
			trending = prices.At(prices.Len()-1, j) > longMA
		}

		if trending {
			signaled[j] = true
			count++
		}
	}

	weights := make([]float64, n)

	if count > 0 {
		for j, on := range signaled {
			if on {
				weights[j] = 1.0 / float64(count)
			}
		}
	}

	return buyOnlyFromTargets(current, weights, newCapital), nil
}

// trailingMean averages the last window prices of column j, using whatever
// history exists when the window is longer than the table.
func trailingMean(prices *types.Table, j, window int) float64 {
	return stat.Mean(column(prices.Tail(window), j), nil)
}
