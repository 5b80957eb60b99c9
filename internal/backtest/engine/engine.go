// Package engine defines the simulation engine contract: feed it a price
// table and a set of named allocation policies, and it replays history
// period by period, producing aligned result series per strategy.
package engine

import (
	"time"

	"github.com/accrue-lab/accrue/internal/policy"
	"github.com/accrue-lab/accrue/internal/types"
	"github.com/moznion/go-optional"
)

// OnPeriodCallback is invoked after each simulated period with the number of
// periods completed and the total to simulate.
type OnPeriodCallback func(current int, total int)

// StrategyResult holds one strategy's four aligned time series over the
// post-warm-up date range. Row i of every series belongs to Dates[i]; columns
// follow Symbols order.
type StrategyResult struct {
	Symbols     []string
	Dates       []time.Time
	AssetValues [][]float64
	Allocations [][]float64
	Weights     [][]float64
	TotalValues []float64
}

// Results maps strategy name to its result series. Every strategy in one run
// shares the identical date index.
type Results map[string]*StrategyResult

// Engine drives the backtest time loop.
type Engine interface {
	// Initialize the engine with a YAML configuration document.
	Initialize(config string) error
	// LoadPolicy registers an allocation policy under a unique strategy name.
	LoadPolicy(name string, p policy.Policy) error
	// SetPriceTable supplies the forward-filled price history the run
	// simulates over. The table is treated as read-only for the whole run.
	SetPriceTable(prices *types.Table) error
	// Run executes the simulation and returns per-strategy result series.
	// A run either completes with full period records for every strategy or
	// aborts; there is no partial result mode.
	Run(onPeriod optional.Option[OnPeriodCallback]) (Results, error)
}
