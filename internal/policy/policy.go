// Package policy implements capital-allocation policies: given the aged
// portfolio, fresh cash, and a trailing history window, each policy decides
// how the cash is deployed across the asset universe.
//
// All policies follow the buy-only convention: existing exposure is a floor,
// new allocations are non-negative, and the deployed total never exceeds the
// period's cash budget. Policies must not mutate their inputs and must be
// deterministic given identical inputs; the only sanctioned state is an
// explicit period counter in deliberately path-aware policies, which Reset
// clears between runs.
package policy

import (
	"github.com/accrue-lab/accrue/internal/types"
)

// Policy computes one period's allocation from the aged portfolio, the cash
// injection, and trailing price and return history ending at the current
// period.
type Policy interface {
	// Name identifies the policy variant.
	Name() string
	// Optimize returns the period's allocation. current holds the aged dollar
	// exposure per asset, newCapital the cash available this period, and
	// prices/returns the trailing history window including the current period.
	Optimize(current []float64, newCapital float64, prices, returns *types.Table) (types.Allocation, error)
}

// Resettable is implemented by stateful policies that track elapsed periods.
// The engine must not reuse such a policy across simulation runs without
// calling Reset in between.
type Resettable interface {
	Reset()
}
