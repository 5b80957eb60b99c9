package policy

import (
	"math"

	"github.com/accrue-lab/accrue/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// penaltyWeight enforces the sum-to-one constraint in the derivative-free
// solver used by the optimizer-backed policies.
const penaltyWeight = 1000.0

// solveWeights minimizes objective over the simplex of portfolio weights with
// per-asset lower bounds (the buy-only floor). Constraints are handled by
// projecting candidates into bounds and penalizing deviation from sum(w)=1,
// then Nelder-Mead searches the penalized objective. The returned weights are
// projected and renormalized.
func solveWeights(objective func(w []float64) float64, floors []float64) ([]float64, error) {
	n := len(floors)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			w := projectToFloors(x, floors)

			obj := objective(w)

			sum := floats.Sum(w)
			obj += penaltyWeight * (sum - 1) * (sum - 1)

			return obj
		},
	}

	initial := equalWeights(n)

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeOptimizerDiverged, "weight optimization failed", err)
	}

	weights := projectToFloors(result.X, floors)

	if total := floats.Sum(weights); total > 0 {
		floats.Scale(1/total, weights)
	} else {
		weights = equalWeights(n)
	}

	return weights, nil
}

// projectToFloors clamps each candidate weight into [floor_i, 1].
func projectToFloors(x, floors []float64) []float64 {
	w := make([]float64, len(x))
	for i, v := range x {
		w[i] = math.Min(math.Max(v, floors[i]), 1)
	}

	return w
}

// buyOnlyFloors returns the minimum weight per asset implied by existing
// exposure: current_i / (V0 + newCapital).
func buyOnlyFloors(current []float64, newCapital float64) []float64 {
	total := floats.Sum(current) + newCapital

	floors := make([]float64, len(current))
	if total <= 0 {
		return floors
	}

	for i, v := range current {
		floors[i] = v / total
	}

	return floors
}
