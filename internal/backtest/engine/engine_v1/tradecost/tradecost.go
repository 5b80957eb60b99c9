// Package tradecost models per-trade transaction costs charged by the
// simulation engine after each policy decision.
package tradecost

// Model computes the fee for one asset position in one period, given the
// cash newly allocated to it. Positions that receive no cash trade nothing
// and cost nothing.
type Model interface {
	// Assess returns the fee in currency units for a position that received
	// the given allocation this period.
	Assess(allocation float64) float64
}

// Schedule selects a fee model.
type Schedule string

const (
	// ScheduleFlat charges a fixed amount per traded asset per period.
	ScheduleFlat Schedule = "flat"
	// ScheduleZero charges nothing, for frictionless comparisons.
	ScheduleZero Schedule = "zero"
)

// AllSchedules lists the valid schedule values for schema generation.
var AllSchedules = []any{
	ScheduleFlat,
	ScheduleZero,
}

// GetModel returns the fee model for a schedule. Unknown schedules default
// to the flat model.
func GetModel(schedule Schedule, amount float64) Model {
	switch schedule {
	case ScheduleZero:
		return NewZeroFee()
	case ScheduleFlat:
		return NewFlatFee(amount)
	default:
		return NewFlatFee(amount)
	}
}
