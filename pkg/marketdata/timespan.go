package marketdata

import "github.com/polygon-io/client-go/rest/models"

// Timespan is the bar aggregation interval for downloads. The engine
// consumes daily bars and coarser, so finer intervals are not offered.
type Timespan string

const (
	TimespanOneDay   Timespan = "1d"
	TimespanOneWeek  Timespan = "1w"
	TimespanOneMonth Timespan = "1M"
)

// Multiplier returns the aggregate multiplier for the Polygon API.
func (t Timespan) Multiplier() int {
	return 1
}

// Timespan returns the Polygon API timespan unit.
func (t Timespan) Timespan() models.Timespan {
	switch t {
	case TimespanOneDay:
		return models.Day
	case TimespanOneWeek:
		return models.Week
	case TimespanOneMonth:
		return models.Month
	default:
		return models.Day
	}
}

// Valid reports whether the timespan is one of the supported intervals.
func (t Timespan) Valid() bool {
	switch t {
	case TimespanOneDay, TimespanOneWeek, TimespanOneMonth:
		return true
	default:
		return false
	}
}
