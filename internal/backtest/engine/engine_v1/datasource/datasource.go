// Package datasource loads long-format bar data and pivots it into the
// date-aligned, forward-filled price tables the simulation engine consumes.
package datasource

import (
	"time"

	"github.com/accrue-lab/accrue/internal/types"
	"github.com/accrue-lab/accrue/pkg/errors"
	"github.com/moznion/go-optional"
)

// Interval is the sampling interval of the produced price table.
type Interval string

const (
	IntervalDaily   Interval = "1d"
	IntervalWeekly  Interval = "1w"
	IntervalMonthly Interval = "1mo"
)

// bucket returns the DuckDB interval expression for the sampling interval.
func (i Interval) bucket() (string, error) {
	switch i {
	case IntervalDaily:
		return "1 day", nil
	case IntervalWeekly:
		return "1 week", nil
	case IntervalMonthly:
		return "1 month", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unknown interval %q", i)
	}
}

// DataSource provides price tables for a ticker universe. Implementations
// return tables that are forward filled and pass types.Table validation, so
// the engine can consume them directly.
type DataSource interface {
	// Initialize points the source at a bar data file. Must be called before
	// Prices.
	Initialize(path string) error
	// Prices builds the price table for the given symbols over an optional
	// date range, one row per sampling bucket, using each bucket's last
	// close.
	Prices(symbols []string, start, end optional.Option[time.Time], interval Interval) (*types.Table, error)
	// Close releases the underlying resources.
	Close() error
}
