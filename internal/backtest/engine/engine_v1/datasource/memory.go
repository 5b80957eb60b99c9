package datasource

import (
	"time"

	"github.com/accrue-lab/accrue/internal/types"
	"github.com/accrue-lab/accrue/pkg/errors"
	"github.com/moznion/go-optional"
)

// InMemorySource serves a pre-built table, mainly for tests and for callers
// that assemble price data themselves. Interval bucketing is the caller's
// responsibility; the source only selects symbols and trims the date range.
type InMemorySource struct {
	table *types.Table
}

// NewInMemorySource wraps an existing table as a data source.
func NewInMemorySource(table *types.Table) *InMemorySource {
	return &InMemorySource{table: table}
}

// Initialize implements DataSource. The in-memory source carries its data
// already, so the path is ignored.
func (d *InMemorySource) Initialize(path string) error {
	if d.table == nil {
		return errors.New(errors.ErrCodeDataSourceNotReady, "in-memory source has no table")
	}

	return nil
}

// Prices implements DataSource.
func (d *InMemorySource) Prices(symbols []string, start, end optional.Option[time.Time], interval Interval) (*types.Table, error) {
	if d.table == nil {
		return nil, errors.New(errors.ErrCodeDataSourceNotReady, "in-memory source has no table")
	}

	if _, err := interval.bucket(); err != nil {
		return nil, err
	}

	from := 0
	to := d.table.Len()

	if start.IsSome() {
		for from < to && d.table.Date(from).Before(start.Unwrap()) {
			from++
		}
	}

	if end.IsSome() {
		for to > from && d.table.Date(to-1).After(end.Unwrap()) {
			to--
		}
	}

	if from >= to {
		return nil, errors.New(errors.ErrCodeEmptySeries, "no rows inside the requested range")
	}

	trimmed := d.table.Slice(from, to)

	cols := make([]int, len(symbols))

	for i, symbol := range symbols {
		col, err := trimmed.SymbolIndex(symbol)
		if err != nil {
			return nil, err
		}

		cols[i] = col
	}

	values := make([][]float64, trimmed.Len())
	for i := range values {
		row := trimmed.Row(i)

		values[i] = make([]float64, len(cols))
		for k, col := range cols {
			values[i][k] = row[col]
		}
	}

	table, err := types.NewTable(trimmed.Dates(), symbols, values)
	if err != nil {
		return nil, err
	}

	table = table.ForwardFill()

	if err := table.Validate(); err != nil {
		return nil, err
	}

	return table, nil
}

// Close implements DataSource.
func (d *InMemorySource) Close() error {
	return nil
}
