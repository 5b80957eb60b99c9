package types

import (
	"math"
	"time"

	"github.com/accrue-lab/accrue/pkg/errors"
)

// Table is a date-indexed, column-per-asset matrix of float64 values.
// Dates are strictly increasing with no duplicates, and every row has one
// entry per symbol. Column order is significant and is preserved by every
// derived table.
//
// Slices returned by accessor methods share the backing arrays; callers must
// treat them as read-only.
type Table struct {
	dates   []time.Time
	symbols []string
	values  [][]float64
}

// NewTable builds a Table from a date index, a symbol list, and row-major
// values. It fails fast on empty inputs, ragged rows, and unordered or
// duplicate dates.
func NewTable(dates []time.Time, symbols []string, values [][]float64) (*Table, error) {
	if len(dates) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySeries, "table requires at least one row")
	}

	if len(symbols) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySeries, "table requires at least one symbol")
	}

	if len(values) != len(dates) {
		return nil, errors.Newf(errors.ErrCodeSeriesMisaligned, "have %d rows for %d dates", len(values), len(dates))
	}

	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "duplicate symbol %q", s)
		}

		seen[s] = struct{}{}
	}

	for i, row := range values {
		if len(row) != len(symbols) {
			return nil, errors.Newf(errors.ErrCodeSeriesMisaligned, "row %d has %d values for %d symbols", i, len(row), len(symbols))
		}
	}

	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			if dates[i].Equal(dates[i-1]) {
				return nil, errors.Newf(errors.ErrCodeDuplicateDate, "duplicate date %s at row %d", dates[i].Format(time.DateOnly), i)
			}

			return nil, errors.Newf(errors.ErrCodeUnorderedDates, "date %s at row %d is not after its predecessor", dates[i].Format(time.DateOnly), i)
		}
	}

	return &Table{
		dates:   dates,
		symbols: symbols,
		values:  values,
	}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.dates)
}

// NumAssets returns the number of columns.
func (t *Table) NumAssets() int {
	return len(t.symbols)
}

// Dates returns the date index.
func (t *Table) Dates() []time.Time {
	return t.dates
}

// Symbols returns the column order.
func (t *Table) Symbols() []string {
	return t.symbols
}

// Date returns the date of row i.
func (t *Table) Date(i int) time.Time {
	return t.dates[i]
}

// At returns the value at row i, column j.
func (t *Table) At(i, j int) float64 {
	return t.values[i][j]
}

// Row returns a copy of row i, safe for callers to mutate.
func (t *Table) Row(i int) []float64 {
	row := make([]float64, len(t.values[i]))
	copy(row, t.values[i])

	return row
}

// SymbolIndex returns the column index of symbol, or an error if the table
// has no such column.
func (t *Table) SymbolIndex(symbol string) (int, error) {
	for j, s := range t.symbols {
		if s == symbol {
			return j, nil
		}
	}

	return 0, errors.Newf(errors.ErrCodeMissingAsset, "table has no column for %s", symbol)
}

// Column returns a copy of the series for symbol.
func (t *Table) Column(symbol string) ([]float64, error) {
	j, err := t.SymbolIndex(symbol)
	if err != nil {
		return nil, err
	}

	col := make([]float64, len(t.values))
	for i := range t.values {
		col[i] = t.values[i][j]
	}

	return col, nil
}

// Slice returns the half-open row range [from, to) as a table sharing the
// receiver's backing arrays.
func (t *Table) Slice(from, to int) *Table {
	return &Table{
		dates:   t.dates[from:to],
		symbols: t.symbols,
		values:  t.values[from:to],
	}
}

// Tail returns the last n rows (or the whole table when it is shorter),
// sharing the receiver's backing arrays.
func (t *Table) Tail(n int) *Table {
	if n >= len(t.dates) {
		return t
	}

	return t.Slice(len(t.dates)-n, len(t.dates))
}

// ForwardFill returns a copy of the table with every NaN entry replaced by
// the last observed value in its column. Leading NaNs have no predecessor and
// are left in place; Validate rejects them.
func (t *Table) ForwardFill() *Table {
	filled := make([][]float64, len(t.values))
	for i, row := range t.values {
		filled[i] = make([]float64, len(row))
		copy(filled[i], row)
	}

	for j := range t.symbols {
		for i := 1; i < len(filled); i++ {
			if math.IsNaN(filled[i][j]) {
				filled[i][j] = filled[i-1][j]
			}
		}
	}

	return &Table{
		dates:   t.dates,
		symbols: t.symbols,
		values:  filled,
	}
}

// Validate checks that every entry is a strictly positive, finite price.
// The simulation engine calls this before the period loop so that partially
// undefined data fails the run up front.
func (t *Table) Validate() error {
	for i, row := range t.values {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.Newf(errors.ErrCodeSeriesMisaligned, "undefined price for %s at %s", t.symbols[j], t.dates[i].Format(time.DateOnly))
			}

			if v <= 0 {
				return errors.Newf(errors.ErrCodeNonPositivePrice, "non-positive price %.4f for %s at %s", v, t.symbols[j], t.dates[i].Format(time.DateOnly))
			}
		}
	}

	return nil
}

// Returns derives the periodic return table price[t]/price[t-1]-1. The first
// price row has no predecessor and is dropped, so the result has one row less
// than the receiver and its dates are a strict suffix of the price dates.
func (t *Table) Returns() (*Table, error) {
	if len(t.dates) < 2 {
		return nil, errors.NewInsufficientDataError(2, len(t.dates), "", "need at least two price rows to derive returns")
	}

	rows := make([][]float64, len(t.values)-1)
	for i := 1; i < len(t.values); i++ {
		row := make([]float64, len(t.symbols))
		for j := range t.symbols {
			row[j] = t.values[i][j]/t.values[i-1][j] - 1
		}

		rows[i-1] = row
	}

	return &Table{
		dates:   t.dates[1:],
		symbols: t.symbols,
		values:  rows,
	}, nil
}
