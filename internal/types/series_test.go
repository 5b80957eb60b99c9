package types

import (
	"math"
	"testing"
	"time"

	"github.com/accrue-lab/accrue/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SeriesTestSuite struct {
	suite.Suite
}

func TestSeriesSuite(t *testing.T) {
	suite.Run(t, new(SeriesTestSuite))
}

func monthlyDates(n int) []time.Time {
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = time.Date(2020, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
	}

	return dates
}

func (suite *SeriesTestSuite) TestNewTable() {
	dates := monthlyDates(3)

	tests := []struct {
		name        string
		dates       []time.Time
		symbols     []string
		values      [][]float64
		expectedErr errors.ErrorCode
	}{
		{
			name:    "valid table",
			dates:   dates,
			symbols: []string{"AAA", "BBB"},
			values:  [][]float64{{100, 50}, {110, 55}, {121, 50}},
		},
		{
			name:        "no rows",
			dates:       nil,
			symbols:     []string{"AAA"},
			values:      nil,
			expectedErr: errors.ErrCodeEmptySeries,
		},
		{
			name:        "no symbols",
			dates:       dates,
			symbols:     nil,
			values:      [][]float64{{}, {}, {}},
			expectedErr: errors.ErrCodeEmptySeries,
		},
		{
			name:        "row count mismatch",
			dates:       dates,
			symbols:     []string{"AAA"},
			values:      [][]float64{{100}, {110}},
			expectedErr: errors.ErrCodeSeriesMisaligned,
		},
		{
			name:        "ragged row",
			dates:       dates,
			symbols:     []string{"AAA", "BBB"},
			values:      [][]float64{{100, 50}, {110}, {121, 50}},
			expectedErr: errors.ErrCodeSeriesMisaligned,
		},
		{
			name:        "duplicate symbol",
			dates:       dates,
			symbols:     []string{"AAA", "AAA"},
			values:      [][]float64{{100, 50}, {110, 55}, {121, 50}},
			expectedErr: errors.ErrCodeInvalidParameter,
		},
		{
			name:        "duplicate date",
			dates:       []time.Time{dates[0], dates[1], dates[1]},
			symbols:     []string{"AAA"},
			values:      [][]float64{{100}, {110}, {121}},
			expectedErr: errors.ErrCodeDuplicateDate,
		},
		{
			name:        "unordered dates",
			dates:       []time.Time{dates[1], dates[0], dates[2]},
			symbols:     []string{"AAA"},
			values:      [][]float64{{100}, {110}, {121}},
			expectedErr: errors.ErrCodeUnorderedDates,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			table, err := NewTable(tc.dates, tc.symbols, tc.values)
			if tc.expectedErr != 0 {
				suite.Error(err)
				suite.True(errors.HasCode(err, tc.expectedErr))

				return
			}

			suite.NoError(err)
			suite.Equal(len(tc.dates), table.Len())
			suite.Equal(len(tc.symbols), table.NumAssets())
		})
	}
}

func (suite *SeriesTestSuite) TestAccessors() {
	dates := monthlyDates(3)
	table, err := NewTable(dates, []string{"AAA", "BBB"}, [][]float64{{100, 50}, {110, 55}, {121, 50}})
	suite.Require().NoError(err)

	suite.Equal(55.0, table.At(1, 1))
	suite.Equal(dates[2], table.Date(2))
	suite.Equal([]string{"AAA", "BBB"}, table.Symbols())

	j, err := table.SymbolIndex("BBB")
	suite.NoError(err)
	suite.Equal(1, j)

	_, err = table.SymbolIndex("CCC")
	suite.True(errors.HasCode(err, errors.ErrCodeMissingAsset))

	col, err := table.Column("AAA")
	suite.NoError(err)
	suite.Equal([]float64{100, 110, 121}, col)

	// Row returns a copy; mutating it must not touch the table.
	row := table.Row(0)
	row[0] = -1
	suite.Equal(100.0, table.At(0, 0))
}

func (suite *SeriesTestSuite) TestSliceAndTail() {
	table, err := NewTable(monthlyDates(4), []string{"AAA"}, [][]float64{{1}, {2}, {3}, {4}})
	suite.Require().NoError(err)

	window := table.Slice(1, 3)
	suite.Equal(2, window.Len())
	suite.Equal(2.0, window.At(0, 0))
	suite.Equal(3.0, window.At(1, 0))

	tail := table.Tail(2)
	suite.Equal(2, tail.Len())
	suite.Equal(4.0, tail.At(1, 0))

	// Tail longer than the table returns the table itself.
	suite.Equal(4, table.Tail(10).Len())
}

func (suite *SeriesTestSuite) TestForwardFill() {
	nan := math.NaN()
	table, err := NewTable(monthlyDates(4), []string{"AAA", "BBB"}, [][]float64{
		{100, nan},
		{nan, 50},
		{120, nan},
		{nan, nan},
	})
	suite.Require().NoError(err)

	filled := table.ForwardFill()
	suite.Equal(100.0, filled.At(1, 0))
	suite.Equal(120.0, filled.At(3, 0))
	suite.Equal(50.0, filled.At(2, 1))
	suite.Equal(50.0, filled.At(3, 1))

	// Leading NaN has no predecessor and survives the fill.
	suite.True(math.IsNaN(filled.At(0, 1)))
	suite.Error(filled.Validate())

	// The source table is untouched.
	suite.True(math.IsNaN(table.At(1, 0)))
}

func (suite *SeriesTestSuite) TestValidate() {
	table, err := NewTable(monthlyDates(2), []string{"AAA"}, [][]float64{{100}, {110}})
	suite.Require().NoError(err)
	suite.NoError(table.Validate())

	negative, err := NewTable(monthlyDates(2), []string{"AAA"}, [][]float64{{100}, {-1}})
	suite.Require().NoError(err)
	suite.True(errors.HasCode(negative.Validate(), errors.ErrCodeNonPositivePrice))
}

func (suite *SeriesTestSuite) TestReturns() {
	table, err := NewTable(monthlyDates(3), []string{"AAA", "BBB"}, [][]float64{{100, 50}, {110, 55}, {121, 50}})
	suite.Require().NoError(err)

	returns, err := table.Returns()
	suite.Require().NoError(err)

	// One fewer row, dates a strict suffix of the price dates.
	suite.Equal(table.Len()-1, returns.Len())
	suite.Equal(table.Date(1), returns.Date(0))
	suite.Equal(table.Date(2), returns.Date(1))

	suite.InDelta(0.10, returns.At(0, 0), 1e-12)
	suite.InDelta(0.10, returns.At(0, 1), 1e-12)
	suite.InDelta(0.10, returns.At(1, 0), 1e-12)
	suite.InDelta(50.0/55.0-1, returns.At(1, 1), 1e-12)

	short, err := NewTable(monthlyDates(1), []string{"AAA"}, [][]float64{{100}})
	suite.Require().NoError(err)

	_, err = short.Returns()
	suite.True(errors.IsInsufficientDataError(err))
}
