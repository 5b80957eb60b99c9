package datasource

import (
	"math"
	"time"

	"github.com/accrue-lab/accrue/internal/types"
	"github.com/accrue-lab/accrue/pkg/errors"
)

// ConvertCurrency rescales every price by an FX rate series into the run's
// quote currency. Rates are aligned to the price dates by forward filling:
// each price row uses the most recent rate at or before its date. A price row
// older than the first rate has no usable rate and fails the conversion.
func ConvertCurrency(prices *types.Table, rateDates []time.Time, rates []float64) (*types.Table, error) {
	if prices == nil {
		return nil, errors.New(errors.ErrCodeNoPriceTable, "price table is nil")
	}

	if len(rateDates) != len(rates) {
		return nil, errors.Newf(errors.ErrCodeVectorLengthMismatch,
			"%d rate dates, %d rates", len(rateDates), len(rates))
	}

	if len(rates) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySeries, "empty fx rate series")
	}

	for i := 1; i < len(rateDates); i++ {
		if !rateDates[i].After(rateDates[i-1]) {
			return nil, errors.Newf(errors.ErrCodeUnorderedDates, "fx rate dates not strictly increasing at index %d", i)
		}
	}

	for i, r := range rates {
		if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, errors.Newf(errors.ErrCodeNonPositivePrice, "invalid fx rate %.6f at index %d", r, i)
		}
	}

	values := make([][]float64, prices.Len())
	k := 0

	for i := 0; i < prices.Len(); i++ {
		date := prices.Date(i)
		if date.Before(rateDates[0]) {
			return nil, errors.Newf(errors.ErrCodeInsufficientData,
				"no fx rate at or before %s", date.Format("2006-01-02"))
		}

		for k+1 < len(rateDates) && !rateDates[k+1].After(date) {
			k++
		}

		row := prices.Row(i)
		for j := range row {
			row[j] *= rates[k]
		}

		values[i] = row
	}

	return types.NewTable(prices.Dates(), prices.Symbols(), values)
}
