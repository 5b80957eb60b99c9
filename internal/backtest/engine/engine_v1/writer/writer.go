// Package writer persists simulation results: four aligned CSV series per
// strategy plus a YAML summary of performance statistics.
package writer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/accrue-lab/accrue/internal/analytics"
	"github.com/accrue-lab/accrue/internal/backtest/engine"
	"github.com/accrue-lab/accrue/pkg/errors"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// ResultWriter writes one run's results under a root folder, one
// subdirectory per strategy.
type ResultWriter struct {
	folder string
}

// NewResultWriter creates a writer rooted at folder. An existing folder is
// replaced on Write.
func NewResultWriter(folder string) *ResultWriter {
	return &ResultWriter{folder: folder}
}

// Write persists every strategy's series and its report. Reports are keyed
// by strategy name in reports; strategies without a report get series only.
func (w *ResultWriter) Write(results engine.Results, reports map[string]analytics.Report) error {
	if _, err := os.Stat(w.folder); err == nil {
		if err := os.RemoveAll(w.folder); err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to clear results folder", err)
		}
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		res := results[name]
		folder := filepath.Join(w.folder, name)

		if err := os.MkdirAll(folder, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create strategy folder", err)
		}

		series := []struct {
			file string
			rows [][]float64
		}{
			{file: "asset_values.csv", rows: res.AssetValues},
			{file: "allocations.csv", rows: res.Allocations},
			{file: "weights.csv", rows: res.Weights},
		}

		for _, sr := range series {
			if err := w.writeSeries(filepath.Join(folder, sr.file), res, sr.rows); err != nil {
				return err
			}
		}

		if err := w.writeTotals(filepath.Join(folder, "total_values.csv"), res); err != nil {
			return err
		}

		if report, ok := reports[name]; ok {
			if err := w.writeReport(filepath.Join(folder, "stats.yaml"), report); err != nil {
				return err
			}
		}
	}

	return nil
}

func (w *ResultWriter) writeSeries(path string, res *engine.StrategyResult, rows [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create series file", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	header := append([]string{"date"}, res.Symbols...)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write series header", err)
	}

	record := make([]string, len(header))

	for i, row := range rows {
		record[0] = res.Dates[i].Format(dateLayout)
		for j, v := range row {
			record[j+1] = strconv.FormatFloat(v, 'f', -1, 64)
		}

		if err := cw.Write(record); err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write series row", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func (w *ResultWriter) writeTotals(path string, res *engine.StrategyResult) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create totals file", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if err := cw.Write([]string{"date", "total_value"}); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write totals header", err)
	}

	for i, total := range res.TotalValues {
		record := []string{
			res.Dates[i].Format(dateLayout),
			strconv.FormatFloat(total, 'f', -1, 64),
		}

		if err := cw.Write(record); err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write totals row", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func (w *ResultWriter) writeReport(path string, report analytics.Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to marshal report", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write report", err)
	}

	return nil
}
