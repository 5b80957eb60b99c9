package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/accrue-lab/accrue/internal/types"
)

// CSVWriter writes bars to a long-format CSV file with a header row, the
// default input format of the backtest datasource.
type CSVWriter struct {
	outputPath string
	file       *os.File
	cw         *csv.Writer
}

// NewCSVWriter creates a CSV bar writer targeting outputPath.
func NewCSVWriter(outputPath string) BarWriter {
	return &CSVWriter{
		outputPath: outputPath,
		file:       nil,
		cw:         nil,
	}
}

// Initialize implements BarWriter.
func (w *CSVWriter) Initialize() error {
	file, err := os.Create(w.outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	w.file = file
	w.cw = csv.NewWriter(file)

	if err := w.cw.Write([]string{"time", "symbol", "open", "high", "low", "close", "volume"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	return nil
}

// Write implements BarWriter.
func (w *CSVWriter) Write(bar types.Bar) error {
	if w.cw == nil {
		return fmt.Errorf("writer not initialized")
	}

	record := []string{
		bar.Time.UTC().Format(time.RFC3339),
		bar.Symbol,
		strconv.FormatFloat(bar.Open, 'f', -1, 64),
		strconv.FormatFloat(bar.High, 'f', -1, 64),
		strconv.FormatFloat(bar.Low, 'f', -1, 64),
		strconv.FormatFloat(bar.Close, 'f', -1, 64),
		strconv.FormatFloat(bar.Volume, 'f', -1, 64),
	}

	if err := w.cw.Write(record); err != nil {
		return fmt.Errorf("failed to write bar: %w", err)
	}

	return nil
}

// Finalize implements BarWriter.
func (w *CSVWriter) Finalize() (string, error) {
	if w.cw == nil {
		return "", fmt.Errorf("writer not initialized")
	}

	w.cw.Flush()

	if err := w.cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush output: %w", err)
	}

	return w.outputPath, nil
}

// Close implements BarWriter.
func (w *CSVWriter) Close() error {
	if w.file == nil {
		return nil
	}

	err := w.file.Close()
	w.file = nil

	return err
}

// GetOutputPath implements BarWriter.
func (w *CSVWriter) GetOutputPath() string {
	return w.outputPath
}
