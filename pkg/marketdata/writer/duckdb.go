package writer

import (
	"database/sql"
	"fmt"

	"github.com/accrue-lab/accrue/internal/types"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
)

// DuckDBWriter buffers bars in an in-memory DuckDB table and exports them as
// a Parquet file on Finalize.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
}

// NewDuckDBWriter creates a Parquet bar writer targeting outputPath.
func NewDuckDBWriter(outputPath string) BarWriter {
	return &DuckDBWriter{
		db:         nil,
		tx:         nil,
		stmt:       nil,
		outputPath: outputPath,
	}
}

// Initialize implements BarWriter. It opens an in-memory database, creates
// the bar table, and prepares the insert inside a transaction.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			id TEXT,
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to create table: %w", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO bars (id, time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	return nil
}

// Write implements BarWriter.
func (w *DuckDBWriter) Write(bar types.Bar) error {
	if w.stmt == nil {
		return fmt.Errorf("writer not initialized")
	}

	_, err := w.stmt.Exec(
		uuid.New().String(),
		bar.Time,
		bar.Symbol,
		bar.Open,
		bar.High,
		bar.Low,
		bar.Close,
		bar.Volume,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bar: %w", err)
	}

	return nil
}

// Finalize implements BarWriter. It commits the buffered rows and exports
// them to the output Parquet file, sorted by time.
func (w *DuckDBWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", fmt.Errorf("writer not initialized")
	}

	if err := w.stmt.Close(); err != nil {
		return "", fmt.Errorf("failed to close statement: %w", err)
	}

	if err := w.tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.tx = nil
	w.stmt = nil

	query := fmt.Sprintf(`
		COPY (SELECT time, symbol, open, high, low, close, volume FROM bars ORDER BY time, symbol)
		TO '%s' (FORMAT PARQUET)
	`, w.outputPath)

	if _, err := w.db.Exec(query); err != nil {
		return "", fmt.Errorf("failed to export parquet: %w", err)
	}

	return w.outputPath, nil
}

// Close implements BarWriter.
func (w *DuckDBWriter) Close() error {
	if w.db == nil {
		return nil
	}

	if w.tx != nil {
		w.tx.Rollback()
		w.tx = nil
	}

	err := w.db.Close()
	w.db = nil

	return err
}

// GetOutputPath implements BarWriter.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}
