package datasource

import (
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/accrue-lab/accrue/internal/logger"
	"github.com/accrue-lab/accrue/internal/types"
	"github.com/accrue-lab/accrue/pkg/errors"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
)

// DuckDBSource reads long-format bars (time, symbol, close) from CSV or
// parquet files through an in-process DuckDB instance.
type DuckDBSource struct {
	db          *sql.DB
	logger      *logger.Logger
	sq          squirrel.StatementBuilderType
	initialized bool
}

// NewDuckDBSource creates a DuckDB-backed data source. An empty path opens an
// in-memory database.
func NewDuckDBSource(path string, logger *logger.Logger) (*DuckDBSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to open duckdb", err)
	}

	return &DuckDBSource{
		db:          db,
		logger:      logger,
		sq:          squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		initialized: false,
	}, nil
}

// Initialize implements DataSource. The file extension selects the reader:
// .parquet files go through read_parquet, everything else through
// read_csv_auto.
func (d *DuckDBSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS bars;`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	reader := "read_csv_auto"
	if filepath.Ext(path) == ".parquet" {
		reader = "read_parquet"
	}

	// CREATE VIEW is not expressible with squirrel, so this one is raw SQL.
	query := fmt.Sprintf(`CREATE VIEW bars AS SELECT * FROM %s('%s');`, reader, path)

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create bars view", err)
	}

	d.initialized = true

	return nil
}

// Prices implements DataSource.
func (d *DuckDBSource) Prices(symbols []string, start, end optional.Option[time.Time], interval Interval) (*types.Table, error) {
	if !d.initialized {
		return nil, errors.New(errors.ErrCodeDataSourceNotReady, "data source not initialized")
	}

	if len(symbols) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "no symbols requested")
	}

	bucket, err := interval.bucket()
	if err != nil {
		return nil, err
	}

	builder := d.sq.
		Select(
			fmt.Sprintf("time_bucket(INTERVAL '%s', time) AS bucket", bucket),
			"symbol",
			"arg_max(close, time) AS close",
		).
		From("bars").
		Where(squirrel.Eq{"symbol": symbols}).
		GroupBy("bucket", "symbol").
		OrderBy("bucket ASC", "symbol ASC")

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build price query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err)
	}
	defer rows.Close()

	table, err := pivot(rows, symbols)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("Price table loaded",
		zap.Int("rows", table.Len()),
		zap.Int("assets", table.NumAssets()),
		zap.String("interval", string(interval)),
	)

	return table, nil
}

// Close implements DataSource.
func (d *DuckDBSource) Close() error {
	return d.db.Close()
}

// pivot turns (bucket, symbol, close) rows into a wide table, forward fills
// gaps, and validates the result.
func pivot(rows *sql.Rows, symbols []string) (*types.Table, error) {
	cols := make(map[string]int, len(symbols))
	for j, symbol := range symbols {
		cols[symbol] = j
	}

	byDate := make(map[time.Time][]float64)

	var dates []time.Time

	for rows.Next() {
		var (
			bucket     time.Time
			symbol     string
			closePrice float64
		)

		if err := rows.Scan(&bucket, &symbol, &closePrice); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar row", err)
		}

		bucket = bucket.UTC()

		row, ok := byDate[bucket]
		if !ok {
			row = make([]float64, len(symbols))
			for j := range row {
				row[j] = math.NaN()
			}

			byDate[bucket] = row

			dates = append(dates, bucket)
		}

		j, ok := cols[symbol]
		if !ok {
			continue
		}

		row[j] = closePrice
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read bar rows", err)
	}

	if len(dates) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySeries, "no bars matched the requested symbols and range")
	}

	sort.Slice(dates, func(i, k int) bool { return dates[i].Before(dates[k]) })

	values := make([][]float64, len(dates))
	for i, date := range dates {
		values[i] = byDate[date]
	}

	table, err := types.NewTable(dates, symbols, values)
	if err != nil {
		return nil, err
	}

	table = table.ForwardFill()

	if err := table.Validate(); err != nil {
		return nil, err
	}

	return table, nil
}
