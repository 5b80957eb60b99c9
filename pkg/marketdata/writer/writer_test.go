package writer

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/accrue-lab/accrue/internal/types"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/stretchr/testify/suite"
)

type WriterTestSuite struct {
	suite.Suite
}

func TestWriterSuite(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

func (s *WriterTestSuite) sampleBars() []types.Bar {
	return []types.Bar{
		{
			Time:   time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC),
			Symbol: "VTI",
			Open:   150,
			High:   155,
			Low:    149,
			Close:  154,
			Volume: 1000,
		},
		{
			Time:   time.Date(2020, 2, 28, 0, 0, 0, 0, time.UTC),
			Symbol: "VTI",
			Open:   154,
			High:   156,
			Low:    140,
			Close:  145,
			Volume: 2000,
		},
	}
}

func (s *WriterTestSuite) TestCSVWriterRoundTrip() {
	path := filepath.Join(s.T().TempDir(), "bars.csv")
	w := NewCSVWriter(path)

	s.Require().NoError(w.Initialize())
	s.Equal(path, w.GetOutputPath())

	for _, bar := range s.sampleBars() {
		s.Require().NoError(w.Write(bar))
	}

	out, err := w.Finalize()
	s.Require().NoError(err)
	s.Equal(path, out)
	s.Require().NoError(w.Close())

	f, err := os.Open(path)
	s.Require().NoError(err)

	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	s.Require().NoError(err)

	s.Require().Len(rows, 3)
	s.Equal([]string{"time", "symbol", "open", "high", "low", "close", "volume"}, rows[0])
	s.Equal("2020-01-31T00:00:00Z", rows[1][0])
	s.Equal("VTI", rows[1][1])
	s.Equal("154", rows[1][5])
	s.Equal("145", rows[2][5])
}

func (s *WriterTestSuite) TestCSVWriterRequiresInitialize() {
	w := NewCSVWriter(filepath.Join(s.T().TempDir(), "bars.csv"))

	s.Error(w.Write(types.Bar{}))

	_, err := w.Finalize()
	s.Error(err)
}

func (s *WriterTestSuite) TestDuckDBWriterExportsParquet() {
	path := filepath.Join(s.T().TempDir(), "bars.parquet")
	w := NewDuckDBWriter(path)

	s.Require().NoError(w.Initialize())

	for _, bar := range s.sampleBars() {
		s.Require().NoError(w.Write(bar))
	}

	out, err := w.Finalize()
	s.Require().NoError(err)
	s.Equal(path, out)
	s.Require().NoError(w.Close())

	// Read the exported file back through a fresh connection.
	db, err := sql.Open("duckdb", "")
	s.Require().NoError(err)

	defer db.Close()

	var count int

	row := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM read_parquet('%s')", path))
	s.Require().NoError(row.Scan(&count))
	s.Equal(2, count)

	var closePrice float64

	row = db.QueryRow(fmt.Sprintf("SELECT close FROM read_parquet('%s') ORDER BY time LIMIT 1", path))
	s.Require().NoError(row.Scan(&closePrice))
	s.Equal(154.0, closePrice)
}

func (s *WriterTestSuite) TestDuckDBWriterRequiresInitialize() {
	w := NewDuckDBWriter(filepath.Join(s.T().TempDir(), "bars.parquet"))

	s.Error(w.Write(types.Bar{}))

	_, err := w.Finalize()
	s.Error(err)
}
