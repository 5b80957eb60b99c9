// Package marketdata downloads historical bars from external providers and
// stores them in the file formats the backtest datasource reads.
package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/accrue-lab/accrue/pkg/marketdata/provider"
	"github.com/accrue-lab/accrue/pkg/marketdata/writer"
	"github.com/go-playground/validator/v10"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
)

// WriterType defines the output format for downloaded bars.
type WriterType string

const (
	WriterCSV     WriterType = "csv"
	WriterParquet WriterType = "parquet"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  ProviderType `validate:"required,oneof=polygon"`
	WriterType    WriterType   `validate:"required,oneof=csv parquet"`
	DataPath      string       `validate:"required"`
	PolygonApiKey string       `validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for one bar download request.
type DownloadParams struct {
	Ticker    string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
	Timespan  Timespan  `validate:"required"`
}

// Client downloads bars from a provider and stores them using a writer.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	var marketProvider provider.Provider

	var err error

	switch config.ProviderType {
	case ProviderPolygon:
		marketProvider, err = provider.NewPolygonClient(config.PolygonApiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Polygon client: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.ProviderType)
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
	}, nil
}

// Download fetches bars for the given parameters and writes them under the
// configured data path. Returns the output file path.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", fmt.Errorf("invalid download parameters: %w", err)
	}

	if !params.Timespan.Valid() {
		return "", fmt.Errorf("unsupported timespan: %s", params.Timespan)
	}

	barWriter, err := c.setupWriter(params)
	if err != nil {
		return "", fmt.Errorf("failed to setup writer: %w", err)
	}

	c.provider.ConfigWriter(barWriter)

	outputPath, err := c.provider.Download(
		ctx,
		params.Ticker,
		params.StartDate,
		params.EndDate,
		params.Timespan.Multiplier(),
		params.Timespan.Timespan(),
		c.onProgress,
	)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}

	return outputPath, nil
}

// setupWriter initializes the bar writer based on configuration. The output
// file name encodes the ticker, range, and timespan.
func (c *Client) setupWriter(params DownloadParams) (writer.BarWriter, error) {
	extension := "csv"
	if c.config.WriterType == WriterParquet {
		extension = "parquet"
	}

	outputFileName := fmt.Sprintf("%s_%s_%s_%s.%s",
		params.Ticker,
		params.StartDate.Format("2006-01-02"),
		params.EndDate.Format("2006-01-02"),
		params.Timespan,
		extension)
	outputPath := filepath.Join(c.config.DataPath, outputFileName)

	if _, err := os.Stat(c.config.DataPath); os.IsNotExist(err) {
		if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data path: %w", err)
		}
	}

	switch c.config.WriterType {
	case WriterCSV:
		return writer.NewCSVWriter(outputPath), nil
	case WriterParquet:
		return writer.NewDuckDBWriter(outputPath), nil
	default:
		return nil, fmt.Errorf("unsupported writer type: %s", c.config.WriterType)
	}
}
