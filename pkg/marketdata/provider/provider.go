// Package provider implements bar download clients for external market data
// vendors.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/accrue-lab/accrue/pkg/marketdata/writer"
	"github.com/polygon-io/client-go/rest/models"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
)

// OnDownloadProgress reports download progress to the caller.
type OnDownloadProgress = func(current float64, total float64, message string)

type Provider interface {
	// ConfigWriter configures the writer the provider persists bars through.
	ConfigWriter(writer writer.BarWriter)
	// Download fetches aggregate bars for the ticker and date range and
	// writes them through the configured writer. The context cancels the
	// download.
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) (path string, err error)
}

// NewProvider creates a market data provider of the given type.
func NewProvider(providerType ProviderType, config any) (Provider, error) {
	switch providerType {
	case ProviderPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, fmt.Errorf("polygon provider requires API key string config")
		}

		return NewPolygonClient(apiKey)
	default:
		return nil, fmt.Errorf("unsupported market data provider: %s", providerType)
	}
}
