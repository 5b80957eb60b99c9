package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ClientTestSuite struct {
	suite.Suite
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) validConfig() ClientConfig {
	return ClientConfig{
		ProviderType:  ProviderPolygon,
		WriterType:    WriterCSV,
		DataPath:      s.T().TempDir(),
		PolygonApiKey: "test-key",
	}
}

func (s *ClientTestSuite) TestNewClient() {
	client, err := NewClient(s.validConfig(), nil)
	s.Require().NoError(err)
	s.NotNil(client)
}

func (s *ClientTestSuite) TestNewClientConfigValidation() {
	tests := []struct {
		name   string
		mutate func(c *ClientConfig)
	}{
		{
			name:   "missing provider",
			mutate: func(c *ClientConfig) { c.ProviderType = "" },
		},
		{
			name:   "unknown provider",
			mutate: func(c *ClientConfig) { c.ProviderType = "binance" },
		},
		{
			name:   "missing writer",
			mutate: func(c *ClientConfig) { c.WriterType = "" },
		},
		{
			name:   "unknown writer",
			mutate: func(c *ClientConfig) { c.WriterType = "sqlite" },
		},
		{
			name:   "missing data path",
			mutate: func(c *ClientConfig) { c.DataPath = "" },
		},
		{
			name:   "polygon without api key",
			mutate: func(c *ClientConfig) { c.PolygonApiKey = "" },
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			config := s.validConfig()
			tc.mutate(&config)

			_, err := NewClient(config, nil)
			s.Require().Error(err)
		})
	}
}

func (s *ClientTestSuite) TestDownloadParamValidation() {
	client, err := NewClient(s.validConfig(), nil)
	s.Require().NoError(err)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		params DownloadParams
	}{
		{
			name: "missing ticker",
			params: DownloadParams{
				StartDate: start,
				EndDate:   start.AddDate(1, 0, 0),
				Timespan:  TimespanOneMonth,
			},
		},
		{
			name: "end before start",
			params: DownloadParams{
				Ticker:    "VTI",
				StartDate: start,
				EndDate:   start.AddDate(-1, 0, 0),
				Timespan:  TimespanOneMonth,
			},
		},
		{
			name: "unsupported timespan",
			params: DownloadParams{
				Ticker:    "VTI",
				StartDate: start,
				EndDate:   start.AddDate(1, 0, 0),
				Timespan:  Timespan("5m"),
			},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			_, err := client.Download(context.Background(), tc.params)
			s.Require().Error(err)
		})
	}
}
