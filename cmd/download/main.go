package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/accrue-lab/accrue/internal/version"
	"github.com/accrue-lab/accrue/pkg/marketdata"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// downloadAction parses the flags, sets up the market data client, and
// downloads bars for every requested ticker.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	tickers := strings.Split(cmd.String("tickers"), ",")
	for i := range tickers {
		tickers[i] = strings.TrimSpace(tickers[i])
	}

	startDate := cmd.Timestamp("start")
	endDate := cmd.Timestamp("end")
	timespan := marketdata.Timespan(cmd.String("timespan"))
	writerFlag := cmd.String("writer")
	dataPath := cmd.String("data")

	apiKey := cmd.String("api-key")
	if apiKey == "" {
		apiKey = os.Getenv("POLYGON_API_KEY")
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionShowCount(),
	)

	onProgress := func(current float64, total float64, message string) {
		bar.ChangeMax(int(total))
		bar.Set(int(current))
		bar.Describe(message)
	}

	clientConfig := marketdata.ClientConfig{
		ProviderType:  marketdata.ProviderPolygon,
		WriterType:    marketdata.WriterType(writerFlag),
		DataPath:      dataPath,
		PolygonApiKey: apiKey,
	}

	client, err := marketdata.NewClient(clientConfig, onProgress)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	for _, ticker := range tickers {
		params := marketdata.DownloadParams{
			Ticker:    ticker,
			StartDate: startDate,
			EndDate:   endDate,
			Timespan:  timespan,
		}

		log.Printf("Starting download for %s from %s to %s...",
			ticker, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))

		path, err := client.Download(ctx, params)
		if err != nil {
			return fmt.Errorf("download failed for %s: %w", ticker, err)
		}

		bar.Finish()
		log.Printf("Wrote %s", path)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "download",
		Usage:   "Download historical bars for a ticker universe",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "tickers",
				Aliases:  []string{"t"},
				Usage:    "Comma-separated ticker symbols",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:  "timespan",
				Usage: fmt.Sprintf("Bar interval (%s, %s, %s)", marketdata.TimespanOneDay, marketdata.TimespanOneWeek, marketdata.TimespanOneMonth),
				Value: string(marketdata.TimespanOneMonth),
			},
			&cli.StringFlag{
				Name:    "writer",
				Aliases: []string{"w"},
				Usage:   fmt.Sprintf("Output format (%s, %s)", marketdata.WriterCSV, marketdata.WriterParquet),
				Value:   string(marketdata.WriterCSV),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "Polygon API key. Defaults to the POLYGON_API_KEY environment variable.",
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
