package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/accrue-lab/accrue/internal/analytics"
	"github.com/accrue-lab/accrue/internal/backtest/engine"
	engineV1 "github.com/accrue-lab/accrue/internal/backtest/engine/engine_v1"
	"github.com/accrue-lab/accrue/internal/backtest/engine/engine_v1/datasource"
	resultwriter "github.com/accrue-lab/accrue/internal/backtest/engine/engine_v1/writer"
	"github.com/accrue-lab/accrue/internal/benchmark"
	"github.com/accrue-lab/accrue/internal/config"
	"github.com/accrue-lab/accrue/internal/logger"
	"github.com/accrue-lab/accrue/internal/policy"
	"github.com/accrue-lab/accrue/internal/types"
	"github.com/accrue-lab/accrue/internal/version"
	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// runAction loads the run configuration, builds the price table, simulates
// every configured strategy, and writes the result series and reports.
func runAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	doc, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	runConfig, err := config.ParseRunConfig(string(doc))
	if err != nil {
		return err
	}

	simYAML, err := runConfig.SimulationYAML()
	if err != nil {
		return err
	}

	var simConfig engineV1.SimulatorV1Config
	if err := yaml.Unmarshal([]byte(simYAML), &simConfig); err != nil {
		return fmt.Errorf("failed to parse simulation section: %w", err)
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	prices, err := loadPrices(runConfig, simConfig, appLogger)
	if err != nil {
		return err
	}

	sim := engineV1.NewSimulatorV1()
	if err := sim.Initialize(simYAML); err != nil {
		return err
	}

	registry := policy.NewDefaultRegistry()

	for _, strategy := range runConfig.Strategies {
		p, err := registry.Build(strategy.Kind, runConfig.Universe, strategy.Params)
		if err != nil {
			return err
		}

		if err := sim.LoadPolicy(strategy.Name, p); err != nil {
			return err
		}
	}

	if err := sim.SetPriceTable(prices); err != nil {
		return err
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Simulating"),
		progressbar.OptionShowCount(),
	)

	callback := engine.OnPeriodCallback(func(current, total int) {
		bar.ChangeMax(total)
		bar.Set(current)
	})

	results, err := sim.Run(optional.Some(callback))
	if err != nil {
		return err
	}

	bar.Finish()

	return writeOutputs(runConfig, simConfig, prices, results)
}

// loadPrices builds the forward-filled price table for the configured
// universe, pre-trimmed to the simulation's date bounds so benchmark curves
// line up with strategy results.
func loadPrices(runConfig *config.RunConfig, simConfig engineV1.SimulatorV1Config, appLogger *logger.Logger) (*types.Table, error) {
	source, err := datasource.NewDuckDBSource("", appLogger)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	if err := source.Initialize(runConfig.Data.Path); err != nil {
		return nil, err
	}

	return source.Prices(runConfig.Universe, simConfig.StartTime, simConfig.EndTime, runConfig.Data.Interval)
}

// writeOutputs persists per-strategy series with reports, plus benchmark
// reports when configured.
func writeOutputs(runConfig *config.RunConfig, simConfig engineV1.SimulatorV1Config, prices *types.Table, results engine.Results) error {
	initialValue := 0.0
	for _, v := range simConfig.InitialAllocation {
		initialValue += v
	}

	riskFree := 0.0
	if runConfig.Benchmarks != nil {
		riskFree = runConfig.Benchmarks.RiskFreeRate
	}

	benchmarks, benchmarkReports, err := benchmarkCurves(runConfig, simConfig, prices, initialValue, riskFree)
	if err != nil {
		return err
	}

	reports := make(map[string]analytics.Report, len(results))

	for name, res := range results {
		report := analytics.Summarize(res.TotalValues,
			simConfig.PeriodicCash, initialValue, riskFree, analytics.DefaultPeriodsPerYear)

		// Measure active performance against the index benchmark when one
		// is configured.
		if indexTotals, ok := benchmarks["index"]; ok {
			strategyReturns := analytics.PeriodReturns(res.TotalValues, simConfig.PeriodicCash, initialValue)
			indexReturns := analytics.PeriodReturns(indexTotals, simConfig.PeriodicCash, initialValue)

			ir, err := analytics.InformationRatio(strategyReturns, indexReturns, analytics.DefaultPeriodsPerYear)
			if err != nil {
				return err
			}

			report.InformationRatio = &ir
		}

		reports[name] = report
	}

	if err := resultwriter.NewResultWriter(runConfig.Output).Write(results, reports); err != nil {
		return err
	}

	if len(benchmarkReports) > 0 {
		data, err := yaml.Marshal(benchmarkReports)
		if err != nil {
			return fmt.Errorf("failed to marshal benchmark reports: %w", err)
		}

		if err := os.WriteFile(filepath.Join(runConfig.Output, "benchmarks.yaml"), data, 0644); err != nil {
			return fmt.Errorf("failed to write benchmark reports: %w", err)
		}
	}

	log.Printf("Results written to %s", runConfig.Output)

	return nil
}

// benchmarkCurves evaluates the configured benchmarks over the same price
// table and cash stream as the strategies.
func benchmarkCurves(runConfig *config.RunConfig, simConfig engineV1.SimulatorV1Config, prices *types.Table, initialValue, riskFree float64) (map[string][]float64, map[string]analytics.Report, error) {
	cfg := runConfig.Benchmarks
	if cfg == nil {
		return nil, nil, nil
	}

	curves := []benchmark.Benchmark{
		benchmark.NewCash(),
		benchmark.NewRiskFree(cfg.RiskFreeRate),
	}

	if cfg.Index != "" {
		curves = append(curves, benchmark.NewIndex(cfg.Index))
	}

	if len(cfg.BasketSymbols) > 0 {
		basket, err := benchmark.NewBasket(cfg.BasketSymbols, cfg.BasketWeights)
		if err != nil {
			return nil, nil, err
		}

		curves = append(curves, basket)
	}

	totals := make(map[string][]float64, len(curves))
	reports := make(map[string]analytics.Report, len(curves))

	for _, b := range curves {
		series, err := b.Totals(prices, simConfig.RollingWindow, initialValue, simConfig.PeriodicCash)
		if err != nil {
			return nil, nil, err
		}

		totals[b.Name()] = series
		reports[b.Name()] = analytics.Summarize(series,
			simConfig.PeriodicCash, initialValue, riskFree, analytics.DefaultPeriodsPerYear)
	}

	return totals, reports, nil
}

// schemaAction prints the JSON schema of the run configuration.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	var runConfig config.RunConfig

	schema, err := runConfig.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "backtest",
		Usage:   "Run a capital-accumulation backtest from a YAML configuration",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the run configuration YAML file",
				Value:   "accrue.yaml",
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Print the run configuration JSON schema",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
