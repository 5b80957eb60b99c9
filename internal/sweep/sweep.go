// Package sweep runs one simulation per point of a hyperparameter grid and
// picks the best-performing configuration by a chosen metric.
package sweep

import (
	"sort"

	"github.com/accrue-lab/accrue/internal/analytics"
	"github.com/accrue-lab/accrue/internal/backtest/engine"
	engineV1 "github.com/accrue-lab/accrue/internal/backtest/engine/engine_v1"
	"github.com/accrue-lab/accrue/internal/logger"
	"github.com/accrue-lab/accrue/internal/policy"
	"github.com/accrue-lab/accrue/internal/types"
	"github.com/accrue-lab/accrue/pkg/errors"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Metric selects which report statistic ranks candidates.
type Metric string

const (
	MetricFinalValue   Metric = "final_value"
	MetricTotalReturn  Metric = "total_return"
	MetricCAGR         Metric = "cagr"
	MetricSharpeRatio  Metric = "sharpe_ratio"
	MetricSortinoRatio Metric = "sortino_ratio"
	MetricMaxDrawdown  Metric = "max_drawdown"
	MetricVolatility   Metric = "annualized_volatility"
)

// metricValue extracts a metric from a report and reports whether larger
// values are better for it.
func metricValue(r analytics.Report, m Metric) (value float64, higherIsBetter bool, err error) {
	switch m {
	case MetricFinalValue:
		return r.FinalValue, true, nil
	case MetricTotalReturn:
		return r.TotalReturn, true, nil
	case MetricCAGR:
		return r.CAGR, true, nil
	case MetricSharpeRatio:
		return r.SharpeRatio, true, nil
	case MetricSortinoRatio:
		return r.SortinoRatio, true, nil
	case MetricMaxDrawdown:
		return r.MaxDrawdown, false, nil
	case MetricVolatility:
		return r.AnnualizedVolatility, false, nil
	default:
		return 0, false, errors.Newf(errors.ErrCodeInvalidParameter, "unknown metric %q", m)
	}
}

// Grid maps hyperparameter names to the candidate values to try.
type Grid map[string][]any

// Expand returns the cartesian product of the grid as parameter maps, in a
// deterministic order. An empty grid expands to one empty parameter set.
func (g Grid) Expand() []policy.Params {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	expanded := []policy.Params{{}}

	for _, key := range keys {
		next := make([]policy.Params, 0, len(expanded)*len(g[key]))

		for _, base := range expanded {
			for _, value := range g[key] {
				params := make(policy.Params, len(base)+1)
				for k, v := range base {
					params[k] = v
				}

				params[key] = value
				next = append(next, params)
			}
		}

		expanded = next
	}

	return expanded
}

// Result is one evaluated grid point.
type Result struct {
	Params policy.Params
	Report analytics.Report
	Score  float64
}

// Runner evaluates grid points for one policy kind over a fixed price table
// and simulator configuration.
type Runner struct {
	registry   *policy.Registry
	configYAML string
	config     engineV1.SimulatorV1Config
	symbols    []string
	prices     *types.Table
	riskFree   float64
	log        *logger.Logger
}

// NewRunner creates a sweep runner. configYAML is the simulator configuration
// shared by every candidate; riskFree is the per-period rate used by the
// ratio metrics.
func NewRunner(registry *policy.Registry, configYAML string, prices *types.Table, riskFree float64) (*Runner, error) {
	var config engineV1.SimulatorV1Config
	if err := yaml.Unmarshal([]byte(configYAML), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse sweep configuration", err)
	}

	if prices == nil {
		return nil, errors.New(errors.ErrCodeNoPriceTable, "price table is nil")
	}

	log, err := logger.NewLogger()
	if err != nil {
		return nil, err
	}

	return &Runner{
		registry:   registry,
		configYAML: configYAML,
		config:     config,
		symbols:    prices.Symbols(),
		prices:     prices,
		riskFree:   riskFree,
		log:        log,
	}, nil
}

// Run evaluates every grid point for the policy kind and returns all results
// plus the index of the best one under the metric.
func (r *Runner) Run(kind string, grid Grid, metric Metric) ([]Result, int, error) {
	candidates := grid.Expand()
	results := make([]Result, 0, len(candidates))

	initialValue := 0.0
	for _, v := range r.config.InitialAllocation {
		initialValue += v
	}

	best := -1

	var bestScore float64

	for _, params := range candidates {
		p, err := r.registry.Build(kind, r.symbols, params)
		if err != nil {
			return nil, -1, err
		}

		sim := engineV1.NewSimulatorV1()
		if err := sim.Initialize(r.configYAML); err != nil {
			return nil, -1, err
		}

		if err := sim.LoadPolicy(kind, p); err != nil {
			return nil, -1, err
		}

		if err := sim.SetPriceTable(r.prices); err != nil {
			return nil, -1, err
		}

		runResults, err := sim.Run(optional.None[engine.OnPeriodCallback]())
		if err != nil {
			return nil, -1, err
		}

		report := analytics.Summarize(runResults[kind].TotalValues,
			r.config.PeriodicCash, initialValue, r.riskFree, analytics.DefaultPeriodsPerYear)

		score, higherIsBetter, err := metricValue(report, metric)
		if err != nil {
			return nil, -1, err
		}

		if !higherIsBetter {
			score = -score
		}

		results = append(results, Result{Params: params, Report: report, Score: score})

		if best < 0 || score > bestScore {
			best = len(results) - 1
			bestScore = score
		}

		r.log.Debug("Sweep candidate evaluated",
			zap.String("kind", kind),
			zap.Any("params", params),
			zap.Float64("score", score),
		)
	}

	if best < 0 {
		return nil, -1, errors.New(errors.ErrCodeInvalidParameter, "empty candidate grid")
	}

	return results, best, nil
}
