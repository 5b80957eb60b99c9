package engine

import (
	"github.com/accrue-lab/accrue/internal/backtest/engine"
	"github.com/accrue-lab/accrue/internal/backtest/engine/engine_v1/tradecost"
	"github.com/accrue-lab/accrue/internal/logger"
	"github.com/accrue-lab/accrue/internal/policy"
	"github.com/accrue-lab/accrue/internal/types"
	"github.com/accrue-lab/accrue/pkg/errors"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SimulatorV1 replays a price history period by period, handing every loaded
// policy the same aged portfolio view and identical trailing history, and
// recording the resulting portfolio path per strategy. Strategies run over
// the same dates in the same loop, so their result series are always aligned.
type SimulatorV1 struct {
	config SimulatorV1Config
	names  []string
	states map[string]*strategyState
	prices *types.Table
	fee    tradecost.Model
	log    *logger.Logger
}

// NewSimulatorV1 creates an uninitialized simulator.
func NewSimulatorV1() engine.Engine {
	return &SimulatorV1{
		config: EmptyConfig(),
		names:  nil,
		states: make(map[string]*strategyState),
		prices: nil,
		fee:    nil,
		log:    nil,
	}
}

// Initialize implements engine.Engine.
func (s *SimulatorV1) Initialize(config string) error {
	if err := yaml.Unmarshal([]byte(config), &s.config); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse simulator configuration", err)
	}

	if err := s.config.Validate(); err != nil {
		return err
	}

	var loggerError error

	s.log, loggerError = logger.NewLogger()
	if loggerError != nil {
		return loggerError
	}

	s.fee = tradecost.GetModel(s.config.FeeSchedule, s.config.TradeFee)

	s.log.Debug("Simulator initialized",
		zap.Float64("periodic_cash", s.config.PeriodicCash),
		zap.Int("rolling_window", s.config.RollingWindow),
		zap.String("fee_schedule", string(s.config.FeeSchedule)),
	)

	return nil
}

// LoadPolicy implements engine.Engine.
func (s *SimulatorV1) LoadPolicy(name string, p policy.Policy) error {
	if _, exists := s.states[name]; exists {
		return errors.Newf(errors.ErrCodeInvalidParameter, "strategy %q already loaded", name)
	}

	s.names = append(s.names, name)
	s.states[name] = newStrategyState(name, p, s.config.InitialAllocation, 0)

	if s.log != nil {
		s.log.Debug("Policy loaded",
			zap.String("strategy", name),
			zap.Int("total_strategies", len(s.names)),
		)
	}

	return nil
}

// SetPriceTable implements engine.Engine.
func (s *SimulatorV1) SetPriceTable(prices *types.Table) error {
	if prices == nil {
		return errors.New(errors.ErrCodeNoPriceTable, "price table is nil")
	}

	s.prices = prices

	return nil
}

// GetConfigSchema returns the JSON schema for the simulator configuration.
func (s *SimulatorV1) GetConfigSchema() (string, error) {
	return s.config.GenerateSchemaJSON()
}

// Run implements engine.Engine.
func (s *SimulatorV1) Run(onPeriod optional.Option[engine.OnPeriodCallback]) (engine.Results, error) {
	if err := s.preRunCheck(); err != nil {
		return nil, err
	}

	prices := s.trimToRange(s.prices)

	window := s.config.RollingWindow
	if prices.Len() <= window {
		return nil, errors.NewInsufficientDataError(window+1, prices.Len(), "",
			"price history shorter than rolling window plus one")
	}

	returns, err := prices.Returns()
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	totalPeriods := prices.Len() - window

	s.log.Info("Simulation started",
		zap.String("run_id", runID),
		zap.Int("assets", prices.NumAssets()),
		zap.Int("periods", totalPeriods),
		zap.Int("strategies", len(s.names)),
	)

	for _, name := range s.names {
		s.states[name].reset(s.config.InitialAllocation)
	}

	n := prices.NumAssets()
	growth := make([]float64, n)
	current := make([]float64, n)

	for t := window; t < prices.Len(); t++ {
		for j := 0; j < n; j++ {
			growth[j] = prices.At(t, j) / prices.At(t-1, j)
		}

		histStart := t - window

		priceHist := prices.Slice(histStart, t+1)
		// returns row i describes the move into price row i+1, so the window
		// ending at price row t ends at returns row t-1.
		returnsHist := returns.Slice(histStart, t)

		for _, name := range s.names {
			state := s.states[name]
			state.age(growth)
			copy(current, state.portfolio)

			alloc, err := state.policy.Optimize(current, s.config.PeriodicCash, priceHist, returnsHist)
			if err != nil {
				s.log.Error("Policy failed",
					zap.String("run_id", runID),
					zap.String("strategy", name),
					zap.Time("date", prices.Date(t)),
					zap.Error(err),
				)

				return nil, errors.Wrapf(errors.ErrCodeSimulationAborted, err,
					"strategy %s failed at %s", name, prices.Date(t).Format("2006-01-02"))
			}

			if err := alloc.CheckBuyOnly(n, s.config.PeriodicCash); err != nil {
				return nil, errors.Wrapf(errors.ErrCodeSimulationAborted, err,
					"strategy %s produced an invalid allocation at %s", name, prices.Date(t).Format("2006-01-02"))
			}

			allocation := alloc.NewAllocation
			portfolio := alloc.NewPortfolio

			if s.config.WholeUnits {
				allocation = truncateVector(allocation)
				portfolio = truncateVector(portfolio)
			}

			assetValues := applyFee(portfolio, allocation, s.fee.Assess)

			total := 0.0
			for _, v := range assetValues {
				total += v
			}

			state.record(types.PeriodRecord{
				Date:        prices.Date(t),
				Allocation:  append([]float64(nil), allocation...),
				AssetValues: assetValues,
				Weights:     append([]float64(nil), alloc.NewWeights...),
				TotalValue:  total,
			})
		}

		if onPeriod.IsSome() {
			onPeriod.Unwrap()(t-window+1, totalPeriods)
		}
	}

	results := make(engine.Results, len(s.names))

	for _, name := range s.names {
		res, err := s.states[name].result(prices.Symbols())
		if err != nil {
			return nil, err
		}

		results[name] = res
	}

	s.log.Info("Simulation finished",
		zap.String("run_id", runID),
		zap.Int("periods", totalPeriods),
	)

	return results, nil
}

// trimToRange restricts the price table to the configured start and end
// times. Bounds are inclusive; an unset bound leaves that side open.
func (s *SimulatorV1) trimToRange(prices *types.Table) *types.Table {
	from := 0
	to := prices.Len()

	if s.config.StartTime.IsSome() {
		start := s.config.StartTime.Unwrap()
		for from < to && prices.Date(from).Before(start) {
			from++
		}
	}

	if s.config.EndTime.IsSome() {
		end := s.config.EndTime.Unwrap()
		for to > from && prices.Date(to-1).After(end) {
			to--
		}
	}

	if from == 0 && to == prices.Len() {
		return prices
	}

	return prices.Slice(from, to)
}

func (s *SimulatorV1) preRunCheck() error {
	if len(s.names) == 0 {
		return errors.New(errors.ErrCodeNoStrategies, "no strategies loaded")
	}

	if s.prices == nil {
		return errors.New(errors.ErrCodeNoPriceTable, "no price table set")
	}

	if err := s.prices.Validate(); err != nil {
		return err
	}

	if s.config.RollingWindow < 1 {
		return errors.Newf(errors.ErrCodeInvalidWindow, "rolling window %d, want at least 1", s.config.RollingWindow)
	}

	if len(s.config.InitialAllocation) != s.prices.NumAssets() {
		return errors.Newf(errors.ErrCodeVectorLengthMismatch,
			"initial allocation has %d entries, price table has %d assets",
			len(s.config.InitialAllocation), s.prices.NumAssets())
	}

	for i, v := range s.config.InitialAllocation {
		if v < 0 {
			return errors.Newf(errors.ErrCodeInvalidParameter, "negative initial allocation %.4f at index %d", v, i)
		}
	}

	return nil
}
