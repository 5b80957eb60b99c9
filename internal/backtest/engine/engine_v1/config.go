package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/accrue-lab/accrue/internal/backtest/engine/engine_v1/tradecost"
	"github.com/accrue-lab/accrue/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
)

// DefaultRollingWindow is the warm-up/lookback length in periods when the
// configuration does not set one.
const DefaultRollingWindow = 12

// DefaultTradeFee is the flat per-traded-asset fee in currency units when the
// configuration does not set one.
const DefaultTradeFee = 1.75

// SimulatorV1Config configures one simulation run.
type SimulatorV1Config struct {
	// InitialAllocation is the starting dollar exposure per asset, aligned to
	// the price table's column order.
	InitialAllocation []float64 `yaml:"initial_allocation" json:"initial_allocation" jsonschema:"title=Initial Allocation,description=Starting dollar exposure per asset aligned to the price table columns"`
	// PeriodicCash is the cash injected at every rebalancing period.
	PeriodicCash float64 `yaml:"periodic_cash" json:"periodic_cash" jsonschema:"title=Periodic Cash,description=Cash injected each rebalancing period,minimum=0" validate:"gte=0"`
	// RollingWindow is the warm-up offset and trailing history width in periods.
	RollingWindow int `yaml:"rolling_window" json:"rolling_window" jsonschema:"title=Rolling Window,description=Warm-up offset and trailing history width in periods,minimum=1" validate:"gte=1"`
	// FeeSchedule selects the transaction-cost model.
	FeeSchedule tradecost.Schedule `yaml:"fee_schedule" json:"fee_schedule" jsonschema:"title=Fee Schedule,description=Transaction cost model applied per traded asset"`
	// TradeFee is the flat fee charged per traded asset under the flat schedule.
	TradeFee float64 `yaml:"trade_fee" json:"trade_fee" jsonschema:"title=Trade Fee,description=Flat fee per traded asset per period,minimum=0" validate:"gte=0"`
	// WholeUnits truncates allocation and portfolio vectors to whole currency
	// units before fees, matching real-world order sizing.
	WholeUnits bool                       `yaml:"whole_units" json:"whole_units" jsonschema:"title=Whole Units,description=Truncate dollar vectors to whole currency units"`
	StartTime  optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start of the simulated date range"`
	EndTime    optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end of the simulated date range"`
}

// UnmarshalYAML implements custom unmarshaling for SimulatorV1Config.
func (c *SimulatorV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type Config struct {
		InitialAllocation []float64          `yaml:"initial_allocation"`
		PeriodicCash      float64            `yaml:"periodic_cash"`
		RollingWindow     *int               `yaml:"rolling_window"`
		FeeSchedule       tradecost.Schedule `yaml:"fee_schedule"`
		TradeFee          *float64           `yaml:"trade_fee"`
		WholeUnits        *bool              `yaml:"whole_units"`
		StartTime         *time.Time         `yaml:"start_time"`
		EndTime           *time.Time         `yaml:"end_time"`
	}

	var config Config
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.InitialAllocation = config.InitialAllocation
	c.PeriodicCash = config.PeriodicCash
	c.FeeSchedule = config.FeeSchedule

	c.RollingWindow = DefaultRollingWindow
	if config.RollingWindow != nil {
		c.RollingWindow = *config.RollingWindow
	}

	c.TradeFee = DefaultTradeFee
	if config.TradeFee != nil {
		c.TradeFee = *config.TradeFee
	}

	c.WholeUnits = true
	if config.WholeUnits != nil {
		c.WholeUnits = *config.WholeUnits
	}

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// Validate checks the configuration's field constraints.
func (c *SimulatorV1Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid simulator configuration", err)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the SimulatorV1Config.
func (c *SimulatorV1Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}
			if strings.Contains(t.String(), "tradecost.Schedule") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: tradecost.AllSchedules,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "simulator-v1-config"
	schema.Description = "Configuration schema for SimulatorV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates a JSON schema string for the SimulatorV1Config.
func (c *SimulatorV1Config) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// EmptyConfig returns a SimulatorV1Config with default values.
func EmptyConfig() SimulatorV1Config {
	return SimulatorV1Config{
		InitialAllocation: nil,
		PeriodicCash:      0,
		RollingWindow:     DefaultRollingWindow,
		FeeSchedule:       tradecost.ScheduleFlat,
		TradeFee:          DefaultTradeFee,
		WholeUnits:        true,
		StartTime:         optional.None[time.Time](),
		EndTime:           optional.None[time.Time](),
	}
}
