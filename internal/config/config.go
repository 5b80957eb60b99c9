// Package config defines the YAML run configuration tying together the data
// source, the asset universe, the simulator settings, and the strategy list.
package config

import (
	"encoding/json"
	"reflect"

	"github.com/accrue-lab/accrue/internal/backtest/engine/engine_v1/datasource"
	"github.com/accrue-lab/accrue/internal/policy"
	"github.com/accrue-lab/accrue/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// DataConfig locates the bar data file and its sampling interval.
type DataConfig struct {
	Path     string              `yaml:"path" json:"path" jsonschema:"title=Path,description=Bar data file (CSV or parquet)" validate:"required"`
	Interval datasource.Interval `yaml:"interval" json:"interval" jsonschema:"title=Interval,description=Sampling interval of the price table"`
}

// StrategyConfig names one strategy instance and its policy parameters.
type StrategyConfig struct {
	Name   string        `yaml:"name" json:"name" jsonschema:"title=Name,description=Unique strategy name in the run" validate:"required"`
	Kind   string        `yaml:"kind" json:"kind" jsonschema:"title=Kind,description=Policy variant to instantiate" validate:"required"`
	Params policy.Params `yaml:"params" json:"params" jsonschema:"title=Params,description=Policy hyperparameters"`
}

// BenchmarkConfig selects the comparison curves computed alongside the run.
type BenchmarkConfig struct {
	RiskFreeRate  float64   `yaml:"risk_free_rate" json:"risk_free_rate" jsonschema:"title=Risk Free Rate,description=Per-period risk-free rate" validate:"gte=0"`
	Index         string    `yaml:"index" json:"index" jsonschema:"title=Index,description=Symbol for the single-asset benchmark"`
	BasketSymbols []string  `yaml:"basket_symbols" json:"basket_symbols" jsonschema:"title=Basket Symbols"`
	BasketWeights []float64 `yaml:"basket_weights" json:"basket_weights" jsonschema:"title=Basket Weights,description=Fixed weights summing to 1"`
}

// RunConfig is the full configuration of one backtest invocation.
type RunConfig struct {
	Data       DataConfig       `yaml:"data" json:"data" validate:"required"`
	Universe   []string         `yaml:"universe" json:"universe" jsonschema:"title=Universe,description=Ticker symbols in price table column order" validate:"required,min=1"`
	Simulation yaml.Node        `yaml:"simulation" json:"simulation" jsonschema:"title=Simulation,description=Simulator settings passed to the engine"`
	Strategies []StrategyConfig `yaml:"strategies" json:"strategies" validate:"required,min=1,dive"`
	Benchmarks *BenchmarkConfig `yaml:"benchmarks" json:"benchmarks,omitempty"`
	Output     string           `yaml:"output" json:"output" jsonschema:"title=Output,description=Results folder"`
}

// ParseRunConfig parses and validates a run configuration document.
func ParseRunConfig(doc string) (*RunConfig, error) {
	var config RunConfig
	if err := yaml.Unmarshal([]byte(doc), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse run configuration", err)
	}

	if config.Data.Interval == "" {
		config.Data.Interval = datasource.IntervalMonthly
	}

	if config.Output == "" {
		config.Output = "results"
	}

	validate := validator.New()
	if err := validate.Struct(&config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid run configuration", err)
	}

	seen := make(map[string]bool, len(config.Strategies))

	for _, strategy := range config.Strategies {
		if seen[strategy.Name] {
			return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "duplicate strategy name %q", strategy.Name)
		}

		seen[strategy.Name] = true
	}

	if b := config.Benchmarks; b != nil && len(b.BasketSymbols) != len(b.BasketWeights) {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration,
			"%d basket symbols, %d basket weights", len(b.BasketSymbols), len(b.BasketWeights))
	}

	return &config, nil
}

// SimulationYAML renders the simulation section back to YAML for the engine.
// An absent section yields an empty document, leaving the engine on its
// defaults.
func (c *RunConfig) SimulationYAML() (string, error) {
	if c.Simulation.Kind == 0 {
		return "", nil
	}

	data, err := yaml.Marshal(&c.Simulation)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to render simulation section", err)
	}

	return string(data), nil
}

// GenerateSchemaJSON generates a JSON schema string for the run
// configuration.
func (c *RunConfig) GenerateSchemaJSON() (string, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t.String() {
			case "yaml.Node":
				return &jsonschema.Schema{Type: "object"}
			case "datasource.Interval":
				return &jsonschema.Schema{
					Type: "string",
					Enum: []any{
						datasource.IntervalDaily,
						datasource.IntervalWeekly,
						datasource.IntervalMonthly,
					},
				}
			default:
				return nil
			}
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "run-config"
	schema.Description = "Configuration schema for a backtest run"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
