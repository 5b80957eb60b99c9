package policy

import (
	"sort"
	"sync"

	"github.com/accrue-lab/accrue/pkg/errors"
)

// Params carries policy hyperparameters parsed from a run configuration.
type Params map[string]any

// Float reads a float64 parameter, accepting ints, with a default.
func (p Params) Float(key string, fallback float64) float64 {
	v, ok := p[key]
	if !ok {
		return fallback
	}

	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return fallback
	}
}

// Int reads an int parameter, accepting float64 (YAML numbers), with a default.
func (p Params) Int(key string, fallback int) int {
	v, ok := p[key]
	if !ok {
		return fallback
	}

	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return fallback
	}
}

// Bool reads a bool parameter with a default.
func (p Params) Bool(key string, fallback bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}

	return fallback
}

// String reads a string parameter with a default.
func (p Params) String(key, fallback string) string {
	if v, ok := p[key].(string); ok {
		return v
	}

	return fallback
}

// Factory builds a policy instance for a universe from parsed hyperparameters.
type Factory func(symbols []string, params Params) (Policy, error)

// Registry maps policy kind names to factories.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty policy registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under kind. Registering the same kind twice is an
// error.
func (r *Registry) Register(kind string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "policy kind %q already registered", kind)
	}

	r.factories[kind] = factory

	return nil
}

// Build constructs a policy of the given kind.
func (r *Registry) Build(kind string, symbols []string, params Params) (Policy, error) {
	r.mu.RLock()
	factory, exists := r.factories[kind]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrCodeUnknownPolicy, "unknown policy kind %q", kind)
	}

	return factory(symbols, params)
}

// Kinds returns the registered kind names in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}

	sort.Strings(kinds)

	return kinds
}

// NewDefaultRegistry returns a registry with every built-in policy variant.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	builtins := map[string]Factory{
		"equal_weight": func(symbols []string, params Params) (Policy, error) {
			return NewEqualWeight(symbols), nil
		},
		"momentum": func(symbols []string, params Params) (Policy, error) {
			return NewMomentum(symbols,
				WithMomentumLookback(params.Int("lookback", 6)),
				WithDiversification(params.Bool("diversification", false)),
			), nil
		},
		"dual_momentum": func(symbols []string, params Params) (Policy, error) {
			return NewDualMomentum(symbols,
				WithDualMomentumLookback(params.Int("lookback", 12)),
				WithTopN(params.Int("top_n", 0)),
				WithTopFraction(params.Float("top_fraction", 0.4)),
				WithAbsoluteThreshold(params.Float("absolute_threshold", 0)),
				WithWeighting(Weighting(params.String("weighting", string(WeightingEqual)))),
			), nil
		},
		"risk_parity": func(symbols []string, params Params) (Policy, error) {
			return NewRiskParity(symbols, params.Int("lookback", 0)), nil
		},
		"trend_following": func(symbols []string, params Params) (Policy, error) {
			return NewTrendFollowing(symbols, params.Int("long_window", 10), params.Int("short_window", 3)), nil
		},
		"value_averaging": func(symbols []string, params Params) (Policy, error) {
			return NewValueAveraging(symbols, params.Float("target_growth_rate", 0.02)), nil
		},
		"volatility_targeting": func(symbols []string, params Params) (Policy, error) {
			return NewVolatilityTargeting(symbols,
				WithTargetVolatility(params.Float("target_vol", 0.12)),
				WithVolTargetLookback(params.Int("lookback", 12)),
				WithInverseVolBase(params.String("weighting", "equal") == "inv_vol"),
			), nil
		},
		"value_opportunity": func(symbols []string, params Params) (Policy, error) {
			return NewValueOpportunity(symbols,
				params.Int("lookback_long", 12),
				params.Int("lookback_short", 1),
				params.Float("top_fraction", 0.5),
			), nil
		},
		"mean_reversion": func(symbols []string, params Params) (Policy, error) {
			return NewMeanReversion(symbols,
				params.Int("recent_lookback", 3),
				params.Int("history_lookback", 12),
				params.Int("top_n", 0),
			), nil
		},
		"min_variance": func(symbols []string, params Params) (Policy, error) {
			return NewMinVariance(symbols, params.Int("lookback", 0)), nil
		},
		"max_sharpe": func(symbols []string, params Params) (Policy, error) {
			return NewMaxSharpe(symbols, params.Int("lookback", 0)), nil
		},
	}

	for kind, factory := range builtins {
		// NewRegistry starts empty, so registration cannot collide here.
		_ = r.Register(kind, factory)
	}

	return r
}
