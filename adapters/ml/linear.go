// Package ml provides the ml category adapter: a linear model over numeric
// employee features. Prediction is read only.
package ml

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/upb/employee-management/adapters"
)

// Provider is the canonical provider name
const Provider adapters.ProviderName = "linear"

// Aliases are additional names the provider is registered under
var Aliases = []adapters.ProviderName{"sklearn"}

// Recognized option keys
const (
	OptWeights   = "weights"
	OptIntercept = "intercept"
	OptMin       = "min"
	OptMax       = "max"
)

var knownOptions = []string{OptWeights, OptIntercept, OptMin, OptMax}

// DefaultWeights maps the standard performance features to a 0-5 score.
// Full attendance, 200 completed tasks and a 5.0 quality score reach 5.
var DefaultWeights = map[string]float64{
	"attendance_rate": 1.5,
	"tasks_completed": 0.005,
	"quality_score":   0.5,
}

// Model is an immutable linear model
type Model struct {
	Weights   map[string]float64
	Intercept float64
	Min       float64
	Max       float64
}

// Features returns the feature names in a stable order
func (m *Model) Features() []string {
	names := make([]string, 0, len(m.Weights))
	for name := range m.Weights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Predict computes intercept + sum(weight * feature), clamped to [Min, Max]
func (m *Model) Predict(features map[string]float64) float64 {
	y := m.Intercept
	for name, w := range m.Weights {
		y += w * features[name]
	}
	return math.Max(m.Min, math.Min(m.Max, y))
}

// Adapter is the linear ml adapter
type Adapter struct {
	*adapters.Lifecycle
	logger *zap.Logger

	model *Model
}

// New creates an uninitialized ml adapter
func New(logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		Lifecycle: adapters.NewLifecycle(adapters.CategoryML, Provider),
		logger:    logger.With(zap.String("adapter", "ml/linear")),
	}
}

// Initialize builds the model from the options
func (a *Adapter) Initialize(ctx context.Context, opts adapters.Options) error {
	return a.Lifecycle.Initialize(opts, knownOptions, func() error {
		weights, err := opts.FloatMap(OptWeights, DefaultWeights)
		if err != nil {
			return err
		}
		if len(weights) == 0 {
			return fmt.Errorf("%s cannot be empty", OptWeights)
		}
		intercept, err := opts.Float(OptIntercept, 0)
		if err != nil {
			return err
		}
		minV, err := opts.Float(OptMin, 0)
		if err != nil {
			return err
		}
		maxV, err := opts.Float(OptMax, 5)
		if err != nil {
			return err
		}
		if minV > maxV {
			return fmt.Errorf("%s (%v) is greater than %s (%v)", OptMin, minV, OptMax, maxV)
		}

		copied := make(map[string]float64, len(weights))
		for k, v := range weights {
			copied[k] = v
		}
		a.model = &Model{Weights: copied, Intercept: intercept, Min: minV, Max: maxV}

		a.logger.Info("ml adapter initialized", zap.Strings("features", a.model.Features()))
		return nil
	})
}

// HandleData predicts a score from the payload features. Every model feature
// must be present and numeric; extra keys are ignored.
func (a *Adapter) HandleData(ctx context.Context, payload adapters.Payload) (*adapters.Result, error) {
	var result *adapters.Result
	err := a.Use(func() error {
		features := make(map[string]float64, len(a.model.Weights))
		for _, name := range a.model.Features() {
			raw, ok := payload[name]
			if !ok || raw == nil {
				return adapters.NewOperationError(adapters.CategoryML, Provider, "missing_feature",
					fmt.Sprintf("missing feature %q", name), false, nil)
			}
			v, err := adapters.Options(payload).Float(name, 0)
			if err != nil {
				return adapters.NewOperationError(adapters.CategoryML, Provider, "invalid_feature",
					fmt.Sprintf("feature %q is not numeric", name), false, err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return adapters.NewOperationError(adapters.CategoryML, Provider, "invalid_feature",
					fmt.Sprintf("feature %q is not finite", name), false, nil)
			}
			features[name] = v
		}

		prediction := a.model.Predict(features)
		result = adapters.NewResult(a, map[string]any{
			"prediction": prediction,
			"model":      string(Provider),
			"features":   features,
		})
		return nil
	})
	return result, err
}

// Close drops the model
func (a *Adapter) Close() error {
	return a.Lifecycle.Close(nil)
}
