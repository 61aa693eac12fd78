package service

import (
	"context"
	"slices"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-qa-bot/library/log"
)

// PredictorRegistry is the list of predictors, loaded once at startup
type PredictorRegistry struct {
	names []string
}

// NewPredictorRegistry creates a registry with fixed names
func NewPredictorRegistry(names ...string) *PredictorRegistry {
	return &PredictorRegistry{names: slices.Clone(names)}
}

// LoadPredictorRegistry fetches predictor names from the web API
func LoadPredictorRegistry(ctx context.Context, api API) (*PredictorRegistry, error) {
	names, err := api.ListPredictors(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load predictors")
	}

	if len(names) == 0 {
		log.Logger.Warn("no predictors registered, questions will get no answers")
	}
	log.Logger.Info("loaded predictors", zap.Strings("predictors", names))

	return NewPredictorRegistry(names...), nil
}

// Names returns a copy of the predictor names
func (r *PredictorRegistry) Names() []string {
	return slices.Clone(r.names)
}

// Len returns the number of predictors
func (r *PredictorRegistry) Len() int {
	return len(r.names)
}
