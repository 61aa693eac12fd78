package service

import (
	"context"
	"time"

	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
	"github.com/Laisky/laisky-qa-bot/library/log"
)

// DefaultPredictorTimeout bounds every single predictor call
const DefaultPredictorTimeout = 30 * time.Second

// Dispatcher fans a question out to every predictor
type Dispatcher struct {
	api      API
	registry *PredictorRegistry
	timeout  time.Duration
	logger   logSDK.Logger
}

// NewDispatcher creates a dispatcher, timeout <= 0 means DefaultPredictorTimeout
func NewDispatcher(api API, registry *PredictorRegistry, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultPredictorTimeout
	}

	return &Dispatcher{
		api:      api,
		registry: registry,
		timeout:  timeout,
		logger:   log.Logger.Named("dispatcher"),
	}
}

// Dispatch asks every predictor concurrently and streams the answers
// in the order they complete.
//
// Failed predictors are logged and skipped, predictors that found nothing
// are dropped. The channel is closed once every predictor has resolved.
func (d *Dispatcher) Dispatch(ctx context.Context, q *model.Question) <-chan *model.Answer {
	names := d.registry.Names()
	answers := make(chan *model.Answer, len(names))
	logger := d.logger.With(
		zap.Int64("chat", q.ChatID),
		zap.Int("msg", q.MessageID),
	)

	var pool errgroup.Group
	for _, name := range names {
		pool.Go(func() error {
			ans, err := d.ask(ctx, name, q)
			if err != nil {
				logger.Error("predictor failed", zap.String("predictor", name), zap.Error(err))
				return nil
			}
			if ans == nil {
				logger.Debug("predictor found nothing", zap.String("predictor", name))
				return nil
			}

			answers <- ans
			return nil
		})
	}

	go func() {
		_ = pool.Wait()
		close(answers)
	}()

	return answers
}

func (d *Dispatcher) ask(ctx context.Context, name string, q *model.Question) (*model.Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	ans, err := d.api.Ask(ctx, name, q)
	if err != nil {
		return nil, err
	}
	if ans != nil && ans.Predictor == "" {
		ans.Predictor = name
	}

	return ans, nil
}
