package veracore

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// strategy is one named way of performing a UI interaction. Strategies are
// tried in order; the first success wins and its name is recorded so logs
// and outcomes show which fallback fired.
type strategy struct {
	name string
	run  func(ctx context.Context) error
}

func applyStrategies(ctx context.Context, log *zap.Logger, op string, strategies []strategy) (string, error) {
	var lastErr error
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		err := s.run(ctx)
		if err == nil {
			log.Debug("strategy succeeded",
				zap.String("op", op),
				zap.String("strategy", s.name))
			return s.name, nil
		}
		log.Debug("strategy failed",
			zap.String("op", op),
			zap.String("strategy", s.name),
			zap.Error(err))
		lastErr = err
	}
	return "", fmt.Errorf("%s: all %d strategies failed: %w", op, len(strategies), lastErr)
}

// locateStrategy resolves a selector for a control whose id is regenerated
// per dialog instance. An empty selector means the control already has focus.
type locateStrategy struct {
	name   string
	locate func(ctx context.Context) (string, error)
}

func applyLocate(ctx context.Context, log *zap.Logger, op string, strategies []locateStrategy) (string, string, error) {
	var lastErr error
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		sel, err := s.locate(ctx)
		if err == nil {
			log.Debug("locate succeeded",
				zap.String("op", op),
				zap.String("strategy", s.name))
			return s.name, sel, nil
		}
		log.Debug("locate failed",
			zap.String("op", op),
			zap.String("strategy", s.name),
			zap.Error(err))
		lastErr = err
	}
	return "", "", fmt.Errorf("%s: all %d locate strategies failed: %w", op, len(strategies), lastErr)
}
