package content

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	retryAttempts = 3
	retryBase     = time.Second
	callTimeout   = 30 * time.Second
)

// Retrying decorates a Generator with a per-call 30s timeout and a bounded
// exponential backoff: 3 attempts, base delay 1s, doubling.
type Retrying struct {
	inner  Generator
	logger *zap.Logger
}

// WithRetry wraps a generator in the standard retry policy.
func WithRetry(inner Generator, logger *zap.Logger) *Retrying {
	return &Retrying{inner: inner, logger: logger}
}

// NextDailyMission implements Generator.
func (r *Retrying) NextDailyMission(ctx context.Context, in MissionInput) (*GeneratedMission, error) {
	return retry(ctx, r.logger, "next daily mission", func(ctx context.Context) (*GeneratedMission, error) {
		return r.inner.NextDailyMission(ctx, in)
	})
}

// AdjustDailyMission implements Generator.
func (r *Retrying) AdjustDailyMission(ctx context.Context, in AdjustInput) (*GeneratedMission, error) {
	return retry(ctx, r.logger, "adjust daily mission", func(ctx context.Context) (*GeneratedMission, error) {
		return r.inner.AdjustDailyMission(ctx, in)
	})
}

func retry(ctx context.Context, logger *zap.Logger, op string, fn func(context.Context) (*GeneratedMission, error)) (*GeneratedMission, error) {
	var lastErr error
	delay := retryBase

	for attempt := 1; attempt <= retryAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		m, err := fn(callCtx)
		cancel()
		if err == nil {
			return m, nil
		}
		lastErr = err
		logger.Warn("generation attempt failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == retryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return nil, lastErr
}
