package describe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/surveyd/internal/domain"
)

// RetryPolicy bounds retries of transient generation failures.
type RetryPolicy struct {
	MaxRetries int // retries after the first attempt; 0 disables
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     bool // multiplies each delay by a factor in [0.5, 1.5)
}

// DefaultRetryPolicy returns the production retry defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2,
		Jitter:     true,
	}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2
	}
	d := float64(p.BaseDelay) * math.Pow(mult, float64(attempt))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if p.Jitter {
		d *= 0.5 + rand.Float64() //nolint:gosec // jitter only
	}
	return time.Duration(d)
}

// RetryingGenerator retries the inner generator on transient provider errors.
type RetryingGenerator struct {
	inner  domain.TextGenerator
	policy RetryPolicy
	logger *zap.Logger
}

// NewRetryingGenerator wraps inner with the given policy.
func NewRetryingGenerator(inner domain.TextGenerator, policy RetryPolicy, logger *zap.Logger) *RetryingGenerator {
	return &RetryingGenerator{inner: inner, policy: policy, logger: logger}
}

// Generate implements domain.TextGenerator.
func (g *RetryingGenerator) Generate(
	ctx context.Context, prompt string, format domain.ResponseFormat,
) (domain.GenerationResult, error) {
	res, err := g.inner.Generate(ctx, prompt, format)
	for attempt := 0; err != nil && attempt < g.policy.MaxRetries; attempt++ {
		if !isTransient(err) {
			return domain.GenerationResult{}, err
		}

		d := g.policy.delay(attempt)
		g.logger.Warn("Retrying generation request",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", d),
			zap.Error(err),
		)

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.GenerationResult{}, fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-timer.C:
		}

		res, err = g.inner.Generate(ctx, prompt, format)
	}
	if err != nil {
		return domain.GenerationResult{}, err
	}
	return res, nil
}

// HealthCheck delegates to the inner generator when it supports health checks.
func (g *RetryingGenerator) HealthCheck(ctx context.Context) error {
	if hc, ok := g.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func isTransient(err error) bool {
	var pe *domain.ProviderError
	return errors.As(err, &pe) && pe.Retryable()
}
