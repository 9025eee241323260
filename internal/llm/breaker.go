package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vkotliar/gavel/internal/model"
)

// BreakerProvider wraps a Provider with a circuit breaker. Repeated
// endpoint failures open the breaker, and further calls fail fast with
// ErrServiceUnavailable instead of queueing on a dead endpoint.
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps the given provider.
func NewBreakerProvider(inner Provider) *BreakerProvider {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})
	return &BreakerProvider{inner: inner, breaker: breaker}
}

// Name returns the wrapped provider's name.
func (p *BreakerProvider) Name() string {
	return p.inner.Name()
}

// IsAvailable reports false while the breaker is open.
func (p *BreakerProvider) IsAvailable(ctx context.Context) bool {
	if p.breaker.State() == gobreaker.StateOpen {
		return false
	}
	return p.inner.IsAvailable(ctx)
}

// Generate delegates through the breaker.
func (p *BreakerProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.inner.Generate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: generation breaker open: %v", model.ErrServiceUnavailable, err)
		}
		return nil, err
	}
	return result.(*GenerateResponse), nil
}
