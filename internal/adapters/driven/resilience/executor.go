// Package resilience hardens calls to external model providers with
// per-call timeouts, bounded retries, client-side rate limiting and a
// circuit breaker.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/studyrag/internal/logger"
)

// Default policy values.
const (
	DefaultMaxAttempts      = 3
	DefaultInitialInterval  = 500 * time.Millisecond
	DefaultMaxInterval      = 10 * time.Second
	DefaultBreakerFailures  = 5
	DefaultBreakerCooldown  = 30 * time.Second
	DefaultBreakerHalfOpens = 1
)

// Policy configures an Executor. Zero fields take defaults; a zero
// RequestsPerSecond disables rate limiting and a zero Timeout disables the
// per-call deadline.
type Policy struct {
	Name              string
	Timeout           time.Duration
	MaxAttempts       int
	InitialInterval   time.Duration
	MaxInterval       time.Duration
	RequestsPerSecond float64
	BreakerFailures   uint32
	BreakerCooldown   time.Duration
}

// Executor runs provider calls under a Policy. It is safe for concurrent use.
type Executor struct {
	policy  Policy
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	onRetry func(name string, err error)
}

// Option configures an Executor.
type Option func(*Executor)

// WithRetryHook is called before each retry with the failed attempt's error.
func WithRetryHook(fn func(name string, err error)) Option {
	return func(e *Executor) {
		e.onRetry = fn
	}
}

// NewExecutor creates an executor for one provider.
func NewExecutor(p Policy, opts ...Option) *Executor {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultInitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = DefaultMaxInterval
	}
	if p.BreakerFailures == 0 {
		p.BreakerFailures = DefaultBreakerFailures
	}
	if p.BreakerCooldown <= 0 {
		p.BreakerCooldown = DefaultBreakerCooldown
	}

	e := &Executor{policy: p}
	if p.RequestsPerSecond > 0 {
		burst := int(p.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(p.RequestsPerSecond), burst)
	}

	failures := p.BreakerFailures
	e.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        p.Name,
		MaxRequests: DefaultBreakerHalfOpens,
		Timeout:     p.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Only provider outages count against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do runs fn until it succeeds, fails permanently or the attempts are used up.
// Each attempt waits for the rate limiter and gets its own timeout.
func (e *Executor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.policy.InitialInterval
	b.MaxInterval = e.policy.MaxInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(e.policy.MaxAttempts-1)), ctx)

	operation := func() error {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		_, err := e.breaker.Execute(func() (interface{}, error) {
			return nil, e.attempt(ctx, fn)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(fmt.Errorf("%s unavailable: %w", e.policy.Name, err))
		}
		if ctx.Err() != nil || !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Debug("%s: transient failure, retrying in %s: %v", e.policy.Name, wait, err)
		if e.onRetry != nil {
			e.onRetry(e.policy.Name, err)
		}
	}

	return backoff.RetryNotify(operation, policy, notify)
}

// attempt runs one call under the per-call timeout.
func (e *Executor) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if e.policy.Timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, e.policy.Timeout)
	defer cancel()
	return fn(callCtx)
}

// State returns the breaker state name.
func (e *Executor) State() string {
	return e.breaker.State().String()
}
