// Package resilience wraps calls to upstream services with bounded
// retries and a per-upstream circuit breaker.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Verdict tells the executor how to treat a failed call. Retryable
// controls the retry loop; CountsAgainstBreaker controls whether the
// failure moves the breaker toward open.
type Verdict struct {
	Retryable            bool
	CountsAgainstBreaker bool
}

type Classifier func(err error) Verdict

type Executor struct {
	policy Policy
	logger *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(policy Policy, logger *slog.Logger) *Executor {
	return &Executor{
		policy:   policy.normalize(),
		logger:   logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

// Do runs call under the breaker for the named upstream, retrying
// failures the classifier marks retryable.
func (e *Executor) Do(ctx context.Context, upstream string, call func(context.Context) error, classify Classifier) error {
	if call == nil {
		return fmt.Errorf("resilience: nil call for upstream %q", upstream)
	}
	if classify == nil {
		classify = func(error) Verdict { return Verdict{CountsAgainstBreaker: true} }
	}

	if !e.policy.BreakerEnabled {
		return e.retry(ctx, upstream, call, classify)
	}

	breaker := e.breakerFor(upstream, classify)
	_, err := breaker.Execute(func() (any, error) {
		return nil, e.retry(ctx, upstream, call, classify)
	})
	return err
}

func (e *Executor) retry(ctx context.Context, upstream string, call func(context.Context) error, classify Classifier) error {
	backoff := e.policy.RetryInitialBackoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := call(ctx)
		if err == nil {
			return nil
		}
		if !classify(err).Retryable || attempt == e.policy.RetryMaxAttempts {
			return err
		}

		e.logger.Warn("upstream_retry",
			slog.String("upstream", upstream),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", e.policy.RetryMaxAttempts),
			slog.Duration("backoff", backoff),
			slog.Any("error", err))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * e.policy.RetryMultiplier)
		if backoff > e.policy.RetryMaxBackoff {
			backoff = e.policy.RetryMaxBackoff
		}
	}
}

func (e *Executor) breakerFor(upstream string, classify Classifier) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if breaker, ok := e.breakers[upstream]; ok {
		return breaker
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        upstream,
		MaxRequests: e.policy.BreakerHalfOpenMaxCalls,
		Timeout:     e.policy.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < e.policy.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= e.policy.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classify(err).CountsAgainstBreaker
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Warn("circuit_breaker_state_change",
				slog.String("upstream", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	e.breakers[upstream] = breaker
	return breaker
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
