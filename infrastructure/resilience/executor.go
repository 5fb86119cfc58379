// Package resilience guards decision requests using fortify.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/sgr-go/domain/agent"
)

// errPermanent marks failures that must not be retried.
var errPermanent = errors.New("permanent failure")

// DecideFunc requests one decision from the oracle.
type DecideFunc func(ctx context.Context) (agent.Decision, error)

// Executor guards decision requests with a per-call timeout, a circuit breaker,
// and bounded retry of decode failures. Only errors wrapping agent.ErrDecode are
// retried; transport failures surface on the first attempt.
type Executor struct {
	breaker  circuitbreaker.CircuitBreaker[agent.Decision]
	retry    retry.Retry[agent.Decision]
	attempts int
	timeout  time.Duration
}

// ExecutorConfig configures the executor.
type ExecutorConfig struct {
	// DecodeAttempts is the total number of attempts for a decision whose
	// output fails to decode. 1 disables retry.
	DecodeAttempts int

	// RetryInitialDelay is the initial delay between decode retries.
	RetryInitialDelay time.Duration

	// RetryBackoffMultiplier is the exponential backoff multiplier.
	RetryBackoffMultiplier float64

	// CircuitBreakerThreshold is the number of consecutive failures before opening.
	CircuitBreakerThreshold int

	// CircuitBreakerTimeout is how long the circuit stays open.
	CircuitBreakerTimeout time.Duration

	// Timeout bounds a single decision request. Zero means no timeout.
	Timeout time.Duration
}

// DefaultExecutorConfig returns a configuration with sensible defaults.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		DecodeAttempts:          1,
		RetryInitialDelay:       200 * time.Millisecond,
		RetryBackoffMultiplier:  2.0,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   30 * time.Second,
		Timeout:                 2 * time.Minute,
	}
}

// NewExecutor creates a new executor.
func NewExecutor(config ExecutorConfig) *Executor {
	threshold := config.CircuitBreakerThreshold
	if threshold <= 0 {
		threshold = 5 // default
	}
	attempts := config.DecodeAttempts
	if attempts < 1 {
		attempts = 1
	}

	e := &Executor{
		breaker: circuitbreaker.New[agent.Decision](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    config.CircuitBreakerTimeout,
			Timeout:     config.CircuitBreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- bounds checked above
			},
			// Malformed output is the model's fault, not the provider's.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, agent.ErrDecode)
			},
		}),
		attempts: attempts,
		timeout:  config.Timeout,
	}

	if attempts > 1 {
		e.retry = retry.New[agent.Decision](retry.Config{
			MaxAttempts:        attempts,
			InitialDelay:       config.RetryInitialDelay,
			BackoffPolicy:      retry.BackoffExponential,
			Multiplier:         config.RetryBackoffMultiplier,
			NonRetryableErrors: []error{errPermanent},
		})
	}
	return e
}

// NewDefaultExecutor creates an executor with default configuration.
func NewDefaultExecutor() *Executor {
	return NewExecutor(DefaultExecutorConfig())
}

// Execute requests a decision with the resilience patterns applied.
// Composition order: Retry (decode only) → Circuit Breaker → Timeout.
func (e *Executor) Execute(ctx context.Context, fn DecideFunc) (agent.Decision, error) {
	if e.retry == nil {
		return e.guarded(ctx, fn)
	}

	var last error
	d, err := e.retry.Do(ctx, func(ctx context.Context) (agent.Decision, error) {
		d, err := e.guarded(ctx, fn)
		last = err
		if err != nil && !errors.Is(err, agent.ErrDecode) {
			return d, fmt.Errorf("%w: %w", errPermanent, err)
		}
		return d, err
	})
	if err != nil {
		if last != nil {
			return agent.Decision{}, last
		}
		return agent.Decision{}, err
	}
	return d, nil
}

func (e *Executor) guarded(ctx context.Context, fn DecideFunc) (agent.Decision, error) {
	return e.breaker.Execute(ctx, func(ctx context.Context) (agent.Decision, error) {
		if e.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}
		return fn(ctx)
	})
}

// DecodeAttempts returns the configured number of attempts per decision.
func (e *Executor) DecodeAttempts() int {
	return e.attempts
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (e *Executor) CircuitBreakerState() circuitbreaker.State {
	return e.breaker.State()
}
