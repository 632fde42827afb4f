// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/parleyhq/parley/internal/inference"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/metrics"
)

// BreakerRuntime wraps an inference.Runtime with circuit breaker protection.
// Circuit breaker pattern prevents cascading failures when the model runtime
// is unavailable or slow: once it opens, turns fail fast instead of queueing
// behind a dead sidecar.
//
// DETERMINISM NOTE: The circuit breaker uses real time (via sony/gobreaker)
// for its interval and timeout calculations. This is intentional for
// production resilience. Tests should mock the inner runtime, not the breaker.
type BreakerRuntime struct {
	inner inference.Runtime
	cb    *gobreaker.CircuitBreaker[any]
	name  string
}

var _ inference.Runtime = (*BreakerRuntime)(nil)

// NewBreakerRuntime wraps the given runtime with a circuit breaker.
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 30 second timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewBreakerRuntime(inner inference.Runtime) *BreakerRuntime {
	cbName := "model-runtime"

	// Initialize circuit breaker state metrics
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,                // Allow 3 concurrent requests in half-open state
		Interval:    time.Minute,      // Reset counts after 1 minute in closed state
		Timeout:     30 * time.Second, // Wait 30 seconds before transitioning from open to half-open

		// ReadyToTrip determines when to open the circuit
		// Opens when failure rate >= 60% with minimum 10 requests
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false // Need at least 10 requests for statistical significance
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		// OnStateChange is called whenever the circuit breaker changes state
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			// Update metrics
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			// Reset consecutive failures when transitioning to closed
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &BreakerRuntime{
		inner: inner,
		cb:    cb,
		name:  cbName,
	}
}

// execute wraps a runtime call with circuit breaker protection.
// Returns the result or an error if circuit is open or the call fails.
func (b *BreakerRuntime) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)

	// Update metrics based on result
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// Circuit is open or too many concurrent requests in half-open state
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Runtime call rejected")
		} else {
			// Call failed
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()

			// Increment consecutive failures
			counts := b.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	// Call succeeded
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)

	return result, nil
}

// castResult safely type-casts the circuit breaker result with error checking.
// Returns the typed result or an error if the assertion fails.
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Encode tokenizes a single text with circuit breaker protection.
func (b *BreakerRuntime) Encode(ctx context.Context, text string, opts inference.EncodeOptions) ([]int, error) {
	return castResult[[]int](b.execute(func() (any, error) {
		return b.inner.Encode(ctx, text, opts)
	}))
}

// Decode renders token ids back to text with circuit breaker protection.
func (b *BreakerRuntime) Decode(ctx context.Context, ids []int, skipSpecialTokens bool) (string, error) {
	return castResult[string](b.execute(func() (any, error) {
		return b.inner.Decode(ctx, ids, skipSpecialTokens)
	}))
}

// Pad aligns raw sequences into a batch with circuit breaker protection.
func (b *BreakerRuntime) Pad(ctx context.Context, sequences [][]int, opts inference.PadOptions) (inference.Batch, error) {
	return castResult[inference.Batch](b.execute(func() (any, error) {
		return b.inner.Pad(ctx, sequences, opts)
	}))
}

// Score runs the recommendation head with circuit breaker protection.
func (b *BreakerRuntime) Score(ctx context.Context, batch inference.Batch) ([][]float64, error) {
	return castResult[[][]float64](b.execute(func() (any, error) {
		return b.inner.Score(ctx, batch)
	}))
}

// Generate runs constrained decoding with circuit breaker protection.
func (b *BreakerRuntime) Generate(ctx context.Context, batch inference.Batch, params inference.GenerateParams) (inference.Generation, error) {
	return castResult[inference.Generation](b.execute(func() (any, error) {
		return b.inner.Generate(ctx, batch, params)
	}))
}

// SepToken returns the separator token of the wrapped runtime. Metadata is
// local state, so the breaker is not consulted.
func (b *BreakerRuntime) SepToken() string {
	return b.inner.SepToken()
}

// Name returns the model name of the wrapped runtime.
func (b *BreakerRuntime) Name() string {
	return b.inner.Name()
}
