// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/gatherly/internal/metrics"
	"github.com/tomtom215/gatherly/internal/models"
	"github.com/tomtom215/gatherly/internal/recommend"
)

// ErrUnavailable is returned while the circuit is open or saturated.
var ErrUnavailable = errors.New("data provider unavailable")

// BreakerConfig controls when the circuit opens and how it recovers.
type BreakerConfig struct {
	// Name labels metrics and log lines.
	Name string `koanf:"name"`

	// MaxRequests is how many trial requests pass in the half-open state.
	MaxRequests uint32 `koanf:"max_requests"`

	// Interval resets the closed-state counters. Zero never resets them.
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the circuit stays open before half-opening.
	Timeout time.Duration `koanf:"timeout"`

	// MinRequests is the smallest sample that can trip the circuit.
	MinRequests uint32 `koanf:"min_requests"`

	// FailureRatio trips the circuit once reached.
	FailureRatio float64 `koanf:"failure_ratio"`
}

// DefaultBreakerConfig opens after a 60% failure rate over at least 10
// requests and probes again after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:         "data-provider",
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// Breaker wraps a DataProvider with a circuit breaker so a failing backend is
// not hammered by every recommendation run.
//
// Cancelled or timed-out contexts are excluded from the failure counts; they
// say nothing about the health of the backend.
type Breaker struct {
	next   recommend.DataProvider
	cb     *gobreaker.CircuitBreaker[any]
	name   string
	logger zerolog.Logger
}

// NewBreaker wraps next.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreaker(next recommend.DataProvider, cfg BreakerConfig, logger zerolog.Logger) *Breaker {
	if cfg.Name == "" {
		cfg.Name = DefaultBreakerConfig().Name
	}

	b := &Breaker{
		next:   next,
		name:   cfg.Name,
		logger: logger.With().Str("component", "circuit_breaker").Str("breaker", cfg.Name).Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				b.logger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Info().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})

	return b
}

// State returns the current circuit state as a string.
func (b *Breaker) State() string {
	return stateToString(b.cb.State())
}

// GetPlacesNear implements recommend.DataProvider.
func (b *Breaker) GetPlacesNear(ctx context.Context, lat, lng, radiusKm float64) ([]models.Place, error) {
	return execute(b, func() ([]models.Place, error) {
		return b.next.GetPlacesNear(ctx, lat, lng, radiusKm)
	})
}

// GetRatingsForPlace implements recommend.DataProvider.
func (b *Breaker) GetRatingsForPlace(ctx context.Context, placeID string) ([]models.Rating, error) {
	return execute(b, func() ([]models.Rating, error) {
		return b.next.GetRatingsForPlace(ctx, placeID)
	})
}

// GetRatingCountForPlace implements recommend.DataProvider.
func (b *Breaker) GetRatingCountForPlace(ctx context.Context, placeID string) (int, error) {
	return execute(b, func() (int, error) {
		return b.next.GetRatingCountForPlace(ctx, placeID)
	})
}

// execute runs fn through the breaker and records the outcome.
func execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T

	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			b.logger.Warn().Err(err).Msg("request rejected")
			return zero, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return zero, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()

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
