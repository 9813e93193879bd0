// Package circuitbreaker wraps sony/gobreaker with typed results and app errors.
package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/circlepath-bot/internal/apperror"
	"github.com/fd1az/circlepath-bot/internal/logger"
)

// Config holds circuit breaker tuning.
type Config struct {
	Name        string
	MaxRequests uint32        // requests allowed through in half-open state
	Interval    time.Duration // cyclic period to clear counts in closed state
	Timeout     time.Duration // how long the breaker stays open
	MinRequests uint32        // minimum requests before tripping
	FailureRate float64       // failure ratio that trips the breaker
}

// DefaultConfig returns conservative defaults for exchange API calls.
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		MinRequests: 5,
		FailureRate: 0.6,
	}
}

// CircuitBreaker guards calls returning T.
type CircuitBreaker[T any] struct {
	cb  *gobreaker.CircuitBreaker[T]
	log logger.LoggerInterface
}

// New creates a circuit breaker with the given config.
func New[T any](cfg Config, log logger.LoggerInterface) *CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRate
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "circuit breaker state change",
				"name", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &CircuitBreaker[T]{
		cb:  gobreaker.NewCircuitBreaker[T](settings),
		log: log,
	}
}

// Execute runs fn through the breaker.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	result, err := c.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return result, apperror.New(apperror.CodeCircuitOpen,
				apperror.WithContext(c.cb.Name()),
				apperror.WithCause(err))
		}
		if errors.Is(err, gobreaker.ErrTooManyRequests) {
			return result, apperror.New(apperror.CodeCircuitHalfOpen,
				apperror.WithContext(c.cb.Name()),
				apperror.WithCause(err))
		}
	}
	return result, err
}

// State returns the current breaker state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.cb.State()
}
