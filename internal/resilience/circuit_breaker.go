package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

type CircuitBreakerConfig struct {
	Enabled          bool          `yaml:"enabled" mapstructure:"enabled"`
	MaxRequests      uint32        `yaml:"max_requests" mapstructure:"max_requests"`
	Interval         time.Duration `yaml:"interval" mapstructure:"interval"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"min=0"`
	FailureThreshold uint32        `yaml:"failure_threshold" mapstructure:"failure_threshold" validate:"required_if=Enabled true"`
}

// CircuitBreakerManager hands out one breaker per remote operation.
type CircuitBreakerManager struct {
	config   CircuitBreakerConfig
	logger   zerolog.Logger
	breakers map[string]*gobreaker.CircuitBreaker
	mutex    sync.RWMutex
}

func NewCircuitBreakerManager(config CircuitBreakerConfig, logger zerolog.Logger) *CircuitBreakerManager {
	return &CircuitBreakerManager{
		config:   config,
		logger:   logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (cbm *CircuitBreakerManager) GetBreaker(operation string) *gobreaker.CircuitBreaker {
	if !cbm.config.Enabled {
		return nil
	}

	cbm.mutex.RLock()
	breaker, exists := cbm.breakers[operation]
	cbm.mutex.RUnlock()
	if exists {
		return breaker
	}

	cbm.mutex.Lock()
	defer cbm.mutex.Unlock()

	if breaker, exists := cbm.breakers[operation]; exists {
		return breaker
	}

	threshold := cbm.config.FailureThreshold
	settings := gobreaker.Settings{
		Name:        operation,
		MaxRequests: cbm.config.MaxRequests,
		Interval:    cbm.config.Interval,
		Timeout:     cbm.config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			cbm.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	breaker = gobreaker.NewCircuitBreaker(settings)
	cbm.breakers[operation] = breaker
	return breaker
}

// ExecuteWithContext runs fn through the breaker of operation. A cancelled
// context is reported without counting against the breaker.
func (cbm *CircuitBreakerManager) ExecuteWithContext(ctx context.Context, operation string, fn func(context.Context) (any, error)) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	breaker := cbm.GetBreaker(operation)
	if breaker == nil {
		return fn(ctx)
	}
	return breaker.Execute(func() (any, error) {
		return fn(ctx)
	})
}

func (cbm *CircuitBreakerManager) GetState(operation string) gobreaker.State {
	cbm.mutex.RLock()
	defer cbm.mutex.RUnlock()

	if breaker, exists := cbm.breakers[operation]; exists {
		return breaker.State()
	}
	return gobreaker.StateClosed
}

func (cbm *CircuitBreakerManager) GetCounts(operation string) gobreaker.Counts {
	cbm.mutex.RLock()
	defer cbm.mutex.RUnlock()

	if breaker, exists := cbm.breakers[operation]; exists {
		return breaker.Counts()
	}
	return gobreaker.Counts{}
}

func (cbm *CircuitBreakerManager) IsEnabled() bool {
	return cbm.config.Enabled
}

// IsCircuitBreakerError reports whether err was produced by an open or
// saturated breaker rather than by the call itself.
func IsCircuitBreakerError(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
