package resilience

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size" validate:"gte=0"`

	// CallLimits overrides the global limit for single calls.
	CallLimits map[string]CallLimit `yaml:"call_limits" mapstructure:"call_limits"`
}

type CallLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// RateLimiter throttles calls to a shared resource. Calls with their own
// limit get a dedicated limiter, everything else shares the global one.
type RateLimiter struct {
	config        RateLimitConfig
	globalLimiter *rate.Limiter
	callLimiters  map[string]*rate.Limiter
	mutex         sync.Mutex
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:       config,
		callLimiters: make(map[string]*rate.Limiter),
	}

	if config.Enabled {
		rl.globalLimiter = newLimiter(config.RequestsPerSecond, config.BurstSize)
	}

	return rl
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Allow reports whether call may run now without waiting.
func (rl *RateLimiter) Allow(call string) bool {
	if rl == nil || !rl.config.Enabled {
		return true
	}
	return rl.limiterFor(call).Allow()
}

// Wait blocks until call may run or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context, call string) error {
	if rl == nil || !rl.config.Enabled {
		return ctx.Err()
	}
	if err := rl.limiterFor(call).Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("rate limit for %s: %w", call, err)
	}
	return nil
}

func (rl *RateLimiter) limiterFor(call string) *rate.Limiter {
	limit, exists := rl.config.CallLimits[call]
	if !exists {
		return rl.globalLimiter
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if limiter, ok := rl.callLimiters[call]; ok {
		return limiter
	}
	limiter := newLimiter(limit.RequestsPerSecond, limit.BurstSize)
	rl.callLimiters[call] = limiter
	return limiter
}

func (rl *RateLimiter) IsEnabled() bool {
	return rl != nil && rl.config.Enabled
}
