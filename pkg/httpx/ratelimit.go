package httpx

import (
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines the outbound rate limit.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window.
	// Zero or less disables limiting.
	RequestsPerWindow int
	// Window is the time window for rate limiting.
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit.
	Burst int
}

// Enabled reports whether the config limits anything.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerWindow > 0 && c.Window > 0
}

// Limit returns the configured rate in events per second.
func (c RateLimitConfig) Limit() rate.Limit {
	if !c.Enabled() {
		return rate.Inf
	}
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

// NewLimiter returns a token bucket for cfg, or nil when limiting is
// disabled. Callers block in Wait until a token is available or their
// context is done.
func NewLimiter(cfg RateLimitConfig) *rate.Limiter {
	if !cfg.Enabled() {
		return nil
	}
	return rate.NewLimiter(cfg.Limit(), max(cfg.Burst, 1))
}
