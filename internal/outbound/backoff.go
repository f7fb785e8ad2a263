package outbound

import (
	"math"
	"math/rand"
	"time"
)

// BackoffConfig holds the base delay, cap, and attempt ceiling for
// retryDelay.
type BackoffConfig struct {
	Base        time.Duration
	Cap         time.Duration
	MaxAttempts int
}

// retryDelay computes exponential backoff with ±25% jitter.
func retryDelay(cfg BackoffConfig, attemptCount int) time.Duration {
	delay := time.Duration(float64(cfg.Base) * math.Pow(2, float64(attemptCount-1)))
	if delay > cfg.Cap {
		delay = cfg.Cap
	}
	jitter := time.Duration(rand.Int63n(int64(delay/2))) - delay/4
	result := delay + jitter
	if result < 0 {
		result = 0
	}
	return result
}
