package client

import (
	"context"
	"log"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures the backoff used by read-only calls. Mutating calls
// are never retried automatically; a failed save or delete is reported once
// and left to the operator.
type RetryConfig struct {
	MaxRetries int           // Maximum retry attempts (default: 3)
	BaseDelay  time.Duration // Initial delay between retries (default: 100ms)
	MaxDelay   time.Duration // Maximum delay between retries (default: 5s)
	Multiplier float64       // Delay multiplier for exponential backoff (default: 2.0)
	EnableLog  bool          // Whether to log retry attempts
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
		EnableLog:  true,
	}
}

// withRetry wraps an idempotent call with exponential backoff. Application
// failures (success=false envelopes) pass through untouched.
func withRetry[T any](ctx context.Context, operation string, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 && cfg.EnableLog {
				log.Printf("[API] %s succeeded on attempt %d", operation, attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			return zero, err
		}

		if attempt < cfg.MaxRetries {
			delay := backoffDelay(attempt, cfg)
			if cfg.EnableLog {
				log.Printf("[API] %s attempt %d failed (%v), retrying in %v", operation, attempt+1, err, delay)
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}

	if cfg.EnableLog {
		log.Printf("[API] %s: all %d attempts failed", operation, cfg.MaxRetries+1)
	}
	return zero, lastErr
}

// backoffDelay computes exponential backoff with jitter for the given attempt.
func backoffDelay(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	// Randomize between 80% and 120% to avoid thundering herd.
	jitter := 0.8 + rand.Float64()*0.4
	delay *= jitter

	return time.Duration(delay)
}
