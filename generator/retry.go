package generator

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

// RetryPolicy bounds the exponential backoff applied to rate-limited calls.
// It is configured per call and never persisted.
type RetryPolicy struct {
	MaxAttempts int
	BackoffBase time.Duration
	JitterRange time.Duration
}

// DefaultRetryPolicy retries three times with a 2s base and up to 1s jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BackoffBase: 2 * time.Second,
		JitterRange: 1 * time.Second,
	}
}

// CalculateDelay returns the wait before retrying after attempt (0-indexed):
// backoffBase * 2^attempt plus a uniform jitter in [0, jitterRange).
func (p RetryPolicy) CalculateDelay(attempt int) time.Duration {
	delay := p.BackoffBase << attempt
	if p.JitterRange > 0 {
		delay += time.Duration(rand.Int63n(int64(p.JitterRange)))
	}
	return delay
}

// Invoke runs op, retrying only rate-limited failures up to the policy
// limit. Any other failure is returned immediately after the first attempt.
// After the last attempt the last observed error is returned. The wait is a
// timer select so a cancelled context cuts the backoff short.
func Invoke[T any](ctx context.Context, policy RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if !IsRateLimited(err) {
			return zero, err
		}
		lastErr = err
		if attempt == policy.MaxAttempts-1 {
			break
		}
		delay := policy.CalculateDelay(attempt)
		log.Warn().
			Int("attempt", attempt+1).
			Int("max_attempts", policy.MaxAttempts).
			Dur("delay", delay).
			Msg("rate limited, backing off")
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, lastErr
}
