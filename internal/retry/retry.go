package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Policy describes how a failed operation is retried. A zero MaxJitter and
// zero Delay give a deterministic no-wait policy, which tests rely on.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool          // multiply delay by attempt number
	MaxJitter   time.Duration // random extra wait per retry
}

// Default is the fetch-layer policy: three attempts, linear backoff.
func Default() Policy {
	return Policy{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true, MaxJitter: time.Second}
}

// None performs a single attempt with no waiting.
func None() Policy {
	return Policy{MaxAttempts: 1}
}

// Do runs fn until it succeeds, the policy is exhausted, or ctx is done.
func Do(ctx context.Context, policy Policy, fn func() error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if attempt == attempts {
				return fmt.Errorf("failed after %d attempts: %w", attempts, err)
			}

			delay := policy.Delay
			if policy.Backoff {
				delay = time.Duration(attempt) * policy.Delay
			}
			if policy.MaxJitter > 0 {
				delay += time.Duration(rand.Int63n(int64(policy.MaxJitter)))
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
		return nil
	}

	return lastErr
}
