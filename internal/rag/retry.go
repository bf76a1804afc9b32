package rag

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy is the bounded-retry behavior shared by indexing and
// retrieval for idempotent external calls (embedding, similarity search,
// upsert by deterministic id). Generation calls are never retried through
// this policy: a timed-out generation may already have incurred cost.
type RetryPolicy struct {
	// MaxAttempts bounds total tries, including the first. Minimum 1.
	MaxAttempts int

	// InitialBackoff is the wait after the first failure.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential growth.
	MaxBackoff time.Duration

	// Multiplier grows the backoff between attempts.
	Multiplier float64

	// Retryable classifies errors. Nil treats every error as transient.
	Retryable func(error) bool
}

// DefaultRetryPolicy bounds external calls to three attempts with a short
// exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2.0,
	}
}

// Do runs fn under the policy. Context cancellation abandons the operation
// immediately, without a further attempt.
func (p RetryPolicy) Do(ctx context.Context, log *zap.Logger, operation string, fn func(context.Context) error) error {
	if log == nil {
		log = zap.NewNop()
	}

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.InitialBackoff

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			if err != nil {
				return err
			}
			return cerr
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			return err
		}

		wait := backoff
		if p.MaxBackoff > 0 && wait > p.MaxBackoff {
			wait = p.MaxBackoff
		}
		log.Warn("retrying external call",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("backoff", wait),
			zap.Error(err))

		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return err
			case <-timer.C:
			}
		}

		if p.Multiplier > 1 {
			backoff = time.Duration(float64(backoff) * p.Multiplier)
		}
	}

	return err
}
