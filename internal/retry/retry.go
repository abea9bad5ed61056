// Package retry implements the bounded retry policy wrapped around
// extraction calls: a fixed attempt budget with a fixed backoff per
// failure class, then degrade instead of propagate.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyReply marks a call that succeeded at the transport level but
// returned nothing usable. It retries on a shorter backoff than a hard
// failure.
var ErrEmptyReply = errors.New("empty reply")

// Policy is a bounded retry schedule. Sleep is injectable so tests can
// run against a fake clock.
type Policy struct {
	MaxAttempts  int
	Backoff      time.Duration // after a failed call
	EmptyBackoff time.Duration // after an empty reply
	Sleep        func(context.Context, time.Duration) error
	OnRetry      func(attempt int, err error) // optional, for logging
}

// Default returns the standard policy: 3 attempts, 3s after an error,
// 2s after an empty reply.
func Default() Policy {
	return Policy{
		MaxAttempts:  3,
		Backoff:      3 * time.Second,
		EmptyBackoff: 2 * time.Second,
	}
}

// Do runs fn up to MaxAttempts times. It returns nil on the first
// success and the last error once the budget is exhausted. Context
// cancellation stops the schedule immediately.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr)
		}

		delay := p.Backoff
		if errors.Is(lastErr, ErrEmptyReply) {
			delay = p.EmptyBackoff
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
