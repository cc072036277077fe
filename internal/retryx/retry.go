// SPDX-License-Identifier: MPL-2.0

// Package retryx implements exponential-backoff retry for command-level
// execution failures, shared by the command builder's dispatch loop.
package retryx

import (
	"context"
	"fmt"
	"time"
)

// Policy configures retry behaviour. The zero value means "no retries".
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration // zero means uncapped
	Backoff      float64       // multiplier applied per attempt; zero defaults to 2
	RetryTimeout bool          // if true, Timeout errors are retried too
}

// Delay returns the backoff delay before the given zero-indexed retry
// attempt (attempt 0 is the delay before the first retry).
func (p Policy) Delay(attempt int) time.Duration {
	mult := p.Backoff
	if mult <= 0 {
		mult = 2
	}
	d := p.InitialDelay
	for i := 0; i < attempt; i++ {
		d = time.Duration(float64(d) * mult)
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do retries op up to policy.MaxRetries additional times (so at most
// MaxRetries+1 total invocations), sleeping Policy.Delay between attempts
// and checking ctx.Err() before each retry so cancellation is honoured
// immediately rather than after a wasted sleep.
//
// op returns (retryable, err). err == nil means success and Do returns
// immediately. If retryable is false, err is returned without consuming
// any more of the retry budget.
func Do(ctx context.Context, policy Policy, op func(attempt int) (retryable bool, err error)) error {
	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("retry aborted: %w", err)
			}
			select {
			case <-time.After(policy.Delay(attempt - 1)):
			case <-ctx.Done():
				return fmt.Errorf("retry aborted: %w", ctx.Err())
			}
		}

		retryable, err := op(attempt)
		if err == nil {
			return nil
		}
		if !retryable {
			return err
		}
		lastErr = err
	}
	return lastErr
}
