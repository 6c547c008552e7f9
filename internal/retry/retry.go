// Package retry provides the bounded exponential backoff used for every
// rate-limited or flaky upstream call.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// NewBackOff builds the base interval schedule for one Do call.
	NewBackOff func() backoff.BackOff
}

// Default returns an exponential policy starting at one second, matching
// the 1s, 2s, 4s schedule the scrapers have always used.
func Default(maxRetries uint64) Policy {
	return Policy{
		MaxRetries: maxRetries,
		NewBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.Multiplier = 2
			b.RandomizationFactor = 0.1
			b.MaxElapsedTime = 2 * time.Minute
			return b
		},
	}
}

// Immediate returns a policy that retries without waiting. Tests use it.
func Immediate(maxRetries uint64) Policy {
	return Policy{
		MaxRetries: maxRetries,
		NewBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	}
}

// Permanent marks err as not worth retrying. Do returns it unwrapped.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a Permanent error, the retry budget
// is spent, or ctx is done. The last error is returned.
func (p Policy) Do(ctx context.Context, what string, op func() error) error {
	newBackOff := p.NewBackOff
	if newBackOff == nil {
		newBackOff = Default(p.MaxRetries).NewBackOff
	}
	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), p.MaxRetries), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		return op()
	}, b, func(err error, wait time.Duration) {
		slog.Warn("transient failure, retrying",
			"operation", what,
			"attempt", attempt,
			"wait", wait.Round(time.Millisecond),
			"error", err,
		)
	})
}
