// Package retrypkg provides retrying with jittered exponential backoff.
package retrypkg

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how an operation is retried.
type Policy struct {
	// Attempts is the total number of calls, including the first one.
	Attempts int
	// BaseDelay is the mean of the first backoff sleep. Each sleep is drawn from
	// [0, 2*delay] and the delay doubles after every retry.
	BaseDelay time.Duration
	// Retryable reports whether the error is worth another attempt.
	Retryable func(error) bool
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.RandomizationFactor = 1
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// Do calls fn until it succeeds, returns a non-retryable error, or the attempts run out.
// The last error of fn is returned as is, also when ctx ends the retries.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	var last error

	res, err := backoff.RetryWithData(func() (T, error) {
		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}

		last = err

		if p.Retryable == nil || !p.Retryable(err) {
			return res, backoff.Permanent(err)
		}

		return res, err
	}, p.backOff(ctx))
	if err != nil && last != nil {
		return res, last
	}

	return res, err
}
