// Package poll implements bounded polling of services that produce records
// asynchronously.
package poll

import (
	"context"
	"log/slog"
	"time"
)

// Defaults used by every stage unless configured otherwise. Ten attempts at
// 1.2s bound a stage to roughly twelve seconds.
const (
	DefaultMaxAttempts = 10
	DefaultInterval    = 1200 * time.Millisecond
)

// Options controls a bounded poll.
type Options struct {
	// OnAttempt, if set, is called after every producer invocation.
	OnAttempt   func(attempt int, ready bool)
	Name        string
	MaxAttempts int
	Interval    time.Duration
}

// DefaultOptions returns the standard ten attempts at 1200ms.
func DefaultOptions() Options {
	return Options{
		MaxAttempts: DefaultMaxAttempts,
		Interval:    DefaultInterval,
	}
}

// Once returns options for a single attempt with no wait.
func Once() Options {
	return Options{MaxAttempts: 1}
}

// Named returns a copy of o labelled for logging.
func (o Options) Named(name string) Options {
	o.Name = name
	return o
}

// Producer fetches a value that may not exist yet.
type Producer[T any] func(ctx context.Context) (T, bool)

// Ready decides whether a produced value ends the poll.
type Ready[T any] func(value T, ok bool) bool

// Present is ready when the producer returned a value.
func Present[T any](_ T, ok bool) bool {
	return ok
}

// NonEmpty is ready when the producer returned a non-empty collection.
func NonEmpty[E any](value []E, ok bool) bool {
	return ok && len(value) > 0
}

// Poll invokes produce until ready holds or MaxAttempts is exhausted, sleeping
// Interval between attempts. Exhaustion and cancellation both return the zero
// value and false; neither is an error.
func Poll[T any](ctx context.Context, produce Producer[T], ready Ready[T], opts Options) (T, bool) {
	var zero T

	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Interval < 0 {
		opts.Interval = 0
	}

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return zero, false
		}

		value, ok := produce(ctx)
		isReady := ready(value, ok)

		if opts.OnAttempt != nil {
			opts.OnAttempt(attempt, isReady)
		}

		if isReady {
			slog.Debug("Poll satisfied",
				"poll", opts.Name,
				"attempt", attempt)
			return value, true
		}

		if attempt == opts.MaxAttempts {
			break
		}

		slog.Debug("Poll not ready, waiting",
			"poll", opts.Name,
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"interval", opts.Interval)

		timer := time.NewTimer(opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, false
		case <-timer.C:
		}
	}

	slog.Debug("Poll exhausted",
		"poll", opts.Name,
		"max_attempts", opts.MaxAttempts)

	return zero, false
}
