// Package poll waits for an eventually consistent field to appear on a
// server-side entity.
package poll

import (
	"context"
	"log/slog"
	"time"
)

const (
	// DefaultMaxAttempts is the poll budget.
	DefaultMaxAttempts = 4

	// DefaultDelay is the pause between attempts.
	DefaultDelay = 5 * time.Second
)

// Options configures WaitForField.
type Options struct {
	MaxAttempts int
	// Delay defaults to DefaultDelay; a negative Delay disables the pause.
	Delay time.Duration

	// Field names the awaited field in progress logs.
	Field string

	// Sleep pauses between attempts. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	switch {
	case o.Delay == 0:
		o.Delay = DefaultDelay
	case o.Delay < 0:
		o.Delay = 0
	}
	if o.Field == "" {
		o.Field = "field"
	}
	if o.Sleep == nil {
		o.Sleep = Sleep
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// WaitForField calls fetch until present reports true or the budget runs out.
//
// A fetch error on the last attempt is returned unchanged; earlier errors are
// retried after Delay. When every attempt succeeds without the field, one
// final fetch is made and its result is returned as is, without checking the
// field again. Callers must check the field themselves on that path.
func WaitForField[T any](ctx context.Context, fetch func(context.Context) (T, error), present func(T) bool, opts Options) (T, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		v, err := fetch(ctx)
		last := attempt == opts.MaxAttempts

		switch {
		case err != nil && last:
			log.Warn("fetch failed, giving up", "attempt", attempt, "max", opts.MaxAttempts, "err", err)
			return v, err
		case err != nil:
			log.Warn("fetch failed, retrying", "attempt", attempt, "max", opts.MaxAttempts, "err", err)
		case present(v):
			return v, nil
		case !last:
			log.Info("waiting for "+opts.Field, "attempt", attempt, "max", opts.MaxAttempts)
		}

		if !last {
			if err := opts.Sleep(ctx, opts.Delay); err != nil {
				var zero T
				return zero, err
			}
		}
	}

	return fetch(ctx)
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
