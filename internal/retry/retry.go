// Package retry provides a bounded-attempt executor for asynchronous
// operations. It was extracted from the Gemini call path so every external
// call site shares one retry loop instead of hand-rolling its own.
//
// The executor does not inspect failures: every error is retried until the
// attempt budget is exhausted, then the last error is returned unchanged.
// Callers that can recognize unrecoverable failures wrap them with Permanent
// to stop the loop early.
package retry

import (
	"context"
	"errors"
	"fmt"
)

// DelayFunc waits between failed attempts. attempt is the 1-indexed number
// of the attempt that just failed; the function is never called after the
// final attempt. Returning an error (typically ctx.Err()) aborts the loop.
type DelayFunc func(ctx context.Context, attempt int) error

// NoDelay returns immediately. Used in tests and for callers that want
// tight retries.
func NoDelay(ctx context.Context, attempt int) error {
	return ctx.Err()
}

// permanentError marks a failure that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent wraps err so Do stops retrying and returns the underlying error
// immediately. A nil err returns nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err carries the Permanent marker.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Do executes op up to maxAttempts times (maxAttempts >= 1). On success the
// value is returned immediately. On failure the delay function is invoked
// with the 1-indexed attempt number, then op runs again. After the final
// failed attempt the last error is returned verbatim, with no wrapping.
//
// Exactly maxAttempts invocations of op happen at most; a first-attempt
// success incurs zero delays, and a full failure incurs exactly
// maxAttempts-1 delays. Each call to Do is independent and reentrant - no
// state is shared across concurrent invocations.
//
// Cancellation is cooperative: a done context stops the loop before the
// next attempt, and delay functions are expected to honor ctx as well.
func Do[T any](ctx context.Context, maxAttempts int, op func(ctx context.Context) (T, error), delay DelayFunc) (T, error) {
	var zero T

	if maxAttempts < 1 {
		return zero, fmt.Errorf("retry: maxAttempts must be at least 1, got %d", maxAttempts)
	}
	if delay == nil {
		delay = NoDelay
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, err
		}

		value, err := op(ctx)
		if err == nil {
			return value, nil
		}

		var pe *permanentError
		if errors.As(err, &pe) {
			return zero, pe.err
		}

		lastErr = err
		if attempt == maxAttempts {
			break
		}

		if err := delay(ctx, attempt); err != nil {
			// Delay aborted (context cancelled); surface the operation's
			// failure rather than the sleep's.
			return zero, lastErr
		}
	}

	return zero, lastErr
}
