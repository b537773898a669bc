package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingDelay records how many times the delay function ran and with
// which attempt numbers.
type countingDelay struct {
	calls    int
	attempts []int
}

func (d *countingDelay) fn(ctx context.Context, attempt int) error {
	d.calls++
	d.attempts = append(d.attempts, attempt)
	return ctx.Err()
}

func TestDoSuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	delay := &countingDelay{}
	invocations := 0

	value, err := Do(context.Background(), 3, func(ctx context.Context) (string, error) {
		invocations++
		return "ok", nil
	}, delay.fn)

	require.NoError(t, err)
	assert.Equal(t, "ok", value)
	assert.Equal(t, 1, invocations, "operation should run exactly once")
	assert.Equal(t, 0, delay.calls, "no delays on first-try success")
}

func TestDoEventualSuccess(t *testing.T) {
	t.Parallel()

	delay := &countingDelay{}
	invocations := 0

	value, err := Do(context.Background(), 3, func(ctx context.Context) (int, error) {
		invocations++
		if invocations < 3 {
			return 0, errors.New("transient failure")
		}
		return 42, nil
	}, delay.fn)

	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, 3, invocations)
	assert.Equal(t, 2, delay.calls)
	assert.Equal(t, []int{1, 2}, delay.attempts, "delay receives 1-indexed attempt numbers")
}

func TestDoExhaustion(t *testing.T) {
	t.Parallel()

	delay := &countingDelay{}
	invocations := 0
	finalErr := errors.New("attempt 5 failed")

	_, err := Do(context.Background(), 5, func(ctx context.Context) (struct{}, error) {
		invocations++
		if invocations == 5 {
			return struct{}{}, finalErr
		}
		return struct{}{}, errors.New("earlier failure")
	}, delay.fn)

	require.Error(t, err)
	assert.Same(t, finalErr, err, "last error must be propagated unwrapped")
	assert.Equal(t, 5, invocations)
	assert.Equal(t, 4, delay.calls)
}

func TestDoSingleAttemptNeverDelays(t *testing.T) {
	t.Parallel()

	delay := &countingDelay{}

	// Failure case: one attempt, no delay, error propagated.
	opErr := errors.New("boom")
	_, err := Do(context.Background(), 1, func(ctx context.Context) (int, error) {
		return 0, opErr
	}, delay.fn)
	assert.Same(t, opErr, err)
	assert.Equal(t, 0, delay.calls)

	// Success case: one attempt, no delay.
	value, err := Do(context.Background(), 1, func(ctx context.Context) (int, error) {
		return 7, nil
	}, delay.fn)
	require.NoError(t, err)
	assert.Equal(t, 7, value)
	assert.Equal(t, 0, delay.calls)
}

func TestDoInvalidMaxAttempts(t *testing.T) {
	t.Parallel()

	_, err := Do(context.Background(), 0, func(ctx context.Context) (int, error) {
		t.Fatal("operation must not run")
		return 0, nil
	}, nil)

	require.Error(t, err)
}

func TestDoPermanentErrorStopsRetrying(t *testing.T) {
	t.Parallel()

	delay := &countingDelay{}
	invocations := 0
	cause := errors.New("client error")

	_, err := Do(context.Background(), 5, func(ctx context.Context) (int, error) {
		invocations++
		return 0, Permanent(cause)
	}, delay.fn)

	require.Error(t, err)
	assert.Same(t, cause, err, "permanent errors are returned unwrapped")
	assert.Equal(t, 1, invocations)
	assert.Equal(t, 0, delay.calls)
}

func TestPermanentNil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Permanent(nil))
	assert.False(t, IsPermanent(errors.New("plain")))
	assert.True(t, IsPermanent(Permanent(errors.New("wrapped"))))
}

func TestDoContextCancelledBetweenAttempts(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	invocations := 0
	opErr := errors.New("transient")

	_, err := Do(ctx, 10, func(ctx context.Context) (int, error) {
		invocations++
		cancel() // cancel mid-flight; the loop must not continue
		return 0, opErr
	}, NoDelay)

	require.Error(t, err)
	assert.Same(t, opErr, err, "the operation's failure wins over the cancellation")
	assert.Equal(t, 1, invocations)
}

func TestDoContextAlreadyCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(ctx, 3, func(ctx context.Context) (int, error) {
		t.Fatal("operation must not run with a cancelled context")
		return 0, nil
	}, NoDelay)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoIsReentrant(t *testing.T) {
	t.Parallel()

	// Concurrent Do calls share nothing; run several loops in parallel and
	// check each gets its own value.
	results := make(chan int, 8)
	for i := 0; i < 8; i++ {
		go func(n int) {
			value, err := Do(context.Background(), 3, func(ctx context.Context) (int, error) {
				return n, nil
			}, NoDelay)
			if err != nil {
				results <- -1
				return
			}
			results <- value
		}(i)
	}

	seen := make(map[int]bool)
	for i := 0; i < 8; i++ {
		seen[<-results] = true
	}
	for i := 0; i < 8; i++ {
		assert.True(t, seen[i], "missing result %d", i)
	}
}

func TestBackoffDelayGrowth(t *testing.T) {
	t.Parallel()

	b := Backoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2.0,
		Jitter:     false,
	}

	assert.Equal(t, 100*time.Millisecond, b.Delay(1))
	assert.Equal(t, 200*time.Millisecond, b.Delay(2))
	assert.Equal(t, 400*time.Millisecond, b.Delay(3))
	assert.Equal(t, 800*time.Millisecond, b.Delay(4))
	assert.Equal(t, time.Second, b.Delay(5), "delay capped at MaxDelay")
}

func TestBackoffJitterBounds(t *testing.T) {
	t.Parallel()

	b := Backoff{
		BaseDelay:  100 * time.Millisecond,
		Multiplier: 2.0,
		Jitter:     true,
	}

	for i := 0; i < 100; i++ {
		d := b.Delay(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.Less(t, d, 100*time.Millisecond+time.Millisecond)
	}
}

func TestBackoffDelayFuncHonorsContext(t *testing.T) {
	t.Parallel()

	b := Backoff{BaseDelay: time.Hour, Multiplier: 2.0}
	fn := b.DelayFunc()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- fn(ctx, 1)
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("delay did not abort on cancellation")
	}
}
