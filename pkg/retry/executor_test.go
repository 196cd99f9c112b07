package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	errTransient = errors.New("connection refused")
	errConflict  = errors.New("duplicate key")
	errRecovered = errors.New("storage unavailable")
)

func fastPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 20 * time.Millisecond,
		MaxDelay:     200 * time.Millisecond,
	}
}

// flakyOp fails with errTransient for the first failures calls and then returns value.
func flakyOp(failures int, value string, calls *int) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		*calls++
		if *calls <= failures {
			return "", errTransient
		}
		return value, nil
	}
}

func TestDefaultPolicy_BackoffSequence(t *testing.T) {
	b := DefaultPolicy().Backoff()

	next, stop := b.Next()
	assert.False(t, stop)
	assert.Equal(t, 1000*time.Millisecond, next)

	next, stop = b.Next()
	assert.False(t, stop)
	assert.Equal(t, 2000*time.Millisecond, next)

	_, stop = b.Next()
	assert.True(t, stop, "three attempts allow only two waits")
}

func TestPolicy_BackoffIsCapped(t *testing.T) {
	p := Policy{MaxAttempts: 6, InitialDelay: time.Second, MaxDelay: 3 * time.Second}
	b := p.Backoff()

	var got []time.Duration
	for {
		next, stop := b.Next()
		if stop {
			break
		}
		got = append(got, next)
	}

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second, 3 * time.Second}, got)
}

func TestPolicy_BackoffFreshPerCall(t *testing.T) {
	p := DefaultPolicy()
	first, _ := p.Backoff().Next()
	second, _ := p.Backoff().Next()

	assert.Equal(t, first, second)
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	e := NewExecutor(fastPolicy(), zaptest.NewLogger(t))
	calls := 0

	start := time.Now()
	got, err := Do(context.Background(), e, Operation[string]{
		Name: "find",
		Run:  flakyOp(0, "ok", &calls),
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), fastPolicy().InitialDelay)
}

func TestDo_TransientTwiceThenSucceeds(t *testing.T) {
	e := NewExecutor(fastPolicy(), zaptest.NewLogger(t))
	calls := 0
	recovered := false

	start := time.Now()
	got, err := Do(context.Background(), e, Operation[string]{
		Name: "save",
		Run:  flakyOp(2, "saved", &calls),
		Recover: func(ctx context.Context, last error) error {
			recovered = true
			return errRecovered
		},
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "saved", got)
	assert.Equal(t, 3, calls)
	assert.False(t, recovered)
	// 20ms + 40ms of backoff between the three attempts
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
}

func TestDo_ExhaustedInvokesRecover(t *testing.T) {
	e := NewExecutor(fastPolicy(), zaptest.NewLogger(t))
	calls := 0
	var recoveredWith error

	_, err := Do(context.Background(), e, Operation[string]{
		Name: "list",
		Run:  flakyOp(100, "", &calls),
		Recover: func(ctx context.Context, last error) error {
			recoveredWith = last
			return errRecovered
		},
	})

	require.ErrorIs(t, err, errRecovered)
	assert.Equal(t, 3, calls, "no fourth attempt")
	assert.ErrorIs(t, recoveredWith, errTransient)
}

func TestDo_ExhaustedWithoutRecoverError(t *testing.T) {
	e := NewExecutor(fastPolicy(), zaptest.NewLogger(t))
	calls := 0

	_, err := Do(context.Background(), e, Operation[string]{
		Name:    "delete",
		Run:     flakyOp(100, "", &calls),
		Recover: func(ctx context.Context, last error) error { return nil },
	})

	var exhausted *ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, "delete", exhausted.Operation)
	assert.Equal(t, uint64(3), exhausted.Attempts)
	assert.ErrorIs(t, err, errTransient)
}

func TestDo_NonRetryableReturnedImmediately(t *testing.T) {
	e := NewExecutor(fastPolicy(), zaptest.NewLogger(t))
	calls := 0
	recovered := false

	_, err := Do(context.Background(), e, Operation[string]{
		Name: "save",
		Run: func(ctx context.Context) (string, error) {
			calls++
			return "", errConflict
		},
		Retryable: func(err error) bool { return !errors.Is(err, errConflict) },
		Recover: func(ctx context.Context, last error) error {
			recovered = true
			return errRecovered
		},
	})

	require.ErrorIs(t, err, errConflict)
	assert.Equal(t, 1, calls)
	assert.False(t, recovered)
}

func TestDo_NonRetryableAfterTransient(t *testing.T) {
	e := NewExecutor(fastPolicy(), zaptest.NewLogger(t))
	calls := 0

	_, err := Do(context.Background(), e, Operation[string]{
		Name: "save",
		Run: func(ctx context.Context) (string, error) {
			calls++
			if calls == 1 {
				return "", errTransient
			}
			return "", errConflict
		},
		Retryable: func(err error) bool { return !errors.Is(err, errConflict) },
		Recover:   func(ctx context.Context, last error) error { return errRecovered },
	})

	require.ErrorIs(t, err, errConflict)
	assert.Equal(t, 2, calls)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	e := NewExecutor(Policy{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: 10 * time.Second}, zaptest.NewLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	calls := 0
	recovered := false

	start := time.Now()
	_, err := Do(ctx, e, Operation[string]{
		Name: "list",
		Run:  flakyOp(100, "", &calls),
		Recover: func(ctx context.Context, last error) error {
			recovered = true
			return errRecovered
		},
	})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
	assert.False(t, recovered)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDo_ContextErrorFromOperationNotRetried(t *testing.T) {
	e := NewExecutor(fastPolicy(), zaptest.NewLogger(t))
	calls := 0

	_, err := Do(context.Background(), e, Operation[string]{
		Name: "find",
		Run: func(ctx context.Context) (string, error) {
			calls++
			return "", context.Canceled
		},
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestExec_NoValue(t *testing.T) {
	e := NewExecutor(fastPolicy(), zaptest.NewLogger(t))
	calls := 0

	err := Exec(context.Background(), e, Operation[struct{}]{
		Name: "delete",
		Run: func(ctx context.Context) (struct{}, error) {
			calls++
			if calls == 1 {
				return struct{}{}, errTransient
			}
			return struct{}{}, nil
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestNewExecutor_NilLogger(t *testing.T) {
	e := NewExecutor(DefaultPolicy(), nil)

	assert.NotNil(t, e.log)
	assert.Equal(t, DefaultPolicy(), e.Policy())
}
