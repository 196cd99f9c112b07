// Package retry runs store operations under a bounded exponential backoff and
// converts exhaustion into a caller-supplied recovery error.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	goretry "github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Policy describes how many attempts are made and how long to wait between them.
// Delays double after every failed attempt and never exceed MaxDelay.
type Policy struct {
	MaxAttempts  uint64
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultPolicy is three attempts with 1s and 2s waits, capped at 10s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
	}
}

// Backoff returns a fresh backoff for one invocation. Backoffs are stateful and
// must not be shared between invocations.
func (p Policy) Backoff() goretry.Backoff {
	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	b := goretry.NewExponential(p.InitialDelay)
	if p.MaxDelay > 0 {
		b = goretry.WithCappedDuration(p.MaxDelay, b)
	}
	return goretry.WithMaxRetries(attempts-1, b)
}

// ExhaustedError is returned when every attempt failed transiently and the
// operation's recovery hook did not produce an error of its own.
type ExhaustedError struct {
	Operation string
	Attempts  uint64
	Err       error
}

// Error implements the error interface
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: retries exhausted after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

// Unwrap returns the last transient error
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Operation is a single logical store call run under the executor.
type Operation[T any] struct {
	// Name identifies the operation in logs.
	Name string
	// Run performs the call. It is invoked once per attempt.
	Run func(ctx context.Context) (T, error)
	// Retryable reports whether err is transient. Nil treats every error as transient.
	// Context cancellation is never retried regardless of this predicate.
	Retryable func(err error) bool
	// Recover builds the terminal error once attempts are exhausted.
	Recover func(ctx context.Context, last error) error
}

// Executor applies a Policy to operations.
type Executor struct {
	policy Policy
	log    *zap.Logger
}

// NewExecutor creates a new executor with the given policy and logger.
func NewExecutor(policy Policy, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{policy: policy, log: log}
}

// Policy returns the executor's retry policy.
func (e *Executor) Policy() Policy {
	return e.policy
}

// Do runs op under the executor's policy.
//
// Success returns immediately. A transient failure is retried after the next
// backoff delay; a failure on the last attempt invokes op.Recover and returns its
// error. Non-retryable failures are returned as-is without invoking Recover.
func Do[T any](ctx context.Context, e *Executor, op Operation[T]) (T, error) {
	var (
		result    T
		attempt   uint64
		transient bool
	)

	backoff := e.policy.Backoff()

	err := goretry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		v, err := op.Run(ctx)
		if err == nil {
			result = v
			transient = false
			return nil
		}

		if !isRetryable(op, err) {
			transient = false
			return err
		}

		transient = true
		e.log.Warn("store operation failed, will retry if attempts remain",
			zap.String("operation", op.Name),
			zap.Uint64("attempt", attempt),
			zap.Uint64("max_attempts", e.policy.MaxAttempts),
			zap.Error(err),
		)
		return goretry.RetryableError(err)
	})

	if err == nil {
		return result, nil
	}

	var zero T

	// Cancelled while waiting between attempts or before the first one.
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return zero, err
	}

	if !transient {
		return zero, err
	}

	e.log.Error("store operation failed, retries exhausted",
		zap.String("operation", op.Name),
		zap.Uint64("attempts", attempt),
		zap.Error(err),
	)

	if op.Recover != nil {
		if rerr := op.Recover(ctx, err); rerr != nil {
			return zero, rerr
		}
	}
	return zero, &ExhaustedError{Operation: op.Name, Attempts: attempt, Err: err}
}

// Exec is Do for operations without a result value.
func Exec(ctx context.Context, e *Executor, op Operation[struct{}]) error {
	_, err := Do(ctx, e, op)
	return err
}

func isRetryable[T any](op Operation[T], err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if op.Retryable == nil {
		return true
	}
	return op.Retryable(err)
}
