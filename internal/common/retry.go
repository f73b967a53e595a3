package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/consulta-proyectos/internal/service"
)

// ErrMaxRetries indicates that all retry attempts have been exhausted.
var ErrMaxRetries = errors.New("max retries exceeded")

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Permanent marks err as not worth retrying, even when it wraps a timeout.
func Permanent(err error) error {
	return &RetryableError{Err: err, Retryable: false}
}

// backoff yields exponentially growing delays capped at MaxDelay.
type backoff struct {
	opts  service.RetryOptions
	delay time.Duration
}

func newBackoff(opts service.RetryOptions) *backoff {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}
	return &backoff{opts: opts, delay: min(opts.InitialDelay, opts.MaxDelay)}
}

// wait sleeps for the current delay, then grows it.
func (b *backoff) wait(ctx context.Context) error {
	timer := time.NewTimer(b.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	b.delay = min(time.Duration(float64(b.delay)*b.opts.Multiplier), b.opts.MaxDelay)
	return nil
}

// WithRetry runs operation until it succeeds, fails with an error that
// IsRetryable rejects, exhausts opts.MaxAttempts or ctx is done.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	b := newBackoff(opts)

	for attempt := 1; ; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		if !IsRetryable(err) {
			return err
		}
		if attempt >= b.opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		slog.Warn("Operation failed, retrying",
			"attempt", attempt,
			"max_attempts", b.opts.MaxAttempts,
			"delay", b.delay,
			"error", err)

		if err := b.wait(ctx); err != nil {
			return err
		}
	}
}
