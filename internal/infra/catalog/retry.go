package catalog

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	"bibliotech-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// RetryPolicy re-invokes a fallible operation on retryable failures with
// bounded attempts and exponential backoff. A non-retryable error, or
// exhaustion of the attempt budget, surfaces the last error to the caller.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Do runs fn up to MaxAttempts times. Backoff sleeps honor ctx cancellation.
// The op label is only used for logs and metrics.
func (p RetryPolicy) Do(ctx context.Context, log *zerolog.Logger, op string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			metrics.IncCatalogRequest(op, "ok")
			return nil
		}
		last = err
		if !Retryable(err) {
			metrics.IncCatalogRequest(op, "terminal")
			return err
		}
		metrics.IncCatalogRequest(op, "retryable")
		if attempt == attempts {
			break
		}
		delay := p.backoff(attempt)
		metrics.IncCatalogRetry(op)
		log.Warn().Str("op", op).Int("attempt", attempt).Dur("delay", delay).Err(err).
			Msg("retryable upstream failure, backing off")
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return last
}

// backoff returns min(cap, base * 2^(attempt-1)).
func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BaseDelay
	if d <= 0 {
		d = time.Second
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Retryable classifies an error as a transient network failure (connect
// failure, connect/read timeout, connection reset, pool exhaustion). HTTP
// status errors, decode errors, and caller cancellation are not retryable.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
