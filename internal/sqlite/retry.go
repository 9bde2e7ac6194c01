package sqlite

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"
)

// retryConfig controls retry behavior for transient SQLite errors.
type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// defaultRetryConfig is used for all backend write operations.
var defaultRetryConfig = retryConfig{
	maxRetries: 3,
	baseDelay:  20 * time.Millisecond,
	maxDelay:   200 * time.Millisecond,
}

// isTransientSQLiteErr reports whether err is a lock or contention error
// that a retry can resolve. busy_timeout covers most SQLITE_BUSY cases;
// this catches what falls through it.
func isTransientSQLiteErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range []string{
		"SQLITE_BUSY",
		"SQLITE_LOCKED",
		"IOERR_SHORT_READ",
		"database is locked",
		"database table is locked",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// retryOp runs fn, retrying transient errors with exponential backoff and
// jitter. Non-transient errors and context cancellation return at once.
func retryOp(ctx context.Context, cfg retryConfig, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil || !isTransientSQLiteErr(lastErr) {
			return lastErr
		}
		if attempt == cfg.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffDelay(cfg, attempt)):
		}
	}
	return lastErr
}

// backoffDelay returns baseDelay * 2^attempt, capped at maxDelay, plus
// jitter in [0, baseDelay).
func backoffDelay(cfg retryConfig, attempt int) time.Duration {
	delay := cfg.baseDelay << uint(attempt)
	if delay > cfg.maxDelay {
		delay = cfg.maxDelay
	}
	return delay + time.Duration(rand.Int64N(int64(cfg.baseDelay)))
}
