package db

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"
)

// ErrBusy is returned when a retry budget is exhausted after SQLITE_BUSY.
var ErrBusy = errors.New("database busy: retries exhausted")

// IsBusy reports whether err indicates SQLite returned SQLITE_BUSY (database locked).
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "SQLITE_BUSY") || strings.Contains(s, "database is locked")
}

// busyRetryCount counts how many times RetryOnBusy slept due to SQLITE_BUSY.
var busyRetryCount atomic.Int64

// BusyRetryCount returns the total busy retries since the last reset; the
// index runner logs it when recording finishes.
func BusyRetryCount() int64 {
	return busyRetryCount.Load()
}

// ResetBusyRetryCount resets the busy retry counter.
func ResetBusyRetryCount() {
	busyRetryCount.Store(0)
}

// RetryOnBusy runs fn and retries while it fails with a busy error, up to
// maxAttempts runs in total. Backoff doubles each time (capped at 5s) and the
// wait respects ctx. When every attempt was busy the result wraps ErrBusy and
// the last error.
func RetryOnBusy(ctx context.Context, maxAttempts int, initialBackoff time.Duration, fn func() error) error {
	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsBusy(lastErr) {
			return lastErr
		}
		if attempt == maxAttempts-1 {
			break
		}
		busyRetryCount.Add(1)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
		if backoff > 5*time.Second {
			backoff = 5 * time.Second
		}
	}
	return errors.Join(ErrBusy, lastErr)
}
