// Package bucket provides the counting backends for intake throttling.
package bucket

import (
	"context"
	"time"
)

// Result reports the outcome of a single throttle check.
type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// RetryAfter returns the whole seconds a caller should wait before
// retrying, never less than 1.
func (r *Result) RetryAfter() int {
	secs := int(time.Until(r.ResetAt).Seconds())
	if secs < 1 {
		return 1
	}
	return secs
}

// Store counts requests per key within a window and decides admission.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}
