package bucket

import (
	"context"
	"sync"
	"time"
)

// InMemory implements Store with a per-key sliding window. Suitable for
// single-instance deployments; use the Redis store when running more
// than one replica.
type InMemory struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
}

// slidingWindow tracks request timestamps so a burst straddling a window
// boundary cannot double the effective budget.
type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

func NewInMemory() *InMemory {
	return &InMemory{windows: make(map[string]*slidingWindow)}
}

// Allow records one request against key and reports whether it fits the
// limit for the window.
func (s *InMemory) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw := s.getOrCreate(key, window)
	now := time.Now()
	sw.cleanup(now)

	if len(sw.timestamps)+1 > limit {
		return &Result{
			Allowed:   false,
			Remaining: 0,
			Limit:     limit,
			ResetAt:   sw.timestamps[0].Add(window),
		}, nil
	}

	sw.timestamps = append(sw.timestamps, now)
	return &Result{
		Allowed:   true,
		Remaining: limit - len(sw.timestamps),
		Limit:     limit,
		ResetAt:   sw.timestamps[0].Add(window),
	}, nil
}

// Reset clears the counter for a key.
func (s *InMemory) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
}

func (s *InMemory) getOrCreate(key string, window time.Duration) *slidingWindow {
	if sw := s.windows[key]; sw != nil {
		return sw
	}
	sw := &slidingWindow{window: window}
	s.windows[key] = sw
	return sw
}

// cleanup drops timestamps that have aged out of the window.
func (sw *slidingWindow) cleanup(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}
