package store

import (
	"context"
	"sync"

	"leadgate/internal/lead/models"
	"leadgate/pkg/platform/sentinel"
)

// InMemory keeps the intake log in process memory. It backs unit tests
// and local development; it intentionally favors clarity over performance.
type InMemory struct {
	mu      sync.RWMutex
	records []models.TraceRecord
	byTrace map[string]int
}

func NewInMemory() *InMemory {
	return &InMemory{byTrace: make(map[string]int)}
}

func (s *InMemory) Append(_ context.Context, rec *models.TraceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byTrace[rec.TraceID]; exists {
		return sentinel.ErrConflict
	}
	s.records = append(s.records, *rec)
	s.byTrace[rec.TraceID] = len(s.records) - 1
	return nil
}

func (s *InMemory) SetClaimed(_ context.Context, traceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byTrace[traceID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if s.records[idx].Claimed {
		return false, nil
	}
	s.records[idx].Claimed = true
	return true, nil
}

// resetClaim rolls back a claim flip whose durable write failed, so a
// retry can replay the whole transition. The flag stays one-way for
// callers of SetClaimed.
func (s *InMemory) resetClaim(traceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.byTrace[traceID]; ok {
		s.records[idx].Claimed = false
	}
}

func (s *InMemory) FindByTrace(_ context.Context, traceID string) (*models.TraceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byTrace[traceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	rec := s.records[idx]
	return &rec, nil
}

func (s *InMemory) Recent(_ context.Context, limit int) ([]models.TraceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]models.TraceRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func (s *InMemory) Summary(_ context.Context) (models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return summarize(s.records), nil
}

// summarize is shared by the memory and JSONL stores.
func summarize(records []models.TraceRecord) models.Summary {
	var sum models.Summary
	var totalLatency int64
	for _, rec := range records {
		if rec.Status == models.StatusDelivered {
			sum.DeliveredCount++
			totalLatency += rec.LatencyMs
		}
	}
	if sum.DeliveredCount > 0 {
		sum.AverageLatencyMs = float64(totalLatency) / float64(sum.DeliveredCount)
	}
	return sum
}
