package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"leadgate/internal/lead/models"
	"leadgate/pkg/platform/sentinel"
)

func newRecord(traceID string, status models.Status, latencyMs int64) *models.TraceRecord {
	return &models.TraceRecord{
		TraceID:   traceID,
		ClientID:  "acme",
		LatencyMs: latencyMs,
		Status:    status,
		Timestamp: time.Now().UTC(),
		Lead:      models.Lead{Name: "Jane", Phone: "555-0100", Service: "Plumbing", City: "Springfield"},
	}
}

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestAppend() {
	s.Run("stores record", func() {
		err := s.store.Append(s.ctx, newRecord("L-AAAAAAAAA", models.StatusDelivered, 120))
		s.Require().NoError(err)

		rec, err := s.store.FindByTrace(s.ctx, "L-AAAAAAAAA")
		s.Require().NoError(err)
		s.Equal("acme", rec.ClientID)
		s.False(rec.Claimed)
	})

	s.Run("duplicate trace id conflicts", func() {
		err := s.store.Append(s.ctx, newRecord("L-AAAAAAAAA", models.StatusDelivered, 120))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *InMemoryStoreSuite) TestSetClaimed() {
	s.Require().NoError(s.store.Append(s.ctx, newRecord("L-CLAIM0001", models.StatusDelivered, 100)))

	s.Run("first claim transitions", func() {
		updated, err := s.store.SetClaimed(s.ctx, "L-CLAIM0001")
		s.Require().NoError(err)
		s.True(updated)

		rec, err := s.store.FindByTrace(s.ctx, "L-CLAIM0001")
		s.Require().NoError(err)
		s.True(rec.Claimed)
	})

	s.Run("second claim is a no-op", func() {
		updated, err := s.store.SetClaimed(s.ctx, "L-CLAIM0001")
		s.Require().NoError(err)
		s.False(updated)
	})

	s.Run("unknown trace id", func() {
		_, err := s.store.SetClaimed(s.ctx, "L-NOPE00000")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestFindByTrace() {
	s.Run("unknown trace id", func() {
		_, err := s.store.FindByTrace(s.ctx, "L-MISSING00")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned record is a copy", func() {
		s.Require().NoError(s.store.Append(s.ctx, newRecord("L-COPY00001", models.StatusDelivered, 100)))
		rec, err := s.store.FindByTrace(s.ctx, "L-COPY00001")
		s.Require().NoError(err)
		rec.Claimed = true

		again, err := s.store.FindByTrace(s.ctx, "L-COPY00001")
		s.Require().NoError(err)
		s.False(again.Claimed)
	})
}

func (s *InMemoryStoreSuite) TestRecent() {
	for i := range 5 {
		traceID := fmt.Sprintf("L-RECENT%03d", i)
		s.Require().NoError(s.store.Append(s.ctx, newRecord(traceID, models.StatusDelivered, 100)))
	}

	s.Run("most recent first", func() {
		recs, err := s.store.Recent(s.ctx, 2)
		s.Require().NoError(err)
		s.Require().Len(recs, 2)
		s.Equal("L-RECENT004", recs[0].TraceID)
		s.Equal("L-RECENT003", recs[1].TraceID)
	})

	s.Run("limit larger than log", func() {
		recs, err := s.store.Recent(s.ctx, 50)
		s.Require().NoError(err)
		s.Len(recs, 5)
	})

	s.Run("zero limit returns everything", func() {
		recs, err := s.store.Recent(s.ctx, 0)
		s.Require().NoError(err)
		s.Len(recs, 5)
	})
}

func (s *InMemoryStoreSuite) TestSummary() {
	s.Run("empty log", func() {
		sum, err := s.store.Summary(s.ctx)
		s.Require().NoError(err)
		s.Zero(sum.DeliveredCount)
		s.Zero(sum.AverageLatencyMs)
	})

	s.Run("failed records excluded from average", func() {
		s.Require().NoError(s.store.Append(s.ctx, newRecord("L-SUM000001", models.StatusDelivered, 100)))
		s.Require().NoError(s.store.Append(s.ctx, newRecord("L-SUM000002", models.StatusDelivered, 300)))
		s.Require().NoError(s.store.Append(s.ctx, newRecord("L-SUM000003", models.StatusFailed, 50)))

		sum, err := s.store.Summary(s.ctx)
		s.Require().NoError(err)
		s.Equal(2, sum.DeliveredCount)
		s.InDelta(200.0, sum.AverageLatencyMs, 0.001)
	})
}
