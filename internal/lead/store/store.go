// Package store persists the append-only intake log. Stores are
// interface-driven so the service layer can run against in-memory, JSONL
// file, or Postgres persistence without rewiring business code.
package store

import (
	"context"

	"leadgate/internal/lead/models"
)

// Store is the durable record of every intake attempt.
//
// Append is append-only: records are never deleted or rewritten. The only
// mutation is SetClaimed, a one-way flag flip keyed by trace id.
// Implementations must guarantee each record is written as one atomic
// unit under concurrent appends.
type Store interface {
	Append(ctx context.Context, rec *models.TraceRecord) error

	// SetClaimed marks a record claimed and reports whether it actually
	// transitioned. Re-claiming an already claimed record returns
	// (false, nil); an unknown trace id returns sentinel.ErrNotFound.
	SetClaimed(ctx context.Context, traceID string) (bool, error)

	// FindByTrace returns the record for a trace id, or sentinel.ErrNotFound.
	FindByTrace(ctx context.Context, traceID string) (*models.TraceRecord, error)

	// Recent returns up to limit records, most recent first.
	Recent(ctx context.Context, limit int) ([]models.TraceRecord, error)

	// Summary reports average latency over DELIVERED records and the
	// delivered count.
	Summary(ctx context.Context) (models.Summary, error)
}
