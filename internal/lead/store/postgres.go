package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"leadgate/internal/lead/models"
	tenantmodels "leadgate/internal/tenant/models"
	"leadgate/pkg/platform/sentinel"
)

// Postgres persists the intake log in PostgreSQL. The lead payload is
// stored as JSONB so the record shape can evolve without migrations;
// queried columns are first-class.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the intake log table when missing. The binary owns
// its schema; deployments without a migration pipeline just call this at
// startup.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS lead_traces (
	trace_id    TEXT PRIMARY KEY,
	client_id   TEXT NOT NULL,
	client_name TEXT NOT NULL DEFAULT '',
	client_tier TEXT NOT NULL DEFAULT '',
	latency_ms  BIGINT NOT NULL,
	status      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	lead        JSONB NOT NULL,
	claimed     BOOLEAN NOT NULL DEFAULT FALSE,
	device      TEXT NOT NULL DEFAULT '',
	provider_message_id BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS lead_traces_created_at_idx ON lead_traces (created_at DESC);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure lead_traces schema: %w", err)
	}
	return nil
}

func (s *Postgres) Append(ctx context.Context, rec *models.TraceRecord) error {
	leadJSON, err := json.Marshal(rec.Lead)
	if err != nil {
		return fmt.Errorf("encode lead: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO lead_traces
			(trace_id, client_id, client_name, client_tier, latency_ms, status, created_at, lead, claimed, device, provider_message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.TraceID, rec.ClientID, rec.ClientName, string(rec.ClientTier),
		rec.LatencyMs, string(rec.Status), rec.Timestamp, leadJSON,
		rec.Claimed, rec.Device, rec.ProviderMessageID,
	)
	if err != nil {
		return fmt.Errorf("append trace record: %w", err)
	}
	return nil
}

func (s *Postgres) SetClaimed(ctx context.Context, traceID string) (bool, error) {
	// The claimed = FALSE guard makes the transition idempotent at the
	// database level; concurrent reconciles race to one effective update.
	res, err := s.db.ExecContext(ctx,
		`UPDATE lead_traces SET claimed = TRUE WHERE trace_id = $1 AND claimed = FALSE`,
		traceID,
	)
	if err != nil {
		return false, fmt.Errorf("set claimed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set claimed rows: %w", err)
	}
	if affected > 0 {
		return true, nil
	}

	// Distinguish already-claimed from unknown trace.
	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM lead_traces WHERE trace_id = $1)`, traceID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check trace exists: %w", err)
	}
	if !exists {
		return false, sentinel.ErrNotFound
	}
	return false, nil
}

func (s *Postgres) FindByTrace(ctx context.Context, traceID string) (*models.TraceRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT trace_id, client_id, client_name, client_tier, latency_ms, status, created_at, lead, claimed, device, provider_message_id
		FROM lead_traces WHERE trace_id = $1`, traceID)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find trace record: %w", err)
	}
	return rec, nil
}

func (s *Postgres) Recent(ctx context.Context, limit int) ([]models.TraceRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT trace_id, client_id, client_name, client_tier, latency_ms, status, created_at, lead, claimed, device, provider_message_id
		FROM lead_traces ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent records: %w", err)
	}
	defer rows.Close()

	var out []models.TraceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trace record: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *Postgres) Summary(ctx context.Context) (models.Summary, error) {
	var sum models.Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(latency_ms), 0), COUNT(*)
		FROM lead_traces WHERE status = $1`, string(models.StatusDelivered),
	).Scan(&sum.AverageLatencyMs, &sum.DeliveredCount)
	if err != nil {
		return models.Summary{}, fmt.Errorf("query summary: %w", err)
	}
	return sum, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.TraceRecord, error) {
	var rec models.TraceRecord
	var tier, status string
	var leadJSON []byte
	if err := row.Scan(&rec.TraceID, &rec.ClientID, &rec.ClientName, &tier,
		&rec.LatencyMs, &status, &rec.Timestamp, &leadJSON,
		&rec.Claimed, &rec.Device, &rec.ProviderMessageID); err != nil {
		return nil, err
	}
	rec.ClientTier = tenantmodels.Tier(tier)
	rec.Status = models.Status(status)
	if err := json.Unmarshal(leadJSON, &rec.Lead); err != nil {
		return nil, fmt.Errorf("decode lead payload: %w", err)
	}
	return &rec, nil
}

var _ Store = (*Postgres)(nil)
