package models

import (
	"crypto/rand"
	"time"

	tenantmodels "leadgate/internal/tenant/models"
)

// Status is the delivery outcome recorded on a TraceRecord.
type Status string

const (
	StatusDelivered Status = "DELIVERED"
	StatusFailed    Status = "FAILED"
)

// TraceRecord is the durable audit entry for one intake attempt.
//
// Lifecycle: created exactly once per intake attempt, at the moment the
// delivery outcome (or short-circuit failure) is known; never deleted.
// Claimed is the only field mutable after creation, and it is set exactly
// once by the claim reconciler (unclaimed -> claimed, never back).
//
// JSON field names follow the intake log wire format consumed by the
// analytics panel.
type TraceRecord struct {
	TraceID    string             `json:"traceId"`
	ClientID   string             `json:"clientId"`
	ClientName string             `json:"clientName,omitempty"`
	ClientTier tenantmodels.Tier  `json:"clientTier,omitempty"`
	LatencyMs  int64              `json:"latency"`
	Status     Status             `json:"status"`
	Timestamp  time.Time          `json:"timestamp"`
	Lead       Lead               `json:"lead"`
	Claimed    bool               `json:"claimed"`

	// Device is a short label for the submitter's browser family, derived
	// from the request User-Agent. Empty when no User-Agent was captured.
	Device string `json:"device,omitempty"`

	// ProviderMessageID lets the reconciler edit the original channel
	// message. Zero when delivery failed.
	ProviderMessageID int64 `json:"providerMessageId,omitempty"`
}

// Summary aggregates delivery performance over the intake log.
type Summary struct {
	AverageLatencyMs float64 `json:"averageLatencyMs"`
	DeliveredCount   int     `json:"deliveredCount"`
}

const traceIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewTraceID generates a lead trace identifier in the L-XXXXXXXXX format
// the notification template and claim tokens use. Randomness comes from
// crypto/rand so concurrent intakes cannot collide in practice.
func NewTraceID() string {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	out := make([]byte, 0, 11)
	out = append(out, 'L', '-')
	for _, b := range buf {
		out = append(out, traceIDAlphabet[int(b)%len(traceIDAlphabet)])
	}
	return string(out)
}
