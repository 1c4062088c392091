package event

import "time"

// Kind enumerates lead lifecycle events published to the stream.
type Kind string

const (
	KindLeadDelivered      Kind = "lead.delivered"
	KindLeadDeliveryFailed Kind = "lead.delivery_failed"
	KindLeadClaimed        Kind = "lead.claimed"
)

// Event is emitted from domain logic to capture key lifecycle moments.
// Transport-agnostic so publishers can fan out to a broker, a log, or a
// test sink.
type Event struct {
	ID        string            `json:"id"`
	Kind      Kind              `json:"kind"`
	TraceID   string            `json:"traceId"`
	ClientID  string            `json:"clientId"`
	Timestamp time.Time         `json:"timestamp"`
	Fields    map[string]string `json:"fields,omitempty"`
}
