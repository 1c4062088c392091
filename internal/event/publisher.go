// Package event publishes lead lifecycle events. The request path hands
// events to a buffered worker so intake latency never depends on the
// broker; delivery is best-effort by design (the TraceRecord in the Lead
// Store is the source of truth, the stream is for downstream consumers).
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Sink persists or forwards a single event.
type Sink interface {
	Publish(ctx context.Context, e Event) error
}

// Kafka publishes events to a Kafka topic keyed by trace id, so all
// events for one lead land in the same partition in order.
type Kafka struct {
	client *kgo.Client
}

// NewKafka builds a Kafka sink. Brokers must be non-empty; callers use
// Nop when the stream is unconfigured.
func NewKafka(brokers []string, topic string) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID("leadgate"),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Kafka{client: client}, nil
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	record := &kgo.Record{Key: []byte(e.TraceID), Value: value}
	// Synchronous from the sink's perspective; the worker goroutine is
	// the thing keeping this off the request path.
	results := k.client.ProduceSync(ctx, record)
	if err := results.FirstErr(); err != nil {
		return fmt.Errorf("produce event: %w", err)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (k *Kafka) Close(ctx context.Context) error {
	err := k.client.Flush(ctx)
	k.client.Close()
	return err
}

// Nop drops events; used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// LogSink writes events to the process log at DEBUG, handy in development.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Publish(ctx context.Context, e Event) error {
	s.Logger.DebugContext(ctx, "event",
		"kind", string(e.Kind),
		"trace_id", e.TraceID,
		"client_id", e.ClientID,
	)
	return nil
}
