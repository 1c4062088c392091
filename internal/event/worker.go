package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Emitter is what domain services see: a non-blocking enqueue. The
// Worker behind it drains the buffer into the configured Sink.
type Emitter struct {
	inbox  chan Event
	logger *slog.Logger
}

// Worker consumes events from the emitter's buffer and publishes them.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

// New builds the emitter/worker pair around one buffered channel.
func New(sink Sink, buffer int, logger *slog.Logger) (*Emitter, *Worker) {
	if buffer <= 0 {
		buffer = 256
	}
	inbox := make(chan Event, buffer)
	return &Emitter{inbox: inbox, logger: logger},
		&Worker{sink: sink, inbox: inbox, logger: logger}
}

// Emit enqueues an event without blocking the request path. When the
// buffer is full the event is dropped with a warning: the Lead Store,
// not the stream, is the durable record.
func (e *Emitter) Emit(ctx context.Context, kind Kind, traceID, clientID string, fields map[string]string) {
	ev := Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		TraceID:   traceID,
		ClientID:  clientID,
		Timestamp: time.Now(),
		Fields:    fields,
	}
	select {
	case e.inbox <- ev:
	default:
		e.logger.WarnContext(ctx, "event buffer full, dropping event",
			"kind", string(kind),
			"trace_id", traceID,
		)
	}
}

// Run drains the inbox until ctx is cancelled, then flushes whatever is
// still buffered and returns nil so shutdown stays clean. Publish
// failures are logged and skipped; a flaky broker must not wedge the
// worker.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return nil
		case ev := <-w.inbox:
			w.publish(ctx, ev)
		}
	}
}

// flush publishes buffered events with a detached context after the run
// context is gone.
func (w *Worker) flush() {
	ctx := context.Background()
	for {
		select {
		case ev := <-w.inbox:
			w.publish(ctx, ev)
		default:
			return
		}
	}
}

func (w *Worker) publish(ctx context.Context, ev Event) {
	if err := w.sink.Publish(ctx, ev); err != nil {
		w.logger.ErrorContext(ctx, "event publish failed",
			"kind", string(ev.Kind),
			"trace_id", ev.TraceID,
			"error", err,
		)
	}
}
