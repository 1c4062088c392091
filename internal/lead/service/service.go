// Package service orchestrates lead intake: validate, resolve the tenant,
// dispatch to the notification channel, and durably record the attempt.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/mssola/useragent"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"leadgate/internal/event"
	"leadgate/internal/lead/metrics"
	"leadgate/internal/lead/models"
	"leadgate/internal/lead/store"
	"leadgate/internal/notify"
	tenantmodels "leadgate/internal/tenant/models"
	dErrors "leadgate/pkg/domain-errors"
	"leadgate/pkg/requestcontext"
)

// TenantResolver resolves a client id to its delivery configuration.
type TenantResolver interface {
	Resolve(ctx context.Context, clientID string) (*tenantmodels.TenantConfig, error)
}

// Dispatcher delivers one lead alert to a tenant's channel.
type Dispatcher interface {
	Send(ctx context.Context, lead *models.Lead, traceID string, tenant *tenantmodels.TenantConfig) notify.Outcome
}

// EventEmitter publishes lifecycle events off the request path.
type EventEmitter interface {
	Emit(ctx context.Context, kind event.Kind, traceID, clientID string, fields map[string]string)
}

// CaptureInput is the raw, untrusted submission handed in by transport.
type CaptureInput struct {
	ClientID string
	Name     string
	Phone    string
	Service  string
	Address  string
	City     string
	Message  string
}

// CaptureResult is the client-facing outcome. TraceID is always set,
// including on failures, so callers can reference the audit record.
type CaptureResult struct {
	TraceID    string
	ClientName string
	Delivered  bool
}

// Service sequences one intake attempt per request. It is the sole
// writer of TraceRecords at creation; exactly one record is written per
// request at the moment the outcome is known.
type Service struct {
	store      store.Store
	registry   TenantResolver
	dispatcher Dispatcher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	events     EventEmitter
	tracer     trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithEvents sets the lifecycle event emitter.
func WithEvents(e EventEmitter) Option {
	return func(s *Service) {
		s.events = e
	}
}

// New constructs the intake service.
func New(st store.Store, registry TenantResolver, dispatcher Dispatcher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:      st,
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
		tracer:     otel.Tracer("leadgate/lead"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capture runs the intake state machine:
//
//	STARTED -> VALIDATED -> TENANT_RESOLVED -> DELIVERED|DELIVERY_FAILED -> RECORDED
//
// Any failure before the delivery outcome short-circuits to RECORDED with
// a FAILED record carrying placeholder lead fields, so rejected intents
// stay auditable. The returned error carries the code transport needs for
// status mapping; the result is non-nil in every case.
func (s *Service) Capture(ctx context.Context, in CaptureInput) (*CaptureResult, error) {
	traceID := models.NewTraceID()
	start := time.Now()
	timestamp := requestcontext.Now(ctx)

	ctx, span := s.tracer.Start(ctx, "lead.capture",
		trace.WithAttributes(attribute.String("lead.trace_id", traceID)))
	defer span.End()

	result := &CaptureResult{TraceID: traceID}

	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		err := dErrors.New(dErrors.CodeUnauthorized, "missing client id")
		s.recordFailure(ctx, traceID, "unknown", nil, start, timestamp, err)
		return result, err
	}

	lead, err := models.NewLead(in.Name, in.Phone, in.Service, in.Address, in.City, in.Message)
	if err != nil {
		span.RecordError(err)
		s.recordFailure(ctx, traceID, clientID, nil, start, timestamp, err)
		return result, err
	}
	span.AddEvent("validated")

	tenant, err := s.registry.Resolve(ctx, clientID)
	if err != nil {
		span.RecordError(err)
		s.recordFailure(ctx, traceID, clientID, nil, start, timestamp, err)
		return result, err
	}
	result.ClientName = tenant.DisplayName
	span.AddEvent("tenant_resolved")
	span.SetAttributes(attribute.String("lead.client_id", tenant.ClientID))

	outcome := s.dispatcher.Send(ctx, lead, traceID, tenant)
	latency := time.Since(start)

	status := models.StatusDelivered
	if !outcome.OK {
		status = models.StatusFailed
	}

	rec := &models.TraceRecord{
		TraceID:           traceID,
		ClientID:          tenant.ClientID,
		ClientName:        tenant.DisplayName,
		ClientTier:        tenant.Tier,
		LatencyMs:         latency.Milliseconds(),
		Status:            status,
		Timestamp:         timestamp,
		Lead:              *lead,
		Device:            deviceFamily(ctx),
		ProviderMessageID: outcome.ProviderMessageID,
	}
	s.record(ctx, rec, start)

	if !outcome.OK {
		s.logger.WarnContext(ctx, "lead delivery failed",
			"trace_id", traceID,
			"client_id", tenant.ClientID,
			"provider_status", outcome.ProviderStatus,
			"description", outcome.Description,
		)
		s.emit(ctx, event.KindLeadDeliveryFailed, traceID, tenant.ClientID, map[string]string{
			"description": outcome.Description,
		})
		desc := outcome.Description
		if desc == "" {
			desc = "delivery failed"
		}
		return result, dErrors.New(dErrors.CodeBadGateway, desc)
	}

	result.Delivered = true
	s.logger.InfoContext(ctx, "lead delivered",
		"trace_id", traceID,
		"client_id", tenant.ClientID,
		"city", lead.City,
		"latency_ms", latency.Milliseconds(),
	)
	s.emit(ctx, event.KindLeadDelivered, traceID, tenant.ClientID, map[string]string{
		"service": lead.Service,
		"city":    lead.City,
	})
	return result, nil
}

// recordFailure writes the short-circuit FAILED record with placeholder
// lead fields.
func (s *Service) recordFailure(ctx context.Context, traceID, clientID string, tenant *tenantmodels.TenantConfig, start time.Time, timestamp time.Time, cause error) {
	rec := &models.TraceRecord{
		TraceID:   traceID,
		ClientID:  clientID,
		LatencyMs: time.Since(start).Milliseconds(),
		Status:    models.StatusFailed,
		Timestamp: timestamp,
		Lead:      *models.PlaceholderLead(),
		Device:    deviceFamily(ctx),
	}
	if tenant != nil {
		rec.ClientName = tenant.DisplayName
		rec.ClientTier = tenant.Tier
	}
	s.logger.WarnContext(ctx, "intake rejected",
		"trace_id", traceID,
		"client_id", clientID,
		"error", cause,
	)
	s.record(ctx, rec, start)
}

// record performs the audit write. The context is detached from caller
// cancellation: once the outcome is known the record must become durable
// even if the submitter disconnected.
func (s *Service) record(ctx context.Context, rec *models.TraceRecord, start time.Time) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.store.Append(writeCtx, rec); err != nil {
		// Never drop a lead silently: the full payload goes to the log
		// for manual recovery.
		payload, _ := json.Marshal(rec)
		s.logger.ErrorContext(ctx, "trace record append failed",
			"trace_id", rec.TraceID,
			"error", err,
			"payload", string(payload),
		)
	}
	if s.metrics != nil {
		s.metrics.ObserveIntake(string(rec.Status), start)
	}
}

// deviceFamily condenses the submitter's User-Agent into a short label
// for the intake log. Empty when no User-Agent reached the service.
func deviceFamily(ctx context.Context) string {
	raw := requestcontext.UserAgent(ctx)
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	if ua.Bot() {
		return "bot"
	}
	name, _ := ua.Browser()
	if name == "" {
		return "unknown"
	}
	if ua.Mobile() {
		return name + " mobile"
	}
	return name
}

func (s *Service) emit(ctx context.Context, kind event.Kind, traceID, clientID string, fields map[string]string) {
	if s.events != nil {
		s.events.Emit(ctx, kind, traceID, clientID, fields)
	}
}

// Recent exposes the latest intake records for the analytics surface.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.TraceRecord, error) {
	records, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load recent records")
	}
	return records, nil
}

// Summary exposes aggregate delivery performance.
func (s *Service) Summary(ctx context.Context) (models.Summary, error) {
	sum, err := s.store.Summary(ctx)
	if err != nil {
		return models.Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute summary")
	}
	return sum, nil
}
