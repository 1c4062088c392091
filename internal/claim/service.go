// Package claim reconciles channel-originated claim callbacks against the
// intake log: the first press flips the record's claimed flag, every
// subsequent press is a no-op.
package claim

import (
	"context"
	"errors"
	"log/slog"

	"leadgate/internal/event"
	"leadgate/internal/lead/metrics"
	"leadgate/internal/lead/store"
	"leadgate/internal/notify"
	tenantmodels "leadgate/internal/tenant/models"
	dErrors "leadgate/pkg/domain-errors"
	"leadgate/pkg/platform/sentinel"
)

// ChannelResolver finds the tenant owning a channel address. Callbacks
// carry the originating chat, not a client id.
type ChannelResolver interface {
	ResolveByChannel(ctx context.Context, channelAddress string) (*tenantmodels.TenantConfig, error)
}

// Notifier edits the already-sent notification and acknowledges the
// button interaction.
type Notifier interface {
	EditMessageText(ctx context.Context, tenant *tenantmodels.TenantConfig, channelAddress string, messageID int64, text string) error
	AnswerCallback(ctx context.Context, tenant *tenantmodels.TenantConfig, callbackID string) error
}

// EventEmitter publishes lifecycle events off the request path.
type EventEmitter interface {
	Emit(ctx context.Context, kind event.Kind, traceID, clientID string, fields map[string]string)
}

// Service applies claim transitions. It is the sole writer of the
// claimed flag.
type Service struct {
	store    store.Store
	registry ChannelResolver
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	events   EventEmitter
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

// New constructs the reconciler.
func New(st store.Store, registry ChannelResolver, notifier Notifier, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: st, registry: registry, notifier: notifier, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reconcile processes one claim callback.
//
// The durable flag update is authoritative; the message edit and the
// callback acknowledgment are best-effort visual state. Reconciling the
// same trace id twice leaves state unchanged and returns nil.
func (s *Service) Reconcile(ctx context.Context, cb notify.Callback) error {
	traceID, err := notify.ParseClaimToken(cb.Data)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed claim callback")
	}

	updated, err := s.store.SetClaimed(ctx, traceID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		// A stale button for a trace this deployment never recorded.
		// Acknowledge it anyway so the client's spinner clears.
		s.logger.WarnContext(ctx, "claim for unknown trace id",
			"trace_id", traceID,
			"channel_address", cb.ChannelAddress,
		)
		s.acknowledge(ctx, cb)
		return nil
	case err != nil:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update claim flag")
	}

	tenant, rerr := s.registry.ResolveByChannel(ctx, cb.ChannelAddress)
	if rerr != nil {
		// The flag update already succeeded and is authoritative; without
		// a tenant credential the visual edit simply cannot happen.
		s.logger.WarnContext(ctx, "no tenant for claim callback channel",
			"trace_id", traceID,
			"channel_address", cb.ChannelAddress,
		)
		return nil
	}

	if updated {
		s.logger.InfoContext(ctx, "lead claimed",
			"trace_id", traceID,
			"client_id", tenant.ClientID,
		)
		if s.metrics != nil {
			s.metrics.IncrementClaims()
		}
		if s.events != nil {
			s.events.Emit(ctx, event.KindLeadClaimed, traceID, tenant.ClientID, nil)
		}

		if cb.MessageID != 0 {
			text := notify.MarkClaimed(cb.MessageText)
			if err := s.notifier.EditMessageText(ctx, tenant, cb.ChannelAddress, cb.MessageID, text); err != nil {
				s.logger.WarnContext(ctx, "claim message edit failed",
					"trace_id", traceID,
					"error", err,
				)
			}
		}
	}

	if err := s.notifier.AnswerCallback(ctx, tenant, cb.ID); err != nil {
		s.logger.WarnContext(ctx, "callback acknowledgment failed",
			"trace_id", traceID,
			"error", err,
		)
	}
	return nil
}

// acknowledge answers a callback when no claim transition applies, so
// the pressing client's loading indicator still clears.
func (s *Service) acknowledge(ctx context.Context, cb notify.Callback) {
	tenant, err := s.registry.ResolveByChannel(ctx, cb.ChannelAddress)
	if err != nil {
		return
	}
	if err := s.notifier.AnswerCallback(ctx, tenant, cb.ID); err != nil {
		s.logger.WarnContext(ctx, "callback acknowledgment failed",
			"channel_address", cb.ChannelAddress,
			"error", err,
		)
	}
}
