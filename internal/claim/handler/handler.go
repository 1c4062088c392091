// Package handler terminates the channel webhook and translates provider
// updates into claim reconciliations.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"leadgate/internal/notify"
	dErrors "leadgate/pkg/domain-errors"
	"leadgate/pkg/platform/httputil"
	"leadgate/pkg/requestcontext"
)

// Reconciler applies one claim callback.
type Reconciler interface {
	Reconcile(ctx context.Context, cb notify.Callback) error
}

// Handler wires the webhook endpoint to the claim service.
type Handler struct {
	service Reconciler
	logger  *slog.Logger
}

// New constructs the webhook handler.
func New(service Reconciler, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the webhook endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/webhook", h.HandleWebhook)
}

// update is the subset of the provider's webhook payload this service
// consumes. Everything else is acknowledged and dropped.
type update struct {
	CallbackQuery *struct {
		ID      string `json:"id"`
		Data    string `json:"data"`
		Message struct {
			MessageID int64  `json:"message_id"`
			Text      string `json:"text"`
			Chat      struct {
				ID int64 `json:"id"`
			} `json:"chat"`
		} `json:"message"`
	} `json:"callback_query"`
}

// HandleWebhook handles POST /v1/webhook. Every accepted event answers
// {ok:true}, including non-claim updates and malformed tokens; only
// processing faults surface as 500 so the provider retries them.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var u update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		h.logger.WarnContext(ctx, "webhook decode failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	if u.CallbackQuery == nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	cb := notify.Callback{
		ID:             u.CallbackQuery.ID,
		Data:           u.CallbackQuery.Data,
		ChannelAddress: strconv.FormatInt(u.CallbackQuery.Message.Chat.ID, 10),
		MessageID:      u.CallbackQuery.Message.MessageID,
		MessageText:    u.CallbackQuery.Message.Text,
	}

	if err := h.service.Reconcile(ctx, cb); err != nil {
		if dErrors.HasCode(err, dErrors.CodeBadRequest) {
			// Unrecognized tokens are logged and ignored, not retried.
			h.logger.WarnContext(ctx, "ignoring malformed claim callback",
				"request_id", requestID,
				"error", err,
			)
			httputil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
			return
		}
		h.logger.ErrorContext(ctx, "claim reconciliation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "webhook processing failed"})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
