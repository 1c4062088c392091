package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"leadgate/internal/lead/models"
	"leadgate/internal/lead/service"
	dErrors "leadgate/pkg/domain-errors"
	"leadgate/pkg/platform/httputil"
	"leadgate/pkg/requestcontext"
)

// Service defines the intake operations the handler depends on.
type Service interface {
	Capture(ctx context.Context, in service.CaptureInput) (*service.CaptureResult, error)
	Recent(ctx context.Context, limit int) ([]models.TraceRecord, error)
	Summary(ctx context.Context) (models.Summary, error)
}

// Handler wires the intake and analytics endpoints to the lead service.
type Handler struct {
	service Service
	logger  *slog.Logger
	dev     bool
}

// New constructs the handler. In development mode internal fault detail
// is returned to the caller; production replies with a generic message
// and keeps the detail in the logs keyed by trace id.
func New(service Service, logger *slog.Logger, dev bool) *Handler {
	return &Handler{service: service, logger: logger, dev: dev}
}

// Register mounts the public intake endpoints on the router. Analytics
// endpoints are registered separately so the router can wrap them in ops
// authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/lead-capture", h.HandleCapture)
	r.Get("/v1/lead-capture", h.HandleHealth)
}

// RegisterAnalytics mounts the analytics read endpoints.
func (h *Handler) RegisterAnalytics(r chi.Router) {
	r.Get("/v1/analytics/summary", h.HandleSummary)
	r.Get("/v1/analytics/recent", h.HandleRecent)
}

// HandleCapture handles POST /v1/lead-capture.
func (h *Handler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	headerClientID := r.Header.Get("x-client-id")

	// Decode failures still run through Capture so the attempt is
	// recorded; an unreadable body simply yields placeholder input.
	var req CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "intake body decode failed",
			"request_id", requestID,
			"error", err,
		)
	}

	result, err := h.service.Capture(ctx, req.Input(headerClientID))
	if err != nil {
		h.writeCaptureError(w, r, result.TraceID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, CaptureResponse{
		Success: true,
		TraceID: result.TraceID,
		Message: "Value Delivered.",
		Client:  result.ClientName,
	})
}

func (h *Handler) writeCaptureError(w http.ResponseWriter, r *http.Request, traceID string, err error) {
	ctx := r.Context()
	resp := CaptureResponse{Success: false, TraceID: traceID}

	switch {
	case dErrors.HasCode(err, dErrors.CodeUnauthorized):
		resp.Error = "Invalid Routing"
		httputil.WriteJSON(w, http.StatusUnauthorized, resp)
	case dErrors.HasCode(err, dErrors.CodeBadGateway):
		var de *dErrors.Error
		resp.Error = "delivery failed"
		if errors.As(err, &de) {
			resp.Error = de.Message
		}
		httputil.WriteJSON(w, http.StatusBadGateway, resp)
	default:
		h.logger.ErrorContext(ctx, "intake failed",
			"request_id", requestcontext.RequestID(ctx),
			"trace_id", traceID,
			"error", err,
		)
		resp.Error = "System logic fault."
		if h.dev {
			resp.Error = err.Error()
		}
		httputil.WriteJSON(w, http.StatusInternalServerError, resp)
	}
}

// HandleHealth handles GET /v1/lead-capture.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: "lead-capture"})
}

// HandleSummary handles GET /v1/analytics/summary.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sum, err := h.service.Summary(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sum)
}

// HandleRecent handles GET /v1/analytics/recent.
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	records, err := h.service.Recent(ctx, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if records == nil {
		records = []models.TraceRecord{}
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}
