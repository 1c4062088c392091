// Package handler exposes the operator token exchange endpoint.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "leadgate/pkg/domain-errors"
	"leadgate/pkg/platform/httputil"
	"leadgate/pkg/requestcontext"
	"leadgate/pkg/secrets"
)

// TokenIssuer mints ops bearer tokens.
type TokenIssuer interface {
	GenerateOpsToken(expiresIn time.Duration) (string, error)
}

// tokenTTL is how long an issued ops token stays valid.
const tokenTTL = time.Hour

type Handler struct {
	issuer         TokenIssuer
	credentialHash string
	logger         *slog.Logger
}

func New(issuer TokenIssuer, credentialHash string, logger *slog.Logger) *Handler {
	return &Handler{issuer: issuer, credentialHash: credentialHash, logger: logger}
}

// Register mounts the ops token route on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/ops/token", h.HandleToken)
}

type tokenRequest struct {
	Credential string `json:"credential"`
}

func (req *tokenRequest) Validate() error {
	if req.Credential == "" {
		return dErrors.New(dErrors.CodeValidation, "credential is required")
	}
	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// HandleToken exchanges the ops bootstrap credential for a bearer token.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[tokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := secrets.Verify(req.Credential, h.credentialHash); err != nil {
		h.logger.WarnContext(ctx, "ops credential rejected",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credential"))
		return
	}

	token, err := h.issuer.GenerateOpsToken(tokenTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to mint ops token",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint token"))
		return
	}

	h.logger.InfoContext(ctx, "ops token issued",
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(tokenTTL.Seconds()),
	})
}
