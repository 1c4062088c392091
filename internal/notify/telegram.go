package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	leadmodels "leadgate/internal/lead/models"
	tenantmodels "leadgate/internal/tenant/models"
	"leadgate/pkg/requestcontext"
)

// Telegram delivers lead alerts via the Telegram Bot API using each
// tenant's own bot credential. One outbound message per Send call; retry
// policy belongs to callers, not here.
type Telegram struct {
	apiBase string
	client  *http.Client
	logger  *slog.Logger
}

// NewTelegram constructs the dispatcher. The timeout bounds every
// outbound call; on timeout Send reports a failed outcome like any other
// transport fault.
func NewTelegram(apiBase string, timeout time.Duration, logger *slog.Logger) *Telegram {
	return &Telegram{
		apiBase: apiBase,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// telegramResponse is the provider's envelope for every method call.
type telegramResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
	Description string `json:"description"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// Send renders the lead into a channel message with an embedded claim
// button and delivers it to the tenant's channel. Any transport failure
// or non-success provider response comes back as Outcome.OK=false so the
// caller can still record a FAILED TraceRecord.
func (t *Telegram) Send(ctx context.Context, lead *leadmodels.Lead, traceID string, tenant *tenantmodels.TenantConfig) Outcome {
	payload := map[string]any{
		"chat_id":    tenant.ChannelAddress,
		"text":       formatMessage(lead, traceID, tenant, requestcontext.Now(ctx)),
		"parse_mode": "HTML",
		"reply_markup": inlineKeyboard{
			InlineKeyboard: [][]inlineButton{{
				{Text: "✅ CLAIM THIS LEAD", CallbackData: ClaimToken(traceID)},
			}},
		},
	}

	var resp telegramResponse
	status, err := t.call(ctx, tenant.ChannelCredential, "sendMessage", payload, &resp)
	if err != nil {
		return Outcome{OK: false, ProviderStatus: status, Description: err.Error()}
	}
	if !resp.OK {
		desc := resp.Description
		if desc == "" {
			desc = fmt.Sprintf("telegram error (%d)", status)
		}
		return Outcome{OK: false, ProviderStatus: status, Description: desc}
	}
	return Outcome{
		OK:                true,
		ProviderStatus:    status,
		ProviderMessageID: resp.Result.MessageID,
	}
}

// EditMessageText rewrites an already-sent message, used to flip the
// claim status marker.
func (t *Telegram) EditMessageText(ctx context.Context, tenant *tenantmodels.TenantConfig, channelAddress string, messageID int64, text string) error {
	payload := map[string]any{
		"chat_id":    channelAddress,
		"message_id": messageID,
		"text":       text,
	}
	var resp telegramResponse
	status, err := t.call(ctx, tenant.ChannelCredential, "editMessageText", payload, &resp)
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("edit message rejected (%d): %s", status, resp.Description)
	}
	return nil
}

// AnswerCallback acknowledges the button interaction so the client's
// loading indicator clears.
func (t *Telegram) AnswerCallback(ctx context.Context, tenant *tenantmodels.TenantConfig, callbackID string) error {
	payload := map[string]any{"callback_query_id": callbackID}
	var resp telegramResponse
	status, err := t.call(ctx, tenant.ChannelCredential, "answerCallbackQuery", payload, &resp)
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("answer callback rejected (%d): %s", status, resp.Description)
	}
	return nil
}

// call posts one Bot API method. The credential only ever appears in the
// URL path, never in logs.
func (t *Telegram) call(ctx context.Context, credential, method string, payload any, out *telegramResponse) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", t.apiBase, credential, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s transport: %w", method, err)
	}
	defer resp.Body.Close()

	t.logger.DebugContext(ctx, "telegram call",
		"method", method,
		"status", resp.StatusCode,
	)

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s response: %w", method, err)
	}
	return resp.StatusCode, nil
}
