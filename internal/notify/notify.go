// Package notify delivers lead alerts to a tenant's messaging channel and
// exposes the channel's wire types. The concrete implementation speaks the
// Telegram Bot API; consumers depend on the Dispatcher interface defined
// where it is used.
package notify

import (
	"strings"

	dErrors "leadgate/pkg/domain-errors"
)

// Outcome is the result of one delivery attempt. Transport failures and
// provider rejections are data, not errors: the intake must still finish
// its bookkeeping either way.
type Outcome struct {
	OK                bool
	ProviderStatus    int
	ProviderMessageID int64
	Description       string
}

// Callback is a channel-originated action event, normalized from the
// provider's webhook payload. ChannelAddress identifies the originating
// chat; the callback carries no client id.
type Callback struct {
	ID             string
	Data           string
	ChannelAddress string
	MessageID      int64
	MessageText    string
}

// Claim tokens correlate a button press back to exactly one TraceRecord
// without a separate lookup table.
const claimTokenPrefix = "claim:"

// ClaimToken encodes a trace id into the callback payload format.
func ClaimToken(traceID string) string {
	return claimTokenPrefix + traceID
}

// ParseClaimToken extracts the trace id from a callback payload token.
func ParseClaimToken(data string) (string, error) {
	traceID, ok := strings.CutPrefix(data, claimTokenPrefix)
	if !ok || traceID == "" {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "malformed claim token %q", data)
	}
	return traceID, nil
}

// Status markers embedded in the rendered message. The reconciler swaps
// one for the other when editing the original notification.
const (
	UnclaimedMarker = "⚠️ Status: UNCLAIMED"
	ClaimedMarker   = "✅ Status: CLAIMED"
)

// MarkClaimed rewrites the unclaimed status marker in a delivered message
// text. Returns the input unchanged when the marker is absent (already
// edited, or a legacy message shape).
func MarkClaimed(text string) string {
	return strings.Replace(text, UnclaimedMarker, ClaimedMarker, 1)
}
