package notify

import (
	"fmt"
	"strings"
	"time"

	leadmodels "leadgate/internal/lead/models"
	tenantmodels "leadgate/internal/tenant/models"
)

const rule = "────────────────────────────"

// formatMessage renders the lead alert sent to tenant staff. HTML parse
// mode; the tap-to-call link is the actionable control for the phone
// number, the claim button is attached separately as an inline keyboard.
func formatMessage(lead *leadmodels.Lead, traceID string, tenant *tenantmodels.TenantConfig, now time.Time) string {
	address := lead.Address
	if address == "" {
		address = "N/A"
	}
	city := lead.City
	if city == "" {
		city = leadmodels.UnknownCity
	}
	note := lead.Message
	if note == "" {
		note = "No additional notes"
	}

	var b strings.Builder
	b.WriteString("⚡ <b>NEW LEAD INCOMING</b> ⚡\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "<b>👤 Name:</b> %s\n", escapeHTML(lead.Name))
	fmt.Fprintf(&b, "<b>📍 Address:</b> %s\n", escapeHTML(address))
	fmt.Fprintf(&b, "<b>🧾 Trace:</b> %s\n", traceID)
	if tenant.DisplayName != "" {
		fmt.Fprintf(&b, "<b>🏷 Client:</b> %s\n", escapeHTML(tenant.DisplayName))
	}
	fmt.Fprintf(&b, "<b>🏙 City:</b> %s\n", escapeHTML(city))
	fmt.Fprintf(&b, "<b>🛠 Service:</b> %s\n", escapeHTML(lead.Service))
	fmt.Fprintf(&b, "<b>💬 Note:</b> %s\n", escapeHTML(note))
	b.WriteString("\n")
	fmt.Fprintf(&b, "<b>📞 Action:</b> <a href=\"tel:%s\">TAP TO CALL NOW</a>\n", escapeHTML(lead.Phone))
	b.WriteString(UnclaimedMarker + "\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "<i>⏱ Sent via Leadgate @ %s</i>", now.UTC().Format(time.RFC3339))
	return b.String()
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeHTML guards user-supplied fields against breaking the HTML parse
// mode. Telegram only recognizes these three entities.
func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
