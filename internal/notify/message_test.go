package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	leadmodels "leadgate/internal/lead/models"
	tenantmodels "leadgate/internal/tenant/models"
)

type MessageSuite struct {
	suite.Suite
	tenant *tenantmodels.TenantConfig
	now    time.Time
}

func TestMessageSuite(t *testing.T) {
	suite.Run(t, new(MessageSuite))
}

func (s *MessageSuite) SetupTest() {
	tenant, err := tenantmodels.NewTenantConfig("acme", "Acme Plumbing", "token", "-100111", tenantmodels.TierStandard)
	s.Require().NoError(err)
	s.tenant = tenant
	s.now = time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC)
}

func (s *MessageSuite) TestFormatMessage() {
	lead := &leadmodels.Lead{
		Name:    "Jane Doe",
		Phone:   "555-0100",
		Service: "Plumbing",
		Address: "12 Elm St, Springfield",
		City:    "Springfield",
		Message: "pipe burst",
	}

	got := formatMessage(lead, "L-ABC123XYZ", s.tenant, s.now)

	s.Contains(got, "NEW LEAD INCOMING")
	s.Contains(got, "<b>👤 Name:</b> Jane Doe")
	s.Contains(got, "<b>📍 Address:</b> 12 Elm St, Springfield")
	s.Contains(got, "<b>🧾 Trace:</b> L-ABC123XYZ")
	s.Contains(got, "<b>🏷 Client:</b> Acme Plumbing")
	s.Contains(got, "<b>🏙 City:</b> Springfield")
	s.Contains(got, "<b>🛠 Service:</b> Plumbing")
	s.Contains(got, "<b>💬 Note:</b> pipe burst")
	s.Contains(got, `<a href="tel:555-0100">TAP TO CALL NOW</a>`)
	s.Contains(got, UnclaimedMarker)
	s.Contains(got, "Sent via Leadgate @ 2026-08-29T15:04:05Z")
}

func (s *MessageSuite) TestFormatMessageFallbacks() {
	lead := &leadmodels.Lead{Name: "Jane", Phone: "555-0100", Service: "Roofing"}

	got := formatMessage(lead, "L-ABC123XYZ", s.tenant, s.now)

	s.Contains(got, "<b>📍 Address:</b> N/A")
	s.Contains(got, "<b>🏙 City:</b> Unknown")
	s.Contains(got, "<b>💬 Note:</b> No additional notes")
}

func (s *MessageSuite) TestFormatMessageEscapesUserFields() {
	lead := &leadmodels.Lead{
		Name:    "<script>alert(1)</script>",
		Phone:   "555-0100",
		Service: "Repairs & Sons",
		City:    "Springfield",
	}

	got := formatMessage(lead, "L-ABC123XYZ", s.tenant, s.now)

	s.Contains(got, "&lt;script&gt;alert(1)&lt;/script&gt;")
	s.Contains(got, "Repairs &amp; Sons")
	s.NotContains(got, "<script>")
}

func (s *MessageSuite) TestFormatMessageOmitsEmptyClientName() {
	tenant, err := tenantmodels.NewTenantConfig("acme", "", "token", "-100111", tenantmodels.TierStandard)
	s.Require().NoError(err)
	lead := &leadmodels.Lead{Name: "Jane", Phone: "555-0100", Service: "Roofing"}

	got := formatMessage(lead, "L-ABC123XYZ", tenant, s.now)

	s.NotContains(got, "Client:")
}
