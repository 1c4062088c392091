package claim

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"leadgate/internal/lead/models"
	"leadgate/internal/lead/store"
	"leadgate/internal/notify"
	tenantmodels "leadgate/internal/tenant/models"
	"leadgate/internal/tenant/registry"
	dErrors "leadgate/pkg/domain-errors"
)

// fakeNotifier captures edit and acknowledgment calls.
type fakeNotifier struct {
	edits        []string
	editMessages []int64
	answers      []string
}

func (n *fakeNotifier) EditMessageText(_ context.Context, _ *tenantmodels.TenantConfig, _ string, messageID int64, text string) error {
	n.edits = append(n.edits, text)
	n.editMessages = append(n.editMessages, messageID)
	return nil
}

func (n *fakeNotifier) AnswerCallback(_ context.Context, _ *tenantmodels.TenantConfig, callbackID string) error {
	n.answers = append(n.answers, callbackID)
	return nil
}

type ReconcileSuite struct {
	suite.Suite
	store    *store.InMemory
	notifier *fakeNotifier
	service  *Service
	ctx      context.Context
}

func TestReconcileSuite(t *testing.T) {
	suite.Run(t, new(ReconcileSuite))
}

func (s *ReconcileSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	acme, err := tenantmodels.NewTenantConfig("acme", "Acme Plumbing", "token-a", "-100111", tenantmodels.TierStandard)
	s.Require().NoError(err)
	reg, err := registry.New([]*tenantmodels.TenantConfig{acme})
	s.Require().NoError(err)

	s.store = store.NewInMemory()
	s.notifier = &fakeNotifier{}
	s.service = New(s.store, reg, s.notifier, logger)
	s.ctx = context.Background()

	s.Require().NoError(s.store.Append(s.ctx, &models.TraceRecord{
		TraceID:           "L-CLAIM0001",
		ClientID:          "acme",
		Status:            models.StatusDelivered,
		Timestamp:         time.Now().UTC(),
		Lead:              models.Lead{Name: "Jane", Phone: "555-0100", Service: "Plumbing"},
		ProviderMessageID: 42,
	}))
}

func (s *ReconcileSuite) callback() notify.Callback {
	return notify.Callback{
		ID:             "cb-1",
		Data:           notify.ClaimToken("L-CLAIM0001"),
		ChannelAddress: "-100111",
		MessageID:      42,
		MessageText:    "lead\n" + notify.UnclaimedMarker,
	}
}

func (s *ReconcileSuite) TestFirstClaimTransitions() {
	err := s.service.Reconcile(s.ctx, s.callback())
	s.Require().NoError(err)

	rec, err := s.store.FindByTrace(s.ctx, "L-CLAIM0001")
	s.Require().NoError(err)
	s.True(rec.Claimed)

	s.Require().Len(s.notifier.edits, 1)
	s.Contains(s.notifier.edits[0], notify.ClaimedMarker)
	s.NotContains(s.notifier.edits[0], notify.UnclaimedMarker)
	s.Equal([]int64{42}, s.notifier.editMessages)
	s.Equal([]string{"cb-1"}, s.notifier.answers)
}

func (s *ReconcileSuite) TestRepeatClaimIsIdempotent() {
	s.Require().NoError(s.service.Reconcile(s.ctx, s.callback()))
	s.Require().NoError(s.service.Reconcile(s.ctx, s.callback()))

	rec, err := s.store.FindByTrace(s.ctx, "L-CLAIM0001")
	s.Require().NoError(err)
	s.True(rec.Claimed)

	s.Len(s.notifier.edits, 1, "message edited once")
	s.Len(s.notifier.answers, 2, "every press acknowledged")
}

func (s *ReconcileSuite) TestMalformedToken() {
	cb := s.callback()
	cb.Data = "not-a-claim-token"

	err := s.service.Reconcile(s.ctx, cb)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Empty(s.notifier.edits)
	s.Empty(s.notifier.answers)
}

func (s *ReconcileSuite) TestUnknownTraceAckedWithoutError() {
	cb := s.callback()
	cb.Data = notify.ClaimToken("L-NEVERSEEN")

	err := s.service.Reconcile(s.ctx, cb)
	s.Require().NoError(err)
	s.Empty(s.notifier.edits)
	s.Equal([]string{"cb-1"}, s.notifier.answers, "spinner still cleared")
}

func (s *ReconcileSuite) TestUnknownChannelSkipsVisualUpdate() {
	cb := s.callback()
	cb.ChannelAddress = "-999999"

	err := s.service.Reconcile(s.ctx, cb)
	s.Require().NoError(err)

	// The durable flag flip is authoritative even without a tenant.
	rec, err := s.store.FindByTrace(s.ctx, "L-CLAIM0001")
	s.Require().NoError(err)
	s.True(rec.Claimed)
	s.Empty(s.notifier.edits)
	s.Empty(s.notifier.answers)
}

func (s *ReconcileSuite) TestMissingMessageIDSkipsEdit() {
	cb := s.callback()
	cb.MessageID = 0

	err := s.service.Reconcile(s.ctx, cb)
	s.Require().NoError(err)

	rec, err := s.store.FindByTrace(s.ctx, "L-CLAIM0001")
	s.Require().NoError(err)
	s.True(rec.Claimed)
	s.Empty(s.notifier.edits)
	s.Equal([]string{"cb-1"}, s.notifier.answers)
}
