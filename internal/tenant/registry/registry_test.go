package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"leadgate/internal/tenant/models"
	dErrors "leadgate/pkg/domain-errors"
)

type RegistrySuite struct {
	suite.Suite
	ctx context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *RegistrySuite) tenant(clientID, credential, address string, tier models.Tier) *models.TenantConfig {
	t, err := models.NewTenantConfig(clientID, clientID+" Inc", credential, address, tier)
	s.Require().NoError(err)
	return t
}

func (s *RegistrySuite) TestNew() {
	s.Run("builds registry", func() {
		reg, err := New([]*models.TenantConfig{
			s.tenant("acme", "token-a", "-100111", models.TierPremium),
			s.tenant("globex", "token-b", "-100222", models.TierStandard),
		})
		s.Require().NoError(err)
		s.Equal(2, reg.Len())
	})

	s.Run("rejects duplicate client ids", func() {
		_, err := New([]*models.TenantConfig{
			s.tenant("acme", "token-a", "-100111", models.TierStandard),
			s.tenant("acme", "token-b", "-100222", models.TierStandard),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("rejects shared channel addresses", func() {
		_, err := New([]*models.TenantConfig{
			s.tenant("acme", "token-a", "-100111", models.TierStandard),
			s.tenant("globex", "token-b", "-100111", models.TierStandard),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("keeps incomplete tenants", func() {
		reg, err := New([]*models.TenantConfig{
			s.tenant("acme", "", "", models.TierStandard),
		})
		s.Require().NoError(err)
		s.Equal(1, reg.Len())
	})
}

func (s *RegistrySuite) TestResolve() {
	reg, err := New([]*models.TenantConfig{
		s.tenant("acme", "token-a", "-100111", models.TierPremium),
		s.tenant("broken", "", "", models.TierStandard),
	})
	s.Require().NoError(err)

	s.Run("known client", func() {
		t, err := reg.Resolve(s.ctx, "acme")
		s.Require().NoError(err)
		s.Equal("acme", t.ClientID)
		s.Equal(models.TierPremium, t.Tier)
	})

	s.Run("unknown client fails closed", func() {
		_, err := reg.Resolve(s.ctx, "nobody")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("incomplete credentials fail closed", func() {
		_, err := reg.Resolve(s.ctx, "broken")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *RegistrySuite) TestResolveByChannel() {
	reg, err := New([]*models.TenantConfig{
		s.tenant("acme", "token-a", "-100111", models.TierStandard),
	})
	s.Require().NoError(err)

	s.Run("known address", func() {
		t, err := reg.ResolveByChannel(s.ctx, "-100111")
		s.Require().NoError(err)
		s.Equal("acme", t.ClientID)
	})

	s.Run("unknown address", func() {
		_, err := reg.ResolveByChannel(s.ctx, "-999999")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *RegistrySuite) TestParse() {
	s.Run("valid document", func() {
		reg, err := Parse([]byte(`[
			{"clientId": "acme", "displayName": "Acme Plumbing", "channelCredential": "token-a", "channelAddress": "-100111", "tier": "premium"},
			{"clientId": "globex", "channelCredential": "token-b", "channelAddress": "-100222"}
		]`))
		s.Require().NoError(err)
		s.Equal(2, reg.Len())

		t, err := reg.Resolve(s.ctx, "globex")
		s.Require().NoError(err)
		s.Equal(models.TierStandard, t.Tier, "tier defaults to standard")
	})

	s.Run("malformed document", func() {
		_, err := Parse([]byte(`{"not": "an array"}`))
		s.Require().Error(err)
	})

	s.Run("invalid tier", func() {
		_, err := Parse([]byte(`[{"clientId": "acme", "tier": "platinum"}]`))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}
