package models

import (
	dErrors "leadgate/pkg/domain-errors"
)

// Tier classifies a tenant's service level. Premium tenants get larger
// intake budgets; the tier is also recorded on every TraceRecord for
// revenue reporting.
type Tier string

const (
	TierPremium  Tier = "premium"
	TierStandard Tier = "standard"
)

func (t Tier) IsValid() bool {
	return t == TierPremium || t == TierStandard
}

// TenantConfig is the static per-client delivery configuration.
//
// Invariants:
//   - ClientID is non-empty and unique across the registry
//   - ChannelAddress is unique across the registry (claim callbacks carry
//     only the originating chat, so the address must map to one tenant)
//   - Tier is premium or standard
//
// A config missing ChannelCredential or ChannelAddress is retained for
// operator visibility but fails closed on resolution: the tenant is
// treated as non-existent for intake purposes.
type TenantConfig struct {
	ClientID    string `json:"clientId"`
	DisplayName string `json:"displayName"`

	// ChannelCredential is the bot token used to deliver to this tenant.
	// Never serialized.
	ChannelCredential string `json:"-"`

	// ChannelAddress is the opaque destination (chat id) messages go to.
	ChannelAddress string `json:"channelAddress"`

	Tier Tier `json:"tier"`
}

// Usable reports whether the tenant has everything needed for delivery.
func (c *TenantConfig) Usable() bool {
	return c.ChannelCredential != "" && c.ChannelAddress != ""
}

// NewTenantConfig validates construction invariants. Missing channel
// fields are allowed here (the registry fails closed at resolve time);
// a missing client id or bad tier is a configuration defect.
func NewTenantConfig(clientID, displayName, credential, address string, tier Tier) (*TenantConfig, error) {
	if clientID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant client id cannot be empty")
	}
	if tier == "" {
		tier = TierStandard
	}
	if !tier.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "invalid tier %q for client %s", tier, clientID)
	}
	return &TenantConfig{
		ClientID:          clientID,
		DisplayName:       displayName,
		ChannelCredential: credential,
		ChannelAddress:    address,
		Tier:              tier,
	}, nil
}
