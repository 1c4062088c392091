// Package registry resolves client identifiers to their delivery
// configuration. The registry is read-only at request time: it is built
// once at startup from a JSON tenants file and never mutated, so lookups
// need no locking.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"leadgate/internal/tenant/models"
	dErrors "leadgate/pkg/domain-errors"
)

// Registry is a process-wide static lookup table keyed by client id and,
// for claim reconciliation, by channel address.
type Registry struct {
	byClientID map[string]*models.TenantConfig
	byChannel  map[string]*models.TenantConfig
	logger     *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger sets a logger used to report unusable tenants at startup.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New builds a registry from tenant configs, enforcing startup invariants:
// unique client ids and unique channel addresses. A tenant sharing a
// channel address with another would make claim callbacks ambiguous, so
// that is a configuration error, not a request-time concern.
func New(tenants []*models.TenantConfig, opts ...Option) (*Registry, error) {
	r := &Registry{
		byClientID: make(map[string]*models.TenantConfig, len(tenants)),
		byChannel:  make(map[string]*models.TenantConfig, len(tenants)),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, t := range tenants {
		if t.ClientID == "" {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant with empty client id")
		}
		if _, exists := r.byClientID[t.ClientID]; exists {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "duplicate client id %s", t.ClientID)
		}
		r.byClientID[t.ClientID] = t

		if t.ChannelAddress != "" {
			if other, exists := r.byChannel[t.ChannelAddress]; exists {
				return nil, dErrors.Newf(dErrors.CodeInvariantViolation,
					"clients %s and %s share channel address", other.ClientID, t.ClientID)
			}
			r.byChannel[t.ChannelAddress] = t
		}

		if !t.Usable() && r.logger != nil {
			r.logger.Warn("tenant has incomplete channel credentials and will fail closed",
				"client_id", t.ClientID,
			)
		}
	}

	return r, nil
}

// Resolve returns the delivery configuration for a client id. Unknown
// clients and clients with incomplete credentials both fail closed with
// an unauthorized error; the messages differ for operator diagnosis.
func (r *Registry) Resolve(_ context.Context, clientID string) (*models.TenantConfig, error) {
	t, ok := r.byClientID[clientID]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeUnauthorized, "unknown client id %s", clientID)
	}
	if !t.Usable() {
		return nil, dErrors.Newf(dErrors.CodeUnauthorized, "incomplete credentials for client %s", clientID)
	}
	return t, nil
}

// ResolveByChannel returns the tenant owning a channel address. Claim
// callbacks carry only the originating chat, not a client id.
func (r *Registry) ResolveByChannel(_ context.Context, channelAddress string) (*models.TenantConfig, error) {
	t, ok := r.byChannel[channelAddress]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no tenant for channel address %s", channelAddress)
	}
	return t, nil
}

// Len reports how many tenants are registered.
func (r *Registry) Len() int {
	return len(r.byClientID)
}

// tenantFile is the on-disk shape of one registry entry. Credentials are
// decoded here and copied into the model, which never serializes them.
type tenantFile struct {
	ClientID          string `json:"clientId"`
	DisplayName       string `json:"displayName"`
	ChannelCredential string `json:"channelCredential"`
	ChannelAddress    string `json:"channelAddress"`
	Tier              string `json:"tier"`
}

// Load reads tenant configs from a JSON file (an array of entries).
func Load(path string, opts ...Option) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tenants file: %w", err)
	}
	return Parse(raw, opts...)
}

// Parse builds a registry from raw JSON. Split from Load so single-binary
// deployments can inject the document via environment.
func Parse(raw []byte, opts ...Option) (*Registry, error) {
	var entries []tenantFile
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode tenants: %w", err)
	}

	tenants := make([]*models.TenantConfig, 0, len(entries))
	for _, e := range entries {
		t, err := models.NewTenantConfig(
			strings.TrimSpace(e.ClientID),
			strings.TrimSpace(e.DisplayName),
			e.ChannelCredential,
			strings.TrimSpace(e.ChannelAddress),
			models.Tier(e.Tier),
		)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return New(tenants, opts...)
}
