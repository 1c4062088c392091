package models

import (
	"strings"

	dErrors "leadgate/pkg/domain-errors"
)

// Lead is one captured service inquiry, normalized from a raw submission.
//
// Invariants:
//   - Name, Phone, and Service are non-empty after whitespace trimming
//   - City is always set: explicit value, derived from the address, or
//     "Unknown"
//   - Optional fields that are empty after trimming are omitted entirely
type Lead struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Message string `json:"message,omitempty"`
}

// UnknownCity is used when neither an explicit city nor a derivable
// address segment is available.
const UnknownCity = "Unknown"

// NewLead validates and normalizes a raw submission into a Lead. All
// fields are trimmed; a missing required field is a validation failure,
// never a partial record. Pure and deterministic.
func NewLead(name, phone, service, address, city, message string) (*Lead, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	service = strings.TrimSpace(service)
	address = strings.TrimSpace(address)
	city = strings.TrimSpace(city)
	message = strings.TrimSpace(message)

	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "missing required field: name")
	}
	if phone == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "missing required field: phone")
	}
	if service == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "missing required field: service")
	}

	if city == "" {
		city = DeriveCity(address)
	}

	return &Lead{
		Name:    name,
		Phone:   phone,
		Service: service,
		Address: address,
		City:    city,
		Message: message,
	}, nil
}

// DeriveCity extracts a city from the last non-empty comma-separated
// segment of an address. An explicit city always wins over derivation;
// callers only derive when no city was supplied.
func DeriveCity(address string) string {
	if address == "" {
		return UnknownCity
	}
	segments := strings.Split(address, ",")
	for i := len(segments) - 1; i >= 0; i-- {
		if seg := strings.TrimSpace(segments[i]); seg != "" {
			return seg
		}
	}
	return UnknownCity
}

// PlaceholderLead stands in for the lead fields on FAILED records written
// before validation succeeded, keeping rejected intents auditable.
func PlaceholderLead() *Lead {
	return &Lead{Name: "Unknown", Phone: "Unknown", Service: "Unknown"}
}
