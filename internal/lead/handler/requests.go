package handler

import "leadgate/internal/lead/service"

// CaptureRequest is the HTTP request body for POST /v1/lead-capture.
// The form widget historically sent prefixed field names (leadName,
// leadPhone, serviceType); both spellings are accepted, prefixed wins
// only when the plain field is absent.
type CaptureRequest struct {
	ClientID string `json:"clientId"`

	Name     string `json:"name"`
	LeadName string `json:"leadName"`

	Phone     string `json:"phone"`
	LeadPhone string `json:"leadPhone"`

	Service     string `json:"service"`
	ServiceType string `json:"serviceType"`

	Address string `json:"address"`
	City    string `json:"city"`
	Message string `json:"message"`
}

// Input flattens the alias fields into the service-layer shape. Field
// validation itself belongs to the intake service so that rejected
// submissions still produce an audit record.
func (r *CaptureRequest) Input(headerClientID string) service.CaptureInput {
	clientID := r.ClientID
	if clientID == "" {
		clientID = headerClientID
	}
	return service.CaptureInput{
		ClientID: clientID,
		Name:     firstNonEmpty(r.Name, r.LeadName),
		Phone:    firstNonEmpty(r.Phone, r.LeadPhone),
		Service:  firstNonEmpty(r.Service, r.ServiceType),
		Address:  r.Address,
		City:     r.City,
		Message:  r.Message,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
