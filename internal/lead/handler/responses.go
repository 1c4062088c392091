package handler

// CaptureResponse is the fixed wire envelope for the intake endpoint.
// The form widget keys off success/traceId, so the shape is stable even
// across failure modes.
type CaptureResponse struct {
	Success bool   `json:"success"`
	TraceID string `json:"traceId"`
	Message string `json:"message,omitempty"`
	Client  string `json:"client,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse answers the intake health probe.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
