// Package apierror holds the error envelopes every 4xx/5xx response uses.
// Handlers map typed service errors to these; raw DB or driver errors never
// reach a client.
package apierror

// APIError is the single-message envelope (stock conflicts, bad folios,
// unknown IDs).
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries per-field messages from request binding.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
