package models

// APIError is the structured error detail carried on every error response.
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

// ErrorResponse is the error envelope. Success is always false so clients
// that branch on the success flag handle error bodies uniformly.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}
