package types

import "time"

// SuccessEnvelope wraps every 2xx payload.
type SuccessEnvelope struct {
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// APIError is the public shape of a failure. Retryable tells the dashboard
// whether repeating the same request may succeed.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Details   any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error     APIError  `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}
