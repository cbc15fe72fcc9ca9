package models

// Envelope wraps every JSON response of the API.
type Envelope struct {
	Success   bool   `json:"success"`
	InputType string `json:"input_type,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}
