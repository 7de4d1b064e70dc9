package backendtypes

import "time"

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HealthResponse for health endpoints
type HealthResponse struct {
	Status      string             `json:"status"`
	Version     string             `json:"version"`
	Uptime      string             `json:"uptime"`
	PlainErrors *PlainErrorsStatus `json:"plain_errors,omitempty"`
}

// PlainErrorsStatus summarizes the interception settings in effect.
type PlainErrorsStatus struct {
	Enabled            bool     `json:"enabled"`
	TriggerHeaders     []string `json:"trigger_headers"`
	MaxStackTraceLines int      `json:"max_stack_trace_lines"`
	CodeLinesContext   int      `json:"code_lines_context"`
	ClientErrors       string   `json:"client_errors"`
}

// MiddlewareInfo describes one layer of the server's middleware chain,
// listed outermost first.
type MiddlewareInfo struct {
	Order       int    `json:"order"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
