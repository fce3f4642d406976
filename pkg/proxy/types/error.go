package types

import (
	"awqat-hq/gateway/pkg/upstream"
)

// ErrorResponse is the JSON body of every non-2xx gateway response.
//
// UpstreamStatus and UpstreamError are present only when the upstream
// answered with an error status. UpstreamError is the upstream's JSON error
// body when it is short enough, otherwise a text excerpt.
type ErrorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
	UpstreamError  any    `json:"upstreamError,omitempty"`
}

// Client-facing messages.
const (
	MessageCORS     = "Not allowed by CORS"
	MessageInternal = "Internal server error"
	MessageRate     = "Too many requests"
	MessageBusy     = "Server busy"
)

// NewMissingParamError reports a required query parameter that is absent or
// empty.
func NewMissingParamError(name string) *ErrorResponse {
	return &ErrorResponse{Error: "Missing query param: " + name}
}

// NewUpstreamError builds the 502 body for a failed upstream fetch. Only
// upstream status failures carry diagnostics; transport, decode and session
// failures get the generic message alone.
func NewUpstreamError(message string, err error) *ErrorResponse {
	resp := &ErrorResponse{Error: message}

	if status := upstream.StatusOf(err); status != 0 {
		resp.UpstreamStatus = status
		resp.UpstreamError = upstream.DetailOf(err)
	}
	return resp
}

// NewCORSError is the body for a request from a foreign origin.
func NewCORSError() *ErrorResponse {
	return &ErrorResponse{Error: MessageCORS}
}

// NewServerError is the body for a recovered panic.
func NewServerError() *ErrorResponse {
	return &ErrorResponse{Error: MessageInternal}
}

// NewRateLimitError is the body for a throttled client.
func NewRateLimitError() *ErrorResponse {
	return &ErrorResponse{Error: MessageRate}
}

// NewBusyError is the body for a request refused by the in-flight cap.
func NewBusyError() *ErrorResponse {
	return &ErrorResponse{Error: MessageBusy}
}
