package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaxExcerpt bounds how much of an upstream error body is logged or returned
// to clients.
const MaxExcerpt = 500

// StatusError is returned when the upstream answered with a non-2xx status
// after the permitted auth retry.
type StatusError struct {
	// Path is the upstream path that was requested.
	Path string

	// StatusCode is the upstream HTTP status.
	StatusCode int

	// Body is the response body when it parsed as JSON, nil otherwise.
	Body json.RawMessage

	// Text is the raw response body.
	Text string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d: %s", e.Path, e.StatusCode, e.Excerpt())
}

// Excerpt returns the response body truncated to MaxExcerpt characters.
func (e *StatusError) Excerpt() string {
	return truncate(e.Text, MaxExcerpt)
}

// Detail returns the diagnostic value exposed to clients as "upstreamError":
// the parsed JSON body when it is short enough, otherwise a text excerpt.
// It returns nil for an empty body.
func (e *StatusError) Detail() any {
	if e.Body != nil && len(e.Body) <= MaxExcerpt {
		return e.Body
	}
	if e.Text == "" {
		return nil
	}
	return e.Excerpt()
}

// TransportError is returned when no response was obtained from the upstream.
type TransportError struct {
	// Path is the upstream path that was requested.
	Path string

	// Timeout is true when the request hit the client timeout or deadline.
	Timeout bool

	// Cause is the underlying network error.
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("upstream %s timed out: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("upstream %s unreachable: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// DecodeError is returned when a 2xx upstream body is not valid JSON.
type DecodeError struct {
	// Path is the upstream path that was requested.
	Path string

	// Raw is an excerpt of the offending body.
	Raw string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("upstream %s returned invalid JSON: %q", e.Path, e.Raw)
}

// StatusOf returns the upstream status carried by err, or 0 when err is not
// a status failure.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// DetailOf returns the Detail of the *StatusError carried by err, or nil.
func DetailOf(err error) any {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Detail()
	}
	return nil
}

func newStatusError(path string, status int, body []byte) *StatusError {
	e := &StatusError{Path: path, StatusCode: status, Text: string(body)}
	if len(body) > 0 && json.Valid(body) {
		e.Body = json.RawMessage(body)
	}
	return e
}

// truncate cuts s to at most n runes without splitting a character.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
