package completion

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when no API key is configured
	ErrMissingAPIKey = errors.New("API key not configured")
	// ErrEmptyContext is returned when there are no messages to send
	ErrEmptyContext = errors.New("no messages to send")
	// ErrEmptyChoices is returned when a well-formed response carries no choices
	ErrEmptyChoices = errors.New("no response choices returned")
)

// UpstreamError reports a non-success HTTP status from the completions API
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completions API returned status %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError reports a response body that could not be decoded
type MalformedResponseError struct {
	Body string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed completions response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
