package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidResponse indicates the directory returned something that is not a
// well-formed HTTP response for this API.
var ErrInvalidResponse = errors.New("invalid server response")

// ServerError is returned for any non-2xx directory response.
type ServerError struct {
	// StatusCode is the HTTP status reported by the directory.
	StatusCode int
	// Messages holds server-provided diagnostics, when present.
	Messages []string
}

func (e *ServerError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("server error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

// DecodeError wraps a failure to decode a directory response body, including
// timestamp parse failures.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
