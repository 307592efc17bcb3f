package speed

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed matches every *StatusError.
	ErrRequestFailed = errors.New("request failed")

	// ErrMalformedResponse is returned when a successful response body does
	// not decode into Settings.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError reports a response whose status code is outside 2xx.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s failed with status %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRequestFailed
}
