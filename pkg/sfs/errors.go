package sfs

import (
	"errors"
	"fmt"
)

var (
	// ErrNoValue is returned by extractors when the field is missing or cannot be converted.
	ErrNoValue = errors.New("sfs: no value")
	// ErrUnexpectedPayload is returned when the server answers with a JSON shape other than the one expected.
	ErrUnexpectedPayload = errors.New("sfs: unexpected payload")
	// ErrUnknownMethod is returned by Invoke when every candidate name was rejected.
	ErrUnknownMethod = errors.New("sfs: unknown method")
	// ErrInvalidArgument is returned when a caller passes an argument the server cannot accept.
	ErrInvalidArgument = errors.New("sfs: invalid argument")
)

// StatusError is returned for any non-2xx HTTP response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s returned status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}
