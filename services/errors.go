package services

import (
	"errors"
	"fmt"
)

// ErrModelUnavailable is returned by model capabilities when no API key is
// configured.
var ErrModelUnavailable = errors.New("language model not configured")

// ValidationError is a malformed or out-of-range request. Its message is
// safe to show to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// FetchError means article content could not be retrieved. Reason is the
// user-facing explanation.
type FetchError struct {
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrSearchUnavailable is returned by searchers without a configured key.
var ErrSearchUnavailable = errors.New("search not configured")
