// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// ErrNotFound marks a lookup that produced nothing.
	ErrNotFound = errors.New("not found")

	// ErrReferentialGap is returned when a record points at a case that cannot be found.
	ErrReferentialGap = errors.New("case not found for notification")

	// Input errors.
	ErrInvalidInput = errors.New("invalid input")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// MutationError describes a failed POST or PATCH. Status is zero when the request
// never produced a response.
type MutationError struct {
	Err      error
	Method   string
	Endpoint string
	Body     string
	Status   int
}

func (e *MutationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s failed", e.Method, e.Endpoint)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		fmt.Fprintf(&b, ": %s", body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// Endpoint returns the failing endpoint of a mutation error, or "" if err is not one.
func Endpoint(err error) string {
	var mutationErr *MutationError
	if errors.As(err, &mutationErr) {
		return mutationErr.Endpoint
	}
	return ""
}
