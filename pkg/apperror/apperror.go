// Package apperror defines the error kinds surfaced by the assistant and the
// user-facing message attached to each of them.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindAuthentication  Kind = "authentication"
	KindParse           Kind = "parse"
	KindNotFound        Kind = "not_found"
	KindCollaborator    Kind = "collaborator"
	KindStateCorruption Kind = "state_corruption"
	KindBadRequest      Kind = "bad_request"
)

// Error carries a message that is safe to show to the user. Err keeps the
// underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or an empty Kind.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage extracts the user-facing message, falling back when err does not
// carry one.
func UserMessage(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

var (
	ErrAuthenticationRequired = New(KindAuthentication, "Your Google session has expired. Please log in again.")
)
