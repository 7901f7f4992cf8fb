package errx

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so callers can word user-facing messages
// differently per class without inspecting the wrapped error.
type Kind string

const (
	// KindMalformedResponse marks model output that could not be turned into
	// a query: unparseable JSON, or JSON of the wrong shape.
	KindMalformedResponse Kind = "malformed_response"
	// KindService marks a failure reported by a remote service itself
	// (non-success status, or a success body carrying an error payload).
	KindService Kind = "service_error"
	// KindNetwork marks a transport-level failure with no structured error body.
	KindNetwork Kind = "network_error"
	// KindInternal covers everything else.
	KindInternal Kind = "internal_error"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RephraseMessage is shown when the model reply could not be understood.
	RephraseMessage = "AI couldn't understand the question. Try rephrasing."
	// NetworkErrorMessage describes transport failures against the feature service.
	NetworkErrorMessage = "Network error"
	// AIUnreachableMessage is shown when the model endpoint cannot be reached
	// at all; the underlying dial detail stays out of the transcript.
	AIUnreachableMessage = "Couldn't reach the AI service. Check your connection and try again."
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
)

// Error wraps an underlying error with a classification, an HTTP-ish status
// and a message safe to show in a transcript.
type Error struct {
	Err     error
	Kind    Kind
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error with the provided information.
func New(err error, kind Kind, status int, message string) *Error {
	return &Error{
		Err:     err,
		Kind:    kind,
		Status:  status,
		Message: message,
	}
}

// Malformed builds a MalformedResponse error carrying the rephrase suggestion.
func Malformed(err error) *Error {
	return New(err, KindMalformedResponse, http.StatusUnprocessableEntity, RephraseMessage)
}

// Service builds a service error carrying the remote service's own message,
// or a generic one embedding the status when the service gave none.
func Service(err error, status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("API request failed (%d)", status)
	}
	return New(err, KindService, status, message)
}

// Network builds a transport-level error.
func Network(err error, status int) *Error {
	return New(err, KindNetwork, status, fmt.Sprintf("%s: %d", NetworkErrorMessage, status))
}

// KindOf returns the classification of err, or KindInternal when err carries
// no *Error in its chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// UserMessage returns the transcript-safe message for err, falling back to
// the generic system message for unclassified errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return SystemErrorMessage
}

// Is reports whether the target matches this error's kind or the wrapped error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return errors.Is(e.Err, target)
}

// As allows casting to Error or the wrapped error in a chain.
func (e *Error) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}
	return false
}
