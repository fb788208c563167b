// Package apierror provides the domain error kinds raised by services and the
// error envelope returned to clients. Handlers translate an *Error into an HTTP
// status through HTTPStatus; internal details (DB errors, stack traces) are
// never serialized.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindAlreadyOpen Kind = "already_open"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindInternal    Kind = "internal"
)

// Error is the single error type returned by services.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Sentinels for errors.Is.
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrAlreadyOpen = &Error{Kind: KindAlreadyOpen}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrConflict    = &Error{Kind: KindConflict}
	ErrInternal    = &Error{Kind: KindInternal}
)

// ── Constructors ──────────────────────────────────────────────────────────────

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// AlreadyOpen names the session that is already open for the user.
func AlreadyOpen(sessionID string) *Error {
	return &Error{
		Kind:    KindAlreadyOpen,
		Message: "a cash session is already open for this user",
		Details: map[string]any{"session_id": sessionID},
	}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Internal wraps an infrastructure error. The wrapped error is logged, never
// sent to the client.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to its response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAlreadyOpen, KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ── Response envelopes ────────────────────────────────────────────────────────

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Code    string         `json:"code,omitempty"`
	Detail  string         `json:"detail"`
	Details map[string]any `json:"details,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// FromError builds the envelope for a service error. Internal errors get a
// generic message.
func FromError(err error) *APIError {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return &APIError{Code: string(KindInternal), Detail: "internal server error"}
	}
	return &APIError{Code: string(e.Kind), Detail: e.Message, Details: e.Details}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Code: string(KindValidation), Detail: "validation error", Fields: fields}
}
