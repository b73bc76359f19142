package types

import (
	"errors"
	"fmt"
	"net/http"
)

// CustomError is an HTTP-level failure raised by middleware and rendered by the
// global error handler.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Kind classifies a backend failure so callers can branch on it.
type Kind string

const (
	KindConfigMissing    Kind = "config_missing"
	KindSchemaMissing    Kind = "schema_missing"
	KindPermissionDenied Kind = "permission_denied"
	KindNotFound         Kind = "not_found"
	KindConflict         Kind = "conflict"
	KindValidation       Kind = "validation"
	KindBackend          Kind = "backend"
)

// Error is the only error type that crosses the gateway boundary.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// Sentinels for errors.Is; they match any *Error of the same Kind.
var (
	ErrConfigMissing    = &Error{Kind: KindConfigMissing, Message: "backend configuration is missing"}
	ErrSchemaMissing    = &Error{Kind: KindSchemaMissing, Message: "database schema is missing"}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied, Message: "permission denied"}
	ErrNotFound         = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict         = &Error{Kind: KindConflict, Message: "conflict"}
	ErrValidation       = &Error{Kind: KindValidation, Message: "validation failed"}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality so wrapped errors match the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds an *Error for op.
func NewError(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf returns the Kind of err, KindBackend for foreign errors and "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindBackend
}

// StatusFor maps a Kind to the HTTP status the API reports it with.
func StatusFor(kind Kind) int {
	switch kind {
	case "":
		return http.StatusOK
	case KindConfigMissing, KindSchemaMissing:
		return http.StatusServiceUnavailable
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
