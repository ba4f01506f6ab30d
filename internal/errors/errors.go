// Package errors implements the taxonomy of §7: result-of-error values
// instead of exceptions, each carrying the HTTP status it maps to so
// handlers never have to re-derive it.
package errors

import (
	"fmt"
	"net/http"
)

// Kind is one of the abstract error kinds from the error handling design.
type Kind string

const (
	KindValidationFailed Kind = "validation_failed"
	KindConflict         Kind = "conflict"
	KindGenerationFailed Kind = "generation_failed"
	KindNotFound         Kind = "not_found"
	KindUpstream         Kind = "upstream"
	KindTimeout          Kind = "timeout"
	KindTransient        Kind = "transient"
	KindInternal         Kind = "internal"
	KindUnauthorized     Kind = "unauthorized"
	KindGone             Kind = "gone"
)

// AppError is the single error type every component boundary returns;
// the orchestrator and handlers never need to type-switch on anything else.
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.cause }

func newErr(kind Kind, status int, message string) *AppError {
	return &AppError{Kind: kind, Status: status, Message: message}
}

func NewBadRequestError(message string) *AppError {
	return newErr(KindValidationFailed, http.StatusBadRequest, message)
}

func NewConflictError(message string) *AppError {
	return newErr(KindConflict, http.StatusConflict, message)
}

func NewUnauthorizedError(message string) *AppError {
	return newErr(KindUnauthorized, http.StatusUnauthorized, message)
}

func NewGoneError(message string) *AppError {
	return newErr(KindGone, http.StatusGone, message)
}

func NewGenerationFailedError(message string) *AppError {
	return newErr(KindGenerationFailed, http.StatusInternalServerError, message)
}

func NewNotFoundError(message string) *AppError {
	return newErr(KindNotFound, http.StatusNotFound, message)
}

func NewUpstreamError(message string, cause error) *AppError {
	e := newErr(KindUpstream, http.StatusBadGateway, message)
	e.cause = cause
	return e
}

func NewTimeoutError(message string, cause error) *AppError {
	e := newErr(KindTimeout, http.StatusGatewayTimeout, message)
	e.cause = cause
	return e
}

func NewTransientError(message string, cause error) *AppError {
	e := newErr(KindTransient, http.StatusServiceUnavailable, message)
	e.cause = cause
	return e
}

func NewInternalServerError(message string) *AppError {
	return newErr(KindInternal, http.StatusInternalServerError, message)
}

// Wrap turns an arbitrary error into an internal AppError, preserving it as
// the cause, unless it already is one.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*AppError); ok {
		return ae
	}
	e := NewInternalServerError(err.Error())
	e.cause = err
	return e
}

// As extracts an *AppError from any error, falling back to wrapping it.
func As(err error) *AppError {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*AppError); ok {
		return ae
	}
	return Wrap(err)
}
