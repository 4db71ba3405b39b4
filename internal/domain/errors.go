package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError is a client input problem. The request is rejected and
// nothing is persisted.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalidf builds a ValidationError from a format string.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that the addressed resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s could not be found", e.Resource)
	}
	return fmt.Sprintf("%s %s could not be found", e.Resource, e.ID)
}

// OperationNotPermittedError is returned when a mutating or single-item
// operation reaches a controller mounted under a parent resource.
type OperationNotPermittedError struct {
	Op string
}

func (e *OperationNotPermittedError) Error() string {
	if e.Op == "" {
		return "operation not permitted"
	}
	return fmt.Sprintf("operation not permitted: %s", e.Op)
}

// ConflictError means the record changed between read and save.
type ConflictError struct {
	UUID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("replication controller %s was modified concurrently", e.UUID)
}

// HTTPStatus maps an error from this package onto a status code.
// Anything unrecognised is a server error.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		np *OperationNotPermittedError
		ce *ConflictError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &np):
		return http.StatusForbidden
	case errors.As(err, &ce):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
