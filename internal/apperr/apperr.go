// Package apperr defines the error kinds shared by services and handlers.
//
// Services return *Error values (or wrap them with %w); handlers translate
// them into HTTP status codes with Status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
)

// FieldErrors maps a request field to its validation messages.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

type Error struct {
	Kind    error
	Message string
	Fields  FieldErrors
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

func New(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func Validation(fields FieldErrors) error {
	return &Error{Kind: ErrValidation, Message: "Validation error", Fields: fields}
}

func Invalid(msg string) error { return New(ErrValidation, msg) }

func Conflict(msg string) error { return New(ErrConflict, msg) }

func NotFound(what string) error { return New(ErrNotFound, what+" not found") }

func Forbidden(msg string) error { return New(ErrForbidden, msg) }

func Unauthorized(msg string) error { return New(ErrUnauthorized, msg) }

func InvalidTransition(from, to string) error {
	return New(ErrInvalidTransition, fmt.Sprintf("Cannot change status from %s to %s", from, to))
}

// Status maps an error to the HTTP status code it should be reported with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message; unknown errors are not leaked.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return "Internal server error"
}

func Fields(err error) FieldErrors {
	var e *Error
	if errors.As(err, &e) && !e.Fields.Empty() {
		return e.Fields
	}
	return nil
}

// IsUniqueViolation reports whether err comes from a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key value") ||
		strings.Contains(s, "unique constraint")
}

// IsNotFound reports whether err is a missing-row error from gorm.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
