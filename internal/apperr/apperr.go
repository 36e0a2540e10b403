// Package apperr holds the error taxonomy shared by services and HTTP handlers.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindBusinessRule
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindBusinessRule:
		return "business_rule"
	default:
		return "internal"
	}
}

// Error is a classified, localizable failure.
type Error struct {
	Kind    Kind
	Code    string
	Format  string
	Args    []interface{}
	Details interface{}
	Status  int
	cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf(e.Format, e.Args...)
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// Cause lets errors.Cause walk past the classification.
func (e *Error) Cause() error { return e.cause }

// WithDetails attaches a structured payload the caller can render.
func (e *Error) WithDetails(d interface{}) *Error {
	e.Details = d
	return e
}

// HTTPStatus maps the error to a response code.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindBusinessRule:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Def is a registered error template.
type Def struct {
	Kind   Kind
	Code   string
	Format string
	Status int
}

// New instantiates the template.
func (d Def) New(args ...interface{}) *Error {
	return &Error{Kind: d.Kind, Code: d.Code, Format: d.Format, Args: args, Status: d.Status}
}

// Wrap instantiates the template around a cause.
func (d Def) Wrap(cause error, args ...interface{}) *Error {
	e := d.New(args...)
	e.cause = cause
	return e
}

// Internal classifies an unexpected failure.
func Internal(cause error) *Error {
	return ErrInternal.Wrap(cause)
}

// As returns the classified error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err; unclassified errors are internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err was built from d.
func Is(err error, d Def) bool {
	e, ok := As(err)
	return ok && e.Code == d.Code
}
