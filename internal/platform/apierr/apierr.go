package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation           = "validation_error"
	CodeDataUnavailable      = "data_unavailable"
	CodeInsufficientQuantity = "insufficient_quantity"
	CodeNotFound             = "not_found"
	CodeUnauthorized         = "unauthorized"
	CodeForbidden            = "forbidden"
	CodeConflict             = "conflict"
	CodeInternal             = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(err error) *Error {
	return New(http.StatusBadRequest, CodeValidation, err)
}

// DataUnavailable marks a failed fetch or write against the backing store.
// Callers own the retry policy.
func DataUnavailable(err error) *Error {
	return New(http.StatusServiceUnavailable, CodeDataUnavailable, err)
}

func InsufficientQuantity(err error) *Error {
	return New(http.StatusConflict, CodeInsufficientQuantity, err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func Unauthorized(err error) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, err)
}

func Forbidden(err error) *Error {
	return New(http.StatusForbidden, CodeForbidden, err)
}

func Conflict(err error) *Error {
	return New(http.StatusConflict, CodeConflict, err)
}

// As extracts an *Error from err, or nil.
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an *Error with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
