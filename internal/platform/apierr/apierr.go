package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable codes returned to clients in the error envelope.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeEmptyPrompt       = "empty_prompt"
	CodeNoTopicsSelected  = "no_topics_selected"
	CodeGenerationFailed  = "generation_failed"
	CodeGenerationTimeout = "generation_timeout"
	CodeModelUnavailable  = "model_unavailable"
	CodeEnrollmentFailed  = "enrollment_failed"
	CodeNotFound          = "not_found"
	CodeUnauthorized      = "unauthorized"
	CodeUnavailable       = "unavailable"
	CodeInternal          = "internal_error"
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

// From returns the *Error carried by err, or a 500 internal_error wrapping it.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		if ae.Status == 0 {
			ae.Status = http.StatusInternalServerError
		}
		if ae.Code == "" {
			ae.Code = CodeInternal
		}
		return ae
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}
