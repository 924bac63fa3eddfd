package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes rendered to clients.
const (
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeNotFound              = "NOT_FOUND"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeConflict              = "CONFLICT"
	CodeBadGateway            = "BACKEND_UNAVAILABLE"
	CodeProviderDisabled      = "OAUTH_PROVIDER_DISABLED"
	CodeInternal              = "INTERNAL_ERROR"
	CodeDependencyUnavailable = "DEPENDENCY_UNAVAILABLE"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewBadGateway reports an upstream failure the caller cannot fix.
func NewBadGateway(message string, err error) error {
	return &DomainError{
		Code:       CodeBadGateway,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewProviderDisabled reports an OAuth provider that is not configured.
func NewProviderDisabled(provider string, err error) error {
	return &DomainError{
		Code:       CodeProviderDisabled,
		Message:    fmt.Sprintf("sign in with %s is not available", provider),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"provider": provider},
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// StatusCoder is implemented by errors that carry an HTTP status, such as
// upstream backend errors.
type StatusCoder interface {
	StatusCode() int
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var coded StatusCoder
	if errors.As(err, &coded) {
		return fromStatus(coded.StatusCode(), err)
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func fromStatus(status int, err error) *DomainError {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &DomainError{Code: CodeValidationFailed, Message: err.Error(), HTTPStatus: http.StatusBadRequest, Err: err}
	case http.StatusUnauthorized:
		return &DomainError{Code: CodeUnauthorized, Message: "session expired", HTTPStatus: http.StatusUnauthorized, Err: err}
	case http.StatusForbidden:
		return &DomainError{Code: CodeForbidden, Message: err.Error(), HTTPStatus: http.StatusForbidden, Err: err}
	case http.StatusNotFound:
		return &DomainError{Code: CodeNotFound, Message: err.Error(), HTTPStatus: http.StatusNotFound, Err: err}
	case http.StatusConflict:
		return &DomainError{Code: CodeConflict, Message: err.Error(), HTTPStatus: http.StatusConflict, Err: err}
	}
	if status >= 500 {
		return &DomainError{Code: CodeBadGateway, Message: "backend request failed", HTTPStatus: http.StatusBadGateway, Err: err}
	}
	return &DomainError{Code: CodeInternal, Message: "internal server error", HTTPStatus: http.StatusInternalServerError, Err: err}
}

func MapError(err error) error {
	return ToDomainError(err)
}
