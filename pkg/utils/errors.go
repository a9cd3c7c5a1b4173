package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"webshot/internal/rendering"
)

// CustomError represents a custom application error
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Common error constructors
func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

func NewNotFoundError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusNotFound,
		Message: message,
	}
}

func NewInternalServerError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

func NewTimeoutError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusGatewayTimeout,
		Message: message,
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "Validation failed",
		Detail:  detail,
	}
}

func NewServiceUnavailableError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusServiceUnavailable,
		Message: message,
	}
}

// Rendering specific errors
func NewRenderError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadGateway,
		Message: "Rendering failed",
		Detail:  detail,
	}
}

func NewLLMError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadGateway,
		Message: "LLM processing failed",
		Detail:  detail,
	}
}

// FromRenderError maps an error returned by the rendering client to an HTTP error
func FromRenderError(err error) *CustomError {
	var custom *CustomError
	if errors.As(err, &custom) {
		return custom
	}

	var invalid *rendering.InvalidInputError
	if errors.As(err, &invalid) {
		return NewBadRequestError(invalid.Reason)
	}

	if apiErr, ok := rendering.AsRenderAPIError(err); ok {
		return NewRenderError(apiErr.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("Rendering service did not respond in time")
	}

	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: "Rendering failed",
		Detail:  err.Error(),
	}
}
