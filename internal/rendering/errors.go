package rendering

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError is returned by NewClient when required credentials are absent
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("rendering client misconfigured: %s must be set", strings.Join(e.Missing, " and "))
}

// InvalidInputError reports a request the caller can correct, such as a missing target
type InvalidInputError struct {
	Operation Operation
	Reason    string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s request: %s", e.Operation, e.Reason)
}

// RenderAPIError is returned when the rendering service answers with a non-200 status.
// Detail holds the compact JSON error body when it parsed, otherwise the raw text.
type RenderAPIError struct {
	Operation  Operation
	StatusCode int
	Detail     string
	Structured bool
	Messages   []string
}

func (e *RenderAPIError) Error() string {
	msg := fmt.Sprintf("API request failed with status code: %d", e.StatusCode)
	if e.Structured {
		return msg + ", details: " + e.Detail
	}
	return msg + ", response: " + e.Detail
}

// Message returns the first service-provided error message, falling back to Error()
func (e *RenderAPIError) Message() string {
	if len(e.Messages) > 0 {
		return e.Messages[0]
	}
	return e.Error()
}

// apiErrorBody is the error envelope used by the rendering service
type apiErrorBody struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Error string `json:"error"`
}

func newRenderAPIError(op Operation, status int, body []byte) *RenderAPIError {
	apiErr := &RenderAPIError{Operation: op, StatusCode: status}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		apiErr.Detail = string(body)
		return apiErr
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err == nil {
		apiErr.Detail = compact.String()
	} else {
		apiErr.Detail = string(body)
	}
	apiErr.Structured = true

	var envelope apiErrorBody
	if json.Unmarshal(body, &envelope) == nil {
		for _, e := range envelope.Errors {
			if e.Message != "" {
				apiErr.Messages = append(apiErr.Messages, e.Message)
			}
		}
		if envelope.Error != "" {
			apiErr.Messages = append(apiErr.Messages, envelope.Error)
		}
	}

	return apiErr
}

// IsConfigurationError reports whether err is or wraps a *ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsInvalidInput reports whether err is or wraps an *InvalidInputError
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// AsRenderAPIError extracts a *RenderAPIError from err's chain
func AsRenderAPIError(err error) (*RenderAPIError, bool) {
	var target *RenderAPIError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
