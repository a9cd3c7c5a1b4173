package models

import (
	"time"

	"webshot/internal/storage"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// FilesResponse lists stored artifacts, newest first
type FilesResponse struct {
	Success bool               `json:"success"`
	Files   []storage.Artifact `json:"files"`
}

// ScrapeResult is returned by the form scrape endpoint
type ScrapeResult struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HTMLResult is returned by the form HTML endpoint
type HTMLResult struct {
	Success bool   `json:"success"`
	HTML    string `json:"html,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RenderSiteResult holds the screenshot as a data URL
type RenderSiteResult struct {
	ScreenshotURL string `json:"screenshotUrl"`
}

// RenderSiteResponse is returned by the social preview endpoint
type RenderSiteResponse struct {
	Success bool             `json:"success"`
	Result  RenderSiteResult `json:"result"`
}

// ShareResponse points at a stored shared image
type ShareResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
	Filename string `json:"filename"`
}

// UnparsedResponse carries a model answer that could not be decoded
type UnparsedResponse struct {
	Raw   string `json:"raw"`
	Error string `json:"error"`
}

// ReviewResponse wraps a free-form site review
type ReviewResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Review  string `json:"review"`
}

// ConfigStatusResponse reports which rendering credentials are present without
// revealing them
type ConfigStatusResponse struct {
	HasAPIToken     bool    `json:"hasApiToken"`
	HasAccountID    bool    `json:"hasAccountId"`
	AccountIDPrefix *string `json:"accountIdPrefix"`
	TokenLength     int     `json:"tokenLength"`
	HasLLMKey       bool    `json:"hasLlmKey"`
	HasRedis        bool    `json:"hasRedis"`
	HasSpaces       bool    `json:"hasSpaces"`
}

// NewErrorResponse builds an ErrorResponse stamped with the current time
func NewErrorResponse(code, message, requestID string) ErrorResponse {
	return ErrorResponse{
		Success:   false,
		Error:     code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now(),
	}
}
