package middleware

import (
	"regexp"

	"github.com/labstack/echo/v4"

	"webshot/pkg/utils"
)

// RequestIDKey is the echo context key holding the request id
const RequestIDKey = "request_id"

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID tags every request with an id, reusing a well-formed incoming
// X-Request-ID header
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if !validRequestID.MatchString(requestID) {
				requestID = utils.GenerateRequestID()
			}

			c.Set(RequestIDKey, requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			return next(c)
		}
	}
}

// GetRequestID returns the id set by RequestID, or a fresh one when the
// middleware did not run
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(RequestIDKey).(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}
