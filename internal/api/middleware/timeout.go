package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// longRunningPrefixes are routes that wait on an LLM after rendering a page
var longRunningPrefixes = []string{
	"/api/v1/analyze",
	"/api/v1/seo",
	"/api/v1/review",
}

func isLongRunning(path string) bool {
	for _, prefix := range longRunningPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// TimeoutConfig returns timeout middleware configuration
func TimeoutConfig(timeout time.Duration) echo.MiddlewareFunc {
	return middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout:      timeout,
		ErrorMessage: `{"success":false,"error":"request_timeout","message":"Request timed out"}`,
	})
}

// SelectiveTimeoutConfig applies longTimeout to the analysis routes and
// defaultTimeout everywhere else. A zero duration disables that timeout.
func SelectiveTimeoutConfig(defaultTimeout, longTimeout time.Duration) echo.MiddlewareFunc {
	short := passThrough
	if defaultTimeout > 0 {
		short = TimeoutConfig(defaultTimeout)
	}
	long := passThrough
	if longTimeout > 0 {
		long = TimeoutConfig(longTimeout)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		shortNext := short(next)
		longNext := long(next)
		return func(c echo.Context) error {
			if isLongRunning(c.Request().URL.Path) {
				return longNext(c)
			}
			return shortNext(c)
		}
	}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc {
	return next
}
