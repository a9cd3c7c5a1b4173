package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"webshot/pkg/models"
)

// BodyLimit rejects request bodies larger than limit, e.g. "16M"
func BodyLimit(limit string) echo.MiddlewareFunc {
	if limit == "" {
		limit = "16M"
	}
	return middleware.BodyLimit(limit)
}

// RateLimit allows rps requests per second per client IP with the given burst.
// A non-positive rps disables limiting.
func RateLimit(rps float64, burst int) echo.MiddlewareFunc {
	if rps <= 0 {
		return passThrough
	}
	if burst <= 0 {
		burst = int(rps) + 1
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, models.NewErrorResponse(
				"rate_limit_identifier", "Unable to identify client", GetRequestID(c)))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, models.NewErrorResponse(
				"rate_limited", "Too many requests, slow down", GetRequestID(c)))
		},
	})
}
