package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"webshot/internal/api/middleware"
	"webshot/internal/config"
	"webshot/internal/logging"
	"webshot/internal/rendering"
	"webshot/pkg/models"
	"webshot/pkg/utils"
)

// Version is reported by the health endpoints
var Version = "1.0.0"

var startTime = time.Now()

// Checker probes one dependency
type Checker func(ctx context.Context) error

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	logging.GetGlobalLogger().Debug("Health check requested", map[string]interface{}{
		"request_id": middleware.GetRequestID(c),
	})

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    utils.FormatDuration(time.Since(startTime)),
		Checks: map[string]string{
			"api": "ok",
		},
	}

	return c.JSON(http.StatusOK, response)
}

// ReadinessHandler runs every checker and reports 503 when any fails
func ReadinessHandler(checks map[string]Checker) echo.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()

		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		results := map[string]string{"api": "ok"}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = "error: " + err.Error()
				logger.Warn("Readiness check failed", map[string]interface{}{
					"request_id": middleware.GetRequestID(c),
					"check":      name,
					"error":      err.Error(),
				})
				continue
			}
			results[name] = "ok"
		}

		response := models.HealthResponse{
			Status:    "ready",
			Timestamp: time.Now(),
			Version:   Version,
			Uptime:    utils.FormatDuration(time.Since(startTime)),
			Checks:    results,
		}
		if status != http.StatusOK {
			response.Status = "not_ready"
		}

		return c.JSON(status, response)
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	response := models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    utils.FormatDuration(time.Since(startTime)),
	}

	return c.JSON(http.StatusOK, response)
}

// ConfigStatusHandler reports which credentials are configured without exposing them
func ConfigStatusHandler(cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		response := models.ConfigStatusResponse{
			HasAPIToken:  cfg.Rendering.APIToken != "",
			HasAccountID: cfg.Rendering.AccountID != "",
			TokenLength:  len(cfg.Rendering.APIToken),
			HasLLMKey:    cfg.LLMEnabled(),
			HasRedis:     cfg.RedisEnabled(),
			HasSpaces:    cfg.SpacesEnabled(),
		}
		if cfg.Rendering.AccountID != "" {
			prefix := rendering.MaskAccountID(cfg.Rendering.AccountID)
			response.AccountIDPrefix = &prefix
		}

		return c.JSON(http.StatusOK, response)
	}
}

// LoggingHealthHandler reports whether every log adapter is writable
func LoggingHealthHandler(c echo.Context) error {
	if err := logging.GlobalHealth(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
