package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"webshot/internal/analysis"
	"webshot/internal/api/handlers"
	"webshot/internal/api/middleware"
	"webshot/internal/config"
	"webshot/internal/sharecache"
	"webshot/internal/storage"
	"webshot/internal/web"
)

// Dependencies are the services the routes are wired to. ShareCache, Analyzer
// and Mirror are optional.
type Dependencies struct {
	Renderer   handlers.Renderer
	Store      *storage.Store
	Mirror     *storage.SpacesMirror
	ShareCache *sharecache.Cache
	Analyzer   *analysis.Analyzer
	Metadata   *analysis.MetadataFetcher
}

// SetupRoutes configures all routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, deps Dependencies) error {
	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}
	e.Renderer = renderer

	if deps.Metadata == nil {
		deps.Metadata = analysis.NewMetadataFetcher(nil, nil)
	}

	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(cfg.Server.MaxBodySize))
	e.Use(middleware.SelectiveTimeoutConfig(cfg.Server.RequestTimeout, cfg.LLM.Timeout+cfg.Server.RequestTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/live", handlers.LivenessHandler)
		health.GET("/ready", handlers.ReadinessHandler(readinessChecks(deps)))
		health.GET("/config", handlers.ConfigStatusHandler(cfg))
		health.GET("/logging", handlers.LoggingHealthHandler)
	}

	// HTML front end
	e.StaticFS("/static", web.StaticFiles())
	e.GET("/", handlers.IndexHandler(deps.Store))
	e.POST("/screenshot", handlers.ScreenshotFormHandler(deps.Renderer, deps.Store))
	e.POST("/pdf", handlers.PDFFormHandler(deps.Renderer, deps.Store))
	e.POST("/scrape", handlers.ScrapeFormHandler(deps.Renderer))
	e.POST("/html", handlers.HTMLFormHandler(deps.Renderer))
	e.GET("/screenshots/:filename", handlers.ServeArtifactHandler(deps.Store))
	e.POST("/delete/:filename", handlers.DeleteArtifactHandler(deps.Store))

	// API v1 routes
	v1 := e.Group("/api/v1", middleware.RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
	{
		v1.GET("/files", handlers.FilesHandler(deps.Store))
		v1.GET("/render-site", handlers.RenderSiteHandler(deps.Renderer))
		v1.GET("/metadata", handlers.MetadataHandler(deps.Metadata))

		share := v1.Group("/share")
		{
			share.POST("", handlers.ShareStoreHandler(deps.ShareCache))
			share.GET("/:filename", handlers.ShareFetchHandler(deps.ShareCache))
		}

		v1.POST("/analyze", handlers.AnalyzeHandler(deps.Renderer, deps.Analyzer, cfg.LLM.MaxPageChars))
		v1.POST("/seo", handlers.SEOHandler(deps.Analyzer))
		v1.POST("/review", handlers.ReviewHandler(deps.Analyzer))

		v1.POST("/browser-rendering/:operation", handlers.ProxyHandler(deps.Renderer))
	}

	e.GET("/api", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "webshot",
			"version": handlers.Version,
			"status":  "running",
		})
	})

	return nil
}

func readinessChecks(deps Dependencies) map[string]handlers.Checker {
	checks := map[string]handlers.Checker{
		"storage": func(ctx context.Context) error { return deps.Store.Healthy() },
	}
	if deps.ShareCache != nil {
		checks["redis"] = deps.ShareCache.Healthy
	}
	if deps.Mirror != nil {
		checks["spaces"] = func(ctx context.Context) error { return deps.Mirror.Healthy() }
	}
	return checks
}
