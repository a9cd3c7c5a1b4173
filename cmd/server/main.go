package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"webshot/internal/analysis"
	"webshot/internal/api/routes"
	"webshot/internal/config"
	"webshot/internal/logging"
	"webshot/internal/rendering"
	"webshot/internal/sharecache"
	"webshot/internal/storage"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting webshot", map[string]interface{}{
		"log_level": cfg.Logging.Level,
	})

	client, err := rendering.NewClient(cfg, rendering.WithLogger(logger))
	if err != nil {
		logger.Fatal("Rendering client not configured", map[string]interface{}{"error": err.Error()})
	}
	logger.Info("Rendering client ready", map[string]interface{}{
		"account": client.AccountHint(),
	})

	store, err := storage.NewStore(cfg.Storage.Directory, logger)
	if err != nil {
		logger.Fatal("Failed to open artifact store", map[string]interface{}{
			"directory": cfg.Storage.Directory,
			"error":     err.Error(),
		})
	}

	deps := routes.Dependencies{
		Renderer: client,
		Store:    store,
		Metadata: analysis.NewMetadataFetcher(nil, logger),
	}

	if cfg.SpacesEnabled() {
		mirror, err := storage.NewSpacesMirror(cfg, logger)
		if err != nil {
			logger.Warn("Spaces mirror disabled", map[string]interface{}{"error": err.Error()})
		} else {
			store.SetMirror(mirror)
			deps.Mirror = mirror
			logger.Info("Mirroring artifacts to Spaces", map[string]interface{}{
				"bucket": cfg.DigitalOcean.Spaces.BucketName,
			})
		}
	}

	if cfg.RedisEnabled() {
		kv, err := sharecache.NewRedisKV(cfg)
		if err != nil {
			logger.Warn("Image sharing disabled", map[string]interface{}{"error": err.Error()})
		} else {
			deps.ShareCache = sharecache.New(kv, cfg.Redis.ShareTTL, logger)
			defer deps.ShareCache.Close()
			logger.Info("Image sharing enabled", map[string]interface{}{"redis": kv.Addr()})
		}
	}

	if cfg.LLMEnabled() {
		completer, err := analysis.NewClaudeCompleter(cfg)
		if err != nil {
			logger.Warn("LLM analysis disabled", map[string]interface{}{"error": err.Error()})
		} else {
			deps.Analyzer = analysis.NewAnalyzer(completer, cfg.LLM.MaxTokens, float64(cfg.LLM.Temperature), logger)
			logger.Info("LLM analysis enabled", map[string]interface{}{
				"provider": completer.Name(),
				"model":    cfg.LLM.Model,
			})
		}
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	if err := routes.SetupRoutes(e, cfg, deps); err != nil {
		logger.Fatal("Failed to set up routes", map[string]interface{}{"error": err.Error()})
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed to start", map[string]interface{}{"error": err.Error()})
	}

	<-shutdownDone
}
