package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"codecanvas/config"
	"codecanvas/internal/ai"
	"codecanvas/internal/api"
	"codecanvas/internal/export"
	"codecanvas/internal/format"
	"codecanvas/internal/logging"
	"codecanvas/internal/project"
)

func main() {
	// --- Load .env file ---
	// Must happen before viper reads the environment.
	envNotice := "Loaded environment variables from .env file"
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			envNotice = ".env file not found, relying on system environment variables"
		} else {
			envNotice = "error loading .env file: " + err.Error()
		}
	}

	// --- Configuration Loading ---
	cfg, cfgNotice, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Cannot build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info(envNotice)
	logger.Info(cfgNotice)
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Dependency Initialization ---
	generator := ai.NewGenerator(cfg.APIKey, cfg.AIBaseURL, cfg.AIModel, logger)
	logger.Info("AI generator initialized",
		zap.String("model", generator.Model()),
		zap.String("base_url", cfg.AIBaseURL),
		zap.Bool("configured", generator.Configured()),
	)

	prettier := format.NewPrettier(cfg.PrettierPath)
	formatter := format.NewAdapter(prettier, cfg.FormatTimeout, logger)

	store := project.NewStore()
	controller := project.NewController(store, generator, formatter, cfg.DefaultPrompt, logger)
	exporter := export.NewExporter(export.NewZipArchiver())

	apiHandler := api.NewAPIHandler(appCtx, controller, exporter, logger)

	// --- Start API Server ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(api.RequestLogger(logger))
	router.Use(gin.Recovery())
	api.RegisterRoutes(router, apiHandler)

	server := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
		// WriteTimeout stays unset: /api/events holds a websocket open.
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("Starting API server", zap.String("addr", cfg.ServerAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("API server listen error", zap.Error(err))
		}
		logger.Info("API server has stopped listening")
	}()

	if cfg.AutoGenerate {
		if _, err := controller.Submit(appCtx, cfg.DefaultPrompt); err != nil {
			logger.Warn("startup generation not started", zap.Error(err))
		}
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutting down server", zap.String("signal", sig.String()))

	shutdownCtx, serverCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer serverCancel()

	// Stops in-flight generations.
	cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server forced shutdown", zap.Error(err))
	} else {
		logger.Info("API server gracefully stopped")
	}

	controller.Wait()
	logger.Info("Application exiting")
}
