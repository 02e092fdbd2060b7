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

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/unitcost/backend/config"
	httpDelivery "github.com/unitcost/backend/internal/delivery/http"
	"github.com/unitcost/backend/internal/infrastructure/document"
	"github.com/unitcost/backend/internal/infrastructure/logger"
	"github.com/unitcost/backend/internal/infrastructure/pointer"
	"github.com/unitcost/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger, cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting UnitCost Backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure dependencies
	fs := afero.NewOsFs()
	store := document.NewFileStore(fs, appLogger.Named("document"))

	pointerPath := cfg.Session.PointerPath
	if pointerPath == "" {
		pointerPath, err = pointer.DefaultPath()
		if err != nil {
			appLogger.Fatal("Could not resolve last session pointer path", zap.Error(err))
		}
	}
	lastSession := pointer.NewFile(fs, pointerPath)
	appLogger.Info("Last session pointer", zap.String("path", lastSession.Path()))

	// Initialize usecase layer
	sessionService := usecase.NewSessionService(
		store,
		lastSession,
		appLogger.Named("session"),
		usecase.SessionServiceConfig{
			AutosaveDelay: cfg.Session.AutosaveDelay,
		},
	)

	if cfg.Session.RestoreLast && sessionService.RestoreLastSession(ctx) {
		appLogger.Info("Restored last session", zap.String("path", sessionService.Snapshot().Path))
	}

	autosaveDone := make(chan struct{})
	go func() {
		defer close(autosaveDone)
		sessionService.RunAutosave(ctx)
	}()

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(sessionService, appLogger.Named("http"))

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, appLogger.Named("http"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}

	// pending edits are flushed by the autosaver once ctx is done
	<-autosaveDone
	appLogger.Info("Server stopped")
}
