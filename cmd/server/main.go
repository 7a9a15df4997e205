package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farerules/internal/app"
	"farerules/internal/config"
	"farerules/internal/handler"
	"farerules/internal/logging"
	"farerules/internal/router"
)

// @title Fare Rules API
// @version 1.0
// @description Ticket ingestion, rule store and fare quoting.
// @BasePath /api/v1
// @securityDefinitions.apikey SecretAuth
// @in header
// @name X-Secret
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logging.Initialize(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.Server.Environment == "development",
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()
	logger := logging.Logger

	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Ingest.Secret == "" && cfg.Ingest.SecretHash == "" {
		logger.Warn("no ingest secret configured; protected endpoints will reject every request")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing resources", zap.Error(err))
		}
	}()

	// Initialize handlers
	ticketH := handler.NewTicketHandler(a.Ingest)
	quoteH := handler.NewQuoteHandler(a.Quote)
	ruleH := handler.NewRuleHandler(a.Rules)
	healthH := handler.NewHealthHandler(a.Rules)

	// Setup router
	r := router.Setup(cfg, logger, ticketH, quoteH, ruleH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
