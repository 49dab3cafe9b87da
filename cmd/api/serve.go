package main

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/bulk"
	"asset-management-api/internal/config"
	"asset-management-api/internal/database"
	"asset-management-api/internal/handler"
	"asset-management-api/internal/metrics"
	"asset-management-api/internal/middleware"
	"asset-management-api/internal/notification"
	"asset-management-api/internal/repository"
	"asset-management-api/internal/router"
	"asset-management-api/internal/service"
	notificationadapter "asset-management-api/internal/service/notification"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        buildHandler(cfg, db, logger),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"port":             cfg.Port,
			"rate_limit_rps":   cfg.Security.RateLimitRPS,
			"rate_limit_burst": cfg.Security.RateLimitBurst,
			"cors":             cfg.Security.EnableCORS,
			"request_timeout":  cfg.Security.RequestTimeout.String(),
			"notifications":    cfg.NotificationService.URL != "",
		}).Info("starting server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Security.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
		return err
	}
	logger.Info("server exited gracefully")
	return nil
}

// buildHandler wires repositories, services and handlers into the HTTP stack.
func buildHandler(cfg *config.Config, db *sql.DB, logger *logrus.Logger) http.Handler {
	repos := repository.NewRepositories(db)
	m := metrics.New()

	client := notification.NewClient(notification.NotificationConfig{
		URL:            cfg.NotificationService.URL,
		Timeout:        cfg.NotificationService.Timeout,
		RetryAttempts:  cfg.NotificationService.RetryAttempts,
		RetryDelay:     cfg.NotificationService.RetryDelay,
		MaxPayloadSize: cfg.NotificationService.MaxPayloadSize,
	}, logger)
	notifier := notificationadapter.NewServiceAdapter(client)

	assets := service.NewAssetService(service.AssetServiceConfig{
		Repositories: repos,
		Notifier:     notifier,
		Metrics:      m,
		Logger:       logger,
		IDPrefix:     cfg.Assets.IDPrefix,
	})
	orchestrator := bulk.NewOrchestrator(bulk.Config{
		Operations:     assets,
		Registry:       bulk.NewDefaultRegistry(),
		Notifier:       notifier,
		Metrics:        m,
		Logger:         logger,
		MaxConcurrency: cfg.Assets.BulkMaxConcurrency,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	return router.NewRouter(router.Handlers{
		Assets:    handler.NewAssetHandler(assets, logger),
		Bulk:      handler.NewBulkHandler(orchestrator, logger),
		Employees: handler.NewEmployeeHandler(service.NewEmployeeService(repos, logger), logger),
		Activity:  handler.NewActivityHandler(service.NewActivityService(repos.Activity), logger),
		Health:    handler.NewHealthHandler(db, client, logger),
	}, router.Dependencies{
		Auth:    middleware.NewAuthMiddleware(tokens, cfg.Auth.CookieName, logger),
		Metrics: m,
		Logger:  logger,
	}, cfg)
}
