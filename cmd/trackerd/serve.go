package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"apartment-tracker-backend/internal/api"
	"apartment-tracker-backend/internal/notification"
	"apartment-tracker-backend/internal/scraper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and the scrape scheduler",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, gormDB, appStore, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Keep the interface nil when push is off; a typed nil pool would be called.
	var notifier scraper.Notifier
	options := webpushOptions(cfg)
	var pool *notification.WorkerPool
	if options != nil {
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, options, logger.Named("notification"))
		pool.Start(ctx)
		notifier = pool
		logger.Info("price alert workers started", zap.Int("size", cfg.WorkerPool.Size))
	} else {
		logger.Warn("VAPID keys are not configured, price alerts are disabled")
	}

	scraperSvc := scraper.NewService(cfg, appStore, notifier, logger.Named("scraper"))
	scraperDone := make(chan struct{})
	go func() {
		defer close(scraperDone)
		scraperSvc.Run(ctx)
	}()

	router := api.NewRouter(cfg, appStore, options, scraperSvc, logger.Named("http"))
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping services")
	case err := <-serveErr:
		stop()
		return fmt.Errorf("HTTP server ListenAndServe: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server Shutdown: %w", err)
	}
	<-scraperDone
	if pool != nil {
		pool.Wait()
	}

	logger.Info("server gracefully stopped")
	return nil
}
