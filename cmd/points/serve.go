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
	"golang.org/x/sync/errgroup"

	"github.com/warp/points-engine/api"
	"github.com/warp/points-engine/ledger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the points server.

STARTUP SEQUENCE:
  1. Open the store (sqlite or memory)
  2. Load the catalog
  3. Open the current month's session (locked)
  4. Configure HTTP router and rollover scheduler
  5. Start server with graceful shutdown

On SIGINT/SIGTERM the server stops accepting connections, waits up to 30s
for active requests, stops the scheduler and closes the database.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Initialize store
	st, _, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	catalog, err := loadCatalog(cfg, logger)
	if err != nil {
		return err
	}

	open := sessionOpener(st, cfg, logger)
	session, err := open(ctx, ledger.PeriodFor(time.Now()))
	if err != nil {
		return err
	}

	// Initialize handler
	handler := api.NewHandler(api.HandlerConfig{
		Session: session,
		Catalog: catalog,
		Open:    open,
		Logger:  logger,
	})

	scheduler := api.NewRolloverScheduler(handler, logger)
	scheduler.CheckInterval = cfg.RolloverInterval
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler, api.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
		Logger:         logger.Named("http"),
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("storage", cfg.Storage),
			zap.String("period", string(handler.Period())))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal (or a failed listener)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}
