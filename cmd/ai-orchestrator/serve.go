// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

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
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/ai-orchestrator/internal/research"
	"github.com/pdiddy/ai-orchestrator/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the research API over HTTP",
	Long: `Serve starts the HTTP API: GET /health, POST /research, GET /cache/stats,
POST /cache/clear and GET /metrics. Expired cache entries are swept in the
background every cache.sweep_interval. SIGINT or SIGTERM shuts the server
down gracefully.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :4000)")
	serveCmd.Flags().Duration("ttl", 0, "cache entry lifetime (default 1h)")
	serveCmd.Flags().String("archive", "", "SQLite archive path (empty disables archiving)")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("cache.ttl", serveCmd.Flags().Lookup("ttl"))
	_ = viper.BindPFlag("archive.path", serveCmd.Flags().Lookup("archive"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.orchestrator, a.providers, a.metrics.Handler(), logger.Named("http"))
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go sweepExpired(ctx, a.orchestrator, cfg.Cache.SweepInterval)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("version", version),
			zap.String("addr", cfg.Server.Addr),
			zap.Duration("cache_ttl", cfg.Cache.TTL),
			zap.String("analyzer", a.providers.Analyzer.Name()))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// sweepExpired clears expired cache entries every interval until ctx is
// done. A non-positive interval disables the sweep.
func sweepExpired(ctx context.Context, o *research.Orchestrator, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.ClearExpiredCache()
		}
	}
}
