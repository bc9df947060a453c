package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/riverfront-whatsapp-bot/internal/api/router"
	"github.com/wolfman30/riverfront-whatsapp-bot/internal/app/bootstrap"
	appconfig "github.com/wolfman30/riverfront-whatsapp-bot/internal/config"
	"github.com/wolfman30/riverfront-whatsapp-bot/internal/observability/metrics"
	"github.com/wolfman30/riverfront-whatsapp-bot/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting riverfront whatsapp bot",
		"env", cfg.Env,
		"port", cfg.Port,
	)
	if err := cfg.Validate(); err != nil {
		logger.Warn("configuration incomplete", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	fmt.Println("Server exited gracefully")
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	metricsHandler, webhookMetrics := setupMetrics()

	table, err := bootstrap.BuildReplyTable(cfg, logger)
	if err != nil {
		return err
	}
	wa, err := bootstrap.BuildWhatsApp(cfg, table, webhookMetrics, logger)
	if err != nil {
		return err
	}

	srv := newServer(cfg, router.New(&router.Config{
		Logger:         logger,
		Webhook:        wa.Webhook,
		MetricsHandler: metricsHandler,
	}))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	if pinger := bootstrap.BuildKeepAlive(cfg, logger); pinger != nil {
		g.Go(func() error {
			pinger.Run(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		if err := wa.Dispatcher.Wait(shutdownCtx); err != nil {
			logger.Warn("pending replies abandoned at shutdown", "error", err)
		}
		logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func setupMetrics() (http.Handler, *metrics.WebhookMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewWebhookMetrics(reg)
}
