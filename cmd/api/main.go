package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medicore/booking-platform/internal/api/router"
	"github.com/medicore/booking-platform/internal/appointments"
	appconfig "github.com/medicore/booking-platform/internal/config"
	"github.com/medicore/booking-platform/internal/directory"
	"github.com/medicore/booking-platform/internal/notify"
	"github.com/medicore/booking-platform/internal/observability/metrics"
	"github.com/medicore/booking-platform/internal/payments"
	"github.com/medicore/booking-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	bookingMetrics := metrics.NewBookingMetrics(registry)

	dir := directory.Default()
	if cfg.DirectoryFile != "" {
		dir, err = directory.LoadFile(cfg.DirectoryFile)
		if err != nil {
			logger.Error("failed to load doctor directory", "error", err, "path", cfg.DirectoryFile)
			os.Exit(1)
		}
		logger.Info("doctor directory loaded", "path", cfg.DirectoryFile)
	}
	apptService := appointments.NewService(appointments.NewRepository(pool), dir, logger).
		WithMetrics(bookingMetrics)

	stripeClient := payments.NewStripeClient(cfg.StripeSecretKey, logger)
	if cfg.StripeAPIBase != "" {
		stripeClient = stripeClient.WithBaseURL(cfg.StripeAPIBase)
	}
	payService := payments.NewService(stripeClient, payments.NewRepository(pool), apptService, logger).
		WithMetrics(bookingMetrics)

	emailSender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	if emailSender != nil {
		payService.WithNotifier(notify.NewReceiptService(emailSender, logger))
	} else {
		logger.Info("sendgrid not configured, payment receipts disabled")
	}

	r := router.New(&router.Config{
		Logger:              logger,
		AppointmentsHandler: appointments.NewHandler(apptService, logger),
		DirectoryHandler:    directory.NewHandler(dir, logger),
		PaymentsHandler:     payments.NewHandler(payService, cfg.StripePublishableKey, logger),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		PaymentRatePerSec:   2,
		PaymentBurst:        5,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
