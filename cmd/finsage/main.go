package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finsage/internal/cli"
	apphttp "finsage/internal/http"
	"finsage/internal/log"
	"finsage/internal/report"
	"finsage/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger)
	loc := cfg.Location()

	store := cli.OpenBackend(context.Background(), logger, cfg)
	defer store.Close()

	var publisher services.EventPublisher
	if client := cli.ConnectAMQP(logger, cfg); client != nil {
		publisher = client
		defer client.Close()
	}

	reports := report.NewService(store.Store,
		report.WithLocation(loc),
		report.WithLogger(logger.WithComponent(log.ComponentReport)))

	if !store.Mutable {
		logger.Warn("Backend is append-only, updates and deletes will be rejected", log.FieldBackend, cfg.DataBackend)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Reports:      reports,
		Transactions: services.NewTransactionService(store.Store, publisher, loc),
		Pinger:       store.Pinger,
		Logger:       logger,
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting finsage server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"timezone", loc.String(),
		"events", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
