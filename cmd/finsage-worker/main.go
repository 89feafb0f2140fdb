package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finsage/internal/amqp"
	"finsage/internal/cache"
	"finsage/internal/cli"
	"finsage/internal/log"
	"finsage/internal/report"
	"finsage/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting finsage-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	store := cli.OpenBackend(context.Background(), logger, cfg)
	defer store.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	reports := report.NewService(store.Store,
		report.WithLocation(cfg.Location()),
		report.WithLogger(logger.WithComponent(log.ComponentReport)))
	digests := worker.NewDigestWorker(reports)
	janitor := cache.NewJanitor()
	janitor.Register(digests)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		janitor.Stop()
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", log.FieldError, err)
		}
	})

	janitor.Start(ctx, time.Hour)

	// Startup digests for configured owners
	if cfg.DigestOnStartup {
		logger.Info("Building startup digests", "owners", len(cfg.DigestOwners))
		if err := digests.RefreshAll(ctx, cfg.DigestOwners); err != nil {
			logger.Error("Startup digests incomplete", log.FieldError, err)
			// Don't exit - continue with normal operation
		}
	}

	go func() {
		err := amqpClient.ConsumeTransactionEvents(ctx, digests.HandleEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
