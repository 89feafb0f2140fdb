package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"finsage/internal/cli"
	"finsage/internal/log"
)

var logger *log.Logger

var rootCmd = &cobra.Command{
	Use:   "finsage-cli",
	Short: "Maintenance commands for finsage",
	Long: `finsage-cli seeds sample ledgers and prints monthly reports
against the backend configured through the environment.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(reportCmd())
}

func main() {
	cli.LoadEnvFile()
	logger = cli.SetupLogger(log.ComponentCLI)

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Received interrupt signal, shutting down")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
