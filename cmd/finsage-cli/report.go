package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"finsage/internal/chart"
	"finsage/internal/cli"
	"finsage/internal/log"
	"finsage/internal/report"
)

func reportCmd() *cobra.Command {
	var (
		owner  string
		month  string
		charts bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the monthly report as JSON",
		Long: `Build the report for a user and month (YYYY-MM, default current)
and print it as JSON. With --charts the chart payloads are printed instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if owner == "" {
				return fmt.Errorf("--user is required")
			}

			ctx := cmd.Context()
			cfg := cli.LoadAndValidateConfig(logger)
			store := cli.OpenBackend(ctx, logger, cfg)
			defer store.Close()

			reports := report.NewService(store.Store,
				report.WithLocation(cfg.Location()),
				report.WithLogger(logger.WithComponent(log.ComponentReport)))
			rep, err := reports.Report(ctx, owner, month)
			if err != nil {
				return fmt.Errorf("build report: %w", err)
			}

			var payload any = rep.View()
			if charts {
				payload = chart.FromReport(rep)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		},
	}

	cmd.Flags().StringVar(&owner, "user", "", "owner ID")
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM")
	cmd.Flags().BoolVar(&charts, "charts", false, "print chart payloads")

	return cmd
}
