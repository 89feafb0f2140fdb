package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"finsage/internal/aggregate"
	"finsage/internal/cli"
	"finsage/internal/log"
	"finsage/internal/services"
)

func seedCmd() *cobra.Command {
	var (
		owner  string
		months int
		reset  bool
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a ledger with sample incomes and expenses",
		Long: `Generate 2-5 incomes and 8-15 expenses for every calendar month of
the trailing window and store them for the given user.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if owner == "" {
				return fmt.Errorf("--user is required")
			}
			if months < 1 {
				return fmt.Errorf("--months must be at least 1")
			}

			ctx := cmd.Context()
			cfg := cli.LoadAndValidateConfig(logger)
			store := cli.OpenBackend(ctx, logger, cfg)
			defer store.Close()

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			seeder := services.NewSeeder(store.Store, store.Store, rand.New(rand.NewSource(seed)))
			res, err := seeder.Seed(ctx, owner, months, time.Now().In(cfg.Location()), reset)
			if err != nil {
				return fmt.Errorf("seed %s: %w", owner, err)
			}

			logger.Info("Sample data stored",
				log.FieldOwnerID, owner,
				"incomes", res.Incomes,
				"expenses", res.Expenses,
				"from", res.FirstMonth,
				"to", res.LastMonth)
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d incomes (%s) and %d expenses (%s) for %s, %s to %s\n",
				res.Incomes, res.TotalIncome.StringFixed(2),
				res.Expenses, res.TotalExpense.StringFixed(2),
				owner, res.FirstMonth, res.LastMonth)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "user", "", "owner ID to seed")
	cmd.Flags().IntVar(&months, "months", aggregate.TrendMonths, "trailing months to fill")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete the user's existing transactions first")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: current time)")

	return cmd
}
