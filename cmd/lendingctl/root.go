package main

import (
	"context"
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "lendingctl",
		Short: "Borrow, return and reserve library books against an event log",
		Long: `lendingctl runs the library lending engine.

Every command reads the lending history of the affected book and member,
decides on the action and appends the resulting events in one consistent step.

Configuration comes from lending.yaml (in . or $HOME/.config/lending), a .env
file and LENDING_* environment variables, e.g. LENDING_STORE_DRIVER=postgres.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: lending.yaml in . or $HOME/.config/lending)")
	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", outputJSON, "output format: json or yaml")

	cmd.AddCommand(
		newMigrateCmd(a),
		newSeedCmd(a),
		newBookCmd(a),
		newMemberCmd(a),
		newBorrowCmd(a),
		newReturnCmd(a),
		newReserveCmd(a),
		newCancelCmd(a),
		newSweepCmd(a),
		newSweeperCmd(a),
		newDashboardCmd(a),
		newOverdueCmd(a),
		newStatsCmd(a),
		newCatalogCmd(a),
	)

	return cmd
}

// runFunc is the body of a subcommand that needs the configured store.
type runFunc func(ctx context.Context, cmd *cobra.Command, s *store) error

// withStore loads the configuration, opens the store for the duration of fn and closes it afterwards.
func (a *app) withStore(fn runFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if err := a.init(cmd); err != nil {
			return err
		}

		ctx := cmd.Context()

		s, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer a.closeStore(ctx, s)

		return fn(ctx, cmd, s)
	}
}
