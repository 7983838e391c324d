package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-lending/eventlog/migrations"
)

// ErrNothingToMigrate is returned by migrate for the memory store.
var ErrNothingToMigrate = errors.New("the configured store has no schema to migrate")

func newMigrateCmd(a *app) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the event log schema",
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, s *store) error {
			if s.migrationDB == nil {
				return ErrNothingToMigrate
			}

			if status {
				states, err := migrations.Status(ctx, s.migrationDB, s.dialect)
				if err != nil {
					return err
				}

				return a.write(cmd.OutOrStdout(), states)
			}

			applied, err := migrations.Up(ctx, s.migrationDB, s.dialect, a.logger)
			if err != nil {
				return err
			}

			return a.write(cmd.OutOrStdout(), applied)
		}),
	}

	cmd.Flags().BoolVar(&status, "status", false, "only report which migrations are applied")

	return cmd
}
