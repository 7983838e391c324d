package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-lending/lending/features/query/catalogavailability"
	"github.com/AntonStoeckl/library-lending/lending/features/query/librarystats"
	"github.com/AntonStoeckl/library-lending/lending/features/query/memberdashboard"
	"github.com/AntonStoeckl/library-lending/lending/features/query/overdueloans"
)

// atFlag is the --at flag every read model takes. Statuses are evaluated at that instant.
type atFlag struct {
	value string
}

func (f *atFlag) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.value, "at", "", "evaluate at this RFC 3339 instant (default: now)")
}

func (f *atFlag) time() (time.Time, error) {
	if f.value == "" {
		return time.Now(), nil
	}

	return time.Parse(time.RFC3339, f.value)
}

func newDashboardCmd(a *app) *cobra.Command {
	var (
		memberID string
		at       atFlag
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show a member's loans and reservations",
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, s *store) error {
			id, err := uuid.Parse(memberID)
			if err != nil {
				return err
			}

			now, err := at.time()
			if err != nil {
				return err
			}

			result, err := memberdashboard.NewQueryHandler(s.eventLog).Handle(ctx, memberdashboard.BuildQuery(id, now))
			if err != nil {
				return err
			}

			return a.write(cmd.OutOrStdout(), result)
		}),
	}

	cmd.Flags().StringVar(&memberID, "member", "", "member ID")
	_ = cmd.MarkFlagRequired("member")
	at.register(cmd)

	return cmd
}

func newOverdueCmd(a *app) *cobra.Command {
	var at atFlag

	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "List every overdue loan, most overdue first",
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, s *store) error {
			now, err := at.time()
			if err != nil {
				return err
			}

			result, err := overdueloans.NewQueryHandler(s.eventLog).Handle(ctx, overdueloans.BuildQuery(now))
			if err != nil {
				return err
			}

			return a.write(cmd.OutOrStdout(), result)
		}),
	}

	at.register(cmd)

	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var (
		topN  int
		since string
		at    atFlag
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show library totals and the most borrowed books",
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, s *store) error {
			now, err := at.time()
			if err != nil {
				return err
			}

			query := librarystats.BuildQuery(now, topN)
			if since != "" {
				from, parseErr := time.Parse(time.RFC3339, since)
				if parseErr != nil {
					return parseErr
				}

				query = query.WithBorrowedSince(from)
			}

			result, err := librarystats.NewQueryHandler(s.eventLog).Handle(ctx, query)
			if err != nil {
				return err
			}

			return a.write(cmd.OutOrStdout(), result)
		}),
	}

	cmd.Flags().IntVar(&topN, "top", librarystats.DefaultTopN, "number of most borrowed books to list")
	cmd.Flags().StringVar(&since, "since", "", "rank only the borrows since this RFC 3339 instant")
	at.register(cmd)

	return cmd
}

func newCatalogCmd(a *app) *cobra.Command {
	var (
		category string
		language string
		search   string
		at       atFlag
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List every book with its availability",
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, s *store) error {
			now, err := at.time()
			if err != nil {
				return err
			}

			result, err := catalogavailability.NewQueryHandler(s.eventLog).Handle(ctx, catalogavailability.BuildQuery(now, category, language, search))
			if err != nil {
				return err
			}

			return a.write(cmd.OutOrStdout(), result)
		}),
	}

	cmd.Flags().StringVar(&category, "category", "", "only books of this category")
	cmd.Flags().StringVar(&language, "language", "", "only books in this language")
	cmd.Flags().StringVar(&search, "search", "", "only books whose title or author contains this text, ignoring case")
	at.register(cmd)

	return cmd
}
