package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-lending/lending/catalog"
	"github.com/AntonStoeckl/library-lending/lending/coordinator"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/shell"
)

var seedCategories = []string{"fiction", "science", "history", "children", "poetry"}

// seedReport is what lendingctl prints after seeding.
type seedReport struct {
	Books        int `json:"books" yaml:"books"`
	Members      int `json:"members" yaml:"members"`
	Loans        int `json:"loans" yaml:"loans"`
	Reservations int `json:"reservations" yaml:"reservations"`
	Rejected     int `json:"rejected" yaml:"rejected"`
}

func newSeedCmd(a *app) *cobra.Command {
	var (
		books   int
		members int
		actions int
		seed    uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the store with demo books, members, loans and reservations",
		Long: `seed adds random books and members and then tries random borrows and
reservations through the regular command handlers. Actions the lending rules
reject are counted and skipped.`,
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, s *store) error {
			catalogHandler, err := a.catalogHandler(s)
			if err != nil {
				return err
			}

			commandHandler, err := a.commandHandler(s)
			if err != nil {
				return err
			}

			seeder := seeder{
				catalog:  catalogHandler,
				commands: commandHandler,
				random:   rand.New(rand.NewPCG(seed, seed)), //nolint:gosec // Weak random OK for demo data
			}

			report, err := seeder.run(ctx, books, members, actions)
			if err != nil {
				return err
			}

			return a.write(cmd.OutOrStdout(), report)
		}),
	}

	cmd.Flags().IntVar(&books, "books", 20, "number of books to add")
	cmd.Flags().IntVar(&members, "members", 10, "number of members to register")
	cmd.Flags().IntVar(&actions, "actions", 40, "number of borrows and reservations to try")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")

	return cmd
}

type seeder struct {
	catalog  shell.CatalogHandler
	commands shell.CommandHandler
	random   *rand.Rand
}

func (s seeder) run(ctx context.Context, books int, members int, actions int) (seedReport, error) {
	var report seedReport

	bookIDs := make([]string, 0, books)
	for i := range books {
		bookID := uuid.Must(uuid.NewV7())
		command := catalog.BuildAddBook(
			bookID,
			fmt.Sprintf("Demo Book %03d", i+1),
			fmt.Sprintf("Demo Author %02d", s.random.IntN(books/2+1)+1),
			1900+s.random.IntN(125),
			"en",
			seedCategories[s.random.IntN(len(seedCategories))],
			1+s.random.IntN(3),
			time.Now(),
		)

		if _, err := s.catalog.HandleAddBook(ctx, command); err != nil {
			return report, err
		}

		bookIDs = append(bookIDs, bookID.String())
		report.Books++
	}

	memberIDs := make([]string, 0, members)
	for i := range members {
		memberID := uuid.Must(uuid.NewV7())
		command := catalog.BuildRegisterMember(
			memberID,
			fmt.Sprintf("Member%02d", i+1),
			"Demo",
			fmt.Sprintf("member%02d@example.org", i+1),
			core.RoleMember,
			time.Now(),
		)

		if _, err := s.catalog.HandleRegisterMember(ctx, command); err != nil {
			return report, err
		}

		memberIDs = append(memberIDs, memberID.String())
		report.Members++
	}

	if len(bookIDs) == 0 || len(memberIDs) == 0 {
		return report, nil
	}

	for range actions {
		memberID := memberIDs[s.random.IntN(len(memberIDs))]
		bookID := bookIDs[s.random.IntN(len(bookIDs))]

		action := coordinator.Action(coordinator.NewBorrow(memberID, bookID))
		if s.random.Float64() < 0.3 { //nolint:gosec // Weak random OK for demo data
			action = coordinator.NewReserve(memberID, bookID)
		}

		_, err := s.commands.Handle(ctx, action)
		if _, isRejection := core.ReasonOf(err); isRejection {
			report.Rejected++
			continue
		}

		if err != nil {
			return report, err
		}

		if action.ActionType() == coordinator.ActionBorrow {
			report.Loans++
		} else {
			report.Reservations++
		}
	}

	return report, nil
}
