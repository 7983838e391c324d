package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-lending/lending/coordinator"
)

type actionFlags struct {
	memberID string
	bookID   string
	recordID string
}

func (f *actionFlags) register(cmd *cobra.Command, recordFlag string, recordUsage string, recordRequired bool) {
	cmd.Flags().StringVar(&f.memberID, "member", "", "member ID")
	cmd.Flags().StringVar(&f.bookID, "book", "", "book ID")
	cmd.Flags().StringVar(&f.recordID, recordFlag, "", recordUsage)

	_ = cmd.MarkFlagRequired("member")
	_ = cmd.MarkFlagRequired("book")
	if recordRequired {
		_ = cmd.MarkFlagRequired(recordFlag)
	}
}

func newBorrowCmd(a *app) *cobra.Command {
	var flags actionFlags

	cmd := &cobra.Command{
		Use:   "borrow",
		Short: "Lend a copy of a book to a member",
		Example: `  lendingctl borrow --member 0198f0c2-... --book 0198f0c2-...`,
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, s *store) error {
			action := coordinator.NewBorrow(flags.memberID, flags.bookID)
			if flags.recordID != "" {
				action.LoanID = flags.recordID
			}

			return a.apply(ctx, cmd, s, action)
		}),
	}

	flags.register(cmd, "loan-id", "ID of the new loan (default: a fresh UUIDv7)", false)

	return cmd
}

func newReturnCmd(a *app) *cobra.Command {
	var flags actionFlags

	cmd := &cobra.Command{
		Use:   "return",
		Short: "Return a borrowed copy",
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, s *store) error {
			action := coordinator.Return{MemberID: flags.memberID, BookID: flags.bookID, LoanID: flags.recordID}

			return a.apply(ctx, cmd, s, action)
		}),
	}

	flags.register(cmd, "loan", "ID of the loan to close", true)

	return cmd
}

func newReserveCmd(a *app) *cobra.Command {
	var flags actionFlags

	cmd := &cobra.Command{
		Use:   "reserve",
		Short: "Place a hold on a book for a member",
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, s *store) error {
			action := coordinator.NewReserve(flags.memberID, flags.bookID)
			if flags.recordID != "" {
				action.ReservationID = flags.recordID
			}

			return a.apply(ctx, cmd, s, action)
		}),
	}

	flags.register(cmd, "reservation-id", "ID of the new reservation (default: a fresh UUIDv7)", false)

	return cmd
}

func newCancelCmd(a *app) *cobra.Command {
	var flags actionFlags

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel an active reservation",
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, s *store) error {
			action := coordinator.CancelReservation{MemberID: flags.memberID, BookID: flags.bookID, ReservationID: flags.recordID}

			return a.apply(ctx, cmd, s, action)
		}),
	}

	flags.register(cmd, "reservation", "ID of the reservation to cancel", true)

	return cmd
}

func (a *app) apply(ctx context.Context, cmd *cobra.Command, s *store, action coordinator.Action) error {
	handler, err := a.commandHandler(s)
	if err != nil {
		return err
	}

	result, err := handler.Handle(ctx, action)
	if err != nil {
		return err
	}

	return a.write(cmd.OutOrStdout(), newActionOutput(result))
}
