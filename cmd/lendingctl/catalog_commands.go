package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-lending/lending/catalog"
	"github.com/AntonStoeckl/library-lending/lending/core"
)

func newBookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage the book catalog",
	}

	cmd.AddCommand(newBookAddCmd(a))

	return cmd
}

func newBookAddCmd(a *app) *cobra.Command {
	var (
		id       string
		title    string
		author   string
		year     int
		language string
		category string
		copies   int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book with its number of copies to the catalog",
		Example: `  lendingctl book add --title "The Left Hand of Darkness" --author "Ursula K. Le Guin" --year 1969 --copies 2`,
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, s *store) error {
			bookID, err := parseOrGenerateID(id)
			if err != nil {
				return err
			}

			handler, err := a.catalogHandler(s)
			if err != nil {
				return err
			}

			command := catalog.BuildAddBook(bookID, title, author, year, language, category, copies, time.Now())

			result, err := handler.HandleAddBook(ctx, command)
			if err != nil {
				return err
			}

			return a.write(cmd.OutOrStdout(), catalogOutput{
				ID:         bookID.String(),
				Idempotent: result.Idempotent,
				EventCount: result.EventCount,
			})
		}),
	}

	cmd.Flags().StringVar(&id, "id", "", "book ID (default: a fresh UUIDv7)")
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&author, "author", "", "author")
	cmd.Flags().IntVar(&year, "year", 0, "publication year")
	cmd.Flags().StringVar(&language, "language", "", "BCP 47 language tag, e.g. en")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().IntVar(&copies, "copies", 1, "number of physical copies")

	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")

	return cmd
}

func newMemberCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage library members",
	}

	cmd.AddCommand(newMemberRegisterCmd(a))

	return cmd
}

func newMemberRegisterCmd(a *app) *cobra.Command {
	var (
		id        string
		firstName string
		lastName  string
		email     string
		role      string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a library member",
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, s *store) error {
			memberID, err := parseOrGenerateID(id)
			if err != nil {
				return err
			}

			handler, err := a.catalogHandler(s)
			if err != nil {
				return err
			}

			command := catalog.BuildRegisterMember(memberID, firstName, lastName, email, core.MemberRole(role), time.Now())

			result, err := handler.HandleRegisterMember(ctx, command)
			if err != nil {
				return err
			}

			return a.write(cmd.OutOrStdout(), catalogOutput{
				ID:         memberID.String(),
				Idempotent: result.Idempotent,
				EventCount: result.EventCount,
			})
		}),
	}

	cmd.Flags().StringVar(&id, "id", "", "member ID (default: a fresh UUIDv7)")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", string(core.RoleMember), "member, librarian or manager")

	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func parseOrGenerateID(id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.NewV7()
	}

	return uuid.Parse(id)
}
