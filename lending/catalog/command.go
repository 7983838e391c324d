package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-lending/lending/core"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AddBook is the intent to add a book with CopiesTotal physical copies to the catalog.
type AddBook struct {
	BookID      uuid.UUID `validate:"required"`
	Title       string    `validate:"required,max=300"`
	Author      string    `validate:"required,max=200"`
	Year        int       `validate:"gte=0,lte=3000"`
	Language    string    `validate:"omitempty,bcp47_language_tag"`
	Category    string    `validate:"max=100"`
	CopiesTotal int       `validate:"gte=1,lte=1000"`
	OccurredAt  core.OccurredAt
}

// CommandType returns the type identifier for this command.
func (c AddBook) CommandType() string {
	return "AddBook"
}

// BuildAddBook creates a new AddBook command.
func BuildAddBook(
	bookID uuid.UUID,
	title string,
	author string,
	year int,
	language string,
	category string,
	copiesTotal int,
	occurredAt time.Time,
) AddBook {

	return AddBook{
		BookID:      bookID,
		Title:       title,
		Author:      author,
		Year:        year,
		Language:    language,
		Category:    category,
		CopiesTotal: copiesTotal,
		OccurredAt:  core.ToOccurredAt(occurredAt),
	}
}

// RegisterMember is the intent to register a library member.
type RegisterMember struct {
	MemberID   uuid.UUID `validate:"required"`
	FirstName  string    `validate:"required,max=100"`
	LastName   string    `validate:"max=100"`
	Email      string    `validate:"required,email"`
	Role       core.MemberRole
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command.
func (c RegisterMember) CommandType() string {
	return "RegisterMember"
}

// BuildRegisterMember creates a new RegisterMember command. An empty role defaults to core.RoleMember.
func BuildRegisterMember(
	memberID uuid.UUID,
	firstName string,
	lastName string,
	email string,
	role core.MemberRole,
	occurredAt time.Time,
) RegisterMember {

	if role == "" {
		role = core.RoleMember
	}

	return RegisterMember{
		MemberID:   memberID,
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Role:       role,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}

func validateCommand(command any) error {
	if err := validate.Struct(command); err != nil {
		return core.Reject(core.ReasonInvalidAction, err.Error())
	}

	return nil
}

func validRole(role core.MemberRole) bool {
	switch role {
	case core.RoleMember, core.RoleLibrarian, core.RoleManager:
		return true
	default:
		return false
	}
}
