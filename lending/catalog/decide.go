package catalog

import (
	"github.com/AntonStoeckl/library-lending/lending/core"
)

// DecideAddBook decides whether the book has to be added to the catalog.
//
//	GIVEN: A book with BookID
//	WHEN: AddBook command is received
//	THEN: BookAddedToCatalog event is generated
//	ERROR: INVALID_ACTION if the command fails validation
//	IDEMPOTENCY: If the book is already in the catalog, no event is generated
func DecideAddBook(history core.DomainEvents, command AddBook) (DecisionResult, error) {
	if err := validateCommand(command); err != nil {
		return DecisionResult{}, err
	}

	bookID := command.BookID.String()

	for _, event := range history {
		if e, ok := event.(core.BookAddedToCatalog); ok && e.BookID == bookID {
			return IdempotentDecision(), nil
		}
	}

	return SuccessDecision(
		core.BuildBookAddedToCatalog(
			command.BookID,
			command.Title,
			command.Author,
			command.Year,
			command.Language,
			command.Category,
			command.CopiesTotal,
			command.OccurredAt,
		),
	), nil
}

// DecideRegisterMember decides whether the member has to be registered.
//
//	GIVEN: A member with MemberID
//	WHEN: RegisterMember command is received
//	THEN: MemberRegistered event is generated
//	ERROR: INVALID_ACTION if the command fails validation or names an unknown role
//	IDEMPOTENCY: If the member is already registered, no event is generated
func DecideRegisterMember(history core.DomainEvents, command RegisterMember) (DecisionResult, error) {
	if err := validateCommand(command); err != nil {
		return DecisionResult{}, err
	}

	if !validRole(command.Role) {
		return DecisionResult{}, core.Reject(core.ReasonInvalidAction, "unknown role "+string(command.Role))
	}

	memberID := command.MemberID.String()

	for _, event := range history {
		if e, ok := event.(core.MemberRegistered); ok && e.MemberID == memberID {
			return IdempotentDecision(), nil
		}
	}

	return SuccessDecision(
		core.BuildMemberRegistered(
			command.MemberID,
			command.FirstName,
			command.LastName,
			command.Email,
			command.Role,
			command.OccurredAt,
		),
	), nil
}
