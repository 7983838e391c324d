package shell

import (
	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/lending/core"
)

// Payload keys every lending event carries and the scope filters match on.
const (
	PayloadKeyBookID   = "BookID"
	PayloadKeyMemberID = "MemberID"
)

// ScopeFilter is the consistency boundary of an action: every event about the book or the member.
//
// It covers the book's catalog entry, loans and reservations, plus the member's registration and
// the member's reservations of other books, which the reservation capacity depends on.
// Two actions conflict if, and only if, their scopes share an event.
func ScopeFilter(bookID core.BookIDString, memberID core.MemberIDString) eventlog.Filter {
	eventTypes := core.AllEventTypes()

	return eventlog.BuildEventFilter().
		Matching().
		AnyEventTypeOf(eventTypes[0], eventTypes[1:]...).
		AndAnyPredicateOf(
			eventlog.P(PayloadKeyBookID, bookID),
			eventlog.P(PayloadKeyMemberID, memberID),
		).
		Finalize()
}

// BookScopeFilter is the consistency boundary of a sweep over one book.
func BookScopeFilter(bookID core.BookIDString) eventlog.Filter {
	eventTypes := core.AllEventTypes()

	return eventlog.BuildEventFilter().
		Matching().
		AnyEventTypeOf(eventTypes[0], eventTypes[1:]...).
		AndAnyPredicateOf(eventlog.P(PayloadKeyBookID, bookID)).
		Finalize()
}

// BookCatalogFilter matches the catalog entry of one book.
func BookCatalogFilter(bookID core.BookIDString) eventlog.Filter {
	return eventlog.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.BookAddedToCatalogEventType).
		AndAnyPredicateOf(eventlog.P(PayloadKeyBookID, bookID)).
		Finalize()
}

// MemberCatalogFilter matches the registration of one member.
func MemberCatalogFilter(memberID core.MemberIDString) eventlog.Filter {
	return eventlog.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.MemberRegisteredEventType).
		AndAnyPredicateOf(eventlog.P(PayloadKeyMemberID, memberID)).
		Finalize()
}

// LendingHistoryFilter matches every lending domain event. Read models and the sweep scheduler use it.
func LendingHistoryFilter() eventlog.Filter {
	eventTypes := core.AllEventTypes()

	return eventlog.BuildEventFilter().
		Matching().
		AnyEventTypeOf(eventTypes[0], eventTypes[1:]...).
		Finalize()
}
