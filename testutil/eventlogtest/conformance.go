// Package eventlogtest holds a behaviour suite every eventlog.EventLog engine must pass.
package eventlogtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/eventlog"
)

// Factory returns an empty engine. It is called once per subtest.
type Factory func(t *testing.T) eventlog.EventLog

// Now is the fixed point in time all suite events are based on.
var Now = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

// Run executes the whole suite against the engine built by newLog.
func Run(t *testing.T, newLog Factory) {
	t.Run("query_on_empty_log_returns_nothing", func(t *testing.T) { queryOnEmptyLog(t, newLog(t)) })
	t.Run("append_then_query_roundtrip", func(t *testing.T) { appendThenQuery(t, newLog(t)) })
	t.Run("append_detects_conflict_in_scope", func(t *testing.T) { conflictInScope(t, newLog(t)) })
	t.Run("append_ignores_events_outside_scope", func(t *testing.T) { outsideScope(t, newLog(t)) })
	t.Run("append_multiple_events_atomically", func(t *testing.T) { multipleEvents(t, newLog(t)) })
	t.Run("filter_semantics", func(t *testing.T) { filterSemantics(t, newLog(t)) })
	t.Run("concurrent_appends_only_one_wins", func(t *testing.T) { concurrentAppends(t, newLog(t)) })
}

func GivenUniqueID(t testing.TB) string {
	t.Helper()

	return uuid.NewString()
}

func GivenEvent(t testing.TB, eventType string, occurredAt time.Time, payloadJSON string) eventlog.StorableEvent {
	t.Helper()

	event, err := eventlog.BuildStorableEvent(eventType, occurredAt, []byte(payloadJSON), []byte(`{"MessageID":"m"}`))
	require.NoError(t, err)

	return event
}

func ScopeOf(bookID, memberID string) eventlog.Filter {
	return eventlog.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventlog.P("BookID", bookID), eventlog.P("MemberID", memberID)).
		Finalize()
}

func queryOnEmptyLog(t *testing.T, log eventlog.EventLog) {
	// act
	events, maxSeq, err := log.Query(t.Context(), eventlog.BuildEventFilter().MatchingAnyEvent())

	// assert
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, eventlog.MaxSequenceNumberUint(0), maxSeq)
}

func appendThenQuery(t *testing.T, log eventlog.EventLog) {
	// arrange
	ctx := t.Context()
	bookID, memberID := GivenUniqueID(t), GivenUniqueID(t)
	scope := ScopeOf(bookID, memberID)
	occurredAt := Now.Add(123456789 * time.Nanosecond)
	event := GivenEvent(t, "BookBorrowed", occurredAt, `{"BookID":"`+bookID+`","MemberID":"`+memberID+`"}`)

	// act
	err := log.Append(ctx, scope, 0, event)
	require.NoError(t, err)
	events, maxSeq, queryErr := log.Query(ctx, scope)

	// assert
	require.NoError(t, queryErr)
	require.Len(t, events, 1)
	assert.Positive(t, maxSeq)
	assert.Equal(t, "BookBorrowed", events[0].EventType)
	assert.True(t, events[0].OccurredAt.Equal(occurredAt.Truncate(time.Microsecond)), "occurred at: %s", events[0].OccurredAt)
	assert.JSONEq(t, string(event.PayloadJSON), string(events[0].PayloadJSON))
	assert.JSONEq(t, string(event.MetadataJSON), string(events[0].MetadataJSON))
}

func conflictInScope(t *testing.T, log eventlog.EventLog) {
	// arrange
	ctx := t.Context()
	bookID, memberID, otherMemberID := GivenUniqueID(t), GivenUniqueID(t), GivenUniqueID(t)
	scope := ScopeOf(bookID, memberID)

	_, maxSeq, err := log.Query(ctx, scope)
	require.NoError(t, err)

	// someone else touches the same book in the meantime
	require.NoError(t, log.Append(ctx, ScopeOf(bookID, otherMemberID), maxSeq,
		GivenEvent(t, "BookReserved", Now, `{"BookID":"`+bookID+`","MemberID":"`+otherMemberID+`"}`)))

	// act
	err = log.Append(ctx, scope, maxSeq,
		GivenEvent(t, "BookBorrowed", Now, `{"BookID":"`+bookID+`","MemberID":"`+memberID+`"}`))

	// assert
	assert.ErrorIs(t, err, eventlog.ErrConcurrencyConflict)

	events, _, queryErr := log.Query(ctx, scope)
	require.NoError(t, queryErr)
	assert.Len(t, events, 1)
}

func outsideScope(t *testing.T, log eventlog.EventLog) {
	// arrange
	ctx := t.Context()
	bookID, memberID := GivenUniqueID(t), GivenUniqueID(t)
	otherBookID, otherMemberID := GivenUniqueID(t), GivenUniqueID(t)
	scope := ScopeOf(bookID, memberID)

	_, maxSeq, err := log.Query(ctx, scope)
	require.NoError(t, err)

	require.NoError(t, log.Append(ctx, ScopeOf(otherBookID, otherMemberID), 0,
		GivenEvent(t, "BookBorrowed", Now, `{"BookID":"`+otherBookID+`","MemberID":"`+otherMemberID+`"}`)))

	// act
	err = log.Append(ctx, scope, maxSeq,
		GivenEvent(t, "BookBorrowed", Now, `{"BookID":"`+bookID+`","MemberID":"`+memberID+`"}`))

	// assert
	assert.NoError(t, err)
}

func multipleEvents(t *testing.T, log eventlog.EventLog) {
	// arrange
	ctx := t.Context()
	bookID, memberID := GivenUniqueID(t), GivenUniqueID(t)
	scope := ScopeOf(bookID, memberID)
	payload := `{"BookID":"` + bookID + `","MemberID":"` + memberID + `"}`

	// act
	err := log.Append(ctx, scope, 0,
		GivenEvent(t, "ReservationExpired", Now, payload),
		GivenEvent(t, "ReservationConverted", Now.Add(time.Second), payload),
		GivenEvent(t, "BookBorrowed", Now.Add(2*time.Second), payload),
	)
	require.NoError(t, err)

	staleErr := log.Append(ctx, scope, 0,
		GivenEvent(t, "BookReturned", Now, payload),
		GivenEvent(t, "BookReserved", Now, payload),
	)

	events, _, queryErr := log.Query(ctx, scope)

	// assert
	assert.ErrorIs(t, staleErr, eventlog.ErrConcurrencyConflict)
	require.NoError(t, queryErr)
	require.Len(t, events, 3)
	assert.Equal(t, "ReservationExpired", events[0].EventType)
	assert.Equal(t, "ReservationConverted", events[1].EventType)
	assert.Equal(t, "BookBorrowed", events[2].EventType)
}

//nolint:funlen
func filterSemantics(t *testing.T, log eventlog.EventLog) {
	// arrange
	ctx := t.Context()
	bookID, memberID, otherID := GivenUniqueID(t), GivenUniqueID(t), GivenUniqueID(t)

	require.NoError(t, log.Append(ctx, eventlog.BuildEventFilter().MatchingAnyEvent(), 0,
		GivenEvent(t, "BookAddedToCatalog", Now, `{"BookID":"`+bookID+`","CopiesTotal":1}`),
		GivenEvent(t, "MemberRegistered", Now.Add(time.Hour), `{"MemberID":"`+memberID+`"}`),
		GivenEvent(t, "BookBorrowed", Now.Add(2*time.Hour), `{"BookID":"`+bookID+`","MemberID":"`+memberID+`"}`),
		GivenEvent(t, "BookBorrowed", Now.Add(3*time.Hour), `{"BookID":"`+bookID+`","MemberID":"`+otherID+`"}`),
	))

	tests := []struct {
		name          string
		filter        eventlog.Filter
		expectedTypes []string
	}{
		{
			name: "event type only",
			filter: eventlog.BuildEventFilter().
				Matching().AnyEventTypeOf("MemberRegistered").
				Finalize(),
			expectedTypes: []string{"MemberRegistered"},
		},
		{
			name: "all predicates",
			filter: eventlog.BuildEventFilter().
				Matching().AllPredicatesOf(eventlog.P("BookID", bookID), eventlog.P("MemberID", otherID)).
				Finalize(),
			expectedTypes: []string{"BookBorrowed"},
		},
		{
			name: "event type and any predicate",
			filter: eventlog.BuildEventFilter().
				Matching().AnyEventTypeOf("BookBorrowed").AndAnyPredicateOf(eventlog.P("MemberID", memberID)).
				Finalize(),
			expectedTypes: []string{"BookBorrowed"},
		},
		{
			name: "or-ed items",
			filter: eventlog.BuildEventFilter().
				Matching().AnyEventTypeOf("BookAddedToCatalog").
				OrMatching().AnyPredicateOf(eventlog.P("MemberID", memberID)).
				Finalize(),
			expectedTypes: []string{"BookAddedToCatalog", "MemberRegistered", "BookBorrowed"},
		},
		{
			name: "occurred window",
			filter: ScopeOf(bookID, memberID).
				WithOccurredFrom(Now.Add(time.Hour)).
				WithOccurredUntil(Now.Add(2 * time.Hour)),
			expectedTypes: []string{"MemberRegistered", "BookBorrowed"},
		},
		{
			name: "non string payload values never match",
			filter: eventlog.BuildEventFilter().
				Matching().AnyPredicateOf(eventlog.P("CopiesTotal", "1")).
				Finalize(),
			expectedTypes: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// act
			events, _, err := log.Query(ctx, tt.filter)

			// assert
			require.NoError(t, err)

			types := make([]string, 0, len(events))
			for _, e := range events {
				types = append(types, e.EventType)
			}

			assert.Equal(t, tt.expectedTypes, types)
		})
	}
}

func concurrentAppends(t *testing.T, log eventlog.EventLog) {
	// arrange
	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()

	bookID := GivenUniqueID(t)
	const writers = 5
	errs := make([]error, writers)
	wg := sync.WaitGroup{}

	memberIDs := make([]string, writers)
	events := make(eventlog.StorableEvents, writers)
	for i := range writers {
		memberIDs[i] = GivenUniqueID(t)
		events[i] = GivenEvent(t, "BookBorrowed", Now, `{"BookID":"`+bookID+`","MemberID":"`+memberIDs[i]+`"}`)
	}

	// act
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			errs[i] = log.Append(ctx, ScopeOf(bookID, memberIDs[i]), 0, events[i])
		}()
	}
	wg.Wait()

	// assert
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		assert.ErrorIs(t, err, eventlog.ErrConcurrencyConflict)
	}

	assert.Equal(t, 1, succeeded)
}
