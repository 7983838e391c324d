package coordinator_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/lending/availability"
	"github.com/AntonStoeckl/library-lending/lending/coordinator"
	"github.com/AntonStoeckl/library-lending/lending/core"
	. "github.com/AntonStoeckl/library-lending/testutil/lendingfixtures" //nolint:revive
)

// library is the complete state a random action sequence runs against.
type library struct {
	members      []core.Member
	books        []core.Book
	loans        map[core.LoanIDString]core.Loan
	reservations map[core.ReservationIDString]core.Reservation
}

func givenLibrary(t *testing.T) *library {
	t.Helper()

	return &library{
		members: []core.Member{
			GivenMember(t, "m1"), GivenMember(t, "m2"), GivenMember(t, "m3"), GivenMember(t, "m4"),
		},
		books: []core.Book{
			GivenBook(t, "Dune", 1), GivenBook(t, "Emma", 1), GivenBook(t, "Walden", 2),
			GivenBook(t, "Ulysses", 1), GivenBook(t, "Odyssey", 3),
		},
		loans:        make(map[core.LoanIDString]core.Loan),
		reservations: make(map[core.ReservationIDString]core.Reservation),
	}
}

func (l *library) snapshot(member core.Member, book core.Book) coordinator.Snapshot {
	s := coordinator.Snapshot{Member: member, Book: book}

	for _, loan := range l.loans {
		if loan.BookID == book.ID {
			s.Loans = append(s.Loans, loan)
		}
	}

	for _, reservation := range l.reservations {
		if reservation.BookID == book.ID {
			s.Reservations = append(s.Reservations, reservation)
		} else if reservation.MemberID == member.ID {
			s.MemberReservations = append(s.MemberReservations, reservation)
		}
	}

	return s
}

func (l *library) persist(result coordinator.Result) {
	for _, loan := range result.Loans {
		l.loans[loan.ID] = loan
	}

	for _, reservation := range result.Reservations {
		l.reservations[reservation.ID] = reservation
	}
}

func (l *library) randomAction(rng *rand.Rand, member core.Member, book core.Book, s coordinator.Snapshot) coordinator.Action {
	switch rng.IntN(4) {
	case 0:
		return coordinator.NewBorrow(member.ID, book.ID)

	case 1:
		if len(s.Loans) == 0 {
			return coordinator.NewBorrow(member.ID, book.ID)
		}

		loan := s.Loans[rng.IntN(len(s.Loans))]

		return coordinator.Return{MemberID: member.ID, BookID: book.ID, LoanID: loan.ID}

	case 2:
		return coordinator.NewReserve(member.ID, book.ID)

	default:
		if len(s.Reservations) == 0 {
			return coordinator.NewReserve(member.ID, book.ID)
		}

		reservation := s.Reservations[rng.IntN(len(s.Reservations))]

		return coordinator.CancelReservation{MemberID: member.ID, BookID: book.ID, ReservationID: reservation.ID}
	}
}

func (l *library) assertInvariants(t *testing.T, step int) {
	t.Helper()

	for _, book := range l.books {
		open := 0

		for _, loan := range l.loans {
			if loan.BookID == book.ID && loan.IsOpen() {
				open++
			}
		}

		assert.LessOrEqual(t, open, book.Copies(), "step %d: open loans of %s", step, book.Title)
	}

	for _, member := range l.members {
		active := 0

		for _, reservation := range l.reservations {
			if reservation.MemberID == member.ID && reservation.IsActive() {
				active++
			}
		}

		assert.LessOrEqual(t, active, core.MaxActiveReservations, "step %d: active reservations of %s", step, member.FirstName)
	}
}

func Test_Apply_RandomActionSequences_KeepInvariants(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*7919))
		lib := givenLibrary(t)
		now := Days(0)

		for step := range 300 {
			now = now.Add(time.Duration(rng.IntN(36)) * time.Hour)
			member := lib.members[rng.IntN(len(lib.members))]
			book := lib.books[rng.IntN(len(lib.books))]
			snapshot := lib.snapshot(member, book)

			if rng.IntN(10) == 0 {
				result, err := coordinator.Sweep(snapshot, now)
				require.NoError(t, err, "seed %d step %d", seed, step)
				lib.persist(result)
				lib.assertInvariants(t, step)

				continue
			}

			result, err := coordinator.Apply(lib.randomAction(rng, member, book, snapshot), snapshot, now)
			if err != nil {
				require.NotErrorIs(t, err, coordinator.ErrInvariantViolation, "seed %d step %d", seed, step)
				_, isRejection := core.ReasonOf(err)
				require.True(t, isRejection, "seed %d step %d: %v", seed, step, err)

				continue
			}

			lib.persist(result)
			lib.assertInvariants(t, step)
			assert.Equal(t, result.Availability, availability.Resolve(book, result.Snapshot.Loans, result.Snapshot.Reservations))
		}
	}
}
