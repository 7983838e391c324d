package sweep

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/history"
	"github.com/AntonStoeckl/library-lending/lending/shell"
)

const (
	defaultInterval    = time.Minute
	defaultConcurrency = 4
)

const (
	// MetricRunDuration tracks the duration of one sweep run.
	MetricRunDuration = "sweep_run_duration_seconds"
	// MetricBooksVisited tracks the books a run swept.
	MetricBooksVisited = "sweep_books_visited"
	// MetricRecordsReclassified counts reclassified loans and reservations by kind.
	MetricRecordsReclassified = "sweep_records_reclassified_total"
	// MetricFailures counts books whose sweep failed.
	MetricFailures = "sweep_failures_total"

	logMsgRunCompleted = "sweep run completed"
	logMsgBookFailed   = "sweep of book failed"
	logMsgRunFailed    = "sweep run failed"
)

var (
	// ErrNilEventLog is returned when the scheduler gets no event log to discover books from.
	ErrNilEventLog = errors.New("event log must not be nil")
	// ErrNilSweepHandler is returned when the scheduler gets no handler to sweep books with.
	ErrNilSweepHandler = errors.New("sweep handler must not be nil")
	// ErrInvalidInterval is returned for a non-positive interval.
	ErrInvalidInterval = errors.New("sweep interval must be positive")
	// ErrInvalidConcurrency is returned for a non-positive concurrency.
	ErrInvalidConcurrency = errors.New("sweep concurrency must be positive")
	// ErrDiscoveringBooksFailed wraps failures to read or decode the lending history.
	ErrDiscoveringBooksFailed = errors.New("discovering books to sweep failed")
)

// QueriesEvents is the read side of the event log the scheduler needs.
type QueriesEvents interface {
	Query(ctx context.Context, filter eventlog.Filter) (eventlog.StorableEvents, eventlog.MaxSequenceNumberUint, error)
}

// SweepHandler sweeps one book. shell.CommandHandler implements it.
type SweepHandler interface {
	HandleSweep(ctx context.Context, bookID core.BookIDString) (shell.HandlerResult, error)
}

// Report summarizes one sweep run.
type Report struct {
	StartedAt           time.Time
	Duration            time.Duration
	BooksVisited        int
	LoansMarkedOverdue  int
	ReservationsExpired int
	Failures            int
}

// Scheduler runs sweeps periodically.
type Scheduler struct {
	eventLog    QueriesEvents
	handler     SweepHandler
	interval    time.Duration
	concurrency int
	logger      shell.Logger
	metrics     shell.MetricsCollector
}

// Option configures a Scheduler.
type Option func(*Scheduler) error

// WithInterval sets the time between two runs. The default is one minute.
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}

		s.interval = interval

		return nil
	}
}

// WithConcurrency sets how many books are swept at the same time. The default is 4.
func WithConcurrency(concurrency int) Option {
	return func(s *Scheduler) error {
		if concurrency <= 0 {
			return ErrInvalidConcurrency
		}

		s.concurrency = concurrency

		return nil
	}
}

// WithLogger sets the logger for run reports and failures.
func WithLogger(logger shell.Logger) Option {
	return func(s *Scheduler) error {
		s.logger = logger

		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(s *Scheduler) error {
		s.metrics = collector

		return nil
	}
}

// NewScheduler creates a Scheduler.
func NewScheduler(eventLog QueriesEvents, handler SweepHandler, opts ...Option) (*Scheduler, error) {
	if eventLog == nil {
		return nil, ErrNilEventLog
	}

	if handler == nil {
		return nil, ErrNilSweepHandler
	}

	s := &Scheduler{
		eventLog:    eventLog,
		handler:     handler,
		interval:    defaultInterval,
		concurrency: defaultConcurrency,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Run sweeps right away and then once per interval until ctx is done.
// A failed run is logged and does not stop the loop. Run returns nil on cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
			s.logError(logMsgRunFailed, "error", err.Error())
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// SweepOnce sweeps every book that has open loans or active reservations.
//
// Book discovery reads with eventual consistency, each book's sweep then re-reads its own
// scope strongly. Books that fail are counted in the Report, they do not abort the run.
func (s *Scheduler) SweepOnce(ctx context.Context) (Report, error) {
	report := Report{StartedAt: time.Now()}

	bookIDs, err := s.discoverBooks(ctx)
	if err != nil {
		return report, err
	}

	var mu sync.Mutex
	group := new(errgroup.Group)
	group.SetLimit(s.concurrency)

	for _, bookID := range bookIDs {
		if ctx.Err() != nil {
			break
		}

		group.Go(func() error {
			result, sweepErr := s.handler.HandleSweep(ctx, bookID)
			overdue, expired := result.Result.SweepCounts()

			mu.Lock()
			defer mu.Unlock()

			report.BooksVisited++
			if sweepErr != nil {
				report.Failures++
				s.logError(logMsgBookFailed, "book_id", bookID, "error", sweepErr.Error())

				return nil
			}

			report.LoansMarkedOverdue += overdue
			report.ReservationsExpired += expired

			return nil
		})
	}

	_ = group.Wait() // every goroutine returns nil

	report.Duration = time.Since(report.StartedAt)
	s.record(report)

	return report, ctx.Err()
}

func (s *Scheduler) discoverBooks(ctx context.Context) ([]core.BookIDString, error) {
	storableEvents, _, err := s.eventLog.Query(eventlog.WithEventualConsistency(ctx), shell.LendingHistoryFilter())
	if err != nil {
		return nil, errors.Join(ErrDiscoveringBooksFailed, err)
	}

	events, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return nil, errors.Join(ErrDiscoveringBooksFailed, err)
	}

	return history.Project(events).BooksWithOpenRecords(), nil
}

func (s *Scheduler) record(report Report) {
	if s.logger != nil {
		s.logger.Info(logMsgRunCompleted,
			"books_visited", report.BooksVisited,
			"loans_marked_overdue", report.LoansMarkedOverdue,
			"reservations_expired", report.ReservationsExpired,
			"failures", report.Failures,
			"duration_ms", shell.ToMilliseconds(report.Duration),
		)
	}

	if s.metrics == nil {
		return
	}

	s.metrics.RecordDuration(MetricRunDuration, report.Duration, nil)
	s.metrics.RecordValue(MetricBooksVisited, float64(report.BooksVisited), nil)

	for range report.LoansMarkedOverdue {
		s.metrics.IncrementCounter(MetricRecordsReclassified, map[string]string{"kind": "loan_overdue"})
	}

	for range report.ReservationsExpired {
		s.metrics.IncrementCounter(MetricRecordsReclassified, map[string]string{"kind": "reservation_expired"})
	}

	for range report.Failures {
		s.metrics.IncrementCounter(MetricFailures, nil)
	}
}

func (s *Scheduler) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
