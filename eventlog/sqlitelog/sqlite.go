package sqlitelog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	_ "modernc.org/sqlite" // driver registration

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/eventlog/internal/observer"
)

const (
	DriverName = "sqlite"

	engineName                     = "sqlite"
	defaultEventTableName          = "events"
	defaultBusyTimeout             = 5 * time.Second
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgTransactionFailed        = "append transaction failed"
	logMsgRollbackFailed           = "failed to roll back append transaction"
	logMsgQueryCompleted           = "query completed"
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logAttrQuery                   = "query"
	logAttrEventType               = "event_type"
	logAttrEventCount              = "event_count"
	logAttrDurationMS              = "duration_ms"
	logAttrExpectedSequence        = "expected_sequence"
	logAttrActualSequence          = "actual_sequence"
	logActionQuery                 = "query"
	logActionMaxSequence           = "max sequence"
	logActionAppend                = "append"
	errorTypeBuildQuery            = "build_query"
	errorTypeDatabase              = "database"
	errorTypeScan                  = "scan"
	colEventType                   = "event_type"
	colOccurredAt                  = "occurred_at"
	colPayload                     = "payload"
	colMetadata                    = "metadata"
	colSequenceNumber              = "sequence_number"
	dialectSQLite                  = "sqlite3"
	aliasMaxSeq                    = "max_seq"
	jsonExtractEquals              = "json_extract(" + colPayload + ", ?) = ?"
)

type sqlQueryString = string

// EventLog is the SQLite engine. It is safe for concurrent use.
type EventLog struct {
	db             *sql.DB
	eventTableName string
	observer       observer.Observer
}

type queryResultRow struct {
	eventType      string
	occurredAt     int64
	payload        []byte
	metadata       []byte
	sequenceNumber eventlog.MaxSequenceNumberUint
}

// DSN builds a modernc.org/sqlite data source name for the database file at path.
// Transactions start with BEGIN IMMEDIATE, and writers wait up to five seconds for the lock.
func DSN(path string) string {
	query := url.Values{}
	query.Add("_txlock", "immediate")
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", defaultBusyTimeout.Milliseconds()))
	query.Add("_pragma", "journal_mode(WAL)")
	query.Add("_pragma", "foreign_keys(1)")

	return "file:" + path + "?" + query.Encode()
}

// Open opens the database file at path with DSN(path).
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, DSN(path))
	if err != nil {
		return nil, errors.Join(eventlog.ErrNilDatabaseConnection, err)
	}

	return db, nil
}

// New creates an EventLog on db, which should have been opened with DSN or Open.
func New(db *sql.DB, options ...Option) (EventLog, error) {
	if db == nil {
		return EventLog{}, eventlog.ErrNilDatabaseConnection
	}

	l := EventLog{
		db:             db,
		eventTableName: defaultEventTableName,
		observer:       observer.Observer{Engine: engineName},
	}

	for _, option := range options {
		if err := option(&l); err != nil {
			return EventLog{}, err
		}
	}

	return l, nil
}

// Query returns all events matching filter in sequence order
// and the highest sequence number among them.
func (l EventLog) Query(ctx context.Context, filter eventlog.Filter) (
	eventlog.StorableEvents,
	eventlog.MaxSequenceNumberUint,
	error,
) {

	start := time.Now()

	sqlQuery, buildErr := l.buildSelectQuery(filter)
	if buildErr != nil {
		l.observer.LogError(ctx, logMsgBuildSelectQueryFailed, buildErr)
		l.observer.OperationFailed(eventlog.OperationQuery, errorTypeBuildQuery)

		return nil, 0, buildErr
	}

	rows, queryErr := l.db.QueryContext(ctx, sqlQuery)
	l.observer.LogSQL(ctx, logActionQuery, sqlQuery, time.Since(start))

	if queryErr != nil {
		l.observer.LogError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		l.observer.OperationFailed(eventlog.OperationQuery, errorTypeDatabase)

		return nil, 0, errors.Join(eventlog.ErrQueryingEventsFailed, queryErr)
	}
	defer l.closeRows(ctx, rows)

	events, maxSequenceNumber, scanErr := l.processQueryResults(ctx, rows)
	if scanErr != nil {
		l.observer.OperationFailed(eventlog.OperationQuery, errorTypeScan)

		return nil, 0, scanErr
	}

	duration := time.Since(start)
	l.observer.QuerySucceeded(len(events), duration)
	l.observer.LogOperation(
		ctx,
		logMsgQueryCompleted,
		logAttrEventCount, len(events),
		logAttrDurationMS, observer.ToMilliseconds(duration),
	)

	return events, maxSequenceNumber, nil
}

func (l EventLog) processQueryResults(ctx context.Context, rows *sql.Rows) (
	eventlog.StorableEvents,
	eventlog.MaxSequenceNumberUint,
	error,
) {

	result := queryResultRow{}
	events := make(eventlog.StorableEvents, 0)
	maxSequenceNumber := eventlog.MaxSequenceNumberUint(0)

	for rows.Next() {
		if err := rows.Scan(&result.eventType, &result.occurredAt, &result.payload, &result.metadata, &result.sequenceNumber); err != nil {
			l.observer.LogError(ctx, logMsgScanRowFailed, err)

			return nil, 0, errors.Join(eventlog.ErrScanningDBRowFailed, err)
		}

		event, buildErr := eventlog.BuildStorableEvent(
			result.eventType,
			time.Unix(0, result.occurredAt),
			result.payload,
			result.metadata,
		)
		if buildErr != nil {
			l.observer.LogError(ctx, logMsgBuildStorableEventFailed, buildErr, logAttrEventType, result.eventType)

			return nil, 0, errors.Join(eventlog.ErrBuildingStorableEventFailed, buildErr)
		}

		events = append(events, event)
		maxSequenceNumber = result.sequenceNumber
	}

	if err := rows.Err(); err != nil {
		l.observer.LogError(ctx, logMsgScanRowFailed, err)

		return nil, 0, errors.Join(eventlog.ErrScanningDBRowFailed, err)
	}

	return events, maxSequenceNumber, nil
}

// Append stores the events if the highest sequence number matching filter is still expectedMaxSequenceNumber.
// It fails with eventlog.ErrConcurrencyConflict otherwise, and then nothing is stored.
func (l EventLog) Append(
	ctx context.Context,
	filter eventlog.Filter,
	expectedMaxSequenceNumber eventlog.MaxSequenceNumberUint,
	event eventlog.StorableEvent,
	additionalEvents ...eventlog.StorableEvent,
) error {

	start := time.Now()
	allEvents := append(eventlog.StorableEvents{event}, additionalEvents...)

	maxSeqQuery, buildMaxErr := l.buildMaxSequenceQuery(filter)
	insertQuery, buildInsertErr := l.buildInsertQuery(allEvents)
	if buildErr := errors.Join(buildMaxErr, buildInsertErr); buildErr != nil {
		l.observer.LogError(ctx, logMsgBuildInsertQueryFailed, buildErr, logAttrEventCount, len(allEvents))
		l.observer.OperationFailed(eventlog.OperationAppend, errorTypeBuildQuery)

		return buildErr
	}

	tx, beginErr := l.db.BeginTx(ctx, nil)
	if beginErr != nil {
		return l.transactionFailed(ctx, beginErr)
	}

	var current sql.NullInt64
	if err := tx.QueryRowContext(ctx, maxSeqQuery).Scan(&current); err != nil {
		l.rollback(ctx, tx)

		return l.transactionFailed(ctx, err)
	}
	l.observer.LogSQL(ctx, logActionMaxSequence, maxSeqQuery, time.Since(start))

	actualMaxSequenceNumber := eventlog.MaxSequenceNumberUint(0)
	if current.Valid {
		actualMaxSequenceNumber = eventlog.MaxSequenceNumberUint(current.Int64)
	}

	if actualMaxSequenceNumber != expectedMaxSequenceNumber {
		l.rollback(ctx, tx)
		l.observer.AppendConflicted(time.Since(start))
		l.observer.LogOperation(
			ctx,
			logMsgConcurrencyConflict,
			logAttrExpectedSequence, expectedMaxSequenceNumber,
			logAttrActualSequence, actualMaxSequenceNumber,
		)

		return eventlog.ErrConcurrencyConflict
	}

	if _, err := tx.ExecContext(ctx, insertQuery); err != nil {
		l.rollback(ctx, tx)

		return l.transactionFailed(ctx, errors.Join(eventlog.ErrAppendingEventFailed, err))
	}
	l.observer.LogSQL(ctx, logActionAppend, insertQuery, time.Since(start))

	if err := tx.Commit(); err != nil {
		return l.transactionFailed(ctx, err)
	}

	duration := time.Since(start)
	l.observer.AppendSucceeded(len(allEvents), duration)
	l.observer.LogOperation(
		ctx,
		logMsgEventsAppended,
		logAttrEventCount, len(allEvents),
		logAttrDurationMS, observer.ToMilliseconds(duration),
	)

	return nil
}

func (l EventLog) transactionFailed(ctx context.Context, err error) error {
	l.observer.LogError(ctx, logMsgTransactionFailed, err)
	l.observer.OperationFailed(eventlog.OperationAppend, errorTypeDatabase)

	return errors.Join(eventlog.ErrTransactionFailed, err)
}

func (l EventLog) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		l.observer.LogWarning(ctx, logMsgRollbackFailed, err)
	}
}

func (l EventLog) closeRows(ctx context.Context, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		l.observer.LogWarning(ctx, logMsgCloseRowsFailed, err)
	}
}

func (l EventLog) buildSelectQuery(filter eventlog.Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectSQLite).
		From(l.eventTableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	selectStmt = l.addWhereClause(filter, selectStmt)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventlog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l EventLog) buildMaxSequenceQuery(filter eventlog.Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectSQLite).
		From(l.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq))

	selectStmt = l.addWhereClause(filter, selectStmt)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventlog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l EventLog) buildInsertQuery(events eventlog.StorableEvents) (sqlQueryString, error) {
	rows := make([]any, 0, len(events))
	for _, event := range events {
		rows = append(rows, goqu.Record{
			colEventType:  event.EventType,
			colOccurredAt: event.OccurredAt.UnixNano(),
			colPayload:    string(event.PayloadJSON),
			colMetadata:   string(event.MetadataJSON),
		})
	}

	insertStmt := goqu.Dialect(dialectSQLite).
		Insert(l.eventTableName).
		Rows(rows...)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventlog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l EventLog) addWhereClause(filter eventlog.Filter, selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	itemsExpressions := make([]goqu.Expression, 0)

	for _, item := range filter.Items() {
		eventTypeExpressions := make([]goqu.Expression, 0)
		predicateExpressions := make([]goqu.Expression, 0)

		for _, eventType := range item.EventTypes() {
			eventTypeExpressions = append(eventTypeExpressions, goqu.Ex{colEventType: eventType})
		}

		for _, predicate := range item.Predicates() {
			predicateExpressions = append(
				predicateExpressions,
				goqu.L(jsonExtractEquals, "$."+predicate.Key(), predicate.Val()),
			)
		}

		var predicatesExpressionList exp.ExpressionList

		if item.AllPredicatesMustMatch() {
			predicatesExpressionList = goqu.And(predicateExpressions...)
		} else {
			predicatesExpressionList = goqu.Or(predicateExpressions...)
		}

		itemsExpressions = append(
			itemsExpressions,
			goqu.And(goqu.Or(eventTypeExpressions...), predicatesExpressionList),
		)
	}

	occurredAtExpressions := make([]goqu.Expression, 0)

	if !filter.OccurredFrom().IsZero() {
		occurredAtExpressions = append(
			occurredAtExpressions,
			goqu.C(colOccurredAt).Gte(filter.OccurredFrom().UnixNano()),
		)
	}

	if !filter.OccurredUntil().IsZero() {
		occurredAtExpressions = append(
			occurredAtExpressions,
			goqu.C(colOccurredAt).Lte(filter.OccurredUntil().UnixNano()),
		)
	}

	return selectStmt.Where(
		goqu.And(
			goqu.Or(itemsExpressions...),
			goqu.And(occurredAtExpressions...),
		),
	)
}
