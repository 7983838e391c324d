package postgreslog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/eventlog/internal/observer"
	"github.com/AntonStoeckl/library-lending/eventlog/postgreslog/internal/adapters"
)

const (
	engineName                     = "postgres"
	defaultEventTableName          = "events"
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logMsgQueryCompleted           = "query completed"
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logAttrQuery                   = "query"
	logAttrEventType               = "event_type"
	logAttrEventCount              = "event_count"
	logAttrDurationMS              = "duration_ms"
	logAttrExpectedEvents          = "expected_events"
	logAttrRowsAffected            = "rows_affected"
	logAttrExpectedSequence        = "expected_sequence"
	logAttrConsistency             = "consistency"
	logAttrSerializationFailure    = "serialization_failure"
	logActionQuery                 = "query"
	logActionAppend                = "append"
	errorTypeBuildQuery            = "build_query"
	errorTypeDatabase              = "database"
	errorTypeScan                  = "scan"
	colEventType                   = "event_type"
	colOccurredAt                  = "occurred_at"
	colPayload                     = "payload"
	colMetadata                    = "metadata"
	colSequenceNumber              = "sequence_number"
	colOrdinal                     = "ordinal"
	cteContext                     = "context"
	cteVals                        = "vals"
	dialectPostgres                = "postgres"
	aliasMaxSeq                    = "max_seq"
	castText                       = "?::text"
	castTimestamp                  = "?::timestamp with time zone"
	castJsonb                      = "?::jsonb"
	payloadContains                = colPayload + " @> ?::jsonb"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
)

// EventLog is the PostgreSQL engine. It is a value type and safe for concurrent use.
type EventLog struct {
	db             adapters.DBAdapter
	eventTableName string
	replica        *pgxpool.Pool
	observer       observer.Observer
}

type queryResultRow struct {
	eventType      string
	payload        []byte
	metadata       []byte
	occurredAt     time.Time
	sequenceNumber eventlog.MaxSequenceNumberUint
}

// NewFromPGXPool creates a new EventLog using a pgx Pool with optional configuration.
func NewFromPGXPool(db *pgxpool.Pool, options ...Option) (EventLog, error) {
	if db == nil {
		return EventLog{}, eventlog.ErrNilDatabaseConnection
	}

	l, err := newEventLog(options)
	if err != nil {
		return EventLog{}, err
	}

	switch l.replica {
	case nil:
		l.db = adapters.NewPGXAdapter(db)
	default:
		l.db = adapters.NewPGXAdapterWithReplica(db, l.replica)
	}

	return l, nil
}

// NewFromSQLDB creates a new EventLog using a sql.DB, opened with lib/pq or pgx/stdlib.
func NewFromSQLDB(db *sql.DB, options ...Option) (EventLog, error) {
	if db == nil {
		return EventLog{}, eventlog.ErrNilDatabaseConnection
	}

	l, err := newEventLog(options)
	if err != nil {
		return EventLog{}, err
	}

	if l.replica != nil {
		return EventLog{}, ErrReplicaRequiresPGXPool
	}

	l.db = adapters.NewSQLAdapter(db)

	return l, nil
}

// NewFromSQLX creates a new EventLog using a sqlx.DB with optional configuration.
func NewFromSQLX(db *sqlx.DB, options ...Option) (EventLog, error) {
	if db == nil {
		return EventLog{}, eventlog.ErrNilDatabaseConnection
	}

	l, err := newEventLog(options)
	if err != nil {
		return EventLog{}, err
	}

	if l.replica != nil {
		return EventLog{}, ErrReplicaRequiresPGXPool
	}

	l.db = adapters.NewSQLXAdapter(db)

	return l, nil
}

func newEventLog(options []Option) (EventLog, error) {
	l := EventLog{
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

// Query retrieves all events matching filter in sequence order,
// as well as the MaxSequenceNumberUint for this "dynamic event stream" at the time of the query.
//
// With eventlog.WithEventualConsistency on ctx, the read may be served by the replica.
func (l EventLog) Query(ctx context.Context, filter eventlog.Filter) (
	eventlog.StorableEvents,
	eventlog.MaxSequenceNumberUint,
	error,
) {

	start := time.Now()

	sqlQuery, buildQueryErr := l.buildSelectQuery(filter)
	if buildQueryErr != nil {
		l.observer.LogError(ctx, logMsgBuildSelectQueryFailed, buildQueryErr)
		l.observer.OperationFailed(eventlog.OperationQuery, errorTypeBuildQuery)

		return nil, 0, buildQueryErr
	}

	rows, queryErr := l.db.Query(ctx, sqlQuery)
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
		logAttrConsistency, eventlog.GetConsistencyLevel(ctx).String(),
	)

	return events, maxSequenceNumber, nil
}

func (l EventLog) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		l.observer.LogWarning(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

func (l EventLog) processQueryResults(ctx context.Context, rows adapters.DBRows) (
	eventlog.StorableEvents,
	eventlog.MaxSequenceNumberUint,
	error,
) {

	result := queryResultRow{}
	events := make(eventlog.StorableEvents, 0)
	maxSequenceNumber := eventlog.MaxSequenceNumberUint(0)

	for rows.Next() {
		rowScanErr := rows.Scan(&result.eventType, &result.occurredAt, &result.payload, &result.metadata, &result.sequenceNumber)
		if rowScanErr != nil {
			l.observer.LogError(ctx, logMsgScanRowFailed, rowScanErr)

			return nil, 0, errors.Join(eventlog.ErrScanningDBRowFailed, rowScanErr)
		}

		event, buildStorableErr := eventlog.BuildStorableEvent(result.eventType, result.occurredAt, result.payload, result.metadata)
		if buildStorableErr != nil {
			l.observer.LogError(ctx, logMsgBuildStorableEventFailed, buildStorableErr, logAttrEventType, result.eventType)

			return nil, 0, errors.Join(eventlog.ErrBuildingStorableEventFailed, buildStorableErr)
		}

		events = append(events, event)
		maxSequenceNumber = result.sequenceNumber
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		l.observer.LogError(ctx, logMsgScanRowFailed, rowsErr)

		return nil, 0, errors.Join(eventlog.ErrScanningDBRowFailed, rowsErr)
	}

	return events, maxSequenceNumber, nil
}

// Append appends one or more events atomically, respecting the concurrency constraints
// of the "dynamic event stream" selected by filter and the expected MaxSequenceNumberUint.
//
// The filter should be the one used for the Query before making the business decision.
func (l EventLog) Append(
	ctx context.Context,
	filter eventlog.Filter,
	expectedMaxSequenceNumber eventlog.MaxSequenceNumberUint,
	event eventlog.StorableEvent,
	additionalEvents ...eventlog.StorableEvent,
) error {

	start := time.Now()
	allEvents := append(eventlog.StorableEvents{event}, additionalEvents...)

	sqlQuery, buildQueryErr := l.buildAppendQuery(allEvents, filter, expectedMaxSequenceNumber)
	if buildQueryErr != nil {
		l.observer.LogError(ctx, logMsgBuildInsertQueryFailed, buildQueryErr, logAttrEventCount, len(allEvents))
		l.observer.OperationFailed(eventlog.OperationAppend, errorTypeBuildQuery)

		return buildQueryErr
	}

	rowsAffected, execErr := l.executeAppendQuery(ctx, sqlQuery)
	duration := time.Since(start)

	if execErr != nil {
		if adapters.IsSerializationFailure(execErr) {
			l.conflicted(ctx, duration, len(allEvents), 0, expectedMaxSequenceNumber, true)

			return eventlog.ErrConcurrencyConflict
		}

		l.observer.OperationFailed(eventlog.OperationAppend, errorTypeDatabase)

		return execErr
	}

	if rowsAffected < int64(len(allEvents)) {
		l.conflicted(ctx, duration, len(allEvents), rowsAffected, expectedMaxSequenceNumber, false)

		return eventlog.ErrConcurrencyConflict
	}

	l.observer.AppendSucceeded(len(allEvents), duration)
	l.observer.LogOperation(
		ctx,
		logMsgEventsAppended,
		logAttrEventCount, len(allEvents),
		logAttrDurationMS, observer.ToMilliseconds(duration),
	)

	return nil
}

func (l EventLog) conflicted(
	ctx context.Context,
	duration time.Duration,
	expectedEventCount int,
	rowsAffected rowsAffectedInt64,
	expectedMaxSequenceNumber eventlog.MaxSequenceNumberUint,
	serializationFailure bool,
) {

	l.observer.AppendConflicted(duration)
	l.observer.LogOperation(
		ctx,
		logMsgConcurrencyConflict,
		logAttrExpectedEvents, expectedEventCount,
		logAttrRowsAffected, rowsAffected,
		logAttrExpectedSequence, expectedMaxSequenceNumber,
		logAttrSerializationFailure, serializationFailure,
	)
}

// executeAppendQuery executes the SQL append query and returns the affected row count.
func (l EventLog) executeAppendQuery(ctx context.Context, sqlQuery string) (rowsAffectedInt64, error) {
	start := time.Now()
	result, execErr := l.db.ExecSerializable(ctx, sqlQuery)
	l.observer.LogSQL(ctx, logActionAppend, sqlQuery, time.Since(start))

	if execErr != nil {
		if adapters.IsSerializationFailure(execErr) {
			return 0, execErr
		}

		l.observer.LogError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)

		return 0, errors.Join(eventlog.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		l.observer.LogError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)

		return 0, errors.Join(eventlog.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// buildAppendQuery builds the appropriate SQL query for single or multiple events.
func (l EventLog) buildAppendQuery(
	allEvents eventlog.StorableEvents,
	filter eventlog.Filter,
	expectedMaxSequenceNumber eventlog.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	switch len(allEvents) {
	case 1:
		return l.buildInsertQueryForSingleEvent(allEvents[0], filter, expectedMaxSequenceNumber)

	default:
		return l.buildInsertQueryForMultipleEvents(allEvents, filter, expectedMaxSequenceNumber)
	}
}

func (l EventLog) buildSelectQuery(filter eventlog.Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(l.eventTableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	selectStmt, whereErr := l.addWhereClause(filter, selectStmt)
	if whereErr != nil {
		return "", whereErr
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventlog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l EventLog) buildContextCTE(builder goqu.DialectWrapper, filter eventlog.Filter) (*goqu.SelectDataset, error) {
	cteStmt := builder.
		From(l.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq))

	return l.addWhereClause(filter, cteStmt)
}

func (l EventLog) buildInsertQueryForSingleEvent(
	event eventlog.StorableEvent,
	filter eventlog.Filter,
	expectedMaxSequenceNumber eventlog.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	cteStmt, cteErr := l.buildContextCTE(builder, filter)
	if cteErr != nil {
		return "", cteErr
	}

	selectStmt := builder.
		From(cteContext).
		Select(
			goqu.L(castText, event.EventType),
			goqu.L(castTimestamp, event.OccurredAt),
			goqu.L(castJsonb, string(event.PayloadJSON)),
			goqu.L(castJsonb, string(event.MetadataJSON)),
		).
		Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber)))

	insertStmt := builder.
		Insert(l.eventTableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		FromQuery(selectStmt).
		With(cteContext, cteStmt)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventlog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l EventLog) buildInsertQueryForMultipleEvents(
	events eventlog.StorableEvents,
	filter eventlog.Filter,
	expectedMaxSequenceNumber eventlog.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	cteStmt, cteErr := l.buildContextCTE(builder, filter)
	if cteErr != nil {
		return "", cteErr
	}

	// one SELECT per event, combined with UNION ALL; the ordinal keeps the insert order stable
	var valuesStmt *goqu.SelectDataset
	for i, event := range events {
		stmt := builder.Select(
			goqu.L(castText, event.EventType).As(colEventType),
			goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
			goqu.L(castJsonb, string(event.PayloadJSON)).As(colPayload),
			goqu.L(castJsonb, string(event.MetadataJSON)).As(colMetadata),
			goqu.L("?::int", i).As(colOrdinal),
		)

		if valuesStmt == nil {
			valuesStmt = stmt
			continue
		}

		valuesStmt = valuesStmt.UnionAll(stmt)
	}

	valsColumn := func(col string) string {
		return fmt.Sprintf("%s.%s", cteVals, col)
	}

	insertStmt := builder.
		Insert(l.eventTableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(valsColumn(colEventType), valsColumn(colOccurredAt), valsColumn(colPayload), valsColumn(colMetadata)).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber))).
				Order(goqu.I(valsColumn(colOrdinal)).Asc()),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventlog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l EventLog) addWhereClause(filter eventlog.Filter, selectStmt *goqu.SelectDataset) (*goqu.SelectDataset, error) {
	itemsExpressions := make([]goqu.Expression, 0)

	for _, item := range filter.Items() {
		eventTypeExpressions := make([]goqu.Expression, 0)
		predicateExpressions := make([]goqu.Expression, 0)

		for _, eventType := range item.EventTypes() {
			eventTypeExpressions = append(eventTypeExpressions, goqu.Ex{colEventType: eventType})
		}

		for _, predicate := range item.Predicates() {
			containment, err := jsoniter.ConfigFastest.MarshalToString(map[string]string{predicate.Key(): predicate.Val()})
			if err != nil {
				return nil, errors.Join(eventlog.ErrBuildingQueryFailed, err)
			}

			predicateExpressions = append(predicateExpressions, goqu.L(payloadContains, containment))
		}

		var predicatesExpressionList exp.ExpressionList

		if item.AllPredicatesMustMatch() {
			predicatesExpressionList = goqu.And(predicateExpressions...)
		} else {
			predicatesExpressionList = goqu.Or(predicateExpressions...)
		}

		// event types are always OR-ed
		itemsExpressions = append(
			itemsExpressions,
			goqu.And(goqu.Or(eventTypeExpressions...), predicatesExpressionList),
		)
	}

	occurredAtExpressions := make([]goqu.Expression, 0)

	if !filter.OccurredFrom().IsZero() {
		occurredAtExpressions = append(occurredAtExpressions, goqu.C(colOccurredAt).Gte(filter.OccurredFrom().UTC()))
	}

	if !filter.OccurredUntil().IsZero() {
		occurredAtExpressions = append(occurredAtExpressions, goqu.C(colOccurredAt).Lte(filter.OccurredUntil().UTC()))
	}

	return selectStmt.Where(
		goqu.And(
			goqu.Or(itemsExpressions...),
			goqu.And(occurredAtExpressions...),
		),
	), nil
}
