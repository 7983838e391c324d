package eventlog

import "context"

// ConsistencyLevel tells an engine where a read may be served from.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. It is the default, because the command handler
	// must see its own writes before it decides and appends.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica. Read models and the sweep scheduler's
	// book discovery use it, both tolerate slightly stale data.
	EventualConsistency
)

type consistencyKey struct{}

// WithStrongConsistency marks ctx for primary reads.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, consistencyKey{}, StrongConsistency)
}

// WithEventualConsistency marks ctx for reads that may go to a replica.
//
//	ctx = eventlog.WithEventualConsistency(ctx)
//	events, _, err := log.Query(ctx, filter)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, consistencyKey{}, EventualConsistency)
}

// GetConsistencyLevel returns the level stored in ctx, StrongConsistency if there is none.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(consistencyKey{}).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

// String returns "strong", "eventual" or "unknown".
func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
