package testdoubles

import (
	"context"
	"strings"
	"sync"
)

// ContextualLoggerSpy satisfies both the plain and the contextual logger interfaces
// and captures every call.
type ContextualLoggerSpy struct {
	records []SpyLogRecord
	mu      sync.Mutex
}

// SpyLogRecord represents a captured log call. Context is nil for plain logger calls.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{}
}

func (s *ContextualLoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{Level: level, Message: msg, Args: args, Context: ctx})
}

func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "debug", msg, args)
}

func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "info", msg, args)
}

func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "warn", msg, args)
}

func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "error", msg, args)
}

func (s *ContextualLoggerSpy) Debug(msg string, args ...any) { s.record(nil, "debug", msg, args) } //nolint:staticcheck

func (s *ContextualLoggerSpy) Info(msg string, args ...any) { s.record(nil, "info", msg, args) } //nolint:staticcheck

func (s *ContextualLoggerSpy) Warn(msg string, args ...any) { s.record(nil, "warn", msg, args) } //nolint:staticcheck

func (s *ContextualLoggerSpy) Error(msg string, args ...any) { s.record(nil, "error", msg, args) } //nolint:staticcheck

// Records returns a copy of all captured calls with the given level, all levels if level is empty.
func (s *ContextualLoggerSpy) Records(level string) []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyLogRecord, 0, len(s.records))
	for _, r := range s.records {
		if level == "" || r.Level == level {
			records = append(records, r)
		}
	}

	return records
}

// HasMessageContaining reports whether any call with the given level has a message containing part.
func (s *ContextualLoggerSpy) HasMessageContaining(level, part string) bool {
	for _, r := range s.Records(level) {
		if strings.Contains(r.Message, part) {
			return true
		}
	}

	return false
}
