package shell

import (
	"time"

	"github.com/AntonStoeckl/library-lending/lending/coordinator"
)

// HandlerResult represents the outcome of a handler execution.
// It carries the business outcome next to the execution metadata of the retry loop.
type HandlerResult struct {
	// Result is the coordinator outcome of the last, successful attempt. It is empty for
	// catalog commands, failures and rejections.
	Result coordinator.Result

	// Idempotent is true if nothing had to be appended.
	Idempotent bool

	// EventCount is the number of events appended.
	EventCount int

	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in retry backoff delays.
	TotalRetryDelay time.Duration

	// LastErrorType describes the type of the final error encountered during retries.
	// Values: "none", "concurrency_conflict", "rejected", "context_canceled", "context_deadline_exceeded", "other"
	LastErrorType string

	// RetriesExhausted indicates whether max retry attempts were reached with a retryable error.
	RetriesExhausted bool
}

// NewSuccessResult creates a HandlerResult for an attempt that appended eventCount events.
func NewSuccessResult(result coordinator.Result, eventCount int, retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		Result:           result,
		Idempotent:       eventCount == 0,
		EventCount:       eventCount,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}

// NewErrorResult creates a HandlerResult for failed or rejected operations.
// It still reports the retry metadata.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
