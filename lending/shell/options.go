package shell

import (
	"errors"

	"github.com/AntonStoeckl/library-lending/lending/core"
)

// ErrNilEventLog is returned when a handler is built without an event log.
var ErrNilEventLog = errors.New("event log must not be nil")

// ErrNilClock is returned when WithClock gets a nil clock.
var ErrNilClock = errors.New("clock must not be nil")

type handlerOptions struct {
	clock        core.Clock
	retryOptions []RetryOption
	observability
}

// Option configures a CommandHandler or a CatalogHandler.
type Option func(*handlerOptions) error

// WithClock sets the clock that supplies "now" for every attempt. The default is core.SystemClock.
func WithClock(clock core.Clock) Option {
	return func(o *handlerOptions) error {
		if clock == nil {
			return ErrNilClock
		}

		o.clock = clock

		return nil
	}
}

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...RetryOption) Option {
	return func(o *handlerOptions) error {
		o.retryOptions = opts

		return nil
	}
}

// WithLogger sets the logger for the handler.
func WithLogger(logger Logger) Option {
	return func(o *handlerOptions) error {
		o.logger = logger

		return nil
	}
}

// WithContextualLogger sets the context-aware logger, which is preferred over the plain logger.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(o *handlerOptions) error {
		o.contextualLogger = logger

		return nil
	}
}

// WithMetrics sets the metrics collector for the handler and its retry loop.
func WithMetrics(collector MetricsCollector) Option {
	return func(o *handlerOptions) error {
		o.metrics = collector

		return nil
	}
}

func buildHandlerOptions(opts ...Option) (handlerOptions, error) {
	options := handlerOptions{clock: core.SystemClock{}}

	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return handlerOptions{}, err
		}
	}

	return options, nil
}

// retryOptionsFor adds the retry metrics option when a collector is configured.
func (o handlerOptions) retryOptionsFor(commandType string) []RetryOption {
	if o.metrics == nil || commandType == "" {
		return o.retryOptions
	}

	return append(append([]RetryOption{}, o.retryOptions...), WithRetryMetrics(o.metrics, commandType))
}
