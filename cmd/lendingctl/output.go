package main

import (
	"errors"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/library-lending/lending/availability"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/shell"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// ErrUnknownOutputFormat is returned for an --output other than json or yaml.
var ErrUnknownOutputFormat = errors.New("unknown output format, use json or yaml")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// actionOutput is what lendingctl prints for an applied action or sweep.
type actionOutput struct {
	Action       string                    `json:"action" yaml:"action"`
	Idempotent   bool                      `json:"idempotent" yaml:"idempotent"`
	Events       []string                  `json:"events" yaml:"events"`
	Loan         *core.Loan                `json:"loan,omitempty" yaml:"loan,omitempty"`
	Reservation  *core.Reservation         `json:"reservation,omitempty" yaml:"reservation,omitempty"`
	Availability availability.Availability `json:"availability" yaml:"availability"`
	Attempts     int                       `json:"attempts" yaml:"attempts"`
	RetryDelay   time.Duration             `json:"retry_delay_ns" yaml:"retry_delay"`
}

func newActionOutput(result shell.HandlerResult) actionOutput {
	events := make([]string, 0, len(result.Result.Events))
	for _, event := range result.Result.Events {
		events = append(events, event.IsEventType())
	}

	return actionOutput{
		Action:       string(result.Result.Action),
		Idempotent:   result.Idempotent,
		Events:       events,
		Loan:         result.Result.Loan,
		Reservation:  result.Result.Reservation,
		Availability: result.Result.Availability,
		Attempts:     result.RetryAttempts,
		RetryDelay:   result.TotalRetryDelay,
	}
}

// catalogOutput is what lendingctl prints for book add and member register.
type catalogOutput struct {
	ID         string `json:"id" yaml:"id"`
	Idempotent bool   `json:"idempotent" yaml:"idempotent"`
	EventCount int    `json:"event_count" yaml:"event_count"`
}

func validOutputFormat(format string) error {
	switch format {
	case outputJSON, outputYAML:
		return nil
	default:
		return ErrUnknownOutputFormat
	}
}

// write prints v in the selected output format.
func (a *app) write(w io.Writer, v any) error {
	if a.output == outputYAML {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)

		if err := encoder.Encode(v); err != nil {
			return err
		}

		return encoder.Close()
	}

	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = w.Write(append(encoded, '\n'))

	return err
}
