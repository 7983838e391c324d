package eventlog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/eventlog"
)

func Test_BuildStorableEvent_ErrorCases(t *testing.T) {
	validTime := time.Now()
	validPayloadJSON := []byte(`{"key": "value"}`)
	validMetadataJSON := []byte(`{"meta": "data"}`)

	tests := []struct {
		name         string
		eventType    string
		payloadJSON  []byte
		metadataJSON []byte
		expectedErr  error
	}{
		{name: "empty event type", eventType: "", payloadJSON: validPayloadJSON, metadataJSON: validMetadataJSON, expectedErr: eventlog.ErrEmptyEventType},
		{name: "invalid payload JSON", eventType: "E", payloadJSON: []byte(`{"invalid": json}`), metadataJSON: validMetadataJSON, expectedErr: eventlog.ErrInvalidPayloadJSON},
		{name: "empty payload JSON", eventType: "E", payloadJSON: []byte(``), metadataJSON: validMetadataJSON, expectedErr: eventlog.ErrInvalidPayloadJSON},
		{name: "invalid metadata JSON", eventType: "E", payloadJSON: validPayloadJSON, metadataJSON: []byte(`{`), expectedErr: eventlog.ErrInvalidMetadataJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eventlog.BuildStorableEvent(tt.eventType, validTime, tt.payloadJSON, tt.metadataJSON)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_BuildStorableEventWithEmptyMetadata_NormalizesTime(t *testing.T) {
	// arrange
	local := time.Date(2025, 3, 3, 10, 0, 0, 987654321, time.FixedZone("CET", 3600))

	// act
	event, err := eventlog.BuildStorableEventWithEmptyMetadata("E", local, []byte(`{}`))

	// assert
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), event.MetadataJSON)
	assert.Equal(t, time.UTC, event.OccurredAt.Location())
	assert.Equal(t, 987654000, event.OccurredAt.Nanosecond())
	assert.True(t, event.OccurredAt.Equal(local.Truncate(time.Microsecond)))
}

func Test_ConsistencyLevel_FromContext(t *testing.T) {
	ctx := t.Context()

	assert.Equal(t, eventlog.StrongConsistency, eventlog.GetConsistencyLevel(ctx))
	assert.Equal(t, eventlog.EventualConsistency, eventlog.GetConsistencyLevel(eventlog.WithEventualConsistency(ctx)))
	assert.Equal(t, "strong", eventlog.GetConsistencyLevel(eventlog.WithStrongConsistency(ctx)).String())
}
