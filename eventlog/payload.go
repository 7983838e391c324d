package eventlog

import (
	"errors"

	jsoniter "github.com/json-iterator/go"
)

var ErrDecodingPayloadFailed = errors.New("decoding payload for filter matching failed")

// PayloadValues returns the top-level string fields of a JSON object payload.
// Fields of other JSON types can never match a FilterPredicate and are left out.
func PayloadValues(payloadJSON []byte) (map[FilterKeyString]FilterValString, error) {
	raw := make(map[string]any)

	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &raw); err != nil {
		return nil, errors.Join(ErrDecodingPayloadFailed, err)
	}

	values := make(map[FilterKeyString]FilterValString, len(raw))

	for key, val := range raw {
		if s, ok := val.(string); ok {
			values[key] = s
		}
	}

	return values, nil
}
