package push

import (
	"encoding/json"
	"fmt"
)

// DecodePayload decodes the first event argument into out. The socket.io
// parser hands payloads over as generic maps, so they take one round trip
// through json to land in a typed struct.
func DecodePayload(data []interface{}, out interface{}) error {
	if len(data) == 0 || data[0] == nil {
		return fmt.Errorf("event carried no payload")
	}

	raw, err := json.Marshal(data[0])
	if err != nil {
		return fmt.Errorf("failed to re-encode event payload: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode event payload: %w", err)
	}
	return nil
}
