package groundcontrol

import (
	"fmt"

	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Delivery is one dispatched topic and payload. The most recent delivery that
// matched a pattern is cached on that pattern and replayed to late subscribers.
type Delivery struct {
	Topic     string          `json:"topic"`
	Payload   any             `json:"payload"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

// MarshalJSON implements custom JSON marshaling for Delivery
func (d Delivery) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes([]byte(`{}`), "topic", d.Topic)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(d.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	result, err = sjson.SetRawBytes(result, "payload", payload)
	if err != nil {
		return nil, err
	}

	if !d.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", d.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Delivery.
// Payloads decode into the generic JSON shapes (map[string]any, []any,
// float64, string, bool, nil).
func (d *Delivery) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	topic := gjson.GetBytes(data, "topic")
	if !topic.Exists() {
		return fmt.Errorf("missing required field 'topic'")
	}
	d.Topic = topic.String()

	d.Payload = nil
	if payload := gjson.GetBytes(data, "payload"); payload.Exists() {
		d.Payload = payload.Value()
	}

	d.Timestamp = strfmt.DateTime{}
	if ts := gjson.GetBytes(data, "timestamp"); ts.Exists() {
		parsed, err := strfmt.ParseDateTime(ts.String())
		if err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
		d.Timestamp = parsed
	}
	return nil
}

// Binding describes one registered pattern, see Hub.Snapshot.
type Binding struct {
	Pattern     string    `json:"pattern"`
	Subscribers []string  `json:"subscribers"`
	Cached      *Delivery `json:"cached,omitempty"`
}
