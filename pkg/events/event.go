package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Domain event types.
const (
	UserRegistered         = "USER_REGISTERED"
	BundleCreated          = "BUNDLE_CREATED"
	BundleCancelled        = "BUNDLE_CANCELLED"
	BundleRenewed          = "BUNDLE_RENEWED"
	BundlePaymentFailed    = "BUNDLE_PAYMENT_FAILED"
	BundleAutoRenewToggled = "BUNDLE_AUTO_RENEW_TOGGLED"
	QuotaExhausted         = "QUOTA_EXHAUSTED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "USER_REGISTERED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func New(eventType string, data map[string]interface{}, occurredAt time.Time) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: occurredAt}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Encode serializes any Event into the JSON envelope used on every bus.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(BaseEvent{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()})
}

func Decode(raw []byte) (BaseEvent, error) {
	var e BaseEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return BaseEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return BaseEvent{}, fmt.Errorf("decode event: missing type")
	}
	return e, nil
}

// String reads a string field from the payload, "" when absent.
func (e BaseEvent) String(key string) string {
	v, _ := e.Data[key].(string)
	return v
}
