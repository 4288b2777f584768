// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/signal-graph/internal/engine"
)

// Topic is the MQTT topic for node output changes.
const Topic = "iot/dataflow/nodes/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "iot/dataflow/nodes/system"

// timestampFormat keeps millisecond resolution; pulses are often shorter than a second.
const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a node output change to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(change engine.Change) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Node NodePayload `json:"node"`
}

// NodePayload contains one output change.
type NodePayload struct {
	Timestamp string `json:"timestamp"`
	ID        string `json:"id"`
	Operator  string `json:"operator"`
	Value     bool   `json:"value"`
}

// FormatPayload creates the JSON payload for a node output change.
func FormatPayload(change engine.Change) ([]byte, error) {
	payload := Payload{
		Node: NodePayload{
			Timestamp: change.Time.UTC().Format(timestampFormat),
			ID:        change.NodeID,
			Operator:  change.Operator,
			Value:     change.Value,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
