// Package protocol defines the WebSocket message types exchanged between
// gaze sources (tracker bridges, the simulator) and gaze consumers.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Source → consumer messages
	TypeHello   MessageType = "hello"   // Device description, sent once on connect
	TypeSample  MessageType = "sample"  // One gaze sample
	TypeSamples MessageType = "samples" // Batch of gaze samples

	// Engine → dashboard messages
	TypeEvent  MessageType = "event"  // Dispatched gaze event
	TypeStatus MessageType = "status" // Session status

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// Source → Consumer Message Types
// =============================================================================

// HelloData describes the device behind a sample stream
type HelloData struct {
	DeviceID   string `json:"device_id"`
	Model      string `json:"model,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"` // Hz
}

// SampleData is one gaze sample. X and Y are normalized display coordinates.
type SampleData struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Valid bool    `json:"valid"`
	TS    int64   `json:"ts,omitempty"` // Device timestamp, Unix microseconds
}

// SamplesData is a batch of samples in arrival order
type SamplesData struct {
	Samples []SampleData `json:"samples"`
}

// =============================================================================
// Engine → Dashboard Message Types
// =============================================================================

// EventData is a dispatched gaze event
type EventData struct {
	SessionID string  `json:"session_id,omitempty"`
	Event     string  `json:"event"` // "gaze", "idle", "still", "exit"
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	PixelX    *int    `json:"px,omitempty"`
	PixelY    *int    `json:"py,omitempty"`
}

// StatusData describes the running session
type StatusData struct {
	State     string `json:"state"`
	SessionID string `json:"session_id,omitempty"`
	Backend   string `json:"backend,omitempty"`
	Events    int64  `json:"events"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
