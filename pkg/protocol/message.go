// Package protocol defines the two wire formats used by beacon: the 5-byte
// motor command frame written to the serial link, and the JSON envelope the
// read-only dashboard pushes over WebSocket.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of dashboard message
type MessageType string

const (
	TypeStatus    MessageType = "status"    // Alignment + link snapshot
	TypeDetection MessageType = "detection" // Per-frame detection summary
	TypeLog       MessageType = "log"       // Operator-facing log line

	TypePing MessageType = "ping"
	TypePong MessageType = "pong"
)

// Message is the base wrapper for all dashboard messages
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
	return &msg, nil
}

// StatusData is the read-only status surface: alignment state, motor state
// and link state as seen at the end of the last processed frame.
type StatusData struct {
	Session string `json:"session"`

	AutoAlign  bool    `json:"auto_align"`
	Aligned    bool    `json:"aligned"`
	PixelError float64 `json:"pixel_error"`
	Threshold  float64 `json:"threshold"`

	MotorState  string  `json:"motor_state"`
	LastCommand int     `json:"last_command"` // -5..5
	Position    float64 `json:"position"`     // dead-reckoned, advisory only

	Connected bool   `json:"connected"`
	Port      string `json:"port"`

	DetectionMode string  `json:"detection_mode"`
	Circularity   float64 `json:"circularity_threshold"`
	FPS           float64 `json:"fps"`
	ProcessingMS  float64 `json:"processing_ms"`
	Frames        uint64  `json:"frames"`
}

// DetectionData summarises one analyzed frame
type DetectionData struct {
	FrameID    uint64   `json:"frame_id"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Candidates int      `json:"candidates"`
	Best       *Target  `json:"best,omitempty"`
	All        []Target `json:"all,omitempty"`
}

// Target is the dashboard view of one accepted candidate
type Target struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Radius      float64 `json:"radius"`
	Area        float64 `json:"area"`
	Circularity float64 `json:"circularity"`
}

// LogData is one operator-facing log line
type LogData struct {
	Level   string `json:"level"` // info, warn, error, align, serial
	Message string `json:"message"`
}
