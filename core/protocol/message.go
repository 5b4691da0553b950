package protocol

import (
	"time"

	"github.com/google/uuid"
)

// Direction identifies which side of the conversation produced a message.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// Message represents a single exchanged message in a conversation.
// Inbound messages come from the caller; outbound messages carry completion
// text. Lane is empty when no lane tag applies.
//
// Messages are values. Once appended to a conversation log they are never
// modified in place.
type Message struct {
	ID        string    `json:"id"`
	Direction Direction `json:"direction"`
	Content   string    `json:"content"`
	Lane      Lane      `json:"lane,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a Message with a fresh UUIDv7 identifier stamped at the
// current time.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.Inbound, "Hello, world!", protocol.LaneStrategic)
func NewMessage(direction Direction, content string, lane Lane) Message {
	return NewMessageAt(direction, content, lane, time.Now())
}

// NewMessageAt creates a Message stamped with the given time. Used by callers
// that inject a clock.
func NewMessageAt(direction Direction, content string, lane Lane, at time.Time) Message {
	return Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Direction: direction,
		Content:   content,
		Lane:      lane,
		Timestamp: at,
	}
}
