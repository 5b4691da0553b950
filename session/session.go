// Package session holds the conversation log for an orchestrator: the
// append-only, insertion-ordered record of exchanged messages.
package session

import (
	"github.com/tailored-agentic-units/ucf/core/protocol"
)

// Session holds an ordered sequence of conversation messages. Implementations
// must be safe for concurrent use.
//
// Appended messages are never reordered, modified, or individually removed.
// Clear is the only operation that discards history.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// Append adds a message to the end of the conversation history.
	Append(msg protocol.Message)
	// Messages returns a defensive copy of the conversation history.
	Messages() []protocol.Message
	// Recent returns a copy of the last n messages, or all of them when
	// fewer than n exist. n <= 0 returns an empty slice.
	Recent(n int) []protocol.Message
	// Last returns the most recent message.
	Last() (protocol.Message, bool)
	// Len returns the number of messages in the history.
	Len() int
	// ByDirection returns the messages with the given direction, in order.
	ByDirection(direction protocol.Direction) []protocol.Message
	// ByLane returns the messages tagged with the given lane, in order.
	ByLane(lane protocol.Lane) []protocol.Message
	// Clear resets the conversation history.
	Clear()
}
