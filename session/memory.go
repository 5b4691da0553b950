package session

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/ucf/core/protocol"
)

type memorySession struct {
	id       string
	messages []protocol.Message
	mu       sync.RWMutex
}

// NewMemorySession creates a Session backed by an in-memory slice.
// The session is assigned a unique UUIDv7 identifier.
func NewMemorySession() Session {
	return &memorySession{
		id: uuid.Must(uuid.NewV7()).String(),
	}
}

func (s *memorySession) ID() string {
	return s.id
}

func (s *memorySession) Append(msg protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *memorySession) Messages() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

func (s *memorySession) Recent(n int) []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return []protocol.Message{}
	}
	start := max(len(s.messages)-n, 0)
	return slices.Clone(s.messages[start:])
}

func (s *memorySession) Last() (protocol.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.messages) == 0 {
		return protocol.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

func (s *memorySession) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func (s *memorySession) ByDirection(direction protocol.Direction) []protocol.Message {
	return s.filter(func(m protocol.Message) bool { return m.Direction == direction })
}

func (s *memorySession) ByLane(lane protocol.Lane) []protocol.Message {
	return s.filter(func(m protocol.Message) bool { return m.Lane == lane })
}

func (s *memorySession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

func (s *memorySession) filter(keep func(protocol.Message) bool) []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]protocol.Message, 0)
	for _, m := range s.messages {
		if keep(m) {
			matched = append(matched, m)
		}
	}
	return matched
}
