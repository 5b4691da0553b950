package protocol

// Lane is the handling lane an inbound message is routed to.
//
// The strategic lane is non-executing: it covers planning, design and
// approach questions. The implementation lane is action-oriented.
type Lane string

const (
	LaneStrategic      Lane = "strategic"
	LaneImplementation Lane = "implementation"
)

// IsValid reports whether s names a known lane. Matching is case-sensitive.
func IsValid(s string) bool {
	switch Lane(s) {
	case LaneStrategic, LaneImplementation:
		return true
	default:
		return false
	}
}

// ValidLanes returns every known lane in declaration order.
func ValidLanes() []Lane {
	return []Lane{LaneStrategic, LaneImplementation}
}
