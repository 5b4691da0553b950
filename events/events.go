// Package events provides the typed publish/subscribe feed owned by each
// orchestrator. Extensions and presentation layers subscribe to it; there is
// no process-wide instance.
package events

import (
	"time"

	"github.com/tailored-agentic-units/ucf/core/protocol"
)

// Type names an event on the feed.
type Type string

const (
	TypeMessage              Type = "message"
	TypeApprovalRequest      Type = "icerc-request"
	TypeApprovalDecision     Type = "icerc-decision"
	TypeExtensionInstalled   Type = "extension-installed"
	TypeExtensionUninstalled Type = "extension-uninstalled"
	TypeError                Type = "error"
)

// Event is a single entry on the feed. Payload holds the value documented
// for Type: protocol.Message, protocol.ApprovalRequest,
// protocol.ApprovalDecision, ExtensionInfo or ErrorInfo.
type Event struct {
	Type      Type
	Timestamp time.Time
	Payload   any
}

// ExtensionInfo identifies an installed or removed extension.
type ExtensionInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ErrorInfo describes a failed round.
type ErrorInfo struct {
	Description string `json:"description"`
	Err         error  `json:"-"`
}

// NewMessageEvent wraps msg.
func NewMessageEvent(msg protocol.Message) Event {
	return Event{Type: TypeMessage, Timestamp: time.Now(), Payload: msg}
}

// NewApprovalRequestEvent wraps req.
func NewApprovalRequestEvent(req protocol.ApprovalRequest) Event {
	return Event{Type: TypeApprovalRequest, Timestamp: time.Now(), Payload: req}
}

// NewApprovalDecisionEvent wraps decision.
func NewApprovalDecisionEvent(decision protocol.ApprovalDecision) Event {
	return Event{Type: TypeApprovalDecision, Timestamp: time.Now(), Payload: decision}
}

// NewExtensionEvent builds an installed or uninstalled event.
func NewExtensionEvent(t Type, name, version string) Event {
	return Event{Type: t, Timestamp: time.Now(), Payload: ExtensionInfo{Name: name, Version: version}}
}

// NewErrorEvent builds an error event from err.
func NewErrorEvent(description string, err error) Event {
	return Event{Type: TypeError, Timestamp: time.Now(), Payload: ErrorInfo{Description: description, Err: err}}
}
