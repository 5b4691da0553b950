package orchestrator

import "github.com/tailored-agentic-units/ucf/observability"

// Orchestrator event types emitted to the configured observer.
const (
	EventChatReceived         observability.EventType = "orchestrator.chat.received"
	EventChatClassified       observability.EventType = "orchestrator.chat.classified"
	EventChatCompleted        observability.EventType = "orchestrator.chat.completed"
	EventChatScanned          observability.EventType = "orchestrator.chat.scanned"
	EventApprovalRequested    observability.EventType = "orchestrator.approval.requested"
	EventApprovalDecided      observability.EventType = "orchestrator.approval.decided"
	EventChatFinalized        observability.EventType = "orchestrator.chat.finalized"
	EventError                observability.EventType = "orchestrator.error"
	EventExtensionInstalled   observability.EventType = "orchestrator.extension.installed"
	EventExtensionUninstalled observability.EventType = "orchestrator.extension.uninstalled"
	EventBackendChanged       observability.EventType = "orchestrator.backend.changed"
)
