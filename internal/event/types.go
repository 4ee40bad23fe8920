// Package event defines event types for decoupling the timeout engine
// from the chat transport that presents its outcomes. The engine
// publishes lifecycle and extension events without knowing who renders
// them; the transport subscribes without knowing how decisions are made.
package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "operation.started", "extension.granted")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Operation Lifecycle Events
// -----------------------------------------------------------------------------

// OperationStartedEvent is emitted when an operation begins for a user.
type OperationStartedEvent struct {
	baseEvent
	UserID      string        // User the operation belongs to
	OperationID string        // Unique identifier for this operation
	Budget      time.Duration // Initial time budget
}

// NewOperationStartedEvent creates an OperationStartedEvent.
func NewOperationStartedEvent(userID, operationID string, budget time.Duration) OperationStartedEvent {
	return OperationStartedEvent{
		baseEvent:   newBaseEvent("operation.started"),
		UserID:      userID,
		OperationID: operationID,
		Budget:      budget,
	}
}

// OperationEndedEvent is emitted when an operation reaches a terminal
// outcome, whatever that outcome is.
type OperationEndedEvent struct {
	baseEvent
	UserID      string // User the operation belonged to
	OperationID string // Operation that ended
	Status      string // Terminal status ("completed", "cancelled", "timed_out", "failed")
	Runtime     time.Duration
}

// NewOperationEndedEvent creates an OperationEndedEvent.
func NewOperationEndedEvent(userID, operationID, status string, runtime time.Duration) OperationEndedEvent {
	return OperationEndedEvent{
		baseEvent:   newBaseEvent("operation.ended"),
		UserID:      userID,
		OperationID: operationID,
		Status:      status,
		Runtime:     runtime,
	}
}

// -----------------------------------------------------------------------------
// Extension Events
// -----------------------------------------------------------------------------

// ExtensionGrantedEvent is emitted when an extension attempt lands and
// the user's deadline has been pushed out.
type ExtensionGrantedEvent struct {
	baseEvent
	UserID         string        // User whose deadline was extended
	Kind           string        // "auto" or "manual"
	Added          time.Duration // Time added by this extension
	TotalExtension time.Duration // Accumulated extension after this grant
}

// NewExtensionGrantedEvent creates an ExtensionGrantedEvent.
func NewExtensionGrantedEvent(userID, kind string, added, total time.Duration) ExtensionGrantedEvent {
	return ExtensionGrantedEvent{
		baseEvent:      newBaseEvent("extension.granted"),
		UserID:         userID,
		Kind:           kind,
		Added:          added,
		TotalExtension: total,
	}
}

// ExtensionDeniedEvent is emitted when an extension attempt is skipped.
// Denial is an expected outcome, not an error: contention and policy
// rejections both land here.
type ExtensionDeniedEvent struct {
	baseEvent
	UserID string // User whose extension was denied
	Kind   string // "auto" or "manual"
	Reason string // Why the attempt was skipped (e.g. "contended", "ceiling", "idle")
}

// NewExtensionDeniedEvent creates an ExtensionDeniedEvent.
func NewExtensionDeniedEvent(userID, kind, reason string) ExtensionDeniedEvent {
	return ExtensionDeniedEvent{
		baseEvent: newBaseEvent("extension.denied"),
		UserID:    userID,
		Kind:      kind,
		Reason:    reason,
	}
}

// -----------------------------------------------------------------------------
// Compaction Events
// -----------------------------------------------------------------------------

// CompactionStartedEvent is emitted when the assistant begins compacting
// conversation context mid-operation.
type CompactionStartedEvent struct {
	baseEvent
	UserID      string
	OperationID string
}

// NewCompactionStartedEvent creates a CompactionStartedEvent.
func NewCompactionStartedEvent(userID, operationID string) CompactionStartedEvent {
	return CompactionStartedEvent{
		baseEvent:   newBaseEvent("compaction.started"),
		UserID:      userID,
		OperationID: operationID,
	}
}

// CompactionFinishedEvent is emitted when a compaction sub-phase ends.
type CompactionFinishedEvent struct {
	baseEvent
	UserID      string
	OperationID string
	Success     bool
	Duration    time.Duration
	Metric      string // Optional metric reported by the assistant (e.g. tokens saved)
}

// NewCompactionFinishedEvent creates a CompactionFinishedEvent.
func NewCompactionFinishedEvent(userID, operationID string, success bool, duration time.Duration, metric string) CompactionFinishedEvent {
	return CompactionFinishedEvent{
		baseEvent:   newBaseEvent("compaction.finished"),
		UserID:      userID,
		OperationID: operationID,
		Success:     success,
		Duration:    duration,
		Metric:      metric,
	}
}

// -----------------------------------------------------------------------------
// Heartbeat Events
// -----------------------------------------------------------------------------

// HeartbeatStalledEvent is emitted when no stream event has been seen
// for the configured warning interval and the user has been warned that
// the operation is still running.
type HeartbeatStalledEvent struct {
	baseEvent
	UserID      string
	OperationID string
	Silence     time.Duration // Time since the last stream event
}

// NewHeartbeatStalledEvent creates a HeartbeatStalledEvent.
func NewHeartbeatStalledEvent(userID, operationID string, silence time.Duration) HeartbeatStalledEvent {
	return HeartbeatStalledEvent{
		baseEvent:   newBaseEvent("heartbeat.stalled"),
		UserID:      userID,
		OperationID: operationID,
		Silence:     silence,
	}
}
