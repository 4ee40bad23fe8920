// Package event provides a pub-sub event bus for decoupled communication
// between the timeout engine and its consumers.
//
// The chat transport layer subscribes to events to render notices to the
// user; the operation runner and extension gate publish them without
// knowing who listens. This keeps the engine free of any presentation
// dependency.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// Operation lifecycle:
//   - [OperationStartedEvent]: Emitted when an operation begins for a user
//   - [OperationEndedEvent]: Emitted exactly once per operation, on the terminal outcome
//
// Extension decisions:
//   - [ExtensionGrantedEvent]: Emitted when an extension lands (auto or manual)
//   - [ExtensionDeniedEvent]: Emitted when an attempt is skipped (contention or policy)
//
// Sub-phase tracking:
//   - [CompactionStartedEvent], [CompactionFinishedEvent]: Context compaction timing
//   - [HeartbeatStalledEvent]: Emitted when a quiet operation triggers a stall warning
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Multiple goroutines can publish
// and subscribe concurrently. Handlers are called synchronously and protected
// against panics - a panicking handler will not prevent other handlers from
// being called.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	// Subscribe to specific event types
//	bus.Subscribe("extension.granted", func(e event.Event) {
//	    granted := e.(event.ExtensionGrantedEvent)
//	    log.Printf("user %s gained %s", granted.UserID, granted.Added)
//	})
//
//	// Subscribe to all events (useful for logging)
//	bus.SubscribeAll(func(e event.Event) {
//	    log.Printf("Event: %s at %v", e.EventType(), e.Timestamp())
//	})
//
//	// Publish events
//	bus.Publish(event.NewOperationStartedEvent("u1", "op-1", 30*time.Minute))
//
//	// Unsubscribe when done
//	id := bus.Subscribe("operation.ended", handler)
//	bus.Unsubscribe(id)
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - operation.started, operation.ended
//   - extension.granted, extension.denied
//   - compaction.started, compaction.finished
//   - heartbeat.stalled
package event
