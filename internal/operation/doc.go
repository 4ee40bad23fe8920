// Package operation drives long-running assistant operations from start
// to terminal outcome, one per user at a time.
//
// The Manager owns the per-user registry and wires each operation to a
// deadline in the scheduler and to the extension gate. Each started
// operation gets a runner goroutine that consumes the assistant's event
// stream in order, maintains the user-visible progress message, tracks
// compaction sub-phases and stream silence, and evaluates the
// auto-extension policy on a fixed cadence. The terminal outcome is
// latched: whichever of completion, cancellation, timeout, or stream
// error arrives first wins, and everything later is ignored.
package operation
