package operation

// StreamKind identifies a stream event from the assistant transport.
type StreamKind int

const (
	// KindContentDelta carries a chunk of user-visible output.
	KindContentDelta StreamKind = iota
	// KindThinking is a reasoning event with no visible output. It still
	// counts as activity for the extension policy and the heartbeat.
	KindThinking
	// KindCompactionStart marks the beginning of a context compaction.
	KindCompactionStart
	// KindCompactionEnd marks the end of a context compaction.
	KindCompactionEnd
	// KindCompleted is the terminal success event.
	KindCompleted
	// KindError is the terminal failure event.
	KindError
)

// String returns a short name for the kind, used in logs.
func (k StreamKind) String() string {
	switch k {
	case KindContentDelta:
		return "content_delta"
	case KindThinking:
		return "thinking"
	case KindCompactionStart:
		return "compaction_start"
	case KindCompactionEnd:
		return "compaction_end"
	case KindCompleted:
		return "completed"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// StreamEvent is one event from the assistant's ordered stream. The
// runner consumes these in arrival order; fields beyond Kind are only
// meaningful for the kinds that document them.
type StreamEvent struct {
	Kind StreamKind

	// Text is the output chunk for KindContentDelta.
	Text string

	// CompactionOK reports compaction success for KindCompactionEnd.
	CompactionOK bool
	// Metric is an optional figure reported with KindCompactionEnd,
	// such as tokens reclaimed.
	Metric string

	// Err is the failure for KindError.
	Err error
}

// ContentDelta builds a content-delta event.
func ContentDelta(text string) StreamEvent {
	return StreamEvent{Kind: KindContentDelta, Text: text}
}

// Thinking builds a reasoning event.
func Thinking() StreamEvent {
	return StreamEvent{Kind: KindThinking}
}

// CompactionStart builds a compaction-start event.
func CompactionStart() StreamEvent {
	return StreamEvent{Kind: KindCompactionStart}
}

// CompactionEnd builds a compaction-end event.
func CompactionEnd(ok bool, metric string) StreamEvent {
	return StreamEvent{Kind: KindCompactionEnd, CompactionOK: ok, Metric: metric}
}

// Completed builds the terminal success event.
func Completed() StreamEvent {
	return StreamEvent{Kind: KindCompleted}
}

// ErrorEvent builds the terminal failure event.
func ErrorEvent(err error) StreamEvent {
	return StreamEvent{Kind: KindError, Err: err}
}
