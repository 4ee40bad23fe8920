package extension

import "time"

// thresholdFraction is the fraction of the effective duration that must
// have elapsed before an automatic extension is considered. It is computed
// against original + total extension, so repeated extensions keep
// re-triggering at 70% of each new total.
const thresholdFraction = 0.70

// Reason explains a policy verdict
type Reason string

const (
	// ReasonOK means every condition held and an extension should be requested
	ReasonOK Reason = "ok"
	// ReasonNotBusy means no operation is in flight for the user
	ReasonNotBusy Reason = "not_busy"
	// ReasonFinished means the operation already reached a terminal outcome
	ReasonFinished Reason = "finished"
	// ReasonCancelled means cancellation was requested for the operation
	ReasonCancelled Reason = "cancelled"
	// ReasonBelowThreshold means too little of the budget has elapsed
	ReasonBelowThreshold Reason = "below_threshold"
	// ReasonIdle means no stream activity within the activity window
	ReasonIdle Reason = "idle"
	// ReasonCeiling means the extension would push past the absolute ceiling
	ReasonCeiling Reason = "ceiling"
)

// Inputs carries everything the auto-extension decision depends on.
// The decision is a pure function of this struct; callers snapshot the
// values and pass them in.
type Inputs struct {
	// Elapsed is time since the operation's timer was armed.
	Elapsed time.Duration
	// OriginalDuration is the budget the timer was armed with.
	OriginalDuration time.Duration
	// TotalExtension is the sum of all extensions granted so far.
	TotalExtension time.Duration
	// LastEventAge is time since the last stream event was observed.
	LastEventAge time.Duration
	// ActivityWindow is how recent the last event must be.
	ActivityWindow time.Duration
	// MaxTotalDuration is the absolute runtime ceiling.
	MaxTotalDuration time.Duration
	// Step is the amount a granted extension would add.
	Step time.Duration

	// Busy reports whether an operation is in flight for the user.
	Busy bool
	// Finished reports whether the operation reached a terminal outcome.
	Finished bool
	// Cancelled reports whether cancellation was requested.
	Cancelled bool
}

// Verdict is the outcome of a policy evaluation
type Verdict struct {
	Extend bool
	Reason Reason
}

// Decide evaluates whether an automatic extension should be requested.
// Every condition must hold: the operation is alive, at least 70% of the
// current effective duration has elapsed, the stream showed activity
// within the window, and the extension stays under the ceiling.
func Decide(in Inputs) Verdict {
	if !in.Busy {
		return Verdict{Reason: ReasonNotBusy}
	}
	if in.Finished {
		return Verdict{Reason: ReasonFinished}
	}
	if in.Cancelled {
		return Verdict{Reason: ReasonCancelled}
	}

	effective := in.OriginalDuration + in.TotalExtension
	if float64(in.Elapsed) < thresholdFraction*float64(effective) {
		return Verdict{Reason: ReasonBelowThreshold}
	}

	if in.LastEventAge >= in.ActivityWindow {
		return Verdict{Reason: ReasonIdle}
	}

	if in.Elapsed+in.Step > in.MaxTotalDuration {
		return Verdict{Reason: ReasonCeiling}
	}

	return Verdict{Extend: true, Reason: ReasonOK}
}
