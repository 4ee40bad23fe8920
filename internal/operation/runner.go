package operation

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Iron-Ham/leash/internal/config"
	"github.com/Iron-Ham/leash/internal/errors"
	"github.com/Iron-Ham/leash/internal/event"
	"github.com/Iron-Ham/leash/internal/extension"
	"github.com/Iron-Ham/leash/internal/logging"
	"github.com/Iron-Ham/leash/internal/schedule"
)

// ProgressSink receives user-visible output from a running operation.
// Implementations belong to the chat transport; the engine only decides
// when to call them. UpdateProgress replaces the progress message with
// the accumulated output so far; Notify posts a short standalone notice.
type ProgressSink interface {
	UpdateProgress(text string)
	Notify(text string)
}

type nopSink struct{}

func (nopSink) UpdateProgress(string) {}
func (nopSink) Notify(string)         {}

// NopSink returns a ProgressSink that discards everything.
func NopSink() ProgressSink { return nopSink{} }

// Timing carries the operation timing parameters as durations. The
// engine treats them as constants for the lifetime of one operation.
type Timing struct {
	InitialDuration           time.Duration
	ExtensionStep             time.Duration
	MaxTotalDuration          time.Duration
	ActivityWindow            time.Duration
	AutoCheckInterval         time.Duration
	HeartbeatWarn             time.Duration
	HeartbeatRepeat           time.Duration
	ProgressUpdateInterval    time.Duration
	CompactionNoticeThreshold time.Duration
}

// TimingFromConfig converts an OperationConfig into a Timing.
func TimingFromConfig(c config.OperationConfig) Timing {
	return Timing{
		InitialDuration:           c.InitialDuration(),
		ExtensionStep:             c.ExtensionStep(),
		MaxTotalDuration:          c.MaxTotalDuration(),
		ActivityWindow:            c.ActivityWindow(),
		AutoCheckInterval:         c.AutoCheckInterval(),
		HeartbeatWarn:             c.HeartbeatWarn(),
		HeartbeatRepeat:           c.HeartbeatRepeat(),
		ProgressUpdateInterval:    c.ProgressUpdateInterval(),
		CompactionNoticeThreshold: c.CompactionNoticeThreshold(),
	}
}

// Result is the terminal state of one operation.
type Result struct {
	Status         Status
	Err            error
	Output         string        // Everything the stream delivered as content deltas
	Runtime        time.Duration // Wall time from start to terminal resolution
	AutoExtensions int           // Number of automatic extensions that landed
}

// runner drives a single operation from start to terminal outcome. It is
// the only goroutine that touches its stream state; the scheduler, gate
// and sink calls are the sole points of contact with the outside.
type runner struct {
	userID string
	opID   string
	timing Timing

	sched  *schedule.Scheduler
	gate   *extension.Gate
	bus    *event.Bus
	logger *logging.Logger
	sink   ProgressSink

	events   <-chan StreamEvent
	timedOut <-chan struct{}

	buffer              strings.Builder
	lastEventAt         time.Time
	compactionStartedAt time.Time
	lastProgressAt      time.Time
	autoExtensions      int
	cancelled           atomic.Bool
	outcome             outcome
	startedAt           time.Time
}

// run consumes the event stream until a terminal outcome latches. It
// returns the Result; the caller owns teardown of scheduler and busy
// state.
func (r *runner) run(ctx context.Context) Result {
	r.startedAt = time.Now()
	r.lastEventAt = r.startedAt

	policy := time.NewTicker(r.timing.AutoCheckInterval)
	defer policy.Stop()
	heartbeat := time.NewTimer(r.timing.HeartbeatWarn)
	defer heartbeat.Stop()

	for !r.outcome.resolved() {
		select {
		case ev, ok := <-r.events:
			if !ok {
				r.resolve(StatusFailed, errors.NewOperationError(
					"event stream closed before a terminal event",
					errors.ErrOperationFailed,
				).WithUserID(r.userID).WithOperationID(r.opID))
				continue
			}
			r.handleEvent(ev)
			resetTimer(heartbeat, r.timing.HeartbeatWarn)

		case <-policy.C:
			r.checkAutoExtension()

		case <-heartbeat.C:
			r.warnStalled()
			heartbeat.Reset(r.timing.HeartbeatRepeat)

		case <-r.timedOut:
			r.resolve(StatusTimedOut, errors.NewTimeoutError(
				"assistant operation",
				r.timing.InitialDuration,
			))

		case <-ctx.Done():
			r.cancelled.Store(true)
			r.resolve(StatusCancelled, nil)
		}
	}

	status, err, _ := r.outcome.get()
	return Result{
		Status:         status,
		Err:            err,
		Output:         r.buffer.String(),
		Runtime:        time.Since(r.startedAt),
		AutoExtensions: r.autoExtensions,
	}
}

func (r *runner) handleEvent(ev StreamEvent) {
	r.lastEventAt = time.Now()

	switch ev.Kind {
	case KindContentDelta:
		r.buffer.WriteString(ev.Text)
		r.maybeUpdateProgress()

	case KindThinking:
		// Counts as activity, nothing to render.

	case KindCompactionStart:
		r.compactionStartedAt = time.Now()
		r.logger.Debug("compaction started")
		r.publish(event.NewCompactionStartedEvent(r.userID, r.opID))

	case KindCompactionEnd:
		if r.compactionStartedAt.IsZero() {
			r.logger.Warn("compaction end without matching start")
			return
		}
		duration := time.Since(r.compactionStartedAt)
		r.compactionStartedAt = time.Time{}
		r.logger.Info("compaction finished",
			"success", ev.CompactionOK,
			"duration", duration,
			"metric", ev.Metric,
		)
		r.publish(event.NewCompactionFinishedEvent(r.userID, r.opID, ev.CompactionOK, duration, ev.Metric))
		if duration > r.timing.CompactionNoticeThreshold {
			r.sink.Notify(fmt.Sprintf(
				"Reorganized working context in %s to keep the task going.",
				duration.Round(time.Second),
			))
		}

	case KindCompleted:
		r.flushProgress()
		r.resolve(StatusCompleted, nil)

	case KindError:
		cause := ev.Err
		if cause == nil {
			cause = errors.ErrOperationFailed
		}
		r.resolve(StatusFailed, errors.NewOperationError(
			"assistant stream reported an error",
			cause,
		).WithUserID(r.userID).WithOperationID(r.opID))
	}
}

// maybeUpdateProgress refreshes the progress message, rate-limited so a
// burst of deltas produces one edit per interval rather than one each.
func (r *runner) maybeUpdateProgress() {
	if time.Since(r.lastProgressAt) < r.timing.ProgressUpdateInterval {
		return
	}
	r.lastProgressAt = time.Now()
	r.sink.UpdateProgress(r.buffer.String())
}

// flushProgress pushes whatever is buffered regardless of rate limiting.
func (r *runner) flushProgress() {
	if r.buffer.Len() == 0 {
		return
	}
	r.lastProgressAt = time.Now()
	r.sink.UpdateProgress(r.buffer.String())
}

func (r *runner) checkAutoExtension() {
	if r.outcome.resolved() || r.cancelled.Load() {
		return
	}

	elapsed, ok := r.sched.Elapsed(r.userID)
	if !ok {
		return
	}
	original, _ := r.sched.OriginalDuration(r.userID)
	total, _ := r.sched.TotalExtension(r.userID)

	verdict := extension.Decide(extension.Inputs{
		Elapsed:          elapsed,
		OriginalDuration: original,
		TotalExtension:   total,
		LastEventAge:     time.Since(r.lastEventAt),
		ActivityWindow:   r.timing.ActivityWindow,
		MaxTotalDuration: r.timing.MaxTotalDuration,
		Step:             r.timing.ExtensionStep,
		Busy:             true,
		Finished:         r.outcome.resolved(),
		Cancelled:        r.cancelled.Load(),
	})
	if !verdict.Extend {
		if verdict.Reason != extension.ReasonBelowThreshold {
			r.logger.Debug("auto-extension skipped", "reason", string(verdict.Reason))
		}
		return
	}

	if err := r.gate.Request(r.userID, extension.KindAuto, r.timing.ExtensionStep, r.timing.MaxTotalDuration); err != nil {
		// Contention and late policy rejections are expected outcomes.
		r.logger.Debug("auto-extension did not land", "error", err)
		return
	}

	r.autoExtensions++
	r.sink.Notify(fmt.Sprintf(
		"Still working. Added %s to the time budget.",
		r.timing.ExtensionStep,
	))
}

// warnStalled edits the progress message with a stall status line. Each
// repeat replaces the previous warning rather than posting a new notice,
// so a long stall stays a single updated message.
func (r *runner) warnStalled() {
	if r.outcome.resolved() || r.cancelled.Load() {
		return
	}

	silence := time.Since(r.lastEventAt)
	r.logger.Debug("stream stalled", "silence", silence)

	text := r.buffer.String()
	if text != "" {
		text += "\n\n"
	}
	text += fmt.Sprintf("No output for %s. The task is still running.", silence.Round(time.Second))
	// Zero the rate limiter so the next real delta replaces the warning
	// immediately instead of waiting out the update interval.
	r.lastProgressAt = time.Time{}
	r.sink.UpdateProgress(text)

	r.publish(event.NewHeartbeatStalledEvent(r.userID, r.opID, silence))
}

func (r *runner) resolve(status Status, err error) {
	if !r.outcome.resolve(status, err) {
		return
	}
	r.logger.Info("operation resolved", "status", string(status), "error", err)
}

func (r *runner) publish(e event.Event) {
	if r.bus != nil {
		r.bus.Publish(e)
	}
}

// resetTimer safely rearms a timer owned by the select loop that also
// receives from it.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
