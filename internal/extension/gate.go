package extension

import (
	"time"

	"github.com/Iron-Ham/leash/internal/errors"
	"github.com/Iron-Ham/leash/internal/event"
	"github.com/Iron-Ham/leash/internal/keymutex"
	"github.com/Iron-Ham/leash/internal/logging"
	"github.com/Iron-Ham/leash/internal/schedule"
)

// Kind identifies which call site is requesting the extension
type Kind string

const (
	// KindAuto is an extension requested by the periodic policy check
	KindAuto Kind = "auto"
	// KindManual is an extension confirmed by the user
	KindManual Kind = "manual"
)

// Gate serializes extension attempts per user. The automatic policy check
// and the user-confirmed manual path both run through Request, which takes
// a single non-blocking lock keyed by user id before touching the
// scheduler. When two attempts race, exactly one lands; the loser gets
// errors.ErrExtensionContended and is expected to give up, not retry.
//
// A single key per user (rather than one per attempt kind) keeps the
// contention window airtight under true parallelism: the losing attempt
// observes the held lock and aborts, it never partially proceeds.
type Gate struct {
	locks  *keymutex.TryMutex[string]
	sched  *schedule.Scheduler
	bus    *event.Bus
	logger *logging.Logger
}

// GateOption configures a Gate
type GateOption func(*Gate)

// WithBus sets the event bus extension outcomes are published to
func WithBus(bus *event.Bus) GateOption {
	return func(g *Gate) {
		g.bus = bus
	}
}

// WithLogger sets the logger used by the gate
func WithLogger(logger *logging.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate creates a Gate over the given scheduler.
func NewGate(sched *schedule.Scheduler, opts ...GateOption) *Gate {
	g := &Gate{
		locks:  keymutex.New[string](),
		sched:  sched,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Request attempts to extend userID's deadline by step, subject to the
// absolute ceiling. It returns nil when the extension landed, and a
// classified error otherwise:
//
//   - errors.ErrExtensionContended: another attempt holds the lock
//   - errors.ErrCeilingReached: the step would push past ceiling
//   - errors.ErrNoTimerArmed: no deadline is armed for the user
//
// The lock is released on every exit path, including a panic inside the
// scheduler call.
func (g *Gate) Request(userID string, kind Kind, step, ceiling time.Duration) error {
	log := g.logger.WithUser(userID).WithComponent("extension")

	if !g.locks.TryAcquire(userID) {
		log.Debug("extension attempt lost the lock race", "kind", string(kind))
		g.publish(event.NewExtensionDeniedEvent(userID, string(kind), "contended"))
		return errors.Wrapf(errors.ErrExtensionContended, "%s extension for user %s", kind, userID)
	}
	defer g.locks.Release(userID)

	elapsed, ok := g.sched.Elapsed(userID)
	if !ok {
		log.Debug("extension requested with no armed timer", "kind", string(kind))
		g.publish(event.NewExtensionDeniedEvent(userID, string(kind), "no_timer"))
		return errors.NewSchedulerError("nothing to extend", errors.ErrNoTimerArmed).WithUserID(userID)
	}

	// Re-checked under the lock: the policy's own ceiling check ran
	// before acquisition and may be stale by now.
	if elapsed+step > ceiling {
		log.Info("extension denied at ceiling",
			"kind", string(kind),
			"elapsed", elapsed,
			"step", step,
			"ceiling", ceiling,
		)
		g.publish(event.NewExtensionDeniedEvent(userID, string(kind), "ceiling"))
		return errors.Wrapf(errors.ErrCeilingReached, "%s extension for user %s", kind, userID)
	}

	if !g.sched.Extend(userID, step) {
		g.publish(event.NewExtensionDeniedEvent(userID, string(kind), "no_timer"))
		return errors.NewSchedulerError("nothing to extend", errors.ErrNoTimerArmed).WithUserID(userID)
	}

	total, _ := g.sched.TotalExtension(userID)
	log.Info("extension granted",
		"kind", string(kind),
		"added", step,
		"total_extension", total,
	)
	g.publish(event.NewExtensionGrantedEvent(userID, string(kind), step, total))
	return nil
}

// LockCount returns the number of currently held extension locks.
// Nonzero after all attempts have drained indicates a leak.
func (g *Gate) LockCount() int {
	return g.locks.Size()
}

func (g *Gate) publish(e event.Event) {
	if g.bus != nil {
		g.bus.Publish(e)
	}
}
