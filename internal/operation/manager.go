package operation

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Iron-Ham/leash/internal/errors"
	"github.com/Iron-Ham/leash/internal/event"
	"github.com/Iron-Ham/leash/internal/extension"
	"github.com/Iron-Ham/leash/internal/logging"
	"github.com/Iron-Ham/leash/internal/schedule"
)

// Handle tracks one started operation. Done is closed when the operation
// reaches its terminal outcome; Result is valid after that.
type Handle struct {
	OperationID string

	done   chan struct{}
	result Result
}

// Done returns a channel closed when the operation ends.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result returns the terminal state. Only valid after Done is closed.
func (h *Handle) Result() Result {
	return h.result
}

// Manager owns the per-user operation registry: at most one in-flight
// operation per user, each with its own runner goroutine, armed deadline,
// and extension gate entry. All three are torn down together when the
// operation ends, regardless of how it ends.
type Manager struct {
	mu      sync.Mutex
	running map[string]*inflight

	sched  *schedule.Scheduler
	gate   *extension.Gate
	bus    *event.Bus
	logger *logging.Logger
	timing Timing
}

type inflight struct {
	handle *Handle
	cancel context.CancelFunc
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithBus sets the event bus lifecycle events are published to
func WithBus(bus *event.Bus) ManagerOption {
	return func(m *Manager) {
		m.bus = bus
	}
}

// WithLogger sets the logger used by the manager and its runners
func WithLogger(logger *logging.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager with the given timing parameters.
func NewManager(timing Timing, opts ...ManagerOption) *Manager {
	m := &Manager{
		running: make(map[string]*inflight),
		logger:  logging.NopLogger(),
		timing:  timing,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sched = schedule.NewScheduler(schedule.WithLogger(m.logger))
	m.gate = extension.NewGate(m.sched,
		extension.WithBus(m.bus),
		extension.WithLogger(m.logger),
	)
	return m
}

// Start begins an operation for userID, consuming events until a
// terminal outcome. It fails with errors.ErrOperationInFlight if the
// user already has one running. The sink receives progress updates and
// notices; pass nil to discard them.
func (m *Manager) Start(ctx context.Context, userID string, events <-chan StreamEvent, sink ProgressSink) (*Handle, error) {
	if sink == nil {
		sink = NopSink()
	}

	opID := uuid.NewString()
	opCtx, cancel := context.WithCancel(ctx)
	in := &inflight{
		handle: &Handle{OperationID: opID, done: make(chan struct{})},
		cancel: cancel,
	}

	m.mu.Lock()
	if _, exists := m.running[userID]; exists {
		m.mu.Unlock()
		cancel()
		return nil, errors.NewOperationError(
			"an operation is already in flight",
			errors.ErrOperationInFlight,
		).WithUserID(userID)
	}
	m.running[userID] = in
	m.mu.Unlock()

	timedOut := make(chan struct{})
	m.sched.Arm(userID, m.timing.InitialDuration, func() {
		close(timedOut)
	})

	log := m.logger.WithUser(userID).WithOperation(opID)
	r := &runner{
		userID:   userID,
		opID:     opID,
		timing:   m.timing,
		sched:    m.sched,
		gate:     m.gate,
		bus:      m.bus,
		logger:   log.WithComponent("runner"),
		sink:     sink,
		events:   events,
		timedOut: timedOut,
	}

	log.Info("operation started", "budget", m.timing.InitialDuration)
	m.publish(event.NewOperationStartedEvent(userID, opID, m.timing.InitialDuration))

	go func() {
		defer cancel()
		res := r.run(opCtx)
		m.finish(userID, in, res)
	}()

	return in.handle, nil
}

// Cancel requests cooperative cancellation of userID's operation.
func (m *Manager) Cancel(userID string) error {
	m.mu.Lock()
	in, ok := m.running[userID]
	m.mu.Unlock()

	if !ok {
		return errors.NewOperationError(
			"no operation in flight",
			errors.ErrOperationNotFound,
		).WithUserID(userID)
	}

	m.logger.WithUser(userID).Info("cancellation requested")
	in.cancel()
	return nil
}

// RequestManualExtension extends userID's deadline on the user's behalf.
// The request runs through the same gate as automatic extensions, so it
// cannot double-extend against a racing policy check.
func (m *Manager) RequestManualExtension(userID string) error {
	m.mu.Lock()
	_, ok := m.running[userID]
	m.mu.Unlock()

	if !ok {
		return errors.NewOperationError(
			"no operation in flight",
			errors.ErrOperationNotFound,
		).WithUserID(userID)
	}

	return m.gate.Request(userID, extension.KindManual, m.timing.ExtensionStep, m.timing.MaxTotalDuration)
}

// IsBusy reports whether userID has an operation in flight.
func (m *Manager) IsBusy(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.running[userID]
	return ok
}

// ActiveCount returns the number of in-flight operations.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.running)
}

// Scheduler exposes the manager's scheduler for deadline queries.
func (m *Manager) Scheduler() *schedule.Scheduler {
	return m.sched
}

// finish tears down everything tied to the operation. Clearing the
// scheduler entry and the busy slot are both idempotent, so a timeout
// firing concurrently with completion cannot double-free anything.
func (m *Manager) finish(userID string, in *inflight, res Result) {
	m.sched.Clear(userID)

	m.mu.Lock()
	if cur, ok := m.running[userID]; ok && cur == in {
		delete(m.running, userID)
	}
	m.mu.Unlock()

	m.logger.WithUser(userID).WithOperation(in.handle.OperationID).Info("operation ended",
		"status", string(res.Status),
		"runtime", res.Runtime,
		"auto_extensions", res.AutoExtensions,
	)
	m.publish(event.NewOperationEndedEvent(userID, in.handle.OperationID, string(res.Status), res.Runtime))

	in.handle.result = res
	close(in.handle.done)
}

func (m *Manager) publish(e event.Event) {
	if m.bus != nil {
		m.bus.Publish(e)
	}
}
