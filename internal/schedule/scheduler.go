// Package schedule tracks one global deadline per user for an in-flight
// operation. A deadline is armed with an initial budget and can be
// extended while the operation runs; the remaining time is always
// recomputed against the instant the timer was first armed, never against
// the time of the extension call. This keeps repeated extensions from
// silently compounding time that has already elapsed.
package schedule

import (
	"sync"
	"time"

	"github.com/Iron-Ham/leash/internal/logging"
)

// userTimeout is the per-user deadline state. Exactly one live timer
// exists per entry; replacing the timer always stops the old one first.
// fired latches once the callback has been delivered: onFire runs at
// most once per entry no matter how timers and extensions interleave.
type userTimeout struct {
	original  time.Duration
	extension time.Duration
	startedAt time.Time
	timer     *time.Timer
	onFire    func()
	fired     bool
}

// Scheduler owns the per-user timeout registry. It is safe for
// concurrent use. The registry is an explicit owned collection: its
// lifetime is tied to whoever constructed the Scheduler, not to the
// package.
type Scheduler struct {
	mu       sync.Mutex
	timeouts map[string]*userTimeout
	logger   *logging.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger attaches a logger for arm/extend/clear diagnostics.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates an empty Scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		timeouts: make(map[string]*userTimeout),
		logger:   logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Arm starts a deadline for the user: onFire runs after duration unless
// the entry is extended or cleared first. The original duration is fixed
// for the lifetime of the entry and the extension total starts at zero.
//
// Arming over an existing entry is not a normal flow (callers should
// Clear first) but must not leak the previous timer, so it is stopped
// before being replaced.
func (s *Scheduler) Arm(userID string, duration time.Duration, onFire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timeouts[userID]; ok {
		existing.timer.Stop()
		s.logger.Warn("replacing armed timeout without clear",
			"user_id", userID)
	}

	ut := &userTimeout{
		original:  duration,
		startedAt: time.Now(),
		onFire:    onFire,
	}
	ut.timer = s.schedule(userID, ut, duration)
	s.timeouts[userID] = ut

	s.logger.Debug("timeout armed",
		"user_id", userID,
		"duration", duration.String())
}

// schedule creates a timer whose callback delivers onFire through the
// fired latch. Every timer for an entry, including reschedules from
// Extend, goes through here so the callback runs at most once even when
// an old timer's callback is already in flight.
func (s *Scheduler) schedule(userID string, ut *userTimeout, d time.Duration) *time.Timer {
	return time.AfterFunc(d, func() {
		s.fire(userID, ut)
	})
}

// fire delivers the entry's callback exactly once. A stale timer whose
// entry was cleared or replaced, or whose callback already ran, is a
// no-op.
func (s *Scheduler) fire(userID string, ut *userTimeout) {
	s.mu.Lock()
	cur, ok := s.timeouts[userID]
	if !ok || cur != ut || ut.fired {
		s.mu.Unlock()
		return
	}
	ut.fired = true
	onFire := ut.onFire
	s.mu.Unlock()

	s.logger.Debug("timeout fired", "user_id", userID)
	onFire()
}

// Extend adds extra to the user's budget and reschedules the pending
// fire. Returns false if no timer is armed for the user, or if the
// deadline already fired: a fired entry cannot be revived, and its
// callback never runs a second time.
//
// The new fire point is startedAt + original + total extension. If that
// instant has already passed (the extension raced the deadline), the
// remaining time clamps to zero and the timer fires immediately rather
// than going negative.
func (s *Scheduler) Extend(userID string, extra time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ut, ok := s.timeouts[userID]
	if !ok {
		s.logger.Debug("extend with no armed timeout",
			"user_id", userID)
		return false
	}
	if ut.fired {
		s.logger.Debug("extend after timeout already fired",
			"user_id", userID)
		return false
	}

	ut.extension += extra

	remaining := ut.original + ut.extension - time.Since(ut.startedAt)
	if remaining < 0 {
		remaining = 0
	}

	ut.timer.Stop()
	ut.timer = s.schedule(userID, ut, remaining)

	s.logger.Info("timeout extended",
		"user_id", userID,
		"extra", extra.String(),
		"total_extension", ut.extension.String(),
		"remaining", remaining.String())
	return true
}

// Clear cancels any pending fire and removes the user's entry. Clearing
// a user with no entry is a no-op, so teardown paths can call it
// unconditionally.
func (s *Scheduler) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ut, ok := s.timeouts[userID]
	if !ok {
		return
	}
	ut.timer.Stop()
	delete(s.timeouts, userID)

	s.logger.Debug("timeout cleared", "user_id", userID)
}

// OriginalDuration returns the budget the entry was armed with.
// The second result is false if no timer is armed for the user.
func (s *Scheduler) OriginalDuration(userID string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ut, ok := s.timeouts[userID]
	if !ok {
		return 0, false
	}
	return ut.original, true
}

// TotalExtension returns the accumulated extension time for the user.
// The second result is false if no timer is armed.
func (s *Scheduler) TotalExtension(userID string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ut, ok := s.timeouts[userID]
	if !ok {
		return 0, false
	}
	return ut.extension, true
}

// Elapsed returns how long the entry has been armed. The second result
// is false if no timer is armed.
func (s *Scheduler) Elapsed(userID string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ut, ok := s.timeouts[userID]
	if !ok {
		return 0, false
	}
	return time.Since(ut.startedAt), true
}

// Remaining returns the time left before the pending fire, clamped at
// zero. The second result is false if no timer is armed.
func (s *Scheduler) Remaining(userID string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ut, ok := s.timeouts[userID]
	if !ok {
		return 0, false
	}
	remaining := ut.original + ut.extension - time.Since(ut.startedAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// IsArmed reports whether a timer is armed for the user.
func (s *Scheduler) IsArmed(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timeouts[userID]
	return ok
}

// Len returns the number of armed entries. A nonzero count after all
// operations have ended indicates a leaked timer.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timeouts)
}
