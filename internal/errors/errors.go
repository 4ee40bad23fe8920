// Package errors provides centralized error definitions and error handling
// utilities for the leash codebase. It defines domain-specific errors,
// semantic error types, error constructors with context wrapping, and
// error classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - SchedulerError: errors related to per-user deadline tracking
//   - OperationError: errors related to running a user's operation
//
// Semantic errors represent common error conditions:
//   - TimeoutError: an operation exhausted its time budget
//
// # Usage
//
// Creating errors:
//
//	// Domain-specific error
//	err := errors.NewOperationError("stream consumer failed", errors.ErrOperationFailed)
//
//	// With context wrapping
//	err := errors.NewSchedulerError("cannot extend", errors.ErrNoTimerArmed).WithUserID("u1")
//
// Checking errors:
//
//	// Check for specific sentinel errors
//	if errors.Is(err, errors.ErrOperationInFlight) { ... }
//
//	// Check for error types
//	var opErr *errors.OperationError
//	if errors.As(err, &opErr) { ... }
//
//	// Use classification helpers
//	if errors.IsRetryable(err) { ... }
//	if errors.IsUserFacing(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Scheduler-related sentinel errors
var (
	// ErrNoTimerArmed indicates an extension was requested for a user with
	// no armed deadline. Callers must treat this as "nothing to extend."
	ErrNoTimerArmed = New("no timer armed for user")
)

// Operation-related sentinel errors
var (
	// ErrOperationInFlight indicates the user already has an active operation.
	ErrOperationInFlight = New("operation already in flight for user")
	// ErrOperationNotFound indicates no active operation exists for the user.
	ErrOperationNotFound = New("no active operation for user")
	// ErrOperationFinished indicates the operation already reached a terminal outcome.
	ErrOperationFinished = New("operation already finished")
	// ErrOperationFailed indicates a general operation failure.
	ErrOperationFailed = New("operation failed")
)

// Extension-related sentinel errors
var (
	// ErrExtensionContended indicates another extension attempt held the
	// lock. This is an expected outcome, not a fault.
	ErrExtensionContended = New("extension attempt already in flight")
	// ErrCeilingReached indicates an extension would exceed the absolute
	// runtime ceiling.
	ErrCeilingReached = New("extension would exceed maximum total duration")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// LeashError is the base interface for all leash errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type LeashError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// SchedulerError represents errors related to per-user deadline tracking.
//
// Example:
//
//	err := errors.NewSchedulerError("cannot extend", errors.ErrNoTimerArmed)
//	err = err.WithUserID("u1")
//	fmt.Println(err) // "scheduler error [user=u1]: cannot extend: no timer armed for user"
type SchedulerError struct {
	baseError
	UserID string
}

// NewSchedulerError creates a new SchedulerError.
func NewSchedulerError(message string, cause error) *SchedulerError {
	return &SchedulerError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: false,
		},
	}
}

// WithUserID adds a user ID to the error context.
func (e *SchedulerError) WithUserID(id string) *SchedulerError {
	e.UserID = id
	return e
}

// WithSeverity sets the error severity.
func (e *SchedulerError) WithSeverity(s Severity) *SchedulerError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *SchedulerError) Error() string {
	prefix := "scheduler error"
	if e.UserID != "" {
		prefix = fmt.Sprintf("scheduler error [user=%s]", e.UserID)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SchedulerError) Is(target error) bool {
	if _, ok := target.(*SchedulerError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// OperationError represents errors related to running a user's operation.
//
// Example:
//
//	err := errors.NewOperationError("stream ended unexpectedly", cause)
//	err = err.WithUserID("u1").WithOperationID("op-abc")
type OperationError struct {
	baseError
	UserID      string
	OperationID string
}

// NewOperationError creates a new OperationError.
func NewOperationError(message string, cause error) *OperationError {
	return &OperationError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithUserID adds a user ID to the error context.
func (e *OperationError) WithUserID(id string) *OperationError {
	e.UserID = id
	return e
}

// WithOperationID adds an operation ID to the error context.
func (e *OperationError) WithOperationID(id string) *OperationError {
	e.OperationID = id
	return e
}

// WithSeverity sets the error severity.
func (e *OperationError) WithSeverity(s Severity) *OperationError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *OperationError) WithRetryable(r bool) *OperationError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *OperationError) Error() string {
	var parts []string
	if e.UserID != "" {
		parts = append(parts, fmt.Sprintf("user=%s", e.UserID))
	}
	if e.OperationID != "" {
		parts = append(parts, fmt.Sprintf("operation=%s", e.OperationID))
	}

	prefix := "operation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("operation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *OperationError) Is(target error) bool {
	if _, ok := target.(*OperationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// TimeoutError represents an operation that exhausted its time budget.
//
// Example:
//
//	err := errors.NewTimeoutError("assistant operation", 30*time.Minute)
//	fmt.Println(err) // "timeout error: assistant operation (timeout: 30m0s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true, // Timeouts are generally retryable
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. This checks for:
//   - Errors implementing LeashError with IsRetryable() returning true
//   - Errors wrapping ErrTimeout or ErrExtensionContended
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var leashErr LeashError
	if As(err, &leashErr) {
		return leashErr.IsRetryable()
	}

	// Contention resolves itself once the in-flight attempt releases.
	if Is(err, ErrTimeout) || Is(err, ErrExtensionContended) {
		return true
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to end
// users. Internal errors (scheduler bookkeeping, lock contention) are not.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var leashErr LeashError
	if As(err, &leashErr) {
		return leashErr.IsUserFacing()
	}

	var timeout *TimeoutError
	return As(err, &timeout)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement LeashError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var leashErr LeashError
	if As(err, &leashErr) {
		return leashErr.Severity()
	}

	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to start operation")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to start operation for %s", userID)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
