package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "operation.extension_step_minutes")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateOperation()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateOperation validates the OperationConfig
func (c *Config) validateOperation() []ValidationError {
	var errors []ValidationError

	op := c.Operation

	if op.InitialDurationMinutes <= 0 {
		errors = append(errors, ValidationError{
			Field:   "operation.initial_duration_minutes",
			Value:   op.InitialDurationMinutes,
			Message: "must be positive",
		})
	}

	if op.ExtensionStepMinutes <= 0 {
		errors = append(errors, ValidationError{
			Field:   "operation.extension_step_minutes",
			Value:   op.ExtensionStepMinutes,
			Message: "must be positive",
		})
	}

	if op.MaxTotalMinutes <= 0 {
		errors = append(errors, ValidationError{
			Field:   "operation.max_total_minutes",
			Value:   op.MaxTotalMinutes,
			Message: "must be positive",
		})
	}

	// The ceiling must leave room for at least the initial budget,
	// otherwise every operation times out before its first extension.
	if op.MaxTotalMinutes > 0 && op.InitialDurationMinutes > op.MaxTotalMinutes {
		errors = append(errors, ValidationError{
			Field:   "operation.initial_duration_minutes",
			Value:   op.InitialDurationMinutes,
			Message: fmt.Sprintf("cannot exceed max_total_minutes (%d)", op.MaxTotalMinutes),
		})
	}

	if op.ActivityWindowSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "operation.activity_window_seconds",
			Value:   op.ActivityWindowSeconds,
			Message: "must be positive",
		})
	}

	const minCheckInterval = 1    // 1 second minimum
	const maxCheckInterval = 3600 // 1 hour maximum
	if op.AutoCheckIntervalSeconds < minCheckInterval {
		errors = append(errors, ValidationError{
			Field:   "operation.auto_check_interval_seconds",
			Value:   op.AutoCheckIntervalSeconds,
			Message: fmt.Sprintf("must be at least %ds", minCheckInterval),
		})
	}
	if op.AutoCheckIntervalSeconds > maxCheckInterval {
		errors = append(errors, ValidationError{
			Field:   "operation.auto_check_interval_seconds",
			Value:   op.AutoCheckIntervalSeconds,
			Message: fmt.Sprintf("exceeds maximum of %ds", maxCheckInterval),
		})
	}

	if op.HeartbeatWarnSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "operation.heartbeat_warn_seconds",
			Value:   op.HeartbeatWarnSeconds,
			Message: "must be positive",
		})
	}

	if op.HeartbeatRepeatSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "operation.heartbeat_repeat_seconds",
			Value:   op.HeartbeatRepeatSeconds,
			Message: "must be positive",
		})
	}

	// Repeating faster than the initial warning makes the warning cadence
	// incoherent.
	if op.HeartbeatRepeatSeconds > 0 && op.HeartbeatWarnSeconds > 0 &&
		op.HeartbeatRepeatSeconds > op.HeartbeatWarnSeconds {
		errors = append(errors, ValidationError{
			Field:   "operation.heartbeat_repeat_seconds",
			Value:   op.HeartbeatRepeatSeconds,
			Message: fmt.Sprintf("should not exceed heartbeat_warn_seconds (%d)", op.HeartbeatWarnSeconds),
		})
	}

	if op.ProgressUpdateSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "operation.progress_update_seconds",
			Value:   op.ProgressUpdateSeconds,
			Message: "must be positive",
		})
	}

	if op.CompactionNoticeSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "operation.compaction_notice_seconds",
			Value:   op.CompactionNoticeSeconds,
			Message: "must be non-negative (0 notices on every compaction)",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
