package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete leash configuration
type Config struct {
	Operation OperationConfig `mapstructure:"operation"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// OperationConfig controls the timing behavior of a user operation.
// The engine treats these as constants for the lifetime of one operation.
type OperationConfig struct {
	// InitialDurationMinutes is the time budget an operation starts with.
	InitialDurationMinutes int `mapstructure:"initial_duration_minutes"`
	// ExtensionStepMinutes is the amount added per granted extension.
	ExtensionStepMinutes int `mapstructure:"extension_step_minutes"`
	// MaxTotalMinutes is the absolute runtime ceiling. No extension may
	// push the effective deadline past this.
	MaxTotalMinutes int `mapstructure:"max_total_minutes"`
	// ActivityWindowSeconds is how recently a stream event must have been
	// seen for an automatic extension to be considered (default: 180).
	ActivityWindowSeconds int `mapstructure:"activity_window_seconds"`
	// AutoCheckIntervalSeconds is the cadence on which the runner evaluates
	// the auto-extension policy while the operation is active.
	AutoCheckIntervalSeconds int `mapstructure:"auto_check_interval_seconds"`
	// HeartbeatWarnSeconds is how long the stream may be silent before the
	// user is warned that the operation is still running.
	HeartbeatWarnSeconds int `mapstructure:"heartbeat_warn_seconds"`
	// HeartbeatRepeatSeconds is the shorter interval on which the stall
	// warning is refreshed until a real event arrives.
	HeartbeatRepeatSeconds int `mapstructure:"heartbeat_repeat_seconds"`
	// ProgressUpdateSeconds rate-limits edits of the user-visible progress
	// message; content deltas arriving faster than this are batched.
	ProgressUpdateSeconds int `mapstructure:"progress_update_seconds"`
	// CompactionNoticeSeconds is the compaction duration above which one
	// extra user-visible notice is emitted.
	CompactionNoticeSeconds int `mapstructure:"compaction_notice_seconds"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the directory debug logs are written to. Empty means stderr.
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Operation: OperationConfig{
			InitialDurationMinutes:   30,
			ExtensionStepMinutes:     20,
			MaxTotalMinutes:          120,
			ActivityWindowSeconds:    180, // 3 minutes of recent activity
			AutoCheckIntervalSeconds: 30,
			HeartbeatWarnSeconds:     60,
			HeartbeatRepeatSeconds:   30,
			ProgressUpdateSeconds:    3,
			CompactionNoticeSeconds:  30,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// InitialDuration returns the starting time budget as a time.Duration
func (c *OperationConfig) InitialDuration() time.Duration {
	return time.Duration(c.InitialDurationMinutes) * time.Minute
}

// ExtensionStep returns the per-extension increment as a time.Duration
func (c *OperationConfig) ExtensionStep() time.Duration {
	return time.Duration(c.ExtensionStepMinutes) * time.Minute
}

// MaxTotalDuration returns the absolute runtime ceiling as a time.Duration
func (c *OperationConfig) MaxTotalDuration() time.Duration {
	return time.Duration(c.MaxTotalMinutes) * time.Minute
}

// ActivityWindow returns the recent-activity window as a time.Duration
func (c *OperationConfig) ActivityWindow() time.Duration {
	return time.Duration(c.ActivityWindowSeconds) * time.Second
}

// AutoCheckInterval returns the policy evaluation cadence as a time.Duration
func (c *OperationConfig) AutoCheckInterval() time.Duration {
	return time.Duration(c.AutoCheckIntervalSeconds) * time.Second
}

// HeartbeatWarn returns the silence threshold as a time.Duration
func (c *OperationConfig) HeartbeatWarn() time.Duration {
	return time.Duration(c.HeartbeatWarnSeconds) * time.Second
}

// HeartbeatRepeat returns the warning refresh interval as a time.Duration
func (c *OperationConfig) HeartbeatRepeat() time.Duration {
	return time.Duration(c.HeartbeatRepeatSeconds) * time.Second
}

// ProgressUpdateInterval returns the progress edit rate limit as a time.Duration
func (c *OperationConfig) ProgressUpdateInterval() time.Duration {
	return time.Duration(c.ProgressUpdateSeconds) * time.Second
}

// CompactionNoticeThreshold returns the slow-compaction threshold as a time.Duration
func (c *OperationConfig) CompactionNoticeThreshold() time.Duration {
	return time.Duration(c.CompactionNoticeSeconds) * time.Second
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Operation defaults
	viper.SetDefault("operation.initial_duration_minutes", defaults.Operation.InitialDurationMinutes)
	viper.SetDefault("operation.extension_step_minutes", defaults.Operation.ExtensionStepMinutes)
	viper.SetDefault("operation.max_total_minutes", defaults.Operation.MaxTotalMinutes)
	viper.SetDefault("operation.activity_window_seconds", defaults.Operation.ActivityWindowSeconds)
	viper.SetDefault("operation.auto_check_interval_seconds", defaults.Operation.AutoCheckIntervalSeconds)
	viper.SetDefault("operation.heartbeat_warn_seconds", defaults.Operation.HeartbeatWarnSeconds)
	viper.SetDefault("operation.heartbeat_repeat_seconds", defaults.Operation.HeartbeatRepeatSeconds)
	viper.SetDefault("operation.progress_update_seconds", defaults.Operation.ProgressUpdateSeconds)
	viper.SetDefault("operation.compaction_notice_seconds", defaults.Operation.CompactionNoticeSeconds)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "leash")
	}
	// Fall back to ~/.config/leash
	home, err := os.UserHomeDir()
	if err != nil {
		return ".leash"
	}
	return filepath.Join(home, ".config", "leash")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
