package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// resetViper clears viper state between tests.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Fatalf("Default() config fails validation: %v", ValidationErrors(errs))
	}
}

func TestLoadReturnsDefaults(t *testing.T) {
	resetViper(t)
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := Default()
	if cfg.Operation != want.Operation {
		t.Errorf("Operation = %+v, want %+v", cfg.Operation, want.Operation)
	}
	if cfg.Logging != want.Logging {
		t.Errorf("Logging = %+v, want %+v", cfg.Logging, want.Logging)
	}
}

func TestLoadFromFile(t *testing.T) {
	resetViper(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
operation:
  initial_duration_minutes: 10
  extension_step_minutes: 5
  max_total_minutes: 45
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	SetDefaults()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Operation.InitialDurationMinutes != 10 {
		t.Errorf("InitialDurationMinutes = %d, want 10", cfg.Operation.InitialDurationMinutes)
	}
	if cfg.Operation.ExtensionStepMinutes != 5 {
		t.Errorf("ExtensionStepMinutes = %d, want 5", cfg.Operation.ExtensionStepMinutes)
	}
	if cfg.Operation.MaxTotalMinutes != 45 {
		t.Errorf("MaxTotalMinutes = %d, want 45", cfg.Operation.MaxTotalMinutes)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	// Unset fields keep their defaults.
	if cfg.Operation.ActivityWindowSeconds != Default().Operation.ActivityWindowSeconds {
		t.Errorf("ActivityWindowSeconds = %d, want default %d",
			cfg.Operation.ActivityWindowSeconds, Default().Operation.ActivityWindowSeconds)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	resetViper(t)
	SetDefaults()
	viper.Set("operation.extension_step_minutes", -5)

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted negative extension step")
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := OperationConfig{
		InitialDurationMinutes:   30,
		ExtensionStepMinutes:     20,
		MaxTotalMinutes:          120,
		ActivityWindowSeconds:    180,
		AutoCheckIntervalSeconds: 30,
		HeartbeatWarnSeconds:     60,
		HeartbeatRepeatSeconds:   30,
		ProgressUpdateSeconds:    3,
		CompactionNoticeSeconds:  30,
	}

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"InitialDuration", cfg.InitialDuration(), 30 * time.Minute},
		{"ExtensionStep", cfg.ExtensionStep(), 20 * time.Minute},
		{"MaxTotalDuration", cfg.MaxTotalDuration(), 2 * time.Hour},
		{"ActivityWindow", cfg.ActivityWindow(), 3 * time.Minute},
		{"AutoCheckInterval", cfg.AutoCheckInterval(), 30 * time.Second},
		{"HeartbeatWarn", cfg.HeartbeatWarn(), time.Minute},
		{"HeartbeatRepeat", cfg.HeartbeatRepeat(), 30 * time.Second},
		{"ProgressUpdateInterval", cfg.ProgressUpdateInterval(), 3 * time.Second},
		{"CompactionNoticeThreshold", cfg.CompactionNoticeThreshold(), 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s() = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestValidateOperation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "zero initial duration",
			mutate: func(c *Config) { c.Operation.InitialDurationMinutes = 0 },
			field:  "operation.initial_duration_minutes",
		},
		{
			name:   "negative extension step",
			mutate: func(c *Config) { c.Operation.ExtensionStepMinutes = -1 },
			field:  "operation.extension_step_minutes",
		},
		{
			name:   "zero ceiling",
			mutate: func(c *Config) { c.Operation.MaxTotalMinutes = 0 },
			field:  "operation.max_total_minutes",
		},
		{
			name:   "initial exceeds ceiling",
			mutate: func(c *Config) { c.Operation.InitialDurationMinutes = 200 },
			field:  "operation.initial_duration_minutes",
		},
		{
			name:   "zero activity window",
			mutate: func(c *Config) { c.Operation.ActivityWindowSeconds = 0 },
			field:  "operation.activity_window_seconds",
		},
		{
			name:   "check interval too small",
			mutate: func(c *Config) { c.Operation.AutoCheckIntervalSeconds = 0 },
			field:  "operation.auto_check_interval_seconds",
		},
		{
			name:   "check interval too large",
			mutate: func(c *Config) { c.Operation.AutoCheckIntervalSeconds = 7200 },
			field:  "operation.auto_check_interval_seconds",
		},
		{
			name:   "heartbeat repeat exceeds warn",
			mutate: func(c *Config) { c.Operation.HeartbeatRepeatSeconds = 120 },
			field:  "operation.heartbeat_repeat_seconds",
		},
		{
			name:   "negative compaction notice",
			mutate: func(c *Config) { c.Operation.CompactionNoticeSeconds = -1 },
			field:  "operation.compaction_notice_seconds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			errs := cfg.Validate()
			if len(errs) == 0 {
				t.Fatal("Validate() returned no errors")
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q in %v", tt.field, ValidationErrors(errs))
			}
		})
	}
}

func TestValidateLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"
	cfg.Logging.MaxSizeMB = 0
	cfg.Logging.MaxBackups = -1

	errs := cfg.Validate()
	if len(errs) != 3 {
		t.Fatalf("Validate() returned %d errors, want 3: %v", len(errs), ValidationErrors(errs))
	}
}

func TestValidationErrorsFormatting(t *testing.T) {
	if got := (ValidationErrors{}).Error(); got != "" {
		t.Errorf("empty ValidationErrors.Error() = %q, want empty", got)
	}

	single := ValidationErrors{{Field: "logging.level", Value: "verbose", Message: "bad"}}
	if got := single.Error(); got != "logging.level: bad (got: verbose)" {
		t.Errorf("single error = %q", got)
	}

	multi := ValidationErrors{
		{Field: "a", Value: 1, Message: "x"},
		{Field: "b", Value: 2, Message: "y"},
	}
	got := multi.Error()
	if !strings.HasPrefix(got, "2 validation errors:") {
		t.Errorf("multi error = %q, want prefix %q", got, "2 validation errors:")
	}
}

func TestConfigDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	if got := ConfigDir(); got != filepath.Join("/tmp/xdg-test", "leash") {
		t.Errorf("ConfigDir() = %q", got)
	}
	if got := ConfigFile(); got != filepath.Join("/tmp/xdg-test", "leash", "config.yaml") {
		t.Errorf("ConfigFile() = %q", got)
	}
}
