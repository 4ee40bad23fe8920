package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/Iron-Ham/leash/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify leash configuration",
	Long: `View or modify leash configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  leash config set operation.initial_duration_minutes 45
  leash config set operation.max_total_minutes 180
  leash config set logging.level debug

Valid keys:
  operation.initial_duration_minutes  - Starting time budget per operation
  operation.extension_step_minutes    - Time added per granted extension
  operation.max_total_minutes         - Absolute runtime ceiling
  operation.activity_window_seconds   - How recent activity must be for auto-extension
  operation.auto_check_interval_seconds - Auto-extension check cadence
  operation.heartbeat_warn_seconds    - Silence before warning the user
  operation.heartbeat_repeat_seconds  - Warning refresh interval
  operation.progress_update_seconds   - Progress message edit rate limit
  operation.compaction_notice_seconds - Slow-compaction notice threshold
  logging.level                       - Log level (debug, info, warn, error)
  logging.dir                         - Log directory (empty for stderr)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/leash/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	fmt.Println("Current configuration:")
	fmt.Println()

	fmt.Println("operation:")
	fmt.Printf("  initial_duration_minutes: %d\n", cfg.Operation.InitialDurationMinutes)
	fmt.Printf("  extension_step_minutes: %d\n", cfg.Operation.ExtensionStepMinutes)
	fmt.Printf("  max_total_minutes: %d\n", cfg.Operation.MaxTotalMinutes)
	fmt.Printf("  activity_window_seconds: %d\n", cfg.Operation.ActivityWindowSeconds)
	fmt.Printf("  auto_check_interval_seconds: %d\n", cfg.Operation.AutoCheckIntervalSeconds)
	fmt.Printf("  heartbeat_warn_seconds: %d\n", cfg.Operation.HeartbeatWarnSeconds)
	fmt.Printf("  heartbeat_repeat_seconds: %d\n", cfg.Operation.HeartbeatRepeatSeconds)
	fmt.Printf("  progress_update_seconds: %d\n", cfg.Operation.ProgressUpdateSeconds)
	fmt.Printf("  compaction_notice_seconds: %d\n", cfg.Operation.CompactionNoticeSeconds)

	fmt.Println("logging:")
	fmt.Printf("  enabled: %t\n", cfg.Logging.Enabled)
	fmt.Printf("  level: %s\n", cfg.Logging.Level)
	fmt.Printf("  dir: %s\n", cfg.Logging.Dir)
	fmt.Printf("  max_size_mb: %d\n", cfg.Logging.MaxSizeMB)
	fmt.Printf("  max_backups: %d\n", cfg.Logging.MaxBackups)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"operation.initial_duration_minutes":    "int",
		"operation.extension_step_minutes":      "int",
		"operation.max_total_minutes":           "int",
		"operation.activity_window_seconds":     "int",
		"operation.auto_check_interval_seconds": "int",
		"operation.heartbeat_warn_seconds":      "int",
		"operation.heartbeat_repeat_seconds":    "int",
		"operation.progress_update_seconds":     "int",
		"operation.compaction_notice_seconds":   "int",
		"logging.enabled":                       "bool",
		"logging.level":                         "string",
		"logging.dir":                           "string",
		"logging.max_size_mb":                   "int",
		"logging.max_backups":                   "int",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'leash config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue interface{}
	switch keyType {
	case "string":
		if key == "logging.level" && !slices.Contains(config.ValidLogLevels(), value) {
			return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(config.ValidLogLevels(), ", "))
		}
		typedValue = value
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = value == "true"
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set the value in viper
	viper.Set(key, typedValue)

	// Write to config file
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Set %s = %v\n", key, typedValue)
	fmt.Printf("Config saved to %s\n", configFile)

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'leash config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Generate a commented config file
	configContent := `# Leash Configuration

# Operation timing
operation:
  # Starting time budget for each operation, in minutes
  initial_duration_minutes: 30
  # Time added per granted extension, in minutes
  extension_step_minutes: 20
  # Absolute runtime ceiling; no extension may cross it
  max_total_minutes: 120
  # How recent stream activity must be for an automatic extension
  activity_window_seconds: 180
  # How often the auto-extension policy is evaluated
  auto_check_interval_seconds: 30
  # Silence before the user is warned the task is still running
  heartbeat_warn_seconds: 60
  # How often the stall warning is refreshed
  heartbeat_repeat_seconds: 30
  # Minimum interval between progress message edits
  progress_update_seconds: 3
  # Compactions slower than this produce a user-visible notice
  compaction_notice_seconds: 30

# Debug logging
logging:
  enabled: true
  # Log level: debug, info, warn, error
  level: info
  # Directory for debug logs; empty logs to stderr
  dir: ""
  # Log file size before rotation, in megabytes
  max_size_mb: 10
  # Number of rotated backups to keep
  max_backups: 3
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	fmt.Println("Edit this file to customize leash's behavior.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Default path: %s (not created)\n", configFile)
	}

	// Also show config search paths
	fmt.Println("\nSearch paths:")
	fmt.Printf("  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Printf("  2. $HOME/.config/leash/config.yaml\n")
	fmt.Printf("  3. ./config.yaml (current directory)\n")
	fmt.Println("\nEnvironment variables: LEASH_* (e.g., LEASH_OPERATION_MAX_TOTAL_MINUTES)")

	return nil
}
