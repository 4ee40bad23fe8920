package cmd

import (
	"strings"

	"github.com/Iron-Ham/leash/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "leash",
	Short: "Per-user timeout and extension engine for long-running assistant operations",
	Long: `Leash keeps long-running, chat-mediated assistant operations on a
per-user time budget: one in-flight operation per user, a deadline that
extends automatically while the operation shows activity, and a hard
ceiling no extension can cross.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/leash/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/leash")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("LEASH")
	// Replace dots with underscores for nested keys in env vars
	// e.g., LEASH_OPERATION_MAX_TOTAL_MINUTES for operation.max_total_minutes
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
