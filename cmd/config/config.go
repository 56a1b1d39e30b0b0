// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/code-explainer/cmd/config/subcommands"
)

// ConfigCmd is the parent command for all config-related subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage explainer configuration",
	Long: "Manage explainer configuration.\n\n" +
		"The config command allows you to create, view, edit, validate and reset the " +
		"explainer configuration. Configuration is stored in a YAML file located at " +
		"~/.config/explainer/config.yaml by default, or in $EXPLAINER_CONFIG_DIR when set. " +
		"Every key can also be set with an EXPLAINER_ environment variable, for example " +
		"EXPLAINER_SPLIT_MAX_PIECE_SIZE=1000.",
}

func init() {
	// Register subcommands
	ConfigCmd.AddCommand(subcommands.InitCmd)
	ConfigCmd.AddCommand(subcommands.ShowCmd)
	ConfigCmd.AddCommand(subcommands.EditCmd)
	ConfigCmd.AddCommand(subcommands.ResetCmd)
	ConfigCmd.AddCommand(subcommands.ValidateCmd)
}
