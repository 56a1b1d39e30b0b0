// Package providers provides the providers parent command and subcommands.
package providers

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/code-explainer/cmd/providers/subcommands"
)

// ProvidersCmd is the parent command for all provider-related subcommands.
var ProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Inspect the language model providers used for explanations",
	Long: "Inspect the language model providers used for explanations.\n\n" +
		"Providers are the language model services that explain code pieces. This " +
		"command lists the built-in providers with their configuration status and " +
		"tests connectivity with a small explanation request.",
}

func init() {
	ProvidersCmd.AddCommand(subcommands.ListCmd)
	ProvidersCmd.AddCommand(subcommands.TestCmd)
}
