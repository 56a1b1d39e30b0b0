package subcommands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/code-explainer/internal/cmdutil"
	"github.com/leefowlercu/code-explainer/internal/providers"
)

var (
	listVerbose bool
)

// ListCmd lists the built-in explain providers.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available explain providers",
	Long: "List available explain providers.\n\n" +
		"Displays every built-in provider and whether it has credentials. The " +
		"configured provider is marked with an asterisk. Use --details to see the " +
		"model and rate limit of each provider.",
	Example: `  # List all providers
  explainer providers list

  # List with model and rate limit information
  explainer providers list --details`,
	Args:    cobra.NoArgs,
	PreRunE: validateList,
	RunE:    runList,
}

func init() {
	ListCmd.Flags().BoolVarP(&listVerbose, "details", "d", false, "Show model and rate limit for each provider")
}

func validateList(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Explain Providers:")
	for _, name := range registry.Names() {
		p, err := registry.Get(name)
		if err != nil {
			return err
		}
		printProvider(out, p, name == cfg.Annotate.Provider, listVerbose)
	}

	if cfg.Annotate.Provider == cmdutil.ProviderNone {
		fmt.Fprintln(out, "\nAnnotation is disabled (annotate.provider: none).")
	}

	return nil
}

func printProvider(out io.Writer, p providers.ExplainProvider, configured, verbose bool) {
	status := "unavailable"
	if p.Available() {
		status = "available"
	}

	marker := " "
	if configured {
		marker = "*"
	}

	if !verbose {
		fmt.Fprintf(out, "%s %s (%s)\n", marker, p.Name(), status)
		return
	}

	rateLimit := p.RateLimit()
	fmt.Fprintf(out, "%s %s:\n", marker, p.Name())
	fmt.Fprintf(out, "    Status: %s\n", status)
	fmt.Fprintf(out, "    Model: %s\n", p.ModelName())
	fmt.Fprintf(out, "    Rate Limit: %d req/min, burst %d\n", rateLimit.RequestsPerMinute, rateLimit.BurstSize)
}
