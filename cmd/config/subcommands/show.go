package subcommands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leefowlercu/code-explainer/internal/config"
)

var (
	showRaw bool
)

// redacted replaces secrets in effective configuration output.
const redacted = "[redacted]"

// ShowCmd displays the current configuration.
var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	Long: "Display the current configuration.\n\n" +
		"Shows the current explainer configuration values. By default, shows " +
		"the effective configuration with defaults and environment overrides applied. " +
		"Use --raw to show only the values explicitly set in the config file. " +
		"API keys are redacted in the effective view.",
	Example: `  # Show effective configuration
  explainer config show

  # Show only explicitly set values
  explainer config show --raw`,
	Args:    cobra.NoArgs,
	PreRunE: validateShow,
	RunE:    runShow,
}

func init() {
	ShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Show only explicitly configured values (no defaults)")
}

func validateShow(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if showRaw {
		return showRawConfig(cmd.OutOrStdout())
	}
	return showEffectiveConfig(cmd.OutOrStdout())
}

func showRawConfig(out io.Writer) error {
	configPath := config.GetConfigPath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "# No configuration file found")
			fmt.Fprintf(out, "# Default location: %s\n", configPath)
			return nil
		}
		return fmt.Errorf("failed to read config file; %w", err)
	}

	fmt.Fprintf(out, "# Configuration file: %s\n", configPath)
	fmt.Fprintln(out, string(data))
	return nil
}

func showEffectiveConfig(out io.Writer) error {
	settings := config.GetAllSettings()
	redactSecrets(settings)

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to format configuration; %w", err)
	}

	fmt.Fprintln(out, "# Effective configuration (with defaults)")
	fmt.Fprintf(out, "# Config file: %s\n", config.GetConfigPath())
	fmt.Fprintln(out, string(data))
	return nil
}

func redactSecrets(settings map[string]any) {
	annotate, ok := settings["annotate"].(map[string]any)
	if !ok {
		return
	}
	if key, ok := annotate["api_key"].(string); ok && key != "" {
		annotate["api_key"] = redacted
	}
}
