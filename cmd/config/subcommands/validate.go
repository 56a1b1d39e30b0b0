package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/code-explainer/internal/config"
	"github.com/leefowlercu/code-explainer/internal/providers/explain"
)

// ValidateCmd validates the current configuration.
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current configuration",
	Long: "Validate the current configuration.\n\n" +
		"Checks the configuration file for syntax errors and validates that all " +
		"settings have valid values. A valid file whose provider has no API key " +
		"is reported with a warning. Returns exit code 0 if valid, 1 if invalid.",
	Example: `  # Validate the configuration
  explainer config validate`,
	Args:    cobra.NoArgs,
	PreRunE: validateValidate,
	RunE:    runValidate,
}

func validateValidate(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configPath := config.GetConfigPath()

	if !config.ConfigExistsAt(configPath) {
		fmt.Fprintf(out, "No configuration file found at %s\n", configPath)
		fmt.Fprintln(out, "Using default configuration values.")
		return nil
	}

	// Loading also validates
	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		fmt.Fprintln(out, "Configuration validation failed:")
		fmt.Fprintf(out, "  %v\n", err)
		return fmt.Errorf("configuration is invalid")
	}

	fmt.Fprintf(out, "Configuration is valid: %s\n", configPath)
	if warning := providerWarning(cfg); warning != "" {
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
	return nil
}

// providerWarning reports a configured provider that cannot be used.
func providerWarning(cfg *config.Config) string {
	name := cfg.Annotate.Provider
	if name == "" || name == "none" {
		return ""
	}
	p, err := explain.New(explain.Options{
		Provider:  name,
		Model:     cfg.Annotate.Model,
		APIKey:    cfg.Annotate.ResolveAPIKey(),
		RateLimit: cfg.Annotate.RateLimit,
	})
	if err != nil {
		return err.Error()
	}
	if !p.Available() {
		return fmt.Sprintf("provider %s has no API key; explain will fail until one is set", name)
	}
	return ""
}
