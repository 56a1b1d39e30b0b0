package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/code-explainer/internal/config"
)

var (
	initForce bool
)

// InitCmd writes a configuration file populated with default values.
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Long: "Write a configuration file with default values.\n\n" +
		"Creates the configuration file with every setting at its default so it can " +
		"be edited by hand. An existing file is left untouched unless --force is given.",
	Example: `  # Create the default configuration file
  explainer config init

  # Overwrite an existing configuration file
  explainer config init --force`,
	Args:    cobra.NoArgs,
	PreRunE: validateInit,
	RunE:    runInit,
}

func init() {
	InitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}

func validateInit(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configPath := config.GetConfigPath()

	if config.ConfigExistsAt(configPath) && !initForce {
		fmt.Fprintf(out, "Configuration file already exists: %s\n", configPath)
		fmt.Fprintln(out, "Use --force to overwrite it.")
		return nil
	}

	cfg := config.NewDefaultConfig()
	if err := config.Write(&cfg, configPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "Configuration written: %s\n", configPath)
	return nil
}
