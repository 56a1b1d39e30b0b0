package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	configcmd "github.com/leefowlercu/code-explainer/cmd/config"
	"github.com/leefowlercu/code-explainer/cmd/explain"
	"github.com/leefowlercu/code-explainer/cmd/providers"
	splitcmd "github.com/leefowlercu/code-explainer/cmd/split"
	"github.com/leefowlercu/code-explainer/cmd/units"
	versioncmd "github.com/leefowlercu/code-explainer/cmd/version"
	"github.com/leefowlercu/code-explainer/cmd/watch"
	"github.com/leefowlercu/code-explainer/internal/config"
	"github.com/leefowlercu/code-explainer/internal/logging"
	"github.com/leefowlercu/code-explainer/internal/version"
)

// logManager is the global logging manager, created in init() and upgraded after config loads
var logManager *logging.Manager

var (
	verbose bool
	quiet   bool
)

var explainerCmd = &cobra.Command{
	Use:   "explainer",
	Short: "Explain source code one method at a time",
	Long: "Explainer parses source files, extracts every method with the name of the type that declares it, " +
		"splits long methods into size-bounded pieces that remember their line ranges, and asks a language " +
		"model to explain each piece.\n\n" +
		"Results are written as one document per source file in JSON, YAML, TOML, XML, Markdown or plain text.",
	Version:           version.Get().Short(),
	PersistentPreRunE: runInitialize,
}

func init() {
	// Bootstrap mode (stderr text only) until config is available
	logManager = logging.NewManager()

	explainerCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	explainerCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")
	explainerCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	explainerCmd.AddCommand(units.UnitsCmd)
	explainerCmd.AddCommand(splitcmd.SplitCmd)
	explainerCmd.AddCommand(explain.ExplainCmd)
	explainerCmd.AddCommand(watch.WatchCmd)
	explainerCmd.AddCommand(providers.ProvidersCmd)
	explainerCmd.AddCommand(configcmd.ConfigCmd)
	explainerCmd.AddCommand(versioncmd.VersionCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	if err := config.Init(); err != nil {
		return err
	}

	logFile := config.GetPath("log_file")
	levelStr := config.GetString("log_level")
	if _, ok := logging.ParseLevel(levelStr); !ok && levelStr != "" {
		logger.Warn("invalid log level configured, using default", "configured", levelStr, "default", "info")
	}
	level := logging.EffectiveLevel(levelStr, verbose, quiet)

	if err := logManager.Upgrade(logFile, level); err != nil {
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	explainerCmd.SilenceErrors = true
	explainerCmd.SilenceUsage = true

	defer func() { _ = logManager.Close() }()

	err := explainerCmd.Execute()

	if err != nil {
		cmd, _, _ := explainerCmd.Find(os.Args[1:])
		if cmd == nil {
			cmd = explainerCmd
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Fprintf(os.Stderr, "\n")
			cmd.SetOut(os.Stderr)
			_ = cmd.Usage()
		}

		return err
	}

	return nil
}
