// Package split implements the split command for inspecting the pieces a
// source file is divided into.
package split

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/code-explainer/internal/cmdutil"
	"github.com/leefowlercu/code-explainer/internal/export"
)

// Flag variables for the split command.
var (
	splitLanguage string
	splitMaxSize  int
	splitOverlap  int
	splitFormat   string
)

// SplitCmd splits every unit of a source file into pieces and prints them
// with their line ranges.
var SplitCmd = &cobra.Command{
	Use:   "split <file>",
	Short: "Show the pieces each method is split into",
	Long: "Show the pieces each method is split into.\n\n" +
		"Every unit is normalized and split into pieces no longer than the maximum " +
		"piece size. Each piece is printed with its 1-based line range; ranges marked " +
		"approximate could not be located in the unit text. No explanations are requested.",
	Example: `  # Split with the configured limits
  explainer split src/Calculator.java

  # Small pieces as YAML
  explainer split --max-size 200 --format yaml src/Calculator.java`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateSplit,
	RunE:    runSplit,
}

func init() {
	SplitCmd.Flags().StringVarP(&splitLanguage, "language", "l", "", "Source language (default: inferred from extension)")
	SplitCmd.Flags().IntVar(&splitMaxSize, "max-size", 0, "Maximum piece size (default from config)")
	SplitCmd.Flags().IntVar(&splitOverlap, "overlap", 0, "Overlap between consecutive pieces (default from config)")
	SplitCmd.Flags().StringVarP(&splitFormat, "format", "f", "", "Output format (json, yaml, toml, xml, markdown, text)")
}

func validateSplit(cmd *cobra.Command, args []string) error {
	if err := cmdutil.BindFlags(cmd); err != nil {
		return err
	}
	if _, err := cmdutil.LoadConfig(); err != nil {
		return err
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s; %w", path, err)
	}

	p, err := cmdutil.NewBuilder(cfg, nil, nil).ForPath(path)
	if err != nil {
		return err
	}

	res, err := p.Segment(cmd.Context(), src)
	if err != nil {
		return err
	}

	doc := export.NewDocument(path, cmdutil.ProviderNone, "", res)
	if _, err := export.NewExporter().Write(cmd.OutOrStdout(), doc, cfg.Output.Format); err != nil {
		return fmt.Errorf("failed to render pieces; %w", err)
	}

	return nil
}
