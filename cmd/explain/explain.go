// Package explain implements the explain command, which runs the full
// pipeline and writes one explanation document per source file.
package explain

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/code-explainer/internal/cmdutil"
	"github.com/leefowlercu/code-explainer/internal/walker"
)

// ErrNoSources is returned when no explainable file is found.
var ErrNoSources = errors.New("no supported source files found")

// Flag variables for the explain command.
var (
	explainLanguage string
	explainMaxSize  int
	explainOverlap  int
	explainFormat   string
	explainOut      string
	explainWorkers  int
	explainProvider string
	explainDryRun   bool
)

// ExplainCmd explains source files with the configured provider.
var ExplainCmd = &cobra.Command{
	Use:   "explain <path>...",
	Short: "Explain every method in the given files or directories",
	Long: "Explain every method in the given files or directories.\n\n" +
		"Directories are walked recursively; files are selected by extension unless " +
		"--language is set, and walk.exclude globs are honored. Each method is split " +
		"into pieces and every piece is sent to the configured provider. Failed pieces " +
		"keep their place with a failure note.\n\n" +
		"Documents are written to --out as <file>.explain.<ext>, or to stdout when no " +
		"output directory is configured.",
	Example: `  # Explain a file to stdout as text
  explainer explain --format text src/Calculator.java

  # Explain a project with OpenAI and write JSON documents
  explainer explain --provider openai --out explanations ./src

  # Inspect what would be sent without calling a provider
  explainer explain --dry-run --format yaml ./src`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: validateExplain,
	RunE:    runExplain,
}

func init() {
	ExplainCmd.Flags().StringVarP(&explainLanguage, "language", "l", "", "Source language (default: inferred from extension)")
	ExplainCmd.Flags().IntVar(&explainMaxSize, "max-size", 0, "Maximum piece size (default from config)")
	ExplainCmd.Flags().IntVar(&explainOverlap, "overlap", 0, "Overlap between consecutive pieces (default from config)")
	ExplainCmd.Flags().StringVarP(&explainFormat, "format", "f", "", "Output format (json, yaml, toml, xml, markdown, text)")
	ExplainCmd.Flags().StringVarP(&explainOut, "out", "o", "", "Output directory (default: stdout)")
	ExplainCmd.Flags().IntVarP(&explainWorkers, "workers", "w", 0, "Concurrent provider requests (default from config)")
	ExplainCmd.Flags().StringVarP(&explainProvider, "provider", "p", "", "Provider (anthropic, openai, google, none)")
	ExplainCmd.Flags().BoolVar(&explainDryRun, "dry-run", false, "Segment without calling a provider")
}

func validateExplain(cmd *cobra.Command, args []string) error {
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

func runExplain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	if explainDryRun {
		cfg.Annotate.Provider = cmdutil.ProviderNone
	}

	runner, provider, err := cmdutil.NewRunner(cfg, logger)
	if err != nil {
		return err
	}

	w := walker.New(cmdutil.NewFilter(cfg), walker.WithLogger(logger))
	paths, err := w.Collect(ctx, args...)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return ErrNoSources
	}

	e := cmdutil.NewExplainer(cfg, runner, provider, cmd.OutOrStdout(), logger)
	logger.Info("explaining sources", "files", len(paths), "provider", provider, "run_id", e.RunID())

	start := time.Now()
	var units, pieces, failedPieces, failedFiles int
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		doc, written, err := e.ExplainFile(ctx, path)
		if err != nil {
			failedFiles++
			logger.Error("failed to explain file", "path", path, "error", err)
			continue
		}

		units += doc.Stats.Units
		pieces += doc.Stats.Pieces
		failedPieces += doc.Stats.AnnotationFailures
		if written != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d units, %d pieces)\n", written, doc.Stats.Units, doc.Stats.Pieces)
		}
	}

	logger.Info("explain complete",
		"files", len(paths)-failedFiles,
		"units", units,
		"pieces", pieces,
		"failed_pieces", failedPieces,
		"duration", time.Since(start).Round(time.Millisecond))

	if failedFiles > 0 {
		return fmt.Errorf("failed to explain %d of %d files", failedFiles, len(paths))
	}
	return nil
}
