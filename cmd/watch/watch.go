// Package watch implements the watch command, which re-explains source
// files as they change.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/code-explainer/internal/cmdutil"
	"github.com/leefowlercu/code-explainer/internal/config"
	"github.com/leefowlercu/code-explainer/internal/metrics"
	"github.com/leefowlercu/code-explainer/internal/version"
	"github.com/leefowlercu/code-explainer/internal/walker"
	"github.com/leefowlercu/code-explainer/internal/watcher"
)

// Flag variables for the watch command.
var (
	watchLanguage  string
	watchMaxSize   int
	watchOverlap   int
	watchFormat    string
	watchOut       string
	watchWorkers   int
	watchProvider  string
	watchDryRun    bool
	watchNoInitial bool
	watchDebounce  time.Duration
	watchMetrics   string
)

// pipelineSections are the config sections that require a new explainer
// when they change on reload.
var pipelineSections = []string{"extract", "split", "annotate", "cache", "output"}

// WatchCmd watches a directory and explains files as they change.
var WatchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Explain source files as they change",
	Long: "Explain source files as they change.\n\n" +
		"Every supported file under the directory is explained once at startup, then " +
		"again whenever its content changes. Deleting a file removes its document. " +
		"Send SIGHUP to reload the configuration; pipeline settings apply to the next " +
		"change. Stop with Ctrl+C.",
	Example: `  # Watch a project and keep JSON documents up to date
  explainer watch --out explanations ./src

  # Watch without the initial pass
  explainer watch --no-initial --out explanations ./src

  # Expose Prometheus metrics while watching
  explainer watch --metrics-addr 127.0.0.1:9464 --out explanations ./src`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateWatch,
	RunE:    runWatch,
}

func init() {
	WatchCmd.Flags().StringVarP(&watchLanguage, "language", "l", "", "Source language (default: inferred from extension)")
	WatchCmd.Flags().IntVar(&watchMaxSize, "max-size", 0, "Maximum piece size (default from config)")
	WatchCmd.Flags().IntVar(&watchOverlap, "overlap", 0, "Overlap between consecutive pieces (default from config)")
	WatchCmd.Flags().StringVarP(&watchFormat, "format", "f", "", "Output format (json, yaml, toml, xml, markdown, text)")
	WatchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "Output directory (default: stdout)")
	WatchCmd.Flags().IntVarP(&watchWorkers, "workers", "w", 0, "Concurrent provider requests (default from config)")
	WatchCmd.Flags().StringVarP(&watchProvider, "provider", "p", "", "Provider (anthropic, openai, google, none)")
	WatchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "Segment without calling a provider")
	WatchCmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "Skip explaining existing files at startup")
	WatchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before a change is processed")
	WatchCmd.Flags().StringVar(&watchMetrics, "metrics-addr", "", "Serve Prometheus metrics at this address (e.g. 127.0.0.1:9464)")
}

func validateWatch(cmd *cobra.Command, args []string) error {
	if err := cmdutil.BindFlags(cmd); err != nil {
		return err
	}
	if _, err := cmdutil.LoadConfig(); err != nil {
		return err
	}

	info, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("failed to stat %s; %w", args[0], err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", args[0])
	}
	if watchDebounce <= 0 {
		return fmt.Errorf("debounce must be positive, got %s", watchDebounce)
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

// session holds the current explainer so a reload can swap it while
// changes are being processed.
type session struct {
	explainer atomic.Pointer[cmdutil.Explainer]
	out       io.Writer
	progress  io.Writer
	logger    *slog.Logger
}

func (s *session) build(cfg *config.Config) error {
	if watchDryRun {
		cfg.Annotate.Provider = cmdutil.ProviderNone
	}
	runner, provider, err := cmdutil.NewRunner(cfg, s.logger)
	if err != nil {
		return err
	}
	s.explainer.Store(cmdutil.NewExplainer(cfg, runner, provider, s.out, s.logger))
	return nil
}

func (s *session) reload(previous, current *config.Config) {
	changed := config.ChangedSections(previous, current)
	if slices.Contains(changed, "walk") {
		s.logger.Warn("walk settings changed; restart watch to apply them")
	}
	if !slices.ContainsFunc(changed, func(section string) bool {
		return slices.Contains(pipelineSections, section)
	}) {
		return
	}

	// Flags still override the reloaded file
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		s.logger.Error("reloaded configuration rejected; keeping previous settings", "error", err)
		return
	}
	if err := s.build(cfg); err != nil {
		s.logger.Error("failed to apply reloaded configuration", "error", err)
		return
	}
	s.logger.Info("pipeline settings reloaded", "sections", changed)
}

func (s *session) explain(ctx context.Context, path string) {
	doc, written, err := s.explainer.Load().ExplainFile(ctx, path)
	if err != nil {
		s.logger.Error("failed to explain file", "path", path, "error", err)
		return
	}
	if written != "" {
		fmt.Fprintf(s.progress, "Wrote %s (%d units, %d pieces)\n", written, doc.Stats.Units, doc.Stats.Pieces)
	}
}

func (s *session) remove(path string) {
	if err := s.explainer.Load().Remove(path); err != nil {
		s.logger.Error("failed to remove document", "path", path, "error", err)
		return
	}
	fmt.Fprintf(s.progress, "Removed document for %s\n", path)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := cmdutil.ResolvePath(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s; %w", args[0], err)
	}

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	s := &session{
		out:      cmd.OutOrStdout(),
		progress: cmd.ErrOrStderr(),
		logger:   slog.Default(),
	}
	if err := s.build(cfg); err != nil {
		return err
	}

	filter := cmdutil.NewFilter(cfg)
	w, err := watcher.New(filter,
		watcher.WithDebounceWindow(watchDebounce),
		watcher.WithLogger(s.logger))
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	if err := w.Watch(root); err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}

	if watchMetrics != "" {
		srv, err := metrics.Listen(watchMetrics)
		if err != nil {
			return err
		}
		metrics.SetBuildInfo(version.Get().Short())
		go func() {
			if err := srv.Serve(ctx); err != nil {
				s.logger.Error("metrics server stopped", "error", err)
			}
		}()
		s.logger.Info("serving metrics", "addr", srv.Addr())
	}

	config.SetupSignalHandler(s.reload)
	defer config.StopSignalHandler()

	if !watchNoInitial {
		paths, err := walker.New(filter, walker.WithLogger(s.logger)).Collect(ctx, root)
		if err != nil {
			return err
		}
		for _, path := range paths {
			if ctx.Err() != nil {
				break
			}
			s.explain(ctx, path)
		}
	}

	s.logger.Info("watching for changes", "root", root, "run_id", s.explainer.Load().RunID())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("watch stopped", "root", root)
			return nil
		case change, ok := <-w.Changes():
			if !ok {
				return nil
			}
			s.logger.Debug("change detected", "path", change.Path, "type", change.Type.String())
			metrics.RecordWatcherChange(change.Type.String())
			if change.Type == watcher.ChangeDelete {
				s.remove(change.Path)
				continue
			}
			s.explain(ctx, change.Path)
		case err := <-w.Errors():
			s.logger.Warn("watcher error", "error", err)
		}
	}
}
