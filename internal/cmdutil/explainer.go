package cmdutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/leefowlercu/code-explainer/internal/annotate"
	"github.com/leefowlercu/code-explainer/internal/config"
	"github.com/leefowlercu/code-explainer/internal/export"
	"github.com/leefowlercu/code-explainer/internal/metrics"
)

// unknownLanguage labels files that failed before a grammar was chosen.
const unknownLanguage = "unknown"

// Explainer runs the pipeline over source files and emits one document per
// file, either into the output directory or to a writer.
type Explainer struct {
	builder  *Builder
	exporter *export.Exporter
	provider string
	runID    string
	format   string
	outDir   string
	out      io.Writer
	logger   *slog.Logger

	mu      sync.Mutex
	written map[string]string // output path -> source
}

// NewExplainer creates an Explainer for cfg. Documents go to cfg.Output.Dir
// when set and to out otherwise. Every document shares one run ID.
func NewExplainer(cfg *config.Config, runner *annotate.Runner, provider string, out io.Writer, logger *slog.Logger) *Explainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Explainer{
		builder:  NewBuilder(cfg, runner, logger),
		exporter: export.NewExporter(),
		provider: provider,
		runID:    export.NewRunID(),
		format:   cfg.Output.Format,
		outDir:   config.ExpandPath(cfg.Output.Dir),
		out:      out,
		logger:   logger,
		written:  make(map[string]string),
	}
}

// RunID returns the identifier shared by this Explainer's documents.
func (e *Explainer) RunID() string {
	return e.runID
}

// ExplainFile explains path and emits its document. It returns the document
// and the file it was written to, or "" when it went to the writer.
func (e *Explainer) ExplainFile(ctx context.Context, path string) (*export.Document, string, error) {
	start := time.Now()
	language := unknownLanguage

	src, err := os.ReadFile(path)
	if err != nil {
		metrics.RecordFile(language, metrics.FileStats{}, time.Since(start), err)
		return nil, "", fmt.Errorf("failed to read %s; %w", path, err)
	}

	p, err := e.builder.ForPath(path)
	if err != nil {
		metrics.RecordFile(language, metrics.FileStats{}, time.Since(start), err)
		return nil, "", err
	}
	language = p.Language()

	res, err := p.Run(ctx, src)
	if err != nil {
		metrics.RecordFile(language, metrics.FileStats{}, time.Since(start), err)
		return nil, "", fmt.Errorf("failed to explain %s; %w", path, err)
	}
	metrics.RecordFile(language, metrics.FileStats{
		Units:              res.Stats.Units,
		Pieces:             res.Stats.Pieces,
		ProvenanceMisses:   res.Stats.ProvenanceMisses,
		AnnotationFailures: res.Stats.AnnotationFailures,
	}, time.Since(start), nil)

	doc := export.NewDocument(path, e.provider, e.runID, res)

	if e.outDir == "" {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, err := e.exporter.Write(e.out, doc, e.format); err != nil {
			return nil, "", err
		}
		return doc, "", nil
	}

	written, _, err := e.exporter.WriteFile(doc, e.format, e.outDir)
	if err != nil {
		return nil, "", err
	}

	e.mu.Lock()
	if prev, ok := e.written[written]; ok && prev != path {
		e.logger.Warn("document overwritten by a file with the same name",
			"document", written, "previous", prev, "source", path)
	}
	e.written[written] = path
	e.mu.Unlock()

	e.logger.Debug("wrote document", "source", path, "document", written)
	return doc, written, nil
}

// Remove deletes the document written for path. Nothing is removed when
// documents go to the writer.
func (e *Explainer) Remove(path string) error {
	if e.outDir == "" {
		return nil
	}

	if err := e.exporter.RemoveFile(e.outDir, path, e.format); err != nil {
		return err
	}

	e.mu.Lock()
	for doc, src := range e.written {
		if src == path {
			delete(e.written, doc)
		}
	}
	e.mu.Unlock()

	return nil
}
