// Package export turns pipeline results into explanation documents and
// writes them in the configured output format.
package export

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/leefowlercu/code-explainer/internal/export/formatters"
	"github.com/leefowlercu/code-explainer/internal/pipeline"
)

// Document is the exported form of one explained source file.
type Document = formatters.Document

// ExportStats contains statistics about an export operation.
type ExportStats struct {
	UnitCount  int           `json:"unit_count"`
	PieceCount int           `json:"piece_count"`
	ExportedAt time.Time     `json:"exported_at"`
	Duration   time.Duration `json:"duration"`
	Format     string        `json:"format"`
	OutputSize int           `json:"output_size"`
}

// NewDocument builds a document from a pipeline result. Lines become
// 1-based here and nowhere else. runID groups documents produced by one
// invocation; an empty runID generates a fresh one.
func NewDocument(source, provider, runID string, res *pipeline.Result) *Document {
	if runID == "" {
		runID = NewRunID()
	}

	doc := &Document{
		Version:     formatters.DocumentVersion,
		RunID:       runID,
		Source:      source,
		Language:    res.Language,
		Provider:    provider,
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Stats:       formatters.Stats(res.Stats),
		Pieces:      make([]formatters.Piece, 0, len(res.Records)),
	}

	for _, r := range res.Records {
		doc.Pieces = append(doc.Pieces, formatters.Piece{
			Unit:          r.Unit,
			Index:         r.Piece,
			EnclosingName: r.EnclosingName,
			UnitName:      r.UnitName,
			UnitKind:      r.UnitKind,
			StartLine:     r.StartLine + 1,
			EndLine:       r.EndLine + 1,
			Exact:         r.Exact,
			Text:          r.Text,
			Explanation:   r.Explanation,
			Failed:        r.Failed,
		})
	}

	return doc
}

// NewRunID returns a new random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Exporter renders documents with registered formatters.
type Exporter struct {
	formatters map[string]formatters.Formatter
}

// NewExporter creates an exporter with the built-in formatters registered.
func NewExporter() *Exporter {
	e := &Exporter{
		formatters: make(map[string]formatters.Formatter),
	}

	e.RegisterFormatter("json", formatters.NewJSONFormatter())
	e.RegisterFormatter("yaml", formatters.NewYAMLFormatter())
	e.RegisterFormatter("toml", formatters.NewTOMLFormatter())
	e.RegisterFormatter("xml", formatters.NewXMLFormatter())
	e.RegisterFormatter("markdown", formatters.NewMarkdownFormatter())
	e.RegisterFormatter("text", formatters.NewTextFormatter())

	return e
}

// RegisterFormatter registers a formatter for a format name, replacing any
// existing one.
func (e *Exporter) RegisterFormatter(name string, f formatters.Formatter) {
	e.formatters[name] = f
}

// Formatter returns the formatter registered for name.
func (e *Exporter) Formatter(name string) (formatters.Formatter, error) {
	f, ok := e.formatters[name]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", name)
	}
	return f, nil
}

// Export renders doc in the named format.
func (e *Exporter) Export(doc *Document, format string) ([]byte, *ExportStats, error) {
	startTime := time.Now()

	formatter, err := e.Formatter(format)
	if err != nil {
		return nil, nil, err
	}

	formatted, err := formatter.Format(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to format document; %w", err)
	}

	stats := &ExportStats{
		UnitCount:  doc.Stats.Units,
		PieceCount: len(doc.Pieces),
		ExportedAt: time.Now(),
		Duration:   time.Since(startTime),
		Format:     format,
		OutputSize: len(formatted),
	}

	return formatted, stats, nil
}

// OutputPath returns the document path for source inside dir:
// <dir>/<base name>.explain<ext>.
func (e *Exporter) OutputPath(dir, source, format string) (string, error) {
	formatter, err := e.Formatter(format)
	if err != nil {
		return "", err
	}
	name := filepath.Base(source) + ".explain" + formatter.FileExtension()
	return filepath.Join(dir, name), nil
}

// WriteFile renders doc and writes it into dir, replacing any previous
// document for the same source atomically. It returns the written path.
func (e *Exporter) WriteFile(doc *Document, format, dir string) (string, *ExportStats, error) {
	data, stats, err := e.Export(doc, format)
	if err != nil {
		return "", nil, err
	}

	path, err := e.OutputPath(dir, doc.Source, format)
	if err != nil {
		return "", nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create output directory %s; %w", dir, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", nil, fmt.Errorf("failed to write document; %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", nil, fmt.Errorf("failed to write document; %w", err)
	}

	return path, stats, nil
}

// Write renders doc to w. The text format is styled for w, so terminals
// get colors and pipes get plain text.
func (e *Exporter) Write(w io.Writer, doc *Document, format string) (*ExportStats, error) {
	target := e
	if format == "text" {
		target = &Exporter{formatters: map[string]formatters.Formatter{
			"text": formatters.NewTerminalTextFormatter(w),
		}}
	}

	data, stats, err := target.Export(doc, format)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write document; %w", err)
	}
	return stats, nil
}

// RemoveFile deletes the document written for source. A missing document
// is not an error.
func (e *Exporter) RemoveFile(dir, source, format string) error {
	path, err := e.OutputPath(dir, source, format)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove document %s; %w", path, err)
	}
	return nil
}

// ListFormats returns available format names, sorted.
func (e *Exporter) ListFormats() []string {
	formats := make([]string, 0, len(e.formatters))
	for name := range e.formatters {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}
