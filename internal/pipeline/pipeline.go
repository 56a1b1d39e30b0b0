// Package pipeline wires parsing, unit extraction, piece splitting and
// provenance resolution into ordered piece records, with optional
// annotation.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leefowlercu/code-explainer/internal/annotate"
	"github.com/leefowlercu/code-explainer/internal/extract"
	"github.com/leefowlercu/code-explainer/internal/grammar"
	"github.com/leefowlercu/code-explainer/internal/provenance"
	"github.com/leefowlercu/code-explainer/internal/split"
)

// Record is one piece of one unit with its resolved line range. Lines are
// 0-based and inclusive.
type Record struct {
	EnclosingName string `json:"enclosing_name" yaml:"enclosing_name" toml:"enclosing_name"`
	UnitName      string `json:"unit_name" yaml:"unit_name" toml:"unit_name"`
	UnitKind      string `json:"unit_kind" yaml:"unit_kind" toml:"unit_kind"`
	Unit          int    `json:"unit" yaml:"unit" toml:"unit"`
	Piece         int    `json:"piece" yaml:"piece" toml:"piece"`
	Text          string `json:"text" yaml:"text" toml:"text"`
	StartLine     int    `json:"start_line" yaml:"start_line" toml:"start_line"`
	EndLine       int    `json:"end_line" yaml:"end_line" toml:"end_line"`
	Exact         bool   `json:"exact" yaml:"exact" toml:"exact"`
	Explanation   string `json:"explanation,omitempty" yaml:"explanation,omitempty" toml:"explanation,omitempty"`
	Failed        bool   `json:"failed,omitempty" yaml:"failed,omitempty" toml:"failed,omitempty"`
}

// Stats summarizes one pipeline run.
type Stats struct {
	Units              int  `json:"units" yaml:"units" toml:"units"`
	Pieces             int  `json:"pieces" yaml:"pieces" toml:"pieces"`
	ProvenanceMisses   int  `json:"provenance_misses" yaml:"provenance_misses" toml:"provenance_misses"`
	DecodeErrors       int  `json:"decode_errors" yaml:"decode_errors" toml:"decode_errors"`
	AnnotationFailures int  `json:"annotation_failures" yaml:"annotation_failures" toml:"annotation_failures"`
	SyntaxErrors       bool `json:"syntax_errors" yaml:"syntax_errors" toml:"syntax_errors"`
}

// Result is the output of a pipeline run over one source buffer.
type Result struct {
	Language string
	Units    []extract.Unit
	Records  []Record
	Stats    Stats
}

// Config holds the extraction and splitting settings.
type Config struct {
	Kinds grammar.Kinds
	Split split.Options
}

// Pipeline processes source buffers. It is safe for concurrent use; all
// per-buffer state lives in the call.
type Pipeline struct {
	grammar   grammar.Grammar
	extractor *extract.Extractor
	splitter  *split.Splitter
	runner    *annotate.Runner
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithRunner enables the annotation stage.
func WithRunner(r *annotate.Runner) Option {
	return func(p *Pipeline) {
		p.runner = r
	}
}

// New creates a Pipeline over g. Kinds in cfg override the grammar's
// defaults field by field.
func New(g grammar.Grammar, cfg Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		grammar: g,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	s, err := split.New(cfg.Split)
	if err != nil {
		return nil, fmt.Errorf("failed to create splitter; %w", err)
	}
	p.splitter = s
	p.extractor = extract.New(cfg.Kinds.Merge(g.Kinds()), extract.WithLogger(p.logger))

	return p, nil
}

// Language returns the grammar language.
func (p *Pipeline) Language() string {
	return p.grammar.Language()
}

// Annotates reports whether the annotation stage is enabled.
func (p *Pipeline) Annotates() bool {
	return p.runner != nil
}

// Segment parses src, extracts units, splits them and resolves piece
// provenance. A parse failure returns no records.
func (p *Pipeline) Segment(ctx context.Context, src []byte) (*Result, error) {
	tree, err := p.grammar.Parse(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to segment source; %w", err)
	}

	units := p.extractor.ExtractTree(tree)
	resolver := provenance.New(provenance.WithLogger(p.logger))

	res := &Result{
		Language: tree.Language,
		Units:    units,
	}

	for ui, u := range units {
		pieces := p.splitter.Split(u.Text)
		for pi, piece := range pieces {
			span := resolver.Resolve(u, piece.Text)
			res.Records = append(res.Records, Record{
				EnclosingName: u.EnclosingName,
				UnitName:      u.Name,
				UnitKind:      u.Kind,
				Unit:          ui,
				Piece:         pi,
				Text:          piece.Text,
				StartLine:     span.StartLine,
				EndLine:       span.EndLine,
				Exact:         span.Exact,
			})
		}

		p.logger.Debug("split unit",
			"enclosing", u.EnclosingName,
			"unit", u.Name,
			"lines", fmt.Sprintf("%d-%d", u.StartLine+1, u.EndLine+1),
			"pieces", len(pieces))
	}

	res.Stats = Stats{
		Units:            len(units),
		Pieces:           len(res.Records),
		ProvenanceMisses: resolver.Misses(),
		DecodeErrors:     tree.DecodeErrors(),
		SyntaxErrors:     tree.HasErrors,
	}

	return res, nil
}

// Annotate fills Explanation and Failed on every record of res. Failed
// pieces keep their place; the record count never changes.
func (p *Pipeline) Annotate(ctx context.Context, res *Result) {
	if p.runner == nil || res == nil || len(res.Records) == 0 {
		return
	}

	targets := make([]annotate.Target, len(res.Records))
	for i, r := range res.Records {
		targets[i] = annotate.Target{
			Context: annotate.Context{
				EnclosingName: r.EnclosingName,
				UnitName:      r.UnitName,
				Language:      res.Language,
			},
			Text: r.Text,
		}
	}

	failures := 0
	for i, out := range p.runner.Run(ctx, targets) {
		res.Records[i].Explanation = out.Explanation
		res.Records[i].Failed = out.Failed
		if out.Failed {
			failures++
		}
	}
	res.Stats.AnnotationFailures = failures
}

// Run segments src and, when a runner is configured, annotates the records.
func (p *Pipeline) Run(ctx context.Context, src []byte) (*Result, error) {
	res, err := p.Segment(ctx, src)
	if err != nil {
		return nil, err
	}

	p.Annotate(ctx, res)

	p.logger.Info("processed source",
		"language", res.Language,
		"units", res.Stats.Units,
		"pieces", res.Stats.Pieces,
		"provenance_misses", res.Stats.ProvenanceMisses,
		"annotation_failures", res.Stats.AnnotationFailures)

	return res, nil
}
