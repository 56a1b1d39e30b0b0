// Package provenance attributes approximate source line ranges to pieces.
//
// A piece is located by its first verbatim occurrence in the unit's
// original (pre-normalization) text. Normalization can change whitespace at
// a piece boundary, so a piece is not always found; it then falls back to
// the unit's first line. The fallback can report the same line for
// distinct pieces and is counted as a miss.
package provenance

import (
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/leefowlercu/code-explainer/internal/extract"
)

// Span is a resolved 0-based, inclusive line range.
type Span struct {
	StartLine int
	EndLine   int

	// Exact is false when the piece was not found verbatim and the span
	// was anchored at the unit's start line.
	Exact bool
}

// Resolver resolves piece spans and counts misses.
type Resolver struct {
	logger *slog.Logger
	misses atomic.Int64
	hits   atomic.Int64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to report misses.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve locates piece within unit.Text. Every call searches the whole
// original text; there is no cursor shared between pieces.
func (r *Resolver) Resolve(unit extract.Unit, piece string) Span {
	pieceLines := strings.Count(piece, "\n")

	k := strings.Index(unit.Text, piece)
	if k < 0 || piece == "" {
		r.misses.Add(1)
		r.logger.Debug("piece not found in unit text; using unit start line",
			"unit", unit.Name,
			"enclosing", unit.EnclosingName,
			"unit_start_line", unit.StartLine+1)

		end := unit.StartLine + pieceLines
		if end > unit.EndLine {
			end = unit.EndLine
		}
		return Span{StartLine: unit.StartLine, EndLine: end}
	}

	r.hits.Add(1)
	start := unit.StartLine + strings.Count(unit.Text[:k], "\n")
	return Span{StartLine: start, EndLine: start + pieceLines, Exact: true}
}

// Misses returns how many pieces fell back to the unit start line.
func (r *Resolver) Misses() int {
	return int(r.misses.Load())
}

// Hits returns how many pieces were located verbatim.
func (r *Resolver) Hits() int {
	return int(r.hits.Load())
}
