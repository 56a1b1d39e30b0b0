// Package split re-segments unit text into size-bounded pieces.
//
// Text is normalized first (line endings, whitespace-only blank lines) so
// the paragraph separator matches reliably. It is then split on a
// hierarchy of separators: segments that still exceed the bound are split
// again with the next, finer separator. Segments with no remaining
// separator are kept whole rather than truncated. Adjacent segments are
// merged greedily up to the bound.
package split

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxSize is the default maximum piece length.
	DefaultMaxSize = 2000

	// ParagraphSeparator is the primary separator.
	ParagraphSeparator = "\n\n"
)

// DefaultSeparators is the primary separator hierarchy.
var DefaultSeparators = []string{ParagraphSeparator}

// DefaultFallback is tried, in order, for segments still over the bound.
// Appending "" enables hard character cuts.
var DefaultFallback = []string{"\n", " "}

// LengthFunc measures a piece. The default counts characters (runes).
type LengthFunc func(string) int

// RuneLength counts Unicode code points.
func RuneLength(s string) int {
	return utf8.RuneCountInString(s)
}

// Options configures a Splitter.
type Options struct {
	// MaxSize is the maximum piece length as measured by Length.
	MaxSize int

	// Overlap is the maximum length of trailing segments repeated at the
	// start of the next piece. Zero disables overlap.
	Overlap int

	// Separators is the primary hierarchy, coarsest first.
	Separators []string

	// Fallback is appended to Separators for oversized segments. Nil means
	// DefaultFallback; an empty non-nil slice disables fallback.
	Fallback []string

	// Length measures text; nil means RuneLength.
	Length LengthFunc
}

// DefaultOptions returns a 2000 character bound, no overlap, paragraph
// splitting with line and word fallback.
func DefaultOptions() Options {
	return Options{
		MaxSize:    DefaultMaxSize,
		Overlap:    0,
		Separators: DefaultSeparators,
		Fallback:   DefaultFallback,
		Length:     RuneLength,
	}
}

// Piece is one split fragment. Sep is the separator consumed between this
// piece and the next one; it is empty for the last piece.
type Piece struct {
	Text string `json:"text" yaml:"text"`
	Sep  string `json:"-" yaml:"-"`
}

// Splitter splits text into pieces. It is safe for concurrent use.
type Splitter struct {
	maxSize   int
	overlap   int
	hierarchy []string
	length    LengthFunc
}

// New validates opts and creates a Splitter. Zero values take defaults,
// including a nil Fallback. Pass an empty non-nil Fallback to split only
// on Separators and keep oversized segments whole.
func New(opts Options) (*Splitter, error) {
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.Overlap < 0 {
		return nil, fmt.Errorf("overlap must not be negative, got %d", opts.Overlap)
	}
	if opts.Overlap >= opts.MaxSize {
		return nil, fmt.Errorf("overlap %d must be smaller than max size %d", opts.Overlap, opts.MaxSize)
	}
	if len(opts.Separators) == 0 {
		opts.Separators = DefaultSeparators
	}
	if opts.Fallback == nil {
		opts.Fallback = DefaultFallback
	}
	if opts.Length == nil {
		opts.Length = RuneLength
	}

	hierarchy := make([]string, 0, len(opts.Separators)+len(opts.Fallback))
	hierarchy = append(hierarchy, opts.Separators...)
	hierarchy = append(hierarchy, opts.Fallback...)

	return &Splitter{
		maxSize:   opts.MaxSize,
		overlap:   opts.Overlap,
		hierarchy: hierarchy,
		length:    opts.Length,
	}, nil
}

// MaxSize returns the configured bound.
func (s *Splitter) MaxSize() int {
	return s.maxSize
}

// Split normalizes text and splits it into pieces.
func (s *Splitter) Split(text string) []Piece {
	return s.SplitNormalized(Normalize(text))
}

// SplitNormalized splits text that has already been normalized.
func (s *Splitter) SplitNormalized(text string) []Piece {
	if text == "" {
		return nil
	}
	return compact(s.split(text, s.hierarchy))
}

// Texts returns the text of each piece.
func Texts(pieces []Piece) []string {
	out := make([]string, len(pieces))
	for i, p := range pieces {
		out[i] = p.Text
	}
	return out
}

// Join reassembles pieces with the separators they consumed. For zero
// overlap it reproduces the normalized input, minus any whitespace-only
// text before the first piece.
func Join(pieces []Piece) string {
	var b strings.Builder
	for _, p := range pieces {
		b.WriteString(p.Text)
		b.WriteString(p.Sep)
	}
	return b.String()
}

var blankLine = regexp.MustCompile(`\n[ \t]+\n`)

// Normalize canonicalizes line endings to "\n" and whitespace-only blank
// lines to an empty line, so "\n \t\n" becomes "\n\n".
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for {
		// matches can share a newline, so repeat until stable
		next := blankLine.ReplaceAllString(text, "\n\n")
		if next == text {
			return text
		}
		text = next
	}
}

// split splits text with the first separator in seps that occurs in it.
// The last returned piece always has an empty Sep.
func (s *Splitter) split(text string, seps []string) []Piece {
	if s.length(text) <= s.maxSize {
		return []Piece{{Text: text}}
	}

	sep, rest, ok := pick(text, seps)
	if !ok {
		// unbreakable; keep it whole
		return []Piece{{Text: text}}
	}

	var parts []string
	if sep == "" {
		parts = cut(text, s.maxSize)
	} else {
		parts = strings.Split(text, sep)
	}

	var out []Piece
	var fitting []string
	for _, part := range parts {
		if s.length(part) <= s.maxSize {
			fitting = append(fitting, part)
			continue
		}
		if len(fitting) > 0 {
			out = appendGroup(out, s.merge(fitting, sep), sep)
			fitting = nil
		}
		out = appendGroup(out, s.split(part, rest), sep)
	}
	if len(fitting) > 0 {
		out = appendGroup(out, s.merge(fitting, sep), sep)
	}

	return out
}

// merge combines segments greedily up to the bound, keeping up to Overlap
// worth of trailing segments at the start of the next piece.
func (s *Splitter) merge(segments []string, sep string) []Piece {
	sepLen := s.length(sep)
	joined := func(n int) int {
		if n > 0 {
			return sepLen
		}
		return 0
	}

	var pieces []Piece
	var current []string
	total := 0

	for _, seg := range segments {
		segLen := s.length(seg)

		if len(current) > 0 && total+joined(len(current))+segLen > s.maxSize {
			pieces = append(pieces, Piece{Text: strings.Join(current, sep), Sep: sep})

			for len(current) > 0 &&
				(total > s.overlap || total+joined(len(current))+segLen > s.maxSize) {
				total -= s.length(current[0]) + joined(len(current)-1)
				current = current[1:]
			}
		}

		total += joined(len(current)) + segLen
		current = append(current, seg)
	}

	if len(current) > 0 {
		pieces = append(pieces, Piece{Text: strings.Join(current, sep)})
	}

	return pieces
}

// appendGroup appends group to out; the boundary between them is sep.
func appendGroup(out, group []Piece, sep string) []Piece {
	if len(group) == 0 {
		return out
	}
	if len(out) > 0 {
		out[len(out)-1].Sep = sep
	}
	return append(out, group...)
}

// compact trims leading and trailing newlines off each piece and drops
// pieces left with only whitespace. Whatever is trimmed or dropped is
// folded into the neighbouring separators so Join stays exact.
func compact(pieces []Piece) []Piece {
	out := pieces[:0]
	for _, p := range pieces {
		body := strings.Trim(p.Text, "\n")
		if strings.TrimSpace(body) == "" {
			if len(out) > 0 {
				out[len(out)-1].Sep += p.Text + p.Sep
			}
			continue
		}

		lead := p.Text[:len(p.Text)-len(strings.TrimLeft(p.Text, "\n"))]
		trail := p.Text[len(strings.TrimRight(p.Text, "\n")):]
		if len(out) > 0 {
			out[len(out)-1].Sep += lead
		}
		out = append(out, Piece{Text: body, Sep: trail + p.Sep})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// pick returns the first separator in seps found in text and the finer
// separators after it. The empty separator always matches.
func pick(text string, seps []string) (string, []string, bool) {
	for i, sep := range seps {
		if sep == "" || strings.Contains(text, sep) {
			return sep, seps[i+1:], true
		}
	}
	return "", nil, false
}

// cut splits text into runs of at most size runes.
func cut(text string, size int) []string {
	var parts []string
	for text != "" {
		n, i := 0, 0
		for i < len(text) && n < size {
			_, w := utf8.DecodeRuneInString(text[i:])
			i += w
			n++
		}
		parts = append(parts, text[:i])
		text = text[i:]
	}
	return parts
}
