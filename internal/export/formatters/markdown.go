package formatters

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders documents as a Markdown report with one
// section per unit and the piece source in fenced blocks.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new Markdown formatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Name returns the formatter name.
func (f *MarkdownFormatter) Name() string {
	return "markdown"
}

// ContentType returns the MIME content type.
func (f *MarkdownFormatter) ContentType() string {
	return "text/markdown"
}

// FileExtension returns the typical file extension.
func (f *MarkdownFormatter) FileExtension() string {
	return ".md"
}

// Format converts the document to Markdown.
func (f *MarkdownFormatter) Format(doc *Document) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Source)
	fmt.Fprintf(&b, "- Language: %s\n", doc.Language)
	if doc.Provider != "" {
		fmt.Fprintf(&b, "- Provider: %s\n", doc.Provider)
	}
	fmt.Fprintf(&b, "- Generated: %s\n", doc.GeneratedAt.UTC().Format(timeLayout))
	fmt.Fprintf(&b, "- Units: %d, pieces: %d\n", doc.Stats.Units, doc.Stats.Pieces)
	if doc.Stats.AnnotationFailures > 0 {
		fmt.Fprintf(&b, "- Failed explanations: %d\n", doc.Stats.AnnotationFailures)
	}

	fence := fenceFor(doc.Pieces)
	unit := -1
	for _, p := range doc.Pieces {
		if p.Unit != unit {
			unit = p.Unit
			fmt.Fprintf(&b, "\n## %s\n", p.Title())
		}

		fmt.Fprintf(&b, "\n### Lines %d-%d", p.StartLine, p.EndLine)
		if !p.Exact {
			b.WriteString(" (approximate)")
		}
		b.WriteString("\n\n")

		fmt.Fprintf(&b, "%s%s\n%s\n%s\n", fence, doc.Language, strings.TrimRight(p.Text, "\n"), fence)

		if p.Explanation != "" {
			b.WriteString("\n")
			if p.Failed {
				fmt.Fprintf(&b, "> %s\n", p.Explanation)
			} else {
				b.WriteString(strings.TrimSpace(p.Explanation))
				b.WriteString("\n")
			}
		}
	}

	return []byte(b.String()), nil
}

// fenceFor returns a backtick fence longer than any run inside the pieces.
func fenceFor(pieces []Piece) string {
	longest := 0
	for _, p := range pieces {
		run := 0
		for _, r := range p.Text {
			if r == '`' {
				run++
				if run > longest {
					longest = run
				}
			} else {
				run = 0
			}
		}
	}
	n := 3
	if longest >= n {
		n = longest + 1
	}
	return strings.Repeat("`", n)
}
