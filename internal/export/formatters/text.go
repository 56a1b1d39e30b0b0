package formatters

import (
	"fmt"
	"io"
	"strings"

	"github.com/leefowlercu/code-explainer/internal/tui/styles"
)

// TextFormatter renders documents for a terminal.
type TextFormatter struct {
	theme styles.Theme
}

// NewTextFormatter creates a text formatter without escape sequences.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{theme: styles.PlainTheme()}
}

// NewTerminalTextFormatter creates a text formatter styled for w, using
// colors only when w is a terminal.
func NewTerminalTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{theme: styles.NewTheme(w)}
}

// Name returns the formatter name.
func (f *TextFormatter) Name() string {
	return "text"
}

// ContentType returns the MIME content type.
func (f *TextFormatter) ContentType() string {
	return "text/plain"
}

// FileExtension returns the typical file extension.
func (f *TextFormatter) FileExtension() string {
	return ".txt"
}

// Format converts the document to styled text.
func (f *TextFormatter) Format(doc *Document) ([]byte, error) {
	th := f.theme
	var b strings.Builder

	b.WriteString(th.Title.Render(doc.Source))
	b.WriteString("\n")
	summary := fmt.Sprintf("%s %s %d units %s %d pieces", doc.Language, styles.Bullet, doc.Stats.Units, styles.Bullet, doc.Stats.Pieces)
	b.WriteString(th.MutedText.Render(summary))
	b.WriteString("\n")
	if doc.Stats.SyntaxErrors {
		b.WriteString(th.WarningText.Render("source contains syntax errors"))
		b.WriteString("\n")
	}

	unit := -1
	for _, p := range doc.Pieces {
		if p.Unit != unit {
			unit = p.Unit
			b.WriteString("\n")
			b.WriteString(th.Heading.Render(p.Title()))
			b.WriteString("\n")
		}

		lines := fmt.Sprintf("lines %d-%d", p.StartLine, p.EndLine)
		if !p.Exact {
			lines += " (approximate)"
		}
		b.WriteString(th.Label.Render(lines))
		b.WriteString("\n")

		b.WriteString(th.Code.Render(strings.TrimRight(p.Text, "\n")))
		b.WriteString("\n")

		switch {
		case p.Failed:
			b.WriteString(th.ErrorText.Render(styles.CheckFailure + " " + p.Explanation))
			b.WriteString("\n")
		case p.Explanation != "":
			b.WriteString(strings.TrimSpace(p.Explanation))
			b.WriteString("\n")
		}
	}

	return []byte(b.String()), nil
}
