package styles

import (
	"bytes"
	"strings"
	"testing"
)

func TestThemeStylesRender(t *testing.T) {
	theme := PlainTheme()

	tests := []struct {
		name  string
		style string
	}{
		{"Title", theme.Title.Render("test")},
		{"Heading", theme.Heading.Render("test")},
		{"Label", theme.Label.Render("test")},
		{"MutedText", theme.MutedText.Render("test")},
		{"ErrorText", theme.ErrorText.Render("test")},
		{"SuccessText", theme.SuccessText.Render("test")},
		{"WarningText", theme.WarningText.Render("test")},
		{"Code", theme.Code.Render("test")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.style, "test") {
				t.Errorf("%s rendered %q, want it to contain the input", tt.name, tt.style)
			}
		})
	}
}

func TestPlainThemeHasNoEscapes(t *testing.T) {
	theme := NewTheme(&bytes.Buffer{})

	out := theme.ErrorText.Render("failure") + theme.Title.Render("title")
	if strings.Contains(out, "\x1b[") {
		t.Errorf("non-terminal theme emitted escape sequences: %q", out)
	}
}

func TestCodeStyleHasLeftBorder(t *testing.T) {
	out := PlainTheme().Code.Render("line one\nline two")
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("Code rendered %d lines, want 2: %q", len(lines), out)
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "│") {
			t.Errorf("line %q missing left border", line)
		}
	}
}

func TestColorsAreDefined(t *testing.T) {
	colors := []struct {
		name  string
		color string
	}{
		{"Primary", string(Primary)},
		{"Secondary", string(Secondary)},
		{"Success", string(Success)},
		{"Error", string(Error)},
		{"Warning", string(Warning)},
		{"Highlight", string(Highlight)},
		{"Muted", string(Muted)},
	}

	for _, c := range colors {
		t.Run(c.name, func(t *testing.T) {
			if c.color == "" {
				t.Errorf("%s color should not be empty", c.name)
			}
		})
	}
}
