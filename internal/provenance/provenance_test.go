package provenance_test

import (
	"strings"
	"testing"

	"github.com/leefowlercu/code-explainer/internal/extract"
	"github.com/leefowlercu/code-explainer/internal/provenance"
	"github.com/leefowlercu/code-explainer/internal/split"
)

func TestResolveFound(t *testing.T) {
	unit := extract.Unit{
		Name:      "run",
		Text:      "void run() {\n    a();\n\n    b();\n    c();\n}",
		StartLine: 10,
		EndLine:   15,
	}
	r := provenance.New()

	tests := []struct {
		piece     string
		wantStart int
		wantEnd   int
	}{
		{"void run() {\n    a();", 10, 11},
		{"    b();\n    c();\n}", 13, 15},
		{"    c();", 14, 14},
	}

	for _, tt := range tests {
		span := r.Resolve(unit, tt.piece)
		if !span.Exact {
			t.Errorf("piece %q: expected exact match", tt.piece)
		}
		if span.StartLine != tt.wantStart || span.EndLine != tt.wantEnd {
			t.Errorf("piece %q: span = %d-%d, want %d-%d", tt.piece, span.StartLine, span.EndLine, tt.wantStart, tt.wantEnd)
		}
	}

	if r.Hits() != 3 || r.Misses() != 0 {
		t.Errorf("expected 3 hits and 0 misses, got %d and %d", r.Hits(), r.Misses())
	}
}

func TestResolveUsesFirstOccurrence(t *testing.T) {
	unit := extract.Unit{
		Text:      "x++;\ny++;\nx++;",
		StartLine: 3,
		EndLine:   5,
	}
	r := provenance.New()

	first := r.Resolve(unit, "x++;")
	second := r.Resolve(unit, "x++;")

	if first.StartLine != 3 || second.StartLine != 3 {
		t.Errorf("expected both lookups at line 3, got %d and %d", first.StartLine, second.StartLine)
	}
}

func TestResolveMissFallsBackToUnitStart(t *testing.T) {
	// CRLF and whitespace-only blank lines change under normalization
	original := "void f() {\r\n    a();\r\n    \t\r\n    b();\r\n    c();\r\n}"
	unit := extract.Unit{Name: "f", Text: original, StartLine: 20, EndLine: 25}
	r := provenance.New()

	piece := split.Normalize(original)
	span := r.Resolve(unit, piece)

	if span.Exact {
		t.Error("expected a miss for normalized text")
	}
	if span.StartLine != 20 {
		t.Errorf("expected fallback start 20, got %d", span.StartLine)
	}
	if span.EndLine != 25 {
		t.Errorf("expected end clamped to unit end 25, got %d", span.EndLine)
	}
	if r.Misses() != 1 {
		t.Errorf("expected 1 miss, got %d", r.Misses())
	}
}

func TestResolveMissClampsEnd(t *testing.T) {
	unit := extract.Unit{Text: "abc", StartLine: 4, EndLine: 4}
	span := provenance.New().Resolve(unit, "zz\nzz\nzz")

	if span.StartLine != 4 || span.EndLine != 4 {
		t.Errorf("expected 4-4, got %d-%d", span.StartLine, span.EndLine)
	}
}

func TestResolveSplitPieces(t *testing.T) {
	var b strings.Builder
	b.WriteString("void big() {\n")
	for i := 0; i < 12; i++ {
		b.WriteString("    step();\n    step();\n\n")
	}
	b.WriteString("}")
	unit := extract.Unit{Name: "big", Text: b.String(), StartLine: 100, EndLine: 100 + strings.Count(b.String(), "\n")}

	s, err := split.New(split.Options{MaxSize: 60})
	if err != nil {
		t.Fatalf("split.New failed: %v", err)
	}
	r := provenance.New()

	prevStart := -1
	for _, p := range s.Split(unit.Text) {
		span := r.Resolve(unit, p.Text)
		if span.StartLine > span.EndLine {
			t.Errorf("span %d-%d is inverted", span.StartLine, span.EndLine)
		}
		if span.StartLine < unit.StartLine || span.EndLine > unit.EndLine {
			t.Errorf("span %d-%d outside unit %d-%d", span.StartLine, span.EndLine, unit.StartLine, unit.EndLine)
		}
		if span.StartLine < prevStart {
			t.Errorf("span start %d before previous %d", span.StartLine, prevStart)
		}
		prevStart = span.StartLine
	}
	if r.Misses() != 0 {
		t.Errorf("expected no misses for normalized-stable text, got %d", r.Misses())
	}
}
