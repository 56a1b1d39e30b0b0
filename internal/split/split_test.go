package split_test

import (
	"strings"
	"testing"

	"github.com/leefowlercu/code-explainer/internal/split"
)

func newSplitter(t *testing.T, opts split.Options) *split.Splitter {
	t.Helper()
	s, err := split.New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"CRLF", "a\r\nb", "a\nb"},
		{"LoneCR", "a\rb", "a\nb"},
		{"SpacesBlankLine", "a\n   \nb", "a\n\nb"},
		{"TabsBlankLine", "a\n\t \t\nb", "a\n\nb"},
		{"CRLFBlankLine", "a\r\n  \r\nb", "a\n\nb"},
		{"ConsecutiveBlankLines", "a\n \n \nb", "a\n\n\nb"},
		{"IndentationKept", "a\n    b", "a\n    b"},
		{"AlreadyNormal", "a\n\nb", "a\n\nb"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := split.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitSmallUnit(t *testing.T) {
	s := newSplitter(t, split.DefaultOptions())
	text := "public void run() {\r\n    go();\r\n}"
	if len(text) > 50 {
		t.Fatalf("fixture too long: %d", len(text))
	}

	pieces := s.Split(text)

	if len(pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d", len(pieces))
	}
	if pieces[0].Text != split.Normalize(text) {
		t.Errorf("expected piece to equal normalized text, got %q", pieces[0].Text)
	}
}

func TestSplitThreeBlocks(t *testing.T) {
	s := newSplitter(t, split.DefaultOptions())
	a := strings.Repeat("a", 900)
	b := strings.Repeat("b", 900)
	c := strings.Repeat("c", 900)
	text := a + "\n\n" + b + "\n\n" + c

	pieces := s.Split(text)

	if len(pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(pieces))
	}
	if pieces[0].Text != a+"\n\n"+b {
		t.Errorf("expected first piece to hold the first two blocks")
	}
	if pieces[1].Text != c {
		t.Errorf("expected second piece to hold the third block")
	}
	if got := strings.Join(split.Texts(pieces), "\n\n"); got != text {
		t.Error("joining with a double newline did not reproduce the text")
	}
}

func TestSplitOversizedParagraphFallsBack(t *testing.T) {
	s := newSplitter(t, split.DefaultOptions())
	line := strings.Repeat("x", 99)
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = line
	}
	big := strings.Join(lines, "\n")
	text := "head\n\n" + big + "\n\ntail"

	pieces := s.Split(text)

	for i, p := range pieces {
		if n := len(p.Text); n > 2000 {
			t.Errorf("piece %d has length %d > 2000", i, n)
		}
	}
	if split.Join(pieces) != text {
		t.Error("Join did not reproduce the normalized text")
	}
	// head, 20 lines, 10 lines, tail
	if len(pieces) != 4 {
		t.Fatalf("expected 4 pieces, got %d", len(pieces))
	}
	if pieces[0].Text != "head" || pieces[3].Text != "tail" {
		t.Errorf("unexpected boundary pieces %q, %q", pieces[0].Text, pieces[3].Text)
	}
	if strings.Count(pieces[1].Text, "\n") != 19 || strings.Count(pieces[2].Text, "\n") != 9 {
		t.Errorf("unexpected line distribution: %d and %d newlines",
			strings.Count(pieces[1].Text, "\n"), strings.Count(pieces[2].Text, "\n"))
	}
	if pieces[1].Sep != "\n" || pieces[0].Sep != "\n\n" {
		t.Errorf("unexpected separators %q, %q", pieces[0].Sep, pieces[1].Sep)
	}
}

func TestSplitUnbreakableKeptWhole(t *testing.T) {
	s := newSplitter(t, split.DefaultOptions())
	token := strings.Repeat("y", 2500)
	text := "short\n\n" + token

	pieces := s.Split(text)

	if len(pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(pieces))
	}
	if pieces[1].Text != token {
		t.Error("expected unbreakable segment to be kept intact")
	}
}

func TestSplitZeroFallbackUsesDefaults(t *testing.T) {
	text := strings.Repeat("x", 15) + "\n" + strings.Repeat("y", 15) + "\n" + strings.Repeat("z", 15)

	tests := []struct {
		name     string
		fallback []string
		want     int
	}{
		{"nil fallback", nil, 3},
		{"empty fallback disables", []string{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSplitter(t, split.Options{MaxSize: 20, Fallback: tt.fallback})

			pieces := s.Split(text)

			if len(pieces) != tt.want {
				t.Fatalf("expected %d pieces, got %d: %q", tt.want, len(pieces), split.Texts(pieces))
			}
			if split.Join(pieces) != text {
				t.Errorf("Join = %q, want %q", split.Join(pieces), text)
			}
		})
	}
}

func TestSplitLeadingWhitespaceDropped(t *testing.T) {
	s := newSplitter(t, split.Options{MaxSize: 3})

	pieces := s.Split("  \n\nabc")

	if got := split.Texts(pieces); len(got) != 1 || got[0] != "abc" {
		t.Fatalf("unexpected pieces %q", got)
	}
	if got := split.Join(pieces); got != "abc" {
		t.Errorf("Join = %q, want %q", got, "abc")
	}
}

func TestSplitHardCuts(t *testing.T) {
	opts := split.DefaultOptions()
	opts.Fallback = []string{"\n", " ", ""}
	s := newSplitter(t, opts)
	token := strings.Repeat("é", 2500)

	pieces := s.Split(token)

	if len(pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(pieces))
	}
	if split.RuneLength(pieces[0].Text) != 2000 || split.RuneLength(pieces[1].Text) != 500 {
		t.Errorf("unexpected rune lengths %d, %d", split.RuneLength(pieces[0].Text), split.RuneLength(pieces[1].Text))
	}
	if split.Join(pieces) != token {
		t.Error("Join did not reproduce the text")
	}
}

func TestSplitOverlap(t *testing.T) {
	s := newSplitter(t, split.Options{MaxSize: 10, Overlap: 4})
	text := "aaaa\n\nbbbb\n\ncccc\n\ndddd"

	got := split.Texts(s.Split(text))

	want := []string{"aaaa\n\nbbbb", "bbbb\n\ncccc", "cccc\n\ndddd"}
	if len(got) != len(want) {
		t.Fatalf("expected %d pieces, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("piece %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitBlankRunsFolded(t *testing.T) {
	s := newSplitter(t, split.Options{MaxSize: 6})
	text := "alpha\n\n\n\nbeta"

	pieces := s.Split(text)

	if len(pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d: %q", len(pieces), split.Texts(pieces))
	}
	if pieces[0].Text != "alpha" || pieces[1].Text != "beta" {
		t.Errorf("unexpected pieces %q", split.Texts(pieces))
	}
	if split.Join(pieces) != text {
		t.Errorf("Join = %q, want %q", split.Join(pieces), text)
	}
}

func TestSplitEmpty(t *testing.T) {
	s := newSplitter(t, split.DefaultOptions())
	if pieces := s.Split(""); pieces != nil {
		t.Errorf("expected nil pieces, got %v", pieces)
	}
	if pieces := s.Split("\n\n  \n"); len(pieces) != 0 {
		t.Errorf("expected no pieces for blank text, got %q", split.Texts(pieces))
	}
}

func TestSplitProperties(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("    // block ")
		b.WriteString(strings.Repeat("z", i*7))
		b.WriteString("\n    int v")
		b.WriteString(strings.Repeat("q", i%5))
		b.WriteString(" = compute();\r\n")
		if i%3 == 0 {
			b.WriteString("    \t\n")
		}
	}
	text := b.String()
	normalized := split.Normalize(text)

	for _, max := range []int{80, 200, 500, 2000} {
		s := newSplitter(t, split.Options{MaxSize: max})
		pieces := s.Split(text)

		if len(pieces) == 0 {
			t.Fatalf("max=%d: expected pieces", max)
		}
		if got := split.Join(pieces); got != strings.TrimLeft(normalized, "\n") {
			t.Errorf("max=%d: Join did not reproduce normalized text", max)
		}
		for i, p := range pieces {
			if p.Text == "" {
				t.Errorf("max=%d: piece %d is empty", max, i)
			}
			if split.RuneLength(p.Text) > max && strings.ContainsAny(p.Text, "\n ") {
				t.Errorf("max=%d: piece %d exceeds bound with a separator available", max, i)
			}
		}

		again := s.Split(text)
		if strings.Join(split.Texts(again), "|") != strings.Join(split.Texts(pieces), "|") {
			t.Errorf("max=%d: splitting is not deterministic", max)
		}
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := split.New(split.Options{MaxSize: 10, Overlap: 10}); err == nil {
		t.Error("expected error for overlap >= max size")
	}
	if _, err := split.New(split.Options{Overlap: -1}); err == nil {
		t.Error("expected error for negative overlap")
	}

	s, err := split.New(split.Options{})
	if err != nil {
		t.Fatalf("New with zero options failed: %v", err)
	}
	if s.MaxSize() != split.DefaultMaxSize {
		t.Errorf("expected default max size, got %d", s.MaxSize())
	}
}

func TestLengthByName(t *testing.T) {
	f, err := split.LengthByName("chars")
	if err != nil {
		t.Fatalf("LengthByName(chars) failed: %v", err)
	}
	if f("héllo") != 5 {
		t.Errorf("expected 5 runes, got %d", f("héllo"))
	}

	if _, err := split.LengthByName("words"); err == nil {
		t.Error("expected error for unknown length mode")
	}
}

func TestTokenLength(t *testing.T) {
	f, err := split.TokenLength()
	if err != nil {
		t.Skipf("tokenizer unavailable: %v", err)
	}
	if n := f("hello world"); n <= 0 || n > 5 {
		t.Errorf("unexpected token count %d", n)
	}
}
