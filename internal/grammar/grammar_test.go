package grammar_test

import (
	"context"
	"errors"
	"testing"

	"github.com/leefowlercu/code-explainer/internal/grammar"
)

const javaSource = `package demo;

public class Greeter {
    private String name;

    public String greet() {
        return "hi " + name;
    }
}
`

func find(n *grammar.Node, kind string) *grammar.Node {
	if n.Kind == kind {
		return n
	}
	for _, c := range n.Children {
		if found := find(c, kind); found != nil {
			return found
		}
	}
	return nil
}

func TestTreeSitterParse(t *testing.T) {
	g := grammar.NewTreeSitter(grammar.NewJavaStrategy())

	tree, err := g.Parse(context.Background(), []byte(javaSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if tree.Root == nil {
		t.Fatal("expected root node")
	}
	if tree.Root.Kind != "program" {
		t.Errorf("expected root kind 'program', got %q", tree.Root.Kind)
	}
	if tree.HasErrors {
		t.Error("expected no syntax errors")
	}

	class := find(tree.Root, "class_declaration")
	if class == nil {
		t.Fatal("expected class_declaration node")
	}
	if class.StartLine != 2 || class.EndLine != 8 {
		t.Errorf("class lines = %d-%d, want 2-8", class.StartLine, class.EndLine)
	}

	ident := class.Child("identifier")
	if ident == nil {
		t.Fatal("expected identifier child on class")
	}
	if ident.Text() != "Greeter" {
		t.Errorf("expected class name 'Greeter', got %q", ident.Text())
	}

	method := find(tree.Root, "method_declaration")
	if method == nil {
		t.Fatal("expected method_declaration node")
	}
	if method.StartLine != 5 || method.EndLine != 7 {
		t.Errorf("method lines = %d-%d, want 5-7", method.StartLine, method.EndLine)
	}
	if got := method.Text(); got[:6] != "public" || got[len(got)-1] != '}' {
		t.Errorf("unexpected method text %q", got)
	}
}

func TestTreeSitterChildrenOrdered(t *testing.T) {
	g := grammar.NewTreeSitter(grammar.NewJavaStrategy())
	tree, err := g.Parse(context.Background(), []byte(javaSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var check func(n *grammar.Node)
	check = func(n *grammar.Node) {
		prev := n.StartByte
		for _, c := range n.Children {
			if c.StartByte < prev {
				t.Errorf("child %s starts at %d before previous end %d", c.Kind, c.StartByte, prev)
			}
			if c.StartByte < n.StartByte || c.EndByte > n.EndByte {
				t.Errorf("child %s span [%d,%d) outside parent %s [%d,%d)",
					c.Kind, c.StartByte, c.EndByte, n.Kind, n.StartByte, n.EndByte)
			}
			prev = c.EndByte
			check(c)
		}
	}
	check(tree.Root)
}

func TestTreeSitterStrict(t *testing.T) {
	broken := []byte("public class { void x( { }")

	t.Run("Lenient", func(t *testing.T) {
		g := grammar.NewTreeSitter(grammar.NewJavaStrategy())
		tree, err := g.Parse(context.Background(), broken)
		if err != nil {
			t.Fatalf("expected lenient parse to succeed, got %v", err)
		}
		if !tree.HasErrors {
			t.Error("expected HasErrors to be true")
		}
	})

	t.Run("Strict", func(t *testing.T) {
		g := grammar.NewTreeSitter(grammar.NewJavaStrategy(), grammar.WithStrict(true))
		_, err := g.Parse(context.Background(), broken)
		if err == nil {
			t.Fatal("expected strict parse to fail")
		}
		if !errors.Is(err, grammar.ErrParse) {
			t.Errorf("expected ErrParse, got %v", err)
		}
		if !errors.Is(err, grammar.ErrSyntax) {
			t.Errorf("expected ErrSyntax, got %v", err)
		}
		var pe *grammar.ParseError
		if !errors.As(err, &pe) || pe.Language != "java" {
			t.Errorf("expected *ParseError for java, got %T", err)
		}
	})
}

func TestNodeTextDecodeError(t *testing.T) {
	src := []byte{'o', 'k', ' ', 0xff, 0xfe}
	good := &grammar.Node{Kind: "identifier", StartByte: 0, EndByte: 2}
	bad := &grammar.Node{Kind: "identifier", StartByte: 3, EndByte: 5}
	outOfRange := &grammar.Node{Kind: "identifier", StartByte: 3, EndByte: 50}
	root := &grammar.Node{Kind: "program", StartByte: 0, EndByte: 5, Children: []*grammar.Node{good, bad, outOfRange}}

	tree := grammar.NewTree("test", src, root)

	if good.Text() != "ok" {
		t.Errorf("expected 'ok', got %q", good.Text())
	}
	if bad.Text() != "" {
		t.Errorf("expected empty text for invalid UTF-8, got %q", bad.Text())
	}
	if outOfRange.Text() != "" {
		t.Errorf("expected empty text for out-of-range span, got %q", outOfRange.Text())
	}
	if tree.DecodeErrors() != 2 {
		t.Errorf("expected 2 decode errors, got %d", tree.DecodeErrors())
	}
}

func TestKindsClassify(t *testing.T) {
	k := grammar.NewJavaStrategy().Kinds()

	tests := []struct {
		kind string
		want grammar.Class
	}{
		{"method_declaration", grammar.ClassUnit},
		{"constructor_declaration", grammar.ClassUnit},
		{"class_declaration", grammar.ClassContainer},
		{"enum_declaration", grammar.ClassContainer},
		{"identifier", grammar.ClassName},
		{"block", grammar.ClassOther},
	}

	for _, tt := range tests {
		if got := k.Classify(tt.kind); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestKindsMerge(t *testing.T) {
	defaults := grammar.NewJavaStrategy().Kinds()

	merged := grammar.Kinds{Units: []string{"method_declaration"}}.Merge(defaults)
	if len(merged.Units) != 1 {
		t.Errorf("expected explicit units to be kept, got %v", merged.Units)
	}
	if len(merged.Containers) != len(defaults.Containers) {
		t.Errorf("expected default containers, got %v", merged.Containers)
	}

	empty := grammar.Kinds{}.Merge(grammar.Kinds{})
	if len(empty.Names) != 1 || empty.Names[0] != "identifier" {
		t.Errorf("expected identifier name fallback, got %v", empty.Names)
	}
}

func TestRegistry(t *testing.T) {
	r := grammar.DefaultRegistry()

	tests := []struct {
		language string
		path     string
		want     string
		wantErr  bool
	}{
		{"java", "", "java", false},
		{"JAVA", "", "java", false},
		{"", "src/Main.java", "java", false},
		{"", "main.go", "go", false},
		{"py", "", "python", false},
		{"", "app.mjs", "javascript", false},
		{"cobol", "", "", true},
		{"", "README", "", true},
		{"", "notes.txt", "", true},
	}

	for _, tt := range tests {
		s, err := r.Resolve(tt.language, tt.path)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Resolve(%q, %q) expected error", tt.language, tt.path)
			}
			continue
		}
		if err != nil {
			t.Errorf("Resolve(%q, %q) failed: %v", tt.language, tt.path, err)
			continue
		}
		if s.Language() != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.language, tt.path, s.Language(), tt.want)
		}
	}

	langs := r.Languages()
	if len(langs) != 4 || langs[0] != "go" {
		t.Errorf("unexpected languages %v", langs)
	}
	if !r.Supports("A.java") || r.Supports("A.rb") {
		t.Error("unexpected Supports result")
	}
}
