package extract_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/leefowlercu/code-explainer/internal/extract"
	"github.com/leefowlercu/code-explainer/internal/grammar"
)

func extractJava(t *testing.T, src string) []extract.Unit {
	t.Helper()
	g := grammar.NewTreeSitter(grammar.NewJavaStrategy())
	_, units, err := extract.ParseAndExtract(context.Background(), g, []byte(src), grammar.Kinds{})
	if err != nil {
		t.Fatalf("ParseAndExtract failed: %v", err)
	}
	return units
}

func TestExtractContainerWithTwoMethods(t *testing.T) {
	src := `public class Calculator {
    public int add(int a, int b) {
        return a + b;
    }

    public int sub(int a, int b) {
        return a - b;
    }
}
`
	units := extractJava(t, src)

	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	for i, want := range []string{"add", "sub"} {
		if units[i].Name != want {
			t.Errorf("unit %d name = %q, want %q", i, units[i].Name, want)
		}
		if units[i].EnclosingName != "Calculator" {
			t.Errorf("unit %d enclosing = %q, want Calculator", i, units[i].EnclosingName)
		}
		if units[i].Kind != "method_declaration" {
			t.Errorf("unit %d kind = %q", i, units[i].Kind)
		}
	}
	if units[0].StartLine != 1 || units[0].EndLine != 3 {
		t.Errorf("add lines = %d-%d, want 1-3", units[0].StartLine, units[0].EndLine)
	}
	if units[1].StartLine != 5 || units[1].EndLine != 7 {
		t.Errorf("sub lines = %d-%d, want 5-7", units[1].StartLine, units[1].EndLine)
	}
	if !strings.HasPrefix(units[0].Text, "public int add") || !strings.HasSuffix(units[0].Text, "}") {
		t.Errorf("unexpected unit text %q", units[0].Text)
	}
	if units[0].Text != src[units[0].StartByte:units[0].EndByte] {
		t.Error("unit text does not match its byte span")
	}
}

func TestExtractNestedContainers(t *testing.T) {
	src := `public class Outer {
    void a() {}

    static class Inner {
        void b() {}
    }

    void c() {}
}

class Sibling {
    void d() {}
}
`
	units := extractJava(t, src)

	want := []struct{ name, enclosing string }{
		{"a", "Outer"},
		{"b", "Inner"},
		{"c", "Outer"},
		{"d", "Sibling"},
	}
	if len(units) != len(want) {
		t.Fatalf("expected %d units, got %d", len(want), len(units))
	}
	for i, w := range want {
		if units[i].Name != w.name || units[i].EnclosingName != w.enclosing {
			t.Errorf("unit %d = %s.%s, want %s.%s", i, units[i].EnclosingName, units[i].Name, w.enclosing, w.name)
		}
	}
}

func TestExtractUnitInsideUnit(t *testing.T) {
	src := `class Host {
    void start() {
        Runnable r = new Runnable() {
            public void run() {}
        };
    }
}
`
	units := extractJava(t, src)

	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].Name != "start" || units[1].Name != "run" {
		t.Errorf("expected pre-order start, run; got %s, %s", units[0].Name, units[1].Name)
	}
	// anonymous class bodies are not containers
	if units[1].EnclosingName != "Host" {
		t.Errorf("expected run enclosed by Host, got %q", units[1].EnclosingName)
	}
}

func TestExtractConstructorAndInterface(t *testing.T) {
	src := `interface Shape {
    double area();
}

class Square implements Shape {
    private final double side;

    Square(double side) {
        this.side = side;
    }

    public double area() {
        return side * side;
    }
}
`
	units := extractJava(t, src)

	got := make([]string, 0, len(units))
	for _, u := range units {
		got = append(got, u.EnclosingName+"."+u.Name+":"+u.Kind)
	}
	want := []string{
		"Shape.area:method_declaration",
		"Square.Square:constructor_declaration",
		"Square.area:method_declaration",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("units = %v, want %v", got, want)
	}
}

func TestExtractOnlyDesignatedKinds(t *testing.T) {
	src := `class A {
    A() {}
    void m() {}
}
`
	g := grammar.NewTreeSitter(grammar.NewJavaStrategy())
	kinds := grammar.Kinds{
		Units:      []string{"method_declaration"},
		Containers: []string{"class_declaration"},
	}
	_, units, err := extract.ParseAndExtract(context.Background(), g, []byte(src), kinds)
	if err != nil {
		t.Fatalf("ParseAndExtract failed: %v", err)
	}
	if len(units) != 1 || units[0].Name != "m" {
		t.Fatalf("expected only method m, got %+v", units)
	}
}

func TestExtractNoContainer(t *testing.T) {
	src := `package main

func helper() int { return 1 }

type T struct{}

func (t *T) Method() {}
`
	g := grammar.NewTreeSitter(grammar.NewGoStrategy())
	_, units, err := extract.ParseAndExtract(context.Background(), g, []byte(src), grammar.Kinds{})
	if err != nil {
		t.Fatalf("ParseAndExtract failed: %v", err)
	}

	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].Name != "helper" || units[1].Name != "Method" {
		t.Errorf("unexpected names %q, %q", units[0].Name, units[1].Name)
	}
	for _, u := range units {
		if u.EnclosingName != "" {
			t.Errorf("expected no enclosing name for %s, got %q", u.Name, u.EnclosingName)
		}
	}
}

func TestExtractSyntheticTree(t *testing.T) {
	// container without identifier, anonymous unit, and a unit at top level
	src := []byte("0123456789abcdefghij")
	anon := &grammar.Node{Kind: "unit", StartByte: 2, EndByte: 4, StartLine: 1, EndLine: 1}
	named := &grammar.Node{
		Kind: "unit", StartByte: 5, EndByte: 9, StartLine: 2, EndLine: 3,
		Children: []*grammar.Node{{Kind: "identifier", StartByte: 5, EndByte: 6, StartLine: 2, EndLine: 2}},
	}
	container := &grammar.Node{Kind: "box", StartByte: 1, EndByte: 10, StartLine: 0, EndLine: 3,
		Children: []*grammar.Node{anon, named}}
	top := &grammar.Node{Kind: "unit", StartByte: 12, EndByte: 15, StartLine: 4, EndLine: 4}
	root := &grammar.Node{Kind: "root", StartByte: 0, EndByte: 20, StartLine: 0, EndLine: 5,
		Children: []*grammar.Node{container, top}}
	grammar.NewTree("synthetic", src, root)

	e := extract.New(grammar.Kinds{Units: []string{"unit"}, Containers: []string{"box"}})
	units := e.Extract(root)

	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(units))
	}
	if units[0].Name != "" || units[0].EnclosingName != "" || units[0].Text != "23" {
		t.Errorf("unexpected anonymous unit %+v", units[0])
	}
	if units[1].Name != "5" || units[1].Text != "5678" {
		t.Errorf("unexpected named unit %+v", units[1])
	}
	if units[2].EnclosingName != "" || units[2].Text != "cde" {
		t.Errorf("unexpected top-level unit %+v", units[2])
	}
	if units[1].Lines() != 2 {
		t.Errorf("expected 2 lines, got %d", units[1].Lines())
	}
}

func TestExtractIdempotentAndBounded(t *testing.T) {
	src := `class A {
    void one() {
        int x = 1;
    }
    class B {
        void two() {}
    }
}
`
	first := extractJava(t, src)
	second := extractJava(t, src)

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical units across runs")
	}

	lineCount := strings.Count(src, "\n") + 1
	for _, u := range first {
		if u.StartLine > u.EndLine {
			t.Errorf("unit %s has start %d > end %d", u.Name, u.StartLine, u.EndLine)
		}
		if u.StartLine < 0 || u.EndLine >= lineCount {
			t.Errorf("unit %s lines %d-%d outside buffer of %d lines", u.Name, u.StartLine, u.EndLine, lineCount)
		}
	}
}

func TestExtractEmptyAndNil(t *testing.T) {
	if units := extract.New(grammar.Kinds{}).Extract(nil); units != nil {
		t.Errorf("expected nil units for nil root, got %v", units)
	}
	if units := extractJava(t, ""); len(units) != 0 {
		t.Errorf("expected no units for empty source, got %d", len(units))
	}
}

type failingGrammar struct{}

func (failingGrammar) Language() string      { return "broken" }
func (failingGrammar) Kinds() grammar.Kinds { return grammar.Kinds{} }
func (failingGrammar) Parse(context.Context, []byte) (*grammar.Tree, error) {
	return nil, &grammar.ParseError{Language: "broken", Err: errors.New("boom")}
}

func TestParseAndExtractParseError(t *testing.T) {
	tree, units, err := extract.ParseAndExtract(context.Background(), failingGrammar{}, []byte("x"), grammar.Kinds{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, grammar.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
	if tree != nil || units != nil {
		t.Error("expected no partial results on parse failure")
	}
}
