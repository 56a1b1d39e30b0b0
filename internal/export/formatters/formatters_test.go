package formatters

import (
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testDocument() *Document {
	return &Document{
		Version:     DocumentVersion,
		RunID:       "3f1c2f8e-0000-4000-8000-000000000001",
		Source:      "Calculator.java",
		Language:    "java",
		Provider:    "anthropic",
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Stats: Stats{
			Units:              2,
			Pieces:             3,
			AnnotationFailures: 1,
		},
		Pieces: []Piece{
			{
				Unit: 0, Index: 0,
				EnclosingName: "Calculator", UnitName: "add", UnitKind: "method_declaration",
				StartLine: 2, EndLine: 4, Exact: true,
				Text:        "int add(int a, int b) {\n    return a + b;\n}",
				Explanation: "Adds two integers.",
			},
			{
				Unit: 1, Index: 0,
				EnclosingName: "Calculator", UnitName: "sub", UnitKind: "method_declaration",
				StartLine: 6, EndLine: 7, Exact: true,
				Text:        "int sub(int a, int b) {\n    return a - b;",
				Explanation: "[explanation failed: boom]",
				Failed:      true,
			},
			{
				Unit: 1, Index: 1,
				EnclosingName: "Calculator", UnitName: "sub", UnitKind: "method_declaration",
				StartLine: 8, EndLine: 8, Exact: false,
				Text: "}",
			},
		},
	}
}

func TestFormatterMetadata(t *testing.T) {
	tests := []struct {
		f           Formatter
		name        string
		contentType string
		ext         string
	}{
		{NewJSONFormatter(), "json", "application/json", ".json"},
		{NewCompactJSONFormatter(), "json", "application/json", ".json"},
		{NewYAMLFormatter(), "yaml", "application/yaml", ".yaml"},
		{NewTOMLFormatter(), "toml", "application/toml", ".toml"},
		{NewXMLFormatter(), "xml", "application/xml", ".xml"},
		{NewMarkdownFormatter(), "markdown", "text/markdown", ".md"},
		{NewTextFormatter(), "text", "text/plain", ".txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.f.Name())
			assert.Equal(t, tt.contentType, tt.f.ContentType())
			assert.Equal(t, tt.ext, tt.f.FileExtension())
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	doc := testDocument()

	data, err := NewJSONFormatter().Format(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"run_id\"")

	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, doc.Pieces, decoded.Pieces)
	assert.True(t, doc.GeneratedAt.Equal(decoded.GeneratedAt))

	compact, err := NewCompactJSONFormatter().Format(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(compact), "\n")

	// omitempty keeps unexplained pieces terse.
	var raw map[string]any
	require.NoError(t, json.Unmarshal(compact, &raw))
	last := raw["pieces"].([]any)[2].(map[string]any)
	assert.NotContains(t, last, "explanation")
	assert.NotContains(t, last, "failed")
}

func TestYAMLFormatter(t *testing.T) {
	doc := testDocument()

	data, err := NewYAMLFormatter().Format(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "source: Calculator.java")

	var decoded Document
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, doc.Pieces, decoded.Pieces)
	assert.Equal(t, doc.Stats, decoded.Stats)
}

func TestTOMLFormatter(t *testing.T) {
	doc := testDocument()

	data, err := NewTOMLFormatter().Format(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[[pieces]]")
	assert.Contains(t, string(data), "[stats]")

	var decoded Document
	require.NoError(t, toml.Unmarshal(data, &decoded))
	assert.Equal(t, doc.Pieces, decoded.Pieces)
	assert.Equal(t, doc.RunID, decoded.RunID)
}

func TestXMLFormatter(t *testing.T) {
	data, err := NewXMLFormatter().Format(testDocument())
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, xml.Header))
	assert.Contains(t, out, `run-id="3f1c2f8e-0000-4000-8000-000000000001"`)
	assert.Contains(t, out, `start-line="6"`)
	assert.Contains(t, out, `failed="true"`)

	var decoded xmlDocument
	require.NoError(t, xml.Unmarshal(data, &decoded))
	require.Len(t, decoded.Pieces, 3)
	assert.Equal(t, "sub", decoded.Pieces[2].UnitName)
}

func TestMarkdownFormatter(t *testing.T) {
	data, err := NewMarkdownFormatter().Format(testDocument())
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "# Calculator.java\n"))
	assert.Contains(t, out, "- Provider: anthropic")
	assert.Contains(t, out, "- Failed explanations: 1")
	assert.Equal(t, 1, strings.Count(out, "## Calculator.add\n"))
	assert.Equal(t, 1, strings.Count(out, "## Calculator.sub\n"))
	assert.Contains(t, out, "### Lines 2-4\n")
	assert.Contains(t, out, "### Lines 8-8 (approximate)")
	assert.Contains(t, out, "```java\nint add(int a, int b) {\n    return a + b;\n}\n```")
	assert.Contains(t, out, "Adds two integers.")
	assert.Contains(t, out, "> [explanation failed: boom]")
}

func TestMarkdownFenceLongerThanContent(t *testing.T) {
	doc := testDocument()
	doc.Pieces = doc.Pieces[:1]
	doc.Pieces[0].Text = "s := ```raw```"

	data, err := NewMarkdownFormatter().Format(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "````java\n")
}

func TestTextFormatter(t *testing.T) {
	data, err := NewTextFormatter().Format(testDocument())
	require.NoError(t, err)
	out := string(data)

	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "Calculator.java")
	assert.Contains(t, out, "2 units")
	assert.Contains(t, out, "Calculator.add")
	assert.Contains(t, out, "lines 2-4")
	assert.Contains(t, out, "lines 8-8 (approximate)")
	assert.Contains(t, out, "return a + b;")
	assert.Contains(t, out, "Adds two integers.")
	assert.Contains(t, out, "[explanation failed: boom]")
}

func TestPieceTitle(t *testing.T) {
	tests := []struct {
		piece Piece
		want  string
	}{
		{Piece{EnclosingName: "Calculator", UnitName: "add"}, "Calculator.add"},
		{Piece{UnitName: "main"}, "main"},
		{Piece{EnclosingName: "Calculator"}, "Calculator.<anonymous>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.piece.Title())
	}
}
