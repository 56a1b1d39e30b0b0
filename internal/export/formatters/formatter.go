// Package formatters renders explanation documents into output formats.
package formatters

import "time"

// Formatter formats an explanation document into a specific output format.
type Formatter interface {
	// Format converts the document to the output format.
	Format(doc *Document) ([]byte, error)

	// Name returns the formatter name.
	Name() string

	// ContentType returns the MIME content type.
	ContentType() string

	// FileExtension returns the typical file extension.
	FileExtension() string
}

// DocumentVersion is the schema version written into every document.
const DocumentVersion = 1

// Document is the exported result of explaining one source file.
// Line numbers are 1-based and inclusive.
type Document struct {
	Version     int       `json:"version" yaml:"version" toml:"version"`
	RunID       string    `json:"run_id" yaml:"run_id" toml:"run_id"`
	Source      string    `json:"source" yaml:"source" toml:"source"`
	Language    string    `json:"language" yaml:"language" toml:"language"`
	Provider    string    `json:"provider,omitempty" yaml:"provider,omitempty" toml:"provider,omitempty"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at" toml:"generated_at"`
	Stats       Stats     `json:"stats" yaml:"stats" toml:"stats"`
	Pieces      []Piece   `json:"pieces" yaml:"pieces" toml:"pieces"`
}

// Stats summarizes the run that produced a document.
type Stats struct {
	Units              int  `json:"units" yaml:"units" toml:"units"`
	Pieces             int  `json:"pieces" yaml:"pieces" toml:"pieces"`
	ProvenanceMisses   int  `json:"provenance_misses" yaml:"provenance_misses" toml:"provenance_misses"`
	DecodeErrors       int  `json:"decode_errors" yaml:"decode_errors" toml:"decode_errors"`
	AnnotationFailures int  `json:"annotation_failures" yaml:"annotation_failures" toml:"annotation_failures"`
	SyntaxErrors       bool `json:"syntax_errors" yaml:"syntax_errors" toml:"syntax_errors"`
}

// Piece is one explained piece of one unit.
type Piece struct {
	Unit          int    `json:"unit" yaml:"unit" toml:"unit"`
	Index         int    `json:"piece" yaml:"piece" toml:"piece"`
	EnclosingName string `json:"enclosing_name" yaml:"enclosing_name" toml:"enclosing_name"`
	UnitName      string `json:"unit_name" yaml:"unit_name" toml:"unit_name"`
	UnitKind      string `json:"unit_kind" yaml:"unit_kind" toml:"unit_kind"`
	StartLine     int    `json:"start_line" yaml:"start_line" toml:"start_line"`
	EndLine       int    `json:"end_line" yaml:"end_line" toml:"end_line"`
	Exact         bool   `json:"exact" yaml:"exact" toml:"exact"`
	Text          string `json:"text" yaml:"text" toml:"text"`
	Explanation   string `json:"explanation,omitempty" yaml:"explanation,omitempty" toml:"explanation,omitempty"`
	Failed        bool   `json:"failed,omitempty" yaml:"failed,omitempty" toml:"failed,omitempty"`
}

// Title returns a display name for the piece's unit, qualified by its
// enclosing container when there is one.
func (p Piece) Title() string {
	return Title(p.EnclosingName, p.UnitName)
}

// Title qualifies a unit name with its enclosing container name.
func Title(enclosing, name string) string {
	if name == "" {
		name = "<anonymous>"
	}
	if enclosing == "" {
		return name
	}
	return enclosing + "." + name
}

const timeLayout = "2006-01-02T15:04:05Z"
