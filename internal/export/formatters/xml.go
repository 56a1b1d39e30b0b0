package formatters

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// XMLFormatter formats documents as XML.
type XMLFormatter struct{}

// NewXMLFormatter creates a new XML formatter.
func NewXMLFormatter() *XMLFormatter {
	return &XMLFormatter{}
}

// Name returns the formatter name.
func (f *XMLFormatter) Name() string {
	return "xml"
}

// ContentType returns the MIME content type.
func (f *XMLFormatter) ContentType() string {
	return "application/xml"
}

// FileExtension returns the typical file extension.
func (f *XMLFormatter) FileExtension() string {
	return ".xml"
}

type xmlDocument struct {
	XMLName     xml.Name   `xml:"explanation"`
	Version     int        `xml:"version,attr"`
	RunID       string     `xml:"run-id,attr"`
	GeneratedAt string     `xml:"generated-at,attr"`
	Source      string     `xml:"source"`
	Language    string     `xml:"language"`
	Provider    string     `xml:"provider,omitempty"`
	Stats       xmlStats   `xml:"stats"`
	Pieces      []xmlPiece `xml:"pieces>piece"`
}

type xmlStats struct {
	Units              int  `xml:"units"`
	Pieces             int  `xml:"pieces"`
	ProvenanceMisses   int  `xml:"provenance-misses"`
	DecodeErrors       int  `xml:"decode-errors"`
	AnnotationFailures int  `xml:"annotation-failures"`
	SyntaxErrors       bool `xml:"syntax-errors"`
}

type xmlPiece struct {
	Unit          int    `xml:"unit,attr"`
	Index         int    `xml:"index,attr"`
	StartLine     int    `xml:"start-line,attr"`
	EndLine       int    `xml:"end-line,attr"`
	Exact         bool   `xml:"exact,attr"`
	Failed        bool   `xml:"failed,attr,omitempty"`
	EnclosingName string `xml:"enclosing-name,omitempty"`
	UnitName      string `xml:"unit-name,omitempty"`
	UnitKind      string `xml:"unit-kind"`
	Text          string `xml:"text"`
	Explanation   string `xml:"explanation,omitempty"`
}

// Format converts the document to XML.
func (f *XMLFormatter) Format(doc *Document) ([]byte, error) {
	xd := xmlDocument{
		Version:     doc.Version,
		RunID:       doc.RunID,
		GeneratedAt: doc.GeneratedAt.UTC().Format(timeLayout),
		Source:      doc.Source,
		Language:    doc.Language,
		Provider:    doc.Provider,
		Stats:       xmlStats(doc.Stats),
	}

	for _, p := range doc.Pieces {
		xd.Pieces = append(xd.Pieces, xmlPiece{
			Unit:          p.Unit,
			Index:         p.Index,
			StartLine:     p.StartLine,
			EndLine:       p.EndLine,
			Exact:         p.Exact,
			Failed:        p.Failed,
			EnclosingName: p.EnclosingName,
			UnitName:      p.UnitName,
			UnitKind:      p.UnitKind,
			Text:          p.Text,
			Explanation:   p.Explanation,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")

	if err := encoder.Encode(xd); err != nil {
		return nil, fmt.Errorf("failed to encode XML; %w", err)
	}

	return buf.Bytes(), nil
}
