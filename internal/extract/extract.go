// Package extract collects units (method and function declarations) from a
// syntax tree together with the name of their nearest enclosing container.
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leefowlercu/code-explainer/internal/grammar"
)

// Unit is one extracted declaration. EnclosingName and Name are empty when
// undefined. Lines are 0-based and inclusive.
type Unit struct {
	EnclosingName string `json:"enclosing_name,omitempty" yaml:"enclosing_name,omitempty"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Kind          string `json:"kind" yaml:"kind"`
	Text          string `json:"text" yaml:"text"`
	StartLine     int    `json:"start_line" yaml:"start_line"`
	EndLine       int    `json:"end_line" yaml:"end_line"`
	StartByte     int    `json:"start_byte" yaml:"start_byte"`
	EndByte       int    `json:"end_byte" yaml:"end_byte"`
}

// Lines returns the number of source lines the unit spans.
func (u Unit) Lines() int {
	return u.EndLine - u.StartLine + 1
}

// Extractor walks trees and collects units.
type Extractor struct {
	kinds  grammar.Kinds
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for per-unit progress messages.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an extractor for the given kinds. Empty Names default to "identifier".
func New(kinds grammar.Kinds, opts ...Option) *Extractor {
	e := &Extractor{
		kinds:  kinds.Merge(grammar.Kinds{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Kinds returns the kinds the extractor matches.
func (e *Extractor) Kinds() grammar.Kinds {
	return e.kinds
}

// Extract returns every unit under root in pre-order.
func (e *Extractor) Extract(root *grammar.Node) []Unit {
	if root == nil {
		return nil
	}
	var units []Unit
	e.collect(root, "", &units)
	return units
}

// collect visits n with the enclosing name seen on the path from the root.
// enclosing is passed by value so sibling containers never see each other.
func (e *Extractor) collect(n *grammar.Node, enclosing string, units *[]Unit) {
	switch e.kinds.Classify(n.Kind) {
	case grammar.ClassContainer:
		enclosing = e.nameOf(n)
	case grammar.ClassUnit:
		u := Unit{
			EnclosingName: enclosing,
			Name:          e.nameOf(n),
			Kind:          n.Kind,
			Text:          n.Text(),
			StartLine:     n.StartLine,
			EndLine:       n.EndLine,
			StartByte:     n.StartByte,
			EndByte:       n.EndByte,
		}
		*units = append(*units, u)
		e.logger.Debug("collected unit",
			"kind", u.Kind,
			"name", u.Name,
			"enclosing", u.EnclosingName,
			"start_line", u.StartLine+1,
			"end_line", u.EndLine+1)
	}

	for _, c := range n.Children {
		e.collect(c, enclosing, units)
	}
}

// ExtractTree extracts units from tree's root. A nil tree yields no units.
func (e *Extractor) ExtractTree(tree *grammar.Tree) []Unit {
	if tree == nil {
		return nil
	}
	return e.Extract(tree.Root)
}

// nameOf returns the text of the first immediate child with a name kind.
func (e *Extractor) nameOf(n *grammar.Node) string {
	if ident := n.Child(e.kinds.Names...); ident != nil {
		return ident.Text()
	}
	return ""
}

// ParseAndExtract parses src with g and extracts units using kinds merged
// over the grammar defaults. A parse failure returns no units.
func ParseAndExtract(ctx context.Context, g grammar.Grammar, src []byte, kinds grammar.Kinds, opts ...Option) (*grammar.Tree, []Unit, error) {
	tree, err := g.Parse(ctx, src)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract units; %w", err)
	}

	units := New(kinds.Merge(g.Kinds()), opts...).Extract(tree.Root)
	return tree, units, nil
}
