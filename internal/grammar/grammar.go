// Package grammar turns source buffers into concrete syntax trees.
//
// A Grammar parses a buffer into a Tree of Nodes. Nodes carry only what
// unit extraction needs: a kind tag, byte and line spans, ordered children
// and lazily decoded text. The tree-sitter backed implementation lives in
// treesitter.go; any other parser can satisfy Grammar by building a Tree
// with NewTree.
package grammar

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"unicode/utf8"
)

var (
	// ErrParse matches every ParseError via errors.Is.
	ErrParse = errors.New("parse failed")

	// ErrSyntax is reported by strict grammars when the tree contains error nodes.
	ErrSyntax = errors.New("source contains syntax errors")

	errNilRoot = errors.New("parser produced nil root node")
)

// ParseError is returned when a grammar cannot produce a tree for a buffer.
// It is fatal to the whole extraction run.
type ParseError struct {
	Language string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s source; %v", e.Language, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrParse so callers need not know the concrete type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Grammar parses a source buffer into a syntax tree.
type Grammar interface {
	// Language returns the language identifier (e.g., "java").
	Language() string

	// Kinds returns the default unit, container and name kinds for the language.
	Kinds() Kinds

	// Parse builds a tree for src. Errors are always *ParseError.
	Parse(ctx context.Context, src []byte) (*Tree, error)
}

// Tree is a parsed buffer.
type Tree struct {
	// Root is the top-level node spanning the buffer.
	Root *Node

	// Source is the buffer the tree was parsed from.
	Source []byte

	// Language is the grammar language that produced the tree.
	Language string

	// HasErrors is true when the parser recovered from syntax errors.
	HasErrors bool

	decodeErrors atomic.Int64
}

// NewTree links root and all of its descendants to src and returns the tree.
func NewTree(language string, src []byte, root *Node) *Tree {
	t := &Tree{Root: root, Source: src, Language: language}
	if root != nil {
		root.attach(t)
	}
	return t
}

// DecodeErrors returns the number of Text calls that hit invalid UTF-8.
func (t *Tree) DecodeErrors() int {
	return int(t.decodeErrors.Load())
}

// Node is one syntax node. Lines are 0-based and inclusive; bytes are
// half-open [StartByte, EndByte).
type Node struct {
	Kind      string
	StartByte int
	EndByte   int
	StartLine int
	EndLine   int
	Children  []*Node

	tree *Tree
}

// Text decodes the node's byte span as UTF-8. A span that is out of range
// or not valid UTF-8 yields "" for this node only and is counted on the tree.
func (n *Node) Text() string {
	if n == nil || n.tree == nil {
		return ""
	}
	src := n.tree.Source
	if n.StartByte < 0 || n.EndByte > len(src) || n.StartByte > n.EndByte {
		n.tree.decodeErrors.Add(1)
		return ""
	}
	b := src[n.StartByte:n.EndByte]
	if !utf8.Valid(b) {
		n.tree.decodeErrors.Add(1)
		return ""
	}
	return string(b)
}

// Child returns the first immediate child whose kind is one of kinds.
func (n *Node) Child(kinds ...string) *Node {
	for _, c := range n.Children {
		for _, k := range kinds {
			if c.Kind == k {
				return c
			}
		}
	}
	return nil
}

func (n *Node) attach(t *Tree) {
	n.tree = t
	for _, c := range n.Children {
		c.attach(t)
	}
}
