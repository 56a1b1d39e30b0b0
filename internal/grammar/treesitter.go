package grammar

import (
	"context"
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"
)

// TreeSitter is a Grammar backed by a tree-sitter language strategy.
type TreeSitter struct {
	strategy Strategy
	strict   bool
	logger   *slog.Logger
}

// TreeSitterOption configures a TreeSitter grammar.
type TreeSitterOption func(*TreeSitter)

// WithStrict makes recovered syntax errors fatal (ErrSyntax).
func WithStrict(strict bool) TreeSitterOption {
	return func(g *TreeSitter) {
		g.strict = strict
	}
}

// WithLogger sets the logger for parse warnings.
func WithLogger(logger *slog.Logger) TreeSitterOption {
	return func(g *TreeSitter) {
		g.logger = logger
	}
}

// NewTreeSitter creates a grammar for the given language strategy.
func NewTreeSitter(strategy Strategy, opts ...TreeSitterOption) *TreeSitter {
	g := &TreeSitter{
		strategy: strategy,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Language returns the strategy's language identifier.
func (g *TreeSitter) Language() string {
	return g.strategy.Language()
}

// Kinds returns the strategy's default node kinds.
func (g *TreeSitter) Kinds() Kinds {
	return g.strategy.Kinds()
}

// Parse parses src with tree-sitter and copies the result into a Tree.
func (g *TreeSitter) Parse(ctx context.Context, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g.strategy.SitterLanguage())

	st, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, &ParseError{Language: g.Language(), Err: err}
	}
	defer st.Close()

	root := st.RootNode()
	if root == nil {
		return nil, &ParseError{Language: g.Language(), Err: errNilRoot}
	}

	hasErrors := root.HasError()
	if hasErrors {
		if g.strict {
			return nil, &ParseError{Language: g.Language(), Err: ErrSyntax}
		}
		g.logger.Warn("source contains syntax errors; continuing with recovered tree",
			"language", g.Language())
	}

	tree := NewTree(g.Language(), src, convert(root))
	tree.HasErrors = hasErrors
	return tree, nil
}

// convert copies a tree-sitter node and its descendants.
func convert(n *sitter.Node) *Node {
	node := &Node{
		Kind:      n.Type(),
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
		StartLine: int(n.StartPoint().Row),
		EndLine:   int(n.EndPoint().Row),
	}

	count := int(n.ChildCount())
	if count > 0 {
		node.Children = make([]*Node, 0, count)
		for i := 0; i < count; i++ {
			child := n.Child(i)
			if child == nil {
				continue
			}
			node.Children = append(node.Children, convert(child))
		}
	}

	return node
}
