package cheader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cgrammar "github.com/alexaandru/go-sitter-forest/c"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Sentinel errors for header parsing.
var (
	// ErrParse is matched by every [ParseError].
	ErrParse = errors.New("c parse error")

	errNoRootNode = errors.New("c parser: no root node")
)

// maxSnippetLen bounds the source excerpt quoted in a ParseError.
const maxSnippetLen = 40

// ParseError reports the first syntax error the C grammar found.
// Line and Column are 1-based.
type ParseError struct {
	Filename string
	Snippet  string
	Line     int
	Column   int
}

func (e *ParseError) Error() string {
	name := e.Filename
	if name == "" {
		name = "<input>"
	}

	if e.Snippet == "" {
		return fmt.Sprintf("%s:%d:%d: syntax error", name, e.Line, e.Column)
	}

	return fmt.Sprintf("%s:%d:%d: syntax error near %q", name, e.Line, e.Column, e.Snippet)
}

// Is makes errors.Is(err, ErrParse) hold for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Tree is a parsed header. It owns native tree-sitter memory and must be
// closed once the signatures have been built.
type Tree struct {
	tree   *sitter.Tree
	root   sitter.Node
	source []byte
}

// Close releases the underlying syntax tree.
func (t *Tree) Close() {
	if t == nil || t.tree == nil {
		return
	}

	t.tree.Close()
	t.tree = nil
}

// Source returns the header text the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.source
}

// Parse parses header text with the tree-sitter C grammar. The filename is
// used only in error messages. Branches guarded by "#ifdef __cplusplus" are
// skipped, as a C compiler would.
func Parse(ctx context.Context, filename string, source []byte) (*Tree, error) {
	tsParser := sitter.NewParser()
	tsParser.SetLanguage(sitter.NewLanguage(cgrammar.GetLanguage()))

	tree, err := tsParser.ParseString(ctx, nil, maskCPlusPlus(source))
	if err != nil {
		return nil, fmt.Errorf("c parser: failed to parse %s: %w", filename, err)
	}

	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()

		return nil, errNoRootNode
	}

	if root.HasError() {
		perr := locateError(root, source)
		perr.Filename = filename

		tree.Close()

		return nil, perr
	}

	return &Tree{tree: tree, root: root, source: source}, nil
}

// Extract parses the header and builds its signature collection.
func Extract(ctx context.Context, filename string, source []byte) ([]Function, error) {
	tree, err := Parse(ctx, filename, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	return Build(tree), nil
}

// locateError finds the first ERROR or MISSING node in document order.
func locateError(root sitter.Node, source []byte) *ParseError {
	var found sitter.Node

	var walk func(n sitter.Node) bool
	walk = func(n sitter.Node) bool {
		if n.IsNull() {
			return false
		}

		if n.Type() == "ERROR" || n.IsMissing() {
			found = n

			return true
		}

		for i := range n.ChildCount() {
			if walk(n.Child(i)) {
				return true
			}
		}

		return false
	}

	if !walk(root) {
		return &ParseError{Line: 1, Column: 1}
	}

	start := found.StartPoint()

	return &ParseError{
		Line:    int(start.Row) + 1,    //nolint:gosec // tree-sitter coordinates fit in int
		Column:  int(start.Column) + 1, //nolint:gosec // tree-sitter coordinates fit in int
		Snippet: snippet(found.Content(source)),
	}
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxSnippetLen {
		return text[:maxSnippetLen] + "..."
	}

	return text
}
