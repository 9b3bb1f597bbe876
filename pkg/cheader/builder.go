package cheader

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// declKind is the closed set of syntax shapes the builder distinguishes.
type declKind int

const (
	kindUnknown declKind = iota
	kindIdentifierType
	kindEnum
	kindStruct
	kindPointer
	kindEllipsis
	kindFunction
	kindName
	kindParenthesized
)

func classify(n sitter.Node) declKind {
	if n.IsNull() {
		return kindUnknown
	}

	switch n.Type() {
	case "primitive_type", "type_identifier", "sized_type_specifier":
		return kindIdentifierType
	case "enum_specifier":
		return kindEnum
	case "struct_specifier":
		return kindStruct
	case "pointer_declarator", "abstract_pointer_declarator":
		return kindPointer
	case "variadic_parameter", "...":
		return kindEllipsis
	case "function_declarator":
		return kindFunction
	case "identifier":
		return kindName
	case "parenthesized_declarator", "attributed_declarator":
		return kindParenthesized
	default:
		return kindUnknown
	}
}

// containers hold file-scope items without opening a new scope. The last
// two only appear for an unguarded extern "C" { ... } block.
var containers = map[string]bool{ //nolint:gochecknoglobals // read-only lookup table
	"translation_unit":      true,
	"preproc_ifdef":         true,
	"preproc_if":            true,
	"preproc_else":          true,
	"preproc_elif":          true,
	"preproc_elifdef":       true,
	"linkage_specification": true,
	"declaration_list":      true,
}

// Build walks every file-scope declaration of the tree and returns the
// functions it declares, in source order.
func Build(tree *Tree) []Function {
	if tree == nil || tree.root.IsNull() {
		return nil
	}

	b := builder{source: tree.source}
	b.visit(tree.root)

	return b.functions
}

type builder struct {
	source    []byte
	functions []Function
}

func (b *builder) visit(n sitter.Node) {
	switch n.Type() {
	case "declaration":
		b.declaration(n)

		return
	case "function_definition":
		b.definition(n)

		return
	}

	if !containers[n.Type()] {
		return
	}

	for i := range n.NamedChildCount() {
		b.visit(n.NamedChild(i))
	}
}

// declaration handles "T a(...), *b(...), c;" where each declarator is
// considered separately.
func (b *builder) declaration(n sitter.Node) {
	spec := n.ChildByFieldName("type")

	// Type specifiers never classify as declarators, so the type node
	// falls through the switch.
	for i := range n.NamedChildCount() {
		child := n.NamedChild(i)

		switch classify(child) {
		case kindFunction, kindPointer, kindParenthesized:
			if fn, ok := b.function(spec, child); ok {
				b.functions = append(b.functions, fn)
			}
		}
	}
}

func (b *builder) definition(n sitter.Node) {
	if fn, ok := b.function(n.ChildByFieldName("type"), n.ChildByFieldName("declarator")); ok {
		b.functions = append(b.functions, fn)
	}
}

// function turns a declarator into a Function when it declares one.
// Pointer layers above the function declarator belong to the return type.
// A function returning a function pointer nests its own declarator inside
// the outer one; it keeps the innermost name and parameters and gets the
// "" return type, since the closed type set cannot spell it.
func (b *builder) function(spec, decl sitter.Node) (Function, bool) {
	node, stars := unwrap(decl)
	if classify(node) != kindFunction {
		return Function{}, false
	}

	nested := false

	for {
		inner, innerStars := unwrap(node.ChildByFieldName("declarator"))

		switch classify(inner) {
		case kindName:
			// "int (*fp)(int)" declares a pointer variable, not a function.
			if innerStars != "" {
				return Function{}, false
			}

			ret := withStars(b.baseType(spec), stars)
			if nested {
				ret = ""
			}

			return Function{
				Name:       inner.Content(b.source),
				Args:       b.params(node.ChildByFieldName("parameters")),
				ReturnType: ret,
			}, true
		case kindFunction:
			node = inner
			nested = true
		default:
			return Function{}, false
		}
	}
}

func (b *builder) params(list sitter.Node) []Param {
	args := []Param{}
	if list.IsNull() {
		return args
	}

	// All children, not just named ones: older grammars emit "..." as an
	// anonymous token.
	for i := range list.ChildCount() {
		child := list.Child(i)

		switch {
		case classify(child) == kindEllipsis:
			args = append(args, Ellipsis)
		case child.Type() == "parameter_declaration":
			if arg, ok := b.param(child); ok {
				args = append(args, arg)
			}
		}
	}

	return args
}

// param returns false for parameters that have no name (including the
// "(void)" sentinel) or whose type is outside the supported variants.
func (b *builder) param(n sitter.Node) (Param, bool) {
	decl, stars := unwrap(n.ChildByFieldName("declarator"))
	if classify(decl) != kindName {
		return Param{}, false
	}

	base := b.baseType(n.ChildByFieldName("type"))
	if base == "" {
		return Param{}, false
	}

	return Param{Type: withStars(base, stars), Name: decl.Content(b.source)}, true
}

// baseType renders a type specifier. Unsupported specifiers yield "".
func (b *builder) baseType(spec sitter.Node) string {
	switch classify(spec) {
	case kindIdentifierType:
		return strings.Join(strings.Fields(spec.Content(b.source)), " ")
	case kindEnum:
		return tagged("enum", spec, b.source)
	case kindStruct:
		return tagged("struct", spec, b.source)
	default:
		return ""
	}
}

func tagged(keyword string, spec sitter.Node, source []byte) string {
	name := spec.ChildByFieldName("name")
	if name.IsNull() {
		return ""
	}

	return keyword + " " + name.Content(source)
}

// unwrap strips pointer and parenthesis layers, returning the innermost
// declarator and one '*' per pointer layer.
func unwrap(n sitter.Node) (sitter.Node, string) {
	var stars strings.Builder

	for {
		switch classify(n) {
		case kindPointer:
			stars.WriteByte('*')
			n = n.ChildByFieldName("declarator")
		case kindParenthesized:
			n = firstDeclarator(n)
		default:
			return n, stars.String()
		}
	}
}

// firstDeclarator returns the first named child that is not an attribute.
func firstDeclarator(n sitter.Node) sitter.Node {
	for i := range n.NamedChildCount() {
		child := n.NamedChild(i)
		if child.Type() != "attribute_declaration" && child.Type() != "ms_call_modifier" {
			return child
		}
	}

	return sitter.Node{}
}

func withStars(base, stars string) string {
	if base == "" || stars == "" {
		return base
	}

	return base + " " + stars
}
