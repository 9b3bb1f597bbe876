// Package cheader extracts normalized C function signatures from header text.
//
// Headers are parsed with the tree-sitter C grammar and every file-scope
// function declaration is reduced to a [Function] whose parameter and return
// types are rendered as canonical type strings ("char **", "enum E",
// "struct S"). The resulting collection is what templates iterate over.
package cheader

// Param is a single function parameter: its canonical type string and its
// declared name.
type Param struct {
	Type string `json:"type" yaml:"type"`
	Name string `json:"name" yaml:"name"`
}

// Ellipsis is the marker appended for a variadic tail ("...").
var Ellipsis = Param{Type: "ellipsis", Name: "..."} //nolint:gochecknoglobals // immutable marker value

// IsEllipsis reports whether the parameter is the variadic marker.
func (p Param) IsEllipsis() bool {
	return p == Ellipsis
}

// Function is one declared C function.
type Function struct {
	Name       string  `json:"name"        yaml:"name"`
	Args       []Param `json:"args"        yaml:"args"`
	ReturnType string  `json:"return_type" yaml:"return_type"`
}

// Variadic reports whether any argument is the ellipsis marker.
func (f Function) Variadic() bool {
	for _, arg := range f.Args {
		if arg.IsEllipsis() {
			return true
		}
	}

	return false
}
