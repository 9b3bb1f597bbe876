package render

import (
	"maps"
	"strings"

	"github.com/Sumatoshi-tech/wrapgen/pkg/cheader"
)

// Filter names as written in templates.
const (
	FilterWithoutVariadic = "without_variadic"
	FilterConversionName  = "conversion_name"
)

const (
	conversionPrefix = "string_to_"
	pointerToken     = "__ptr__"
)

// FilterMap maps a template function name to its implementation. It has the
// same shape as text/template's FuncMap.
type FilterMap map[string]any

// Filters returns a fresh map holding the built-in filters.
func Filters() FilterMap {
	return FilterMap{
		FilterWithoutVariadic: WithoutVariadic,
		FilterConversionName:  ConversionName,
	}
}

// With returns a copy of the map with one more filter. The receiver is not
// modified.
func (fm FilterMap) With(name string, fn any) FilterMap {
	out := make(FilterMap, len(fm)+1)
	maps.Copy(out, fm)
	out[name] = fn

	return out
}

// WithoutVariadic returns the functions whose arguments contain no ellipsis
// marker, in their original order.
func WithoutVariadic(funcs []cheader.Function) []cheader.Function {
	out := make([]cheader.Function, 0, len(funcs))

	for _, fn := range funcs {
		if !fn.Variadic() {
			out = append(out, fn)
		}
	}

	return out
}

// ConversionName derives the name of the helper that parses a string into
// the given canonical type: "char *" becomes "string_to_char___ptr__".
func ConversionName(typ string) string {
	name := strings.ReplaceAll(typ, " ", "_")
	name = strings.ReplaceAll(name, "*", pointerToken)

	return conversionPrefix + name
}
