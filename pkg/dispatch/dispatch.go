// Package dispatch reports which header functions have no entry in a
// wrapper dispatch table.
package dispatch

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Sumatoshi-tech/wrapgen/pkg/cheader"
)

var (
	// tableEntry matches `{ "SomeName", wrap_SomeName },`.
	tableEntry = regexp.MustCompile(`\{\s*"([A-Z]\w+)"\s*,\s*wrap_\w+`)

	// camelPrefix matches the leading one or two capitalised words.
	camelPrefix = regexp.MustCompile(`^[A-Z][a-z]+(?:[A-Z][a-z]+)?`)
)

// Report is the result of comparing a header against a dispatch table.
// All name lists are bare (prefix stripped), sorted and free of duplicates.
type Report struct {
	Header  []string `json:"header"`
	Wrapped []string `json:"wrapped"`
	Missing []string `json:"missing"`
	Extra   []string `json:"extra"`
}

// Group is a run of names sharing a camel-case prefix.
type Group struct {
	Prefix string   `json:"prefix"`
	Names  []string `json:"names"`
}

// HeaderNames returns the bare names of functions whose name is prefix
// followed by an upper-case letter: with prefix "newt", "newtLabel"
// yields "Label" and "newtlabel" is ignored.
func HeaderNames(funcs []cheader.Function, prefix string) []string {
	names := make([]string, 0, len(funcs))

	for _, fn := range funcs {
		bare, ok := strings.CutPrefix(fn.Name, prefix)
		if !ok || bare == "" {
			continue
		}

		first, _ := utf8.DecodeRuneInString(bare)
		if !unicode.IsUpper(first) {
			continue
		}

		names = append(names, bare)
	}

	return sortUnique(names)
}

// TableNames returns the names registered in a dispatch table source text.
func TableNames(text string) []string {
	matches := tableEntry.FindAllStringSubmatch(text, -1)
	names := make([]string, 0, len(matches))

	for _, m := range matches {
		names = append(names, m[1])
	}

	return sortUnique(names)
}

// Compare builds the coverage report of header names against table names.
func Compare(header, table []string) Report {
	header = sortUnique(slices.Clone(header))
	table = sortUnique(slices.Clone(table))

	return Report{
		Header:  header,
		Wrapped: table,
		Missing: difference(header, table),
		Extra:   difference(table, header),
	}
}

// GroupByPrefix groups names by their leading one or two capitalised
// words: "FormAddComponent" falls under "FormAdd" and "Label" under "Label".
// Groups and their names are sorted.
func GroupByPrefix(names []string) []Group {
	byPrefix := make(map[string][]string)

	for _, name := range sortUnique(slices.Clone(names)) {
		prefix := camelPrefix.FindString(name)
		if prefix == "" {
			prefix = name
		}

		byPrefix[prefix] = append(byPrefix[prefix], name)
	}

	groups := make([]Group, 0, len(byPrefix))
	for prefix, members := range byPrefix {
		groups = append(groups, Group{Prefix: prefix, Names: members})
	}

	slices.SortFunc(groups, func(a, b Group) int {
		return strings.Compare(a.Prefix, b.Prefix)
	})

	return groups
}

// difference returns the members of a absent from b. Both must be sorted.
func difference(a, b []string) []string {
	out := make([]string, 0, len(a))

	for _, name := range a {
		if _, found := slices.BinarySearch(b, name); !found {
			out = append(out, name)
		}
	}

	return out
}

func sortUnique(names []string) []string {
	slices.Sort(names)

	return slices.Compact(names)
}
