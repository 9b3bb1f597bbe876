package cheader

import (
	"bytes"
	"regexp"
)

var (
	// cplusplusOnly opens a conditional whose first branch only a C++
	// compiler sees: "#ifdef __cplusplus" or "#if defined(__cplusplus)".
	cplusplusOnly = regexp.MustCompile(`^\s*#\s*(?:ifdef\s+__cplusplus\b|if\s+defined\s*\(?\s*__cplusplus\b)`)
	directiveName = regexp.MustCompile(`^\s*#\s*([a-z]+)`)
)

// maskCPlusPlus blanks the lines of every "#ifdef __cplusplus" branch, so
// the usual `extern "C" {` guard split across two conditionals parses as
// C. Blanked bytes become spaces and newlines are kept, so node positions
// and error locations still match the caller's text. The source is
// returned unchanged when it holds no such branch.
func maskCPlusPlus(source []byte) []byte {
	if !bytes.Contains(source, []byte("__cplusplus")) {
		return source
	}

	out := bytes.Clone(source)

	depth := 0
	masking := false

	for start := 0; start < len(out); {
		end := bytes.IndexByte(out[start:], '\n')
		if end < 0 {
			end = len(out)
		} else {
			end += start
		}

		line := out[start:end]
		start = end + 1

		if depth == 0 {
			if cplusplusOnly.Match(line) {
				depth, masking = 1, true
			}

			continue
		}

		switch directive(line) {
		case "if", "ifdef", "ifndef":
			depth++
		case "endif":
			depth--
		case "else", "elif", "elifdef", "elifndef":
			if depth == 1 {
				masking = false

				continue
			}
		}

		if depth == 0 {
			masking = false

			continue
		}

		if masking {
			blank(line)
		}
	}

	return out
}

func directive(line []byte) string {
	m := directiveName.FindSubmatch(line)
	if m == nil {
		return ""
	}

	return string(m[1])
}

func blank(line []byte) {
	for i, c := range line {
		if c != '\r' {
			line[i] = ' '
		}
	}
}
