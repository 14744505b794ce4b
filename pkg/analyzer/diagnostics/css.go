package diagnostics

import (
	"fmt"
	"strings"
)

var cssRules = []rule{
	checkCSSDeclarations,
}

// mistypedProperties maps commonly mistyped property names to the intended one.
var mistypedProperties = map[string]string{
	"colour":     "color",
	"font-color": "color",
	"bgcolor":    "background-color",
}

// checkCSSDeclarations walks rule blocks and checks each declaration line.
// Only lines inside a block are declarations; selectors and at-rules are not.
func checkCSSDeclarations(s *scan) {
	depth := 0
	inComment := false
	for i, line := range s.lines {
		n := i + 1
		code, stillOpen := stripCSSComments(line, inComment)
		inComment = stillOpen
		trimmed := strings.TrimSpace(code)
		startDepth := depth
		depth += strings.Count(code, "{") - strings.Count(code, "}")
		if depth < 0 {
			depth = 0
		}
		if trimmed == "" || startDepth == 0 {
			continue
		}

		if prop, _, ok := strings.Cut(trimmed, ":"); ok && !strings.ContainsAny(prop, "{}") {
			prop = strings.TrimSpace(prop)
			if want, bad := mistypedProperties[strings.ToLower(prop)]; bad {
				s.warnAt(n, column(line, max(strings.Index(line, prop), 0)), KindInvalidProperty,
					fmt.Sprintf("Possible invalid property: %s", prop),
					fmt.Sprintf("Did you mean '%s'?", want))
			}
		}

		if strings.HasPrefix(trimmed, "@") || endsCSSDeclaration(trimmed) {
			continue
		}
		if strings.HasPrefix(s.nextNonBlank(i), "{") {
			continue
		}
		s.errorAt(n, endColumn(line), KindMissingSemicolon,
			"Missing semicolon", "Add ; at the end of the declaration")
	}
}

func endsCSSDeclaration(trimmed string) bool {
	for _, suffix := range []string{"{", "}", ";", ","} {
		if strings.HasSuffix(trimmed, suffix) {
			return true
		}
	}
	return false
}

// stripCSSComments removes /* */ comments from a line, continuing one that
// opened on an earlier line. It reports whether a comment is still open.
func stripCSSComments(line string, inComment bool) (string, bool) {
	var b strings.Builder
	for len(line) > 0 {
		if inComment {
			end := strings.Index(line, "*/")
			if end < 0 {
				return b.String(), true
			}
			line = line[end+2:]
			inComment = false
			continue
		}
		start := strings.Index(line, "/*")
		if start < 0 {
			b.WriteString(line)
			break
		}
		b.WriteString(line[:start])
		line = line[start+2:]
		inComment = true
	}
	return b.String(), inComment
}
