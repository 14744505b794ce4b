package diagnostics

import (
	"regexp"
	"strings"
)

var pythonRules = []rule{
	checkPythonIndentation,
	checkPythonLines,
}

// colonRequired matches statements that open a block and must end in ':'.
var colonRequired = []*regexp.Regexp{
	regexp.MustCompile(`^def\s+\w+`),
	regexp.MustCompile(`^async\s+def\s+\w+`),
	regexp.MustCompile(`^class\s+\w+`),
	regexp.MustCompile(`^if\s+`),
	regexp.MustCompile(`^elif\s+`),
	regexp.MustCompile(`^else\s*$`),
	regexp.MustCompile(`^for\s+\w+`),
	regexp.MustCompile(`^while\s+`),
	regexp.MustCompile(`^try\s*$`),
	regexp.MustCompile(`^except\b`),
	regexp.MustCompile(`^finally\s*$`),
	regexp.MustCompile(`^with\s+`),
}

// pyLine is one physical line classified for the indentation rules.
type pyLine struct {
	text string
	// logical is false for blank lines, comments, string bodies and
	// continuation lines of a statement that spans several lines.
	logical bool
	// continues is true when the statement goes on past this line.
	continues bool
	code      string
}

// classifyPython walks the document once, tracking triple-quoted strings
// and open brackets, so that only lines that begin a statement take part
// in indentation and colon checks.
func classifyPython(lines []string) []pyLine {
	out := make([]pyLine, len(lines))
	depth := 0
	triple := ""
	continued := false
	for i, line := range lines {
		out[i].text = line
		trimmed := strings.TrimSpace(line)

		startsStatement := triple == "" && !continued && depth == 0
		if startsStatement && trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			out[i].logical = true
		}

		code := stripPythonComment(line)
		j := 0
		for j < len(code) {
			if triple != "" {
				end := strings.Index(code[j:], triple)
				if end < 0 {
					j = len(code)
					break
				}
				j += end + 3
				triple = ""
				continue
			}
			c := code[j]
			switch {
			case strings.HasPrefix(code[j:], `"""`) || strings.HasPrefix(code[j:], `'''`):
				triple = code[j : j+3]
				j += 3
				continue
			case c == '"' || c == '\'':
				end := closingQuote(code, j)
				if end < 0 {
					j = len(code)
					continue
				}
				j = end + 1
				continue
			case c == '(' || c == '[' || c == '{':
				depth++
			case c == ')' || c == ']' || c == '}':
				if depth > 0 {
					depth--
				}
			}
			j++
		}
		out[i].code = strings.TrimSpace(code)
		continued = strings.HasSuffix(out[i].code, `\`)
		out[i].continues = continued || depth > 0 || triple != ""
	}
	return out
}

// closingQuote returns the offset of the quote closing the one at start,
// or -1 when the string runs past the end of the line.
func closingQuote(s string, start int) int {
	q := s[start]
	for k := start + 1; k < len(s); k++ {
		switch s[k] {
		case '\\':
			k++
		case q:
			return k
		}
	}
	return -1
}

// stripPythonComment removes a trailing # comment outside of strings.
func stripPythonComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			return line[:i]
		}
	}
	return line
}

// checkPythonIndentation keeps a stack of indent widths. Deeper lines push;
// shallower lines must unwind to a width already on the stack.
func checkPythonIndentation(s *scan) {
	stack := []int{0}
	for i, pl := range classifyPython(s.lines) {
		if !pl.logical {
			continue
		}
		indent := indentWidth(pl.text)
		top := stack[len(stack)-1]
		switch {
		case indent > top:
			stack = append(stack, indent)
		case indent < top:
			for len(stack) > 0 && stack[len(stack)-1] > indent {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 || stack[len(stack)-1] != indent {
				s.errorAt(i+1, 1, KindUnexpectedIndent,
					"Unexpected indentation", "Fix indentation to match previous levels")
				stack = append(stack, indent)
			}
		}
	}
}

func checkPythonLines(s *scan) {
	for i, pl := range classifyPython(s.lines) {
		n := i + 1
		if pl.logical && !pl.continues && missingColon(pl.code) {
			s.errorAt(n, endColumn(pl.text), KindMissingColon,
				"Missing colon at end of statement", "Add colon : at the end of the statement")
		}

		lead := pl.text[:indentWidth(pl.text)]
		if strings.Contains(lead, "\t") && strings.Contains(lead, " ") {
			s.warnAt(n, 1, KindMixedIndentation,
				"Mixed tabs and spaces in indentation",
				"Use either tabs or spaces consistently for indentation")
		}

		if pl.logical && strings.HasPrefix(pl.code, "print ") {
			s.warnAt(n, indentWidth(pl.text)+1, KindPython2Print,
				"Python 2 print statement detected",
				"Use print() function for Python 3 compatibility")
		}
	}
}

func missingColon(code string) bool {
	if hasBlockColon(code) {
		return false
	}
	for _, re := range colonRequired {
		if re.MatchString(code) {
			return true
		}
	}
	return false
}

// hasBlockColon reports a ':' outside strings and brackets, which covers
// both "if x:" and one-line bodies such as "if x: return".
func hasBlockColon(code string) bool {
	depth := 0
	for i := 0; i < len(code); i++ {
		switch c := code[i]; c {
		case '"', '\'':
			end := closingQuote(code, i)
			if end < 0 {
				return false
			}
			i = end
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ':':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}
