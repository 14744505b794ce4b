package diagnostics

import (
	"errors"
	"fmt"
	"regexp"
	"regexp/syntax"
	"strings"
)

var javascriptRules = []rule{
	checkUndefinedVariables,
	checkJavaScriptLines,
	checkTemplateLiterals,
	checkConsoleLog,
}

var (
	ifConditionRe  = regexp.MustCompile(`\bif\s*\(`)
	functionNameRe = regexp.MustCompile(`\bfunction\s+([A-Za-z_$][\w$]*)`)
	backrefRe      = regexp.MustCompile(`\\[1-9]`)
)

func checkJavaScriptLines(s *scan) {
	for i, line := range s.lines {
		if s.profile.IsCommentLine(line) {
			continue
		}
		masked := maskLine(line, s.profile.LineComments)
		n := i + 1

		if off, ok := assignmentInCondition(masked); ok {
			s.warnAt(n, column(line, off), KindAssignmentInCondition,
				"Possible assignment in conditional statement",
				"Use === for comparison instead of =")
		}

		if off, ok := missingFunctionParens(masked); ok {
			s.errorAt(n, column(line, off), KindMissingParentheses,
				"Missing parentheses in function declaration",
				"Add parentheses after function name: function name() {}")
		}

		for _, lit := range regexLiterals(line) {
			if !validJSRegex(lit.body) {
				s.errorAt(n, column(line, lit.offset), KindInvalidRegex,
					"Invalid regular expression",
					"Check regex syntax and escape special characters")
			}
		}
	}
}

// assignmentInCondition finds a lone '=' inside an if(...) condition and
// returns its offset. ==, ===, !=, !==, <=, >= and => are comparisons.
func assignmentInCondition(masked string) (int, bool) {
	for _, loc := range ifConditionRe.FindAllStringIndex(masked, -1) {
		depth := 1
		for j := loc[1]; j < len(masked) && depth > 0; j++ {
			switch masked[j] {
			case '(':
				depth++
			case ')':
				depth--
			case '=':
				prev, next := byte(0), byte(0)
				if j > 0 {
					prev = masked[j-1]
				}
				if j+1 < len(masked) {
					next = masked[j+1]
				}
				if next == '=' || next == '>' {
					j++
					for j+1 < len(masked) && masked[j+1] == '=' {
						j++
					}
					continue
				}
				if strings.IndexByte("=!<>+-*/%&|^", prev) >= 0 && prev != 0 {
					continue
				}
				return j, true
			}
		}
	}
	return 0, false
}

// missingFunctionParens reports "function name" not followed by "(".
func missingFunctionParens(masked string) (int, bool) {
	for _, m := range functionNameRe.FindAllStringSubmatchIndex(masked, -1) {
		rest := strings.TrimLeft(masked[m[3]:], " \t")
		if !strings.HasPrefix(rest, "(") && !strings.HasPrefix(rest, "<") {
			return m[0], true
		}
	}
	return 0, false
}

type regexLiteral struct {
	offset int
	body   string
}

// regexLiterals extracts /.../flags literals from a line. A slash opens a
// literal only where an expression may start, so division is left alone.
func regexLiterals(line string) []regexLiteral {
	var out []regexLiteral
	var quote byte
	lastSig := byte(0)
	lastWord := ""
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
				lastSig = c
			}
			continue
		}
		switch {
		case c == '"' || c == '\'' || c == '`':
			quote = c
			continue
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return out
		case c == '/' && i+1 < len(line) && line[i+1] == '*':
			end := strings.Index(line[i+2:], "*/")
			if end < 0 {
				return out
			}
			i += end + 3
			continue
		case c == '/' && regexMayStart(lastSig, lastWord):
			body, end, ok := scanRegexBody(line, i+1)
			if !ok {
				return out
			}
			out = append(out, regexLiteral{offset: i, body: body})
			i = end
			for i+1 < len(line) && strings.IndexByte("dgimsuyv", line[i+1]) >= 0 {
				i++
			}
			lastSig, lastWord = ')', ""
			continue
		case c == ' ' || c == '\t':
			continue
		}
		if isWordByte(c) {
			j := i
			for j < len(line) && isWordByte(line[j]) {
				j++
			}
			lastWord = line[i:j]
			lastSig = line[j-1]
			i = j - 1
			continue
		}
		lastSig, lastWord = c, ""
	}
	return out
}

func regexMayStart(lastSig byte, lastWord string) bool {
	switch lastWord {
	case "return", "typeof", "case", "in", "of", "yield", "await", "void":
		return true
	case "":
	default:
		return false
	}
	return lastSig == 0 || strings.IndexByte("(,=:[!&|?{};+-*%<>~^", lastSig) >= 0
}

// scanRegexBody returns the body of a literal whose opening slash is just
// before start, and the offset of the closing slash.
func scanRegexBody(line string, start int) (string, int, bool) {
	inClass := false
	for j := start; j < len(line); j++ {
		switch line[j] {
		case '\\':
			j++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				if j == start {
					return "", 0, false
				}
				return line[start:j], j, true
			}
		}
	}
	return "", 0, false
}

// validJSRegex compiles a literal body with the RE2 engine. Constructs RE2
// lacks but JavaScript accepts (lookaround, backreferences, unusual
// escapes) count as valid; only structural errors fail.
func validJSRegex(body string) bool {
	_, err := regexp.Compile(backrefRe.ReplaceAllString(body, "x"))
	if err == nil {
		return true
	}
	var serr *syntax.Error
	if !errors.As(err, &serr) {
		return true
	}
	switch serr.Code {
	case syntax.ErrMissingParen, syntax.ErrUnexpectedParen, syntax.ErrMissingBracket,
		syntax.ErrMissingRepeatArgument, syntax.ErrInvalidRepeatOp, syntax.ErrInvalidCharRange,
		syntax.ErrTrailingBackslash:
		return false
	}
	return true
}

// checkTemplateLiterals follows backtick strings across lines and reports
// one left open at the end of the document, at its opening backtick.
func checkTemplateLiterals(s *scan) {
	open := false
	openLine, openCol := 0, 0
	for i, line := range s.lines {
		for j := 0; j < len(line); j++ {
			switch line[j] {
			case '\\':
				if open {
					j++
				}
			case '`':
				open = !open
				if open {
					openLine, openCol = i+1, column(line, j)
				}
			}
		}
	}
	if open {
		s.errorAt(openLine, openCol, KindUnclosedTemplateLiteral,
			"Unclosed template literal", "Add closing backtick `")
	}
}

func checkConsoleLog(s *scan) {
	if strings.Contains(s.code, "console.log") {
		s.warnAt(0, 0, KindConsoleLog,
			"Console.log statements found in code",
			"Remove console.log statements for production code")
	}
}

var (
	declPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:var|let|const)\s+([A-Za-z_$][\w$]*)`),
		regexp.MustCompile(`\bfunction\s*\*?\s*([A-Za-z_$][\w$]*)`),
		regexp.MustCompile(`\bclass\s+([A-Za-z_$][\w$]*)`),
		regexp.MustCompile(`\bcatch\s*\(\s*([A-Za-z_$][\w$]*)`),
		regexp.MustCompile(`\bimport\s+([A-Za-z_$][\w$]*)`),
		regexp.MustCompile(`\bas\s+([A-Za-z_$][\w$]*)`),
		regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*=>`),
	}
	paramListRe = regexp.MustCompile(`(?:\bfunction\b[^(]*|=>\s*|^|[^\w$])\(([^()]*)\)\s*(?:=>|\{)`)
	braceListRe = regexp.MustCompile(`(?:\b(?:var|let|const|import)\s*)\{([^}]*)\}`)
	identRe     = regexp.MustCompile(`[A-Za-z_$][\w$]*`)
)

var reservedWords = toSet(
	"if", "else", "for", "while", "function", "return", "var", "let", "const",
	"class", "import", "export", "default", "this", "new", "typeof", "instanceof",
	"true", "false", "null", "undefined", "NaN", "Infinity", "console", "log",
	"break", "continue", "switch", "case", "throw", "try", "catch",
	"finally", "void", "delete", "in", "of", "yield", "await", "async", "static",
	"from", "as", "extends", "super", "do", "get", "set",
)

var knownGlobals = toSet(
	"window", "document", "Math", "JSON", "Object", "Array", "String", "Number",
	"Boolean", "Date", "Error", "TypeError", "RangeError", "Promise", "RegExp",
	"Map", "Set", "WeakMap", "WeakSet", "Symbol", "BigInt", "Reflect", "Proxy",
	"parseInt", "parseFloat", "isNaN", "isFinite", "setTimeout", "setInterval",
	"clearTimeout", "clearInterval", "require", "module", "exports", "process",
	"global", "globalThis", "fetch", "alert", "localStorage", "sessionStorage",
	"navigator", "location", "history", "Buffer", "__dirname", "__filename",
	"arguments", "React", "Intl", "URL", "encodeURIComponent", "decodeURIComponent",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// checkUndefinedVariables is a best-effort scan with no notion of scope:
// any identifier used but never declared anywhere in the document is
// reported once, file-level. Property accesses, object keys and
// well-known globals are ignored.
func checkUndefinedVariables(s *scan) {
	masked := make([]string, len(s.lines))
	for i, line := range s.lines {
		if s.profile.IsCommentLine(line) {
			continue
		}
		masked[i] = maskLine(line, s.profile.LineComments)
	}
	body := strings.Join(masked, "\n")

	declared := map[string]bool{}
	for _, re := range declPatterns {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			declared[m[1]] = true
		}
	}
	for _, re := range []*regexp.Regexp{paramListRe, braceListRe} {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			for _, name := range identRe.FindAllString(m[1], -1) {
				declared[name] = true
			}
		}
	}

	var order []string
	seen := map[string]bool{}
	for _, line := range masked {
		for _, loc := range identRe.FindAllStringIndex(line, -1) {
			name := line[loc[0]:loc[1]]
			if len(name) <= 1 || seen[name] || declared[name] ||
				reservedWords[name] || knownGlobals[name] || s.profile.IsKeyword(name) {
				continue
			}
			if loc[0] > 0 && (line[loc[0]-1] == '.' || isDigit(line[loc[0]-1])) {
				continue
			}
			after := strings.TrimLeft(line[loc[1]:], " \t")
			if strings.HasPrefix(after, ":") && !strings.HasPrefix(after, "::") {
				continue
			}
			seen[name] = true
			order = append(order, name)
		}
	}

	for _, name := range order {
		s.warnAt(0, 0, KindUndefinedVariable,
			fmt.Sprintf("Possible undefined variable: %s (best-effort)", name),
			fmt.Sprintf("Declare variable %s with var, let, or const", name))
	}
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
