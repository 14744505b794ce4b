package format

import (
	"regexp"
	"strings"

	"github.com/panbanda/glint/pkg/language"
)

// operators are matched longest first so that a padded "=" never splits a
// longer operator.
var operators = []string{
	"<<=", ">>=", "**=", "??=", "&&=", "||=", "===", "!==", "<=>", "..=", "...", "<?=",
	"//=", ">>>",
	"==", "!=", "<=", ">=", "&&", "||", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	".=", ":=", "=>", "->", "<-", "::", "++", "--", "<<", ">>", "**", "??", "=~", "!~",
	"..", "?>", "//",
	"=",
}

var paddedOperators = []string{
	"=", "==", "===", "!=", "!==", "<=", ">=", "<=>", "+=", "-=", "*=", "/=", "%=",
	"&=", "|=", "^=", "<<=", ">>=", "**=", "??=", "&&=", "||=", ".=", ":=", "=>",
	"??", "=~", "!~", "//=",
}

// binaryOperators are padded only where they follow an operand, so unary
// minus, splats and dereferences keep their tight form.
var binaryOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "<": true, ">": true,
	"**": true, "<<": true, ">>": true, ">>>": true, "//": true,
}

// prefixWords end an expression prefix: an operator after them is unary.
var prefixWords = map[string]bool{
	"return": true, "case": true, "typeof": true, "yield": true, "await": true,
	"throw": true, "in": true, "of": true, "else": true, "do": true, "new": true,
	"delete": true, "void": true, "and": true, "or": true, "not": true, "if": true,
	"elif": true, "while": true, "when": true, "then": true, "is": true,
	"instanceof": true, "unless": true, "until": true, "import": true, "export": true,
	"echo": true, "puts": true, "print": true, "lambda": true, "from": true,
}

// parenKeywords get a space before an opening parenthesis.
var parenKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"foreach": true, "elseif": true, "elif": true, "with": true,
}

// literalWords are followed by a literal or pattern rather than a block
// when they precede '{'.
var literalWords = map[string]bool{
	"return": true, "yield": true, "const": true, "let": true, "var": true,
	"import": true, "export": true, "default": true,
}

type colonMode int

const (
	colonNone colonMode = iota
	colonObject
	colonPython
)

// bracket is an open bracket on the spacer's stack. Object braces open
// literals (object, map, struct, dict) rather than blocks.
type bracket struct {
	char    byte
	object  bool
	control bool
	typed   bool
}

var (
	enumStartRe    = regexp.MustCompile(`^(?:export\s+)?(?:declare\s+)?(?:const\s+)?enum\b`)
	controlStartRe = regexp.MustCompile(`^(?:\}\s*)?(?:else\s+)?(?:if|for|while|switch|catch|with|foreach|elseif)\b`)
)

// spacer normalizes spacing inside code pieces. It keeps a bracket stack
// across lines so that later passes know what encloses each line.
type spacer struct {
	tag          language.Tag
	pad          map[string]bool
	colon        colonMode
	parenKw      bool
	goLiterals   bool
	pythonEquals bool
	// generics marks languages where '<' may open a type argument list.
	generics bool

	// angles counts type argument lists open on the current line.
	angles int

	stack []bracket
	// lastSig is the last significant byte emitted, carried across lines.
	lastSig byte
	// lineControl is set while the current line starts with a control
	// keyword.
	lineControl bool
	// closedControl and closedObject describe the last bracket closed on
	// the current line.
	closedControl bool
	closedObject  bool
}

func newSpacer(p *language.Profile) *spacer {
	s := &spacer{
		tag:     p.Tag,
		pad:     make(map[string]bool),
		colon:   colonObject,
		parenKw: true,
	}
	for _, op := range paddedOperators {
		s.pad[op] = true
	}
	switch p.Tag {
	case language.CPP, language.Rust:
	default:
		s.pad["&&"], s.pad["||"] = true, true
	}
	switch p.Tag {
	case language.Python:
		s.colon = colonPython
		s.pythonEquals = true
		s.pad["->"] = true
	case language.Rust, language.Java:
		s.pad["->"] = true
	case language.Go:
		s.goLiterals = true
		s.parenKw = false
	}
	switch p.Tag {
	case language.Java, language.TypeScript, language.CPP, language.Rust:
		s.generics = true
	}
	return s
}

// top returns the innermost open bracket, or nil.
func (s *spacer) top() *bracket {
	if len(s.stack) == 0 {
		return nil
	}
	return &s.stack[len(s.stack)-1]
}

func (s *spacer) depth() int {
	return len(s.stack)
}

// line rewrites one line. Leading whitespace is kept only when the line
// starts inside a literal, and trailing whitespace only when it ends in
// one.
func (s *spacer) line(pieces []piece, startsInLiteral, endsInLiteral bool) string {
	s.closedControl, s.closedObject = false, false
	s.angles = 0
	s.lineControl = controlStartRe.MatchString(strings.TrimSpace(codeOf(pieces)))

	var out []byte
	for i, p := range pieces {
		switch p.kind {
		case pieceCode:
			text := p.text
			if i == 0 && !startsInLiteral {
				text = strings.TrimLeft(text, " \t")
			}
			out = s.code(out, text)
		default:
			out = append(out, p.text...)
			if p.kind == pieceString {
				if sig := lastSignificant(p.text); sig != 0 {
					s.lastSig = sig
				}
			}
		}
	}
	if !endsInLiteral {
		out = trimSpaceRight(out)
	}
	return string(out)
}

func (s *spacer) code(out []byte, text string) []byte {
	for i := 0; i < len(text); {
		c := text[i]
		if c == ' ' || c == '\t' {
			if len(out) > 0 && out[len(out)-1] != ' ' {
				out = append(out, ' ')
			}
			i++
			continue
		}

		if s.generics {
			if c == '>' && s.angles > 0 {
				s.angles--
				out = append(out, '>')
				s.lastSig = '>'
				i++
				continue
			}
			if c == '<' && typeArgsAt(text, i+1) {
				s.angles++
				out = append(out, '<')
				s.lastSig = '<'
				i++
				continue
			}
		}

		op := operatorAt(text[i:])
		if op == "" && strings.IndexByte("+-*/%<>", c) >= 0 {
			op = text[i : i+1]
		}
		if binaryOperators[op] {
			if s.binary(out, text, i, op) {
				out = trimSpaceRight(out)
				out = append(out, ' ')
				out = append(out, op...)
				out = append(out, ' ')
				i = skipSpaces(text, i+len(op))
			} else {
				out = append(out, op...)
				i += len(op)
			}
			s.lastSig = op[len(op)-1]
			continue
		}
		if op != "" {
			if s.padded(op) {
				out = trimSpaceRight(out)
				if len(out) > 0 {
					out = append(out, ' ')
				}
				out = append(out, op...)
				out = append(out, ' ')
				i = skipSpaces(text, i+len(op))
			} else {
				if op == "=" {
					out = trimSpaceRight(out)
					i = skipSpaces(text, i+1)
				} else {
					i += len(op)
				}
				out = append(out, op...)
			}
			s.lastSig = op[len(op)-1]
			continue
		}

		switch c {
		case ',':
			out = trimSpaceRight(out)
			out = append(out, ", "...)
			i = skipSpaces(text, i+1)
			if t := s.top(); t != nil {
				t.typed = false
			}
		case ';':
			out = trimSpaceRight(out)
			out = append(out, ';')
			i++
			if i < len(text) && text[i] != ' ' && text[i] != ';' && text[i] != ')' {
				out = append(out, ' ')
			}
		case '(', '[':
			if c == '(' && s.parenKw && parenKeywords[trailingWord(out)] {
				out = append(out, ' ')
			}
			out = append(out, c)
			s.stack = append(s.stack, bracket{char: c, control: c == '(' && s.lineControl})
			i = skipSpaces(text, i+1)
		case ')', ']':
			out = trimSpaceRight(out)
			out = append(out, c)
			s.pop()
			i++
		case '{':
			object := s.objectBrace(out, text, i)
			if n := len(out); n > 0 && (out[n-1] == ')' || isIdentByte(out[n-1]) && !(s.goLiterals && object)) {
				out = append(out, ' ')
			}
			out = append(out, '{')
			s.stack = append(s.stack, bracket{char: '{', object: object})
			i++
			if !object && i < len(text) && strings.IndexByte(" \t}", text[i]) < 0 {
				out = append(out, ' ')
			}
		case '}':
			if t := s.top(); t != nil && t.char == '{' && !t.object {
				if n := len(out); n > 0 && out[n-1] != ' ' && out[n-1] != '{' {
					out = append(out, ' ')
				}
			}
			out = append(out, '}')
			s.pop()
			i++
			if i < len(text) && isIdentByte(text[i]) {
				out = append(out, ' ')
			}
		case ':':
			out = s.writeColon(out, text, i)
			i++
		default:
			out = append(out, c)
			i++
		}
		s.lastSig = c
	}
	return out
}

func (s *spacer) padded(op string) bool {
	if !s.pad[op] {
		return false
	}
	if op == "=" && s.pythonEquals {
		if t := s.top(); t != nil && t.char == '(' && !t.typed {
			return false
		}
	}
	return true
}

// binary reports whether op at text[i] sits between two operands. A space
// before a tight operand ("f -x", "int *p") marks a prefix operator, and
// "char* p" keeps its pointer declarator form. Go's []*T and map[K]*V are
// types.
func (s *spacer) binary(out []byte, text string, i int, op string) bool {
	if s.angles > 0 && op != "+" {
		return false
	}
	trimmed := trimSpaceRight(out)
	if len(trimmed) == 0 {
		return false
	}
	prev := trimmed[len(trimmed)-1]
	if !isIdentByte(prev) && !strings.ContainsRune(")]\"'`", rune(prev)) {
		return false
	}
	word := trailingWord(trimmed)
	if prefixWords[word] {
		return false
	}
	if (op == "+" || op == "-") && exponent(word) {
		return false
	}

	if op == "*" && s.goLiterals && prev == ']' {
		return false
	}

	j := i + len(op)
	if k := skipSpaces(text, j); k < len(text) && strings.IndexByte(")]},;", text[k]) >= 0 {
		return false
	}
	spaceBefore := len(out) > len(trimmed)
	spaceAfter := j < len(text) && (text[j] == ' ' || text[j] == '\t')
	if spaceBefore && !spaceAfter {
		return false
	}
	if op == "*" && !spaceBefore && spaceAfter {
		return false
	}
	return true
}

// exponent reports whether word is a number awaiting its exponent sign, as
// in 1e-5.
func exponent(word string) bool {
	if word == "" || word[0] < '0' || word[0] > '9' {
		return false
	}
	last := word[len(word)-1]
	return (last == 'e' || last == 'E') && !strings.HasPrefix(word, "0x") && !strings.HasPrefix(word, "0X")
}

// typeArgsAt reports whether the text from i closes a type argument list
// opened by the '<' just before it, as in List<String> or Result<(), E>.
func typeArgsAt(text string, i int) bool {
	depth, parens := 1, 0
	for ; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '<':
			depth++
		case c == '>':
			depth--
			if depth == 0 {
				return parens == 0
			}
		case c == '(':
			parens++
		case c == ')':
			if parens == 0 {
				return false
			}
			parens--
		case c == '&':
			if i+1 < len(text) && text[i+1] == '&' {
				return false
			}
		case isIdentByte(c) || strings.IndexByte(" \t,.[]?:*'+", c) >= 0:
		default:
			return false
		}
	}
	return false
}

func (s *spacer) pop() {
	t := s.top()
	if t == nil {
		return
	}
	s.closedControl = t.control
	s.closedObject = t.object
	s.stack = s.stack[:len(s.stack)-1]
}

// objectBrace decides whether the '{' at text[i] opens a literal.
func (s *spacer) objectBrace(out []byte, text string, i int) bool {
	if enumStartRe.Match(out) {
		return true
	}
	if s.goLiterals && i > 0 && (isIdentByte(text[i-1]) || text[i-1] == ']' || text[i-1] == '}') {
		return true
	}
	sig := s.lastSig
	if trimmed := trimSpaceRight(append([]byte(nil), out...)); len(trimmed) > 0 {
		sig = trimmed[len(trimmed)-1]
		if literalWords[trailingWord(trimmed)] {
			return true
		}
	}
	return strings.IndexByte("(,=:[?", sig) >= 0
}

func (s *spacer) writeColon(out []byte, text string, i int) []byte {
	next := byte(0)
	if i+1 < len(text) {
		next = text[i+1]
	}
	switch s.colon {
	case colonPython:
		if t := s.top(); t != nil && t.char == '[' {
			return append(out, ':')
		}
		if t := s.top(); t != nil && t.char == '(' {
			t.typed = true
		}
		out = trimSpaceRight(out)
		out = append(out, ':')
		if next != 0 && next != ' ' && next != '\t' && !strings.ContainsRune(")]}", rune(next)) {
			out = append(out, ' ')
		}
		return out
	case colonObject:
		t := s.top()
		if t == nil || !t.object {
			return append(out, ':')
		}
		trimmed := trimSpaceRight(append([]byte(nil), out...))
		if len(trimmed) == 0 {
			return append(out, ':')
		}
		if prev := trimmed[len(trimmed)-1]; !isIdentByte(prev) && !strings.ContainsRune(`"')]`, rune(prev)) {
			return append(out, ':')
		}
		out = append(trimmed, ':')
		if next != 0 && next != ' ' && next != '\t' {
			out = append(out, ' ')
		}
		return out
	}
	return append(out, ':')
}

func operatorAt(rest string) string {
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			return op
		}
	}
	return ""
}

func skipSpaces(text string, i int) int {
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	return i
}

func trimSpaceRight(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}

// trailingWord returns the identifier that ends b, if any.
func trailingWord(b []byte) string {
	j := len(b)
	for j > 0 && isIdentByte(b[j-1]) {
		j--
	}
	return string(b[j:])
}

func lastSignificant(text string) byte {
	t := strings.TrimRight(text, " \t")
	if t == "" {
		return 0
	}
	return t[len(t)-1]
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}
