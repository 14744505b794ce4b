package highlight

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/panbanda/glint/pkg/language"
)

// operators are tried longest first.
var operators = []string{
	">>>=", "===", "!==", ">>>", "**=", "<<=", ">>=", "...",
	"==", "!=", "<=", ">=", "&&", "||", "=>", "->", "++", "--", "+=", "-=",
	"*=", "/=", "%=", "&=", "|=", "^=", "::", "<<", ">>", ":=", "??", "**",
	"=", "!", "<", ">", "+", "-", "*", "/", "%", "&", "|", "^", "~", "?", ":",
}

const punctuation = "{}()[].,;"

var (
	numberPattern   = regexp.MustCompile(`^(?:0[xX][0-9a-fA-F]+|\d+(?:\.\d+)?(?:[eE][+-]?\d+)?)`)
	cssUnitPattern  = regexp.MustCompile(`^\d+(?:\.\d+)?(?:px|em|rem|%|vh|vw|vmin|vmax|ms|s|deg)?`)
	doctypePattern  = regexp.MustCompile(`^<!(?i:doctype)[^>]*>`)
	tagPattern      = regexp.MustCompile(`^</?[a-zA-Z][\w:-]*`)
	attrPattern     = regexp.MustCompile(`^[a-zA-Z_:@][\w:.-]*\s*=`)
	selectorPattern = regexp.MustCompile(`^(?:[.#]?-?[a-zA-Z_][\w-]*|[.#][\w-]+)(?:::?[a-zA-Z-]+(?:\([^)]*\))?)*`)
	atRulePattern   = regexp.MustCompile(`^@[\w-]+`)
	propertyPattern = regexp.MustCompile(`^-?[a-zA-Z][\w-]*\s*:`)
)

// state is what a multi-line construct leaves open at the end of a line.
type state struct {
	// closer ends a block comment or multi-line string still open.
	closer  string
	closerK Kind

	pendingDecl language.DeclKind

	inTag    bool
	cssDepth int
	cssProp  bool
	cssValue bool
}

// Tokenizer classifies lines of one language. It carries block comments,
// multi-line strings and markup context from one line to the next, so a
// Tokenizer must see the lines of a document in order.
type Tokenizer struct {
	profile *language.Profile
	markup  bool
	css     bool
	st      state
}

// NewTokenizer returns a Tokenizer for tag. Unsupported tags fall back to
// JavaScript.
func NewTokenizer(tag language.Tag) *Tokenizer {
	p := language.MustLookup(language.Resolve(tag))
	return &Tokenizer{
		profile: p,
		markup:  p.Tag == language.HTML,
		css:     p.Tag == language.CSS,
	}
}

// Tokenize classifies a single line with fresh state.
func Tokenize(line string, tag language.Tag) []Token {
	return NewTokenizer(tag).Line(line)
}

type candidate struct {
	kind   Kind
	n      int
	closer string
}

// Line tokenizes one line in a single left-to-right pass. At every
// position all matchers are tried and the longest match wins; on equal
// length the higher-priority class wins. Characters no matcher claims are
// emitted as plain tokens. The returned tokens cover the line exactly.
func (t *Tokenizer) Line(line string) []Token {
	line = strings.TrimSuffix(line, "\r")
	var toks []Token
	emit := func(kind Kind, start, end int) {
		if end <= start {
			return
		}
		if kind == KindPlain && len(toks) > 0 {
			last := &toks[len(toks)-1]
			if last.Kind == KindPlain && last.End == start {
				last.End = end
				last.Text = line[last.Start:end]
				return
			}
		}
		toks = append(toks, Token{Kind: kind, Text: line[start:end], Start: start, End: end})
	}

	pos := 0
	if t.st.closer != "" {
		end, closed := findCloser(line, 0, t.st.closer, t.st.closerK == KindString)
		emit(t.st.closerK, 0, end)
		if closed {
			t.st.closer = ""
		}
		pos = end
	}

	for pos < len(line) {
		c := t.match(line, pos)
		if c.n == 0 {
			c = candidate{kind: KindPlain, n: plainRun(line, pos)}
		}
		t.observe(c, line[pos:pos+c.n])
		emit(c.kind, pos, pos+c.n)
		pos += c.n
	}
	return toks
}

func (t *Tokenizer) match(line string, pos int) candidate {
	var best candidate
	try := func(c candidate) {
		if c.n > best.n {
			best = c
		}
	}
	rest := line[pos:]

	try(t.comment(rest))
	try(t.str(rest))
	if t.css {
		try(t.cssMatch(line, pos))
	}
	try(candidate{kind: KindKeyword, n: t.keyword(line, pos)})
	try(candidate{kind: KindNumber, n: number(line, pos)})
	fn, cls := t.declared(line, pos)
	try(candidate{kind: KindFunction, n: fn})
	try(candidate{kind: KindClass, n: cls})
	try(candidate{kind: KindOperator, n: operator(rest)})
	if strings.IndexByte(punctuation, rest[0]) >= 0 {
		try(candidate{kind: KindPunctuation, n: 1})
	}
	if t.markup {
		try(t.markupMatch(rest))
	}
	return best
}

// observe updates cross-token context after a token is chosen.
func (t *Tokenizer) observe(c candidate, text string) {
	if c.closer != "" {
		t.st.closer = c.closer
		t.st.closerK = c.kind
	}

	switch c.kind {
	case KindKeyword:
		t.st.pendingDecl = t.profile.Declarators[text]
	case KindPlain:
		if strings.TrimSpace(text) != "" {
			t.st.pendingDecl = 0
		}
	default:
		t.st.pendingDecl = 0
	}

	if t.markup {
		switch {
		case c.kind == KindTag && !strings.HasPrefix(text, "<!"):
			t.st.inTag = true
		case c.kind == KindOperator && strings.Contains(text, ">"):
			t.st.inTag = false
		}
	}

	if t.css {
		switch {
		case c.kind == KindProperty:
			t.st.cssProp = true
		case c.kind == KindOperator && text == ":" && t.st.cssProp:
			t.st.cssProp = false
			t.st.cssValue = true
		case c.kind == KindValue:
			t.st.cssValue = false
		case c.kind == KindPunctuation && text == "{":
			t.st.cssDepth++
			t.st.cssProp, t.st.cssValue = false, false
		case c.kind == KindPunctuation && text == "}":
			if t.st.cssDepth > 0 {
				t.st.cssDepth--
			}
			t.st.cssProp, t.st.cssValue = false, false
		case c.kind == KindPunctuation && text == ";":
			t.st.cssProp, t.st.cssValue = false, false
		}
	}
}

func (t *Tokenizer) comment(rest string) candidate {
	p := t.profile
	for _, prefix := range p.LineComments {
		if strings.HasPrefix(rest, prefix) {
			return candidate{kind: KindComment, n: len(rest)}
		}
	}
	open, closer := p.BlockComment[0], p.BlockComment[1]
	if open != "" && strings.HasPrefix(rest, open) {
		if idx := strings.Index(rest[len(open):], closer); idx >= 0 {
			return candidate{kind: KindComment, n: len(open) + idx + len(closer)}
		}
		return candidate{kind: KindComment, n: len(rest), closer: closer}
	}
	return candidate{}
}

func (t *Tokenizer) str(rest string) candidate {
	if t.profile.Tag == language.Python {
		for _, triple := range []string{`"""`, `'''`} {
			if strings.HasPrefix(rest, triple) {
				end, closed := findCloser(rest, len(triple), triple, true)
				if closed {
					return candidate{kind: KindString, n: end}
				}
				return candidate{kind: KindString, n: len(rest), closer: triple}
			}
		}
	}
	q := rest[0]
	if q != '"' && q != '\'' && q != '`' {
		return candidate{}
	}
	end, closed := findCloser(rest, 1, string(q), true)
	if closed {
		return candidate{kind: KindString, n: end}
	}
	if q == '`' {
		return candidate{kind: KindString, n: len(rest), closer: "`"}
	}
	return candidate{}
}

// findCloser returns the offset just past closer, searching from start.
// When escapes is set a backslash skips the next byte. If closer is not
// found the end of s is returned with closed false.
func findCloser(s string, start int, closer string, escapes bool) (int, bool) {
	for i := start; i < len(s); i++ {
		if escapes && s[i] == '\\' {
			i++
			continue
		}
		if strings.HasPrefix(s[i:], closer) {
			return i + len(closer), true
		}
	}
	return len(s), false
}

func (t *Tokenizer) keyword(line string, pos int) int {
	if !wordStart(line, pos) {
		return 0
	}
	n := identLen(line[pos:])
	if n > 0 && t.profile.IsKeyword(line[pos:pos+n]) {
		return n
	}
	return 0
}

func number(line string, pos int) int {
	if !wordStart(line, pos) {
		return 0
	}
	n := len(numberPattern.FindString(line[pos:]))
	if n == 0 || pos+n < len(line) && isIdentByte(line[pos+n]) {
		return 0
	}
	return n
}

// declared matches identifiers that name a function or class: the name
// after a declarator keyword, or a call site.
func (t *Tokenizer) declared(line string, pos int) (fn, cls int) {
	if !wordStart(line, pos) {
		return 0, 0
	}
	n := identLen(line[pos:])
	if n == 0 {
		return 0, 0
	}
	switch t.st.pendingDecl {
	case language.DeclFunction:
		return n, 0
	case language.DeclClass:
		return 0, n
	}
	if t.profile.CallHighlight && !t.profile.IsKeyword(line[pos:pos+n]) {
		after := strings.TrimLeft(line[pos+n:], " \t")
		if strings.HasPrefix(after, "(") {
			return n, 0
		}
	}
	return 0, 0
}

func operator(rest string) int {
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			return len(op)
		}
	}
	return 0
}

func (t *Tokenizer) markupMatch(rest string) candidate {
	if m := doctypePattern.FindString(rest); m != "" {
		return candidate{kind: KindTag, n: len(m)}
	}
	if m := tagPattern.FindString(rest); m != "" {
		return candidate{kind: KindTag, n: len(m)}
	}
	if t.st.inTag {
		if m := attrPattern.FindString(rest); m != "" {
			name := strings.TrimRight(strings.TrimSuffix(m, "="), " \t")
			return candidate{kind: KindAttribute, n: len(name)}
		}
	}
	return candidate{}
}

func (t *Tokenizer) cssMatch(line string, pos int) candidate {
	rest := line[pos:]
	st := &t.st
	if st.cssValue {
		if rest[0] == ' ' || rest[0] == '\t' {
			return candidate{}
		}
		end := strings.IndexAny(rest, ";{}")
		if end < 0 {
			end = len(rest)
		}
		if c := strings.Index(rest[:end], "/*"); c >= 0 {
			end = c
		}
		return candidate{kind: KindValue, n: len(strings.TrimRight(rest[:end], " \t"))}
	}
	if m := atRulePattern.FindString(rest); m != "" {
		return candidate{kind: KindKeyword, n: len(m)}
	}
	if m := cssUnitPattern.FindString(rest); m != "" && wordStart(line, pos) {
		return candidate{kind: KindNumber, n: len(m)}
	}

	var best candidate
	if st.cssDepth > 0 {
		if m := propertyPattern.FindString(rest); m != "" {
			name := strings.TrimRight(strings.TrimSuffix(m, ":"), " \t")
			best = candidate{kind: KindProperty, n: len(name)}
		}
	}
	if st.cssDepth == 0 || strings.Contains(rest, "{") {
		if m := selectorPattern.FindString(rest); len(m) > best.n {
			best = candidate{kind: KindSelector, n: len(m)}
		}
	}
	return best
}

// plainRun returns the length of an unclaimed run starting at pos: a whole
// identifier, a run of whitespace, or a single character.
func plainRun(line string, pos int) int {
	if n := identLen(line[pos:]); n > 0 {
		return n
	}
	if isIdentByte(line[pos]) {
		n := 0
		for pos+n < len(line) && isIdentByte(line[pos+n]) {
			n++
		}
		return n
	}
	if line[pos] == ' ' || line[pos] == '\t' {
		n := 0
		for pos+n < len(line) && (line[pos+n] == ' ' || line[pos+n] == '\t') {
			n++
		}
		return n
	}
	_, size := utf8.DecodeRuneInString(line[pos:])
	return size
}

// identLen returns the length of the identifier at the start of s, or 0.
// An identifier starts with a letter, '_' or '$' and must contain at least
// one character other than '$'.
func identLen(s string) int {
	if s == "" {
		return 0
	}
	c := s[0]
	if !(c == '_' || c == '$' || isLetter(c)) {
		return 0
	}
	n := 1
	for n < len(s) && isIdentByte(s[n]) {
		n++
	}
	if strings.Trim(s[:n], "$") == "" {
		return 0
	}
	return n
}

func wordStart(line string, pos int) bool {
	return pos == 0 || !isIdentByte(line[pos-1])
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || isLetter(c) || c >= '0' && c <= '9'
}
