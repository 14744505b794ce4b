package format

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/panbanda/glint/pkg/language"
)

// braceLine is one line of a brace-language document after spacing, with
// the context the later passes need.
type braceLine struct {
	text     string
	startsIn bool
	endsIn   bool
	// code is text up to any trailing comment, right-trimmed; codeEnd is
	// its length in text.
	code    string
	codeEnd int
	// depth is the number of brackets open when the line starts.
	depth int

	top           bracket
	hasTop        bool
	closedControl bool
	closedObject  bool
}

func formatBraces(lines []string, p *language.Profile, o Options) []string {
	lx := newLexer(p)
	sp := newSpacer(p)
	doc := make([]braceLine, 0, len(lines))

	for _, raw := range lines {
		saved := *lx
		bl := braceLine{startsIn: lx.inLiteral(), depth: sp.depth()}
		pieces := lx.split(raw)
		bl.endsIn = lx.inLiteral()

		switch {
		case bl.startsIn && len(pieces) == 1:
			bl.text = raw
		case p.Tag == language.CPP && !bl.startsIn && strings.HasPrefix(strings.TrimSpace(raw), "#"):
			bl.text = normalizeDirective(strings.TrimSpace(raw))
		default:
			bl.text = sp.line(pieces, bl.startsIn, bl.endsIn)
			if p.Tag == language.Java && !bl.startsIn {
				bl.text = orderModifiers(bl.text)
			}
		}

		if t := sp.top(); t != nil {
			bl.top, bl.hasTop = *t, true
		}
		bl.closedControl, bl.closedObject = sp.closedControl, sp.closedObject
		bl.code, bl.codeEnd = splitTrailingComment(bl.text, &saved)
		doc = append(doc, bl)
	}

	if p.Tag == language.JavaScript || p.Tag == language.TypeScript {
		insertSemicolons(doc)
	}

	texts := make([]string, 0, len(doc))
	for _, bl := range doc {
		if (p.Tag == language.JavaScript || p.Tag == language.TypeScript) && !bl.startsIn && !bl.endsIn {
			texts = append(texts, breakObjects(bl.text, p, o, bl.depth, 0)...)
			continue
		}
		texts = append(texts, bl.text)
	}
	return reindentBraces(texts, p, o)
}

// splitTrailingComment returns the code part of a formatted line. lx is the
// lexer state at the start of the line and is consumed.
func splitTrailingComment(text string, lx *lexer) (string, int) {
	pieces := lx.split(text)
	end := len(text)
	for i := len(pieces) - 1; i >= 0; i-- {
		if pieces[i].kind != pieceComment && strings.TrimSpace(pieces[i].text) != "" {
			break
		}
		end -= len(pieces[i].text)
	}
	code := strings.TrimRight(text[:end], " \t")
	return code, len(code)
}

var (
	noSemicolonStartRe   = regexp.MustCompile(`^(?:\}\s*)?(?:(?:export|default|async|declare|abstract)\s+)*(?:if|else|for|while|do|switch|try|catch|finally|function\*?|class|interface|enum|namespace|module|case|default)\b`)
	continuationPrefixes = []string{".", "?", ":", ")", "]", "+", "*", "/", "%", "&&", "||", "??", "=", ",", "|", "&", "^"}
)

// insertSemicolons terminates statement lines that lack a semicolon. Lines
// inside parentheses, brackets or object literals, lines ending in an
// operator, and lines starting a block construct are left alone, as are
// lines whose successor continues the expression.
func insertSemicolons(doc []braceLine) {
	for i := range doc {
		bl := &doc[i]
		if !needsSemicolon(bl, nextCode(doc, i)) {
			continue
		}
		bl.text = bl.text[:bl.codeEnd] + ";" + bl.text[bl.codeEnd:]
		bl.code += ";"
		bl.codeEnd++
	}
}

func needsSemicolon(bl *braceLine, next string) bool {
	code := strings.TrimSpace(bl.code)
	if code == "" || bl.endsIn {
		return false
	}
	if bl.hasTop && (bl.top.char != '{' || bl.top.object) {
		return false
	}
	switch last := code[len(code)-1]; {
	case strings.HasSuffix(code, "++") || strings.HasSuffix(code, "--"):
	case last == '}':
		if !bl.closedObject {
			return false
		}
	case strings.IndexByte(";{,([:.+-*/%&|?=<>!\\~^", last) >= 0:
		return false
	}
	if strings.HasPrefix(code, "@") || strings.HasPrefix(code, "<") || strings.HasPrefix(code, "#!") {
		return false
	}
	if noSemicolonStartRe.MatchString(code) && !strings.HasSuffix(code, "}") {
		return false
	}
	if bl.closedControl && strings.HasSuffix(code, ")") {
		return false
	}
	for _, prefix := range continuationPrefixes {
		if strings.HasPrefix(next, prefix) && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/*") {
			return false
		}
	}
	return true
}

// nextCode returns the code of the next line that has any.
func nextCode(doc []braceLine, i int) string {
	for j := i + 1; j < len(doc); j++ {
		if c := strings.TrimSpace(doc[j].code); c != "" {
			return c
		}
	}
	return ""
}

var (
	directiveRe = regexp.MustCompile(`^#\s*(\w+)\s*(.*)$`)
	includeRe   = regexp.MustCompile(`^([<"])\s*([^>"]*?)\s*([>"])\s*(.*)$`)
)

// normalizeDirective tidies a preprocessor line: no space after '#', one
// space before the argument, and no padding inside include brackets.
func normalizeDirective(line string) string {
	m := directiveRe.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	name, rest := m[1], strings.TrimSpace(m[2])
	if name == "include" {
		if inc := includeRe.FindStringSubmatch(rest); inc != nil {
			rest = inc[1] + inc[2] + inc[3]
			if inc[4] != "" {
				rest += " " + inc[4]
			}
		}
	}
	if rest == "" {
		return "#" + name
	}
	return "#" + name + " " + rest
}

// modifierOrder is the customary Java modifier order.
var modifierOrder = []string{
	"public", "protected", "private", "abstract", "static", "final", "transient",
	"volatile", "synchronized", "native", "strictfp", "sealed", "non-sealed",
}

var modifierRunRe = regexp.MustCompile(`^((?:@[\w.]+(?:\([^)]*\))?\s+)*)((?:(?:public|protected|private|abstract|static|final|transient|volatile|synchronized|native|strictfp|sealed|non-sealed)\s+)+)`)

// orderModifiers rewrites the modifier run at the start of a declaration in
// the customary order, separated by single spaces.
func orderModifiers(line string) string {
	m := modifierRunRe.FindStringSubmatchIndex(line)
	if m == nil {
		return line
	}
	mods := strings.Fields(line[m[4]:m[5]])
	slices.SortStableFunc(mods, func(a, b string) int {
		return slices.Index(modifierOrder, a) - slices.Index(modifierOrder, b)
	})
	return line[:m[4]] + strings.Join(mods, " ") + " " + line[m[5]:]
}

// breakObjects splits a line longer than the limit at its first object
// literal, one property per line, then retries on the pieces.
func breakObjects(line string, p *language.Profile, o Options, depth, level int) []string {
	width := utf8.RuneCountInString(o.indent(depth) + line)
	if o.MaxLineLength <= 0 || width <= o.MaxLineLength || level > 3 {
		return []string{line}
	}
	parts := splitObject(line, p)
	if parts == nil {
		return []string{line}
	}
	out := []string{parts[0]}
	for _, entry := range parts[1 : len(parts)-1] {
		out = append(out, breakObjects(entry, p, o, depth+1, level+1)...)
	}
	return append(out, parts[len(parts)-1])
}

// splitObject returns the head up to and including the first object
// literal's '{', its top-level entries, and the tail from the matching
// '}'. It returns nil when the line has no such literal with two or more
// entries.
func splitObject(line string, p *language.Profile) []string {
	code := codeMask(line, p)
	open := -1
	depth := 0
	var commas []int
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c == 0 {
			continue
		}
		switch {
		case open < 0 && c == '{' && objectContext(code[:i]):
			open, depth = i, 1
		case open < 0:
		case c == '{' || c == '(' || c == '[':
			depth++
		case c == '}' || c == ')' || c == ']':
			depth--
			if depth == 0 {
				return splitAt(line, open, i, commas)
			}
		case c == ',' && depth == 1:
			commas = append(commas, i)
		}
	}
	return nil
}

func splitAt(line string, open, close int, commas []int) []string {
	if len(commas) == 0 {
		return nil
	}
	var entries []string
	start := open + 1
	for _, c := range append(commas, close) {
		if e := strings.TrimSpace(line[start:c]); e != "" {
			entries = append(entries, e)
		}
		start = c + 1
	}
	if len(entries) < 2 {
		return nil
	}
	out := []string{strings.TrimRight(line[:open+1], " ")}
	for i, e := range entries {
		if i < len(entries)-1 {
			e += ","
		}
		out = append(out, e)
	}
	return append(out, line[close:])
}

// codeMask returns line with every byte inside a string or comment zeroed.
func codeMask(line string, p *language.Profile) []byte {
	mask := make([]byte, 0, len(line))
	for _, pc := range newLexer(p).split(line) {
		if pc.kind == pieceCode {
			mask = append(mask, pc.text...)
			continue
		}
		mask = append(mask, make([]byte, len(pc.text))...)
	}
	return mask
}

func objectContext(before []byte) bool {
	trimmed := strings.TrimRight(strings.ReplaceAll(string(before), "\x00", "\""), " \t")
	if trimmed == "" {
		return false
	}
	if literalWords[trailingWord([]byte(trimmed))] {
		return true
	}
	return strings.IndexByte("(,=:[?", trimmed[len(trimmed)-1]) >= 0
}

// braceIndenter tracks nesting across lines. Each line that opens brackets
// adds one level however many it opens, so a line like "foo(function() {"
// indents its body once.
type braceIndenter struct {
	lx     *lexer
	levels []int
}

// measure consumes a line and returns the depth it should be printed at.
func (b *braceIndenter) measure(line string) int {
	leading := !b.lx.inLiteral()
	emit := -1
	opened := false

	closeOne := func() {
		n := len(b.levels)
		if n == 0 {
			return
		}
		b.levels[n-1]--
		if b.levels[n-1] == 0 {
			b.levels = b.levels[:n-1]
			opened = false
		}
	}

	for _, pc := range b.lx.split(line) {
		if pc.kind != pieceCode {
			if leading && strings.TrimSpace(pc.text) != "" {
				leading, emit = false, len(b.levels)
			}
			continue
		}
		for i := 0; i < len(pc.text); i++ {
			c := pc.text[i]
			if c == ' ' || c == '\t' {
				continue
			}
			isCloser := c == ')' || c == ']' || c == '}'
			if leading && !isCloser {
				leading, emit = false, len(b.levels)
			}
			switch {
			case c == '(' || c == '[' || c == '{':
				if opened {
					b.levels[len(b.levels)-1]++
				} else {
					b.levels = append(b.levels, 1)
					opened = true
				}
			case isCloser:
				closeOne()
			}
		}
	}
	if emit < 0 {
		emit = len(b.levels)
	}
	return emit
}

func reindentBraces(lines []string, p *language.Profile, o Options) []string {
	ind := &braceIndenter{lx: newLexer(p)}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		startsIn, kind := ind.lx.inLiteral(), ind.lx.openKind
		depth := ind.measure(line)
		trimmed := strings.TrimSpace(line)
		switch {
		case startsIn:
			if kind == pieceComment && strings.HasPrefix(trimmed, "*") {
				out = append(out, o.indent(depth)+" "+trimmed)
				continue
			}
			out = append(out, line)
		case trimmed == "":
			if o.PreserveBlankLines {
				out = append(out, "")
			}
		case p.Tag == language.CPP && strings.HasPrefix(trimmed, "#"):
			out = append(out, trimmed)
		default:
			if strings.HasPrefix(trimmed, ".") && !strings.HasPrefix(trimmed, "...") {
				depth++
			}
			out = append(out, o.indent(depth)+trimmed)
		}
	}
	return out
}
