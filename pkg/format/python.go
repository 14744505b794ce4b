package format

import (
	"regexp"
	"slices"
	"strings"

	"github.com/panbanda/glint/pkg/language"
)

type pyKind int

const (
	pyBlank pyKind = iota
	pyComment
	pyRaw
	pyCode
	pyContinuation
)

type pyLine struct {
	text  string
	depth int
	kind  pyKind
}

// pyLevel is an open block. A forced level was opened by a colon whose body
// the source did not indent, so it shares its parent's width.
type pyLevel struct {
	width  int
	forced bool
}

var (
	firstWordRe  = regexp.MustCompile(`^[A-Za-z_]\w*`)
	lambdaTailRe = regexp.MustCompile(`\blambda\b[^:]*:$`)
)

var (
	pyMiddles   = map[string]bool{"elif": true, "else": true, "except": true, "finally": true}
	pyTerminals = map[string]bool{"return": true, "pass": true, "raise": true, "break": true, "continue": true}
)

// pyIndenter maps source indentation to block depth with an indent stack,
// so dedents in the source survive reformatting.
type pyIndenter struct {
	stack  []pyLevel
	expect bool
}

func newPyIndenter() *pyIndenter {
	return &pyIndenter{stack: []pyLevel{{width: 0}}}
}

func (pi *pyIndenter) top() pyLevel {
	return pi.stack[len(pi.stack)-1]
}

// statement resolves the depth of a statement that starts at width w.
func (pi *pyIndenter) statement(w int, word string) int {
	if pi.expect {
		pi.expect = false
		if w > pi.top().width {
			pi.stack = append(pi.stack, pyLevel{width: w})
		} else {
			pi.stack = append(pi.stack, pyLevel{width: pi.top().width, forced: true})
		}
		return len(pi.stack) - 1
	}
	for len(pi.stack) > 1 && w < pi.top().width {
		pi.stack = pi.stack[:len(pi.stack)-1]
	}
	if pyMiddles[word] && len(pi.stack) > 1 && pi.top().forced {
		pi.stack = pi.stack[:len(pi.stack)-1]
	}
	return len(pi.stack) - 1
}

// peek returns the depth a comment at width w belongs to without changing
// the stack.
func (pi *pyIndenter) peek(w int) int {
	if pi.expect && w > pi.top().width {
		return len(pi.stack)
	}
	d := len(pi.stack) - 1
	for d > 0 && w < pi.stack[d].width {
		d--
	}
	return d
}

// finish records how a statement ended: a block colon opens a level for
// the next statement, and a terminal statement closes a forced level.
func (pi *pyIndenter) finish(word string, opensBlock bool) {
	if opensBlock {
		pi.expect = true
		return
	}
	if pyTerminals[word] && len(pi.stack) > 1 && pi.top().forced {
		pi.stack = pi.stack[:len(pi.stack)-1]
	}
}

func formatPython(lines []string, p *language.Profile, o Options) []string {
	lx := newLexer(p)
	sp := newSpacer(p)
	pi := newPyIndenter()
	doc := make([]pyLine, 0, len(lines))

	stmtDepth, word := 0, ""
	continued := false

	for _, raw := range lines {
		startsIn := lx.inLiteral()
		inBrackets := sp.depth() > 0
		pieces := lx.split(raw)
		endsIn := lx.inLiteral()
		trimmed := strings.TrimSpace(raw)

		switch {
		case startsIn:
			text := raw
			if len(pieces) > 1 {
				text = sp.line(convertQuotes(pieces), true, endsIn)
			}
			doc = append(doc, pyLine{text: text, depth: stmtDepth, kind: pyRaw})
		case trimmed == "":
			doc = append(doc, pyLine{kind: pyBlank})
			continue
		case inBrackets || continued:
			text := sp.line(convertQuotes(pieces), false, endsIn)
			depth := stmtDepth + 1
			if strings.IndexByte(")]}", trimmed[0]) >= 0 {
				depth = stmtDepth
			}
			doc = append(doc, pyLine{text: text, depth: depth, kind: pyContinuation})
		case len(pieces) == 1 && pieces[0].kind == pieceComment:
			doc = append(doc, pyLine{text: trimmed, depth: pi.peek(indentWidth(raw)), kind: pyComment})
			continue
		default:
			word = firstWordRe.FindString(trimmed)
			stmtDepth = pi.statement(indentWidth(raw), word)
			doc = append(doc, pyLine{text: sp.line(convertQuotes(pieces), false, endsIn), depth: stmtDepth, kind: pyCode})
		}

		if endsIn {
			continue
		}
		code := strings.TrimRight(codeOf(pieces), " \t")
		continued = strings.HasSuffix(code, "\\")
		if sp.depth() == 0 && !continued {
			pi.finish(word, strings.HasSuffix(code, ":") && !lambdaTailRe.MatchString(code))
		}
	}

	doc = hoistImports(doc)

	out := make([]string, 0, len(doc))
	for _, l := range doc {
		switch l.kind {
		case pyBlank:
			if o.PreserveBlankLines {
				out = append(out, "")
			}
		case pyRaw:
			out = append(out, l.text)
		default:
			out = append(out, o.indent(l.depth)+l.text)
		}
	}
	return out
}

// convertQuotes turns single-quoted strings into double-quoted ones when
// the body holds no double quote or backslash.
func convertQuotes(pieces []piece) []piece {
	out := make([]piece, len(pieces))
	for i, pc := range pieces {
		out[i] = pc
		t := pc.text
		if pc.kind != pieceString || len(t) < 2 || t[0] != '\'' || t[len(t)-1] != '\'' || strings.Count(t, "'") != 2 {
			continue
		}
		body := t[1 : len(t)-1]
		if strings.ContainsAny(body, `"\`) {
			continue
		}
		out[i].text = `"` + body + `"`
	}
	return out
}

func isImport(l pyLine) bool {
	return l.kind == pyCode && l.depth == 0 && (strings.HasPrefix(l.text, "import ") || strings.HasPrefix(l.text, "from "))
}

// hoistImports moves top-level single-line imports below the module header
// (leading comments and docstring) and sorts them, __future__ first. It
// does nothing when any top-level import spans several lines.
func hoistImports(doc []pyLine) []pyLine {
	var imports []string
	last := -1
	for i, l := range doc {
		if !isImport(l) {
			continue
		}
		if i+1 < len(doc) && doc[i+1].kind == pyContinuation {
			return doc
		}
		if !slices.Contains(imports, l.text) {
			imports = append(imports, l.text)
		}
		last = i
	}
	if len(imports) == 0 {
		return doc
	}
	gap := 0
	for j := last + 1; j < len(doc) && doc[j].kind == pyBlank; j++ {
		gap++
	}

	headerEnd := 0
	for headerEnd < len(doc) && (doc[headerEnd].kind == pyBlank || doc[headerEnd].kind == pyComment) {
		headerEnd++
	}
	if headerEnd < len(doc) && doc[headerEnd].kind == pyCode && isDocstring(doc[headerEnd].text) {
		headerEnd++
		for headerEnd < len(doc) && doc[headerEnd].kind == pyRaw {
			headerEnd++
		}
	}
	header := doc[:headerEnd]
	for len(header) > 0 && header[len(header)-1].kind == pyBlank {
		header = header[:len(header)-1]
	}

	var rest []pyLine
	removed := false
	for _, l := range doc[headerEnd:] {
		if isImport(l) {
			removed = true
			continue
		}
		if l.kind == pyBlank && removed && len(rest) > 0 && rest[len(rest)-1].kind == pyBlank {
			continue
		}
		removed = false
		rest = append(rest, l)
	}
	for len(rest) > 0 && rest[0].kind == pyBlank {
		rest = rest[1:]
	}

	slices.SortStableFunc(imports, func(a, b string) int {
		fa, fb := strings.HasPrefix(a, "from __future__"), strings.HasPrefix(b, "from __future__")
		switch {
		case fa && !fb:
			return -1
		case fb && !fa:
			return 1
		}
		return strings.Compare(a, b)
	})

	out := make([]pyLine, 0, len(doc))
	out = append(out, header...)
	if len(header) > 0 {
		out = append(out, pyLine{kind: pyBlank})
	}
	for _, imp := range imports {
		out = append(out, pyLine{text: imp, kind: pyCode})
	}
	if len(rest) > 0 {
		for range max(1, gap) {
			out = append(out, pyLine{kind: pyBlank})
		}
	}
	return append(out, rest...)
}

func isDocstring(text string) bool {
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(text, q) {
			return true
		}
	}
	return false
}
