package format

import (
	"regexp"
	"strings"

	"github.com/panbanda/glint/pkg/language"
)

type pieceKind int

const (
	pieceCode pieceKind = iota
	pieceString
	pieceComment
)

// piece is a run of one line that is either code, a string literal or a
// comment. Only code pieces are ever rewritten.
type piece struct {
	kind pieceKind
	text string
}

// lexer splits lines into pieces. Multi-line strings and block comments
// carry over from one line to the next.
type lexer struct {
	lineComments []string
	blockOpen    string
	blockClose   string
	quotes       string
	multiQuotes  []string
	rawMulti     bool
	charQuotes   bool
	regex        bool
	wordComments bool

	closer   string
	openKind pieceKind
	escapes  bool
}

func newLexer(p *language.Profile) *lexer {
	lx := &lexer{
		lineComments: p.LineComments,
		blockOpen:    p.BlockComment[0],
		blockClose:   p.BlockComment[1],
		quotes:       `"'`,
	}
	switch p.Tag {
	case language.JavaScript, language.TypeScript:
		lx.multiQuotes = []string{"`"}
		lx.regex = true
	case language.Go:
		lx.multiQuotes = []string{"`"}
		lx.rawMulti = true
	case language.Python:
		lx.multiQuotes = []string{`"""`, `'''`}
	case language.Rust:
		lx.charQuotes = true
	case language.Bash:
		lx.wordComments = true
	}
	return lx
}

// inLiteral reports whether the next line starts inside a string or block
// comment.
func (lx *lexer) inLiteral() bool {
	return lx.closer != ""
}

func (lx *lexer) split(line string) []piece {
	var out []piece
	i, start := 0, 0

	if lx.closer != "" {
		end, ok := lx.findClose(line, 0)
		if !ok {
			return []piece{{kind: lx.openKind, text: line}}
		}
		out = append(out, piece{kind: lx.openKind, text: line[:end]})
		lx.closer = ""
		i, start = end, end
	}

	flush := func() {
		if i > start {
			out = append(out, piece{kind: pieceCode, text: line[start:i]})
		}
	}

	for i < len(line) {
		rest := line[i:]
		switch {
		case lx.blockOpen != "" && strings.HasPrefix(rest, lx.blockOpen):
			flush()
			if end, ok := lx.open(line, i, lx.blockClose, pieceComment, false, len(lx.blockOpen)); ok {
				out = append(out, piece{kind: pieceComment, text: line[i:end]})
				i, start = end, end
				continue
			}
			return append(out, piece{kind: pieceComment, text: rest})

		case lx.lineCommentAt(rest) && (!lx.wordComments || i == 0 || strings.IndexByte(" \t;", line[i-1]) >= 0):
			flush()
			return append(out, piece{kind: pieceComment, text: rest})
		}

		if q := lx.multiQuoteAt(rest); q != "" {
			flush()
			if end, ok := lx.open(line, i, q, pieceString, !lx.rawMulti, len(q)); ok {
				out = append(out, piece{kind: pieceString, text: line[i:end]})
				i, start = end, end
				continue
			}
			return append(out, piece{kind: pieceString, text: rest})
		}

		c := line[i]
		if strings.IndexByte(lx.quotes, c) >= 0 && (!lx.charQuotes || c != '\'' || charLiteralRe.MatchString(rest)) {
			flush()
			end := scanQuoted(line, i+1, c)
			out = append(out, piece{kind: pieceString, text: line[i:end]})
			i, start = end, end
			continue
		}
		if lx.regex && c == '/' && regexAllowed(line[:i]) {
			if end := scanRegex(line, i+1); end > 0 {
				flush()
				out = append(out, piece{kind: pieceString, text: line[i:end]})
				i, start = end, end
				continue
			}
		}
		i++
	}
	flush()
	return out
}

// open starts a literal at i that may span lines. It returns the end of
// the literal when it closes on the same line.
func (lx *lexer) open(line string, i int, closer string, kind pieceKind, escapes bool, width int) (int, bool) {
	lx.closer, lx.openKind, lx.escapes = closer, kind, escapes
	end, ok := lx.findClose(line, i+width)
	if ok {
		lx.closer = ""
	}
	return end, ok
}

func (lx *lexer) findClose(line string, from int) (int, bool) {
	for j := from; j < len(line); j++ {
		if lx.escapes && line[j] == '\\' {
			j++
			continue
		}
		if strings.HasPrefix(line[j:], lx.closer) {
			return j + len(lx.closer), true
		}
	}
	return len(line), false
}

func (lx *lexer) lineCommentAt(rest string) bool {
	for _, prefix := range lx.lineComments {
		if strings.HasPrefix(rest, prefix) {
			return true
		}
	}
	return false
}

func (lx *lexer) multiQuoteAt(rest string) string {
	for _, q := range lx.multiQuotes {
		if strings.HasPrefix(rest, q) {
			return q
		}
	}
	return ""
}

// charLiteralRe matches a Rust char literal, which tells it apart from a
// lifetime such as 'a.
var charLiteralRe = regexp.MustCompile(`^'(?:\\(?:u\{[0-9A-Fa-f]+\}|x[0-9A-Fa-f]{2}|.)|[^'\\])'`)

// scanQuoted returns the index just past the closing quote, or the end of
// the line when the string is unterminated.
func scanQuoted(line string, from int, quote byte) int {
	for j := from; j < len(line); j++ {
		switch line[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(line)
}

var regexKeywordRe = regexp.MustCompile(`(?:^|[^\w$])(?:return|typeof|case|in|of|delete|void|throw|new|yield)\s*$`)

// regexAllowed reports whether a '/' following before starts a regex
// literal rather than a division.
func regexAllowed(before string) bool {
	trimmed := strings.TrimRight(before, " \t")
	if trimmed == "" || regexKeywordRe.MatchString(trimmed) {
		return true
	}
	return strings.ContainsRune("(,=:[!&|?{};+-*%<>~^", rune(trimmed[len(trimmed)-1]))
}

// scanRegex returns the end of a regex literal whose body starts at from,
// flags included, or -1 when the line ends first.
func scanRegex(line string, from int) int {
	if from < len(line) && (line[from] == '/' || line[from] == '*') {
		return -1
	}
	inClass := false
	for j := from; j < len(line); j++ {
		switch c := line[j]; {
		case c == '\\':
			j++
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			j++
			for j < len(line) && (line[j] >= 'a' && line[j] <= 'z') {
				j++
			}
			return j
		}
	}
	return -1
}

// codeOf joins the code pieces of a line.
func codeOf(pieces []piece) string {
	var b strings.Builder
	for _, p := range pieces {
		if p.kind == pieceCode {
			b.WriteString(p.text)
		}
	}
	return b.String()
}
