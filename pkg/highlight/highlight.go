package highlight

import (
	"html"
	"strings"

	"github.com/panbanda/glint/pkg/language"
)

// HighlightLine renders one line as escaped markup. Every token's text is
// escaped before non-plain tokens are wrapped in
// <span class="token KIND">…</span>.
func HighlightLine(line string, tag language.Tag) string {
	var b strings.Builder
	render(&b, Tokenize(line, tag))
	return b.String()
}

// Highlight renders a whole document, one line per input line, carrying
// block comments and multi-line strings across lines. It never panics:
// on an internal fault it returns the escaped input as plain text.
func Highlight(code string, tag language.Tag) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = html.EscapeString(code)
		}
	}()

	tz := NewTokenizer(tag)
	var b strings.Builder
	b.Grow(len(code) * 2)
	for i, line := range strings.Split(code, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		render(&b, tz.Line(line))
	}
	return b.String()
}

// Tokens tokenizes a whole document, returning one token slice per line.
func Tokens(code string, tag language.Tag) [][]Token {
	tz := NewTokenizer(tag)
	lines := strings.Split(code, "\n")
	out := make([][]Token, len(lines))
	for i, line := range lines {
		out[i] = tz.Line(line)
	}
	return out
}

func render(b *strings.Builder, toks []Token) {
	for _, tok := range toks {
		text := html.EscapeString(tok.Text)
		if tok.Kind == KindPlain {
			b.WriteString(text)
			continue
		}
		b.WriteString(`<span class="token `)
		b.WriteString(tok.Kind.String())
		b.WriteString(`">`)
		b.WriteString(text)
		b.WriteString(`</span>`)
	}
}
