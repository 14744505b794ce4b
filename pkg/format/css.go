package format

import (
	"strings"
)

// cssWriter collects formatted CSS lines.
type cssWriter struct {
	o        Options
	out      []string
	depth    int
	newlines int
}

func (w *cssWriter) emit(line string) {
	if w.newlines >= 2 && w.o.PreserveBlankLines && len(w.out) > 0 {
		w.out = append(w.out, "")
	}
	w.newlines = 0
	w.out = append(w.out, w.o.indent(w.depth)+line)
}

// formatCSS puts every rule header, declaration and closing brace on its own
// line. Declarations become "property: value;" and a missing final
// semicolon is added. Blank lines between items are kept once.
func formatCSS(text string, o Options) []string {
	w := &cssWriter{o: o}
	var buf strings.Builder
	parens := 0

	flush := func(terminated bool) {
		item := strings.TrimSpace(buf.String())
		buf.Reset()
		if item == "" {
			return
		}
		decl := cssDeclaration(item)
		if terminated || w.depth > 0 {
			decl += ";"
		}
		w.emit(decl)
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		pending := strings.TrimSpace(buf.String()) != ""
		switch {
		case strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/")
			stop := len(text)
			if end >= 0 {
				stop = i + 2 + end + 2
			}
			if pending {
				buf.WriteString(text[i:stop])
			} else {
				for j, line := range strings.Split(text[i:stop], "\n") {
					line = strings.TrimSpace(line)
					if j > 0 && strings.HasPrefix(line, "*") {
						line = " " + line
					}
					w.emit(line)
				}
			}
			i = stop - 1
		case c == '"' || c == '\'':
			end := scanQuoted(text, i+1, c)
			buf.WriteString(text[i:end])
			i = end - 1
		case c == '(':
			parens++
			buf.WriteByte(c)
		case c == ')':
			parens = max(0, parens-1)
			buf.WriteByte(c)
		case parens > 0:
			buf.WriteByte(c)
		case c == '{':
			w.emit(cssPrelude(strings.TrimSpace(buf.String())) + " {")
			buf.Reset()
			w.depth++
		case c == ';':
			flush(true)
		case c == '}':
			flush(true)
			w.depth = max(0, w.depth-1)
			w.emit("}")
		case c == '\n' && !pending:
			w.newlines++
		default:
			buf.WriteByte(c)
		}
	}
	flush(false)
	return w.out
}

// cssDeclaration normalizes "prop : value" to "prop: value". Items that
// start with '@' are statements such as @import and keep their colons.
func cssDeclaration(item string) string {
	item = collapseCSS(item)
	if strings.HasPrefix(item, "@") {
		return cssPrelude(item)
	}
	i := cssIndexTop(item, ':')
	if i < 0 {
		return item
	}
	prop := strings.TrimSpace(item[:i])
	value := strings.TrimSpace(item[i+1:])
	return prop + ": " + cssRewrite(value, func(c byte, nested bool) string {
		if c == ',' {
			return ", "
		}
		return ""
	})
}

// cssPrelude normalizes a selector list or at-rule prelude. Selector
// combinators get single spaces around them; inside an at-rule's
// parentheses a colon is followed by a space.
func cssPrelude(s string) string {
	s = collapseCSS(s)
	if strings.HasPrefix(s, "@") {
		return cssRewrite(s, func(c byte, nested bool) string {
			switch {
			case c == ',':
				return ", "
			case c == ':' && nested:
				return ": "
			}
			return ""
		})
	}
	return cssRewrite(s, func(c byte, nested bool) string {
		switch {
		case c == ',':
			return ", "
		case !nested && (c == '>' || c == '+' || c == '~'):
			return " " + string(c) + " "
		}
		return ""
	})
}

// cssRewrite replaces bytes outside strings and comments with fn's result,
// trimming spaces around each replacement. nested reports whether the byte
// is inside parentheses or brackets. An empty result keeps the byte.
func cssRewrite(s string, fn func(c byte, nested bool) string) string {
	var out []byte
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			end := scanQuoted(s, i+1, c)
			out = append(out, s[i:end]...)
			i = end - 1
			continue
		case strings.HasPrefix(s[i:], "/*"):
			end := len(s)
			if j := strings.Index(s[i+2:], "*/"); j >= 0 {
				end = i + 2 + j + 2
			}
			out = append(out, s[i:end]...)
			i = end - 1
			continue
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth = max(0, depth-1)
		}
		r := fn(c, depth > 0)
		if r == "" {
			out = append(out, c)
			continue
		}
		out = trimSpaceRight(out)
		if len(out) == 0 {
			r = strings.TrimLeft(r, " ")
		}
		out = append(out, r...)
		i = skipSpaces(s, i+1) - 1
	}
	return strings.TrimSpace(string(out))
}

// collapseCSS turns runs of whitespace outside strings and comments into a
// single space.
func collapseCSS(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			end := scanQuoted(s, i+1, c)
			out = append(out, s[i:end]...)
			i = end - 1
		case strings.HasPrefix(s[i:], "/*"):
			end := len(s)
			if j := strings.Index(s[i+2:], "*/"); j >= 0 {
				end = i + 2 + j + 2
			}
			out = append(out, s[i:end]...)
			i = end - 1
		case isSpaceByte(c):
			if len(out) > 0 && out[len(out)-1] != ' ' {
				out = append(out, ' ')
			}
		default:
			out = append(out, c)
		}
	}
	return strings.TrimSpace(string(out))
}

// cssIndexTop returns the index of the first c outside strings and
// parentheses, or -1.
func cssIndexTop(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			i = scanQuoted(s, i+1, s[i]) - 1
		case '(':
			depth++
		case ')':
			depth = max(0, depth-1)
		case c:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
