package format

import (
	"regexp"
	"strings"

	"github.com/panbanda/glint/pkg/language"
)

type tagKind int

const (
	tagOpen tagKind = iota
	tagClose
	tagComment
	tagOther
)

// tagEvent is one tag found on a line. complete is false when the tag runs
// past the end of the line.
type tagEvent struct {
	kind       tagKind
	name       string
	attrs      string
	self       bool
	complete   bool
	start, end int
}

var tagNameRe = regexp.MustCompile(`^[A-Za-z][\w:.-]*`)

// implicitClosers lists, for an opening tag, the open elements it ends.
var implicitClosers = map[string][]string{
	"li":     {"li"},
	"p":      {"p"},
	"td":     {"td", "th"},
	"th":     {"td", "th"},
	"tr":     {"tr", "td", "th"},
	"option": {"option"},
	"dt":     {"dt", "dd"},
	"dd":     {"dt", "dd"},
}

// markup re-indents HTML from a stack of open elements. The bodies of pre
// and textarea are kept verbatim; script and style bodies are indented as
// JavaScript and CSS.
type markup struct {
	o       Options
	stack   []string
	comment bool
	// pending names a tag whose attributes continue on later lines.
	pending string
	raw     string
	body    *braceIndenter
}

func formatMarkup(lines []string, o Options) []string {
	m := &markup{o: o}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = m.line(out, line)
	}
	return out
}

func (m *markup) line(out []string, raw string) []string {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	switch m.raw {
	case "":
	case "pre", "textarea":
		if strings.Contains(strings.ToLower(raw), "</"+m.raw) {
			m.pop(m.raw)
			m.raw = ""
		}
		return append(out, raw)
	default:
		if !strings.HasPrefix(lower, "</"+m.raw) {
			if trimmed == "" {
				return m.blank(out)
			}
			startsIn := m.body.lx.inLiteral()
			depth := m.body.measure(trimmed)
			if startsIn {
				return append(out, raw)
			}
			return append(out, m.o.indent(len(m.stack)+depth)+trimmed)
		}
		m.raw, m.body = "", nil
	}

	if trimmed == "" {
		return m.blank(out)
	}
	if m.comment {
		if strings.Contains(trimmed, "-->") {
			m.comment = false
		}
		return append(out, m.o.indent(len(m.stack))+trimmed)
	}

	if m.pending != "" {
		end := tagEnd(trimmed, 0)
		if end < 0 {
			return append(out, m.o.indent(len(m.stack)+1)+trimmed)
		}
		depth := len(m.stack) + 1
		if end == 0 || end == 1 && trimmed[0] == '/' {
			depth = len(m.stack)
		}
		name := m.pending
		m.pending = ""
		if trimmed[max(0, end-1)] != '/' && !language.IsVoidElement(name) {
			m.opened(name, trimmed, end+1)
		}
		if m.raw != "" {
			return append(out, m.o.indent(depth)+trimmed)
		}
		text, _ := m.scan(trimmed, end+1)
		return append(out, m.o.indent(depth)+text)
	}

	text, depth := m.scan(trimmed, 0)
	return append(out, m.o.indent(depth)+text)
}

func (m *markup) blank(out []string) []string {
	if m.o.PreserveBlankLines {
		return append(out, "")
	}
	return out
}

// scan walks the tags of a trimmed line from position from, updating the
// element stack, and returns the line with its tags normalized along with
// the depth the line prints at.
func (m *markup) scan(line string, from int) (string, int) {
	var b strings.Builder
	b.WriteString(line[:from])
	emit := -1
	i, lead := from, from

	for {
		ev, ok := nextTag(line, i)
		if !ok {
			break
		}
		b.WriteString(line[i:ev.start])
		leading := emit < 0 && strings.TrimSpace(line[lead:ev.start]) == ""
		if emit < 0 && !leading {
			emit = len(m.stack)
		}
		if leading {
			lead = ev.end
		}

		switch ev.kind {
		case tagComment:
			b.WriteString(line[ev.start:ev.end])
			if !ev.complete {
				m.comment = true
			}
		case tagOther:
			b.WriteString(line[ev.start:ev.end])
		case tagClose:
			if ev.complete {
				b.WriteString("</" + ev.name + ">")
			} else {
				b.WriteString(line[ev.start:ev.end])
			}
			m.pop(strings.ToLower(ev.name))
		case tagOpen:
			name := strings.ToLower(ev.name)
			m.closeImplicit(name)
			if leading {
				emit = len(m.stack)
			}
			if !ev.complete {
				b.WriteString(line[ev.start:ev.end])
				m.pending = name
				break
			}
			b.WriteString(openTag(ev))
			if !ev.self && !language.IsVoidElement(name) {
				if next := m.opened(name, line, ev.end); next > ev.end {
					b.WriteString(line[ev.end:next])
					i = next
					continue
				}
			}
		}
		i = ev.end
		if m.comment || m.pending != "" || m.raw != "" {
			b.WriteString(line[i:])
			i = len(line)
			break
		}
	}
	b.WriteString(line[i:])
	if emit < 0 {
		emit = len(m.stack)
	}
	return b.String(), emit
}

// opened pushes an element whose start tag ends at end. For raw text
// elements it returns the index where the element's end tag starts when
// that is on the same line, so the body is skipped, and otherwise enters
// raw mode.
func (m *markup) opened(name, line string, end int) int {
	m.stack = append(m.stack, name)
	switch name {
	case "pre", "textarea", "script", "style":
	default:
		return end
	}
	if idx := strings.Index(strings.ToLower(line[end:]), "</"+name); idx >= 0 {
		return end + idx
	}
	m.raw = name
	switch name {
	case "script":
		m.body = &braceIndenter{lx: newLexer(language.MustLookup(language.JavaScript))}
	case "style":
		m.body = &braceIndenter{lx: newLexer(language.MustLookup(language.CSS))}
	}
	return len(line)
}

func (m *markup) pop(name string) {
	for i := len(m.stack) - 1; i >= 0; i-- {
		if m.stack[i] == name {
			m.stack = m.stack[:i]
			return
		}
	}
}

func (m *markup) closeImplicit(name string) {
	closers := implicitClosers[name]
	for len(m.stack) > 0 {
		top := m.stack[len(m.stack)-1]
		found := false
		for _, c := range closers {
			if c == top {
				found = true
				break
			}
		}
		if !found {
			return
		}
		m.stack = m.stack[:len(m.stack)-1]
	}
}

func nextTag(s string, i int) (tagEvent, bool) {
	for ; i+1 < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		rest := s[i+1:]
		switch c := rest[0]; {
		case strings.HasPrefix(rest, "!--"):
			end := strings.Index(s[i+4:], "-->")
			if end < 0 {
				return tagEvent{kind: tagComment, start: i, end: len(s)}, true
			}
			return tagEvent{kind: tagComment, complete: true, start: i, end: i + 4 + end + 3}, true
		case c == '!' || c == '?':
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				return tagEvent{kind: tagOther, start: i, end: len(s)}, true
			}
			return tagEvent{kind: tagOther, complete: true, start: i, end: i + 1 + end + 1}, true
		case c == '/':
			name := tagNameRe.FindString(rest[1:])
			if name == "" {
				continue
			}
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				return tagEvent{kind: tagClose, name: name, start: i, end: len(s)}, true
			}
			return tagEvent{kind: tagClose, name: name, complete: true, start: i, end: i + 1 + end + 1}, true
		default:
			name := tagNameRe.FindString(rest)
			if name == "" {
				continue
			}
			j := i + 1 + len(name)
			end := tagEnd(s, j)
			if end < 0 {
				return tagEvent{kind: tagOpen, name: name, attrs: s[j:], start: i, end: len(s)}, true
			}
			attrs := strings.TrimSpace(s[j:end])
			self := strings.HasSuffix(attrs, "/")
			return tagEvent{
				kind:     tagOpen,
				name:     name,
				attrs:    strings.TrimSpace(strings.TrimSuffix(attrs, "/")),
				self:     self,
				complete: true,
				start:    i,
				end:      end + 1,
			}, true
		}
	}
	return tagEvent{}, false
}

// tagEnd returns the index of the '>' that ends a tag, skipping quoted
// attribute values, or -1.
func tagEnd(s string, from int) int {
	var quote byte
	for j := from; j < len(s); j++ {
		switch c := s[j]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return j
		}
	}
	return -1
}

// openTag rebuilds a start tag with single spaces between attributes,
// unquoted values double-quoted, and " />" on void and self-closing tags.
func openTag(ev tagEvent) string {
	var b strings.Builder
	b.WriteString("<" + ev.name)
	for _, a := range splitAttrs(ev.attrs) {
		b.WriteString(" " + a)
	}
	if ev.self || language.IsVoidElement(strings.ToLower(ev.name)) {
		b.WriteString(" />")
	} else {
		b.WriteString(">")
	}
	return b.String()
}

func splitAttrs(s string) []string {
	var attrs []string
	i := 0
	for {
		i = skipSpace(s, i)
		if i >= len(s) {
			return attrs
		}
		start := i
		for i < len(s) && !isSpaceByte(s[i]) && s[i] != '=' {
			if s[i] == '"' || s[i] == '\'' {
				i = scanAttrQuote(s, i)
				continue
			}
			i++
		}
		name := s[start:i]
		j := skipSpace(s, i)
		if j >= len(s) || s[j] != '=' {
			attrs = append(attrs, name)
			continue
		}
		j = skipSpace(s, j+1)
		if j >= len(s) {
			attrs = append(attrs, name+`=""`)
			return attrs
		}
		var value string
		switch s[j] {
		case '"', '\'':
			end := scanAttrQuote(s, j)
			value, i = s[j:end], end
		default:
			end := j
			for end < len(s) && !isSpaceByte(s[end]) {
				end++
			}
			value, i = s[j:end], end
			if strings.Contains(value, `"`) {
				value = "'" + value + "'"
			} else {
				value = `"` + value + `"`
			}
		}
		attrs = append(attrs, name+"="+value)
	}
}

func scanAttrQuote(s string, i int) int {
	if end := strings.IndexByte(s[i+1:], s[i]); end >= 0 {
		return i + 1 + end + 1
	}
	return len(s)
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpaceByte(s[i]) {
		i++
	}
	return i
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
