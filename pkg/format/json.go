package format

import (
	"bytes"
	"encoding/json"
	"strings"
)

const maxJSONIndent = 10

// formatJSON re-indents valid JSON keeping key order. Invalid input is
// repaired once (single quotes, bare keys, trailing commas, comments) and
// returned unchanged when it still does not parse.
func formatJSON(code string, o Options) string {
	src := []byte(strings.TrimSpace(code))
	if !json.Valid(src) {
		src = []byte(repairJSON(string(src)))
		if !json.Valid(src) {
			return code
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, src); err != nil {
		return code
	}
	indent := jsonIndent(o)
	if indent == "" {
		return compact.String()
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", indent); err != nil {
		return code
	}
	return out.String()
}

func jsonIndent(o Options) string {
	if o.UseTabs {
		return "\t"
	}
	return strings.Repeat(" ", min(max(0, o.IndentSize), maxJSONIndent))
}

// repairJSON fixes the mistakes hand-written JSON usually has. It works on
// the token level, so string contents are never altered beyond quote
// conversion.
func repairJSON(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			end := scanQuoted(s, i+1, '"')
			b.WriteString(s[i:end])
			i = end - 1
		case c == '\'':
			end := scanQuoted(s, i+1, '\'')
			b.WriteString(requote(s[i+1 : max(i+1, end-1)]))
			i = end - 1
		case strings.HasPrefix(s[i:], "//"):
			nl := strings.IndexByte(s[i:], '\n')
			if nl < 0 {
				return b.String()
			}
			i += nl - 1
		case strings.HasPrefix(s[i:], "/*"):
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += 2 + end + 1
		case c == ',':
			if next := skipJSONSpace(s, i+1); next < len(s) && (s[next] == '}' || s[next] == ']') {
				continue
			}
			b.WriteByte(c)
		case isIdentByte(c) && (i == 0 || !isIdentByte(s[i-1])):
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			if k := skipJSONSpace(s, j); k < len(s) && s[k] == ':' {
				b.WriteString(`"` + s[i:j] + `"`)
			} else {
				b.WriteString(s[i:j])
			}
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// requote turns the body of a single-quoted string into a double-quoted
// JSON string.
func requote(body string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case c == '\\' && i+1 < len(body) && body[i+1] == '\'':
			b.WriteByte('\'')
			i++
		case c == '\\' && i+1 < len(body):
			b.WriteString(body[i : i+2])
			i++
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// skipJSONSpace skips whitespace and comments.
func skipJSONSpace(s string, i int) int {
	for i < len(s) {
		switch {
		case isSpaceByte(s[i]):
			i++
		case strings.HasPrefix(s[i:], "//"):
			nl := strings.IndexByte(s[i:], '\n')
			if nl < 0 {
				return len(s)
			}
			i += nl
		case strings.HasPrefix(s[i:], "/*"):
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return len(s)
			}
			i += 2 + end + 2
		default:
			return i
		}
	}
	return i
}
