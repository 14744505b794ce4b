// Package format reformats source code per language. Each language runs a
// fixed pipeline: line endings are normalized, spacing is cleaned up inside
// code (never inside strings or comments), language-specific passes run, and
// every line is re-indented from a depth counter. Nothing is parsed into a
// tree, so the output is a best effort and the input comes back unchanged
// when a pass fails.
package format

import (
	"strings"

	"github.com/panbanda/glint/pkg/language"
)

// Options controls formatting.
type Options struct {
	IndentSize         int  `json:"indent_size" toon:"indent_size" koanf:"indent_size"`
	UseTabs            bool `json:"use_tabs" toon:"use_tabs" koanf:"use_tabs"`
	MaxLineLength      int  `json:"max_line_length" toon:"max_line_length" koanf:"max_line_length"`
	PreserveBlankLines bool `json:"preserve_blank_lines" toon:"preserve_blank_lines" koanf:"preserve_blank_lines"`
}

// DefaultOptions returns two-space indentation, an 80 column limit and
// blank lines kept.
func DefaultOptions() Options {
	return Options{
		IndentSize:         2,
		UseTabs:            false,
		MaxLineLength:      80,
		PreserveBlankLines: true,
	}
}

func (o Options) unit() string {
	if o.UseTabs {
		return "\t"
	}
	return strings.Repeat(" ", max(0, o.IndentSize))
}

func (o Options) indent(depth int) string {
	return strings.Repeat(o.unit(), max(0, depth))
}

// Format returns code formatted for tag. Unsupported tags use the
// JavaScript pipeline. Blank input is returned as is, and so is any input
// the pipeline panics on.
func Format(code string, tag language.Tag, opts Options) (out string) {
	if strings.TrimSpace(code) == "" {
		return code
	}
	defer func() {
		if r := recover(); r != nil {
			out = code
		}
	}()

	p := language.MustLookup(language.Resolve(tag))
	if p.Tag == language.JSON {
		return formatJSON(code, opts)
	}

	text := normalizeLineEndings(code)
	trailingNewline := strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")

	var result []string
	switch {
	case p.Tag == language.CSS:
		result = formatCSS(text, opts)
	case p.Indent == language.IndentColon:
		result = formatPython(lines, p, opts)
	case p.Indent == language.IndentTags:
		result = formatMarkup(lines, opts)
	case p.Indent == language.IndentKeywords:
		result = formatKeywords(lines, p, opts)
	case p.Indent == language.IndentPreserve:
		result = preserve(lines, p)
	default:
		result = formatBraces(lines, p, opts)
	}

	out = strings.Join(result, "\n")
	if trailingNewline {
		out += "\n"
	}
	return out
}

func normalizeLineEndings(code string) string {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	return strings.ReplaceAll(code, "\r", "\n")
}

// preserve keeps indentation for languages where it carries meaning.
// Trailing whitespace is dropped except in Markdown, where two trailing
// spaces are a line break.
func preserve(lines []string, p *language.Profile) []string {
	if p.Tag == language.Markdown {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.TrimRight(line, " \t")
	}
	return out
}

// indentWidth measures leading whitespace with tabs advancing to the next
// multiple of eight.
func indentWidth(line string) int {
	w := 0
	for _, r := range line {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 8 - w%8
		default:
			return w
		}
	}
	return w
}
