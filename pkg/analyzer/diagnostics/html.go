package diagnostics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/panbanda/glint/pkg/language"
)

var htmlRules = []rule{
	checkHTMLTags,
	checkDoctype,
	checkHTMLLines,
}

var (
	htmlTagRe     = regexp.MustCompile(`<(/?)([A-Za-z][\w-]*)[^>]*>`)
	imgTagRe      = regexp.MustCompile(`(?i)<img\b[^>]*>?`)
	altAttrRe     = regexp.MustCompile(`(?i)\balt\s*=`)
	doctypeRe     = regexp.MustCompile(`(?i)<!doctype\b`)
	rawTextOpenRe = regexp.MustCompile(`(?i)^<(script|style)\b[^>]*>`)
	deprecatedRe  = regexp.MustCompile(`(?i)<(center|font|marquee|blink)\b`)
)

// maskHTML blanks comments and the bodies of script and style elements so
// the tag scan only sees markup. Newlines survive, keeping positions intact.
func maskHTML(code string) string {
	b := []byte(code)
	blank := func(from, to int) {
		for k := from; k < to; k++ {
			if b[k] != '\n' {
				b[k] = ' '
			}
		}
	}
	for i := 0; i < len(code); {
		rest := code[i:]
		if strings.HasPrefix(rest, "<!--") {
			end := strings.Index(rest[4:], "-->")
			if end < 0 {
				blank(i, len(code))
				break
			}
			blank(i, i+4+end+3)
			i += 4 + end + 3
			continue
		}
		if code[i] != '<' {
			i++
			continue
		}
		if loc := rawTextOpenRe.FindStringSubmatchIndex(rest); loc != nil {
			name := strings.ToLower(rest[loc[2]:loc[3]])
			bodyStart := i + loc[1]
			closeAt := strings.Index(strings.ToLower(code[bodyStart:]), "</"+name)
			if closeAt < 0 {
				blank(bodyStart, len(code))
				break
			}
			blank(bodyStart, bodyStart+closeAt)
			i = bodyStart + closeAt
			continue
		}
		i++
	}
	return string(b)
}

type openTag struct {
	name      string
	line, col int
}

// checkHTMLTags runs the tag stack. Void elements and self-closed tags
// never open a level, and closing tags of void elements are ignored.
func checkHTMLTags(s *scan) {
	masked := maskHTML(s.code)
	var stack []openTag
	for _, m := range htmlTagRe.FindAllStringSubmatchIndex(masked, -1) {
		full := masked[m[0]:m[1]]
		name := masked[m[4]:m[5]]
		closing := m[3] > m[2]
		line, col := position(s.code, m[0])

		if language.IsVoidElement(name) {
			continue
		}
		if !closing {
			if !strings.HasSuffix(full, "/>") {
				stack = append(stack, openTag{name: name, line: line, col: col})
			}
			continue
		}

		if len(stack) == 0 {
			s.errorAt(line, col, KindUnexpectedClosingTag,
				fmt.Sprintf("Unexpected closing tag: </%s>", name),
				fmt.Sprintf("Remove extra closing tag or add opening <%s>", name))
			continue
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !strings.EqualFold(top.name, name) {
			s.errorAt(line, col, KindMismatchedTags,
				fmt.Sprintf("Mismatched tags: expected </%s> but found </%s>", top.name, name),
				fmt.Sprintf("Change to </%s> or fix opening tag", top.name))
		}
	}
	for _, t := range stack {
		s.errorAt(t.line, t.col, KindUnclosedTag,
			fmt.Sprintf("Unclosed tag: <%s>", t.name),
			fmt.Sprintf("Add closing </%s> tag", t.name))
	}
}

func checkDoctype(s *scan) {
	if !doctypeRe.MatchString(s.code) {
		s.warnAt(1, 1, KindMissingDoctype,
			"Missing DOCTYPE declaration", "Add <!DOCTYPE html> at the beginning")
	}
}

func checkHTMLLines(s *scan) {
	for i, line := range strings.Split(maskHTML(s.code), "\n") {
		n := i + 1
		orig := s.lines[i]
		for _, loc := range imgTagRe.FindAllStringIndex(line, -1) {
			if !altAttrRe.MatchString(line[loc[0]:loc[1]]) {
				s.warnAt(n, column(orig, loc[0]), KindMissingAlt,
					"Image missing alt attribute", "Add alt attribute for accessibility")
			}
		}
		for _, m := range deprecatedRe.FindAllStringSubmatchIndex(line, -1) {
			tag := strings.ToLower(line[m[2]:m[3]])
			s.warnAt(n, column(orig, m[0]), KindDeprecatedTag,
				fmt.Sprintf("Deprecated HTML tag: <%s>", tag),
				fmt.Sprintf("Use CSS instead of <%s>", tag))
		}
	}
}

// position converts a byte offset in text to a 1-indexed line and column.
func position(text string, offset int) (int, int) {
	line := strings.Count(text[:offset], "\n") + 1
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	return line, column(text[start:], offset-start)
}
