// Package diagnostics scans source text for syntax errors and warnings.
//
// Nothing here parses. Each language contributes line rules built from
// regular expressions and small state machines (bracket, indentation and
// tag stacks), so findings are heuristic: they catch the common mistakes
// and can miss or misreport unusual code. Rules labelled best-effort in
// their messages are the least reliable of all.
package diagnostics

import (
	"strings"
	"unicode/utf8"

	"github.com/panbanda/glint/pkg/analyzer/delimiter"
	"github.com/panbanda/glint/pkg/language"
)

// DefaultLongLineLength is the line length above which long_line fires.
const DefaultLongLineLength = 100

// Engine runs the rule set of a language over a document.
type Engine struct {
	longLine int
	disabled map[string]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLongLineLength overrides the long_line threshold.
func WithLongLineLength(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.longLine = n
		}
	}
}

// WithDisabled suppresses diagnostics of the given kinds.
func WithDisabled(kinds ...string) Option {
	return func(e *Engine) {
		for _, k := range kinds {
			e.disabled[k] = true
		}
	}
}

// New creates an Engine with default thresholds.
func New(opts ...Option) *Engine {
	e := &Engine{
		longLine: DefaultLongLineLength,
		disabled: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detect scans code with a default Engine.
func Detect(code string, tag language.Tag) Result {
	return New().Detect(code, tag)
}

type rule func(s *scan)

// languageRules is the per-language rule table. Languages without an
// entry get the bracket scan (when their profile enables it) and the
// common rules only.
var languageRules = map[language.Tag][]rule{
	language.JavaScript: javascriptRules,
	language.TypeScript: javascriptRules,
	language.Python:     pythonRules,
	language.Java:       javaRules,
	language.CPP:        cppRules,
	language.HTML:       htmlRules,
	language.CSS:        cssRules,
}

// Detect runs, in order, the delimiter scan, the language's own rules and
// the rules common to every language. Unsupported tags are scanned as
// JavaScript. Each call is independent.
func (e *Engine) Detect(code string, tag language.Tag) Result {
	if strings.TrimSpace(code) == "" {
		return NewResult(nil, nil)
	}

	p := language.MustLookup(language.Resolve(tag))
	s := newScan(code, p, e)

	if p.CheckBrackets {
		s.brackets()
	}
	for _, r := range languageRules[p.Tag] {
		r(s)
	}
	s.common()

	return NewResult(s.errors, s.warnings)
}

// scan is the per-call state shared by rules.
type scan struct {
	engine   *Engine
	profile  *language.Profile
	code     string
	lines    []string
	errors   []Diagnostic
	warnings []Diagnostic
}

func newScan(code string, p *language.Profile, e *Engine) *scan {
	lines := strings.Split(code, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return &scan{engine: e, profile: p, code: code, lines: lines}
}

func (s *scan) add(d Diagnostic) {
	if s.engine.disabled[d.Kind] {
		return
	}
	if d.Severity == SeverityError {
		s.errors = append(s.errors, d)
		return
	}
	s.warnings = append(s.warnings, d)
}

func (s *scan) errorAt(line, col int, kind, msg, suggestion string) {
	s.add(Diagnostic{Line: line, Column: col, Severity: SeverityError, Kind: kind, Message: msg, Suggestion: suggestion})
}

func (s *scan) warnAt(line, col int, kind, msg, suggestion string) {
	s.add(Diagnostic{Line: line, Column: col, Severity: SeverityWarning, Kind: kind, Message: msg, Suggestion: suggestion})
}

// nextNonBlank returns the trimmed text of the first non-blank line after
// index i, or "".
func (s *scan) nextNonBlank(i int) string {
	for j := i + 1; j < len(s.lines); j++ {
		if t := strings.TrimSpace(s.lines[j]); t != "" {
			return t
		}
	}
	return ""
}

func (s *scan) brackets() {
	p := s.profile
	sc := delimiter.New(delimiter.WithComments(p.LineComments, p.BlockComment))
	for _, is := range sc.Scan(s.code) {
		s.errorAt(is.Line, is.Column, is.Kind, is.Message, is.Suggestion)
	}
}

func (s *scan) common() {
	limit := s.engine.longLine
	for i, line := range s.lines {
		if strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
			s.warnAt(i+1, utf8.RuneCountInString(line), KindTrailingWhitespace,
				"Trailing whitespace", "Remove trailing spaces")
		}
	}
	for i, line := range s.lines {
		if utf8.RuneCountInString(line) > limit {
			s.warnAt(i+1, limit, KindLongLine,
				"Line too long", "Break long line into multiple lines")
		}
	}
}

// column converts a byte offset in line to a 1-indexed rune column.
func column(line string, offset int) int {
	if offset > len(line) {
		offset = len(line)
	}
	return utf8.RuneCountInString(line[:offset]) + 1
}

// endColumn is the column of the last character of line.
func endColumn(line string) int {
	return utf8.RuneCountInString(strings.TrimRight(line, " \t"))
}

func indentWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// maskLine blanks out string literal contents and a trailing line comment
// so rules can match code without tripping on text. Offsets are preserved.
// Quotes without a partner on the line leave the rest of the line as is.
func maskLine(line string, lineComments []string) string {
	b := []byte(line)
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c == '"' || c == '\'' || c == '`' {
			end := -1
			for j := i + 1; j < len(b); j++ {
				if b[j] == '\\' {
					j++
					continue
				}
				if b[j] == c {
					end = j
					break
				}
			}
			if end < 0 {
				continue
			}
			for j := i + 1; j < end; j++ {
				b[j] = ' '
			}
			i = end
			continue
		}
		for _, prefix := range lineComments {
			if strings.HasPrefix(string(b[i:]), prefix) {
				for j := i; j < len(b); j++ {
					b[j] = ' '
				}
				return string(b)
			}
		}
	}
	return string(b)
}
