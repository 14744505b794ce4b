// Package delimiter implements the string-aware bracket scanner shared by
// the diagnostic engine and the formatter.
package delimiter

import (
	"fmt"
	"strings"
)

// Issue kinds.
const (
	KindUnmatched = "unmatched_bracket"
	KindUnclosed  = "unclosed_bracket"
)

// Issue is a bracket problem at a 1-indexed line and column.
type Issue struct {
	Line       int
	Column     int
	Kind       string
	Char       rune
	Message    string
	Suggestion string
}

var pairs = map[rune]rune{
	'(': ')',
	'[': ']',
	'{': '}',
	'<': '>',
}

var openers = map[rune]rune{
	')': '(',
	']': '[',
	'}': '{',
	'>': '<',
}

// Matching returns the partner of a bracket character, or the character
// itself when it is not a bracket.
func Matching(r rune) rune {
	if c, ok := pairs[r]; ok {
		return c
	}
	if o, ok := openers[r]; ok {
		return o
	}
	return r
}

type entry struct {
	char   rune
	line   int
	column int
}

// Scanner walks source text once, skipping string literals and, when
// configured, comments.
type Scanner struct {
	lineComments []string
	blockOpen    string
	blockClose   string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithComments makes the scanner skip line comments starting with any of
// the given prefixes and block comments delimited by block.
func WithComments(line []string, block [2]string) Option {
	return func(s *Scanner) {
		s.lineComments = line
		s.blockOpen = block[0]
		s.blockClose = block[1]
	}
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan runs a comment-unaware scanner over code.
func Scan(code string) []Issue {
	return New().Scan(code)
}

// Scan reports unmatched closers and unclosed openers among (, [, { and <.
//
// A quote character opens a string that lasts until the same character
// appears again, across line breaks. Backslash escapes are not honoured,
// so an escaped quote ends the string early. '<' and '>' pair like any
// other bracket, which means comparison and arrow operators are reported
// too.
func (s *Scanner) Scan(code string) []Issue {
	var (
		issues  []Issue
		stack   []entry
		quote   rune
		inBlock bool
	)
	line, col := 1, 0
	runes := []rune(code)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		col++

		if r == '\n' {
			line++
			col = 0
			continue
		}

		if inBlock {
			if s.blockClose != "" && hasPrefixAt(runes, i, s.blockClose) {
				inBlock = false
				n := len([]rune(s.blockClose)) - 1
				i += n
				col += n
			}
			continue
		}

		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}

		if r == '"' || r == '\'' || r == '`' {
			quote = r
			continue
		}

		if s.blockOpen != "" && hasPrefixAt(runes, i, s.blockOpen) {
			inBlock = true
			n := len([]rune(s.blockOpen)) - 1
			i += n
			col += n
			continue
		}
		if s.startsLineComment(runes, i) {
			for i+1 < len(runes) && runes[i+1] != '\n' {
				i++
			}
			continue
		}

		if _, ok := pairs[r]; ok {
			stack = append(stack, entry{char: r, line: line, column: col})
			continue
		}
		if _, ok := openers[r]; !ok {
			continue
		}
		var top entry
		popped := len(stack) > 0
		if popped {
			top = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
		if !popped || pairs[top.char] != r {
			issues = append(issues, Issue{
				Line:       line,
				Column:     col,
				Kind:       KindUnmatched,
				Char:       r,
				Message:    fmt.Sprintf("Unmatched %c", r),
				Suggestion: fmt.Sprintf("Check for missing opening %c", openers[r]),
			})
		}
	}

	for _, e := range stack {
		issues = append(issues, Issue{
			Line:       e.line,
			Column:     e.column,
			Kind:       KindUnclosed,
			Char:       e.char,
			Message:    fmt.Sprintf("Unclosed %c", e.char),
			Suggestion: fmt.Sprintf("Add closing %c", pairs[e.char]),
		})
	}
	return issues
}

func (s *Scanner) startsLineComment(runes []rune, i int) bool {
	for _, prefix := range s.lineComments {
		if hasPrefixAt(runes, i, prefix) {
			return true
		}
	}
	return false
}

func hasPrefixAt(runes []rune, i int, prefix string) bool {
	for _, p := range prefix {
		if i >= len(runes) || runes[i] != p {
			return false
		}
		i++
	}
	return true
}

// Balance is the simplified check behind code validation: it pairs (), []
// and {} with no awareness of strings or comments and reports each stray
// closer plus a single entry when openers remain.
func Balance(code string) (stray []rune, unclosed int) {
	var stack []rune
	for _, r := range code {
		switch r {
		case '(', '[', '{':
			stack = append(stack, r)
		case ')', ']', '}':
			if len(stack) == 0 || pairs[stack[len(stack)-1]] != r {
				stray = append(stray, r)
				continue
			}
			stack = stack[:len(stack)-1]
		}
	}
	return stray, len(stack)
}

// Depth is the bracket effect of one line.
type Depth struct {
	// Leading counts closing brackets at the start of the trimmed line.
	Leading int
	// Delta is openers minus closers for the whole line.
	Delta int
	// InLiteral is set when the line begins inside a multi-line string or
	// block comment.
	InLiteral bool
}

// Tracker measures bracket depth line by line, carrying block comment and
// backtick string state between lines. It uses the same string rules as
// Scanner.
type Tracker struct {
	scanner *Scanner
	quote   rune
	inBlock bool
}

// NewTracker creates a Tracker that honours the given comment markers.
func NewTracker(opts ...Option) *Tracker {
	return &Tracker{scanner: New(opts...)}
}

// Measure consumes one line and reports its bracket effect.
func (t *Tracker) Measure(line string) Depth {
	d := Depth{InLiteral: t.inBlock || t.quote != 0}
	s := t.scanner
	runes := []rune(strings.TrimRight(line, "\r"))
	leading := !d.InLiteral

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if t.inBlock {
			if s.blockClose != "" && hasPrefixAt(runes, i, s.blockClose) {
				t.inBlock = false
				i += len([]rune(s.blockClose)) - 1
			}
			continue
		}
		if t.quote != 0 {
			if r == t.quote {
				t.quote = 0
			}
			continue
		}
		switch {
		case r == '"' || r == '\'' || r == '`':
			t.quote = r
			leading = false
		case s.blockOpen != "" && hasPrefixAt(runes, i, s.blockOpen):
			t.inBlock = true
			i += len([]rune(s.blockOpen)) - 1
			leading = false
		case s.startsLineComment(runes, i):
			i = len(runes)
		case r == '(' || r == '[' || r == '{':
			d.Delta++
			leading = false
		case r == ')' || r == ']' || r == '}':
			d.Delta--
			if leading {
				d.Leading++
			}
		case r == ' ' || r == '\t':
		default:
			leading = false
		}
	}
	if t.quote == '"' || t.quote == '\'' {
		t.quote = 0
	}
	return d
}
