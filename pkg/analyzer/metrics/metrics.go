// Package metrics computes line, complexity, quality and structure metrics
// for a source document from its language profile. Counts come from
// regular expressions and keyword scans, not from a parse, so every score
// is an estimate.
package metrics

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/panbanda/glint/pkg/analyzer/delimiter"
	"github.com/panbanda/glint/pkg/language"
)

// Default thresholds.
const (
	DefaultLongLineLength = 100
	DefaultMaxNesting     = 3
)

// Engine computes reports. It holds only thresholds and is safe for
// concurrent use.
type Engine struct {
	longLine   int
	maxNesting int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLongLineLength sets the length above which a line is a quality issue.
func WithLongLineLength(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.longLine = n
		}
	}
}

// WithMaxNesting sets the nesting depth above which code is deeply nested.
func WithMaxNesting(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxNesting = n
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		longLine:   DefaultLongLineLength,
		maxNesting: DefaultMaxNesting,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze computes a report with default thresholds.
func Analyze(code string, tag language.Tag) Report {
	return New().Analyze(code, tag)
}

// Analyze computes the report for code. Blank input yields EmptyReport.
func (e *Engine) Analyze(code string, tag language.Tag) Report {
	if strings.TrimSpace(code) == "" {
		return EmptyReport()
	}

	p := language.MustLookup(language.Resolve(tag))
	lines := strings.Split(code, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}

	r := Report{
		Basic:      basicMetrics(code, lines, p),
		Complexity: complexityMetrics(lines, p),
	}
	r.Quality = e.qualityMetrics(lines, p, r.Basic, r.Complexity)
	r.Structure = structureMetrics(code, lines, p)
	r.Issues = e.issues(lines, p, r.Quality.IssueBreakdown)
	r.Overall = overallScore(r)
	return r
}

func basicMetrics(code string, lines []string, p *language.Profile) Basic {
	b := Basic{TotalLines: len(lines)}
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			b.CodeLines++
		}
		if p.IsCommentLine(line) {
			b.CommentLines++
		}
	}
	b.EmptyLines = b.TotalLines - b.CodeLines
	if b.CodeLines > 0 {
		b.CommentRatio = float64(b.CommentLines) / float64(b.CodeLines)
	}
	b.TotalCharacters = utf8.RuneCountInString(code)
	for _, r := range code {
		if !unicode.IsSpace(r) {
			b.NonWhitespaceCharacters++
		}
	}
	b.AverageLineLength = float64(b.TotalCharacters) / float64(b.TotalLines)
	return b
}

// complexityMetrics counts control keywords line by line. Each start
// keyword opens one nesting level and each end keyword closes one, floored
// at zero. Comment lines are skipped.
func complexityMetrics(lines []string, p *language.Profile) Complexity {
	var c Complexity
	nesting := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || p.IsCommentLine(trimmed) {
			continue
		}
		starts := p.CountControlStarts(trimmed)
		c.ControlStructures += starts
		nesting += starts
		c.MaxNesting = max(c.MaxNesting, nesting)
		nesting = max(0, nesting-p.CountControlEnds(trimmed))
	}
	c.CyclomaticComplexity = c.ControlStructures + 1
	c.ComplexityLevel = ComplexityLevel(c.CyclomaticComplexity)
	return c
}

func (e *Engine) qualityMetrics(lines []string, p *language.Profile, b Basic, c Complexity) Quality {
	codeLines := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" && !p.IsCommentLine(line) {
			codeLines++
		}
	}
	maintainability := clampRound(100 - float64(codeLines)*0.1 - float64(c.CyclomaticComplexity)*2)
	readability := clampRound(100 - math.Max(0, (b.AverageLineLength-40)*2) + b.CommentRatio*20)

	breakdown := make([]Issue, 0)
	for i, line := range lines {
		if n := utf8.RuneCountInString(line); n > e.longLine {
			breakdown = append(breakdown, Issue{
				Type:     CategoryLongLine,
				Severity: SeverityLow,
				Message:  fmt.Sprintf("Line %d is too long (%d characters)", i+1, n),
				Line:     i + 1,
			})
		}
	}
	if c.MaxNesting > e.maxNesting {
		breakdown = append(breakdown, Issue{
			Type:     CategoryDeepNesting,
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("Code has deep nesting (%d levels)", c.MaxNesting),
		})
	}

	return Quality{
		MaintainabilityIndex: maintainability,
		ReadabilityScore:     readability,
		QualityIssues:        len(breakdown),
		IssueBreakdown:       breakdown,
		QualityLevel:         QualityLevel(maintainability, len(breakdown)),
	}
}

// controlNames are words a call-shaped function pattern can catch that
// are really control statements.
var controlNames = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"foreach": true, "elif": true, "with": true, "return": true, "function": true,
}

func structureMetrics(code string, lines []string, p *language.Profile) Structure {
	var s Structure
	var lengths []float64
	if p.FunctionPattern != nil {
		for _, m := range p.FunctionPattern.FindAllStringSubmatchIndex(code, -1) {
			if controlNames[firstGroup(code, m)] {
				continue
			}
			start := strings.Count(code[:m[0]], "\n")
			lengths = append(lengths, float64(functionLength(lines, start, p)))
		}
	}
	s.Functions = len(lengths)
	if len(lengths) > 0 {
		s.AvgFunctionLength = stat.Mean(lengths, nil)
		s.MaxFunctionLength = int(floats.Max(lengths))
	}
	s.Classes = countMatches(p.ClassPattern, code)
	s.Imports = countMatches(p.ImportPattern, code)
	s.HasMainFunction = p.MainPattern != nil && p.MainPattern.MatchString(code)
	s.StructureScore = structureScore(s.Functions, s.Classes, s.AvgFunctionLength)
	return s
}

func countMatches(re *regexp.Regexp, code string) int {
	if re == nil {
		return 0
	}
	return len(re.FindAllStringIndex(code, -1))
}

// firstGroup returns the first non-empty capture group of a match.
func firstGroup(code string, m []int) string {
	for g := 2; g+1 < len(m); g += 2 {
		if m[g] >= 0 && m[g+1] > m[g] {
			return code[m[g]:m[g+1]]
		}
	}
	return ""
}

// functionLength returns the number of lines a function starting at line
// index start spans. Indentation languages end a function before the next
// line indented no deeper than its header; the rest end where the bracket
// depth opened by the header returns to zero.
func functionLength(lines []string, start int, p *language.Profile) int {
	if p.Indent == language.IndentColon || p.Indent == language.IndentKeywords {
		return indentedSpan(lines, start, p)
	}
	tr := delimiter.NewTracker(delimiter.WithComments(p.LineComments, p.BlockComment))
	depth, opened := 0, false
	for j := start; j < len(lines); j++ {
		depth += tr.Measure(lines[j]).Delta
		trimmed := strings.TrimSpace(lines[j])
		if depth > 0 || strings.Contains(trimmed, "{") {
			opened = true
		}
		if opened && depth <= 0 {
			return j - start + 1
		}
		if !opened && strings.HasSuffix(trimmed, ";") {
			return j - start + 1
		}
	}
	if !opened {
		return 1
	}
	return len(lines) - start
}

func indentedSpan(lines []string, start int, p *language.Profile) int {
	base := indentOf(lines[start])
	last := start
	for j := start + 1; j < len(lines); j++ {
		trimmed := strings.TrimSpace(lines[j])
		if trimmed == "" {
			continue
		}
		if indentOf(lines[j]) <= base {
			if isCloser(trimmed, p) {
				last = j
			}
			break
		}
		last = j
	}
	return last - start + 1
}

func isCloser(trimmed string, p *language.Profile) bool {
	for _, c := range p.BlockClosers {
		if trimmed == c {
			return true
		}
	}
	return false
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func structureScore(functions, classes int, avgLength float64) int {
	score := 50
	if functions > 0 && functions <= 10 {
		score += 20
	}
	if functions > 10 {
		score -= 10
	}
	if classes > 0 {
		score += 10
	}
	if avgLength > 30 {
		score -= 20
	}
	if avgLength > 50 {
		score -= 20
	}
	return min(100, max(0, score))
}

func overallScore(r Report) int {
	score := float64(r.Quality.MaintainabilityIndex) * 0.30
	score += float64(r.Quality.ReadabilityScore) * 0.25
	score += math.Max(0, 100-float64(r.Complexity.CyclomaticComplexity)*5) * 0.20
	score += float64(r.Structure.StructureScore) * 0.15
	score -= math.Min(30, float64(r.Issues.TotalIssues)*5) * 0.10
	return clampRound(score)
}

func clampRound(v float64) int {
	return int(math.Round(math.Min(100, math.Max(0, v))))
}
