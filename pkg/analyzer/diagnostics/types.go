package diagnostics

import (
	"fmt"
	"strings"
)

// Severity of a diagnostic.
type Severity string

// String implements fmt.Stringer for toon serialization.
func (s Severity) String() string {
	return string(s)
}

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic kinds.
const (
	KindUnmatchedBracket        = "unmatched_bracket"
	KindUnclosedBracket         = "unclosed_bracket"
	KindAssignmentInCondition   = "assignment_in_condition"
	KindMissingParentheses      = "missing_parentheses"
	KindInvalidRegex            = "invalid_regex"
	KindUnclosedTemplateLiteral = "unclosed_template_literal"
	KindConsoleLog              = "console_log"
	KindUndefinedVariable       = "undefined_variable"
	KindUnexpectedIndent        = "unexpected_indent"
	KindMissingColon            = "missing_colon"
	KindMixedIndentation        = "mixed_indentation"
	KindPython2Print            = "python2_print"
	KindMissingSemicolon        = "missing_semicolon"
	KindMissingBrace            = "missing_brace"
	KindMissingReturnType       = "missing_return_type"
	KindInvalidInclude          = "invalid_include"
	KindMismatchedTags          = "mismatched_tags"
	KindUnclosedTag             = "unclosed_tag"
	KindUnexpectedClosingTag    = "unexpected_closing_tag"
	KindMissingDoctype          = "missing_doctype"
	KindMissingAlt              = "missing_alt"
	KindDeprecatedTag           = "deprecated_tag"
	KindInvalidProperty         = "invalid_property"
	KindTrailingWhitespace      = "trailing_whitespace"
	KindLongLine                = "long_line"
)

// Diagnostic is a single reported problem. Line and Column are 1-indexed;
// Line 0 marks a file-level finding.
type Diagnostic struct {
	Line       int      `json:"line" toon:"line"`
	Column     int      `json:"column" toon:"column"`
	Severity   Severity `json:"severity" toon:"severity"`
	Kind       string   `json:"type" toon:"type"`
	Message    string   `json:"message" toon:"message"`
	Suggestion string   `json:"suggestion,omitempty" toon:"suggestion,omitempty"`
}

// Result is the outcome of one scan.
type Result struct {
	Errors       []Diagnostic `json:"errors" toon:"errors"`
	Warnings     []Diagnostic `json:"warnings" toon:"warnings"`
	IsValid      bool         `json:"is_valid" toon:"is_valid"`
	ErrorCount   int          `json:"error_count" toon:"error_count"`
	WarningCount int          `json:"warning_count" toon:"warning_count"`
	Summary      string       `json:"summary" toon:"summary"`
}

// NewResult assembles a Result from the collected diagnostics.
func NewResult(errs, warnings []Diagnostic) Result {
	if errs == nil {
		errs = []Diagnostic{}
	}
	if warnings == nil {
		warnings = []Diagnostic{}
	}
	return Result{
		Errors:       errs,
		Warnings:     warnings,
		IsValid:      len(errs) == 0,
		ErrorCount:   len(errs),
		WarningCount: len(warnings),
		Summary:      summarize(len(errs), len(warnings)),
	}
}

// All returns errors followed by warnings.
func (r Result) All() []Diagnostic {
	out := make([]Diagnostic, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	return append(out, r.Warnings...)
}

func summarize(errs, warnings int) string {
	if errs == 0 && warnings == 0 {
		return "No syntax issues detected"
	}
	var parts []string
	if errs > 0 {
		parts = append(parts, plural(errs, "error"))
	}
	if warnings > 0 {
		parts = append(parts, plural(warnings, "warning"))
	}
	return strings.Join(parts, " and ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
