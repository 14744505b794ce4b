package metrics

// Severity buckets code issues.
type Severity string

// String implements fmt.Stringer for toon serialization.
func (s Severity) String() string {
	return string(s)
}

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Issue categories.
const (
	CategoryLongLine           = "long_line"
	CategoryDeepNesting        = "deep_nesting"
	CategoryMissingSemicolon   = "missing_semicolon"
	CategoryPotentialUndefined = "potential_undefined"
)

// Complexity levels.
const (
	LevelLow      = "Low"
	LevelMedium   = "Medium"
	LevelHigh     = "High"
	LevelVeryHigh = "Very High"
)

// Quality levels.
const (
	QualityExcellent        = "Excellent"
	QualityGood             = "Good"
	QualityFair             = "Fair"
	QualityNeedsImprovement = "Needs Improvement"
	QualityUnknown          = "Unknown"
)

// Basic holds line and character counts.
type Basic struct {
	TotalLines              int     `json:"total_lines" toon:"total_lines"`
	CodeLines               int     `json:"code_lines" toon:"code_lines"`
	EmptyLines              int     `json:"empty_lines" toon:"empty_lines"`
	CommentLines            int     `json:"comment_lines" toon:"comment_lines"`
	CommentRatio            float64 `json:"comment_ratio" toon:"comment_ratio"`
	TotalCharacters         int     `json:"total_characters" toon:"total_characters"`
	NonWhitespaceCharacters int     `json:"non_whitespace_characters" toon:"non_whitespace_characters"`
	AverageLineLength       float64 `json:"average_line_length" toon:"average_line_length"`
}

// Complexity holds control-flow counts.
type Complexity struct {
	ControlStructures    int    `json:"control_structures" toon:"control_structures"`
	MaxNesting           int    `json:"max_nesting" toon:"max_nesting"`
	CyclomaticComplexity int    `json:"cyclomatic_complexity" toon:"cyclomatic_complexity"`
	ComplexityLevel      string `json:"complexity_level" toon:"complexity_level"`
}

// Quality holds the maintainability and readability scores.
type Quality struct {
	MaintainabilityIndex int     `json:"maintainability_index" toon:"maintainability_index"`
	ReadabilityScore     int     `json:"readability_score" toon:"readability_score"`
	QualityIssues        int     `json:"quality_issues" toon:"quality_issues"`
	IssueBreakdown       []Issue `json:"issue_breakdown" toon:"issue_breakdown"`
	QualityLevel         string  `json:"quality_level" toon:"quality_level"`
}

// Structure holds declaration counts and function sizes.
type Structure struct {
	Functions         int     `json:"functions" toon:"functions"`
	Classes           int     `json:"classes" toon:"classes"`
	Imports           int     `json:"imports" toon:"imports"`
	AvgFunctionLength float64 `json:"avg_function_length" toon:"avg_function_length"`
	MaxFunctionLength int     `json:"max_function_length" toon:"max_function_length"`
	HasMainFunction   bool    `json:"has_main_function" toon:"has_main_function"`
	StructureScore    int     `json:"structure_score" toon:"structure_score"`
}

// Issue is one quality or code finding. Line 0 marks a file-level issue.
type Issue struct {
	Type     string   `json:"type" toon:"type"`
	Severity Severity `json:"severity" toon:"severity"`
	Message  string   `json:"message" toon:"message"`
	Line     int      `json:"line" toon:"line"`
}

// SeverityCounts counts issues per severity.
type SeverityCounts struct {
	High   int `json:"high" toon:"high"`
	Medium int `json:"medium" toon:"medium"`
	Low    int `json:"low" toon:"low"`
}

// Issues aggregates every finding of a report.
type Issues struct {
	TotalIssues int            `json:"total_issues" toon:"total_issues"`
	BySeverity  SeverityCounts `json:"by_severity" toon:"by_severity"`
	ByCategory  map[string]int `json:"by_category" toon:"by_category"`
	Issues      []Issue        `json:"issues" toon:"issues"`
}

// NewIssues creates an empty issue set.
func NewIssues() Issues {
	return Issues{
		ByCategory: make(map[string]int),
		Issues:     make([]Issue, 0),
	}
}

// Add records an issue and updates the counters.
func (s *Issues) Add(issue Issue) {
	s.Issues = append(s.Issues, issue)
	s.TotalIssues++
	s.ByCategory[issue.Type]++
	switch issue.Severity {
	case SeverityHigh:
		s.BySeverity.High++
	case SeverityMedium:
		s.BySeverity.Medium++
	case SeverityLow:
		s.BySeverity.Low++
	}
}

// Report is the full metrics report for one document. Every field is
// derived from the input on each call.
type Report struct {
	Basic      Basic      `json:"basic" toon:"basic"`
	Complexity Complexity `json:"complexity" toon:"complexity"`
	Quality    Quality    `json:"quality" toon:"quality"`
	Structure  Structure  `json:"structure" toon:"structure"`
	Issues     Issues     `json:"issues" toon:"issues"`
	Overall    int        `json:"overall" toon:"overall"`
}

// EmptyReport is the report for blank input.
func EmptyReport() Report {
	return Report{
		Complexity: Complexity{ComplexityLevel: LevelLow},
		Quality: Quality{
			IssueBreakdown: make([]Issue, 0),
			QualityLevel:   QualityUnknown,
		},
		Issues: NewIssues(),
	}
}

// ComplexityLevel bands a cyclomatic complexity value.
func ComplexityLevel(cc int) string {
	switch {
	case cc <= 5:
		return LevelLow
	case cc <= 10:
		return LevelMedium
	case cc <= 20:
		return LevelHigh
	default:
		return LevelVeryHigh
	}
}

// QualityLevel grades a maintainability index given the quality issue count.
func QualityLevel(maintainability, issues int) string {
	switch {
	case maintainability >= 80 && issues == 0:
		return QualityExcellent
	case maintainability >= 60 && issues <= 2:
		return QualityGood
	case maintainability >= 40 && issues <= 5:
		return QualityFair
	default:
		return QualityNeedsImprovement
	}
}
