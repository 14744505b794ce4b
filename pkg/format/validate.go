package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/panbanda/glint/pkg/analyzer/delimiter"
	"github.com/panbanda/glint/pkg/language"
)

// Validation issue types.
const (
	IssueInvalidJSON        = "invalid_json"
	IssueInvalidYAML        = "invalid_yaml"
	IssueUnbalancedBrackets = "unbalanced_brackets"
	IssueUnclosedBrackets   = "unclosed_brackets"
)

// ValidationIssue is one problem found by ValidateCode.
type ValidationIssue struct {
	Type       string `json:"type" toon:"type"`
	Message    string `json:"message" toon:"message"`
	Suggestion string `json:"suggestion" toon:"suggestion"`
}

// Validation is the result of ValidateCode.
type Validation struct {
	IsValid bool              `json:"is_valid" toon:"is_valid"`
	Issues  []ValidationIssue `json:"issues" toon:"issues"`
}

// ValidateCode runs quick checks meant for a status badge: a parse check
// for JSON and YAML, and a bracket balance check that has no awareness of
// strings or comments, so a bracket inside either still counts. Blank code
// is valid.
func ValidateCode(code string, tag language.Tag) (v Validation) {
	v = Validation{IsValid: true, Issues: []ValidationIssue{}}
	if strings.TrimSpace(code) == "" {
		return v
	}
	defer func() {
		if r := recover(); r != nil {
			v = Validation{IsValid: true, Issues: []ValidationIssue{}}
		}
	}()

	switch language.Resolve(tag) {
	case language.JSON:
		if !json.Valid([]byte(code)) {
			v.Issues = append(v.Issues, ValidationIssue{
				Type:       IssueInvalidJSON,
				Message:    "Invalid JSON format",
				Suggestion: "Check for syntax errors like missing quotes or commas",
			})
		}
	case language.YAML:
		var doc any
		if err := yaml.Unmarshal([]byte(code), &doc); err != nil {
			v.Issues = append(v.Issues, ValidationIssue{
				Type:       IssueInvalidYAML,
				Message:    "Invalid YAML format: " + err.Error(),
				Suggestion: "Check indentation and key: value syntax",
			})
		}
	}

	stray, unclosed := delimiter.Balance(code)
	for _, r := range stray {
		v.Issues = append(v.Issues, ValidationIssue{
			Type:       IssueUnbalancedBrackets,
			Message:    fmt.Sprintf("Unbalanced bracket: %c", r),
			Suggestion: "Check for matching opening and closing brackets",
		})
	}
	if unclosed > 0 {
		v.Issues = append(v.Issues, ValidationIssue{
			Type:       IssueUnclosedBrackets,
			Message:    "Unclosed brackets detected",
			Suggestion: "Add closing brackets for all opened brackets",
		})
	}

	v.IsValid = len(v.Issues) == 0
	return v
}
