package metrics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/panbanda/glint/pkg/language"
)

var (
	stringLiteralRe = regexp.MustCompile("\"(?:[^\"\\\\]|\\\\.)*\"|'(?:[^'\\\\]|\\\\.)*'|`[^`]*`")
	assignTargetRe  = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*=(?:[^=>]|$)`)
	identifierRe    = regexp.MustCompile(`[A-Za-z_$][\w$]*`)
	loopKeywordRe   = regexp.MustCompile(`\b(?:if|for|while)\b`)
	declStartRe     = regexp.MustCompile(`^(?:function|const|let|var|class|import|export)\b`)
)

var reservedWords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "function": true,
	"return": true, "var": true, "let": true, "const": true, "class": true,
	"import": true, "export": true, "default": true, "this": true, "new": true,
	"typeof": true, "instanceof": true, "true": true, "false": true, "null": true,
	"undefined": true, "NaN": true, "Infinity": true, "console": true, "log": true,
	"self": true, "print": true, "len": true, "range": true, "str": true, "int": true,
}

// issues merges the quality issues with the language's code issues.
func (e *Engine) issues(lines []string, p *language.Profile, quality []Issue) Issues {
	out := NewIssues()
	for _, is := range quality {
		out.Add(is)
	}
	if p.Tag == language.JavaScript || p.Tag == language.TypeScript {
		for _, is := range missingSemicolons(lines, p) {
			out.Add(is)
		}
	}
	if p.UndefinedScan {
		for _, is := range potentialUndefined(lines, p) {
			out.Add(is)
		}
	}
	return out
}

// missingSemicolons is a deliberately loose scan: a statement line that
// ends without ';' and is not a block, declaration or loop line.
func missingSemicolons(lines []string, p *language.Profile) []Issue {
	var out []Issue
	for i, line := range lines {
		trimmed := strings.TrimSpace(stripLine(line, p))
		if trimmed == "" || p.IsCommentLine(line) {
			continue
		}
		if strings.HasPrefix(trimmed, "}") || strings.HasPrefix(trimmed, ".") ||
			loopKeywordRe.MatchString(trimmed) || declStartRe.MatchString(trimmed) {
			continue
		}
		if strings.ContainsAny(trimmed[len(trimmed)-1:], ";{}([,:=+-*/&|?>") {
			continue
		}
		out = append(out, Issue{
			Type:     CategoryMissingSemicolon,
			Severity: SeverityLow,
			Message:  fmt.Sprintf("Possible missing semicolon at line %d", i+1),
			Line:     i + 1,
		})
	}
	return out
}

// potentialUndefined reports identifiers that are used but never appear as
// an assignment target or declared name. It knows nothing of scope or
// imports, so it is low confidence; each name is reported once.
func potentialUndefined(lines []string, p *language.Profile) []Issue {
	stripped := make([]string, len(lines))
	for i, line := range lines {
		if !p.IsCommentLine(line) {
			stripped[i] = stripLine(line, p)
		}
	}
	body := strings.Join(stripped, "\n")

	declared := map[string]bool{}
	for _, m := range assignTargetRe.FindAllStringSubmatch(body, -1) {
		declared[m[1]] = true
	}
	for _, re := range []*regexp.Regexp{p.FunctionPattern, p.ClassPattern} {
		if re == nil {
			continue
		}
		for _, m := range re.FindAllStringSubmatchIndex(body, -1) {
			declared[firstGroup(body, m)] = true
		}
	}

	var out []Issue
	seen := map[string]bool{}
	for i, line := range stripped {
		for _, loc := range identifierRe.FindAllStringIndex(line, -1) {
			name := line[loc[0]:loc[1]]
			if len(name) <= 1 || seen[name] || declared[name] || reservedWords[name] || p.IsKeyword(name) {
				continue
			}
			if loc[0] > 0 && (line[loc[0]-1] == '.' || line[loc[0]-1] >= '0' && line[loc[0]-1] <= '9') {
				continue
			}
			seen[name] = true
			out = append(out, Issue{
				Type:     CategoryPotentialUndefined,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("Potential undefined variable '%s'", name),
				Line:     i + 1,
			})
		}
	}
	return out
}

// stripLine removes string literals and a trailing line comment.
func stripLine(line string, p *language.Profile) string {
	line = stringLiteralRe.ReplaceAllString(line, `""`)
	for _, prefix := range p.LineComments {
		if i := strings.Index(line, prefix); i >= 0 {
			line = line[:i]
		}
	}
	return line
}
