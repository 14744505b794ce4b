package diagnostics

import (
	"regexp"
	"strings"
)

var javaRules = []rule{
	checkMissingSemicolons,
	checkClassBraces,
	checkReturnTypes,
}

var cppRules = []rule{
	checkMissingSemicolons,
	checkClassBraces,
	checkIncludes,
}

// statementEndings are line endings that never need a semicolon.
var statementEndings = []string{";", "{", "}", ":", ",", "(", "[", "&&", "||", "+", "=", "?", `\`, "*/"}

// statementExempt matches the start of lines that are not simple statements.
var statementExempt = regexp.MustCompile(`^(?:(?:if|else|for|while|do|switch|case|default|try|catch|finally|namespace|template)\b|` +
	`(?:public|private|protected):|` +
	`(?:(?:public|private|protected|static|final|abstract|sealed|virtual|inline|extern)\s+)*(?:class|interface|enum|struct|@interface)\b|` +
	`@|#)`)

var (
	classDeclRe   = regexp.MustCompile(`^(?:(?:public|private|protected|static|final|abstract|sealed)\s+)*(?:class|interface|enum|struct)\s+(\w+)`)
	methodDeclRe  = regexp.MustCompile(`^((?:(?:public|private|protected|static|final|abstract|synchronized|native)\s+)+)([\w<>\[\],.?\s]*?)\s*\b(\w+)\s*\([^)]*\)\s*(?:throws\s+[\w.,\s]+)?\{?\s*$`)
	includeRe     = regexp.MustCompile(`^#\s*include\b`)
	validIncludes = regexp.MustCompile(`^#\s*include\s*(?:<[^<>"]+>|"[^<>"]+")\s*$`)
)

// checkMissingSemicolons flags statement lines that end without ';'.
// Lines inside an open (...) or [...] are treated as part of a
// multi-line statement and skipped, as are block comments.
func checkMissingSemicolons(s *scan) {
	inBlock := false
	depth := 0
	for i, line := range s.lines {
		trimmed := strings.TrimSpace(line)
		if inBlock {
			if strings.Contains(trimmed, "*/") {
				inBlock = false
			}
			continue
		}
		if strings.HasPrefix(trimmed, "/*") {
			inBlock = !strings.Contains(trimmed, "*/")
			continue
		}
		masked := maskLine(line, s.profile.LineComments)
		code := strings.TrimSpace(masked)
		startDepth := depth
		depth += parenDelta(masked)
		if depth < 0 {
			depth = 0
		}

		if code == "" || startDepth > 0 || s.profile.IsCommentLine(line) {
			continue
		}
		if statementExempt.MatchString(code) || endsStatement(code) || strings.HasPrefix(s.nextNonBlank(i), "{") {
			continue
		}
		if depth > 0 || methodDeclRe.MatchString(code) {
			continue
		}
		s.errorAt(i+1, endColumn(line), KindMissingSemicolon,
			"Missing semicolon", "Add ; at the end of the statement")
	}
}

func endsStatement(code string) bool {
	for _, suffix := range statementEndings {
		if strings.HasSuffix(code, suffix) {
			return true
		}
	}
	return false
}

// parenDelta is the change in (...) and [...] depth across a masked line.
func parenDelta(masked string) int {
	d := 0
	for i := 0; i < len(masked); i++ {
		switch masked[i] {
		case '(', '[':
			d++
		case ')', ']':
			d--
		}
	}
	return d
}

// checkClassBraces flags a class header with no '{' on its line or the next.
func checkClassBraces(s *scan) {
	for i, line := range s.lines {
		if s.profile.IsCommentLine(line) {
			continue
		}
		code := strings.TrimSpace(maskLine(line, s.profile.LineComments))
		if !classDeclRe.MatchString(code) || strings.Contains(code, "{") || strings.HasSuffix(code, ";") {
			continue
		}
		if strings.HasPrefix(s.nextNonBlank(i), "{") {
			continue
		}
		s.errorAt(i+1, endColumn(line), KindMissingBrace,
			"Missing opening brace for class", "Add { after class declaration")
	}
}

// checkReturnTypes flags method headers that name no return type. A
// header whose name matches a class declared in the file is a constructor.
func checkReturnTypes(s *scan) {
	classes := map[string]bool{}
	for _, line := range s.lines {
		if m := classDeclRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			classes[m[1]] = true
		}
	}
	for i, line := range s.lines {
		if s.profile.IsCommentLine(line) {
			continue
		}
		code := strings.TrimSpace(maskLine(line, s.profile.LineComments))
		m := methodDeclRe.FindStringSubmatch(code)
		if m == nil || classDeclRe.MatchString(code) {
			continue
		}
		if strings.TrimSpace(m[2]) != "" || classes[m[3]] {
			continue
		}
		s.warnAt(i+1, indentWidth(line)+1, KindMissingReturnType,
			"Method missing return type", "Specify return type for method")
	}
}

func checkIncludes(s *scan) {
	for i, line := range s.lines {
		code := strings.TrimSpace(line)
		if j := strings.Index(code, "//"); j >= 0 && !strings.Contains(code[:j], `"`) {
			code = strings.TrimSpace(code[:j])
		}
		if includeRe.MatchString(code) && !validIncludes.MatchString(code) {
			s.errorAt(i+1, indentWidth(line)+1, KindInvalidInclude,
				"Invalid include directive", `Use #include <header> or #include "header"`)
		}
	}
}
