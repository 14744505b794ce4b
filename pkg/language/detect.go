package language

import (
	"path/filepath"
	"strings"
)

const (
	// maxDetectLines caps how much of a sample content detection reads.
	maxDetectLines = 50
	// minDetectScore is the confidence floor below which detection gives up.
	minDetectScore = 3
)

// DetectFromFilename maps a filename's extension to a language tag.
// It returns Auto when the name has no extension or the extension is unknown.
func DetectFromFilename(filename string) Tag {
	if filename == "" {
		return Auto
	}
	base := filepath.Base(filename)
	idx := strings.LastIndex(base, ".")
	if idx < 0 || idx == len(base)-1 {
		return Auto
	}
	ext := strings.ToLower(base[idx+1:])
	if tag, ok := aliasTable[ext]; ok {
		return tag
	}
	if tag, ok := extTable[ext]; ok {
		return tag
	}
	return Auto
}

// DetectFromCode scores the first lines of code against every language in
// DetectionOrder and returns the best match, or Auto below the confidence
// floor. A shebang on the first line overrides scoring.
func DetectFromCode(code string) Tag {
	if strings.TrimSpace(code) == "" {
		return Auto
	}

	lines := strings.Split(code, "\n")
	if len(lines) > maxDetectLines {
		lines = lines[:maxDetectLines]
	}

	if tag, ok := detectShebang(lines[0]); ok {
		return tag
	}

	best, bestScore := Auto, 0
	for _, tag := range DetectionOrder {
		score := Score(profiles[tag], lines)
		if score > bestScore {
			best, bestScore = tag, score
		}
	}
	if bestScore < minDetectScore {
		return Auto
	}
	return best
}

// Score returns the detection score of lines for one profile: two points
// per pattern match and one point per literal keyword occurrence, per line.
func Score(p *Profile, lines []string) int {
	if p == nil {
		return 0
	}
	score := 0
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		for _, pattern := range p.DetectPatterns {
			if pattern.MatchString(line) {
				score += 2
			}
		}
		for _, kw := range p.DetectKeywords {
			if strings.Contains(line, kw) {
				score++
			}
		}
	}
	return score
}

// detectShebang classifies a "#!" interpreter line. Shell scripts map to
// JavaScript, which is a deliberate coarse fallback.
func detectShebang(first string) (Tag, bool) {
	if !strings.HasPrefix(first, "#!") {
		return "", false
	}
	switch {
	case strings.Contains(first, "python"):
		return Python, true
	case strings.Contains(first, "node"):
		return JavaScript, true
	case strings.Contains(first, "bash"), strings.Contains(first, "sh"):
		return JavaScript, true
	}
	return "", false
}

// Detect resolves a language from an optional filename and a code sample.
// The filename wins whenever it maps to a known language.
func Detect(filename, code string) Tag {
	if tag := DetectFromFilename(filename); tag != Auto {
		return tag
	}
	return DetectFromCode(code)
}
