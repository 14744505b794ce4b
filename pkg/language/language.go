// Package language holds the per-language profile table shared by every
// analysis component, and the detector that maps filenames and code samples
// to a language tag.
package language

import (
	"regexp"
	"strings"
)

// Tag identifies a supported language.
type Tag string

// String implements fmt.Stringer.
func (t Tag) String() string {
	return string(t)
}

const (
	JavaScript Tag = "javascript"
	Python     Tag = "python"
	Java       Tag = "java"
	CPP        Tag = "cpp"
	HTML       Tag = "html"
	CSS        Tag = "css"
	PHP        Tag = "php"
	Ruby       Tag = "ruby"
	Go         Tag = "go"
	Rust       Tag = "rust"
	TypeScript Tag = "typescript"
	SQL        Tag = "sql"
	JSON       Tag = "json"
	Markdown   Tag = "markdown"
	YAML       Tag = "yaml"
	Bash       Tag = "bash"
	Auto       Tag = "auto"
)

// Fallback is the tag used when an entry point receives an unsupported or
// unresolved tag.
const Fallback = JavaScript

// IndentStyle selects how the formatter derives nesting depth for a language.
type IndentStyle int

const (
	// IndentBrackets derives depth from (), [] and {}.
	IndentBrackets IndentStyle = iota
	// IndentColon derives depth from the indentation stack and trailing colons.
	IndentColon
	// IndentTags derives depth from opening and closing markup tags.
	IndentTags
	// IndentKeywords derives depth from block keywords such as do/end.
	IndentKeywords
	// IndentPreserve leaves indentation untouched.
	IndentPreserve
)

// ControlKeywords are the tokens that open and close a nesting level for
// complexity counting.
type ControlKeywords struct {
	Start []string
	End   []string
}

// Profile is the capability record for one language. Every component reads
// its per-language behaviour from here instead of switching on the tag.
type Profile struct {
	Tag        Tag
	Name       string
	Extensions []string

	// LineComments are prefixes that make a trimmed line a comment.
	LineComments []string
	// BlockComment is the open/close pair for block comments, if any.
	BlockComment [2]string

	Control ControlKeywords

	FunctionPattern *regexp.Regexp
	ClassPattern    *regexp.Regexp
	ImportPattern   *regexp.Regexp
	MainPattern     *regexp.Regexp

	// Keywords are highlighted as keyword tokens.
	Keywords []string
	// Declarators name the keyword that makes the following identifier a
	// function or class name (e.g. "def" -> function).
	Declarators map[string]DeclKind
	// CallHighlight marks identifiers directly followed by "(" as functions.
	CallHighlight bool

	// DetectPatterns add 2 points per matching line during detection.
	DetectPatterns []*regexp.Regexp
	// DetectKeywords add 1 point per line containing the literal.
	DetectKeywords []string

	// CheckBrackets enables the delimiter scan in the diagnostic engine.
	CheckBrackets bool
	// UndefinedScan enables the best-effort undefined-identifier heuristic.
	UndefinedScan bool

	Indent IndentStyle
	// BlockOpeners and BlockClosers drive IndentKeywords. A line opens a
	// block when its first or last word is an opener and closes one when its
	// first word is a closer.
	BlockOpeners []string
	BlockClosers []string
	// BlockMiddles dedent for one line only (else, elif, rescue...).
	BlockMiddles []string

	controlStart []*regexp.Regexp
	controlEnd   []*regexp.Regexp
	keywordSet   map[string]bool
}

// DeclKind is the kind of name introduced by a declarator keyword.
type DeclKind int

const (
	DeclFunction DeclKind = iota + 1
	DeclClass
)

// IsKeyword reports whether word is a highlight keyword of the language.
func (p *Profile) IsKeyword(word string) bool {
	return p.keywordSet[word]
}

// IsCommentLine reports whether a line is a comment according to the
// language's comment markers.
func (p *Profile) IsCommentLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, prefix := range p.LineComments {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	open, closing := p.BlockComment[0], p.BlockComment[1]
	if open == "" {
		return false
	}
	if strings.HasPrefix(trimmed, open) || strings.Contains(trimmed, closing) {
		return true
	}
	// Continuation lines of C-style block comments.
	return open == "/*" && strings.HasPrefix(trimmed, "*")
}

// CountControlStarts returns how many start keywords occur on the line.
// Each keyword counts at most once per line.
func (p *Profile) CountControlStarts(line string) int {
	return countMatches(p.controlStart, line)
}

// CountControlEnds returns how many end keywords occur on the line.
func (p *Profile) CountControlEnds(line string) int {
	return countMatches(p.controlEnd, line)
}

func countMatches(res []*regexp.Regexp, line string) int {
	n := 0
	for _, re := range res {
		if re.MatchString(line) {
			n++
		}
	}
	return n
}

// keywordPattern builds a matcher for one control keyword. Word keywords
// need word boundaries; symbolic ones (&&, ?, }) match literally.
func keywordPattern(kw string) *regexp.Regexp {
	if isWord(kw) {
		return regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return regexp.MustCompile(regexp.QuoteMeta(kw))
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// VoidElements are the HTML tags that never take a closing tag.
var VoidElements = []string{
	"area", "base", "br", "col", "embed", "hr", "img", "input",
	"link", "meta", "param", "source", "track", "wbr",
}

// IsVoidElement reports whether tag (any case) is an HTML void element.
func IsVoidElement(tag string) bool {
	tag = strings.ToLower(tag)
	for _, v := range VoidElements {
		if v == tag {
			return true
		}
	}
	return false
}

var (
	profiles   = map[Tag]*Profile{}
	aliasTable = map[string]Tag{}
	extTable   = map[string]Tag{}
)

func register(p *Profile) {
	p.keywordSet = make(map[string]bool, len(p.Keywords))
	for _, kw := range p.Keywords {
		p.keywordSet[kw] = true
	}
	for _, kw := range p.Control.Start {
		p.controlStart = append(p.controlStart, keywordPattern(kw))
	}
	for _, kw := range p.Control.End {
		p.controlEnd = append(p.controlEnd, keywordPattern(kw))
	}
	for _, ext := range p.Extensions {
		extTable[ext] = p.Tag
	}
	profiles[p.Tag] = p
}

// Lookup returns the profile for tag, or nil when the tag is not supported.
func Lookup(tag Tag) *Profile {
	return profiles[tag]
}

// MustLookup returns the profile for tag, falling back to JavaScript.
func MustLookup(tag Tag) *Profile {
	if p := profiles[tag]; p != nil {
		return p
	}
	return profiles[Fallback]
}

// IsSupported reports whether tag names a concrete supported language.
func IsSupported(tag Tag) bool {
	_, ok := profiles[tag]
	return ok
}

// Resolve maps auto, empty and unsupported tags to the fallback language.
func Resolve(tag Tag) Tag {
	tag = Tag(strings.ToLower(strings.TrimSpace(string(tag))))
	if a, ok := aliasTable[string(tag)]; ok {
		tag = a
	}
	if IsSupported(tag) {
		return tag
	}
	return Fallback
}

// Parse converts user input (a tag, an alias such as "py", or "auto") into
// a Tag. Unknown input yields Auto.
func Parse(s string) Tag {
	s = strings.ToLower(strings.TrimSpace(s))
	if a, ok := aliasTable[s]; ok {
		return a
	}
	if IsSupported(Tag(s)) {
		return Tag(s)
	}
	return Auto
}

// Supported lists every concrete tag in table order.
func Supported() []Tag {
	return append([]Tag(nil), tableOrder...)
}

// DisplayName returns the human-readable language name.
func DisplayName(tag Tag) string {
	if tag == Auto {
		return "Auto-detect"
	}
	if p := profiles[tag]; p != nil {
		return p.Name
	}
	return "Unknown"
}
