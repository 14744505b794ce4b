// Package highlight turns source lines into classified, non-overlapping
// tokens and renders them as HTML-escaped span markup.
package highlight

// Kind is the semantic class of a token.
type Kind int

const (
	KindPlain Kind = iota
	KindComment
	KindString
	KindKeyword
	KindNumber
	KindFunction
	KindClass
	KindOperator
	KindPunctuation
	KindTag
	KindAttribute
	KindSelector
	KindProperty
	KindValue
)

var kindNames = [...]string{
	KindPlain:       "plain",
	KindComment:     "comment",
	KindString:      "string",
	KindKeyword:     "keyword",
	KindNumber:      "number",
	KindFunction:    "function",
	KindClass:       "class",
	KindOperator:    "operator",
	KindPunctuation: "punctuation",
	KindTag:         "tag",
	KindAttribute:   "attribute",
	KindSelector:    "selector",
	KindProperty:    "property",
	KindValue:       "value",
}

// String returns the CSS class suffix used when rendering the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "plain"
	}
	return kindNames[k]
}

// Token is a classified span of one line. Start and End are byte offsets
// into the line, End exclusive.
type Token struct {
	Kind  Kind
	Text  string
	Start int
	End   int
}
