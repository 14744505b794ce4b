package format

import (
	"regexp"
	"slices"
	"strings"

	"github.com/panbanda/glint/pkg/language"
)

var (
	kwTokenRe       = regexp.MustCompile(`[A-Za-z_][\w]*[?!]?|[{}]`)
	blockParamsRe   = regexp.MustCompile(`\|[^|]*\|\s*$`)
	endlessDefRe    = regexp.MustCompile(`^def\s+[\w.]+[?!]?\s*(?:\([^)]*\))?\s*=[^=~]`)
	bashExpansionRe = regexp.MustCompile(`\$\{[^}]*\}`)
)

// keywordIndenter derives depth from block keywords such as def/end and
// then/fi.
type keywordIndenter struct {
	p     *language.Profile
	depth int
}

// measure consumes the code of a line and returns its print depth.
func (k *keywordIndenter) measure(code string) int {
	if k.p.Tag == language.Ruby {
		code = blockParamsRe.ReplaceAllString(code, "")
	} else {
		code = bashExpansionRe.ReplaceAllString(code, "")
	}
	words := kwTokenRe.FindAllString(code, -1)
	if len(words) == 0 {
		return k.depth
	}
	first, last := words[0], words[len(words)-1]

	if slices.Contains(k.p.BlockMiddles, first) {
		return max(0, k.depth-1)
	}
	if slices.Contains(k.p.BlockClosers, first) {
		k.depth = max(0, k.depth-1)
		emit := k.depth
		if len(words) > 1 && slices.Contains(k.p.BlockOpeners, last) {
			k.depth++
		}
		return emit
	}

	emit := k.depth
	opens := slices.Contains(k.p.BlockOpeners, first) || slices.Contains(k.p.BlockOpeners, last)
	if first == "def" && endlessDefRe.MatchString(strings.TrimSpace(code)) {
		opens = false
	}
	if opens && len(words) > 1 && slices.Contains(k.p.BlockClosers, last) {
		opens = false
	}
	if opens {
		k.depth++
	}
	return emit
}

// formatKeywords re-indents Ruby and shell code. Ruby lines also get
// spacing cleanup and count brackets; shell lines are only trimmed, since
// spacing is significant there.
func formatKeywords(lines []string, p *language.Profile, o Options) []string {
	lx := newLexer(p)
	kw := &keywordIndenter{p: p}
	var sp *spacer
	var braces *braceIndenter
	if p.Tag == language.Ruby {
		sp = newSpacer(p)
		braces = &braceIndenter{lx: newLexer(p)}
	}

	out := make([]string, 0, len(lines))
	for _, raw := range lines {
		startsIn := lx.inLiteral()
		pieces := lx.split(raw)
		endsIn := lx.inLiteral()

		if startsIn && len(pieces) == 1 {
			out = append(out, raw)
			if braces != nil {
				braces.measure(raw)
			}
			continue
		}
		text := strings.TrimSpace(raw)
		if sp != nil {
			text = sp.line(pieces, startsIn, endsIn)
		} else if startsIn {
			text = strings.TrimRight(raw, " \t")
		}
		if text == "" {
			if o.PreserveBlankLines {
				out = append(out, "")
			}
			continue
		}

		code := codeOf(pieces)
		if startsIn {
			code = codeOf(pieces[1:])
		}
		depth := kw.measure(code)
		if braces != nil {
			depth += braces.measure(text)
		}
		if startsIn {
			out = append(out, text)
			continue
		}
		out = append(out, o.indent(depth)+text)
	}
	return out
}
