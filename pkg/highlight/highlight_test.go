package highlight

import (
	"regexp"
	"strings"
	"testing"

	"github.com/panbanda/glint/pkg/language"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func assertCovers(t *testing.T, line string, toks []Token) {
	t.Helper()
	var b strings.Builder
	prev := 0
	for i, tok := range toks {
		if tok.Start != prev {
			t.Errorf("token %d starts at %d, want %d (gap or overlap)", i, tok.Start, prev)
		}
		if tok.End <= tok.Start {
			t.Errorf("token %d is empty: %+v", i, tok)
		}
		if line[tok.Start:tok.End] != tok.Text {
			t.Errorf("token %d text %q does not match span %q", i, tok.Text, line[tok.Start:tok.End])
		}
		prev = tok.End
		b.WriteString(tok.Text)
	}
	if b.String() != line {
		t.Errorf("tokens reassemble to %q, want %q", b.String(), line)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		tag  language.Tag
		want []Kind
	}{
		{
			name: "javascript statement with comment",
			line: `const s = "if"; // x < y`,
			tag:  language.JavaScript,
			want: []Kind{KindKeyword, KindPlain, KindOperator, KindPlain, KindString, KindPunctuation, KindPlain, KindComment},
		},
		{
			name: "python def",
			line: "def foo(x):  # note",
			tag:  language.Python,
			want: []Kind{KindKeyword, KindPlain, KindFunction, KindPunctuation, KindPlain, KindPunctuation, KindOperator, KindPlain, KindComment},
		},
		{
			name: "keyword inside string is not split",
			line: `"return"`,
			tag:  language.JavaScript,
			want: []Kind{KindString},
		},
		{
			name: "class declaration",
			line: "class Foo extends Bar {",
			tag:  language.JavaScript,
			want: []Kind{KindKeyword, KindPlain, KindClass, KindPlain, KindKeyword, KindPlain, KindPunctuation},
		},
		{
			name: "number inside identifier",
			line: "x1 = 10",
			tag:  language.JavaScript,
			want: []Kind{KindPlain, KindOperator, KindPlain, KindNumber},
		},
		{
			name: "html tag with attribute",
			line: `<div class="a">Hi</div>`,
			tag:  language.HTML,
			want: []Kind{KindTag, KindPlain, KindAttribute, KindOperator, KindString, KindOperator, KindPlain, KindTag, KindOperator},
		},
		{
			name: "css rule",
			line: ".btn:hover { color: red; }",
			tag:  language.CSS,
			want: []Kind{
				KindSelector, KindPlain, KindPunctuation, KindPlain, KindProperty, KindOperator,
				KindPlain, KindValue, KindPunctuation, KindPlain, KindPunctuation,
			},
		},
		{
			name: "unsupported tag falls back to javascript",
			line: "if",
			tag:  "cobol",
			want: []Kind{KindKeyword},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := Tokenize(tt.line, tt.tag)
			assertCovers(t, tt.line, toks)
			got := kinds(toks)
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize(%q) kinds = %v, want %v (tokens %+v)", tt.line, got, tt.want, toks)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d (%q) kind = %s, want %s", i, toks[i].Text, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokensCarryMultiLineState(t *testing.T) {
	lines := Tokens("/* a\nb */ x", language.JavaScript)
	if len(lines) != 2 {
		t.Fatalf("Tokens() returned %d lines, want 2", len(lines))
	}
	if lines[1][0].Kind != KindComment || lines[1][0].Text != "b */" {
		t.Errorf("line 2 first token = %+v, want comment %q", lines[1][0], "b */")
	}

	lines = Tokens("x = `a\nb` + 1", language.JavaScript)
	if got := lines[1][0]; got.Kind != KindString || got.Text != "b`" {
		t.Errorf("template continuation = %+v, want string %q", got, "b`")
	}
	if last := lines[1][len(lines[1])-1]; last.Kind != KindNumber {
		t.Errorf("last token = %+v, want number", last)
	}

	lines = Tokens("s = \"\"\"doc\nstill doc\"\"\"\nx = 1", language.Python)
	if got := lines[1][0]; got.Kind != KindString {
		t.Errorf("docstring continuation = %+v, want string", got)
	}
	if got := lines[2][0]; got.Kind != KindPlain {
		t.Errorf("line after docstring = %+v, want plain", got)
	}
}

var spanTag = regexp.MustCompile(`<span class="token [a-z]+">|</span>`)

func TestHighlightEscapes(t *testing.T) {
	inputs := []struct {
		code string
		tag  language.Tag
	}{
		{`a < b && "<x>"`, language.JavaScript},
		{"<script>alert('x')</script>", language.HTML},
		{"if a < b:\n    print('<b>')", language.Python},
		{"<<<>>>&&&", "unknown"},
		{"/* <unclosed", language.CSS},
	}
	for _, in := range inputs {
		out := Highlight(in.code, in.tag)
		stripped := spanTag.ReplaceAllString(out, "")
		if strings.ContainsAny(stripped, "<>") {
			t.Errorf("Highlight(%q) leaves raw markup outside spans: %q", in.code, out)
		}
		if got := strings.Count(out, "\n"); got != strings.Count(in.code, "\n") {
			t.Errorf("Highlight(%q) has %d line breaks, want %d", in.code, got, strings.Count(in.code, "\n"))
		}
	}
}

func TestHighlightLine(t *testing.T) {
	got := HighlightLine(`x = "a&b"`, language.JavaScript)
	want := `x <span class="token operator">=</span> <span class="token string">&#34;a&amp;b&#34;</span>`
	if got != want {
		t.Errorf("HighlightLine() = %q, want %q", got, want)
	}
}

func TestHighlightMultiLine(t *testing.T) {
	got := Highlight("a\n<b>", language.JavaScript)
	want := "a\n<span class=\"token operator\">&lt;</span>b<span class=\"token operator\">&gt;</span>"
	if got != want {
		t.Errorf("Highlight() = %q, want %q", got, want)
	}
}

func TestKindString(t *testing.T) {
	if KindValue.String() != "value" || KindPlain.String() != "plain" || Kind(99).String() != "plain" {
		t.Error("Kind.String() returned unexpected names")
	}
}
