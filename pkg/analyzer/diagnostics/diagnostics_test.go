package diagnostics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/glint/pkg/language"
)

func ofKind(ds []Diagnostic, kind string) []Diagnostic {
	var out []Diagnostic
	for _, d := range ds {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

func TestDetect_UnterminatedCall(t *testing.T) {
	r := Detect("function foo(", language.JavaScript)

	require.Len(t, r.Errors, 1)
	assert.Equal(t, KindUnclosedBracket, r.Errors[0].Kind)
	assert.Equal(t, 1, r.Errors[0].Line)
	assert.Equal(t, 13, r.Errors[0].Column)
	assert.Equal(t, "Unclosed (", r.Errors[0].Message)
	assert.False(t, r.IsValid)
}

func TestDetect_PythonUnexpectedIndent(t *testing.T) {
	code := "if True:\n    x = 1\n  y = 2"
	r := Detect(code, language.Python)

	require.Len(t, r.Errors, 1)
	assert.Equal(t, KindUnexpectedIndent, r.Errors[0].Kind)
	assert.Equal(t, 3, r.Errors[0].Line)
	assert.Equal(t, 1, r.Errors[0].Column)
}

func TestDetect_HTMLMismatchedTags(t *testing.T) {
	r := Detect("<div><span></div>", language.HTML)

	mismatched := ofKind(r.Errors, KindMismatchedTags)
	require.Len(t, mismatched, 1)
	assert.Equal(t, "Mismatched tags: expected </span> but found </div>", mismatched[0].Message)
	assert.Equal(t, 12, mismatched[0].Column)

	unclosed := ofKind(r.Errors, KindUnclosedTag)
	require.Len(t, unclosed, 1)
	assert.Equal(t, "Unclosed tag: <div>", unclosed[0].Message)

	assert.Len(t, ofKind(r.Warnings, KindMissingDoctype), 1)
}

func TestDetect_JavaScript(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		kind   string
		line   int
		column int
	}{
		{"assignment in condition", "if (a = b) {\n}", KindAssignmentInCondition, 1, 7},
		{"missing parentheses", "function foo {\n}", KindMissingParentheses, 1, 1},
		{"invalid regex", "const r = /(ab/;", KindInvalidRegex, 1, 11},
		{"unclosed template literal", "const s = `abc;\nfoo();", KindUnclosedTemplateLiteral, 1, 11},
		{"console.log is file-level", "console.log(1);", KindConsoleLog, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Detect(tt.code, language.JavaScript)
			found := ofKind(r.All(), tt.kind)
			require.Len(t, found, 1, "diagnostics: %+v", r.All())
			assert.Equal(t, tt.line, found[0].Line)
			assert.Equal(t, tt.column, found[0].Column)
		})
	}
}

func TestDetect_JavaScriptClean(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"strict comparison", "if (a === b) {\n}"},
		{"arrow in condition", "if (xs.some(x => x)) {\n}"},
		{"valid regex", "const re = /a+b/g;"},
		{"division", "const half = total / count / 2;"},
		{"closed multi-line template", "const s = `a\nb`;"},
		{"generic function", "function id<T>(x: T) {\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Detect(tt.code, language.JavaScript)
			assert.Empty(t, ofKind(r.All(), KindAssignmentInCondition))
			assert.Empty(t, ofKind(r.All(), KindInvalidRegex))
			assert.Empty(t, ofKind(r.All(), KindUnclosedTemplateLiteral))
			assert.Empty(t, ofKind(r.All(), KindMissingParentheses))
		})
	}
}

func TestDetect_UndefinedVariables(t *testing.T) {
	code := strings.Join([]string{
		"const total = compute(items);",
		"function compute(list) {",
		"  return list.length + offset;",
		"}",
	}, "\n")
	r := Detect(code, language.JavaScript)

	found := ofKind(r.Warnings, KindUndefinedVariable)
	var names []string
	for _, d := range found {
		assert.Equal(t, 0, d.Line)
		names = append(names, d.Message)
	}
	assert.Contains(t, names, "Possible undefined variable: items (best-effort)")
	assert.Contains(t, names, "Possible undefined variable: offset (best-effort)")
	assert.NotContains(t, names, "Possible undefined variable: compute (best-effort)")
	assert.NotContains(t, names, "Possible undefined variable: length (best-effort)")
}

func TestDetect_Python(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		kind   string
		line   int
		column int
	}{
		{"missing colon", "def foo()\n    return 1", KindMissingColon, 1, 9},
		{"missing colon after else", "if x:\n    y()\nelse\n    z()", KindMissingColon, 3, 4},
		{"python 2 print", "print 'hi'", KindPython2Print, 1, 1},
		{"mixed indentation", "if x:\n\t  y = 1", KindMixedIndentation, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Detect(tt.code, language.Python)
			found := ofKind(r.All(), tt.kind)
			require.Len(t, found, 1, "diagnostics: %+v", r.All())
			assert.Equal(t, tt.line, found[0].Line)
			assert.Equal(t, tt.column, found[0].Column)
		})
	}
}

func TestDetect_PythonClean(t *testing.T) {
	code := strings.Join([]string{
		"def greet(name,",
		"          greeting='hi'):",
		"    \"\"\"Say hello.",
		"",
		"  Indented docstring text is not code.",
		"    \"\"\"",
		"    if name: return greeting",
		"    total = (1 +",
		"             2)",
		"    return total",
		"",
		"class Foo(Base):",
		"    pass",
	}, "\n")
	r := Detect(code, language.Python)
	assert.Empty(t, r.Errors, "errors: %+v", r.Errors)
}

func TestDetect_Java(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		kind   string
		line   int
		column int
	}{
		{"missing semicolon", "public class Foo {\n    int x = 1\n}", KindMissingSemicolon, 2, 13},
		{"missing class brace", "public class Foo\nint x;", KindMissingBrace, 1, 16},
		{"missing return type", "public class Foo {\n    public bar() {\n    }\n}", KindMissingReturnType, 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Detect(tt.code, language.Java)
			found := ofKind(r.All(), tt.kind)
			require.Len(t, found, 1, "diagnostics: %+v", r.All())
			assert.Equal(t, tt.line, found[0].Line)
			assert.Equal(t, tt.column, found[0].Column)
		})
	}
}

func TestDetect_JavaClean(t *testing.T) {
	code := strings.Join([]string{
		"import java.util.List;",
		"",
		"/**",
		" * Greeter says hello",
		" */",
		"public class Greeter {",
		"    private final String name;",
		"",
		"    public Greeter(String name) {",
		"        this.name = name;",
		"    }",
		"",
		"    @Override",
		"    public String toString()",
		"    {",
		"        return format(name,",
		"            \"x\");",
		"    }",
		"}",
	}, "\n")
	r := Detect(code, language.Java)
	assert.Empty(t, r.Errors, "errors: %+v", r.Errors)
	assert.Empty(t, ofKind(r.Warnings, KindMissingReturnType))
}

func TestDetect_CPPInclude(t *testing.T) {
	r := Detect("#include <iostream>\n#include iostream\n#include \"local.h\"", language.CPP)

	found := ofKind(r.Errors, KindInvalidInclude)
	require.Len(t, found, 1)
	assert.Equal(t, 2, found[0].Line)
	assert.Equal(t, 1, found[0].Column)
}

func TestDetect_CSS(t *testing.T) {
	code := ".a {\n  color: red\n  colour: blue;\n}"
	r := Detect(code, language.CSS)

	semis := ofKind(r.Errors, KindMissingSemicolon)
	require.Len(t, semis, 1)
	assert.Equal(t, 2, semis[0].Line)
	assert.Equal(t, 12, semis[0].Column)

	props := ofKind(r.Warnings, KindInvalidProperty)
	require.Len(t, props, 1)
	assert.Equal(t, 3, props[0].Line)
	assert.Equal(t, 3, props[0].Column)
	assert.Equal(t, "Possible invalid property: colour", props[0].Message)
	assert.Equal(t, "Did you mean 'color'?", props[0].Suggestion)
}

func TestDetect_CSSClean(t *testing.T) {
	code := strings.Join([]string{
		"/* theme */",
		"@media (max-width: 600px) {",
		"  .a,",
		"  .b",
		"  {",
		"    margin: 0 /* reset */;",
		"  }",
		"}",
	}, "\n")
	r := Detect(code, language.CSS)
	assert.Empty(t, r.Errors, "errors: %+v", r.Errors)
}

func TestDetect_HTML(t *testing.T) {
	code := "<!DOCTYPE html>\n<img src=\"a.png\">\n<center>x</center>\n<br></br>"
	r := Detect(code, language.HTML)

	assert.Empty(t, r.Errors)
	assert.Empty(t, ofKind(r.Warnings, KindMissingDoctype))

	alt := ofKind(r.Warnings, KindMissingAlt)
	require.Len(t, alt, 1)
	assert.Equal(t, 2, alt[0].Line)

	dep := ofKind(r.Warnings, KindDeprecatedTag)
	require.Len(t, dep, 1)
	assert.Equal(t, "Deprecated HTML tag: <center>", dep[0].Message)
	assert.Equal(t, 3, dep[0].Line)
}

func TestDetect_HTMLIgnoresScriptAndComments(t *testing.T) {
	code := "<!doctype html>\n<!-- <div> -->\n<script>if (a < b) { x = '</p>'; }</script>\n<p>ok</p>"
	r := Detect(code, language.HTML)
	assert.Empty(t, r.Errors, "errors: %+v", r.Errors)
}

func TestDetect_HTMLUnexpectedClosingTag(t *testing.T) {
	r := Detect("<!DOCTYPE html>\n</p>", language.HTML)

	require.Len(t, r.Errors, 1)
	assert.Equal(t, KindUnexpectedClosingTag, r.Errors[0].Kind)
	assert.Equal(t, "Unexpected closing tag: </p>", r.Errors[0].Message)
	assert.Equal(t, 2, r.Errors[0].Line)
}

func TestDetect_CommonRules(t *testing.T) {
	r := Detect("x = 1  ", language.Python)
	ws := ofKind(r.Warnings, KindTrailingWhitespace)
	require.Len(t, ws, 1)
	assert.Equal(t, 7, ws[0].Column)

	long := "# " + strings.Repeat("a", 120)
	r = Detect(long, language.Python)
	ll := ofKind(r.Warnings, KindLongLine)
	require.Len(t, ll, 1)
	assert.Equal(t, DefaultLongLineLength, ll[0].Column)

	r = New(WithLongLineLength(200)).Detect(long, language.Python)
	assert.Empty(t, ofKind(r.Warnings, KindLongLine))
}

func TestDetect_Disabled(t *testing.T) {
	r := Detect("console.log(1);", language.JavaScript)
	require.Len(t, ofKind(r.Warnings, KindConsoleLog), 1)

	r = New(WithDisabled(KindConsoleLog)).Detect("console.log(1);", language.JavaScript)
	assert.Empty(t, ofKind(r.Warnings, KindConsoleLog))
	assert.Equal(t, "No syntax issues detected", r.Summary)
}

func TestDetect_EmptyAndFallback(t *testing.T) {
	r := Detect("  \n\t", language.JavaScript)
	assert.True(t, r.IsValid)
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Warnings)
	assert.Equal(t, "No syntax issues detected", r.Summary)

	r = Detect("console.log(1);", "cobol")
	assert.Len(t, ofKind(r.Warnings, KindConsoleLog), 1)
}

func TestDetect_Stateless(t *testing.T) {
	e := New()
	code := "function foo(\n  if (a = b) {}"
	first := e.Detect(code, language.JavaScript)
	second := e.Detect(code, language.JavaScript)
	assert.Equal(t, first, second)
}

func TestSummary(t *testing.T) {
	tests := []struct {
		errs, warnings int
		want           string
	}{
		{0, 0, "No syntax issues detected"},
		{1, 2, "1 error and 2 warnings"},
		{2, 0, "2 errors"},
		{0, 1, "1 warning"},
	}
	for _, tt := range tests {
		if got := summarize(tt.errs, tt.warnings); got != tt.want {
			t.Errorf("summarize(%d, %d) = %q, want %q", tt.errs, tt.warnings, got, tt.want)
		}
	}
}

func TestMaskLine(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{`x = "a(b" + y`, `x = "   " + y`},
		{`x = 1 // note (`, `x = 1          `},
		{`s = 'it''s'`, `s = '  '' '`},
		{`"unterminated`, `"unterminated`},
	}
	for _, tt := range tests {
		if got := maskLine(tt.line, []string{"//"}); got != tt.want {
			t.Errorf("maskLine(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestDetect_AngleBracketsAreDelimiters(t *testing.T) {
	r := Detect("if (a > b) {\n}", language.JavaScript)

	unmatched := ofKind(r.Errors, KindUnmatchedBracket)
	require.Len(t, unmatched, 2, "errors: %+v", r.Errors)
	assert.Equal(t, 7, unmatched[0].Column)
	assert.Equal(t, "Unmatched >", unmatched[0].Message)
	assert.Equal(t, 10, unmatched[1].Column)

	r = Detect("const s = 'a\n(\n';", language.JavaScript)
	assert.Empty(t, ofKind(r.Errors, KindUnclosedBracket))
}
