package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/glint/pkg/language"
)

func lines(s ...string) string {
	return strings.Join(s, "\n")
}

func TestFormat_JSON(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, "{\n  \"a\": 1\n}", Format(`{"a":1,}`, language.JSON, opts))

	in := `{'a': [1, 2,], b: {"c": null}, // note
"d": "it's"}`
	want := lines(
		"{",
		`  "a": [`,
		"    1,",
		"    2",
		"  ],",
		`  "b": {`,
		`    "c": null`,
		"  },",
		`  "d": "it's"`,
		"}",
	)
	got := Format(in, language.JSON, opts)
	assert.Equal(t, want, got)
	assert.Equal(t, got, Format(got, language.JSON, opts))
}

func TestFormat_JSONOptions(t *testing.T) {
	code := `{ "a" : [ 1 ] }`

	assert.Equal(t, `{"a":[1]}`, Format(code, language.JSON, Options{IndentSize: 0}))
	assert.Equal(t, "{\n\t\"a\": [\n\t\t1\n\t]\n}", Format(code, language.JSON, Options{UseTabs: true}))

	broken := `{"a": }`
	assert.Equal(t, broken, Format(broken, language.JSON, DefaultOptions()))
}

func TestFormat_JSONKeepsStringContents(t *testing.T) {
	got := Format(`{"url": "http://x//y", 'q': 'say "hi"'}`, language.JSON, DefaultOptions())
	assert.Equal(t, "{\n  \"url\": \"http://x//y\",\n  \"q\": \"say \\\"hi\\\"\"\n}", got)
}

func TestFormat_JavaScript(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "function",
			in:   lines("function add(a,b){", "return a+b", "}", "const x=add(1,2)"),
			want: lines("function add(a, b) {", "  return a + b;", "}", "const x = add(1, 2);"),
		},
		{
			name: "if else",
			in:   lines("if(x){", "foo()", "}else{", "bar()", "}"),
			want: lines("if (x) {", "  foo();", "} else {", "  bar();", "}"),
		},
		{
			name: "strings untouched",
			in:   "const s = 'a=b,c'",
			want: "const s = 'a=b,c';",
		},
		{
			name: "method chain",
			in:   lines("promise", ".then(done)"),
			want: lines("promise", "  .then(done);"),
		},
		{
			name: "arrow",
			in:   "const f = (a)=>a",
			want: "const f = (a) => a;",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in, language.JavaScript, DefaultOptions()))
		})
	}
}

func TestFormat_BinaryOperators(t *testing.T) {
	tests := []struct {
		name string
		tag  language.Tag
		in   string
		want string
	}{
		{"arithmetic", language.JavaScript, "let y=a+b*c-d/e", "let y = a + b * c - d / e;"},
		{"comparison in condition", language.JavaScript, "if(a<b&&c>d){x=1}", "if (a < b && c > d) { x = 1 }"},
		{"unary minus", language.JavaScript, "f(-1, x=-y)", "f(-1, x = -y);"},
		{"after return", language.JavaScript, "return -x", "return -x;"},
		{"exponent", language.JavaScript, "const e=1e-5+n%2", "const e = 1e-5 + n % 2;"},
		{"string concatenation", language.JavaScript, `s="a"+b`, `s = "a" + b;`},
		{"python", language.Python, "x=a+b", "x = a + b"},
		{"python splats", language.Python, "f(*args, **kw)", "f(*args, **kw)"},
		{"python floor division", language.Python, "q=a//b", "q = a // b"},
		{"python power", language.Python, "y=2**n", "y = 2 ** n"},
		{"java generics", language.Java, "List<String> xs=new ArrayList<>();", "List<String> xs = new ArrayList<>();"},
		{"java loop", language.Java, "for(int i=0;i<n;i++){}", "for (int i = 0; i < n; i++) {}"},
		{"rust nested generics", language.Rust, "let m: Vec<Vec<u8>>=Vec::new();", "let m: Vec<Vec<u8>> = Vec::new();"},
		{"rust return type", language.Rust, "fn f(a:i32)->i32{a*2}", "fn f(a:i32) -> i32 { a * 2 }"},
		{"cpp pointers", language.CPP, "int *p=&x; char* s; n=a*b;", "int *p = &x; char* s; n = a * b;"},
		{"cpp stream", language.CPP, "std::cout<<x;", "std::cout << x;"},
		{"go pointer slice", language.Go, "var xs []*T", "var xs []*T"},
		{"ruby prefix call", language.Ruby, "puts -x", "puts -x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in, tt.tag, DefaultOptions()))
		})
	}
}

func TestFormat_BlockBraces(t *testing.T) {
	js := func(in string) string { return Format(in, language.JavaScript, DefaultOptions()) }

	assert.Equal(t, "if (ok) { run() }", js("if(ok){run()}"))
	assert.Equal(t, "function f() {}", js("function f(){}"))
	assert.Equal(t, "const p = {x: 1};", js("const p={x:1}"))
	assert.Equal(t, "f({a: 1});", js("f({a:1})"))
}

func TestFormat_JavaScriptObjectBreaking(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxLineLength = 40

	in := `const config = {name: "glint", version: 2, debug: true}`
	want := lines(
		"const config = {",
		`  name: "glint",`,
		"  version: 2,",
		"  debug: true",
		"};",
	)
	got := Format(in, language.JavaScript, opts)
	assert.Equal(t, want, got)
	assert.Equal(t, got, Format(got, language.JavaScript, opts))

	short := `const p = {x: 1, y: 2};`
	assert.Equal(t, short, Format(short, language.JavaScript, opts))
}

func TestFormat_BlankLinesAndLineEndings(t *testing.T) {
	code := "a()\r\n\r\nb()\n"

	assert.Equal(t, "a();\n\nb();\n", Format(code, language.JavaScript, DefaultOptions()))

	opts := DefaultOptions()
	opts.PreserveBlankLines = false
	assert.Equal(t, "a();\nb();\n", Format(code, language.JavaScript, opts))
}

func TestFormat_Tabs(t *testing.T) {
	opts := DefaultOptions()
	opts.UseTabs = true
	assert.Equal(t, "if (x) {\n\ty();\n}", Format("if (x) {\ny()\n}", language.JavaScript, opts))
}

func TestFormat_Python(t *testing.T) {
	in := lines(
		"import sys",
		"import os",
		"def greet(name='world'):",
		"  if name:",
		"      print('hi '+name)",
		"  else:",
		`      print("none")`,
	)
	want := lines(
		"import os",
		"import sys",
		"",
		`def greet(name="world"):`,
		"  if name:",
		`    print("hi " + name)`,
		"  else:",
		`    print("none")`,
	)
	assert.Equal(t, want, Format(in, language.Python, DefaultOptions()))
}

func TestFormat_PythonDictAndQuotes(t *testing.T) {
	got := Format(`d={'a':1,'b':[1,2]}`, language.Python, DefaultOptions())
	assert.Equal(t, `d = {"a": 1, "b": [1, 2]}`, got)

	kept := `s = 'say "hi"'`
	assert.Equal(t, kept, Format(kept, language.Python, DefaultOptions()))
}

func TestFormat_PythonUnindentedBody(t *testing.T) {
	got := Format(lines("def f():", "return 1", "print(f())"), language.Python, DefaultOptions())
	assert.Equal(t, lines("def f():", "  return 1", "print(f())"), got)
}

func TestFormat_PythonImportsAfterDocstring(t *testing.T) {
	in := lines(
		`"""Tool."""`,
		"from pathlib import Path",
		"from __future__ import annotations",
		"",
		"",
		"x = Path('.')",
	)
	want := lines(
		`"""Tool."""`,
		"",
		"from __future__ import annotations",
		"from pathlib import Path",
		"",
		"",
		`x = Path(".")`,
	)
	got := Format(in, language.Python, DefaultOptions())
	assert.Equal(t, want, got)
	assert.Equal(t, got, Format(got, language.Python, DefaultOptions()))
}

func TestFormat_Java(t *testing.T) {
	in := lines("public class A {", "static public final int X=1;", "}")
	want := lines("public class A {", "  public static final int X = 1;", "}")
	assert.Equal(t, want, Format(in, language.Java, DefaultOptions()))
}

func TestFormat_CPP(t *testing.T) {
	in := lines("#  include   < vector >", "int main(){", "#ifdef DEBUG", "return 0;", "#endif", "}")
	want := lines("#include <vector>", "int main() {", "#ifdef DEBUG", "  return 0;", "#endif", "}")
	assert.Equal(t, want, Format(in, language.CPP, DefaultOptions()))
}

func TestFormat_HTML(t *testing.T) {
	in := lines(
		"<div class=box>",
		"<ul>",
		"<li>One",
		"<li>Two</li>",
		"</ul>",
		`<img src="a.png">`,
		"<br/>",
		"</div>",
	)
	want := lines(
		`<div class="box">`,
		"  <ul>",
		"    <li>One",
		"    <li>Two</li>",
		"  </ul>",
		`  <img src="a.png" />`,
		"  <br />",
		"</div>",
	)
	got := Format(in, language.HTML, DefaultOptions())
	assert.Equal(t, want, got)
	assert.Equal(t, got, Format(got, language.HTML, DefaultOptions()))
}

func TestFormat_HTMLRawElements(t *testing.T) {
	in := lines(
		"<body>",
		"<script>",
		"function f() {",
		"return 1;",
		"}",
		"</script>",
		"<pre>",
		"  keep   this",
		"</pre>",
		"</body>",
	)
	want := lines(
		"<body>",
		"  <script>",
		"    function f() {",
		"      return 1;",
		"    }",
		"  </script>",
		"  <pre>",
		"  keep   this",
		"</pre>",
		"</body>",
	)
	assert.Equal(t, want, Format(in, language.HTML, DefaultOptions()))
}

func TestFormat_CSS(t *testing.T) {
	in := "a{color:red;margin:0 auto}\n\n.b>.c,.d{padding:1px}\na:hover{color:rgba(0,0,0,.5)}"
	want := lines(
		"a {",
		"  color: red;",
		"  margin: 0 auto;",
		"}",
		"",
		".b > .c, .d {",
		"  padding: 1px;",
		"}",
		"a:hover {",
		"  color: rgba(0, 0, 0, .5);",
		"}",
	)
	got := Format(in, language.CSS, DefaultOptions())
	assert.Equal(t, want, got)
	assert.Equal(t, got, Format(got, language.CSS, DefaultOptions()))
}

func TestFormat_CSSMedia(t *testing.T) {
	got := Format("@media (max-width:600px){a{color:red}}", language.CSS, DefaultOptions())
	assert.Equal(t, lines("@media (max-width: 600px) {", "  a {", "    color: red;", "  }", "}"), got)
}

func TestFormat_Ruby(t *testing.T) {
	in := lines(
		"class Greeter",
		"def hello(name)",
		"if name",
		`puts "hi"`,
		"else",
		`puts "none"`,
		"end",
		"end",
		"end",
	)
	want := lines(
		"class Greeter",
		"  def hello(name)",
		"    if name",
		`      puts "hi"`,
		"    else",
		`      puts "none"`,
		"    end",
		"  end",
		"end",
	)
	assert.Equal(t, want, Format(in, language.Ruby, DefaultOptions()))
}

func TestFormat_Bash(t *testing.T) {
	in := lines(
		"if [ -f x ]; then",
		"echo yes",
		"else",
		"echo no",
		"fi",
		"for i in 1 2; do",
		"  echo ${i}",
		"done",
	)
	want := lines(
		"if [ -f x ]; then",
		"  echo yes",
		"else",
		"  echo no",
		"fi",
		"for i in 1 2; do",
		"  echo ${i}",
		"done",
	)
	assert.Equal(t, want, Format(in, language.Bash, DefaultOptions()))
}

func TestFormat_PreservedLanguages(t *testing.T) {
	md := "# Title  \n\n    code\n"
	assert.Equal(t, md, Format(md, language.Markdown, DefaultOptions()))

	assert.Equal(t, "a:\n  b: 1\n", Format("a:   \n  b: 1  \n", language.YAML, DefaultOptions()))
}

func TestFormat_FallbackAndBlank(t *testing.T) {
	assert.Equal(t, "x = 1;", Format("x=1", "cobol", DefaultOptions()))
	assert.Equal(t, "x = 1;", Format("x=1", language.Auto, DefaultOptions()))

	for _, blank := range []string{"", "  \n\t"} {
		assert.Equal(t, blank, Format(blank, language.Python, DefaultOptions()))
	}
}

func TestFormat_NeverPanics(t *testing.T) {
	inputs := []string{
		"`unterminated ${",
		"/* open comment",
		"\"\"\"",
		"<div <span",
		"<!-- x",
		"{{{{",
		")))]]]}}}",
		"'",
		"a{b:c",
		"def f(:\n\tif",
		"@media {",
		"<script>",
		"\x00\xff\xfe",
	}
	for _, tag := range language.Supported() {
		for _, in := range inputs {
			require.NotPanics(t, func() {
				Format(in, tag, DefaultOptions())
				Format(in, tag, Options{IndentSize: -3, MaxLineLength: 1})
			}, "%s: %q", tag, in)
		}
	}
}

func TestValidateCode(t *testing.T) {
	v := ValidateCode("", language.JSON)
	assert.True(t, v.IsValid)
	assert.NotNil(t, v.Issues)
	assert.Empty(t, v.Issues)

	v = ValidateCode(`{"a": 1}`, language.JSON)
	assert.True(t, v.IsValid)

	v = ValidateCode(`{"a": 1,}`, language.JSON)
	assert.False(t, v.IsValid)
	require.Len(t, v.Issues, 1)
	assert.Equal(t, ValidationIssue{
		Type:       IssueInvalidJSON,
		Message:    "Invalid JSON format",
		Suggestion: "Check for syntax errors like missing quotes or commas",
	}, v.Issues[0])

	v = ValidateCode("foo(]", language.JavaScript)
	require.Len(t, v.Issues, 2)
	assert.Equal(t, IssueUnbalancedBrackets, v.Issues[0].Type)
	assert.Equal(t, "Unbalanced bracket: ]", v.Issues[0].Message)
	assert.Equal(t, IssueUnclosedBrackets, v.Issues[1].Type)
	assert.Equal(t, "Unclosed brackets detected", v.Issues[1].Message)

	v = ValidateCode("a: [1, 2\nb: c", language.YAML)
	assert.False(t, v.IsValid)
	assert.Equal(t, IssueInvalidYAML, v.Issues[0].Type)

	v = ValidateCode("key: value\nlist:\n  - 1\n", language.YAML)
	assert.True(t, v.IsValid)

	v = ValidateCode("s = \"(\" // )", language.JavaScript)
	assert.True(t, v.IsValid, "brackets in strings and comments are counted")

	v = ValidateCode("s = \"[\"", language.JavaScript)
	require.Len(t, v.Issues, 1)
	assert.Equal(t, IssueUnclosedBrackets, v.Issues[0].Type)
}
