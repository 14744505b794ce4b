package language

import "regexp"

// DetectionOrder is the order languages are scored in content detection.
// On equal scores the earlier language wins.
var DetectionOrder = []Tag{
	JavaScript, Python, Java, CPP, HTML, CSS, PHP, Ruby, Go, Rust,
}

// tableOrder is the listing order of Supported.
var tableOrder = []Tag{
	JavaScript, Python, Java, CPP, HTML, CSS, PHP, Ruby, Go, Rust,
	TypeScript, SQL, JSON, Markdown, YAML, Bash,
}

var aliases = map[string]Tag{
	"js":  JavaScript,
	"jsx": JavaScript,
	"mjs": JavaScript,
	"cjs": JavaScript,
	"ts":  TypeScript,
	"tsx": TypeScript,
	"py":  Python,
	"pyw": Python,
	"pyx": Python,
	"cxx": CPP,
	"cc":  CPP,
	"h":   CPP,
	"hpp": CPP,
	"c++": CPP,
	"rb":  Ruby,
	"rs":  Rust,
	"sh":  Bash,
	"zsh": Bash,
	"yml": YAML,
	"md":  Markdown,
	"htm": HTML,
}

func re(pattern string) *regexp.Regexp {
	return regexp.MustCompile(pattern)
}

func res(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

var (
	cStyleControl = ControlKeywords{
		Start: []string{"if", "for", "while", "switch", "case", "catch", "&&", "||", "?"},
		End:   []string{"else", "}", "break", "continue"},
	}
	typedControl = ControlKeywords{
		Start: []string{"if", "for", "while", "switch", "case", "catch", "&&", "||"},
		End:   []string{"else", "}", "break", "continue"},
	}
)

var jsKeywords = []string{
	"function", "const", "let", "var", "if", "else", "for", "while", "do", "switch",
	"case", "default", "break", "continue", "return", "try", "catch", "finally",
	"throw", "new", "this", "class", "extends", "import", "export", "from", "async",
	"await", "yield", "typeof", "instanceof", "in", "of", "delete", "void",
	"true", "false", "null", "undefined",
}

var jsDeclarators = map[string]DeclKind{
	"function": DeclFunction,
	"class":    DeclClass,
}

func init() {
	for alias, tag := range aliases {
		aliasTable[alias] = tag
	}

	register(&Profile{
		Tag:             JavaScript,
		Name:            "JavaScript",
		Extensions:      []string{"js", "jsx", "mjs", "cjs"},
		LineComments:    []string{"//"},
		BlockComment:    [2]string{"/*", "*/"},
		Control:         cStyleControl,
		FunctionPattern: re(`function\s+(\w+)\s*\([^)]*\)|const\s+(\w+)\s*=\s*(?:\([^)]*\)\s*=>|function)|let\s+(\w+)\s*=\s*(?:\([^)]*\)\s*=>|function)|(\w+)\s*\([^)]*\)\s*\{`),
		ClassPattern:    re(`class\s+(\w+)`),
		ImportPattern:   re(`(?:import|require)\s+[^;]+`),
		MainPattern:     re(`function\s+main\s*\(|const\s+main\s*=`),
		Keywords:        jsKeywords,
		Declarators:     jsDeclarators,
		CallHighlight:   true,
		DetectPatterns: res(
			`import\s+.*\s+from\s+['"]`,
			`export\s+(default\s+)?(function|class|const|let)`,
			`console\.log`,
			`function\s+\w+\s*\(`,
			`const\s+\w+\s*=\s*\(\)\s*=>`,
			`document\.getElementById`,
			`React\.`,
			`useState\(\)`,
			`require\(['"]`,
		),
		DetectKeywords: []string{"function", "const", "let", "var", "return", "import", "export", "console"},
		CheckBrackets:  true,
		UndefinedScan:  true,
		Indent:         IndentBrackets,
	})

	register(&Profile{
		Tag:             TypeScript,
		Name:            "TypeScript",
		Extensions:      []string{"ts", "tsx"},
		LineComments:    []string{"//"},
		BlockComment:    [2]string{"/*", "*/"},
		Control:         cStyleControl,
		FunctionPattern: re(`function\s+(\w+)\s*[<(]|const\s+(\w+)\s*=\s*(?:async\s+)?(?:\([^)]*\)\s*(?::\s*[\w<>\[\]]+\s*)?=>|function)|(\w+)\s*\([^)]*\)\s*(?::\s*[\w<>\[\]|]+\s*)?\{`),
		ClassPattern:    re(`(?:class|interface)\s+(\w+)`),
		ImportPattern:   re(`(?:import|require)\s+[^;]+`),
		MainPattern:     re(`function\s+main\s*\(|const\s+main\s*=`),
		Keywords: append(append([]string(nil), jsKeywords...),
			"interface", "type", "enum", "implements", "private", "public", "protected",
			"readonly", "namespace", "declare", "abstract", "as", "keyof", "any",
			"string", "number", "boolean", "never", "unknown"),
		Declarators: map[string]DeclKind{
			"function":  DeclFunction,
			"class":     DeclClass,
			"interface": DeclClass,
			"enum":      DeclClass,
		},
		CallHighlight: true,
		CheckBrackets: true,
		UndefinedScan: true,
		Indent:        IndentBrackets,
	})

	register(&Profile{
		Tag:          Python,
		Name:         "Python",
		Extensions:   []string{"py", "pyw", "pyx"},
		LineComments: []string{"#"},
		Control: ControlKeywords{
			Start: []string{"if", "for", "while", "elif", "except", "and", "or"},
			End:   []string{"else", "elif"},
		},
		FunctionPattern: re(`def\s+(\w+)\s*\([^)]*\)[^:]*:`),
		ClassPattern:    re(`class\s+(\w+)`),
		ImportPattern:   re(`(?m)^\s*(?:import|from)\s+[\w.]+`),
		MainPattern:     re(`def\s+main\s*\(|if\s+__name__\s*==\s*['"]__main__['"]`),
		Keywords: []string{
			"def", "class", "if", "elif", "else", "for", "while", "return", "import",
			"from", "as", "try", "except", "finally", "with", "lambda", "None", "True",
			"False", "and", "or", "not", "in", "is", "pass", "break", "continue",
			"raise", "yield", "global", "nonlocal", "assert", "del", "async", "await",
		},
		Declarators: map[string]DeclKind{
			"def":   DeclFunction,
			"class": DeclClass,
		},
		CallHighlight: true,
		DetectPatterns: res(
			`^def\s+\w+\s*\(`,
			`^class\s+\w+`,
			`import\s+\w+`,
			`from\s+\w+\s+import`,
			`print\(`,
			`if\s+__name__\s*==\s*['"]__main__['"]`,
			`:\s*$`,
			`#.*$`,
		),
		DetectKeywords: []string{"def", "class", "import", "from", "print", "if", "else", "for", "while"},
		CheckBrackets:  true,
		UndefinedScan:  true,
		Indent:         IndentColon,
	})

	register(&Profile{
		Tag:             Java,
		Name:            "Java",
		Extensions:      []string{"java"},
		LineComments:    []string{"//"},
		BlockComment:    [2]string{"/*", "*/"},
		Control:         typedControl,
		FunctionPattern: re(`(?:public|private|protected)\s+(?:\w+\s+)*(\w+)\s*\([^)]*\)\s*(?:throws\s+[\w,\s]+)?\{`),
		ClassPattern:    re(`(?:class|interface|enum)\s+(\w+)`),
		ImportPattern:   re(`import\s+[^;]+`),
		MainPattern:     re(`public\s+static\s+void\s+main\s*\(`),
		Keywords: []string{
			"public", "private", "protected", "class", "interface", "extends",
			"implements", "static", "final", "void", "int", "String", "boolean",
			"char", "byte", "short", "long", "float", "double", "if", "else", "for",
			"while", "do", "switch", "case", "default", "return", "try", "catch",
			"finally", "throw", "throws", "new", "this", "super", "import", "package",
			"abstract", "enum", "null", "true", "false", "break", "continue",
		},
		Declarators: map[string]DeclKind{
			"class":     DeclClass,
			"interface": DeclClass,
			"enum":      DeclClass,
		},
		CallHighlight: true,
		DetectPatterns: res(
			`public\s+class\s+\w+`,
			`public\s+static\s+void\s+main`,
			`System\.out\.println`,
			`import\s+java\.`,
			`private\s+\w+\s+\w+;`,
			`@Override`,
			`new\s+\w+\(\)`,
		),
		DetectKeywords: []string{"public", "class", "static", "void", "main", "import", "System.out.println"},
		CheckBrackets:  true,
		Indent:         IndentBrackets,
	})

	register(&Profile{
		Tag:             CPP,
		Name:            "C++",
		Extensions:      []string{"cpp", "cc", "cxx", "h", "hpp"},
		LineComments:    []string{"//"},
		BlockComment:    [2]string{"/*", "*/"},
		Control:         typedControl,
		FunctionPattern: re(`(?:\w+[\s*&]+)+(\w+)\s*\([^)]*\)\s*(?:const\s*)?\{`),
		ClassPattern:    re(`(?:class|struct)\s+(\w+)`),
		ImportPattern:   re(`#include\s*[<"][^>"]+[>"]`),
		MainPattern:     re(`int\s+main\s*\(`),
		Keywords: []string{
			"int", "char", "float", "double", "bool", "void", "long", "short",
			"unsigned", "signed", "const", "static", "auto", "class", "struct",
			"public", "private", "protected", "virtual", "override", "template",
			"typename", "namespace", "using", "if", "else", "for", "while", "do",
			"switch", "case", "default", "return", "break", "continue", "new",
			"delete", "this", "nullptr", "true", "false", "try", "catch", "throw",
			"include", "std",
		},
		Declarators: map[string]DeclKind{
			"class":  DeclClass,
			"struct": DeclClass,
		},
		CallHighlight: true,
		DetectPatterns: res(
			`#include\s*<.*>`,
			`using\s+namespace\s+std;`,
			`std::`,
			`cout\s*<<`,
			`cin\s*>>`,
			`int\s+main\(\)`,
			`return\s+0;`,
		),
		DetectKeywords: []string{"#include", "using namespace", "std::", "cout", "cin", "int main()"},
		CheckBrackets:  true,
		Indent:         IndentBrackets,
	})

	register(&Profile{
		Tag:          HTML,
		Name:         "HTML",
		Extensions:   []string{"html", "htm"},
		BlockComment: [2]string{"<!--", "-->"},
		Control:      cStyleControl,
		DetectPatterns: res(
			`(?i)<!DOCTYPE html>`,
			`<html.*>`,
			`<head>.*</head>`,
			`<body>.*</body>`,
			`<div.*>`,
			`<script.*>`,
			`<style.*>`,
		),
		DetectKeywords: []string{"<html>", "<head>", "<body>", "<div>", "<script>", "<style>"},
		Indent:         IndentTags,
	})

	register(&Profile{
		Tag:          CSS,
		Name:         "CSS",
		Extensions:   []string{"css"},
		BlockComment: [2]string{"/*", "*/"},
		Control:      cStyleControl,
		DetectPatterns: res(
			`.*\{[^}]*\}`,
			`@media`,
			`@keyframes`,
			`\.\w+\s*\{`,
			`#\w+\s*\{`,
			`:\s*(hover|focus|active)`,
		),
		DetectKeywords: []string{"{", "}", ";", ".class", "#id", "@media"},
		CheckBrackets:  true,
		Indent:         IndentBrackets,
	})

	register(&Profile{
		Tag:             PHP,
		Name:            "PHP",
		Extensions:      []string{"php"},
		LineComments:    []string{"//", "#"},
		BlockComment:    [2]string{"/*", "*/"},
		Control:         cStyleControl,
		FunctionPattern: re(`function\s+(\w+)\s*\(`),
		ClassPattern:    re(`(?:class|interface|trait)\s+(\w+)`),
		ImportPattern:   re(`(?m)^\s*(?:use|require|require_once|include|include_once)\b[^;]*`),
		Keywords: []string{
			"function", "class", "interface", "trait", "extends", "implements",
			"public", "private", "protected", "static", "abstract", "final", "if",
			"else", "elseif", "for", "foreach", "while", "do", "switch", "case",
			"default", "break", "continue", "return", "try", "catch", "finally",
			"throw", "new", "echo", "print", "use", "namespace", "require",
			"include", "as", "null", "true", "false", "array",
		},
		Declarators:   jsDeclarators,
		CallHighlight: true,
		DetectPatterns: res(
			`<\?php`,
			`\$[a-zA-Z_]\w*\s*=`,
			`echo\s+.+;`,
			`function\s+\w+\s*\(`,
			`->\w+\s*\(`,
		),
		DetectKeywords: []string{"<?php", "?>", "$", "echo", "function", "->"},
		CheckBrackets:  true,
		UndefinedScan:  true,
		Indent:         IndentBrackets,
	})

	register(&Profile{
		Tag:          Ruby,
		Name:         "Ruby",
		Extensions:   []string{"rb"},
		LineComments: []string{"#"},
		Control: ControlKeywords{
			Start: []string{"if", "unless", "while", "until", "for", "case", "when", "rescue", "&&", "||"},
			End:   []string{"end"},
		},
		FunctionPattern: re(`def\s+(?:self\.)?(\w+[?!]?)`),
		ClassPattern:    re(`(?:class|module)\s+(\w+)`),
		ImportPattern:   re(`(?m)^\s*require(?:_relative)?\s+`),
		Keywords: []string{
			"def", "class", "module", "if", "elsif", "else", "unless", "while",
			"until", "for", "in", "do", "end", "case", "when", "then", "return",
			"yield", "begin", "rescue", "ensure", "raise", "self", "nil", "true",
			"false", "and", "or", "not", "require", "puts", "attr_accessor",
		},
		Declarators: map[string]DeclKind{
			"def":    DeclFunction,
			"class":  DeclClass,
			"module": DeclClass,
		},
		CallHighlight: true,
		DetectPatterns: res(
			`def\s+\w+`,
			`class\s+\w+`,
			`puts\s+`,
			`end$`,
			`@\w+`,
			`:\w+\s*=>`,
		),
		DetectKeywords: []string{"def", "class", "end", "puts", "@var", "=>"},
		CheckBrackets:  true,
		UndefinedScan:  true,
		Indent:         IndentKeywords,
		BlockOpeners:   []string{"def", "class", "module", "if", "unless", "while", "until", "for", "case", "begin", "do"},
		BlockClosers:   []string{"end"},
		BlockMiddles:   []string{"else", "elsif", "when", "rescue", "ensure"},
	})

	register(&Profile{
		Tag:          Go,
		Name:         "Go",
		Extensions:   []string{"go"},
		LineComments: []string{"//"},
		BlockComment: [2]string{"/*", "*/"},
		Control: ControlKeywords{
			Start: []string{"if", "for", "switch", "select", "case", "&&", "||"},
			End:   []string{"else", "}", "break", "continue"},
		},
		FunctionPattern: re(`func\s+(?:\([^)]*\)\s*)?(\w+)\s*\(`),
		ClassPattern:    re(`type\s+(\w+)\s+(?:struct|interface)`),
		ImportPattern:   re(`(?m)^\s*import\b`),
		MainPattern:     re(`func\s+main\s*\(`),
		Keywords: []string{
			"package", "import", "func", "var", "const", "type", "struct",
			"interface", "map", "chan", "if", "else", "for", "range", "switch",
			"case", "default", "select", "go", "defer", "return", "break",
			"continue", "fallthrough", "goto", "nil", "true", "false",
		},
		Declarators: map[string]DeclKind{
			"func": DeclFunction,
			"type": DeclClass,
		},
		CallHighlight: true,
		DetectPatterns: res(
			`package\s+main`,
			`import\s*\(`,
			`func\s+main\(\)`,
			`fmt\.Print`,
			`:=\s*`,
			`go\s+func\(\)`,
		),
		DetectKeywords: []string{"package", "import", "func", ":=", "go func()"},
		CheckBrackets:  true,
		Indent:         IndentBrackets,
	})

	register(&Profile{
		Tag:          Rust,
		Name:         "Rust",
		Extensions:   []string{"rs"},
		LineComments: []string{"//"},
		BlockComment: [2]string{"/*", "*/"},
		Control: ControlKeywords{
			Start: []string{"if", "for", "while", "loop", "match", "&&", "||"},
			End:   []string{"else", "}", "break", "continue"},
		},
		FunctionPattern: re(`fn\s+(\w+)`),
		ClassPattern:    re(`(?:struct|enum|trait)\s+(\w+)`),
		ImportPattern:   re(`(?m)^\s*use\s+`),
		MainPattern:     re(`fn\s+main\s*\(`),
		Keywords: []string{
			"fn", "let", "mut", "const", "static", "struct", "enum", "trait",
			"impl", "pub", "use", "mod", "crate", "self", "Self", "if", "else",
			"for", "while", "loop", "match", "return", "break", "continue", "as",
			"in", "ref", "move", "where", "async", "await", "true", "false",
		},
		Declarators: map[string]DeclKind{
			"fn":     DeclFunction,
			"struct": DeclClass,
			"enum":   DeclClass,
			"trait":  DeclClass,
		},
		CallHighlight: true,
		DetectPatterns: res(
			`fn\s+main\(\)`,
			`let\s+mut\s+\w+`,
			`println!`,
			`\.unwrap\(\)`,
			`->\s*\w+`,
		),
		DetectKeywords: []string{"fn", "let mut", "println!", "unwrap()", "->"},
		CheckBrackets:  true,
		Indent:         IndentBrackets,
	})

	register(&Profile{
		Tag:          SQL,
		Name:         "SQL",
		Extensions:   []string{"sql"},
		LineComments: []string{"--"},
		BlockComment: [2]string{"/*", "*/"},
		Control: ControlKeywords{
			Start: []string{"CASE", "WHEN", "AND", "OR"},
			End:   []string{"END"},
		},
		Keywords: []string{
			"SELECT", "FROM", "WHERE", "INSERT", "INTO", "VALUES", "UPDATE", "SET",
			"DELETE", "CREATE", "TABLE", "DROP", "ALTER", "JOIN", "LEFT", "RIGHT",
			"INNER", "OUTER", "ON", "AND", "OR", "NOT", "NULL", "AS", "ORDER", "BY",
			"GROUP", "HAVING", "LIMIT", "DISTINCT", "CASE", "WHEN", "THEN", "ELSE",
			"END", "PRIMARY", "KEY", "INDEX", "select", "from", "where", "insert",
			"into", "values", "update", "set", "delete", "create", "table", "join",
			"on", "and", "or", "not", "null", "as", "order", "by", "group", "limit",
		},
		CallHighlight: true,
		CheckBrackets: true,
		Indent:        IndentPreserve,
	})

	register(&Profile{
		Tag:           JSON,
		Name:          "JSON",
		Extensions:    []string{"json"},
		Control:       cStyleControl,
		Keywords:      []string{"true", "false", "null"},
		CheckBrackets: true,
		Indent:        IndentBrackets,
	})

	register(&Profile{
		Tag:        Markdown,
		Name:       "Markdown",
		Extensions: []string{"md", "markdown"},
		Control:    cStyleControl,
		Indent:     IndentPreserve,
	})

	register(&Profile{
		Tag:          YAML,
		Name:         "YAML",
		Extensions:   []string{"yaml", "yml"},
		LineComments: []string{"#"},
		Control:      cStyleControl,
		Keywords:     []string{"true", "false", "null", "yes", "no"},
		Indent:       IndentPreserve,
	})

	register(&Profile{
		Tag:          Bash,
		Name:         "Bash",
		Extensions:   []string{"sh", "bash", "zsh"},
		LineComments: []string{"#"},
		Control: ControlKeywords{
			Start: []string{"if", "elif", "for", "while", "until", "case", "&&", "||"},
			End:   []string{"fi", "done", "esac"},
		},
		FunctionPattern: re(`(?m)^\s*(?:function\s+(\w+)|(\w+)\s*\(\)\s*\{)`),
		ImportPattern:   re(`(?m)^\s*(?:source|\.)\s+\S+`),
		Keywords: []string{
			"if", "then", "else", "elif", "fi", "for", "while", "until", "do",
			"done", "case", "esac", "in", "function", "return", "local", "export",
			"echo", "exit", "source",
		},
		Declarators: map[string]DeclKind{
			"function": DeclFunction,
		},
		CheckBrackets: true,
		Indent:        IndentKeywords,
		BlockOpeners:  []string{"then", "do", "case", "{"},
		BlockClosers:  []string{"fi", "done", "esac", "}"},
		BlockMiddles:  []string{"else", "elif"},
	})
}
