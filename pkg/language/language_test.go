package language

import (
	"testing"
)

func TestDetectFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     Tag
	}{
		// JavaScript family
		{"app.js", JavaScript},
		{"Component.JSX", JavaScript},
		{"module.mjs", JavaScript},
		{"types.ts", TypeScript},
		{"view.tsx", TypeScript},

		// Python
		{"x.py", Python},
		{"gui.pyw", Python},

		// C/C++
		{"main.cpp", CPP},
		{"main.cc", CPP},
		{"header.h", CPP},
		{"header.hpp", CPP},

		// Others
		{"Main.java", Java},
		{"index.html", HTML},
		{"index.htm", HTML},
		{"site.css", CSS},
		{"index.php", PHP},
		{"app.rb", Ruby},
		{"main.go", Go},
		{"lib.rs", Rust},
		{"query.sql", SQL},
		{"package.json", JSON},
		{"README.md", Markdown},
		{"ci.yml", YAML},
		{"ci.yaml", YAML},
		{"build.sh", Bash},
		{"dir/sub.dir/file.go", Go},

		// Unknown
		{"", Auto},
		{"Makefile", Auto},
		{"notes.txt", Auto},
		{"trailingdot.", Auto},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := DetectFromFilename(tt.filename); got != tt.want {
				t.Errorf("DetectFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestDetectFromCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want Tag
	}{
		{
			name: "python",
			code: "def greet(name):\n    print(\"hi\")\n",
			want: Python,
		},
		{
			name: "javascript",
			code: "import React from 'react';\nconsole.log(\"x\");\n",
			want: JavaScript,
		},
		{
			name: "go",
			code: "package main\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n",
			want: Go,
		},
		{
			name: "java",
			code: "public class Main {\n  public static void main(String[] args) {\n    System.out.println(\"hi\");\n  }\n}\n",
			want: Java,
		},
		{
			name: "python shebang overrides scoring",
			code: "#!/usr/bin/env python3\nconst x = 1;\n",
			want: Python,
		},
		{
			name: "node shebang",
			code: "#!/usr/bin/env node\nx = 1\n",
			want: JavaScript,
		},
		{
			name: "shell shebang falls back to javascript",
			code: "#!/bin/bash\necho hi\n",
			want: JavaScript,
		},
		{
			name: "below confidence floor",
			code: "hello world\n",
			want: Auto,
		},
		{
			name: "empty",
			code: "",
			want: Auto,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFromCode(tt.code); got != tt.want {
				t.Errorf("DetectFromCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectPrefersFilename(t *testing.T) {
	if got := Detect("x.py", ""); got != Python {
		t.Errorf("Detect(x.py, \"\") = %q, want python", got)
	}
	if got := Detect("", ""); got != Auto {
		t.Errorf("Detect(\"\", \"\") = %q, want auto", got)
	}
	if got := Detect("main.go", "def f():\n    print(1)\n"); got != Go {
		t.Errorf("Detect(main.go, python code) = %q, want go", got)
	}
	if got := Detect("notes.txt", "def f():\n    print(1)\n"); got != Python {
		t.Errorf("Detect(notes.txt, python code) = %q, want python", got)
	}
}

func TestDetectOnlyReadsFirstLines(t *testing.T) {
	code := ""
	for i := 0; i < maxDetectLines; i++ {
		code += "plain text\n"
	}
	code += "def f():\n    print(1)\n"
	if got := DetectFromCode(code); got != Auto {
		t.Errorf("DetectFromCode() = %q, want auto for signal past line %d", got, maxDetectLines)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		in   Tag
		want Tag
	}{
		{Python, Python},
		{Auto, JavaScript},
		{"", JavaScript},
		{"py", Python},
		{"RS", Rust},
		{"cobol", JavaScript},
	}
	for _, tt := range tests {
		if got := Resolve(tt.in); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Tag
	}{
		{"python", Python},
		{"py", Python},
		{" Go ", Go},
		{"auto", Auto},
		{"brainfuck", Auto},
	}
	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEveryTagHasProfile(t *testing.T) {
	tags := Supported()
	if len(tags) != 16 {
		t.Fatalf("Supported() returned %d tags, want 16", len(tags))
	}
	for _, tag := range tags {
		p := Lookup(tag)
		if p == nil {
			t.Errorf("Lookup(%q) = nil", tag)
			continue
		}
		if p.Name == "" {
			t.Errorf("profile %q has no display name", tag)
		}
		if len(p.Control.Start) == 0 {
			t.Errorf("profile %q has no control keywords", tag)
		}
	}
	if Lookup(Auto) != nil {
		t.Error("Lookup(auto) should be nil")
	}
	if MustLookup("nope").Tag != JavaScript {
		t.Error("MustLookup of unknown tag should fall back to javascript")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		tag  Tag
		want string
	}{
		{CPP, "C++"},
		{JavaScript, "JavaScript"},
		{Auto, "Auto-detect"},
		{"zz", "Unknown"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.tag); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestIsCommentLine(t *testing.T) {
	js := Lookup(JavaScript)
	py := Lookup(Python)
	sql := Lookup(SQL)
	tests := []struct {
		p    *Profile
		line string
		want bool
	}{
		{js, "// note", true},
		{js, "   /* start", true},
		{js, "  * middle", true},
		{js, "end */", true},
		{js, "x = 1; // trailing", false},
		{js, "# not a js comment", false},
		{js, "", false},
		{py, "# note", true},
		{py, "x = 1", false},
		{sql, "-- select", true},
	}
	for _, tt := range tests {
		if got := tt.p.IsCommentLine(tt.line); got != tt.want {
			t.Errorf("%s IsCommentLine(%q) = %v, want %v", tt.p.Tag, tt.line, got, tt.want)
		}
	}
}

func TestControlKeywordCounting(t *testing.T) {
	js := Lookup(JavaScript)
	tests := []struct {
		line   string
		starts int
		ends   int
	}{
		{"if (a && b) {", 2, 0},
		{"} else {", 0, 2},
		{"const diff = 3;", 0, 0},
		{"ifdef = 1", 0, 0},
		{"return ok ? 1 : 2;", 1, 0},
	}
	for _, tt := range tests {
		if got := js.CountControlStarts(tt.line); got != tt.starts {
			t.Errorf("CountControlStarts(%q) = %d, want %d", tt.line, got, tt.starts)
		}
		if got := js.CountControlEnds(tt.line); got != tt.ends {
			t.Errorf("CountControlEnds(%q) = %d, want %d", tt.line, got, tt.ends)
		}
	}
}

func TestIsVoidElement(t *testing.T) {
	for _, tag := range []string{"br", "IMG", "wbr"} {
		if !IsVoidElement(tag) {
			t.Errorf("IsVoidElement(%q) = false, want true", tag)
		}
	}
	for _, tag := range []string{"div", "span", ""} {
		if IsVoidElement(tag) {
			t.Errorf("IsVoidElement(%q) = true, want false", tag)
		}
	}
}
