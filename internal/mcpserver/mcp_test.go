package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/glint/internal/output"
	"github.com/panbanda/glint/pkg/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer("1.0.0-test", nil)
	if s == nil || s.server == nil {
		t.Fatal("NewServer() returned an incomplete server")
	}
	return s
}

// resultText returns the text of a single-content tool result, failing the
// test on tool errors.
func resultText(t *testing.T, result *mcp.CallToolResult, err error) string {
	t.Helper()
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatal("handler returned no content")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is not TextContent: %T", result.Content[0])
	}
	if result.IsError {
		t.Fatalf("handler returned tool error: %s", text.Text)
	}
	return text.Text
}

func intPtr(n int) *int { return &n }

func TestServerCreationEmptyVersion(t *testing.T) {
	if NewServer("", nil) == nil {
		t.Fatal("NewServer(\"\") returned nil")
	}
}

func TestServerUsesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Format.IndentSize = 4
	s := NewServer("test", cfg)
	if got := s.engine.FormatOptions().IndentSize; got != 4 {
		t.Errorf("engine indent = %d, want 4", got)
	}
}

func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"detect_language": describeDetectLanguage,
		"highlight":       describeHighlight,
		"detect_errors":   describeDetectErrors,
		"analyze_metrics": describeAnalyzeMetrics,
		"format_code":     describeFormatCode,
		"validate_code":   describeValidateCode,
		"check_paths":     describeCheckPaths,
	}

	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
				if !strings.Contains(desc, section) {
					t.Errorf("%s description missing %s section", name, section)
				}
			}
		})
	}
}

func TestGetPaths(t *testing.T) {
	if got := getPaths(nil); len(got) != 1 || got[0] != "." {
		t.Errorf("getPaths(nil) = %v, want [.]", got)
	}
	if got := getPaths([]string{"/a", "/b"}); len(got) != 2 {
		t.Errorf("getPaths() = %v, want paths unchanged", got)
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		format   string
		expected output.Format
	}{
		{"", output.FormatTOON},
		{"json", output.FormatJSON},
		{"JSON", output.FormatJSON},
		{"markdown", output.FormatMarkdown},
		{"md", output.FormatMarkdown},
		{"toon", output.FormatTOON},
		{"xml", output.FormatTOON},
	}

	for _, tt := range tests {
		if got := getFormat(tt.format); got != tt.expected {
			t.Errorf("getFormat(%q) = %v, want %v", tt.format, got, tt.expected)
		}
	}
}

func TestToolError(t *testing.T) {
	result, _, err := toolError("test error message")
	if err != nil {
		t.Fatalf("toolError returned unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("toolError result.IsError should be true")
	}
	text := result.Content[0].(*mcp.TextContent).Text
	if text != "Error: test error message" {
		t.Errorf("toolError text = %q", text)
	}
}

func TestFormatOutput(t *testing.T) {
	data := DetectionResult{Language: "python", Name: "Python", Source: "filename"}

	text, err := formatOutput(data, output.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]string
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("json output does not parse: %v", err)
	}
	if decoded["language"] != "python" {
		t.Errorf("decoded = %v", decoded)
	}

	text, err = formatOutput(data, output.FormatTOON)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "language: python") {
		t.Errorf("toon output = %q", text)
	}

	text, err = formatOutput(data, output.FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(text, "```\n") || !strings.HasSuffix(text, "\n```") {
		t.Errorf("markdown output should be fenced: %q", text)
	}
}

func TestHandleDetectLanguage(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input DetectLanguageInput
		want  []string
	}{
		{"by filename", DetectLanguageInput{Filename: "app.py"}, []string{"language: python", "source: filename"}},
		{"by content", DetectLanguageInput{Code: "def greet(name):\n    print(\"hi\")\n"}, []string{"language: python", "source: content"}},
		{"extension wins", DetectLanguageInput{Filename: "x.rb", Code: "def f():\n    pass\n"}, []string{"language: ruby"}},
		{"inconclusive", DetectLanguageInput{Code: "zzz"}, []string{"language: auto", "source: none"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, err := s.handleDetectLanguage(ctx, nil, tt.input)
			text := resultText(t, result, err)
			for _, want := range tt.want {
				if !strings.Contains(text, want) {
					t.Errorf("output %q missing %q", text, want)
				}
			}
		})
	}

	result, _, _ := s.handleDetectLanguage(ctx, nil, DetectLanguageInput{})
	if !result.IsError {
		t.Error("empty input should be a tool error")
	}
}

func TestHandleHighlight(t *testing.T) {
	s := newTestServer(t)
	result, _, err := s.handleHighlight(context.Background(), nil, CodeInput{Code: "x = 1 < 2", Language: "python"})
	text := resultText(t, result, err)

	if !strings.Contains(text, `<span class="token number">1</span>`) {
		t.Errorf("highlight = %q, want a number span", text)
	}
	if strings.Contains(text, " < ") {
		t.Errorf("highlight = %q, raw < should be escaped", text)
	}
}

func TestHandleDetectErrors(t *testing.T) {
	s := newTestServer(t)
	input := ReportInput{
		CodeInput: CodeInput{Code: "function f() {\n  return 1;\n", Language: "javascript"},
		Format:    "json",
	}
	result, _, err := s.handleDetectErrors(context.Background(), nil, input)
	text := resultText(t, result, err)

	var decoded struct {
		Language string `json:"language"`
		Result   struct {
			IsValid    bool `json:"is_valid"`
			ErrorCount int  `json:"error_count"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("output does not parse: %v\n%s", err, text)
	}
	if decoded.Language != "javascript" {
		t.Errorf("language = %q", decoded.Language)
	}
	if decoded.Result.IsValid || decoded.Result.ErrorCount == 0 {
		t.Errorf("unclosed brace should be an error: %s", text)
	}
}

func TestHandleAnalyzeMetrics(t *testing.T) {
	s := newTestServer(t)
	input := ReportInput{
		CodeInput: CodeInput{Code: "def f(x):\n    if x:\n        return 1\n    return 2", Language: "py"},
		Format:    "json",
	}
	result, _, err := s.handleAnalyzeMetrics(context.Background(), nil, input)
	text := resultText(t, result, err)

	var decoded MetricsResult
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	if decoded.Language != "python" {
		t.Errorf("language = %q, want alias resolved to python", decoded.Language)
	}
	if decoded.Metrics.Basic.TotalLines != 4 {
		t.Errorf("total lines = %d, want 4", decoded.Metrics.Basic.TotalLines)
	}
	if decoded.Metrics.Structure.Functions != 1 {
		t.Errorf("functions = %d, want 1", decoded.Metrics.Structure.Functions)
	}
}

func TestHandleFormatCode(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, _, err := s.handleFormatCode(ctx, nil, FormatCodeInput{CodeInput: CodeInput{Code: `{"a":1}`, Language: "json"}})
	if got := resultText(t, result, err); got != "{\n  \"a\": 1\n}" {
		t.Errorf("default format = %q", got)
	}

	result, _, err = s.handleFormatCode(ctx, nil, FormatCodeInput{
		CodeInput:  CodeInput{Code: `{ "a" : 1 }`, Language: "json"},
		IndentSize: intPtr(0),
	})
	if got := resultText(t, result, err); got != `{"a":1}` {
		t.Errorf("compact format = %q", got)
	}

	result, _, _ = s.handleFormatCode(ctx, nil, FormatCodeInput{CodeInput: CodeInput{Code: "{}"}, IndentSize: intPtr(11)})
	if !result.IsError {
		t.Error("out-of-range indent_size should be a tool error")
	}
}

func TestHandleValidateCode(t *testing.T) {
	s := newTestServer(t)
	input := ReportInput{CodeInput: CodeInput{Code: `{"a": }`, Language: "json"}, Format: "json"}
	result, _, err := s.handleValidateCode(context.Background(), nil, input)
	text := resultText(t, result, err)

	var decoded ValidationResult
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	if decoded.Validation.IsValid || len(decoded.Validation.Issues) == 0 {
		t.Fatalf("broken JSON should be invalid: %s", text)
	}
	if decoded.Validation.Issues[0].Type != "invalid_json" {
		t.Errorf("issue type = %q, want invalid_json", decoded.Validation.Issues[0].Type)
	}
}

func TestHandleCheckPaths(t *testing.T) {
	tmpDir := t.TempDir()
	files := map[string]string{
		"ok.py":               "def f():\n    return 1\n",
		"broken.js":           "function f() {\n  return 1;\n",
		"node_modules/dep.js": "function f() {\n",
		"notes.txt":           "not code",
	}
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	s := newTestServer(t)
	result, _, err := s.handleCheckPaths(context.Background(), nil, CheckPathsInput{Paths: []string{tmpDir}, Format: "json"})
	text := resultText(t, result, err)

	var report output.CheckReport
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	if report.FileCount != 2 {
		t.Errorf("file_count = %d, want 2 (node_modules and .txt skipped)", report.FileCount)
	}
	if report.ErrorCount == 0 {
		t.Error("broken.js should contribute errors")
	}
	if !strings.HasSuffix(report.Files[0].Path, "broken.js") {
		t.Errorf("files should be sorted by path, got %s first", report.Files[0].Path)
	}

	result, _, _ = s.handleCheckPaths(context.Background(), nil, CheckPathsInput{Paths: []string{t.TempDir()}})
	if !result.IsError {
		t.Error("an empty directory should be a tool error")
	}
}

func TestParseFrontmatter(t *testing.T) {
	content := []byte("---\ndescription: Fix it\narguments:\n  - name: code\n    required: true\n---\n\nBody {{code}}\n")
	fm, body := parseFrontmatter(content)

	if fm.Description != "Fix it" {
		t.Errorf("description = %q", fm.Description)
	}
	if len(fm.Arguments) != 1 || fm.Arguments[0].Name != "code" || !fm.Arguments[0].Required {
		t.Errorf("arguments = %+v", fm.Arguments)
	}
	if body != "Body {{code}}\n" {
		t.Errorf("body = %q", body)
	}

	fm, body = parseFrontmatter([]byte("no frontmatter"))
	if fm.Description != "" || body != "no frontmatter" {
		t.Errorf("plain content = %+v, %q", fm, body)
	}
}

func TestExpandPrompt(t *testing.T) {
	declared := []promptArgument{{Name: "code"}, {Name: "language"}}
	got := expandPrompt("lang {{language}}: {{code}} {{other}}", declared, map[string]string{"code": "x = 1"})
	if got != "lang : x = 1 {{other}}" {
		t.Errorf("expandPrompt() = %q", got)
	}
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("")
	if err != nil {
		t.Fatal(err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m.Name != "io.github.panbanda/glint" || m.Version != "0.0.0" {
		t.Errorf("manifest = %+v", m)
	}
	if len(m.Packages) != 1 || m.Packages[0].Transport.Type != "stdio" {
		t.Fatalf("packages = %+v", m.Packages)
	}
	pkg := m.Packages[0]
	if pkg.Identifier != "ghcr.io/panbanda/glint:0.0.0" {
		t.Errorf("identifier = %q", pkg.Identifier)
	}
	if len(pkg.EnvironmentVariables) != 1 || pkg.EnvironmentVariables[0].Name != "GLINT_CONFIG" {
		t.Errorf("environment = %+v", pkg.EnvironmentVariables)
	}
}

func TestManifestVersion(t *testing.T) {
	tests := map[string]string{
		"":       "0.0.0",
		"dev":    "0.0.0",
		"v1.4.2": "1.4.2",
		"2.0.0":  "2.0.0",
	}
	for in, want := range tests {
		if got := manifestVersion(in); got != want {
			t.Errorf("manifestVersion(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestClientSession drives the server through an in-memory client.
func TestClientSession(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	names := make(map[string]bool)
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"detect_language", "highlight", "detect_errors", "analyze_metrics", "format_code", "validate_code", "check_paths"} {
		if !names[want] {
			t.Errorf("tool %s not registered", want)
		}
	}

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "format_code",
		Arguments: map[string]any{"code": `{"b":[1,2]}`, "language": "json", "indent_size": 0},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if got := resultText(t, res, nil); got != `{"b":[1,2]}` {
		t.Errorf("format_code = %q", got)
	}

	prompt, err := session.GetPrompt(ctx, &mcp.GetPromptParams{
		Name:      "fix-syntax",
		Arguments: map[string]string{"code": "print((1)", "language": "python"},
	})
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	text := prompt.Messages[0].Content.(*mcp.TextContent).Text
	if !strings.Contains(text, "print((1)") || !strings.Contains(text, `"python"`) {
		t.Errorf("prompt not expanded: %q", text)
	}
}
