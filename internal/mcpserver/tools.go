package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/glint/internal/fileproc"
	"github.com/panbanda/glint/internal/output"
	"github.com/panbanda/glint/internal/scanner"
	"github.com/panbanda/glint/pkg/analyzer/diagnostics"
	"github.com/panbanda/glint/pkg/analyzer/metrics"
	"github.com/panbanda/glint/pkg/format"
	"github.com/panbanda/glint/pkg/language"
)

// Common input structures for tools

// CodeInput is the base input for the tools that take a snippet.
type CodeInput struct {
	Code     string `json:"code" jsonschema:"Source code to analyze."`
	Language string `json:"language,omitempty" jsonschema:"Language tag or alias (python, js, cpp, ...). Empty or auto detects it from the code."`
}

// ReportInput adds the output format to CodeInput.
type ReportInput struct {
	CodeInput
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// DetectLanguageInput identifies a document by name, content, or both.
type DetectLanguageInput struct {
	Filename string `json:"filename,omitempty" jsonschema:"File name; its extension wins when recognized."`
	Code     string `json:"code,omitempty" jsonschema:"Source code to score when the file name is missing or unrecognized."`
}

// FormatCodeInput adds formatter overrides. Omitted fields use the
// configured defaults.
type FormatCodeInput struct {
	CodeInput
	IndentSize         *int  `json:"indent_size,omitempty" jsonschema:"Spaces per indent level (0-10). For JSON, 0 produces compact output."`
	UseTabs            *bool `json:"use_tabs,omitempty" jsonschema:"Indent with tabs instead of spaces."`
	MaxLineLength      *int  `json:"max_line_length,omitempty" jsonschema:"Line length above which JavaScript object literals are broken up."`
	PreserveBlankLines *bool `json:"preserve_blank_lines,omitempty" jsonschema:"Keep blank lines from the input."`
}

// CheckPathsInput selects files on disk.
type CheckPathsInput struct {
	Paths      []string `json:"paths,omitempty" jsonschema:"Files or directories to check. Defaults to current directory if empty."`
	Format     string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
	ErrorsOnly bool     `json:"errors_only,omitempty" jsonschema:"Drop warnings and report errors only."`
}

// DetectionResult is the answer of detect_language.
type DetectionResult struct {
	Language language.Tag `json:"language" toon:"language"`
	Name     string       `json:"name" toon:"name"`
	// Source is filename, content or none.
	Source string `json:"source" toon:"source"`
}

// DiagnosticsResult pairs diagnostics with the language they ran as.
type DiagnosticsResult struct {
	Language language.Tag       `json:"language" toon:"language"`
	Result   diagnostics.Result `json:"result" toon:"result"`
}

// MetricsResult pairs a metrics report with the language it ran as.
type MetricsResult struct {
	Language language.Tag   `json:"language" toon:"language"`
	Metrics  metrics.Report `json:"metrics" toon:"metrics"`
}

// ValidationResult pairs a validation with the language it ran as.
type ValidationResult struct {
	Language   language.Tag      `json:"language" toon:"language"`
	Validation format.Validation `json:"validation" toon:"validation"`
}

// Helper functions

func getPaths(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

func getFormat(s string) output.Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		out, err := output.MarshalTOON(data)
		if err != nil {
			return "", err
		}
		return "```\n" + out + "\n```", nil
	default:
		return output.MarshalTOON(data)
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text)
}

func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) resolve(input CodeInput) language.Tag {
	return s.engine.Resolve(language.Tag(input.Language), input.Code)
}

// Tool handlers

func (s *Server) handleDetectLanguage(ctx context.Context, req *mcp.CallToolRequest, input DetectLanguageInput) (*mcp.CallToolResult, any, error) {
	if input.Filename == "" && strings.TrimSpace(input.Code) == "" {
		return toolError("filename or code is required")
	}

	result := DetectionResult{Source: "none"}
	if tag := language.DetectFromFilename(input.Filename); tag != language.Auto {
		result.Language, result.Source = tag, "filename"
	} else {
		result.Language = s.engine.DetectLanguage("", input.Code)
		if result.Language != language.Auto {
			result.Source = "content"
		}
	}
	result.Name = language.DisplayName(result.Language)
	return toolResult(result, output.FormatTOON)
}

func (s *Server) handleHighlight(ctx context.Context, req *mcp.CallToolRequest, input CodeInput) (*mcp.CallToolResult, any, error) {
	return textResult(s.engine.Highlight(input.Code, s.resolve(input)))
}

func (s *Server) handleDetectErrors(ctx context.Context, req *mcp.CallToolRequest, input ReportInput) (*mcp.CallToolResult, any, error) {
	tag := s.resolve(input.CodeInput)
	return toolResult(DiagnosticsResult{
		Language: tag,
		Result:   s.engine.DetectErrors(input.Code, tag),
	}, getFormat(input.Format))
}

func (s *Server) handleAnalyzeMetrics(ctx context.Context, req *mcp.CallToolRequest, input ReportInput) (*mcp.CallToolResult, any, error) {
	tag := s.resolve(input.CodeInput)
	return toolResult(MetricsResult{
		Language: tag,
		Metrics:  s.engine.AnalyzeMetrics(input.Code, tag),
	}, getFormat(input.Format))
}

func (s *Server) handleFormatCode(ctx context.Context, req *mcp.CallToolRequest, input FormatCodeInput) (*mcp.CallToolResult, any, error) {
	opts := s.engine.FormatOptions()
	if input.IndentSize != nil {
		if *input.IndentSize < 0 || *input.IndentSize > 10 {
			return toolError("indent_size must be between 0 and 10")
		}
		opts.IndentSize = *input.IndentSize
	}
	if input.UseTabs != nil {
		opts.UseTabs = *input.UseTabs
	}
	if input.MaxLineLength != nil {
		opts.MaxLineLength = *input.MaxLineLength
	}
	if input.PreserveBlankLines != nil {
		opts.PreserveBlankLines = *input.PreserveBlankLines
	}
	return textResult(s.engine.FormatCode(input.Code, s.resolve(input.CodeInput), opts))
}

func (s *Server) handleValidateCode(ctx context.Context, req *mcp.CallToolRequest, input ReportInput) (*mcp.CallToolResult, any, error) {
	tag := s.resolve(input.CodeInput)
	return toolResult(ValidationResult{
		Language:   tag,
		Validation: s.engine.ValidateCode(input.Code, tag),
	}, getFormat(input.Format))
}

func (s *Server) handleCheckPaths(ctx context.Context, req *mcp.CallToolRequest, input CheckPathsInput) (*mcp.CallToolResult, any, error) {
	files, err := scanner.NewScanner(s.config).ScanPaths(getPaths(input.Paths))
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	results, errs := fileproc.MapSources(ctx, files, 0, func(src fileproc.Source) (output.FileDiagnostics, error) {
		tag := s.engine.Resolve(s.engine.DetectLanguage(src.Path, src.Content), src.Content)
		res := s.engine.DetectErrors(src.Content, tag)
		if input.ErrorsOnly {
			res = diagnostics.NewResult(res.Errors, nil)
		}
		return output.FileDiagnostics{Path: src.Path, Language: tag, Result: res}, nil
	}, nil)
	if len(results) == 0 && errs != nil {
		return toolError(errs.Error())
	}
	return toolResult(output.NewCheckReport(results), getFormat(input.Format))
}
