package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/glint/pkg/config"
	"github.com/panbanda/glint/pkg/engine"
)

// Server wraps the MCP server and registers all glint tools.
type Server struct {
	server *mcp.Server
	engine *engine.Engine
	config *config.Config
}

// NewServer creates a new MCP server with all glint tools registered.
// A nil cfg uses the default configuration.
func NewServer(version string, cfg *config.Config) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "glint",
			Version: version,
		},
		nil,
	)

	s := &Server{
		server: server,
		engine: engine.FromConfig(cfg),
		config: cfg,
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds the engine entry points and the batch check.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "detect_language",
		Description: describeDetectLanguage(),
	}, s.handleDetectLanguage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "highlight",
		Description: describeHighlight(),
	}, s.handleHighlight)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "detect_errors",
		Description: describeDetectErrors(),
	}, s.handleDetectErrors)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_metrics",
		Description: describeAnalyzeMetrics(),
	}, s.handleAnalyzeMetrics)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "format_code",
		Description: describeFormatCode(),
	}, s.handleFormatCode)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_code",
		Description: describeValidateCode(),
	}, s.handleValidateCode)

	// Files on disk rather than a snippet
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_paths",
		Description: describeCheckPaths(),
	}, s.handleCheckPaths)
}
