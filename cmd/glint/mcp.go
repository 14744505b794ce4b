package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/glint/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes glint's analyses
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "glint": {
        "command": "glint",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - detect_language   Language of a file name or snippet
  - highlight         HTML syntax highlighting
  - detect_errors     Likely syntax errors and style warnings
  - analyze_metrics   Size, complexity and maintainability metrics
  - format_code       Indentation and spacing normalization
  - validate_code     JSON/YAML parsing and bracket balance
  - check_paths       detect_errors over files on disk`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP registry manifest (server.json)",
				Action: runMCPManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	server := mcpserver.NewServer(version, cfg)
	return server.Run(c.Context)
}

func runMCPManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
