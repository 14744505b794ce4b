package mcpserver

import (
	"encoding/json"
	"strings"
)

const manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"

// Manifest is the registry entry (server.json) describing how to run glint
// as an MCP server.
type Manifest struct {
	Schema      string     `json:"$schema"`
	Name        string     `json:"name"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description"`
	Version     string     `json:"version"`
	Repository  Repository `json:"repository"`
	Packages    []Package  `json:"packages"`
}

type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package is one installable artifact. The container image runs the mcp
// subcommand over stdio.
type Package struct {
	RegistryType         string        `json:"registryType"`
	Identifier           string        `json:"identifier"`
	PackageArguments     []Argument    `json:"packageArguments,omitempty"`
	EnvironmentVariables []Environment `json:"environmentVariables,omitempty"`
	Transport            Transport     `json:"transport"`
}

type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// Environment documents a variable the server reads at startup.
type Environment struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsRequired  bool   `json:"isRequired"`
}

type Transport struct {
	Type string `json:"type"`
}

// manifestVersion turns a build version into the bare semver the registry
// expects. Development builds publish as 0.0.0.
func manifestVersion(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" || v == "dev" {
		return "0.0.0"
	}
	return v
}

// GenerateManifest renders the server.json for this build.
func GenerateManifest(version string) ([]byte, error) {
	version = manifestVersion(version)

	m := Manifest{
		Schema:      manifestSchema,
		Name:        "io.github.panbanda/glint",
		Title:       "glint",
		Description: "Language detection, syntax diagnostics, metrics, highlighting and formatting for 16 languages",
		Version:     version,
		Repository:  Repository{URL: "https://github.com/panbanda/glint", Source: "github"},
		Packages: []Package{{
			RegistryType:     "oci",
			Identifier:       "ghcr.io/panbanda/glint:" + version,
			PackageArguments: []Argument{{Type: "positional", Value: "mcp"}},
			EnvironmentVariables: []Environment{{
				Name:        "GLINT_CONFIG",
				Description: "Path to a glint.toml, glint.yaml or glint.json with formatting and rule settings",
			}},
			Transport: Transport{Type: "stdio"},
		}},
	}
	return json.MarshalIndent(m, "", "  ")
}
