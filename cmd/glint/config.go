package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/glint/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective configuration as TOML",
				Description: `Shows the merged configuration from defaults and config file.

Examples:
  glint config show               # Show effective config
  glint -c glint.toml config show # Show config from specific file`,
				Action: runConfigShow,
			},
			{
				Name:      "init",
				Usage:     "Write a default configuration file",
				ArgsUsage: "[path]",
				Description: `Creates a glint.toml configuration file with the default settings.

Examples:
  glint config init                   # Creates glint.toml in current directory
  glint config init .glint/glint.toml # Creates config in .glint directory
  glint config init --force           # Overwrite existing config file`,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite existing config file",
					},
				},
				Action: runConfigInit,
			},
			{
				Name:      "validate",
				Usage:     "Validate a configuration file",
				ArgsUsage: "[path]",
				Description: `Validates a glint configuration file for syntax errors, unknown keys and
invalid values.

Examples:
  glint config validate                   # Validates default config locations
  glint config validate glint.yaml        # Validates specific file`,
				Action: runConfigValidate,
			},
		},
	}
}

// configPath picks the file named by the argument, then --config, then the
// one found in the working directory.
func configPath(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	if path := c.String("config"); path != "" {
		return path
	}
	return config.Find(".")
}

func runConfigShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if path := configPath(c); path != "" {
		fmt.Fprintf(w, "# Configuration from: %s\n\n", path)
	} else {
		fmt.Fprintln(w, "# Default configuration (no config file found)")
	}

	content, err := cfg.TOML()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = w.Write(content)
	return err
}

func runConfigInit(c *cli.Context) error {
	outputPath := "glint.toml"
	if c.Args().Len() > 0 {
		outputPath = c.Args().First()
	}

	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.Green("Created %s", outputPath)
	fmt.Fprintln(c.App.Writer, "Edit this file to customize analysis settings.")
	return nil
}

func generateDefaultConfig() (string, error) {
	content, err := config.DefaultConfig().TOML()
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# Glint Configuration\n")
	buf.WriteString("# Documentation: https://github.com/panbanda/glint\n\n")
	buf.Write(content)
	return buf.String(), nil
}

func runConfigValidate(c *cli.Context) error {
	path := configPath(c)
	if path == "" {
		color.Yellow("No config file found. Default configuration is valid.")
		return nil
	}

	if err := config.ValidateFile(path); err != nil {
		color.Red("Configuration validation failed:")
		fmt.Fprintf(c.App.Writer, "  - %s\n", err)
		return cli.Exit("", 1)
	}
	cfg, err := config.Load(path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		color.Red("Configuration validation failed:")
		fmt.Fprintf(c.App.Writer, "  - %s\n", err)
		return cli.Exit("", 1)
	}

	color.Green("Configuration valid: %s", path)
	return nil
}
