package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/glint/internal/cache"
	"github.com/panbanda/glint/pkg/engine"
	"github.com/panbanda/glint/pkg/format"
)

func fmtCmd() *cli.Command {
	return &cli.Command{
		Name:      "fmt",
		Usage:     "Format source files or stdin",
		ArgsUsage: "[file...]",
		Description: `Formats each file and prints the result. With --write the files are
rewritten in place; with --check nothing is written and the command exits
non-zero when any file would change.

Examples:
  glint fmt app.js                 # Print formatted app.js
  glint fmt -w src/*.py            # Rewrite files in place
  cat data.json | glint fmt -l json --indent 4`,
		Flags: []cli.Flag{
			languageFlag,
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "Write the result back to each file",
			},
			&cli.BoolFlag{
				Name:  "check",
				Usage: "List files whose formatting would change and exit non-zero",
			},
			&cli.IntFlag{
				Name:  "indent",
				Usage: "Spaces per indent level (0-10); defaults to format.indent_size",
			},
			&cli.BoolFlag{
				Name:  "tabs",
				Usage: "Indent with tabs",
			},
			&cli.IntFlag{
				Name:  "max-line-length",
				Usage: "Line length above which object literals are broken up",
			},
		},
		Action: runFmtCmd,
	}
}

// formatOptions applies the command-line overrides to the configured
// formatter options.
func formatOptions(c *cli.Context, opts format.Options) (format.Options, error) {
	if c.IsSet("indent") {
		n := c.Int("indent")
		if n < 0 || n > 10 {
			return opts, fmt.Errorf("--indent must be between 0 and 10 (got %d)", n)
		}
		opts.IndentSize = n
	}
	if c.IsSet("tabs") {
		opts.UseTabs = c.Bool("tabs")
	}
	if c.IsSet("max-line-length") {
		n := c.Int("max-line-length")
		if n <= 0 {
			return opts, fmt.Errorf("--max-line-length must be a positive integer (got %d)", n)
		}
		opts.MaxLineLength = n
	}
	return opts, nil
}

func runFmtCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	opts, err := formatOptions(c, cfg.FormatOptions())
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	e := engine.FromConfig(cfg)
	write, check := c.Bool("write"), c.Bool("check")
	var store *cache.Cache
	if write {
		if store, err = openCache(c, cfg); err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
	}
	w := formatter.Writer()

	var unformatted []string
	for _, path := range sourceArgs(c) {
		code, err := readSource(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		formatted := e.FormatCode(code, languageFor(c, e, path, code), opts)
		changed := formatted != code

		switch {
		case check:
			if changed {
				unformatted = append(unformatted, path)
				fmt.Fprintln(w, path)
			}
		case write && path != "-":
			if !changed {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			for _, kind := range []string{"check", "metrics"} {
				if err := store.Invalidate(kind + ":" + path); err != nil {
					verbosef(cfg, "cache invalidation failed for %s: %v", path, err)
				}
			}
			verbosef(cfg, "formatted %s", path)
		default:
			fmt.Fprint(w, formatted)
			if !strings.HasSuffix(formatted, "\n") {
				fmt.Fprintln(w)
			}
		}
	}

	if len(unformatted) > 0 {
		return cli.Exit(fmt.Sprintf("%d files need formatting", len(unformatted)), 1)
	}
	return nil
}
