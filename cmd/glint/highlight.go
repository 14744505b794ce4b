package main

import (
	"fmt"
	"html"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/glint/internal/output"
	"github.com/panbanda/glint/pkg/engine"
	"github.com/panbanda/glint/pkg/language"
)

func highlightCmd() *cli.Command {
	return &cli.Command{
		Name:      "highlight",
		Aliases:   []string{"hl"},
		Usage:     "Render source as HTML with syntax-highlighting spans",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			languageFlag,
			&cli.BoolFlag{
				Name:  "page",
				Usage: "Emit a standalone HTML page with a default stylesheet",
			},
		},
		Action: runHighlightCmd,
	}
}

// highlighted is the structured form of the highlight output.
type highlighted struct {
	Path     string       `json:"path" toon:"path"`
	Language language.Tag `json:"language" toon:"language"`
	HTML     string       `json:"html" toon:"html"`
}

func runHighlightCmd(c *cli.Context) error {
	if c.Args().Len() > 1 {
		return fmt.Errorf("highlight takes at most one file")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	path := sourceArgs(c)[0]
	code, err := readSource(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	e := engine.FromConfig(cfg)
	tag := languageFor(c, e, path, code)
	markup := e.Highlight(code, tag)

	switch formatter.Format() {
	case output.FormatJSON, output.FormatTOON:
		return formatter.Output(highlighted{Path: path, Language: tag, HTML: markup})
	}
	if c.Bool("page") {
		return writePage(formatter.Writer(), path, tag, markup)
	}
	_, err = fmt.Fprintln(formatter.Writer(), markup)
	return err
}

const pageStyle = `body { background: #fafafa; color: #24292e; }
pre { font: 13px/1.45 ui-monospace, monospace; }
.token.comment { color: #6a737d; font-style: italic; }
.token.string, .token.value { color: #032f62; }
.token.keyword { color: #d73a49; }
.token.number { color: #005cc5; }
.token.function { color: #6f42c1; }
.token.class, .token.selector { color: #22863a; }
.token.operator, .token.punctuation { color: #24292e; }
.token.tag { color: #22863a; }
.token.attribute, .token.property { color: #005cc5; }`

func writePage(w io.Writer, path string, tag language.Tag, markup string) error {
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
%s
</style>
</head>
<body>
<pre><code class="language-%s">%s</code></pre>
</body>
</html>
`, html.EscapeString(path), pageStyle, tag, markup)
	return err
}
