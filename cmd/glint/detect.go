package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/glint/internal/output"
	"github.com/panbanda/glint/pkg/engine"
	"github.com/panbanda/glint/pkg/language"
)

func detectCmd() *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Usage:     "Detect the language of files or stdin",
		ArgsUsage: "[file...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "list",
				Usage: "List supported languages and their extensions",
			},
		},
		Action: runDetectCmd,
	}
}

// detection is the result for one input.
type detection struct {
	Path     string       `json:"path" toon:"path"`
	Language language.Tag `json:"language" toon:"language"`
	Name     string       `json:"name" toon:"name"`
	Source   string       `json:"source" toon:"source"`
}

func detect(e *engine.Engine, path, code string) detection {
	d := detection{Path: path, Source: "none"}
	if tag := language.DetectFromFilename(path); path != "-" && tag != language.Auto {
		d.Language, d.Source = tag, "filename"
	} else if tag := e.DetectLanguage("", code); tag != language.Auto {
		d.Language, d.Source = tag, "content"
	} else {
		d.Language = language.Auto
	}
	d.Name = language.DisplayName(d.Language)
	return d
}

func runDetectCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if c.Bool("list") {
		return formatter.Output(supportedLanguages())
	}

	e := engine.FromConfig(cfg)
	var results []detection
	rows := make([][]string, 0, c.Args().Len())
	for _, path := range sourceArgs(c) {
		code, err := readSource(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		d := detect(e, path, code)
		results = append(results, d)
		rows = append(rows, []string{d.Path, d.Name, string(d.Language), d.Source})
	}

	return formatter.Output(output.NewTable("Languages",
		[]string{"File", "Language", "Tag", "Detected By"}, rows, nil, results))
}

type languageInfo struct {
	Tag        language.Tag `json:"tag" toon:"tag"`
	Name       string       `json:"name" toon:"name"`
	Extensions []string     `json:"extensions" toon:"extensions"`
}

func supportedLanguages() *output.Table {
	tags := language.Supported()
	infos := make([]languageInfo, len(tags))
	rows := make([][]string, len(tags))
	for i, tag := range tags {
		p := language.Lookup(tag)
		exts := make([]string, len(p.Extensions))
		for j, ext := range p.Extensions {
			exts[j] = "." + strings.TrimPrefix(ext, ".")
		}
		infos[i] = languageInfo{Tag: tag, Name: p.Name, Extensions: exts}
		rows[i] = []string{p.Name, string(tag), strings.Join(exts, " ")}
	}
	return output.NewTable("Supported Languages", []string{"Language", "Tag", "Extensions"}, rows, nil, infos)
}
