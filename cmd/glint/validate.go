package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/glint/internal/output"
	"github.com/panbanda/glint/pkg/engine"
	"github.com/panbanda/glint/pkg/format"
	"github.com/panbanda/glint/pkg/language"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Quick validity checks: JSON/YAML parsing and bracket balance",
		ArgsUsage: "[file...]",
		Flags:     []cli.Flag{languageFlag},
		Action:    runValidateCmd,
	}
}

type fileValidation struct {
	Path       string            `json:"path" toon:"path"`
	Language   language.Tag      `json:"language" toon:"language"`
	Validation format.Validation `json:"validation" toon:"validation"`
}

func runValidateCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	e := engine.FromConfig(cfg)
	var results []fileValidation
	var rows [][]string
	invalid := 0
	for _, path := range sourceArgs(c) {
		code, err := readSource(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		tag := languageFor(c, e, path, code)
		v := e.ValidateCode(code, tag)
		results = append(results, fileValidation{Path: path, Language: tag, Validation: v})

		status, grade := "valid", "good"
		if !v.IsValid {
			status, grade = "invalid", "error"
			invalid++
		}
		if formatter.Colored() {
			status = output.SeverityColor(grade, status)
		}
		messages := make([]string, len(v.Issues))
		for i, issue := range v.Issues {
			messages[i] = issue.Message
		}
		rows = append(rows, []string{path, language.DisplayName(tag), status, strings.Join(messages, "; ")})
	}

	table := output.NewTable("Validation", []string{"File", "Language", "Status", "Issues"}, rows, nil, results)
	if err := formatter.Output(table); err != nil {
		return err
	}
	if invalid > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
