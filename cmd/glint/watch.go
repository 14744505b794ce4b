package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/glint/internal/output"
	"github.com/panbanda/glint/pkg/engine"
	"github.com/panbanda/glint/pkg/language"
	"github.com/panbanda/glint/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Watch for file changes and re-analyze",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Value: 500 * time.Millisecond,
				Usage: "Wait this long after the last change before analyzing",
			},
		},
		Action: runWatchCmd,
	}
}

// printWatchResult renders one re-analysis: the file's diagnostics and a
// metrics line.
func printWatchResult(w io.Writer, r watch.Result, colored bool) {
	a := r.Analysis
	stamp := time.Now().Format("15:04:05")
	if colored {
		stamp = color.CyanString(stamp)
	}
	fmt.Fprintf(w, "%s %s (%s)\n", stamp, r.Path, language.DisplayName(a.Language))

	report := output.NewCheckReport([]output.FileDiagnostics{{Path: r.Path, Language: a.Language, Result: a.Diagnostics}})
	if report.ErrorCount+report.WarningCount > 0 {
		_ = report.RenderText(w, colored)
	}

	m := a.Metrics
	grade := m.Quality.QualityLevel
	if colored {
		grade = output.SeverityColor(grade, grade)
	}
	fmt.Fprintf(w, "  %d lines, cyclomatic %d, nesting %d, quality %s, score %d\n\n",
		m.Basic.TotalLines, m.Complexity.CyclomaticComplexity, m.Complexity.MaxNesting, grade, m.Overall)
}

func runWatchCmd(c *cli.Context) error {
	if c.Args().Len() > 1 {
		return fmt.Errorf("watch takes at most one path")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(getPaths(c)[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	watcher, err := watch.NewWatcher(absPath, cfg,
		watch.WithDebounce(c.Duration("debounce")),
		watch.WithEngine(engine.FromConfig(cfg)),
	)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	colored := cfg.Output.Color && !color.NoColor
	watcher.SetCallback(func(r watch.Result) {
		printWatchResult(os.Stdout, r, colored)
	})

	// Handle Ctrl+C
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Println("\nStopping watch...")
			cancel()
		case <-ctx.Done():
		}
	}()

	color.Cyan("Watching %s (Ctrl+C to stop)", absPath)
	if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
