package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/glint/internal/cache"
	"github.com/panbanda/glint/internal/fileproc"
	"github.com/panbanda/glint/internal/output"
	"github.com/panbanda/glint/internal/progress"
	"github.com/panbanda/glint/internal/scanner"
	"github.com/panbanda/glint/pkg/analyzer/diagnostics"
	"github.com/panbanda/glint/pkg/analyzer/metrics"
	"github.com/panbanda/glint/pkg/config"
	"github.com/panbanda/glint/pkg/engine"
	"github.com/panbanda/glint/pkg/language"
)

var batchFlags = []cli.Flag{
	&cli.Int64Flag{
		Name:  "max-file-size",
		Value: 1 << 20,
		Usage: "Skip files larger than this many bytes (0 disables the limit)",
	},
	&cli.BoolFlag{
		Name:  "no-progress",
		Usage: "Hide the progress bar",
	},
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Find likely syntax errors in files and directories",
		ArgsUsage: "[path...]",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "lines",
				Usage: "Only report diagnostics on these lines, e.g. 3,10-12",
			},
			&cli.BoolFlag{
				Name:  "errors-only",
				Usage: "Drop warnings",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Exit non-zero on warnings as well as errors",
			},
		}, batchFlags...),
		Action: runCheckCmd,
	}
}

func metricsCmd() *cli.Command {
	return &cli.Command{
		Name:      "metrics",
		Aliases:   []string{"m"},
		Usage:     "Measure size, complexity and maintainability",
		ArgsUsage: "[path...]",
		Flags:     batchFlags,
		Action:    runMetricsCmd,
	}
}

// batch holds what check and metrics share.
type batch struct {
	cfg       *config.Config
	engine    *engine.Engine
	store     *cache.Cache
	formatter *output.Formatter
	files     []string
	tracker   *progress.Tracker
}

// newBatch resolves the files named on the command line. It returns a nil
// batch when there is nothing to analyze.
func newBatch(c *cli.Context, label string) (*batch, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	files, err := scanner.NewScanner(cfg).ScanPaths(getPaths(c))
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	files, skipped := scanner.FilterBySize(files, c.Int64("max-file-size"))
	if skipped > 0 {
		color.Yellow("Skipping %d files over the size limit", skipped)
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil, nil
	}
	if cfg.Output.Verbose {
		groups := scanner.GroupByLanguage(files)
		tags := make([]string, 0, len(groups))
		for tag := range groups {
			tags = append(tags, string(tag))
		}
		sort.Strings(tags)
		for _, tag := range tags {
			verbosef(cfg, "%s: %d files", language.DisplayName(language.Tag(tag)), len(groups[language.Tag(tag)]))
		}
	}

	store, err := openCache(c, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return nil, err
	}

	b := &batch{
		cfg:       cfg,
		engine:    engine.FromConfig(cfg),
		store:     store,
		formatter: formatter,
		files:     files,
	}
	if !c.Bool("no-progress") {
		b.tracker = progress.NewTracker(label, len(files))
	}
	return b, nil
}

// settings fingerprints everything besides content that shapes a result.
func (b *batch) settings(kind string, tag language.Tag) []string {
	r := b.cfg.Rules
	return []string{
		kind,
		version,
		string(tag),
		fmt.Sprintf("%d/%d", r.LongLineLength, r.MaxNesting),
		strings.Join(r.Disabled, ","),
	}
}

func (b *batch) language(src fileproc.Source) language.Tag {
	return b.engine.Resolve(b.engine.DetectLanguage(src.Path, src.Content), src.Content)
}

// cached returns the stored result for src, computing and storing it on a
// miss.
func cached[T any](b *batch, kind string, src fileproc.Source, tag language.Tag, compute func() T) T {
	key := kind + ":" + src.Path
	hash := cache.Fingerprint(src.Content, b.settings(kind, tag)...)

	var v T
	if b.store.Get(key, hash, &v) {
		return v
	}
	v = compute()
	if err := b.store.Set(key, hash, v); err != nil {
		verbosef(b.cfg, "cache write failed for %s: %v", src.Path, err)
	}
	return v
}

func (b *batch) finish(errs *fileproc.ProcessingErrors) {
	if errs == nil {
		b.tracker.FinishSuccess()
		return
	}
	if b.tracker != nil {
		b.tracker.FinishError(len(errs.Errors))
	} else {
		color.Yellow("%d files could not be processed", len(errs.Errors))
	}
	if b.cfg.Output.Verbose {
		for _, e := range errs.Errors {
			fmt.Fprintf(os.Stderr, "  %v\n", e)
		}
	}
}

func runCheckCmd(c *cli.Context) error {
	var filter *output.LineFilter
	if ranges := c.String("lines"); ranges != "" {
		f, err := output.ParseLineRanges(ranges)
		if err != nil {
			return err
		}
		filter = f
	}

	b, err := newBatch(c, "Checking")
	if err != nil || b == nil {
		return err
	}
	defer b.formatter.Close()

	errorsOnly := c.Bool("errors-only")
	results, errs := fileproc.MapSources(c.Context, b.files, c.Int64("max-file-size"), func(src fileproc.Source) (output.FileDiagnostics, error) {
		tag := b.language(src)
		res := cached(b, "check", src, tag, func() diagnostics.Result {
			return b.engine.DetectErrors(src.Content, tag)
		})
		if errorsOnly {
			res = diagnostics.NewResult(res.Errors, nil)
		}
		res = filter.Apply(res)
		return output.FileDiagnostics{Path: src.Path, Language: tag, Result: res}, nil
	}, b.tracker.Tick)
	b.finish(errs)

	report := output.NewCheckReport(results)
	if err := b.formatter.Output(report); err != nil {
		return err
	}
	if report.Failed() || (c.Bool("strict") && report.WarningCount > 0) {
		return cli.Exit("", 1)
	}
	return nil
}

func runMetricsCmd(c *cli.Context) error {
	b, err := newBatch(c, "Measuring")
	if err != nil || b == nil {
		return err
	}
	defer b.formatter.Close()

	results, errs := fileproc.MapSources(c.Context, b.files, c.Int64("max-file-size"), func(src fileproc.Source) (output.FileMetrics, error) {
		tag := b.language(src)
		rep := cached(b, "metrics", src, tag, func() metrics.Report {
			return b.engine.AnalyzeMetrics(src.Content, tag)
		})
		return output.FileMetrics{Path: src.Path, Language: tag, Metrics: rep}, nil
	}, b.tracker.Tick)
	b.finish(errs)

	return b.formatter.Output(output.NewMetricsReport(results))
}
