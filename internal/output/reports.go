package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"

	"github.com/panbanda/glint/pkg/analyzer/diagnostics"
	"github.com/panbanda/glint/pkg/analyzer/metrics"
	"github.com/panbanda/glint/pkg/language"
	"github.com/panbanda/glint/pkg/stats"
)

// FileDiagnostics pairs a file with its diagnostics.
type FileDiagnostics struct {
	Path     string             `json:"path" toon:"path"`
	Language language.Tag       `json:"language" toon:"language"`
	Result   diagnostics.Result `json:"result" toon:"result"`
}

// CheckReport is the result of checking a set of files.
type CheckReport struct {
	Files        []FileDiagnostics `json:"files" toon:"files"`
	FileCount    int               `json:"file_count" toon:"file_count"`
	ErrorCount   int               `json:"error_count" toon:"error_count"`
	WarningCount int               `json:"warning_count" toon:"warning_count"`
}

// NewCheckReport sorts files by path and totals their findings.
func NewCheckReport(files []FileDiagnostics) *CheckReport {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	r := &CheckReport{Files: files, FileCount: len(files)}
	for _, f := range files {
		r.ErrorCount += f.Result.ErrorCount
		r.WarningCount += f.Result.WarningCount
	}
	return r
}

// Failed reports whether any file has errors.
func (r *CheckReport) Failed() bool {
	return r.ErrorCount > 0
}

// Summary is a one-line description of the totals.
func (r *CheckReport) Summary() string {
	return fmt.Sprintf("%s and %s in %s checked",
		plural(r.ErrorCount, "error"), plural(r.WarningCount, "warning"), plural(r.FileCount, "file"))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func (r *CheckReport) RenderData() any {
	return r
}

func (r *CheckReport) RenderText(w io.Writer, colored bool) error {
	for _, f := range r.Files {
		all := f.Result.All()
		if len(all) == 0 {
			continue
		}
		if colored {
			color.New(color.Bold).Fprintf(w, "%s", f.Path)
		} else {
			fmt.Fprint(w, f.Path)
		}
		fmt.Fprintf(w, " (%s)\n", language.DisplayName(f.Language))
		for _, d := range all {
			sev := string(d.Severity)
			if colored {
				sev = SeverityColor(sev, sev)
			}
			fmt.Fprintf(w, "  %d:%d  %s  %s [%s]\n", d.Line, d.Column, sev, d.Message, d.Kind)
			if d.Suggestion != "" {
				fmt.Fprintf(w, "      %s\n", d.Suggestion)
			}
		}
		fmt.Fprintln(w)
	}

	summary := r.Summary()
	switch {
	case !colored:
	case r.ErrorCount > 0:
		summary = color.RedString(summary)
	case r.WarningCount > 0:
		summary = color.YellowString(summary)
	default:
		summary = color.GreenString(summary)
	}
	fmt.Fprintln(w, summary)
	return nil
}

func (r *CheckReport) RenderMarkdown(w io.Writer) error {
	var rows [][]string
	for _, f := range r.Files {
		for _, d := range f.Result.All() {
			rows = append(rows, []string{
				f.Path,
				strconv.Itoa(d.Line),
				strconv.Itoa(d.Column),
				string(d.Severity),
				d.Kind,
				d.Message,
			})
		}
	}
	if len(rows) > 0 {
		table := NewTable("Diagnostics", []string{"File", "Line", "Column", "Severity", "Type", "Message"}, rows, nil, nil)
		if err := table.RenderMarkdown(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "**%s**\n", r.Summary())
	return err
}

// FileMetrics pairs a file with its metrics report.
type FileMetrics struct {
	Path     string         `json:"path" toon:"path"`
	Language language.Tag   `json:"language" toon:"language"`
	Metrics  metrics.Report `json:"metrics" toon:"metrics"`
}

// MetricsReport is the result of measuring a set of files.
type MetricsReport struct {
	Files   []FileMetrics `json:"files" toon:"files"`
	Overall stats.Summary `json:"overall" toon:"overall"`
}

// NewMetricsReport sorts files by path and summarizes their overall scores.
func NewMetricsReport(files []FileMetrics) *MetricsReport {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	scores := make([]float64, len(files))
	for i, f := range files {
		scores[i] = float64(f.Metrics.Overall)
	}
	return &MetricsReport{Files: files, Overall: stats.Summarize(scores)}
}

func (r *MetricsReport) table() *Table {
	rows := make([][]string, len(r.Files))
	for i, f := range r.Files {
		m := f.Metrics
		rows[i] = []string{
			f.Path,
			language.DisplayName(f.Language),
			strconv.Itoa(m.Basic.TotalLines),
			strconv.Itoa(m.Basic.CodeLines),
			strconv.Itoa(m.Complexity.CyclomaticComplexity),
			strconv.Itoa(m.Complexity.MaxNesting),
			strconv.Itoa(m.Quality.MaintainabilityIndex),
			m.Quality.QualityLevel,
			strconv.Itoa(m.Overall),
		}
	}
	var footer []string
	if len(r.Files) > 1 {
		s := r.Overall
		footer = []string{
			fmt.Sprintf("%d files", s.Count), "", "", "", "", "", "",
			fmt.Sprintf("median %.0f, p90 %.0f", s.Median, s.P90),
			fmt.Sprintf("mean %.1f", s.Mean),
		}
	}
	return NewTable("Metrics",
		[]string{"File", "Language", "Lines", "Code", "Cyclomatic", "Nesting", "Maintainability", "Quality", "Score"},
		rows, footer, r)
}

func (r *MetricsReport) RenderData() any {
	return r
}

func (r *MetricsReport) RenderText(w io.Writer, colored bool) error {
	return r.table().RenderText(w, colored)
}

func (r *MetricsReport) RenderMarkdown(w io.Writer) error {
	return r.table().RenderMarkdown(w)
}
