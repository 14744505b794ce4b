// Package engine is the single entry point to glint's analyses. It resolves
// language tags, applies configured thresholds and guarantees that no
// internal fault reaches the caller: a failing analysis degrades to an
// empty or pass-through result instead.
package engine

import (
	"html"
	"strings"

	"github.com/panbanda/glint/pkg/analyzer/diagnostics"
	"github.com/panbanda/glint/pkg/analyzer/metrics"
	"github.com/panbanda/glint/pkg/config"
	"github.com/panbanda/glint/pkg/format"
	"github.com/panbanda/glint/pkg/highlight"
	"github.com/panbanda/glint/pkg/language"
)

// Engine runs analyses. It holds only configuration and is safe for
// concurrent use.
type Engine struct {
	diagnostics *diagnostics.Engine
	metrics     *metrics.Engine
	format      format.Options

	longLine   int
	maxNesting int
	disabled   []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithFormatOptions sets the options FormatDefault uses.
func WithFormatOptions(o format.Options) Option {
	return func(e *Engine) {
		e.format = o
	}
}

// WithLongLineLength sets the line length limit used by both the
// diagnostics and the metrics.
func WithLongLineLength(n int) Option {
	return func(e *Engine) {
		e.longLine = n
	}
}

// WithMaxNesting sets the nesting depth above which metrics report deep
// nesting.
func WithMaxNesting(n int) Option {
	return func(e *Engine) {
		e.maxNesting = n
	}
}

// WithDisabledRules suppresses diagnostics of the given kinds.
func WithDisabledRules(kinds ...string) Option {
	return func(e *Engine) {
		e.disabled = append(e.disabled, kinds...)
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{format: format.DefaultOptions()}
	for _, opt := range opts {
		opt(e)
	}
	e.diagnostics = diagnostics.New(
		diagnostics.WithLongLineLength(e.longLine),
		diagnostics.WithDisabled(e.disabled...),
	)
	e.metrics = metrics.New(
		metrics.WithLongLineLength(e.longLine),
		metrics.WithMaxNesting(e.maxNesting),
	)
	return e
}

// FromConfig creates an Engine with the formatter defaults and rule
// thresholds of cfg. Later opts override them.
func FromConfig(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	base := []Option{
		WithFormatOptions(cfg.FormatOptions()),
		WithLongLineLength(cfg.Rules.LongLineLength),
		WithMaxNesting(cfg.Rules.MaxNesting),
		WithDisabledRules(cfg.Rules.Disabled...),
	}
	return New(append(base, opts...)...)
}

// Analysis bundles every result for one document.
type Analysis struct {
	Language    language.Tag       `json:"language" toon:"language"`
	Diagnostics diagnostics.Result `json:"diagnostics" toon:"diagnostics"`
	Metrics     metrics.Report     `json:"metrics" toon:"metrics"`
	Validation  format.Validation  `json:"validation" toon:"validation"`
}

// DetectLanguage prefers the filename's extension and falls back to the
// content. It returns language.Auto when neither is conclusive.
func (e *Engine) DetectLanguage(filename, code string) (tag language.Tag) {
	defer func() {
		if r := recover(); r != nil {
			tag = language.Auto
		}
	}()
	return language.Detect(filename, code)
}

// Resolve turns a requested tag into the language analyses run as: auto
// and empty tags are detected from the code, and anything unsupported
// becomes the fallback language.
func (e *Engine) Resolve(tag language.Tag, code string) language.Tag {
	if t := language.Parse(string(tag)); t != language.Auto {
		return t
	}
	if name := strings.TrimSpace(string(tag)); name == "" || strings.EqualFold(name, string(language.Auto)) {
		if detected := e.DetectLanguage("", code); detected != language.Auto {
			return detected
		}
	}
	return language.Fallback
}

// Highlight renders code as HTML-escaped markup with token spans.
func (e *Engine) Highlight(code string, tag language.Tag) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = html.EscapeString(code)
		}
	}()
	return highlight.Highlight(code, e.Resolve(tag, code))
}

// DetectErrors scans code for syntax problems.
func (e *Engine) DetectErrors(code string, tag language.Tag) (res diagnostics.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = diagnostics.NewResult(nil, nil)
		}
	}()
	return e.diagnostics.Detect(code, e.Resolve(tag, code))
}

// AnalyzeMetrics computes the metrics report for code.
func (e *Engine) AnalyzeMetrics(code string, tag language.Tag) (rep metrics.Report) {
	defer func() {
		if r := recover(); r != nil {
			rep = metrics.EmptyReport()
		}
	}()
	return e.metrics.Analyze(code, e.Resolve(tag, code))
}

// FormatCode formats code with opts. On any failure the code comes back
// unchanged.
func (e *Engine) FormatCode(code string, tag language.Tag, opts format.Options) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = code
		}
	}()
	return format.Format(code, e.Resolve(tag, code), opts)
}

// FormatDefault formats code with the engine's configured options.
func (e *Engine) FormatDefault(code string, tag language.Tag) string {
	return e.FormatCode(code, tag, e.format)
}

// FormatOptions returns the engine's configured format options.
func (e *Engine) FormatOptions() format.Options {
	return e.format
}

// ValidateCode runs the quick validity checks.
func (e *Engine) ValidateCode(code string, tag language.Tag) (v format.Validation) {
	defer func() {
		if r := recover(); r != nil {
			v = format.Validation{IsValid: true, Issues: []format.ValidationIssue{}}
		}
	}()
	return format.ValidateCode(code, e.Resolve(tag, code))
}

// Analyze resolves the language once and runs diagnostics, metrics and
// validation over code.
func (e *Engine) Analyze(code string, tag language.Tag) Analysis {
	resolved := e.Resolve(tag, code)
	return Analysis{
		Language:    resolved,
		Diagnostics: e.DetectErrors(code, resolved),
		Metrics:     e.AnalyzeMetrics(code, resolved),
		Validation:  e.ValidateCode(code, resolved),
	}
}
