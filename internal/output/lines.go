package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/panbanda/glint/pkg/analyzer/diagnostics"
)

// LineFilter restricts diagnostics to a set of 1-based line numbers. A nil
// or empty filter accepts every line.
type LineFilter struct {
	lines *roaring.Bitmap
}

// ParseLineRanges parses a comma separated list of lines and inclusive
// ranges such as "3,10-20".
func ParseLineRanges(ranges string) (*LineFilter, error) {
	f := &LineFilter{lines: roaring.New()}
	for _, part := range strings.Split(ranges, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := parseLine(lo)
		if err != nil {
			return nil, err
		}
		end := start
		if isRange {
			if end, err = parseLine(hi); err != nil {
				return nil, err
			}
		}
		if end < start {
			return nil, fmt.Errorf("invalid line range %q: end before start", part)
		}
		f.lines.AddRange(uint64(start), uint64(end)+1)
	}
	return f, nil
}

func parseLine(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid line number %q", s)
	}
	return uint32(n), nil
}

// Len returns the number of selected lines.
func (f *LineFilter) Len() uint64 {
	if f == nil {
		return 0
	}
	return f.lines.GetCardinality()
}

// Contains reports whether line passes the filter. File-level findings
// (line 0) always pass.
func (f *LineFilter) Contains(line int) bool {
	if f == nil || f.lines.IsEmpty() || line <= 0 {
		return true
	}
	return f.lines.Contains(uint32(line))
}

// Apply drops the diagnostics of res outside the filter and recomputes
// the counts and summary.
func (f *LineFilter) Apply(res diagnostics.Result) diagnostics.Result {
	if f == nil || f.lines.IsEmpty() {
		return res
	}
	return diagnostics.NewResult(f.keep(res.Errors), f.keep(res.Warnings))
}

func (f *LineFilter) keep(ds []diagnostics.Diagnostic) []diagnostics.Diagnostic {
	out := make([]diagnostics.Diagnostic, 0, len(ds))
	for _, d := range ds {
		if f.Contains(d.Line) {
			out = append(out, d)
		}
	}
	return out
}
