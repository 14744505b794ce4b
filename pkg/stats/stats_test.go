package stats

import (
	"testing"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{50, 10, 40, 20, 30})

	want := Summary{Count: 5, Mean: 30, StdDev: 15.81, Min: 10, Median: 30, P90: 50, Max: 50}
	if s != want {
		t.Errorf("Summarize() = %+v, want %+v", s, want)
	}
}

func TestSummarize_Single(t *testing.T) {
	s := Summarize([]float64{72.5})

	if s.Count != 1 || s.Mean != 72.5 || s.Median != 72.5 || s.Max != 72.5 {
		t.Errorf("Summarize() = %+v", s)
	}
	if s.StdDev != 0 {
		t.Errorf("StdDev = %v, want 0 for a single value", s.StdDev)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", s)
	}
}

func TestSummarize_DoesNotSortInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Summarize(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Errorf("input was modified: %v", in)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}

	tests := []struct {
		p    int
		want float64
	}{
		{0, 10},
		{50, 30},
		{90, 50},
		{100, 50},
		{150, 50},
	}
	for _, tt := range tests {
		if got := Percentile(sorted, tt.p); got != tt.want {
			t.Errorf("Percentile(%d) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if got := Percentile(nil, 50); got != 0 {
		t.Errorf("Percentile(nil) = %v, want 0", got)
	}
}
