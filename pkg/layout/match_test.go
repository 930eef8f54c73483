package layout

import (
	"testing"

	"github.com/sliceplan/sliceplan/pkg/series"
)

func mustSeries(t *testing.T, count int, length, extent float64) *series.Series {
	t.Helper()
	s, err := series.New(count, length, extent)
	if err != nil {
		t.Fatalf("series.New error: %v", err)
	}
	return s
}

func TestMatch(t *testing.T) {
	// 100 items over 100mm with 1mm extents: spacing 1, so a window of 10
	// items spans ~10mm and a step of 5 items is exactly 5mm.
	s := mustSeries(t, 100, 100, 1)

	seq := Match(s, 10, 5, DefaultMatchTolerance)
	if len(seq.Windows) == 0 {
		t.Fatal("expected windows, got none")
	}
	if len(seq.Steps) != len(seq.Windows)-1 {
		t.Fatalf("steps = %d, want %d (one per window except the last)",
			len(seq.Steps), len(seq.Windows)-1)
	}

	for i, w := range seq.Windows {
		if w.Start < 1 || w.End > s.Count() {
			t.Errorf("window %d out of bounds: [%d, %d]", i, w.Start, w.End)
		}
		if w.End < w.Start {
			t.Errorf("window %d inverted: [%d, %d]", i, w.Start, w.End)
		}
		if w.MatchErr > DefaultMatchTolerance {
			t.Errorf("window %d match error %g exceeds tolerance", i, w.MatchErr)
		}
		if i > 0 && w.Start <= seq.Windows[i-1].Start {
			t.Errorf("window %d does not advance past window %d", i, i-1)
		}
	}

	for i, st := range seq.Steps {
		if st.From != seq.Windows[i].Start || st.To != seq.Windows[i+1].Start {
			t.Errorf("step %d endpoints [%d, %d] do not connect windows", i, st.From, st.To)
		}
		if st.Distance <= 0 {
			t.Errorf("step %d distance %g not positive", i, st.Distance)
		}
	}
}

func TestMatchTerminates(t *testing.T) {
	s := mustSeries(t, 50, 50, 1)

	// A step target far below the spacing makes every step match land on the
	// immediate neighbor; the window count must still be bounded by N.
	seq := Match(s, 5, 0.001, 1.0)
	if len(seq.Windows) > s.Count() {
		t.Fatalf("windows = %d, want at most %d", len(seq.Windows), s.Count())
	}
}

func TestMatchNoFit(t *testing.T) {
	// No pair of items in a 10mm series spans anything close to 1000mm, so
	// the very first span match already exceeds tolerance.
	s := mustSeries(t, 10, 10, 1)

	seq := Match(s, 1000, 5, DefaultMatchTolerance)
	if len(seq.Windows) != 0 {
		t.Fatalf("windows = %d, want 0 (no layout found)", len(seq.Windows))
	}
}

func TestMatchInvalidTargets(t *testing.T) {
	s := mustSeries(t, 10, 10, 1)

	if seq := Match(s, 0, 5, DefaultMatchTolerance); len(seq.Windows) != 0 {
		t.Error("zero span target should produce no windows")
	}
	if seq := Match(s, 5, -1, DefaultMatchTolerance); len(seq.Windows) != 0 {
		t.Error("negative step target should produce no windows")
	}
}

func TestMatchTinySeries(t *testing.T) {
	// Two items leave exactly one candidate window and no room to step.
	s := mustSeries(t, 2, 2, 1)

	seq := Match(s, 2, 1, 1.0)
	if len(seq.Windows) > 1 {
		t.Fatalf("windows = %d, want at most 1", len(seq.Windows))
	}
	if len(seq.Steps) != 0 {
		t.Fatalf("steps = %d, want 0", len(seq.Steps))
	}
}

func TestUniform(t *testing.T) {
	s := mustSeries(t, 20, 20, 1)

	seq := Uniform(s, 5, 4)
	// floor((20-5)/4)+1 = 4 windows starting at 1, 5, 9, 13.
	if len(seq.Windows) != 4 {
		t.Fatalf("windows = %d, want 4", len(seq.Windows))
	}
	wantStarts := []int{1, 5, 9, 13}
	for i, w := range seq.Windows {
		if w.Start != wantStarts[i] {
			t.Errorf("window %d start = %d, want %d", i, w.Start, wantStarts[i])
		}
		if w.End != w.Start+4 {
			t.Errorf("window %d end = %d, want %d", i, w.End, w.Start+4)
		}
		if w.End > s.Count() {
			t.Errorf("window %d overruns the series", i)
		}
	}
	if len(seq.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(seq.Steps))
	}
}

func TestUniformInvalid(t *testing.T) {
	s := mustSeries(t, 10, 10, 1)

	tests := []struct {
		name string
		size int
		step int
	}{
		{"zero size", 0, 2},
		{"zero step", 3, 0},
		{"size exceeds series", 11, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if seq := Uniform(s, tt.size, tt.step); len(seq.Windows) != 0 {
				t.Errorf("windows = %d, want 0", len(seq.Windows))
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	s := mustSeries(t, 20, 20, 1)

	if got := ComputeStats(s, Sequence{}); got != (Stats{}) {
		t.Errorf("empty sequence stats = %+v, want zero", got)
	}

	seq := Uniform(s, 5, 4)
	stats := ComputeStats(s, seq)

	// Every window spans 4*spacing + extent = 5.
	if stats.MeanSpan != 5 {
		t.Errorf("MeanSpan = %g, want 5", stats.MeanSpan)
	}
	// Every step is 4*spacing = 4.
	if stats.MeanStep != 4 {
		t.Errorf("MeanStep = %g, want 4", stats.MeanStep)
	}
	// First start (index 1) to last end (index 17): 16*spacing + extent = 17.
	if stats.TotalSpan != 17 {
		t.Errorf("TotalSpan = %g, want 17", stats.TotalSpan)
	}
}

func TestComputeStatsSingleWindow(t *testing.T) {
	s := mustSeries(t, 10, 10, 1)

	seq := Uniform(s, 10, 1)
	if len(seq.Windows) != 1 {
		t.Fatalf("windows = %d, want 1", len(seq.Windows))
	}
	stats := ComputeStats(s, seq)
	if stats.MeanStep != 0 {
		t.Errorf("MeanStep = %g, want 0 for a single window", stats.MeanStep)
	}
	if stats.MeanSpan != stats.TotalSpan {
		t.Errorf("single window MeanSpan %g != TotalSpan %g", stats.MeanSpan, stats.TotalSpan)
	}
}
