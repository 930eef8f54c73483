// Package layout computes and scores window sequences over a slice series.
//
// A window is a contiguous run of items treated as one unit; a step is the
// physical distance between two consecutive windows' start positions. The
// package provides two generators (the position-aware greedy matcher and the
// index-arithmetic uniform generator), the discretization and feasibility
// rules shared by both, and the weighted cost evaluator the optimizer
// minimizes.
package layout

import (
	"slices"

	"github.com/sliceplan/sliceplan/pkg/errors"
	"github.com/sliceplan/sliceplan/pkg/series"
)

// Criterion names for targets and weights.
const (
	CriterionWindowSpan    = "window_span"
	CriterionStepDistance  = "step_distance"
	CriterionTotalCoverage = "total_coverage"
	CriterionWindowCount   = "window_count"
)

// Window is a contiguous run of items with its physical span.
// Windows are never mutated after creation and are ordered by Start.
type Window struct {
	Start       int     `json:"start"`        // 1-based index of the first item
	End         int     `json:"end"`          // 1-based index of the last item, >= Start
	CenterIndex int     `json:"center_index"` // integer midpoint of Start and End
	CenterPos   float64 `json:"center_pos"`   // physical midpoint of the two centers
	Span        float64 `json:"span"`         // physical length covered
	MatchErr    float64 `json:"match_err"`    // relative error of the span match
}

// Step records the physical distance between two consecutive windows' starts.
type Step struct {
	From     int     `json:"from"`      // start index of the earlier window
	To       int     `json:"to"`        // start index of the later window
	Distance float64 `json:"distance"`  // physical start-to-start distance
	MatchErr float64 `json:"match_err"` // relative error of the step match
}

// Sequence is an ordered window list with its steps. Steps pair with windows
// 1:1 except the last window, which has none.
type Sequence struct {
	Windows []Window `json:"windows"`
	Steps   []Step   `json:"steps"`
}

// Stats are the aggregate geometric properties of a sequence. They are
// recomputed from scratch for every candidate parameter vector.
type Stats struct {
	MeanSpan  float64 `json:"mean_span"`  // mean physical window span
	MeanStep  float64 `json:"mean_step"`  // mean start-to-start distance
	TotalSpan float64 `json:"total_span"` // first window start to last window end
}

// newWindow builds a window over s from start to end with the recorded
// span-match error.
func newWindow(s *series.Series, start, end int, matchErr float64) Window {
	return Window{
		Start:       start,
		End:         end,
		CenterIndex: (start + end) / 2,
		CenterPos:   (s.At(start).Center + s.At(end).Center) / 2,
		Span:        s.Coverage(start, end),
		MatchErr:    matchErr,
	}
}

// ComputeStats derives the aggregate stats of a sequence over s.
// An empty sequence yields zero stats.
func ComputeStats(s *series.Series, seq Sequence) Stats {
	if len(seq.Windows) == 0 {
		return Stats{}
	}

	var spanSum float64
	for _, w := range seq.Windows {
		spanSum += w.Span
	}

	var stepSum float64
	for _, st := range seq.Steps {
		stepSum += st.Distance
	}
	meanStep := 0.0
	if len(seq.Steps) > 0 {
		meanStep = stepSum / float64(len(seq.Steps))
	}

	first := seq.Windows[0]
	last := seq.Windows[len(seq.Windows)-1]

	return Stats{
		MeanSpan:  spanSum / float64(len(seq.Windows)),
		MeanStep:  meanStep,
		TotalSpan: s.Coverage(first.Start, last.End),
	}
}

// Targets are the user-desired values for the layout statistics. A zero value
// marks a criterion as undefined; undefined criteria do not participate in
// the cost.
type Targets struct {
	WindowSpan           float64 `json:"window_span,omitempty" toml:"window_span"`
	StepDistance         float64 `json:"step_distance,omitempty" toml:"step_distance"`
	TotalCoveragePercent float64 `json:"total_coverage_percent,omitempty" toml:"total_coverage_percent"`
	WindowCount          int     `json:"window_count,omitempty" toml:"window_count"`
}

// criteriaOrder is the canonical criterion ordering used everywhere a stable
// iteration order matters (normalization, reports, cache keys).
var criteriaOrder = []string{
	CriterionWindowSpan,
	CriterionStepDistance,
	CriterionTotalCoverage,
	CriterionWindowCount,
}

// Criteria returns the defined criteria in canonical order.
func (t Targets) Criteria() []string {
	var out []string
	if t.WindowSpan > 0 {
		out = append(out, CriterionWindowSpan)
	}
	if t.StepDistance > 0 {
		out = append(out, CriterionStepDistance)
	}
	if t.TotalCoveragePercent > 0 {
		out = append(out, CriterionTotalCoverage)
	}
	if t.WindowCount > 0 {
		out = append(out, CriterionWindowCount)
	}
	return out
}

// Value returns the target value for a criterion name.
func (t Targets) Value(criterion string) float64 {
	switch criterion {
	case CriterionWindowSpan:
		return t.WindowSpan
	case CriterionStepDistance:
		return t.StepDistance
	case CriterionTotalCoverage:
		return t.TotalCoveragePercent
	case CriterionWindowCount:
		return float64(t.WindowCount)
	}
	return 0
}

// Weights carries one non-negative scalar per criterion name.
type Weights map[string]float64

// Normalize returns weights over the given criteria scaled to sum to 1.
// An all-zero (or empty) weight set falls back to a uniform distribution so
// no criterion silently vanishes. Negative weights are rejected.
func (w Weights) Normalize(criteria []string) (Weights, error) {
	if len(criteria) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTargets, "no target criteria defined")
	}

	var sum float64
	for _, c := range criteria {
		v := w[c]
		if v < 0 {
			return nil, errors.New(errors.ErrCodeInvalidTargets, "weight for %s must be non-negative, got %g", c, v)
		}
		if !slices.Contains(criteriaOrder, c) {
			return nil, errors.New(errors.ErrCodeInvalidTargets, "unknown criterion %q", c)
		}
		sum += v
	}

	out := make(Weights, len(criteria))
	if sum == 0 {
		uniform := 1 / float64(len(criteria))
		for _, c := range criteria {
			out[c] = uniform
		}
		return out, nil
	}
	for _, c := range criteria {
		out[c] = w[c] / sum
	}
	return out, nil
}
