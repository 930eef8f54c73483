package layout

import (
	"github.com/sliceplan/sliceplan/pkg/series"
)

// DefaultMatchTolerance is the relative span-match error above which the
// greedy matcher stops emitting windows. The remaining tail is not forced
// into an ill-fitting window.
const DefaultMatchTolerance = 0.01

// Match greedily lays out windows over s against a target span and target
// step distance.
//
// Starting at the first item, it scans all later items for the end index
// whose window span best matches targetSpan, emits that window if the match
// error is within tol, then independently scans for the next start index
// whose start-to-start distance best matches targetStep, and repeats. The
// span match and the step match are deliberately independent single-criterion
// searches, not a joint optimization.
//
// The sequence terminates when no later item remains, when the best span
// match exceeds tol, or when the step match fails to advance the start index
// (zero-progress guard). At most s.Count() windows are produced.
//
// An empty sequence means no window fits within tolerance; callers treat that
// as "no layout found".
func Match(s *series.Series, targetSpan, targetStep, tol float64) Sequence {
	var seq Sequence
	if targetSpan <= 0 || targetStep <= 0 {
		return seq
	}

	n := s.Count()
	start := 1
	var pending *Step // step to the current start, owned by the previous window

	for len(seq.Windows) < n {
		end, spanErr, ok := bestSpanMatch(s, start, targetSpan)
		if !ok || spanErr > tol {
			break
		}

		if pending != nil {
			seq.Steps = append(seq.Steps, *pending)
			pending = nil
		}
		seq.Windows = append(seq.Windows, newWindow(s, start, end, spanErr))

		next, stepErr, ok := bestStepMatch(s, start, targetStep)
		if !ok || next <= start {
			break
		}
		pending = &Step{
			From:     start,
			To:       next,
			Distance: s.Distance(start, next),
			MatchErr: stepErr,
		}
		start = next
	}

	return seq
}

// bestSpanMatch scans every index after start for the end whose window span
// has minimum relative error against target. Returns ok=false when no later
// index exists. Ties keep the earliest index (scan order, strict less-than).
func bestSpanMatch(s *series.Series, start int, target float64) (end int, matchErr float64, ok bool) {
	for cand := start + 1; cand <= s.Count(); cand++ {
		e := RelativeError(s.Coverage(start, cand), target)
		if !ok || e < matchErr {
			end, matchErr, ok = cand, e, true
		}
	}
	return end, matchErr, ok
}

// bestStepMatch scans every index after start for the next start whose
// start-to-start distance has minimum relative error against target.
func bestStepMatch(s *series.Series, start int, target float64) (next int, matchErr float64, ok bool) {
	for cand := start + 1; cand <= s.Count(); cand++ {
		e := RelativeError(s.Distance(start, cand), target)
		if !ok || e < matchErr {
			next, matchErr, ok = cand, e, true
		}
	}
	return next, matchErr, ok
}
