package layout

import (
	"github.com/sliceplan/sliceplan/pkg/series"
)

// Uniform lays out windows of a fixed item size advancing by a fixed item
// step, starting at index 1. This is the index-arithmetic path used by the
// count/coverage-target mode; the greedy matcher handles the position-aware
// path.
//
// windowSize and stepSize are item counts, not physical lengths; use
// CountForLength to discretize first. The sequence covers every start
// position whose window still fits: floor((n − size)/step) + 1 windows.
// Returns an empty sequence for non-positive sizes or sizes exceeding the
// series.
func Uniform(s *series.Series, windowSize, stepSize int) Sequence {
	var seq Sequence
	n := s.Count()
	if windowSize < 1 || stepSize < 1 || windowSize > n {
		return seq
	}

	for start := 1; start+windowSize-1 <= n; start += stepSize {
		end := start + windowSize - 1
		if len(seq.Windows) > 0 {
			prev := seq.Windows[len(seq.Windows)-1]
			seq.Steps = append(seq.Steps, Step{
				From:     prev.Start,
				To:       start,
				Distance: s.Distance(prev.Start, start),
			})
		}
		seq.Windows = append(seq.Windows, newWindow(s, start, end, 0))
	}

	return seq
}
