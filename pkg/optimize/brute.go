package optimize

import (
	"math"

	"github.com/sliceplan/sliceplan/pkg/errors"
)

// WindowSize exhaustively scans integer window sizes from 1 to itemCount
// for a fixed window count and an overlap expressed as a percentage of the
// window size, and returns the size that maximizes coverage without letting
// the last window overrun the sequence.
//
// For each candidate size the implied step is size − floor(size·overlap/100);
// non-positive steps are skipped. Coverage is measured in items:
// (windowCount−1)·step + size. Iteration is in increasing size order with a
// strict-greater comparison, so the smallest optimal size wins ties. The scan
// is total, side-effect free and deterministic.
//
// Returns NO_FEASIBLE_WINDOW when no size fits the requested count.
func WindowSize(itemCount, windowCount int, overlapPercent float64) (int, error) {
	if itemCount < 1 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "item count must be at least 1, got %d", itemCount)
	}
	if err := errors.ValidateWindowCount(windowCount); err != nil {
		return 0, err
	}
	if err := errors.ValidateOverlapPercent(overlapPercent); err != nil {
		return 0, err
	}

	bestSize, bestCoverage := 0, 0
	for size := 1; size <= itemCount; size++ {
		step := size - int(math.Floor(float64(size)*overlapPercent/100))
		if step <= 0 {
			continue
		}
		coverage := (windowCount-1)*step + size
		if coverage > itemCount {
			continue // last window would overrun the sequence
		}
		if coverage > bestCoverage {
			bestSize, bestCoverage = size, coverage
		}
	}

	if bestSize == 0 {
		return 0, errors.New(errors.ErrCodeNoFeasibleWindow,
			"no window size fits %d windows with %.0f%% overlap in %d items",
			windowCount, overlapPercent, itemCount)
	}
	return bestSize, nil
}

// Coverage reports the item coverage a (size, step, count) triple achieves.
// Exported for cross-checking the brute-force scan in tests and tooling.
func Coverage(windowCount, windowSize, stepSize int) int {
	if windowCount < 1 || windowSize < 1 || stepSize < 1 {
		return 0
	}
	return (windowCount-1)*stepSize + windowSize
}

// StepForOverlap converts a window size and an overlap percentage into the
// implied integer step. Callers translating a user-facing overlap framing
// into the step-distance representation use the physical analogue; this is
// the index-count version the brute-force scan uses.
func StepForOverlap(windowSize int, overlapPercent float64) int {
	return windowSize - int(math.Floor(float64(windowSize)*overlapPercent/100))
}
