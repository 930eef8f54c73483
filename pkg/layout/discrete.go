package layout

import "math"

// Penalty values keeping the objective function total: structurally
// impossible candidates are scored, never rejected with an error, so the
// simplex search stays defined everywhere in its domain.
const (
	// InfeasiblePenalty is the objective value of a candidate that cannot
	// produce a layout at all (no windows, non-positive lengths, fewer than
	// two windows after discretization).
	InfeasiblePenalty = 1e12

	// StepOrderPenalty is added to the cost when the discretized step is not
	// strictly smaller than the discretized window size. The layout is still
	// scored; the constant discourages degenerate non-overlapping layouts
	// without making the cost landscape discontinuous.
	StepOrderPenalty = 10.0

	// MinWindowCount is the smallest window count a candidate must yield
	// after discretization to be considered feasible.
	MinWindowCount = 2
)

// CountForLength converts a continuous physical length into an item count by
// dividing by the per-item spacing and flooring, clamped into [lo, hi].
func CountForLength(length, spacing float64, lo, hi int) int {
	if spacing <= 0 {
		return lo
	}
	c := int(math.Floor(length / spacing))
	if c < lo {
		return lo
	}
	if c > hi {
		return hi
	}
	return c
}

// WindowCountFor derives how many windows of windowSize advancing by stepSize
// fit in n items: floor((n − size)/step) + 1. The last window never overruns
// n by construction.
func WindowCountFor(n, windowSize, stepSize int) int {
	if windowSize < 1 || stepSize < 1 || windowSize > n {
		return 0
	}
	return (n-windowSize)/stepSize + 1
}

// Feasible reports whether a discretized (windowSize, stepSize) pair yields a
// valid layout over n items: positive sizes, at least MinWindowCount windows,
// and no overrun of the sequence.
func Feasible(n, windowSize, stepSize int) bool {
	return WindowCountFor(n, windowSize, stepSize) >= MinWindowCount
}
