package errors

// ValidateSeriesGeometry validates the raw inputs of a slice series.
//
// The rules mirror what the planner can actually work with:
//   - At least two items (a single item has no layout to plan)
//   - A positive total physical length
//   - A positive per-item extent
func ValidateSeriesGeometry(itemCount int, totalLength, extent float64) error {
	if itemCount < 2 {
		return New(ErrCodeInvalidInput, "item count must be at least 2, got %d", itemCount)
	}
	if totalLength <= 0 {
		return New(ErrCodeInvalidInput, "total length must be positive, got %g", totalLength)
	}
	if extent <= 0 {
		return New(ErrCodeInvalidInput, "item extent must be positive, got %g", extent)
	}
	return nil
}

// ValidateOverlapPercent validates an overlap percentage for the brute-force
// window-size search. 100% overlap would never advance the window.
func ValidateOverlapPercent(p float64) error {
	if p < 0 || p >= 100 {
		return New(ErrCodeInvalidInput, "overlap percent must be in [0, 100), got %g", p)
	}
	return nil
}

// ValidateWindowCount validates a desired window count for the brute-force
// search.
func ValidateWindowCount(n int) error {
	if n < 1 {
		return New(ErrCodeInvalidInput, "window count must be at least 1, got %d", n)
	}
	return nil
}
