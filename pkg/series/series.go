// Package series models the geometry of an ordered slice series along a
// single physical axis.
//
// A series is built once per planning run from three numbers: the item count,
// the total physical length of the stack, and the per-item extent
// (thickness). Centers are evenly spaced and increase with index; index 1 sits
// at offset 0. The series is immutable after construction.
//
// All lengths are in the same physical unit (conventionally millimetres);
// unit conversion is the caller's concern.
package series

import (
	"github.com/sliceplan/sliceplan/pkg/errors"
)

// Position is one item's location along the axis.
type Position struct {
	Index  int     `json:"index"`  // 1-based, unique, totally ordered
	Center float64 `json:"center"` // physical offset of the item center
	Extent float64 `json:"extent"` // physical thickness of the item
}

// Series is an immutable position table over N items.
type Series struct {
	positions   []Position
	spacing     float64
	totalLength float64
}

// New builds a series of count evenly spaced items covering totalLength,
// each with the given extent. The first center is at offset 0 and centers
// increase with index.
//
// Returns an INVALID_INPUT error when count < 2, totalLength <= 0, or
// extent <= 0.
func New(count int, totalLength, extent float64) (*Series, error) {
	if err := errors.ValidateSeriesGeometry(count, totalLength, extent); err != nil {
		return nil, err
	}

	spacing := totalLength / float64(count)
	positions := make([]Position, count)
	for i := range positions {
		positions[i] = Position{
			Index:  i + 1,
			Center: float64(i) * spacing,
			Extent: extent,
		}
	}

	return &Series{
		positions:   positions,
		spacing:     spacing,
		totalLength: totalLength,
	}, nil
}

// Count returns the number of items in the series.
func (s *Series) Count() int { return len(s.positions) }

// TotalLength returns the physical length the series was built from.
func (s *Series) TotalLength() float64 { return s.totalLength }

// Spacing returns the center-to-center distance between adjacent items.
func (s *Series) Spacing() float64 { return s.spacing }

// At returns the position of the item with the given 1-based index.
// Indexes outside 1..Count() panic; callers own the index arithmetic.
func (s *Series) At(index int) Position {
	return s.positions[index-1]
}

// Distance returns the physical distance between the centers of items i and j.
func (s *Series) Distance(i, j int) float64 {
	d := s.At(j).Center - s.At(i).Center
	if d < 0 {
		return -d
	}
	return d
}

// Coverage returns the physical span covered by a window from item i to
// item j inclusive: the center distance plus the mean of the two extents.
// For i == j this degenerates to the single item's extent.
func (s *Series) Coverage(i, j int) float64 {
	if i == j {
		return s.At(i).Extent
	}
	return s.Distance(i, j) + (s.At(i).Extent+s.At(j).Extent)/2
}
