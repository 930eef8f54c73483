package layout

import (
	"math"

	"github.com/sliceplan/sliceplan/pkg/series"
)

// errFloor is the smallest scale used when normalizing errors, so a zero or
// unset target never divides the error away to infinity.
const errFloor = 1e-9

// RelativeError returns |observed − target| / max(target, errFloor).
func RelativeError(observed, target float64) float64 {
	scale := target
	if scale < errFloor {
		scale = errFloor
	}
	return math.Abs(observed-target) / scale
}

// Huber smooths a relative error: quadratic below 1, linear above.
//
//	h(e) = 0.5·e²   e < 1
//	h(e) = e − 0.5  otherwise
//
// The quadratic region keeps the cost smooth near the target; the linear tail
// still rewards large corrective moves during the simplex search.
func Huber(e float64) float64 {
	if e < 1 {
		return 0.5 * e * e
	}
	return e - 0.5
}

// CostReport holds the per-criterion relative errors, their weighted smoothed
// costs, the feasibility penalty, and the scalar total the optimizer
// minimizes.
type CostReport struct {
	Errors  map[string]float64 `json:"errors"`
	Costs   map[string]float64 `json:"costs"`
	Penalty float64            `json:"penalty,omitempty"`
	Total   float64            `json:"total"`
}

// Observed maps each defined criterion to its measured value for a sequence.
// Total coverage is expressed as a percentage of the full axis length, the
// same framing the target uses.
func Observed(s *series.Series, seq Sequence, stats Stats) map[string]float64 {
	return map[string]float64{
		CriterionWindowSpan:    stats.MeanSpan,
		CriterionStepDistance:  stats.MeanStep,
		CriterionTotalCoverage: stats.TotalSpan / s.TotalLength() * 100,
		CriterionWindowCount:   float64(len(seq.Windows)),
	}
}

// Evaluate scores a sequence against the targets using pre-normalized
// weights. penalty is added as-is to the total (zero when the candidate is
// structurally fine, StepOrderPenalty when the discretized step is not
// strictly smaller than the discretized span).
func Evaluate(s *series.Series, seq Sequence, stats Stats, targets Targets, weights Weights, penalty float64) CostReport {
	observed := Observed(s, seq, stats)

	report := CostReport{
		Errors:  make(map[string]float64, len(weights)),
		Costs:   make(map[string]float64, len(weights)),
		Penalty: penalty,
		Total:   penalty,
	}
	for _, c := range targets.Criteria() {
		w, ok := weights[c]
		if !ok {
			continue
		}
		e := RelativeError(observed[c], targets.Value(c))
		report.Errors[c] = e
		report.Costs[c] = w * Huber(e)
		report.Total += report.Costs[c]
	}
	return report
}
