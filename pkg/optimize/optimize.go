// Package optimize searches for window-layout parameters whose aggregate
// statistics best match the caller's targets.
//
// Two search paths are provided:
//   - Optimize: derivative-free Nelder-Mead simplex search over the
//     continuous (span, step) parameters, multi-started from randomized
//     seeds, minimizing the weighted cost from pkg/layout.
//   - WindowSize: exhaustive integer window-size scan for a fixed window
//     count and overlap percentage, maximizing coverage.
//
// Both are pure computations over their arguments. The only source of
// randomness is the injectable rand source used to jitter the start vectors;
// given the same source state the search is deterministic.
package optimize

import (
	"math/rand"
	"slices"

	gonumopt "gonum.org/v1/gonum/optimize"

	"github.com/sliceplan/sliceplan/pkg/errors"
	"github.com/sliceplan/sliceplan/pkg/layout"
	"github.com/sliceplan/sliceplan/pkg/series"
)

// Mode selects the window-generation path the search drives.
type Mode string

const (
	// ModeGreedy optimizes a 2-dim (span, step) vector and materializes
	// windows with the position-aware greedy matcher.
	ModeGreedy Mode = "greedy"

	// ModeUniform optimizes a 4-dim (span, window count, step, coverage
	// percent) vector and materializes windows with the index-arithmetic
	// uniform generator. The window-count and coverage dimensions are
	// placeholders kept for compatibility with the wider target set; only
	// span and step drive the generator.
	ModeUniform Mode = "uniform"
)

// Search defaults.
const (
	// DefaultStarts is the number of randomized start vectors tried in
	// addition to the one derived from the targets.
	DefaultStarts = 8

	// DefaultJitter is the multiplicative jitter factor f: each start
	// dimension is scaled by a uniform draw from [1−f, 1+f].
	DefaultJitter = 0.6

	// DefaultMaxIterations caps each simplex run so execution is always
	// bounded regardless of the cost landscape.
	DefaultMaxIterations = 2000

	// ConvergenceThreshold is the cost below which a result is reported as
	// converged.
	ConvergenceThreshold = 0.05

	// defaultSeed keeps runs reproducible when no rand source is injected.
	defaultSeed = 42

	// convergeAbsolute is the absolute function-value tolerance of a single
	// simplex run.
	convergeAbsolute = 1e-4
)

// Config parameterizes one search.
type Config struct {
	Series  *series.Series
	Mode    Mode
	Targets layout.Targets
	Weights layout.Weights

	// Starts, Jitter, MaxIterations and MatchTolerance default to the
	// package constants when zero.
	Starts         int
	Jitter         float64
	MaxIterations  int
	MatchTolerance float64

	// Rand is the injectable random source for start-vector jitter.
	// Defaults to a fixed-seed source so runs are reproducible.
	Rand *rand.Rand
}

// Result is the artifact of one search: the best parameter vector, its cost,
// whether it converged, and the materialized sequence for that vector. It is
// assembled atomically and has no persistent identity.
type Result struct {
	Mode      Mode              `json:"mode"`
	Params    []float64         `json:"params"`
	Cost      float64           `json:"cost"`
	Converged bool              `json:"converged"`
	Windows   []layout.Window   `json:"windows"`
	Steps     []layout.Step     `json:"steps"`
	Stats     layout.Stats      `json:"stats"`
	Report    layout.CostReport `json:"report"`
}

// searcher holds the resolved configuration shared by every objective
// evaluation of one search.
type searcher struct {
	series  *series.Series
	mode    Mode
	targets layout.Targets
	weights layout.Weights
	tol     float64
}

// Optimize runs the multi-start Nelder-Mead search and returns the best
// result across all starts.
//
// Each start is an independent simplex run; only the start-vector generation
// consumes randomness, so sequential execution with the same rand source is
// fully deterministic. A run that errors is skipped; if every run errors the
// search fails with ALL_STARTS_FAILED. A best vector whose materialized
// sequence is empty (no window fits within tolerance) yields a non-converged
// result with no windows rather than an error.
func Optimize(cfg Config) (*Result, error) {
	if cfg.Series == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "series is required")
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeGreedy
	}
	if cfg.Mode != ModeGreedy && cfg.Mode != ModeUniform {
		return nil, errors.New(errors.ErrCodeInvalidMode, "unknown mode %q", cfg.Mode)
	}
	if cfg.Targets.WindowSpan <= 0 || cfg.Targets.StepDistance <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidTargets, "window span and step distance targets are required")
	}
	if cfg.Starts == 0 {
		cfg.Starts = DefaultStarts
	}
	if cfg.Jitter == 0 {
		cfg.Jitter = DefaultJitter
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.MatchTolerance == 0 {
		cfg.MatchTolerance = layout.DefaultMatchTolerance
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(defaultSeed))
	}

	weights, err := cfg.Weights.Normalize(cfg.Targets.Criteria())
	if err != nil {
		return nil, err
	}

	s := &searcher{
		series:  cfg.Series,
		mode:    cfg.Mode,
		targets: cfg.Targets,
		weights: weights,
		tol:     cfg.MatchTolerance,
	}

	problem := gonumopt.Problem{Func: s.objective}
	settings := &gonumopt.Settings{
		MajorIterations: cfg.MaxIterations,
		Converger: &gonumopt.FunctionConverge{
			Absolute:   convergeAbsolute,
			Iterations: 50,
		},
	}

	var bestX []float64
	bestF := 0.0
	found := false
	for _, x0 := range s.starts(cfg.Starts, cfg.Jitter, cfg.Rand) {
		res, err := gonumopt.Minimize(problem, slices.Clone(x0), settings, &gonumopt.NelderMead{})
		if err != nil || res == nil {
			continue
		}
		if !found || res.F < bestF {
			bestX, bestF, found = slices.Clone(res.X), res.F, true
		}
	}
	if !found {
		return nil, errors.New(errors.ErrCodeAllStartsFailed, "all %d optimizer starts failed", cfg.Starts+1)
	}

	return s.materialize(bestX, bestF), nil
}

// starts builds the start vectors: the target-derived vector first, then
// count randomized vectors with every dimension jittered by a uniform factor
// in [1−f, 1+f].
func (s *searcher) starts(count int, f float64, r *rand.Rand) [][]float64 {
	x0 := s.seed()
	out := make([][]float64, 0, count+1)
	out = append(out, x0)
	for i := 0; i < count; i++ {
		x := make([]float64, len(x0))
		for d := range x0 {
			x[d] = x0[d] * (1 - f + 2*f*r.Float64())
		}
		out = append(out, x)
	}
	return out
}

// seed derives the first start vector directly from the targets. Placeholder
// dimensions of the uniform mode default to 1 when their target is unset.
func (s *searcher) seed() []float64 {
	t := s.targets
	if s.mode == ModeUniform {
		count := float64(t.WindowCount)
		if count <= 0 {
			count = 1
		}
		coverage := t.TotalCoveragePercent
		if coverage <= 0 {
			coverage = 1
		}
		return []float64{t.WindowSpan, count, t.StepDistance, coverage}
	}
	return []float64{t.WindowSpan, t.StepDistance}
}

// objective scores one candidate parameter vector. It is total: structurally
// impossible candidates return InfeasiblePenalty instead of failing, so the
// simplex search can move past them.
func (s *searcher) objective(x []float64) float64 {
	seq, penalty, ok := s.generate(x)
	if !ok || len(seq.Windows) == 0 {
		return layout.InfeasiblePenalty
	}
	stats := layout.ComputeStats(s.series, seq)
	report := layout.Evaluate(s.series, seq, stats, s.targets, s.weights, penalty)
	return report.Total
}

// generate materializes the candidate's window sequence and the step-order
// penalty. ok=false flags candidates that cannot be laid out at all.
func (s *searcher) generate(x []float64) (layout.Sequence, float64, bool) {
	span, step := s.spanStep(x)
	if span <= 0 || step <= 0 {
		return layout.Sequence{}, 0, false
	}

	n := s.series.Count()
	spacing := s.series.Spacing()
	sizeN := layout.CountForLength(span, spacing, 1, n)
	stepN := layout.CountForLength(step, spacing, 1, n)

	penalty := 0.0
	if stepN >= sizeN {
		penalty = layout.StepOrderPenalty
	}

	switch s.mode {
	case ModeUniform:
		if !layout.Feasible(n, sizeN, stepN) {
			return layout.Sequence{}, 0, false
		}
		return layout.Uniform(s.series, sizeN, stepN), penalty, true
	default:
		return layout.Match(s.series, span, step, s.tol), penalty, true
	}
}

// spanStep extracts the physical span and step from a parameter vector,
// skipping the placeholder dimensions of the uniform mode.
func (s *searcher) spanStep(x []float64) (span, step float64) {
	if s.mode == ModeUniform {
		return x[0], x[2]
	}
	return x[0], x[1]
}

// materialize assembles the final result for the best vector. The sequence,
// stats and report are recomputed exactly as the objective saw them; the
// result is built in full before being returned so a failed recomputation
// never publishes a partial layout.
func (s *searcher) materialize(x []float64, cost float64) *Result {
	res := &Result{
		Mode:   s.mode,
		Params: x,
		Cost:   cost,
	}

	seq, penalty, ok := s.generate(x)
	if !ok || len(seq.Windows) == 0 {
		// No window fits within tolerance: an empty, non-converged result.
		return res
	}

	stats := layout.ComputeStats(s.series, seq)
	res.Windows = seq.Windows
	res.Steps = seq.Steps
	res.Stats = stats
	res.Report = layout.Evaluate(s.series, seq, stats, s.targets, s.weights, penalty)
	res.Converged = cost < ConvergenceThreshold
	return res
}
