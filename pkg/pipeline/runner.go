package pipeline

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/sliceplan/sliceplan/pkg/cache"
	"github.com/sliceplan/sliceplan/pkg/errors"
	"github.com/sliceplan/sliceplan/pkg/observability"
	"github.com/sliceplan/sliceplan/pkg/optimize"
	"github.com/sliceplan/sliceplan/pkg/render"
	"github.com/sliceplan/sliceplan/pkg/series"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete series → plan → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	s, err := series.New(opts.ItemCount, opts.TotalLength, opts.Extent)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:  uuid.NewString(),
		Series: s,
	}

	observability.Plan().OnPlanStart(ctx, opts.Mode, opts.ItemCount)

	planStart := time.Now()
	plan, planHit, err := r.PlanWithCacheInfo(ctx, s, opts)
	result.Stats.PlanTime = time.Since(planStart)
	observability.Plan().OnPlanComplete(ctx, opts.Mode, windowCount(plan), result.Stats.PlanTime, err)
	if err != nil {
		return nil, err
	}
	result.Plan = plan
	result.Stats.WindowCount = len(plan.Windows)
	result.CacheInfo.PlanHit = planHit

	if data, err := json.Marshal(plan); err == nil {
		result.PlanHash = cache.Hash(data)
	}

	opts.Logger.Info("planned layout",
		"run", result.RunID,
		"mode", opts.Mode,
		"windows", len(plan.Windows),
		"cost", plan.Cost,
		"converged", plan.Converged,
		"duration", result.Stats.PlanTime)

	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result, opts)
		if err != nil {
			return nil, err
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = renderHit

		opts.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// PlanWithCacheInfo runs the plan stage with caching and returns cache hit
// info. The cache key covers the series geometry and every planning option,
// so a hit is always a valid memoization of the same pure computation.
func (r *Runner) PlanWithCacheInfo(ctx context.Context, s *series.Series, opts Options) (*optimize.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.PlanKey(seriesHash(opts), opts.PlanKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached optimize.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "plan")
				return &cached, true, nil
			}
			// Corrupt entry: fall through to recompute.
		}
		observability.Cache().OnCacheMiss(ctx, "plan")
	}

	observability.Plan().OnOptimizeStart(ctx, opts.Mode, opts.Starts)
	start := time.Now()
	plan, err := optimize.Optimize(optimize.Config{
		Series:        s,
		Mode:          optimize.Mode(opts.Mode),
		Targets:       opts.Targets,
		Weights:       opts.Weights,
		Starts:        opts.Starts,
		MaxIterations: opts.MaxIterations,
		Rand:          rand.New(rand.NewSource(int64(opts.Seed))),
	})
	observability.Plan().OnOptimizeComplete(ctx, opts.Mode, planCost(plan), plan != nil && plan.Converged, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if !opts.Refresh {
		if data, err := json.Marshal(plan); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLPlan); err == nil {
				observability.Cache().OnCacheSet(ctx, "plan", len(data))
			}
		}
	}

	return plan, false, nil
}

// Plan is a convenience wrapper that discards the cache hit info.
func (r *Runner) Plan(ctx context.Context, s *series.Series, opts Options) (*optimize.Result, error) {
	plan, _, err := r.PlanWithCacheInfo(ctx, s, opts)
	return plan, err
}

// RenderWithCacheInfo renders the requested formats with per-artifact
// caching and reports whether every artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Result, opts Options) (map[string][]byte, bool, error) {
	if res == nil || res.Plan == nil {
		return nil, false, errors.New(errors.ErrCodeInternal, "render requires a completed plan")
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(res.PlanHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		allCached = false

		data, err := r.renderFormat(res, opts, format)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return artifacts, allCached, nil
}

// renderFormat produces one artifact for the plan.
func (r *Runner) renderFormat(res *Result, opts Options, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return render.JSON(res.Plan)
	case FormatPNG, FormatSVG:
		return render.Chart(res.Plan, res.Series, render.ChartOptions{
			Width:  opts.Width,
			Height: opts.Height,
			Format: format,
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// seriesHash hashes the series geometry for cache keys.
func seriesHash(opts Options) string {
	data, _ := json.Marshal([]any{opts.ItemCount, opts.TotalLength, opts.Extent})
	return cache.Hash(data)
}

func windowCount(plan *optimize.Result) int {
	if plan == nil {
		return 0
	}
	return len(plan.Windows)
}

func planCost(plan *optimize.Result) float64 {
	if plan == nil {
		return 0
	}
	return plan.Cost
}
