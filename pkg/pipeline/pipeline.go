// Package pipeline provides the core planning pipeline for sliceplan.
//
// This package implements the complete series → optimize → render pipeline
// used by both the CLI and the HTTP API. Centralizing it keeps behavior
// identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Series: build the position table from the series geometry
//  2. Plan: run the window-layout search and materialize the best layout
//  3. Render: generate output artifacts (JSON, PNG, SVG)
//
// Planning is a pure function of the options, so the plan stage is memoized
// through the cache: identical options always produce identical results, and
// Refresh forces recomputation.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    ItemCount:   100,
//	    TotalLength: 100,
//	    Extent:      1,
//	    Targets:     layout.Targets{WindowSpan: 10, StepDistance: 5, TotalCoveragePercent: 95},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Plan.Stats.MeanSpan)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sliceplan/sliceplan/pkg/cache"
	"github.com/sliceplan/sliceplan/pkg/errors"
	"github.com/sliceplan/sliceplan/pkg/layout"
	"github.com/sliceplan/sliceplan/pkg/optimize"
	"github.com/sliceplan/sliceplan/pkg/series"
)

// Defaults shared by the CLI and the API.
const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultWidth is the default chart width in points.
	DefaultWidth = 800.0

	// DefaultHeight is the default chart height in points.
	DefaultHeight = 400.0
)

// DefaultMode is the default window-generation path.
const DefaultMode = string(optimize.ModeGreedy)

// Format constants for output artifacts.
const (
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatPNG:  true,
	FormatSVG:  true,
}

// ValidModes is the set of supported window-generation paths.
var ValidModes = map[string]bool{
	string(optimize.ModeGreedy):  true,
	string(optimize.ModeUniform): true,
}

// Options contains all configuration for one planning run.
// The struct supports JSON serialization for API requests; every field that
// affects the result participates in the plan cache key.
type Options struct {
	// Series geometry
	ItemCount   int     `json:"item_count"`
	TotalLength float64 `json:"total_length"`
	Extent      float64 `json:"extent"`

	// Planning options
	Mode          string         `json:"mode,omitempty"`
	Targets       layout.Targets `json:"targets"`
	Weights       layout.Weights `json:"weights,omitempty"`
	Seed          uint64         `json:"seed,omitempty"`
	Starts        int            `json:"starts,omitempty"`
	MaxIterations int            `json:"max_iterations,omitempty"`
	Refresh       bool           `json:"refresh,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run. It is assembled in full and
// only returned on success; a failed run never publishes a partial result.
type Result struct {
	// RunID identifies this run in logs and API responses. It is fresh on
	// every call; results have no persistent identity.
	RunID string `json:"run_id"`

	// Plan is the best layout found: parameter vector, cost, convergence
	// flag, windows, steps, stats and cost report.
	Plan *optimize.Result `json:"plan"`

	// Series is the position table the plan was computed over.
	Series *series.Series `json:"-"`

	// PlanHash is the content hash of the plan, used for artifact cache keys.
	PlanHash string `json:"plan_hash,omitempty"`

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte `json:"-"`

	// Stats contains timing information.
	Stats Stats `json:"stats"`

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo `json:"cache_info"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	WindowCount int           `json:"window_count"`
	PlanTime    time.Duration `json:"plan_time"`
	RenderTime  time.Duration `json:"render_time"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	PlanHit   bool `json:"plan_hit"`   // Whether the plan came from cache
	RenderHit bool `json:"render_hit"` // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, png, svg)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// The method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if err := errors.ValidateSeriesGeometry(o.ItemCount, o.TotalLength, o.Extent); err != nil {
		return err
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if !ValidModes[o.Mode] {
		return errors.New(errors.ErrCodeInvalidMode, "invalid mode: %q (must be one of: greedy, uniform)", o.Mode)
	}
	if o.Targets.WindowSpan <= 0 || o.Targets.StepDistance <= 0 {
		return errors.New(errors.ErrCodeInvalidTargets, "window span and step distance targets are required")
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}

	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Starts == 0 {
		o.Starts = optimize.DefaultStarts
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = optimize.DefaultMaxIterations
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// PlanKeyOpts returns cache key options for the plan stage.
func (o *Options) PlanKeyOpts() cache.PlanKeyOpts {
	return cache.PlanKeyOpts{
		Mode:          o.Mode,
		Targets:       o.Targets,
		Weights:       o.Weights,
		Seed:          o.Seed,
		Starts:        o.Starts,
		MaxIterations: o.MaxIterations,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Width:  o.Width,
		Height: o.Height,
	}
}
