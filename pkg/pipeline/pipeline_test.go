package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sliceplan/sliceplan/pkg/cache"
	"github.com/sliceplan/sliceplan/pkg/errors"
	"github.com/sliceplan/sliceplan/pkg/layout"
	"github.com/sliceplan/sliceplan/pkg/optimize"
)

func testOptions() Options {
	return Options{
		ItemCount:   100,
		TotalLength: 100,
		Extent:      1,
		Targets: layout.Targets{
			WindowSpan:           10,
			StepDistance:         5,
			TotalCoveragePercent: 95,
		},
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := testOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults error: %v", err)
	}

	if opts.Mode != DefaultMode {
		t.Errorf("Mode = %q, want %q", opts.Mode, DefaultMode)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", opts.Seed, DefaultSeed)
	}
	if opts.Starts != optimize.DefaultStarts {
		t.Errorf("Starts = %d, want %d", opts.Starts, optimize.DefaultStarts)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("dimensions = %gx%g, want %gx%g", opts.Width, opts.Height, DefaultWidth, DefaultHeight)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		code   errors.Code
	}{
		{
			name:   "bad geometry",
			mutate: func(o *Options) { o.ItemCount = 1 },
			code:   errors.ErrCodeInvalidInput,
		},
		{
			name:   "bad mode",
			mutate: func(o *Options) { o.Mode = "brutal" },
			code:   errors.ErrCodeInvalidMode,
		},
		{
			name:   "missing targets",
			mutate: func(o *Options) { o.Targets = layout.Targets{} },
			code:   errors.ErrCodeInvalidTargets,
		},
		{
			name:   "bad format",
			mutate: func(o *Options) { o.Formats = []string{"gif"} },
			code:   errors.ErrCodeInvalidFormat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.mutate(&opts)
			err := opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(cache.NewNullCache(), nil, nil)
	defer runner.Close()

	res, err := runner.Execute(context.Background(), testOptions())
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if res.RunID == "" {
		t.Error("RunID should be set")
	}
	if res.Plan == nil {
		t.Fatal("Plan should be set")
	}
	if len(res.Plan.Windows) == 0 {
		t.Error("expected windows in the plan")
	}
	if res.Stats.WindowCount != len(res.Plan.Windows) {
		t.Errorf("Stats.WindowCount = %d, want %d", res.Stats.WindowCount, len(res.Plan.Windows))
	}
	if res.PlanHash == "" {
		t.Error("PlanHash should be set")
	}
	if res.CacheInfo.PlanHit {
		t.Error("first run on an empty cache should not be a hit")
	}
	if res.Series == nil {
		t.Error("Series should be set")
	}
}

func TestExecutePlanCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	ctx := context.Background()

	first, err := runner.Execute(ctx, testOptions())
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if first.CacheInfo.PlanHit {
		t.Error("first run should miss")
	}

	second, err := runner.Execute(ctx, testOptions())
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if !second.CacheInfo.PlanHit {
		t.Error("second run with identical options should hit")
	}
	if second.Plan.Cost != first.Plan.Cost {
		t.Errorf("cached cost %g differs from computed cost %g", second.Plan.Cost, first.Plan.Cost)
	}

	// A changed seed is a different key.
	opts := testOptions()
	opts.Seed = 7
	third, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if third.CacheInfo.PlanHit {
		t.Error("changed seed should miss")
	}

	// Refresh bypasses the cache even on a warm key.
	opts = testOptions()
	opts.Refresh = true
	fourth, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if fourth.CacheInfo.PlanHit {
		t.Error("refresh should not hit the cache")
	}
}

func TestExecuteRendersArtifacts(t *testing.T) {
	runner := NewRunner(cache.NewNullCache(), nil, nil)
	defer runner.Close()

	opts := testOptions()
	opts.Formats = []string{FormatJSON, FormatSVG}

	res, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if len(res.Artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(res.Artifacts))
	}

	var plan optimize.Result
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &plan); err != nil {
		t.Fatalf("json artifact does not decode: %v", err)
	}
	if len(plan.Windows) != len(res.Plan.Windows) {
		t.Errorf("json artifact windows = %d, want %d", len(plan.Windows), len(res.Plan.Windows))
	}

	if len(res.Artifacts[FormatSVG]) == 0 {
		t.Error("svg artifact should not be empty")
	}
}

func TestExecuteArtifactCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	ctx := context.Background()
	opts := testOptions()
	opts.Formats = []string{FormatJSON}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first render should miss")
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second render of the same plan should hit")
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	runner := NewRunner(cache.NewNullCache(), nil, nil)
	defer runner.Close()

	opts := testOptions()
	opts.TotalLength = -1
	if _, err := runner.Execute(context.Background(), opts); err == nil {
		t.Fatal("expected error for invalid geometry")
	}
}
