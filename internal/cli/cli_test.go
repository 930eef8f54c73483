package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sliceplan/sliceplan/pkg/errors"
	"github.com/sliceplan/sliceplan/pkg/layout"
	"github.com/sliceplan/sliceplan/pkg/pipeline"
)

func TestParseWeights(t *testing.T) {
	w, err := parseWeights([]string{"window_span=0.5", "step_distance=0.3"})
	if err != nil {
		t.Fatalf("parseWeights error: %v", err)
	}
	if w[layout.CriterionWindowSpan] != 0.5 || w[layout.CriterionStepDistance] != 0.3 {
		t.Errorf("weights = %v", w)
	}

	if _, err := parseWeights([]string{"window_span"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Error("missing value should be INVALID_INPUT")
	}
	if _, err := parseWeights([]string{"window_span=abc"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Error("non-numeric value should be INVALID_INPUT")
	}
}

func TestChartFormats(t *testing.T) {
	out, err := chartFormats([]string{"png", "json", "svg"})
	if err != nil {
		t.Fatalf("chartFormats error: %v", err)
	}
	if len(out) != 2 || out[0] != "png" || out[1] != "svg" {
		t.Errorf("formats = %v, want [png svg]", out)
	}

	if _, err := chartFormats([]string{"gif"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Error("unknown format should be INVALID_FORMAT")
	}
}

func TestLoadPlanConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.toml")
	content := `
mode = "greedy"
seed = 7

[series]
items = 100
total_length = 100.0
extent = 1.0

[targets]
window_span = 10.0
step_distance = 5.0
total_coverage_percent = 95.0

[weights]
window_span = 0.3
step_distance = 0.2
total_coverage = 0.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadPlanConfig(path)
	if err != nil {
		t.Fatalf("loadPlanConfig error: %v", err)
	}

	var opts pipeline.Options
	cfg.apply(&opts)

	if opts.ItemCount != 100 || opts.TotalLength != 100 || opts.Extent != 1 {
		t.Errorf("geometry = %d/%g/%g", opts.ItemCount, opts.TotalLength, opts.Extent)
	}
	if opts.Mode != "greedy" || opts.Seed != 7 {
		t.Errorf("mode/seed = %q/%d", opts.Mode, opts.Seed)
	}
	if opts.Targets.WindowSpan != 10 || opts.Targets.StepDistance != 5 || opts.Targets.TotalCoveragePercent != 95 {
		t.Errorf("targets = %+v", opts.Targets)
	}
	if opts.Weights[layout.CriterionTotalCoverage] != 0.5 {
		t.Errorf("weights = %v", opts.Weights)
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("config should produce valid options: %v", err)
	}
}

func TestLoadPlanConfigMissingFile(t *testing.T) {
	_, err := loadPlanConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %v, want INVALID_INPUT", errors.GetCode(err))
	}
}

func TestRootCommand(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()

	for _, name := range []string{"plan", "windowsize", "view", "serve", "cache"} {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
