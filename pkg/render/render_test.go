package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sliceplan/sliceplan/pkg/errors"
	"github.com/sliceplan/sliceplan/pkg/layout"
	"github.com/sliceplan/sliceplan/pkg/optimize"
	"github.com/sliceplan/sliceplan/pkg/series"
)

func testPlan(t *testing.T) (*optimize.Result, *series.Series) {
	t.Helper()
	s, err := series.New(100, 100, 1)
	if err != nil {
		t.Fatalf("series.New error: %v", err)
	}
	plan, err := optimize.Optimize(optimize.Config{
		Series:  s,
		Targets: layout.Targets{WindowSpan: 10, StepDistance: 5},
	})
	if err != nil {
		t.Fatalf("Optimize error: %v", err)
	}
	return plan, s
}

func TestJSON(t *testing.T) {
	plan, _ := testPlan(t)

	data, err := JSON(plan)
	if err != nil {
		t.Fatalf("JSON error: %v", err)
	}

	var decoded optimize.Result
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output does not decode: %v", err)
	}
	if len(decoded.Windows) != len(plan.Windows) {
		t.Errorf("windows = %d, want %d", len(decoded.Windows), len(plan.Windows))
	}
}

func TestChartSVG(t *testing.T) {
	plan, s := testPlan(t)

	data, err := Chart(plan, s, ChartOptions{Format: "svg"})
	if err != nil {
		t.Fatalf("Chart error: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("output does not look like SVG")
	}
}

func TestChartPNG(t *testing.T) {
	plan, s := testPlan(t)

	data, err := Chart(plan, s, ChartOptions{Format: "png", Width: 400, Height: 200})
	if err != nil {
		t.Fatalf("Chart error: %v", err)
	}
	// PNG magic bytes
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Error("output does not look like PNG")
	}
}

func TestChartInvalidFormat(t *testing.T) {
	plan, s := testPlan(t)

	_, err := Chart(plan, s, ChartOptions{Format: "gif"})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("code = %v, want INVALID_FORMAT", errors.GetCode(err))
	}
}

func TestChartNilPlan(t *testing.T) {
	_, s := testPlan(t)

	if _, err := Chart(nil, s, ChartOptions{Format: "svg"}); err == nil {
		t.Error("nil plan should fail")
	}
	plan, _ := testPlan(t)
	if _, err := Chart(plan, nil, ChartOptions{Format: "svg"}); err == nil {
		t.Error("nil series should fail")
	}
}
