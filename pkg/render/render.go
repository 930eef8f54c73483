// Package render produces output artifacts from a planning result.
//
// Two sinks are provided: an indented JSON encoding of the full result, and
// a chart (PNG or SVG) drawing every window as a horizontal bar over the
// physical axis with the slice centers underneath. The presentation layer
// proper (interactive browsing, terminal summaries) lives with the CLI; this
// package only turns results into bytes.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sliceplan/sliceplan/pkg/errors"
	"github.com/sliceplan/sliceplan/pkg/optimize"
	"github.com/sliceplan/sliceplan/pkg/series"
)

// ChartOptions configures chart rendering.
type ChartOptions struct {
	Width  float64 // chart width in points, 0 for the 800pt default
	Height float64 // chart height in points, 0 for the 400pt default
	Format string  // "png" or "svg"
}

// Chart colors.
var (
	colorWindow = color.RGBA{R: 0x2b, G: 0x8c, B: 0xbe, A: 0xff} // window bars
	colorAxis   = color.Gray{Y: 0x60}                            // series axis
	colorTarget = color.RGBA{R: 0xd9, G: 0x53, B: 0x3f, A: 0xff} // target span guide
)

// JSON encodes the result as indented JSON.
func JSON(plan *optimize.Result) ([]byte, error) {
	return json.MarshalIndent(plan, "", "  ")
}

// Chart renders the window layout as a PNG or SVG chart: the series axis at
// the bottom, one horizontal bar per window at increasing heights, and a
// guide segment showing the mean window span.
func Chart(plan *optimize.Result, s *series.Series, opts ChartOptions) ([]byte, error) {
	if plan == nil || s == nil {
		return nil, errors.New(errors.ErrCodeInternal, "chart requires a plan and its series")
	}
	if opts.Format != "png" && opts.Format != "svg" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid chart format: %q (must be png or svg)", opts.Format)
	}
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 400
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Window layout (%d windows, cost %.4f)", len(plan.Windows), plan.Cost)
	p.X.Label.Text = "axis position"
	p.Y.Label.Text = "window"

	// Series axis with the item extents at y=0.
	axis, err := plotter.NewLine(plotter.XYs{
		{X: s.At(1).Center - s.At(1).Extent/2, Y: 0},
		{X: s.At(s.Count()).Center + s.At(s.Count()).Extent/2, Y: 0},
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build axis line")
	}
	axis.Color = colorAxis
	axis.Width = vg.Points(2)
	p.Add(axis, plotter.NewGrid())

	for i, w := range plan.Windows {
		y := float64(i + 1)
		bar, err := plotter.NewLine(plotter.XYs{
			{X: s.At(w.Start).Center - s.At(w.Start).Extent/2, Y: y},
			{X: s.At(w.End).Center + s.At(w.End).Extent/2, Y: y},
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "build window bar %d", i+1)
		}
		bar.Color = colorWindow
		bar.Width = vg.Points(5)
		p.Add(bar)
	}

	if len(plan.Windows) > 0 && plan.Stats.MeanSpan > 0 {
		guideY := float64(len(plan.Windows)) + 1
		guide, err := plotter.NewLine(plotter.XYs{
			{X: 0, Y: guideY},
			{X: plan.Stats.MeanSpan, Y: guideY},
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "build span guide")
		}
		guide.Color = colorTarget
		guide.Width = vg.Points(2)
		guide.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(guide)
		p.Legend.Add("mean span", guide)
	}

	p.Y.Min = -1
	p.Y.Max = float64(len(plan.Windows)) + 2

	wt, err := p.WriterTo(vg.Points(opts.Width), vg.Points(opts.Height), opts.Format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s chart", opts.Format)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s chart", opts.Format)
	}
	return buf.Bytes(), nil
}
