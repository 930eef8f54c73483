package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sliceplan/sliceplan/pkg/errors"
	"github.com/sliceplan/sliceplan/pkg/layout"
	"github.com/sliceplan/sliceplan/pkg/pipeline"
	"github.com/sliceplan/sliceplan/pkg/render"
)

// planCommand creates the `plan` command, the main entry point of the tool.
func (c *CLI) planCommand() *cobra.Command {
	var (
		configPath string
		items      int
		length     float64
		extent     float64
		mode       string
		span       float64
		step       float64
		coverage   float64
		count      int
		weights    []string
		seed       uint64
		starts     int
		formats    []string
		output     string
		width      float64
		height     float64
		noCache    bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a window layout over a slice series",
		Long: `Plan searches for the window layout whose mean span, mean step and total
coverage best approximate the given targets, weighted by importance.

Geometry and targets can come from flags or from a TOML config file; flags
set explicitly on the command line override the config. The winning plan is
written as JSON, with optional PNG/SVG charts next to it.`,
		Example: `  sliceplan plan --items 100 --length 100 --extent 1 --span 10 --step 5
  sliceplan plan --config study.toml --format png --output study.json
  sliceplan plan --items 50 --length 200 --extent 2 --span 20 --step 8 \
      --coverage 95 --weight total_coverage=0.5 --weight window_span=0.3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts pipeline.Options
			if configPath != "" {
				cfg, err := loadPlanConfig(configPath)
				if err != nil {
					return err
				}
				cfg.apply(&opts)
			}

			flags := cmd.Flags()
			if flags.Changed("items") {
				opts.ItemCount = items
			}
			if flags.Changed("length") {
				opts.TotalLength = length
			}
			if flags.Changed("extent") {
				opts.Extent = extent
			}
			if flags.Changed("mode") {
				opts.Mode = mode
			}
			if flags.Changed("span") {
				opts.Targets.WindowSpan = span
			}
			if flags.Changed("step") {
				opts.Targets.StepDistance = step
			}
			if flags.Changed("coverage") {
				opts.Targets.TotalCoveragePercent = coverage
			}
			if flags.Changed("count") {
				opts.Targets.WindowCount = count
			}
			if flags.Changed("seed") {
				opts.Seed = seed
			}
			if flags.Changed("starts") {
				opts.Starts = starts
			}
			if len(weights) > 0 {
				w, err := parseWeights(weights)
				if err != nil {
					return err
				}
				opts.Weights = w
			}
			opts.Width = width
			opts.Height = height
			opts.Refresh = refresh

			chartFormats, err := chartFormats(formats)
			if err != nil {
				return err
			}
			opts.Formats = chartFormats

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			p := newProgress(c.Logger)
			opts.Logger = c.Logger
			res, err := runner.Execute(cmd.Context(), opts)
			if err != nil {
				return err
			}
			p.done("plan complete")

			if err := writePlan(res, output); err != nil {
				return err
			}
			c.Logger.Info("wrote plan", "path", output)

			base := strings.TrimSuffix(output, ".json")
			for _, format := range chartFormats {
				path := base + "." + format
				if err := os.WriteFile(path, res.Artifacts[format], 0o644); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
				}
				c.Logger.Info("wrote chart", "path", path)
			}

			fmt.Fprintln(cmd.ErrOrStderr(), renderSummary(res))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML plan file with geometry, targets and weights")
	cmd.Flags().IntVar(&items, "items", 0, "number of items in the series")
	cmd.Flags().Float64Var(&length, "length", 0, "physical length of the series")
	cmd.Flags().Float64Var(&extent, "extent", 0, "per-item physical extent")
	cmd.Flags().StringVarP(&mode, "mode", "m", pipeline.DefaultMode, "window generation mode (greedy, uniform)")
	cmd.Flags().Float64Var(&span, "span", 0, "target mean window span")
	cmd.Flags().Float64Var(&step, "step", 0, "target mean step distance")
	cmd.Flags().Float64Var(&coverage, "coverage", 0, "target total coverage in percent of the series length")
	cmd.Flags().IntVar(&count, "count", 0, "target window count")
	cmd.Flags().StringArrayVarP(&weights, "weight", "w", nil, "criterion weight as name=value (repeatable)")
	cmd.Flags().Uint64Var(&seed, "seed", pipeline.DefaultSeed, "random seed for the multi-start search")
	cmd.Flags().IntVar(&starts, "starts", 0, "number of jittered restarts (0 = default)")
	cmd.Flags().StringArrayVarP(&formats, "format", "f", nil, "extra chart formats: png, svg (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "plan.json", "output path for the plan JSON")
	cmd.Flags().Float64Var(&width, "width", pipeline.DefaultWidth, "chart width in points")
	cmd.Flags().Float64Var(&height, "height", pipeline.DefaultHeight, "chart height in points")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the plan and artifact cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if a cached plan exists")

	return cmd
}

// parseWeights converts repeated name=value pairs into a weight map.
func parseWeights(pairs []string) (layout.Weights, error) {
	w := make(layout.Weights, len(pairs))
	for _, pair := range pairs {
		name, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid weight %q (expected name=value)", pair)
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid weight value in %q", pair)
		}
		w[name] = f
	}
	return w, nil
}

// chartFormats validates the --format values and rejects json, which is
// always written as the plan itself.
func chartFormats(formats []string) ([]string, error) {
	var out []string
	for _, f := range formats {
		if err := pipeline.ValidateFormat(f); err != nil {
			return nil, err
		}
		if f == pipeline.FormatJSON {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// writePlan serializes the plan to the output path.
func writePlan(res *pipeline.Result, path string) error {
	data, err := render.JSON(res.Plan)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
