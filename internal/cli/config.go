package cli

import (
	"github.com/BurntSushi/toml"

	"github.com/sliceplan/sliceplan/pkg/errors"
	"github.com/sliceplan/sliceplan/pkg/layout"
	"github.com/sliceplan/sliceplan/pkg/pipeline"
)

// planConfig is the TOML plan file accepted by `sliceplan plan --config`.
//
// Example:
//
//	mode = "greedy"
//	seed = 42
//
//	[series]
//	items = 100
//	total_length = 100.0
//	extent = 1.0
//
//	[targets]
//	window_span = 10.0
//	step_distance = 5.0
//	total_coverage_percent = 95.0
//
//	[weights]
//	window_span = 0.3
//	step_distance = 0.2
//	total_coverage = 0.5
type planConfig struct {
	Mode    string             `toml:"mode"`
	Seed    uint64             `toml:"seed"`
	Starts  int                `toml:"starts"`
	Series  seriesConfig       `toml:"series"`
	Targets layout.Targets     `toml:"targets"`
	Weights map[string]float64 `toml:"weights"`
}

type seriesConfig struct {
	Items       int     `toml:"items"`
	TotalLength float64 `toml:"total_length"`
	Extent      float64 `toml:"extent"`
}

// loadPlanConfig reads and decodes a TOML plan file.
func loadPlanConfig(path string) (*planConfig, error) {
	var cfg planConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load plan config %s", path)
	}
	return &cfg, nil
}

// apply copies the config into pipeline options. Flags override afterwards.
func (cfg *planConfig) apply(opts *pipeline.Options) {
	opts.ItemCount = cfg.Series.Items
	opts.TotalLength = cfg.Series.TotalLength
	opts.Extent = cfg.Series.Extent
	opts.Mode = cfg.Mode
	opts.Seed = cfg.Seed
	opts.Starts = cfg.Starts
	opts.Targets = cfg.Targets
	if len(cfg.Weights) > 0 {
		opts.Weights = layout.Weights(cfg.Weights)
	}
}
