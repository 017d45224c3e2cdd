package main

import (
	"errors"
	"fmt"

	"github.com/itohio/ppmscope/pkg/chart"
	"github.com/itohio/ppmscope/pkg/figure"
	"github.com/itohio/ppmscope/pkg/overlay"
	"github.com/itohio/ppmscope/pkg/sample"
	"github.com/itohio/ppmscope/pkg/synth"
	"github.com/itohio/ppmscope/pkg/trace"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// plot draws a single trace: FILE [CUTOFF_VOLTS] [BEACON_START_MS].
func (s *appState) plot(c *cli.Context) error {
	args := c.Args()
	if args.Len() == 0 {
		return errMissingTrace
	}
	if args.Len() > 3 {
		return fmt.Errorf("too many arguments: %d", args.Len())
	}

	cutoff, err := optionalFloatArg(args, 1, "cutoff voltage")
	if err != nil {
		return err
	}
	beaconStart, err := optionalFloatArg(args, 2, "beacon start")
	if err != nil {
		return err
	}

	path := args.Get(0)
	samples, err := trace.Load(path, trace.WithLogger(s.logger))
	if err != nil {
		return err
	}
	samples = sample.Trim(samples, optionalFloatFlag(c, "cutoff-time"))

	f, err := s.newFigure(c)
	if err != nil {
		return err
	}
	f.AddSeries(trace.NameOf(path), samples)
	if cutoff != nil {
		f.SetCutoff(*cutoff)
	}
	f.SetBeacon(beaconStart)

	s.logger.Info("plotting trace",
		zap.String("path", path),
		zap.Int("samples", len(samples)),
		zap.Int("markers", len(f.Markers)),
	)
	return s.render(c, f)
}

// compare overlays several traces clipped to a common window.
func (s *appState) compare(c *cli.Context) error {
	if c.NArg() == 0 {
		return errMissingTrace
	}

	from := s.cfg.Compare.WindowStart
	if v := optionalFloatFlag(c, "from"); v != nil {
		from = *v
	}
	to := s.cfg.Compare.WindowEnd
	if v := optionalFloatFlag(c, "to"); v != nil {
		to = *v
	}
	if !(from < to) {
		return fmt.Errorf("empty compare window [%g, %g)", from, to)
	}

	f, err := s.newFigure(c)
	if err != nil {
		return err
	}

	cutoffTime := optionalFloatFlag(c, "cutoff-time")
	for _, spec := range c.Args().Slice() {
		tr, err := trace.LoadSpec(spec, trace.WithLogger(s.logger))
		if err != nil {
			return err
		}
		samples := sample.Window(sample.Trim(tr.Samples, cutoffTime), from, to)
		if len(samples) == 0 {
			s.logger.Warn("trace has no samples in window",
				zap.String("trace", tr.Name),
				zap.Float64("from", from),
				zap.Float64("to", to),
			)
		}
		f.AddSeries(tr.Name, samples)
	}

	s.logger.Info("comparing traces",
		zap.Int("traces", len(f.Series)),
		zap.Float64("from", from),
		zap.Float64("to", to),
	)
	return s.render(c, f)
}

// markers prints the frame markers for BEACON_START_MS.
func (s *appState) markers(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one argument: BEACON_START_MS")
	}
	beaconStart, err := optionalFloatArg(c.Args(), 0, "beacon start")
	if err != nil {
		return err
	}
	return overlay.Format(s.stdout, overlay.Compute(beaconStart, s.cfg.Timing))
}

// synth prints a synthetic frame in capture file format.
func (s *appState) synth(c *cli.Context) error {
	cfg := s.cfg.Synth
	if v := optionalFloatFlag(c, "beacon-start"); v != nil {
		cfg.BeaconStart = *v
	}
	if v := optionalFloatFlag(c, "noise"); v != nil {
		cfg.NoiseLevel = *v
	}

	samples := synth.Generate(cfg, s.cfg.Timing, []byte(c.String("payload")))
	s.logger.Debug("generated trace",
		zap.Int("samples", len(samples)),
		zap.Float64("beacon_start", cfg.BeaconStart),
	)
	return trace.Write(s.stdout, samples)
}

func (s *appState) newFigure(c *cli.Context) (*figure.Figure, error) {
	f, err := figure.New(s.cfg)
	if err != nil {
		return nil, err
	}
	if c.IsSet("title") {
		f.Title = c.String("title")
	}
	return f, nil
}

// render saves the figure when --out is given and shows it otherwise.
func (s *appState) render(c *cli.Context, f *figure.Figure) error {
	out := c.String("out")
	if out == "" {
		return s.show(s.cfg, f)
	}

	width := s.cfg.Plot.Width
	if c.IsSet("width") {
		width = c.Float64("width")
	}
	height := s.cfg.Plot.Height
	if c.IsSet("height") {
		height = c.Float64("height")
	}

	if err := chart.Save(f, out, width, height); err != nil {
		return err
	}
	s.logger.Info("chart saved", zap.String("path", out))
	return nil
}
