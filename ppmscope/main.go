package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/itohio/ppmscope/pkg/config"
	"github.com/itohio/ppmscope/pkg/figure"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var errMissingTrace = errors.New("missing trace file")

// appState holds what the commands share.
type appState struct {
	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer

	// show displays a figure interactively and returns when it is dismissed.
	show func(cfg *config.Config, f *figure.Figure) error
}

func main() {
	state := &appState{
		stdout: os.Stdout,
		show:   showWindow,
	}

	if err := newApp(state).Run(os.Args); err != nil {
		logger := state.logger
		if logger == nil {
			logger = zap.NewExample()
		}
		logger.Error("ppmscope failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	if state.logger != nil {
		_ = state.logger.Sync()
	}
}

func newApp(state *appState) *cli.App {
	globalFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file path",
			Value:   "ppmscope.yaml",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}

	return &cli.App{
		Name:      "ppmscope",
		Usage:     "Plot photodiode traces with PPM frame markers",
		ArgsUsage: "FILE [CUTOFF_VOLTS] [BEACON_START_MS] (use -- before negative values)",
		Flags:     append(globalFlags, renderFlags()...),
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger, err := newLogger(cfg.Log, c.Bool("verbose"))
			if err != nil {
				return err
			}
			state.cfg = cfg
			state.logger = logger
			return nil
		},
		Action: state.plot,
		Commands: []*cli.Command{
			{
				Name:      "plot",
				Usage:     "Plot a trace with an optional cutoff line and frame markers",
				ArgsUsage: "FILE [CUTOFF_VOLTS] [BEACON_START_MS] (use -- before negative values)",
				Flags:     renderFlags(),
				Action:    state.plot,
			},
			{
				Name:      "compare",
				Usage:     "Plot several traces over a common time window",
				ArgsUsage: "[NAME=]FILE...",
				Flags: append(renderFlags(),
					&cli.Float64Flag{Name: "from", Usage: "Window start (ms), defaults to compare.window_start"},
					&cli.Float64Flag{Name: "to", Usage: "Window end (ms), defaults to compare.window_end"},
				),
				Action: state.compare,
			},
			{
				Name:            "markers",
				Usage:           "Print the frame markers for a beacon start time",
				ArgsUsage:       "BEACON_START_MS",
				SkipFlagParsing: true,
				Action:          state.markers,
			},
			{
				Name:  "synth",
				Usage: "Print a synthetic frame trace",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "beacon-start", Usage: "Beacon start (ms), defaults to synth.beacon_start"},
					&cli.StringFlag{Name: "payload", Usage: "Payload text", Value: "ppm"},
					&cli.Float64Flag{Name: "noise", Usage: "Noise amplitude (V), defaults to synth.noise_level"},
				},
				Action: state.synth,
			},
		},
	}
}

// renderFlags are shared by the commands that produce a chart.
func renderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{Name: "cutoff-time", Usage: "Drop samples from this time (ms) onwards"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Save the chart to this file (png, svg, pdf, ...) instead of opening a window"},
		&cli.Float64Flag{Name: "width", Usage: "Saved chart width in points, defaults to plot.width"},
		&cli.Float64Flag{Name: "height", Usage: "Saved chart height in points, defaults to plot.height"},
		&cli.StringFlag{Name: "title", Usage: "Chart title, defaults to plot.title"},
	}
}

// newLogger builds a zap logger from configuration.
func newLogger(cfg config.LogConfig, verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// optionalFloatArg parses positional argument i, returning nil when it is absent.
func optionalFloatArg(args cli.Args, i int, name string) (*float64, error) {
	if args.Len() <= i {
		return nil, nil
	}
	v, err := strconv.ParseFloat(args.Get(i), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", name, args.Get(i), err)
	}
	return &v, nil
}

// optionalFloatFlag returns the flag value, or nil when it was not given.
func optionalFloatFlag(c *cli.Context, name string) *float64 {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Float64(name)
	return &v
}
