// Package figure describes a trace chart independently of how it is drawn.
package figure

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/itohio/ppmscope/pkg/config"
	"github.com/itohio/ppmscope/pkg/overlay"
	"github.com/itohio/ppmscope/pkg/sample"
	"golang.org/x/image/colornames"
)

// Series is one trace drawn as a connected line.
type Series struct {
	Name    string
	Samples []sample.Sample
	Color   color.Color
}

// Figure is everything a renderer needs to draw a chart.
type Figure struct {
	Title  string
	XLabel string
	YLabel string

	Series []Series

	Cutoff      *float64 // Horizontal reference voltage, nil when disabled
	CutoffColor color.Color

	Markers     []overlay.Marker
	MarkerColor color.Color

	TraceWidth float64
	HeavyWidth float64
	LightWidth float64

	palette []color.Color
	timing  config.TimingConfig
}

// New creates an empty figure styled by cfg.
func New(cfg *config.Config) (*Figure, error) {
	markerColor, err := ParseColor(cfg.Plot.MarkerColor)
	if err != nil {
		return nil, fmt.Errorf("invalid marker color: %w", err)
	}
	cutoffColor, err := ParseColor(cfg.Plot.CutoffColor)
	if err != nil {
		return nil, fmt.Errorf("invalid cutoff color: %w", err)
	}

	palette := make([]color.Color, 0, len(cfg.Plot.Palette))
	for _, name := range cfg.Plot.Palette {
		c, err := ParseColor(name)
		if err != nil {
			return nil, fmt.Errorf("invalid palette color: %w", err)
		}
		palette = append(palette, c)
	}
	if len(palette) == 0 {
		palette = append(palette, colornames.Steelblue)
	}

	return &Figure{
		Title:       cfg.Plot.Title,
		XLabel:      cfg.Plot.XLabel,
		YLabel:      cfg.Plot.YLabel,
		CutoffColor: cutoffColor,
		MarkerColor: markerColor,
		TraceWidth:  cfg.Plot.TraceWidth,
		HeavyWidth:  cfg.Plot.HeavyWidth,
		LightWidth:  cfg.Plot.LightWidth,
		palette:     palette,
		timing:      cfg.Timing,
	}, nil
}

// AddSeries appends a trace, coloring it with the next palette entry.
func (f *Figure) AddSeries(name string, samples []sample.Sample) {
	c := f.palette[len(f.Series)%len(f.palette)]
	f.Series = append(f.Series, Series{Name: name, Samples: samples, Color: c})
}

// SetCutoff enables the horizontal cutoff line at volts.
func (f *Figure) SetCutoff(volts float64) {
	f.Cutoff = &volts
}

// SetBeacon replaces the markers with the frame overlay for beaconStart.
// A nil beaconStart clears them.
func (f *Figure) SetBeacon(beaconStart *float64) {
	f.Markers = overlay.Compute(beaconStart, f.timing)
}

// LineWidth returns the stroke width for a marker emphasis.
func (f *Figure) LineWidth(e overlay.Emphasis) float64 {
	if e == overlay.Light {
		return f.LightWidth
	}
	return f.HeavyWidth
}

// ShowLegend reports whether series names should be drawn.
func (f *Figure) ShowLegend() bool {
	return len(f.Series) > 1
}

// Bounds returns the extent of all series. The boolean is false when there are no samples.
func (f *Figure) Bounds() (sample.Bounds, bool) {
	var (
		result sample.Bounds
		found  bool
	)
	for _, s := range f.Series {
		b, ok := sample.SpanBounds(s.Samples)
		if !ok {
			continue
		}
		if !found {
			result, found = b, true
			continue
		}
		result = result.Union(b)
	}
	return result, found
}

// ParseColor resolves an SVG color name such as "red" or "steelblue".
func ParseColor(name string) (color.RGBA, error) {
	c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return color.RGBA{}, fmt.Errorf("unknown color %q", name)
	}
	return c, nil
}
