// Package chart renders figures to image files with gonum/plot.
package chart

import (
	"fmt"
	"image/color"
	"math"

	"github.com/itohio/ppmscope/pkg/figure"
	"github.com/itohio/ppmscope/pkg/overlay"
	"github.com/itohio/ppmscope/pkg/sample"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Plot builds a gonum plot for f.
func Plot(f *figure.Figure) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = f.XLabel
	p.Y.Label.Text = f.YLabel
	p.Legend.Top = true

	for _, s := range f.Series {
		if len(s.Samples) == 0 {
			continue
		}
		line, err := plotter.NewLine(samplesXY(s.Samples))
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Name, err)
		}
		line.LineStyle.Color = s.Color
		line.LineStyle.Width = vg.Points(f.TraceWidth)
		p.Add(line)
		if f.ShowLegend() {
			p.Legend.Add(s.Name, line)
		}
	}

	if f.Cutoff != nil {
		p.Add(&cutoffLine{
			Voltage: *f.Cutoff,
			Style:   draw.LineStyle{Color: f.CutoffColor, Width: vg.Points(f.TraceWidth)},
		})
	}

	if len(f.Markers) > 0 {
		p.Add(&markerLines{
			Markers: f.Markers,
			Color:   f.MarkerColor,
			Width:   f.LineWidth,
		})
	}

	return p, nil
}

// Save renders f to path. The image format follows the file extension
// (png, jpg, svg, pdf, eps, tif). Width and height are in points.
func Save(f *figure.Figure, path string, width, height float64) error {
	p, err := Plot(f)
	if err != nil {
		return err
	}
	if err := p.Save(vg.Points(width), vg.Points(height), path); err != nil {
		return fmt.Errorf("failed to save chart %q: %w", path, err)
	}
	return nil
}

// samplesXY adapts samples to plotter.XYer.
type samplesXY []sample.Sample

func (s samplesXY) Len() int { return len(s) }

func (s samplesXY) XY(i int) (float64, float64) { return s[i].Time, s[i].Voltage }

// cutoffLine is a horizontal line across the whole x-range.
type cutoffLine struct {
	Voltage float64
	Style   draw.LineStyle
}

func (l *cutoffLine) Plot(c draw.Canvas, p *plot.Plot) {
	_, trY := p.Transforms(&c)
	y := trY(l.Voltage)
	c.StrokeLine2(l.Style, c.Min.X, y, c.Max.X, y)
}

// DataRange keeps the line inside the y-axis without affecting the x-axis.
func (l *cutoffLine) DataRange() (xmin, xmax, ymin, ymax float64) {
	return math.Inf(1), math.Inf(-1), l.Voltage, l.Voltage
}

// markerLines draws vertical lines spanning the plot height. Markers outside
// the x-axis range are skipped.
type markerLines struct {
	Markers []overlay.Marker
	Color   color.Color
	Width   func(overlay.Emphasis) float64
}

func (m *markerLines) Plot(c draw.Canvas, p *plot.Plot) {
	trX, _ := p.Transforms(&c)
	for _, mk := range m.Markers {
		if mk.Time < p.X.Min || mk.Time > p.X.Max {
			continue
		}
		x := trX(mk.Time)
		style := draw.LineStyle{Color: m.Color, Width: vg.Points(m.Width(mk.Emphasis))}
		c.StrokeLine2(style, x, c.Min.Y, x, c.Max.Y)
	}
}
