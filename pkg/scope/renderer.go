package scope

import (
	"image/color"
	"math"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/ppmscope/pkg/figure"
	"github.com/itohio/ppmscope/pkg/sample"
)

var (
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	titleColor = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	background *canvas.Rectangle

	// Vertical frame markers
	markerLines []*canvas.Line

	// Horizontal cutoff line (nil when disabled)
	cutoffLine *canvas.Line

	// Legend entries, one per series when more than one is shown
	legendTexts []*canvas.Text

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// plotArea is the rectangle inside the axes together with the data ranges it maps.
type plotArea struct {
	x, y, width, height float32
	xMin, xMax          float64
	yMin, yMax          float64
}

func (a plotArea) posX(t float64) float32 {
	return a.x + float32((t-a.xMin)/(a.xMax-a.xMin))*a.width
}

func (a plotArea) posY(v float64) float32 {
	return a.y + a.height - float32((v-a.yMin)/(a.yMax-a.yMin))*a.height
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		// Size changed, redraw with new dimensions
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh rebuilds all canvas objects from the current figure.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	f := r.scope.figure
	display := r.scope.display
	area := plotArea{
		xMin: r.scope.xMin,
		xMax: r.scope.xMax,
		yMin: r.scope.yMin,
		yMax: r.scope.yMax,
	}
	r.scope.mu.RUnlock()

	// Keep background only
	r.objects = []fyne.CanvasObject{r.background}
	r.markerLines = r.markerLines[:0]
	r.legendTexts = r.legendTexts[:0]
	r.cutoffLine = nil

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	marginLeft := float32(70.0)
	marginRight := float32(20.0)
	marginTop := float32(30.0)
	marginBottom := float32(50.0)

	area.x = marginLeft
	area.y = marginTop
	area.width = size.Width - marginLeft - marginRight
	area.height = size.Height - marginTop - marginBottom
	if area.width <= 0 || area.height <= 0 {
		return
	}

	r.drawGrid(area)

	if f == nil {
		return
	}

	r.drawAxisTitles(area, f, size)

	for i, series := range f.Series {
		if i < len(display) {
			r.drawSeries(area, display[i], series.Color, f.TraceWidth)
		}
	}

	if f.Cutoff != nil {
		r.drawCutoff(area, *f.Cutoff, f.CutoffColor, f.TraceWidth)
	}

	r.drawMarkers(area, f)

	if f.ShowLegend() {
		r.drawLegend(area, f)
	}
}

// drawGrid draws the oscilloscope-style grid with tick labels.
func (r *scopeRenderer) drawGrid(a plotArea) {
	// Horizontal grid lines (voltage)
	numHLines := 8
	for i := 0; i < numHLines+1; i++ {
		y := a.y + float32(i)*a.height/float32(numHLines)
		r.addLine(gridColor, 1, fyne.NewPos(a.x, y), fyne.NewPos(a.x+a.width, y))

		value := a.yMax - float64(i)*(a.yMax-a.yMin)/float64(numHLines)
		text := canvas.NewText(formatVoltage(value), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(a.x-5, y-6))
		r.objects = append(r.objects, text)
	}

	// Vertical grid lines (time)
	numVLines := 10
	for i := 0; i < numVLines+1; i++ {
		x := a.x + float32(i)*a.width/float32(numVLines)
		r.addLine(gridColor, 1, fyne.NewPos(x, a.y), fyne.NewPos(x, a.y+a.height))

		value := a.xMin + float64(i)*(a.xMax-a.xMin)/float64(numVLines)
		text := canvas.NewText(formatTime(value), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, a.y+a.height+5))
		r.objects = append(r.objects, text)
	}
}

// drawAxisTitles draws the figure title and axis labels.
func (r *scopeRenderer) drawAxisTitles(a plotArea, f *figure.Figure, size fyne.Size) {
	if f.Title != "" {
		title := canvas.NewText(f.Title, titleColor)
		title.TextSize = 13
		title.TextStyle = fyne.TextStyle{Bold: true}
		title.Alignment = fyne.TextAlignCenter
		title.Move(fyne.NewPos(a.x+a.width/2, 6))
		r.objects = append(r.objects, title)
	}

	xLabel := canvas.NewText(f.XLabel, titleColor)
	xLabel.TextSize = 11
	xLabel.Alignment = fyne.TextAlignCenter
	xLabel.Move(fyne.NewPos(a.x+a.width/2, size.Height-20))
	r.objects = append(r.objects, xLabel)

	// Fyne text cannot be rotated, so the y label sits above the axis.
	yLabel := canvas.NewText(f.YLabel, titleColor)
	yLabel.TextSize = 11
	yLabel.Alignment = fyne.TextAlignLeading
	yLabel.Move(fyne.NewPos(4, 6))
	r.objects = append(r.objects, yLabel)
}

// drawSeries draws one trace as connected line segments.
func (r *scopeRenderer) drawSeries(a plotArea, samples []sample.Sample, c color.Color, width float64) {
	if len(samples) < 2 {
		return
	}

	points := make([]fyne.Position, 0, len(samples))
	for _, s := range samples {
		points = append(points, fyne.NewPos(a.posX(s.Time), a.posY(s.Voltage)))
	}

	for i := 0; i < len(points)-1; i++ {
		r.addLine(c, float32(width), points[i], points[i+1])
	}
}

// drawCutoff draws the horizontal cutoff voltage line.
func (r *scopeRenderer) drawCutoff(a plotArea, volts float64, c color.Color, width float64) {
	y := a.posY(volts)
	r.cutoffLine = r.addLine(c, float32(width), fyne.NewPos(a.x, y), fyne.NewPos(a.x+a.width, y))
}

// drawMarkers draws the frame markers that fall inside the time range.
func (r *scopeRenderer) drawMarkers(a plotArea, f *figure.Figure) {
	for _, m := range f.Markers {
		if m.Time < a.xMin || m.Time > a.xMax {
			continue
		}
		x := a.posX(m.Time)
		line := r.addLine(f.MarkerColor, float32(f.LineWidth(m.Emphasis)), fyne.NewPos(x, a.y), fyne.NewPos(x, a.y+a.height))
		r.markerLines = append(r.markerLines, line)
	}
}

// drawLegend lists series names in their colors at the top right of the plot.
func (r *scopeRenderer) drawLegend(a plotArea, f *figure.Figure) {
	for i, series := range f.Series {
		text := canvas.NewText(series.Name, series.Color)
		text.TextSize = 11
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(a.x+a.width-10, a.y+10+float32(i)*14))
		r.legendTexts = append(r.legendTexts, text)
		r.objects = append(r.objects, text)
	}
}

func (r *scopeRenderer) addLine(c color.Color, width float32, from, to fyne.Position) *canvas.Line {
	line := canvas.NewLine(c)
	line.Position1 = from
	line.Position2 = to
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
	return line
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {
	// Cleanup handled by Fyne
}

func formatVoltage(v float64) string {
	if math.Abs(v) < 0.001 {
		return "0.000V"
	}
	return strconv.FormatFloat(v, 'f', 3, 64) + "V"
}

func formatTime(ms float64) string {
	if math.Abs(ms) >= 1000 {
		return strconv.FormatFloat(ms/1000, 'f', 2, 64) + "s"
	}
	return strconv.FormatFloat(ms, 'f', 1, 64) + "ms"
}
