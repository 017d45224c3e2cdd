package scope

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/ppmscope/pkg/config"
	"github.com/itohio/ppmscope/pkg/figure"
	"github.com/itohio/ppmscope/pkg/sample"
)

// ScopeWidget is a custom Fyne widget that displays a figure oscilloscope-style.
type ScopeWidget struct {
	widget.BaseWidget

	cfg *config.Config

	// Data (protected by mu)
	mu     sync.RWMutex
	figure *figure.Figure

	// Display buffers, one per series (reused for downsampling)
	display [][]sample.Sample

	// Auto-scaling
	yMin, yMax float64
	xMin, xMax float64

	maxDisplayPoints int
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	s := &ScopeWidget{
		cfg:              cfg,
		maxDisplayPoints: cfg.Plot.MaxDisplayPoints,
	}
	s.updateAutoScale()
	s.ExtendBaseWidget(s)
	return s
}

// SetFigure replaces the displayed figure.
// Must be called from the Fyne main thread (use fyne.Do from goroutines).
func (s *ScopeWidget) SetFigure(f *figure.Figure) {
	s.mu.Lock()

	s.figure = f
	if f != nil {
		for len(s.display) < len(f.Series) {
			s.display = append(s.display, nil)
		}
		s.display = s.display[:len(f.Series)]
		for i, series := range f.Series {
			s.display[i] = sample.DownsampleSamples(s.display[i], series.Samples, s.maxDisplayPoints)
		}
	} else {
		s.display = s.display[:0]
	}

	s.updateAutoScale()

	s.mu.Unlock()

	// Refresh must be outside lock to avoid potential deadlock
	s.Refresh()
}

// Figure returns the displayed figure.
func (s *ScopeWidget) Figure() *figure.Figure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.figure
}

// updateAutoScale calculates the axis ranges from the full-resolution series.
func (s *ScopeWidget) updateAutoScale() {
	var (
		b  sample.Bounds
		ok bool
	)
	if s.figure != nil {
		b, ok = s.figure.Bounds()
	}
	if !ok {
		s.xMin, s.xMax = 0, 1
		s.yMin, s.yMax = 0, 1
		if s.figure != nil && s.figure.Cutoff != nil {
			s.yMin, s.yMax = *s.figure.Cutoff-0.5, *s.figure.Cutoff+0.5
		}
		return
	}

	s.yMin, s.yMax = b.VoltageMin, b.VoltageMax
	if c := s.figure.Cutoff; c != nil {
		s.yMin = min(s.yMin, *c)
		s.yMax = max(s.yMax, *c)
	}

	// Add 10% margin
	span := s.yMax - s.yMin
	if span == 0 {
		span = 1.0
	}
	margin := span * 0.1
	s.yMin -= margin
	s.yMax += margin

	s.xMin, s.xMax = b.TimeMin, b.TimeMax
	if s.xMax == s.xMin {
		s.xMax = s.xMin + 1
	}
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:      s,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}
