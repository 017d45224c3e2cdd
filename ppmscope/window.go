package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/itohio/ppmscope/pkg/config"
	"github.com/itohio/ppmscope/pkg/figure"
	"github.com/itohio/ppmscope/pkg/scope"
)

// showWindow opens the interactive scope and blocks until it is closed.
func showWindow(cfg *config.Config, f *figure.Figure) error {
	a := app.NewWithID("com.itohio.ppmscope")

	title := f.Title
	if title == "" {
		title = "PPM Scope"
	}
	w := a.NewWindow(title)

	sc := scope.New(cfg)
	sc.SetFigure(f)

	w.SetContent(sc)
	w.Resize(fyne.NewSize(float32(cfg.Plot.Width)*1.5, float32(cfg.Plot.Height)*1.5))
	w.ShowAndRun()
	return nil
}
