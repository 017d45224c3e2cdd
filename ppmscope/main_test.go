package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/itohio/ppmscope/pkg/config"
	"github.com/itohio/ppmscope/pkg/figure"
	"github.com/itohio/ppmscope/pkg/overlay"
	"github.com/itohio/ppmscope/pkg/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTrace = "0\t0.1\n5\t0.2\n10\t0.9\n15\t0.3\n"

type harness struct {
	state  *appState
	stdout *bytes.Buffer
	shown  []*figure.Figure
	dir    string
	cfg    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		stdout: &bytes.Buffer{},
		dir:    t.TempDir(),
	}
	h.cfg = filepath.Join(h.dir, "ppmscope.yaml")
	h.state = &appState{
		stdout: h.stdout,
		show: func(_ *config.Config, f *figure.Figure) error {
			h.shown = append(h.shown, f)
			return nil
		},
	}
	return h
}

func (h *harness) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (h *harness) run(args ...string) error {
	app := newApp(h.state)
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}
	return app.Run(append([]string{"ppmscope", "--config", h.cfg}, args...))
}

func TestPlot_DefaultAction(t *testing.T) {
	h := newHarness(t)
	path := h.file(t, "run.txt", sampleTrace)

	require.NoError(t, h.run(path, "0.5", "0"))
	require.Len(t, h.shown, 1)

	f := h.shown[0]
	require.Len(t, f.Series, 1)
	assert.Equal(t, "run", f.Series[0].Name)
	assert.Len(t, f.Series[0].Samples, 4)
	require.NotNil(t, f.Cutoff)
	assert.Equal(t, 0.5, *f.Cutoff)
	assert.Len(t, f.Markers, 1026)
	assert.Equal(t, overlay.Marker{Time: 50, Kind: overlay.BeaconEdge, Emphasis: overlay.Heavy}, f.Markers[1])
}

func TestPlot_Optional(t *testing.T) {
	h := newHarness(t)
	path := h.file(t, "run.txt", sampleTrace)

	require.NoError(t, h.run("plot", path))
	require.Len(t, h.shown, 1)
	assert.Nil(t, h.shown[0].Cutoff)
	assert.Empty(t, h.shown[0].Markers)
}

func TestPlot_CutoffTime(t *testing.T) {
	h := newHarness(t)
	path := h.file(t, "run.txt", sampleTrace)

	require.NoError(t, h.run("plot", "--cutoff-time", "9", "--title", "trimmed", path))
	require.Len(t, h.shown, 1)
	assert.Equal(t, "trimmed", h.shown[0].Title)
	assert.Len(t, h.shown[0].Series[0].Samples, 2)
}

func TestPlot_SaveToFile(t *testing.T) {
	h := newHarness(t)
	path := h.file(t, "run.txt", sampleTrace)
	out := filepath.Join(h.dir, "run.png")

	require.NoError(t, h.run("plot", "--out", out, "--width", "320", "--height", "240", path, "0.5", "0"))
	assert.Empty(t, h.shown)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPlot_Errors(t *testing.T) {
	h := newHarness(t)
	path := h.file(t, "run.txt", sampleTrace)
	bad := h.file(t, "bad.txt", "0\t0.1\nnot a number\t1\n")

	tests := []struct {
		name string
		args []string
	}{
		{"missing file argument", []string{"plot"}},
		{"malformed cutoff", []string{"plot", path, "abc"}},
		{"malformed beacon start", []string{"plot", path, "0.5", "soon"}},
		{"too many arguments", []string{"plot", path, "0.5", "0", "extra"}},
		{"file does not exist", []string{"plot", filepath.Join(h.dir, "missing.txt")}},
		{"malformed trace", []string{"plot", bad}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, h.run(tt.args...))
		})
	}
	assert.Empty(t, h.shown)
}

func TestPlot_ParseErrorReachesCaller(t *testing.T) {
	h := newHarness(t)
	bad := h.file(t, "bad.txt", "0\t0.1\n1\t2\t3\n")

	err := h.run("plot", bad)
	require.Error(t, err)

	var perr *trace.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
}

func TestCompare(t *testing.T) {
	h := newHarness(t)
	a := h.file(t, "a.txt", sampleTrace)
	b := h.file(t, "b.txt", "2\t1\n4\t1.1\n6\t1.2\n12\t0.4\n")

	require.NoError(t, h.run("compare", "--from", "4", "--to", "12", "first="+a, b))
	require.Len(t, h.shown, 1)

	f := h.shown[0]
	require.Len(t, f.Series, 2)
	assert.True(t, f.ShowLegend())
	assert.Equal(t, "first", f.Series[0].Name)
	assert.Equal(t, "b", f.Series[1].Name)
	assert.Len(t, f.Series[0].Samples, 2)
	assert.Len(t, f.Series[1].Samples, 2)
	assert.NotEqual(t, f.Series[0].Color, f.Series[1].Color)
}

func TestCompare_Errors(t *testing.T) {
	h := newHarness(t)
	a := h.file(t, "a.txt", sampleTrace)

	assert.Error(t, h.run("compare"))
	assert.Error(t, h.run("compare", "--from", "10", "--to", "10", a))
	assert.Error(t, h.run("compare", a, filepath.Join(h.dir, "missing.txt")))
	assert.Empty(t, h.shown)
}

func TestMarkers(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("markers", "0"))

	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.Len(t, lines, 1026)
	assert.Equal(t, "0\tbeacon_edge\theavy", lines[0])
	assert.Equal(t, "50\tbeacon_edge\theavy", lines[1])
	assert.Equal(t, "52.5\tslot_midpoint\tlight", lines[2])
	assert.Equal(t, "55\tslot_boundary\theavy", lines[3])
	assert.Equal(t, "2610\tslot_boundary\theavy", lines[len(lines)-1])
}

func TestMarkers_UsesConfig(t *testing.T) {
	h := newHarness(t)
	h.file(t, "ppmscope.yaml", "timing:\n  ppm_slot: 5\n  max_packet: 1\n")

	require.NoError(t, h.run("markers", "10"))

	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	assert.Equal(t, "10\tbeacon_edge\theavy", lines[0])
	assert.Equal(t, "110\tbeacon_edge\theavy", lines[1])
	assert.Equal(t, "115\tslot_midpoint\tlight", lines[2])
}

func TestMarkers_Errors(t *testing.T) {
	h := newHarness(t)

	assert.Error(t, h.run("markers"))
	assert.Error(t, h.run("markers", "x"))
	assert.Error(t, h.run("markers", "1", "2"))
}

func TestInvalidConfig(t *testing.T) {
	h := newHarness(t)
	h.file(t, "ppmscope.yaml", "timing: [")

	assert.Error(t, h.run("markers", "0"))
}

func TestInvalidLogLevel(t *testing.T) {
	h := newHarness(t)
	h.file(t, "ppmscope.yaml", "log:\n  level: loud\n")

	assert.Error(t, h.run("markers", "0"))
}

func TestSynth(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("synth", "--beacon-start", "5", "--noise", "0", "--payload", "A"))

	samples, err := trace.Read(h.stdout)
	require.NoError(t, err)
	require.NotEmpty(t, samples)
	assert.Equal(t, 0.0, samples[0].Time)

	cfg := config.Default()
	for _, s := range samples {
		if s.Time >= 6 && s.Time < 54 {
			assert.InDelta(t, cfg.Synth.High, s.Voltage, 1e-6, "beacon at %v", s.Time)
		}
		if s.Time < 4 {
			assert.InDelta(t, cfg.Synth.Low, s.Voltage, 1e-6, "idle at %v", s.Time)
		}
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.LogConfig{Level: "warn"}, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	logger, err = newLogger(config.LogConfig{Level: "warn", Development: true}, true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	_, err = newLogger(config.LogConfig{Level: "loud"}, false)
	assert.Error(t, err)
}

func TestPlot_PathWithEquals(t *testing.T) {
	h := newHarness(t)
	dir := filepath.Join(h.dir, "gain=2")
	require.NoError(t, os.Mkdir(dir, 0755))
	path := filepath.Join(dir, "run.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleTrace), 0644))

	require.NoError(t, h.run("plot", path))
	require.Len(t, h.shown, 1)
	assert.Equal(t, "run", h.shown[0].Series[0].Name)
	assert.Len(t, h.shown[0].Series[0].Samples, 4)

	require.NoError(t, h.run("compare", path, "second="+path))
	require.Len(t, h.shown, 2)
	assert.Equal(t, "run", h.shown[1].Series[0].Name)
	assert.Equal(t, "second", h.shown[1].Series[1].Name)
}

func TestMarkers_NegativeBeaconStart(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("markers", "-5"))

	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.Len(t, lines, 1026)
	assert.Equal(t, "-5\tbeacon_edge\theavy", lines[0])
	assert.Equal(t, "45\tbeacon_edge\theavy", lines[1])
	assert.Equal(t, "47.5\tslot_midpoint\tlight", lines[2])
}

func TestMarkers_EmptyPayloadFromConfig(t *testing.T) {
	h := newHarness(t)
	h.file(t, "ppmscope.yaml", "timing:\n  max_packet: 0\n")

	require.NoError(t, h.run("markers", "0"))

	assert.Equal(t, "0\tbeacon_edge\theavy\n50\tbeacon_edge\theavy\n", h.stdout.String())
}
