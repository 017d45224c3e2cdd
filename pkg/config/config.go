package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Timing  TimingConfig  `yaml:"timing"`
	Plot    PlotConfig    `yaml:"plot"`
	Compare CompareConfig `yaml:"compare"`
	Synth   SynthConfig   `yaml:"synth"`
	Log     LogConfig     `yaml:"log"`
}

// TimingConfig contains the PPM link timing. All durations are in milliseconds.
type TimingConfig struct {
	Slot        float64 `yaml:"ppm_slot"`      // Slot width (ms)
	Count       int     `yaml:"ppm_count"`     // Symbols per slot
	BeaconSlots int     `yaml:"beacon_slots"`  // Beacon length in slots
	MaxPacket   int     `yaml:"max_packet"`    // Max payload symbol count
	BitsPerByte int     `yaml:"bits_per_byte"` // PPM symbols per payload byte
}

// BeaconDuration returns the length of the beacon preamble.
func (t TimingConfig) BeaconDuration() float64 {
	return float64(t.BeaconSlots) * t.Slot
}

// SymbolWidth returns the width of one PPM symbol (ppm_slot * ppm_count).
func (t TimingConfig) SymbolWidth() float64 {
	return t.Slot * float64(t.Count)
}

// PayloadDuration returns the span following the beacon that is covered by slot markers.
func (t TimingConfig) PayloadDuration() float64 {
	return t.Slot * float64(t.Count) * float64(t.BitsPerByte) * float64(t.MaxPacket)
}

// PlotConfig contains chart styling. Widths are in points.
type PlotConfig struct {
	Title            string   `yaml:"title"`
	XLabel           string   `yaml:"x_label"`
	YLabel           string   `yaml:"y_label"`
	Width            float64  `yaml:"width"`
	Height           float64  `yaml:"height"`
	TraceWidth       float64  `yaml:"trace_width"`
	HeavyWidth       float64  `yaml:"heavy_width"` // Beacon edges and slot boundaries
	LightWidth       float64  `yaml:"light_width"` // Slot midpoints
	MarkerColor      string   `yaml:"marker_color"`
	CutoffColor      string   `yaml:"cutoff_color"`
	Palette          []string `yaml:"palette"`
	MaxDisplayPoints int      `yaml:"max_display_points"` // Decimation limit for the interactive view
}

// CompareConfig contains the time window applied to every trace in compare mode.
type CompareConfig struct {
	WindowStart float64 `yaml:"window_start"` // ms, inclusive
	WindowEnd   float64 `yaml:"window_end"`   // ms, exclusive
}

// SynthConfig contains the synthetic trace generator parameters.
type SynthConfig struct {
	SampleInterval float64 `yaml:"sample_interval"` // ms between samples
	BeaconStart    float64 `yaml:"beacon_start"`    // ms
	Trailer        float64 `yaml:"trailer"`         // idle ms after the last symbol
	Low            float64 `yaml:"low"`             // LED off level (V)
	High           float64 `yaml:"high"`            // LED on level (V)
	NoiseLevel     float64 `yaml:"noise_level"`     // Peak noise amplitude (V)
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Timing: TimingConfig{
			Slot:        2.5,
			Count:       2,
			BeaconSlots: 20,
			MaxPacket:   64,
			BitsPerByte: 8,
		},
		Plot: PlotConfig{
			XLabel:           "Time (ms)",
			YLabel:           "Photodiode Voltage (V)",
			Width:            640,
			Height:           480,
			TraceWidth:       1,
			HeavyWidth:       2,
			LightWidth:       0.5,
			MarkerColor:      "red",
			CutoffColor:      "red",
			Palette:          []string{"steelblue", "darkorange", "forestgreen", "purple", "saddlebrown", "deeppink"},
			MaxDisplayPoints: 2000,
		},
		Compare: CompareConfig{
			WindowStart: 0,
			WindowEnd:   3000,
		},
		Synth: SynthConfig{
			SampleInterval: 0.1,
			BeaconStart:    10,
			Trailer:        10,
			Low:            0.1,
			High:           1.2,
			NoiseLevel:     0.02,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills zero values left by a partial YAML file.
func (c *Config) ensureDefaults() {
	def := Default()

	// Timing zeros are kept: Load starts from Default, so they were set explicitly.

	if c.Plot.XLabel == "" {
		c.Plot.XLabel = def.Plot.XLabel
	}
	if c.Plot.YLabel == "" {
		c.Plot.YLabel = def.Plot.YLabel
	}
	if c.Plot.Width == 0 {
		c.Plot.Width = def.Plot.Width
	}
	if c.Plot.Height == 0 {
		c.Plot.Height = def.Plot.Height
	}
	if c.Plot.TraceWidth == 0 {
		c.Plot.TraceWidth = def.Plot.TraceWidth
	}
	if c.Plot.HeavyWidth == 0 {
		c.Plot.HeavyWidth = def.Plot.HeavyWidth
	}
	if c.Plot.LightWidth == 0 {
		c.Plot.LightWidth = def.Plot.LightWidth
	}
	if c.Plot.MarkerColor == "" {
		c.Plot.MarkerColor = def.Plot.MarkerColor
	}
	if c.Plot.CutoffColor == "" {
		c.Plot.CutoffColor = def.Plot.CutoffColor
	}
	if len(c.Plot.Palette) == 0 {
		c.Plot.Palette = def.Plot.Palette
	}
	if c.Plot.MaxDisplayPoints == 0 {
		c.Plot.MaxDisplayPoints = def.Plot.MaxDisplayPoints
	}

	if c.Compare.WindowEnd == 0 {
		c.Compare.WindowEnd = def.Compare.WindowEnd
	}

	if c.Synth.SampleInterval == 0 {
		c.Synth.SampleInterval = def.Synth.SampleInterval
	}
	if c.Synth.High == 0 {
		c.Synth.High = def.Synth.High
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}
