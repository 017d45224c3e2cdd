// Package synth generates photodiode traces of PPM frames.
package synth

import (
	"math"

	"github.com/itohio/ppmscope/pkg/config"
	"github.com/itohio/ppmscope/pkg/sample"
)

// Generate returns a trace of one frame carrying payload.
//
// The LED is off until cfg.BeaconStart and on for the beacon. Each payload
// byte then occupies timing.BitsPerByte symbols carrying its low BitsPerByte
// bits MSB first (bits above 7 read as 0). A symbol spans timing.Count slots
// with the pulse in slot bit%Count. The trace ends cfg.Trailer after the last symbol.
// Payload beyond timing.MaxPacket bytes is dropped.
func Generate(cfg config.SynthConfig, timing config.TimingConfig, payload []byte) []sample.Sample {
	if !(cfg.SampleInterval > 0) {
		return nil
	}
	if timing.MaxPacket >= 0 && len(payload) > timing.MaxPacket {
		payload = payload[:timing.MaxPacket]
	}

	f := frame{
		beaconStart: cfg.BeaconStart,
		beaconEnd:   cfg.BeaconStart + timing.BeaconDuration(),
		slot:        timing.Slot,
		count:       timing.Count,
		bitsPerByte: timing.BitsPerByte,
		payload:     payload,
	}
	end := f.beaconEnd + f.payloadDuration() + cfg.Trailer
	if !(end > 0) {
		return nil
	}

	n := int(math.Ceil(end / cfg.SampleInterval))
	samples := make([]sample.Sample, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) * cfg.SampleInterval
		v := cfg.Low
		if f.on(t) {
			v = cfg.High
		}
		samples = append(samples, sample.Sample{Time: t, Voltage: v + noise(t, cfg.NoiseLevel)})
	}

	return samples
}

type frame struct {
	beaconStart float64
	beaconEnd   float64
	slot        float64
	count       int
	bitsPerByte int
	payload     []byte
}

func (f frame) symbolWidth() float64 {
	return f.slot * float64(f.count)
}

func (f frame) payloadDuration() float64 {
	if !(f.symbolWidth() > 0) {
		return 0
	}
	return float64(f.symbols()) * f.symbolWidth()
}

func (f frame) symbols() int {
	if f.bitsPerByte <= 0 {
		return 0
	}
	return len(f.payload) * f.bitsPerByte
}

// on reports whether the LED is lit at t.
func (f frame) on(t float64) bool {
	if t < f.beaconStart {
		return false
	}
	if t < f.beaconEnd {
		return true
	}

	width := f.symbolWidth()
	if !(width > 0) {
		return false
	}

	offset := t - f.beaconEnd
	symbol := int(offset / width)
	if symbol >= f.symbols() {
		return false
	}

	bit := 0
	if pos := f.bitsPerByte - 1 - symbol%f.bitsPerByte; pos < 8 {
		bit = int(f.payload[symbol/f.bitsPerByte]>>pos) & 1
	}
	slot := int((offset - float64(symbol)*width) / f.slot)
	return slot == bit%f.count
}

// noise is a deterministic ripple with peak amplitude level.
func noise(t, level float64) float64 {
	if level == 0 {
		return 0
	}
	return (math.Sin(t*7.3) + math.Cos(t*13.1)) * level * 0.5
}
