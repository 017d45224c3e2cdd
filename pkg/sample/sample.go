package sample

import (
	"gonum.org/v1/gonum/floats"
)

// Sample is a single photodiode reading.
type Sample struct {
	Time    float64 // Time since capture start (ms)
	Voltage float64 // Photodiode voltage (V)
}

// Bounds is the extent of a sample sequence.
type Bounds struct {
	TimeMin, TimeMax       float64
	VoltageMin, VoltageMax float64
}

// Trim returns the longest prefix of samples whose times are all strictly
// less than cutoff. The first sample with Time >= cutoff is the exclusive end.
// A nil cutoff returns samples unchanged.
func Trim(samples []Sample, cutoff *float64) []Sample {
	if cutoff == nil {
		return samples
	}
	for i, s := range samples {
		if s.Time >= *cutoff {
			return samples[:i]
		}
	}
	return samples
}

// Window returns the samples with start <= Time < end, preserving order.
// The result shares no memory with samples.
func Window(samples []Sample, start, end float64) []Sample {
	result := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if s.Time >= start && s.Time < end {
			result = append(result, s)
		}
	}
	return result
}

// Times returns the sample times in order.
func Times(samples []Sample) []float64 {
	result := make([]float64, len(samples))
	for i, s := range samples {
		result[i] = s.Time
	}
	return result
}

// Voltages returns the sample voltages in order.
func Voltages(samples []Sample) []float64 {
	result := make([]float64, len(samples))
	for i, s := range samples {
		result[i] = s.Voltage
	}
	return result
}

// SpanBounds returns the bounds of samples. The boolean is false for an empty slice.
func SpanBounds(samples []Sample) (Bounds, bool) {
	if len(samples) == 0 {
		return Bounds{}, false
	}
	times := Times(samples)
	voltages := Voltages(samples)
	return Bounds{
		TimeMin:    floats.Min(times),
		TimeMax:    floats.Max(times),
		VoltageMin: floats.Min(voltages),
		VoltageMax: floats.Max(voltages),
	}, true
}

// Union returns the smallest bounds containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		TimeMin:    min(b.TimeMin, o.TimeMin),
		TimeMax:    max(b.TimeMax, o.TimeMax),
		VoltageMin: min(b.VoltageMin, o.VoltageMin),
		VoltageMax: max(b.VoltageMax, o.VoltageMax),
	}
}
