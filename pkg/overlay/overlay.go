// Package overlay computes the beacon and PPM slot markers drawn over a
// photodiode trace.
package overlay

import (
	"fmt"
	"io"
	"strconv"

	"github.com/itohio/ppmscope/pkg/config"
)

// Kind identifies what a marker delimits.
type Kind int

const (
	BeaconEdge Kind = iota
	SlotBoundary
	SlotMidpoint
)

func (k Kind) String() string {
	switch k {
	case BeaconEdge:
		return "beacon_edge"
	case SlotBoundary:
		return "slot_boundary"
	case SlotMidpoint:
		return "slot_midpoint"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Emphasis is the rendering weight of a marker.
type Emphasis int

const (
	Heavy Emphasis = iota
	Light
)

func (e Emphasis) String() string {
	switch e {
	case Heavy:
		return "heavy"
	case Light:
		return "light"
	default:
		return "Emphasis(" + strconv.Itoa(int(e)) + ")"
	}
}

// Marker is a vertical reference line at Time (ms).
type Marker struct {
	Time     float64
	Kind     Kind
	Emphasis Emphasis
}

// Compute returns the frame markers for a beacon starting at beaconStart.
// A nil beaconStart yields no markers.
//
// The beacon is bounded by two heavy edges. The cursor then walks the payload
// one symbol (ppm_slot * ppm_count) at a time, emitting a light midpoint one
// slot into the symbol and a heavy boundary at its end, while it is before
// beacon end + ppm_slot * ppm_count * bits_per_byte * max_packet.
func Compute(beaconStart *float64, timing config.TimingConfig) []Marker {
	if beaconStart == nil {
		return []Marker{}
	}
	return Frame(*beaconStart, timing)
}

// Frame is Compute for a known beacon start.
func Frame(beaconStart float64, timing config.TimingConfig) []Marker {
	beaconEnd := beaconStart + timing.BeaconDuration()
	markers := []Marker{
		{Time: beaconStart, Kind: BeaconEdge, Emphasis: Heavy},
		{Time: beaconEnd, Kind: BeaconEdge, Emphasis: Heavy},
	}

	step := timing.SymbolWidth()
	if !(step > 0) {
		// The cursor would never advance.
		return markers
	}

	end := beaconEnd + timing.PayloadDuration()
	for t := beaconEnd; t < end; {
		next := t + step
		if next == t {
			// step is below the float resolution at t
			break
		}
		markers = append(markers, Marker{Time: t + timing.Slot, Kind: SlotMidpoint, Emphasis: Light})
		t = next
		markers = append(markers, Marker{Time: t, Kind: SlotBoundary, Emphasis: Heavy})
	}

	return markers
}

// Format writes one "time<TAB>kind<TAB>emphasis" line per marker.
func Format(w io.Writer, markers []Marker) error {
	for _, m := range markers {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", strconv.FormatFloat(m.Time, 'f', -1, 64), m.Kind, m.Emphasis); err != nil {
			return fmt.Errorf("failed to write marker: %w", err)
		}
	}
	return nil
}
