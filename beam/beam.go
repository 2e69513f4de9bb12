// Public domain.

// Package beam reads, writes, and simulates out-of-focus beam map
// observations stored as FITS files.  An observation is a set of
// beam maps of the same source taken at different radial defocus,
// canonically three: minus, zero, and plus offset.
package beam

import "github.com/soniakeys/unit"

// lightSpeed is the speed of light in m/s.
const lightSpeed = 299792458.

// Map is a single beam map: power samples on scattered beam-plane
// coordinates, taken at one radial defocus.
type Map struct {
	Dz    float64   // radial defocus, m
	U, V  []float64 // beam coordinates, rad
	Beam  []float64 // observed power, arbitrary units
	Power []float64 // noise-free model power, simulated data only
}

// Data is a complete observation: beam maps in d_z order plus the
// observation metadata.
type Data struct {
	Name   string // source file name without extension
	Object string
	Date   string
	Freq   float64 // Hz
	Wavel  float64 // m
	MeanEl unit.Angle
	Noise  float64 // simulated noise level, normalized power units
	Maps   []Map
}

// Dz returns the defocus of each map, in map order.
func (d *Data) Dz() []float64 {
	dz := make([]float64, len(d.Maps))
	for i, m := range d.Maps {
		dz[i] = m.Dz
	}
	return dz
}
