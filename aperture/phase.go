// Public domain.

package aperture

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// PhaseMap is an aperture phase distribution on a regular square grid
// spanning the primary dish.
type PhaseMap struct {
	X   []float64   // axis, m
	Phi [][]float64 // phase, rad, Phi[iy][ix]
	Pr  float64     // primary radius, m
}

// Phase evaluates the aperture phase distribution φ = 2π·W(θ, ρ) for
// Zernike coefficients K on a resolution×resolution grid spanning
// ±pr, zero outside the dish.  With piston false the K(0,0) term is
// zeroed before evaluation; with tilt false the K(-1,1) and K(1,1)
// terms are.
func Phase(K []float64, pr float64, piston, tilt bool, resolution int) PhaseMap {
	w := NewWavefront(len(K))
	k := K
	if !piston || !tilt {
		k = append([]float64(nil), K...)
		if !piston {
			k[0] = 0
		}
		if !tilt && len(k) > 2 {
			k[1], k[2] = 0, 0
		}
	}
	x := make([]float64, resolution)
	floats.Span(x, -pr, pr)
	phi := make([][]float64, resolution)
	for iy := range phi {
		row := make([]float64, resolution)
		y := x[iy]
		for ix, xv := range x {
			if rho := math.Hypot(xv, y) / pr; rho <= 1 {
				row[ix] = 2 * math.Pi * w.At(k, math.Atan2(y, xv), rho)
			}
		}
		phi[iy] = row
	}
	return PhaseMap{X: x, Phi: phi, Pr: pr}
}

// RMS is the root mean square of the phase over the dish, in radians.
// Grid cells outside the dish do not contribute.
func (p PhaseMap) RMS() float64 {
	prsq := p.Pr * p.Pr
	var ss float64
	var n int
	for iy, row := range p.Phi {
		y := p.X[iy]
		for ix, v := range row {
			if x := p.X[ix]; x*x+y*y <= prsq {
				ss += v * v
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(ss / float64(n))
}

// Ruze is the random-surface-error efficiency exp(−rms²).
func (p PhaseMap) Ruze() float64 {
	rms := p.RMS()
	return math.Exp(-rms * rms)
}
