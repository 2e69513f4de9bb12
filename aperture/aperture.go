// Public domain.

// Package aperture implements the aperture distribution forward
// model.  The model combines a telescope blockage, an illumination
// taper, a Zernike circle polynomial wavefront, and the optical path
// difference of a defocused receiver into a complex aperture
// distribution whose Fourier transform is the far-field beam.
package aperture

import (
	"math"

	"github.com/radioholo/oof/telgeo"
	"gonum.org/v1/gonum/floats"
)

// Grid defaults.
const (
	DefaultResolution = 1 << 8 // FFT grid size
	DefaultBoxFactor  = 5.     // aperture box half-size in units of pr
)

// Pattern computes far-field power patterns for a fixed telescope
// geometry, illumination model, wavelength, defocus list, and FFT
// grid.  Everything that does not depend on the fit parameters is
// evaluated once at construction: the blockage, the polar coordinates
// of each grid cell, and one 2π·δ/λ plane per defocus.
//
// Power may be called concurrently.
type Pattern struct {
	tel   telgeo.Telescope
	illum Illumination
	wavel float64
	dz    []float64
	n     int

	x     []float64 // aperture axis, m
	u     []float64 // beam axis, rad
	block []float64
	theta []float64
	rho   []float64
	opd   [][]float64 // 2π·δ/λ per defocus
}

// NewPattern builds the forward-model engine.  The aperture plane is
// an n×n grid spanning ±pr·boxFactor; dz lists the defocus of each
// beam map in meters.
func NewPattern(tel telgeo.Telescope, illum Illumination, wavel float64,
	dz []float64, resolution int, boxFactor float64) *Pattern {

	n := resolution
	box := tel.Radius * boxFactor
	x := make([]float64, n)
	floats.Span(x, -box, box)

	p := &Pattern{
		tel:   tel,
		illum: illum,
		wavel: wavel,
		dz:    append([]float64(nil), dz...),
		n:     n,
		x:     x,
		u:     fftshift(fftfreq(n, x[1]-x[0])),
		block: make([]float64, n*n),
		theta: make([]float64, n*n),
		rho:   make([]float64, n*n),
		opd:   make([][]float64, len(dz)),
	}
	floats.Scale(wavel, p.u) // 1/m wave-vector to radians

	for iy := 0; iy < n; iy++ {
		y := x[iy]
		for ix := 0; ix < n; ix++ {
			i := iy*n + ix
			p.block[i] = tel.Block(x[ix], y)
			p.theta[i] = math.Atan2(y, x[ix])
			p.rho[i] = math.Hypot(x[ix], y) / tel.Radius
		}
	}
	for m, d := range dz {
		plane := make([]float64, n*n)
		for iy := 0; iy < n; iy++ {
			y := x[iy]
			for ix := 0; ix < n; ix++ {
				i := iy*n + ix
				if p.block[i] != 0 {
					plane[i] = 2 * math.Pi * tel.Delta(x[ix], y, d) / wavel
				}
			}
		}
		p.opd[m] = plane
	}
	return p
}

// U returns the beam u axis in radians, ascending, zero at index n/2.
func (p *Pattern) U() []float64 { return p.u }

// V returns the beam v axis.  The grid is square so U and V coincide.
func (p *Pattern) V() []float64 { return p.u }

// Dz returns the defocus list the engine was built for.
func (p *Pattern) Dz() []float64 { return p.dz }

// Wavel returns the observation wavelength in meters.
func (p *Pattern) Wavel() float64 { return p.wavel }

// Power evaluates the peak-normalized power pattern |FFT2(E)|² of the
// m'th defocus for Zernike coefficients K and illumination
// coefficients I.  E = B·Ea·exp(2πi·W + i·opd).  The result is
// fftshifted: rows follow V, columns follow U.
func (p *Pattern) Power(m int, K, I []float64) [][]float64 {
	w := NewWavefront(len(K))
	n := p.n
	opd := p.opd[m]
	E := make([]complex128, n*n)
	for iy := 0; iy < n; iy++ {
		y := p.x[iy]
		for ix := 0; ix < n; ix++ {
			i := iy*n + ix
			if p.block[i] == 0 {
				continue
			}
			ea := p.illum.Fn(p.x[ix], y, I, p.tel.Radius)
			s, c := math.Sincos(2*math.Pi*w.At(K, p.theta[i], p.rho[i]) + opd[i])
			E[i] = complex(ea*c, ea*s)
		}
	}
	fft2(E, n)

	pw := make([][]float64, n)
	for i := range pw {
		pw[i] = make([]float64, n)
	}
	h := n / 2
	max := 0.
	for iy := 0; iy < n; iy++ {
		row := pw[(iy+h)%n]
		for ix := 0; ix < n; ix++ {
			f := E[iy*n+ix]
			a := real(f)*real(f) + imag(f)*imag(f)
			row[(ix+h)%n] = a
			if a > max {
				max = a
			}
		}
	}
	if max > 0 {
		for _, row := range pw {
			floats.Scale(1/max, row)
		}
	}
	return pw
}
