// Public domain.

// Package telgeo models telescope aperture geometry: which parts of
// the aperture plane are blocked by the telescope structure, and the
// optical path difference a radial defocus adds across the dish.
package telgeo

import (
	"math"

	"github.com/soniakeys/unit"
)

// Blockage is the transmission of the aperture plane at (x, y) in
// meters, 1 where the dish is illuminated and 0 where the structure
// blocks it.
type Blockage func(x, y float64) float64

// Delta is the optical path difference in meters at aperture point
// (x, y) for a defocus of dz meters along the symmetry axis.
type Delta func(x, y, dz float64) float64

// Telescope bundles the geometry the aperture model needs.
type Telescope struct {
	Block  Blockage
	Delta  Delta
	Radius float64 // primary dish radius, m
	Name   string
}

// Effelsberg 100 m geometry, meters.
const (
	effPr = 50.    // primary dish radius
	effSr = 3.25   // subreflector shadow radius
	effL  = 20.    // support leg length on the axes
	effA  = 1.     // support leg half width
	effF1 = 30.    // primary focal length
	effF  = 387.66 // effective total focal length (Gregorian)
)

// Manual returns the blockage of a dish of radius pr with a central
// obscuration of radius sr and two axis-aligned support struts of
// half-width a spanning -L..L.
func Manual(pr, sr, a, L float64) Blockage {
	return func(x, y float64) float64 {
		rsq := x*x + y*y
		if rsq >= pr*pr || rsq <= sr*sr {
			return 0
		}
		if x > -L && x < L && y > -a && y < a {
			return 0
		}
		if y > -L && y < L && x > -a && x < a {
			return 0
		}
		return 1
	}
}

// EffelsbergBlockage returns the Effelsberg aperture blockage for an
// observation at mean elevation alpha.  Inside the strut anchor
// radius sr+L the legs shade a strip of constant half-width; beyond
// it the shadow widens linearly toward the rim, in proportion to
// cos(alpha), reaching twice the strut half-width at the rim at the
// horizon and vanishing to the strut width at zenith.
func EffelsbergBlockage(alpha unit.Angle) Blockage {
	const anchor = effSr + effL
	spread := alpha.Cos() * effA / (effPr - anchor)
	return func(x, y float64) float64 {
		rsq := x*x + y*y
		if rsq >= effPr*effPr || rsq <= effSr*effSr {
			return 0
		}
		ax, ay := math.Abs(x), math.Abs(y)
		if (ax < anchor && ay < effA) || (ay < anchor && ax < effA) {
			return 0
		}
		if r := math.Sqrt(rsq); r > anchor {
			w := effA + (r-anchor)*spread
			if ay < w || ax < w {
				return 0
			}
		}
		return 1
	}
}

// ManualDelta returns the optical path difference of a two-mirror
// system with primary focal length f1 and effective total focal
// length F, both in meters.
func ManualDelta(f1, F float64) Delta {
	return func(x, y, dz float64) float64 {
		rsq := x*x + y*y
		asq := rsq / (4 * f1 * f1)
		bsq := rsq / (4 * F * F)
		return dz * ((1-asq)/(1+asq) + (1-bsq)/(1+bsq))
	}
}

// EffelsbergDelta is the optical path difference of the Effelsberg
// Gregorian optics.
var EffelsbergDelta = ManualDelta(effF1, effF)

// Effelsberg returns the Effelsberg 100 m telescope geometry for an
// observation at mean elevation alpha.
func Effelsberg(alpha unit.Angle) Telescope {
	return Telescope{
		Block:  EffelsbergBlockage(alpha),
		Delta:  EffelsbergDelta,
		Radius: effPr,
		Name:   "effelsberg",
	}
}
