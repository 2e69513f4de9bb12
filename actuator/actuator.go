// Public domain.

// Package actuator models the Effelsberg active surface.
//
// The sub-reflector carries 96 actuators on four rings whose
// perpendicular displacements are driven by a lookup table indexed by
// elevation.  The package converts between lookup displacements and
// primary-dish phase errors, fits Zernike coefficients to the phase at
// the actuator positions, and reduces a set of elevations to a three
// coefficient gravitational deformation model per polynomial.
package actuator

import (
	"fmt"
	"math"
	"sort"

	"github.com/radioholo/oof/aperture"
	"github.com/radioholo/oof/zernike"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/mat"
)

// Actuator layout on the sub-reflector.
const (
	Rings        = 4
	Azimuths     = 24
	NumActuators = Rings * Azimuths
)

// ring radii, m, from the technical drawings
var ringRadius = [Rings]float64{3.250, 2.600, 1.880, 1.210}

// Raster sampling pulls the edge ring in slightly.  The outer
// actuators sit on the rim itself, where interpolation cells straddle
// the zero outside the dish.
var sampleRadius = [Rings]float64{3.245, 2.600, 1.880, 1.210}

// Grid holds one value per actuator, indexed [ring][azimuth].
type Grid [Rings][Azimuths]float64

// Theta returns the azimuth angle of column a.  The actuators sit at
// 7.5 deg and every 15 deg after.
func Theta(a int) unit.Angle {
	return unit.AngleFromDeg(7.5 + 15*float64(a))
}

// Surface describes the geometry and sign conventions tying actuator
// displacements to primary-dish phase maps.
type Surface struct {
	Wavel float64 // m
	Nrot  int     // quarter turns between the lookup and phase frames
	Sign  int     // phase sign as seen from the active surface
	Order int     // Zernike order used by the fits
	Sr    float64 // sub-reflector radius, m
	Pr    float64 // primary reflector radius, m
}

// Effelsberg returns the standard Effelsberg surface conventions for
// an observing wavelength.
func Effelsberg(wavel float64) Surface {
	return Surface{Wavel: wavel, Nrot: 3, Sign: -1, Order: 5, Sr: 3.25, Pr: 50}
}

// Rho returns the radial position of ring r on the unit disk.
func (s Surface) Rho(r int) float64 { return ringRadius[r] / s.Sr }

// rot maps azimuth index a through n quarter turns.  Six columns make
// a quarter turn.
func rot(a, n int) int {
	return ((a+6*n)%Azimuths + Azimuths) % Azimuths
}

// Transform converts a displacement grid (µm, lookup frame) to the
// phase values it imposes at the actuator positions in the phase-map
// frame (rad).
func (s Surface) Transform(d Grid) Grid {
	factor := float64(s.Sign) * 4 * math.Pi / s.Wavel * 1e-6
	var p Grid
	for r := 0; r < Rings; r++ {
		for a := 0; a < Azimuths; a++ {
			p[r][a] = factor * d[r][rot(a, s.Nrot)]
		}
	}
	return p
}

// ITransform is the exact inverse of Transform.
func (s Surface) ITransform(p Grid) Grid {
	factor := s.Wavel / (float64(s.Sign) * 4 * math.Pi) * 1e6
	var d Grid
	for r := 0; r < Rings; r++ {
		for a := 0; a < Azimuths; a++ {
			d[r][a] = factor * p[r][rot(a, -s.Nrot)]
		}
	}
	return d
}

// Phases converts a table's displacements to phase grids.
func (s Surface) Phases(lk *Lookup) []Grid {
	ps := make([]Grid, len(lk.Disp))
	for i, d := range lk.Disp {
		ps[i] = s.Transform(d)
	}
	return ps
}

// SampleMap samples a primary-dish phase map at the actuator
// positions.  Positions scale radially from the sub-reflector onto
// the primary.
func (s Surface) SampleMap(pm aperture.PhaseMap) Grid {
	var g Grid
	for r := 0; r < Rings; r++ {
		rad := sampleRadius[r] / s.Sr * pm.Pr
		for a := 0; a < Azimuths; a++ {
			th := Theta(a).Rad()
			g[r][a] = sample(pm, rad*math.Cos(th), rad*math.Sin(th))
		}
	}
	return g
}

// sample interpolates the map bilinearly at (x, y).
func sample(pm aperture.PhaseMap, x, y float64) float64 {
	ix, fx := axisCell(pm.X, x)
	iy, fy := axisCell(pm.X, y)
	return (1-fy)*((1-fx)*pm.Phi[iy][ix]+fx*pm.Phi[iy][ix+1]) +
		fy*((1-fx)*pm.Phi[iy+1][ix]+fx*pm.Phi[iy+1][ix+1])
}

func axisCell(ax []float64, v float64) (int, float64) {
	i := sort.SearchFloat64s(ax, v) - 1
	if i < 0 {
		i = 0
	} else if i > len(ax)-2 {
		i = len(ax) - 2
	}
	f := (v - ax[i]) / (ax[i+1] - ax[i])
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return i, f
}

// FitZernike recovers a Zernike coefficient vector from the phase at
// the actuator positions, one vector per grid.  The phase is linear in
// the coefficients, so each fit is a linear least-squares solve.
func (s Surface) FitZernike(phases []Grid) ([][]float64, error) {
	ln := zernike.Indices(s.Order)
	A := mat.NewDense(NumActuators, len(ln), nil)
	for r := 0; r < Rings; r++ {
		rho := s.Rho(r)
		for a := 0; a < Azimuths; a++ {
			th := Theta(a).Rad()
			for j, i := range ln {
				A.Set(r*Azimuths+a, j, 2*math.Pi*zernike.U(i.L, i.N, th, rho))
			}
		}
	}
	var qr mat.QR
	qr.Factorize(A)

	Ks := make([][]float64, len(phases))
	for i, p := range phases {
		b := mat.NewVecDense(NumActuators, nil)
		for r := 0; r < Rings; r++ {
			for a := 0; a < Azimuths; a++ {
				b.SetVec(r*Azimuths+a, p[r][a])
			}
		}
		var x mat.VecDense
		if err := qr.SolveVecTo(&x, false, b); err != nil {
			return nil, fmt.Errorf("grid %d: %w", i, err)
		}
		Ks[i] = append([]float64(nil), x.RawVector().Data...)
	}
	return Ks, nil
}

// GravModel holds the gravitational deformation coefficients of one
// Zernike coefficient: K(α) = G0·sin α + G1·cos α + G2.
type GravModel [3]float64

// K evaluates the model at elevation alpha.
func (g GravModel) K(alpha unit.Angle) float64 {
	return g[0]*alpha.Sin() + g[1]*alpha.Cos() + g[2]
}

// FitGrav fits the gravitational deformation model to per-elevation
// coefficient vectors.  Ks[i][j] is Zernike coefficient j at alpha[i].
func FitGrav(Ks [][]float64, alpha []unit.Angle) ([]GravModel, error) {
	if len(Ks) != len(alpha) {
		return nil, fmt.Errorf("%d coefficient sets for %d elevations", len(Ks), len(alpha))
	}
	if len(alpha) < 3 {
		return nil, fmt.Errorf("%d elevations: want at least 3", len(alpha))
	}
	A := mat.NewDense(len(alpha), 3, nil)
	for i, al := range alpha {
		A.Set(i, 0, al.Sin())
		A.Set(i, 1, al.Cos())
		A.Set(i, 2, 1)
	}
	var qr mat.QR
	qr.Factorize(A)

	G := make([]GravModel, len(Ks[0]))
	for j := range G {
		b := mat.NewVecDense(len(alpha), nil)
		for i := range alpha {
			if j >= len(Ks[i]) {
				return nil, fmt.Errorf("coefficient set %d too short", i)
			}
			b.SetVec(i, Ks[i][j])
		}
		var x mat.VecDense
		if err := qr.SolveVecTo(&x, false, b); err != nil {
			return nil, fmt.Errorf("coefficient %d: %w", j, err)
		}
		copy(G[j][:], x.RawVector().Data)
	}
	return G, nil
}

// FitAll fits Zernike coefficients to phase grids observed at several
// elevations and reduces them to the gravitational model.
func (s Surface) FitAll(phases []Grid, alpha []unit.Angle) ([]GravModel, [][]float64, error) {
	Ks, err := s.FitZernike(phases)
	if err != nil {
		return nil, nil, err
	}
	G, err := FitGrav(Ks, alpha)
	if err != nil {
		return nil, nil, err
	}
	return G, Ks, nil
}

// PhaseAt renders the primary-dish phase map the gravitational model
// predicts at elevation alpha.  Piston and tilt stay in the map.
func (s Surface) PhaseAt(G []GravModel, alpha unit.Angle, resolution int) aperture.PhaseMap {
	K := make([]float64, len(G))
	for j, g := range G {
		K[j] = g.K(alpha)
	}
	return aperture.Phase(K, s.Pr, true, true, resolution)
}

// MakeLookup projects the gravitational model back onto the standard
// lookup elevations as actuator displacements.
func (s Surface) MakeLookup(G []GravModel) *Lookup {
	ln := zernike.Indices(s.Order)
	if len(G) < len(ln) {
		ln = ln[:len(G)]
	}
	lk := NewLookup()
	for i, al := range lk.Alpha {
		K := make([]float64, len(ln))
		for j := range ln {
			K[j] = G[j].K(al)
		}
		var p Grid
		for r := 0; r < Rings; r++ {
			rho := s.Rho(r)
			for a := 0; a < Azimuths; a++ {
				th := Theta(a).Rad()
				var w float64
				for j, k := range K {
					if k != 0 {
						w += k * zernike.U(ln[j].L, ln[j].N, th, rho)
					}
				}
				p[r][a] = 2 * math.Pi * w
			}
		}
		lk.Disp[i] = s.ITransform(p)
	}
	return lk
}
