// Public domain.

package beam

import (
	"math/rand/v2"

	"github.com/radioholo/oof/aperture"
	"github.com/radioholo/oof/telgeo"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sim generates an observation from the forward model.
type Sim struct {
	Tel        telgeo.Telescope
	Illum      aperture.Illumination
	Wavel      float64   // m
	Dz         []float64 // m
	K          []float64 // Zernike coefficients
	I          []float64 // illumination coefficients
	Noise      float64   // Gaussian σ, normalized power units
	Resolution int       // aperture.DefaultResolution when 0
	BoxFactor  float64   // aperture.DefaultBoxFactor when 0
	MeanEl     unit.Angle
	Object     string
	Date       string
	Src        rand.Source // noise source, time-seeded when nil
}

// Simulate evaluates the forward model on the full FFT grid and
// returns an observation ready for Write.  Each map keeps the
// noise-free model in Power and the noisy copy in Beam.
func (s Sim) Simulate() *Data {
	res := s.Resolution
	if res == 0 {
		res = aperture.DefaultResolution
	}
	box := s.BoxFactor
	if box == 0 {
		box = aperture.DefaultBoxFactor
	}
	p := aperture.NewPattern(s.Tel, s.Illum, s.Wavel, s.Dz, res, box)

	// beam coordinates, u varying fastest
	u, v := p.U(), p.V()
	ug := make([]float64, res*res)
	vg := make([]float64, res*res)
	for iy := 0; iy < res; iy++ {
		for ix := 0; ix < res; ix++ {
			ug[iy*res+ix] = u[ix]
			vg[iy*res+ix] = v[iy]
		}
	}

	var noise distuv.Normal
	if s.Noise > 0 {
		src := s.Src
		if src == nil {
			src = rand.NewPCG(rand.Uint64(), rand.Uint64())
		}
		noise = distuv.Normal{Mu: 0, Sigma: s.Noise, Src: src}
	}

	d := &Data{
		Object: s.Object,
		Date:   s.Date,
		Freq:   lightSpeed / s.Wavel,
		Wavel:  s.Wavel,
		MeanEl: s.MeanEl,
		Noise:  s.Noise,
	}
	for m := range s.Dz {
		pw := p.Power(m, s.K, s.I)
		power := make([]float64, 0, res*res)
		for _, row := range pw {
			power = append(power, row...)
		}
		bm := Map{Dz: s.Dz[m], U: ug, V: vg, Power: power}
		bm.Beam = append([]float64(nil), power...)
		if s.Noise > 0 {
			for i := range bm.Beam {
				bm.Beam[i] += noise.Rand()
			}
		}
		d.Maps = append(d.Maps, bm)
	}
	return d
}
