// Public domain.

package aperture

import (
	"fmt"
	"math"
)

// NumIllum is the length of the illumination coefficient vector
// [i_amp, c_dB, q, x_0, y_0].
const NumIllum = 5

// IllumFunc evaluates an aperture illumination at (x, y) meters for
// coefficients I and primary radius pr.
type IllumFunc func(x, y float64, I []float64, pr float64) float64

// Illumination pairs an IllumFunc with the name recorded in run
// metadata.
type Illumination struct {
	Name string
	Fn   IllumFunc
}

// Parabolic is the parabolic taper on a pedestal,
//
//	Ea = i_amp·(c + (1−c)·(1 − r'²/pr²)^q),  c = 10^(c_dB/20),
//
// with r' measured from the illumination offset (x_0, y_0).
var Parabolic = Illumination{"parabolic", parabolic}

// Gauss is the Gaussian taper
//
//	Ea = i_amp·exp(−r'²/(2(σ·pr)²)),  σ = 10^(σ_dB/20),
//
// with σ_dB in the c_dB slot of I and q unused.
var Gauss = Illumination{"gauss", gauss}

func parabolic(x, y float64, I []float64, pr float64) float64 {
	c := math.Pow(10, I[1]/20)
	dx, dy := x-I[3], y-I[4]
	base := 1 - (dx*dx+dy*dy)/(pr*pr)
	if base < 0 {
		// a fractional q on a negative base is NaN
		base = 0
	}
	return I[0] * (c + (1-c)*math.Pow(base, I[2]))
}

func gauss(x, y float64, I []float64, pr float64) float64 {
	sigma := math.Pow(10, I[1]/20)
	dx, dy := x-I[3], y-I[4]
	return I[0] * math.Exp(-(dx*dx+dy*dy)/(2*sigma*sigma*pr*pr))
}

// ByName returns the illumination for a name as written in run
// metadata or on a command line.
func ByName(name string) (Illumination, error) {
	switch name {
	case "parabolic", "pedestal":
		return Parabolic, nil
	case "gauss", "gaussian":
		return Gauss, nil
	}
	return Illumination{}, fmt.Errorf("unknown illumination %q", name)
}
