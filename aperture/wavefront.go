// Public domain.

package aperture

import (
	"math"

	"github.com/radioholo/oof/zernike"
)

// wterm is one ladder entry with its radial polynomial expanded:
// U = ρ^m·P(ρ²)·{sin,cos}(m·θ), P in Horner order.
type wterm struct {
	l    int
	m    int // |l|
	coef []float64
}

// Wavefront evaluates a wavefront (aberration) distribution
// W(θ, ρ) = Σ K_j·U_j over the Zernike circle polynomial ladder.
// The radial polynomials are expanded once at construction so that
// evaluation over a full aperture grid stays cheap.
type Wavefront struct {
	terms []wterm
}

// NewWavefront returns an evaluator for a coefficient vector of
// length nK.  It panics if nK is not a complete ladder length
// (n+1)(n+2)/2.
func NewWavefront(nK int) Wavefront {
	n, err := zernike.Order(nK)
	if err != nil {
		panic(err)
	}
	terms := make([]wterm, 0, nK)
	for _, ln := range zernike.Indices(n) {
		m := ln.L
		if m < 0 {
			m = -m
		}
		a, b := (ln.N+m)/2, (ln.N-m)/2
		coef := make([]float64, b+1)
		sign := 1.
		for s := 0; s <= b; s++ {
			coef[s] = sign * factorial(ln.N-s) /
				(factorial(s) * factorial(a-s) * factorial(b-s))
			sign = -sign
		}
		terms = append(terms, wterm{l: ln.L, m: m, coef: coef})
	}
	return Wavefront{terms}
}

// At evaluates Σ K_j·U_j(θ, ρ).  K must have the length given to
// NewWavefront.  Zero coefficients are skipped.
func (w Wavefront) At(K []float64, theta, rho float64) float64 {
	rr := rho * rho
	var sum float64
	for j, t := range w.terms {
		k := K[j]
		if k == 0 {
			continue
		}
		p := 0.
		for _, c := range t.coef {
			p = p*rr + c
		}
		for i := 0; i < t.m; i++ {
			p *= rho
		}
		a := float64(t.m) * theta
		if t.l < 0 {
			sum += k * p * math.Sin(a)
		} else {
			sum += k * p * math.Cos(a)
		}
	}
	return sum
}

func factorial(n int) float64 {
	f := 1.
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
