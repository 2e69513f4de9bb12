// Public domain.

// Package zernike computes Zernike circle polynomials.
//
// The polynomials form an orthogonal basis on the unit disk and are
// the standard expansion for wavefront aberrations over circular
// apertures.  They are indexed here by radial order n and angular
// order l, with |l| <= n and n-|l| even.  A full expansion up to
// radial order n has (n+1)(n+2)/2 terms, enumerated by Indices in the
// ladder order used throughout this module: piston first, then the
// tilt pair, and so on.
package zernike

import (
	"fmt"
	"math"
)

// LN is an (angular, radial) index pair identifying one polynomial.
type LN struct {
	L, N int
}

// Count returns the number of polynomials in a full expansion up to
// radial order n, (n+1)(n+2)/2.
func Count(n int) int {
	if n < 0 {
		panic(fmt.Sprintf("zernike: negative radial order %d", n))
	}
	return (n + 1) * (n + 2) / 2
}

// Order returns the radial order spanned by a coefficient vector of
// length k.  It is the inverse of Count and returns an error when k
// does not complete a radial order.
func Order(k int) (int, error) {
	if k > 0 {
		n := int((math.Sqrt(float64(1+8*k)) - 3) / 2)
		if Count(n) == k {
			return n, nil
		}
	}
	return 0, fmt.Errorf("zernike: %d coefficients do not complete a radial order", k)
}

// Indices returns the (l, n) ladder for a full expansion up to radial
// order n: for each i = 0..n, l runs -i..i in steps of 2.  Indices(n)[0]
// is piston and Indices(n)[1], Indices(n)[2] are the tilt pair.
func Indices(n int) []LN {
	ln := make([]LN, 0, Count(n))
	for i := 0; i <= n; i++ {
		for j := -i; j <= i; j += 2 {
			ln = append(ln, LN{j, i})
		}
	}
	return ln
}

// R returns the radial polynomial R_n^m at radius rho.  It panics
// unless 0 <= m <= n with n-m even, as those index no polynomial.
func R(m, n int, rho float64) float64 {
	if m < 0 || m > n || (n-m)%2 != 0 {
		panic(fmt.Sprintf("zernike: invalid radial index m=%d n=%d", m, n))
	}
	a := (n + m) / 2
	b := (n - m) / 2
	var r float64
	sign := 1.
	for s := 0; s <= b; s++ {
		r += sign * factorial(n-s) /
			(factorial(s) * factorial(a-s) * factorial(b-s)) *
			math.Pow(rho, float64(n-2*s))
		sign = -sign
	}
	return r
}

// U returns the circle polynomial U_n^l at the polar point
// (theta, rho).  The angular part is sin(|l| theta) for negative l
// and cos(|l| theta) otherwise.
func U(l, n int, theta, rho float64) float64 {
	m := l
	if m < 0 {
		m = -m
	}
	r := R(m, n, rho)
	if l < 0 {
		return r * math.Sin(float64(m)*theta)
	}
	return r * math.Cos(float64(m)*theta)
}

func factorial(n int) float64 {
	f := 1.
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
