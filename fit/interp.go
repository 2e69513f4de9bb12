// Public domain.

package fit

import "sort"

// bilinear interpolates the gridded power pattern P, indexed
// P[iv][iu] over the ascending axes u and v, at the point (uq, vq).
// Queries outside the grid clamp to the boundary cell.
func bilinear(u, v []float64, P [][]float64, uq, vq float64) float64 {
	iu, fu := cell(u, uq)
	iv, fv := cell(v, vq)
	p00 := P[iv][iu]
	p01 := P[iv][iu+1]
	p10 := P[iv+1][iu]
	p11 := P[iv+1][iu+1]
	return p00*(1-fu)*(1-fv) + p01*fu*(1-fv) + p10*(1-fu)*fv + p11*fu*fv
}

// cell locates q on the ascending axis a, returning the lower cell
// index and the fractional position within the cell, both clamped to
// the grid.
func cell(a []float64, q float64) (int, float64) {
	i := sort.SearchFloat64s(a, q) - 1
	if i < 0 {
		i = 0
	} else if i > len(a)-2 {
		i = len(a) - 2
	}
	f := (q - a[i]) / (a[i+1] - a[i])
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return i, f
}
