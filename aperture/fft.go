// Public domain.

package aperture

import "gonum.org/v1/gonum/dsp/fourier"

// fftfreq returns the DFT sample frequencies for n samples at spacing
// d: 0, 1, …, ⌈n/2⌉−1 then the negative half, all over n·d.
func fftfreq(n int, d float64) []float64 {
	f := make([]float64, n)
	s := 1 / (float64(n) * d)
	half := (n - 1) / 2
	for i := 0; i <= half; i++ {
		f[i] = float64(i) * s
	}
	for i := half + 1; i < n; i++ {
		f[i] = float64(i-n) * s
	}
	return f
}

// fftshift reorders a spectrum axis so the zero frequency sits at the
// center, index n/2.
func fftshift(a []float64) []float64 {
	n := len(a)
	out := make([]float64, n)
	h := n / 2
	for i, v := range a {
		out[(i+h)%n] = v
	}
	return out
}

// fft2 transforms an n×n row-major grid in place, rows then columns.
func fft2(a []complex128, n int) {
	fft := fourier.NewCmplxFFT(n)
	for i := 0; i < n; i++ {
		row := a[i*n : (i+1)*n]
		fft.Coefficients(row, row)
	}
	col := make([]complex128, n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			col[i] = a[i*n+j]
		}
		fft.Coefficients(col, col)
		for i := 0; i < n; i++ {
			a[i*n+j] = col[i]
		}
	}
}
