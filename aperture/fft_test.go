// Public domain.

package aperture

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFFTFreq(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, -1, -0.75, -0.5, -0.25},
		fftfreq(8, 0.5))

	got := fftfreq(5, 1)
	want := []float64{0, 0.2, 0.4, -0.4, -0.2}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-15, "bin %d", i)
	}
}

func TestFFTShift(t *testing.T) {
	assert.Equal(t, []float64{2, 3, 0, 1}, fftshift([]float64{0, 1, 2, 3}))
	assert.Equal(t, []float64{3, 4, 0, 1, 2}, fftshift([]float64{0, 1, 2, 3, 4}))
}

func TestFFT2(t *testing.T) {
	const n = 4

	// a delta at the origin transforms to a flat spectrum
	a := make([]complex128, n*n)
	a[0] = 1
	fft2(a, n)
	for i, v := range a {
		assert.InDelta(t, 1, real(v), 1e-12, "re %d", i)
		assert.InDelta(t, 0, imag(v), 1e-12, "im %d", i)
	}

	// a constant transforms to a single DC term n²·c
	for i := range a {
		a[i] = 2
	}
	fft2(a, n)
	assert.InDelta(t, 2*n*n, real(a[0]), 1e-9)
	for i := 1; i < n*n; i++ {
		assert.InDelta(t, 0, cmplx.Abs(a[i]), 1e-9, "bin %d", i)
	}
}
