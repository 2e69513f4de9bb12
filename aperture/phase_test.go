// Public domain.

package aperture_test

import (
	"math"
	"testing"

	"github.com/radioholo/oof/aperture"
	"github.com/stretchr/testify/assert"
)

func TestPhase(t *testing.T) {
	const pr = 50.
	const res = 41

	// piston-only map: constant 2π·K(0,0) inside the dish, zero outside
	K := []float64{1, 0, 0, 0, 0, 0}
	pm := aperture.Phase(K, pr, true, true, res)

	assert.Len(t, pm.X, res)
	assert.InDelta(t, -pr, pm.X[0], 1e-12)
	assert.InDelta(t, pr, pm.X[res-1], 1e-12)
	assert.Equal(t, pr, pm.Pr)

	c := res / 2
	assert.InDelta(t, 2*math.Pi, pm.Phi[c][c], 1e-12)
	assert.Equal(t, 0., pm.Phi[0][0], "corner lies outside the dish")

	// removing the piston flattens the map
	flat := aperture.Phase(K, pr, false, true, res)
	for _, row := range flat.Phi {
		for _, v := range row {
			assert.Equal(t, 0., v)
		}
	}
}

func TestPhaseTiltRemoval(t *testing.T) {
	const pr = 50.
	const res = 33
	K := []float64{0.1, 0.2, -0.3, 0.05, 0, 0.02}
	Kref := append([]float64(nil), K...)
	Kref[1], Kref[2] = 0, 0

	got := aperture.Phase(K, pr, true, false, res)
	want := aperture.Phase(Kref, pr, true, true, res)
	for iy := range want.Phi {
		for ix := range want.Phi[iy] {
			assert.InDelta(t, want.Phi[iy][ix], got.Phi[iy][ix], 1e-12)
		}
	}
}

func TestRMSRuze(t *testing.T) {
	const pr = 50.

	// constant phase over the dish, rms is the constant itself
	pm := aperture.Phase([]float64{0.25, 0, 0}, pr, true, true, 101)
	want := 2 * math.Pi * 0.25
	assert.InDelta(t, want, pm.RMS(), 1e-12)
	assert.InDelta(t, math.Exp(-want*want), pm.Ruze(), 1e-12)

	// tilt averages out but contributes to the rms
	tilted := aperture.Phase([]float64{0, 0.1, 0, 0, 0, 0}, pr, true, true, 101)
	assert.Greater(t, tilted.RMS(), 0.)
	assert.Less(t, tilted.Ruze(), 1.)
}
