// Public domain.

package aperture_test

import (
	"math"
	"testing"

	"github.com/radioholo/oof/aperture"
	"github.com/radioholo/oof/telgeo"
	"github.com/radioholo/oof/zernike"
	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPattern(res int) *aperture.Pattern {
	tel := telgeo.Effelsberg(unit.AngleFromDeg(45))
	wavel := 0.009
	dz := []float64{-2.5 * wavel, 0, 2.5 * wavel}
	return aperture.NewPattern(tel, aperture.Parabolic, wavel, dz, res, 5)
}

func TestPatternAxes(t *testing.T) {
	const res = 64
	p := newTestPattern(res)

	u := p.U()
	require.Len(t, u, res)
	assert.Equal(t, 0., u[res/2], "zero frequency at the center")
	for i := 1; i < res; i++ {
		assert.Greater(t, u[i], u[i-1])
	}
	assert.Equal(t, u, p.V())

	// beam axis step is λ/(n·dx) with dx = 2·box/(n−1)
	dx := 2 * 50. * 5 / float64(res-1)
	assert.InDelta(t, 0.009/(float64(res)*dx), u[res/2+1]-u[res/2], 1e-15)

	assert.Equal(t, []float64{-2.5 * 0.009, 0, 2.5 * 0.009}, p.Dz())
	assert.Equal(t, 0.009, p.Wavel())
}

func TestPatternPower(t *testing.T) {
	const res = 64
	p := newTestPattern(res)
	K := make([]float64, zernike.Count(2))
	I := []float64{1, -14, 1.8, 0, 0}

	pw := p.Power(1, K, I) // in focus
	require.Len(t, pw, res)

	max := 0.
	for _, row := range pw {
		require.Len(t, row, res)
		for _, v := range row {
			require.False(t, math.IsNaN(v))
			require.False(t, math.IsInf(v, 0))
			assert.GreaterOrEqual(t, v, 0.)
			if v > max {
				max = v
			}
		}
	}
	assert.InDelta(t, 1, max, 1e-12, "peak normalized")

	// a flawless in-focus aperture beams peak on axis
	assert.InDelta(t, 1, pw[res/2][res/2], 1e-12)

	// defocus redistributes power
	oof := p.Power(2, K, I)
	var diff float64
	for iy := range pw {
		for ix := range pw[iy] {
			if d := math.Abs(pw[iy][ix] - oof[iy][ix]); d > diff {
				diff = d
			}
		}
	}
	assert.Greater(t, diff, 1e-3)
}

func TestPatternAberration(t *testing.T) {
	const res = 64
	p := newTestPattern(res)
	I := []float64{1, -20, 2, 0, 0}

	K := make([]float64, zernike.Count(3))
	ideal := p.Power(1, K, I)
	K[3] = 0.08 // an astigmatism term
	aberr := p.Power(1, K, I)

	var diff float64
	for iy := range ideal {
		for ix := range ideal[iy] {
			if d := math.Abs(ideal[iy][ix] - aberr[iy][ix]); d > diff {
				diff = d
			}
		}
	}
	assert.Greater(t, diff, 1e-4)
}
