// Public domain.

package oofplot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/radioholo/oof/aperture"
	"github.com/radioholo/oof/beam"
	"github.com/radioholo/oof/fit"
	"github.com/radioholo/oof/internal/oofplot"
	"github.com/radioholo/oof/telgeo"
	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	const wavel = 0.009
	dz := 2.2 * wavel
	data := beam.Sim{
		Tel:        telgeo.Effelsberg(unit.AngleFromDeg(45)),
		Illum:      aperture.Parabolic,
		Wavel:      wavel,
		Dz:         []float64{-dz, 0, dz},
		K:          []float64{0, 0.02, -0.015},
		I:          []float64{1, -16, 1.6, 0, 0},
		Resolution: 32,
		MeanEl:     unit.AngleFromDeg(45),
		Object:     "3C84",
		Date:       "2025-11-05T00:00:00",
	}.Simulate()
	data.Name = "plotme"

	opts := fit.Options{
		OrderMax:   1,
		Tel:        telgeo.Effelsberg(data.MeanEl),
		Config:     fit.DefaultConfig(),
		Resolution: 32,
		PhaseRes:   32,
		OutDir:     t.TempDir(),
	}
	res, err := fit.ZPoly(data, opts)
	require.NoError(t, err)

	require.NoError(t, oofplot.Render(data, res, opts))
	for _, f := range []string{
		"obsbeam.png", "fitbeam_n1.png", "residual_n1.png", "fitphase_n1.png",
	} {
		st, err := os.Stat(filepath.Join(res.Dir, "plots", f))
		require.NoError(t, err, f)
		assert.Greater(t, st.Size(), int64(0), f)
	}
}
