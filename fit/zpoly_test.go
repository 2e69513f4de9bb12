// Public domain.

package fit_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/radioholo/oof/aperture"
	"github.com/radioholo/oof/beam"
	"github.com/radioholo/oof/fit"
	"github.com/radioholo/oof/telgeo"
	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// simObs generates a clean observation with a small tilt aberration.
// The truth holds i_amp at 1 and piston at 0, matching what the
// default configuration fixes.
func simObs() *beam.Data {
	const wavel = 0.009
	dz := 2.2 * wavel
	d := beam.Sim{
		Tel:        telgeo.Effelsberg(unit.AngleFromDeg(45)),
		Illum:      aperture.Parabolic,
		Wavel:      wavel,
		Dz:         []float64{-dz, 0, dz},
		K:          []float64{0, 0.02, -0.015},
		I:          []float64{1, -16, 1.6, 0, 0},
		Resolution: 32,
		BoxFactor:  5,
		MeanEl:     unit.AngleFromDeg(45),
		Object:     "3C84",
		Date:       "2025-11-05T00:00:00",
	}.Simulate()
	d.Name = "test000"
	return d
}

func TestZPoly(t *testing.T) {
	data := simObs()
	out := t.TempDir()
	r, err := fit.ZPoly(data, fit.Options{
		OrderMax:    2,
		Tel:         telgeo.Effelsberg(data.MeanEl),
		Illum:       aperture.Parabolic,
		Config:      fit.DefaultConfig(),
		Resolution:  32,
		BoxFactor:   5,
		FitPrevious: true,
		PhaseRes:    64,
		OutDir:      out,
	})
	require.NoError(t, err)
	require.Len(t, r.Orders, 2)
	assert.Equal(t, "test000", r.Name)
	assert.Equal(t, filepath.Join(out, "test000-000"), r.Dir)
	assert.Len(t, r.SNR, 3)

	o1, o2 := r.Orders[0], r.Best()
	assert.Equal(t, 1, o1.Order)
	assert.Equal(t, 2, o2.Order)
	assert.Len(t, o1.Params, 8)
	assert.Len(t, o2.Params, 11)
	assert.Equal(t, []int{1, 2, 3, 4, 6, 7}, o1.Free)
	assert.Len(t, o2.Free, 9)
	assert.Len(t, o2.Res, 3*32*32)

	// held parameters stay at their fixed values
	assert.Equal(t, 1., o2.Params[0])
	assert.Equal(t, 0., o2.Params[5])
	assert.Equal(t, 1., o2.Init[0])

	// the clean data lies in the model family, so the fit gets close
	mse := floats.Dot(o2.Res, o2.Res) / float64(len(o2.Res))
	assert.Less(t, mse, 1e-4)
	assert.InDelta(t, 0.02, o2.Params[6], 0.05)
	assert.InDelta(t, -0.015, o2.Params[7], 0.05)
	for i := 8; i <= 10; i++ {
		assert.InDelta(t, 0, o2.Params[i], 0.05)
	}

	rj, cj := o2.Jac.Dims()
	assert.Equal(t, 3*32*32, rj)
	assert.Equal(t, 9, cj)
	require.NotNil(t, o2.Cov)
	rc, cc := o2.Cov.Dims()
	assert.Equal(t, 9, rc)
	assert.Equal(t, 9, cc)
	for i := 0; i < 9; i++ {
		assert.InDelta(t, 1, o2.Corr.At(i, i), 1e-9)
	}
	assert.Len(t, o2.Grad, 9)

	assert.Len(t, o2.Phase.Phi, 64)
	assert.Len(t, o2.Phase.Phi[0], 64)
	assert.GreaterOrEqual(t, o2.RMS, 0.)
	assert.Greater(t, o2.Ruze, 0.)
	assert.LessOrEqual(t, o2.Ruze, 1.)
	assert.Greater(t, r.Elapsed.Seconds(), 0.)

	for _, f := range []string{
		"beam_data.csv", "u_data.csv", "v_data.csv",
		"fitpar_n1.csv", "res_n1.csv", "jac_n1.csv", "grad_n1.csv",
		"phase_n1.csv", "cov_n1.csv", "corr_n1.csv",
		"fitpar_n2.csv", "res_n2.csv", "jac_n2.csv", "grad_n2.csv",
		"phase_n2.csv", "cov_n2.csv", "corr_n2.csv",
		"oof_info.yml",
	} {
		_, err := os.Stat(filepath.Join(r.Dir, f))
		assert.NoError(t, err, f)
	}
}

func TestZPolyOutputFiles(t *testing.T) {
	data := simObs()
	out := t.TempDir()
	opts := fit.Options{
		OrderMax:   1,
		Tel:        telgeo.Effelsberg(data.MeanEl),
		Resolution: 32,
		Config:     fit.DefaultConfig(),
		PhaseRes:   32,
		OutDir:     out,
	}
	r, err := fit.ZPoly(data, opts)
	require.NoError(t, err)

	// fit parameter table: header plus one named row per parameter
	f, err := os.Open(filepath.Join(r.Dir, "fitpar_n1.csv"))
	require.NoError(t, err)
	rows, err := csv.NewReader(f).ReadAll()
	f.Close()
	require.NoError(t, err)
	require.Len(t, rows, 9)
	assert.Equal(t, []string{"parname", "parfit", "parinit"}, rows[0])
	names := make([]string, 0, 8)
	for _, row := range rows[1:] {
		names = append(names, row[0])
	}
	assert.Equal(t, []string{
		"i_amp", "c_dB", "q", "x_0", "y_0",
		"K(0, 0)", "K(1, -1)", "K(1, 1)",
	}, names)
	assert.Equal(t, "1", rows[1][1])
	assert.Equal(t, "0", rows[6][1])

	// observed beam: one header line, one row per map
	b, err := os.ReadFile(filepath.Join(r.Dir, "beam_data.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "# Normalized beam", lines[0])
	assert.Len(t, strings.Fields(lines[1]), 32*32)

	// residual: one value per line
	b, err = os.ReadFile(filepath.Join(r.Dir, "res_n1.csv"))
	require.NoError(t, err)
	lines = strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	assert.Len(t, lines, 1+3*32*32)

	// covariance: free parameter indices first
	b, err = os.ReadFile(filepath.Join(r.Dir, "cov_n1.csv"))
	require.NoError(t, err)
	lines = strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	require.Len(t, lines, 2+6)
	idx := strings.Fields(lines[1])
	require.Len(t, idx, 6)
	assert.Equal(t, "1.000000000000000000e+00", idx[0])

	// run summary
	b, err = os.ReadFile(filepath.Join(r.Dir, "oof_info.yml"))
	require.NoError(t, err)
	var info map[string]interface{}
	require.NoError(t, yaml.Unmarshal(b, &info))
	assert.Equal(t, "test000", info["name"])
	assert.Equal(t, "effelsberg", info["tel_name"])
	assert.Equal(t, "3C84", info["obs_object"])
	assert.Equal(t, "BFGS", info["opt_method"])
	assert.Equal(t, 32, info["fft_resolution"])
	assert.Equal(t, "parabolic", info["illumination"])
	assert.Len(t, info["d_z"], 3)
	assert.Len(t, info["snr"], 3)

	// the stored files read back through the package's own readers
	assert.Equal(t, 1, fit.MaxOrder(r.Dir))
	info2, err := fit.ReadRunInfo(r.Dir)
	require.NoError(t, err)
	assert.Equal(t, "test000", info2.Name)
	assert.Equal(t, 50., info2.Pr)
	assert.Equal(t, 32, info2.FFTRes)
	names2, sol, init, err := fit.ReadFitpar(r.Dir, 1)
	require.NoError(t, err)
	assert.Equal(t, names, names2)
	assert.Equal(t, 1., sol[0])
	assert.Equal(t, 1., init[0])
	pm, err := fit.ReadPhase(r.Dir, 1, info2.Pr)
	require.NoError(t, err)
	require.Len(t, pm.Phi, 32)
	require.Len(t, pm.X, 32)
	assert.Equal(t, -50., pm.X[0])
	assert.Equal(t, 50., pm.X[31])

	// a rerun lands in a fresh directory
	r2, err := fit.ZPoly(data, opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "test000-001"), r2.Dir)
}

func TestZPolyErrors(t *testing.T) {
	data := simObs()
	tel := telgeo.Effelsberg(data.MeanEl)

	_, err := fit.ZPoly(data, fit.Options{OrderMax: 0, Tel: tel, OutDir: t.TempDir()})
	assert.ErrorContains(t, err, "order max")

	_, err = fit.ZPoly(&beam.Data{Name: "x"}, fit.Options{OrderMax: 1, Tel: tel, OutDir: t.TempDir()})
	assert.ErrorContains(t, err, "no beam maps")

	_, err = fit.ZPoly(data, fit.Options{OrderMax: 1, OutDir: t.TempDir()})
	assert.ErrorContains(t, err, "telescope geometry")

	flat := &beam.Data{
		Name:  "flat",
		Wavel: 0.009,
		Maps: []beam.Map{{
			U:    []float64{0, 1, 2},
			V:    []float64{0, 1, 2},
			Beam: []float64{0, 0, 0},
		}},
	}
	_, err = fit.ZPoly(flat, fit.Options{
		OrderMax: 1, Tel: tel, Resolution: 32, OutDir: t.TempDir(),
	})
	assert.ErrorContains(t, err, "nonpositive peak")
}
