// Public domain.

package actuator_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/radioholo/oof/actuator"
	"github.com/radioholo/oof/aperture"
	"github.com/radioholo/oof/zernike"
	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTheta(t *testing.T) {
	assert.InDelta(t, 7.5, actuator.Theta(0).Deg(), 1e-12)
	assert.InDelta(t, 22.5, actuator.Theta(1).Deg(), 1e-12)
	assert.InDelta(t, 352.5, actuator.Theta(actuator.Azimuths-1).Deg(), 1e-12)
}

func TestEffelsberg(t *testing.T) {
	s := actuator.Effelsberg(.007)
	assert.Equal(t, .007, s.Wavel)
	assert.Equal(t, 3, s.Nrot)
	assert.Equal(t, -1, s.Sign)
	assert.Equal(t, 5, s.Order)
	assert.Equal(t, 3.25, s.Sr)
	assert.Equal(t, 50., s.Pr)
	assert.InDelta(t, 1, s.Rho(0), 1e-12)
	assert.InDelta(t, 1.21/3.25, s.Rho(3), 1e-12)
}

func TestTransform(t *testing.T) {
	s := actuator.Effelsberg(.009)
	var d actuator.Grid
	for r := 0; r < actuator.Rings; r++ {
		for a := 0; a < actuator.Azimuths; a++ {
			d[r][a] = float64(100*r + a + 1)
		}
	}
	p := s.Transform(d)

	// three quarter turns move a column 18 ahead
	factor := -4 * math.Pi / .009 * 1e-6
	assert.InDelta(t, factor*d[0][18], p[0][0], 1e-15)
	assert.InDelta(t, factor*d[2][4], p[2][10], 1e-15)

	back := s.ITransform(p)
	for r := 0; r < actuator.Rings; r++ {
		for a := 0; a < actuator.Azimuths; a++ {
			assert.InDelta(t, d[r][a], back[r][a], 1e-9)
		}
	}
}

func TestLookupRoundTrip(t *testing.T) {
	lk := actuator.NewLookup()
	require.Len(t, lk.Alpha, 11)
	assert.InDelta(t, 7, lk.Alpha[0].Deg(), 1e-12)
	assert.InDelta(t, 90, lk.Alpha[10].Deg(), 1e-12)

	for j := range lk.Disp {
		for r := 0; r < actuator.Rings; r++ {
			for a := 0; a < actuator.Azimuths; a++ {
				lk.Disp[j][r][a] = float64((j+1)*(r*actuator.Azimuths+a) - 500)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "act.txt")
	require.NoError(t, actuator.WriteLookup(path, lk))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, actuator.NumActuators)
	assert.True(t, strings.HasPrefix(lines[0], "NR 1 ffff "))
	assert.True(t, strings.HasPrefix(lines[95], "NR 96 ffff "))
	assert.Len(t, strings.Fields(lines[0]), 3+len(actuator.LookupElevations))

	got, err := actuator.ReadLookup(path)
	require.NoError(t, err)
	for j := range lk.Disp {
		assert.Equal(t, lk.Disp[j], got.Disp[j], "elevation %d", j)
	}
}

func TestReadLookupErrors(t *testing.T) {
	_, err := actuator.ReadLookup(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)

	dir := t.TempDir()
	short := filepath.Join(dir, "short.txt")
	row := "NR 1 ffff 0  0  0  0  0  0  0  0  0  0  0\n"
	require.NoError(t, os.WriteFile(short, []byte(row+row), 0o644))
	_, err = actuator.ReadLookup(short)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "actuator rows")

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("NR 1 ffff 0 0\n"), 0o644))
	_, err = actuator.ReadLookup(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad actuator row")
}

// phaseGrid evaluates φ = 2π·ΣK·U at the actuator positions.
func phaseGrid(s actuator.Surface, K []float64) actuator.Grid {
	ln := zernike.Indices(s.Order)
	var p actuator.Grid
	for r := 0; r < actuator.Rings; r++ {
		rho := s.Rho(r)
		for a := 0; a < actuator.Azimuths; a++ {
			th := actuator.Theta(a).Rad()
			var w float64
			for j, k := range K {
				w += k * zernike.U(ln[j].L, ln[j].N, th, rho)
			}
			p[r][a] = 2 * math.Pi * w
		}
	}
	return p
}

func TestFitZernike(t *testing.T) {
	s := actuator.Effelsberg(.009)
	K := make([]float64, zernike.Count(s.Order))
	K[0] = .05
	K[1] = -.02
	K[2] = .01
	K[4] = .03
	K[7] = -.015
	K[12] = .008
	K[20] = -.004

	p := phaseGrid(s, K)
	Ks, err := s.FitZernike([]actuator.Grid{p, p})
	require.NoError(t, err)
	require.Len(t, Ks, 2)
	require.Len(t, Ks[0], len(K))
	for j := range K {
		assert.InDelta(t, K[j], Ks[0][j], 1e-8, "K %d", j)
		assert.InDelta(t, K[j], Ks[1][j], 1e-8, "K %d", j)
	}
}

func TestFitGrav(t *testing.T) {
	alpha := actuator.NewLookup().Alpha
	G := []actuator.GravModel{
		{.01, -.02, .005},
		{0, .03, -.01},
		{-.004, 0, .002},
	}
	Ks := make([][]float64, len(alpha))
	for i, al := range alpha {
		Ks[i] = make([]float64, len(G))
		for j, g := range G {
			Ks[i][j] = g.K(al)
		}
	}
	got, err := actuator.FitGrav(Ks, alpha)
	require.NoError(t, err)
	require.Len(t, got, len(G))
	for j := range G {
		for c := 0; c < 3; c++ {
			assert.InDelta(t, G[j][c], got[j][c], 1e-10, "G %d %d", j, c)
		}
	}

	_, err = actuator.FitGrav(Ks[:5], alpha)
	assert.Error(t, err)
	_, err = actuator.FitGrav(Ks[:2], alpha[:2])
	assert.Error(t, err)
}

func TestGravRoundTrip(t *testing.T) {
	s := actuator.Effelsberg(.009)
	G := make([]actuator.GravModel, zernike.Count(s.Order))
	G[0] = actuator.GravModel{.02, -.01, .003}
	G[3] = actuator.GravModel{0, .015, -.005}
	G[9] = actuator.GravModel{-.008, 0, .001}

	lk := s.MakeLookup(G)
	require.Len(t, lk.Disp, len(actuator.LookupElevations))

	got, Ks, err := s.FitAll(s.Phases(lk), lk.Alpha)
	require.NoError(t, err)
	require.Len(t, Ks, len(lk.Alpha))
	require.Len(t, got, len(G))
	for j := range G {
		for c := 0; c < 3; c++ {
			assert.InDelta(t, G[j][c], got[j][c], 1e-8, "G %d %d", j, c)
		}
	}
}

func TestPhaseAt(t *testing.T) {
	s := actuator.Effelsberg(.009)
	// pure piston, kept in the map
	pm := s.PhaseAt([]actuator.GravModel{{0, 0, .5}}, unit.AngleFromDeg(30), 41)
	assert.Equal(t, 50., pm.Pr)
	require.Len(t, pm.X, 41)
	assert.InDelta(t, math.Pi, pm.Phi[20][20], 1e-12)
	assert.Equal(t, 0., pm.Phi[0][0])
}

func TestSampleMap(t *testing.T) {
	s := actuator.Effelsberg(.009)
	// tilt plane 2π·0.3·x/pr, exact under bilinear interpolation
	pm := aperture.Phase([]float64{0, 0, .3}, s.Pr, true, true, 501)
	g := s.SampleMap(pm)
	for r := 1; r < actuator.Rings; r++ {
		for a := 0; a < actuator.Azimuths; a++ {
			x := s.Rho(r) * s.Pr * math.Cos(actuator.Theta(a).Rad())
			want := 2 * math.Pi * .3 * x / s.Pr
			assert.InDelta(t, want, g[r][a], 1e-10, "ring %d az %d", r, a)
		}
	}
	// the edge ring rides the rim where cells straddle the dish
	// boundary, so only rough agreement holds there
	for a := 0; a < actuator.Azimuths; a++ {
		x := 3.245 / s.Sr * s.Pr * math.Cos(actuator.Theta(a).Rad())
		want := 2 * math.Pi * .3 * x / s.Pr
		assert.InDelta(t, want, g[0][a], math.Abs(want)+.05, "az %d", a)
	}
}
