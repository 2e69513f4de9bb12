// Public domain.

package fit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/radioholo/oof/fit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := fit.DefaultConfig()
	assert.Equal(t, []int{0, 5}, cfg.Excluded)
	assert.Equal(t, 1., cfg.Fixed.IAmp)
	assert.Equal(t, 0., cfg.Fixed.K)
	assert.Equal(t, 0.1, cfg.Init.IAmp)
	assert.Equal(t, -20., cfg.Init.CdB)
	assert.Equal(t, 2., cfg.Init.Q)
	assert.Equal(t, 0., cfg.Init.X0)
	assert.Equal(t, 0., cfg.Init.Y0)
	assert.Equal(t, 0.1, cfg.Init.K)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fit.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
excluded: [0, 1, 2, 5]
fixed:
  i_amp: 1
  c_dB: -14
  q: 1.4
init:
  x_0: 0.001
`), 0o644))

	cfg, err := fit.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 5}, cfg.Excluded)
	assert.Equal(t, 1., cfg.Fixed.IAmp)
	assert.Equal(t, -14., cfg.Fixed.CdB)
	assert.Equal(t, 1.4, cfg.Fixed.Q)
	assert.Equal(t, 0.001, cfg.Init.X0)

	// keys not in the file keep their defaults
	assert.Equal(t, 0.1, cfg.Init.IAmp)
	assert.Equal(t, 2., cfg.Init.Q)

	_, err = fit.LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestFreeIndices(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, fit.Config{}.FreeIndices(3))
	assert.Equal(t, []int{1, 2, 3, 4, 6, 7}, fit.DefaultConfig().FreeIndices(3))

	cfg := fit.Config{Excluded: []int{0, 1, 2, 5}}
	assert.Equal(t, []int{3, 4, 6, 7}, cfg.FreeIndices(3))
}

func TestParamsComplete(t *testing.T) {
	cfg := fit.Config{
		Excluded: []int{1, 5},
		Fixed:    fit.ParamSet{CdB: -14, K: 0.5},
	}
	free := []float64{10, 20, 30, 40, 60, 70}
	full := fit.ParamsComplete(free, 3, cfg)
	assert.Equal(t, []float64{10, -14, 20, 30, 40, 0.5, 60, 70}, full)

	// no exclusions is the identity
	free = []float64{1, 2, 3, 4, 5, 6, 7, 8}
	assert.Equal(t, free, fit.ParamsComplete(free, 3, fit.Config{}))
}
