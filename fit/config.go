// Public domain.

package fit

import (
	"fmt"
	"os"

	"github.com/radioholo/oof/aperture"
	"gopkg.in/yaml.v3"
)

// ParamSet holds one value per fit parameter family.
type ParamSet struct {
	IAmp float64 `yaml:"i_amp"`
	CdB  float64 `yaml:"c_dB"`
	Q    float64 `yaml:"q"`
	X0   float64 `yaml:"x_0"`
	Y0   float64 `yaml:"y_0"`
	K    float64 `yaml:"K"`
}

// Config controls which parameters are fitted and where they start.
// Parameter indices run 0 i_amp, 1 c_dB, 2 q, 3 x_0, 4 y_0, then 5+j
// for Zernike coefficient K_j.  Excluded indices are held out of the
// minimization at their Fixed values.  Init.K seeds every Zernike
// coefficient.
type Config struct {
	Excluded []int    `yaml:"excluded"`
	Fixed    ParamSet `yaml:"fixed"`
	Init     ParamSet `yaml:"init"`
}

// DefaultConfig uses the standard starting point and excludes the two
// parameters the observables cannot constrain: with data and model
// both peak normalized the illumination amplitude scales out, and a
// piston term shifts the aperture phase without changing the power
// pattern.  i_amp is held at 1 so the aperture field is nonzero.
func DefaultConfig() Config {
	return Config{
		Excluded: []int{0, 5},
		Fixed:    ParamSet{IAmp: 1},
		Init:     ParamSet{IAmp: 0.1, CdB: -20, Q: 2, K: 0.1},
	}
}

// LoadConfig reads a YAML fit configuration.  Keys not present keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FreeIndices returns the indices of the parameters fitted for a
// ladder of nK coefficients, ascending.
func (c Config) FreeIndices(nK int) []int {
	total := aperture.NumIllum + nK
	excl := make(map[int]bool, len(c.Excluded))
	for _, i := range c.Excluded {
		excl[i] = true
	}
	free := make([]int, 0, total)
	for i := 0; i < total; i++ {
		if !excl[i] {
			free = append(free, i)
		}
	}
	return free
}

// initParams returns the full-length starting vector
// [i_amp, c_dB, q, x_0, y_0, K_0 … K_nK-1].
func (c Config) initParams(nK int) []float64 {
	p := make([]float64, aperture.NumIllum+nK)
	p[0], p[1], p[2], p[3], p[4] = c.Init.IAmp, c.Init.CdB, c.Init.Q, c.Init.X0, c.Init.Y0
	for i := aperture.NumIllum; i < len(p); i++ {
		p[i] = c.Init.K
	}
	return p
}

// fixedValue returns the held value of parameter index i.
func (c Config) fixedValue(i int) float64 {
	switch i {
	case 0:
		return c.Fixed.IAmp
	case 1:
		return c.Fixed.CdB
	case 2:
		return c.Fixed.Q
	case 3:
		return c.Fixed.X0
	case 4:
		return c.Fixed.Y0
	}
	return c.Fixed.K
}

// ParamsComplete reinserts fixed values at the excluded indices,
// recovering the full parameter vector from the free one.  free must
// have length len(cfg.FreeIndices(nK)).
func ParamsComplete(free []float64, nK int, cfg Config) []float64 {
	total := aperture.NumIllum + nK
	excl := make(map[int]bool, len(cfg.Excluded))
	for _, i := range cfg.Excluded {
		excl[i] = true
	}
	full := make([]float64, total)
	j := 0
	for i := 0; i < total; i++ {
		if excl[i] {
			full[i] = cfg.fixedValue(i)
		} else {
			full[i] = free[j]
			j++
		}
	}
	return full
}
