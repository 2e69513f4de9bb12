// Public domain.

package fit

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/radioholo/oof/aperture"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// RunInfo is the run summary stored as oof_info.yml in every run
// directory.
type RunInfo struct {
	Name      string    `yaml:"name"`
	TelName   string    `yaml:"tel_name"`
	ObsObject string    `yaml:"obs_object"`
	ObsDate   string    `yaml:"obs_date"`
	MeanEl    float64   `yaml:"meanel"` // deg
	Freq      float64   `yaml:"freq"`
	Wavel     float64   `yaml:"wavel"`
	Dz        []float64 `yaml:"d_z"`
	Pr        float64   `yaml:"pr"`
	FFTRes    int       `yaml:"fft_resolution"`
	BoxFactor float64   `yaml:"box_factor"`
	Illum     string    `yaml:"illumination"`
	OptMethod string    `yaml:"opt_method"`
	SNR       []float64 `yaml:"snr"`
	Elapsed   float64   `yaml:"elapsed"` // seconds
}

// ReadRunInfo reads the oof_info.yml of a run directory.
func ReadRunInfo(dir string) (*RunInfo, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "oof_info.yml"))
	if err != nil {
		return nil, err
	}
	info := new(RunInfo)
	if err := yaml.Unmarshal(raw, info); err != nil {
		return nil, fmt.Errorf("%s: %v", dir, err)
	}
	return info, nil
}

// MaxOrder reports the highest Zernike order with a stored solution in
// a run directory, 0 when there is none.
func MaxOrder(dir string) int {
	n := 0
	for {
		path := filepath.Join(dir, fmt.Sprintf("fitpar_n%d.csv", n+1))
		if _, err := os.Stat(path); err != nil {
			return n
		}
		n++
	}
}

// ReadFitpar reads a stored parameter file back as parallel name,
// solution and start vectors.
func ReadFitpar(dir string, n int) (names []string, sol, init []float64, err error) {
	path := filepath.Join(dir, fmt.Sprintf("fitpar_n%d.csv", n))
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %v", path, err)
	}
	if len(rows) < 2 || len(rows[0]) != 3 {
		return nil, nil, nil, fmt.Errorf("%s: not a parameter file", path)
	}
	for _, row := range rows[1:] {
		s, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%s: %v", path, err)
		}
		i, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%s: %v", path, err)
		}
		names = append(names, row[0])
		sol = append(sol, s)
		init = append(init, i)
	}
	return names, sol, init, nil
}

// ReadPhase reads a stored phase-error map back onto its aperture
// grid.  The dish radius is not stored in the file itself; it comes
// from RunInfo.Pr.
func ReadPhase(dir string, n int, pr float64) (aperture.PhaseMap, error) {
	path := filepath.Join(dir, fmt.Sprintf("phase_n%d.csv", n))
	phi, err := loadTxt(path)
	if err != nil {
		return aperture.PhaseMap{}, err
	}
	res := len(phi)
	for _, row := range phi {
		if len(row) != res {
			return aperture.PhaseMap{}, fmt.Errorf("%s: not a square map", path)
		}
	}
	if res < 2 {
		return aperture.PhaseMap{}, fmt.Errorf("%s: not a square map", path)
	}
	x := make([]float64, res)
	floats.Span(x, -pr, pr)
	return aperture.PhaseMap{X: x, Phi: phi, Pr: pr}, nil
}

// loadTxt reads rows of space-separated values, skipping # headers.
func loadTxt(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows [][]float64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1<<20), 1<<24)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		flds := strings.Fields(line)
		row := make([]float64, len(flds))
		for i, fs := range flds {
			if row[i], err = strconv.ParseFloat(fs, 64); err != nil {
				return nil, fmt.Errorf("%s: %v", path, err)
			}
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return rows, nil
}
