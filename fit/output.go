// Public domain.

package fit

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/radioholo/oof/beam"
	"github.com/radioholo/oof/zernike"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// makeRunDir creates a fresh <outDir>/<name>-NNN run directory,
// counting up past existing runs so reruns never overwrite.
func makeRunDir(outDir, name string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	for i := 0; ; i++ {
		dir := filepath.Join(outDir, fmt.Sprintf("%s-%03d", name, i))
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", err
		}
	}
}

// storeObserved writes the order-independent observation files: the
// normalized beam data and its coordinate vectors, one row per map.
func storeObserved(dir string, s *solver) error {
	var b, u, v [][]float64
	for _, m := range s.maps {
		b = append(b, m.norm)
		u = append(u, m.u)
		v = append(v, m.v)
	}
	if err := saveTxt(filepath.Join(dir, "beam_data.csv"), "Normalized beam", b); err != nil {
		return err
	}
	if err := saveTxt(filepath.Join(dir, "u_data.csv"), "u vector radians", u); err != nil {
		return err
	}
	return saveTxt(filepath.Join(dir, "v_data.csv"), "v vector radians", v)
}

// storeOrder writes the per-order solution files.
func (s *solver) storeOrder(dir string, or OrderResult) error {
	n := or.Order
	err := saveFitpar(filepath.Join(dir, fmt.Sprintf("fitpar_n%d.csv", n)),
		n, or.Params, or.Init)
	if err != nil {
		return err
	}
	err = saveVec(filepath.Join(dir, fmt.Sprintf("res_n%d.csv", n)),
		"Residual", or.Res)
	if err != nil {
		return err
	}
	err = saveMatrix(filepath.Join(dir, fmt.Sprintf("jac_n%d.csv", n)),
		"Jacobian", or.Jac)
	if err != nil {
		return err
	}
	err = saveVec(filepath.Join(dir, fmt.Sprintf("grad_n%d.csv", n)),
		"Gradient", or.Grad)
	if err != nil {
		return err
	}
	err = saveTxt(filepath.Join(dir, fmt.Sprintf("phase_n%d.csv", n)),
		"Phase-error radians", or.Phase.Phi)
	if err != nil {
		return err
	}
	if or.Cov == nil {
		return nil
	}
	err = saveMatrixWithIndex(filepath.Join(dir, fmt.Sprintf("cov_n%d.csv", n)),
		"Variance-Covariance matrix (first row fitted parameters idx)",
		or.Free, or.Cov)
	if err != nil {
		return err
	}
	return saveMatrixWithIndex(filepath.Join(dir, fmt.Sprintf("corr_n%d.csv", n)),
		"Correlation matrix (first row fitted parameters idx)",
		or.Free, or.Corr)
}

// saveTxt writes rows of space-separated %.18e values under a single
// # header line.
func saveTxt(path, header string, rows [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# %s\n", header)
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				w.WriteByte(' ')
			}
			fmt.Fprintf(w, "%.18e", v)
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// saveVec writes a 1-D array, one value per line.
func saveVec(path, header string, v []float64) error {
	rows := make([][]float64, len(v))
	for i := range v {
		rows[i] = v[i : i+1]
	}
	return saveTxt(path, header, rows)
}

func saveMatrix(path, header string, m *mat.Dense) error {
	r, _ := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, m)
	}
	return saveTxt(path, header, rows)
}

// saveMatrixWithIndex prefixes the matrix with a row holding the free
// parameter indices, so a stored matrix identifies its own axes.
func saveMatrixWithIndex(path, header string, free []int, m *mat.Dense) error {
	r, _ := m.Dims()
	rows := make([][]float64, 0, r+1)
	idx := make([]float64, len(free))
	for i, f := range free {
		idx[i] = float64(f)
	}
	rows = append(rows, idx)
	for i := 0; i < r; i++ {
		rows = append(rows, mat.Row(nil, i, m))
	}
	return saveTxt(path, header, rows)
}

// saveFitpar writes the named solution and start vectors as CSV.
func saveFitpar(path string, order int, sol, init []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	rows := [][]string{{"parname", "parfit", "parinit"}}
	for i, name := range paramNames(order) {
		rows = append(rows, []string{
			name,
			strconv.FormatFloat(sol[i], 'g', -1, 64),
			strconv.FormatFloat(init[i], 'g', -1, 64),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// paramNames labels the full parameter vector for Zernike order n,
// illumination first, then K(n, l) following the polynomial ladder.
func paramNames(n int) []string {
	names := []string{"i_amp", "c_dB", "q", "x_0", "y_0"}
	for _, ln := range zernike.Indices(n) {
		names = append(names, fmt.Sprintf("K(%d, %d)", ln.N, ln.L))
	}
	return names
}

// storeInfo writes the run summary as oof_info.yml.
func storeInfo(dir string, data *beam.Data, opts Options, r *Results) error {
	info := RunInfo{
		Name:      data.Name,
		TelName:   opts.Tel.Name,
		ObsObject: data.Object,
		ObsDate:   data.Date,
		MeanEl:    data.MeanEl.Deg(),
		Freq:      data.Freq,
		Wavel:     data.Wavel,
		Dz:        data.Dz(),
		Pr:        opts.Tel.Radius,
		FFTRes:    opts.Resolution,
		BoxFactor: opts.BoxFactor,
		Illum:     opts.Illum.Name,
		OptMethod: "BFGS",
		SNR:       r.SNR,
		Elapsed:   r.Elapsed.Seconds(),
	}
	b, err := yaml.Marshal(info)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "oof_info.yml"), b, 0o644)
}
