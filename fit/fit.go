// Public domain.

// Package fit recovers aperture phase errors from out-of-focus beam
// maps.
//
// For each Zernike order up to a configured maximum, the package fits
// the illumination and Zernike coefficients of the aperture forward
// model against the observed maps by nonlinear least squares, then
// derives the aperture phase map and its diagnostics from the
// solution.  Each run writes its outputs to a fresh directory that is
// never overwritten.
package fit

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/radioholo/oof/aperture"
	"github.com/radioholo/oof/beam"
	"github.com/radioholo/oof/telgeo"
	"github.com/radioholo/oof/zernike"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// Output defaults.
const (
	DefaultOutDir   = "oof_out" // parent of the per-run directories
	DefaultPhaseRes = 256       // phase map grid size
)

// Options configures a ZPoly run.
type Options struct {
	OrderMax    int // highest Zernike order, at least 1
	Tel         telgeo.Telescope
	Illum       aperture.Illumination // Parabolic when unset
	Config      Config
	Resolution  int     // FFT grid, aperture.DefaultResolution when 0
	BoxFactor   float64 // aperture.DefaultBoxFactor when 0
	FitPrevious bool    // seed each order from the previous solution
	PhaseRes    int     // phase map grid, DefaultPhaseRes when 0
	OutDir      string  // parent output directory, DefaultOutDir when empty
}

// OrderResult is the solution for one Zernike order.
type OrderResult struct {
	Order  int
	Free   []int     // indices of the fitted parameters
	Init   []float64 // full starting vector
	Params []float64 // full solution vector, i_amp … K_N
	Res    []float64 // residual at the solution
	Grad   []float64 // Jᵀr over the free parameters
	Jac    *mat.Dense
	Cov    *mat.Dense // nil when the system is underdetermined
	Corr   *mat.Dense
	Phase  aperture.PhaseMap // piston and tilt removed
	RMS    float64           // phase rms, rad
	Ruze   float64           // random-surface-error efficiency
}

// Results collects a complete ZPoly run.
type Results struct {
	Name    string
	Dir     string // run output directory
	SNR     []float64
	Orders  []OrderResult
	Elapsed time.Duration
}

// Best returns the highest-order result.
func (r *Results) Best() OrderResult {
	return r.Orders[len(r.Orders)-1]
}

// ZPoly fits the aperture model to an observation for every Zernike
// order 1…opts.OrderMax and stores the run outputs under
// opts.OutDir/<name>-NNN.
func ZPoly(data *beam.Data, opts Options) (*Results, error) {
	start := time.Now()
	if opts.OrderMax < 1 {
		return nil, fmt.Errorf("order max %d: want at least 1", opts.OrderMax)
	}
	if len(data.Maps) == 0 {
		return nil, fmt.Errorf("%s: no beam maps", data.Name)
	}
	if opts.Tel.Block == nil || opts.Tel.Delta == nil {
		return nil, fmt.Errorf("%s: telescope geometry not set", data.Name)
	}
	if opts.Illum.Fn == nil {
		opts.Illum = aperture.Parabolic
	}
	if opts.Resolution == 0 {
		opts.Resolution = aperture.DefaultResolution
	}
	if opts.BoxFactor == 0 {
		opts.BoxFactor = aperture.DefaultBoxFactor
	}
	if opts.PhaseRes == 0 {
		opts.PhaseRes = DefaultPhaseRes
	}
	if opts.OutDir == "" {
		opts.OutDir = DefaultOutDir
	}

	s, err := newSolver(data, opts)
	if err != nil {
		return nil, err
	}
	dir, err := makeRunDir(opts.OutDir, data.Name)
	if err != nil {
		return nil, err
	}
	if err := storeObserved(dir, s); err != nil {
		return nil, err
	}

	r := &Results{Name: data.Name, Dir: dir}
	for _, m := range s.maps {
		r.SNR = append(r.SNR, snr(m.norm))
	}

	var prev []float64
	for n := 1; n <= opts.OrderMax; n++ {
		or, err := s.fitOrder(n, prev)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", n, err)
		}
		if err := s.storeOrder(dir, or); err != nil {
			return nil, err
		}
		r.Orders = append(r.Orders, or)
		if opts.FitPrevious {
			prev = or.Params
		}
	}
	r.Elapsed = time.Since(start)
	return r, storeInfo(dir, data, opts, r)
}

type dataMap struct {
	u, v, norm []float64
}

type solver struct {
	cfg         Config
	pat         *aperture.Pattern
	u, v        []float64
	maps        []dataMap
	offset      []int
	total       int
	pr          float64
	phaseRes    int
	fitPrevious bool
}

func newSolver(data *beam.Data, opts Options) (*solver, error) {
	pat := aperture.NewPattern(opts.Tel, opts.Illum, data.Wavel, data.Dz(),
		opts.Resolution, opts.BoxFactor)
	s := &solver{
		cfg:         opts.Config,
		pat:         pat,
		u:           pat.U(),
		v:           pat.V(),
		pr:          opts.Tel.Radius,
		phaseRes:    opts.PhaseRes,
		fitPrevious: opts.FitPrevious,
	}
	for i, m := range data.Maps {
		if len(m.Beam) == 0 || len(m.U) != len(m.Beam) || len(m.V) != len(m.Beam) {
			return nil, fmt.Errorf("map %d: beam and coordinate lengths differ", i)
		}
		peak := floats.Max(m.Beam)
		if peak <= 0 {
			return nil, fmt.Errorf("map %d: nonpositive peak %g", i, peak)
		}
		norm := make([]float64, len(m.Beam))
		for j, b := range m.Beam {
			norm[j] = b / peak
		}
		s.offset = append(s.offset, s.total)
		s.maps = append(s.maps, dataMap{u: m.U, v: m.V, norm: norm})
		s.total += len(norm)
	}
	return s, nil
}

// fitOrder minimizes the residual over the free parameters of one
// Zernike order.  prev, when non-nil, is the previous order's full
// solution and seeds the shared leading parameters.
func (s *solver) fitOrder(n int, prev []float64) (OrderResult, error) {
	nK := zernike.Count(n)
	init := s.cfg.initParams(nK)
	copy(init, prev)
	free := s.cfg.FreeIndices(nK)
	x0 := make([]float64, len(free))
	for i, idx := range free {
		x0[i] = init[idx]
	}
	// held indices report their fixed values
	init = ParamsComplete(x0, nK, s.cfg)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			res := s.residual(ParamsComplete(x, nK, s.cfg))
			return floats.Dot(res, res)
		},
	}
	// Finite-difference gradients often bottom out in a failed line
	// search right at the minimum.  The best point found still stands.
	result, err := optimize.Minimize(problem, x0, nil, &optimize.BFGS{})
	if err != nil && (result == nil || !errors.Is(err, optimize.ErrLinesearcherFailure)) {
		return OrderResult{}, err
	}

	sol := ParamsComplete(result.X, nK, s.cfg)
	res := s.residual(sol)
	jac := s.jacobian(result.X, nK)
	cov, corr := coMatrices(res, jac)
	phase := aperture.Phase(sol[aperture.NumIllum:], s.pr, false, false, s.phaseRes)

	return OrderResult{
		Order:  n,
		Free:   free,
		Init:   init,
		Params: sol,
		Res:    res,
		Grad:   gradient(res, jac),
		Jac:    jac,
		Cov:    cov,
		Corr:   corr,
		Phase:  phase,
		RMS:    phase.RMS(),
		Ruze:   phase.Ruze(),
	}, nil
}

// residual is the concatenated per-map difference between the
// normalized observed power and the model interpolated onto the data
// points.
func (s *solver) residual(params []float64) []float64 {
	dst := make([]float64, s.total)
	s.residualInto(dst, params)
	return dst
}

// residualInto evaluates the maps concurrently.
func (s *solver) residualInto(dst, params []float64) {
	I := params[:aperture.NumIllum]
	K := params[aperture.NumIllum:]
	var wg sync.WaitGroup
	for m := range s.maps {
		wg.Add(1)
		go func(m int) {
			defer wg.Done()
			pw := s.pat.Power(m, K, I)
			dm := s.maps[m]
			out := dst[s.offset[m] : s.offset[m]+len(dm.norm)]
			for i, b := range dm.norm {
				out[i] = b - bilinear(s.u, s.v, pw, dm.u[i], dm.v[i])
			}
		}(m)
	}
	wg.Wait()
}

// snr estimates a map's signal-to-noise ratio: peak over the standard
// deviation of the samples below the median.
func snr(norm []float64) float64 {
	if len(norm) < 4 {
		return 0
	}
	sorted := append([]float64(nil), norm...)
	sort.Float64s(sorted)
	med := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	var low []float64
	for _, v := range sorted {
		if v < med {
			low = append(low, v)
		}
	}
	if len(low) < 2 {
		return 0
	}
	r := sorted[len(sorted)-1] / stat.StdDev(low, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
