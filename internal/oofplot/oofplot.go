// Public domain.

// Package oofplot renders the diagnostic plots of a fit run: observed
// and modeled power patterns, fit residuals and the recovered aperture
// phase-error map.  Files go under <run dir>/plots.
package oofplot

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/radioholo/oof/aperture"
	"github.com/radioholo/oof/beam"
	"github.com/radioholo/oof/fit"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const radToDeg = 180 / math.Pi

// Render writes the diagnostic plot set for a completed run.  opts
// must be the options the fit ran with.
func Render(data *beam.Data, res *fit.Results, opts fit.Options) error {
	if opts.Illum.Fn == nil {
		opts.Illum = aperture.Parabolic
	}
	if opts.Resolution == 0 {
		opts.Resolution = aperture.DefaultResolution
	}
	if opts.BoxFactor == 0 {
		opts.BoxFactor = aperture.DefaultBoxFactor
	}
	dir := filepath.Join(res.Dir, "plots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if err := renderObserved(dir, data, opts.Resolution); err != nil {
		return fmt.Errorf("obsbeam: %w", err)
	}
	pat := aperture.NewPattern(opts.Tel, opts.Illum, data.Wavel, data.Dz(),
		opts.Resolution, opts.BoxFactor)
	for _, or := range res.Orders {
		if err := renderOrder(dir, data, pat, or, opts); err != nil {
			return fmt.Errorf("order %d: %w", or.Order, err)
		}
	}
	return nil
}

// renderObserved regrids the scattered observed samples and draws one
// panel per map.
func renderObserved(dir string, data *beam.Data, res int) error {
	plots := make([]*plot.Plot, len(data.Maps))
	for i, m := range data.Maps {
		peak := floats.Max(m.Beam)
		norm := make([]float64, len(m.Beam))
		for j, b := range m.Beam {
			norm[j] = b / peak
		}
		g := regrid(degrees(m.U), degrees(m.V), norm, res)
		lo, hi := gridMinMax(g.z)
		plots[i] = heatPanel(g, beamLevels(lo, hi),
			fmt.Sprintf("observed  d_z = %.3f cm", m.Dz*100), "u deg", "v deg")
	}
	return writeRow(plots, filepath.Join(dir, "obsbeam.png"))
}

// renderOrder draws the model beams, the residual maps and the phase
// map of one order's solution.
func renderOrder(dir string, data *beam.Data, pat *aperture.Pattern, or fit.OrderResult, opts fit.Options) error {
	I := or.Params[:aperture.NumIllum]
	K := or.Params[aperture.NumIllum:]
	u, v := degrees(pat.U()), degrees(pat.V())
	umin, umax, vmin, vmax := window(pat, K, I, data.Wavel, opts.Tel.Radius)

	beams := make([]*plot.Plot, len(data.Maps))
	for m := range data.Maps {
		g := grid{x: u, y: v, z: pat.Power(m, K, I)}
		p := heatPanel(g, beamLevels(gridMinMax(g.z)),
			fmt.Sprintf("fit  d_z = %.3f cm", pat.Dz()[m]*100), "u deg", "v deg")
		p.X.Min, p.X.Max = umin, umax
		p.Y.Min, p.Y.Max = vmin, vmax
		beams[m] = p
	}
	err := writeRow(beams, filepath.Join(dir, fmt.Sprintf("fitbeam_n%d.png", or.Order)))
	if err != nil {
		return err
	}

	resid := make([]*plot.Plot, len(data.Maps))
	off := 0
	for m, dm := range data.Maps {
		seg := or.Res[off : off+len(dm.Beam)]
		off += len(dm.Beam)
		g := regrid(degrees(dm.U), degrees(dm.V), seg, opts.Resolution)
		resid[m] = heatPanel(g, beamLevels(gridMinMax(g.z)),
			fmt.Sprintf("residual  d_z = %.3f cm", dm.Dz*100), "u deg", "v deg")
	}
	err = writeRow(resid, filepath.Join(dir, fmt.Sprintf("residual_n%d.png", or.Order)))
	if err != nil {
		return err
	}

	g := grid{x: or.Phase.X, y: or.Phase.X, z: or.Phase.Phi}
	lo, hi := gridMinMax(g.z)
	p := heatPanel(g, arange(math.Floor(lo), math.Ceil(hi), 0.2),
		fmt.Sprintf("phase-error order %d, rms = %.3f rad", or.Order, or.RMS),
		"x m", "y m")
	return p.Save(6*vg.Inch, 5.8*vg.Inch,
		filepath.Join(dir, fmt.Sprintf("fitphase_n%d.png", or.Order)))
}

// window is the beam plotting window in degrees, eight beamwidths to
// each side of the in-focus map's peak.
func window(pat *aperture.Pattern, K, I []float64, wavel, pr float64) (umin, umax, vmin, vmax float64) {
	mid := len(pat.Dz()) / 2
	pw := pat.Power(mid, K, I)
	u, v := pat.U(), pat.V()
	uo, vo := u[0], v[0]
	max := math.Inf(-1)
	for iy, row := range pw {
		for ix, p := range row {
			if p > max {
				max, uo, vo = p, u[ix], v[iy]
			}
		}
	}
	s := 8 * 1.22 * wavel / (2 * pr)
	return radToDeg * (uo - s), radToDeg * (uo + s),
		radToDeg * (vo - s), radToDeg * (vo + s)
}

// grid is a regular raster satisfying plotter.GridXYZ, z[iy][ix].
type grid struct {
	x, y []float64
	z    [][]float64
}

func (g grid) Dims() (c, r int)   { return len(g.x), len(g.y) }
func (g grid) Z(c, r int) float64 { return g.z[r][c] }
func (g grid) X(c int) float64    { return g.x[c] }
func (g grid) Y(r int) float64    { return g.y[r] }

// mono is a single-color palette, used to draw contour lines black.
type mono struct{ c color.Color }

func (m mono) Colors() []color.Color { return []color.Color{m.c} }

// heatPanel builds one heat map panel with contour overlay.
func heatPanel(g grid, levels []float64, title, xlab, ylab string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlab
	p.Y.Label.Text = ylab
	p.Add(plotter.NewHeatMap(g, palette.Heat(12, 1)))
	if len(levels) > 0 {
		p.Add(plotter.NewContour(g, levels, mono{color.Black}))
	}
	return p
}

// writeRow draws the plots side by side into a single PNG.
func writeRow(plots []*plot.Plot, path string) error {
	img := vgimg.New(vg.Inch*vg.Length(4*len(plots)), 4.5*vg.Inch)
	dc := draw.New(img)
	t := draw.Tiles{
		Rows: 1,
		Cols: len(plots),
		PadX: vg.Millimeter * 2,
		PadY: vg.Millimeter * 2,
	}
	canvases := plot.Align([][]*plot.Plot{plots}, t, dc)
	for j, p := range plots {
		p.Draw(canvases[0][j])
	}
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// regrid averages scattered samples onto a fresh res x res raster by
// nearest cell.  Cells no sample lands in stay zero.
func regrid(u, v, z []float64, res int) grid {
	umin, umax := floats.Min(u), floats.Max(u)
	vmin, vmax := floats.Min(v), floats.Max(v)
	du := (umax - umin) / float64(res-1)
	dv := (vmax - vmin) / float64(res-1)
	if du == 0 {
		du = 1
	}
	if dv == 0 {
		dv = 1
	}
	g := grid{
		x: floats.Span(make([]float64, res), umin, umax),
		y: floats.Span(make([]float64, res), vmin, vmax),
		z: make([][]float64, res),
	}
	cnt := make([][]int, res)
	for i := range g.z {
		g.z[i] = make([]float64, res)
		cnt[i] = make([]int, res)
	}
	for k := range z {
		ix := clampIndex(int((u[k]-umin)/du+0.5), res)
		iy := clampIndex(int((v[k]-vmin)/dv+0.5), res)
		g.z[iy][ix] += z[k]
		cnt[iy][ix]++
	}
	for iy := range g.z {
		for ix, n := range cnt[iy] {
			if n > 0 {
				g.z[iy][ix] /= float64(n)
			}
		}
	}
	return g
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// beamLevels spaces ten contour levels across the panel's range.
func beamLevels(lo, hi float64) []float64 {
	if hi-lo < 1e-12 {
		return nil
	}
	return floats.Span(make([]float64, 10), lo, hi)
}

func arange(lo, hi, step float64) []float64 {
	var a []float64
	for x := lo; x < hi; x += step {
		a = append(a, x)
	}
	return a
}

func degrees(rad []float64) []float64 {
	deg := make([]float64, len(rad))
	for i, r := range rad {
		deg[i] = r * radToDeg
	}
	return deg
}

func gridMinMax(z [][]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range z {
		for _, v := range row {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}
