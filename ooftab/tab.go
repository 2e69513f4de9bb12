// Public domain.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/radioholo/oof/actuator"
	"github.com/radioholo/oof/aperture"
	"github.com/radioholo/oof/fit"
	"github.com/radioholo/oof/zernike"
	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
)

const versionString = "ooftab version 0.1"
const copyrightString = "Public domain."

var order int
var grav bool
var lookupFile string
var ignored int

// run holds the tabulated pieces of one run directory.
type run struct {
	dir   string
	n     int // tabulated order
	info  *fit.RunInfo
	sol   []float64
	phase aperture.PhaseMap
}

func main() {
	flag.Usage = func() {
		os.Stderr.WriteString(
			"Usage: ooftab [options] <run dir>...\n")
		flag.PrintDefaults()
		os.Stderr.WriteString(`
For full documentation:
   go doc github.com/radioholo/oof/ooftab
`)
	}
	flag.IntVar(&order, "n", 0, "Zernike order to tabulate, 0 for the highest stored")
	flag.BoolVar(&grav, "g", false, "fit the gravitational deformation model across the runs")
	flag.StringVar(&lookupFile, "lookup", "", "with -g, write an active-surface lookup table")
	vers := flag.Bool("v", false, "display version and copyright")
	flag.Parse()
	if *vers {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}
	if lookupFile != "" && !grav {
		log.Fatalln("-lookup requires -g")
	}

	var runs []*run
	for _, dir := range collect(flag.Args()) {
		r, err := load(dir)
		if err != nil {
			log.Fatalln(err)
		}
		runs = append(runs, r)
	}
	if ignored > 0 {
		log.Println(ignored, "arguments without run results ignored")
	}
	if len(runs) == 0 {
		log.Fatalln("no run directories found")
	}
	if grav {
		tabGrav(runs)
		return
	}
	tabRuns(runs)
}

// collect expands command line arguments into run directories.  An
// argument that is itself a run directory stands alone; otherwise its
// immediate children are scanned.
func collect(args []string) []string {
	var runs []string
	for _, arg := range args {
		if isRun(arg) {
			runs = append(runs, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			log.Fatalln(err)
		}
		found := false
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if d := filepath.Join(arg, e.Name()); isRun(d) {
				runs = append(runs, d)
				found = true
			}
		}
		if !found {
			ignored++
		}
	}
	return runs
}

func isRun(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "oof_info.yml"))
	return err == nil
}

func load(dir string) (*run, error) {
	info, err := fit.ReadRunInfo(dir)
	if err != nil {
		return nil, err
	}
	n := order
	if n == 0 {
		n = fit.MaxOrder(dir)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: no stored solution", dir)
	}
	_, sol, _, err := fit.ReadFitpar(dir, n)
	if err != nil {
		return nil, err
	}
	if len(sol) < aperture.NumIllum {
		return nil, fmt.Errorf("%s: short parameter vector", dir)
	}
	phase, err := fit.ReadPhase(dir, n, info.Pr)
	if err != nil {
		return nil, err
	}
	return &run{dir: dir, n: n, info: info, sol: sol, phase: phase}, nil
}

// tabRuns prints one row per run.  The rms and efficiency are
// recomputed from the stored phase map rather than trusted from the
// run summary.
func tabRuns(runs []*run) {
	fmt.Printf("%-12s %-11s %-12s %-19s %2s %11s %7s %7s %7s %8s %7s  %s\n",
		"name", "telescope", "object", "date", "n", "elevation",
		"i_amp", "c_dB", "q", "rms rad", "eta", "snr")
	for _, r := range runs {
		el := fmt.Sprint(sexa.FmtAngle(unit.AngleFromDeg(r.info.MeanEl)))
		fmt.Printf("%-12s %-11s %-12s %-19s %2d %11s %7.3f %7.2f %7.3f %8.4f %7.4f ",
			r.info.Name, r.info.TelName, r.info.ObsObject, r.info.ObsDate,
			r.n, el, r.sol[0], r.sol[1], r.sol[2],
			r.phase.RMS(), r.phase.Ruze())
		for _, s := range r.info.SNR {
			fmt.Printf(" %6.1f", s)
		}
		fmt.Println()
	}
}

// tabGrav treats the runs as an elevation campaign: each phase map is
// sampled at the actuator positions and the gravitational deformation
// model is fit per Zernike coefficient.
func tabGrav(runs []*run) {
	surf := actuator.Effelsberg(runs[0].info.Wavel)
	alpha := make([]unit.Angle, len(runs))
	grids := make([]actuator.Grid, len(runs))
	for i, r := range runs {
		if r.info.TelName != "effelsberg" {
			log.Println("warning:", r.info.Name, "is not an effelsberg run")
		}
		if r.info.Wavel != surf.Wavel {
			log.Println("warning:", r.info.Name, "wavelength differs from", runs[0].info.Name)
		}
		alpha[i] = unit.AngleFromDeg(r.info.MeanEl)
		grids[i] = surf.SampleMap(r.phase)
	}
	G, _, err := surf.FitAll(grids, alpha)
	if err != nil {
		log.Fatalln("gravitational fit:", err)
	}

	fmt.Printf("Gravitational deformation model of %d runs, wavel %.6g m\n",
		len(runs), surf.Wavel)
	fmt.Println("K(alpha) = G0 sin(alpha) + G1 cos(alpha) + G2")
	fmt.Println()
	fmt.Printf("%9s %10s %10s %10s\n", "K", "G0", "G1", "G2")
	for j, ln := range zernike.Indices(surf.Order) {
		fmt.Printf("%9s %10.5f %10.5f %10.5f\n",
			fmt.Sprintf("K(%d, %d)", ln.N, ln.L), G[j][0], G[j][1], G[j][2])
	}

	if lookupFile != "" {
		fmt.Println("\nWriting", lookupFile)
		if err := actuator.WriteLookup(lookupFile, surf.MakeLookup(G)); err != nil {
			log.Fatalln(err)
		}
	}
}
