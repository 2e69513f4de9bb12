// Public domain.

package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/radioholo/oof/aperture"
	"github.com/radioholo/oof/beam"
	"github.com/radioholo/oof/telgeo"
	"github.com/radioholo/oof/zernike"
	"github.com/soniakeys/unit"
	"gopkg.in/yaml.v3"
)

const versionString = "oofsim version 0.1 Go source."
const copyrightString = "Public domain."
const genDir = "data_generated"

type fatal struct {
	err error
}

func exit(err error) {
	panic(fatal{err})
}

func handleFatal() {
	if err := recover(); err != nil {
		if f, ok := err.(fatal); ok {
			log.Fatal(f.err)
		}
		panic(err)
	}
}

// scenario is the YAML surface of the simulator.  The zero value of a
// key means "take the default".
type scenario struct {
	Telescope  string    `yaml:"telescope"`
	Pr         float64   `yaml:"pr"`
	Sr         float64   `yaml:"sr"`
	LegWidth   float64   `yaml:"leg_width"`
	LegLength  float64   `yaml:"leg_length"`
	F1         float64   `yaml:"f1"`
	Focal      float64   `yaml:"focal"`
	Wavel      float64   `yaml:"wavel"`
	Dz         []float64 `yaml:"d_z"`
	Illum      string    `yaml:"illumination"`
	ICoeff     []float64 `yaml:"i_coeff"`
	KCoeff     []float64 `yaml:"k_coeff"`
	Order      int       `yaml:"order"`
	KBound     float64   `yaml:"k_bound"`
	Noise      float64   `yaml:"noise"`
	Resolution int       `yaml:"resolution"`
	BoxFactor  float64   `yaml:"box_factor"`
	MeanEl     float64   `yaml:"meanel"`
	Object     string    `yaml:"obs_object"`
	Date       string    `yaml:"obs_date"`
	Seed       uint64    `yaml:"seed"`
	Count      int       `yaml:"count"`
}

// defaults match the canonical Effelsberg example: 32 GHz band,
// ±2.2 cm defocus, tapered parabolic illumination.
func defaultScenario() scenario {
	return scenario{
		Telescope:  "effelsberg",
		Wavel:      0.0093685143125,
		Dz:         []float64{-0.022, 0, 0.022},
		Illum:      "parabolic",
		ICoeff:     []float64{1, -14.5, 2, 0, 0},
		Order:      5,
		KBound:     0.1,
		Resolution: 256,
		BoxFactor:  5,
		MeanEl:     45,
		Object:     "simulation",
		Count:      1,
	}
}

func (sc scenario) telescope() (telgeo.Telescope, error) {
	switch sc.Telescope {
	case "", "effelsberg":
		return telgeo.Effelsberg(unit.AngleFromDeg(sc.MeanEl)), nil
	case "manual":
		pr := sc.Pr
		if pr == 0 {
			pr = 50
		}
		f1, F := sc.F1, sc.Focal
		if f1 == 0 {
			f1 = 30
		}
		if F == 0 {
			F = 387.66
		}
		return telgeo.Telescope{
			Block:  telgeo.Manual(pr, sc.Sr, sc.LegWidth, sc.LegLength),
			Delta:  telgeo.ManualDelta(f1, F),
			Radius: pr,
			Name:   "manual",
		}, nil
	}
	return telgeo.Telescope{}, fmt.Errorf("unknown telescope %q", sc.Telescope)
}

// truth records the ground-truth parameters beside the FITS file.
type truth struct {
	Name       string    `yaml:"name"`
	TelName    string    `yaml:"tel_name"`
	Illum      string    `yaml:"illumination"`
	Wavel      float64   `yaml:"wavel"`
	Dz         []float64 `yaml:"d_z"`
	ICoeff     []float64 `yaml:"i_coeff"`
	KCoeff     []float64 `yaml:"k_coeff"`
	Noise      float64   `yaml:"noise"`
	Resolution int       `yaml:"fft_resolution"`
	BoxFactor  float64   `yaml:"box_factor"`
	MeanEl     float64   `yaml:"meanel"`
	Seed       uint64    `yaml:"seed"`
}

func main() {
	defer handleFatal()

	flag.Usage = func() {
		os.Stderr.WriteString(`Usage:
  oofsim                  Generate one observation with built-in defaults.
  oofsim -v               Display version and copyright.
  oofsim -s scenario.yml  Generate from a YAML scenario.
  oofsim -o dir           Write under dir instead of the current directory.

For full documentation:
   go doc github.com/radioholo/oof/oofsim
`)
	}
	scPath := flag.String("s", "", "YAML scenario file")
	workDir := flag.String("o", ".", "output directory")
	vers := flag.Bool("v", false, "display version and copyright")
	flag.Parse()
	if *vers {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	}
	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(1)
	}

	sc := defaultScenario()
	if *scPath != "" {
		raw, err := os.ReadFile(*scPath)
		if err != nil {
			exit(err)
		}
		if err = yaml.Unmarshal(raw, &sc); err != nil {
			exit(fmt.Errorf("%s: %v", *scPath, err))
		}
	}
	if len(sc.Dz) == 0 {
		exit(fmt.Errorf("scenario has no d_z offsets"))
	}
	illum, err := aperture.ByName(sc.Illum)
	if err != nil {
		exit(err)
	}
	tel, err := sc.telescope()
	if err != nil {
		exit(err)
	}
	if sc.Date == "" {
		sc.Date = time.Now().UTC().Format("2006-01-02T15:04:05")
	}

	src := rand.NewPCG(rand.Uint64(), rand.Uint64())
	if sc.Seed != 0 {
		src = rand.NewPCG(sc.Seed, 0)
	}
	rng := rand.New(src)

	dir := filepath.Join(*workDir, genDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		exit(err)
	}

	for c := 0; c < sc.Count; c++ {
		K := sc.KCoeff
		if len(K) == 0 {
			K = make([]float64, zernike.Count(sc.Order))
			for j := range K {
				K[j] = sc.KBound * (2*rng.Float64() - 1)
			}
		}
		d := beam.Sim{
			Tel:        tel,
			Illum:      illum,
			Wavel:      sc.Wavel,
			Dz:         sc.Dz,
			K:          K,
			I:          sc.ICoeff,
			Noise:      sc.Noise,
			Resolution: sc.Resolution,
			BoxFactor:  sc.BoxFactor,
			MeanEl:     unit.AngleFromDeg(sc.MeanEl),
			Object:     sc.Object,
			Date:       sc.Date,
			Src:        src,
		}.Simulate()
		base := nextName(dir)
		d.Name = base

		path := filepath.Join(dir, base+".fits")
		fmt.Println("Writing", path)
		if err := beam.Write(path, d); err != nil {
			exit(err)
		}
		raw, err := yaml.Marshal(truth{
			Name:       base,
			TelName:    tel.Name,
			Illum:      illum.Name,
			Wavel:      sc.Wavel,
			Dz:         sc.Dz,
			ICoeff:     sc.ICoeff,
			KCoeff:     K,
			Noise:      sc.Noise,
			Resolution: sc.Resolution,
			BoxFactor:  sc.BoxFactor,
			MeanEl:     sc.MeanEl,
			Seed:       sc.Seed,
		})
		if err != nil {
			exit(err)
		}
		if err = os.WriteFile(filepath.Join(dir, base+".yml"), raw, 0o644); err != nil {
			exit(err)
		}
	}
}

// nextName returns the first testNNN base name with no FITS file in
// dir yet.
func nextName(dir string) string {
	for i := 0; ; i++ {
		base := fmt.Sprintf("test%03d", i)
		if _, err := os.Stat(filepath.Join(dir, base+".fits")); os.IsNotExist(err) {
			return base
		}
	}
}
