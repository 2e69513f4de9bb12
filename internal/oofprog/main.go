// Public domain.

package oofprog

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/radioholo/oof/aperture"
	"github.com/radioholo/oof/beam"
	"github.com/radioholo/oof/fit"
	"github.com/radioholo/oof/internal/oofplot"
	"github.com/radioholo/oof/telgeo"
	"github.com/soniakeys/exit"
)

const versionString = "oof version 0.1 Go source."
const copyrightString = "Public domain."

func Main() {
	defer exit.Handler()

	// these functions set up package vars and terminate on error
	cl := parseCommandLine()
	cfg := readConfig(cl)
	illum, err := aperture.ByName(cl.illum)
	if err != nil {
		exit.Log(err)
	}

	// remainder of main constructs and starts the concurrent parts of
	// the program.

	// prCh keeps processed results in submission order.  It is a
	// buffered channel so that a fast worker can drop off its result
	// without waiting for the workers ahead of it.  The buffer must be
	// at least cl.workers, but otherwise isn't critical.
	prCh := make(chan chan string, cl.workers*2)
	jobCh := make(chan *job)
	errCh := make(chan error)

	// "dispatcher," dispatches files to workers.  For each file,
	// attach a return channel that works like a ticket for picking up
	// the result of processing the file.
	go func() {
		for _, fn := range cl.files {
			rch := make(chan string, 1)
			jobCh <- &job{fn, rch}
			prCh <- rch
		}
		close(prCh)
	}()

	// start the worker goroutines, but only as the dispatcher calls
	// for them.  After all, we may have more cores than files.
	go func() {
		for n := 0; n < cl.workers; n++ {
			j, ok := <-jobCh
			if !ok {
				return
			}
			go work(j, jobCh, cl, cfg, illum, errCh)
		}
	}()

	// column headings, delayed until now to avoid printing column
	// headings only to terminate with an error message if some
	// initialization fails.
	printHeadings()

	// everything is on its way.  Just wait for results and print them
	// as they are available, in submission order.
	for {
		select {
		case err := <-errCh:
			exit.Log(err)
		case rch, ok := <-prCh:
			if !ok {
				return // normal return
			}
			select {
			case err := <-errCh:
				exit.Log(err)
			case r := <-rch:
				fmt.Println(r)
			}
		}
	}
}

type job struct {
	fn  string
	rch chan string
}

// worker process, fits observation files.  The first job to process
// is passed in; more are requested from jobCh.
func work(j *job, jobCh chan *job, cl *commandLine, cfg fit.Config, illum aperture.Illumination, errCh chan error) {
	for ; ; j = <-jobCh {
		line, err := fitFile(j.fn, cl, cfg, illum)
		if err != nil {
			errCh <- fmt.Errorf("%s: %w", j.fn, err)
			return
		}
		j.rch <- line // buffered.  just drop off results and continue
	}
}

// fitFile runs the whole analysis for one observation file and
// returns its summary line.
func fitFile(fn string, cl *commandLine, cfg fit.Config, illum aperture.Illumination) (string, error) {
	var data *beam.Data
	var err error
	if cl.eff {
		data, err = beam.ReadEffelsberg(fn)
	} else {
		data, err = beam.Read(fn)
	}
	if err != nil {
		return "", err
	}

	opts := fit.Options{
		OrderMax:    cl.order,
		Tel:         telgeo.Effelsberg(data.MeanEl),
		Illum:       illum,
		Config:      cfg,
		Resolution:  cl.res,
		BoxFactor:   cl.box,
		FitPrevious: cl.previous,
		OutDir:      cl.out,
	}
	r, err := fit.ZPoly(data, opts)
	if err != nil {
		return "", err
	}
	if cl.plots {
		if err := oofplot.Render(data, r, opts); err != nil {
			return "", err
		}
	}
	b := r.Best()
	return fmt.Sprintf("%-12s %2d %9.4f %6.4f %10s  %s",
		data.Name, b.Order, b.RMS, b.Ruze,
		r.Elapsed.Round(time.Millisecond), r.Dir), nil
}

func printHeadings() {
	fmt.Println(versionString)
	fmt.Printf("%-12s %2s %9s %6s %10s  %s\n",
		"name", "n", "rms rad", "eta", "elapsed", "run dir")
}

type commandLine struct {
	cfg      string  // -c fit config file
	order    int     // -n max Zernike order
	res      int     // -r FFT resolution
	box      float64 // -b box factor
	illum    string  // -i illumination function
	eff      bool    // -e Effelsberg FITS layout
	out      string  // -o output parent directory
	plots    bool    // -p diagnostic plots
	workers  int     // -w
	previous bool
	files    []string
}

func parseCommandLine() *commandLine {
	var cl commandLine
	dh := flag.Bool("h", false, "")
	dv := flag.Bool("v", false, "")
	flag.StringVar(&cl.cfg, "c", "", "")
	flag.IntVar(&cl.order, "n", 5, "")
	flag.IntVar(&cl.res, "r", aperture.DefaultResolution, "")
	flag.Float64Var(&cl.box, "b", aperture.DefaultBoxFactor, "")
	flag.StringVar(&cl.illum, "i", "parabolic", "")
	flag.BoolVar(&cl.eff, "e", false, "")
	flag.StringVar(&cl.out, "o", fit.DefaultOutDir, "")
	flag.BoolVar(&cl.plots, "p", false, "")
	flag.IntVar(&cl.workers, "w", runtime.GOMAXPROCS(0), "")
	flag.BoolVar(&cl.previous, "previous", true, "")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: oof [options] <fitsfile>...    fit the beam maps in each file
       oof -h                         display help and quick reference
       oof -v                         display version and copyright

Options:
       -c <config-file>   fit parameter configuration, YAML
       -n <order>         maximum Zernike order
       -r <resolution>    FFT grid size
       -b <box-factor>    aperture grid size over primary radius
       -i <illumination>  parabolic or gauss
       -e                 Effelsberg FITS layout
       -o <dir>           output parent directory
       -p                 write diagnostic plots
       -w <workers>       concurrent files
       -previous=false    each order starts from scratch
`)
	}
	flag.Parse()
	switch {
	case *dh:
		printHelp()
		os.Exit(0)
	case *dv:
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	case flag.NArg() == 0:
		flag.Usage()
		os.Exit(1)
	}
	cl.files = flag.Args()
	if cl.workers < 1 {
		cl.workers = 1
	}
	if cl.order < 1 {
		exit.Log("maximum order must be at least 1")
	}
	return &cl
}

// readConfig loads the fit parameter configuration, defaults when -c
// is not given.
func readConfig(cl *commandLine) fit.Config {
	if cl.cfg == "" {
		return fit.DefaultConfig()
	}
	cfg, err := fit.LoadConfig(cl.cfg)
	if err != nil {
		exit.Log(err)
	}
	return cfg
}

func printHelp() {
	fmt.Println(`
Oof recovers aperture phase-error maps from out-of-focus beam maps.
Input is a set of FITS observation files, each holding power patterns
of one source observed in focus and at symmetric defocus offsets.  For
each file the program fits illumination and Zernike coefficients order
by order against the maps, writes the run outputs under the output
directory and prints a summary line.

Fit config file keys (YAML):
   excluded   parameter indices held out of the fit
   fixed      values for the held parameters
   init       starting values

Illumination functions:
   parabolic   taper on a pedestal (default)
   gauss       Gaussian taper

For full documentation:
   godoc oof`)
}
