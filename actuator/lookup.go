// Public domain.

package actuator

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"
)

// LookupElevations are the elevation columns of an active-surface
// lookup table, degrees.
var LookupElevations = []float64{7, 10, 20, 30, 32, 40, 50, 60, 70, 80, 90}

// Lookup is a full active-surface lookup table: one displacement grid
// in µm per lookup elevation.
type Lookup struct {
	Alpha []unit.Angle
	Disp  []Grid
}

// NewLookup returns a zero table over the standard lookup elevations.
func NewLookup() *Lookup {
	alpha := make([]unit.Angle, len(LookupElevations))
	for i, d := range LookupElevations {
		alpha[i] = unit.AngleFromDeg(d)
	}
	return &Lookup{Alpha: alpha, Disp: make([]Grid, len(LookupElevations))}
}

// ReadLookup parses a lookup table in the active-surface control
// format.  Each actuator takes one row, ring by ring,
//
//	NR <k> ffff <displacements>
//
// with one µm column per lookup elevation.
func ReadLookup(path string) (*Lookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lk := NewLookup()
	sc := bufio.NewScanner(f)
	k := 0
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if k == NumActuators {
			return nil, fmt.Errorf("%s: more than %d actuator rows", path, NumActuators)
		}
		if fields[0] != "NR" || len(fields) != 3+len(LookupElevations) {
			return nil, fmt.Errorf("%s: bad actuator row %d", path, k+1)
		}
		for j, fs := range fields[3:] {
			v, err := strconv.ParseFloat(fs, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %v", path, k+1, err)
			}
			lk.Disp[j][k/Azimuths][k%Azimuths] = v
		}
		k++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if k != NumActuators {
		return nil, fmt.Errorf("%s: %d actuator rows, want %d", path, k, NumActuators)
	}
	return lk, nil
}

// WriteLookup writes the table in the active-surface control format,
// displacements rounded to integer µm.
func WriteLookup(path string, lk *Lookup) error {
	if len(lk.Disp) != len(LookupElevations) {
		return fmt.Errorf("%d displacement grids, want %d", len(lk.Disp), len(LookupElevations))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for k := 0; k < NumActuators; k++ {
		fmt.Fprintf(w, "NR %d ffff ", k+1)
		for j := range lk.Disp {
			if j > 0 {
				w.WriteString("  ")
			}
			fmt.Fprintf(w, "%d", int(math.Round(lk.Disp[j][k/Azimuths][k%Azimuths])))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
