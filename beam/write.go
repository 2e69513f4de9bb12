// Public domain.

package beam

import (
	"fmt"
	"os"

	"github.com/astrogo/fitsio"
)

// tableNames label the canonical three defocus tables.
var tableNames = [3]string{"MINUS OOF", "ZERO OOF", "PLUS OOF"}

type uvbRow struct {
	U    float64 `fits:"U"`
	V    float64 `fits:"V"`
	Beam float64 `fits:"BEAM"`
}

type uvbpRow struct {
	U     float64 `fits:"U"`
	V     float64 `fits:"V"`
	Beam  float64 `fits:"BEAM"`
	Power float64 `fits:"POWER"`
}

// Write stores an observation in the standard layout read by Read,
// with float64 (D) columns.  A map carrying a noise-free Power plane
// gets an extra POWER column.
func Write(path string, d *Data) error {
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()

	f, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer f.Close()

	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return err
	}
	err = phdu.Header().Append(
		fitsio.Card{Name: "FREQ", Value: d.Freq, Comment: "observation frequency, Hz"},
		fitsio.Card{Name: "WAVEL", Value: d.Wavel, Comment: "wavelength, m"},
		fitsio.Card{Name: "MEANEL", Value: d.MeanEl.Deg(), Comment: "mean elevation, deg"},
		fitsio.Card{Name: "OBJECT", Value: d.Object, Comment: "observed object"},
		fitsio.Card{Name: "DATE_OBS", Value: d.Date, Comment: "observation date"},
		fitsio.Card{Name: "NMAPS", Value: len(d.Maps), Comment: "number of beam maps"},
		fitsio.Card{Name: "NOISE", Value: d.Noise, Comment: "simulated noise level"},
	)
	if err != nil {
		return err
	}
	if err := f.Write(phdu); err != nil {
		return err
	}
	for i, m := range d.Maps {
		if err := writeMap(f, tableName(i, len(d.Maps)), m); err != nil {
			return fmt.Errorf("map %d: %w", i, err)
		}
	}
	return nil
}

func tableName(i, n int) string {
	if n == len(tableNames) {
		return tableNames[i]
	}
	return fmt.Sprintf("MAP %d", i)
}

func writeMap(f *fitsio.File, name string, m Map) error {
	cols := []fitsio.Column{
		{Name: "U", Format: "D"},
		{Name: "V", Format: "D"},
		{Name: "BEAM", Format: "D"},
	}
	withPower := len(m.Power) == len(m.Beam) && len(m.Beam) > 0
	if withPower {
		cols = append(cols, fitsio.Column{Name: "POWER", Format: "D"})
	}
	tbl, err := fitsio.NewTable(name, cols, fitsio.BINARY_TBL)
	if err != nil {
		return err
	}
	defer tbl.Close()
	err = tbl.Header().Append(
		fitsio.Card{Name: "DZ", Value: m.Dz, Comment: "radial defocus, m"},
	)
	if err != nil {
		return err
	}
	for r := range m.Beam {
		if withPower {
			err = tbl.Write(&uvbpRow{m.U[r], m.V[r], m.Beam[r], m.Power[r]})
		} else {
			err = tbl.Write(&uvbRow{m.U[r], m.V[r], m.Beam[r]})
		}
		if err != nil {
			return err
		}
	}
	return f.Write(tbl)
}
