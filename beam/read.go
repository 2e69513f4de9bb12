// Public domain.

package beam

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/siravan/fits"
	"github.com/soniakeys/unit"
)

// Read loads an observation in the standard layout: primary header
// keys FREQ, WAVEL, MEANEL, OBJECT, DATE_OBS, NMAPS, then one binary
// table HDU per map in d_z order, each with header key DZ and columns
// U, V, BEAM.  Column types D and E are both accepted.
func Read(path string) (*Data, error) {
	hdus, name, err := open(path)
	if err != nil {
		return nil, err
	}
	p := hdus[0]
	d := &Data{Name: name}
	if d.Freq, err = headerFloat(p, "FREQ"); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if d.Wavel, err = headerFloat(p, "WAVEL"); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	meanel, err := headerFloat(p, "MEANEL")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	d.MeanEl = unit.AngleFromDeg(meanel)
	if d.Object, err = headerString(p, "OBJECT"); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if d.Date, err = headerString(p, "DATE_OBS"); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	nmaps, err := headerInt(p, "NMAPS")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if noise, err := headerFloat(p, "NOISE"); err == nil {
		d.Noise = noise
	}
	if len(hdus) < nmaps+1 {
		return nil, fmt.Errorf("%s: NMAPS is %d but file has %d extension HDUs",
			name, nmaps, len(hdus)-1)
	}
	for i := 1; i <= nmaps; i++ {
		m, err := readMap(hdus[i], "U", "V", "BEAM")
		if err != nil {
			return nil, fmt.Errorf("%s HDU %d: %w", name, i, err)
		}
		d.Maps = append(d.Maps, m)
	}
	return d, nil
}

// ReadEffelsberg loads an observation written by the Effelsberg
// observatory: tables at HDU positions 3, 1, 2 (minus, zero, plus
// defocus) with columns DX, DY, fnu, and the wavelength derived from
// FREQ.
func ReadEffelsberg(path string) (*Data, error) {
	hdus, name, err := open(path)
	if err != nil {
		return nil, err
	}
	p := hdus[0]
	d := &Data{Name: name}
	if d.Freq, err = headerFloat(p, "FREQ"); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	d.Wavel = lightSpeed / d.Freq
	meanel, err := headerFloat(p, "MEANEL")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	d.MeanEl = unit.AngleFromDeg(meanel)
	if d.Object, err = headerString(p, "OBJECT"); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if d.Date, err = headerString(p, "DATE_OBS"); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(hdus) < 4 {
		return nil, fmt.Errorf("%s: want 3 table HDUs, have %d", name, len(hdus)-1)
	}
	for _, i := range []int{3, 1, 2} {
		m, err := readMap(hdus[i], "DX", "DY", "fnu")
		if err != nil {
			return nil, fmt.Errorf("%s HDU %d: %w", name, i, err)
		}
		d.Maps = append(d.Maps, m)
	}
	return d, nil
}

func open(path string) ([]*fits.Unit, string, error) {
	if filepath.Ext(path) != ".fits" {
		return nil, "", fmt.Errorf("%s: not a FITS file", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	hdus, err := fits.Open(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	if len(hdus) == 0 {
		return nil, "", fmt.Errorf("%s: no HDUs", path)
	}
	return hdus, strings.TrimSuffix(filepath.Base(path), ".fits"), nil
}

func readMap(u *fits.Unit, ucol, vcol, bcol string) (Map, error) {
	if !u.HasTable() {
		return Map{}, fmt.Errorf("not a table HDU")
	}
	rows := u.Naxis[1]
	dz, err := headerFloat(u, "DZ")
	if err != nil {
		return Map{}, err
	}
	m := Map{Dz: dz}
	if m.U, err = columnFloats(u, ucol, rows); err != nil {
		return Map{}, err
	}
	if m.V, err = columnFloats(u, vcol, rows); err != nil {
		return Map{}, err
	}
	if m.Beam, err = columnFloats(u, bcol, rows); err != nil {
		return Map{}, err
	}
	if p, err := columnFloats(u, "POWER", rows); err == nil {
		m.Power = p
	}
	return m, nil
}

// headerFloat reads a numeric key.  FITS integers count: a value
// written without a decimal point parses as int.
func headerFloat(u *fits.Unit, key string) (float64, error) {
	switch v := u.Keys[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, fmt.Errorf("missing FITS key %s", key)
}

func headerInt(u *fits.Unit, key string) (int, error) {
	switch v := u.Keys[key].(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	}
	return 0, fmt.Errorf("missing FITS key %s", key)
}

func headerString(u *fits.Unit, key string) (string, error) {
	if s, ok := u.Keys[key].(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("missing FITS key %s", key)
}

func columnFloats(u *fits.Unit, name string, rows int) ([]float64, error) {
	fn := u.Field(name)
	out := make([]float64, rows)
	for i := range out {
		switch v := fn(i).(type) {
		case float64:
			out[i] = v
		case float32:
			out[i] = float64(v)
		default:
			return nil, fmt.Errorf("missing column %s", name)
		}
	}
	return out, nil
}
