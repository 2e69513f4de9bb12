/*
Command oofsim generates synthetic out-of-focus observations.

The program evaluates the forward beam model for a known set of
illumination and Zernike circle coefficients and stores the resulting
beam maps as a FITS file in the layout the oof command reads, together
with a YAML file recording the ground truth.  Generated data is the
standard way to exercise the fitting pipeline end to end: fit the
generated file and compare the recovered coefficients against the
truth file.

Usage

Command line options:

  oofsim                  Generate one observation with built-in defaults.
  oofsim -v               Display version and copyright.
  oofsim -s scenario.yml  Generate from a YAML scenario.
  oofsim -o dir           Write under dir instead of the current directory.

Scenario

The YAML scenario file may set any of the keys below.  Omitted keys
keep their defaults.

  telescope:    effelsberg (default) or manual
  pr, sr:       manual dish and central blockage radii, m
  leg_width:    manual strut half width, m
  leg_length:   manual strut length, m
  f1, focal:    manual primary and effective focal lengths, m
  wavel:        wavelength, m
  d_z:          radial defocus list, m
  illumination: parabolic (default) or gauss
  i_coeff:      [i_amp, c_dB, q, x_0, y_0]
  k_coeff:      Zernike circle coefficients; empty draws them
  order:        Zernike order for drawn coefficients
  k_bound:      drawn coefficients are uniform in ±k_bound
  noise:        Gaussian noise sigma, normalized power units
  resolution:   FFT grid size per axis
  box_factor:   aperture plane size, primary radii
  meanel:       mean elevation, degrees
  obs_object:   OBJECT header value
  obs_date:     DATE_OBS header value; empty takes the current time
  seed:         PCG seed; 0 seeds from the clock
  count:        number of observations to generate

Output

Files are written under data_generated in the output directory, named
test000.fits, test001.fits, and so on past existing files.  Each FITS
file gets a matching testNNN.yml recording the scenario and the exact
coefficients used, including drawn ones.
*/
package main
