/*
Command oof recovers aperture phase-error maps from out-of-focus beam maps.

Contents

Version 0.1

  Program overview
  Command line usage
  Fit configuration
  File formats
  Algorithm outline


Program overview

Pointed at a compact source, a radio telescope measures a beam map, the
power received as a function of small pointing offsets from the source.
A map taken in focus constrains the magnitude of the aperture field but
says almost nothing about its phase: very different phase-error
distributions produce nearly identical in-focus beams.  Defocusing the
telescope by a known axial offset mixes phase information into the
power pattern in a characteristic way.  Fitting a physical model of the
telescope jointly against an in-focus map and two defocused maps
recovers the phase-error distribution across the dish.  The technique
is known as out-of-focus holography.

Input is one FITS file per observation, each holding the same source
mapped at a negative axial defocus, in focus, and at a positive
defocus.  Output for each file is a run directory holding fitted
illumination and Zernike circle polynomial coefficients, the recovered
aperture phase-error map, residuals and error estimates, and a one line
summary on standard output.

Sample run:

  $ oof test000.fits
  oof version 0.1 Go source.
  name          n   rms rad    eta    elapsed  run dir
  test000       5    0.3017 0.9130      1.02s  oof_out/test000-000

The rms column is the root mean square of the recovered phase error in
radians over the dish, piston and tilt removed, at the highest order
fit.  eta is the Ruze random-surface-error efficiency computed from
that rms; it estimates the fraction of aperture efficiency the
telescope retains under the measured deformation.  A phase rms
approaching a radian means the dish is badly out of figure at the
observing wavelength and eta drops accordingly.

The recovered phase map is the quantity of interest for an active
surface: it says where the dish is high and where it is low.  The
companion command ooftab turns a campaign of runs at different
elevations into actuator corrections; the companion command oofsim
generates synthetic observations with known coefficients.  See

  go doc github.com/radioholo/oof/ooftab
  go doc github.com/radioholo/oof/oofsim


Command line usage

  Usage: oof [options] <fitsfile>...    fit the beam maps in each file
         oof -h                         display help and quick reference
         oof -v                         display version and copyright

  Options:
         -c <config-file>   fit parameter configuration, YAML
         -n <order>         maximum Zernike order, default 5
         -r <resolution>    FFT grid size, default 256
         -b <box-factor>    aperture grid size over primary radius, default 5
         -i <illumination>  parabolic (default) or gauss
         -e                 Effelsberg FITS layout
         -o <dir>           output parent directory, default oof_out
         -p                 write diagnostic plots
         -w <workers>       concurrent files, default GOMAXPROCS
         -previous=false    each order starts from scratch

Files are fit concurrently up to the worker limit, but summary lines
print in command line order.

The -n option sets the highest Zernike order.  The program always fits
every order from 1 up to the maximum and stores results for each, so a
run directory shows how the solution develops as more degrees of
freedom are allowed.  By default each order starts from the previous
order's solution, which is both faster and less likely to wander off to
a secondary minimum; -previous=false makes every order start from the
configured initial values instead.  Order 5, 21 polynomials, is enough
for the large scale gravitational and thermal deformations the
technique is normally used to measure.

The -r and -b options control the numerical aperture model.  The
aperture plane is sampled on a resolution x resolution grid spanning
box-factor primary radii; the FFT of that grid is the model beam.  The
defaults reproduce published reductions.  Raising the resolution
sharpens the beam-space sampling but the fit cost grows quickly.

The -e option reads files in the layout written by the Effelsberg
observatory rather than the standard layout described below.


Fit configuration

The model parameter vector for order n is

  index 0..4    i_amp, c_dB, q, x_0, y_0   illumination
  index 5..     K(0, 0), K(1, -1), K(1, 1), K(2, -2), ...

with the Zernike coefficients in the standard ladder order of the
polynomials.  The -c option names a YAML file with three keys:

  excluded   parameter indices held out of the fit
  fixed      values for the held parameters (i_amp, c_dB, q, x_0, y_0, K)
  init       starting values for the free parameters

Without -c, the defaults hold the illumination amplitude fixed at 1 and
the piston coefficient K(0, 0) fixed at 0.  Neither parameter is
measurable from peak-normalized power patterns: scaling the aperture
field and adding a constant phase both leave the normalized pattern
unchanged, and fitting them anyway only feeds the optimizer a flat
direction.  Exclude further parameters when an instrument leaves them
degenerate, for example the pointing offsets x_0, y_0 when maps are
recentered upstream.  An example configuration:

  excluded: [0, 1, 2, 5]
  fixed:
    i_amp: 1
    c_dB: -14.5
    q: 2
  init:
    x_0: 0.001


File formats

The standard observation layout is a FITS file with primary header
keys

  FREQ      observation frequency, Hz
  WAVEL     wavelength, m
  MEANEL    mean elevation during the observation, degrees
  OBJECT    source name
  DATE_OBS  observation date
  NMAPS     number of beam maps

followed by NMAPS binary table extensions in defocus order, each with
header key DZ (the radial defocus in meters, negative, zero, positive)
and columns U, V, BEAM: the beam coordinates in radians and the
measured power.  Column types D and E are both accepted.  The oofsim
command writes this layout.

With -e the program instead expects the Effelsberg layout: tables at
HDU positions 3, 1, 2 for the minus, zero and plus defocus maps, with
columns DX, DY, fnu, and the wavelength derived from FREQ.

Each fit leaves a run directory <out>/<name>-NNN where <name> is the
FITS file name without extension and NNN counts up past existing runs.
It contains

  oof_info.yml     run summary: telescope, source, elevation,
                   wavelength, defocus offsets, grid settings,
                   signal to noise per map, elapsed time
  beam_data.csv    normalized beam data, one row per map
  u_data.csv       beam u coordinates, radians, one row per map
  v_data.csv       beam v coordinates, radians, one row per map
  fitpar_nN.csv    named parameters for order N, fitted and initial
  res_nN.csv       residual vector at the solution
  jac_nN.csv       Jacobian at the solution
  grad_nN.csv      gradient at the solution
  cov_nN.csv       variance-covariance matrix, free indices first
  corr_nN.csv      correlation matrix, free indices first
  phase_nN.csv     recovered phase-error map, radians
  plots/           diagnostic PNGs with -p

Apart from the parameter tables, which are CSV, the stored arrays are
plain text: one # header line, then rows of space separated values in
full precision.


Algorithm outline

1.  Each beam map is normalized by its peak so the maps of one
observation share a scale.  A signal to noise figure is estimated per
map from the scatter of the below-median samples.

2.  The aperture field is modeled as B(x,y) Ea(x,y) exp(i phi(x,y) +
i delta(x,y,dz) 2 pi/wavel).  B is the telescope blockage, zero where
the support legs and the subreflector shadow the dish.  Ea is the
illumination taper.  phi is the phase error, expanded in Zernike circle
polynomials over the unit disk with coefficients K.  delta is the
optical path difference a defocus dz adds at each aperture point, fixed
by the telescope geometry.

3.  The model beam is the power of the 2-D FFT of the aperture field,
peak normalized like the data.  One aperture grid serves all maps of an
observation; only the defocus term differs per map.

4.  Model power is interpolated bilinearly at each observed (u, v)
sample and subtracted from the observed power, giving one residual
vector across all maps.

5.  For each order 1 up to the maximum, the free parameters minimize
the sum of squared residuals under BFGS with finite difference
gradients.  Held parameters keep their configured values.

6.  At each solution the Jacobian is evaluated by central differences.
The residual variance scales its normal-equations inverse into a
variance-covariance matrix, from which the correlation matrix follows.
Singular cases, a rank deficient Jacobian or fewer residuals than
parameters, leave the matrices out of the run directory.

7.  The phase-error map is rendered from the Zernike coefficients with
piston and tilt removed, and its rms over the dish gives the Ruze
efficiency estimate printed in the summary line.

-------------
Public domain 2026.
*/
package main
