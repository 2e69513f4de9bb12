/*
Command ooftab summarizes out-of-focus holography fit results.

The oof command leaves one directory per fitted observation, holding
the fitted parameters, phase-error maps and a YAML run summary.
ooftab walks those directories and prints one table row per run, and
can reduce a whole elevation campaign to the gravitational deformation
model of the active surface.

  Usage: ooftab [options] <run dir>...
    -g=false: fit the gravitational deformation model across the runs
    -lookup="": with -g, write an active-surface lookup table
    -n=0: Zernike order to tabulate, 0 for the highest stored
    -v=false: display version and copyright

A command line argument may name a run directory itself or a parent
directory, such as oof_out, whose children are run directories.
Arguments under which no run summary is found are ignored with a note.

Table mode

The default output holds one row per run: observation name, telescope,
object, date, mean elevation, the fitted illumination parameters
i_amp, c_dB and q, the phase-error rms in radians, the corresponding
Ruze efficiency factor, and the signal to noise ratio of each beam
map.  The rms and efficiency are recomputed from the stored phase map
rather than trusted from the run summary, so the table also serves as
a quick integrity check of the stored files.

By default each run is tabulated at the highest Zernike order it
stores.  The -n option pins a single order instead, which is the fair
way to compare runs fitted to different maximum orders.

Campaign mode

With -g the runs are treated as one observing campaign spanning a
range of elevations, normally the same source fitted every few degrees
as it rises or sets.  Each stored phase map is sampled at the actuator
positions of the Effelsberg active surface and reduced to Zernike
coefficients, and each coefficient is then fit across elevation with
the three term gravitational model

  K(alpha) = G0 sin(alpha) + G1 cos(alpha) + G2

The output is one row per Zernike polynomial with the three G
coefficients.  At least three distinct elevations are required.

With -lookup the fitted model is projected back onto the standard
lookup elevations and written as an active-surface lookup table, one
row per actuator with one integer displacement column in µm per
elevation.
*/
package main
