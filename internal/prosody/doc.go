// Package prosody computes per-token timing and pitch contour: base
// durations by phoneme class with stress/context modifiers, and one of
// four selectable F0 models (eSpeak-ToBI, legacy time-based, Fujisaki-
// Bartman, Klatt hat pattern), plus a tone contour overlay for tonal
// languages.
package prosody
