// Package glottal implements the LF-inspired voiced source: a pitch-driven
// glottal flow generator with per-cycle jitter/shimmer, tremor, an additive
// radiation characteristic, spectral tilt, voiced pre-emphasis, and
// turbulence noise gated to the glottal open phase.
package glottal
