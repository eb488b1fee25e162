// Package formant implements the cascade and parallel resonator banks that
// shape the glottal source and noise excitation into vowels, nasals and
// fricatives, plus the per-sample WaveGenerator that orchestrates source,
// banks, adaptive noise filtering, DC-blocking and the output high-shelf.
package formant
