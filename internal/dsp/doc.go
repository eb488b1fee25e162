// Package dsp implements the low-level signal processing sections shared by
// the glottal source and the formant resonator banks: two-pole resonators,
// two-zero antiresonators, one-pole smoothing filters, a biquad high-shelf
// and a small deterministic PRNG for jitter/shimmer sampling.
//
// Every section exposes reset/decay so that a Player can drain ringing state
// between utterances without reallocating. None of these types are safe for
// concurrent use; callers needing independent state create independent
// instances, matching the rest of this module.
package dsp
