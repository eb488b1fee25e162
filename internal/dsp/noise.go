package dsp

import "math"

// FastRandom is a small deterministic xorshift PRNG, seeded independently
// per Player so per-cycle jitter/shimmer sampling is reproducible across
// runs rather than drawing from process-global randomness. Matches the
// reference implementation's dedicated FastRandom (seed 98765).
type FastRandom struct {
	state uint64
}

// NewFastRandom creates a generator with the given seed. A zero seed is
// remapped to the reference implementation's default (98765) since a
// zero-state xorshift never advances.
func NewFastRandom(seed uint64) *FastRandom {
	if seed == 0 {
		seed = 98765
	}
	return &FastRandom{state: seed}
}

// Next returns the next pseudo-random uint64.
func (f *FastRandom) Next() uint64 {
	f.state ^= f.state << 13
	f.state ^= f.state >> 7
	f.state ^= f.state << 17
	return f.state
}

// Float64 returns a uniform value in [0,1).
func (f *FastRandom) Float64() float64 {
	return float64(f.Next()>>11) / float64(1<<53)
}

// Uniform returns a uniform value in [lo, hi).
func (f *FastRandom) Uniform(lo, hi float64) float64 {
	return lo + f.Float64()*(hi-lo)
}

// NoiseGenerator produces white noise in [-1, 1] for frication/aspiration
// excitation, using the same per-handle FastRandom as jitter/shimmer so
// the whole engine is reproducible for a given seed.
type NoiseGenerator struct {
	rng *FastRandom
}

// NewNoiseGenerator creates a white noise source seeded from rng.
func NewNoiseGenerator(rng *FastRandom) *NoiseGenerator {
	return &NoiseGenerator{rng: rng}
}

// Next returns the next noise sample in [-1, 1].
func (n *NoiseGenerator) Next() float64 {
	return n.rng.Uniform(-1, 1)
}

// FreqGenerator is a phase accumulator driving F0/vibrato oscillators. Phase
// is held in [0,1); callers detect glottal-cycle wrap by observing phase
// decrease between calls.
type FreqGenerator struct {
	sampleRate float64
	phase      float64
}

// NewFreqGenerator creates a phase accumulator for the given sample rate.
func NewFreqGenerator(sampleRate int) *FreqGenerator {
	return &FreqGenerator{sampleRate: float64(sampleRate)}
}

// Advance steps the phase by freqHz/sampleRate, wrapping into [0,1), and
// reports whether the cycle wrapped (phase decreased).
func (g *FreqGenerator) Advance(freqHz float64) (phase float64, wrapped bool) {
	prev := g.phase
	g.phase += freqHz / g.sampleRate
	g.phase = math.Mod(g.phase, 1.0)
	if g.phase < 0 {
		g.phase += 1.0
	}
	return g.phase, g.phase < prev
}

// Phase returns the current phase without advancing.
func (g *FreqGenerator) Phase() float64 { return g.phase }

// Reset zeroes the phase accumulator.
func (g *FreqGenerator) Reset() { g.phase = 0 }
