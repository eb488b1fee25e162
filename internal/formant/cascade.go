package formant

import (
	"math"

	"github.com/tgeczy/speechbox/internal/dsp"
	"github.com/tgeczy/speechbox/internal/frame"
)

// Cascade is the six-formant serial resonator chain plus the nasal
// antiresonator/resonator pair, processed in fixed high-to-low order
// (F6→F1) per the tuning the phoneme tables assume.
type Cascade struct {
	sampleRate float64

	r1          *dsp.PitchSyncResonator
	r2, r3, r4, r5, r6 *dsp.Resonator
	rN0, rNP    *dsp.Resonator

	bwScale float64
}

// NewCascade creates a cascade bank for the given sample rate.
func NewCascade(sampleRate int) *Cascade {
	return &Cascade{
		sampleRate: float64(sampleRate),
		r1:         dsp.NewPitchSyncResonator(sampleRate),
		r2:         dsp.NewResonator(sampleRate),
		r3:         dsp.NewResonator(sampleRate),
		r4:         dsp.NewResonator(sampleRate),
		r5:         dsp.NewResonator(sampleRate),
		r6:         dsp.NewResonator(sampleRate),
		rN0:        dsp.NewAntiResonator(sampleRate),
		rNP:        dsp.NewResonator(sampleRate),
		bwScale:    1.0,
	}
}

// Reset clears all resonator delay-line state.
func (c *Cascade) Reset() {
	c.r1.Reset()
	c.r2.Reset()
	c.r3.Reset()
	c.r4.Reset()
	c.r5.Reset()
	c.r6.Reset()
	c.rN0.Reset()
	c.rNP.Reset()
}

// Decay drains residual ringing across all cascade sections.
func (c *Cascade) Decay(factor float64) {
	c.r1.Decay(factor)
	c.r2.Decay(factor)
	c.r3.Decay(factor)
	c.r4.Decay(factor)
	c.r5.Decay(factor)
	c.r6.Decay(factor)
	c.rN0.Decay(factor)
	c.rNP.Decay(factor)
}

// SetPitchSyncParams configures F1's open-phase frequency/bandwidth deltas
// from VoicingTone.
func (c *Cascade) SetPitchSyncParams(deltaF1Hz, deltaB1Hz float64) {
	c.r1.SetPitchSyncParams(deltaF1Hz, deltaB1Hz)
}

// SetBwScale sets the global cascade bandwidth multiplier, clamped to
// [0.3, 2.0].
func (c *Cascade) SetBwScale(scale float64) {
	c.bwScale = dsp.Clamp(scale, 0.3, 2.0)
}

// nyquistFade computes the Nyquist-proximity crossfade factor applied to
// F4/F5/F6: 1.0 below 0.65·nyquist, 0.0 above 0.85·nyquist, linear between.
func (c *Cascade) nyquistFade(cf float64) float64 {
	nyquist := 0.5 * c.sampleRate
	if cf <= 0 || math.IsNaN(cf) {
		return 1
	}
	ratio := cf / nyquist
	if ratio < 0.65 {
		return 1
	}
	if ratio > 0.85 {
		return 0
	}
	return 1 - (ratio-0.65)/0.20
}

// Next advances the cascade by one sample, given the current frame, its
// optional FrameEx (for sweep-aware bandwidth widening), whether the
// glottis is currently open (for F1's pitch-sync treatment), and the
// pre-gained source input.
func (c *Cascade) Next(fr *frame.Frame, ex *frame.FrameEx, glottisOpen bool, input float64) float64 {
	input /= 2.0

	n0 := c.rN0.Resonate(input, fr.CfN0, fr.CbN0, true)
	output := dsp.FadeValue(input, c.rNP.Resonate(n0, fr.CfNP, fr.CbNP, true), fr.CaNP)

	cb1, cb2, cb3 := fr.Cb1, fr.Cb2, fr.Cb3
	if ex != nil {
		if !math.IsNaN(ex.EndCf1) {
			cb1 = bandwidthForSweep(fr.Cf1, cb1, sweepQMaxF1, sweepBwMinF1, sweepBwMax)
		}
		if !math.IsNaN(ex.EndCf2) {
			cb2 = bandwidthForSweep(fr.Cf2, cb2, sweepQMaxF2, sweepBwMinF2, sweepBwMax)
		}
		if !math.IsNaN(ex.EndCf3) {
			cb3 = bandwidthForSweep(fr.Cf3, cb3, sweepQMaxF3, sweepBwMinF3, sweepBwMax)
		}
	}
	cb1 *= c.bwScale
	cb2 *= c.bwScale
	cb3 *= c.bwScale
	cb4 := fr.Cb4 * c.bwScale
	cb5 := fr.Cb5 * c.bwScale
	cb6 := fr.Cb6 * c.bwScale

	preR6 := output
	output = c.r6.Resonate(output, fr.Cf6, cb6, true)
	output = preR6 + c.nyquistFade(fr.Cf6)*(output-preR6)

	preR5 := output
	output = c.r5.Resonate(output, fr.Cf5, cb5, true)
	output = preR5 + c.nyquistFade(fr.Cf5)*(output-preR5)

	preR4 := output
	output = c.r4.Resonate(output, fr.Cf4, cb4, true)
	output = preR4 + c.nyquistFade(fr.Cf4)*(output-preR4)

	output = c.r3.Resonate(output, fr.Cf3, cb3, true)
	output = c.r2.Resonate(output, fr.Cf2, cb2, true)
	output = c.r1.Resonate(output, fr.Cf1, cb1, glottisOpen)
	return output
}
