package dsp

import "math"

// Resonator is a two-pole all-pole IIR section in direct form I, with exact
// pole-radius matching to the target bandwidth. Frequency and bandwidth may
// change every sample; coefficients are only recomputed when either value
// actually changes.
type Resonator struct {
	sampleRate float64
	anti       bool

	frequency, bandwidth float64
	setOnce              bool
	disabled             bool

	// all-pole state
	y1, y2          float64
	dfB0, fb1, fb2 float64

	// all-zero (FIR antiresonator) state
	z1, z2          float64
	firA, firB, firC float64
}

// NewResonator creates an all-pole resonator for the given sample rate.
func NewResonator(sampleRate int) *Resonator {
	return &Resonator{sampleRate: float64(sampleRate), firA: 1.0}
}

// NewAntiResonator creates a two-zero all-zero antiresonator section.
func NewAntiResonator(sampleRate int) *Resonator {
	return &Resonator{sampleRate: float64(sampleRate), anti: true, firA: 1.0}
}

func (r *Resonator) setParams(freq, bw float64) {
	if r.setOnce && freq == r.frequency && bw == r.bandwidth {
		return
	}
	r.frequency = freq
	r.bandwidth = bw
	r.setOnce = true

	nyquist := 0.5 * r.sampleRate
	invalid := math.IsNaN(freq) || math.IsNaN(bw) || math.IsInf(freq, 0) || math.IsInf(bw, 0)
	off := freq <= 0 || bw <= 0 || freq >= nyquist

	if invalid || off {
		r.disabled = true
		if r.anti {
			r.firA, r.firB, r.firC = 1, 0, 0
		} else {
			r.dfB0, r.fb1, r.fb2 = 0, 0, 0
		}
		return
	}
	r.disabled = false

	if r.anti {
		rad := math.Exp(-math.Pi / r.sampleRate * bw)
		cosTheta := math.Cos(2 * math.Pi * freq / r.sampleRate)
		resA := 1 - 2*rad*cosTheta + rad*rad
		if math.IsNaN(resA) || math.Abs(resA) < 1e-12 {
			r.firA, r.firB, r.firC = 1, 0, 0
			return
		}
		invA := 1 / resA
		r.firA = invA
		r.firB = -2 * rad * cosTheta * invA
		r.firC = rad * rad * invA
		return
	}

	g := math.Tan(math.Pi * freq / r.sampleRate)
	g2 := g * g
	R := math.Exp(-2 * math.Pi * bw / r.sampleRate)
	k := (1 - R) * (1 + g2) / (g * (1 + R))
	D := 1 + k*g + g2
	r.dfB0 = 4 * g2 / D
	r.fb1 = 2 * (1 - g2) / D
	r.fb2 = -(1 - k*g + g2) / D
}

// Resonate advances the section by one sample. When allowUpdate is false,
// the previously computed coefficients are reused even if freq/bw changed,
// which callers use to share coefficient recomputation across calls in the
// same sample.
func (r *Resonator) Resonate(in, freq, bw float64, allowUpdate bool) float64 {
	if allowUpdate {
		r.setParams(freq, bw)
	}
	if r.disabled {
		return in
	}
	if r.anti {
		out := r.firA*in + r.firB*r.z1 + r.firC*r.z2
		r.z2 = r.z1
		r.z1 = in
		return out
	}
	out := r.dfB0*in + r.fb1*r.y1 + r.fb2*r.y2
	r.y2 = r.y1
	r.y1 = out
	return out
}

// Reset clears delay-line state and forces coefficient recomputation on the
// next Resonate call.
func (r *Resonator) Reset() {
	r.y1, r.y2 = 0, 0
	r.z1, r.z2 = 0, 0
	r.setOnce = false
}

// Decay drains residual ringing energy by factor in (0,1], e.g. during
// silence where a closed glottis would no longer excite the vocal tract.
func (r *Resonator) Decay(factor float64) {
	r.y1 *= factor
	r.y2 *= factor
}

// PitchSyncResonator is F1's resonator variant: during the glottal open
// phase it adds a frequency/bandwidth delta (sourced from VoicingTone),
// smoothing the effective target with a ~2ms one-pole lowpass so glottal
// phase transitions never click.
type PitchSyncResonator struct {
	sampleRate float64

	a, b, c float64
	p1, p2  float64

	deltaFreq, deltaBw       float64
	lastTargetFreq, lastTargetBw float64
	setOnce                  bool

	smoothFreq, smoothBw, smoothAlpha float64
}

// NewPitchSyncResonator creates F1's pitch-synchronous resonator.
func NewPitchSyncResonator(sampleRate int) *PitchSyncResonator {
	sr := float64(sampleRate)
	const smoothMs = 2.0
	return &PitchSyncResonator{
		sampleRate:  sr,
		a:           1.0,
		smoothAlpha: 1 - math.Exp(-1/(sr*smoothMs*0.001)),
	}
}

// SetPitchSyncParams configures the open-phase F1/B1 deltas from VoicingTone.
func (p *PitchSyncResonator) SetPitchSyncParams(deltaF1Hz, deltaB1Hz float64) {
	p.deltaFreq = deltaF1Hz
	p.deltaBw = deltaB1Hz
}

// Reset clears delay-line and smoothing state.
func (p *PitchSyncResonator) Reset() {
	p.p1, p.p2 = 0, 0
	p.setOnce = false
	p.smoothFreq, p.smoothBw = 0, 0
}

// Decay drains residual ringing energy, matching Resonator.Decay.
func (p *PitchSyncResonator) Decay(factor float64) {
	p.p1 *= factor
	p.p2 *= factor
}

func (p *PitchSyncResonator) computeCoeffs(freq, bw float64) {
	nyquist := 0.5 * p.sampleRate
	if math.IsNaN(freq) || math.IsNaN(bw) || freq <= 0 || bw <= 0 || freq >= nyquist {
		p.a, p.b, p.c = 1, 0, 0
		return
	}
	r := math.Exp(-math.Pi / p.sampleRate * bw)
	p.c = -(r * r)
	p.b = r * math.Cos(2*math.Pi*freq/p.sampleRate) * 2
	p.a = 1 - p.b - p.c
}

// Resonate advances F1 by one sample, applying the open-phase delta and its
// smoothing before recomputing coefficients as needed.
func (p *PitchSyncResonator) Resonate(in, freq, bw float64, glottisOpen bool) float64 {
	var targetFreq, targetBw float64
	if p.deltaFreq != 0 || p.deltaBw != 0 {
		if glottisOpen {
			targetFreq = freq + p.deltaFreq
			targetBw = bw + p.deltaBw
		} else {
			targetFreq = freq
			targetBw = bw
		}
		if p.smoothFreq == 0 {
			p.smoothFreq = targetFreq
		}
		if p.smoothBw == 0 {
			p.smoothBw = targetBw
		}
		p.smoothFreq += (targetFreq - p.smoothFreq) * p.smoothAlpha
		p.smoothBw += (targetBw - p.smoothBw) * p.smoothAlpha
		targetFreq = p.smoothFreq
		targetBw = p.smoothBw
	} else {
		targetFreq = freq
		targetBw = bw
	}

	if !p.setOnce || targetFreq != p.lastTargetFreq || targetBw != p.lastTargetBw {
		p.lastTargetFreq = targetFreq
		p.lastTargetBw = targetBw
		p.computeCoeffs(targetFreq, targetBw)
		p.setOnce = true
	}

	out := p.a*in + p.b*p.p1 + p.c*p.p2
	p.p2 = p.p1
	p.p1 = out
	return out
}
