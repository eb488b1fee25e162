package glottal

import (
	"math"

	"github.com/tgeczy/speechbox/internal/dsp"
	"github.com/tgeczy/speechbox/internal/frame"
)

// Source is the LF-inspired glottal flow generator. One Source per Player;
// not safe for concurrent use.
type Source struct {
	sampleRate float64

	freq *dsp.FreqGenerator
	rng  *dsp.FastRandom

	vibratoPhase float64
	tremorPhase  float64

	jitterMul  float64
	shimmerMul float64

	lastFlow    float64
	preEmphPrev float64
	tiltState   float64
	turbState   float64

	dcBlock *dsp.DCBlocker
	aa1, aa2 *dsp.OnePoleLowpass

	tone frame.VoicingTone

	lastNoiseMod   float64
	lastTurbulence float64
	// GlottisOpen reports whether the most recently produced sample fell in
	// the glottal open phase; read by the pitch-synchronous F1 resonator.
	GlottisOpen bool
}

// NewSource creates a glottal source for the given sample rate, seeded from
// rng so jitter/shimmer sampling is reproducible.
func NewSource(sampleRate int, rng *dsp.FastRandom) *Source {
	return &Source{
		sampleRate: float64(sampleRate),
		freq:       dsp.NewFreqGenerator(sampleRate),
		rng:        rng,
		jitterMul:  1,
		shimmerMul: 1,
		dcBlock:    dsp.NewDCBlocker(0.9995),
		aa1:        dsp.NewOnePoleLowpass(sampleRate, antiAliasCutoff(sampleRate)),
		aa2:        dsp.NewOnePoleLowpass(sampleRate, antiAliasCutoff(sampleRate)),
		tone:       frame.DefaultVoicingTone(),
	}
}

// antiAliasCutoff scales 4kHz at 11kHz up to 6.5kHz at 22kHz, bypassed at or
// above 44.1kHz (returned as 0, meaning "no filtering needed").
func antiAliasCutoff(sampleRate int) float64 {
	sr := float64(sampleRate)
	if sr >= 44100 {
		return 0
	}
	const srLo, srHi = 11025.0, 22050.0
	const fcLo, fcHi = 4000.0, 6500.0
	t := (sr - srLo) / (srHi - srLo)
	t = dsp.Clamp(t, 0, 1)
	return fcLo + t*(fcHi-fcLo)
}

// SetVoicingTone updates the per-voice DSP parameters. Internal filter
// state (DC blocker, antialias) is preserved across tone changes.
func (s *Source) SetVoicingTone(t frame.VoicingTone) {
	s.tone = t.Clamped()
}

// Reset clears all oscillator phase and filter state.
func (s *Source) Reset() {
	s.freq.Reset()
	s.vibratoPhase, s.tremorPhase = 0, 0
	s.jitterMul, s.shimmerMul = 1, 1
	s.lastFlow, s.preEmphPrev, s.tiltState, s.turbState = 0, 0, 0, 0
	s.lastTurbulence = 0
	s.dcBlock.Reset()
	s.aa1.Reset()
	s.aa2.Reset()
}

// LastNoiseMod returns the most recent glottal-cycle AM multiplier applied
// to voiced/noise sources when VoicingTone.NoiseGlottalModDepth > 0.
func (s *Source) LastNoiseMod() float64 { return s.lastNoiseMod }

// LastTurbulence returns the open-phase-gated turbulence signal sample
// folded into the most recent Next() output, so callers that need the
// voiced-only component can subtract an actual signal value rather than
// the frame's AspirationAmplitude scalar parameter.
func (s *Source) LastTurbulence() float64 { return s.lastTurbulence }

// Next advances the source by one sample, returning the combined voiced +
// turbulence signal ready to feed the cascade bank.
func (s *Source) Next(fr *frame.Frame, ex *frame.FrameEx) float64 {
	if fr == nil {
		return 0
	}
	if ex == nil {
		d := frame.DefaultFrameEx()
		ex = &d
	}

	creak := dsp.Clamp(ex.Creakiness, 0, 1)
	breath := dsp.Clamp(ex.Breathiness, 0, 1)
	jitter := dsp.Clamp(ex.Jitter, 0, 1)
	shimmer := dsp.Clamp(ex.Shimmer, 0, 1)

	// Step 1: modulated pitch.
	vibratoMul := 1.0
	if fr.VibratoSpeed > 0 && fr.VoicePitch > 0 {
		s.vibratoPhase += fr.VibratoSpeed / s.sampleRate
		s.vibratoPhase -= math.Floor(s.vibratoPhase)
		vibratoMul = 1 + (fr.VibratoPitchOffset/math.Max(fr.VoicePitch, 1)) * math.Sin(2*math.Pi*s.vibratoPhase)
	}
	tremorMul, tremorAmpMul := 1.0, 1.0
	if s.tone.TremorDepth > 0 {
		const tremorHz = 5.0
		s.tremorPhase += tremorHz / s.sampleRate
		s.tremorPhase -= math.Floor(s.tremorPhase)
		sinT := math.Sin(2 * math.Pi * s.tremorPhase)
		tremorMul = 1 + s.tone.TremorDepth*0.03*sinT
		tremorAmpMul = 1 + s.tone.TremorDepth*0.15*sinT
	}
	fujisakiMul := 1 + 0.10*ex.FujisakiPhraseCommand + 0.05*ex.FujisakiAccentCommand

	f0 := fr.VoicePitch * fujisakiMul * vibratoMul * tremorMul * s.jitterMul * (1 - 0.12*creak)

	// Step 2/3: advance phase, resample jitter/shimmer on cycle wrap.
	phase, wrapped := s.freq.Advance(f0)
	if wrapped {
		s.jitterMul = dsp.Clamp(1+s.rng.Uniform(-1, 1)*(0.15*jitter+0.05*creak), 0.2, math.Inf(1))
		s.shimmerMul = math.Max(0, 1+s.rng.Uniform(-1, 1)*(0.70*shimmer+0.12*creak))
	}

	// Step 4: effective open quotient.
	oq := fr.GlottalOpenQuotient
	if oq <= 0 {
		oq = 0.4
	}
	oq = dsp.Clamp(oq, 0.10, 0.95)
	oq += 0.10 * creak
	oq -= 0.35 * breath
	oq = dsp.Clamp(oq, 0.05, 0.95)
	if s.tone.TremorDepth > 0 {
		oq *= 1 + 0.05*math.Sin(2*math.Pi*s.tremorPhase)
	}

	// Step 5: glottis open/closed.
	glottisOpen := f0 > 0 && phase >= oq
	s.GlottisOpen = glottisOpen

	var flow float64
	if glottisOpen {
		flow = s.pulseShape(phase, oq, breath, creak)
	}

	// Step 8: additive radiation characteristic with soft-limited derivative.
	dFlow := flow - s.lastFlow
	s.lastFlow = flow
	radGain := 5.0 * (s.sampleRate / 22050.0)
	radMix := radiationMix(s.tone.VoicedTiltDbPerOct)
	dFlowLimited := 0.6 * math.Tanh(dFlow*radGain/0.6)
	src := (flow + radMix*dFlowLimited*radGain) / (1 + 0.5*radMix)

	// Step 9: voiced pre-emphasis.
	preEmph := src - s.tone.VoicedPreEmphA*s.preEmphPrev
	s.preEmphPrev = src
	src = (1-s.tone.VoicedPreEmphMix)*src + s.tone.VoicedPreEmphMix*preEmph

	// Step 10: spectral tilt via analytically-derived one-pole lowpass.
	pole := calcPoleForTiltDb(s.tone.VoicedTiltDbPerOct, 3000.0, s.sampleRate)
	s.tiltState += (src - s.tiltState) * (1 - pole)
	src = s.tiltState

	// Step 11: turbulence, gated to the open phase.
	turbGate := 0.0
	if glottisOpen {
		turbGate = math.Pow(dsp.Clamp(flow, 0, 1), 1.5)
	}
	turbulence := fr.AspirationAmplitude * fr.VoiceTurbulenceAmplitude * turbGate
	s.lastTurbulence = turbulence

	if s.tone.NoiseGlottalModDepth > 0 {
		mod := 1.0
		if phase >= 0.5 {
			mod = 1 - s.tone.NoiseGlottalModDepth*0.5
		}
		s.lastNoiseMod = mod
	} else {
		s.lastNoiseMod = 1
	}

	// Step 12: combine voiced + turbulence. CRITICAL: voiceAmp scales only
	// the voiced pulse, never the turbulence term.
	voiceAmpEffective := fr.VoiceAmplitude * (1 - 0.35*creak) * (1 - 0.98*breath) * s.shimmerMul * tremorAmpMul
	voicedIn := src*voiceAmpEffective + turbulence
	out := s.dcBlock.Process(voicedIn)

	// Step 13: sub-44.1kHz anti-alias lowpass.
	if cutoff := antiAliasCutoff(int(s.sampleRate)); cutoff > 0 {
		out = s.aa2.Process(s.aa1.Process(out))
	}

	return out
}

// pulseShape blends a symmetric cosine pulse with an LF-inspired asymmetric
// pulse, weighted by sample rate, evaluated at normalized open-phase
// position.
func (s *Source) pulseShape(phase, oq float64, breath, creak float64) float64 {
	t := (phase - oq) / (1 - oq) // normalized position within the open window, [0,1)

	sq := s.tone.SpeedQuotient
	if sq <= 0 {
		sq = 2.0
	}
	sqPeakDelta := 0.6 * (sq/(1+sq) - 2.0/3.0)
	peakPos := dsp.Clamp(s.tone.VoicingPeakPos+sqPeakDelta+0.02*breath-0.05*creak, 0.05, 0.98)

	// Symmetric cosine pulse.
	var cosine float64
	if t < peakPos {
		cosine = 0.5 * (1 - math.Cos(math.Pi*t/peakPos))
	} else {
		cosine = 0.5 * (1 + math.Cos(math.Pi*(t-peakPos)/(1-peakPos)))
	}

	// LF-inspired asymmetric pulse.
	p := dsp.Clamp(2+0.5*(sq-2), 1, 4)
	closeBase := 2.5
	if s.sampleRate >= 44100 {
		closeBase = 10
	} else if s.sampleRate > 16000 {
		closeBase = 2.5 + (s.sampleRate-16000)/(44100-16000)*(10-2.5)
	}
	closeS := closeBase * (0.4 + 0.4*(sq-0.5))

	var lf float64
	if t < peakPos {
		lf = math.Pow(t/peakPos, p) * (3 - 2*t/peakPos)
	} else {
		ct := (t - peakPos) / (1 - peakPos)
		lf = math.Pow(1-ct, closeS)
	}

	blend := lfBlendWeight(s.sampleRate)
	return (1-blend)*cosine + blend*lf
}

// lfBlendWeight is 0.30 at SR=11025, ramps linearly to 1.0 at SR=16000, and
// stays fixed at 1.0 above that.
func lfBlendWeight(sr float64) float64 {
	if sr <= 11025 {
		return 0.30
	}
	if sr >= 16000 {
		return 1.0
	}
	t := (sr - 11025) / (16000 - 11025)
	return 0.30 + t*0.70
}

// radiationMix derives the additive-radiation mix amount from the target
// voiced tilt: 0 dB/oct gives the 0.5 baseline, negative tilt (darker
// target) increases the mix toward 1.0, positive tilt decreases it below
// the baseline, reaching 0 at +6 dB/oct.
func radiationMix(tiltDbPerOct float64) float64 {
	base := 0.5
	if tiltDbPerOct < 0 {
		return dsp.Clamp(base+(-tiltDbPerOct)/12.0, 0, 1)
	}
	return dsp.Clamp(base-tiltDbPerOct/12.0, 0, base)
}

// calcPoleForTiltDb analytically solves for the one-pole lowpass pole that
// yields the target dB/octave roll-off at refHz.
func calcPoleForTiltDb(tiltDbPerOct, refHz, sampleRate float64) float64 {
	if tiltDbPerOct >= 0 {
		return 0 // no tilt: pole at 0 means the one-pole state isn't low-passed at all
	}
	// A one-pole lowpass y += (1-p)(x-y) has magnitude response rolling off
	// at -6dB/oct above its corner; solve for the corner that produces the
	// requested dB/oct at refHz, then convert corner to pole.
	octavesToMinus6 := 6.0 / -tiltDbPerOct
	cornerHz := refHz / math.Pow(2, octavesToMinus6)
	cornerHz = dsp.Clamp(cornerHz, 20, sampleRate/2-1)
	return math.Exp(-2 * math.Pi * cornerHz / sampleRate)
}
