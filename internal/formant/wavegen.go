package formant

import (
	"math"

	"github.com/tgeczy/speechbox/internal/dsp"
	"github.com/tgeczy/speechbox/internal/frame"
	"github.com/tgeczy/speechbox/internal/glottal"
)

// frameSource is the subset of frame.Manager that WaveGenerator pulls from;
// satisfied by *frame.Manager, narrowed here so wavegen tests can fake it.
type frameSource interface {
	CurrentFrame() (*frame.Frame, *frame.FrameEx, int)
}

// Numeric constants governing burst detection and adaptive noise filtering,
// grounded in the reference implementation (speechWaveGenerator.cpp) and
// listed in SPEC_FULL.md §4.4 since the distilled specification only
// summarizes them as prose.
const (
	fricNoiseScale  = 0.175
	bypassMinGain   = 0.70
	bypassVoicedDuck = 0.20
	voicedFricDuck   = 0.18
	voicedFricDuckPower = 1.0

	burstinessScaleFric = 25.0
	burstinessScaleAsp  = 40.0

	shelfDuckMax = 0.90

	outputScale = 6000.0
	outputLimit = 32767.0

	dcBlockPole = 0.9995
)

type srPoint struct {
	sr  float64
	lo  float64
	hi  float64
}

var fricationLPPoints = []srPoint{
	{11025, 3800, 5000},
	{16000, 5200, 7200},
	{22050, 3600, 9500},
	{44100, 4200, 14000},
}

var aspirationLPPoints = []struct {
	sr float64
	fc float64
}{
	{11025, 2400},
	{16000, 3200},
	{22050, 2200},
	{44100, 2500},
}

func interpFricationLP(sr float64) (burst, sustain float64) {
	pts := fricationLPPoints
	if sr <= pts[0].sr {
		return pts[0].lo, pts[0].hi
	}
	if sr >= pts[len(pts)-1].sr {
		last := pts[len(pts)-1]
		return last.lo, last.hi
	}
	for i := 1; i < len(pts); i++ {
		if sr <= pts[i].sr {
			a, b := pts[i-1], pts[i]
			t := (sr - a.sr) / (b.sr - a.sr)
			return a.lo + t*(b.lo-a.lo), a.hi + t*(b.hi-a.hi)
		}
	}
	return pts[len(pts)-1].lo, pts[len(pts)-1].hi
}

func interpAspirationLP(sr float64) float64 {
	pts := aspirationLPPoints
	if sr <= pts[0].sr {
		return pts[0].fc
	}
	if sr >= pts[len(pts)-1].sr {
		return pts[len(pts)-1].fc
	}
	for i := 1; i < len(pts); i++ {
		if sr <= pts[i].sr {
			a, b := pts[i-1], pts[i]
			t := (sr - a.sr) / (b.sr - a.sr)
			return a.fc + t*(b.fc-a.fc)
		}
	}
	return pts[len(pts)-1].fc
}

// WaveGenerator orchestrates one sample of the full synthesis pipeline:
// pull a frame from the manager, run the glottal source, split voiced and
// aspiration components, detect stop/burst onsets, adaptively filter
// frication and aspiration noise, drive the cascade and parallel banks,
// apply DC-blocking and the output high-shelf, and produce one int16 PCM
// sample (or fade to silence when the queue is drained).
type WaveGenerator struct {
	sampleRate float64

	frames   frameSource
	glottal  *glottal.Source
	cascade  *Cascade
	parallel *Parallel
	fricNoise *dsp.NoiseGenerator

	preGain    *dsp.AsymmetricSmoother

	lastTargetFricAmp float64
	lastTargetAspAmp  float64
	burstEnv          float64
	burstEnvDecayMul  float64

	aspLp1, aspLp2               *dsp.OnePoleLowpass
	fricBurstLp1, fricBurstLp2   *dsp.OnePoleLowpass
	fricSustainLp1, fricSustainLp2 *dsp.OnePoleLowpass

	dcBlock   *dsp.DCBlocker
	highShelf *dsp.HighShelf
	tone      frame.VoicingTone

	shelfMix      float64
	shelfMixAlpha float64

	lastBrightOut    float64
	wasSilence       bool
	stopFadeTotal    int
	stopFadeRemaining int
}

// New creates a WaveGenerator that pulls frames from frames and shares the
// given glottal source, cascade and parallel bank (the caller owns their
// lifetimes so VoicingTone updates and pitch-sync params stay wired to the
// same instances).
func New(sampleRate int, frames frameSource, g *glottal.Source, c *Cascade, p *Parallel, rng *dsp.FastRandom) *WaveGenerator {
	sr := sampleRate
	burstMs := 6.0
	decayMul := math.Exp(-1 / (float64(sr) * burstMs * 0.001))

	fricBurstHz, fricSustainHz := interpFricationLP(float64(sr))
	aspHz := interpAspirationLP(float64(sr))

	w := &WaveGenerator{
		sampleRate: float64(sr),
		frames:     frames,
		glottal:    g,
		cascade:    c,
		parallel:   p,
		fricNoise:  dsp.NewNoiseGenerator(rng),
		preGain:    dsp.NewAsymmetricSmoother(sr, 1.0, 0.5),
		burstEnvDecayMul: decayMul,
		aspLp1:     dsp.NewOnePoleLowpass(sr, aspHz),
		aspLp2:     dsp.NewOnePoleLowpass(sr, aspHz),
		fricBurstLp1:   dsp.NewOnePoleLowpass(sr, fricBurstHz),
		fricBurstLp2:   dsp.NewOnePoleLowpass(sr, fricBurstHz),
		fricSustainLp1: dsp.NewOnePoleLowpass(sr, fricSustainHz),
		fricSustainLp2: dsp.NewOnePoleLowpass(sr, fricSustainHz),
		dcBlock:    dsp.NewDCBlocker(dcBlockPole),
		highShelf:  dsp.NewHighShelf(sr),
		tone:       frame.DefaultVoicingTone(),
		shelfMixAlpha: 1 - math.Exp(-1/(float64(sr)*4.0*0.001)),
		shelfMix:   1.0,
		wasSilence: true,
	}
	w.highShelf.SetParams(w.tone.HighShelfFcHz, w.tone.HighShelfGainDb, w.tone.HighShelfQ)
	return w
}

// SetVoicingTone updates the high-shelf EQ coefficients (state preserved),
// propagates pitch-sync and bandwidth-scale parameters to the cascade and
// glottal source, and caches the tone for radiation-gain bookkeeping.
func (w *WaveGenerator) SetVoicingTone(t frame.VoicingTone) {
	w.tone = t.Clamped()
	w.highShelf.SetParams(w.tone.HighShelfFcHz, w.tone.HighShelfGainDb, w.tone.HighShelfQ)
	w.glottal.SetVoicingTone(w.tone)
	w.cascade.SetPitchSyncParams(w.tone.PitchSyncF1DeltaHz, w.tone.PitchSyncB1DeltaHz)
	w.cascade.SetBwScale(w.tone.CascadeBwScale)
}

// VoicingTone returns the generator's current voicing tone.
func (w *WaveGenerator) VoicingTone() frame.VoicingTone {
	return w.tone
}

// Generate fills buf with up to len(buf) PCM samples, returning the number
// actually written. A return value smaller than len(buf) indicates the
// frame queue drained (after any in-progress stop fade completes).
func (w *WaveGenerator) Generate(buf []int16) int {
	for i := range buf {
		fr, ex, _ := w.frames.CurrentFrame()
		if fr == nil {
			if !w.wasSilence {
				if w.stopFadeTotal == 0 {
					w.stopFadeTotal = int(w.sampleRate * 0.004)
					if w.stopFadeTotal < 16 {
						w.stopFadeTotal = 16
					}
					w.stopFadeRemaining = w.stopFadeTotal
				}
				if w.stopFadeRemaining > 0 {
					t := float64(w.stopFadeRemaining) / float64(w.stopFadeTotal)
					tail := w.lastBrightOut * t
					buf[i] = toInt16(tail * outputScale)
					w.stopFadeRemaining--
					continue
				}
			}
			w.wasSilence = true
			w.stopFadeTotal = 0
			w.stopFadeRemaining = 0
			return i
		}
		w.wasSilence = false
		buf[i] = w.generateSample(fr, ex)
	}
	return len(buf)
}

func (w *WaveGenerator) generateSample(fr *frame.Frame, ex *frame.FrameEx) int16 {
	smoothPreGain := w.preGain.Process(fr.PreFormantGain)

	// Next() folds the gated turbulence signal into its return value;
	// LastTurbulence reports that same signal sample so it can be removed
	// exactly, leaving the voiced-only component to drive the cascade
	// alongside the separately adaptive-filtered aspiration noise below.
	voice := w.glottal.Next(fr, ex)
	asp := w.glottal.LastTurbulence()
	voicedOnly := voice - asp

	va := dsp.Clamp(fr.VoiceAmplitude, 0, 1)

	dFric := fr.FricationAmplitude - w.lastTargetFricAmp
	w.lastTargetFricAmp = fr.FricationAmplitude
	instFric := 0.0
	if dFric > 0 {
		srScale := w.sampleRate / 22050.0
		instFric = dFric * burstinessScaleFric * srScale
		if instFric > 1 {
			instFric = 1
		}
	}

	dAsp := fr.AspirationAmplitude - w.lastTargetAspAmp
	w.lastTargetAspAmp = fr.AspirationAmplitude
	instAsp := 0.0
	if dAsp > 0 {
		srScale := w.sampleRate / 22050.0
		instAsp = dAsp * burstinessScaleAsp * srScale
		if instAsp > 1 {
			instAsp = 1
		}
	}

	inst := instFric
	if instAsp > inst {
		inst = instAsp
	}
	inst *= 1 - va

	w.burstEnv *= w.burstEnvDecayMul
	if inst > w.burstEnv {
		w.burstEnv = inst
	}
	burstiness := w.burstEnv

	aspFilt := w.aspLp2.Process(w.aspLp1.Process(asp))
	aspOut := asp + burstiness*(aspFilt-asp)
	voiceForCascade := voicedOnly + aspOut

	bypassGain := bypassMinGain + (1-bypassMinGain)*(1-fr.ParallelBypass)
	bypassVoicedDuckGain := 1 - bypassVoicedDuck*va
	voicedFricScale := 1 - voicedFricDuck*math.Pow(va, voicedFricDuckPower)
	if voicedFricScale < 0 {
		voicedFricScale = 0
	}

	cascadeOut := w.cascade.Next(fr, ex, w.glottal.GlottisOpen, voiceForCascade*smoothPreGain)

	fricNoise := w.fricNoise.Next() * fricNoiseScale * fr.FricationAmplitude * bypassGain * bypassVoicedDuckGain * voicedFricScale
	fricNoise *= w.glottal.LastNoiseMod()

	fricBurst := w.fricBurstLp2.Process(w.fricBurstLp1.Process(fricNoise))
	fricSustain := w.fricSustainLp2.Process(w.fricSustainLp1.Process(fricNoise))
	fric := fricSustain + burstiness*(fricBurst-fricSustain)

	parallelOut := w.parallel.Next(fr, ex, fric*smoothPreGain)
	out := (cascadeOut + parallelOut) * fr.OutputGain

	filteredOut := w.dcBlock.Process(out)
	shelved := w.highShelf.Process(filteredOut)

	targetShelfMix := 1 - shelfDuckMax*burstiness*(1-va)
	w.shelfMix += (targetShelfMix - w.shelfMix) * w.shelfMixAlpha
	bright := filteredOut + w.shelfMix*(shelved-filteredOut)
	w.lastBrightOut = bright

	return toInt16(bright * outputScale)
}

func toInt16(scaled float64) int16 {
	if scaled > outputLimit {
		scaled = outputLimit
	}
	if scaled < -outputLimit {
		scaled = -outputLimit
	}
	return int16(scaled)
}
