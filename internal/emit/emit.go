package emit

import (
	"math"

	"github.com/tgeczy/speechbox/internal/frame"
	"github.com/tgeczy/speechbox/internal/pack"
	"github.com/tgeczy/speechbox/internal/prosody"
	"github.com/tgeczy/speechbox/internal/token"
)

// Callback receives one emitted tuple. f is nil for silence, matching the
// NULL-frame contract consumed by frame.Manager.
type Callback func(f *frame.Frame, ex *frame.FrameEx, durationMs, fadeMs float64, userIndex int)

// Config carries the per-utterance voice-quality defaults, active voice
// profile and language settings the emitter needs.
type Config struct {
	DefaultEx    frame.FrameEx
	VoiceProfile *pack.VoiceProfile
	Settings     pack.Settings
}

const (
	defaultFadeMs      = 4.0
	voicedClosureFadeMs = 12.0
	trillCloseAmplitudeMul = 0.22
	voicingTransitionThreshold = 0.05
)

// classExemptFromTrajectoryLimit mirrors the reference exemption list:
// trajectory limiting never applies to semivowels, liquids, nasals, or the
// token immediately after a nasal.
func classExemptFromTrajectoryLimit(c pack.Class) bool {
	switch c {
	case pack.ClassSemivowel, pack.ClassLiquid, pack.ClassNasal:
		return true
	}
	return false
}

// Emit walks tokens/infos (aligned by index, as produced by token.Build and
// prosody.Compute) and invokes cb once per produced frame tuple.
func Emit(tokens []token.Token, infos []prosody.Info, cfg Config, userIndexBase int, cb Callback) {
	var prev *frame.Frame
	var prevClass pack.Class
	afterNasal := false

	for i, t := range tokens {
		info := infos[i]
		userIndex := userIndexBase + i

		if t.Silence {
			fade := defaultFadeMs
			if t.PreStopGap && i > 0 && tokens[i-1].Phoneme != nil &&
				!(tokens[i-1].Phoneme.Class == pack.ClassStop && tokens[i-1].Phoneme.IsVoicelessStop) {
				fade = voicedClosureFadeMs
			}
			cb(nil, nil, info.DurationMs, fade, userIndex)
			continue
		}
		if t.Phoneme == nil {
			continue
		}

		if t.Phoneme.TrillCapable && cfg.Settings.TrillModulationMs > 0 {
			emitTrill(t, info, cfg, userIndex, &prev, cb)
			prevClass = t.Phoneme.Class
			afterNasal = false
			continue
		}

		f := buildFrame(t, info, cfg)
		if !classExemptFromTrajectoryLimit(t.Phoneme.Class) && !afterNasal && cfg.Settings.TrajectoryLimiting && prev != nil {
			limitTrajectory(prev, f, info.DurationMs, cfg.Settings.TrajectoryRateHzPerMs)
		}
		ex := buildFrameEx(t, cfg, prev, f)
		cb(f, &ex, info.DurationMs, defaultFadeMs, userIndex)

		prevClass = t.Phoneme.Class
		afterNasal = prevClass == pack.ClassNasal
		prev = f
	}
}

func buildFrame(t token.Token, info prosody.Info, cfg Config) *frame.Frame {
	f := &frame.Frame{}
	t.Phoneme.ApplyTo(f)
	if cfg.VoiceProfile != nil {
		cfg.VoiceProfile.Apply(t.Key, t.Phoneme.Class, f)
	}
	f.VoicePitch = info.VoicePitch
	f.EndVoicePitch = info.EndVoicePitch
	return f
}

func buildFrameEx(t token.Token, cfg Config, prev, cur *frame.Frame) frame.FrameEx {
	ex := cfg.DefaultEx
	ex.Creakiness = clamp01(ex.Creakiness + t.Phoneme.Ex.Creakiness)
	ex.Breathiness = clamp01(ex.Breathiness + t.Phoneme.Ex.Breathiness)
	ex.Jitter = clamp01(ex.Jitter + t.Phoneme.Ex.Jitter)
	ex.Shimmer = clamp01(ex.Shimmer + t.Phoneme.Ex.Shimmer)
	sharp := t.Phoneme.Ex.Sharpness
	if sharp == 0 {
		sharp = 1.0
	}
	ex.Sharpness *= sharp

	ex.EndCf1, ex.EndCf2, ex.EndCf3 = frame.NoRamp, frame.NoRamp, frame.NoRamp
	ex.EndPf1, ex.EndPf2, ex.EndPf3 = frame.NoRamp, frame.NoRamp, frame.NoRamp
	if !math.IsNaN(t.Phoneme.Ex.EndCf1) {
		ex.EndCf1 = t.Phoneme.Ex.EndCf1
	}
	if !math.IsNaN(t.Phoneme.Ex.EndCf2) {
		ex.EndCf2 = t.Phoneme.Ex.EndCf2
	}
	if !math.IsNaN(t.Phoneme.Ex.EndCf3) {
		ex.EndCf3 = t.Phoneme.Ex.EndCf3
	}
	if !math.IsNaN(t.Phoneme.Ex.EndPf1) {
		ex.EndPf1 = t.Phoneme.Ex.EndPf1
	}
	if !math.IsNaN(t.Phoneme.Ex.EndPf2) {
		ex.EndPf2 = t.Phoneme.Ex.EndPf2
	}
	if !math.IsNaN(t.Phoneme.Ex.EndPf3) {
		ex.EndPf3 = t.Phoneme.Ex.EndPf3
	}

	ex.TransAmplitudeMode = 0
	if prev != nil {
		prevVoiced := prev.VoiceAmplitude > voicingTransitionThreshold
		curVoiced := cur.VoiceAmplitude > voicingTransitionThreshold
		if prevVoiced != curVoiced {
			ex.TransAmplitudeMode = 1
		}
	}
	return ex
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// limitTrajectory caps the per-ms change of cf2/cf3/pf2/pf3 against prev,
// using rateHzPerMs times max(durationMs, 40).
func limitTrajectory(prev, cur *frame.Frame, durationMs, rateHzPerMs float64) {
	if rateHzPerMs <= 0 {
		return
	}
	limit := rateHzPerMs * math.Max(durationMs, 40)
	cur.Cf2 = capDelta(prev.Cf2, cur.Cf2, limit)
	cur.Cf3 = capDelta(prev.Cf3, cur.Cf3, limit)
	cur.Pf2 = capDelta(prev.Pf2, cur.Pf2, limit)
	cur.Pf3 = capDelta(prev.Pf3, cur.Pf3, limit)
}

func capDelta(prev, cur, limit float64) float64 {
	d := cur - prev
	if d > limit {
		return prev + limit
	}
	if d < -limit {
		return prev - limit
	}
	return cur
}

// emitTrill splits a trilled token into ≈trillModulationMs cycles, each
// with an open phase (full voice amplitude) and close phase (amplitude ×
// 0.22 plus a small frication boost), interpolating pitch continuously
// across the token's original duration.
func emitTrill(t token.Token, info prosody.Info, cfg Config, userIndexBase int, prev **frame.Frame, cb Callback) {
	cycleMs := cfg.Settings.TrillModulationMs
	if cycleMs <= 0 {
		cycleMs = 28
	}
	cycles := int(math.Max(1, math.Round(info.DurationMs/cycleMs)))
	phaseMs := info.DurationMs / float64(cycles) / 2

	base := buildFrame(t, info, cfg)
	ex := buildFrameEx(t, cfg, *prev, base)

	for c := 0; c < cycles; c++ {
		openFrac := float64(c*2) / float64(cycles*2)
		closeFrac := float64(c*2+1) / float64(cycles*2)

		open := *base
		open.VoicePitch = lerp(info.VoicePitch, info.EndVoicePitch, openFrac)
		open.EndVoicePitch = lerp(info.VoicePitch, info.EndVoicePitch, closeFrac)
		cb(&open, &ex, phaseMs, defaultFadeMs, userIndexBase)

		closePhase := *base
		closePhase.VoiceAmplitude *= trillCloseAmplitudeMul
		closePhase.FricationAmplitude = math.Max(closePhase.FricationAmplitude, 0.1)
		closePhase.VoicePitch = open.EndVoicePitch
		nextFrac := float64((c+1)*2) / float64(cycles*2)
		closePhase.EndVoicePitch = lerp(info.VoicePitch, info.EndVoicePitch, nextFrac)
		cb(&closePhase, &ex, phaseMs, defaultFadeMs, userIndexBase)

		*prev = &closePhase
	}
}

func lerp(a, b, t float64) float64 { return a + t*(b-a) }
