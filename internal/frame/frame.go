// Package frame defines the synthesizer parameter record (Frame/FrameEx),
// the per-voice VoicingTone, and the FrameManager that queues and
// crossfades frames sample-by-sample at render time.
package frame

import (
	"encoding/binary"
	"math"
)

// Frame is a fixed 47-field record of synthesizer parameters, interpolated
// per sample by FrameManager. Field order matches the wire layout used by
// (Frame).Fields/SetFields: 47 contiguous float64 values.
type Frame struct {
	VoicePitch            float64
	EndVoicePitch          float64
	VibratoPitchOffset     float64
	VibratoSpeed           float64
	VoiceAmplitude         float64
	AspirationAmplitude    float64
	VoiceTurbulenceAmplitude float64
	GlottalOpenQuotient    float64

	Cf1, Cf2, Cf3, Cf4, Cf5, Cf6 float64
	Cb1, Cb2, Cb3, Cb4, Cb5, Cb6 float64

	CfN0, CbN0 float64
	CfNP, CbNP, CaNP float64

	FricationAmplitude float64

	Pf1, Pf2, Pf3, Pf4, Pf5, Pf6 float64
	Pb1, Pb2, Pb3, Pb4, Pb5, Pb6 float64
	Pa1, Pa2, Pa3, Pa4, Pa5, Pa6 float64

	ParallelBypass float64
	PreFormantGain float64
	OutputGain     float64
}

// NumFields is the fixed Frame field count from the data model (§3).
const NumFields = 47

// Fields returns the frame as 47 contiguous float64 values in data-model
// field order, for binary interop.
func (f *Frame) Fields() [NumFields]float64 {
	return [NumFields]float64{
		f.VoicePitch, f.EndVoicePitch, f.VibratoPitchOffset, f.VibratoSpeed,
		f.VoiceAmplitude, f.AspirationAmplitude, f.VoiceTurbulenceAmplitude, f.GlottalOpenQuotient,
		f.Cf1, f.Cf2, f.Cf3, f.Cf4, f.Cf5, f.Cf6,
		f.Cb1, f.Cb2, f.Cb3, f.Cb4, f.Cb5, f.Cb6,
		f.CfN0, f.CbN0, f.CfNP, f.CbNP, f.CaNP,
		f.FricationAmplitude,
		f.Pf1, f.Pf2, f.Pf3, f.Pf4, f.Pf5, f.Pf6,
		f.Pb1, f.Pb2, f.Pb3, f.Pb4, f.Pb5, f.Pb6,
		f.Pa1, f.Pa2, f.Pa3, f.Pa4, f.Pa5, f.Pa6,
		f.ParallelBypass, f.PreFormantGain, f.OutputGain,
	}
}

// SetFields populates a Frame from 47 contiguous float64 values in
// data-model field order.
func (f *Frame) SetFields(v [NumFields]float64) {
	f.VoicePitch, f.EndVoicePitch, f.VibratoPitchOffset, f.VibratoSpeed = v[0], v[1], v[2], v[3]
	f.VoiceAmplitude, f.AspirationAmplitude, f.VoiceTurbulenceAmplitude, f.GlottalOpenQuotient = v[4], v[5], v[6], v[7]
	f.Cf1, f.Cf2, f.Cf3, f.Cf4, f.Cf5, f.Cf6 = v[8], v[9], v[10], v[11], v[12], v[13]
	f.Cb1, f.Cb2, f.Cb3, f.Cb4, f.Cb5, f.Cb6 = v[14], v[15], v[16], v[17], v[18], v[19]
	f.CfN0, f.CbN0, f.CfNP, f.CbNP, f.CaNP = v[20], v[21], v[22], v[23], v[24]
	f.FricationAmplitude = v[25]
	f.Pf1, f.Pf2, f.Pf3, f.Pf4, f.Pf5, f.Pf6 = v[26], v[27], v[28], v[29], v[30], v[31]
	f.Pb1, f.Pb2, f.Pb3, f.Pb4, f.Pb5, f.Pb6 = v[32], v[33], v[34], v[35], v[36], v[37]
	f.Pa1, f.Pa2, f.Pa3, f.Pa4, f.Pa5, f.Pa6 = v[38], v[39], v[40], v[41], v[42], v[43]
	f.ParallelBypass, f.PreFormantGain, f.OutputGain = v[44], v[45], v[46]
}

// NoRamp is the "no ramp" sentinel for FrameEx formant end
// targets: a non-finite value means "hold, don't sweep".
var NoRamp = math.NaN()

// FrameEx carries optional voice-quality modulators and formant end-target
// sweeps layered on top of a Frame.
type FrameEx struct {
	Creakiness float64
	Breathiness float64
	Jitter     float64
	Shimmer    float64
	Sharpness  float64 // multiplier, 1.0 = neutral

	EndCf1, EndCf2, EndCf3 float64 // Hz, or NoRamp
	EndPf1, EndPf2, EndPf3 float64 // Hz, or NoRamp

	TransF1Scale     float64
	TransF2Scale     float64
	TransF3Scale     float64
	TransNasalScale  float64
	TransAmplitudeMode int // 0 = linear, 1 = equal-power

	// Fujisaki pitch-command fields, consumed by the Fujisaki-Bartman
	// pitch model when selected.
	FujisakiPhraseCommand float64
	FujisakiAccentCommand float64
}

// DefaultFrameEx returns a neutral FrameEx: no voice-quality modulation, no
// formant sweeps, linear amplitude crossfade.
func DefaultFrameEx() FrameEx {
	return FrameEx{
		Sharpness:       1.0,
		EndCf1:          NoRamp,
		EndCf2:          NoRamp,
		EndCf3:          NoRamp,
		EndPf1:          NoRamp,
		EndPf2:          NoRamp,
		EndPf3:          NoRamp,
		TransF1Scale:    1.0,
		TransF2Scale:    1.0,
		TransF3Scale:    1.0,
		TransNasalScale: 1.0,
	}
}

// voicingToneMagic is "VOT2" little-endian, matching the reference ABI
// header used to distinguish legacy 7-double tone structs from the current
// layout during MarshalBinary/UnmarshalBinary round trips.
const voicingToneMagic uint32 = 0x32544F56
const voicingToneVersion uint32 = 3

// DSPVersion is the synthesizer DSP revision, bumped when the DSP algorithm
// changes in a way callers may want to detect.
const DSPVersion uint32 = 6

// VoicingTone carries per-voice DSP-level quality parameters: speaker
// identity knobs that are set once per voice change and smoothed
// internally rather than per-frame.
type VoicingTone struct {
	VoicingPeakPos       float64
	VoicedPreEmphA       float64
	VoicedPreEmphMix     float64
	HighShelfGainDb      float64
	HighShelfFcHz        float64
	HighShelfQ           float64
	VoicedTiltDbPerOct   float64
	NoiseGlottalModDepth float64
	PitchSyncF1DeltaHz   float64
	PitchSyncB1DeltaHz   float64
	SpeedQuotient        float64
	AspirationTiltDbPerOct float64
	CascadeBwScale       float64
	TremorDepth          float64
}

// DefaultVoicingTone returns the tone matching the reference
// implementation's hardcoded defaults, so unconfigured voices sound
// identical to it.
func DefaultVoicingTone() VoicingTone {
	return VoicingTone{
		VoicingPeakPos:     0.91,
		VoicedPreEmphA:     0.92,
		VoicedPreEmphMix:   0.35,
		HighShelfGainDb:    4.0,
		HighShelfFcHz:      2000.0,
		HighShelfQ:         0.7,
		VoicedTiltDbPerOct: 0.0,
		NoiseGlottalModDepth: 0.0,
		PitchSyncF1DeltaHz: 0.0,
		PitchSyncB1DeltaHz: 0.0,
		SpeedQuotient:      2.0,
		AspirationTiltDbPerOct: 0.0,
		CascadeBwScale:     1.0,
		TremorDepth:        0.0,
	}
}

// Clamped returns t with speedQuotient and cascadeBwScale restricted to
// their documented ranges.
func (t VoicingTone) Clamped() VoicingTone {
	t.SpeedQuotient = clamp(t.SpeedQuotient, 0.5, 4.0)
	t.CascadeBwScale = clamp(t.CascadeBwScale, 0.3, 2.0)
	return t
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// legacyFieldCount is the original 7-double VoicingTone layout (no ABI
// header), preserved for backward compatibility per the reference
// implementation's setVoicingTone/getVoicingTone merge logic.
const legacyFieldCount = 7

// MarshalBinary encodes the tone with its self-describing ABI header
// (magic, structSize, structVersion, dspVersion) followed by all fields as
// little-endian float64, so newer/older callers can negotiate how much
// data is safe to read.
func (t VoicingTone) MarshalBinary() ([]byte, error) {
	fields := []float64{
		t.VoicingPeakPos, t.VoicedPreEmphA, t.VoicedPreEmphMix,
		t.HighShelfGainDb, t.HighShelfFcHz, t.HighShelfQ,
		t.VoicedTiltDbPerOct, t.NoiseGlottalModDepth,
		t.PitchSyncF1DeltaHz, t.PitchSyncB1DeltaHz, t.SpeedQuotient,
		t.AspirationTiltDbPerOct, t.CascadeBwScale, t.TremorDepth,
	}
	structSize := uint32(16 + 8*len(fields))
	buf := make([]byte, structSize)
	binary.LittleEndian.PutUint32(buf[0:4], voicingToneMagic)
	binary.LittleEndian.PutUint32(buf[4:8], structSize)
	binary.LittleEndian.PutUint32(buf[8:12], voicingToneVersion)
	binary.LittleEndian.PutUint32(buf[12:16], DSPVersion)
	for i, v := range fields {
		binary.LittleEndian.PutUint64(buf[16+8*i:], math.Float64bits(v))
	}
	return buf, nil
}

// UnmarshalBinary decodes a tone from either the current header-prefixed
// layout or, when the magic doesn't match, the legacy 7-double layout (no
// header) — matching the reference implementation's v1/v2+ acceptance
// logic. Missing tail fields are left at DefaultVoicingTone's values.
func (t *VoicingTone) UnmarshalBinary(data []byte) error {
	merged := DefaultVoicingTone()
	const headerSize = 16

	looksLikeHeader := len(data) >= headerSize &&
		binary.LittleEndian.Uint32(data[0:4]) == voicingToneMagic

	if looksLikeHeader {
		structSize := binary.LittleEndian.Uint32(data[4:8])
		n := int(structSize)
		if n < headerSize {
			n = len(data)
		}
		if n > len(data) {
			n = len(data)
		}
		fieldBytes := data[headerSize:n]
		fields := decodeFloat64s(fieldBytes)
		assignToneFields(&merged, fields)
	} else if len(data) >= legacyFieldCount*8 {
		fields := decodeFloat64s(data[:legacyFieldCount*8])
		merged.VoicingPeakPos = fields[0]
		merged.VoicedPreEmphA = fields[1]
		merged.VoicedPreEmphMix = fields[2]
		merged.HighShelfGainDb = fields[3]
		merged.HighShelfFcHz = fields[4]
		merged.HighShelfQ = fields[5]
		merged.VoicedTiltDbPerOct = fields[6]
	}

	*t = merged
	return nil
}

func decodeFloat64s(b []byte) []float64 {
	n := len(b) / 8
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return out
}

func assignToneFields(t *VoicingTone, fields []float64) {
	set := func(i int, dst *float64) {
		if i < len(fields) {
			*dst = fields[i]
		}
	}
	set(0, &t.VoicingPeakPos)
	set(1, &t.VoicedPreEmphA)
	set(2, &t.VoicedPreEmphMix)
	set(3, &t.HighShelfGainDb)
	set(4, &t.HighShelfFcHz)
	set(5, &t.HighShelfQ)
	set(6, &t.VoicedTiltDbPerOct)
	set(7, &t.NoiseGlottalModDepth)
	set(8, &t.PitchSyncF1DeltaHz)
	set(9, &t.PitchSyncB1DeltaHz)
	set(10, &t.SpeedQuotient)
	set(11, &t.AspirationTiltDbPerOct)
	set(12, &t.CascadeBwScale)
	set(13, &t.TremorDepth)
}
